// Package store persists the history of reconciliation attempts.
//
// Each save against the remote configuration service produces one
// SaveAttempt row carrying the aggregate verdict and the full list of
// per-operation outcomes as JSON. The gateway serves this history to the
// dashboard and prunes it on a retention schedule.
//
// SQLiteStore is the production implementation (modernc.org/sqlite, WAL
// mode, schema created on open); MockStore backs tests.
package store
