// Package reconcile turns a draft editing session into remote operations.
//
// # Overview
//
// The remote configuration service offers whole-object replace for the tenant
// configuration and per-record CRUD for knowledge bases, with no batch or
// transaction support. A save therefore issues a sequence of independent
// calls:
//
//  1. PUT the full TenantConfiguration.
//  2. DELETE each ID in the pending deletion set, insertion order.
//  3. PUT each record with an ID, then POST each record without one,
//     list order within each batch.
//  4. GET the canonical knowledge-base list and rehydrate the draft.
//
// No step short-circuits; every outcome lands in the Report as a tagged
// per-operation result. For a save with d deletions, c creates, and u updates
// exactly 1 + d + c + u + 1 remote calls are issued.
//
// # Best-effort contract
//
// A save is best-effort. If two of three record writes succeed the remote
// store ends up holding a mix of old and new data, the report's verdict is
// failure, and nothing is retried or rolled back. Re-invoking Save re-issues
// creates for records still lacking an ID, which can duplicate a record whose
// create succeeded server-side but whose ID was never observed because the
// refresh read failed.
//
// # Rehydration
//
// The refresh read after every save is the only way client-created records
// acquire their server-assigned IDs; the create response body is not
// consumed. On refresh failure the draft keeps its stale list and the report
// carries the refresh error.
//
// # Re-entrancy
//
// Save is mutually exclusive per Reconciler: a second invocation while one is
// in flight returns ErrSaveInFlight instead of interleaving two
// reconciliations against the same remote store.
package reconcile
