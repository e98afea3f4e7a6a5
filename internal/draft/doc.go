// Package draft holds the in-memory working copy used while an administrator
// edits a tenant's agent configuration.
//
// # Lifecycle
//
// A Store is created when a configuration editing session opens (hydrated by
// one read of the configuration and one read of the knowledge-base list),
// mutated by every field edit and record add/update/remove, and overwritten —
// not merged — by rehydration after each save. Records without an ID have
// never been persisted; removal of a persisted record atomically moves its ID
// into the pending deletion set.
//
// The store is synchronous and side-effect free; translating its state into
// remote operations is the reconcile package's job.
package draft
