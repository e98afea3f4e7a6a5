// ABOUTME: Structured per-operation result types for a reconciliation run
// ABOUTME: Replaces collapsed boolean verdicts with a tagged operation report

package reconcile

import (
	"time"
)

// OpKind identifies one kind of remote operation attempted during a save.
type OpKind string

const (
	OpReplaceConfig OpKind = "replace_config"
	OpDelete        OpKind = "delete"
	OpCreate        OpKind = "create"
	OpUpdate        OpKind = "update"
	OpRefresh       OpKind = "refresh"
)

// OperationResult records the outcome of a single remote operation. Target is
// the record ID for deletes and updates, the record name for creates, and the
// tenant ID for the config replace and the refresh read.
type OperationResult struct {
	Kind   OpKind
	Target string
	Err    error
}

// OK reports whether the operation succeeded.
func (r OperationResult) OK() bool {
	return r.Err == nil
}

// Report aggregates the outcomes of one reconciliation run. A save is
// best-effort: the report can show any mix of successes and failures, and a
// failed run may leave the remote store holding a mix of old and new data.
type Report struct {
	SaveID   string
	TenantID string
	Started  time.Time
	Finished time.Time

	// Operations holds one result per attempted remote call, in the order
	// the calls were declared: config replace, deletes, updates, creates,
	// refresh.
	Operations []OperationResult
}

// ConfigOK reports whether the whole-object configuration replace succeeded.
func (r *Report) ConfigOK() bool {
	for _, op := range r.Operations {
		if op.Kind == OpReplaceConfig {
			return op.OK()
		}
	}
	return false
}

// KnowledgeBasesOK reports whether every per-record operation and the refresh
// read succeeded. A single failure anywhere makes this false.
func (r *Report) KnowledgeBasesOK() bool {
	for _, op := range r.Operations {
		if op.Kind == OpReplaceConfig {
			continue
		}
		if !op.OK() {
			return false
		}
	}
	return true
}

// Success is the aggregate verdict: config replace and all knowledge-base
// operations succeeded.
func (r *Report) Success() bool {
	return r.ConfigOK() && r.KnowledgeBasesOK()
}

// Failed returns the subset of operations that errored.
func (r *Report) Failed() []OperationResult {
	var out []OperationResult
	for _, op := range r.Operations {
		if !op.OK() {
			out = append(out, op)
		}
	}
	return out
}

// Counts returns the number of deletes, creates, and updates attempted.
func (r *Report) Counts() (deletes, creates, updates int) {
	for _, op := range r.Operations {
		switch op.Kind {
		case OpDelete:
			deletes++
		case OpCreate:
			creates++
		case OpUpdate:
			updates++
		}
	}
	return deletes, creates, updates
}
