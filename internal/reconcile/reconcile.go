// ABOUTME: Reconciler translating draft state into remote operations on save
// ABOUTME: Runs config replace, per-record CRUD, and the rehydrating refresh

package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/spotfunnel/voiceos-admin/internal/draft"
	"github.com/spotfunnel/voiceos-admin/internal/remote"
)

// ErrSaveInFlight is returned when Save is invoked while a previous save on
// the same Reconciler has not finished. Saves are rejected, not queued.
var ErrSaveInFlight = errors.New("save already in flight")

// RemoteAPI is the slice of the remote service the reconciler needs.
type RemoteAPI interface {
	GetAgentConfig(ctx context.Context, tenantID string) (*remote.TenantConfiguration, error)
	PutAgentConfig(ctx context.Context, tenantID string, cfg *remote.TenantConfiguration) error
	ListKnowledgeBases(ctx context.Context, tenantID string) ([]remote.KnowledgeBaseRecord, error)
	CreateKnowledgeBase(ctx context.Context, tenantID string, rec *remote.KnowledgeBaseRecord) error
	UpdateKnowledgeBase(ctx context.Context, tenantID, kbID string, rec *remote.KnowledgeBaseRecord) error
	DeleteKnowledgeBase(ctx context.Context, tenantID, kbID string) error
}

// Policy names how the per-record operations of a save are dispatched.
// Deletes always complete before creates and updates, whatever the policy.
type Policy struct {
	limit int
}

// Sequential dispatches one operation at a time, in declaration order.
var Sequential = Policy{limit: 1}

// Bounded dispatches up to n per-record operations concurrently. n below 1
// degrades to Sequential.
func Bounded(n int) Policy {
	if n < 1 {
		n = 1
	}
	return Policy{limit: n}
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithPolicy sets the batch dispatch policy. Default is Sequential.
func WithPolicy(p Policy) Option {
	return func(r *Reconciler) { r.policy = p }
}

// WithKeepUnsavedDrafts keeps records whose create failed in the draft list
// across rehydration, so the next save retries the create. Without it the
// rehydrated server list stands alone and a failed create must be re-entered
// by the administrator.
func WithKeepUnsavedDrafts() Option {
	return func(r *Reconciler) { r.keepUnsaved = true }
}

// WithLogger sets the logger used for save diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reconciler) { r.logger = logger }
}

// Reconciler turns the draft store's state into the minimal set of remote
// operations implied by it and aggregates their outcomes into a Report.
//
// The protocol is non-atomic, non-transactional, and at-most-once per call:
// the backend offers no multi-call transaction, so a partial failure leaves
// the remote store holding a mix of old and new data. Nothing is retried and
// nothing is rolled back; the report says exactly which operations failed.
type Reconciler struct {
	api         RemoteAPI
	draft       *draft.Store
	tenantID    string
	policy      Policy
	keepUnsaved bool
	logger      *slog.Logger

	// saveCh is a single-slot token making Save mutually exclusive without
	// blocking the rejected caller.
	saveCh chan struct{}
}

// New creates a Reconciler for one tenant's draft.
func New(api RemoteAPI, d *draft.Store, tenantID string, opts ...Option) *Reconciler {
	r := &Reconciler{
		api:      api,
		draft:    d,
		tenantID: tenantID,
		policy:   Sequential,
		logger:   slog.Default().With("component", "reconcile"),
		saveCh:   make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Hydrate populates the draft store with one read of the tenant configuration
// and one read of the knowledge-base list. Called when an editing session
// opens.
func (r *Reconciler) Hydrate(ctx context.Context) error {
	cfg, err := r.api.GetAgentConfig(ctx, r.tenantID)
	if err != nil {
		return fmt.Errorf("hydrating config: %w", err)
	}
	records, err := r.api.ListKnowledgeBases(ctx, r.tenantID)
	if err != nil {
		return fmt.Errorf("hydrating knowledge bases: %w", err)
	}
	r.draft.SetConfig(*cfg)
	r.draft.Replace(records)
	return nil
}

// pendingOp is one declared remote operation awaiting dispatch.
type pendingOp struct {
	kind   OpKind
	target string
	run    func(context.Context) error
}

// Save reconciles the draft against the remote store and returns the report.
//
// The sequence is: whole-object config replace, one delete per pending
// deletion in insertion order, one update per persisted record, one create
// per ID-less record, then an unconditional refresh read that rehydrates the
// draft. No step short-circuits on failure.
//
// The only error returned is ErrSaveInFlight; every other failure is folded
// into the report's operation results.
func (r *Reconciler) Save(ctx context.Context) (*Report, error) {
	select {
	case r.saveCh <- struct{}{}:
	default:
		return nil, ErrSaveInFlight
	}
	defer func() { <-r.saveCh }()

	cfg, records, deletions := r.draft.Snapshot()

	report := &Report{
		SaveID:   uuid.New().String(),
		TenantID: r.tenantID,
		Started:  time.Now().UTC(),
	}

	// Step 1: config replace.
	err := r.api.PutAgentConfig(ctx, r.tenantID, &cfg)
	report.Operations = append(report.Operations, OperationResult{
		Kind:   OpReplaceConfig,
		Target: r.tenantID,
		Err:    err,
	})

	// Steps 2-3: declare the per-record batches. Deletes run to completion
	// first, then updates of persisted records, then creates, each batch in
	// draft order.
	var deleteOps, updateOps, createOps []pendingOp
	for _, id := range deletions {
		id := id
		deleteOps = append(deleteOps, pendingOp{
			kind:   OpDelete,
			target: id,
			run: func(ctx context.Context) error {
				return r.api.DeleteKnowledgeBase(ctx, r.tenantID, id)
			},
		})
	}
	var createRecords []remote.KnowledgeBaseRecord // parallel to createOps
	for i := range records {
		rec := records[i]
		if rec.Persisted() {
			updateOps = append(updateOps, pendingOp{
				kind:   OpUpdate,
				target: rec.ID,
				run: func(ctx context.Context) error {
					return r.api.UpdateKnowledgeBase(ctx, r.tenantID, rec.ID, &rec)
				},
			})
		} else {
			createRecords = append(createRecords, rec)
			createOps = append(createOps, pendingOp{
				kind:   OpCreate,
				target: rec.Name,
				run: func(ctx context.Context) error {
					return r.api.CreateKnowledgeBase(ctx, r.tenantID, &rec)
				},
			})
		}
	}

	batch := r.dispatch(ctx, deleteOps)
	batch = append(batch, r.dispatch(ctx, updateOps)...)
	createResults := r.dispatch(ctx, createOps)
	batch = append(batch, createResults...)
	report.Operations = append(report.Operations, batch...)

	// Step 5: rehydrate unconditionally, even after failures above.
	refreshed, refreshErr := r.api.ListKnowledgeBases(ctx, r.tenantID)
	if refreshErr == nil {
		r.draft.Replace(refreshed)
		if r.keepUnsaved {
			// A failed create never reached the server, so the refreshed
			// list dropped it. Re-append so the next save retries.
			for i, res := range createResults {
				if res.Err != nil {
					if err := r.draft.AddRecord(createRecords[i]); err != nil {
						r.logger.Warn("could not keep unsaved draft",
							"record", createRecords[i].Name,
							"error", err,
						)
					}
				}
			}
		}
	}
	report.Operations = append(report.Operations, OperationResult{
		Kind:   OpRefresh,
		Target: r.tenantID,
		Err:    refreshErr,
	})
	report.Finished = time.Now().UTC()

	d, c, u := report.Counts()
	if report.Success() {
		r.logger.Info("save reconciled",
			"tenant", r.tenantID,
			"save_id", report.SaveID,
			"deletes", d,
			"creates", c,
			"updates", u,
		)
	} else {
		r.logger.Warn("save reconciled with failures",
			"tenant", r.tenantID,
			"save_id", report.SaveID,
			"failed", len(report.Failed()),
		)
	}

	return report, nil
}

// dispatch runs a batch of declared operations under the configured policy
// and returns their results in declaration order.
func (r *Reconciler) dispatch(ctx context.Context, ops []pendingOp) []OperationResult {
	results := make([]OperationResult, len(ops))

	if r.policy.limit <= 1 {
		for i, op := range ops {
			results[i] = OperationResult{Kind: op.kind, Target: op.target, Err: op.run(ctx)}
		}
		return results
	}

	g := new(errgroup.Group)
	g.SetLimit(r.policy.limit)
	for i, op := range ops {
		i, op := i, op
		g.Go(func() error {
			results[i] = OperationResult{Kind: op.kind, Target: op.target, Err: op.run(ctx)}
			return nil
		})
	}
	_ = g.Wait() // workers never return errors; failures live in results

	return results
}
