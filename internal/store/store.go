// ABOUTME: Store interface and data types for save-history persistence
// ABOUTME: Defines SaveAttempt, OperationRecord and the Store interface

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// OperationRecord is the persisted form of one remote operation outcome.
type OperationRecord struct {
	Kind   string `json:"kind"`
	Target string `json:"target"`
	Error  string `json:"error,omitempty"`
}

// SaveAttempt is one reconciliation run against the remote store, kept for
// the dashboard's save-history view and for debugging partial failures.
type SaveAttempt struct {
	ID               string
	TenantID         string
	Success          bool
	ConfigOK         bool
	KnowledgeBasesOK bool
	Operations       []OperationRecord
	StartedAt        time.Time
	FinishedAt       time.Time
}

// SaveFilter specifies filtering options for listing save attempts.
type SaveFilter struct {
	TenantID string // empty matches all tenants
	Limit    int    // max results (default 50, max 500)
}

// Store defines the interface for save-history persistence
type Store interface {
	// AppendSave records one completed reconciliation run.
	AppendSave(ctx context.Context, attempt *SaveAttempt) error

	// ListSaves returns attempts newest first.
	ListSaves(ctx context.Context, filter SaveFilter) ([]*SaveAttempt, error)

	// GetSave returns one attempt by ID.
	GetSave(ctx context.Context, id string) (*SaveAttempt, error)

	// PruneSavesBefore deletes attempts finished before the cutoff and
	// returns how many rows were removed.
	PruneSavesBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// Close releases the underlying resources.
	Close() error
}
