// ABOUTME: Tests that the mock store honors the Store interface contract
// ABOUTME: Keeps mock behavior aligned with the SQLite implementation

package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ Store = (*MockStore)(nil)

func TestMockStoreRoundtrip(t *testing.T) {
	m := NewMockStore()
	ctx := context.Background()

	attempt := sampleAttempt("acme", time.Now())
	attempt.ID = "save-1"
	require.NoError(t, m.AppendSave(ctx, attempt))

	got, err := m.GetSave(ctx, "save-1")
	require.NoError(t, err)
	assert.Equal(t, "acme", got.TenantID)
	assert.Len(t, got.Operations, 3)

	_, err = m.GetSave(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMockStoreListOrderAndFilter(t *testing.T) {
	m := NewMockStore()
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		a := sampleAttempt("acme", base.Add(time.Duration(i)*time.Minute))
		a.ID = fmt.Sprintf("save-%d", i)
		require.NoError(t, m.AppendSave(ctx, a))
	}
	other := sampleAttempt("globex", time.Now())
	other.ID = "save-other"
	require.NoError(t, m.AppendSave(ctx, other))

	attempts, err := m.ListSaves(ctx, SaveFilter{TenantID: "acme"})
	require.NoError(t, err)
	require.Len(t, attempts, 3)
	assert.Equal(t, "save-2", attempts[0].ID)

	attempts, err = m.ListSaves(ctx, SaveFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, attempts, 2)
}

func TestMockStorePrune(t *testing.T) {
	m := NewMockStore()
	ctx := context.Background()

	old := sampleAttempt("acme", time.Now().Add(-48*time.Hour))
	old.ID = "save-old"
	require.NoError(t, m.AppendSave(ctx, old))
	recent := sampleAttempt("acme", time.Now())
	recent.ID = "save-new"
	require.NoError(t, m.AppendSave(ctx, recent))

	n, err := m.PruneSavesBefore(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = m.GetSave(ctx, "save-old")
	assert.ErrorIs(t, err, ErrNotFound)
}
