package pendingaction

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/opsreasoner/opsreasoner/pkg/models"
	"github.com/opsreasoner/opsreasoner/test/util"
)

func newTestStore(t *testing.T) *Store {
	entClient, _ := util.SetupTestDatabase(t)
	return New(entClient)
}

func sampleRecommendation() models.AgentRecommendation {
	return models.AgentRecommendation{
		ActionType:       "restock_item",
		Payload:          map[string]any{"product_id": 42, "quantity": 100},
		Reasoning:        "below reorder threshold",
		RequiresApproval: true,
	}
}

func TestStore_CreateDefaultsToPending(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	row, err := store.Create(ctx, "thread-1", sampleRecommendation(), models.AgentInventory)
	require.NoError(t, err)
	require.Equal(t, models.PendingActionPending, row.Status)
	require.Equal(t, "thread-1", row.ThreadID)
}

func TestStore_CreateWithoutApprovalIsPreApproved(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec := sampleRecommendation()
	rec.RequiresApproval = false

	row, err := store.Create(ctx, "thread-1", rec, models.AgentInventory)
	require.NoError(t, err)
	require.Equal(t, models.PendingActionApproved, row.Status)
}

func TestStore_ApproveThenExecute(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, "thread-1", sampleRecommendation(), models.AgentInventory)
	require.NoError(t, err)

	approved, err := store.Approve(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, models.PendingActionApproved, approved.Status)
	require.False(t, approved.UpdatedAt.Before(created.UpdatedAt))

	executed, err := store.Execute(ctx, created.ID, map[string]any{"ok": true})
	require.NoError(t, err)
	require.Equal(t, models.PendingActionExecuted, executed.Status)
	require.Equal(t, true, executed.ExecutionResult["ok"])
	require.False(t, executed.UpdatedAt.Before(approved.UpdatedAt))
}

func TestStore_ExecuteWithoutApprovalFails(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, "thread-1", sampleRecommendation(), models.AgentInventory)
	require.NoError(t, err)

	_, err = store.Execute(ctx, created.ID, map[string]any{"ok": true})
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestStore_RejectIsTerminal(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, "thread-1", sampleRecommendation(), models.AgentInventory)
	require.NoError(t, err)

	rejected, err := store.Reject(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, models.PendingActionRejected, rejected.Status)

	_, err = store.Approve(ctx, created.ID)
	require.ErrorIs(t, err, ErrInvalidTransition)

	_, err = store.Execute(ctx, created.ID, nil)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestStore_ExecutedIsTerminal(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, "thread-1", sampleRecommendation(), models.AgentInventory)
	require.NoError(t, err)
	_, err = store.Approve(ctx, created.ID)
	require.NoError(t, err)
	_, err = store.Execute(ctx, created.ID, nil)
	require.NoError(t, err)

	_, err = store.Reject(ctx, created.ID)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestStore_GetNotFound(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Get(ctx, 999999)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStore_ListByThread(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Create(ctx, "thread-a", sampleRecommendation(), models.AgentInventory)
	require.NoError(t, err)
	_, err = store.Create(ctx, "thread-a", sampleRecommendation(), models.AgentMarketing)
	require.NoError(t, err)
	_, err = store.Create(ctx, "thread-b", sampleRecommendation(), models.AgentSales)
	require.NoError(t, err)

	rows, err := store.ListByThread(ctx, "thread-a")
	require.NoError(t, err)
	require.Len(t, rows, 2)
}

func TestStore_ListPendingExcludesDecided(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	kept, err := store.Create(ctx, "thread-a", sampleRecommendation(), models.AgentInventory)
	require.NoError(t, err)
	decided, err := store.Create(ctx, "thread-a", sampleRecommendation(), models.AgentInventory)
	require.NoError(t, err)
	_, err = store.Reject(ctx, decided.ID)
	require.NoError(t, err)

	rows, err := store.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, kept.ID, rows[0].ID)
}
