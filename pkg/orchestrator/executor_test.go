package orchestrator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsreasoner/opsreasoner/pkg/models"
)

// fakeInvoker records invocations and returns scripted results.
type fakeInvoker struct {
	calls  []struct {
		Tool string
		Args map[string]any
	}
	result any
	err    error
}

func (f *fakeInvoker) Invoke(_ context.Context, tool string, args map[string]any) (any, error) {
	f.calls = append(f.calls, struct {
		Tool string
		Args map[string]any
	}{tool, args})
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func TestExecutorMapsRestockToUpdateInventory(t *testing.T) {
	transport := &fakeInvoker{result: map[string]any{"updated": true}}
	x := NewActionExecutor(transport)

	result, err := x.Execute(context.Background(), &models.PendingAction{
		ID:         11,
		ActionType: "restock_item",
		Payload:    map[string]any{"product_id": 42, "quantity": 100},
	})

	require.NoError(t, err)
	require.Len(t, transport.calls, 1)
	assert.Equal(t, "update_inventory", transport.calls[0].Tool)
	assert.Equal(t, 42, transport.calls[0].Args["product_id"])
	assert.Equal(t, true, result["updated"])
	assert.Equal(t, "update_inventory", result["tool"])
}

func TestExecutorMapsCustomSQLToExecuteSQLQuery(t *testing.T) {
	transport := &fakeInvoker{result: map[string]any{"rows": []any{}}}
	x := NewActionExecutor(transport)

	_, err := x.Execute(context.Background(), &models.PendingAction{
		ID:         12,
		ActionType: "execute_custom_sql",
		Payload:    map[string]any{"sql": "SELECT 1"},
	})

	require.NoError(t, err)
	assert.Equal(t, "execute_sql_query", transport.calls[0].Tool)
}

func TestExecutorPassesUnknownActionTypeThrough(t *testing.T) {
	transport := &fakeInvoker{result: map[string]any{"ok": true}}
	x := NewActionExecutor(transport)

	_, err := x.Execute(context.Background(), &models.PendingAction{
		ID:         13,
		ActionType: "escalate_ticket",
		Payload:    map[string]any{"ticket_id": 7},
	})

	require.NoError(t, err)
	assert.Equal(t, "escalate_ticket", transport.calls[0].Tool)
}

func TestExecutorWrapsTransportFaults(t *testing.T) {
	transport := &fakeInvoker{err: errors.New("connection refused")}
	x := NewActionExecutor(transport)

	_, err := x.Execute(context.Background(), &models.PendingAction{ID: 14, ActionType: "restock_item"})

	var execErr *ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, int64(14), execErr.ActionID)
	assert.Equal(t, "update_inventory", execErr.Tool)

	payload := execErr.Payload()
	assert.Equal(t, false, payload["success"])
	assert.NotEmpty(t, payload["message"])
}
