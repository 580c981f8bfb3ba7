package orchestrator

import (
	"context"
	"fmt"

	"github.com/opsreasoner/opsreasoner/pkg/models"
)

// ToolInvoker is the executor's view of the tool transport.
type ToolInvoker interface {
	Invoke(ctx context.Context, tool string, args map[string]any) (any, error)
}

// toolForAction maps an approved action's type to the transport tool that
// carries it out. Action types not listed here invoke a tool of the same name.
var toolForAction = map[string]string{
	"restock_item":       "update_inventory",
	"execute_custom_sql": "execute_sql_query",
}

// ExecutionError is an action-executor failure after approval. The pending
// action's status is left untouched so the operator may retry.
type ExecutionError struct {
	ActionID int64
	Tool     string
	Err      error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("execute action %d via %s: %v", e.ActionID, e.Tool, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// Payload returns the structured failure body surfaced to the caller.
func (e *ExecutionError) Payload() map[string]any {
	return map[string]any{
		"success": false,
		"message": fmt.Sprintf("execution of action %d failed", e.ActionID),
		"result":  map[string]any{"error": e.Err.Error(), "details": map[string]any{"tool": e.Tool}},
	}
}

// ActionExecutor dispatches approved pending actions through the tool
// transport. It never transitions status itself; the caller records the
// outcome through the pending-action store.
type ActionExecutor struct {
	transport ToolInvoker
}

// NewActionExecutor builds an ActionExecutor over transport.
func NewActionExecutor(transport ToolInvoker) *ActionExecutor {
	return &ActionExecutor{transport: transport}
}

// Execute runs one approved action and returns the tool's result payload.
// Any transport or tool fault is wrapped as *ExecutionError.
func (x *ActionExecutor) Execute(ctx context.Context, action *models.PendingAction) (map[string]any, error) {
	tool := toolForAction[action.ActionType]
	if tool == "" {
		tool = action.ActionType
	}

	raw, err := x.transport.Invoke(ctx, tool, action.Payload)
	if err != nil {
		return nil, &ExecutionError{ActionID: action.ID, Tool: tool, Err: err}
	}

	result, ok := raw.(map[string]any)
	if !ok {
		result = map[string]any{"result": raw}
	}
	result["tool"] = tool
	return result, nil
}
