package orchestrator

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsreasoner/opsreasoner/pkg/agent"
	"github.com/opsreasoner/opsreasoner/pkg/models"
)

// stubAgent is a scripted Agent for dispatcher and engine tests.
type stubAgent struct {
	meta models.AgentMetadata
	run  func(ctx context.Context, task models.AgentTask, rctx agent.RunContext) models.AgentResult
}

func (s *stubAgent) Metadata() models.AgentMetadata { return s.meta }

func (s *stubAgent) Run(ctx context.Context, task models.AgentTask, rctx agent.RunContext) models.AgentResult {
	return s.run(ctx, task, rctx)
}

func newStubRegistry(agents map[models.AgentName]*stubAgent) *agent.Registry {
	m := make(map[models.AgentName]agent.Agent, len(agents))
	for name, a := range agents {
		a.meta = models.AgentMetadata{Name: name, DisplayName: string(name), Description: string(name)}
		m[name] = a
	}
	return agent.NewRegistry(m)
}

func constantResult(r models.AgentResult) func(context.Context, models.AgentTask, agent.RunContext) models.AgentResult {
	return func(context.Context, models.AgentTask, agent.RunContext) models.AgentResult { return r }
}

func task(name models.AgentName, priority int) models.AgentTask {
	return models.AgentTask{
		Agent:      name,
		Objective:  "test objective",
		Parameters: map[string]any{"mode": "summary", "query": "q"},
		Priority:   priority,
	}
}

func TestDispatcherFoldsSuccessIntoState(t *testing.T) {
	reg := newStubRegistry(map[models.AgentName]*stubAgent{
		models.AgentSales: {run: constantResult(models.Success(
			map[string]any{"revenue": 900.0},
			[]string{"revenue for the window: 900"},
		))},
	})
	d := NewWithRetryPolicy(reg, 2, 0)
	state := stateWithPlan(task(models.AgentSales, 1))

	d.Run(context.Background(), state, agent.RunContext{UserQuery: state.UserQuery})

	require.Contains(t, state.AgentFindings, models.AgentSales)
	assert.Equal(t, 900.0, state.AgentFindings[models.AgentSales]["revenue"])
	assert.Equal(t, []string{"revenue for the window: 900"}, state.AgentInsights[models.AgentSales])
}

func TestDispatcherRetriesNeedsRetryThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	reg := newStubRegistry(map[models.AgentName]*stubAgent{
		models.AgentSales: {run: func(context.Context, models.AgentTask, agent.RunContext) models.AgentResult {
			if calls.Add(1) == 1 {
				return models.NeedsRetry("transient transport fault")
			}
			return models.Success(map[string]any{"revenue": 1.0}, nil)
		}},
	})
	d := NewWithRetryPolicy(reg, 2, 0)
	state := stateWithPlan(task(models.AgentSales, 1))

	d.Run(context.Background(), state, agent.RunContext{})

	assert.Equal(t, int32(2), calls.Load())
	assert.Contains(t, state.AgentFindings, models.AgentSales)
	assert.Empty(t, state.SystemWarnings)
}

func TestDispatcherExhaustedRetriesBecomeWarning(t *testing.T) {
	var calls atomic.Int32
	reg := newStubRegistry(map[models.AgentName]*stubAgent{
		models.AgentSales: {run: func(context.Context, models.AgentTask, agent.RunContext) models.AgentResult {
			calls.Add(1)
			return models.NeedsRetry("still down")
		}},
	})
	d := NewWithRetryPolicy(reg, 2, 0)
	state := stateWithPlan(task(models.AgentSales, 1))

	d.Run(context.Background(), state, agent.RunContext{})

	assert.Equal(t, int32(2), calls.Load())
	assert.Empty(t, state.AgentFindings)
	require.Len(t, state.SystemWarnings, 1)
	assert.Contains(t, state.SystemWarnings[0], "still down")
}

func TestDispatcherTerminalFailureIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	reg := newStubRegistry(map[models.AgentName]*stubAgent{
		models.AgentSales: {run: func(context.Context, models.AgentTask, agent.RunContext) models.AgentResult {
			calls.Add(1)
			return models.Failure("tool rejected the call")
		}},
	})
	d := NewWithRetryPolicy(reg, 2, 0)
	state := stateWithPlan(task(models.AgentSales, 1))

	d.Run(context.Background(), state, agent.RunContext{})

	assert.Equal(t, int32(1), calls.Load())
	require.Len(t, state.SystemWarnings, 1)
}

func TestDispatcherPanicIsRecoveredAndRetried(t *testing.T) {
	var calls atomic.Int32
	reg := newStubRegistry(map[models.AgentName]*stubAgent{
		models.AgentSales: {run: func(context.Context, models.AgentTask, agent.RunContext) models.AgentResult {
			if calls.Add(1) == 1 {
				panic("nil map write")
			}
			return models.Success(map[string]any{"revenue": 5.0}, nil)
		}},
	})
	d := NewWithRetryPolicy(reg, 2, 0)
	state := stateWithPlan(task(models.AgentSales, 1))

	d.Run(context.Background(), state, agent.RunContext{})

	assert.Equal(t, int32(2), calls.Load())
	assert.Contains(t, state.AgentFindings, models.AgentSales)
}

func TestDispatcherMissingAgentIsSyntheticFailure(t *testing.T) {
	reg := newStubRegistry(nil)
	d := NewWithRetryPolicy(reg, 2, 0)
	state := stateWithPlan(task("nonexistent", 1))

	d.Run(context.Background(), state, agent.RunContext{})

	require.Len(t, state.SystemWarnings, 1)
	assert.Contains(t, state.SystemWarnings[0], "no agent registered")
}

func TestDispatcherCannotHandleIsRecorded(t *testing.T) {
	reg := newStubRegistry(map[models.AgentName]*stubAgent{
		models.AgentSales: {run: constantResult(models.CannotHandle("comparative analysis", models.AgentDataAnalyst))},
	})
	d := NewWithRetryPolicy(reg, 2, 0)
	state := stateWithPlan(task(models.AgentSales, 1))

	d.Run(context.Background(), state, agent.RunContext{})

	require.Len(t, state.CannotHandleAgents, 1)
	assert.Equal(t, models.AgentSales, state.CannotHandleAgents[0].Agent)
	assert.Equal(t, "comparative analysis", state.CannotHandleAgents[0].Reason)
}

func TestDispatcherHistorianMatchesFeedMemoryContext(t *testing.T) {
	reg := newStubRegistry(map[models.AgentName]*stubAgent{
		models.AgentHistorian: {run: constantResult(models.Success(
			map[string]any{"matches": []any{
				map[string]any{"id": "inc-1", "summary": "sales dip after campaign pause", "similarity": 0.91},
			}},
			[]string{"similar prior incidents found: 1"},
		))},
	})
	d := NewWithRetryPolicy(reg, 2, 0)
	state := stateWithPlan(task(models.AgentHistorian, 1))

	d.Run(context.Background(), state, agent.RunContext{})

	require.Len(t, state.MemoryContext, 1)
	assert.Equal(t, "inc-1", state.MemoryContext[0].Incident.ID)
	assert.InDelta(t, 0.91, state.MemoryContext[0].Similarity, 1e-9)
}

func TestDispatcherFoldOrderIsDeterministic(t *testing.T) {
	reg := newStubRegistry(map[models.AgentName]*stubAgent{
		models.AgentSales:     {run: constantResult(models.Failure("a"))},
		models.AgentMarketing: {run: constantResult(models.Failure("b"))},
		models.AgentSupport:   {run: constantResult(models.Failure("c"))},
	})
	d := NewWithRetryPolicy(reg, 1, 0)

	for i := 0; i < 5; i++ {
		state := stateWithPlan(
			task(models.AgentSupport, 1),
			task(models.AgentSales, 2),
			task(models.AgentMarketing, 3),
		)
		d.Run(context.Background(), state, agent.RunContext{})
		assert.Equal(t, []string{
			"marketing: b",
			"sales: a",
			"support: c",
		}, state.SystemWarnings)
	}
}
