package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsreasoner/opsreasoner/pkg/agent"
	"github.com/opsreasoner/opsreasoner/pkg/checkpoint"
	"github.com/opsreasoner/opsreasoner/pkg/config"
	"github.com/opsreasoner/opsreasoner/pkg/models"
)

// fakePlanner scripts battle plans.
type fakePlanner struct {
	plan   func(state *models.GraphState) []models.AgentTask
	replan func(state *models.GraphState) []models.AgentTask
}

func (f *fakePlanner) Plan(_ context.Context, state *models.GraphState) []models.AgentTask {
	return f.plan(state)
}

func (f *fakePlanner) Replan(_ context.Context, state *models.GraphState) []models.AgentTask {
	if f.replan == nil {
		return nil
	}
	return f.replan(state)
}

// memActionStore is an in-memory pending-action store honoring the same
// lifecycle rules as the durable one.
type memActionStore struct {
	mu   sync.Mutex
	seq  int64
	rows map[int64]*models.PendingAction
}

func newMemActionStore() *memActionStore {
	return &memActionStore{rows: make(map[int64]*models.PendingAction)}
}

func (s *memActionStore) Create(_ context.Context, threadID string, rec models.AgentRecommendation, agentName models.AgentName) (*models.PendingAction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	status := models.PendingActionPending
	if !rec.RequiresApproval {
		status = models.PendingActionApproved
	}
	row := &models.PendingAction{
		ID:         s.seq,
		Agent:      agentName,
		ActionType: rec.ActionType,
		Payload:    rec.Payload,
		Reasoning:  rec.Reasoning,
		Status:     status,
		ThreadID:   threadID,
	}
	s.rows[row.ID] = row
	copied := *row
	return &copied, nil
}

func (s *memActionStore) Get(_ context.Context, id int64) (*models.PendingAction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[id]
	if !ok {
		return nil, fmt.Errorf("pending action %d not found", id)
	}
	copied := *row
	return &copied, nil
}

func (s *memActionStore) Approve(_ context.Context, id int64) (*models.PendingAction, error) {
	return s.transition(id, models.PendingActionPending, models.PendingActionApproved, nil)
}

func (s *memActionStore) Reject(_ context.Context, id int64) (*models.PendingAction, error) {
	return s.transition(id, models.PendingActionPending, models.PendingActionRejected, nil)
}

func (s *memActionStore) Execute(_ context.Context, id int64, result map[string]any) (*models.PendingAction, error) {
	return s.transition(id, models.PendingActionApproved, models.PendingActionExecuted, result)
}

func (s *memActionStore) transition(id int64, from, to models.PendingActionStatus, result map[string]any) (*models.PendingAction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[id]
	if !ok {
		return nil, fmt.Errorf("pending action %d not found", id)
	}
	if row.Status != from {
		return nil, fmt.Errorf("pending action %d is %s, need %s", id, row.Status, from)
	}
	row.Status = to
	if result != nil {
		row.ExecutionResult = result
	}
	copied := *row
	return &copied, nil
}

func (s *memActionStore) ListByThread(_ context.Context, threadID string) ([]*models.PendingAction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.PendingAction
	for _, row := range s.rows {
		if row.ThreadID == threadID {
			copied := *row
			out = append(out, &copied)
		}
	}
	return out, nil
}

// fakeMemory records appends.
type fakeMemory struct {
	appended []models.MemoryIncident
	err      error
}

func (f *fakeMemory) Append(_ context.Context, incident models.MemoryIncident) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.appended = append(f.appended, incident)
	return fmt.Sprintf("inc-%d", len(f.appended)), nil
}

type engineFixture struct {
	engine  *Engine
	actions *memActionStore
	checkp  *checkpoint.MemoryStore
	memory  *fakeMemory
	tools   *fakeInvoker
}

func newEngineFixture(p TaskPlanner, reg *agent.Registry, llm *fakeLLM) *engineFixture {
	f := &engineFixture{
		actions: newMemActionStore(),
		checkp:  checkpoint.NewMemoryStore(),
		memory:  &fakeMemory{},
		tools:   &fakeInvoker{result: map[string]any{"updated": true}},
	}
	guards := config.DefaultGuardrailsConfig()
	guards.RetryDelay = 0
	f.engine = NewEngine(
		p,
		NewWithRetryPolicy(reg, guards.RetryMaxAttempts, guards.RetryDelay),
		NewSynthesizer(llm),
		f.actions,
		f.checkp,
		f.memory,
		NewActionExecutor(f.tools),
		guards,
	)
	return f
}

func singleTaskPlanner(t models.AgentTask) *fakePlanner {
	return &fakePlanner{plan: func(*models.GraphState) []models.AgentTask {
		return []models.AgentTask{t}
	}}
}

func TestRunTopProductsHappyPath(t *testing.T) {
	reg := newStubRegistry(map[models.AgentName]*stubAgent{
		models.AgentSales: {run: constantResult(models.Success(
			map[string]any{"products": []any{
				map[string]any{"name": "Widget", "units": 310},
				map[string]any{"name": "Gadget", "units": 120},
			}},
			[]string{"top products returned: 2"},
		))},
	})
	f := newEngineFixture(
		singleTaskPlanner(models.AgentTask{
			Agent:      models.AgentSales,
			Objective:  "list top sellers",
			Parameters: map[string]any{"mode": "top_products", "query": "What are the top 5 selling products?", "limit": 5},
			Priority:   1,
		}),
		reg,
		llmReturning("The Widget leads with 310 units sold this week."),
	)

	state, err := f.engine.Run(context.Background(), QueryInput{Question: "What are the top 5 selling products?"})

	require.NoError(t, err)
	assert.False(t, state.HITLWait)
	assert.NotEmpty(t, state.ThreadID)
	assert.Contains(t, state.FinalAnswer, "Widget")
	assert.Zero(t, state.ReplanCount)
	assert.NotEmpty(t, state.Diagnostics)
	assert.InDelta(t, 0.6, state.Diagnosis.Confidence, 1e-9)
}

func TestRunConfidentDiagnosisIsRecordedToMemory(t *testing.T) {
	reg := newStubRegistry(map[models.AgentName]*stubAgent{
		models.AgentSales: {run: constantResult(models.Success(
			map[string]any{"revenue": 900.0},
			[]string{"a", "b", "c"},
		))},
	})
	f := newEngineFixture(singleTaskPlanner(task(models.AgentSales, 1)), reg, llmReturning("narrative"))

	state, err := f.engine.Run(context.Background(), QueryInput{Question: "how are sales"})

	require.NoError(t, err)
	assert.InDelta(t, 0.8, state.Diagnosis.Confidence, 1e-9)
	require.Len(t, f.memory.appended, 1)
	assert.Equal(t, "how are sales", f.memory.appended[0].Summary)
	assert.Equal(t, "analysis_shared", f.memory.appended[0].Outcome)
}

func TestRunLowConfidenceSkipsMemory(t *testing.T) {
	reg := newStubRegistry(map[models.AgentName]*stubAgent{
		models.AgentSales: {run: constantResult(models.Success(map[string]any{"revenue": 900.0}, []string{"a"}))},
	})
	f := newEngineFixture(singleTaskPlanner(task(models.AgentSales, 1)), reg, llmReturning("narrative"))

	state, err := f.engine.Run(context.Background(), QueryInput{Question: "how are sales"})

	require.NoError(t, err)
	assert.InDelta(t, 0.6, state.Diagnosis.Confidence, 1e-9)
	assert.Empty(t, f.memory.appended)
}

func TestRunMemoryFailureBecomesWarning(t *testing.T) {
	reg := newStubRegistry(map[models.AgentName]*stubAgent{
		models.AgentSales: {run: constantResult(models.Success(map[string]any{"revenue": 1.0}, []string{"a", "b", "c"}))},
	})
	f := newEngineFixture(singleTaskPlanner(task(models.AgentSales, 1)), reg, llmReturning("narrative"))
	f.memory.err = fmt.Errorf("vector store down")

	state, err := f.engine.Run(context.Background(), QueryInput{Question: "how are sales"})

	require.NoError(t, err)
	require.NotEmpty(t, state.SystemWarnings)
	assert.Contains(t, state.SystemWarnings[len(state.SystemWarnings)-1], "memory append failed")
}

// The comparative-sales path: the specialist declines, one re-plan routes to
// data_analyst, whose SQL proposal suspends the run for approval; resuming
// with the approval executes the statement through the transport.
func TestRunCannotHandleRoutesToAnalystThenHITLRoundTrip(t *testing.T) {
	var analystRuns int
	reg := newStubRegistry(map[models.AgentName]*stubAgent{
		models.AgentSales: {run: constantResult(models.CannotHandle(
			"comparative analysis needs data_analyst", models.AgentDataAnalyst))},
		models.AgentDataAnalyst: {run: func(_ context.Context, task models.AgentTask, _ agent.RunContext) models.AgentResult {
			analystRuns++
			return models.Success(
				map[string]any{"generated_sql": "SELECT day, SUM(total) FROM orders GROUP BY day"},
				[]string{"generated a SQL statement pending approval"},
				models.AgentRecommendation{
					ActionType:       "execute_custom_sql",
					Payload:          map[string]any{"sql": "SELECT day, SUM(total) FROM orders GROUP BY day"},
					Reasoning:        "free-form analytical question answered with generated SQL",
					RequiresApproval: true,
				},
			)
		}},
	})
	f := newEngineFixture(singleTaskPlanner(task(models.AgentSales, 1)), reg, llmReturning("Comparison prepared."))
	f.tools.result = map[string]any{"rows": []any{map[string]any{"day": "2024-06-01"}}}

	state, err := f.engine.Run(context.Background(), QueryInput{Question: "Compare yesterday's sales to last week"})
	require.NoError(t, err)

	assert.Equal(t, 1, analystRuns)
	assert.Equal(t, 1, state.ReplanCount)
	assert.False(t, state.RouteToAnalyst)
	assert.True(t, state.HITLWait)
	require.Len(t, state.HITLPendingIDs, 1)

	// The proposal is durably pending before the run returns.
	row, err := f.actions.Get(context.Background(), state.HITLPendingIDs[0])
	require.NoError(t, err)
	assert.Equal(t, models.PendingActionPending, row.Status)
	assert.Equal(t, "execute_custom_sql", row.ActionType)
	assert.Equal(t, models.AgentDataAnalyst, row.Agent)

	// The checkpoint is loadable under the thread id.
	_, err = f.checkp.Load(context.Background(), state.ThreadID)
	require.NoError(t, err)

	// Approve out-of-band (the HTTP layer's job), then resume.
	_, err = f.actions.Approve(context.Background(), row.ID)
	require.NoError(t, err)

	resumed, err := f.engine.Resume(context.Background(), state.ThreadID, []int64{row.ID}, nil)
	require.NoError(t, err)

	assert.True(t, resumed.HITLResumed)
	assert.False(t, resumed.HITLWait)
	require.Len(t, f.tools.calls, 1)
	assert.Equal(t, "execute_sql_query", f.tools.calls[0].Tool)

	final, err := f.actions.Get(context.Background(), row.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PendingActionExecuted, final.Status)

	// The checkpoint is consumed by the resume.
	_, err = f.checkp.Load(context.Background(), state.ThreadID)
	assert.ErrorIs(t, err, checkpoint.ErrNotFound)
}

func TestResumeSkipsNonApprovedAndRejectedIDs(t *testing.T) {
	reg := newStubRegistry(map[models.AgentName]*stubAgent{
		models.AgentInventory: {run: constantResult(models.Success(
			map[string]any{"products": []any{map[string]any{"product_id": 1.0}, map[string]any{"product_id": 2.0}}},
			[]string{"products in scope: 2"},
			models.AgentRecommendation{ActionType: "restock_item", Payload: map[string]any{"product_id": 1}, RequiresApproval: true},
			models.AgentRecommendation{ActionType: "restock_item", Payload: map[string]any{"product_id": 2}, RequiresApproval: true},
		))},
	})
	f := newEngineFixture(singleTaskPlanner(task(models.AgentInventory, 1)), reg, llmReturning("Two items need restocking."))

	state, err := f.engine.Run(context.Background(), QueryInput{Question: "Which products need restocking?"})
	require.NoError(t, err)
	require.Len(t, state.HITLPendingIDs, 2)

	first, second := state.HITLPendingIDs[0], state.HITLPendingIDs[1]
	_, err = f.actions.Approve(context.Background(), first)
	require.NoError(t, err)
	_, err = f.actions.Reject(context.Background(), second)
	require.NoError(t, err)

	resumed, err := f.engine.Resume(context.Background(), state.ThreadID, []int64{first, second}, []int64{second})
	require.NoError(t, err)

	// Only the approved id executes, even though the rejected one was also
	// listed as approved by the caller.
	require.Len(t, f.tools.calls, 1)
	assert.Equal(t, []int64{first}, resumed.HITLApprovedIDs)

	row, err := f.actions.Get(context.Background(), second)
	require.NoError(t, err)
	assert.Equal(t, models.PendingActionRejected, row.Status)
}

func TestResumeExecutorFaultLeavesActionApproved(t *testing.T) {
	reg := newStubRegistry(map[models.AgentName]*stubAgent{
		models.AgentInventory: {run: constantResult(models.Success(
			map[string]any{"products": []any{map[string]any{"product_id": 1.0}}},
			nil,
			models.AgentRecommendation{ActionType: "restock_item", Payload: map[string]any{"product_id": 1}, RequiresApproval: true},
		))},
	})
	f := newEngineFixture(singleTaskPlanner(task(models.AgentInventory, 1)), reg, llmReturning("restock proposed"))

	state, err := f.engine.Run(context.Background(), QueryInput{Question: "Which products need restocking?"})
	require.NoError(t, err)
	id := state.HITLPendingIDs[0]
	_, err = f.actions.Approve(context.Background(), id)
	require.NoError(t, err)

	f.tools.err = fmt.Errorf("transport 502")
	resumed, err := f.engine.Resume(context.Background(), state.ThreadID, []int64{id}, nil)
	require.NoError(t, err)

	row, err := f.actions.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.PendingActionApproved, row.Status)
	assert.Empty(t, resumed.HITLApprovedIDs)
	assert.NotEmpty(t, resumed.SystemWarnings)
}

func TestRunAllAgentsFailingStaysBounded(t *testing.T) {
	reg := newStubRegistry(map[models.AgentName]*stubAgent{
		models.AgentSales:       {run: constantResult(models.Failure("unauthorized"))},
		models.AgentDataAnalyst: {run: constantResult(models.Failure("unauthorized"))},
	})
	p := &fakePlanner{
		plan: func(*models.GraphState) []models.AgentTask {
			return []models.AgentTask{task(models.AgentSales, 1)}
		},
		replan: func(*models.GraphState) []models.AgentTask {
			return []models.AgentTask{task(models.AgentDataAnalyst, 1)}
		},
	}
	f := newEngineFixture(p, reg, llmFailing())

	state, err := f.engine.Run(context.Background(), QueryInput{Question: "how are sales"})

	require.NoError(t, err)
	assert.Equal(t, state.MaxReplans, state.ReplanCount)
	assert.False(t, state.HITLWait)
	assert.NotEmpty(t, state.SystemWarnings)
	assert.Contains(t, state.FinalAnswer, "warning")
	assert.NotEmpty(t, state.Diagnostics)
}

func TestResumeUnknownThreadReturnsNotFound(t *testing.T) {
	reg := newStubRegistry(nil)
	f := newEngineFixture(&fakePlanner{plan: func(*models.GraphState) []models.AgentTask { return nil }}, reg, llmFailing())

	_, err := f.engine.Resume(context.Background(), "nope", []int64{1}, nil)
	assert.ErrorIs(t, err, checkpoint.ErrNotFound)
}

// A reloaded checkpoint synthesizes identically to the original state.
func TestCheckpointedStateReproducesSynthesis(t *testing.T) {
	store := checkpoint.NewMemoryStore()
	synth := NewSynthesizer(llmFailing())

	state := stateWithPlan()
	state.AgentInsights[models.AgentSales] = []string{"orders placed: 41"}
	state.AgentFindings[models.AgentSales] = map[string]any{"order_count": 41}
	require.NoError(t, store.Save(context.Background(), state))

	loaded, err := store.Load(context.Background(), state.ThreadID)
	require.NoError(t, err)

	synth.Synthesize(context.Background(), state)
	synth.Synthesize(context.Background(), loaded)

	assert.Equal(t, state.FinalAnswer, loaded.FinalAnswer)
	assert.Equal(t, state.Diagnosis, loaded.Diagnosis)
}
