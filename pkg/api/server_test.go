package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsreasoner/opsreasoner/pkg/checkpoint"
	"github.com/opsreasoner/opsreasoner/pkg/models"
	"github.com/opsreasoner/opsreasoner/pkg/orchestrator"
	"github.com/opsreasoner/opsreasoner/pkg/pendingaction"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeOrch scripts engine behavior.
type fakeOrch struct {
	runState    *models.GraphState
	runErr      error
	resumeState *models.GraphState
	resumeErr   error
	lastResume  struct {
		threadID string
		approved []int64
		rejected []int64
	}
}

func (f *fakeOrch) Run(context.Context, orchestrator.QueryInput) (*models.GraphState, error) {
	return f.runState, f.runErr
}

func (f *fakeOrch) Resume(_ context.Context, threadID string, approved, rejected []int64) (*models.GraphState, error) {
	f.lastResume.threadID = threadID
	f.lastResume.approved = approved
	f.lastResume.rejected = rejected
	return f.resumeState, f.resumeErr
}

// stubActionStore mirrors the durable store's lifecycle rules in memory.
type stubActionStore struct {
	mu   sync.Mutex
	seq  int64
	rows map[int64]*models.PendingAction
}

func newStubActionStore() *stubActionStore {
	return &stubActionStore{rows: make(map[int64]*models.PendingAction)}
}

func (s *stubActionStore) add(threadID, actionType string, status models.PendingActionStatus) *models.PendingAction {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	row := &models.PendingAction{
		ID:         s.seq,
		Agent:      models.AgentInventory,
		ActionType: actionType,
		Payload:    map[string]any{"product_id": 1},
		Status:     status,
		ThreadID:   threadID,
	}
	s.rows[row.ID] = row
	return row
}

func (s *stubActionStore) Get(_ context.Context, id int64) (*models.PendingAction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[id]
	if !ok {
		return nil, pendingaction.ErrNotFound
	}
	copied := *row
	return &copied, nil
}

func (s *stubActionStore) ListPending(context.Context) ([]*models.PendingAction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.PendingAction
	for _, row := range s.rows {
		if row.Status == models.PendingActionPending {
			copied := *row
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *stubActionStore) ListByThread(_ context.Context, threadID string) ([]*models.PendingAction, error) {
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

func (s *stubActionStore) transition(id int64, from, to models.PendingActionStatus, result map[string]any) (*models.PendingAction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[id]
	if !ok {
		return nil, pendingaction.ErrNotFound
	}
	if row.Status != from {
		return nil, fmt.Errorf("%w: %d is %s", pendingaction.ErrInvalidTransition, id, row.Status)
	}
	row.Status = to
	if result != nil {
		row.ExecutionResult = result
	}
	copied := *row
	return &copied, nil
}

func (s *stubActionStore) Approve(_ context.Context, id int64) (*models.PendingAction, error) {
	return s.transition(id, models.PendingActionPending, models.PendingActionApproved, nil)
}

func (s *stubActionStore) Reject(_ context.Context, id int64) (*models.PendingAction, error) {
	return s.transition(id, models.PendingActionPending, models.PendingActionRejected, nil)
}

func (s *stubActionStore) Execute(_ context.Context, id int64, result map[string]any) (*models.PendingAction, error) {
	return s.transition(id, models.PendingActionApproved, models.PendingActionExecuted, result)
}

type stubExecutor struct {
	result map[string]any
	err    error
	calls  int
}

func (s *stubExecutor) Execute(context.Context, *models.PendingAction) (map[string]any, error) {
	s.calls++
	return s.result, s.err
}

type stubSearcher struct {
	hits []models.MemoryHit
	err  error
}

func (s *stubSearcher) QuerySimilar(context.Context, string, int) ([]models.MemoryHit, error) {
	return s.hits, s.err
}

type stubTools struct {
	result any
	err    error
}

func (s *stubTools) Invoke(context.Context, string, map[string]any) (any, error) {
	return s.result, s.err
}

type fixture struct {
	server   *Server
	orch     *fakeOrch
	store    *stubActionStore
	executor *stubExecutor
}

func newFixture() *fixture {
	f := &fixture{
		orch:     &fakeOrch{},
		store:    newStubActionStore(),
		executor: &stubExecutor{result: map[string]any{"updated": true}},
	}
	f.server = NewServer(f.orch, f.store, f.executor, &stubSearcher{}, &stubTools{},
		WithHealthChecks(map[string]HealthCheck{
			"database": func(context.Context) error { return nil },
		}),
	)
	return f
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func terminalState(threadID string) *models.GraphState {
	s := models.NewGraphState(threadID, "q", nil, nil, 2)
	s.FinalAnswer = "The Widget leads this week."
	s.Diagnostics = []string{"agents consulted: sales"}
	return s
}

func TestQueryEndpointReturnsAnswer(t *testing.T) {
	f := newFixture()
	f.orch.runState = terminalState("thread-1")

	rec := f.do(t, http.MethodPost, "/query", QueryRequest{Question: "What are the top 5 selling products?"})

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[QueryResponse](t, rec)
	assert.Equal(t, "The Widget leads this week.", resp.Answer)
	assert.Equal(t, "thread-1", resp.ThreadID)
	assert.False(t, resp.HITLWaiting)
	assert.NotEmpty(t, resp.Diagnostics)
	assert.NotNil(t, resp.PendingActions)
}

func TestQueryEndpointRequiresQuestion(t *testing.T) {
	f := newFixture()
	rec := f.do(t, http.MethodPost, "/query", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQueryEndpointOrchestratorFailureIs500(t *testing.T) {
	f := newFixture()
	f.orch.runErr = fmt.Errorf("checkpoint store unavailable")

	rec := f.do(t, http.MethodPost, "/query", QueryRequest{Question: "q"})

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "detail")
}

func TestQueryEndpointJoinsPendingActions(t *testing.T) {
	f := newFixture()
	state := terminalState("thread-2")
	state.HITLWait = true
	f.orch.runState = state
	f.store.add("thread-2", "restock_item", models.PendingActionPending)

	rec := f.do(t, http.MethodPost, "/query", QueryRequest{Question: "restock?"})

	resp := decodeBody[QueryResponse](t, rec)
	assert.True(t, resp.HITLWaiting)
	require.Len(t, resp.PendingActions, 1)
	assert.Equal(t, "restock_item", resp.PendingActions[0].ActionType)
	assert.Equal(t, "pending", resp.PendingActions[0].Status)
}

func TestResumeUnknownThreadIs404(t *testing.T) {
	f := newFixture()
	f.orch.resumeErr = checkpoint.ErrNotFound

	rec := f.do(t, http.MethodPost, "/query/resume", ResumeRequest{ThreadID: "nope", ApprovedActionIDs: []int64{1}})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestResumePassesIDsThrough(t *testing.T) {
	f := newFixture()
	f.orch.resumeState = terminalState("thread-3")

	rec := f.do(t, http.MethodPost, "/query/resume", ResumeRequest{
		ThreadID:          "thread-3",
		ApprovedActionIDs: []int64{4, 5},
		RejectedActionIDs: []int64{6},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "thread-3", f.orch.lastResume.threadID)
	assert.Equal(t, []int64{4, 5}, f.orch.lastResume.approved)
	assert.Equal(t, []int64{6}, f.orch.lastResume.rejected)
}

func TestListPendingActions(t *testing.T) {
	f := newFixture()
	f.store.add("t", "restock_item", models.PendingActionPending)
	f.store.add("t", "execute_custom_sql", models.PendingActionExecuted)

	rec := f.do(t, http.MethodGet, "/actions/pending", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[PendingActionsListResponse](t, rec)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "restock_item", resp.Items[0].ActionType)
}

func TestApproveActionWithoutExecution(t *testing.T) {
	f := newFixture()
	row := f.store.add("t", "restock_item", models.PendingActionPending)

	rec := f.do(t, http.MethodPost, fmt.Sprintf("/actions/approve/%d", row.ID),
		ApproveActionRequest{Status: "approved"})

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[ApproveActionResponse](t, rec)
	assert.Equal(t, "approved", resp.Action.Status)
	assert.Zero(t, f.executor.calls)
}

func TestApproveActionExecuteImmediately(t *testing.T) {
	f := newFixture()
	row := f.store.add("t", "restock_item", models.PendingActionPending)

	rec := f.do(t, http.MethodPost, fmt.Sprintf("/actions/approve/%d", row.ID),
		ApproveActionRequest{Status: "approved", ExecuteImmediately: true})

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[ExecuteActionResponse](t, rec)
	assert.True(t, resp.Success)
	assert.Equal(t, "executed", resp.Action.Status)
	assert.Equal(t, 1, f.executor.calls)
}

func TestRejectAction(t *testing.T) {
	f := newFixture()
	row := f.store.add("t", "restock_item", models.PendingActionPending)

	rec := f.do(t, http.MethodPost, fmt.Sprintf("/actions/approve/%d", row.ID),
		ApproveActionRequest{Status: "rejected"})

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[ApproveActionResponse](t, rec)
	assert.Equal(t, "rejected", resp.Action.Status)
}

func TestApproveUnknownActionIs404(t *testing.T) {
	f := newFixture()
	rec := f.do(t, http.MethodPost, "/actions/approve/999", ApproveActionRequest{Status: "approved"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestApproveInvalidStatusIs400(t *testing.T) {
	f := newFixture()
	row := f.store.add("t", "restock_item", models.PendingActionPending)

	rec := f.do(t, http.MethodPost, fmt.Sprintf("/actions/approve/%d", row.ID),
		ApproveActionRequest{Status: "maybe"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestApproveAlreadyExecutedIsConflict(t *testing.T) {
	f := newFixture()
	row := f.store.add("t", "restock_item", models.PendingActionExecuted)

	rec := f.do(t, http.MethodPost, fmt.Sprintf("/actions/approve/%d", row.ID),
		ApproveActionRequest{Status: "approved"})

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestExecuteApprovedAction(t *testing.T) {
	f := newFixture()
	row := f.store.add("t", "restock_item", models.PendingActionApproved)

	rec := f.do(t, http.MethodPost, fmt.Sprintf("/actions/execute/%d", row.ID), map[string]any{})

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[ExecuteActionResponse](t, rec)
	assert.Equal(t, "executed", resp.Action.Status)
}

func TestExecutePendingActionIsConflict(t *testing.T) {
	f := newFixture()
	row := f.store.add("t", "restock_item", models.PendingActionPending)

	rec := f.do(t, http.MethodPost, fmt.Sprintf("/actions/execute/%d", row.ID), map[string]any{})

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Zero(t, f.executor.calls)
}

func TestExecutorFaultKeepsActionApproved(t *testing.T) {
	f := newFixture()
	row := f.store.add("t", "restock_item", models.PendingActionApproved)
	f.executor.err = &orchestrator.ExecutionError{ActionID: row.ID, Tool: "update_inventory", Err: fmt.Errorf("502")}

	rec := f.do(t, http.MethodPost, fmt.Sprintf("/actions/execute/%d", row.ID), map[string]any{})

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)

	stored, err := f.store.Get(context.Background(), row.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PendingActionApproved, stored.Status)
}

func TestSearchIncidents(t *testing.T) {
	f := newFixture()
	searcher := &stubSearcher{hits: []models.MemoryHit{
		{Incident: models.MemoryIncident{ID: "inc-1", Summary: "sales dip"}, Similarity: 0.9},
	}}
	f.server.memory = searcher

	rec := f.do(t, http.MethodGet, "/history/incidents/search?query=sales&k=3", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[IncidentsListResponse](t, rec)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "inc-1", resp.Items[0].ID)
}

func TestSearchIncidentsRequiresQuery(t *testing.T) {
	f := newFixture()
	rec := f.do(t, http.MethodGet, "/history/incidents/search", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListIncidentsViaTool(t *testing.T) {
	f := newFixture()
	f.server.tools = &stubTools{result: map[string]any{
		"incidents": []any{map[string]any{"id": "inc-1", "summary": "sales dip"}},
	}}

	rec := f.do(t, http.MethodGet, "/history/incidents?limit=10", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[IncidentsListResponse](t, rec)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "inc-1", resp.Items[0].ID)
}

func TestHealthEndpoint(t *testing.T) {
	f := newFixture()
	rec := f.do(t, http.MethodGet, "/health", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[HealthResponse](t, rec)
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "healthy", resp.Checks["database"].Status)
}

func TestHealthEndpointDegraded(t *testing.T) {
	f := &fixture{
		orch:     &fakeOrch{},
		store:    newStubActionStore(),
		executor: &stubExecutor{},
	}
	f.server = NewServer(f.orch, f.store, f.executor, &stubSearcher{}, &stubTools{},
		WithHealthChecks(map[string]HealthCheck{
			"database": func(context.Context) error { return fmt.Errorf("connection refused") },
		}),
	)

	rec := f.do(t, http.MethodGet, "/health", nil)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	resp := decodeBody[HealthResponse](t, rec)
	assert.Equal(t, "degraded", resp.Status)
}
