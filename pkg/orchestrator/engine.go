package orchestrator

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/opsreasoner/opsreasoner/pkg/agent"
	"github.com/opsreasoner/opsreasoner/pkg/checkpoint"
	"github.com/opsreasoner/opsreasoner/pkg/config"
	"github.com/opsreasoner/opsreasoner/pkg/models"
	"github.com/opsreasoner/opsreasoner/pkg/planner"
	"github.com/opsreasoner/opsreasoner/pkg/telemetry"
)

const rootCauseMaxLen = 500

// TaskPlanner produces battle plans. Both methods fall back to deterministic
// task lists internally and therefore never fail.
type TaskPlanner interface {
	Plan(ctx context.Context, state *models.GraphState) []models.AgentTask
	Replan(ctx context.Context, state *models.GraphState) []models.AgentTask
}

// ActionStore is the engine's view of the pending-action store.
type ActionStore interface {
	Create(ctx context.Context, threadID string, rec models.AgentRecommendation, agentName models.AgentName) (*models.PendingAction, error)
	Get(ctx context.Context, id int64) (*models.PendingAction, error)
	Execute(ctx context.Context, id int64, result map[string]any) (*models.PendingAction, error)
	ListByThread(ctx context.Context, threadID string) ([]*models.PendingAction, error)
}

// MemoryAppender records post-run incidents.
type MemoryAppender interface {
	Append(ctx context.Context, incident models.MemoryIncident) (string, error)
}

// ActionRunner dispatches one approved action via the tool transport.
type ActionRunner interface {
	Execute(ctx context.Context, action *models.PendingAction) (map[string]any, error)
}

// TimelineRecorder appends audit-trail rows for a run. Optional; recording
// failures never fail the run.
type TimelineRecorder interface {
	Record(ctx context.Context, event models.TimelineEvent) error
}

// QueryInput is one user-initiated run.
type QueryInput struct {
	Question            string
	UserID              string
	Metadata            map[string]any
	ConversationHistory []string

	// ThreadID pins the run's identifier; empty means mint a fresh one.
	ThreadID string

	// Deadline bounds the whole run. Zero means no run-level deadline; tool
	// calls still carry their own per-call timeouts.
	Deadline time.Duration
}

// Engine drives one run through the plan → dispatch → evaluate →
// (re-plan) → synthesize → HITL-gate → record pipeline, and resumes runs
// suspended at the gate.
type Engine struct {
	planner     TaskPlanner
	dispatcher  *Dispatcher
	synthesizer *Synthesizer
	actions     ActionStore
	checkpoints checkpoint.Store
	memory      MemoryAppender
	executor    ActionRunner
	timeline    TimelineRecorder
	guards      *config.GuardrailsConfig
	metrics     *telemetry.Metrics
}

// EngineOption customizes an Engine at construction.
type EngineOption func(*Engine)

// WithTimeline enables dispatch audit-trail recording.
func WithTimeline(rec TimelineRecorder) EngineOption {
	return func(e *Engine) { e.timeline = rec }
}

// WithMetrics enables run counters and histograms.
func WithMetrics(m *telemetry.Metrics) EngineOption {
	return func(e *Engine) { e.metrics = m }
}

// NewEngine wires the engine from its collaborators. guards must be non-nil.
func NewEngine(
	planner TaskPlanner,
	dispatcher *Dispatcher,
	synthesizer *Synthesizer,
	actions ActionStore,
	checkpoints checkpoint.Store,
	memory MemoryAppender,
	executor ActionRunner,
	guards *config.GuardrailsConfig,
	opts ...EngineOption,
) *Engine {
	e := &Engine{
		planner:     planner,
		dispatcher:  dispatcher,
		synthesizer: synthesizer,
		actions:     actions,
		checkpoints: checkpoints,
		memory:      memory,
		executor:    executor,
		guards:      guards,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes one full query-driven run. It returns the terminal state:
// either a populated diagnosis, or HITLWait=true with the run checkpointed
// under its thread id awaiting a Resume call.
func (e *Engine) Run(ctx context.Context, in QueryInput) (*models.GraphState, error) {
	threadID := in.ThreadID
	if threadID == "" {
		threadID = uuid.NewString()
	}

	if in.Deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, in.Deadline)
		defer cancel()
	}

	state := models.NewGraphState(threadID, in.Question, in.ConversationHistory, in.Metadata, e.guards.MaxReplans)
	if in.UserID != "" {
		if state.Metadata == nil {
			state.Metadata = map[string]any{}
		}
		state.Metadata["user_id"] = in.UserID
	}

	ctx, span := telemetry.StartSpan(ctx, "orchestrator.run")
	defer span.End()

	for {
		if state.NeedsReplan {
			state.NeedsReplan = false
			if state.RouteToAnalyst {
				// Analyst routing: the declined query goes to data_analyst
				// directly, no second LLM planning pass.
				state.RouteToAnalyst = false
				state.BattlePlan = []models.AgentTask{planner.AnalystTask(state.UserQuery)}
			} else {
				state.BattlePlan = e.planner.Replan(ctx, state)
			}
			e.recordEvent(ctx, state, "", models.EventReplan, state.ReplanReason)
			if e.metrics != nil {
				e.metrics.Replans.Inc()
			}
		} else {
			state.BattlePlan = e.planner.Plan(ctx, state)
		}

		e.dispatch(ctx, state)

		// A fired run-level deadline skips straight to synthesis over
		// whatever state exists.
		if ctx.Err() != nil {
			state.AddSystemWarning("run deadline exceeded; synthesizing from partial results")
			break
		}

		decision := Evaluate(state)
		if decision.Synthesize {
			break
		}
		state.ReplanCount++
		state.NeedsReplan = true
		state.ReplanReason = decision.Reason
		state.RouteToAnalyst = decision.RouteToAnalyst
	}

	e.synthesizer.Synthesize(ctx, state)

	if state.HITLWait {
		if err := e.suspendForApproval(ctx, state); err != nil {
			return nil, err
		}
		state.Diagnostics = buildDiagnostics(state)
		return state, nil
	}

	e.recordMemory(ctx, state)
	state.Diagnostics = buildDiagnostics(state)
	return state, nil
}

// dispatch runs one fan-out cycle and records its timeline events.
func (e *Engine) dispatch(ctx context.Context, state *models.GraphState) {
	for _, task := range state.BattlePlan {
		e.recordEvent(ctx, state, task.Agent, models.EventTaskAssigned, task.Objective)
	}

	rctx := agent.RunContext{
		UserQuery:        state.UserQuery,
		ConversationTail: conversationTail(state.ConversationHistory),
		MemoryHits:       state.MemoryContext,
		Produced:         producedSnapshot(state),
	}

	start := time.Now()
	e.dispatcher.Run(ctx, state, rctx)
	elapsed := time.Since(start)

	for _, task := range state.BattlePlan {
		eventType := models.EventTaskCompleted
		if !state.HasAgentRun(task.Agent) && !declined(state, task.Agent) {
			eventType = models.EventTaskFailed
		}
		e.recordEvent(ctx, state, task.Agent, eventType, "")
		if e.metrics != nil {
			e.metrics.ObserveTask(string(task.Agent), string(eventType), elapsed)
		}
	}
}

// suspendForApproval persists one pending-action row per proposal,
// checkpoints the full state, and leaves the run waiting for Resume.
func (e *Engine) suspendForApproval(ctx context.Context, state *models.GraphState) error {
	for _, rec := range state.PendingActionProposals {
		row, err := e.actions.Create(ctx, state.ThreadID, rec, proposingAgent(state, rec))
		if err != nil {
			return fmt.Errorf("persist pending action: %w", err)
		}
		state.HITLPendingIDs = append(state.HITLPendingIDs, row.ID)
	}

	if err := e.checkpoints.Save(ctx, state); err != nil {
		return fmt.Errorf("checkpoint %s: %w", state.ThreadID, err)
	}
	e.recordEvent(ctx, state, "", models.EventHITLWait,
		fmt.Sprintf("%d actions awaiting approval", len(state.HITLPendingIDs)))
	if e.metrics != nil {
		e.metrics.HITLPauses.Inc()
	}
	return nil
}

// Resume reloads a suspended run, executes the approved subset of its
// pending actions, and completes the run. Returns checkpoint.ErrNotFound
// when threadID has no checkpoint.
func (e *Engine) Resume(ctx context.Context, threadID string, approvedIDs, rejectedIDs []int64) (*models.GraphState, error) {
	state, err := e.checkpoints.Load(ctx, threadID)
	if err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartSpan(ctx, "orchestrator.resume")
	defer span.End()

	// Drop the suspended-era id lists; HITLApprovedIDs is repopulated below
	// with the ids that actually execute.
	state.HITLPendingIDs = nil
	state.HITLApprovedIDs = nil
	state.HITLRejectedIDs = nil

	rejected := make(map[int64]bool, len(rejectedIDs))
	for _, id := range rejectedIDs {
		rejected[id] = true
	}

	for _, id := range approvedIDs {
		if rejected[id] {
			continue
		}
		e.executeApproved(ctx, state, id)
	}

	state.HITLResumed = true
	state.HITLWait = false
	e.recordEvent(ctx, state, "", models.EventHITLResumed, "")

	e.recordMemory(ctx, state)

	if err := e.checkpoints.Delete(ctx, threadID); err != nil {
		state.AddSystemWarning("checkpoint cleanup failed: " + err.Error())
	}
	state.Diagnostics = buildDiagnostics(state)
	return state, nil
}

// executeApproved runs one approved action. A stored status other than
// approved skips execution; an executor fault leaves the status untouched so
// the operator may retry.
func (e *Engine) executeApproved(ctx context.Context, state *models.GraphState, id int64) {
	row, err := e.actions.Get(ctx, id)
	if err != nil {
		state.AddSystemWarning(fmt.Sprintf("action %d: %v", id, err))
		return
	}
	if row.Status != models.PendingActionApproved {
		state.AddSystemWarning(fmt.Sprintf("action %d is %s, not approved; skipping", id, row.Status))
		return
	}

	result, err := e.executor.Execute(ctx, row)
	if err != nil {
		state.AddSystemWarning(fmt.Sprintf("action %d: %v", id, err))
		return
	}
	if _, err := e.actions.Execute(ctx, id, result); err != nil {
		state.AddSystemWarning(fmt.Sprintf("action %d executed but not recorded: %v", id, err))
		return
	}
	if e.metrics != nil {
		e.metrics.ActionsExecuted.WithLabelValues(row.ActionType).Inc()
	}
	state.HITLApprovedIDs = append(state.HITLApprovedIDs, id)
}

// recordMemory appends a post-run incident when the diagnosis is confident
// enough. An append failure is swallowed to a warning.
func (e *Engine) recordMemory(ctx context.Context, state *models.GraphState) {
	if e.memory == nil || state.Diagnosis.Confidence <= e.guards.MemorySaveConfidenceThreshold {
		return
	}

	outcome := "analysis_shared"
	if state.HITLResumed || len(state.PendingActionProposals) > 0 {
		outcome = "pending_approval"
	}

	rootCause := state.Diagnosis.Narrative
	if len(rootCause) > rootCauseMaxLen {
		rootCause = rootCause[:rootCauseMaxLen]
	}

	if _, err := e.memory.Append(ctx, models.MemoryIncident{
		Summary:   state.UserQuery,
		RootCause: rootCause,
		Outcome:   outcome,
	}); err != nil {
		state.AddSystemWarning("memory append failed: " + err.Error())
	}
}

// recordEvent appends one timeline row; the recorder assigns the sequence
// number. Failures downgrade to warnings.
func (e *Engine) recordEvent(ctx context.Context, state *models.GraphState, agentName models.AgentName, eventType models.TimelineEventType, content string) {
	if e.timeline == nil {
		return
	}
	err := e.timeline.Record(ctx, models.TimelineEvent{
		ID:        uuid.NewString(),
		ThreadID:  state.ThreadID,
		Agent:     agentName,
		EventType: eventType,
		Content:   content,
	})
	if err != nil {
		state.AddSystemWarning("timeline record failed: " + err.Error())
	}
}

// buildDiagnostics renders the always-non-empty diagnostics list: which
// agents ran, whether approval is pending, how many warnings occurred.
func buildDiagnostics(state *models.GraphState) []string {
	diags := []string{}

	if names := ranAgents(state); len(names) > 0 {
		diags = append(diags, "agents consulted: "+strings.Join(names, ", "))
	} else {
		diags = append(diags, "no agents produced results")
	}
	if state.ReplanCount > 0 {
		diags = append(diags, fmt.Sprintf("planning passes: %d", state.ReplanCount+1))
	}
	if state.HITLWait {
		diags = append(diags, fmt.Sprintf("human approval pending for %d proposed actions", len(state.HITLPendingIDs)))
	}
	if state.HITLResumed {
		diags = append(diags, fmt.Sprintf("resumed after approval; %d actions executed", len(state.HITLApprovedIDs)))
	}
	if n := len(state.SystemWarnings); n > 0 {
		diags = append(diags, fmt.Sprintf("%d warnings", n))
	}
	return diags
}

func ranAgents(state *models.GraphState) []string {
	seen := make(map[string]bool)
	var names []string
	for name := range state.AgentFindings {
		if !seen[string(name)] {
			seen[string(name)] = true
			names = append(names, string(name))
		}
	}
	for _, entry := range state.CannotHandleAgents {
		label := string(entry.Agent) + " (declined)"
		if !seen[label] {
			seen[label] = true
			names = append(names, label)
		}
	}
	sort.Strings(names)
	return names
}

// proposingAgent attributes a proposal back to the agent that owns its
// action type. Falls back to the first agent that ran.
func proposingAgent(state *models.GraphState, rec models.AgentRecommendation) models.AgentName {
	switch rec.ActionType {
	case "execute_custom_sql":
		return models.AgentDataAnalyst
	case "restock_item", "update_inventory":
		return models.AgentInventory
	case "update_campaign_status", "update_campaign_budget":
		return models.AgentMarketing
	case "escalate_ticket", "close_ticket", "prioritize_ticket":
		return models.AgentSupport
	}
	// Arbitrary-but-stable fallback: the first agent that ran.
	if names := ranAgents(state); len(names) > 0 {
		return models.AgentName(strings.TrimSuffix(names[0], " (declined)"))
	}
	return models.AgentDataAnalyst
}

func declined(state *models.GraphState, name models.AgentName) bool {
	for _, entry := range state.CannotHandleAgents {
		if entry.Agent == name {
			return true
		}
	}
	return false
}

func conversationTail(history []string) []string {
	const tail = 3
	if len(history) <= tail {
		return history
	}
	return history[len(history)-tail:]
}

// producedSnapshot rebuilds an AgentResult view of what prior dispatch
// cycles stored, so later-cycle agents can see earlier findings.
func producedSnapshot(state *models.GraphState) map[models.AgentName]models.AgentResult {
	if len(state.AgentFindings) == 0 && len(state.AgentInsights) == 0 {
		return nil
	}
	out := make(map[models.AgentName]models.AgentResult)
	for name, findings := range state.AgentFindings {
		out[name] = models.AgentResult{
			Status:   models.ResultSuccess,
			Findings: findings,
			Insights: state.AgentInsights[name],
		}
	}
	return out
}
