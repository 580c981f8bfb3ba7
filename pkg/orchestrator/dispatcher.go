// Package orchestrator implements the state machine that turns a battle
// plan into a diagnosis: dispatch agents concurrently, evaluate the result,
// re-plan or synthesize, gate mutating recommendations behind human
// approval, and record confident diagnoses to memory.
package orchestrator

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/opsreasoner/opsreasoner/pkg/agent"
	"github.com/opsreasoner/opsreasoner/pkg/models"
)

const (
	defaultMaxAttempts = 2
	defaultRetryDelay  = time.Second
)

// AgentLookup is the dispatcher's view of the agent registry.
type AgentLookup interface {
	Get(name models.AgentName) (agent.Agent, error)
}

// Dispatcher fans a battle plan out to its agents concurrently, waits for
// every task, and folds the results into GraphState through a single-writer
// reducer applied in stable agent-name order.
type Dispatcher struct {
	registry    AgentLookup
	maxAttempts int
	retryDelay  time.Duration
}

// New builds a Dispatcher over registry with the default retry policy
// (2 attempts, 1s apart).
func New(registry AgentLookup) *Dispatcher {
	return &Dispatcher{registry: registry, maxAttempts: defaultMaxAttempts, retryDelay: defaultRetryDelay}
}

// NewWithRetryPolicy builds a Dispatcher with an explicit retry policy.
func NewWithRetryPolicy(registry AgentLookup, maxAttempts int, retryDelay time.Duration) *Dispatcher {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Dispatcher{registry: registry, maxAttempts: maxAttempts, retryDelay: retryDelay}
}

type taskOutcome struct {
	task   models.AgentTask
	result models.AgentResult
}

// Run dispatches every task in the plan concurrently, waits for all of them,
// and folds the outcomes into state in deterministic order. It never aborts
// early on a single task's failure.
func (d *Dispatcher) Run(ctx context.Context, state *models.GraphState, rctx agent.RunContext) {
	outcomes := make([]taskOutcome, len(state.BattlePlan))

	var wg sync.WaitGroup
	for i, task := range state.BattlePlan {
		wg.Add(1)
		go func(i int, task models.AgentTask) {
			defer wg.Done()
			outcomes[i] = taskOutcome{task: task, result: d.runWithRetry(ctx, task, rctx)}
		}(i, task)
	}
	wg.Wait()

	sort.SliceStable(outcomes, func(i, j int) bool {
		return outcomes[i].task.Agent < outcomes[j].task.Agent
	})

	for _, outcome := range outcomes {
		foldInto(state, outcome.task, outcome.result)
	}
}

// runWithRetry looks up the task's agent and runs it, retrying a
// needs_retry result or a panic up to maxAttempts times with retryDelay
// between attempts. A missing agent is a terminal synthetic failure.
func (d *Dispatcher) runWithRetry(ctx context.Context, task models.AgentTask, rctx agent.RunContext) models.AgentResult {
	a, err := d.registry.Get(task.Agent)
	if err != nil {
		return models.Failure(fmt.Sprintf("no agent registered for %q", task.Agent))
	}

	var result models.AgentResult
	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		result = runSafely(ctx, a, task, rctx)
		if result.Status != models.ResultNeedsRetry {
			return result
		}
		if attempt < d.maxAttempts {
			select {
			case <-time.After(d.retryDelay):
			case <-ctx.Done():
				return result
			}
		}
	}
	return result
}

// runSafely runs one agent task, converting a panic into a retryable result
// instead of taking down the dispatch goroutine.
func runSafely(ctx context.Context, a agent.Agent, task models.AgentTask, rctx agent.RunContext) (result models.AgentResult) {
	defer func() {
		if r := recover(); r != nil {
			result = models.NeedsRetry(fmt.Sprintf("agent panic: %v", r))
		}
	}()
	return a.Run(ctx, task, rctx)
}

// foldInto applies one task's outcome to state per its result status.
func foldInto(state *models.GraphState, task models.AgentTask, result models.AgentResult) {
	name := task.Agent

	switch result.Status {
	case models.ResultSuccess:
		if result.Findings != nil {
			state.AgentFindings[name] = result.Findings
		}
		if result.Insights != nil {
			state.AgentInsights[name] = result.Insights
		}
		state.Recommendations = append(state.Recommendations, result.Recommendations...)

		if name == models.AgentHistorian {
			if matches, ok := result.Findings["matches"].([]any); ok {
				state.MemoryContext = append(state.MemoryContext, decodeMemoryMatches(matches)...)
			}
		}

	case models.ResultCannotHandle:
		state.CannotHandleAgents = append(state.CannotHandleAgents, models.CannotHandleEntry{
			Agent:  name,
			Query:  task.Query(),
			Reason: result.CannotHandleReason,
		})
		if result.Insights != nil {
			state.AgentInsights[name] = result.Insights
		}

	case models.ResultFailure, models.ResultNeedsRetry:
		state.AddSystemWarning(fmt.Sprintf("%s: %s", name, result.Error))
	}
}

// decodeMemoryMatches converts the historian's generic "matches" findings
// back into typed MemoryHit rows for the shared memory_context.
func decodeMemoryMatches(matches []any) []models.MemoryHit {
	hits := make([]models.MemoryHit, 0, len(matches))
	for _, m := range matches {
		row, ok := m.(map[string]any)
		if !ok {
			continue
		}
		incident := models.MemoryIncident{
			ID:        asString(row["id"]),
			Summary:   asString(row["summary"]),
			RootCause: asString(row["root_cause"]),
		}
		similarity, _ := row["similarity"].(float64)
		hits = append(hits, models.MemoryHit{Incident: incident, Similarity: similarity})
	}
	return hits
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}
