package agent

import (
	"context"

	"github.com/opsreasoner/opsreasoner/pkg/models"
)

const (
	historianModeQuery       = "query"
	historianModePastActions = "past_actions"
	historianModeSave        = "save"

	historianQueryK = 5
)

// memoryQuerier is the subset of memory.Service the historian needs.
type memoryQuerier interface {
	QuerySimilar(ctx context.Context, text string, k int) ([]models.MemoryHit, error)
	Append(ctx context.Context, incident models.MemoryIncident) (string, error)
}

// HistorianAgent is pure memory access: no cannot_handle triggers, since
// every query is in scope for a similarity search.
type HistorianAgent struct {
	meta   models.AgentMetadata
	memory memoryQuerier
}

// NewHistorianAgent builds the historian agent.
func NewHistorianAgent(meta models.AgentMetadata, memory memoryQuerier) *HistorianAgent {
	return &HistorianAgent{meta: meta, memory: memory}
}

// Metadata returns the agent's planner-facing description.
func (a *HistorianAgent) Metadata() models.AgentMetadata { return a.meta }

// Run executes the requested historian capability.
func (a *HistorianAgent) Run(ctx context.Context, task models.AgentTask, rctx RunContext) models.AgentResult {
	switch task.Mode() {
	case historianModeSave:
		return a.save(ctx, task)
	case historianModePastActions:
		return a.pastActions(ctx, task, rctx)
	default:
		return a.query(ctx, task, rctx)
	}
}

func (a *HistorianAgent) query(ctx context.Context, task models.AgentTask, rctx RunContext) models.AgentResult {
	text := task.Query()
	if text == "" {
		text = rctx.UserQuery
	}
	hits, err := a.memory.QuerySimilar(ctx, text, historianQueryK)
	if err != nil {
		return models.NeedsRetry(err.Error())
	}

	matches := make([]any, 0, len(hits))
	for _, h := range hits {
		matches = append(matches, map[string]any{
			"id":         h.Incident.ID,
			"summary":    h.Incident.Summary,
			"root_cause": h.Incident.RootCause,
			"similarity": h.Similarity,
		})
	}
	return models.Success(
		map[string]any{"matches": matches},
		[]string{formatFinding("similar prior incidents found", len(hits))},
	)
}

func (a *HistorianAgent) pastActions(ctx context.Context, task models.AgentTask, rctx RunContext) models.AgentResult {
	text := task.Query()
	if text == "" {
		text = rctx.UserQuery
	}
	hits, err := a.memory.QuerySimilar(ctx, text, historianQueryK)
	if err != nil {
		return models.NeedsRetry(err.Error())
	}

	var insights []string
	for _, h := range hits {
		if h.Incident.ActionTaken == "" {
			continue
		}
		insights = append(insights, formatFinding("prior action for \""+h.Incident.Summary+"\"", h.Incident.ActionTaken))
	}
	return models.Success(map[string]any{"hit_count": len(hits)}, insights)
}

func (a *HistorianAgent) save(ctx context.Context, task models.AgentTask) models.AgentResult {
	summary, _ := task.Parameters["summary"].(string)
	if summary == "" {
		return models.Failure("historian save requires a non-empty summary")
	}
	rootCause, _ := task.Parameters["root_cause"].(string)
	outcome, _ := task.Parameters["outcome"].(string)

	id, err := a.memory.Append(ctx, models.MemoryIncident{
		Summary:   summary,
		RootCause: rootCause,
		Outcome:   outcome,
	})
	if err != nil {
		return models.NeedsRetry(err.Error())
	}
	return models.Success(map[string]any{"incident_id": id}, []string{"incident recorded to memory"})
}
