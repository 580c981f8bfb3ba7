package agent

import (
	"context"

	"github.com/opsreasoner/opsreasoner/pkg/models"
)

const (
	supportModeSentiment = "sentiment_analysis"
	supportModeTrends    = "ticket_trends"
)

// SupportAgent reports ticket sentiment and volume trends. Identifying
// common root-cause issues, period-over-period complaint comparison, and
// cross-domain correlation are out of scope and routed to data_analyst.
type SupportAgent struct {
	meta      models.AgentMetadata
	transport toolInvoker
	guard     scopeGuard
}

// NewSupportAgent builds the support agent.
func NewSupportAgent(meta models.AgentMetadata, transport toolInvoker) *SupportAgent {
	return &SupportAgent{
		meta:      meta,
		transport: transport,
		guard: newScopeGuard(
			"support reports sentiment and ticket trends only; common-issue diagnosis, period comparison, or cross-domain correlation need data_analyst",
			`\bcommon\s+issue`, `\bcompare\b`, `\bcomparison\b`, `\bperiod[- ]over[- ]period\b`,
		),
	}
}

// Metadata returns the agent's planner-facing description.
func (a *SupportAgent) Metadata() models.AgentMetadata { return a.meta }

// Run executes the requested support capability.
func (a *SupportAgent) Run(ctx context.Context, task models.AgentTask, rctx RunContext) models.AgentResult {
	query := task.Query()
	if query == "" {
		query = rctx.UserQuery
	}
	if a.guard.match(query) {
		return models.CannotHandle(a.guard.reason, models.AgentDataAnalyst)
	}

	switch task.Mode() {
	case supportModeTrends:
		return a.ticketTrends(ctx, task)
	default:
		return a.sentiment(ctx, task)
	}
}

func (a *SupportAgent) sentiment(ctx context.Context, task models.AgentTask) models.AgentResult {
	args := map[string]any{}
	if days, ok := task.Parameters["window_days"]; ok {
		args["window_days"] = days
	}
	result, errRes := invokeTool(ctx, a.transport, "get_support_sentiment", args)
	if errRes != nil {
		return *errRes
	}
	findings, _ := result.(map[string]any)
	return models.Success(findings, sentimentInsights(findings))
}

func (a *SupportAgent) ticketTrends(ctx context.Context, task models.AgentTask) models.AgentResult {
	args := map[string]any{}
	if days, ok := task.Parameters["window_days"]; ok {
		args["window_days"] = days
	}
	result, errRes := invokeTool(ctx, a.transport, "get_ticket_trends", args)
	if errRes != nil {
		return *errRes
	}
	findings, _ := result.(map[string]any)
	return models.Success(findings, trendInsights(findings))
}

func sentimentInsights(findings map[string]any) []string {
	if findings == nil {
		return nil
	}
	if score, ok := findings["sentiment_score"]; ok {
		return []string{formatFinding("aggregate sentiment score", score)}
	}
	return nil
}

func trendInsights(findings map[string]any) []string {
	if findings == nil {
		return nil
	}
	if count, ok := findings["ticket_count"]; ok {
		return []string{formatFinding("tickets in window", count)}
	}
	return nil
}
