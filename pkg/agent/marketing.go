package agent

import (
	"context"

	"github.com/opsreasoner/opsreasoner/pkg/models"
)

const (
	marketingModeCampaignSpend = "campaign_spend"
	marketingModeCalculateROAS = "calculate_roas"
)

// MarketingAgent reports campaign spend and return on ad spend.
// Underperformance diagnosis, zero-conversion analysis, period comparison,
// and ranking are out of scope and routed to data_analyst.
type MarketingAgent struct {
	meta      models.AgentMetadata
	transport toolInvoker
	guard     scopeGuard
}

// NewMarketingAgent builds the marketing agent.
func NewMarketingAgent(meta models.AgentMetadata, transport toolInvoker) *MarketingAgent {
	return &MarketingAgent{
		meta:      meta,
		transport: transport,
		guard: newScopeGuard(
			"marketing reports spend and ROAS only; underperformance diagnosis, zero-conversion analysis, period comparison, or ranking need data_analyst",
			`\bunderperform`, `\bzero[- ]conversion`, `\bcompare\b`, `\bcomparison\b`, `\branking?\b`, `\brank\b`,
		),
	}
}

// Metadata returns the agent's planner-facing description.
func (a *MarketingAgent) Metadata() models.AgentMetadata { return a.meta }

// Run executes the requested marketing capability.
func (a *MarketingAgent) Run(ctx context.Context, task models.AgentTask, rctx RunContext) models.AgentResult {
	query := task.Query()
	if query == "" {
		query = rctx.UserQuery
	}
	if a.guard.match(query) {
		return models.CannotHandle(a.guard.reason, models.AgentDataAnalyst)
	}

	switch task.Mode() {
	case marketingModeCalculateROAS:
		return a.calculateROAS(ctx, task)
	default:
		return a.campaignSpend(ctx, task)
	}
}

func (a *MarketingAgent) campaignSpend(ctx context.Context, task models.AgentTask) models.AgentResult {
	args := map[string]any{}
	if days, ok := task.Parameters["window_days"]; ok {
		args["window_days"] = days
	}
	result, errRes := invokeTool(ctx, a.transport, "get_campaign_spend", args)
	if errRes != nil {
		return *errRes
	}
	findings, _ := result.(map[string]any)
	return models.Success(findings, spendInsights(findings))
}

func (a *MarketingAgent) calculateROAS(ctx context.Context, task models.AgentTask) models.AgentResult {
	args := map[string]any{}
	if id, ok := task.Parameters["campaign_id"]; ok {
		args["campaign_id"] = id
	}
	if days, ok := task.Parameters["window_days"]; ok {
		args["window_days"] = days
	}
	result, errRes := invokeTool(ctx, a.transport, "calculate_roas", args)
	if errRes != nil {
		return *errRes
	}
	findings, _ := result.(map[string]any)
	return models.Success(findings, roasInsights(findings))
}

func spendInsights(findings map[string]any) []string {
	if findings == nil {
		return nil
	}
	if spend, ok := findings["total_spend"]; ok {
		return []string{formatFinding("total campaign spend", spend)}
	}
	return nil
}

func roasInsights(findings map[string]any) []string {
	if findings == nil {
		return nil
	}
	if roas, ok := findings["roas"]; ok {
		return []string{formatFinding("return on ad spend", roas)}
	}
	return nil
}
