package agent

import (
	"context"

	"github.com/opsreasoner/opsreasoner/pkg/models"
)

const (
	salesModeSummary     = "summary"
	salesModeTopProducts = "top_products"
)

// SalesAgent reports revenue, order volume and top-selling products.
// Anything requiring comparison across periods, regions, channels, or
// contribution analysis is out of scope and routed to data_analyst.
type SalesAgent struct {
	meta      models.AgentMetadata
	transport toolInvoker
	guard     scopeGuard
}

// NewSalesAgent builds the sales agent.
func NewSalesAgent(meta models.AgentMetadata, transport toolInvoker) *SalesAgent {
	return &SalesAgent{
		meta:      meta,
		transport: transport,
		guard: newScopeGuard(
			"sales handles point-in-time summaries and top-product rankings only; comparative, regional, channel, or contribution analysis needs data_analyst",
			`\bcompare\b`, `\bcomparison\b`, `\bversus\b`, `\bvs\.?\b`,
			`\bregion\b`, `\bchannel\b`, `\bcontribution\b`,
		),
	}
}

// Metadata returns the agent's planner-facing description.
func (a *SalesAgent) Metadata() models.AgentMetadata { return a.meta }

// Run executes the requested sales capability.
func (a *SalesAgent) Run(ctx context.Context, task models.AgentTask, rctx RunContext) models.AgentResult {
	query := task.Query()
	if query == "" {
		query = rctx.UserQuery
	}
	if a.guard.match(query) {
		return models.CannotHandle(a.guard.reason, models.AgentDataAnalyst)
	}

	switch task.Mode() {
	case salesModeTopProducts:
		return a.topProducts(ctx, task)
	default:
		return a.summary(ctx, task)
	}
}

func (a *SalesAgent) summary(ctx context.Context, task models.AgentTask) models.AgentResult {
	args := map[string]any{}
	if days, ok := task.Parameters["window_days"]; ok {
		args["window_days"] = days
	}
	result, errRes := invokeTool(ctx, a.transport, "get_sales_summary", args)
	if errRes != nil {
		return *errRes
	}
	findings, _ := result.(map[string]any)
	return models.Success(findings, summaryInsights(findings))
}

func (a *SalesAgent) topProducts(ctx context.Context, task models.AgentTask) models.AgentResult {
	args := map[string]any{}
	if limit, ok := task.Parameters["limit"]; ok {
		args["limit"] = limit
	} else {
		args["limit"] = 5
	}
	if days, ok := task.Parameters["window_days"]; ok {
		args["window_days"] = days
	}
	result, errRes := invokeTool(ctx, a.transport, "get_top_products", args)
	if errRes != nil {
		return *errRes
	}
	findings, _ := result.(map[string]any)
	return models.Success(findings, topProductInsights(findings))
}

func summaryInsights(findings map[string]any) []string {
	if findings == nil {
		return nil
	}
	var insights []string
	if revenue, ok := findings["revenue"]; ok {
		insights = append(insights, formatFinding("revenue for the window", revenue))
	}
	if orders, ok := findings["order_count"]; ok {
		insights = append(insights, formatFinding("orders placed", orders))
	}
	return insights
}

func topProductInsights(findings map[string]any) []string {
	if findings == nil {
		return nil
	}
	products, ok := findings["products"].([]any)
	if !ok || len(products) == 0 {
		return nil
	}
	return []string{formatFinding("top products returned", len(products))}
}
