package agent

import (
	"context"

	"github.com/opsreasoner/opsreasoner/pkg/models"
)

const (
	inventoryModeCheckStock    = "check_stock"
	inventoryModeLowStockScan  = "low_stock_scan"
)

// InventoryAgent reports current stock levels and low-stock products.
// Forecasting, top-seller cross-analysis, and trend/velocity questions are
// out of scope and routed to data_analyst.
type InventoryAgent struct {
	meta      models.AgentMetadata
	transport toolInvoker
	guard     scopeGuard
}

// NewInventoryAgent builds the inventory agent.
func NewInventoryAgent(meta models.AgentMetadata, transport toolInvoker) *InventoryAgent {
	return &InventoryAgent{
		meta:      meta,
		transport: transport,
		guard: newScopeGuard(
			"inventory reports current and low stock only; forecasting, cross-analysis with top sellers, or trend/velocity questions need data_analyst",
			`\bpredict\b`, `\bwhen\s+(will\s+)?.*run\s+out\b`, `\bforecast\b`,
			`\btop[- ]sell`, `\bvelocity\b`, `\btrend\b`,
		),
	}
}

// Metadata returns the agent's planner-facing description.
func (a *InventoryAgent) Metadata() models.AgentMetadata { return a.meta }

// Run executes the requested inventory capability.
func (a *InventoryAgent) Run(ctx context.Context, task models.AgentTask, rctx RunContext) models.AgentResult {
	query := task.Query()
	if query == "" {
		query = rctx.UserQuery
	}
	if a.guard.match(query) {
		return models.CannotHandle(a.guard.reason, models.AgentDataAnalyst)
	}

	switch task.Mode() {
	case inventoryModeLowStockScan:
		return a.lowStockScan(ctx)
	default:
		return a.checkStock(ctx, task)
	}
}

func (a *InventoryAgent) checkStock(ctx context.Context, task models.AgentTask) models.AgentResult {
	productIDs, ok := task.Parameters["product_ids"]
	if !ok {
		productIDs = []int{1, 2, 3}
	}
	result, errRes := invokeTool(ctx, a.transport, "get_inventory_status", map[string]any{
		"product_ids": productIDs,
	})
	if errRes != nil {
		return *errRes
	}
	findings, _ := result.(map[string]any)
	return models.Success(findings, stockInsights(findings))
}

func (a *InventoryAgent) lowStockScan(ctx context.Context) models.AgentResult {
	result, errRes := invokeTool(ctx, a.transport, "get_low_stock_products", map[string]any{})
	if errRes != nil {
		return *errRes
	}
	findings, _ := result.(map[string]any)

	var recs []models.AgentRecommendation
	if products, ok := findings["products"].([]any); ok {
		for _, p := range products {
			m, ok := p.(map[string]any)
			if !ok {
				continue
			}
			recs = append(recs, models.AgentRecommendation{
				ActionType:       "restock_item",
				Payload:          m,
				Reasoning:        "below reorder threshold",
				RequiresApproval: true,
			})
		}
	}
	return models.Success(findings, stockInsights(findings), recs...)
}

func stockInsights(findings map[string]any) []string {
	if findings == nil {
		return nil
	}
	if products, ok := findings["products"].([]any); ok {
		return []string{formatFinding("products in scope", len(products))}
	}
	return nil
}
