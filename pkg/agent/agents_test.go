package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsreasoner/opsreasoner/pkg/config"
	"github.com/opsreasoner/opsreasoner/pkg/llmclient"
	"github.com/opsreasoner/opsreasoner/pkg/models"
	"github.com/opsreasoner/opsreasoner/pkg/tooltransport"
)

// scriptedTransport returns canned results per tool name.
type scriptedTransport struct {
	results map[string]any
	err     error
	calls   []string
}

func (s *scriptedTransport) Invoke(_ context.Context, tool string, _ map[string]any) (any, error) {
	s.calls = append(s.calls, tool)
	if s.err != nil {
		return nil, s.err
	}
	return s.results[tool], nil
}

type scriptedLLM struct {
	reply string
	err   error
}

func (s *scriptedLLM) Complete(context.Context, llmclient.Request) (string, error) {
	return s.reply, s.err
}

func metaFor(name models.AgentName) models.AgentMetadata {
	return *config.GetBuiltinConfig().Agents[name]
}

func taskWith(mode, query string, extra map[string]any) models.AgentTask {
	params := map[string]any{"mode": mode, "query": query}
	for k, v := range extra {
		params[k] = v
	}
	return models.AgentTask{Agent: "", Objective: mode, Parameters: params, Priority: 1}
}

func TestSalesSummaryInvokesTool(t *testing.T) {
	transport := &scriptedTransport{results: map[string]any{
		"get_sales_summary": map[string]any{"revenue": 1250.5, "order_count": 41},
	}}
	a := NewSalesAgent(metaFor(models.AgentSales), transport)

	result := a.Run(context.Background(), taskWith("summary", "how are sales", nil), RunContext{})

	require.Equal(t, models.ResultSuccess, result.Status)
	assert.Equal(t, []string{"get_sales_summary"}, transport.calls)
	assert.Equal(t, 1250.5, result.Findings["revenue"])
	assert.Len(t, result.Insights, 2)
}

func TestSalesTopProductsDefaultsLimit(t *testing.T) {
	transport := &scriptedTransport{results: map[string]any{
		"get_top_products": map[string]any{"products": []any{"a", "b"}},
	}}
	a := NewSalesAgent(metaFor(models.AgentSales), transport)

	result := a.Run(context.Background(), taskWith("top_products", "top sellers", nil), RunContext{})

	require.Equal(t, models.ResultSuccess, result.Status)
	assert.Equal(t, []string{"get_top_products"}, transport.calls)
}

func TestScopeGuards(t *testing.T) {
	transport := &scriptedTransport{results: map[string]any{}}

	tests := []struct {
		name  string
		agent Agent
		query string
	}{
		{"sales comparison", NewSalesAgent(metaFor(models.AgentSales), transport), "Compare yesterday's sales to last week"},
		{"sales region", NewSalesAgent(metaFor(models.AgentSales), transport), "Which region sold most?"},
		{"sales channel", NewSalesAgent(metaFor(models.AgentSales), transport), "Break revenue down by channel"},
		{"inventory prediction", NewInventoryAgent(metaFor(models.AgentInventory), transport), "Predict when SKU 9 will run out"},
		{"inventory trend", NewInventoryAgent(metaFor(models.AgentInventory), transport), "What's the stock trend for gadgets?"},
		{"marketing underperformance", NewMarketingAgent(metaFor(models.AgentMarketing), transport), "Which campaigns underperform?"},
		{"marketing comparison", NewMarketingAgent(metaFor(models.AgentMarketing), transport), "Compare campaign spend across quarters"},
		{"support common issues", NewSupportAgent(metaFor(models.AgentSupport), transport), "What's the most common issue customers report?"},
		{"support period comparison", NewSupportAgent(metaFor(models.AgentSupport), transport), "Compare complaints to last month"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.agent.Run(context.Background(), taskWith("summary", tt.query, nil), RunContext{UserQuery: tt.query})
			require.Equal(t, models.ResultCannotHandle, result.Status)
			assert.NotEmpty(t, result.CannotHandleReason)
			assert.Equal(t, models.AgentDataAnalyst, result.SuggestedSuccessor)
			assert.Empty(t, transport.calls, "a declined query must not reach a tool")
		})
	}
}

func TestInventoryLowStockScanProposesRestocks(t *testing.T) {
	transport := &scriptedTransport{results: map[string]any{
		"get_low_stock_products": map[string]any{"products": []any{
			map[string]any{"product_id": 3.0, "stock": 2.0, "reorder_level": 20.0},
			map[string]any{"product_id": 8.0, "stock": 0.0, "reorder_level": 10.0},
		}},
	}}
	a := NewInventoryAgent(metaFor(models.AgentInventory), transport)

	result := a.Run(context.Background(), taskWith("low_stock_scan", "Which products need restocking?", nil), RunContext{})

	require.Equal(t, models.ResultSuccess, result.Status)
	require.Len(t, result.Recommendations, 2)
	for _, rec := range result.Recommendations {
		assert.Equal(t, "restock_item", rec.ActionType)
		assert.True(t, rec.RequiresApproval)
	}
}

func TestTransportFaultIsRetryableToolErrorIsTerminal(t *testing.T) {
	a := NewSalesAgent(metaFor(models.AgentSales), &scriptedTransport{
		err: &tooltransport.TransportError{Tool: "get_sales_summary", Err: errors.New("connection refused")},
	})
	result := a.Run(context.Background(), taskWith("summary", "how are sales", nil), RunContext{})
	assert.Equal(t, models.ResultNeedsRetry, result.Status)

	a = NewSalesAgent(metaFor(models.AgentSales), &scriptedTransport{
		err: &tooltransport.ToolInvocationError{Tool: "get_sales_summary", StatusCode: 401, Type: "unauthorized"},
	})
	result = a.Run(context.Background(), taskWith("summary", "how are sales", nil), RunContext{})
	assert.Equal(t, models.ResultFailure, result.Status)
}

func TestDataAnalystProposesValidatedSQL(t *testing.T) {
	a := NewDataAnalystAgent(metaFor(models.AgentDataAnalyst), &scriptedLLM{
		reply: "  SELECT day, SUM(total) FROM orders GROUP BY day  ",
	})

	result := a.Run(context.Background(), taskWith("custom_analysis", "compare daily sales", nil), RunContext{})

	require.Equal(t, models.ResultSuccess, result.Status)
	require.Len(t, result.Recommendations, 1)
	rec := result.Recommendations[0]
	assert.Equal(t, "execute_custom_sql", rec.ActionType)
	assert.True(t, rec.RequiresApproval)
	assert.Equal(t, "SELECT day, SUM(total) FROM orders GROUP BY day", rec.Payload["sql"])
}

func TestDataAnalystRejectsSentinel(t *testing.T) {
	a := NewDataAnalystAgent(metaFor(models.AgentDataAnalyst), &scriptedLLM{reply: "CANNOT_GENERATE"})

	result := a.Run(context.Background(), taskWith("custom_analysis", "write me a poem", nil), RunContext{})

	assert.Equal(t, models.ResultFailure, result.Status)
	assert.Empty(t, result.Recommendations)
}

func TestDataAnalystRejectsNonSQL(t *testing.T) {
	a := NewDataAnalystAgent(metaFor(models.AgentDataAnalyst), &scriptedLLM{
		reply: "You could look at the orders table for that.",
	})

	result := a.Run(context.Background(), taskWith("custom_analysis", "compare daily sales", nil), RunContext{})

	assert.Equal(t, models.ResultFailure, result.Status)
}

func TestDataAnalystLLMFaultNeedsRetry(t *testing.T) {
	a := NewDataAnalystAgent(metaFor(models.AgentDataAnalyst), &scriptedLLM{err: errors.New("endpoint down")})

	result := a.Run(context.Background(), taskWith("custom_analysis", "compare daily sales", nil), RunContext{})

	assert.Equal(t, models.ResultNeedsRetry, result.Status)
}

// fakeMemoryService backs historian tests.
type fakeMemoryService struct {
	hits     []models.MemoryHit
	queryErr error
	saved    []models.MemoryIncident
}

func (f *fakeMemoryService) QuerySimilar(context.Context, string, int) ([]models.MemoryHit, error) {
	return f.hits, f.queryErr
}

func (f *fakeMemoryService) Append(_ context.Context, incident models.MemoryIncident) (string, error) {
	f.saved = append(f.saved, incident)
	return "inc-1", nil
}

func TestHistorianQueryReturnsMatches(t *testing.T) {
	mem := &fakeMemoryService{hits: []models.MemoryHit{
		{Incident: models.MemoryIncident{ID: "inc-7", Summary: "sales dip after campaign pause", RootCause: "budget cut"}, Similarity: 0.93},
	}}
	a := NewHistorianAgent(metaFor(models.AgentHistorian), mem)

	result := a.Run(context.Background(), taskWith("query", "why did sales drop", nil), RunContext{})

	require.Equal(t, models.ResultSuccess, result.Status)
	matches, ok := result.Findings["matches"].([]any)
	require.True(t, ok)
	require.Len(t, matches, 1)
	row := matches[0].(map[string]any)
	assert.Equal(t, "inc-7", row["id"])
}

func TestHistorianPastActionsExtractsActions(t *testing.T) {
	mem := &fakeMemoryService{hits: []models.MemoryHit{
		{Incident: models.MemoryIncident{Summary: "stockout", ActionTaken: "emergency reorder"}},
		{Incident: models.MemoryIncident{Summary: "no action recorded"}},
	}}
	a := NewHistorianAgent(metaFor(models.AgentHistorian), mem)

	result := a.Run(context.Background(), taskWith("past_actions", "has this happened before", nil), RunContext{})

	require.Equal(t, models.ResultSuccess, result.Status)
	require.Len(t, result.Insights, 1)
	assert.Contains(t, result.Insights[0], "emergency reorder")
}

func TestHistorianSaveRequiresSummary(t *testing.T) {
	mem := &fakeMemoryService{}
	a := NewHistorianAgent(metaFor(models.AgentHistorian), mem)

	result := a.Run(context.Background(), taskWith("save", "", nil), RunContext{})
	assert.Equal(t, models.ResultFailure, result.Status)

	result = a.Run(context.Background(), taskWith("save", "", map[string]any{
		"summary": "sales dipped on Tuesday", "root_cause": "campaign paused",
	}), RunContext{})
	require.Equal(t, models.ResultSuccess, result.Status)
	require.Len(t, mem.saved, 1)
	assert.Equal(t, "sales dipped on Tuesday", mem.saved[0].Summary)
}

func TestBuildRegistryWiresAllSixAgents(t *testing.T) {
	registry, err := BuildRegistry(
		config.GetBuiltinConfig().Agents,
		&scriptedTransport{},
		&scriptedLLM{},
		&fakeMemoryService{},
	)
	require.NoError(t, err)
	assert.Equal(t, 6, registry.Len())
	for _, name := range []models.AgentName{
		models.AgentSales, models.AgentInventory, models.AgentMarketing,
		models.AgentSupport, models.AgentDataAnalyst, models.AgentHistorian,
	} {
		assert.True(t, registry.Has(name))
	}
}

func TestBuildRegistryMissingMetadataFails(t *testing.T) {
	meta := map[models.AgentName]*models.AgentMetadata{}
	_, err := BuildRegistry(meta, &scriptedTransport{}, &scriptedLLM{}, &fakeMemoryService{})
	require.Error(t, err)
}
