package planner

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsreasoner/opsreasoner/pkg/config"
	"github.com/opsreasoner/opsreasoner/pkg/llmclient"
	"github.com/opsreasoner/opsreasoner/pkg/models"
)

type scriptedLLM struct {
	reply string
	err   error
}

func (s *scriptedLLM) Complete(context.Context, llmclient.Request) (string, error) {
	return s.reply, s.err
}

func builtinCatalog() *config.AgentRegistry {
	return config.NewAgentRegistry(config.GetBuiltinConfig().Agents)
}

func stateFor(query string) *models.GraphState {
	return models.NewGraphState("t", query, nil, nil, 2)
}

func TestPlanParsesLLMTaskArray(t *testing.T) {
	llm := &scriptedLLM{reply: `[
		{"agent": "sales", "objective": "summarize sales", "parameters": {"mode": "summary"}, "priority": 2},
		{"agent": "historian", "objective": "check prior incidents", "parameters": {"mode": "query"}, "priority": 1}
	]`}
	p := New(llm, builtinCatalog())

	tasks := p.Plan(context.Background(), stateFor("why did sales drop yesterday"))

	require.Len(t, tasks, 2)
	// Sorted ascending by priority.
	assert.Equal(t, models.AgentHistorian, tasks[0].Agent)
	assert.Equal(t, models.AgentSales, tasks[1].Agent)
	// Every task carries the verbatim user query.
	for _, task := range tasks {
		assert.Equal(t, "why did sales drop yesterday", task.Query())
	}
}

func TestPlanStripsCodeFences(t *testing.T) {
	llm := &scriptedLLM{reply: "Here is the plan:\n```json\n" +
		`[{"agent": "sales", "objective": "o", "parameters": {"mode": "summary"}, "priority": 1}]` +
		"\n```\nLet me know if you need anything else."}
	p := New(llm, builtinCatalog())

	tasks := p.Plan(context.Background(), stateFor("how are sales"))

	require.Len(t, tasks, 1)
	assert.Equal(t, models.AgentSales, tasks[0].Agent)
}

func TestPlanDropsUnregisteredAgents(t *testing.T) {
	llm := &scriptedLLM{reply: `[
		{"agent": "finance", "objective": "o", "parameters": {}, "priority": 1},
		{"agent": "sales", "objective": "o", "parameters": {"mode": "summary"}, "priority": 2}
	]`}
	p := New(llm, builtinCatalog())

	tasks := p.Plan(context.Background(), stateFor("how are sales"))

	require.Len(t, tasks, 1)
	assert.Equal(t, models.AgentSales, tasks[0].Agent)
}

func TestPlanFallsBackOnLLMError(t *testing.T) {
	p := New(&scriptedLLM{err: errors.New("endpoint down")}, builtinCatalog())

	tasks := p.Plan(context.Background(), stateFor("how is revenue trending"))

	require.Len(t, tasks, 1)
	assert.Equal(t, models.AgentSales, tasks[0].Agent)
	assert.Equal(t, "summary", tasks[0].Mode())
}

func TestPlanFallsBackOnUnparsableReply(t *testing.T) {
	p := New(&scriptedLLM{reply: "I cannot produce a plan for this."}, builtinCatalog())

	tasks := p.Plan(context.Background(), stateFor("campaign spend this month"))

	require.Len(t, tasks, 1)
	assert.Equal(t, models.AgentMarketing, tasks[0].Agent)
}

func TestKeywordPlanRules(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []struct {
			agent models.AgentName
			mode  string
		}
	}{
		{
			name:  "top products with explicit limit",
			query: "What are the top 3 selling products?",
			want: []struct {
				agent models.AgentName
				mode  string
			}{{models.AgentSales, "top_products"}},
		},
		{
			name:  "revenue summary",
			query: "How is revenue trending this week?",
			want: []struct {
				agent models.AgentName
				mode  string
			}{{models.AgentSales, "summary"}},
		},
		{
			name:  "inventory",
			query: "Do we need to restock anything?",
			want: []struct {
				agent models.AgentName
				mode  string
			}{{models.AgentInventory, "check_stock"}},
		},
		{
			name:  "marketing",
			query: "What did the summer ad campaign cost?",
			want: []struct {
				agent models.AgentName
				mode  string
			}{{models.AgentMarketing, "campaign_spend"}},
		},
		{
			name:  "support",
			query: "Any complaint spike lately?",
			want: []struct {
				agent models.AgentName
				mode  string
			}{{models.AgentSupport, "sentiment_analysis"}},
		},
		{
			name:  "causal question accumulates historian",
			query: "Why did revenue drop?",
			want: []struct {
				agent models.AgentName
				mode  string
			}{{models.AgentSales, "summary"}, {models.AgentHistorian, "query"}},
		},
		{
			name:  "no match defaults to sales summary",
			query: "Hello there",
			want: []struct {
				agent models.AgentName
				mode  string
			}{{models.AgentSales, "summary"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks := keywordPlan(tt.query, nil)
			require.Len(t, tasks, len(tt.want))
			for i, want := range tt.want {
				assert.Equal(t, want.agent, tasks[i].Agent)
				assert.Equal(t, want.mode, tasks[i].Mode())
				assert.Equal(t, tt.query, tasks[i].Query())
			}
		})
	}
}

func TestKeywordPlanParsesTopLimit(t *testing.T) {
	tasks := keywordPlan("show me the top 7 selling items", nil)
	require.Len(t, tasks, 1)
	assert.Equal(t, 7, tasks[0].Parameters["limit"])

	tasks = keywordPlan("what are our best selling products", nil)
	require.Len(t, tasks, 1)
	assert.Equal(t, 5, tasks[0].Parameters["limit"])
}

func TestKeywordPlanUsesMetadataFocusProducts(t *testing.T) {
	tasks := keywordPlan("check stock", map[string]any{"focus_product_ids": []int{9, 12}})
	require.Len(t, tasks, 1)
	assert.Equal(t, []int{9, 12}, tasks[0].Parameters["product_ids"])
}

// Identical query text and metadata always produce the identical plan.
func TestKeywordPlanIsDeterministic(t *testing.T) {
	first := keywordPlan("why did the top 5 products stop selling", nil)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, keywordPlan("why did the top 5 products stop selling", nil))
	}
}

func TestReplanFiltersAgentsWithFindings(t *testing.T) {
	llm := &scriptedLLM{reply: `[
		{"agent": "sales", "objective": "o", "parameters": {"mode": "summary"}, "priority": 1},
		{"agent": "support", "objective": "o", "parameters": {"mode": "sentiment_analysis"}, "priority": 2}
	]`}
	p := New(llm, builtinCatalog())
	state := stateFor("how are things")
	state.AgentFindings[models.AgentSales] = map[string]any{"revenue": 900.0}

	tasks := p.Replan(context.Background(), state)

	require.Len(t, tasks, 1)
	assert.Equal(t, models.AgentSupport, tasks[0].Agent)
}

func TestReplanFallsBackToAnalyst(t *testing.T) {
	p := New(&scriptedLLM{err: errors.New("endpoint down")}, builtinCatalog())
	state := stateFor("compare channels")
	state.ReplanReason = "no agents returned findings"

	tasks := p.Replan(context.Background(), state)

	require.Len(t, tasks, 1)
	assert.Equal(t, models.AgentDataAnalyst, tasks[0].Agent)
	assert.Equal(t, "custom_analysis", tasks[0].Mode())
	assert.Equal(t, "compare channels", tasks[0].Query())
}
