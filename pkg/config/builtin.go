package config

import "github.com/opsreasoner/opsreasoner/pkg/models"

// BuiltinConfig holds the configuration shipped with the binary: the six
// fixed agents' metadata and a default LLM provider entry. User YAML is
// merged on top of this at load time.
type BuiltinConfig struct {
	Agents       map[models.AgentName]*models.AgentMetadata
	LLMProviders map[string]*LLMProviderConfig
	Guardrails   *GuardrailsConfig
}

// GetBuiltinConfig returns the built-in configuration.
func GetBuiltinConfig() *BuiltinConfig {
	return &BuiltinConfig{
		Agents:     builtinAgents(),
		Guardrails: DefaultGuardrailsConfig(),
		LLMProviders: map[string]*LLMProviderConfig{
			"default": {
				Type:        LLMProviderTypeOpenAI,
				Endpoint:    "https://api.openai.com/v1",
				APIKeyEnv:   "LLM_API_KEY",
				Temperature: 0.2,
				Timeout:     "30s",
			},
		},
	}
}

func builtinAgents() map[models.AgentName]*models.AgentMetadata {
	return map[models.AgentName]*models.AgentMetadata{
		models.AgentSales: {
			Name:        models.AgentSales,
			DisplayName: "Sales",
			Description: "Reports on revenue, order volume, and top-selling products over a window.",
			Capabilities: []models.CapabilityMetadata{
				{
					Name:        "summary",
					Description: "Revenue, order count, and AOV for a time window.",
					Parameters:  []string{"window_days"},
					ExampleQueries: [2]string{
						"What were sales like last week?",
						"Give me a sales summary for the last 30 days.",
					},
				},
				{
					Name:        "top_products",
					Description: "The best-selling products by units or revenue for a window.",
					Parameters:  []string{"limit", "window_days"},
					ExampleQueries: [2]string{
						"What are the top 5 selling products?",
						"Show me our best sellers this month.",
					},
				},
			},
			Keywords:             []string{"sale", "sales", "revenue", "trend", "income", "top", "best", "highest", "most sold"},
			PriorityBoostPhrases: []string{"urgent", "today"},
		},
		models.AgentInventory: {
			Name:        models.AgentInventory,
			DisplayName: "Inventory",
			Description: "Reports on current stock levels and products running low.",
			Capabilities: []models.CapabilityMetadata{
				{
					Name:        "check_stock",
					Description: "Current stock level for a set of product ids.",
					Parameters:  []string{"product_ids"},
					ExampleQueries: [2]string{
						"How much stock do we have of SKU 123?",
						"Check stock levels for products 1, 2, 3.",
					},
				},
				{
					Name:        "low_stock_scan",
					Description: "Every product under its reorder threshold.",
					Parameters:  []string{},
					ExampleQueries: [2]string{
						"Which products need restocking?",
						"What's running low right now?",
					},
				},
			},
			Keywords: []string{"stock", "inventory", "restock"},
		},
		models.AgentMarketing: {
			Name:        models.AgentMarketing,
			DisplayName: "Marketing",
			Description: "Reports on campaign spend and return on ad spend.",
			Capabilities: []models.CapabilityMetadata{
				{
					Name:        "campaign_spend",
					Description: "Spend by campaign for a window.",
					Parameters:  []string{"window_days"},
					ExampleQueries: [2]string{
						"How much did we spend on campaigns this month?",
						"Show campaign spend for the last quarter.",
					},
				},
				{
					Name:        "calculate_roas",
					Description: "Return on ad spend for a campaign or window.",
					Parameters:  []string{"campaign_id", "window_days"},
					ExampleQueries: [2]string{
						"What's our ROAS on the summer campaign?",
						"Calculate ROAS for all active campaigns.",
					},
				},
			},
			Keywords: []string{"campaign", "ad", "roas", "spend"},
		},
		models.AgentSupport: {
			Name:        models.AgentSupport,
			DisplayName: "Support",
			Description: "Reports on ticket sentiment and ticket volume trends.",
			Capabilities: []models.CapabilityMetadata{
				{
					Name:        "sentiment_analysis",
					Description: "Aggregate sentiment across recent tickets.",
					Parameters:  []string{"window_days"},
					ExampleQueries: [2]string{
						"How are customers feeling about us lately?",
						"What's ticket sentiment this week?",
					},
				},
				{
					Name:        "ticket_trends",
					Description: "Ticket volume and category trend for a window.",
					Parameters:  []string{"window_days"},
					ExampleQueries: [2]string{
						"Are support tickets trending up?",
						"Show ticket volume over the last month.",
					},
				},
			},
			Keywords: []string{"ticket", "support", "sentiment", "complaint"},
		},
		models.AgentDataAnalyst: {
			Name:        models.AgentDataAnalyst,
			DisplayName: "Data Analyst",
			Description: "Generates and proposes custom SQL for queries no other agent's fixed capabilities cover. Terminal — never delegates.",
			Capabilities: []models.CapabilityMetadata{
				{
					Name:        "custom_analysis",
					Description: "Emit a single SQL statement answering a free-form analytical question, for approval before execution.",
					Parameters:  []string{"query"},
					ExampleQueries: [2]string{
						"Compare yesterday's sales to last week.",
						"Which region had the highest contribution margin?",
					},
				},
			},
		},
		models.AgentHistorian: {
			Name:        models.AgentHistorian,
			DisplayName: "Historian",
			Description: "Reads and writes the episodic incident memory. Pure memory access — no cannot_handle triggers.",
			Capabilities: []models.CapabilityMetadata{
				{
					Name:        "query",
					Description: "Find prior incidents similar to the current query.",
					Parameters:  []string{"query"},
					ExampleQueries: [2]string{
						"Why did sales drop yesterday?",
						"What caused the last inventory shortage?",
					},
				},
				{
					Name:        "past_actions",
					Description: "Extract prior actions and outcomes from similar incidents.",
					Parameters:  []string{"query"},
					ExampleQueries: [2]string{
						"What did we do last time this happened?",
						"Has this come up before?",
					},
				},
				{
					Name:        "save",
					Description: "Append a new incident summary to memory.",
					Parameters:  []string{"summary", "root_cause", "outcome"},
					ExampleQueries: [2]string{
						"",
						"",
					},
				},
			},
			Keywords: []string{"why", "reason", "cause", "explain", "happened"},
		},
	}
}
