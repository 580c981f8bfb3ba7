package agent

import (
	"context"
	"regexp"
	"strings"

	"github.com/opsreasoner/opsreasoner/pkg/llmclient"
	"github.com/opsreasoner/opsreasoner/pkg/models"
)

const (
	dataAnalystModeCustomAnalysis = "custom_analysis"
	cannotGenerateSentinel        = "CANNOT_GENERATE"
)

var validSQLLeadWord = regexp.MustCompile(`(?i)^\s*(SELECT|WITH|INSERT|UPDATE|DELETE)\b`)

const dataAnalystSystemPrompt = `You are a SQL generator for an e-commerce operations database. Given a ` +
	`question, emit exactly one SQL statement (SELECT, WITH, INSERT, UPDATE, or DELETE) that answers it ` +
	`against the store's orders, products, inventory, campaigns, and support_tickets tables. Emit only the ` +
	`statement, no commentary. If the question cannot be answered with a single statement against this ` +
	`schema, respond with exactly: ` + cannotGenerateSentinel

// DataAnalystAgent is terminal: it never returns cannot_handle. Given a
// free-form query it asks the LLM to emit a single SQL statement, validates
// the shape of the emission, and proposes it for human approval — it never
// executes SQL itself.
type DataAnalystAgent struct {
	meta models.AgentMetadata
	llm  llmclient.Client
}

// NewDataAnalystAgent builds the data_analyst agent.
func NewDataAnalystAgent(meta models.AgentMetadata, llm llmclient.Client) *DataAnalystAgent {
	return &DataAnalystAgent{meta: meta, llm: llm}
}

// Metadata returns the agent's planner-facing description.
func (a *DataAnalystAgent) Metadata() models.AgentMetadata { return a.meta }

// Run generates and validates a candidate SQL statement for the query.
func (a *DataAnalystAgent) Run(ctx context.Context, task models.AgentTask, rctx RunContext) models.AgentResult {
	query := task.Query()
	if query == "" {
		query = rctx.UserQuery
	}

	raw, err := a.llm.Complete(ctx, llmclient.Request{System: dataAnalystSystemPrompt, User: query})
	if err != nil {
		return models.NeedsRetry(err.Error())
	}

	statement := strings.TrimSpace(raw)
	if strings.Contains(statement, cannotGenerateSentinel) {
		return models.Failure("data_analyst could not generate a statement for this question")
	}
	if !validSQLLeadWord.MatchString(statement) {
		return models.Failure("data_analyst emitted a non-SQL response")
	}

	return models.Success(
		map[string]any{"generated_sql": statement},
		[]string{"generated a SQL statement pending approval"},
		models.AgentRecommendation{
			ActionType:       "execute_custom_sql",
			Payload:          map[string]any{"sql": statement},
			Reasoning:        "free-form analytical question answered with generated SQL",
			RequiresApproval: true,
		},
	)
}
