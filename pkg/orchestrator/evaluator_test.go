package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/opsreasoner/opsreasoner/pkg/models"
)

func stateWithPlan(tasks ...models.AgentTask) *models.GraphState {
	s := models.NewGraphState("t", "why did sales drop", nil, nil, 2)
	s.BattlePlan = tasks
	return s
}

func TestEvaluateMaxReplansForcesSynthesis(t *testing.T) {
	s := stateWithPlan()
	s.ReplanCount = 2
	s.CannotHandleAgents = []models.CannotHandleEntry{{Agent: models.AgentSales}}

	d := Evaluate(s)
	assert.True(t, d.Synthesize)
}

func TestEvaluateCannotHandleRoutesToAnalyst(t *testing.T) {
	s := stateWithPlan(models.AgentTask{Agent: models.AgentSales, Priority: 1})
	s.CannotHandleAgents = []models.CannotHandleEntry{{Agent: models.AgentSales, Reason: "comparative"}}

	d := Evaluate(s)
	assert.False(t, d.Synthesize)
	assert.True(t, d.RouteToAnalyst)
}

func TestEvaluateCannotHandleAfterAnalystRanSynthesizes(t *testing.T) {
	s := stateWithPlan(models.AgentTask{Agent: models.AgentDataAnalyst, Priority: 1})
	s.CannotHandleAgents = []models.CannotHandleEntry{{Agent: models.AgentSales}}
	s.AgentFindings[models.AgentDataAnalyst] = map[string]any{"generated_sql": "SELECT 1"}

	d := Evaluate(s)
	assert.True(t, d.Synthesize)
	assert.False(t, d.RouteToAnalyst)
}

func TestEvaluateNoFindingsRequestsReplan(t *testing.T) {
	s := stateWithPlan(models.AgentTask{Agent: models.AgentSales, Priority: 1})

	d := Evaluate(s)
	assert.False(t, d.Synthesize)
	assert.Equal(t, "no agents returned findings", d.Reason)
}

func TestEvaluatePrimaryAgentFailureRequestsReplan(t *testing.T) {
	s := stateWithPlan(
		models.AgentTask{Agent: models.AgentSales, Priority: 1},
		models.AgentTask{Agent: models.AgentHistorian, Priority: 2},
	)
	s.AgentFindings[models.AgentHistorian] = map[string]any{"matches": []any{"x"}}

	d := Evaluate(s)
	assert.False(t, d.Synthesize)
	assert.Equal(t, "primary agent failed", d.Reason)
}

func TestEvaluateAllEmptyFindingsRequestsReplan(t *testing.T) {
	s := stateWithPlan(models.AgentTask{Agent: models.AgentSales, Priority: 1})
	s.AgentFindings[models.AgentSales] = map[string]any{"revenue": 0, "products": []any{}}

	d := Evaluate(s)
	assert.False(t, d.Synthesize)
	assert.Equal(t, "all agents returned empty results", d.Reason)
}

func TestEvaluateGoodFindingsSynthesize(t *testing.T) {
	s := stateWithPlan(models.AgentTask{Agent: models.AgentSales, Priority: 1})
	s.AgentFindings[models.AgentSales] = map[string]any{"revenue": 1250.50}

	d := Evaluate(s)
	assert.True(t, d.Synthesize)
}
