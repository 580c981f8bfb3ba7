package orchestrator

import (
	"github.com/opsreasoner/opsreasoner/pkg/models"
)

// EvaluateDecision is the evaluator's verdict: either proceed to synthesis
// or request another planning pass.
type EvaluateDecision struct {
	Synthesize     bool
	RouteToAnalyst bool
	Reason         string
}

// Evaluate applies the six ordered rules against post-dispatch state.
func Evaluate(state *models.GraphState) EvaluateDecision {
	if state.ReplanCount >= state.MaxReplans {
		return EvaluateDecision{Synthesize: true, Reason: "max replans reached"}
	}

	if len(state.CannotHandleAgents) > 0 && !state.HasAgentRun(models.AgentDataAnalyst) {
		return EvaluateDecision{RouteToAnalyst: true, Reason: "agent declined query, routing to data_analyst"}
	}

	if len(state.AgentFindings) == 0 {
		return EvaluateDecision{Reason: "no agents returned findings"}
	}

	if len(state.BattlePlan) > 0 && failedHighestPriority(state) {
		return EvaluateDecision{Reason: "primary agent failed"}
	}

	if state.EffectivelyEmptyFindings() {
		return EvaluateDecision{Reason: "all agents returned empty results"}
	}

	return EvaluateDecision{Synthesize: true}
}

// failedHighestPriority reports whether the plan's highest-priority (lowest
// Priority value) agent produced no findings and no insights.
func failedHighestPriority(state *models.GraphState) bool {
	primary := state.BattlePlan[0]
	for _, task := range state.BattlePlan[1:] {
		if task.Priority < primary.Priority {
			primary = task
		}
	}
	return !state.HasAgentRun(primary.Agent)
}
