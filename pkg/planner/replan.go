package planner

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/opsreasoner/opsreasoner/pkg/llmclient"
	"github.com/opsreasoner/opsreasoner/pkg/models"
)

// AnalystTask builds the single data_analyst task emitted when an agent
// declines a query or every other planning path has run dry.
func AnalystTask(userQuery string) models.AgentTask {
	return models.AgentTask{
		Agent:     models.AgentDataAnalyst,
		Objective: "Generate custom SQL answering the question no specialist agent could",
		Parameters: map[string]any{
			"mode":  "custom_analysis",
			"query": userQuery,
		},
		Priority: 1,
	}
}

// Replan re-invokes the planning LLM with added context about what has
// already happened in this run: which agents failed or declined, and which
// already produced findings. The model is instructed to favor agents that
// have not yet been tried, or the data_analyst as a fallback. Tasks for
// agents that already produced findings are filtered out. If the LLM path
// yields nothing usable, a single data_analyst task is returned.
func (p *Planner) Replan(ctx context.Context, state *models.GraphState) []models.AgentTask {
	system := p.buildSystemPrompt()
	user := p.buildReplanMessage(state)

	raw, err := p.llm.Complete(ctx, llmclient.Request{System: system, User: user})
	if err == nil {
		tasks := p.parseAndFilter(raw, state.UserQuery)
		tasks = dropAlreadyAnswered(tasks, state)
		if len(tasks) > 0 {
			return tasks
		}
	}

	return []models.AgentTask{AnalystTask(state.UserQuery)}
}

func (p *Planner) buildReplanMessage(state *models.GraphState) string {
	var sb strings.Builder
	sb.WriteString(p.buildUserMessage(state))
	sb.WriteString("\n\nThis is a second planning pass")
	if state.ReplanReason != "" {
		sb.WriteString(" because: " + state.ReplanReason)
	}
	sb.WriteString(".\n")

	if declined := declinedAgents(state); len(declined) > 0 {
		sb.WriteString("Agents that declined the query: " + strings.Join(declined, ", ") + ".\n")
	}
	if answered := answeredAgents(state); len(answered) > 0 {
		sb.WriteString("Agents that already produced findings (do not re-assign): " +
			strings.Join(answered, ", ") + ".\n")
	}
	sb.WriteString("Favor agents not yet tried, or data_analyst as the fallback.")
	return sb.String()
}

func declinedAgents(state *models.GraphState) []string {
	seen := make(map[string]bool)
	var names []string
	for _, entry := range state.CannotHandleAgents {
		name := fmt.Sprintf("%s (%s)", entry.Agent, entry.Reason)
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

func answeredAgents(state *models.GraphState) []string {
	names := make([]string, 0, len(state.AgentFindings))
	for name := range state.AgentFindings {
		names = append(names, string(name))
	}
	sort.Strings(names)
	return names
}

// dropAlreadyAnswered filters out tasks for agents that already produced
// findings in a prior dispatch cycle.
func dropAlreadyAnswered(tasks []models.AgentTask, state *models.GraphState) []models.AgentTask {
	kept := tasks[:0]
	for _, task := range tasks {
		if _, done := state.AgentFindings[task.Agent]; done {
			continue
		}
		kept = append(kept, task)
	}
	return kept
}
