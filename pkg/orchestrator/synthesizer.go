package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/opsreasoner/opsreasoner/pkg/llmclient"
	"github.com/opsreasoner/opsreasoner/pkg/models"
)

const maxConfidence = 0.95

const synthesisSystemPrompt = `You are the senior operations analyst for an e-commerce back office. ` +
	`You are handed the question a stakeholder asked plus the raw findings and insights a set of ` +
	`specialist agents collected. Write the answer you would give that stakeholder: specific numbers ` +
	`over vague trends, and when the question asks why something happened, state an explicit causal ` +
	`hypothesis and what evidence supports it. If the findings are thin, say so rather than pad.`

// Synthesizer turns collected agent findings into the user-visible answer:
// an LLM narrative when the call succeeds, a deterministic bullet summary of
// insights and warnings when it does not.
type Synthesizer struct {
	llm llmclient.Client
}

// NewSynthesizer builds a Synthesizer over llm.
func NewSynthesizer(llm llmclient.Client) *Synthesizer {
	return &Synthesizer{llm: llm}
}

// Synthesize writes the diagnosis, final answer, pending-action proposals and
// HITL flag into state. It never fails: LLM errors degrade to the
// deterministic summary.
func (s *Synthesizer) Synthesize(ctx context.Context, state *models.GraphState) {
	insights := flattenInsights(state)

	narrative := ""
	if s.llm != nil {
		answer, err := s.llm.Complete(ctx, llmclient.Request{
			System: synthesisSystemPrompt,
			User:   buildSynthesisContext(state),
		})
		if err == nil {
			narrative = strings.TrimSpace(answer)
		}
	}
	if narrative == "" {
		narrative = deterministicSummary(state, insights)
	}

	state.Diagnosis = models.Diagnosis{
		Narrative:   narrative,
		KeyFindings: insights,
		Confidence:  confidence(len(insights)),
	}
	state.FinalAnswer = narrative

	for _, rec := range state.Recommendations {
		if rec.RequiresApproval {
			state.PendingActionProposals = append(state.PendingActionProposals, rec)
		}
	}
	state.HITLWait = len(state.PendingActionProposals) > 0
}

// confidence maps insight count to diagnosis confidence, capped below 1 so a
// synthesized answer is never presented as certain.
func confidence(insightCount int) float64 {
	c := 0.5 + 0.1*float64(insightCount)
	if c > maxConfidence {
		return maxConfidence
	}
	return c
}

// buildSynthesisContext assembles the textual evidence block handed to the
// LLM: question, per-agent findings and insights, memory hits, warnings.
func buildSynthesisContext(state *models.GraphState) string {
	var sb strings.Builder
	sb.WriteString("Question: " + state.UserQuery + "\n")

	for _, name := range sortedAgentNames(state) {
		sb.WriteString("\n## " + string(name) + "\n")
		if findings, ok := state.AgentFindings[name]; ok && len(findings) > 0 {
			if encoded, err := json.Marshal(findings); err == nil {
				sb.WriteString("findings: " + string(encoded) + "\n")
			}
		}
		for _, insight := range state.AgentInsights[name] {
			sb.WriteString("- " + insight + "\n")
		}
	}

	if len(state.MemoryContext) > 0 {
		sb.WriteString("\n## Prior incidents\n")
		for _, hit := range state.MemoryContext {
			sb.WriteString(fmt.Sprintf("- %s (similarity %.2f)", hit.Incident.Summary, hit.Similarity))
			if hit.Incident.RootCause != "" {
				sb.WriteString(" root cause: " + hit.Incident.RootCause)
			}
			sb.WriteString("\n")
		}
	}

	if len(state.SystemWarnings) > 0 {
		sb.WriteString("\n## Warnings\n")
		for _, w := range state.SystemWarnings {
			sb.WriteString("- " + w + "\n")
		}
	}
	return sb.String()
}

// deterministicSummary is the degraded answer used when the synthesis LLM is
// unavailable: a bullet list of every agent insight and every warning.
func deterministicSummary(state *models.GraphState, insights []string) string {
	var sb strings.Builder
	sb.WriteString("Summary for: " + state.UserQuery + "\n")
	if len(insights) == 0 && len(state.SystemWarnings) == 0 {
		sb.WriteString("No agent produced findings for this question.\n")
	}
	for _, insight := range insights {
		sb.WriteString("- " + insight + "\n")
	}
	for _, w := range state.SystemWarnings {
		sb.WriteString("- warning: " + w + "\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// flattenInsights collects every agent's insights in stable agent-name order.
func flattenInsights(state *models.GraphState) []string {
	var out []string
	for _, name := range sortedAgentNames(state) {
		out = append(out, state.AgentInsights[name]...)
	}
	return out
}

func sortedAgentNames(state *models.GraphState) []models.AgentName {
	seen := make(map[models.AgentName]bool)
	var names []models.AgentName
	for name := range state.AgentFindings {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	for name := range state.AgentInsights {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}
