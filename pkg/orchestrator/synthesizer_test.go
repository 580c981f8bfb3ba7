package orchestrator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsreasoner/opsreasoner/pkg/llmclient"
	"github.com/opsreasoner/opsreasoner/pkg/models"
)

// fakeLLM scripts chat completions for orchestrator tests.
type fakeLLM struct {
	complete func(req llmclient.Request) (string, error)
}

func (f *fakeLLM) Complete(_ context.Context, req llmclient.Request) (string, error) {
	return f.complete(req)
}

func llmReturning(text string) *fakeLLM {
	return &fakeLLM{complete: func(llmclient.Request) (string, error) { return text, nil }}
}

func llmFailing() *fakeLLM {
	return &fakeLLM{complete: func(llmclient.Request) (string, error) {
		return "", errors.New("completion endpoint unavailable")
	}}
}

func TestSynthesizeUsesLLMNarrative(t *testing.T) {
	s := NewSynthesizer(llmReturning("Revenue held steady; the Widget remains the top seller."))
	state := stateWithPlan()
	state.AgentFindings[models.AgentSales] = map[string]any{"revenue": 900.0}
	state.AgentInsights[models.AgentSales] = []string{"revenue for the window: 900"}

	s.Synthesize(context.Background(), state)

	assert.Equal(t, "Revenue held steady; the Widget remains the top seller.", state.FinalAnswer)
	assert.Equal(t, state.FinalAnswer, state.Diagnosis.Narrative)
	assert.Equal(t, []string{"revenue for the window: 900"}, state.Diagnosis.KeyFindings)
}

func TestSynthesizeDegradesToDeterministicSummary(t *testing.T) {
	s := NewSynthesizer(llmFailing())
	state := stateWithPlan()
	state.AgentInsights[models.AgentSales] = []string{"orders placed: 41"}
	state.AddSystemWarning("marketing: tool transport unreachable")

	s.Synthesize(context.Background(), state)

	assert.True(t, strings.HasPrefix(state.FinalAnswer, "Summary for: "))
	assert.Contains(t, state.FinalAnswer, "- orders placed: 41")
	assert.Contains(t, state.FinalAnswer, "- warning: marketing: tool transport unreachable")
}

func TestSynthesizeConfidenceTracksInsightCount(t *testing.T) {
	tests := []struct {
		insights int
		want     float64
	}{
		{0, 0.5},
		{1, 0.6},
		{4, 0.9},
		{5, 0.95},
		{12, 0.95},
	}

	for _, tt := range tests {
		s := NewSynthesizer(llmReturning("narrative"))
		state := stateWithPlan()
		for i := 0; i < tt.insights; i++ {
			state.AgentInsights[models.AgentSales] = append(state.AgentInsights[models.AgentSales], "insight")
		}

		s.Synthesize(context.Background(), state)

		assert.InDelta(t, tt.want, state.Diagnosis.Confidence, 1e-9, "insights=%d", tt.insights)
		assert.LessOrEqual(t, state.Diagnosis.Confidence, 0.95)
		assert.GreaterOrEqual(t, state.Diagnosis.Confidence, 0.0)
	}
}

func TestSynthesizeCollectsApprovalRequiredProposals(t *testing.T) {
	s := NewSynthesizer(llmReturning("narrative"))
	state := stateWithPlan()
	state.AgentFindings[models.AgentInventory] = map[string]any{"products": []any{"x"}}
	state.Recommendations = []models.AgentRecommendation{
		{ActionType: "restock_item", RequiresApproval: true},
		{ActionType: "inspect_report", RequiresApproval: false},
		{ActionType: "execute_custom_sql", RequiresApproval: true},
	}

	s.Synthesize(context.Background(), state)

	require.Len(t, state.PendingActionProposals, 2)
	assert.True(t, state.HITLWait)
	for _, p := range state.PendingActionProposals {
		assert.True(t, p.RequiresApproval)
	}
}

func TestSynthesizeNoProposalsNoWait(t *testing.T) {
	s := NewSynthesizer(llmReturning("narrative"))
	state := stateWithPlan()
	state.Recommendations = []models.AgentRecommendation{
		{ActionType: "inspect_report", RequiresApproval: false},
	}

	s.Synthesize(context.Background(), state)

	assert.Empty(t, state.PendingActionProposals)
	assert.False(t, state.HITLWait)
}

func TestSynthesisContextCarriesEvidence(t *testing.T) {
	state := stateWithPlan()
	state.AgentFindings[models.AgentSales] = map[string]any{"revenue": 900.0}
	state.AgentInsights[models.AgentSales] = []string{"revenue for the window: 900"}
	state.MemoryContext = []models.MemoryHit{
		{Incident: models.MemoryIncident{Summary: "sales dip after campaign pause", RootCause: "budget cut"}, Similarity: 0.88},
	}
	state.AddSystemWarning("support: timed out")

	got := buildSynthesisContext(state)

	assert.Contains(t, got, "Question: why did sales drop")
	assert.Contains(t, got, `"revenue":900`)
	assert.Contains(t, got, "- revenue for the window: 900")
	assert.Contains(t, got, "sales dip after campaign pause")
	assert.Contains(t, got, "root cause: budget cut")
	assert.Contains(t, got, "- support: timed out")
}
