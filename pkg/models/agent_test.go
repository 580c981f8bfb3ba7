package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsEffectivelyEmpty(t *testing.T) {
	tests := []struct {
		name   string
		result AgentResult
		want   bool
	}{
		{"no content at all", Success(nil, nil), true},
		{"zero number", Success(map[string]any{"revenue": 0.0}, nil), true},
		{"empty list and map", Success(map[string]any{"products": []any{}, "by_day": map[string]any{}}, nil), true},
		{"blank string", Success(map[string]any{"note": ""}, nil), true},
		{"non-zero number", Success(map[string]any{"revenue": 12.5}, nil), false},
		{"non-empty list", Success(map[string]any{"products": []any{"x"}}, nil), false},
		{"non-blank insight", Success(nil, []string{"orders placed: 3"}), false},
		{"recommendation counts as content", Success(nil, nil, AgentRecommendation{ActionType: "restock_item"}), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.result.IsEffectivelyEmpty())
		})
	}
}

func TestTaskModeAndQueryAccessors(t *testing.T) {
	task := AgentTask{Parameters: map[string]any{"mode": "top_products", "query": "top sellers"}}
	assert.Equal(t, "top_products", task.Mode())
	assert.Equal(t, "top sellers", task.Query())

	empty := AgentTask{}
	assert.Empty(t, empty.Mode())
	assert.Empty(t, empty.Query())
}

func TestEffectivelyEmptyFindingsAcrossAgents(t *testing.T) {
	s := NewGraphState("t", "q", nil, nil, 2)
	assert.True(t, s.EffectivelyEmptyFindings())

	s.AgentFindings[AgentSales] = map[string]any{"revenue": 0.0}
	assert.True(t, s.EffectivelyEmptyFindings())

	s.AgentFindings[AgentSupport] = map[string]any{"ticket_count": 4}
	assert.False(t, s.EffectivelyEmptyFindings())
}

func TestAddSystemWarningDeduplicatesConsecutive(t *testing.T) {
	s := NewGraphState("t", "q", nil, nil, 2)
	s.AddSystemWarning("sales: unauthorized")
	s.AddSystemWarning("sales: unauthorized")
	s.AddSystemWarning("support: timeout")
	assert.Equal(t, []string{"sales: unauthorized", "support: timeout"}, s.SystemWarnings)
}
