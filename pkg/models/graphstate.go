package models

// Diagnosis is the synthesizer's structured verdict for a run.
type Diagnosis struct {
	Narrative   string
	KeyFindings []string
	Confidence  float64
}

// CannotHandleEntry records one agent's refusal to handle the query.
type CannotHandleEntry struct {
	Agent  AgentName
	Query  string
	Reason string
}

// MemoryHit is one ranked incident returned by the memory service.
type MemoryHit struct {
	Incident   MemoryIncident
	Similarity float64
}

// GraphState is the full, checkpointable state of one run. The engine owns it
// for the duration of a run; the checkpoint store owns it between runs.
type GraphState struct {
	ThreadID string

	UserQuery          string
	ConversationHistory []string
	Metadata           map[string]any

	BattlePlan []AgentTask

	AgentFindings map[AgentName]map[string]any
	AgentInsights map[AgentName][]string

	Recommendations     []AgentRecommendation
	CannotHandleAgents  []CannotHandleEntry

	MemoryContext []MemoryHit

	Diagnosis Diagnosis

	PendingActionProposals []AgentRecommendation
	SystemWarnings         []string

	HITLWait         bool
	HITLPendingIDs   []int64
	HITLApprovedIDs  []int64
	HITLRejectedIDs  []int64
	HITLResumed      bool

	ReplanCount  int
	MaxReplans   int
	NeedsReplan  bool
	ReplanReason string
	RouteToAnalyst bool

	FinalAnswer string
	Diagnostics []string
}

// NewGraphState builds the initial state for a fresh run.
func NewGraphState(threadID, userQuery string, conversationHistory []string, metadata map[string]any, maxReplans int) *GraphState {
	return &GraphState{
		ThreadID:            threadID,
		UserQuery:           userQuery,
		ConversationHistory: conversationHistory,
		Metadata:            metadata,
		AgentFindings:       make(map[AgentName]map[string]any),
		AgentInsights:       make(map[AgentName][]string),
		MaxReplans:          maxReplans,
	}
}

// HasAgentRun reports whether the given agent has already produced findings
// or insights in this run (used by the evaluator and re-planner).
func (s *GraphState) HasAgentRun(agent AgentName) bool {
	if _, ok := s.AgentFindings[agent]; ok {
		return true
	}
	_, ok := s.AgentInsights[agent]
	return ok
}

// AddSystemWarning appends a warning, deduplicating consecutive identical entries.
func (s *GraphState) AddSystemWarning(warning string) {
	if n := len(s.SystemWarnings); n > 0 && s.SystemWarnings[n-1] == warning {
		return
	}
	s.SystemWarnings = append(s.SystemWarnings, warning)
}

// EffectivelyEmptyFindings reports whether every agent's stored findings are
// effectively empty (rule 5 of the evaluator).
func (s *GraphState) EffectivelyEmptyFindings() bool {
	if len(s.AgentFindings) == 0 {
		return true
	}
	for _, findings := range s.AgentFindings {
		for _, v := range findings {
			if !isEmptyValue(v) {
				return false
			}
		}
	}
	return true
}
