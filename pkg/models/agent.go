// Package models holds the data types shared across the orchestration engine:
// agent tasks and results, the per-run graph state, pending actions, and
// memory incidents. Nothing here talks to a network or a database.
package models

// AgentName identifies one of the fixed domain-specialist workers.
type AgentName string

const (
	AgentSales        AgentName = "sales"
	AgentInventory    AgentName = "inventory"
	AgentMarketing    AgentName = "marketing"
	AgentSupport      AgentName = "support"
	AgentDataAnalyst  AgentName = "data_analyst"
	AgentHistorian    AgentName = "historian"
)

// AgentTask is one unit of dispatch work. Immutable once planned.
type AgentTask struct {
	Agent       AgentName
	Objective   string
	Parameters  map[string]any
	Priority    int // 1 = highest
	ResultSlot  string
}

// Mode returns the capability mode carried in Parameters["mode"], or "" if absent.
func (t AgentTask) Mode() string {
	if t.Parameters == nil {
		return ""
	}
	mode, _ := t.Parameters["mode"].(string)
	return mode
}

// Query returns the original user query carried in Parameters["query"], or "" if absent.
func (t AgentTask) Query() string {
	if t.Parameters == nil {
		return ""
	}
	q, _ := t.Parameters["query"].(string)
	return q
}

// ResultStatus tags the four possible shapes an AgentResult can take.
type ResultStatus string

const (
	ResultSuccess      ResultStatus = "success"
	ResultFailure      ResultStatus = "failure"
	ResultNeedsRetry   ResultStatus = "needs_retry"
	ResultCannotHandle ResultStatus = "cannot_handle"
)

// AgentRecommendation is a proposed action surfaced by an agent. Any
// recommendation that would mutate external state must set RequiresApproval.
type AgentRecommendation struct {
	ActionType       string
	Payload          map[string]any
	Reasoning        string
	RequiresApproval bool
}

// AgentResult is the tagged union every agent run() returns. Exactly one
// interpretation applies depending on Status.
type AgentResult struct {
	Status ResultStatus

	Findings        map[string]any
	Insights        []string
	Recommendations []AgentRecommendation
	Error           string

	// Populated only when Status == ResultCannotHandle.
	CannotHandleReason    string
	SuggestedSuccessor    AgentName
}

// Success builds a success result.
func Success(findings map[string]any, insights []string, recs ...AgentRecommendation) AgentResult {
	return AgentResult{Status: ResultSuccess, Findings: findings, Insights: insights, Recommendations: recs}
}

// Failure builds a failure result carrying an error string.
func Failure(err string) AgentResult {
	return AgentResult{Status: ResultFailure, Error: err}
}

// NeedsRetry builds a retry-requested result carrying an error string.
func NeedsRetry(err string) AgentResult {
	return AgentResult{Status: ResultNeedsRetry, Error: err}
}

// CannotHandle builds a cannot_handle result with a reason and suggested successor.
func CannotHandle(reason string, successor AgentName) AgentResult {
	return AgentResult{Status: ResultCannotHandle, CannotHandleReason: reason, SuggestedSuccessor: successor}
}

// IsEffectivelyEmpty reports whether a success result carries no substantive
// content: no non-empty findings, no non-blank insights, no non-zero numbers.
func (r AgentResult) IsEffectivelyEmpty() bool {
	if len(r.Recommendations) > 0 {
		return false
	}
	for _, insight := range r.Insights {
		if insight != "" {
			return false
		}
	}
	for _, v := range r.Findings {
		if !isEmptyValue(v) {
			return false
		}
	}
	return true
}

func isEmptyValue(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case []any:
		return len(val) == 0
	case map[string]any:
		return len(val) == 0
	case int:
		return val == 0
	case int64:
		return val == 0
	case float64:
		return val == 0
	case bool:
		return !val
	default:
		return false
	}
}

// CapabilityMetadata describes one named mode an agent supports.
type CapabilityMetadata struct {
	Name            string
	Description     string
	Parameters      []string
	ExampleQueries  [2]string
}

// AgentMetadata is the static, planner-facing description of an agent: what
// it is, what it can do, and what vocabulary routes a query to it.
type AgentMetadata struct {
	Name                  AgentName
	DisplayName           string
	Description           string
	Capabilities          []CapabilityMetadata
	Keywords              []string
	PriorityBoostPhrases  []string
}
