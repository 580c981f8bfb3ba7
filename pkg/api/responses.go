package api

import (
	"time"

	"github.com/opsreasoner/opsreasoner/pkg/models"
)

// QueryResponse is returned by POST /query and POST /query/resume.
type QueryResponse struct {
	Answer         string                  `json:"answer"`
	Diagnostics    []string                `json:"diagnostics"`
	PendingActions []PendingActionResponse `json:"pending_actions"`
	ThreadID       string                  `json:"thread_id"`
	HITLWaiting    bool                    `json:"hitl_waiting"`
}

// PendingActionResponse is the wire shape of one pending action.
type PendingActionResponse struct {
	ID              int64          `json:"id"`
	Agent           string         `json:"agent"`
	ActionType      string         `json:"action_type"`
	Payload         map[string]any `json:"payload"`
	Reasoning       string         `json:"reasoning"`
	Status          string         `json:"status"`
	ExecutionResult map[string]any `json:"execution_result,omitempty"`
	ThreadID        string         `json:"thread_id"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// PendingActionsListResponse is returned by GET /actions/pending.
type PendingActionsListResponse struct {
	Items []PendingActionResponse `json:"items"`
}

// ApproveActionResponse acknowledges an approve/reject decision.
type ApproveActionResponse struct {
	Action  PendingActionResponse `json:"action"`
	Message string                `json:"message"`
}

// ExecuteActionResponse is returned when an approved action is executed.
type ExecuteActionResponse struct {
	Success bool                  `json:"success"`
	Action  PendingActionResponse `json:"action"`
	Result  map[string]any        `json:"result"`
}

// IncidentResponse is the wire shape of one memory incident.
type IncidentResponse struct {
	ID         string  `json:"id"`
	Summary    string  `json:"summary"`
	RootCause  string  `json:"root_cause,omitempty"`
	Outcome    string  `json:"outcome,omitempty"`
	Similarity float64 `json:"similarity,omitempty"`
}

// IncidentsListResponse is returned by the history endpoints.
type IncidentsListResponse struct {
	Items []IncidentResponse `json:"items"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status string                       `json:"status"`
	Checks map[string]HealthCheckResult `json:"checks"`
}

// HealthCheckResult is the status of one dependency probe.
type HealthCheckResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

func toActionResponse(action *models.PendingAction) PendingActionResponse {
	return PendingActionResponse{
		ID:              action.ID,
		Agent:           string(action.Agent),
		ActionType:      action.ActionType,
		Payload:         action.Payload,
		Reasoning:       action.Reasoning,
		Status:          string(action.Status),
		ExecutionResult: action.ExecutionResult,
		ThreadID:        action.ThreadID,
		CreatedAt:       action.CreatedAt,
		UpdatedAt:       action.UpdatedAt,
	}
}

func toActionResponses(actions []*models.PendingAction) []PendingActionResponse {
	out := make([]PendingActionResponse, 0, len(actions))
	for _, a := range actions {
		out = append(out, toActionResponse(a))
	}
	return out
}
