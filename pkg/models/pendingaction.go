package models

import "time"

// PendingActionStatus is the finite status set a PendingAction row moves
// through. Transitions are validated by pkg/pendingaction, not here.
type PendingActionStatus string

const (
	PendingActionPending  PendingActionStatus = "pending"
	PendingActionApproved PendingActionStatus = "approved"
	PendingActionRejected PendingActionStatus = "rejected"
	PendingActionExecuted PendingActionStatus = "executed"
)

// PendingAction is the durable view of a proposed mutation awaiting (or
// having received) human approval. Mirrors the ent PendingAction entity.
type PendingAction struct {
	ID              int64
	Agent           AgentName
	ActionType      string
	Payload         map[string]any
	Reasoning       string
	Status          PendingActionStatus
	ExecutionResult map[string]any
	ThreadID        string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

