package models

import "time"

// TimelineEvent is one append-only, sequence-numbered row in a run's dispatch
// audit trail. Mirrors the ent TimelineEvent entity.
type TimelineEvent struct {
	ID             string
	ThreadID       string
	SequenceNumber int
	Agent          AgentName
	EventType      TimelineEventType
	Content        string
	CreatedAt      time.Time
}

// TimelineEventType enumerates what happened at one point in a run.
type TimelineEventType string

const (
	EventTaskAssigned  TimelineEventType = "task_assigned"
	EventTaskCompleted TimelineEventType = "task_completed"
	EventTaskFailed    TimelineEventType = "task_failed"
	EventReplan        TimelineEventType = "replan"
	EventHITLWait      TimelineEventType = "hitl_wait"
	EventHITLResumed   TimelineEventType = "hitl_resumed"
)
