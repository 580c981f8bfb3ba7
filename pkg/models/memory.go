package models

import "time"

// MemoryIncident is a durable, append-only record of a past run's outcome,
// queried by similarity for context on future runs.
type MemoryIncident struct {
	ID         string
	Summary    string
	RootCause  string
	ActionTaken string
	Outcome    string
	Embedding  []float32
	CreatedAt  time.Time
}
