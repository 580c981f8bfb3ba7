// Package agent implements the six fixed domain-specialist workers and the
// shared scaffolding they sit on: the Agent interface, a thread-safe
// registry, and the scope-discipline helper every agent's cannot_handle
// check is built from.
package agent

import (
	"context"

	"github.com/opsreasoner/opsreasoner/pkg/models"
)

// RunContext carries everything an agent's Run needs beyond the task itself:
// the original query, recent conversation, memory hits surfaced earlier in
// the run, and a snapshot of what other agents have already produced.
type RunContext struct {
	UserQuery          string
	ConversationTail   []string
	MemoryHits         []models.MemoryHit
	Produced           map[models.AgentName]models.AgentResult
}

// Agent is the capability set every domain specialist implements.
type Agent interface {
	Metadata() models.AgentMetadata
	Run(ctx context.Context, task models.AgentTask, rctx RunContext) models.AgentResult
}
