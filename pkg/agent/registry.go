package agent

import (
	"fmt"
	"sync"

	"github.com/opsreasoner/opsreasoner/pkg/models"
)

// ErrAgentNotFound is returned when a lookup name has no registered agent.
var ErrAgentNotFound = fmt.Errorf("agent not found")

// Registry stores live Agent instances in memory with thread-safe access.
// Consumed by the dispatcher to look up the agent named in each task.
type Registry struct {
	agents map[models.AgentName]Agent
	mu     sync.RWMutex
}

// NewRegistry creates a new agent registry from a defensive copy of agents.
func NewRegistry(agents map[models.AgentName]Agent) *Registry {
	copied := make(map[models.AgentName]Agent, len(agents))
	for k, v := range agents {
		copied[k] = v
	}
	return &Registry{agents: copied}
}

// Get retrieves an agent by name (thread-safe).
func (r *Registry) Get(name models.AgentName) (Agent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, exists := r.agents[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrAgentNotFound, name)
	}
	return a, nil
}

// GetAll returns all registered agents (thread-safe, returns a copy).
func (r *Registry) GetAll() map[models.AgentName]Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[models.AgentName]Agent, len(r.agents))
	for k, v := range r.agents {
		result[k] = v
	}
	return result
}

// Has checks if an agent exists in the registry (thread-safe).
func (r *Registry) Has(name models.AgentName) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.agents[name]
	return exists
}

// Len returns the number of agents in the registry (thread-safe).
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.agents)
}
