package config

import (
	"fmt"
	"sync"

	"github.com/opsreasoner/opsreasoner/pkg/models"
)

// AgentRegistry stores agent metadata in memory with thread-safe access.
// Consumed only by the planner to compose its system prompt.
type AgentRegistry struct {
	agents map[models.AgentName]*models.AgentMetadata
	mu     sync.RWMutex
}

// NewAgentRegistry creates a new agent registry from a defensive copy of agents.
func NewAgentRegistry(agents map[models.AgentName]*models.AgentMetadata) *AgentRegistry {
	copied := make(map[models.AgentName]*models.AgentMetadata, len(agents))
	for k, v := range agents {
		copied[k] = v
	}
	return &AgentRegistry{agents: copied}
}

// Get retrieves agent metadata by name (thread-safe).
func (r *AgentRegistry) Get(name models.AgentName) (*models.AgentMetadata, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	agent, exists := r.agents[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrAgentNotFound, name)
	}
	return agent, nil
}

// GetAll returns all agent metadata (thread-safe, returns a copy).
func (r *AgentRegistry) GetAll() map[models.AgentName]*models.AgentMetadata {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[models.AgentName]*models.AgentMetadata, len(r.agents))
	for k, v := range r.agents {
		result[k] = v
	}
	return result
}

// Has checks if an agent exists in the registry (thread-safe).
func (r *AgentRegistry) Has(name models.AgentName) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.agents[name]
	return exists
}

// Len returns the number of agents in the registry (thread-safe).
func (r *AgentRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.agents)
}
