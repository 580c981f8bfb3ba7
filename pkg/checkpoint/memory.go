package checkpoint

import (
	"context"
	"sync"

	"github.com/opsreasoner/opsreasoner/pkg/models"
)

// MemoryStore is an in-process Store for tests and single-instance
// deployments without Redis configured.
type MemoryStore struct {
	mu    sync.RWMutex
	rows  map[string]*models.GraphState
}

// NewMemoryStore builds an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[string]*models.GraphState)}
}

// Save stores a deep-enough copy of state under its thread_id (the struct
// is copied by value; slice/map fields are shared, matching single-writer
// access within one run).
func (s *MemoryStore) Save(ctx context.Context, state *models.GraphState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *state
	s.rows[state.ThreadID] = &copied
	return nil
}

// Load returns the stored state for threadID, or ErrNotFound.
func (s *MemoryStore) Load(ctx context.Context, threadID string) (*models.GraphState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.rows[threadID]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *row
	return &copied, nil
}

// Delete removes the checkpoint for threadID.
func (s *MemoryStore) Delete(ctx context.Context, threadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, threadID)
	return nil
}

var _ Store = (*MemoryStore)(nil)
