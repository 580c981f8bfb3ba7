// Package memory queries and appends episodic incidents against the
// external vector store, entirely through the tool transport — it holds no
// database connection of its own.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/opsreasoner/opsreasoner/pkg/models"
	"github.com/opsreasoner/opsreasoner/pkg/tooltransport"
)

const (
	toolQuerySimilar = "query_vector_memory"
	toolAppend       = "save_to_memory"
)

// Invoker is the subset of tooltransport.Client the memory service needs.
type Invoker interface {
	Invoke(ctx context.Context, tool string, args map[string]any) (any, error)
}

// Service is the episodic-memory facade used by the historian agent and the
// post-run memory-recording step.
type Service struct {
	transport Invoker
}

// New builds a memory Service backed by the given tool-transport invoker.
func New(transport Invoker) *Service {
	return &Service{transport: transport}
}

// QuerySimilar returns up to k incidents ranked by similarity to text.
func (s *Service) QuerySimilar(ctx context.Context, text string, k int) ([]models.MemoryHit, error) {
	raw, err := s.transport.Invoke(ctx, toolQuerySimilar, map[string]any{
		"query": text,
		"k":     k,
	})
	if err != nil {
		return nil, err
	}
	return decodeHits(raw)
}

// Append persists a new incident and returns its stable id. Incident.ID and
// Incident.CreatedAt are ignored on input; the store assigns both.
func (s *Service) Append(ctx context.Context, incident models.MemoryIncident) (string, error) {
	args := map[string]any{
		"summary": incident.Summary,
	}
	if incident.RootCause != "" {
		args["root_cause"] = incident.RootCause
	}
	if incident.ActionTaken != "" {
		args["action_taken"] = incident.ActionTaken
	}
	if incident.Outcome != "" {
		args["outcome"] = incident.Outcome
	}
	if len(incident.Embedding) > 0 {
		args["embedding"] = incident.Embedding
	}

	raw, err := s.transport.Invoke(ctx, toolAppend, args)
	if err != nil {
		return "", err
	}

	m, ok := raw.(map[string]any)
	if !ok {
		return "", &tooltransport.ToolInvocationError{Tool: toolAppend, Type: "malformed_result", Message: "expected object result"}
	}
	id, ok := m["id"].(string)
	if !ok || id == "" {
		return "", &tooltransport.ToolInvocationError{Tool: toolAppend, Type: "malformed_result", Message: "missing id in result"}
	}
	return id, nil
}

func decodeHits(raw any) ([]models.MemoryHit, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, &tooltransport.ToolInvocationError{Tool: toolQuerySimilar, Type: "malformed_result", Message: "expected object result"}
	}
	matchesRaw, ok := m["matches"]
	if !ok {
		return nil, nil
	}
	encoded, err := json.Marshal(matchesRaw)
	if err != nil {
		return nil, fmt.Errorf("memory: re-encode matches: %w", err)
	}

	var rows []struct {
		ID          string  `json:"id"`
		Summary     string  `json:"summary"`
		RootCause   string  `json:"root_cause"`
		ActionTaken string  `json:"action_taken"`
		Outcome     string  `json:"outcome"`
		Similarity  float64 `json:"similarity"`
		CreatedAt   string  `json:"created_at"`
	}
	if err := json.Unmarshal(encoded, &rows); err != nil {
		return nil, fmt.Errorf("memory: decode matches: %w", err)
	}

	hits := make([]models.MemoryHit, 0, len(rows))
	for _, r := range rows {
		incident := models.MemoryIncident{
			ID:          r.ID,
			Summary:     r.Summary,
			RootCause:   r.RootCause,
			ActionTaken: r.ActionTaken,
			Outcome:     r.Outcome,
		}
		if r.CreatedAt != "" {
			if ts, err := time.Parse(time.RFC3339, r.CreatedAt); err == nil {
				incident.CreatedAt = ts
			}
		}
		hits = append(hits, models.MemoryHit{Incident: incident, Similarity: r.Similarity})
	}
	return hits, nil
}
