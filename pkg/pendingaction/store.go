// Package pendingaction is the durable store for proposed mutations awaiting
// human approval. It enforces the lifecycle invariants the HITL gate relies
// on: only an approved action may execute, executed/rejected are terminal,
// and updated_at only moves forward.
package pendingaction

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/opsreasoner/opsreasoner/ent"
	"github.com/opsreasoner/opsreasoner/ent/pendingaction"
	"github.com/opsreasoner/opsreasoner/pkg/models"
)

// idSeq guarantees uniqueness for ids minted within the same nanosecond.
var idSeq atomic.Int64

// nextID mints a primary key for a new row: a nanosecond timestamp with a
// per-process sequence folded into the low bits.
func nextID() int64 {
	return time.Now().UnixNano()<<8 | (idSeq.Add(1) & 0xff)
}

// ErrNotFound is returned when a lookup id has no row.
var ErrNotFound = fmt.Errorf("pending action not found")

// ErrInvalidTransition is returned when a status change would violate the
// lifecycle invariants (I1: only approved -> executed; I2: executed/rejected
// are terminal).
var ErrInvalidTransition = fmt.Errorf("invalid pending action status transition")

// Store persists PendingAction rows via the generated ent client.
type Store struct {
	client *ent.Client
}

// New builds a Store backed by client.
func New(client *ent.Client) *Store {
	return &Store{client: client}
}

// Create inserts one pending action row. status is "pending" unless
// requiresApproval is false, in which case it is inserted already approved.
func (s *Store) Create(ctx context.Context, threadID string, rec models.AgentRecommendation, agent models.AgentName) (*models.PendingAction, error) {
	status := pendingaction.StatusPending
	if !rec.RequiresApproval {
		status = pendingaction.StatusApproved
	}

	row, err := s.client.PendingAction.Create().
		SetID(nextID()).
		SetAgent(string(agent)).
		SetActionType(rec.ActionType).
		SetPayload(rec.Payload).
		SetReasoning(rec.Reasoning).
		SetStatus(status).
		SetThreadID(threadID).
		Save(ctx)
	if err != nil {
		return nil, fmt.Errorf("pendingaction: create: %w", err)
	}
	return toModel(row), nil
}

// Get retrieves one row by id.
func (s *Store) Get(ctx context.Context, id int64) (*models.PendingAction, error) {
	row, err := s.client.PendingAction.Get(ctx, id)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("pendingaction: get %d: %w", id, err)
	}
	return toModel(row), nil
}

// ListByThread returns every row proposed within one run, oldest first.
func (s *Store) ListByThread(ctx context.Context, threadID string) ([]*models.PendingAction, error) {
	rows, err := s.client.PendingAction.Query().
		Where(pendingaction.ThreadIDEQ(threadID)).
		Order(ent.Asc(pendingaction.FieldCreatedAt)).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("pendingaction: list by thread %s: %w", threadID, err)
	}
	return toModels(rows), nil
}

// ListPending returns every row still awaiting a decision, across all runs.
func (s *Store) ListPending(ctx context.Context) ([]*models.PendingAction, error) {
	rows, err := s.client.PendingAction.Query().
		Where(pendingaction.StatusEQ(pendingaction.StatusPending)).
		Order(ent.Asc(pendingaction.FieldCreatedAt)).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("pendingaction: list pending: %w", err)
	}
	return toModels(rows), nil
}

// Approve transitions a pending row to approved. Only valid from pending.
func (s *Store) Approve(ctx context.Context, id int64) (*models.PendingAction, error) {
	return s.transition(ctx, id, pendingaction.StatusPending, pendingaction.StatusApproved, nil)
}

// Reject transitions a pending row to rejected. Only valid from pending.
func (s *Store) Reject(ctx context.Context, id int64) (*models.PendingAction, error) {
	return s.transition(ctx, id, pendingaction.StatusPending, pendingaction.StatusRejected, nil)
}

// Execute transitions an approved row to executed and records the outcome
// (I1). Only valid from approved — executed and rejected are terminal (I2).
func (s *Store) Execute(ctx context.Context, id int64, result map[string]any) (*models.PendingAction, error) {
	return s.transition(ctx, id, pendingaction.StatusApproved, pendingaction.StatusExecuted, result)
}

// transition performs a locked read-check-write: it opens a transaction, locks
// the row, verifies the current status equals from, and writes to. updated_at
// is always bumped forward by the ent UpdateDefault hook (I3).
func (s *Store) transition(ctx context.Context, id int64, from, to pendingaction.Status, result map[string]any) (*models.PendingAction, error) {
	tx, err := s.client.Tx(ctx)
	if err != nil {
		return nil, fmt.Errorf("pendingaction: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	row, err := tx.PendingAction.Query().
		Where(pendingaction.IDEQ(id)).
		ForUpdate().
		Only(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("pendingaction: lock %d: %w", id, err)
	}
	if row.Status != from {
		return nil, fmt.Errorf("%w: %d is %s, need %s", ErrInvalidTransition, id, row.Status, from)
	}

	update := tx.PendingAction.UpdateOneID(id).SetStatus(to).SetUpdatedAt(time.Now())
	if result != nil {
		update = update.SetExecutionResult(result)
	}
	updated, err := update.Save(ctx)
	if err != nil {
		return nil, fmt.Errorf("pendingaction: transition %d %s->%s: %w", id, from, to, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("pendingaction: commit %d: %w", id, err)
	}
	return toModel(updated), nil
}

func toModel(row *ent.PendingAction) *models.PendingAction {
	return &models.PendingAction{
		ID:              row.ID,
		Agent:           models.AgentName(row.Agent),
		ActionType:      row.ActionType,
		Payload:         row.Payload,
		Reasoning:       row.Reasoning,
		Status:          models.PendingActionStatus(row.Status),
		ExecutionResult: row.ExecutionResult,
		ThreadID:        row.ThreadID,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
}

func toModels(rows []*ent.PendingAction) []*models.PendingAction {
	out := make([]*models.PendingAction, 0, len(rows))
	for _, r := range rows {
		out = append(out, toModel(r))
	}
	return out
}
