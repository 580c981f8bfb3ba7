// Package services holds the thin persistence services layered over the ent
// client: currently the dispatch timeline audit trail.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/opsreasoner/opsreasoner/ent"
	"github.com/opsreasoner/opsreasoner/ent/timelineevent"
	"github.com/opsreasoner/opsreasoner/pkg/models"
)

// TimelineService records and lists the append-only, sequence-numbered audit
// trail of what the engine dispatched for each run.
type TimelineService struct {
	client *ent.Client
}

// NewTimelineService creates a new TimelineService.
func NewTimelineService(client *ent.Client) *TimelineService {
	return &TimelineService{client: client}
}

// Record appends one event. The sequence number is assigned here: one past
// the thread's current highest, serialized through a transaction so two
// writers for the same thread cannot collide.
func (s *TimelineService) Record(ctx context.Context, event models.TimelineEvent) error {
	if event.ThreadID == "" {
		return fmt.Errorf("timeline: thread id is required")
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}

	tx, err := s.client.Tx(ctx)
	if err != nil {
		return fmt.Errorf("timeline: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	last, err := tx.TimelineEvent.Query().
		Where(timelineevent.ThreadIDEQ(event.ThreadID)).
		Order(ent.Desc(timelineevent.FieldSequenceNumber)).
		First(ctx)
	next := 1
	switch {
	case err == nil:
		next = last.SequenceNumber + 1
	case !ent.IsNotFound(err):
		return fmt.Errorf("timeline: read last sequence for %s: %w", event.ThreadID, err)
	}

	_, err = tx.TimelineEvent.Create().
		SetID(event.ID).
		SetThreadID(event.ThreadID).
		SetSequenceNumber(next).
		SetAgent(string(event.Agent)).
		SetEventType(timelineevent.EventType(event.EventType)).
		SetContent(event.Content).
		SetCreatedAt(time.Now()).
		Save(ctx)
	if err != nil {
		return fmt.Errorf("timeline: create event for %s: %w", event.ThreadID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("timeline: commit event for %s: %w", event.ThreadID, err)
	}
	return nil
}

// List returns a run's events in sequence order.
func (s *TimelineService) List(ctx context.Context, threadID string) ([]models.TimelineEvent, error) {
	rows, err := s.client.TimelineEvent.Query().
		Where(timelineevent.ThreadIDEQ(threadID)).
		Order(ent.Asc(timelineevent.FieldSequenceNumber)).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("timeline: list %s: %w", threadID, err)
	}

	events := make([]models.TimelineEvent, 0, len(rows))
	for _, row := range rows {
		events = append(events, models.TimelineEvent{
			ID:             row.ID,
			ThreadID:       row.ThreadID,
			SequenceNumber: row.SequenceNumber,
			Agent:          models.AgentName(row.Agent),
			EventType:      models.TimelineEventType(row.EventType),
			Content:        row.Content,
			CreatedAt:      row.CreatedAt,
		})
	}
	return events, nil
}
