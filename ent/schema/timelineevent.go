package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// TimelineEvent holds the schema definition for the TimelineEvent entity.
// An append-only, sequence-numbered audit trail of what the dispatcher ran
// and in what order, for one run (thread_id).
type TimelineEvent struct {
	ent.Schema
}

// Fields of the TimelineEvent.
func (TimelineEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.String("thread_id").
			Immutable(),
		field.Int("sequence_number").
			Immutable().
			Comment("Order within the run"),
		field.String("agent").
			Immutable(),
		field.Enum("event_type").
			Values("task_assigned", "task_completed", "task_failed", "replan", "hitl_wait", "hitl_resumed").
			Immutable(),
		field.Text("content").
			Optional(),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
	}
}

// Indexes of the TimelineEvent.
func (TimelineEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("thread_id", "sequence_number"),
		index.Fields("created_at"),
	}
}
