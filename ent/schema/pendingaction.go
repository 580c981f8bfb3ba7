package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// PendingAction holds the schema definition for the PendingAction entity.
// Durable record of a mutating recommendation proposed by an agent, awaiting
// (or having received) human approval before an external executor runs it.
type PendingAction struct {
	ent.Schema
}

// Fields of the PendingAction.
func (PendingAction) Fields() []ent.Field {
	return []ent.Field{
		field.Int64("id").
			Unique().
			Immutable(),
		field.String("agent").
			Immutable().
			Comment("Agent name that produced the recommendation"),
		field.String("action_type").
			Immutable(),
		field.JSON("payload", map[string]interface{}{}).
			Immutable(),
		field.Text("reasoning").
			Immutable(),
		field.Enum("status").
			Values("pending", "approved", "rejected", "executed").
			Default("pending"),
		field.JSON("execution_result", map[string]interface{}{}).
			Optional().
			Comment("Set once status transitions to executed"),
		field.String("thread_id").
			Immutable().
			Comment("Run that proposed this action"),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
		field.Time("updated_at").
			Default(time.Now).
			UpdateDefault(time.Now),
	}
}

// Indexes of the PendingAction.
func (PendingAction) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("status"),
		index.Fields("thread_id"),
		index.Fields("created_at"),
	}
}
