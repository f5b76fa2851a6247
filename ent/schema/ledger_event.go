package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// LedgerEvent records one change to a learner's progress record.
type LedgerEvent struct {
	ent.Schema
}

func (LedgerEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (LedgerEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("user_id").NotEmpty(),
		field.String("kind").NotEmpty().
			Comment("initialized, lesson_completed, achievement_unlocked, module_changed, reset or maxxp_repaired"),
		field.String("lesson_id").Optional().Nillable(),
		field.Int("module").Default(0),
		field.Int("xp_delta").Default(0),
		field.Int("coins_delta").Default(0),
		field.String("detail").Default(""),
	}
}

func (LedgerEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("user_id", "sequence"),
	}
}
