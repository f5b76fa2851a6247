package progress

import (
	"fmt"
	"time"
)

// achievementRule unlocks an achievement when its condition holds.
type achievementRule struct {
	id          string
	name        string
	description string
	icon        string
	unlocked    func(r *Record) bool
	retired     bool
}

// never is the condition of retired rules.
func never(*Record) bool { return false }

func moduleCompleteRule(module int) achievementRule {
	return achievementRule{
		id:          ModuleCompleteID(module),
		name:        fmt.Sprintf("Módulo %d Concluído", module),
		description: fmt.Sprintf("Completou todas as lições do Módulo %d", module),
		icon:        "🏆",
		unlocked: func(r *Record) bool {
			return r.ByModule[module].Completed >= LessonsPerModule
		},
	}
}

// achievementRules is evaluated in order after every lesson completion.
// first_lesson and streak_3 are retired: they keep their ids but never unlock.
var achievementRules = []achievementRule{
	{id: "first_lesson", name: "Primeira Lição", description: "Completou a primeira lição", icon: "🎯", unlocked: never, retired: true},
	{id: "streak_3", name: "Sequência de 3 Dias", description: "Estudou 3 dias seguidos", icon: "🔥", unlocked: never, retired: true},
	moduleCompleteRule(1),
	moduleCompleteRule(2),
	moduleCompleteRule(3),
}

// ModuleCompleteID is the achievement id for finishing a module.
func ModuleCompleteID(module int) string {
	return fmt.Sprintf("module_%d_complete", module)
}

// Catalog lists the achievements a learner can still earn, in rule order.
// EarnedAt is zero.
func Catalog() []Achievement {
	var out []Achievement
	for _, rule := range achievementRules {
		if rule.retired {
			continue
		}
		out = append(out, Achievement{
			ID:          rule.id,
			Name:        rule.name,
			Description: rule.description,
			Icon:        rule.icon,
		})
	}
	return out
}

// newAchievements returns the achievements r qualifies for but has not earned.
func newAchievements(r *Record, now time.Time) []Achievement {
	var earned []Achievement
	for _, rule := range achievementRules {
		if r.HasAchievement(rule.id) || !rule.unlocked(r) {
			continue
		}
		earned = append(earned, Achievement{
			ID:          rule.id,
			Name:        rule.name,
			Description: rule.description,
			Icon:        rule.icon,
			EarnedAt:    now,
		})
	}
	return earned
}
