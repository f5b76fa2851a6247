// Package achievements lists earned and still-locked achievements.
package achievements

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/yufin/yufin/internal/progress"
	"github.com/yufin/yufin/internal/router"
	"github.com/yufin/yufin/internal/screen"
	"github.com/yufin/yufin/internal/ui/components"
	"github.com/yufin/yufin/internal/ui/layout"
	"github.com/yufin/yufin/internal/ui/theme"
)

// AchievementsScreen is a read-only view of a record's achievements.
type AchievementsScreen struct {
	rec *progress.Record
}

var _ screen.Screen = (*AchievementsScreen)(nil)
var _ screen.KeyHintProvider = (*AchievementsScreen)(nil)

// New creates the screen. rec may be nil while progress is loading.
func New(rec *progress.Record) *AchievementsScreen {
	return &AchievementsScreen{rec: rec}
}

func (s *AchievementsScreen) Init() tea.Cmd {
	return nil
}

func (s *AchievementsScreen) Title() string {
	return "Achievements"
}

func (s *AchievementsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{{Key: "Enter", Description: "Back"}}
}

func (s *AchievementsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case screen.ProgressMsg:
		s.rec = msg.Record
	case tea.KeyMsg:
		if msg.String() == "enter" {
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

// rows pairs every catalog entry with the earned copy, if any, followed by
// earned achievements no longer in the catalog.
func (s *AchievementsScreen) rows() []progress.Achievement {
	earned := map[string]progress.Achievement{}
	if s.rec != nil {
		for _, a := range s.rec.Achievements {
			earned[a.ID] = a
		}
	}

	var out []progress.Achievement
	seen := map[string]bool{}
	for _, a := range progress.Catalog() {
		if e, ok := earned[a.ID]; ok {
			a = e
		}
		out = append(out, a)
		seen[a.ID] = true
	}
	if s.rec != nil {
		for _, a := range s.rec.Achievements {
			if !seen[a.ID] {
				out = append(out, a)
			}
		}
	}
	return out
}

func (s *AchievementsScreen) View(width, height int) string {
	cw := components.ContentWidth(width)

	var b strings.Builder
	b.WriteString(theme.Title.Width(cw).Render("Achievements"))
	b.WriteString("\n\n")

	for _, a := range s.rows() {
		if a.EarnedAt.IsZero() {
			b.WriteString(theme.Locked.Render(fmt.Sprintf("🔒 %s  %s", a.Name, a.Description)))
		} else {
			b.WriteString(theme.Unlocked.Render(fmt.Sprintf("%s %s", a.Icon, a.Name)))
			b.WriteString(theme.Hint.Render(fmt.Sprintf("  %s · %s", a.Description, a.EarnedAt.Format("02/01/2006"))))
		}
		b.WriteString("\n")
	}

	return components.Frame(b.String(), width, height)
}
