// Package complete records a finished lesson from the terminal.
package complete

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/yufin/yufin/internal/progress"
	"github.com/yufin/yufin/internal/router"
	"github.com/yufin/yufin/internal/screen"
	"github.com/yufin/yufin/internal/ui/components"
	"github.com/yufin/yufin/internal/ui/layout"
	"github.com/yufin/yufin/internal/ui/theme"
)

// terminalScore is recorded for lessons completed here; the terminal does
// not grade lessons.
const terminalScore = 100

// completedMsg carries the record before and after a completion.
type completedMsg struct {
	lessonID string
	before   *progress.Record
	after    *progress.Record
}

// CompleteScreen asks for a lesson ID and records its completion.
type CompleteScreen struct {
	ctx    context.Context
	ledger *progress.Ledger
	userID string
	now    func() time.Time

	input   components.TextInput
	opened  time.Time
	problem string
	result  *completedMsg
}

var _ screen.Screen = (*CompleteScreen)(nil)
var _ screen.KeyHintProvider = (*CompleteScreen)(nil)

// New creates a CompleteScreen for userID.
func New(ctx context.Context, ledger *progress.Ledger, userID string) *CompleteScreen {
	return &CompleteScreen{
		ctx:    ctx,
		ledger: ledger,
		userID: userID,
		now:    time.Now,
		input:  components.NewTextInput("lesson id, e.g. lessonA_module1", "", 64),
		opened: time.Now(),
	}
}

func (s *CompleteScreen) Init() tea.Cmd {
	s.opened = s.now()
	return s.input.Init()
}

func (s *CompleteScreen) Title() string {
	return "Complete Lesson"
}

func (s *CompleteScreen) KeyHints() []layout.KeyHint {
	if s.result != nil {
		return []layout.KeyHint{{Key: "Enter", Description: "Back"}}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Record"},
		{Key: "Esc", Description: "Cancel"},
	}
}

func (s *CompleteScreen) submit(lessonID string) tea.Cmd {
	ctx, ledger, userID := s.ctx, s.ledger, s.userID
	res := progress.LessonResult{
		LessonID:  lessonID,
		Score:     terminalScore,
		TimeSpent: int(s.now().Sub(s.opened).Seconds()),
	}
	return func() tea.Msg {
		before := ledger.Get(ctx, userID)
		after := ledger.CompleteLesson(ctx, userID, res)
		return completedMsg{lessonID: lessonID, before: before, after: after}
	}
}

func (s *CompleteScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case completedMsg:
		s.result = &msg
		if msg.after == nil {
			return s, nil
		}
		rec := msg.after
		return s, func() tea.Msg { return screen.ProgressMsg{Record: rec} }

	case tea.KeyMsg:
		if s.result != nil {
			if msg.String() == "enter" {
				return s, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return s, nil
		}
		if msg.String() == "enter" {
			id := s.input.Value()
			if id == "" {
				s.problem = "Enter a lesson ID."
				return s, nil
			}
			s.problem = ""
			return s, s.submit(id)
		}
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *CompleteScreen) View(width, height int) string {
	cw := components.ContentWidth(width)

	var b strings.Builder
	b.WriteString(theme.Title.Width(cw).Render("Which lesson did you finish?"))
	b.WriteString("\n\n")

	if s.result == nil {
		b.WriteString(s.input.View())
		if s.problem != "" {
			b.WriteString("\n\n")
			b.WriteString(theme.Failure.Render(s.problem))
		}
		return components.Frame(b.String(), width, height)
	}

	b.WriteString(renderResult(s.result))
	return components.Frame(b.String(), width, height)
}

func renderResult(r *completedMsg) string {
	if r.after == nil {
		return theme.Failure.Render("No progress found for this learner.")
	}
	if r.before != nil && r.before.HasCompleted(r.lessonID) {
		return theme.Notice.Render(fmt.Sprintf("%s was already completed. Nothing changed.", r.lessonID))
	}

	var lines []string
	lines = append(lines, theme.Unlocked.Render(
		fmt.Sprintf("+%d XP   +%d YuCoins", progress.LessonXP, progress.LessonYuCoins)))

	if n := len(r.after.CompletedLessons); n > 0 {
		last := r.after.CompletedLessons[n-1]
		lines = append(lines, theme.Body.Render(fmt.Sprintf("Counted toward module %d", last.Module)))
	}

	var earnedBefore int
	if r.before != nil {
		earnedBefore = len(r.before.Achievements)
	}
	if earnedBefore < len(r.after.Achievements) {
		for _, a := range r.after.Achievements[earnedBefore:] {
			lines = append(lines, theme.Unlocked.Render(fmt.Sprintf("%s %s  +%d XP  +%d YuCoins",
				a.Icon, a.Name, progress.AchievementBonusXP, progress.AchievementBonusYuCoins)))
		}
	}

	if r.before != nil && r.after.Level > r.before.Level {
		lines = append(lines, lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render(
			fmt.Sprintf("Level up! %d → %d", r.before.Level, r.after.Level)))
	}

	return strings.Join(lines, "\n")
}
