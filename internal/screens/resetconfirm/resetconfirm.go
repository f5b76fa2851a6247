// Package resetconfirm guards the destructive progress reset behind an
// explicit confirmation.
package resetconfirm

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/yufin/yufin/internal/progress"
	"github.com/yufin/yufin/internal/router"
	"github.com/yufin/yufin/internal/screen"
	"github.com/yufin/yufin/internal/ui/components"
	"github.com/yufin/yufin/internal/ui/layout"
	"github.com/yufin/yufin/internal/ui/theme"
)

// Focus order: grade input, Cancel, Reset.
const (
	focusGrade = iota
	focusCancel
	focusReset
	focusCount
)

// ResetScreen asks for the new grade and a confirmation before resetting.
type ResetScreen struct {
	ctx    context.Context
	ledger *progress.Ledger
	userID string

	grade   components.TextInput
	cancel  components.Button
	reset   components.Button
	focus   int
	problem string
}

var _ screen.Screen = (*ResetScreen)(nil)
var _ screen.KeyHintProvider = (*ResetScreen)(nil)

// New creates a ResetScreen with the grade input prefilled with grade.
// Focus starts on Cancel.
func New(ctx context.Context, ledger *progress.Ledger, userID, grade string) *ResetScreen {
	s := &ResetScreen{
		ctx:    ctx,
		ledger: ledger,
		userID: userID,
		grade:  components.NewTextInput("grade, e.g. 6º Ano", grade, 32),
	}
	s.cancel = components.NewButton("Cancel", false, func() tea.Cmd {
		return func() tea.Msg { return router.PopScreenMsg{} }
	})
	s.reset = components.NewButton("Reset progress", false, s.confirm)
	s.reset.Danger = true
	s.setFocus(focusCancel)
	return s
}

func (s *ResetScreen) Init() tea.Cmd {
	return nil
}

func (s *ResetScreen) Title() string {
	return "Reset Progress"
}

func (s *ResetScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Tab", Description: "Next"},
		{Key: "Enter", Description: "Press"},
		{Key: "Esc", Description: "Cancel"},
	}
}

// confirm resets the learner and returns to the screen below.
func (s *ResetScreen) confirm() tea.Cmd {
	grade := s.grade.Value()
	if grade == "" {
		s.problem = "Enter the grade to start over in."
		return nil
	}
	ctx, ledger, userID := s.ctx, s.ledger, s.userID
	return func() tea.Msg {
		ledger.Reset(ctx, userID, grade)
		return router.PopScreenMsg{}
	}
}

func (s *ResetScreen) setFocus(f int) tea.Cmd {
	s.focus = (f + focusCount) % focusCount
	s.cancel.Active = s.focus == focusCancel
	s.reset.Active = s.focus == focusReset
	if s.focus == focusGrade {
		return s.grade.Focus()
	}
	s.grade.Blur()
	return nil
}

func (s *ResetScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		s.grade, cmd = s.grade.Update(msg)
		return s, cmd
	}

	switch kmsg.String() {
	case "tab", "down":
		return s, s.setFocus(s.focus + 1)
	case "shift+tab", "up":
		return s, s.setFocus(s.focus - 1)
	case "left", "right":
		switch s.focus {
		case focusCancel:
			return s, s.setFocus(focusReset)
		case focusReset:
			return s, s.setFocus(focusCancel)
		}
	}

	var cmd tea.Cmd
	switch s.focus {
	case focusGrade:
		if kmsg.String() == "enter" {
			return s, s.setFocus(focusCancel)
		}
		s.grade, cmd = s.grade.Update(msg)
	case focusCancel:
		s.cancel, cmd = s.cancel.Update(msg)
	case focusReset:
		s.reset, cmd = s.reset.Update(msg)
	}
	return s, cmd
}

func (s *ResetScreen) View(width, height int) string {
	cw := components.ContentWidth(width)

	var b strings.Builder
	b.WriteString(theme.Title.Width(cw).Render("Start over?"))
	b.WriteString("\n\n")
	b.WriteString(theme.Body.Width(cw).Render(
		"All XP, YuCoins, streak, lessons and achievements will be erased. This cannot be undone."))
	b.WriteString("\n\n")
	b.WriteString(theme.Hint.Render("New grade: "))
	b.WriteString(s.grade.View())
	b.WriteString("\n\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Center, s.cancel.View(), "   ", s.reset.View()))
	if s.problem != "" {
		b.WriteString("\n\n")
		b.WriteString(theme.Failure.Render(s.problem))
	}

	return components.Frame(b.String(), width, height)
}
