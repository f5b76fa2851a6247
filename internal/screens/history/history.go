package history

import (
	"context"
	"fmt"
	"image/color"
	"strings"

	tea "charm.land/bubbletea/v2"

	"charm.land/lipgloss/v2"

	"github.com/yufin/yufin/internal/router"
	"github.com/yufin/yufin/internal/screen"
	"github.com/yufin/yufin/internal/store"
	"github.com/yufin/yufin/internal/ui/layout"
	"github.com/yufin/yufin/internal/ui/theme"
)

// pageSize is how many recent events the screen loads.
const pageSize = 50

type historyLoadedMsg struct {
	Events []store.LedgerEventRecord
	Err    error
}

// HistoryScreen lists a learner's recent ledger events, newest first.
type HistoryScreen struct {
	ctx       context.Context
	eventRepo store.EventRepo
	userID    string
	events    []store.LedgerEventRecord
	selected  int
	expanded  map[int]bool
	loaded    bool
	errMsg    string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(ctx context.Context, eventRepo store.EventRepo, userID string) *HistoryScreen {
	return &HistoryScreen{
		ctx:       ctx,
		eventRepo: eventRepo,
		userID:    userID,
		expanded:  make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	ctx, repo, userID := s.ctx, s.eventRepo, s.userID
	return func() tea.Msg {
		events, err := repo.QueryLedgerEvents(ctx, userID, store.QueryOpts{Limit: pageSize})
		return historyLoadedMsg{Events: events, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.events = msg.Events
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < len(s.events)-1 {
				s.selected++
			}
			return s, nil
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
			return s, nil
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}
	if len(s.events) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  Nothing recorded yet. Complete a lesson!")
	}

	var b strings.Builder
	b.WriteString("\n")

	for i, ev := range s.events {
		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}

		line := fmt.Sprintf("%s%s  %s", prefix, ev.Timestamp.Local().Format("02/01 15:04"), describe(ev))

		style := lipgloss.NewStyle().Foreground(kindColor(ev.Kind))
		if i == s.selected {
			style = style.Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")

		if s.expanded[i] {
			detail := fmt.Sprintf("    #%d  %+d XP  %+d YuCoins", ev.Sequence, ev.XPDelta, ev.CoinsDelta)
			if ev.Detail != "" {
				detail += "  " + ev.Detail
			}
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
				lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).Render(detail)))
			b.WriteString("\n")
		}
	}

	return b.String()
}

// describe renders a one-line summary of ev.
func describe(ev store.LedgerEventRecord) string {
	switch ev.Kind {
	case store.EventLessonCompleted:
		lesson := "lesson"
		if ev.LessonID != nil {
			lesson = *ev.LessonID
		}
		return fmt.Sprintf("Completed %s (module %d)", lesson, ev.Module)
	case store.EventAchievementUnlocked:
		return "Unlocked " + ev.Detail
	case store.EventModuleChanged:
		return fmt.Sprintf("Moved to module %d", ev.Module)
	case store.EventReset:
		return "Progress reset"
	case store.EventInitialized:
		return "Started"
	case store.EventMaxXPRepaired:
		return "Level threshold repaired"
	}
	return ev.Kind
}

func kindColor(kind string) color.Color {
	switch kind {
	case store.EventLessonCompleted:
		return theme.Text
	case store.EventAchievementUnlocked:
		return theme.Gold
	case store.EventModuleChanged:
		return theme.Secondary
	case store.EventReset:
		return theme.Error
	default:
		return theme.TextDim
	}
}
