// Package dashboard is the home screen: level, daily goal and the three
// free-tier module cards.
package dashboard

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/yufin/yufin/internal/progress"
	"github.com/yufin/yufin/internal/router"
	"github.com/yufin/yufin/internal/screen"
	"github.com/yufin/yufin/internal/screens/achievements"
	"github.com/yufin/yufin/internal/screens/complete"
	"github.com/yufin/yufin/internal/screens/history"
	"github.com/yufin/yufin/internal/screens/resetconfirm"
	"github.com/yufin/yufin/internal/store"
	"github.com/yufin/yufin/internal/ui/components"
	"github.com/yufin/yufin/internal/ui/layout"
	"github.com/yufin/yufin/internal/ui/theme"
)

// moduleSelectedMsg reports the outcome of a module change request.
type moduleSelectedMsg struct {
	requested int
	rec       *progress.Record
}

// DashboardScreen shows one learner's progress.
type DashboardScreen struct {
	ctx    context.Context
	ledger *progress.Ledger
	events store.EventRepo
	userID string
	grade  string

	rec    *progress.Record
	menu   components.Menu
	notice string
}

var _ screen.Screen = (*DashboardScreen)(nil)
var _ screen.KeyHintProvider = (*DashboardScreen)(nil)
var _ screen.Resumer = (*DashboardScreen)(nil)

// New creates the dashboard for userID. grade is used only if the learner
// has no record yet. events may be nil, which disables the history entry.
func New(ctx context.Context, ledger *progress.Ledger, events store.EventRepo, userID, grade string) *DashboardScreen {
	d := &DashboardScreen{
		ctx:    ctx,
		ledger: ledger,
		events: events,
		userID: userID,
		grade:  grade,
	}
	d.menu = components.NewMenu([]components.MenuItem{
		{Label: "Complete a lesson", Hotkey: "c", Action: func() tea.Cmd {
			return push(complete.New(d.ctx, d.ledger, d.userID))
		}},
		{Label: "Achievements", Hotkey: "a", Action: func() tea.Cmd {
			return push(achievements.New(d.rec))
		}},
		{Label: "History", Hotkey: "h", Disabled: events == nil, Action: func() tea.Cmd {
			return push(history.New(d.ctx, d.events, d.userID))
		}},
		{Label: "Reset progress", Hotkey: "r", Action: func() tea.Cmd {
			return push(resetconfirm.New(d.ctx, d.ledger, d.userID, d.currentGrade()))
		}},
		{Label: "Quit", Hotkey: "q", Action: func() tea.Cmd {
			return tea.Quit
		}},
	})
	return d
}

func push(s screen.Screen) tea.Cmd {
	return func() tea.Msg { return router.PushScreenMsg{Screen: s} }
}

func (d *DashboardScreen) Init() tea.Cmd {
	return d.load()
}

// Resume reloads progress after a pushed screen changed it.
func (d *DashboardScreen) Resume() tea.Cmd {
	return d.load()
}

func (d *DashboardScreen) load() tea.Cmd {
	ctx, ledger, userID, grade := d.ctx, d.ledger, d.userID, d.grade
	return func() tea.Msg {
		dash := ledger.LoadDashboard(ctx, userID, grade)
		return screen.ProgressMsg{Record: dash.Progress}
	}
}

func (d *DashboardScreen) selectModule(module int) tea.Cmd {
	ctx, ledger, userID := d.ctx, d.ledger, d.userID
	return func() tea.Msg {
		return moduleSelectedMsg{
			requested: module,
			rec:       ledger.SetCurrentModule(ctx, userID, module),
		}
	}
}

func (d *DashboardScreen) Title() string {
	return "Dashboard"
}

func (d *DashboardScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "1-3", Description: "Module"},
		{Key: "c", Description: "Complete"},
		{Key: "a", Description: "Achievements"},
		{Key: "h", Description: "History"},
		{Key: "r", Description: "Reset"},
		{Key: "q", Description: "Quit"},
	}
}

func (d *DashboardScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case screen.ProgressMsg:
		d.rec = msg.Record
		return d, nil

	case moduleSelectedMsg:
		if msg.rec == nil {
			d.notice = "No progress found for this learner."
			return d, nil
		}
		d.rec = msg.rec
		if msg.rec.CurrentModule == msg.requested {
			d.notice = ""
		} else {
			d.notice = fmt.Sprintf("Module %d is not part of the free plan.", msg.requested)
		}
		return d, nil

	case tea.KeyMsg:
		key := msg.String()
		if len(key) == 1 && key[0] >= '0' && key[0] <= '9' {
			return d, d.selectModule(int(key[0] - '0'))
		}
	}

	var cmd tea.Cmd
	d.menu, cmd = d.menu.Update(msg)
	return d, cmd
}

func (d *DashboardScreen) currentGrade() string {
	if d.rec != nil && d.rec.GradeID != "" {
		return d.rec.GradeID
	}
	return d.grade
}

func (d *DashboardScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	if d.rec == nil {
		return components.Frame(theme.Hint.Render("Loading progress…"), width, height)
	}
	rec := d.rec
	compact := layout.IsCompactHeight(height + 8)

	var sections []string

	sections = append(sections, lipgloss.JoinVertical(lipgloss.Center,
		theme.Title.Width(cw).Render(fmt.Sprintf("Level %d", rec.Level)),
		theme.Subtitle.Width(cw).Render(fmt.Sprintf("%s · %s", rec.GradeID, hearts(rec))),
	))

	bars := []string{
		components.NewProgressBar("XP   ", rec.XPFraction(),
			fmt.Sprintf("%d/%d", rec.XP, rec.MaxXP), cw).View(),
		components.NewProgressBar("Daily", rec.DailyFraction(),
			fmt.Sprintf("%d/%d", rec.DailyProgress, rec.DailyGoal), cw).View(),
	}
	sections = append(sections, strings.Join(bars, "\n"))

	sections = append(sections, d.renderModules(cw, layout.IsCompactWidth(width)))

	if !compact {
		sections = append(sections, theme.Unlocked.Render(
			fmt.Sprintf("🏆 %d/%d achievements", len(rec.Achievements), len(progress.Catalog()))))
	}

	sections = append(sections, d.menu.View())

	if d.notice != "" {
		sections = append(sections, theme.Notice.Render(d.notice))
	}

	return components.Frame(strings.Join(sections, "\n\n"), width, height)
}

func (d *DashboardScreen) renderModules(cw int, stacked bool) string {
	cards := make([]string, 0, progress.MaxModules)
	cardWidth := cw
	if !stacked {
		cardWidth = (cw - 2*(progress.MaxModules-1)) / progress.MaxModules
	}
	inner := cardWidth - 4

	for m := 1; m <= progress.MaxModules; m++ {
		p := d.rec.ByModule[m]
		total := p.Total
		if total == 0 {
			total = progress.LessonsPerModule
		}

		title := fmt.Sprintf("Module %d", m)
		if d.rec.HasAchievement(progress.ModuleCompleteID(m)) {
			title += " ✓"
		}
		body := lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().Bold(true).Render(title),
			components.NewProgressBar("", d.rec.ModuleFraction(m),
				fmt.Sprintf("%d/%d", p.Completed, total), inner).View(),
		)
		cards = append(cards, components.ModuleCard(body, cardWidth, m == d.rec.CurrentModule))
	}

	if stacked {
		return lipgloss.JoinVertical(lipgloss.Left, cards...)
	}
	gap := strings.Repeat(" ", 2)
	row := cards[0]
	for _, c := range cards[1:] {
		row = lipgloss.JoinHorizontal(lipgloss.Top, row, gap, c)
	}
	return row
}

func hearts(rec *progress.Record) string {
	full := rec.Hearts
	if full > rec.MaxHearts {
		full = rec.MaxHearts
	}
	if full < 0 {
		full = 0
	}
	empty := rec.MaxHearts - full
	if empty < 0 {
		empty = 0
	}
	return strings.Repeat("♥", full) + strings.Repeat("♡", empty)
}
