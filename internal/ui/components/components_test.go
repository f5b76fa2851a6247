package components

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
)

type pressed struct{ label string }

func action(label string) func() tea.Cmd {
	return func() tea.Cmd {
		return func() tea.Msg { return pressed{label} }
	}
}

func run(t *testing.T, cmd tea.Cmd) string {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a cmd")
	}
	msg, ok := cmd().(pressed)
	if !ok {
		t.Fatal("unexpected msg")
	}
	return msg.label
}

func testMenu() Menu {
	return NewMenu([]MenuItem{
		{Label: "Locked", Hotkey: "l", Action: action("locked"), Disabled: true},
		{Label: "Complete", Hotkey: "c", Action: action("complete")},
		{Label: "Reset", Hotkey: "r", Action: action("reset")},
	})
}

func TestMenuSkipsDisabled(t *testing.T) {
	m := testMenu()
	if m.Selected != 1 {
		t.Errorf("Selected = %d, want 1", m.Selected)
	}

	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	if m.Selected != 1 {
		t.Errorf("up onto disabled item: Selected = %d, want 1", m.Selected)
	}

	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if m.Selected != 2 {
		t.Errorf("Selected = %d, want 2", m.Selected)
	}
	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if got := run(t, cmd); got != "reset" {
		t.Errorf("enter ran %q, want reset", got)
	}
}

func TestMenuHotkeys(t *testing.T) {
	m := testMenu()

	_, cmd := m.Update(tea.KeyPressMsg{Code: 'r', Text: "r"})
	if got := run(t, cmd); got != "reset" {
		t.Errorf("hotkey ran %q, want reset", got)
	}

	_, cmd = m.Update(tea.KeyPressMsg{Code: 'l', Text: "l"})
	if cmd != nil {
		t.Error("disabled hotkey should do nothing")
	}

	m, _ = m.Update(tea.KeyPressMsg{Code: 'c', Text: "c"})
	if m.Selected != 1 {
		t.Error("hotkey should not move the cursor")
	}
}

func TestMenuView(t *testing.T) {
	view := testMenu().View()
	if !strings.Contains(view, "[c] Complete") {
		t.Errorf("view missing hotkey label:\n%s", view)
	}
	if !strings.Contains(view, "▸") {
		t.Error("view missing cursor")
	}
}

func TestButtonOnlyPressesWhenActive(t *testing.T) {
	b := NewButton("Reset", false, action("reset"))
	enter := tea.KeyPressMsg{Code: tea.KeyEnter}

	if _, cmd := b.Update(enter); cmd != nil {
		t.Error("inactive button should not press")
	}

	b.Active = true
	_, cmd := b.Update(enter)
	if got := run(t, cmd); got != "reset" {
		t.Errorf("pressed %q, want reset", got)
	}
}

func TestProgressBarClamp(t *testing.T) {
	tests := []struct {
		percent float64
		want    float64
	}{
		{-0.5, 0},
		{0, 0},
		{0.4, 0.4},
		{1, 1},
		{2.5, 1},
	}
	for _, tt := range tests {
		p := NewProgressBar("", tt.percent, "", 40)
		if got := p.clamped(); got != tt.want {
			t.Errorf("clamped(%v) = %v, want %v", tt.percent, got, tt.want)
		}
	}
}

func TestProgressBarCaption(t *testing.T) {
	if view := NewProgressBar("XP", 0.5, "", 40).View(); !strings.Contains(view, "50%") {
		t.Error("empty caption should show the percentage")
	}
	if view := NewProgressBar("XP", 0.5, "150/400", 40).View(); !strings.Contains(view, "150/400") {
		t.Error("caption not rendered")
	}
}

func TestTextInputValueTrimmed(t *testing.T) {
	ti := NewTextInput("grade", "  6º Ano ", 0)
	if ti.Value() != "6º Ano" {
		t.Errorf("Value = %q, want %q", ti.Value(), "6º Ano")
	}
	ti.Blur()
	if ti.Focused() {
		t.Error("Blur did not remove focus")
	}
}

func TestContentWidth(t *testing.T) {
	if got := ContentWidth(200); got > 72 {
		t.Errorf("ContentWidth(200) = %d, want at most 72", got)
	}
}
