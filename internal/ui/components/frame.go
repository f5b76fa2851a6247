package components

import (
	"charm.land/lipgloss/v2"

	"github.com/yufin/yufin/internal/ui/theme"
)

// ContentWidth returns the uniform inner width used by framed screens.
func ContentWidth(frameWidth int) int {
	// Leave room for the frame border (2) and inner padding (4).
	w := frameWidth - 6
	if w > 72 {
		w = 72
	}
	if w < 20 {
		w = 20
	}
	return w
}

// Frame wraps content in a double border centered within width x height.
func Frame(content string, width, height int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Primary).
		Width(width - 2).
		Height(height - 2).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

// ModuleCard renders one module box. current highlights the border.
func ModuleCard(content string, width int, current bool) string {
	style := theme.CardIdle
	if current {
		style = theme.CardCurrent
	}
	return style.Width(width).Render(content)
}
