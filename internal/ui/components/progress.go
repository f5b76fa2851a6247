package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/yufin/yufin/internal/ui/theme"
)

// ProgressBar displays a horizontal progress bar.
type ProgressBar struct {
	Label   string
	Percent float64

	// Caption is shown after the bar, e.g. "150/400 XP". Empty shows the
	// percentage instead.
	Caption string
	Width   int
}

// NewProgressBar creates a new progress bar. percent is clamped to [0,1].
func NewProgressBar(label string, percent float64, caption string, width int) ProgressBar {
	return ProgressBar{
		Label:   label,
		Percent: percent,
		Caption: caption,
		Width:   width,
	}
}

// View renders the progress bar.
func (p ProgressBar) View() string {
	var result string

	if p.Label != "" {
		result += lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label) + "  "
	}

	caption := p.Caption
	if caption == "" {
		caption = fmt.Sprintf("%d%%", int(p.clamped()*100))
	}
	caption = "  " + caption

	barWidth := p.Width - lipgloss.Width(result) - lipgloss.Width(caption)
	if barWidth < 4 {
		barWidth = 4
	}

	filled := int(float64(barWidth) * p.clamped())
	empty := barWidth - filled

	result += lipgloss.NewStyle().
		Background(theme.Secondary).
		Render(strings.Repeat(" ", filled))
	result += lipgloss.NewStyle().
		Background(theme.Border).
		Render(strings.Repeat(" ", empty))
	result += lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Render(caption)

	return result
}

func (p ProgressBar) clamped() float64 {
	switch {
	case p.Percent < 0:
		return 0
	case p.Percent > 1:
		return 1
	}
	return p.Percent
}
