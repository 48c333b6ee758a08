package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	barWidth   = 40
	barFilled  = "█"
	barEmpty   = "░"
	recentShoe = 5
)

// Lipgloss Styles
var (
	docStyle   = lipgloss.NewStyle().Margin(1, 2)
	grayStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("228")).Bold(true).Render
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	winStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	lossStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// FormatMoney 带符号的金额，盈利绿色、亏损红色
func FormatMoney(v float64) string {
	s := fmt.Sprintf("%+.2f", v)
	switch {
	case v > 0:
		return winStyle.Render(s)
	case v < 0:
		return lossStyle.Render(s)
	default:
		return s
	}
}

// progressBar renders done/total as a fixed width bar.
func progressBar(done, total int) string {
	if total <= 0 {
		return strings.Repeat(barEmpty, barWidth)
	}
	filled := min(barWidth*done/total, barWidth)
	return strings.Repeat(barFilled, filled) + grayStyle.Render(strings.Repeat(barEmpty, barWidth-filled))
}
