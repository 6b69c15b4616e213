package styles

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette. Approve and Concern carry the meaning of a parent's vote.
const (
	Ink       = "#1f2430"
	Panel     = "#343b4c"
	Text      = "#e6e9ef"
	Muted     = "#7c859c"
	Accent    = "#5ccfe6"
	Brand     = "#a48cf2"
	Highlight = "#f29e74"
	Approve   = "#87d96c"
	Concern   = "#f27983"
	Caution   = "#ffd173"
)

func fg(c string) lipgloss.Style { return lipgloss.NewStyle().Foreground(lipgloss.Color(c)) }

func badge(bg, text string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(text)).Background(lipgloss.Color(bg)).Padding(0, 1)
}

var (
	AppStyle      = fg(Text).Padding(1, 2)
	TitleStyle    = fg(Brand).Bold(true).Padding(0, 1)
	SubtitleStyle = fg(Accent)
	HelpStyle     = fg(Muted).Italic(true)

	StatusBarStyle = badge(Panel, Text)
	TabStyle       = fg(Muted).Padding(0, 2)
	TabActiveStyle = badge(Panel, Highlight).Bold(true).Padding(0, 2)

	InputFocusedStyle = badge(Panel, Highlight).Bold(true)

	ListItemStyle         = fg(Text).PaddingLeft(2)
	ListItemSelectedStyle = fg(Highlight).Background(lipgloss.Color(Panel)).Bold(true).
				PaddingLeft(1).
				Border(lipgloss.NormalBorder(), false, false, false, true).
				BorderForeground(lipgloss.Color(Brand))
	TableHeaderStyle = fg(Highlight).Bold(true)

	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(Brand)).
			Padding(0, 2).
			MarginRight(1)
	CardTitleStyle = fg(Muted)
	CardValueStyle = fg(Accent).Bold(true)

	InfoStyle    = fg(Accent).Bold(true)
	SuccessStyle = fg(Approve).Bold(true)
	WarningStyle = fg(Caution).Bold(true)
	ErrorStyle   = fg(Concern).Bold(true)

	BadgeSuccessStyle = badge(Approve, Ink).Bold(true)
	BadgeDangerStyle  = badge(Concern, Ink).Bold(true)
	BadgeMutedStyle   = badge(Panel, Text)

	DoctorMessageStyle = fg(Brand)
	ParentMessageStyle = fg(Approve)
	TimestampStyle     = fg(Muted)

	DividerStyle      = fg(Panel)
	SpinnerStyle      = fg(Brand)
	ProgressBarFilled = fg(Approve)
	ProgressBarEmpty  = fg(Panel)

	MetaKeyStyle   = fg(Brand).Bold(true)
	MetaValueStyle = fg(Accent)
)

// Truncate shortens s to maxLen runes, ending in "..." when cut
func Truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return "..."
	}
	return string(r[:maxLen-3]) + "..."
}

// Pad left-aligns s in a column of width runes
func Pad(s string, width int) string {
	s = Truncate(s, width)
	if n := len([]rune(s)); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

// RenderDivider renders a horizontal divider
func RenderDivider(width int) string {
	if width < 0 {
		width = 0
	}
	return DividerStyle.Render(strings.Repeat("─", width))
}

// RenderPercentBar renders pct (0-100) as a bar of width cells
func RenderPercentBar(pct float64, width int) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	filled := int(float64(width) * pct / 100)
	return ProgressBarFilled.Render(strings.Repeat("█", filled)) +
		ProgressBarEmpty.Render(strings.Repeat("░", width-filled))
}

// RenderCard renders a small headline number
func RenderCard(title string, value interface{}) string {
	return CardStyle.Render(CardTitleStyle.Render(title) + "\n" + CardValueStyle.Render(fmt.Sprint(value)))
}

// RenderKeyValue renders a key-value pair with styling
func RenderKeyValue(key, value string) string {
	return MetaKeyStyle.Render(key+":") + " " + MetaValueStyle.Render(value)
}
