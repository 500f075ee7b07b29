package ui

import "github.com/charmbracelet/lipgloss"

// Color palette, set by ApplyTheme.
var (
	Primary lipgloss.TerminalColor
	Success lipgloss.TerminalColor
	Error   lipgloss.TerminalColor
	Warning lipgloss.TerminalColor
	Muted   lipgloss.TerminalColor
	Info    lipgloss.TerminalColor
)

// Text styles
var (
	Bold   = lipgloss.NewStyle().Bold(true)
	Italic = lipgloss.NewStyle().Italic(true)
	Subtle lipgloss.Style
)

// Tool status styles
var (
	ToolRead  lipgloss.Style
	ToolWrite lipgloss.Style
	ToolError lipgloss.Style
	ToolInfo  lipgloss.Style
)

// UI element styles
var (
	PromptStyle  lipgloss.Style
	TitleStyle   lipgloss.Style
	SpinnerStyle lipgloss.Style
	SessionStyle lipgloss.Style
	WarningStyle lipgloss.Style
	SuccessStyle lipgloss.Style
	HeaderStyle  lipgloss.Style
	ManualStyle  lipgloss.Style
	OutputStyle  lipgloss.Style
)

// Icon constants
const (
	IconSuccess  = "✓"
	IconError    = "✗"
	IconArrow    = "→"
	IconWarning  = "⚠"
	IconInfo     = "ℹ"
	IconBolt     = "⚡"
	IconQuestion = "❓"
	IconRobot    = "🤖"
	IconThinking = "⠋"
)

// applyPalette rebuilds every style from p.
func applyPalette(p Palette) {
	Primary = color(p.Primary)
	Success = color(p.Success)
	Error = color(p.Error)
	Warning = color(p.Warning)
	Muted = color(p.Muted)
	Info = color(p.Info)

	Subtle = lipgloss.NewStyle().Foreground(Muted)

	ToolRead = lipgloss.NewStyle().Foreground(Muted)
	ToolWrite = lipgloss.NewStyle().Foreground(Success)
	ToolError = lipgloss.NewStyle().Foreground(Error)
	ToolInfo = lipgloss.NewStyle().Foreground(Info)

	PromptStyle = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(Primary)
	SpinnerStyle = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	SessionStyle = lipgloss.NewStyle().Foreground(Info)
	WarningStyle = lipgloss.NewStyle().Foreground(Warning)
	SuccessStyle = lipgloss.NewStyle().Foreground(Success)

	HeaderStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Primary).
		Padding(0, 1)
	ManualStyle = lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(Warning).
		Padding(0, 1)
	OutputStyle = lipgloss.NewStyle().
		Foreground(Muted).
		PaddingLeft(2)
}

func color(hex string) lipgloss.TerminalColor {
	if hex == "" {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(hex)
}
