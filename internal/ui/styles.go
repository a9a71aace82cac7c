package ui

import "github.com/charmbracelet/lipgloss"

// Palette, named by role rather than hue.
var (
	colorAccent  = lipgloss.Color("#00FFFF")
	colorDanger  = lipgloss.Color("#FF5F5F")
	colorOK      = lipgloss.Color("#5FD75F")
	colorInterim = lipgloss.Color("#D7D75F")
	colorBusy    = lipgloss.Color("#D75FD7")
	colorText    = lipgloss.Color("#FFFFFF")
	colorMuted   = lipgloss.Color("#808080")
	colorFaint   = lipgloss.Color("#444444")
)

// Header and list.
var (
	TitleStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	SelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	DateStyle     = lipgloss.NewStyle().Foreground(colorMuted)
	DimStyle      = lipgloss.NewStyle().Foreground(colorMuted)
	DividerStyle  = lipgloss.NewStyle().Foreground(colorFaint)
)

// Forms and the editor.
var (
	FieldLabelStyle       = lipgloss.NewStyle().Bold(true).Foreground(colorText)
	FieldLabelActiveStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)

	// Interim transcription, shown after the draft but never part of it.
	PartialTextStyle = lipgloss.NewStyle().Italic(true).Foreground(colorInterim)

	RecordingDotStyle = lipgloss.NewStyle().Bold(true).Foreground(colorDanger)
	IdleDotStyle      = lipgloss.NewStyle().Foreground(colorMuted)
	SavingStyle       = lipgloss.NewStyle().Foreground(colorBusy)
)

// Feedback lines and the footer.
var (
	ErrorStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorDanger)
	ErrorTextStyle = lipgloss.NewStyle().Foreground(colorDanger)
	InfoStyle      = lipgloss.NewStyle().Foreground(colorOK)

	FooterKeyStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorInterim)
	FooterDescStyle = lipgloss.NewStyle().Foreground(colorMuted)
)
