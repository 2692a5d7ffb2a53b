package tui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	ColorPrimary   = lipgloss.Color("#FF6B6B") // Red - titles, errors
	ColorSecondary = lipgloss.Color("#4ecdc4") // Teal - pinyin output
	ColorAccent    = lipgloss.Color("#ffe66d") // Yellow - marked vowels, active mode
	ColorMuted     = lipgloss.Color("#666666") // Gray - help text
	ColorSuccess   = lipgloss.Color("#a8e6cf") // Green - tones, copied
	ColorText      = lipgloss.Color("#f1faee") // Light text
	ColorLabel     = lipgloss.Color("#a8dadc") // Label color
	ColorBg        = lipgloss.Color("#1a1a2e") // Dark background
	ColorBgAlt     = lipgloss.Color("#2d3436") // Alt background
	ColorBorder    = lipgloss.Color("#3d5a80") // Border color
)

// Title styles
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			Background(ColorBg).
			Padding(0, 1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorSecondary)
)

// Mode tab styles
var (
	ModeTabStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Padding(0, 2)

	ModeTabActiveStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorAccent).
				Background(ColorBgAlt).
				Padding(0, 2)
)

// Result styles
var (
	ResultStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorSecondary).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorAccent).
			Padding(0, 2).
			Margin(1, 0)

	BigTextStyle = lipgloss.NewStyle().
			Foreground(ColorAccent)

	SearchBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorAccent).
			Padding(0, 1)
)

// Breakdown styles
var (
	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorLabel).
			Bold(true)

	ValueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	ToneStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Bold(true)
)

// Status styles
var (
	HelpStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	CopiedStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Bold(true)
)

// ContentStyle pads the whole view.
var ContentStyle = lipgloss.NewStyle().
	Padding(1, 2)
