package quizvoice

import (
	"github.com/charmbracelet/lipgloss"
)

// progressBarWidth defines the width of the playback progress bar.
const progressBarWidth = 25 // characters

// maxNotes caps the note feed; older notes are dropped.
const maxNotes = 50

// maxVisibleNotes is how many notes the footer shows at once.
const maxVisibleNotes = 3

// Per-item status icons shown in the item list.
const (
	iconPending    = "○"
	iconGenerating = "◐"
	iconReady      = "●"
	iconFailed     = "✖"
)

// Styles
var (
	titleStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	cursorStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")) // Magenta
	questionStyle   = lipgloss.NewStyle().Bold(true)
	readingStyle    = lipgloss.NewStyle().Faint(true)
	choiceStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	answerStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")) // Bright Green
	detailStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))             // Cyan
	phaseStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5"))  // Magenta
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)  // Red
	statusStyle     = lipgloss.NewStyle().Faint(true)
	noteStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8")) // Gray
	logMessageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Faint(true)

	// Item status icon styles
	iconStyle        = lipgloss.NewStyle().Bold(true)
	pendingIcon      = iconStyle.Foreground(lipgloss.Color("8")).Render(iconPending)
	generatingIcon   = iconStyle.Foreground(lipgloss.Color("11")).Render(iconGenerating)
	readyIcon        = iconStyle.Foreground(lipgloss.Color("10")).Render(iconReady)
	failedStatusIcon = iconStyle.Foreground(lipgloss.Color("9")).Render(iconFailed)

	// Playback UI styles
	audioTimeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")) // Gray
	audioProgStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5")) // Magenta
	playingIcon    = iconStyle.Foreground(lipgloss.Color("10")).Render("▶")
)
