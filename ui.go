package quizvoice

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/quizvoice/quizvoice/clipstore"
	"github.com/quizvoice/quizvoice/quiz"
	"github.com/quizvoice/quizvoice/sequencer"
	"github.com/quizvoice/quizvoice/wav"
)

// statusIcon maps a clip entry status to its list icon.
func statusIcon(s clipstore.Status) string {
	switch s {
	case clipstore.StatusGenerating:
		return generatingIcon
	case clipstore.StatusReady:
		return readyIcon
	case clipstore.StatusFailed:
		return failedStatusIcon
	default:
		return pendingIcon
	}
}

// headerView renders the header for the UI
func (m Model) headerView() string {
	title := "quizvoice"
	if m.batch != nil && m.batch.Title != "" {
		title += " - " + m.batch.Title
	}

	info := fmt.Sprintf("%s (Voice: %s)", m.modelName, m.voiceName)
	switch m.effectiveBackend() {
	case "live":
		info += " [Live]"
	case "grpc":
		info += " [gRPC]"
	case "mock":
		info += " [Mock]"
	}

	var header strings.Builder
	header.WriteString(titleStyle.Width(m.width).Align(lipgloss.Center).Render(title + " - " + info))
	header.WriteString("\n")
	return header.String()
}

// revealPhase returns how much of item i is revealed. Only the current item
// reveals beyond its question, and only as far as its playback advanced;
// navigating away folds an item back to its question.
func (m Model) revealPhase(i int) sequencer.Phase {
	if i != m.seq.Index() {
		return sequencer.PhaseQuestion
	}
	return m.seq.Phase()
}

// itemListView renders all quiz items and reports the line the current item
// starts on, for viewport scrolling.
func (m Model) itemListView() (string, int) {
	if m.batch == nil {
		return "No quiz loaded.", 0
	}

	var b strings.Builder
	currentLine := 0
	lines := 0
	for i, item := range m.batch.Items {
		if i == m.seq.Index() {
			currentLine = lines
		}
		block := m.itemView(i, item)
		b.WriteString(block)
		lines += strings.Count(block, "\n")
	}
	return b.String(), currentLine
}

// itemView renders one quiz item: status icon, question, and for the
// current item its choices plus the phase-gated answer and detail lines.
func (m Model) itemView(i int, item quiz.Item) string {
	var b strings.Builder

	entry, _ := m.store.Entry(i)
	current := i == m.seq.Index()

	cursor := "  "
	if current {
		cursor = cursorStyle.Render("> ")
	}

	question := questionStyle.Render(item.Question.Display)
	if item.Question.Reading != "" {
		question += " " + readingStyle.Render("("+item.Question.Reading+")")
	}

	b.WriteString(fmt.Sprintf("%s%s %2d. %s", cursor, statusIcon(entry.Status), i+1, question))
	if current && m.seq.Playing() && m.seq.Phase() == sequencer.PhaseQuestion {
		b.WriteString(" " + playingIcon)
	}
	b.WriteString("\n")

	if entry.Status == clipstore.StatusFailed && entry.Err != "" {
		b.WriteString("       " + errorStyle.Render("audio failed: "+entry.Err) + "\n")
	}

	if current {
		for _, choice := range item.Choices {
			b.WriteString("       " + choiceStyle.Render(choice) + "\n")
		}

		reveal := m.revealPhase(i)
		if reveal >= sequencer.PhaseAnswer && item.Answer != "" {
			line := "       " + answerStyle.Render("Answer: "+item.Answer)
			if m.seq.Playing() && m.seq.Phase() == sequencer.PhaseAnswer {
				line += " " + playingIcon
			}
			b.WriteString(line + "\n")
		}
		if reveal >= sequencer.PhaseDetail && item.Detail.Display != "" {
			line := "       " + detailStyle.Render(item.Detail.Display)
			if m.seq.Playing() && m.seq.Phase() == sequencer.PhaseDetail {
				line += " " + playingIcon
			}
			b.WriteString(line + "\n")
		}
	}

	b.WriteString("\n")
	return b.String()
}

// playbackView renders the playback progress line, empty when idle.
func (m Model) playbackView() string {
	if !m.seq.Playing() {
		return ""
	}

	totalSeconds := wav.Duration(m.clipFormat(), m.seq.ClipBytes()).Seconds()
	elapsedSeconds := m.seq.Elapsed().Seconds()
	elapsedSeconds = math.Min(elapsedSeconds, totalSeconds)
	elapsedSeconds = math.Max(0, elapsedSeconds)
	timestamp := fmt.Sprintf("%s / %s", formatDuration(elapsedSeconds), formatDuration(totalSeconds))

	progress := 0.0
	if totalSeconds > 0 {
		progress = elapsedSeconds / totalSeconds
	}
	progress = math.Min(1.0, math.Max(0.0, progress))
	filledWidth := int(progress * float64(progressBarWidth))
	bar := strings.Repeat("━", filledWidth) + strings.Repeat("╌", progressBarWidth-filledWidth)

	mode := ""
	if m.seq.AutoAdvance() {
		mode = statusStyle.Render(" [auto]")
	}

	return fmt.Sprintf("%s %s %s %s%s",
		playingIcon,
		phaseStyle.Render(m.seq.Phase().String()),
		audioTimeStyle.Render(timestamp),
		audioProgStyle.Render(bar),
		mode)
}

// notesView renders the tail of the note feed.
func (m Model) notesView() string {
	if len(m.notes) == 0 {
		return ""
	}
	start := len(m.notes) - maxVisibleNotes
	if start < 0 {
		start = 0
	}

	var b strings.Builder
	for _, note := range m.notes[start:] {
		style := noteStyle
		if note.Kind == NoteError {
			style = errorStyle
		}
		b.WriteString(style.MaxWidth(m.width).Render(note.Text))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// logMessagesView renders the log messages box
func (m Model) logMessagesView() string {
	if !m.showLogMessages || len(m.logMessages) == 0 {
		return ""
	}

	// Create a bordered box for log messages
	logBoxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("8")). // Gray border
		Padding(0, 1).                         // Padding inside the border
		Width(m.width - 2)                     // Account for border width

	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("8")).
		Render("Recent Log Messages")

	var logContent strings.Builder
	logContent.WriteString(header + "\n")

	// Calculate available width for log messages inside padding
	innerWidth := m.width - 4 // 2 for border, 2 for padding

	for i, logMsg := range m.logMessages {
		prefix := fmt.Sprintf("[%d] ", i+1)
		maxMsgWidth := innerWidth - lipgloss.Width(prefix)
		if maxMsgWidth < 1 {
			maxMsgWidth = 1
		}
		renderedMsg := logMessageStyle.MaxWidth(maxMsgWidth).Render(logMsg)
		logContent.WriteString(prefix + renderedMsg + "\n")
	}

	return logBoxStyle.Render(logContent.String())
}

// statusLine renders the one-line session status.
func (m Model) statusLine() string {
	switch {
	case m.err != nil:
		errStr := fmt.Sprintf("Error: %v", m.err)
		maxErrWidth := m.width / 2
		if maxErrWidth > 10 && lipgloss.Width(errStr) > maxErrWidth {
			errStr = errStr[:maxErrWidth-3] + "..."
		}
		return errorStyle.Render(errStr)
	case m.generating:
		total := m.store.Len()
		return m.spinner.View() + fmt.Sprintf(" Generating audio %d/%d...", m.genDone, total)
	case m.seq.Playing():
		if m.seq.AutoAdvance() {
			return m.spinner.View() + fmt.Sprintf(" Auto-playing item %d...", m.seq.Index()+1)
		}
		return m.spinner.View() + fmt.Sprintf(" Playing item %d...", m.seq.Index()+1)
	case m.seq.AutoAdvance():
		// Between items, waiting out the advance delay.
		return m.spinner.View() + " Auto-play..."
	case m.store.AllReady():
		return statusStyle.Render("Ready.")
	case m.store.CountFailed() > 0:
		return statusStyle.Render(fmt.Sprintf("Ready, %d items without audio.", m.store.CountFailed()))
	default:
		return statusStyle.Render("Waiting for audio...")
	}
}

// footerView renders the footer: notes, playback bar, optional log box and
// the status line with key help.
func (m Model) footerView() string {
	var footer strings.Builder

	if notes := m.notesView(); notes != "" {
		footer.WriteString(notes)
		footer.WriteRune('\n')
	}
	if playback := m.playbackView(); playback != "" {
		footer.WriteString(playback)
		footer.WriteRune('\n')
	}
	if logBox := m.logMessagesView(); logBox != "" {
		footer.WriteString(logBox)
		footer.WriteRune('\n')
	}

	status := m.statusLine()
	help := statusStyle.Render("Space: Play/Stop | a: Auto | j/k: Next/Prev | e: Export | s: Settings | q: Quit")

	statusWidth := lipgloss.Width(status)
	helpWidth := lipgloss.Width(help)
	spacerWidth := m.width - statusWidth - helpWidth - 2
	if spacerWidth < 1 {
		spacerWidth = 1
	}

	footer.WriteString(lipgloss.NewStyle().Width(m.width).Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, status, strings.Repeat(" ", spacerWidth), help),
	))

	return footer.String()
}
