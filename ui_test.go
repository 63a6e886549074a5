package quizvoice

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/quizvoice/quizvoice/clipstore"
	"github.com/quizvoice/quizvoice/sequencer"
	"github.com/quizvoice/quizvoice/wav"
)

// TestViewRendersQuizList verifies the main view shows the quiz and keeps
// unplayed answers hidden.
func TestViewRendersQuizList(t *testing.T) {
	cleanup := SetupTestLogging(t)
	defer cleanup()

	m := newTestModel(t, 2)

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	um := updated.(Model)

	view := um.View()
	if !strings.Contains(view, "Test Quiz") {
		t.Error("Expected the quiz title in the view")
	}
	if !strings.Contains(view, "Question 1") {
		t.Error("Expected the first question in the view")
	}
	if !strings.Contains(view, "Question 2") {
		t.Error("Expected the second question in the view")
	}
	if !strings.Contains(view, "Choice A") {
		t.Error("Expected the current item's choices in the view")
	}
	if strings.Contains(view, "Answer: Answer 1") {
		t.Error("Expected the answer hidden before its clip plays")
	}
}

// TestViewQuitting verifies the shutdown message.
func TestViewQuitting(t *testing.T) {
	m := newTestModel(t, 1)
	mv := *m
	mv.quitting = true

	if got := mv.View(); got != "Stopping playback and quitting...\n" {
		t.Errorf("Expected the quitting message, got %q", got)
	}
}

// TestHeaderView verifies the header shows the title, model and voice.
func TestHeaderView(t *testing.T) {
	m := newTestModel(t, 1)
	mv := *m
	mv.width = 80

	header := mv.headerView()
	if !strings.Contains(header, "quizvoice - Test Quiz") {
		t.Errorf("Expected title in header, got %q", header)
	}
	if !strings.Contains(header, mv.modelName) {
		t.Error("Expected the model name in the header")
	}
	if !strings.Contains(header, "(Voice: Puck)") {
		t.Error("Expected the voice name in the header")
	}
	if !strings.Contains(header, "[Live]") {
		t.Error("Expected the live backend marker in the header")
	}
}

// TestStatusIconMapping verifies each clip status gets its own icon.
func TestStatusIconMapping(t *testing.T) {
	cases := []struct {
		status clipstore.Status
		want   string
	}{
		{clipstore.StatusPending, pendingIcon},
		{clipstore.StatusGenerating, generatingIcon},
		{clipstore.StatusReady, readyIcon},
		{clipstore.StatusFailed, failedStatusIcon},
	}
	for _, c := range cases {
		if got := statusIcon(c.status); got != c.want {
			t.Errorf("statusIcon(%v) = %q, want %q", c.status, got, c.want)
		}
	}
}

// TestPlaybackViewIdle verifies no progress line renders while stopped.
func TestPlaybackViewIdle(t *testing.T) {
	m := newTestModel(t, 1)
	mv := *m
	if got := mv.playbackView(); got != "" {
		t.Errorf("Expected empty playback view while idle, got %q", got)
	}
}

// TestStatusLine walks the status line through its states.
func TestStatusLine(t *testing.T) {
	clip := &clipstore.Clip{PCM: []byte{1, 2}, Format: wav.DefaultFormat}

	t.Run("Waiting", func(t *testing.T) {
		m := newTestModel(t, 2)
		mv := *m
		if got := mv.statusLine(); !strings.Contains(got, "Waiting for audio...") {
			t.Errorf("Expected waiting status, got %q", got)
		}
	})

	t.Run("Generating", func(t *testing.T) {
		m := newTestModel(t, 2)
		mv := *m
		mv.generating = true
		mv.genDone = 1
		if got := mv.statusLine(); !strings.Contains(got, "Generating audio 1/2...") {
			t.Errorf("Expected generation progress, got %q", got)
		}
	})

	t.Run("Ready", func(t *testing.T) {
		m := newTestModel(t, 2)
		mv := *m
		mv.store.SetReady(0, clip, nil, nil)
		mv.store.SetReady(1, clip, nil, nil)
		if got := mv.statusLine(); !strings.Contains(got, "Ready.") {
			t.Errorf("Expected ready status, got %q", got)
		}
	})

	t.Run("PartialFailure", func(t *testing.T) {
		m := newTestModel(t, 2)
		mv := *m
		mv.store.SetReady(0, clip, nil, nil)
		mv.store.SetFailed(1, "boom")
		if got := mv.statusLine(); !strings.Contains(got, "Ready, 1 items without audio.") {
			t.Errorf("Expected partial failure status, got %q", got)
		}
	})

	t.Run("Error", func(t *testing.T) {
		m := newTestModel(t, 2)
		mv := *m
		mv.width = 80
		mv.err = errors.New("synthesis failed")
		if got := mv.statusLine(); !strings.Contains(got, "Error: synthesis failed") {
			t.Errorf("Expected the error in the status, got %q", got)
		}
	})
}

// TestItemViewFailedEntry verifies the failure reason renders under the item.
func TestItemViewFailedEntry(t *testing.T) {
	m := newTestModel(t, 2)
	mv := *m
	mv.store.SetFailed(0, "boom")

	block := mv.itemView(0, mv.batch.Items[0])
	if !strings.Contains(block, "audio failed: boom") {
		t.Errorf("Expected the failure reason in the item view, got %q", block)
	}
}

// TestRevealPhase verifies only the current item reveals beyond its question.
func TestRevealPhase(t *testing.T) {
	m := newTestModel(t, 3)
	mv := *m

	if got := mv.revealPhase(1); got != sequencer.PhaseQuestion {
		t.Errorf("Expected non-current items folded to the question, got %v", got)
	}
	if got := mv.revealPhase(0); got != mv.seq.Phase() {
		t.Errorf("Expected the current item to follow playback, got %v", got)
	}
}

// TestNotesView verifies only the newest notes render.
func TestNotesView(t *testing.T) {
	m := newTestModel(t, 1)
	mv := *m
	mv.width = 80
	for i := 1; i <= 5; i++ {
		mv.pushNote(formatNote(fmt.Sprintf("note %d", i)))
	}

	view := mv.notesView()
	if strings.Contains(view, "note 1") || strings.Contains(view, "note 2") {
		t.Errorf("Expected old notes dropped from the view, got %q", view)
	}
	for i := 3; i <= 5; i++ {
		if !strings.Contains(view, fmt.Sprintf("note %d", i)) {
			t.Errorf("Expected note %d in the view", i)
		}
	}
}

// TestLogMessagesView verifies the log box toggle and content.
func TestLogMessagesView(t *testing.T) {
	m := newTestModel(t, 1)
	mv := *m
	mv.width = 80
	mv.logMessages = []string{"first message", "second message"}

	if got := mv.logMessagesView(); got != "" {
		t.Errorf("Expected no log box while hidden, got %q", got)
	}

	mv.showLogMessages = true
	view := mv.logMessagesView()
	if !strings.Contains(view, "Recent Log Messages") {
		t.Error("Expected the log box header")
	}
	if !strings.Contains(view, "[1]") || !strings.Contains(view, "first message") {
		t.Errorf("Expected numbered log lines, got %q", view)
	}
}

// TestFooterViewHelp verifies the key help renders in the footer.
func TestFooterViewHelp(t *testing.T) {
	m := newTestModel(t, 1)
	mv := *m
	mv.width = 100

	footer := mv.footerView()
	if !strings.Contains(footer, "Space: Play/Stop") {
		t.Errorf("Expected key help in the footer, got %q", footer)
	}
	if !strings.Contains(footer, "q: Quit") {
		t.Error("Expected the quit key in the footer help")
	}
}
