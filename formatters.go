package quizvoice

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// formatNote creates an informational note for the feed.
func formatNote(text string) Note {
	return Note{
		ID:        uuid.New().String(), // Generate a unique UUID for each note
		Kind:      NoteInfo,
		Text:      text,
		Timestamp: time.Now(),
	}
}

// formatErrorNote creates an error note for the feed.
func formatErrorNote(err error) Note {
	return Note{
		ID:        uuid.New().String(), // Generate a unique UUID for each note
		Kind:      NoteError,
		Text:      fmt.Sprintf("Error: %v", err),
		Timestamp: time.Now(),
	}
}

// pushNote appends a note to the feed, trimming the oldest entries past the
// cap.
func (m *Model) pushNote(n Note) {
	m.notes = append(m.notes, n)
	if len(m.notes) > maxNotes {
		m.notes = m.notes[len(m.notes)-maxNotes:]
	}
}
