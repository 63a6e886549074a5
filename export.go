package quizvoice

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/quizvoice/quizvoice/clipstore"
	"github.com/quizvoice/quizvoice/quiz"
	"github.com/quizvoice/quizvoice/sequencer"
	"github.com/quizvoice/quizvoice/wav"
)

// errNothingToExport marks an export request with no ready clips behind it.
// Surfaced as a note, not an error.
var errNothingToExport = errors.New("nothing to export")

// batchExportName derives the export file name from the batch date. The
// date is free-form text, so anything path-hostile becomes a dash.
func batchExportName(b *quiz.Batch) string {
	if b == nil || b.Date == "" {
		return "quiz-audio.wav"
	}
	date := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			return r
		case r == '-' || r == '_':
			return r
		}
		return '-'
	}, b.Date)
	return fmt.Sprintf("quiz-%s.wav", date)
}

// collectReadyClips gathers the payloads of every ready entry in batch
// order: question, answer, detail per item, skipping absent clips.
func collectReadyClips(store *clipstore.Store) [][]byte {
	var clips [][]byte
	for i := 0; i < store.Len(); i++ {
		entry, ok := store.Entry(i)
		if !ok || entry.Status != clipstore.StatusReady {
			continue
		}
		clips = append(clips, entry.Question.PCM)
		if entry.Answer != nil {
			clips = append(clips, entry.Answer.PCM)
		}
		if entry.Detail != nil {
			clips = append(clips, entry.Detail.PCM)
		}
	}
	return clips
}

// exportBatchCmd merges every ready clip into one WAV file named after the
// batch date. The file write runs off the update loop.
func (m *Model) exportBatchCmd() tea.Cmd {
	store := m.store
	format := m.clipFormat()
	path := filepath.Join(m.exportDir, batchExportName(m.batch))

	return func() tea.Msg {
		clips := collectReadyClips(store)
		if len(clips) == 0 {
			return exportDoneMsg{err: errNothingToExport}
		}
		data, err := wav.Merge(format, clips)
		if err != nil {
			return exportDoneMsg{err: err}
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return exportDoneMsg{err: fmt.Errorf("failed to write export file: %w", err)}
		}
		log.Printf("Exported %d clips to %s (%d bytes)", len(clips), path, len(data))
		return exportDoneMsg{path: path, clips: len(clips)}
	}
}

// exportClipCmd writes the clip of the current item's current phase as a
// standalone WAV file.
func (m *Model) exportClipCmd() tea.Cmd {
	index, phase := m.seq.Index(), m.seq.Phase()

	entry, ok := m.store.Entry(index)
	if !ok || entry.Status != clipstore.StatusReady {
		return func() tea.Msg { return exportDoneMsg{err: errNothingToExport} }
	}

	var clip *clipstore.Clip
	switch phase {
	case sequencer.PhaseAnswer:
		clip = entry.Answer
	case sequencer.PhaseDetail:
		clip = entry.Detail
	default:
		clip = entry.Question
	}
	if clip == nil {
		return func() tea.Msg { return exportDoneMsg{err: errNothingToExport} }
	}

	path := filepath.Join(m.exportDir, fmt.Sprintf("quiz-item%d-%s.wav", index+1, phase))
	data := wav.Encode(clip.Format, clip.PCM)

	return func() tea.Msg {
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return exportDoneMsg{err: fmt.Errorf("failed to write export file: %w", err)}
		}
		log.Printf("Exported clip to %s (%d bytes)", path, len(data))
		return exportDoneMsg{path: path, clips: 1}
	}
}

// ExportBatchTo generates audio for the whole batch and writes the merged
// WAV file to path, without starting the interactive UI. Generation runs
// synchronously in batch order; the first failed item aborts the export so
// a partial batch is never written.
func (m *Model) ExportBatchTo(ctx context.Context, path string) error {
	if m.batch == nil {
		return errors.New("no quiz batch loaded")
	}
	if m.synth == nil {
		return errors.New("no speech backend configured")
	}

	m.store.Reset(len(m.batch.Items))
	for i, item := range m.batch.Items {
		m.store.SetGenerating(i)
		clips, err := generateItem(ctx, m.synth, m.cache, m.modelName, m.voiceName, item)
		if err != nil {
			m.store.SetFailed(i, err.Error())
			return fmt.Errorf("item %d: %w", i+1, err)
		}
		m.store.SetReady(i, clips.question, clips.answer, clips.detail)
		if !m.formatSet {
			m.format = clips.question.Format
			m.formatSet = true
		}
	}

	data, err := wav.Merge(m.clipFormat(), collectReadyClips(m.store))
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	log.Printf("Exported batch to %s (%d bytes)", path, len(data))
	return nil
}
