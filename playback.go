package quizvoice

import (
	"context"
	"fmt"
	"sync"

	"github.com/quizvoice/quizvoice/audioplayer"
	"github.com/quizvoice/quizvoice/clipstore"
	"github.com/quizvoice/quizvoice/internal/helpers"
	"github.com/quizvoice/quizvoice/sequencer"
	"github.com/quizvoice/quizvoice/speech"
	"github.com/quizvoice/quizvoice/wav"
)

// storeSource adapts the clip store to the sequencer's read-only view.
// Only ready entries are playable.
type storeSource struct {
	store *clipstore.Store
}

func (s storeSource) ClipSet(i int) (sequencer.ClipSet, bool) {
	entry, ok := s.store.Entry(i)
	if !ok || entry.Status != clipstore.StatusReady {
		return sequencer.ClipSet{}, false
	}
	cs := sequencer.ClipSet{Question: entry.Question.PCM}
	if entry.Answer != nil {
		cs.Answer = entry.Answer.PCM
	}
	if entry.Detail != nil {
		cs.Detail = entry.Detail.PCM
	}
	return cs, true
}

func (s storeSource) Len() int { return s.store.Len() }

func (s storeSource) AllReady() bool { return s.store.AllReady() }

// playbackOutput is the audio output handed to the sequencer. The player
// process wrapper is built lazily on first play so the command flags carry
// the actual clip format, which is only known once the first clip exists.
// Play runs on sequencer command goroutines, so access is mutex-guarded.
type playbackOutput struct {
	mu      sync.Mutex
	command string
	format  wav.Format
	player  audioplayer.Player
}

func newPlaybackOutput(command string) *playbackOutput {
	return &playbackOutput{
		command: command,
		format:  wav.DefaultFormat,
	}
}

// SetFormat records the clip format. A format change drops the current
// player so the next play rebuilds it with matching flags.
func (o *playbackOutput) SetFormat(f wav.Format) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.format == f {
		return
	}
	if o.player != nil {
		o.player.Cleanup()
		o.player = nil
	}
	o.format = f
}

// Play satisfies sequencer.Output.
func (o *playbackOutput) Play(ctx context.Context, pcm []byte) error {
	player, format, err := o.ensure()
	if err != nil {
		return err
	}
	helpers.Tracef("playing clip: %d bytes at %d Hz", len(pcm), format.SampleRate)
	return player.Play(ctx, pcm)
}

func (o *playbackOutput) ensure() (audioplayer.Player, wav.Format, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.player == nil {
		player, err := audioplayer.New(o.command, o.format)
		if err != nil {
			return nil, o.format, err
		}
		o.player = player
	}
	return o.player, o.format, nil
}

// Close releases the wrapped player.
func (o *playbackOutput) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.player == nil {
		return nil
	}
	err := o.player.Cleanup()
	o.player = nil
	return err
}

// effectiveBackend resolves the "auto" backend: live for live-capable
// models, grpc for the rest.
func (m *Model) effectiveBackend() string {
	if m.backend != "auto" {
		return m.backend
	}
	if speech.IsLiveModel(m.modelName) {
		return "live"
	}
	return "grpc"
}

// buildSynthesizer constructs the speech backend for the configured
// transport. The live client dials lazily on first synthesis.
func (m *Model) buildSynthesizer(ctx context.Context) (speech.Synthesizer, error) {
	switch backend := m.effectiveBackend(); backend {
	case "mock":
		return &speech.Mock{}, nil
	case "live":
		return speech.NewLiveClient(ctx, m.apiKey, m.modelName, m.voiceName)
	case "grpc":
		client := &speech.Client{APIKey: m.apiKey, Model: m.modelName}
		if err := client.Init(ctx); err != nil {
			return nil, fmt.Errorf("failed to initialize speech client: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown speech backend %q", backend)
	}
}

// clipFormat returns the format playback and export should assume.
func (m *Model) clipFormat() wav.Format {
	if m.formatSet {
		return m.format
	}
	return wav.DefaultFormat
}
