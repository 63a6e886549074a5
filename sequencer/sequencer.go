// Package sequencer drives phase-ordered playback of generated quiz audio.
//
// The sequencer is a Bubble Tea component: a Model whose Update consumes
// tagged events (clip finished, advance timer elapsed, stop requested,
// navigate requested) and whose operation methods return commands. All state
// transitions happen inside the Bubble Tea update loop, so the machine is a
// pure reducer over events; the only side effects live in the returned
// commands, which run the blocking audio output off the update goroutine.
//
// Per item the phases run strictly question -> answer -> detail. A phase
// whose clip is absent still occurs: the phase value changes for the UI and
// a synthetic completion advances the machine immediately, keeping visual
// reveals in lock-step with whatever audio exists. At most one audio-output
// instance is alive at any time; starting a clip releases the previous
// instance first, and Stop releases it from any state.
package sequencer

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultAdvanceDelay is the pause between items during auto-play.
const DefaultAdvanceDelay = time.Second

// Phase is the presentation stage of a single quiz item.
type Phase int

const (
	PhaseQuestion Phase = iota
	PhaseAnswer
	PhaseDetail
)

func (p Phase) String() string {
	switch p {
	case PhaseQuestion:
		return "question"
	case PhaseAnswer:
		return "answer"
	case PhaseDetail:
		return "detail"
	default:
		return "unknown"
	}
}

// ClipSet holds the PCM payloads of one ready item. A nil slice means the
// phase has no audio and is skipped (visually the phase still occurs).
type ClipSet struct {
	Question []byte
	Answer   []byte
	Detail   []byte
}

func (cs ClipSet) clip(p Phase) []byte {
	switch p {
	case PhaseQuestion:
		return cs.Question
	case PhaseAnswer:
		return cs.Answer
	case PhaseDetail:
		return cs.Detail
	default:
		return nil
	}
}

// Source is the sequencer's read-only view of the clip store. ClipSet
// returns ok only for an in-range entry whose generation completed
// successfully; the snapshot it returns is safe to hold.
type Source interface {
	ClipSet(i int) (ClipSet, bool)
	Len() int
	AllReady() bool
}

// Output plays one PCM buffer. Play blocks until the clip finished naturally
// (nil error) or the context was canceled; canceling is how the sequencer
// releases the active instance.
type Output interface {
	Play(ctx context.Context, pcm []byte) error
}

// ClipFinishedMsg reports that the active clip stopped playing. Synthetic
// completions for absent clips carry a nil Err and no audio ever played.
type ClipFinishedMsg struct {
	Seq   int
	Index int
	Phase Phase
	Err   error
}

// AdvanceMsg is the auto-advance timer firing between items.
type AdvanceMsg struct {
	Seq int
}

// StopMsg requests that playback stop.
type StopMsg struct{}

// NavigateMsg requests moving the current item by Delta (implies stop).
type NavigateMsg struct {
	Delta int
}

// NotReadyMsg reports a refused operation: playing an item whose clips are
// not ready, or starting auto-play before the whole batch is ready.
type NotReadyMsg struct {
	Index int
	Batch bool
}

// ItemFinishedMsg reports that an item completed all of its phases.
type ItemFinishedMsg struct {
	Index int
}

// BatchFinishedMsg reports that auto-play finished the last item and
// disabled itself.
type BatchFinishedMsg struct{}

// PlaybackErrorMsg reports that the audio output failed mid-clip. The
// session has already been stopped when this message is delivered.
type PlaybackErrorMsg struct {
	Index int
	Phase Phase
	Err   error
}

// Model is the playback session state. The zero value is not usable; create
// one with New.
type Model struct {
	source Source
	output Output

	index       int
	phase       Phase
	playing     bool
	autoAdvance bool

	// seq invalidates in-flight completions and timers: every stop or fresh
	// start bumps it, and any message carrying an older value is dropped.
	// Messages already posted to the program queue cannot be unsent, so this
	// is what "cancel the pending timer" means here.
	seq    int
	cancel context.CancelFunc

	advanceDelay time.Duration
	startedAt    time.Time
	clipBytes    int
}

// New creates a sequencer over the given clip source and audio output.
func New(source Source, output Output) Model {
	return Model{
		source:       source,
		output:       output,
		advanceDelay: DefaultAdvanceDelay,
	}
}

// Update is the single entry point for all sequencer events.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ClipFinishedMsg:
		if msg.Seq != m.seq || !m.playing {
			return m, nil
		}
		if msg.Err != nil {
			if errors.Is(msg.Err, context.Canceled) {
				return m, nil
			}
			m.Stop()
			index, phase, err := msg.Index, msg.Phase, msg.Err
			return m, func() tea.Msg {
				return PlaybackErrorMsg{Index: index, Phase: phase, Err: err}
			}
		}
		return m.advance()

	case AdvanceMsg:
		if msg.Seq != m.seq || !m.autoAdvance {
			return m, nil
		}
		next := m.index + 1
		if _, ok := m.source.ClipSet(next); !ok {
			// The batch changed underneath auto-play; stop advancing.
			m.autoAdvance = false
			return m, func() tea.Msg { return NotReadyMsg{Index: next} }
		}
		cmd := m.PlayItem(next)
		return m, cmd

	case StopMsg:
		cmd := m.Stop()
		return m, cmd

	case NavigateMsg:
		cmd := m.Navigate(msg.Delta)
		return m, cmd
	}

	return m, nil
}

// PlayItem starts playback of item i from its question phase. If the item is
// out of range or its clips are not ready, the session is left untouched and
// a NotReadyMsg is reported instead.
func (m *Model) PlayItem(i int) tea.Cmd {
	cs, ok := m.source.ClipSet(i)
	if !ok || cs.Question == nil {
		index := i
		return func() tea.Msg { return NotReadyMsg{Index: index} }
	}

	m.release()
	m.seq++
	m.index = i
	m.phase = PhaseQuestion
	m.playing = true
	return m.play(cs.Question)
}

// Stop halts playback from any state: the active audio instance is released,
// any pending auto-advance dies, and the session goes idle at the current
// item. Idempotent.
func (m *Model) Stop() tea.Cmd {
	m.release()
	m.seq++
	m.autoAdvance = false
	m.playing = false
	return nil
}

// Navigate stops playback and moves the current item by delta, clamped to
// the batch range, resetting the phase to question. Playback never starts
// automatically after navigation.
func (m *Model) Navigate(delta int) tea.Cmd {
	m.Stop()
	n := m.source.Len()
	if n == 0 {
		return nil
	}
	i := m.index + delta
	if i < 0 {
		i = 0
	}
	if i > n-1 {
		i = n - 1
	}
	m.index = i
	m.phase = PhaseQuestion
	return nil
}

// Next moves to the next item. See Navigate.
func (m *Model) Next() tea.Cmd { return m.Navigate(1) }

// Prev moves to the previous item. See Navigate.
func (m *Model) Prev() tea.Cmd { return m.Navigate(-1) }

// StartAutoPlay enables auto-advance and plays the current item. The whole
// batch must be ready; otherwise a batch-wide NotReadyMsg is reported and
// nothing starts.
func (m *Model) StartAutoPlay() tea.Cmd {
	if !m.source.AllReady() {
		return func() tea.Msg { return NotReadyMsg{Batch: true} }
	}
	m.autoAdvance = true
	return m.PlayItem(m.index)
}

// SetAdvanceDelay overrides the delay between items during auto-play.
func (m *Model) SetAdvanceDelay(d time.Duration) {
	if d > 0 {
		m.advanceDelay = d
	}
}

// advance moves past the phase that just completed.
func (m Model) advance() (Model, tea.Cmd) {
	switch m.phase {
	case PhaseQuestion:
		m.phase = PhaseAnswer
		return m.playOrSkip()
	case PhaseAnswer:
		m.phase = PhaseDetail
		return m.playOrSkip()
	default:
		return m.finishItem()
	}
}

// playOrSkip starts the clip for the current phase, or advances immediately
// with a synthetic completion when the clip is absent so the phase is still
// observable by the UI.
func (m Model) playOrSkip() (Model, tea.Cmd) {
	cs, ok := m.source.ClipSet(m.index)
	if !ok {
		// Entry vanished mid-item (batch reload); treat as a stop.
		cmd := m.Stop()
		return m, cmd
	}
	pcm := cs.clip(m.phase)
	if pcm == nil {
		seq, index, phase := m.seq, m.index, m.phase
		return m, func() tea.Msg {
			return ClipFinishedMsg{Seq: seq, Index: index, Phase: phase}
		}
	}
	cmd := m.play(pcm)
	return m, cmd
}

// finishItem completes the detail phase: the audio instance is released and
// the session idles, or auto-advance schedules the next item. Finishing the
// last item disables auto-advance.
func (m Model) finishItem() (Model, tea.Cmd) {
	m.release()
	m.playing = false

	index := m.index
	cmds := []tea.Cmd{func() tea.Msg { return ItemFinishedMsg{Index: index} }}

	if m.autoAdvance {
		if m.index >= m.source.Len()-1 {
			m.autoAdvance = false
			cmds = append(cmds, func() tea.Msg { return BatchFinishedMsg{} })
		} else {
			seq := m.seq
			cmds = append(cmds, tea.Tick(m.advanceDelay, func(time.Time) tea.Msg {
				return AdvanceMsg{Seq: seq}
			}))
		}
	}
	return m, tea.Batch(cmds...)
}

// play starts one audio-output instance for the current phase, releasing any
// previous instance first.
func (m *Model) play(pcm []byte) tea.Cmd {
	m.release()
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.startedAt = time.Now()
	m.clipBytes = len(pcm)

	out := m.output
	seq, index, phase := m.seq, m.index, m.phase
	return func() tea.Msg {
		err := out.Play(ctx, pcm)
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		return ClipFinishedMsg{Seq: seq, Index: index, Phase: phase, Err: err}
	}
}

// release cancels the active audio-output instance, if any.
func (m *Model) release() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.clipBytes = 0
}

// Index returns the current item index.
func (m Model) Index() int { return m.index }

// Phase returns the current phase.
func (m Model) Phase() Phase { return m.phase }

// Playing reports whether a playback session is active.
func (m Model) Playing() bool { return m.playing }

// AutoAdvance reports whether auto-play is enabled.
func (m Model) AutoAdvance() bool { return m.autoAdvance }

// Finished reports whether the current item completed all phases.
func (m Model) Finished() bool { return !m.playing && m.phase == PhaseDetail }

// Elapsed returns how long the current clip has been playing.
func (m Model) Elapsed() time.Duration {
	if !m.playing || m.startedAt.IsZero() {
		return 0
	}
	return time.Since(m.startedAt)
}

// ClipBytes returns the payload size of the clip being played, 0 when idle
// or mid-skip.
func (m Model) ClipBytes() int { return m.clipBytes }
