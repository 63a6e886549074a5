package quizvoice

import (
	"context"
	"errors"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/quizvoice/quizvoice/clipcache"
	"github.com/quizvoice/quizvoice/clipstore"
	"github.com/quizvoice/quizvoice/quiz"
	"github.com/quizvoice/quizvoice/speech"
)

// itemClips is the outcome of generating one quiz item.
type itemClips struct {
	question *clipstore.Clip
	answer   *clipstore.Clip
	detail   *clipstore.Clip
	cached   int // clips served from the cache
}

// startGeneration launches the generation pipeline for the current batch on
// a background goroutine. Items are processed strictly in batch order, one
// at a time; progress arrives on uiUpdateChan tagged with the run ID so a
// superseded run can never touch newer state. Any in-flight run is canceled
// first.
func (m *Model) startGeneration() tea.Cmd {
	if m.batch == nil || m.synth == nil {
		return nil
	}
	if m.genCancel != nil {
		m.genCancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.genCancel = cancel

	run := uuid.New().String()
	m.genRun = run
	m.generating = true
	m.genDone, m.genFailed, m.genCached = 0, 0, 0
	m.store.Reset(len(m.batch.Items))
	m.seq.Stop()

	items := m.batch.Items
	store, synth, cache := m.store, m.synth, m.cache
	modelName, voiceName := m.modelName, m.voiceName
	ch := m.uiUpdateChan

	log.Printf("Starting generation run %s: %d items, model %s, voice %s",
		run[:8], len(items), modelName, voiceName)

	go func() {
		// Blocking sends would wedge this goroutine after the program
		// quits; the run context doubles as the shutdown signal.
		send := func(msg tea.Msg) bool {
			select {
			case ch <- msg:
				return true
			case <-ctx.Done():
				return false
			}
		}

		ready, failed, cached := 0, 0, 0
		for i, item := range items {
			if ctx.Err() != nil {
				return
			}
			store.SetGenerating(i)
			if !send(genItemStartedMsg{run: run, index: i}) {
				return
			}

			clips, err := generateItem(ctx, synth, cache, modelName, voiceName, item)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				store.SetFailed(i, err.Error())
				failed++
				log.Printf("Generation run %s: item %d failed: %v", run[:8], i+1, err)
				if !send(genItemFailedMsg{run: run, index: i, err: err}) {
					return
				}
				continue
			}

			store.SetReady(i, clips.question, clips.answer, clips.detail)
			ready++
			cached += clips.cached
			if !send(genItemReadyMsg{run: run, index: i, cached: clips.cached, format: clips.question.Format}) {
				return
			}
		}

		log.Printf("Generation run %s finished: %d ready, %d failed, %d clips from cache",
			run[:8], ready, failed, cached)
		send(genFinishedMsg{run: run, ready: ready, failed: failed, cached: cached})
	}()

	return nil
}

// generateItem synthesizes the clips for one item, strictly in phase order:
// question, answer, detail. Phases without text are skipped. Any failure
// discards the whole item; partial clip sets are never stored.
func generateItem(ctx context.Context, synth speech.Synthesizer, cache *clipcache.Store, model, voice string, item quiz.Item) (itemClips, error) {
	var out itemClips

	phases := []struct {
		text string
		dst  **clipstore.Clip
	}{
		{item.QuestionSpeech(), &out.question},
		{item.AnswerSpeech(), &out.answer},
		{item.DetailSpeech(), &out.detail},
	}

	for _, phase := range phases {
		if phase.text == "" {
			continue
		}
		clip, hit, err := generateClip(ctx, synth, cache, model, voice, phase.text)
		if err != nil {
			return itemClips{}, err
		}
		*phase.dst = clip
		if hit {
			out.cached++
		}
	}

	if out.question == nil {
		return itemClips{}, errors.New("item has no question text to speak")
	}
	return out, nil
}

// generateClip produces the audio for one piece of text, consulting the
// cache first. Cache errors are logged and ignored; the cache is
// best-effort.
func generateClip(ctx context.Context, synth speech.Synthesizer, cache *clipcache.Store, model, voice, text string) (*clipstore.Clip, bool, error) {
	if cache != nil {
		audio, ok, err := cache.Get(ctx, model, voice, text)
		if err != nil {
			log.Printf("Cache lookup failed: %v", err)
		} else if ok {
			return &clipstore.Clip{PCM: audio.PCM, Format: audio.Format}, true, nil
		}
	}

	audio, err := synth.Synthesize(ctx, text)
	if err != nil {
		return nil, false, err
	}

	if cache != nil {
		if err := cache.Put(ctx, model, voice, text, audio); err != nil {
			log.Printf("Cache store failed: %v", err)
		}
	}
	return &clipstore.Clip{PCM: audio.PCM, Format: audio.Format}, false, nil
}

// cacheCountCmd refreshes the cached-clip count shown in the settings panel.
func (m *Model) cacheCountCmd() tea.Cmd {
	cache := m.cache
	if cache == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		n, err := cache.Count(ctx)
		if err != nil {
			log.Printf("Cache count failed: %v", err)
			return nil
		}
		return cacheCountMsg{count: n}
	}
}
