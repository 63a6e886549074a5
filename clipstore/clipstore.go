// Package clipstore holds the generated speech clips for a quiz batch.
//
// The store has exactly one writer, the generation pipeline, and is read by
// the playback sequencer and the export path. Pipeline writes happen on a
// background goroutine while reads happen on the UI loop, so access is
// guarded by a mutex and every read returns a value copy of the entry —
// readers never observe a half-written entry.
package clipstore

import (
	"sync"

	"github.com/quizvoice/quizvoice/wav"
)

// Status tracks the generation lifecycle of one quiz item's clips.
type Status int

const (
	StatusPending Status = iota
	StatusGenerating
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusGenerating:
		return "generating"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Clip is one generated audio buffer for one phase of one quiz item.
// It is immutable after creation; ownership passes to the store entry.
type Clip struct {
	PCM    []byte
	Format wav.Format
}

// Entry holds the three phase clips for one quiz item. Answer and Detail may
// be nil even on a ready entry when the source text for that phase was empty;
// Question is always non-nil once the entry is ready.
type Entry struct {
	Question *Clip
	Answer   *Clip
	Detail   *Clip
	Status   Status
	Err      string
}

// Store holds one entry per quiz item, indexed by the item's ordinal position.
type Store struct {
	mu      sync.RWMutex
	entries []Entry
}

// New creates a store with n pending entries.
func New(n int) *Store {
	return &Store{entries: make([]Entry, n)}
}

// Reset discards all entries and replaces them with n pending ones.
// Used when a new batch replaces the current one.
func (s *Store) Reset(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make([]Entry, n)
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// SetGenerating marks entry i as having generation in flight.
func (s *Store) SetGenerating(i int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.entries) {
		return
	}
	s.entries[i] = Entry{Status: StatusGenerating}
}

// SetReady stores the generated clips for entry i. question must be non-nil;
// answer and detail are nil when their phase had no text to speak.
func (s *Store) SetReady(i int, question, answer, detail *Clip) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.entries) || question == nil {
		return
	}
	s.entries[i] = Entry{
		Question: question,
		Answer:   answer,
		Detail:   detail,
		Status:   StatusReady,
	}
}

// SetFailed marks entry i as failed with a reason. Any clips generated for
// other phases of the item are discarded: partial success is item failure.
func (s *Store) SetFailed(i int, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.entries) {
		return
	}
	s.entries[i] = Entry{Status: StatusFailed, Err: reason}
}

// Entry returns a snapshot of entry i. The bool is false when i is out of
// range. The returned clips are shared but immutable by convention.
func (s *Store) Entry(i int) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i < 0 || i >= len(s.entries) {
		return Entry{}, false
	}
	return s.entries[i], true
}

// AllReady reports whether every entry in the store is ready. False for an
// empty store.
func (s *Store) AllReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.entries) == 0 {
		return false
	}
	for _, e := range s.entries {
		if e.Status != StatusReady {
			return false
		}
	}
	return true
}

// CountReady returns the number of ready entries.
func (s *Store) CountReady() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, e := range s.entries {
		if e.Status == StatusReady {
			n++
		}
	}
	return n
}

// CountFailed returns the number of failed entries.
func (s *Store) CountFailed() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, e := range s.entries {
		if e.Status == StatusFailed {
			n++
		}
	}
	return n
}
