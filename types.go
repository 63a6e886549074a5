package quizvoice

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/quizvoice/quizvoice/clipcache"
	"github.com/quizvoice/quizvoice/clipstore"
	"github.com/quizvoice/quizvoice/quiz"
	"github.com/quizvoice/quizvoice/sequencer"
	"github.com/quizvoice/quizvoice/settings"
	"github.com/quizvoice/quizvoice/speech"
	"github.com/quizvoice/quizvoice/wav"
)

// NoteKind classifies an entry in the session note feed.
type NoteKind int

const (
	NoteInfo NoteKind = iota
	NoteError
)

// Note is one entry in the note feed: generation summaries, export results,
// refused operations and errors. Notes are displayed above the status line.
type Note struct {
	ID        string // Unique UUID for the note
	Kind      NoteKind
	Text      string
	Timestamp time.Time
}

// Model represents the state of the Bubble Tea application.
type Model struct {
	viewport viewport.Model
	spinner  spinner.Model

	batch *quiz.Batch      // Loaded quiz batch (immutable once loaded)
	store *clipstore.Store // Generated clips, one entry per item
	seq   sequencer.Model  // Playback session state machine

	synth  speech.Synthesizer // Speech backend (live, grpc or mock)
	output *playbackOutput    // Audio output shared with the sequencer
	cache  *clipcache.Store   // Optional persistent clip cache

	// Configuration
	quizPath     string
	modelName    string
	voiceName    string
	backend      string // One of "auto", "live", "grpc", "mock"
	apiKey       string // Store API key if provided via option
	playerCmd    string // Config: command to play raw PCM audio
	autoPlay     bool   // Start auto-play once the whole batch is ready
	cacheEnabled bool
	cachePath    string
	exportDir    string

	// Clip format, adopted from the first ready entry. Until then the
	// speech-service default applies.
	format    wav.Format
	formatSet bool

	// Generation run state. genRun identifies the in-flight pipeline run;
	// progress messages from a superseded run are dropped.
	generating bool
	genRun     string
	genCancel  context.CancelFunc
	genDone    int
	genFailed  int
	genCached  int

	// True while an export command is running. The export keys are refused
	// until exportDoneMsg arrives.
	exporting bool

	notes []Note
	err   error

	// Log Messages
	logMessages     []string // Stores recent log messages
	maxLogMessages  int      // Maximum number of log messages to store
	showLogMessages bool     // Whether to show log messages or not

	width    int
	height   int
	quitting bool

	// Ticker state
	tickerRunning bool // Flag to indicate if the playback ticker is active

	// Channel for goroutines to send messages back to the UI loop
	uiUpdateChan chan tea.Msg

	settingsPanel *settings.Model

	// Focus management
	focusedComponent  string // One of "list", "settings"
	showSettingsPanel bool
}

// Option defines a functional option for configuring the Model.
type Option func(*Model) error

// --- Messages ---

// Sequencer messages are defined in the sequencer package; the Update
// dispatcher routes them back into the sequencer and reacts to its
// notifications.

// startGenerationMsg kicks off the generation pipeline for the loaded batch.
type startGenerationMsg struct{}

// genItemStartedMsg reports that generation of one item began.
type genItemStartedMsg struct {
	run   string
	index int
}

// genItemReadyMsg reports that all clips of one item were stored.
type genItemReadyMsg struct {
	run    string
	index  int
	cached int // clips served from the cache instead of the speech API
	format wav.Format
}

// genItemFailedMsg reports that an item failed as a whole; no partial clips
// were kept.
type genItemFailedMsg struct {
	run   string
	index int
	err   error
}

// genFinishedMsg reports that the pipeline processed the last item.
type genFinishedMsg struct {
	run    string
	ready  int
	failed int
	cached int
}

// exportDoneMsg reports the outcome of an export command.
type exportDoneMsg struct {
	path  string
	clips int
	err   error
}

// cacheCountMsg refreshes the cache statistics shown in the settings panel.
type cacheCountMsg struct {
	count int
}

// playbackTickMsg triggers UI refresh during playback.
type playbackTickMsg time.Time
