package quizvoice

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/quizvoice/quizvoice/clipcache"
	"github.com/quizvoice/quizvoice/clipstore"
	"github.com/quizvoice/quizvoice/quiz"
	"github.com/quizvoice/quizvoice/sequencer"
	"github.com/quizvoice/quizvoice/settings"
	"github.com/quizvoice/quizvoice/speech"
)

// New creates a new Model instance with default settings and applies options.
func New(opts ...Option) *Model {
	vp := viewport.New(50, 10)
	vp.SetContent("Loading quiz...")

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	// Create settings panel
	settingsPanel := settings.New(speech.Voices())

	m := &Model{
		viewport:       vp,
		spinner:        s,
		store:          clipstore.New(0),
		modelName:      speech.DefaultModel,
		voiceName:      speech.DefaultVoice,
		backend:        "auto",
		playerCmd:      "auto",
		cacheEnabled:   true,       // Cache on by default; disabled via option
		notes:          []Note{},   // Initialize empty note feed
		logMessages:    []string{}, // Initialize empty log messages
		maxLogMessages: 10,         // Default to storing 10 log messages

		uiUpdateChan: make(chan tea.Msg, 10), // Initialize channel with a small buffer

		settingsPanel: &settingsPanel,

		// Focus management
		focusedComponent:  "list",
		showSettingsPanel: false,
	}

	for _, opt := range opts {
		if err := opt(m); err != nil {
			log.Printf("Warning: Error applying option: %v", err)
		}
	}

	// The sequencer reads clips from the store and plays them through the
	// shared output. Both live for the whole session.
	m.output = newPlaybackOutput(m.playerCmd)
	m.seq = sequencer.New(storeSource{store: m.store}, m.output)

	return m
}

// InitModel initializes the Bubble Tea model details before starting the program.
func (m *Model) InitModel() (tea.Model, error) {
	if m.batch == nil {
		if m.quizPath == "" {
			return nil, fmt.Errorf("no quiz loaded: set a quiz file or batch")
		}
		batch, err := quiz.Load(m.quizPath)
		if err != nil {
			return nil, err
		}
		m.batch = batch
	}
	m.store.Reset(len(m.batch.Items))

	if m.synth == nil {
		synth, err := m.buildSynthesizer(context.Background())
		if err != nil {
			return nil, err
		}
		m.synth = synth
	}

	if m.cacheEnabled && m.cache == nil {
		path := m.cachePath
		if path == "" {
			p, err := clipcache.DefaultPath()
			if err != nil {
				log.Printf("Warning: clip cache disabled: %v", err)
			} else {
				path = p
			}
		}
		if path != "" {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			cache, err := clipcache.Open(ctx, path)
			cancel()
			if err != nil {
				log.Printf("Warning: clip cache disabled: %v", err)
			} else {
				m.cache = cache
			}
		}
	}

	// Set up log interceptor if log messages are enabled
	if m.showLogMessages {
		interceptor := &logInterceptor{
			model:    m,
			original: log.Writer(),
		}
		log.SetOutput(interceptor)
		log.Println("Log messages display enabled")
	}

	// The settings panel mirrors the running configuration.
	m.settingsPanel.ModelName = m.modelName
	m.settingsPanel.SetVoice(m.voiceName)
	m.settingsPanel.Backend = m.effectiveBackend()
	m.settingsPanel.Player = m.playerCmd
	m.settingsPanel.CacheEnabled = m.cache != nil
	if m.cache != nil {
		m.settingsPanel.CachePath = m.cache.Path()
	}

	// Log configuration details
	log.Printf("Quiz: %q (%d items)", m.batch.Title, len(m.batch.Items))
	log.Printf("Using model: %s", m.modelName)
	log.Printf("Speech voice: %s", m.voiceName)
	log.Printf("Speech backend: %s", m.effectiveBackend())
	log.Printf("Audio player command: %q", m.playerCmd)
	log.Printf("Auto-play: %t", m.autoPlay)
	log.Printf("Clip cache enabled: %t", m.cache != nil)
	log.Printf("Show log messages: %t (max %d)", m.showLogMessages, m.maxLogMessages)

	return m, nil
}

// initCmd returns the command sequence to start the application logic.
func (m *Model) initCmd() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		func() tea.Msg { return startGenerationMsg{} },
		m.cacheCountCmd(),
	)
}

// playbackTickCmd creates a command for the playback UI ticker.
func playbackTickCmd() tea.Cmd {
	// Send a tick message roughly 10 times per second
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return playbackTickMsg(t) // Defined in types.go
	})
}

// listenForUIUpdatesCmd returns a command that listens on the uiUpdateChan
// and forwards messages to the main Bubble Tea update loop.
func (m *Model) listenForUIUpdatesCmd() tea.Cmd {
	return func() tea.Msg {
		// Blocks until a message is available on the channel
		msg := <-m.uiUpdateChan
		return msg
	}
}

// Init is the initial command called by Bubble Tea.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.initCmd(),               // Starts the generation pipeline
		m.listenForUIUpdatesCmd(), // Starts listening for background messages
	)
}

// Update handles incoming messages and updates the model state.
// It acts as the main dispatcher.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		vpCmd               tea.Cmd
		spCmd               tea.Cmd
		cmds                []tea.Cmd
		startPlaybackTicker bool // Flag to start the ticker
	)

	// Update standard components
	switch msg.(type) {
	case tea.KeyMsg:
		// Key messages processed below
	default:
		m.viewport, vpCmd = m.viewport.Update(msg)
	}
	m.spinner, spCmd = m.spinner.Update(msg)
	cmds = append(cmds, vpCmd, spCmd)

	// --- Process specific message types ---
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Check if settings panel is focused first
		if m.showSettingsPanel && m.settingsPanel != nil && m.focusedComponent == "settings" {
			switch msg.String() {
			case "ctrl+c", "q":
				m.quitting = true
				m.seq.Stop()
				if m.genCancel != nil {
					m.genCancel()
				}
				return m, tea.Quit

			case "r": // Regenerate with the newly picked voice
				genCmd := m.startGeneration()
				cmds = append(cmds, genCmd)

			default:
				var settingsCmd tea.Cmd
				*m.settingsPanel, settingsCmd = m.settingsPanel.Update(msg)
				cmds = append(cmds, settingsCmd)

				if m.settingsPanel.Voice != m.voiceName {
					m.voiceName = m.settingsPanel.Voice
					log.Printf("Voice changed to %s (takes effect on regeneration)", m.voiceName)
				}

				// If settings panel no longer focused, return to the list
				if !m.settingsPanel.Focused {
					m.showSettingsPanel = false
					m.focusedComponent = "list"
				}
			}
			return m, tea.Batch(cmds...)
		}

		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			m.seq.Stop()
			if m.genCancel != nil {
				m.genCancel()
			}
			return m, tea.Quit

		case " ": // Toggle playback of the current item
			if m.seq.Playing() {
				stopCmd := m.seq.Stop()
				cmds = append(cmds, stopCmd)
			} else {
				playCmd := m.seq.PlayItem(m.seq.Index())
				startPlaybackTicker = true
				cmds = append(cmds, playCmd)
			}

		case "enter": // Play the current item from its question
			playCmd := m.seq.PlayItem(m.seq.Index())
			startPlaybackTicker = true
			cmds = append(cmds, playCmd)

		case "a": // Auto-play the whole batch
			playCmd := m.seq.StartAutoPlay()
			startPlaybackTicker = true
			cmds = append(cmds, playCmd)

		case "x", "esc": // Stop playback
			stopCmd := m.seq.Stop()
			cmds = append(cmds, stopCmd)

		case "up", "k":
			navCmd := m.seq.Prev()
			cmds = append(cmds, navCmd)

		case "down", "j":
			navCmd := m.seq.Next()
			cmds = append(cmds, navCmd)

		case "e": // Export the whole batch as one WAV file
			switch {
			case m.generating:
				m.pushNote(formatNote("Export waits for generation to finish."))
			case m.exporting:
				m.pushNote(formatNote("An export is already running."))
			default:
				m.exporting = true
				cmds = append(cmds, m.exportBatchCmd())
			}

		case "E": // Export the clip playing now (or the current item's question)
			switch {
			case m.generating:
				m.pushNote(formatNote("Export waits for generation to finish."))
			case m.exporting:
				m.pushNote(formatNote("An export is already running."))
			default:
				m.exporting = true
				cmds = append(cmds, m.exportClipCmd())
			}

		case "r": // Regenerate all audio
			genCmd := m.startGeneration()
			cmds = append(cmds, genCmd)

		case "s": // Toggle settings panel
			m.showSettingsPanel = !m.showSettingsPanel
			if m.showSettingsPanel {
				m.focusedComponent = "settings"
				m.settingsPanel.Focus()
				cmds = append(cmds, m.cacheCountCmd())
			} else {
				m.focusedComponent = "list"
				m.settingsPanel.Blur()
			}

		case "ctrl+l": // Toggle log messages display
			m.showLogMessages = !m.showLogMessages
		}

	// --- Generation Pipeline Messages ---
	case startGenerationMsg:
		genCmd := m.startGeneration()
		cmds = append(cmds, genCmd)

	case genItemStartedMsg:
		// The store already carries the new status; arrival repaints the list.

	case genItemReadyMsg:
		if msg.run != m.genRun {
			break
		}
		m.genDone++
		m.genCached += msg.cached
		if !m.formatSet {
			// First ready item decides the playback and export format.
			m.format = msg.format
			m.formatSet = true
			m.output.SetFormat(msg.format)
			log.Printf("Clip format: %d Hz, %d channel(s), %d-bit",
				msg.format.SampleRate, msg.format.Channels, msg.format.BitsPerSample)
		}

	case genItemFailedMsg:
		if msg.run != m.genRun {
			break
		}
		m.genDone++
		m.genFailed++
		m.pushNote(formatErrorNote(fmt.Errorf("item %d audio failed: %w", msg.index+1, msg.err)))

	case genFinishedMsg:
		if msg.run != m.genRun {
			break
		}
		m.generating = false
		summary := fmt.Sprintf("Audio ready for %d/%d items", msg.ready, m.store.Len())
		if msg.cached > 0 {
			summary += fmt.Sprintf(" (%d clips from cache)", msg.cached)
		}
		if msg.failed > 0 {
			summary += fmt.Sprintf(", %d failed", msg.failed)
		}
		m.pushNote(formatNote(summary))
		cmds = append(cmds, m.cacheCountCmd())

		if m.autoPlay && m.store.AllReady() {
			playCmd := m.seq.StartAutoPlay()
			startPlaybackTicker = true
			cmds = append(cmds, playCmd)
		}

	// --- Playback Session Messages ---
	case sequencer.ClipFinishedMsg, sequencer.AdvanceMsg, sequencer.StopMsg, sequencer.NavigateMsg:
		var seqCmd tea.Cmd
		m.seq, seqCmd = m.seq.Update(msg)
		cmds = append(cmds, seqCmd)
		if m.seq.Playing() {
			startPlaybackTicker = true
		}

	case sequencer.NotReadyMsg:
		if msg.Batch {
			m.pushNote(formatNote("Auto-play needs audio for every item."))
		} else {
			m.pushNote(formatNote(fmt.Sprintf("Item %d has no audio yet.", msg.Index+1)))
		}

	case sequencer.ItemFinishedMsg:
		log.Printf("Item %d playback finished", msg.Index+1)

	case sequencer.BatchFinishedMsg:
		m.pushNote(formatNote("Auto-play finished."))

	case sequencer.PlaybackErrorMsg:
		m.pushNote(formatErrorNote(fmt.Errorf("playback failed on item %d (%s): %w",
			msg.Index+1, msg.Phase, msg.Err)))

	// --- Export And Cache Messages ---
	case exportDoneMsg:
		m.exporting = false
		if msg.err != nil {
			m.pushNote(formatErrorNote(fmt.Errorf("export failed: %w", msg.err)))
		} else {
			m.pushNote(formatNote(fmt.Sprintf("Exported %d clip(s) to %s", msg.clips, msg.path)))
		}

	case cacheCountMsg:
		if m.settingsPanel != nil {
			m.settingsPanel.CacheCount = msg.count
		}

	// --- Other System Messages ---
	case playbackTickMsg:
		// Only keep ticking while a clip is actually playing
		if m.seq.Playing() {
			cmds = append(cmds, playbackTickCmd()) // Continue ticking
		} else {
			m.tickerRunning = false
		}

	case spinner.TickMsg:
		// Handled by spinner update earlier

	case tea.WindowSizeMsg:
		// Prevent zero dimensions
		m.width = max(msg.Width, 20)
		m.height = max(msg.Height, 10)

		var settingsCmd tea.Cmd
		*m.settingsPanel, settingsCmd = m.settingsPanel.Update(msg)
		cmds = append(cmds, settingsCmd)

		headerHeight := lipgloss.Height(m.headerView()) // ui.go
		footerHeight := lipgloss.Height(m.footerView()) // ui.go

		vpHeight := m.height - headerHeight - footerHeight - 2 // -2 for viewport border
		if vpHeight < 1 {
			vpHeight = 1
		}
		m.viewport.Width = m.width - 2
		m.viewport.Height = vpHeight

	default:
		// Ignore unknown messages
	}

	// Start ticker command if flagged and not already running
	if startPlaybackTicker && !m.tickerRunning {
		m.tickerRunning = true
		cmds = append(cmds, playbackTickCmd())
	}

	m.syncViewport()

	// Important: Always add the listener command back to the batch
	cmds = append(cmds, m.listenForUIUpdatesCmd())

	return m, tea.Batch(cmds...)
}

// syncViewport refreshes the item list content and keeps the current item
// visible.
func (m *Model) syncViewport() {
	content, currentLine := m.itemListView()
	m.viewport.SetContent(content)

	if currentLine < m.viewport.YOffset {
		m.viewport.SetYOffset(currentLine)
	} else if currentLine >= m.viewport.YOffset+m.viewport.Height {
		m.viewport.SetYOffset(currentLine - m.viewport.Height + 1)
	}
}

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return "Stopping playback and quitting...\n"
	}

	// Set default dimensions if needed
	if m.width == 0 || m.height == 0 {
		// Set default dimensions for better initial rendering
		m.width = 80
		m.height = 24
	}

	headerHeight := lipgloss.Height(m.headerView())
	footerHeight := lipgloss.Height(m.footerView())
	vpHeight := m.height - headerHeight - footerHeight - 2
	if vpHeight < 5 {
		vpHeight = 5
	}
	m.viewport.Width = m.width - 2
	m.viewport.Height = vpHeight

	// Apply rounded borders to viewport
	m.viewport.Style = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	// Main content view (without settings panel)
	var mainContent strings.Builder
	mainContent.WriteString(m.headerView())
	mainContent.WriteString(m.viewport.View())
	mainContent.WriteString("\n")
	mainContent.WriteString(m.footerView())

	// If settings panel is visible, join horizontally
	if m.showSettingsPanel && m.settingsPanel != nil {
		if settingsView := m.settingsPanel.View(); settingsView != "" {
			return lipgloss.JoinHorizontal(lipgloss.Top, settingsView, " ", mainContent.String())
		}
	}

	return mainContent.String()
}

// Cleanup properly releases all resources
func (m *Model) Cleanup() {
	log.Println("Cleaning up resources")

	// Stop any in-flight generation run
	if m.genCancel != nil {
		m.genCancel()
		m.genCancel = nil
	}

	// Stop playback and release the player process
	m.seq.Stop()
	if m.output != nil {
		if err := m.output.Close(); err != nil {
			log.Printf("Error closing audio output: %v", err)
		}
	}

	if m.synth != nil {
		if err := m.synth.Close(); err != nil {
			log.Printf("Error closing speech client: %v", err)
		}
		m.synth = nil
	}

	if m.cache != nil {
		if err := m.cache.Close(); err != nil {
			log.Printf("Error closing clip cache: %v", err)
		}
		m.cache = nil
	}
}
