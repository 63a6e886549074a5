// Package settings implements the overlay panel for inspecting and tuning
// the speech setup while the app runs. Voice changes take effect on the next
// generation run.
package settings

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Model represents the settings panel state
type Model struct {
	Width   int
	Height  int
	Focused bool

	ModelName    string
	Voice        string
	Backend      string
	Player       string
	CacheEnabled bool
	CacheCount   int
	CachePath    string

	voices []string
	cursor int
}

// New creates a new settings model. voices is the cycle order for the
// voice selector.
func New(voices []string) Model {
	return Model{
		voices: voices,
	}
}

// Init initializes the settings model
func (m Model) Init() tea.Cmd {
	return nil
}

// SetVoice positions the voice selector, adding unknown voices to the cycle.
func (m *Model) SetVoice(voice string) {
	m.Voice = voice
	for i, v := range m.voices {
		if v == voice {
			m.cursor = i
			return
		}
	}
	m.voices = append(m.voices, voice)
	m.cursor = len(m.voices) - 1
}

// Update handles updating the settings model
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width / 3
		m.Height = msg.Height
	case tea.KeyMsg:
		if !m.Focused {
			return m, nil
		}

		switch msg.String() {
		case "esc", "s":
			m.Focused = false
		case "left", "h":
			m.cycleVoice(-1)
		case "right", "l":
			m.cycleVoice(1)
		}
	}

	return m, nil
}

func (m *Model) cycleVoice(delta int) {
	if len(m.voices) == 0 {
		return
	}
	m.cursor = (m.cursor + delta + len(m.voices)) % len(m.voices)
	m.Voice = m.voices[m.cursor]
}

// View renders the settings panel
func (m Model) View() string {
	if !m.Focused {
		return ""
	}

	style := lipgloss.NewStyle().
		Width(m.Width).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(1, 2)

	cache := "disabled"
	if m.CacheEnabled {
		cache = fmt.Sprintf("enabled (%d clips)", m.CacheCount)
	}

	var b strings.Builder
	b.WriteString("Settings\n\n")
	fmt.Fprintf(&b, "Voice:   ◀ %s ▶\n", m.Voice)
	fmt.Fprintf(&b, "Model:   %s\n", m.ModelName)
	fmt.Fprintf(&b, "Backend: %s\n", m.Backend)
	fmt.Fprintf(&b, "Player:  %s\n", m.Player)
	fmt.Fprintf(&b, "Cache:   %s\n", cache)
	if m.CacheEnabled && m.CachePath != "" {
		fmt.Fprintf(&b, "         %s\n", m.CachePath)
	}
	b.WriteString("\n←/→ change voice · r regenerate with new voice · esc close")

	return style.Render(b.String())
}

// Focus sets focus on the settings panel
func (m *Model) Focus() {
	m.Focused = true
}

// Blur removes focus from the settings panel
func (m *Model) Blur() {
	m.Focused = false
}

// IsFocused returns whether the settings panel is focused
func (m Model) IsFocused() bool {
	return m.Focused
}
