package settings

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func testVoices() []string {
	return []string{"Puck", "Charon", "Kore"}
}

func TestNew(t *testing.T) {
	model := New(testVoices())

	if model.Focused {
		t.Error("New() Focused = true, want false")
	}
	if model.Voice != "" {
		t.Errorf("New() Voice = %s, want empty until SetVoice", model.Voice)
	}
}

func TestInit(t *testing.T) {
	model := New(testVoices())
	if cmd := model.Init(); cmd != nil {
		t.Error("Init() returned non-nil command")
	}
}

func TestFocusAndBlur(t *testing.T) {
	model := New(testVoices())

	model.Focus()
	if !model.IsFocused() {
		t.Error("IsFocused() should return true after Focus()")
	}

	model.Blur()
	if model.IsFocused() {
		t.Error("IsFocused() should return false after Blur()")
	}
}

func TestSetVoice(t *testing.T) {
	model := New(testVoices())

	model.SetVoice("Charon")
	if model.Voice != "Charon" {
		t.Errorf("SetVoice() Voice = %s, want Charon", model.Voice)
	}

	// Cycling right from Charon lands on Kore.
	model.cycleVoice(1)
	if model.Voice != "Kore" {
		t.Errorf("cycleVoice(1) Voice = %s, want Kore", model.Voice)
	}

	// Unknown voices join the cycle rather than being rejected.
	model.SetVoice("CustomVoice")
	if model.Voice != "CustomVoice" {
		t.Errorf("SetVoice() with unknown voice = %s, want CustomVoice", model.Voice)
	}
	model.cycleVoice(1)
	if model.Voice != "Puck" {
		t.Errorf("cycle after appended voice should wrap to Puck, got %s", model.Voice)
	}
}

func TestVoiceCyclingKeys(t *testing.T) {
	model := New(testVoices())
	model.SetVoice("Puck")
	model.Focus()

	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyRight})
	if model.Voice != "Charon" {
		t.Errorf("right key should advance voice, got %s", model.Voice)
	}

	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if model.Voice != "Puck" {
		t.Errorf("left key should cycle back, got %s", model.Voice)
	}

	// Wrap left from the first voice.
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if model.Voice != "Kore" {
		t.Errorf("left from first voice should wrap to last, got %s", model.Voice)
	}
}

func TestKeysIgnoredWhenBlurred(t *testing.T) {
	model := New(testVoices())
	model.SetVoice("Puck")

	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyRight})
	if model.Voice != "Puck" {
		t.Error("key handling should be inert while the panel is blurred")
	}
}

func TestView(t *testing.T) {
	model := New(testVoices())
	model.SetVoice("Puck")
	model.ModelName = "models/gemini-2.0-flash-live-001"
	model.Backend = "live"
	model.Player = "ffplay"
	model.CacheEnabled = true
	model.CacheCount = 7

	if view := model.View(); view != "" {
		t.Errorf("View() when not focused should return empty string, got: %s", view)
	}

	model.Focus()
	view := model.View()
	if view == "" {
		t.Fatal("View() when focused should not return empty string")
	}

	for _, want := range []string{"Settings", "Puck", "models/gemini-2.0-flash-live-001", "live", "ffplay", "enabled (7 clips)", "esc close"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() should contain %q", want)
		}
	}
}

func TestUpdate(t *testing.T) {
	model := New(testVoices())

	newModel, cmd := model.Update(tea.WindowSizeMsg{Width: 120, Height: 80})
	if newModel.Width != 40 { // Width should be 1/3 of window width
		t.Errorf("Update(WindowSizeMsg) Width = %d, want 40", newModel.Width)
	}
	if newModel.Height != 80 {
		t.Errorf("Update(WindowSizeMsg) Height = %d, want 80", newModel.Height)
	}
	if cmd != nil {
		t.Error("Update(WindowSizeMsg) returned non-nil command")
	}

	model.Focus()
	newModel, cmd = model.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if newModel.Focused {
		t.Error("Update(KeyMsg{Esc}) when focused should set Focused to false")
	}
	if cmd != nil {
		t.Error("Update(KeyMsg{Esc}) returned non-nil command")
	}
}
