package audioplayer

import (
	"os/exec"
	"testing"

	"github.com/quizvoice/quizvoice/wav"
)

func TestNewAfplayPlayer(t *testing.T) {
	if _, err := exec.LookPath("afplay"); err != nil {
		// Off macOS the constructor must refuse rather than hand back a
		// player that fails on first use.
		if _, err := NewAfplayPlayer(wav.DefaultFormat); err == nil {
			t.Error("NewAfplayPlayer() should fail when afplay is not installed")
		}
		return
	}

	player, err := NewAfplayPlayer(wav.DefaultFormat)
	if err != nil {
		t.Fatalf("NewAfplayPlayer() returned error: %v", err)
	}
	if player == nil {
		t.Fatal("NewAfplayPlayer() returned nil player")
	}
}

func TestAfplayPlayerRequiresWAVHeader(t *testing.T) {
	p := &AfplayPlayer{format: wav.DefaultFormat}
	if !p.RequiresWAVHeader() {
		t.Error("afplay plays WAV files, RequiresWAVHeader() should be true")
	}
}

func TestAfplayPlayerEstimatedLatency(t *testing.T) {
	p := &AfplayPlayer{format: wav.DefaultFormat}
	if p.EstimatedLatency() <= 0 {
		t.Error("EstimatedLatency() should return a positive duration")
	}
}

func TestAfplayPlayerCleanup(t *testing.T) {
	p := &AfplayPlayer{format: wav.DefaultFormat}
	if err := p.Cleanup(); err != nil {
		t.Errorf("Cleanup() should return nil, got: %v", err)
	}
}
