package quizvoice

import (
	"strings"
	"testing"

	"github.com/quizvoice/quizvoice/config"
	"github.com/quizvoice/quizvoice/speech"
)

// TestWithQuizFile tests the WithQuizFile option
func TestWithQuizFile(t *testing.T) {
	cleanup := SetupTestLogging(t)
	defer cleanup()

	model := New(WithQuizFile("quiz.json"))
	if model.quizPath != "quiz.json" {
		t.Errorf("Expected quiz path 'quiz.json', got %q", model.quizPath)
	}

	if err := WithQuizFile("")(New()); err == nil {
		t.Error("Expected an error for an empty quiz file path")
	}
}

// TestWithQuizBatch tests the WithQuizBatch option
func TestWithQuizBatch(t *testing.T) {
	cleanup := SetupTestLogging(t)
	defer cleanup()

	batch := testBatch(2)
	model := New(WithQuizBatch(batch))
	if model.batch != batch {
		t.Error("Expected the injected batch to be set")
	}

	if err := WithQuizBatch(nil)(New()); err == nil {
		t.Error("Expected an error for a nil batch")
	}
}

// TestWithModelAndVoice tests the model and voice options
func TestWithModelAndVoice(t *testing.T) {
	cleanup := SetupTestLogging(t)
	defer cleanup()

	model := New(
		WithModel("models/gemini-1.5-flash"),
		WithVoice("Kore"),
	)
	if model.modelName != "models/gemini-1.5-flash" {
		t.Errorf("Expected model name to be set, got %q", model.modelName)
	}
	if model.voiceName != "Kore" {
		t.Errorf("Expected voice 'Kore', got %q", model.voiceName)
	}

	// Empty values keep the defaults.
	model = New(WithModel(""), WithVoice(""))
	if model.modelName != speech.DefaultModel {
		t.Errorf("Expected default model kept, got %q", model.modelName)
	}
	if model.voiceName != speech.DefaultVoice {
		t.Errorf("Expected default voice kept, got %q", model.voiceName)
	}
}

// TestWithBackend tests the WithBackend option
func TestWithBackend(t *testing.T) {
	cleanup := SetupTestLogging(t)
	defer cleanup()

	for _, backend := range []string{"auto", "live", "grpc", "mock"} {
		model := New(WithBackend(backend))
		if model.backend != backend {
			t.Errorf("Expected backend %q, got %q", backend, model.backend)
		}
	}

	err := WithBackend("carrier-pigeon")(New())
	if err == nil {
		t.Fatal("Expected an error for an unknown backend")
	}
	if !strings.Contains(err.Error(), "unknown speech backend") {
		t.Errorf("Expected backend error message, got %q", err.Error())
	}
}

// TestWithAPIKey tests the WithAPIKey option
func TestWithAPIKey(t *testing.T) {
	model := New(WithAPIKey("test-key"))
	if model.apiKey != "test-key" {
		t.Errorf("Expected API key to be set, got %q", model.apiKey)
	}
}

// TestWithSynthesizer tests the WithSynthesizer option
func TestWithSynthesizer(t *testing.T) {
	cleanup := SetupTestLogging(t)
	defer cleanup()

	mock := &speech.Mock{}
	model := New(WithSynthesizer(mock))
	if model.synth != mock {
		t.Error("Expected the injected synthesizer to be set")
	}

	if err := WithSynthesizer(nil)(New()); err == nil {
		t.Error("Expected an error for a nil synthesizer")
	}
}

// TestWithPlayerCommand tests the WithPlayerCommand option
func TestWithPlayerCommand(t *testing.T) {
	cleanup := SetupTestLogging(t)
	defer cleanup()

	model := New(WithPlayerCommand("ffplay -nodisp -"))
	if model.playerCmd != "ffplay -nodisp -" {
		t.Errorf("Expected player command set, got %q", model.playerCmd)
	}

	model = New(WithPlayerCommand(""))
	if model.playerCmd != "auto" {
		t.Errorf("Expected default player 'auto' kept, got %q", model.playerCmd)
	}
}

// TestWithAutoPlay tests the WithAutoPlay option
func TestWithAutoPlay(t *testing.T) {
	model := New(WithAutoPlay(true))
	if !model.autoPlay {
		t.Error("Expected auto-play to be enabled")
	}
}

// TestWithCache tests the WithCache option
func TestWithCache(t *testing.T) {
	cleanup := SetupTestLogging(t)
	defer cleanup()

	model := New(WithCache(true, "/tmp/clips.db"))
	if !model.cacheEnabled {
		t.Error("Expected the cache to be enabled")
	}
	if model.cachePath != "/tmp/clips.db" {
		t.Errorf("Expected cache path set, got %q", model.cachePath)
	}

	model = New(WithCache(false, "/tmp/clips.db"))
	if model.cacheEnabled {
		t.Error("Expected the cache to be disabled")
	}
	if model.cachePath != "" {
		t.Errorf("Expected no cache path for a disabled cache, got %q", model.cachePath)
	}
}

// TestWithExportDir tests the WithExportDir option
func TestWithExportDir(t *testing.T) {
	model := New(WithExportDir("/tmp/exports"))
	if model.exportDir != "/tmp/exports" {
		t.Errorf("Expected export dir set, got %q", model.exportDir)
	}
}

// TestWithLogMessages tests the WithLogMessages option
func TestWithLogMessages(t *testing.T) {
	cleanup := SetupTestLogging(t)
	defer cleanup()

	model := New(WithLogMessages(true))
	if !model.showLogMessages {
		t.Error("Expected log messages display enabled")
	}
	if model.maxLogMessages != 10 {
		t.Errorf("Expected default of 10 log messages, got %d", model.maxLogMessages)
	}

	model = New(WithLogMessages(true, 25))
	if model.maxLogMessages != 25 {
		t.Errorf("Expected 25 log messages, got %d", model.maxLogMessages)
	}
}

// TestWithConfig tests applying a configuration file
func TestWithConfig(t *testing.T) {
	cleanup := SetupTestLogging(t)
	defer cleanup()

	cfg := config.Default()
	cfg.Speech.Backend = "grpc"
	cfg.Speech.Model = "models/gemini-1.5-flash"
	cfg.Speech.Voice = "Fenrir"
	cfg.Playback.Player = "paplay --raw"
	cfg.Playback.AutoPlay = true
	cfg.Cache.Path = "/tmp/cache.db"
	cfg.Export.Dir = "/tmp/exports"

	model := New(WithConfig(cfg))
	if model.backend != "grpc" {
		t.Errorf("Expected backend 'grpc', got %q", model.backend)
	}
	if model.modelName != "models/gemini-1.5-flash" {
		t.Errorf("Expected config model, got %q", model.modelName)
	}
	if model.voiceName != "Fenrir" {
		t.Errorf("Expected config voice, got %q", model.voiceName)
	}
	if model.playerCmd != "paplay --raw" {
		t.Errorf("Expected config player, got %q", model.playerCmd)
	}
	if !model.autoPlay {
		t.Error("Expected auto-play from config")
	}
	if model.cachePath != "/tmp/cache.db" {
		t.Errorf("Expected config cache path, got %q", model.cachePath)
	}
	if model.exportDir != "/tmp/exports" {
		t.Errorf("Expected config export dir, got %q", model.exportDir)
	}

	// Options applied after the config override it.
	model = New(WithConfig(cfg), WithVoice("Puck"))
	if model.voiceName != "Puck" {
		t.Errorf("Expected later option to win, got %q", model.voiceName)
	}

	cfg.Speech.Backend = "telegraph"
	if err := WithConfig(cfg)(New()); err == nil {
		t.Error("Expected an error for an invalid backend in the config")
	}
}
