package quizvoice

import (
	"fmt"

	"github.com/quizvoice/quizvoice/config"
	"github.com/quizvoice/quizvoice/quiz"
	"github.com/quizvoice/quizvoice/speech"
)

// WithQuizFile sets the quiz batch file to load on startup.
func WithQuizFile(path string) Option {
	return func(m *Model) error {
		if path == "" {
			return fmt.Errorf("quiz file path is empty")
		}
		m.quizPath = path
		return nil
	}
}

// WithQuizBatch injects an already loaded batch, bypassing the file loader.
func WithQuizBatch(batch *quiz.Batch) Option {
	return func(m *Model) error {
		if batch == nil || len(batch.Items) == 0 {
			return fmt.Errorf("quiz batch is empty")
		}
		m.batch = batch
		return nil
	}
}

// WithAPIKey sets the Google API Key for the speech backend.
func WithAPIKey(key string) Option {
	return func(m *Model) error {
		m.apiKey = key
		return nil
	}
}

// WithModel sets the Gemini model name to use for synthesis.
func WithModel(name string) Option {
	return func(m *Model) error {
		if name != "" {
			m.modelName = name
		}
		return nil
	}
}

// WithVoice sets the prebuilt voice used for synthesis.
func WithVoice(name string) Option {
	return func(m *Model) error {
		if name != "" {
			m.voiceName = name
		}
		return nil
	}
}

// WithBackend selects the speech transport: auto, live, grpc or mock.
func WithBackend(name string) Option {
	return func(m *Model) error {
		switch name {
		case "auto", "live", "grpc", "mock":
			m.backend = name
			return nil
		default:
			return fmt.Errorf("unknown speech backend %q (want auto, live, grpc or mock)", name)
		}
	}
}

// WithSynthesizer injects a speech backend directly, bypassing backend
// selection. Used by tests and embedders with their own client.
func WithSynthesizer(s speech.Synthesizer) Option {
	return func(m *Model) error {
		if s == nil {
			return fmt.Errorf("synthesizer is nil")
		}
		m.synth = s
		return nil
	}
}

// WithPlayerCommand sets the external command used for audio playback.
// Auto-detected if empty or "auto".
func WithPlayerCommand(cmd string) Option {
	return func(m *Model) error {
		if cmd != "" {
			m.playerCmd = cmd
		}
		return nil
	}
}

// WithAutoPlay starts hands-free playback of the whole batch as soon as
// every item's audio is ready.
func WithAutoPlay(enabled bool) Option {
	return func(m *Model) error {
		m.autoPlay = enabled
		return nil
	}
}

// WithCache enables the persistent clip cache and optionally overrides its
// database path. An empty path means the per-user default.
func WithCache(enabled bool, path string) Option {
	return func(m *Model) error {
		m.cacheEnabled = enabled
		if enabled && path != "" {
			m.cachePath = path
		}
		return nil
	}
}

// WithExportDir sets the directory exported WAV files are written to.
func WithExportDir(dir string) Option {
	return func(m *Model) error {
		if dir != "" {
			m.exportDir = dir
		}
		return nil
	}
}

// WithLogMessages enables or disables the log messages display.
func WithLogMessages(show bool, maxEntries ...int) Option {
	return func(m *Model) error {
		m.showLogMessages = show

		// Set default maximum number of log messages if not specified
		if len(maxEntries) > 0 && maxEntries[0] > 0 {
			m.maxLogMessages = maxEntries[0]
		} else if m.maxLogMessages == 0 {
			m.maxLogMessages = 10 // Default to 10 entries
		}

		return nil
	}
}

// WithConfig applies a loaded configuration file. Flags applied after this
// option still win; empty config fields leave the current values alone.
func WithConfig(cfg config.Config) Option {
	return func(m *Model) error {
		if cfg.Speech.Backend != "" {
			if err := WithBackend(cfg.Speech.Backend)(m); err != nil {
				return err
			}
		}
		if cfg.Speech.Model != "" {
			m.modelName = cfg.Speech.Model
		}
		if cfg.Speech.Voice != "" {
			m.voiceName = cfg.Speech.Voice
		}
		if cfg.Playback.Player != "" {
			m.playerCmd = cfg.Playback.Player
		}
		m.autoPlay = cfg.Playback.AutoPlay
		m.cacheEnabled = cfg.Cache.Enabled
		if cfg.Cache.Path != "" {
			m.cachePath = cfg.Cache.Path
		}
		if cfg.Export.Dir != "" {
			m.exportDir = cfg.Export.Dir
		}
		return nil
	}
}
