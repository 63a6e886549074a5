// Package helpers carries small debugging aids shared by the audio path.
package helpers

import (
	"log"
	"os"
	"sync/atomic"
)

// --- Audio Tracing ---
var audioTraceEnabled int32 // Use atomic for safe check across goroutines

func init() {
	if os.Getenv("QUIZVOICE_AUDIO_TRACE") == "1" {
		atomic.StoreInt32(&audioTraceEnabled, 1)
		log.Println("--- Detailed audio pipeline tracing enabled (QUIZVOICE_AUDIO_TRACE=1) ---")
	}
}

// IsAudioTraceEnabled checks if detailed audio tracing is enabled via environment variable.
func IsAudioTraceEnabled() bool {
	return atomic.LoadInt32(&audioTraceEnabled) == 1
}

// Tracef logs a formatted message when audio tracing is enabled.
func Tracef(format string, args ...any) {
	if IsAudioTraceEnabled() {
		log.Printf("[audio] "+format, args...)
	}
}
