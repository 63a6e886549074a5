// Package audioplayer plays raw PCM clips through external player processes
// such as ffplay, aplay, paplay or afplay. Players block until the clip ends
// and honor context cancellation, which is what lets the sequencer interrupt
// a clip mid-play.
package audioplayer

import (
	"context"
	"time"

	"github.com/quizvoice/quizvoice/internal/helpers"
)

// Player is the interface for audio playback implementations.
type Player interface {
	// Play takes raw PCM audio data and plays it, blocking until playback
	// is complete or an error occurs. The context can be used for
	// cancellation.
	Play(ctx context.Context, audioData []byte) error

	// Cleanup performs any necessary resource cleanup for the player.
	Cleanup() error

	// RequiresWAVHeader indicates if the player needs a WAV header prepended to raw PCM data.
	RequiresWAVHeader() bool

	// EstimatedLatency returns an estimate of the player's startup latency.
	EstimatedLatency() time.Duration
}

// audioTraceEnabled reports whether verbose per-playback logging is on.
func audioTraceEnabled() bool {
	return helpers.IsAudioTraceEnabled()
}
