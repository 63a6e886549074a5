// Package speech turns quiz text into spoken audio through the Gemini
// generative language API.
//
// Two transports are available: a gRPC client over the GenerativeService and
// a WebSocket client for the Live API. The Live transport is the default
// because its session setup carries the speech configuration (response
// modality and prebuilt voice). A deterministic mock rounds out the set for
// tests and offline runs. All of them satisfy Synthesizer, which is the only
// surface the generation pipeline sees.
package speech

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/quizvoice/quizvoice/wav"
)

const (
	// DefaultModel is the default speech-capable model.
	DefaultModel = "models/gemini-2.0-flash-live-001"
	// DefaultVoice is the default prebuilt voice.
	DefaultVoice = "Puck"
	// DefaultSampleRate is assumed when the service does not declare one.
	DefaultSampleRate = 24000
)

// ErrNoAudio indicates the service answered without any audio payload.
var ErrNoAudio = errors.New("speech: response contained no audio")

// Audio is one synthesized clip: raw single-channel PCM plus the format the
// service declared for it.
type Audio struct {
	PCM      []byte
	Format   wav.Format
	MimeType string
}

// Synthesizer produces one audio clip per text input. Synthesize blocks
// until the clip is complete or ctx is canceled; a nil Audio always comes
// with a non-nil error.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (*Audio, error)
	Close() error
}

// RateFromMime extracts the sample rate from an audio mime type such as
// "audio/L16;codec=pcm;rate=24000". Missing or unparsable rates fall back to
// DefaultSampleRate.
func RateFromMime(mime string) int {
	for _, param := range strings.Split(mime, ";") {
		param = strings.TrimSpace(param)
		if !strings.HasPrefix(param, "rate=") {
			continue
		}
		if rate, err := strconv.Atoi(strings.TrimPrefix(param, "rate=")); err == nil && rate > 0 {
			return rate
		}
	}
	return DefaultSampleRate
}

// formatFromMime builds the clip format for a service-declared mime type.
// The Live API emits 16-bit mono PCM; only the rate varies.
func formatFromMime(mime string) wav.Format {
	return wav.Format{
		SampleRate:    RateFromMime(mime),
		Channels:      1,
		BitsPerSample: 16,
	}
}

// normalizeModel ensures the "models/" prefix the v1alpha APIs require.
func normalizeModel(name string) string {
	if name == "" {
		return DefaultModel
	}
	if !strings.HasPrefix(name, "models/") {
		return "models/" + name
	}
	return name
}

// Voices returns the prebuilt voice names accepted by the Live API.
func Voices() []string {
	return []string{"Puck", "Charon", "Kore", "Fenrir", "Aoede"}
}
