package speech

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"
)

// Mock is a Synthesizer that turns text into short sine-wave beeps whose
// length tracks the text length. It keeps the whole app runnable offline,
// for demos and for script tests.
type Mock struct {
	// Latency delays each call, simulating generation time. Zero means
	// synchronous.
	Latency time.Duration

	// FailOn lists substrings; text containing any of them fails. Useful
	// for exercising failure paths in tests.
	FailOn []string

	mu    sync.Mutex
	calls []string
}

// Synthesize generates 24kHz mono PCM16LE containing a 440Hz tone, roughly
// 40ms per character with a 200ms floor.
func (m *Mock) Synthesize(ctx context.Context, text string) (*Audio, error) {
	m.mu.Lock()
	m.calls = append(m.calls, text)
	m.mu.Unlock()

	if m.Latency > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(m.Latency):
		}
	} else if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, substr := range m.FailOn {
		if substr != "" && strings.Contains(text, substr) {
			return nil, fmt.Errorf("mock synthesis failed for %q", substr)
		}
	}

	const freq = 440.0
	samples := 200*DefaultSampleRate/1000 + len([]rune(text))*40*DefaultSampleRate/1000
	buf := make([]byte, samples*2)
	for i := 0; i < samples; i++ {
		val := int16(3000 * math.Sin(2*math.Pi*freq*float64(i)/DefaultSampleRate))
		buf[2*i] = byte(val)
		buf[2*i+1] = byte(val >> 8)
	}

	mime := fmt.Sprintf("audio/pcm;rate=%d", DefaultSampleRate)
	return &Audio{
		PCM:      buf,
		Format:   formatFromMime(mime),
		MimeType: mime,
	}, nil
}

// Close implements Synthesizer. It is a no-op.
func (m *Mock) Close() error { return nil }

// Calls returns the texts synthesized so far, in order.
func (m *Mock) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}
