package helpers

import (
	"bytes"
	"log"
	"strings"
	"sync/atomic"
	"testing"
)

func TestIsAudioTraceEnabled(t *testing.T) {
	defer atomic.StoreInt32(&audioTraceEnabled, 0)

	atomic.StoreInt32(&audioTraceEnabled, 0)
	if IsAudioTraceEnabled() {
		t.Error("IsAudioTraceEnabled() should return false when flag is 0")
	}

	atomic.StoreInt32(&audioTraceEnabled, 1)
	if !IsAudioTraceEnabled() {
		t.Error("IsAudioTraceEnabled() should return true when flag is 1")
	}
}

func TestTracef(t *testing.T) {
	defer atomic.StoreInt32(&audioTraceEnabled, 0)

	var buf bytes.Buffer
	oldOutput := log.Writer()
	oldFlags := log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	defer func() {
		log.SetOutput(oldOutput)
		log.SetFlags(oldFlags)
	}()

	atomic.StoreInt32(&audioTraceEnabled, 0)
	Tracef("dropped %d bytes", 42)
	if buf.Len() != 0 {
		t.Errorf("Expected no output while tracing is disabled, got %q", buf.String())
	}

	atomic.StoreInt32(&audioTraceEnabled, 1)
	Tracef("wrote %d bytes", 42)
	if !strings.Contains(buf.String(), "[audio] wrote 42 bytes") {
		t.Errorf("Expected a trace line, got %q", buf.String())
	}
}
