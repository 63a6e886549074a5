package audioplayer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os/exec"
	"strings"
	"time"

	"github.com/quizvoice/quizvoice/wav"
)

// StdinPlayer plays audio by piping raw PCM data (optionally with a WAV header)
// to the standard input of an external command (e.g., ffplay, aplay).
type StdinPlayer struct {
	command string // The full command string (e.g., "ffplay -autoexit ... -i -")
	format  wav.Format
	cmdName string // Just the command name (e.g., "ffplay")
	cmdArgs []string
}

// NewStdinPlayer creates a new StdinPlayer instance.
// The command string should include a placeholder like '-' for stdin.
func NewStdinPlayer(command string, format wav.Format) (*StdinPlayer, error) {
	if command == "" {
		return nil, errors.New("audio player command cannot be empty")
	}
	parts := strings.Fields(command)
	if len(parts) == 0 {
		return nil, errors.New("invalid audio player command format")
	}

	// Basic check if command exists
	if _, err := exec.LookPath(parts[0]); err != nil {
		return nil, fmt.Errorf("audio player command '%s' not found in PATH: %w", parts[0], err)
	}

	log.Printf("[StdinPlayer] Initialized with command: %q", command)
	return &StdinPlayer{
		command: command,
		format:  format,
		cmdName: parts[0],
		cmdArgs: parts[1:],
	}, nil
}

// Play implements the Player interface by writing to the command's stdin.
func (p *StdinPlayer) Play(ctx context.Context, audioData []byte) error {
	if len(audioData) == 0 {
		return errors.New("cannot play empty audio data")
	}

	startTime := time.Now()
	chunkSize := len(audioData)
	needsWav := p.RequiresWAVHeader()

	var audioBuffer *bytes.Buffer
	if needsWav {
		audioBuffer = bytes.NewBuffer(wav.Encode(p.format, audioData))
	} else {
		audioBuffer = bytes.NewBuffer(audioData)
	}

	cmd := exec.CommandContext(ctx, p.cmdName, p.cmdArgs...)
	cmd.Stdin = audioBuffer
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if audioTraceEnabled() {
		log.Printf("[StdinPlayer] Executing: %q with %d bytes (Header: %t)", p.command, audioBuffer.Len(), needsWav)
	}

	// Run the command and wait for completion or context cancellation
	err := cmd.Run()
	duration := time.Since(startTime)

	if err != nil {
		// Check if the error is due to context cancellation
		if ctx.Err() == context.Canceled {
			log.Printf("[StdinPlayer] Playback cancelled via context for %q after %v", p.command, duration)
			return ctx.Err()
		}
		errMsg := stderr.String()
		log.Printf("[StdinPlayer] Error executing %q: %v. Duration: %v. Stderr: %s", p.command, err, duration, errMsg)
		return fmt.Errorf("audio player command failed: %w (stderr: %s)", err, errMsg)
	}

	if audioTraceEnabled() {
		log.Printf("[StdinPlayer] Playback completed OK for %q. Duration: %v, Size: %d bytes", p.command, duration, chunkSize)
	}

	return nil
}

// Cleanup implements the Player interface. No-op for StdinPlayer.
func (p *StdinPlayer) Cleanup() error {
	return nil
}

// RequiresWAVHeader checks if the player likely needs a WAV header.
// Currently heuristics based on common player names.
func (p *StdinPlayer) RequiresWAVHeader() bool {
	// aplay and paplay are invoked with raw-PCM format flags; a WAV header
	// would be played as an audible click. ffplay and friends handle a
	// headered stream fine.
	switch p.cmdName {
	case "aplay", "paplay":
		return false
	}
	return true
}

// EstimatedLatency provides a rough estimate. Stdin players might have some startup overhead.
func (p *StdinPlayer) EstimatedLatency() time.Duration {
	return 50 * time.Millisecond
}
