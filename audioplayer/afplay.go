package audioplayer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"time"

	"github.com/quizvoice/quizvoice/wav"
)

// AfplayPlayer plays audio using macOS's `afplay` command by writing to a temporary WAV file.
type AfplayPlayer struct {
	format wav.Format
}

// NewAfplayPlayer creates a new AfplayPlayer instance.
func NewAfplayPlayer(format wav.Format) (*AfplayPlayer, error) {
	// Check if afplay command exists
	if _, err := exec.LookPath("afplay"); err != nil {
		return nil, fmt.Errorf("afplay command not found in PATH: %w", err)
	}
	log.Println("[AfplayPlayer] Initialized")
	return &AfplayPlayer{format: format}, nil
}

// Play implements the Player interface.
func (p *AfplayPlayer) Play(ctx context.Context, audioData []byte) error {
	if len(audioData) == 0 {
		return errors.New("cannot play empty audio data")
	}

	startTime := time.Now()
	chunkSize := len(audioData)

	// afplay reads files, not stdin, so each clip becomes a short-lived WAV.
	fileStartTime := time.Now()
	tmpFile, err := os.CreateTemp("", "quizvoice-afplay-*.wav")
	if err != nil {
		return fmt.Errorf("afplay failed to create temp file: %w", err)
	}
	tempFilePath := tmpFile.Name()
	defer func() {
		if removeErr := os.Remove(tempFilePath); removeErr != nil {
			log.Printf("[AfplayPlayer WARNING] Failed to remove temp file %s: %v", tempFilePath, removeErr)
		}
	}()

	_, errWrite := tmpFile.Write(wav.Encode(p.format, audioData))
	errClose := tmpFile.Close() // Close file before playing
	if err = errors.Join(errWrite, errClose); err != nil {
		log.Printf("[AfplayPlayer ERROR] Failed writing temp file %s: %v", tempFilePath, err)
		return fmt.Errorf("afplay failed writing temp file %s: %w", tempFilePath, err)
	}
	fileWriteDuration := time.Since(fileStartTime)

	cmd := exec.CommandContext(ctx, "afplay", "-q", "1", tempFilePath)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	playStartTime := time.Now()

	if audioTraceEnabled() {
		log.Printf("[AfplayPlayer] Executing: afplay -q 1 %s (Size: %d bytes, FileWrite: %v)", tempFilePath, chunkSize, fileWriteDuration)
	}

	// Run the command and wait for completion or context cancellation
	err = cmd.Run()
	playDuration := time.Since(playStartTime)
	totalDuration := time.Since(startTime)

	if err != nil {
		if ctx.Err() == context.Canceled {
			log.Printf("[AfplayPlayer] Playback cancelled via context for %s after %v (PlayDuration: %v)", tempFilePath, totalDuration, playDuration)
			return ctx.Err()
		}
		errMsg := stderr.String()
		log.Printf("[AfplayPlayer ERROR] Playback failed for %s: %v (stderr: %s). PlayDuration: %v, TotalDuration: %v",
			tempFilePath, err, errMsg, playDuration, totalDuration)
		return fmt.Errorf("afplay execution failed: %w (stderr: %s)", err, errMsg)
	}

	if audioTraceEnabled() {
		log.Printf("[AfplayPlayer] Playback completed OK for %s. Size=%d, PlayDuration=%v, FileWrite=%v, Total=%v",
			tempFilePath, chunkSize, playDuration, fileWriteDuration, totalDuration)
	}

	return nil
}

// Cleanup implements the Player interface. No-op needed as temp files are handled by Play.
func (p *AfplayPlayer) Cleanup() error {
	return nil
}

// RequiresWAVHeader indicates that afplay needs a WAV file (header included).
func (p *AfplayPlayer) RequiresWAVHeader() bool {
	return true
}

// EstimatedLatency provides a rough estimate. File I/O adds latency.
func (p *AfplayPlayer) EstimatedLatency() time.Duration {
	return 100 * time.Millisecond
}
