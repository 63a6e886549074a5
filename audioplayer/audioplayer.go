package audioplayer

import (
	"errors"
	"fmt"
	"log"
	"os/exec"
	"runtime"

	"github.com/quizvoice/quizvoice/wav"
)

// pcmFormatName is the ffmpeg/pulseaudio name for signed 16-bit little-endian PCM.
const pcmFormatName = "s16le"

// New builds a Player from a command string. An empty command or "auto"
// detects one. The literal "afplay" selects the temp-file player; anything
// else is run as a stdin pipeline.
func New(command string, format wav.Format) (Player, error) {
	if command == "" || command == "auto" {
		command = DetectCommand(format)
	}
	if command == "" {
		return nil, errors.New("no audio player found; install ffplay, aplay or paplay, or set an explicit player command")
	}
	if command == "afplay" {
		return NewAfplayPlayer(format)
	}
	return NewStdinPlayer(command, format)
}

// DetectCommand attempts to find a suitable audio player command for the
// given PCM format. It returns an empty string when none is available.
func DetectCommand(format wav.Format) string {
	var cmd string
	var playerPath string
	var err error

	// Try ffplay (FFmpeg) first - handles stdin well
	if playerPath, err = exec.LookPath("ffplay"); err == nil {
		cmd = fmt.Sprintf("%s -autoexit -nodisp -loglevel error -f %s -ar %d -ac %d -i -",
			playerPath, pcmFormatName, format.SampleRate, format.Channels)
		log.Printf("Auto-detected audio player: %s (using ffplay)", cmd)
		return cmd
	}

	// Try Linux-specific players
	if runtime.GOOS == "linux" {
		if playerPath, err = exec.LookPath("aplay"); err == nil {
			// aplay needs specific format flags for raw PCM from stdin
			cmd = fmt.Sprintf("%s -q -c %d -r %d -f %s -", playerPath, format.Channels, format.SampleRate, "S16_LE")
			log.Printf("Auto-detected audio player: %s (using aplay)", cmd)
			return cmd
		}
		if playerPath, err = exec.LookPath("paplay"); err == nil {
			// PulseAudio player, also needs format flags for raw PCM
			cmd = fmt.Sprintf("%s --raw --channels=%d --rate=%d --format=%s", playerPath, format.Channels, format.SampleRate, pcmFormatName)
			log.Printf("Auto-detected audio player: %s (using paplay)", cmd)
			return cmd
		}
	}

	// Try macOS player (afplay) - requires temp files
	if runtime.GOOS == "darwin" {
		if _, err = exec.LookPath("afplay"); err == nil {
			log.Println("Detected 'afplay'. Will use temp files for playback.")
			return "afplay"
		}
		log.Println("Info: 'ffplay' not found. For best audio on macOS, install FFmpeg (`brew install ffmpeg`).")
	}

	// Try ffmpeg as a player (less common, might depend on output device setup)
	if playerPath, err = exec.LookPath("ffmpeg"); err == nil {
		audioOutput := "alsa" // Default for Linux
		if runtime.GOOS == "darwin" {
			audioOutput = "coreaudio"
		} else if runtime.GOOS == "windows" {
			audioOutput = "dsound"
		}
		cmd = fmt.Sprintf("%s -f %s -ar %d -ac %d -i - -f %s -", playerPath, pcmFormatName, format.SampleRate, format.Channels, audioOutput)
		log.Printf("Auto-detected audio player: %s (using ffmpeg)", cmd)
		return cmd
	}

	log.Println("Warning: Could not auto-detect a suitable audio player. Please install ffplay, aplay or paplay, or set an explicit player command.")
	return ""
}
