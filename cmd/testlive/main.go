// Command testlive exercises the speech backends against the real API: it
// synthesizes one phrase and writes the result to a WAV file. Useful for
// checking credentials, model names and voice output without the TUI.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/quizvoice/quizvoice/speech"
	"github.com/quizvoice/quizvoice/wav"
)

func main() {
	// Parse command-line flags
	modelFlag := flag.String("model", speech.DefaultModel, "Model to test")
	voiceFlag := flag.String("voice", speech.DefaultVoice, "Voice to use")
	textFlag := flag.String("text", "Hello! This is a quizvoice synthesis test.", "Text to synthesize")
	backendFlag := flag.String("backend", "auto", "Backend to test: auto, live or grpc")
	outFlag := flag.String("out", "testlive.wav", "Output WAV file")
	verboseFlag := flag.Bool("v", false, "Verbose output")
	timeoutFlag := flag.Duration("timeout", 30*time.Second, "Timeout for the request")

	flag.Parse()

	// Enable detailed logging if verbose mode is enabled
	if *verboseFlag {
		log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	}

	// Get API key
	apiKey := speech.ResolveAPIKey("")
	if apiKey == "" {
		log.Fatal("GEMINI_API_KEY environment variable not set")
	}

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), *timeoutFlag)
	defer cancel()

	// Resolve the auto backend the same way the TUI does
	backend := *backendFlag
	if backend == "auto" {
		if speech.IsLiveModel(*modelFlag) {
			backend = "live"
		} else {
			backend = "grpc"
		}
	}
	log.Printf("Testing model: %s (Backend: %s, Voice: %s)", *modelFlag, backend, *voiceFlag)

	var synth speech.Synthesizer
	switch backend {
	case "live":
		client, err := speech.NewLiveClient(ctx, apiKey, *modelFlag, *voiceFlag)
		if err != nil {
			log.Fatalf("Failed to create live client: %v", err)
		}
		synth = client
	case "grpc":
		client := &speech.Client{APIKey: apiKey, Model: *modelFlag}
		if err := client.Init(ctx); err != nil {
			log.Fatalf("Failed to initialize speech client: %v", err)
		}
		synth = client
	default:
		log.Fatalf("Unknown backend %q", backend)
	}
	defer synth.Close()

	// Synthesize the phrase
	log.Printf("Synthesizing: %s", *textFlag)
	start := time.Now()
	audio, err := synth.Synthesize(ctx, *textFlag)
	if err != nil {
		log.Fatalf("Synthesis failed: %v", err)
	}
	elapsed := time.Since(start)

	// Write the WAV file
	data := wav.Encode(audio.Format, audio.PCM)
	if err := os.WriteFile(*outFlag, data, 0o644); err != nil {
		log.Fatalf("Failed to write %s: %v", *outFlag, err)
	}

	clipLen := wav.Duration(audio.Format, len(audio.PCM))
	fmt.Printf("\nWrote %s: %d bytes, %.1fs of audio (%d Hz, %d channel(s), %d-bit)\n",
		*outFlag, len(data), clipLen.Seconds(), audio.Format.SampleRate, audio.Format.Channels, audio.Format.BitsPerSample)
	fmt.Printf("Synthesis took %v\n", elapsed.Round(time.Millisecond))
}
