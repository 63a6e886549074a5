// Command example drives the quizvoice library without the TUI: it loads a
// quiz batch, synthesizes every clip with the configured backend and writes
// the merged WAV file. The default mock backend needs no API key.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/quizvoice/quizvoice"
)

func main() {
	quizFile := flag.String("quiz", "testdata/sample_quiz.json", "Quiz batch file to load")
	out := flag.String("out", "quiz-audio.wav", "Output WAV file")
	backend := flag.String("backend", "mock", "Speech backend: auto, live, grpc or mock")
	voice := flag.String("voice", "", "Voice for synthesized audio")
	help := flag.Bool("help", false, "Show help information")
	flag.Parse()

	if *help {
		fmt.Println("Export quiz audio without the interactive UI")
		fmt.Println("Usage: example [options]")
		flag.PrintDefaults()
		os.Exit(0)
	}

	opts := []quizvoice.Option{
		quizvoice.WithQuizFile(*quizFile),
		quizvoice.WithBackend(*backend),
		quizvoice.WithCache(false, ""),
	}
	if *voice != "" {
		opts = append(opts, quizvoice.WithVoice(*voice))
	}

	component := quizvoice.New(opts...)
	if _, err := component.InitModel(); err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer component.Cleanup()

	if err := component.ExportBatchTo(context.Background(), *out); err != nil {
		log.Fatalf("Export failed: %v", err)
	}

	info, err := os.Stat(*out)
	if err != nil {
		log.Fatalf("Failed to stat output: %v", err)
	}
	fmt.Printf("Wrote %s (%d bytes)\n", *out, info.Size())
}
