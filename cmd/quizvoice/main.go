package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	_ "net/http/pprof" // Register pprof handlers
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
	"sort"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"golang.org/x/term"

	"github.com/quizvoice/quizvoice"
	"github.com/quizvoice/quizvoice/config"
	"github.com/quizvoice/quizvoice/speech"
)

// setupLogging directs log output to a file for easier debugging.
func setupLogging(path string) *os.File {
	// Use tea's helper to create the log file
	f, err := tea.LogToFile(path, "quizvoice")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log file '%s': %v\n", path, err)
		return nil
	}
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile) // Add timestamp and file info to logs
	log.SetOutput(f)                                     // Redirect standard logger
	return f
}

// loadConfig reads the config file, falling back to built-in defaults when
// no file exists. An explicit --config path must load cleanly.
func loadConfig(path string) config.Config {
	if path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config file %s: %v\n", path, err)
			os.Exit(1)
		}
		return cfg
	}
	cfg, err := config.LoadDefault()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: ignoring config file: %v\n", err)
		return config.Default()
	}
	return cfg
}

func main() {
	// Load .env file if it exists; its values feed the API key lookup.
	envErr := godotenv.Load()

	// --- Command Line Flags ---
	quizFlag := flag.String("quiz", "", "Quiz batch file (JSON) to load.")
	configFlag := flag.String("config", "", "Config file path. Defaults to the per-user location.")
	modelFlag := flag.String("model", "", "Gemini model ID to use for synthesis.")
	voiceFlag := flag.String("voice", "", "Voice for synthesized audio (e.g., Puck, Kore).")
	backendFlag := flag.String("backend", "", "Speech transport: auto, live, grpc or mock.")
	mockFlag := flag.Bool("mock", false, "Use the offline mock synthesizer (shorthand for --backend=mock).")
	playerCmdFlag := flag.String("player", "", "Override command for audio playback (e.g., 'ffplay ...'). Auto-detected if empty.")
	apiKeyFlag := flag.String("api-key", "", "Gemini API Key (overrides GEMINI_API_KEY env var).")
	autoPlayFlag := flag.Bool("autoplay", false, "Start auto-play once every item has audio.")

	// Cache and export flags
	noCacheFlag := flag.Bool("no-cache", false, "Disable the persistent clip cache.")
	cachePathFlag := flag.String("cache-path", "", "Clip cache database path. Defaults to the per-user location.")
	exportDirFlag := flag.String("export-dir", "", "Directory for WAV files exported from the UI.")
	exportFlag := flag.String("export", "", "Export the whole batch to `file` and exit without the UI.")

	listModelsFlag := flag.Bool("list-models", false, "List available models and exit.")
	filterModelsFlag := flag.String("filter-models", "", "Filter models list (used with --list-models)")
	listVoicesFlag := flag.Bool("list-voices", false, "List available voices and exit.")
	logFileFlag := flag.String("log", "", "Debug log file path. Defaults to quizvoice-debug.log.")

	// Profiling flags (all with pprof- prefix)
	cpuprofile := flag.String("pprof-cpu", "", "Write cpu profile to `file`")
	memprofile := flag.String("pprof-mem", "", "Write memory profile to `file`")
	traceFile := flag.String("pprof-trace", "", "Write execution trace to `file`")
	pprofServer := flag.String("pprof-server", "", "Enable pprof HTTP server on given address (e.g., 'localhost:6060')")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Quiz audio playback with Gemini speech synthesis.\n\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  GEMINI_API_KEY: API Key (used if --api-key is not set).\n")
		fmt.Fprintf(os.Stderr, "  GOOGLE_API_KEY: API Key fallback.\n")
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  Interactive session: %s --quiz=quiz.json\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  Offline dry run:     %s --quiz=quiz.json --mock\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  Headless export:     %s --quiz=quiz.json --export=batch.wav\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nProfiling Examples:\n")
		fmt.Fprintf(os.Stderr, "  CPU profile:    %s --pprof-cpu=cpu.prof\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  Memory profile: %s --pprof-mem=mem.prof\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  Execution trace: %s --pprof-trace=trace.out\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  HTTP server:    %s --pprof-server=localhost:6060\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "                  # Then visit http://localhost:6060/debug/pprof/\n")
	}
	flag.Parse()

	// --- Configuration file ---
	cfg := loadConfig(*configFlag)

	// --- Set up logging ---
	logPath := *logFileFlag
	if logPath == "" {
		logPath = cfg.LogFile
	}
	if logPath == "" {
		logPath = "quizvoice-debug.log"
	}
	logFile := setupLogging(logPath)
	if logFile != nil {
		defer logFile.Close()
		log.Println("--- Application Start ---")
		if envErr == nil {
			log.Println("Loaded environment variables from .env file")
		}
		log.Printf("CLI Flags: quiz=%q model=%q voice=%q backend=%q mock=%t player=%q export=%q api-key-set=%t",
			*quizFlag, *modelFlag, *voiceFlag, *backendFlag, *mockFlag, *playerCmdFlag, *exportFlag, *apiKeyFlag != "")
	} else {
		// Disable standard logger output if file logging failed, to avoid cluttering stderr
		log.SetOutput(io.Discard)
	}

	// Handle --list-voices flag
	if *listVoicesFlag {
		fmt.Println("Available voices:")
		for _, voice := range speech.Voices() {
			fmt.Println("  " + voice)
		}
		os.Exit(0)
	}

	// Handle --list-models flag
	if *listModelsFlag {
		fmt.Println("Fetching available models...")
		apiKey := speech.ResolveAPIKey(*apiKeyFlag)
		if apiKey == "" {
			fmt.Fprintln(os.Stderr, "Warning: No API key provided for listing models. Some models might not be visible.")
		}

		client := &speech.Client{APIKey: apiKey}
		models, err := client.ListModels(*filterModelsFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing models: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Found %d models", len(models))
		if *filterModelsFlag != "" {
			fmt.Printf(" matching filter: %q", *filterModelsFlag)
		}
		fmt.Println()
		fmt.Println("==========")

		sort.Strings(models)
		for _, model := range models {
			fmt.Println(model)
		}
		fmt.Println("==========")
		os.Exit(0)
	}

	// CPU profiling
	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			log.Fatalf("Could not create CPU profile: %v", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatalf("Could not start CPU profile: %v", err)
		}
		defer pprof.StopCPUProfile()
		log.Printf("CPU profiling enabled, writing to %s", *cpuprofile)
	}

	// Execution tracing
	if *traceFile != "" {
		f, err := os.Create(*traceFile)
		if err != nil {
			log.Fatalf("Could not create trace file: %v", err)
		}
		defer f.Close()
		if err := trace.Start(f); err != nil {
			log.Fatalf("Could not start trace: %v", err)
		}
		defer trace.Stop()
		log.Printf("Execution tracing enabled, writing to %s", *traceFile)
	}

	// HTTP server for pprof
	if *pprofServer != "" {
		go func() {
			log.Printf("Starting pprof HTTP server on %s", *pprofServer)
			log.Printf("Visit http://%s/debug/pprof/ to access profiles", *pprofServer)

			if err := http.ListenAndServe(*pprofServer, nil); err != nil {
				log.Printf("Error starting pprof HTTP server: %v", err)
				fmt.Fprintf(os.Stderr, "Error starting pprof HTTP server: %v\n", err)
			}
		}()
	}

	// --- Configuration ---
	// Determine API Key: Flag > Env Var > ADC
	apiKey := speech.ResolveAPIKey(*apiKeyFlag)
	if apiKey == "" {
		log.Println("API Key not provided via flag or env, attempting ADC.")
	}

	backend := *backendFlag
	if *mockFlag {
		backend = "mock"
	}

	// Construct component options: config file first, flags override.
	opts := []quizvoice.Option{
		quizvoice.WithConfig(cfg),
		quizvoice.WithAPIKey(apiKey),
	}
	if *quizFlag != "" {
		opts = append(opts, quizvoice.WithQuizFile(*quizFlag))
	}
	if *modelFlag != "" {
		opts = append(opts, quizvoice.WithModel(*modelFlag))
	}
	if *voiceFlag != "" {
		opts = append(opts, quizvoice.WithVoice(*voiceFlag))
	}
	if backend != "" {
		opts = append(opts, quizvoice.WithBackend(backend))
	}
	if *playerCmdFlag != "" {
		opts = append(opts, quizvoice.WithPlayerCommand(*playerCmdFlag))
	}
	if *autoPlayFlag {
		opts = append(opts, quizvoice.WithAutoPlay(true))
	}
	if *noCacheFlag {
		opts = append(opts, quizvoice.WithCache(false, ""))
	} else if *cachePathFlag != "" {
		opts = append(opts, quizvoice.WithCache(true, *cachePathFlag))
	}
	if *exportDirFlag != "" {
		opts = append(opts, quizvoice.WithExportDir(*exportDirFlag))
	}

	// --- Initialize Component ---
	component := quizvoice.New(opts...)

	// Handle headless export mode
	if *exportFlag != "" {
		if _, err := component.InitModel(); err != nil {
			log.Printf("Failed to initialize model: %v", err)
			fmt.Fprintf(os.Stderr, "Error initializing model: %v\n", err)
			os.Exit(1)
		}
		err := component.ExportBatchTo(context.Background(), *exportFlag)
		component.Cleanup()
		if err != nil {
			log.Printf("Export failed: %v", err)
			fmt.Fprintf(os.Stderr, "Error exporting batch: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Exported batch to %s\n", *exportFlag)
	} else {
		// The TUI needs a terminal; headless export does not.
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: stdout is not a terminal. Use --export to run without the UI.")
			os.Exit(1)
		}

		model, err := component.InitModel()
		if err != nil {
			log.Printf("Failed to initialize model: %v", err)
			fmt.Fprintf(os.Stderr, "Error initializing model: %v\n", err)
			os.Exit(1)
		}
		defer component.Cleanup()

		// --- Run Bubble Tea Program ---
		p := tea.NewProgram(
			model,
			tea.WithAltScreen(),
			tea.WithMouseCellMotion(), // Better mouse support
		)

		log.Println("Starting Bubble Tea program...")
		if _, err := p.Run(); err != nil {
			log.Printf("Error running program: %v", err)
			fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
			os.Exit(1)
		}
	}

	// Write memory profile at exit if requested
	if *memprofile != "" {
		f, err := os.Create(*memprofile)
		if err != nil {
			log.Printf("Could not create memory profile: %v", err)
			fmt.Fprintf(os.Stderr, "Could not create memory profile: %v\n", err)
		} else {
			defer f.Close()
			runtime.GC() // Get up-to-date statistics
			if err := pprof.WriteHeapProfile(f); err != nil {
				log.Printf("Could not write memory profile: %v", err)
				fmt.Fprintf(os.Stderr, "Could not write memory profile: %v\n", err)
			} else {
				log.Printf("Memory profile written to %s", *memprofile)
				fmt.Fprintf(os.Stderr, "Memory profile written to %s\n", *memprofile)
			}
		}
	}

	log.Println("--- Application End ---")
}
