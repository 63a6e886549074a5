// Command testscript runs the CLI script files under testdata/script
// outside of go test. It builds the quizvoice binary, puts it on PATH and
// executes each script with the rsc.io/script engine.
//
// Usage:
//
//	testscript            # run every script
//	testscript FILE.txt   # run a single script by name
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"rsc.io/script"
	"rsc.io/script/scripttest"
)

func main() {
	verbose := flag.Bool("v", false, "print the script log even on success")
	flag.Parse()

	testDir := filepath.Join("testdata", "script")
	pattern := "*.txt"
	if flag.NArg() > 0 {
		// If a specific script is provided, run only that one
		pattern = flag.Arg(0)
		if _, err := os.Stat(filepath.Join(testDir, pattern)); os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Script not found: %s\n", filepath.Join(testDir, pattern))
			os.Exit(1)
		}
	}

	scriptFiles, err := filepath.Glob(filepath.Join(testDir, pattern))
	if err != nil || len(scriptFiles) == 0 {
		fmt.Fprintf(os.Stderr, "No script files found in %s\n", testDir)
		os.Exit(1)
	}

	fmt.Printf("Running script tests from: %s\n", testDir)

	binDir, err := os.MkdirTemp("", "quizvoice-testscript")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create temp dir: %v\n", err)
		os.Exit(1)
	}
	defer os.RemoveAll(binDir)

	binaryPath := filepath.Join(binDir, "quizvoice")
	buildCmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/quizvoice")
	buildCmd.Stdout = os.Stdout
	buildCmd.Stderr = os.Stderr
	if err := buildCmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build quizvoice binary: %v\n", err)
		os.Exit(1)
	}

	quizFile, err := filepath.Abs(filepath.Join("testdata", "sample_quiz.json"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to resolve sample quiz path: %v\n", err)
		os.Exit(1)
	}

	engine := &script.Engine{
		Cmds:  scripttest.DefaultCmds(),
		Conds: scripttest.DefaultConds(),
		Quiet: !*verbose,
	}

	failed := 0
	for _, file := range scriptFiles {
		if err := runScript(engine, binDir, quizFile, file, *verbose); err != nil {
			fmt.Fprintf(os.Stderr, "FAIL %s: %v\n", filepath.Base(file), err)
			failed++
			continue
		}
		fmt.Printf("PASS %s\n", filepath.Base(file))
	}
	if failed > 0 {
		fmt.Fprintf(os.Stderr, "%d of %d scripts failed\n", failed, len(scriptFiles))
		os.Exit(1)
	}
}

// runScript executes one script file in a throwaway work directory.
func runScript(engine *script.Engine, binDir, quizFile, file string, verbose bool) error {
	workdir, err := os.MkdirTemp("", "quizvoice-script")
	if err != nil {
		return err
	}
	defer os.RemoveAll(workdir)

	env := []string{
		"PATH=" + binDir + string(os.PathListSeparator) + os.Getenv("PATH"),
		"HOME=" + workdir,
		"QUIZFILE=" + quizFile,
	}

	state, err := script.NewState(context.Background(), workdir, env)
	if err != nil {
		return err
	}

	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	var log strings.Builder
	execErr := engine.Execute(state, file, bufio.NewReader(f), &log)
	if err := state.CloseAndWait(&log); err != nil && execErr == nil {
		execErr = err
	}
	if verbose || execErr != nil {
		fmt.Fprint(os.Stderr, log.String())
	}
	return execErr
}
