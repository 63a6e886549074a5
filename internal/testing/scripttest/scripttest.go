// Package scripttest runs quizvoice CLI scripts in tests. Each script is a
// txtar-style command file executed by the rsc.io/script engine against a
// freshly built quizvoice binary.
package scripttest

import (
	"bufio"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"rsc.io/script"
)

// findProjectRoot searches upwards from a given directory for a go.mod file.
func findProjectRoot(startDir string) (string, error) {
	dir := startDir
	for {
		goModPath := filepath.Join(dir, "go.mod")
		if _, err := os.Stat(goModPath); err == nil {
			return dir, nil // Found go.mod
		}
		// Move up one directory
		parentDir := filepath.Dir(dir)
		if parentDir == dir {
			// Reached the root directory without finding go.mod
			return "", errors.New("go.mod not found in any parent directory")
		}
		dir = parentDir
	}
}

// projectRoot locates the module root from this source file's position.
func projectRoot(t *testing.T) string {
	t.Helper()
	_, currentFilePath, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	root, err := findProjectRoot(filepath.Dir(currentFilePath))
	if err != nil {
		t.Fatalf("Failed to find project root: %v", err)
	}
	return root
}

// BuildBinary compiles cmd/quizvoice into dir and returns the binary path.
func BuildBinary(t *testing.T, dir string) string {
	t.Helper()

	root := projectRoot(t)
	binaryPath := filepath.Join(dir, "quizvoice")

	buildCmd := exec.Command("go", "build", "-o", binaryPath, filepath.Join(root, "cmd", "quizvoice"))
	buildCmd.Stdout = os.Stdout
	buildCmd.Stderr = os.Stderr
	if err := buildCmd.Run(); err != nil {
		t.Fatalf("Failed to build quizvoice binary: %v", err)
	}
	return binaryPath
}

// Run executes a single script file. The quizvoice binary directory is
// prepended to PATH so scripts can `exec quizvoice`, and QUIZFILE points at
// the sample quiz in testdata. Scripts run in a throwaway work directory.
func Run(t *testing.T, scriptPath string) {
	t.Helper()

	root := projectRoot(t)
	binDir := filepath.Dir(BuildBinary(t, t.TempDir()))
	workdir := t.TempDir()

	env := []string{
		"PATH=" + binDir + string(os.PathListSeparator) + os.Getenv("PATH"),
		"HOME=" + workdir,
		"QUIZFILE=" + filepath.Join(root, "testdata", "sample_quiz.json"),
	}

	engine := &script.Engine{
		Cmds:  script.DefaultCmds(),
		Conds: script.DefaultConds(),
		Quiet: !testing.Verbose(),
	}

	state, err := script.NewState(context.Background(), workdir, env)
	if err != nil {
		t.Fatalf("Failed to create script state: %v", err)
	}

	f, err := os.Open(scriptPath)
	if err != nil {
		t.Fatalf("Failed to open script %s: %v", scriptPath, err)
	}
	defer f.Close()

	var log strings.Builder
	execErr := engine.Execute(state, scriptPath, bufio.NewReader(f), &log)
	if err := state.CloseAndWait(&log); err != nil && execErr == nil {
		execErr = err
	}
	if execErr != nil {
		t.Errorf("Script %s failed: %v\n%s", scriptPath, execErr, log.String())
		return
	}
	if testing.Verbose() {
		t.Log(log.String())
	}
}
