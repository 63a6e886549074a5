package quizvoice_test

import (
	"path/filepath"
	"runtime/debug"
	"strings"
	"testing"

	"github.com/quizvoice/quizvoice/internal/testing/scripttest"
)

func TestScripts(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping script tests in short mode; they build the CLI binary")
	}

	scriptDir := "testdata/script" // Define the directory containing scripts

	// Find all script files in the directory
	scriptFiles, err := filepath.Glob(filepath.Join(scriptDir, "*.txt"))
	if err != nil {
		t.Fatalf("Failed to find script files: %v", err)
	}
	if len(scriptFiles) == 0 {
		t.Fatalf("No script files found in %s", scriptDir)
	}

	// Run each script file as a subtest
	for _, scriptPath := range scriptFiles {
		// Capture scriptPath in local variable for the closure
		localScriptPath := scriptPath
		// Extract a short name for the subtest
		scriptName := strings.TrimSuffix(filepath.Base(localScriptPath), filepath.Ext(localScriptPath))

		t.Run(scriptName, func(t *testing.T) {
			// Wrap the scripttest.Run call in a recovery function to prevent panics within this subtest
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("Recovered from panic in scripttest.Run(%s): %v\nStack trace:\n%s", localScriptPath, r, debug.Stack())
				}
			}()

			t.Logf("Running script: %s", localScriptPath)
			scripttest.Run(t, localScriptPath)
			t.Logf("Script completed: %s", localScriptPath)
		})
	}
}
