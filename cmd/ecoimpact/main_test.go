package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Deltares/D-EcoImpact-sub000/pkg/cli"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "ecoimpact-cmd")
	if err != nil {
		panic(err)
	}
	os.Setenv("ECOIMPACT_RUNSTORE_SQLITE_PATH", filepath.Join(dir, "runs.db"))
	os.Setenv("ECOIMPACT_LOGGING_LEVEL", "error")

	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}

// executeCommand runs the root command with args and returns its stdout.
// Flags are reset first because cobra keeps them in package variables.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	runFlags = struct {
		watch       bool
		metricsFile string
		format      string
		progress    bool
		failFast    bool
	}{format: "text"}
	validateFlags.format = "text"
	runsFlags = struct {
		status string
		input  string
		model  string
		since  time.Duration
		limit  int
		offset int
		format string
	}{format: "text"}
	cfgFile = filepath.Join(t.TempDir(), "missing.yaml")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--config", cfgFile}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

const cmdTestInput = `version: 0.1.0
input-data:
  - dataset:
      filename: ./data/levels_*.json
output-data:
  filename: ./out/depth.json
rules:
  - multiply_rule:
      name: depth in cm
      input_variable: water_depth
      multipliers: [100.0]
      output_variable: water_depth_cm
`

const cmdTestDataset = `{"variables": [{"name": "water_depth", "dims": ["face"], "shape": [2], "data": [0.5, 1.5]}]}`

func writeCmdModel(t *testing.T, dataset string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "data"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "data", "levels_2020.json"), []byte(dataset), 0o644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "depth.yaml")
	if err := os.WriteFile(path, []byte(cmdTestInput), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunAndListRuns(t *testing.T) {
	inputPath := writeCmdModel(t, cmdTestDataset)

	out, err := executeCommand(t, "run", inputPath)
	if err != nil {
		t.Fatalf("run error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "Model depth: 1 succeeded, 0 failed") {
		t.Errorf("run output = %q", out)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(inputPath), "out", "depth_2020.json")); err != nil {
		t.Errorf("output not written: %v", err)
	}

	out, err = executeCommand(t, "runs", "list", "--input", inputPath, "--format", "csv")
	if err != nil {
		t.Fatalf("runs list error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("runs list lines = %d, want header and 1 record:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[1], ",2020,depth,success,") {
		t.Errorf("runs list record = %q", lines[1])
	}
}

func TestRunFailure(t *testing.T) {
	inputPath := writeCmdModel(t, `{"variables": [{"name": "other", "dims": ["face"], "shape": [1], "data": [1]}]}`)

	_, err := executeCommand(t, "run", inputPath)
	if err == nil {
		t.Fatal("run error = nil, want error")
	}
	if code := cli.ExitCode(err); code != cli.ExitFailure {
		t.Errorf("ExitCode() = %d, want %d", code, cli.ExitFailure)
	}
}

func TestValidateCommand(t *testing.T) {
	inputPath := writeCmdModel(t, cmdTestDataset)

	out, err := executeCommand(t, "validate", inputPath)
	if err != nil {
		t.Fatalf("validate error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "is valid") {
		t.Errorf("validate output = %q", out)
	}

	broken := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(broken, []byte("rules: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err = executeCommand(t, "validate", broken, "--format", "json")
	if err == nil {
		t.Fatal("validate error = nil, want error for invalid file")
	}
	if !strings.Contains(out, `"valid": false`) {
		t.Errorf("validate output = %q", out)
	}
}

func TestRunsListInvalidStatus(t *testing.T) {
	_, err := executeCommand(t, "runs", "list", "--status", "bogus")
	if code := cli.ExitCode(err); code != cli.ExitConfigError {
		t.Errorf("ExitCode() = %d, want %d (err = %v)", code, cli.ExitConfigError, err)
	}
}

func TestRunsPrune(t *testing.T) {
	out, err := executeCommand(t, "runs", "prune")
	if err != nil {
		t.Fatalf("runs prune error = %v", err)
	}
	if !strings.Contains(out, "Pruned") {
		t.Errorf("runs prune output = %q", out)
	}
}
