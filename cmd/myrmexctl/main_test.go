package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// quickColonyYAML settles in three generations: one ant walks onto the
// adjacent morsel, picks up, and carries home.
const quickColonyYAML = `
grid:
  width: 5
  height: 5
  nest_x: 2
  nest_y: 2
colony:
  ants: 1
morsels:
  count: 1
  storage: 1
  locations:
    - {x: 3, y: 2}
run:
  seed: 7
  workers: 1
  max_generations: 50
`

func writeFixtureConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "colony.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture config: %v", err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestRunCommandPrintsSummary(t *testing.T) {
	cfgPath := writeFixtureConfig(t, quickColonyYAML)
	runsDir := t.TempDir()

	out, err := execute(t, "run", "--config", cfgPath, "--runs-dir", runsDir, "--quiet")
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if !strings.Contains(out, "run_id=colony-7-") {
		t.Fatalf("missing run id line: %q", out)
	}
	if !strings.Contains(out, "generations=3 delivered=1/1") {
		t.Fatalf("missing result line: %q", out)
	}
	if !strings.Contains(out, "artifacts="+runsDir) {
		t.Fatalf("missing artifacts path: %q", out)
	}
}

func TestRunCommandJSON(t *testing.T) {
	cfgPath := writeFixtureConfig(t, quickColonyYAML)
	runsDir := t.TempDir()

	out, err := execute(t, "run", "--config", cfgPath, "--runs-dir", runsDir, "--json")
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	var result map[string]any
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("json output must be one document: %v\n%q", err, out)
	}
	if id, _ := result["run_id"].(string); !strings.HasPrefix(id, "colony-7-") {
		t.Fatalf("unexpected run_id: %v", result["run_id"])
	}
	if result["generations"].(float64) != 3 || result["terminated"].(bool) != true {
		t.Fatalf("unexpected result: %v", result)
	}
}

func TestRunCommandWatchStreamsFrames(t *testing.T) {
	cfgPath := writeFixtureConfig(t, quickColonyYAML)

	out, err := execute(t, "run", "--config", cfgPath, "--runs-dir", t.TempDir(), "--watch", "--every", "1")
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if !strings.Contains(out, "generation: 1\n") || !strings.Contains(out, "generation: 3\n") {
		t.Fatalf("expected frames for generations 1 and 3: %q", out)
	}
	if !strings.Contains(out, "stored: 1  remaining: 0  carrying: 0") {
		t.Fatalf("final frame must show the cleared world: %q", out)
	}
	if !strings.Contains(out, "run_id=") {
		t.Fatalf("summary must follow the frames: %q", out)
	}
}

func TestRunsCommandEmptyMessage(t *testing.T) {
	out, err := execute(t, "runs", "--runs-dir", t.TempDir())
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	if strings.TrimSpace(out) != "no runs found" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestRunsCommandListsPersistedRuns(t *testing.T) {
	cfgPath := writeFixtureConfig(t, quickColonyYAML)
	runsDir := t.TempDir()

	if _, err := execute(t, "run", "--config", cfgPath, "--runs-dir", runsDir, "--quiet"); err != nil {
		t.Fatalf("run: %v", err)
	}

	out, err := execute(t, "runs", "--runs-dir", runsDir)
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	if !strings.Contains(out, "run_id=colony-7-") || !strings.Contains(out, "terminated=true") {
		t.Fatalf("unexpected listing: %q", out)
	}

	var listing map[string]any
	jsonOut, err := execute(t, "runs", "--runs-dir", runsDir, "--json")
	if err != nil {
		t.Fatalf("runs --json: %v", err)
	}
	if err := json.Unmarshal([]byte(jsonOut), &listing); err != nil {
		t.Fatalf("decode listing: %v\n%q", err, jsonOut)
	}
	if listing["count"].(float64) != 1 {
		t.Fatalf("unexpected count: %v", listing)
	}
}

func TestDiagnosticsCommandTailsSeries(t *testing.T) {
	cfgPath := writeFixtureConfig(t, quickColonyYAML)
	runsDir := t.TempDir()

	if _, err := execute(t, "run", "--config", cfgPath, "--runs-dir", runsDir, "--quiet"); err != nil {
		t.Fatalf("run: %v", err)
	}

	out, err := execute(t, "diagnostics", "--latest", "--runs-dir", runsDir)
	if err != nil {
		t.Fatalf("diagnostics: %v", err)
	}
	if !strings.Contains(out, "gen=3 delivered=1 remaining=0") {
		t.Fatalf("missing final sample: %q", out)
	}

	limited, err := execute(t, "diagnostics", "--latest", "--runs-dir", runsDir, "--limit", "1")
	if err != nil {
		t.Fatalf("diagnostics --limit: %v", err)
	}
	if lines := strings.Count(strings.TrimSpace(limited), "\n") + 1; lines != 1 {
		t.Fatalf("limit must tail the series, got %d lines: %q", lines, limited)
	}
}

func TestDiagnosticsCommandRequiresSelector(t *testing.T) {
	_, err := execute(t, "diagnostics", "--runs-dir", t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "run id or latest is required") {
		t.Fatalf("expected selector error, got %v", err)
	}

	_, err = execute(t, "diagnostics", "--run-id", "x", "--latest", "--runs-dir", t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "use either run id or latest") {
		t.Fatalf("expected mutual exclusion error, got %v", err)
	}
}

func TestPresetsCommandListsKnownWorlds(t *testing.T) {
	out, err := execute(t, "presets")
	if err != nil {
		t.Fatalf("presets: %v", err)
	}

	for _, name := range []string{"name=classic", "name=minimal", "name=gauntlet"} {
		if !strings.Contains(out, name) {
			t.Fatalf("missing %s in %q", name, out)
		}
	}
	if !strings.Contains(out, "grid=30x30 ants=10 morsels=20 storage=30 total_food=600") {
		t.Fatalf("classic parameters wrong: %q", out)
	}
	if !strings.Contains(out, "max_generations=150,000") {
		t.Fatalf("expected humanized ceiling: %q", out)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(out, "myrmexctl version "+version) {
		t.Fatalf("unexpected output: %q", out)
	}

	jsonOut, err := execute(t, "version", "--json")
	if err != nil {
		t.Fatalf("version --json: %v", err)
	}
	var decoded map[string]string
	if err := json.Unmarshal([]byte(jsonOut), &decoded); err != nil {
		t.Fatalf("decode version: %v", err)
	}
	if decoded["version"] != version {
		t.Fatalf("unexpected version: %v", decoded)
	}
}
