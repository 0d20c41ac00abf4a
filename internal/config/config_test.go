package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"myrmex/internal/world"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Grid.Width != 30 || cfg.Grid.Height != 30 {
		t.Fatalf("unexpected grid: %+v", cfg.Grid)
	}
	if cfg.Grid.NestX != 25 || cfg.Grid.NestY != 25 {
		t.Fatalf("unexpected nest: %+v", cfg.Grid)
	}
	if cfg.Colony.Ants != 10 || cfg.Colony.MemorySpan != 30 || cfg.Colony.SensingRadius != 1 {
		t.Fatalf("unexpected colony: %+v", cfg.Colony)
	}
	if cfg.Traces.MaxConcentration != 200 || cfg.Traces.Decrement != 2 || cfg.Traces.IncreaseRatio != 0.1 {
		t.Fatalf("unexpected traces: %+v", cfg.Traces)
	}
	if cfg.Traces.DecayLaw != "linear" || cfg.Traces.DecayRate != 1 {
		t.Fatalf("unexpected decay: %+v", cfg.Traces)
	}
	if cfg.Morsels.Count != 20 || cfg.Morsels.Storage != 30 {
		t.Fatalf("unexpected morsels: %+v", cfg.Morsels)
	}
	if cfg.Run.MaxGenerations != 150000 || cfg.Run.SampleEvery != 1 {
		t.Fatalf("unexpected run: %+v", cfg.Run)
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
}

func TestPresets(t *testing.T) {
	for _, name := range PresetNames() {
		cfg, ok := Preset(name)
		if !ok {
			t.Fatalf("missing preset %s", name)
		}
		if err := cfg.Validate(); err != nil {
			t.Fatalf("preset %s must validate: %v", name, err)
		}
	}

	if _, ok := Preset("no-such-preset"); ok {
		t.Fatal("expected unknown preset to miss")
	}

	classic, _ := Preset("")
	if classic.Grid.Width != 30 {
		t.Fatalf("empty name must resolve to classic, got %+v", classic.Grid)
	}

	viaAlias, _ := Preset("STRESS")
	if viaAlias == nil || viaAlias.Grid.Width != 60 {
		t.Fatalf("alias must resolve to gauntlet, got %+v", viaAlias)
	}
}

func TestLoadFromFileMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "colony.yaml")
	content := `
grid:
  width: 12
  height: 9
  nest_x: 4
  nest_y: 5
colony:
  ants: 3
morsels:
  count: 2
  storage: 5
  locations:
    - {x: 1, y: 1}
    - {x: 10, y: 7}
run:
  seed: 42
  workers: 2
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Grid.Width != 12 || cfg.Grid.Height != 9 {
		t.Fatalf("unexpected grid: %+v", cfg.Grid)
	}
	if cfg.Colony.Ants != 3 {
		t.Fatalf("unexpected ants: %d", cfg.Colony.Ants)
	}
	// Keys absent from the file keep their defaults.
	if cfg.Colony.MemorySpan != 30 || cfg.Traces.MaxConcentration != 200 {
		t.Fatalf("defaults lost: %+v %+v", cfg.Colony, cfg.Traces)
	}
	if len(cfg.Morsels.Locations) != 2 || cfg.Morsels.Locations[1].X != 10 {
		t.Fatalf("unexpected locations: %+v", cfg.Morsels.Locations)
	}
	if cfg.Run.Seed != 42 || cfg.Run.Workers != 2 {
		t.Fatalf("unexpected run: %+v", cfg.Run)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("loaded config must validate: %v", err)
	}
}

func TestResolve(t *testing.T) {
	cfg, scenario, err := Resolve("", "")
	if err != nil {
		t.Fatalf("resolve default: %v", err)
	}
	if scenario != "classic" || cfg.Grid.Width != 30 {
		t.Fatalf("empty request must resolve to classic, got scenario=%q grid=%+v", scenario, cfg.Grid)
	}

	_, scenario, err = Resolve("SMOKE", "")
	if err != nil {
		t.Fatalf("resolve alias: %v", err)
	}
	if scenario != "minimal" {
		t.Fatalf("alias must normalize to canonical name, got %q", scenario)
	}

	_, _, err = Resolve("no-such-preset", "")
	if err == nil {
		t.Fatal("expected unknown preset error")
	}
	if !strings.Contains(err.Error(), "classic") {
		t.Fatalf("error should list known presets: %v", err)
	}

	path := filepath.Join(t.TempDir(), "colony.yaml")
	if err := os.WriteFile(path, []byte("colony:\n  ants: 4\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, scenario, err = Resolve("gauntlet", path)
	if err != nil {
		t.Fatalf("resolve file: %v", err)
	}
	if scenario != "colony" {
		t.Fatalf("file must win over preset and name the scenario, got %q", scenario)
	}
	if cfg.Colony.Ants != 4 || cfg.Grid.Width != 30 {
		t.Fatalf("file must layer over classic defaults, got %+v %+v", cfg.Colony, cfg.Grid)
	}
}

func TestLoadFromFileErrors(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected missing file error")
	}

	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("grid: ["), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadFromFile(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("MYRMEX_SEED", "99")
	t.Setenv("MYRMEX_WORKERS", "8")
	t.Setenv("MYRMEX_MAX_GENERATIONS", "777")
	t.Setenv("MYRMEX_SAMPLE_EVERY", "5")

	cfg := Default()
	cfg.ApplyEnv()

	if cfg.Run.Seed != 99 || cfg.Run.Workers != 8 {
		t.Fatalf("unexpected run overrides: %+v", cfg.Run)
	}
	if cfg.Run.MaxGenerations != 777 || cfg.Run.SampleEvery != 5 {
		t.Fatalf("unexpected run overrides: %+v", cfg.Run)
	}
}

func TestApplyEnvIgnoresGarbage(t *testing.T) {
	t.Setenv("MYRMEX_SEED", "not-a-number")

	cfg := Default()
	cfg.ApplyEnv()
	if cfg.Run.Seed != 0 {
		t.Fatalf("garbage env must not override seed, got %d", cfg.Run.Seed)
	}
}

func TestSimConfig(t *testing.T) {
	cfg := Default()
	cfg.Traces.DecayLaw = "exponential"
	cfg.Traces.DecayRate = 0.05
	cfg.Morsels.Locations = []LocationConfig{{X: 1, Y: 2}}

	simCfg, err := cfg.SimConfig()
	if err != nil {
		t.Fatalf("sim config: %v", err)
	}
	if simCfg.NestLocation != (world.Position{X: 25, Y: 25}) {
		t.Fatalf("unexpected nest: %+v", simCfg.NestLocation)
	}
	if simCfg.DecayLaw != world.DecayExponential || simCfg.DecayRate != 0.05 {
		t.Fatalf("unexpected decay: law=%v rate=%f", simCfg.DecayLaw, simCfg.DecayRate)
	}
	if len(simCfg.MorselLocations) != 1 || simCfg.MorselLocations[0] != (world.Position{X: 1, Y: 2}) {
		t.Fatalf("unexpected locations: %+v", simCfg.MorselLocations)
	}

	cfg.Traces.DecayLaw = "bogus"
	if _, err := cfg.SimConfig(); err == nil {
		t.Fatal("expected decay law error")
	}
}

func TestValidateRejectsNegativeSampleEvery(t *testing.T) {
	cfg := Default()
	cfg.Run.SampleEvery = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected sample_every error")
	}
}
