// Package config loads colony run configuration from YAML files and
// environment variables, layered over preset defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"myrmex/internal/presetid"
	"myrmex/internal/sim"
	"myrmex/internal/world"
)

// FileConfig mirrors the on-disk YAML layout. Loading unmarshals over the
// classic defaults, so absent keys keep their preset values.
type FileConfig struct {
	Grid    GridConfig   `json:"grid" yaml:"grid"`
	Colony  ColonyConfig `json:"colony" yaml:"colony"`
	Traces  TraceConfig  `json:"traces" yaml:"traces"`
	Morsels MorselConfig `json:"morsels" yaml:"morsels"`
	Run     RunConfig    `json:"run" yaml:"run"`
}

type GridConfig struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
	NestX  int `json:"nest_x" yaml:"nest_x"`
	NestY  int `json:"nest_y" yaml:"nest_y"`
}

type ColonyConfig struct {
	Ants          int `json:"ants" yaml:"ants"`
	MemorySpan    int `json:"memory_span" yaml:"memory_span"`
	SensingRadius int `json:"sensing_radius" yaml:"sensing_radius"`
}

type TraceConfig struct {
	MaxConcentration float64 `json:"max_concentration" yaml:"max_concentration"`
	Decrement        float64 `json:"decrement" yaml:"decrement"`
	IncreaseRatio    float64 `json:"increase_ratio" yaml:"increase_ratio"`
	SignalThreshold  float64 `json:"signal_threshold" yaml:"signal_threshold"`

	// DecayLaw selects how concentrations fade each generation:
	// "linear" subtracts decay_rate, "exponential" multiplies by 1-decay_rate.
	DecayLaw  string  `json:"decay_law" yaml:"decay_law"`
	DecayRate float64 `json:"decay_rate" yaml:"decay_rate"`
}

type MorselConfig struct {
	Count   int `json:"count" yaml:"count"`
	Storage int `json:"storage" yaml:"storage"`

	// Locations pins food placement; when empty, count morsels are drawn
	// from the run seed instead.
	Locations []LocationConfig `json:"locations,omitempty" yaml:"locations,omitempty"`
}

type LocationConfig struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

type RunConfig struct {
	Seed    int64 `json:"seed" yaml:"seed"`
	Workers int   `json:"workers" yaml:"workers"`

	// MaxGenerations aborts runs that never settle. Zero means the engine
	// default ceiling.
	MaxGenerations uint64 `json:"max_generations" yaml:"max_generations"`

	// SampleEvery thins the persisted diagnostics series to every Nth
	// generation. Zero or one keeps every generation.
	SampleEvery int `json:"sample_every" yaml:"sample_every"`
}

// LoadFromFile loads configuration from a YAML file over the classic
// defaults.
func LoadFromFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Resolve builds the configuration for a run request: an explicit file wins
// over a preset name, and either is layered with MYRMEX_* environment
// overrides. The second return is the scenario label runs are recorded
// under: the canonical preset name, or the config file's base name.
func Resolve(preset, path string) (*FileConfig, string, error) {
	if path != "" {
		cfg, err := LoadFromFile(path)
		if err != nil {
			return nil, "", err
		}
		cfg.ApplyEnv()
		base := filepath.Base(path)
		return cfg, strings.TrimSuffix(base, filepath.Ext(base)), nil
	}

	cfg, ok := Preset(preset)
	if !ok {
		return nil, "", fmt.Errorf("unknown preset %q (known: %s)", preset, strings.Join(PresetNames(), ", "))
	}
	cfg.ApplyEnv()
	scenario := presetid.Normalize(preset)
	if scenario == "" {
		scenario = "classic"
	}
	return cfg, scenario, nil
}

// ApplyEnv applies MYRMEX_* environment variable overrides.
func (c *FileConfig) ApplyEnv() {
	if v := os.Getenv("MYRMEX_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Run.Seed = n
		}
	}
	if v := os.Getenv("MYRMEX_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Run.Workers = n
		}
	}
	if v := os.Getenv("MYRMEX_MAX_GENERATIONS"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			c.Run.MaxGenerations = n
		}
	}
	if v := os.Getenv("MYRMEX_SAMPLE_EVERY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Run.SampleEvery = n
		}
	}
}

// SimConfig converts the file form into the engine configuration.
func (c *FileConfig) SimConfig() (sim.Config, error) {
	law, err := world.ParseDecayLaw(c.Traces.DecayLaw)
	if err != nil {
		return sim.Config{}, err
	}

	var locations []world.Position
	if len(c.Morsels.Locations) > 0 {
		locations = make([]world.Position, 0, len(c.Morsels.Locations))
		for _, l := range c.Morsels.Locations {
			locations = append(locations, world.Position{X: l.X, Y: l.Y})
		}
	}

	return sim.Config{
		Width:                 c.Grid.Width,
		Height:                c.Grid.Height,
		NestLocation:          world.Position{X: c.Grid.NestX, Y: c.Grid.NestY},
		AntCount:              c.Colony.Ants,
		MemorySpan:            c.Colony.MemorySpan,
		SensingRadius:         c.Colony.SensingRadius,
		MaxTraceConcentration: c.Traces.MaxConcentration,
		TraceDecrement:        c.Traces.Decrement,
		TraceIncreaseRatio:    c.Traces.IncreaseRatio,
		SignalThreshold:       c.Traces.SignalThreshold,
		DecayLaw:              law,
		DecayRate:             c.Traces.DecayRate,
		MorselCount:           c.Morsels.Count,
		MorselStorage:         c.Morsels.Storage,
		MorselLocations:       locations,
		Seed:                  c.Run.Seed,
		Workers:               c.Run.Workers,
	}, nil
}

// Validate checks that the configuration describes a runnable world.
func (c *FileConfig) Validate() error {
	if c.Run.SampleEvery < 0 {
		return fmt.Errorf("sample_every must be >= 0, got %d", c.Run.SampleEvery)
	}
	simCfg, err := c.SimConfig()
	if err != nil {
		return err
	}
	return simCfg.Validate()
}
