package config

import "myrmex/internal/presetid"

// Default returns the classic colony: the 30x30 world the engine was
// originally tuned on.
func Default() *FileConfig {
	return &FileConfig{
		Grid:   GridConfig{Width: 30, Height: 30, NestX: 25, NestY: 25},
		Colony: ColonyConfig{Ants: 10, MemorySpan: 30, SensingRadius: 1},
		Traces: TraceConfig{
			MaxConcentration: 200,
			Decrement:        2,
			IncreaseRatio:    0.1,
			SignalThreshold:  0,
			DecayLaw:         "linear",
			DecayRate:        1,
		},
		Morsels: MorselConfig{Count: 20, Storage: 30},
		Run:     RunConfig{Seed: 0, Workers: 0, MaxGenerations: 150000, SampleEvery: 1},
	}
}

// Preset resolves a preset name or alias into a full configuration.
// An empty name means classic.
func Preset(name string) (*FileConfig, bool) {
	switch presetid.Normalize(name) {
	case "", "classic":
		return Default(), true
	case "minimal":
		cfg := Default()
		cfg.Grid = GridConfig{Width: 7, Height: 7, NestX: 3, NestY: 3}
		cfg.Colony.Ants = 2
		cfg.Colony.MemorySpan = 10
		cfg.Morsels = MorselConfig{Count: 2, Storage: 3}
		cfg.Run.MaxGenerations = 5000
		return cfg, true
	case "gauntlet":
		cfg := Default()
		cfg.Grid = GridConfig{Width: 60, Height: 60, NestX: 30, NestY: 30}
		cfg.Colony.Ants = 40
		cfg.Colony.MemorySpan = 40
		cfg.Morsels = MorselConfig{Count: 40, Storage: 50}
		return cfg, true
	default:
		return nil, false
	}
}

// PresetNames lists the canonical preset names in display order.
func PresetNames() []string {
	return []string{"classic", "minimal", "gauntlet"}
}
