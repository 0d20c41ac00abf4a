package sim

import (
	"fmt"

	"myrmex/internal/world"
)

// Config fully determines a simulation. Equal configs with equal seeds
// reproduce identical runs regardless of worker count.
type Config struct {
	Width  int
	Height int

	NestLocation world.Position

	AntCount      int
	MemorySpan    int
	SensingRadius int

	MaxTraceConcentration float64
	TraceDecrement        float64
	TraceIncreaseRatio    float64
	SignalThreshold       float64
	DecayLaw              world.DecayLaw
	DecayRate             float64

	MorselCount   int
	MorselStorage int
	// MorselLocations pins food placement; when empty, MorselCount morsels
	// are drawn from the seed instead.
	MorselLocations []world.Position

	Seed int64
	// Workers bounds decide-phase parallelism. Zero means one worker per
	// available CPU; the pool is always capped at the ant count.
	Workers int
}

func (c Config) Validate() error {
	if c.Width <= 0 {
		return fmt.Errorf("width must be > 0")
	}
	if c.Height <= 0 {
		return fmt.Errorf("height must be > 0")
	}
	if !c.gridContains(c.NestLocation) {
		return fmt.Errorf("nest location %+v outside %dx%d grid", c.NestLocation, c.Width, c.Height)
	}
	if c.AntCount <= 0 {
		return fmt.Errorf("ant count must be > 0")
	}
	if c.MemorySpan < 0 {
		return fmt.Errorf("memory span must be >= 0")
	}
	if c.SensingRadius < 1 {
		return fmt.Errorf("sensing radius must be >= 1")
	}
	if c.MaxTraceConcentration <= 0 {
		return fmt.Errorf("max trace concentration must be > 0")
	}
	if c.TraceDecrement < 0 {
		return fmt.Errorf("trace decrement must be >= 0")
	}
	if c.TraceIncreaseRatio < 0 {
		return fmt.Errorf("trace increase ratio must be >= 0")
	}
	if c.SignalThreshold < 0 {
		return fmt.Errorf("signal threshold must be >= 0")
	}
	if c.DecayRate < 0 {
		return fmt.Errorf("decay rate must be >= 0")
	}
	if c.DecayLaw == world.DecayExponential && c.DecayRate > 1 {
		return fmt.Errorf("exponential decay rate must be <= 1")
	}
	if c.MorselStorage <= 0 {
		return fmt.Errorf("morsel storage must be > 0")
	}
	if len(c.MorselLocations) == 0 {
		if c.MorselCount <= 0 {
			return fmt.Errorf("morsel count must be > 0")
		}
		if c.Width*c.Height < 2 {
			return fmt.Errorf("grid too small to place morsels off the nest")
		}
	}
	for i, p := range c.MorselLocations {
		if !c.gridContains(p) {
			return fmt.Errorf("morsel location %+v outside grid at index %d", p, i)
		}
		if p == c.NestLocation {
			return fmt.Errorf("morsel location collides with nest at index %d", i)
		}
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0")
	}
	return nil
}

func (c Config) gridContains(p world.Position) bool {
	return p.X >= 0 && p.X < c.Width && p.Y >= 0 && p.Y < c.Height
}

// TotalFood is the stock the world starts with.
func (c Config) TotalFood() int {
	if len(c.MorselLocations) > 0 {
		return len(c.MorselLocations) * c.MorselStorage
	}
	return c.MorselCount * c.MorselStorage
}
