package world

import (
	"fmt"
	"strings"
)

// TraceKind distinguishes the two scents ants lay and follow. Foraging ants
// lay HomeBound scent (the way back to the nest); carrying ants lay FoodBound
// scent (the way back to food).
type TraceKind int

const (
	TraceHomeBound TraceKind = iota
	TraceFoodBound
)

// TraceKinds lists every kind for exhaustive iteration.
var TraceKinds = []TraceKind{TraceHomeBound, TraceFoodBound}

func (k TraceKind) String() string {
	switch k {
	case TraceHomeBound:
		return "home"
	case TraceFoodBound:
		return "food"
	default:
		return fmt.Sprintf("trace(%d)", int(k))
	}
}

func ParseTraceKind(s string) (TraceKind, error) {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "home":
		return TraceHomeBound, nil
	case "food":
		return TraceFoodBound, nil
	default:
		return 0, fmt.Errorf("unsupported trace kind: %s", s)
	}
}

// DecayLaw selects how concentrations evaporate at the end of a generation.
type DecayLaw int

const (
	// DecayLinear subtracts the rate from every cell, floored at zero.
	DecayLinear DecayLaw = iota
	// DecayExponential scales every cell by (1 - rate).
	DecayExponential
)

func (l DecayLaw) String() string {
	switch l {
	case DecayLinear:
		return "linear"
	case DecayExponential:
		return "exponential"
	default:
		return fmt.Sprintf("decay(%d)", int(l))
	}
}

func ParseDecayLaw(s string) (DecayLaw, error) {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "", "linear":
		return DecayLinear, nil
	case "exponential":
		return DecayExponential, nil
	default:
		return 0, fmt.Errorf("unsupported decay law: %s", s)
	}
}

// TraceField holds one concentration plane per trace kind over the whole
// grid. Cells never deposited read as zero. Deposits are additive and capped
// at the configured maximum, so applying a generation's deposits in any order
// produces the same field.
type TraceField struct {
	grid Grid
	max  float64
	law  DecayLaw
	rate float64
	home []float64
	food []float64
}

func NewTraceField(grid Grid, max float64, law DecayLaw, rate float64) (*TraceField, error) {
	if max <= 0 {
		return nil, fmt.Errorf("max trace concentration must be > 0")
	}
	if rate < 0 {
		return nil, fmt.Errorf("decay rate must be >= 0")
	}
	if law == DecayExponential && rate > 1 {
		return nil, fmt.Errorf("exponential decay rate must be <= 1")
	}
	cells := grid.Dim().Cells()
	return &TraceField{
		grid: grid,
		max:  max,
		law:  law,
		rate: rate,
		home: make([]float64, cells),
		food: make([]float64, cells),
	}, nil
}

func (f *TraceField) plane(kind TraceKind) []float64 {
	switch kind {
	case TraceHomeBound:
		return f.home
	case TraceFoodBound:
		return f.food
	default:
		return nil
	}
}

func (f *TraceField) Max() float64 {
	return f.max
}

func (f *TraceField) ConcentrationAt(p Position, kind TraceKind) float64 {
	if !f.grid.Contains(p) {
		return 0
	}
	plane := f.plane(kind)
	if plane == nil {
		return 0
	}
	return plane[f.grid.Index(p)]
}

// Deposit adds amount to one cell, clamped to the saturation ceiling.
// Non-positive amounts are ignored.
func (f *TraceField) Deposit(p Position, kind TraceKind, amount float64) {
	if amount <= 0 || !f.grid.Contains(p) {
		return
	}
	plane := f.plane(kind)
	if plane == nil {
		return
	}
	i := f.grid.Index(p)
	c := plane[i] + amount
	if c > f.max {
		c = f.max
	}
	plane[i] = c
}

// Suppress zeroes one cell's concentration for one kind. Used to demote a
// trail that points nowhere.
func (f *TraceField) Suppress(p Position, kind TraceKind) {
	if !f.grid.Contains(p) {
		return
	}
	if plane := f.plane(kind); plane != nil {
		plane[f.grid.Index(p)] = 0
	}
}

// Decay applies the configured law to every cell of both planes, floored at
// zero. Called exactly once per generation, after all deposits.
func (f *TraceField) Decay() {
	for _, kind := range TraceKinds {
		plane := f.plane(kind)
		for i, c := range plane {
			if c == 0 {
				continue
			}
			switch f.law {
			case DecayLinear:
				c -= f.rate
			case DecayExponential:
				c *= 1 - f.rate
			}
			if c < 0 {
				c = 0
			}
			plane[i] = c
		}
	}
}

func (f *TraceField) Total(kind TraceKind) float64 {
	total := 0.0
	for _, c := range f.plane(kind) {
		total += c
	}
	return total
}

// ActiveCells returns every nonzero cell of both planes in row-major order,
// home plane first. The slice is a copy; callers may keep it.
func (f *TraceField) ActiveCells() []TraceCellState {
	var cells []TraceCellState
	dim := f.grid.Dim()
	for _, kind := range TraceKinds {
		plane := f.plane(kind)
		for i, c := range plane {
			if c == 0 {
				continue
			}
			cells = append(cells, TraceCellState{
				Location:      Position{X: i % dim.Width, Y: i / dim.Width},
				Kind:          kind.String(),
				Concentration: c,
			})
		}
	}
	return cells
}
