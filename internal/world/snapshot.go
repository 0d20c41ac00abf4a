package world

import "fmt"

// EntityKind tags everything a snapshot can contain. The set is closed;
// consumers switch over it exhaustively instead of type-asserting.
type EntityKind int

const (
	KindNest EntityKind = iota
	KindMorsel
	KindAnt
)

func (k EntityKind) String() string {
	switch k {
	case KindNest:
		return "nest"
	case KindMorsel:
		return "morsel"
	case KindAnt:
		return "ant"
	default:
		return fmt.Sprintf("entity(%d)", int(k))
	}
}

type NestState struct {
	Location Position `json:"location"`
	Stored   int      `json:"stored"`
}

type MorselState struct {
	Location  Position `json:"location"`
	Remaining int      `json:"remaining"`
}

type AntState struct {
	Location Position `json:"location"`
	Carrying bool     `json:"carrying"`
}

type TraceCellState struct {
	Location      Position `json:"location"`
	Kind          string   `json:"kind"`
	Concentration float64  `json:"concentration"`
}

// Snapshot is a read-only copy of the world at a generation boundary.
// Mutating one never affects the simulation that produced it.
type Snapshot struct {
	Generation uint64           `json:"generation"`
	Dim        Dimension        `json:"dimension"`
	Nest       NestState        `json:"nest"`
	Morsels    []MorselState    `json:"morsels"`
	Ants       []AntState       `json:"ants"`
	Traces     []TraceCellState `json:"traces"`
}

// RemainingFood sums the stock left across every morsel.
func (s Snapshot) RemainingFood() int {
	total := 0
	for _, m := range s.Morsels {
		total += m.Remaining
	}
	return total
}

// CarryingCount counts ants holding a food unit.
func (s Snapshot) CarryingCount() int {
	count := 0
	for _, a := range s.Ants {
		if a.Carrying {
			count++
		}
	}
	return count
}
