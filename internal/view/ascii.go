// Package view renders world snapshots for terminals.
package view

import (
	"fmt"
	"strings"

	"myrmex/internal/model"
	"myrmex/internal/world"
)

// Map glyphs, in paint order. Later layers win the cell.
const (
	glyphEmpty         = '.'
	glyphHomeWeak      = '-'
	glyphHomeStrong    = '='
	glyphFoodWeak      = ':'
	glyphFoodStrong    = '+'
	glyphMorselEmpty   = 'o'
	glyphMorselStocked = '%'
	glyphNest          = 'N'
	glyphForager       = 'a'
	glyphCarrier       = 'A'
)

// Legend describes the map glyphs for CLI help output.
const Legend = "N nest, % morsel, o empty morsel, a forager, A carrier, -/= home trail, :/+ food trail"

// FormatSnapshot returns a human-readable fixed-width dump of the world.
// Row zero is the top of the map; traces paint under landmarks, landmarks
// under ants.
func FormatSnapshot(s world.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "generation: %d\n", s.Generation)
	fmt.Fprintf(&b, "stored: %d  remaining: %d  carrying: %d\n", s.Nest.Stored, s.RemainingFood(), s.CarryingCount())
	if s.Dim.Cells() == 0 {
		return b.String()
	}

	cells := make([]rune, s.Dim.Cells())
	for i := range cells {
		cells[i] = glyphEmpty
	}
	index := func(p world.Position) int {
		return p.Y*s.Dim.Width + p.X
	}

	peak := 0.0
	for _, trace := range s.Traces {
		if trace.Concentration > peak {
			peak = trace.Concentration
		}
	}
	for _, trace := range s.Traces {
		if trace.Concentration <= 0 {
			continue
		}
		cells[index(trace.Location)] = traceGlyph(trace, peak, cells[index(trace.Location)])
	}

	for _, morsel := range s.Morsels {
		glyph := glyphMorselEmpty
		if morsel.Remaining > 0 {
			glyph = glyphMorselStocked
		}
		cells[index(morsel.Location)] = glyph
	}
	cells[index(s.Nest.Location)] = glyphNest

	for _, ant := range s.Ants {
		glyph := glyphForager
		if ant.Carrying {
			glyph = glyphCarrier
		}
		cells[index(ant.Location)] = glyph
	}

	for y := 0; y < s.Dim.Height; y++ {
		b.WriteString(string(cells[y*s.Dim.Width : (y+1)*s.Dim.Width]))
		b.WriteByte('\n')
	}
	return b.String()
}

// traceGlyph picks the rune for one trace reading. Food trails paint over
// home trails so forage routes stay visible.
func traceGlyph(trace world.TraceCellState, peak float64, current rune) rune {
	strong := peak > 0 && trace.Concentration > peak/2

	var glyph rune
	switch trace.Kind {
	case world.TraceHomeBound.String():
		glyph = glyphHomeWeak
		if strong {
			glyph = glyphHomeStrong
		}
		if current == glyphFoodWeak || current == glyphFoodStrong {
			return current
		}
	case world.TraceFoodBound.String():
		glyph = glyphFoodWeak
		if strong {
			glyph = glyphFoodStrong
		}
	default:
		return current
	}
	return glyph
}

// FormatProgress returns the one-line run ticker for live output.
func FormatProgress(d model.GenerationDiagnostics) string {
	return fmt.Sprintf("gen=%d delivered=%d remaining=%d carrying=%d pickups=%d deliveries=%d",
		d.Generation, d.Delivered, d.RemainingFood, d.CarryingCount, d.TotalPickups, d.TotalDeliveries)
}
