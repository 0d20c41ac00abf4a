package world

import "fmt"

// Position is a cell coordinate on the grid, origin at the top-left corner.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ChebyshevDistance is the number of king moves between two cells.
func (p Position) ChebyshevDistance(o Position) int {
	dx := intAbs(p.X - o.X)
	dy := intAbs(p.Y - o.Y)
	if dx > dy {
		return dx
	}
	return dy
}

type Dimension struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (d Dimension) Cells() int {
	return d.Width * d.Height
}

// Grid is the bounded rectangle the colony lives on. There is no wrap-around:
// positions past an edge are clamped or dropped, never folded to the far side.
type Grid struct {
	dim Dimension
}

func NewGrid(dim Dimension) (Grid, error) {
	if dim.Width <= 0 {
		return Grid{}, fmt.Errorf("grid width must be > 0")
	}
	if dim.Height <= 0 {
		return Grid{}, fmt.Errorf("grid height must be > 0")
	}
	return Grid{dim: dim}, nil
}

func (g Grid) Dim() Dimension {
	return g.dim
}

func (g Grid) Contains(p Position) bool {
	return p.X >= 0 && p.X < g.dim.Width && p.Y >= 0 && p.Y < g.dim.Height
}

func (g Grid) Clamp(p Position) Position {
	return Position{
		X: clampInt(p.X, 0, g.dim.Width-1),
		Y: clampInt(p.Y, 0, g.dim.Height-1),
	}
}

// Index maps an in-bounds position to its row-major offset in a flat plane.
func (g Grid) Index(p Position) int {
	return p.Y*g.dim.Width + p.X
}

// Neighborhood returns the in-bounds cells at Chebyshev distance 1..radius
// from center, in row-major scan order. The center cell is excluded and cells
// past the boundary are dropped.
func (g Grid) Neighborhood(center Position, radius int) []Position {
	if radius < 1 {
		return nil
	}
	cells := make([]Position, 0, (2*radius+1)*(2*radius+1)-1)
	for y := center.Y - radius; y <= center.Y+radius; y++ {
		for x := center.X - radius; x <= center.X+radius; x++ {
			p := Position{X: x, Y: y}
			if p == center || !g.Contains(p) {
				continue
			}
			cells = append(cells, p)
		}
	}
	return cells
}

// StepToward moves one cell from `from` in the quantized direction of `to`:
// each axis advances by the sign of its delta. The result is clamped in
// bounds; axes already aligned stay put.
func (g Grid) StepToward(from, to Position) Position {
	step := Position{
		X: from.X + intSign(to.X-from.X),
		Y: from.Y + intSign(to.Y-from.Y),
	}
	return g.Clamp(step)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func intAbs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func intSign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
