package world

// Nest is the colony's home. Delivered food accumulates here and never
// depletes.
type Nest struct {
	Location Position
	Stored   int
}

func (n *Nest) Store() {
	n.Stored++
}

// Morsel is a finite food deposit. An empty morsel stays on the grid but is
// no longer a landmark or a pickup target.
type Morsel struct {
	Location  Position
	Remaining int
}

// Take removes one unit if any remains and reports whether it did. Stock
// never goes negative.
func (m *Morsel) Take() bool {
	if m.Remaining <= 0 {
		return false
	}
	m.Remaining--
	return true
}

func (m *Morsel) Depleted() bool {
	return m.Remaining <= 0
}
