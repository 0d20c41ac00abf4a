package colony

import "myrmex/internal/world"

// Memory is a fixed-capacity ring of recently visited cells, used to keep an
// ant from re-treading its own path. Pushing past capacity overwrites the
// oldest entry. Capacity zero disables it entirely.
type Memory struct {
	cells []world.Position
	next  int
	size  int
}

func NewMemory(capacity int) *Memory {
	return &Memory{cells: make([]world.Position, capacity)}
}

func (m *Memory) Push(p world.Position) {
	if len(m.cells) == 0 {
		return
	}
	m.cells[m.next] = p
	m.next = (m.next + 1) % len(m.cells)
	if m.size < len(m.cells) {
		m.size++
	}
}

func (m *Memory) Contains(p world.Position) bool {
	for i := 0; i < m.size; i++ {
		if m.cells[i] == p {
			return true
		}
	}
	return false
}

func (m *Memory) Clear() {
	m.next = 0
	m.size = 0
}

func (m *Memory) Len() int {
	return m.size
}

func (m *Memory) Cap() int {
	return len(m.cells)
}
