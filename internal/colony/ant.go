package colony

import (
	"fmt"
	"math/rand"

	"myrmex/internal/world"
)

// Task is the two-state work cycle of an ant.
type Task int

const (
	TaskForaging Task = iota
	TaskCarrying
)

func (t Task) String() string {
	switch t {
	case TaskForaging:
		return "foraging"
	case TaskCarrying:
		return "carrying"
	default:
		return fmt.Sprintf("task(%d)", int(t))
	}
}

// Deposits is the scent this task lays while walking: foragers mark the way
// back home, carriers mark the way back to food.
func (t Task) Deposits() world.TraceKind {
	if t == TaskCarrying {
		return world.TraceFoodBound
	}
	return world.TraceHomeBound
}

// Follows is the scent this task steers by, the one laid by ants on the
// opposite leg of the cycle.
func (t Task) Follows() world.TraceKind {
	if t == TaskCarrying {
		return world.TraceHomeBound
	}
	return world.TraceFoodBound
}

// View is the read-only slice of the world an ant decides against. The
// backing state is frozen for the whole decide phase.
type View interface {
	Grid() world.Grid
	Concentration(p world.Position, kind world.TraceKind) float64
	NestAt(p world.Position) bool
	StockedMorselAt(p world.Position) bool
}

// Traits are the colony-wide parameters every ant shares.
type Traits struct {
	SensingRadius   int
	MemorySpan      int
	MaxStrength     float64
	StrengthDecay   float64
	ReinforceRatio  float64
	SignalThreshold float64
}

type TraceDeposit struct {
	Location world.Position
	Kind     world.TraceKind
	Amount   float64
}

type TraceSuppression struct {
	Location world.Position
	Kind     world.TraceKind
}

// Intent is the outcome of one ant's decide phase. The simulation applies all
// intents after every ant has decided; an ant never touches shared state
// while deciding.
type Intent struct {
	Move     world.Position
	Deposit  *TraceDeposit
	Suppress *TraceSuppression
}

// Ant is a single agent. All of its randomness flows through the injected
// generator, so a fixed seed reproduces the same walk regardless of how the
// decide phase is scheduled.
type Ant struct {
	Position world.Position
	Task     Task

	home     world.Position
	traits   Traits
	strength float64
	memory   *Memory
	rng      *rand.Rand
}

func NewAnt(home world.Position, traits Traits, rng *rand.Rand) *Ant {
	return &Ant{
		Position: home,
		Task:     TaskForaging,
		home:     home,
		traits:   traits,
		strength: traits.MaxStrength,
		memory:   NewMemory(traits.MemorySpan),
		rng:      rng,
	}
}

func (a *Ant) Strength() float64 {
	return a.strength
}

// RememberHere records the current cell ahead of arrival effects, so a task
// switch clears it along with the rest of the trail memory.
func (a *Ant) RememberHere() {
	a.memory.Push(a.Position)
}

// PickUp switches to Carrying after the ant lifts a unit from a morsel.
func (a *Ant) PickUp() {
	a.Task = TaskCarrying
	a.memory.Clear()
	a.strength = a.traits.MaxStrength
}

// Deliver switches back to Foraging after the ant drops its unit at the nest.
func (a *Ant) Deliver() {
	a.Task = TaskForaging
	a.memory.Clear()
	a.strength = a.traits.MaxStrength
}

// Refresh resets deposit strength on landmark contact without a task switch.
// Strength encodes distance walked since the last landmark, and here that
// distance is zero.
func (a *Ant) Refresh() {
	a.strength = a.traits.MaxStrength
}

// Decide computes the ant's intent for this generation from the frozen view.
// Only private state (memory, strength, generator) is mutated.
func (a *Ant) Decide(v View) Intent {
	border := v.Grid().Neighborhood(a.Position, a.traits.SensingRadius)

	intent := Intent{}
	intent.Deposit = a.layTrace(v)
	intent.Suppress = a.condemnTrail(v, border)
	intent.Move = a.chooseMove(v, border)
	return intent
}

// layTrace yields this generation's deposit at the ant's pre-move cell. The
// amount is the remaining strength after the per-step decrement; home-bound
// deposits onto an existing home trail earn a reinforcement bonus read from
// the frozen field, which keeps all deposits commutative.
func (a *Ant) layTrace(v View) *TraceDeposit {
	a.strength -= a.traits.StrengthDecay
	if a.strength < 0 {
		a.strength = 0
	}
	amount := a.strength
	kind := a.Task.Deposits()
	if kind == world.TraceHomeBound {
		if existing := v.Concentration(a.Position, kind); existing > 0 {
			amount += existing * a.traits.ReinforceRatio
		}
	}
	if amount <= 0 {
		return nil
	}
	return &TraceDeposit{Location: a.Position, Kind: kind, Amount: amount}
}

// condemnTrail demotes a misleading trail: no target landmark in sight while
// the ant's own cell is a strict local maximum of the scent it follows means
// the trail dead-ends here.
func (a *Ant) condemnTrail(v View, border []world.Position) *TraceSuppression {
	for _, p := range border {
		if a.targetAt(v, p) {
			return nil
		}
	}
	followed := a.Task.Follows()
	own := v.Concentration(a.Position, followed)
	if own <= a.traits.SignalThreshold {
		return nil
	}
	for _, p := range border {
		if v.Concentration(p, followed) >= own {
			return nil
		}
	}
	return &TraceSuppression{Location: a.Position, Kind: followed}
}

func (a *Ant) chooseMove(v View, border []world.Position) world.Position {
	if target, ok := a.nearestTarget(v, border); ok {
		return v.Grid().StepToward(a.Position, target)
	}
	if cell, ok := a.bestScent(v, border); ok {
		return cell
	}
	if a.Task == TaskCarrying || a.isLost(v) {
		return a.stepHome(v)
	}
	return a.randomStep(v, border)
}

func (a *Ant) targetAt(v View, p world.Position) bool {
	if a.Task == TaskCarrying {
		return v.NestAt(p)
	}
	return v.StockedMorselAt(p)
}

// nearestTarget finds the closest visible target landmark; distance ties are
// broken by the ant's own generator.
func (a *Ant) nearestTarget(v View, border []world.Position) (world.Position, bool) {
	var candidates []world.Position
	best := 0
	for _, p := range border {
		if !a.targetAt(v, p) {
			continue
		}
		d := p.ChebyshevDistance(a.Position)
		switch {
		case len(candidates) == 0 || d < best:
			best = d
			candidates = append(candidates[:0], p)
		case d == best:
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return world.Position{}, false
	}
	return candidates[a.rng.Intn(len(candidates))], true
}

// bestScent picks the unremembered border cell with the highest followed
// concentration above the signal threshold; concentration ties are broken by
// the ant's own generator.
func (a *Ant) bestScent(v View, border []world.Position) (world.Position, bool) {
	followed := a.Task.Follows()
	var candidates []world.Position
	best := 0.0
	for _, p := range border {
		if a.memory.Contains(p) {
			continue
		}
		c := v.Concentration(p, followed)
		if c <= a.traits.SignalThreshold {
			continue
		}
		switch {
		case len(candidates) == 0 || c > best:
			best = c
			candidates = append(candidates[:0], p)
		case c == best:
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return world.Position{}, false
	}
	return candidates[a.rng.Intn(len(candidates))], true
}

// isLost reports whether the ant has walked its strength down to zero on a
// cell with no scent of either kind left.
func (a *Ant) isLost(v View) bool {
	if a.strength > 0 {
		return false
	}
	for _, kind := range world.TraceKinds {
		if v.Concentration(a.Position, kind) > 0 {
			return false
		}
	}
	return true
}

// stepHome takes one quantized step toward the nest, jittered: the ant aims
// at a random ring cell around the nest with ring radius drawn below its
// current distance, which spreads return paths over the field instead of
// collapsing them onto one line.
func (a *Ant) stepHome(v View) world.Position {
	grid := v.Grid()
	target := a.home
	if dist := a.Position.ChebyshevDistance(a.home); dist > 1 {
		if radius := a.rng.Intn(dist); radius > 0 {
			dx, dy := ringOffset(a.rng, radius)
			target = grid.Clamp(world.Position{X: a.home.X + dx, Y: a.home.Y + dy})
		}
	}
	return grid.StepToward(a.Position, target)
}

// randomStep walks to a uniformly drawn border cell, preferring cells not in
// memory; when every border cell is remembered, any of them will do.
func (a *Ant) randomStep(v View, border []world.Position) world.Position {
	if len(border) == 0 {
		return a.Position
	}
	for _, i := range a.rng.Perm(len(border)) {
		if !a.memory.Contains(border[i]) {
			return border[i]
		}
	}
	return border[a.rng.Intn(len(border))]
}

// ringOffset draws a uniform offset with Chebyshev norm exactly radius. The
// ring has 8*radius cells, four edges of 2*radius each with corners counted
// once.
func ringOffset(rng *rand.Rand, radius int) (int, int) {
	if radius <= 0 {
		return 0, 0
	}
	i := rng.Intn(8 * radius)
	k := i%(2*radius) - radius
	switch i / (2 * radius) {
	case 0:
		return k, -radius
	case 1:
		return radius, k
	case 2:
		return -k, radius
	default:
		return -radius, -k
	}
}
