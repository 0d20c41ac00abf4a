package colony

import (
	"math"
	"math/rand"
	"testing"

	"myrmex/internal/world"
)

type stubView struct {
	grid    world.Grid
	home    map[world.Position]float64
	food    map[world.Position]float64
	nest    world.Position
	hasNest bool
	morsels map[world.Position]bool
}

func newStubView(t *testing.T, w, h int) *stubView {
	t.Helper()
	grid, err := world.NewGrid(world.Dimension{Width: w, Height: h})
	if err != nil {
		t.Fatalf("new grid: %v", err)
	}
	return &stubView{
		grid:    grid,
		home:    map[world.Position]float64{},
		food:    map[world.Position]float64{},
		morsels: map[world.Position]bool{},
	}
}

func (v *stubView) Grid() world.Grid {
	return v.grid
}

func (v *stubView) Concentration(p world.Position, kind world.TraceKind) float64 {
	if kind == world.TraceHomeBound {
		return v.home[p]
	}
	return v.food[p]
}

func (v *stubView) NestAt(p world.Position) bool {
	return v.hasNest && p == v.nest
}

func (v *stubView) StockedMorselAt(p world.Position) bool {
	return v.morsels[p]
}

func testTraits() Traits {
	return Traits{
		SensingRadius:   1,
		MemorySpan:      10,
		MaxStrength:     100,
		StrengthDecay:   2,
		ReinforceRatio:  0.1,
		SignalThreshold: 0,
	}
}

func newTestAnt(at world.Position, traits Traits, seed int64) *Ant {
	a := NewAnt(at, traits, rand.New(rand.NewSource(seed)))
	return a
}

func TestTaskScentMapping(t *testing.T) {
	if TaskForaging.Deposits() != world.TraceHomeBound {
		t.Fatalf("foraging deposits %v want home", TaskForaging.Deposits())
	}
	if TaskForaging.Follows() != world.TraceFoodBound {
		t.Fatalf("foraging follows %v want food", TaskForaging.Follows())
	}
	if TaskCarrying.Deposits() != world.TraceFoodBound {
		t.Fatalf("carrying deposits %v want food", TaskCarrying.Deposits())
	}
	if TaskCarrying.Follows() != world.TraceHomeBound {
		t.Fatalf("carrying follows %v want home", TaskCarrying.Follows())
	}
}

func TestForagerMovesOntoVisibleMorsel(t *testing.T) {
	v := newStubView(t, 5, 5)
	v.morsels[world.Position{X: 3, Y: 2}] = true

	for seed := int64(0); seed < 5; seed++ {
		a := newTestAnt(world.Position{X: 2, Y: 2}, testTraits(), seed)
		intent := a.Decide(v)
		if intent.Move != (world.Position{X: 3, Y: 2}) {
			t.Fatalf("seed %d: move=%+v want morsel cell", seed, intent.Move)
		}
	}
}

func TestCarrierMovesOntoVisibleNest(t *testing.T) {
	v := newStubView(t, 5, 5)
	v.hasNest = true
	v.nest = world.Position{X: 1, Y: 1}

	a := newTestAnt(world.Position{X: 2, Y: 2}, testTraits(), 7)
	a.Task = TaskCarrying
	intent := a.Decide(v)
	if intent.Move != v.nest {
		t.Fatalf("move=%+v want nest cell", intent.Move)
	}
}

func TestVisibleMorselBeatsScent(t *testing.T) {
	v := newStubView(t, 5, 5)
	v.morsels[world.Position{X: 1, Y: 2}] = true
	v.food[world.Position{X: 3, Y: 2}] = 99

	a := newTestAnt(world.Position{X: 2, Y: 2}, testTraits(), 3)
	intent := a.Decide(v)
	if intent.Move != (world.Position{X: 1, Y: 2}) {
		t.Fatalf("move=%+v want morsel over scent", intent.Move)
	}
}

func TestForagerFollowsStrongestFoodScent(t *testing.T) {
	v := newStubView(t, 5, 5)
	v.food[world.Position{X: 1, Y: 1}] = 5
	v.food[world.Position{X: 3, Y: 3}] = 9

	a := newTestAnt(world.Position{X: 2, Y: 2}, testTraits(), 11)
	intent := a.Decide(v)
	if intent.Move != (world.Position{X: 3, Y: 3}) {
		t.Fatalf("move=%+v want strongest scent cell", intent.Move)
	}
}

func TestScentFollowingSkipsRememberedCells(t *testing.T) {
	v := newStubView(t, 5, 5)
	strongest := world.Position{X: 3, Y: 3}
	second := world.Position{X: 1, Y: 1}
	v.food[strongest] = 9
	v.food[second] = 5

	a := newTestAnt(world.Position{X: 2, Y: 2}, testTraits(), 11)
	a.memory.Push(strongest)
	intent := a.Decide(v)
	if intent.Move != second {
		t.Fatalf("move=%+v want second-best unremembered cell", intent.Move)
	}
}

func TestScentTieBreakIsSeedStable(t *testing.T) {
	build := func() *stubView {
		v := newStubView(t, 5, 5)
		v.food[world.Position{X: 1, Y: 1}] = 7
		v.food[world.Position{X: 3, Y: 3}] = 7
		return v
	}

	first := newTestAnt(world.Position{X: 2, Y: 2}, testTraits(), 42).Decide(build())
	second := newTestAnt(world.Position{X: 2, Y: 2}, testTraits(), 42).Decide(build())
	if first.Move != second.Move {
		t.Fatalf("same seed chose %+v then %+v", first.Move, second.Move)
	}
}

func TestLayTraceDecrementsStrengthEachGeneration(t *testing.T) {
	v := newStubView(t, 5, 5)
	a := newTestAnt(world.Position{X: 2, Y: 2}, testTraits(), 1)

	intent := a.Decide(v)
	if intent.Deposit == nil {
		t.Fatalf("first generation laid no trace")
	}
	if intent.Deposit.Kind != world.TraceHomeBound {
		t.Fatalf("forager laid %v want home scent", intent.Deposit.Kind)
	}
	if intent.Deposit.Location != (world.Position{X: 2, Y: 2}) {
		t.Fatalf("deposit at %+v want pre-move cell", intent.Deposit.Location)
	}
	if intent.Deposit.Amount != 98 {
		t.Fatalf("first amount=%v want=98", intent.Deposit.Amount)
	}

	a.Position = intent.Move
	intent = a.Decide(v)
	if intent.Deposit == nil || intent.Deposit.Amount != 96 {
		t.Fatalf("second deposit=%+v want amount 96", intent.Deposit)
	}
}

func TestHomeScentDepositEarnsReinforcementBonus(t *testing.T) {
	v := newStubView(t, 5, 5)
	at := world.Position{X: 2, Y: 2}
	v.home[at] = 50

	a := newTestAnt(at, testTraits(), 1)
	intent := a.Decide(v)
	if intent.Deposit == nil {
		t.Fatalf("no deposit")
	}
	if math.Abs(intent.Deposit.Amount-103) > 1e-9 {
		t.Fatalf("amount=%v want=103 (98 strength + 50*0.1 bonus)", intent.Deposit.Amount)
	}
}

func TestCarrierDepositGetsNoBonus(t *testing.T) {
	v := newStubView(t, 5, 5)
	at := world.Position{X: 2, Y: 2}
	v.food[at] = 50

	a := newTestAnt(at, testTraits(), 1)
	a.Task = TaskCarrying
	intent := a.Decide(v)
	if intent.Deposit == nil || intent.Deposit.Kind != world.TraceFoodBound {
		t.Fatalf("deposit=%+v want food scent", intent.Deposit)
	}
	if intent.Deposit.Amount != 98 {
		t.Fatalf("amount=%v want=98 without bonus", intent.Deposit.Amount)
	}
}

func TestExhaustedForagerStillReinforcesHomeTrail(t *testing.T) {
	traits := testTraits()
	traits.StrengthDecay = traits.MaxStrength
	v := newStubView(t, 5, 5)
	at := world.Position{X: 2, Y: 2}
	v.home[at] = 40

	a := newTestAnt(at, traits, 1)
	intent := a.Decide(v)
	if intent.Deposit == nil {
		t.Fatalf("bonus-only deposit dropped")
	}
	if math.Abs(intent.Deposit.Amount-4) > 1e-9 {
		t.Fatalf("amount=%v want=4 (bonus only)", intent.Deposit.Amount)
	}
}

func TestExhaustedCarrierLaysNothing(t *testing.T) {
	traits := testTraits()
	traits.StrengthDecay = traits.MaxStrength
	v := newStubView(t, 5, 5)

	a := newTestAnt(world.Position{X: 2, Y: 2}, traits, 1)
	a.Task = TaskCarrying
	if intent := a.Decide(v); intent.Deposit != nil {
		t.Fatalf("deposit=%+v want nil at zero strength", intent.Deposit)
	}
}

func TestCondemnTrailOnStrictLocalMaximum(t *testing.T) {
	v := newStubView(t, 5, 5)
	at := world.Position{X: 2, Y: 2}
	v.food[at] = 9
	v.food[world.Position{X: 1, Y: 2}] = 3

	a := newTestAnt(at, testTraits(), 1)
	intent := a.Decide(v)
	if intent.Suppress == nil {
		t.Fatalf("dead-end trail not condemned")
	}
	if intent.Suppress.Location != at || intent.Suppress.Kind != world.TraceFoodBound {
		t.Fatalf("suppress=%+v want own-cell food scent", intent.Suppress)
	}
}

func TestNoCondemnationWhenNeighborMatchesOwnCell(t *testing.T) {
	v := newStubView(t, 5, 5)
	at := world.Position{X: 2, Y: 2}
	v.food[at] = 9
	v.food[world.Position{X: 3, Y: 2}] = 9

	a := newTestAnt(at, testTraits(), 1)
	if intent := a.Decide(v); intent.Suppress != nil {
		t.Fatalf("suppressed a trail that still leads somewhere: %+v", intent.Suppress)
	}
}

func TestNoCondemnationWithTargetInSight(t *testing.T) {
	v := newStubView(t, 5, 5)
	at := world.Position{X: 2, Y: 2}
	v.food[at] = 9
	v.morsels[world.Position{X: 1, Y: 1}] = true

	a := newTestAnt(at, testTraits(), 1)
	if intent := a.Decide(v); intent.Suppress != nil {
		t.Fatalf("suppressed with target visible: %+v", intent.Suppress)
	}
}

func TestCarrierOnEmptyFieldReachesNest(t *testing.T) {
	v := newStubView(t, 12, 12)
	home := world.Position{X: 0, Y: 0}
	start := world.Position{X: 9, Y: 9}

	a := newTestAnt(home, testTraits(), 5)
	a.Position = start
	a.Task = TaskCarrying

	dist := start.ChebyshevDistance(home)
	for step := 0; step < dist; step++ {
		before := a.Position.ChebyshevDistance(home)
		intent := a.Decide(v)
		after := intent.Move.ChebyshevDistance(home)
		if after >= before {
			t.Fatalf("step %d: distance %d -> %d did not shrink", step, before, after)
		}
		a.Position = intent.Move
	}
	if a.Position != home {
		t.Fatalf("carrier at %+v after %d steps, want nest", a.Position, dist)
	}
}

func TestLostForagerHeadsHome(t *testing.T) {
	traits := testTraits()
	traits.StrengthDecay = traits.MaxStrength
	v := newStubView(t, 12, 12)
	home := world.Position{X: 0, Y: 0}

	a := newTestAnt(home, traits, 9)
	a.Position = world.Position{X: 8, Y: 8}
	a.Decide(v)

	before := a.Position.ChebyshevDistance(home)
	intent := a.Decide(v)
	if after := intent.Move.ChebyshevDistance(home); after >= before {
		t.Fatalf("lost forager distance %d -> %d did not shrink", before, after)
	}
}

func TestForagerRandomStepPrefersUnrememberedCells(t *testing.T) {
	v := newStubView(t, 5, 5)
	at := world.Position{X: 2, Y: 2}
	free := world.Position{X: 3, Y: 3}

	a := newTestAnt(at, testTraits(), 13)
	for _, p := range v.grid.Neighborhood(at, 1) {
		if p != free {
			a.memory.Push(p)
		}
	}
	intent := a.Decide(v)
	if intent.Move != free {
		t.Fatalf("move=%+v want only unremembered cell %+v", intent.Move, free)
	}
}

func TestPickUpAndDeliverResetTrailState(t *testing.T) {
	a := newTestAnt(world.Position{X: 2, Y: 2}, testTraits(), 1)
	a.RememberHere()
	a.strength = 10

	a.PickUp()
	if a.Task != TaskCarrying {
		t.Fatalf("task=%v want carrying", a.Task)
	}
	if a.memory.Len() != 0 {
		t.Fatalf("memory survived pickup")
	}
	if a.Strength() != testTraits().MaxStrength {
		t.Fatalf("strength=%v want reset to max", a.Strength())
	}

	a.RememberHere()
	a.strength = 10
	a.Deliver()
	if a.Task != TaskForaging {
		t.Fatalf("task=%v want foraging", a.Task)
	}
	if a.memory.Len() != 0 || a.Strength() != testTraits().MaxStrength {
		t.Fatalf("delivery did not reset trail state")
	}
}

func TestRingOffsetStaysOnRing(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for radius := 1; radius <= 4; radius++ {
		for i := 0; i < 200; i++ {
			dx, dy := ringOffset(rng, radius)
			norm := intMax(intAbsTest(dx), intAbsTest(dy))
			if norm != radius {
				t.Fatalf("offset (%d,%d) norm=%d want=%d", dx, dy, norm, radius)
			}
		}
	}
}

func intAbsTest(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func intMax(a, b int) int {
	if a > b {
		return a
	}
	return b
}
