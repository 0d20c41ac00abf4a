package sim

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"runtime"
	"sync"

	"myrmex/internal/colony"
	"myrmex/internal/model"
	"myrmex/internal/world"
)

// ErrSimulationOver is returned by NextGen once every morsel is drained and
// every ant has delivered its load.
var ErrSimulationOver = errors.New("simulation is over")

// DefaultGenerationCeiling bounds runs that never settle, matching the
// engine's historical 150000-cycle cap.
const DefaultGenerationCeiling uint64 = 150000

// Seed offsets keep each random concern on its own stream. Ant i draws from
// seed+antSeedOffset+i.
const (
	antSeedOffset    = 1000
	morselSeedOffset = 2000
)

const maxPlacementDraws = 10000

// Simulation owns the grid, the trace field, the landmarks and the colony,
// and advances them one generation per NextGen call. Between calls the world
// is frozen. A Simulation is not safe for concurrent use; the decide phase
// runs its own worker pool internally.
type Simulation struct {
	cfg     Config
	grid    world.Grid
	field   *world.TraceField
	nest    world.Nest
	morsels []world.Morsel
	ants    []*colony.Ant

	morselsByCell map[world.Position][]int

	generation  uint64
	over        bool
	initialFood int
	workers     int

	pickups         int
	deliveries      int
	totalPickups    int
	totalDeliveries int
}

func New(cfg Config) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	grid, err := world.NewGrid(world.Dimension{Width: cfg.Width, Height: cfg.Height})
	if err != nil {
		return nil, err
	}
	field, err := world.NewTraceField(grid, cfg.MaxTraceConcentration, cfg.DecayLaw, cfg.DecayRate)
	if err != nil {
		return nil, err
	}
	morsels, err := placeMorsels(grid, cfg)
	if err != nil {
		return nil, err
	}

	morselsByCell := make(map[world.Position][]int, len(morsels))
	initialFood := 0
	for i, m := range morsels {
		morselsByCell[m.Location] = append(morselsByCell[m.Location], i)
		initialFood += m.Remaining
	}

	traits := colony.Traits{
		SensingRadius:   cfg.SensingRadius,
		MemorySpan:      cfg.MemorySpan,
		MaxStrength:     cfg.MaxTraceConcentration,
		StrengthDecay:   cfg.TraceDecrement,
		ReinforceRatio:  cfg.TraceIncreaseRatio,
		SignalThreshold: cfg.SignalThreshold,
	}
	ants := make([]*colony.Ant, cfg.AntCount)
	for i := range ants {
		rng := rand.New(rand.NewSource(cfg.Seed + antSeedOffset + int64(i)))
		ants[i] = colony.NewAnt(cfg.NestLocation, traits, rng)
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(ants) {
		workers = len(ants)
	}

	return &Simulation{
		cfg:           cfg,
		grid:          grid,
		field:         field,
		nest:          world.Nest{Location: cfg.NestLocation},
		morsels:       morsels,
		ants:          ants,
		morselsByCell: morselsByCell,
		initialFood:   initialFood,
		workers:       workers,
	}, nil
}

func placeMorsels(grid world.Grid, cfg Config) ([]world.Morsel, error) {
	if len(cfg.MorselLocations) > 0 {
		morsels := make([]world.Morsel, len(cfg.MorselLocations))
		for i, p := range cfg.MorselLocations {
			morsels[i] = world.Morsel{Location: p, Remaining: cfg.MorselStorage}
		}
		return morsels, nil
	}

	rng := rand.New(rand.NewSource(cfg.Seed + morselSeedOffset))
	dim := grid.Dim()
	morsels := make([]world.Morsel, 0, cfg.MorselCount)
	for draws := 0; len(morsels) < cfg.MorselCount; draws++ {
		if draws > maxPlacementDraws {
			return nil, fmt.Errorf("no free cell for morsel placement after %d draws", draws)
		}
		p := world.Position{X: rng.Intn(dim.Width), Y: rng.Intn(dim.Height)}
		if p == cfg.NestLocation {
			continue
		}
		morsels = append(morsels, world.Morsel{Location: p, Remaining: cfg.MorselStorage})
	}
	return morsels, nil
}

func (s *Simulation) Generation() uint64 {
	return s.generation
}

// IsOver reports the termination latch: every morsel drained and no ant
// still carrying. Once set it never clears.
func (s *Simulation) IsOver() bool {
	return s.over
}

func (s *Simulation) InitialFood() int {
	return s.initialFood
}

func (s *Simulation) Config() Config {
	return s.cfg
}

// Grid implements colony.View.
func (s *Simulation) Grid() world.Grid {
	return s.grid
}

// Concentration implements colony.View.
func (s *Simulation) Concentration(p world.Position, kind world.TraceKind) float64 {
	return s.field.ConcentrationAt(p, kind)
}

// NestAt implements colony.View.
func (s *Simulation) NestAt(p world.Position) bool {
	return p == s.nest.Location
}

// StockedMorselAt implements colony.View.
func (s *Simulation) StockedMorselAt(p world.Position) bool {
	for _, i := range s.morselsByCell[p] {
		if !s.morsels[i].Depleted() {
			return true
		}
	}
	return false
}

// NextGen advances exactly one generation: arrivals resolve, every ant
// decides against the frozen field, intents apply, the field decays. The
// call is atomic; the context is honored only between generations.
func (s *Simulation) NextGen(ctx context.Context) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return s.generation, err
	}
	if s.over {
		return s.generation, ErrSimulationOver
	}

	s.pickups = 0
	s.deliveries = 0

	s.arrive()
	intents := s.decide()
	s.apply(intents)
	s.field.Decay()

	s.generation++
	s.over = s.settled()
	return s.generation, nil
}

// arrive resolves the position each ant reached at the end of the previous
// generation: trail memory records the cell, then task transitions fire.
// Runs in ant-index order so contended pickups drain stock deterministically.
func (s *Simulation) arrive() {
	for _, a := range s.ants {
		a.RememberHere()
		switch a.Task {
		case colony.TaskCarrying:
			if a.Position == s.nest.Location {
				s.nest.Store()
				a.Deliver()
				s.deliveries++
				s.totalDeliveries++
				continue
			}
		case colony.TaskForaging:
			if s.takeFromMorselAt(a.Position) {
				a.PickUp()
				s.pickups++
				s.totalPickups++
				continue
			}
		}
		if s.landmarkAt(a.Position) {
			a.Refresh()
		}
	}
}

func (s *Simulation) takeFromMorselAt(p world.Position) bool {
	for _, i := range s.morselsByCell[p] {
		if s.morsels[i].Take() {
			return true
		}
	}
	return false
}

func (s *Simulation) landmarkAt(p world.Position) bool {
	return p == s.nest.Location || s.StockedMorselAt(p)
}

// decide fans the colony out over the worker pool and reassembles intents in
// ant order. Each ant owns its generator, so the schedule cannot change the
// outcome.
func (s *Simulation) decide() []colony.Intent {
	type job struct {
		idx int
		ant *colony.Ant
	}
	type result struct {
		idx    int
		intent colony.Intent
	}

	jobs := make(chan job)
	results := make(chan result, len(s.ants))

	workerCount := s.workers
	if workerCount > len(s.ants) {
		workerCount = len(s.ants)
	}

	var wg sync.WaitGroup
	wg.Add(workerCount)
	for w := 0; w < workerCount; w++ {
		go func() {
			defer wg.Done()
			for j := range jobs {
				results <- result{idx: j.idx, intent: j.ant.Decide(s)}
			}
		}()
	}

	for i := range s.ants {
		jobs <- job{idx: i, ant: s.ants[i]}
	}
	close(jobs)

	wg.Wait()
	close(results)

	intents := make([]colony.Intent, len(s.ants))
	for res := range results {
		intents[res.idx] = res.intent
	}
	return intents
}

// apply commits the generation's intents: suppressions first, then deposits,
// then moves. Each class is order-free, so the whole step is deterministic.
func (s *Simulation) apply(intents []colony.Intent) {
	for _, intent := range intents {
		if intent.Suppress != nil {
			s.field.Suppress(intent.Suppress.Location, intent.Suppress.Kind)
		}
	}
	for _, intent := range intents {
		if intent.Deposit != nil {
			s.field.Deposit(intent.Deposit.Location, intent.Deposit.Kind, intent.Deposit.Amount)
		}
	}
	for i, intent := range intents {
		s.ants[i].Position = s.grid.Clamp(intent.Move)
	}
}

func (s *Simulation) settled() bool {
	for i := range s.morsels {
		if !s.morsels[i].Depleted() {
			return false
		}
	}
	for _, a := range s.ants {
		if a.Task == colony.TaskCarrying {
			return false
		}
	}
	return true
}

// Snapshot copies the world at the current generation boundary. The copy is
// independent of the simulation.
func (s *Simulation) Snapshot() world.Snapshot {
	snap := world.Snapshot{
		Generation: s.generation,
		Dim:        s.grid.Dim(),
		Nest:       world.NestState{Location: s.nest.Location, Stored: s.nest.Stored},
		Morsels:    make([]world.MorselState, len(s.morsels)),
		Ants:       make([]world.AntState, len(s.ants)),
		Traces:     s.field.ActiveCells(),
	}
	for i, m := range s.morsels {
		snap.Morsels[i] = world.MorselState{Location: m.Location, Remaining: m.Remaining}
	}
	for i, a := range s.ants {
		snap.Ants[i] = world.AntState{Location: a.Position, Carrying: a.Task == colony.TaskCarrying}
	}
	return snap
}

// EntitiesAt lists the entity kinds occupying one cell, nest before morsels
// before ants. Cells are never exclusive.
func (s *Simulation) EntitiesAt(p world.Position) []world.EntityKind {
	var kinds []world.EntityKind
	if p == s.nest.Location {
		kinds = append(kinds, world.KindNest)
	}
	for range s.morselsByCell[p] {
		kinds = append(kinds, world.KindMorsel)
	}
	for _, a := range s.ants {
		if a.Position == p {
			kinds = append(kinds, world.KindAnt)
		}
	}
	return kinds
}

// Diagnostics summarizes the current generation's counters.
func (s *Simulation) Diagnostics() model.GenerationDiagnostics {
	remaining := 0
	activeMorsels := 0
	for i := range s.morsels {
		remaining += s.morsels[i].Remaining
		if !s.morsels[i].Depleted() {
			activeMorsels++
		}
	}
	carrying := 0
	for _, a := range s.ants {
		if a.Task == colony.TaskCarrying {
			carrying++
		}
	}
	return model.GenerationDiagnostics{
		Generation:      s.generation,
		Delivered:       s.nest.Stored,
		RemainingFood:   remaining,
		CarryingCount:   carrying,
		ForagingCount:   len(s.ants) - carrying,
		ActiveMorsels:   activeMorsels,
		HomeTraceTotal:  s.field.Total(world.TraceHomeBound),
		FoodTraceTotal:  s.field.Total(world.TraceFoodBound),
		Pickups:         s.pickups,
		Deliveries:      s.deliveries,
		TotalPickups:    s.totalPickups,
		TotalDeliveries: s.totalDeliveries,
	}
}
