// Package myrmex is the public face of the colony simulation engine: it
// builds configurations from presets or files, drives runs to termination,
// and persists results to a store and an artifacts directory.
package myrmex

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"myrmex/internal/config"
	"myrmex/internal/model"
	"myrmex/internal/sim"
	"myrmex/internal/stats"
	"myrmex/internal/storage"
	"myrmex/internal/world"
)

const (
	defaultRunsDir = "runs"
	defaultDBPath  = "myrmex.db"
)

// ErrCeilingExceeded reports a run that did not settle within its generation
// ceiling. The run's record and artifacts are persisted before the error is
// returned, so the stalled run stays inspectable.
var ErrCeilingExceeded = errors.New("generation ceiling exceeded")

type Options struct {
	StoreKind string // "memory" (default) or "sqlite"
	DBPath    string
	RunsDir   string
}

type Client struct {
	store       storage.Store
	runsDir     string
	initialized bool
}

// RunRequest describes one simulation run. ConfigPath wins over Preset; both
// empty means the classic preset. The pointer and zero-value override fields
// layer on top of whatever the preset or file provided.
type RunRequest struct {
	Preset     string
	ConfigPath string
	// Scenario labels the run in records and listings. Defaults to the
	// preset name or the config file's base name.
	Scenario string

	Seed           *int64
	Ants           int
	Workers        int
	MaxGenerations uint64
	SampleEvery    int

	// OnFrame, when set, receives the world every FrameEvery generations
	// (and at the final one) for live viewing. FrameEvery zero means every
	// generation.
	OnFrame    func(world.Snapshot, model.GenerationDiagnostics)
	FrameEvery uint64
}

type RunSummary struct {
	RunID        string
	Scenario     string
	Seed         int64
	Ants         int
	Workers      int
	Generations  uint64
	Delivered    int
	InitialFood  int
	Terminated   bool
	ArtifactsDir string
	Duration     time.Duration
}

type RunsRequest struct {
	Limit int
}

type RunItem struct {
	RunID        string
	Scenario     string
	Seed         int64
	Ants         int
	Generations  uint64
	Delivered    int
	Terminated   bool
	CreatedAtUTC string
}

type DiagnosticsRequest struct {
	RunID  string
	Latest bool
	// Limit keeps the newest rows of the series (<=0 keeps all).
	Limit int
}

type SnapshotRequest struct {
	RunID  string
	Latest bool
}

// ReplayRequest rebuilds a run's world deterministically from its
// configuration and plays it forward, without touching the store.
type ReplayRequest struct {
	Preset     string
	ConfigPath string

	Seed    *int64
	Ants    int
	Workers int

	// Generation stops the replay at a fixed generation; zero plays until
	// termination or the configured ceiling.
	Generation     uint64
	MaxGenerations uint64
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = "memory"
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	runsDir := opts.RunsDir
	if runsDir == "" {
		runsDir = defaultRunsDir
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}

	return &Client{store: store, runsDir: runsDir}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) RunsDir() string {
	return c.runsDir
}

// Run builds the configuration, drives the simulation to termination or the
// generation ceiling, and persists the outcome. A run that hits the ceiling
// is persisted as unterminated and reported via ErrCeilingExceeded alongside
// its summary.
func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	fileCfg, scenario, err := config.Resolve(req.Preset, req.ConfigPath)
	if err != nil {
		return RunSummary{}, err
	}
	if req.Scenario != "" {
		scenario = req.Scenario
	}
	applyOverrides(fileCfg, req.Seed, req.Ants, req.Workers, req.MaxGenerations, req.SampleEvery)
	if err := fileCfg.Validate(); err != nil {
		return RunSummary{}, err
	}

	simCfg, err := fileCfg.SimConfig()
	if err != nil {
		return RunSummary{}, err
	}
	s, err := sim.New(simCfg)
	if err != nil {
		return RunSummary{}, err
	}

	maxGenerations := fileCfg.Run.MaxGenerations
	if maxGenerations == 0 {
		maxGenerations = sim.DefaultGenerationCeiling
	}
	sampleEvery := uint64(fileCfg.Run.SampleEvery)
	if sampleEvery == 0 {
		sampleEvery = 1
	}
	frameEvery := req.FrameEvery
	if frameEvery == 0 {
		frameEvery = 1
	}

	runID := fmt.Sprintf("%s-%d-%s", scenario, simCfg.Seed, uuid.NewString()[:8])
	started := time.Now().UTC()

	series := make([]model.GenerationDiagnostics, 0, 256)
	for !s.IsOver() && s.Generation() < maxGenerations {
		gen, err := s.NextGen(ctx)
		if err != nil {
			return RunSummary{}, err
		}
		if gen%sampleEvery == 0 || s.IsOver() || gen == maxGenerations {
			series = append(series, s.Diagnostics())
		}
		if req.OnFrame != nil && (gen%frameEvery == 0 || s.IsOver() || gen == maxGenerations) {
			req.OnFrame(s.Snapshot(), s.Diagnostics())
		}
	}

	finished := time.Now().UTC()
	diag := s.Diagnostics()
	finalSnap := s.Snapshot()
	run := model.RunRecord{
		VersionedRecord: storage.Stamp(),
		ID:              runID,
		Scenario:        scenario,
		Seed:            simCfg.Seed,
		Width:           simCfg.Width,
		Height:          simCfg.Height,
		Ants:            simCfg.AntCount,
		MorselCount:     len(finalSnap.Morsels),
		MorselStorage:   simCfg.MorselStorage,
		Workers:         simCfg.Workers,
		DecayLaw:        simCfg.DecayLaw.String(),
		Generations:     s.Generation(),
		Delivered:       diag.Delivered,
		InitialFood:     s.InitialFood(),
		Terminated:      s.IsOver(),
		StartedUTC:      started.Format(time.RFC3339Nano),
		FinishedUTC:     finished.Format(time.RFC3339Nano),
		DurationMS:      finished.Sub(started).Milliseconds(),
	}
	snapshot := model.SnapshotRecord{
		VersionedRecord: storage.Stamp(),
		RunID:           runID,
		Snapshot:        finalSnap,
	}

	if err := c.persistRun(ctx, run, series, snapshot); err != nil {
		return RunSummary{}, err
	}
	runDir, err := stats.WriteRunArtifacts(c.runsDir, stats.RunArtifacts{
		Run:           run,
		Diagnostics:   series,
		FinalSnapshot: snapshot,
	})
	if err != nil {
		return RunSummary{}, err
	}
	if err := stats.AppendRunIndex(c.runsDir, stats.RunIndexEntry{
		RunID:        runID,
		Scenario:     scenario,
		Seed:         simCfg.Seed,
		Ants:         simCfg.AntCount,
		Workers:      simCfg.Workers,
		Generations:  s.Generation(),
		Delivered:    diag.Delivered,
		Terminated:   s.IsOver(),
		CreatedAtUTC: started.Format(time.RFC3339Nano),
	}); err != nil {
		return RunSummary{}, err
	}

	summary := RunSummary{
		RunID:        runID,
		Scenario:     scenario,
		Seed:         simCfg.Seed,
		Ants:         simCfg.AntCount,
		Workers:      simCfg.Workers,
		Generations:  s.Generation(),
		Delivered:    diag.Delivered,
		InitialFood:  s.InitialFood(),
		Terminated:   s.IsOver(),
		ArtifactsDir: filepath.Clean(runDir),
		Duration:     finished.Sub(started),
	}
	if !s.IsOver() {
		return summary, fmt.Errorf("run %s stalled after %d generations (artifacts kept in %s): %w",
			runID, s.Generation(), filepath.Clean(runDir), ErrCeilingExceeded)
	}
	return summary, nil
}

// Runs lists known runs, newest first: from the store when it has any, from
// the artifacts index otherwise (a fresh process with a memory store knows
// only the index).
func (c *Client) Runs(ctx context.Context, req RunsRequest) ([]RunItem, error) {
	if req.Limit <= 0 {
		req.Limit = 20
	}
	if err := c.ensureInit(ctx); err != nil {
		return nil, err
	}

	records, err := c.store.ListRuns(ctx)
	if err != nil {
		return nil, err
	}
	if len(records) > 0 {
		sort.Slice(records, func(i, j int) bool {
			if records[i].StartedUTC == records[j].StartedUTC {
				return records[i].ID < records[j].ID
			}
			return records[i].StartedUTC > records[j].StartedUTC
		})
		if len(records) > req.Limit {
			records = records[:req.Limit]
		}
		items := make([]RunItem, 0, len(records))
		for _, r := range records {
			items = append(items, RunItem{
				RunID:        r.ID,
				Scenario:     r.Scenario,
				Seed:         r.Seed,
				Ants:         r.Ants,
				Generations:  r.Generations,
				Delivered:    r.Delivered,
				Terminated:   r.Terminated,
				CreatedAtUTC: r.StartedUTC,
			})
		}
		return items, nil
	}

	entries, err := stats.ListRunIndex(c.runsDir)
	if err != nil {
		return nil, err
	}
	if len(entries) > req.Limit {
		entries = entries[:req.Limit]
	}
	items := make([]RunItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, RunItem{
			RunID:        e.RunID,
			Scenario:     e.Scenario,
			Seed:         e.Seed,
			Ants:         e.Ants,
			Generations:  e.Generations,
			Delivered:    e.Delivered,
			Terminated:   e.Terminated,
			CreatedAtUTC: e.CreatedAtUTC,
		})
	}
	return items, nil
}

// Diagnostics returns one run's progress series, store first, artifacts
// fallback.
func (c *Client) Diagnostics(ctx context.Context, req DiagnosticsRequest) ([]model.GenerationDiagnostics, error) {
	runID, err := c.resolveRunID(ctx, req.RunID, req.Latest)
	if err != nil {
		return nil, err
	}

	series, ok, err := c.store.GetDiagnostics(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		series, ok, err = stats.ReadDiagnostics(c.runsDir, runID)
		if err != nil {
			return nil, err
		}
	}
	if !ok {
		return nil, fmt.Errorf("diagnostics not found for run id: %s", runID)
	}

	if req.Limit > 0 && len(series) > req.Limit {
		series = series[len(series)-req.Limit:]
	}
	out := make([]model.GenerationDiagnostics, len(series))
	copy(out, series)
	return out, nil
}

// FinalSnapshot returns the world as a run left it.
func (c *Client) FinalSnapshot(ctx context.Context, req SnapshotRequest) (model.SnapshotRecord, error) {
	runID, err := c.resolveRunID(ctx, req.RunID, req.Latest)
	if err != nil {
		return model.SnapshotRecord{}, err
	}

	snapshot, ok, err := c.store.GetSnapshot(ctx, runID)
	if err != nil {
		return model.SnapshotRecord{}, err
	}
	if !ok {
		snapshot, ok, err = stats.ReadFinalSnapshot(c.runsDir, runID)
		if err != nil {
			return model.SnapshotRecord{}, err
		}
	}
	if !ok {
		return model.SnapshotRecord{}, fmt.Errorf("snapshot not found for run id: %s", runID)
	}
	return snapshot, nil
}

// Replay rebuilds a configuration and plays it forward without persisting
// anything. Equal seeds replay equal worlds.
func (c *Client) Replay(ctx context.Context, req ReplayRequest) (world.Snapshot, error) {
	fileCfg, _, err := config.Resolve(req.Preset, req.ConfigPath)
	if err != nil {
		return world.Snapshot{}, err
	}
	applyOverrides(fileCfg, req.Seed, req.Ants, req.Workers, req.MaxGenerations, 0)
	if err := fileCfg.Validate(); err != nil {
		return world.Snapshot{}, err
	}
	simCfg, err := fileCfg.SimConfig()
	if err != nil {
		return world.Snapshot{}, err
	}
	s, err := sim.New(simCfg)
	if err != nil {
		return world.Snapshot{}, err
	}

	ceiling := fileCfg.Run.MaxGenerations
	if ceiling == 0 {
		ceiling = sim.DefaultGenerationCeiling
	}
	if req.Generation > 0 && req.Generation < ceiling {
		ceiling = req.Generation
	}

	for !s.IsOver() && s.Generation() < ceiling {
		if _, err := s.NextGen(ctx); err != nil {
			return world.Snapshot{}, err
		}
	}
	return s.Snapshot(), nil
}

func (c *Client) persistRun(ctx context.Context, run model.RunRecord, series []model.GenerationDiagnostics, snapshot model.SnapshotRecord) error {
	if err := c.ensureInit(ctx); err != nil {
		return err
	}
	if err := c.store.SaveRun(ctx, run); err != nil {
		return err
	}
	if err := c.store.SaveDiagnostics(ctx, run.ID, series); err != nil {
		return err
	}
	return c.store.SaveSnapshot(ctx, snapshot)
}

func (c *Client) resolveRunID(ctx context.Context, runID string, latest bool) (string, error) {
	if runID != "" && latest {
		return "", errors.New("use either run id or latest")
	}
	if runID != "" {
		return runID, nil
	}
	if !latest {
		return "", errors.New("run id or latest is required")
	}

	items, err := c.Runs(ctx, RunsRequest{Limit: 1})
	if err != nil {
		return "", err
	}
	if len(items) == 0 {
		return "", errors.New("no runs available")
	}
	return items[0].RunID, nil
}

func (c *Client) ensureInit(ctx context.Context) error {
	if c.initialized {
		return nil
	}
	if err := c.store.Init(ctx); err != nil {
		return err
	}
	c.initialized = true
	return nil
}

func applyOverrides(cfg *config.FileConfig, seed *int64, ants, workers int, maxGenerations uint64, sampleEvery int) {
	if seed != nil {
		cfg.Run.Seed = *seed
	}
	if ants > 0 {
		cfg.Colony.Ants = ants
	}
	if workers > 0 {
		cfg.Run.Workers = workers
	}
	if maxGenerations > 0 {
		cfg.Run.MaxGenerations = maxGenerations
	}
	if sampleEvery > 0 {
		cfg.Run.SampleEvery = sampleEvery
	}
}
