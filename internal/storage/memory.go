package storage

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/exp/maps"

	"myrmex/internal/model"
)

// MemoryStore keeps everything in process. It is the default backend and the
// reference for what the sqlite backend must mirror.
type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	runs        map[string]model.RunRecord
	diagnostics map[string][]model.GenerationDiagnostics
	snapshots   map[string]model.SnapshotRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.runs = make(map[string]model.RunRecord)
	s.diagnostics = make(map[string][]model.GenerationDiagnostics)
	s.snapshots = make(map[string]model.SnapshotRecord)
	return nil
}

func (s *MemoryStore) SaveRun(_ context.Context, run model.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs[run.ID] = run
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, id string) (model.RunRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	return run, ok, nil
}

func (s *MemoryStore) ListRuns(_ context.Context) ([]model.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := maps.Keys(s.runs)
	sort.Strings(ids)
	runs := make([]model.RunRecord, 0, len(ids))
	for _, id := range ids {
		runs = append(runs, s.runs[id])
	}
	return runs, nil
}

func (s *MemoryStore) DeleteRun(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.runs, id)
	delete(s.diagnostics, id)
	delete(s.snapshots, id)
	return nil
}

func (s *MemoryStore) SaveDiagnostics(_ context.Context, runID string, series []model.GenerationDiagnostics) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]model.GenerationDiagnostics, len(series))
	copy(copied, series)
	s.diagnostics[runID] = copied
	return nil
}

func (s *MemoryStore) GetDiagnostics(_ context.Context, runID string) ([]model.GenerationDiagnostics, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	series, ok := s.diagnostics[runID]
	if !ok {
		return nil, false, nil
	}
	copied := make([]model.GenerationDiagnostics, len(series))
	copy(copied, series)
	return copied, true, nil
}

func (s *MemoryStore) SaveSnapshot(_ context.Context, snapshot model.SnapshotRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshots[snapshot.RunID] = snapshot
	return nil
}

func (s *MemoryStore) GetSnapshot(_ context.Context, runID string) (model.SnapshotRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot, ok := s.snapshots[runID]
	return snapshot, ok, nil
}
