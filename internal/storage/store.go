package storage

import (
	"context"

	"myrmex/internal/model"
)

// Store defines persistence for simulation runs, their diagnostics series and
// their final snapshots.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run model.RunRecord) error
	GetRun(ctx context.Context, id string) (model.RunRecord, bool, error)
	ListRuns(ctx context.Context) ([]model.RunRecord, error)
	DeleteRun(ctx context.Context, id string) error
	SaveDiagnostics(ctx context.Context, runID string, series []model.GenerationDiagnostics) error
	GetDiagnostics(ctx context.Context, runID string) ([]model.GenerationDiagnostics, bool, error)
	SaveSnapshot(ctx context.Context, snapshot model.SnapshotRecord) error
	GetSnapshot(ctx context.Context, runID string) (model.SnapshotRecord, bool, error)
}
