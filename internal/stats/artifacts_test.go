package stats

import (
	"os"
	"path/filepath"
	"testing"

	"myrmex/internal/model"
	"myrmex/internal/world"
)

func sampleArtifacts(runID string) RunArtifacts {
	return RunArtifacts{
		Run: model.RunRecord{
			ID:          runID,
			Scenario:    "classic",
			Seed:        1,
			Width:       30,
			Height:      30,
			Ants:        10,
			Workers:     2,
			Generations: 40,
			Delivered:   12,
			InitialFood: 600,
		},
		Diagnostics: []model.GenerationDiagnostics{
			{Generation: 1, Delivered: 0, RemainingFood: 600},
			{Generation: 2, Delivered: 1, RemainingFood: 598},
			{Generation: 3, Delivered: 3, RemainingFood: 595},
		},
		FinalSnapshot: model.SnapshotRecord{
			RunID: runID,
			Snapshot: world.Snapshot{
				Generation: 40,
				Dim:        world.Dimension{Width: 30, Height: 30},
				Nest:       world.NestState{Location: world.Position{X: 25, Y: 25}, Stored: 12},
			},
		},
	}
}

func TestWriteAndExportRunArtifacts(t *testing.T) {
	baseDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "exports")

	runID := "run-123"
	runDir, err := WriteRunArtifacts(baseDir, sampleArtifacts(runID))
	if err != nil {
		t.Fatalf("write artifacts: %v", err)
	}

	for _, file := range []string{"run_record.json", "diagnostics.json", "final_snapshot.json", "delivery_series.csv"} {
		if _, err := os.Stat(filepath.Join(runDir, file)); err != nil {
			t.Fatalf("expected file %s: %v", file, err)
		}
	}

	exportedDir, err := ExportRunArtifacts(baseDir, runID, outDir)
	if err != nil {
		t.Fatalf("export artifacts: %v", err)
	}

	for _, file := range []string{"run_record.json", "diagnostics.json", "final_snapshot.json", "delivery_series.csv"} {
		if _, err := os.Stat(filepath.Join(exportedDir, file)); err != nil {
			t.Fatalf("expected exported file %s: %v", file, err)
		}
	}

	run, ok, err := ReadRunRecord(baseDir, runID)
	if err != nil {
		t.Fatalf("read run record: %v", err)
	}
	if !ok || run.Delivered != 12 {
		t.Fatalf("unexpected run record: ok=%t run=%+v", ok, run)
	}

	diagnostics, ok, err := ReadDiagnostics(baseDir, runID)
	if err != nil {
		t.Fatalf("read diagnostics: %v", err)
	}
	if !ok || len(diagnostics) != 3 {
		t.Fatalf("unexpected diagnostics: ok=%t rows=%d", ok, len(diagnostics))
	}

	snapshot, ok, err := ReadFinalSnapshot(baseDir, runID)
	if err != nil {
		t.Fatalf("read final snapshot: %v", err)
	}
	if !ok || snapshot.Snapshot.Nest.Stored != 12 {
		t.Fatalf("unexpected final snapshot: ok=%t snapshot=%+v", ok, snapshot)
	}
}

func TestWriteRunArtifactsRequiresRunID(t *testing.T) {
	if _, err := WriteRunArtifacts(t.TempDir(), RunArtifacts{}); err == nil {
		t.Fatal("expected run id error")
	}
}

func TestDeliverySeriesRoundTrip(t *testing.T) {
	baseDir := t.TempDir()
	runID := "run-series"
	if _, err := WriteRunArtifacts(baseDir, sampleArtifacts(runID)); err != nil {
		t.Fatalf("write artifacts: %v", err)
	}

	series, ok, err := ReadDeliverySeries(baseDir, runID)
	if err != nil {
		t.Fatalf("read series: %v", err)
	}
	if !ok {
		t.Fatal("expected delivery series")
	}
	if len(series) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(series))
	}
	if series[2].Generation != 3 || series[2].Delivered != 3 || series[2].RemainingFood != 595 {
		t.Fatalf("unexpected row: %+v", series[2])
	}

	if _, ok, err := ReadDeliverySeries(baseDir, "missing"); err != nil || ok {
		t.Fatalf("missing series: ok=%t err=%v", ok, err)
	}
}

func TestRunIndexAppendListAndUpsert(t *testing.T) {
	baseDir := t.TempDir()

	err := AppendRunIndex(baseDir, RunIndexEntry{
		RunID:        "run-1",
		Scenario:     "classic",
		Seed:         1,
		Ants:         10,
		Generations:  1200,
		Delivered:    600,
		Terminated:   true,
		CreatedAtUTC: "2026-08-10T10:00:00Z",
	})
	if err != nil {
		t.Fatalf("append run-1: %v", err)
	}

	err = AppendRunIndex(baseDir, RunIndexEntry{
		RunID:        "run-2",
		Scenario:     "classic",
		Seed:         2,
		Ants:         10,
		Generations:  1100,
		Delivered:    600,
		Terminated:   true,
		CreatedAtUTC: "2026-08-10T11:00:00Z",
	})
	if err != nil {
		t.Fatalf("append run-2: %v", err)
	}

	entries, err := ListRunIndex(baseDir)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].RunID != "run-2" || entries[1].RunID != "run-1" {
		t.Fatalf("unexpected order: %+v", entries)
	}

	err = AppendRunIndex(baseDir, RunIndexEntry{
		RunID:        "run-1",
		Scenario:     "classic",
		Seed:         1,
		Ants:         10,
		Generations:  900,
		Delivered:    600,
		Terminated:   true,
		CreatedAtUTC: "2026-08-10T12:00:00Z",
	})
	if err != nil {
		t.Fatalf("upsert run-1: %v", err)
	}

	entries, err = ListRunIndex(baseDir)
	if err != nil {
		t.Fatalf("list after upsert: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries after upsert, got %d", len(entries))
	}
	if entries[0].RunID != "run-1" || entries[0].Generations != 900 {
		t.Fatalf("unexpected upsert result: %+v", entries[0])
	}
}

func TestRunIndexEqualTimestampPrefersLaterAppend(t *testing.T) {
	baseDir := t.TempDir()
	ts := "2026-08-10T12:00:00Z"

	if err := AppendRunIndex(baseDir, RunIndexEntry{RunID: "run-a", CreatedAtUTC: ts}); err != nil {
		t.Fatalf("append run-a: %v", err)
	}
	if err := AppendRunIndex(baseDir, RunIndexEntry{RunID: "run-b", CreatedAtUTC: ts}); err != nil {
		t.Fatalf("append run-b: %v", err)
	}

	entries, err := ListRunIndex(baseDir)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].RunID != "run-b" {
		t.Fatalf("expected latest appended run-b first, got %+v", entries)
	}
}

func TestListRunIndexMissingFileReturnsEmpty(t *testing.T) {
	entries, err := ListRunIndex(t.TempDir())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty index, got %+v", entries)
	}
}
