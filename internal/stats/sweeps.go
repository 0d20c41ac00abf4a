package stats

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

const sweepsDir = "sweeps"

// SweepRecord is the persisted form of a colony-size sweep: one batch of
// runs over several ant counts and seeds, with per-count aggregates.
type SweepRecord struct {
	ID             string             `json:"id"`
	Notes          string             `json:"notes,omitempty"`
	StartedAtUTC   string             `json:"started_at_utc,omitempty"`
	CompletedAtUTC string             `json:"completed_at_utc,omitempty"`
	MaxGenerations uint64             `json:"max_generations"`
	Workers        int                `json:"workers"`
	Seeds          []int64            `json:"seeds,omitempty"`
	RunIDs         []string           `json:"run_ids,omitempty"`
	Groups         []SweepGroupRecord `json:"groups,omitempty"`
}

type SweepGroupRecord struct {
	Ants            int     `json:"ants"`
	Runs            int     `json:"runs"`
	Terminated      int     `json:"terminated"`
	MeanGenerations float64 `json:"mean_generations"`
	StdGenerations  float64 `json:"std_generations"`
	MinGenerations  uint64  `json:"min_generations"`
	MaxGenerations  uint64  `json:"max_generations"`
}

func WriteSweepRecord(baseDir string, record SweepRecord) error {
	if record.ID == "" {
		return fmt.Errorf("sweep id is required")
	}
	path := sweepRecordPath(baseDir, record.ID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

func ReadSweepRecord(baseDir, id string) (SweepRecord, bool, error) {
	if id == "" {
		return SweepRecord{}, false, fmt.Errorf("sweep id is required")
	}
	path := sweepRecordPath(baseDir, id)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return SweepRecord{}, false, nil
		}
		return SweepRecord{}, false, err
	}
	var record SweepRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return SweepRecord{}, false, err
	}
	return record, true, nil
}

func ListSweepRecords(baseDir string) ([]SweepRecord, error) {
	root := filepath.Join(baseDir, sweepsDir)
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return []SweepRecord{}, nil
		}
		return nil, err
	}

	records := make([]SweepRecord, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		record, ok, err := ReadSweepRecord(baseDir, entry.Name())
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool {
		switch {
		case records[i].StartedAtUTC == records[j].StartedAtUTC:
			return records[i].ID < records[j].ID
		case records[i].StartedAtUTC == "":
			return false
		case records[j].StartedAtUTC == "":
			return true
		default:
			return records[i].StartedAtUTC > records[j].StartedAtUTC
		}
	})
	return records, nil
}

func sweepRecordPath(baseDir, id string) string {
	return filepath.Join(baseDir, sweepsDir, id, "sweep.json")
}
