package stats

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"myrmex/internal/model"
)

const runIndexFile = "run_index.json"

// RunArtifacts bundles everything a finished run leaves on disk.
type RunArtifacts struct {
	Run           model.RunRecord               `json:"run"`
	Diagnostics   []model.GenerationDiagnostics `json:"diagnostics,omitempty"`
	FinalSnapshot model.SnapshotRecord          `json:"final_snapshot"`
}

type RunIndexEntry struct {
	RunID        string `json:"run_id"`
	Scenario     string `json:"scenario"`
	Seed         int64  `json:"seed"`
	Ants         int    `json:"ants"`
	Workers      int    `json:"workers"`
	Generations  uint64 `json:"generations"`
	Delivered    int    `json:"delivered"`
	Terminated   bool   `json:"terminated"`
	CreatedAtUTC string `json:"created_at_utc"`
}

// DeliveryPoint is one row of the per-generation delivery series.
type DeliveryPoint struct {
	Generation    uint64 `json:"generation"`
	Delivered     int    `json:"delivered"`
	RemainingFood int    `json:"remaining_food"`
}

func WriteRunArtifacts(baseDir string, artifacts RunArtifacts) (string, error) {
	if artifacts.Run.ID == "" {
		return "", fmt.Errorf("run id is required")
	}

	runDir := filepath.Join(baseDir, artifacts.Run.ID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, "run_record.json"), artifacts.Run); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "diagnostics.json"), artifacts.Diagnostics); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "final_snapshot.json"), artifacts.FinalSnapshot); err != nil {
		return "", err
	}
	if err := WriteDeliverySeries(runDir, artifacts.Diagnostics); err != nil {
		return "", err
	}

	return runDir, nil
}

func AppendRunIndex(baseDir string, entry RunIndexEntry) error {
	if entry.RunID == "" {
		return fmt.Errorf("run id is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return err
	}

	index, err := ListRunIndex(baseDir)
	if err != nil {
		return err
	}

	for i := range index {
		if index[i].RunID == entry.RunID {
			index[i] = entry
			return writeJSON(filepath.Join(baseDir, runIndexFile), index)
		}
	}

	index = append(index, entry)
	return writeJSON(filepath.Join(baseDir, runIndexFile), index)
}

func ListRunIndex(baseDir string) ([]RunIndexEntry, error) {
	path := filepath.Join(baseDir, runIndexFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunIndexEntry{}, nil
		}
		return nil, err
	}

	var entries []RunIndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}

	type indexedEntry struct {
		entry RunIndexEntry
		idx   int
	}
	indexed := make([]indexedEntry, len(entries))
	for i := range entries {
		indexed[i] = indexedEntry{entry: entries[i], idx: i}
	}
	sort.Slice(indexed, func(i, j int) bool {
		if indexed[i].entry.CreatedAtUTC == indexed[j].entry.CreatedAtUTC {
			// Prefer later appended entries for equal timestamps.
			return indexed[i].idx > indexed[j].idx
		}
		return indexed[i].entry.CreatedAtUTC > indexed[j].entry.CreatedAtUTC
	})

	sorted := make([]RunIndexEntry, 0, len(indexed))
	for _, item := range indexed {
		sorted = append(sorted, item.entry)
	}
	return sorted, nil
}

func ExportRunArtifacts(baseDir, runID, outDir string) (string, error) {
	if runID == "" {
		return "", fmt.Errorf("run id is required")
	}

	src := filepath.Join(baseDir, runID)
	if _, err := os.Stat(src); err != nil {
		return "", err
	}

	dst := filepath.Join(outDir, runID)
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return "", err
	}

	files := []string{"run_record.json", "diagnostics.json", "final_snapshot.json"}
	for _, file := range files {
		if err := copyFile(filepath.Join(src, file), filepath.Join(dst, file)); err != nil {
			return "", err
		}
	}
	seriesPath := filepath.Join(src, "delivery_series.csv")
	if _, err := os.Stat(seriesPath); err == nil {
		if err := copyFile(seriesPath, filepath.Join(dst, "delivery_series.csv")); err != nil {
			return "", err
		}
	} else if err != nil && !os.IsNotExist(err) {
		return "", err
	}

	return dst, nil
}

func ReadRunRecord(baseDir, runID string) (model.RunRecord, bool, error) {
	path := filepath.Join(baseDir, runID, "run_record.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.RunRecord{}, false, nil
		}
		return model.RunRecord{}, false, err
	}

	var run model.RunRecord
	if err := json.Unmarshal(data, &run); err != nil {
		return model.RunRecord{}, false, err
	}
	return run, true, nil
}

func ReadDiagnostics(baseDir, runID string) ([]model.GenerationDiagnostics, bool, error) {
	path := filepath.Join(baseDir, runID, "diagnostics.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var diagnostics []model.GenerationDiagnostics
	if err := json.Unmarshal(data, &diagnostics); err != nil {
		return nil, false, err
	}
	return diagnostics, true, nil
}

func ReadFinalSnapshot(baseDir, runID string) (model.SnapshotRecord, bool, error) {
	path := filepath.Join(baseDir, runID, "final_snapshot.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.SnapshotRecord{}, false, nil
		}
		return model.SnapshotRecord{}, false, err
	}

	var snapshot model.SnapshotRecord
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return model.SnapshotRecord{}, false, err
	}
	return snapshot, true, nil
}

func WriteDeliverySeries(runDir string, diagnostics []model.GenerationDiagnostics) error {
	path := filepath.Join(runDir, "delivery_series.csv")
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"generation", "delivered", "remaining_food"}); err != nil {
		return err
	}
	for _, d := range diagnostics {
		if err := writer.Write([]string{
			strconv.FormatUint(d.Generation, 10),
			strconv.Itoa(d.Delivered),
			strconv.Itoa(d.RemainingFood),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func ReadDeliverySeries(baseDir, runID string) ([]DeliveryPoint, bool, error) {
	path := filepath.Join(baseDir, runID, "delivery_series.csv")
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return []DeliveryPoint{}, true, nil
		}
		return nil, false, err
	}
	if len(header) < 3 {
		return nil, false, fmt.Errorf("delivery series header must have at least 3 columns")
	}

	series := make([]DeliveryPoint, 0, 128)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, false, err
		}
		if len(record) < 3 {
			return nil, false, fmt.Errorf("delivery series row must have at least 3 columns")
		}
		generation, err := strconv.ParseUint(record[0], 10, 64)
		if err != nil {
			return nil, false, err
		}
		delivered, err := strconv.Atoi(record[1])
		if err != nil {
			return nil, false, err
		}
		remaining, err := strconv.Atoi(record[2])
		if err != nil {
			return nil, false, err
		}
		series = append(series, DeliveryPoint{Generation: generation, Delivered: delivered, RemainingFood: remaining})
	}
	return series, true, nil
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
