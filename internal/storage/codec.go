package storage

import (
	"encoding/json"
	"errors"

	"myrmex/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

// Stamp fills in the current schema and codec versions.
func Stamp() model.VersionedRecord {
	return model.VersionedRecord{
		SchemaVersion: CurrentSchemaVersion,
		CodecVersion:  CurrentCodecVersion,
	}
}

func EncodeRun(run model.RunRecord) ([]byte, error) {
	return json.Marshal(run)
}

func DecodeRun(data []byte) (model.RunRecord, error) {
	var run model.RunRecord
	if err := json.Unmarshal(data, &run); err != nil {
		return model.RunRecord{}, err
	}
	if err := checkVersion(run.VersionedRecord); err != nil {
		return model.RunRecord{}, err
	}
	return run, nil
}

func EncodeDiagnostics(series []model.GenerationDiagnostics) ([]byte, error) {
	return json.Marshal(series)
}

func DecodeDiagnostics(data []byte) ([]model.GenerationDiagnostics, error) {
	var series []model.GenerationDiagnostics
	if err := json.Unmarshal(data, &series); err != nil {
		return nil, err
	}
	return series, nil
}

func EncodeSnapshot(snapshot model.SnapshotRecord) ([]byte, error) {
	return json.Marshal(snapshot)
}

func DecodeSnapshot(data []byte) (model.SnapshotRecord, error) {
	var snapshot model.SnapshotRecord
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return model.SnapshotRecord{}, err
	}
	if err := checkVersion(snapshot.VersionedRecord); err != nil {
		return model.SnapshotRecord{}, err
	}
	return snapshot, nil
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}
