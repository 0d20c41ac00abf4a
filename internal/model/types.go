package model

import "myrmex/internal/world"

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// RunRecord is the headline result of one simulation run.
type RunRecord struct {
	VersionedRecord
	ID            string `json:"id"`
	Scenario      string `json:"scenario"`
	Seed          int64  `json:"seed"`
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	Ants          int    `json:"ants"`
	MorselCount   int    `json:"morsel_count"`
	MorselStorage int    `json:"morsel_storage"`
	Workers       int    `json:"workers"`
	DecayLaw      string `json:"decay_law"`
	Generations   uint64 `json:"generations"`
	Delivered     int    `json:"delivered"`
	InitialFood   int    `json:"initial_food"`
	Terminated    bool   `json:"terminated"`
	StartedUTC    string `json:"started_utc"`
	FinishedUTC   string `json:"finished_utc"`
	DurationMS    int64  `json:"duration_ms"`
}

// GenerationDiagnostics is one sampled point of a run's progress series.
type GenerationDiagnostics struct {
	Generation      uint64  `json:"generation"`
	Delivered       int     `json:"delivered"`
	RemainingFood   int     `json:"remaining_food"`
	CarryingCount   int     `json:"carrying_count"`
	ForagingCount   int     `json:"foraging_count"`
	ActiveMorsels   int     `json:"active_morsels"`
	HomeTraceTotal  float64 `json:"home_trace_total"`
	FoodTraceTotal  float64 `json:"food_trace_total"`
	Pickups         int     `json:"pickups"`
	Deliveries      int     `json:"deliveries"`
	TotalPickups    int     `json:"total_pickups"`
	TotalDeliveries int     `json:"total_deliveries"`
}

// SnapshotRecord wraps the final world snapshot of a run for persistence.
type SnapshotRecord struct {
	VersionedRecord
	RunID    string         `json:"run_id"`
	Snapshot world.Snapshot `json:"snapshot"`
}
