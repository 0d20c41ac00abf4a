package stats

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
)

// Avg returns the arithmetic mean of values.
func Avg(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, fmt.Errorf("values must not be empty")
	}
	sum := 0.0
	for _, value := range values {
		sum += value
	}
	return sum / float64(len(values)), nil
}

// Std returns population standard deviation.
func Std(values []float64) (float64, error) {
	mean, err := Avg(values)
	if err != nil {
		return 0, err
	}
	sum := 0.0
	for _, value := range values {
		diff := mean - value
		sum += diff * diff
	}
	return math.Sqrt(sum / float64(len(values))), nil
}

type SeriesSummary struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Std   float64 `json:"std"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

func Summarize(values []float64) SeriesSummary {
	if len(values) == 0 {
		return SeriesSummary{}
	}
	mean, std := avgStd(values)
	return SeriesSummary{
		Count: len(values),
		Mean:  mean,
		Std:   std,
		Min:   minFloat(values),
		Max:   maxFloat(values),
	}
}

// SweepGraph aggregates the delivery curves of every seed run at one ant
// count into per-generation mean, spread, and envelope series.
type SweepGraph struct {
	Ants            int       `json:"ants"`
	GenerationIndex []int     `json:"generation_index"`
	AvgDelivered    []float64 `json:"avg_delivered"`
	DeliveredStd    []float64 `json:"delivered_std"`
	MaxDelivered    []float64 `json:"max_delivered"`
	MinDelivered    []float64 `json:"min_delivered"`
	AvgRemaining    []float64 `json:"avg_remaining"`
}

func BuildSweepGraphs(baseDir string, record SweepRecord) ([]SweepGraph, error) {
	if len(record.RunIDs) == 0 {
		return []SweepGraph{}, nil
	}
	runsByAnts := make(map[int][][]DeliveryPoint)
	for _, runID := range record.RunIDs {
		run, ok, err := ReadRunRecord(baseDir, runID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("run record not found for run id: %s", runID)
		}
		series, ok, err := ReadDeliverySeries(baseDir, runID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("delivery series not found for run id: %s", runID)
		}
		runsByAnts[run.Ants] = append(runsByAnts[run.Ants], series)
	}

	antCounts := make([]int, 0, len(runsByAnts))
	for ants := range runsByAnts {
		antCounts = append(antCounts, ants)
	}
	sort.Ints(antCounts)

	graphs := make([]SweepGraph, 0, len(antCounts))
	for _, ants := range antCounts {
		graphs = append(graphs, buildGraphForAnts(ants, runsByAnts[ants]))
	}
	return graphs, nil
}

func WriteSweepGraphs(baseDir, sweepID, graphPostfix string, graphs []SweepGraph) ([]string, error) {
	if sweepID == "" {
		return nil, fmt.Errorf("graph sweep id is required")
	}
	outputDir := filepath.Join(baseDir, sweepsDir, sweepID)
	return WriteSweepGraphsToDir(outputDir, graphPostfix, graphs)
}

func WriteSweepGraphsToDir(outputDir, graphPostfix string, graphs []SweepGraph) ([]string, error) {
	if graphPostfix == "" {
		graphPostfix = "sweep_Graphs"
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(graphs))
	for _, graph := range graphs {
		name := "graph_ants" + strconv.Itoa(graph.Ants) + "_" + graphPostfix
		path := filepath.Join(outputDir, name)
		if err := writeSweepGraphFile(path, graph); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths, nil
}

func buildGraphForAnts(ants int, runs [][]DeliveryPoint) SweepGraph {
	graph := SweepGraph{Ants: ants}
	maxRows := 0
	for _, series := range runs {
		if len(series) > maxRows {
			maxRows = len(series)
		}
	}
	for row := 0; row < maxRows; row++ {
		generation := 0
		deliveredVals := make([]float64, 0, len(runs))
		remainingVals := make([]float64, 0, len(runs))
		for _, series := range runs {
			if row >= len(series) {
				continue
			}
			if generation == 0 {
				generation = int(series[row].Generation)
			}
			deliveredVals = append(deliveredVals, float64(series[row].Delivered))
			remainingVals = append(remainingVals, float64(series[row].RemainingFood))
		}

		avgDelivered, deliveredStd := avgStd(deliveredVals)
		avgRemaining, _ := avgStd(remainingVals)

		graph.GenerationIndex = append(graph.GenerationIndex, generation)
		graph.AvgDelivered = append(graph.AvgDelivered, avgDelivered)
		graph.DeliveredStd = append(graph.DeliveredStd, deliveredStd)
		graph.MaxDelivered = append(graph.MaxDelivered, maxOrZero(deliveredVals))
		graph.MinDelivered = append(graph.MinDelivered, minOrZero(deliveredVals))
		graph.AvgRemaining = append(graph.AvgRemaining, avgRemaining)
	}
	return graph
}

func writeSweepGraphFile(path string, graph SweepGraph) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if _, err := fmt.Fprintf(file, "#Avg Delivered Vs Generation, Ants:%d\n", graph.Ants); err != nil {
		return err
	}
	if err := writeSeriesWithStd(file, graph.GenerationIndex, graph.AvgDelivered, graph.DeliveredStd); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(file, "\n\n#Max Delivered Vs Generation, Ants:%d\n", graph.Ants); err != nil {
		return err
	}
	if err := writeSeries(file, graph.GenerationIndex, graph.MaxDelivered); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(file, "\n\n#Min Delivered Vs Generation, Ants:%d\n", graph.Ants); err != nil {
		return err
	}
	if err := writeSeries(file, graph.GenerationIndex, graph.MinDelivered); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(file, "\n\n#Avg Remaining Food Vs Generation, Ants:%d\n", graph.Ants); err != nil {
		return err
	}
	return writeSeries(file, graph.GenerationIndex, graph.AvgRemaining)
}

func writeSeriesWithStd(file *os.File, index []int, values, std []float64) error {
	length := minInt(len(index), minInt(len(values), len(std)))
	for i := 0; i < length; i++ {
		if _, err := fmt.Fprintf(file, "%d %g %g\n", index[i], values[i], std[i]); err != nil {
			return err
		}
	}
	return nil
}

func writeSeries(file *os.File, index []int, values []float64) error {
	length := minInt(len(index), len(values))
	for i := 0; i < length; i++ {
		if _, err := fmt.Fprintf(file, "%d %g\n", index[i], values[i]); err != nil {
			return err
		}
	}
	return nil
}

func avgStd(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	avg, _ := Avg(values)
	std, _ := Std(values)
	return avg, std
}

func maxFloat(values []float64) float64 {
	max := values[0]
	for _, value := range values[1:] {
		if value > max {
			max = value
		}
	}
	return max
}

func minFloat(values []float64) float64 {
	min := values[0]
	for _, value := range values[1:] {
		if value < min {
			min = value
		}
	}
	return min
}

func maxOrZero(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return maxFloat(values)
}

func minOrZero(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return minFloat(values)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
