package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// PlannerConfig identifies one search parameterization under test.
type PlannerConfig struct {
	ID              int
	BranchFactor    int
	LearnIterations int
	Exploration     float64
}

// CycleRecord ties a cycle metric to the experiment run that produced it.
type CycleRecord struct {
	Planner int // PlannerConfig.ID
	Run     int
	CycleMetric
}

type Writer struct {
	baseDir string
}

func NewWriter(name string) (*Writer, error) {
	// Create a subfolder named by current timestamp
	timestamp := time.Now().UTC().Format(time.RFC3339)
	baseDir := filepath.Join("experiments", name, timestamp)
	err := os.MkdirAll(baseDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &Writer{
		baseDir: baseDir,
	}, nil
}

func (w *Writer) WritePlannerConfigs(configs []PlannerConfig) error {
	path := filepath.Join(w.baseDir, "planner_configs.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create planner configs file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	defer writer.Flush()

	header := []string{"id", "branch_factor", "learn_iterations", "exploration"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write planner configs header: %w", err)
	}

	for _, config := range configs {
		row := []string{
			strconv.Itoa(config.ID),
			strconv.Itoa(config.BranchFactor),
			strconv.Itoa(config.LearnIterations),
			strconv.FormatFloat(config.Exploration, 'g', -1, 64),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write planner config row: %w", err)
		}
	}

	return nil
}

func (w *Writer) WriteCycleRecords(records []CycleRecord) error {
	path := filepath.Join(w.baseDir, "cycle_records.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create cycle records file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	defer writer.Flush()

	header := []string{
		"planner", "run", "cycle", "trace",
		"duration", "passes", "expansions", "dedup_hits",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write cycle records header: %w", err)
	}

	for _, record := range records {
		row := []string{
			strconv.Itoa(record.Planner),
			strconv.Itoa(record.Run),
			strconv.Itoa(record.Cycle),
			strconv.FormatFloat(record.Trace, 'g', -1, 64),
			record.Duration.String(),
			strconv.Itoa(record.Passes),
			strconv.Itoa(record.Expansions),
			strconv.Itoa(record.DedupHits),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write cycle record row: %w", err)
		}
	}

	return nil
}
