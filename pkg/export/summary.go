package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	errs "nuforcscraper/pkg/errors"
)

// SummarySuffix is appended to the export path to name the summary sidecar.
const SummarySuffix = ".summary.json"

// Summary describes one export run
type Summary struct {
	RunID       string    `json:"run_id"`
	StartURL    string    `json:"start_url"`
	OutputPath  string    `json:"output_path"`
	Pages       int       `json:"pages"`
	RowsPerPage []int     `json:"rows_per_page"`
	TotalRows   int       `json:"total_rows"`
	SkippedRows int       `json:"skipped_rows"`
	StopReason  string    `json:"stop_reason"`
	Error       string    `json:"error,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
}

// Duration returns how long the run took
func (s *Summary) Duration() time.Duration {
	if s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// SummaryPath returns the sidecar path for an export written to outputPath.
func SummaryPath(outputPath string) string {
	return outputPath + SummarySuffix
}

// WriteSummary writes s as indented JSON next to the export at outputPath.
func WriteSummary(outputPath string, s *Summary) error {
	path := SummaryPath(outputPath)

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return errs.IO(fmt.Errorf("failed to marshal summary: %w", err), path)
	}

	err = writeAtomic(path, func(w io.Writer) error {
		_, err := w.Write(append(data, '\n'))
		return err
	})
	if err != nil {
		return errs.IO(err, path)
	}
	return nil
}

// LoadSummary reads the sidecar of the export at outputPath
func LoadSummary(outputPath string) (*Summary, error) {
	data, err := os.ReadFile(SummaryPath(outputPath))
	if err != nil {
		return nil, fmt.Errorf("failed to read summary file: %w", err)
	}

	var s Summary
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal summary: %w", err)
	}
	return &s, nil
}
