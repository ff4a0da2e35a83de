package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	errs "nuforcscraper/pkg/errors"
	"nuforcscraper/pkg/models"
)

// ErrConsumed is returned when an Accumulator is used after Flush.
var ErrConsumed = errors.New("export: accumulator already flushed")

// Accumulator collects Records in arrival order
type Accumulator struct {
	mu        sync.Mutex
	records   []models.Record
	delimiter rune
	consumed  bool
}

// NewAccumulator creates an Accumulator writing with the given delimiter.
// A zero delimiter means a comma.
func NewAccumulator(delimiter rune) *Accumulator {
	if delimiter == 0 {
		delimiter = ','
	}
	return &Accumulator{delimiter: delimiter}
}

// Append adds records after those already held
func (a *Accumulator) Append(records ...models.Record) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.consumed {
		return ErrConsumed
	}
	a.records = append(a.records, records...)
	return nil
}

// Len returns the number of records held
func (a *Accumulator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.records)
}

// Records returns a copy of the records held
func (a *Accumulator) Records() []models.Record {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]models.Record, len(a.records))
	copy(out, a.records)
	return out
}

// Flush writes the header row followed by every record to path and consumes
// the accumulator. Any failure is an IO error and leaves path as it was.
func (a *Accumulator) Flush(path string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.consumed {
		return ErrConsumed
	}
	a.consumed = true

	err := writeAtomic(path, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		cw.Comma = a.delimiter

		if err := cw.Write(models.Header); err != nil {
			return err
		}
		for _, r := range a.records {
			if err := cw.Write(r.Fields()); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
	if err != nil {
		return errs.IO(err, path)
	}

	a.records = nil
	return nil
}

// writeAtomic writes to a temporary sibling of path and renames it into place.
func writeAtomic(path string, write func(w io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()

	err = write(tmp)
	closeErr := tmp.Close()

	if err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write data: %w", err)
	}
	if closeErr != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close file: %w", closeErr)
	}

	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to set file mode: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return nil
}
