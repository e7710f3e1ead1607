package corpus

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const lockRetryDelay = 100 * time.Millisecond

// CSVFile is a corpus kept in a CSV file with a header row.
type CSVFile struct {
	Path string
}

// NewCSVFile returns a store backed by the CSV file at path.
func NewCSVFile(path string) *CSVFile {
	return &CSVFile{Path: path}
}

// Load reads every row. Rows with malformed values are kept with zeroed fields.
func (c *CSVFile) Load(_ context.Context) ([]Job, error) {
	f, err := os.Open(c.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open corpus %s: %w", c.Path, err)
	}
	defer func() { _ = f.Close() }()

	_, jobs, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus %s: %w", c.Path, err)
	}
	return jobs, nil
}

// ReadCSV parses a header row followed by job rows and returns the header and jobs.
func ReadCSV(r io.Reader) ([]string, []Job, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read header: %w", err)
	}

	var jobs []Job
	for row := 1; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read row %d: %w", row, err)
		}

		fields := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				fields[col] = record[i]
			} else {
				fields[col] = ""
			}
		}

		job, rowErr := FromFields(row, fields)
		if rowErr != nil {
			slog.Debug("corpus row degraded", slog.Any("error", rowErr))
		}
		jobs = append(jobs, job)
	}
	return header, jobs, nil
}

// WriteCSV writes header and one row per job.
func WriteCSV(w io.Writer, header []string, jobs []Job) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, job := range jobs {
		record := job.Record()
		row := make([]string, len(header))
		for i, col := range header {
			row[i] = record[col]
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// Append merges jobs into the file, skipping links that are already present.
// Writers are serialized with an advisory lock next to the file and the new
// contents replace the old file atomically.
func (c *CSVFile) Append(ctx context.Context, jobs []Job) (int, error) {
	lock := flock.New(c.Path + ".lock")
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return 0, fmt.Errorf("failed to lock corpus %s: %w", c.Path, err)
	}
	if !locked {
		return 0, fmt.Errorf("corpus %s is locked by another writer", c.Path)
	}
	defer func() { _ = lock.Unlock() }()

	header, existing, err := c.readExisting()
	if err != nil {
		return 0, err
	}

	seen := make(map[string]struct{}, len(existing))
	for _, job := range existing {
		if job.Link != "" {
			seen[job.Link] = struct{}{}
		}
	}
	added := dedupeNew(jobs, seen)
	if len(added) == 0 {
		return 0, nil
	}

	header = mergeHeader(header, added)
	if err := c.replace(header, append(existing, added...)); err != nil {
		return 0, err
	}
	return len(added), nil
}

// Close is a no-op for CSV files.
func (c *CSVFile) Close() error {
	return nil
}

func (c *CSVFile) readExisting() ([]string, []Job, error) {
	f, err := os.Open(c.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open corpus %s: %w", c.Path, err)
	}
	defer func() { _ = f.Close() }()

	header, jobs, err := ReadCSV(f)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read corpus %s: %w", c.Path, err)
	}
	return header, jobs, nil
}

func (c *CSVFile) replace(header []string, jobs []Job) error {
	dir := filepath.Dir(c.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create corpus directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(c.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if err := WriteCSV(tmp, header, jobs); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write corpus: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, c.Path); err != nil {
		return fmt.Errorf("failed to replace corpus %s: %w", c.Path, err)
	}
	return nil
}

// mergeHeader returns header extended with DefaultColumns and any extra
// columns present on jobs, keeping existing column order.
func mergeHeader(header []string, jobs []Job) []string {
	present := make(map[string]struct{}, len(header))
	out := append([]string(nil), header...)
	for _, col := range out {
		present[col] = struct{}{}
	}
	addCol := func(col string) {
		if _, ok := present[col]; !ok {
			present[col] = struct{}{}
			out = append(out, col)
		}
	}

	for _, col := range DefaultColumns {
		addCol(col)
	}
	for _, job := range jobs {
		for _, col := range sortedKeys(job.Fields) {
			addCol(col)
		}
	}
	return out
}
