package skills

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// ErrEmptyCSV is returned by CleanCSV when the input has no rows.
var ErrEmptyCSV = errors.New("skills CSV is empty")

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]`)

// CleanName lowercases name and drops everything but ASCII letters and digits.
func CleanName(name string) string {
	return nonAlphanumeric.ReplaceAllString(strings.ToLower(name), "")
}

// CleanCSV reads the first row of r, cleans every cell with CleanName and
// writes the result to w as a single CSV row. Later rows are ignored. It
// returns the number of cells written.
func CleanCSV(r io.Reader, w io.Writer) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	row, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return 0, ErrEmptyCSV
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read skills CSV: %w", err)
	}

	cleaned := make([]string, len(row))
	for i, cell := range row {
		cleaned[i] = CleanName(cell)
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(cleaned); err != nil {
		return 0, fmt.Errorf("failed to write skills CSV: %w", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return 0, fmt.Errorf("failed to write skills CSV: %w", err)
	}
	return len(cleaned), nil
}
