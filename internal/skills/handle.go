package skills

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

//go:embed data/tech_skills.csv
var embeddedCatalog []byte

// CatalogError is returned when the reference skill list cannot be loaded.
type CatalogError struct {
	Source string
	Cause  error
}

func (e *CatalogError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("skill catalog %s unavailable: %v", e.Source, e.Cause)
	}
	return fmt.Sprintf("skill catalog %s unavailable", e.Source)
}

func (e *CatalogError) Unwrap() error {
	return e.Cause
}

// CatalogLoader produces the raw skill names for a catalog.
type CatalogLoader func() ([]string, error)

// CatalogHandle owns a lazily built catalog. The first Get builds it exactly
// once; concurrent callers block until the build finishes and never observe a
// partially populated catalog. A failed build yields the empty-catalog variant.
type CatalogHandle struct {
	once    sync.Once
	load    CatalogLoader
	catalog *Catalog
}

// NewCatalogHandle returns a handle that builds its catalog with load on first use.
func NewCatalogHandle(load CatalogLoader) *CatalogHandle {
	return &CatalogHandle{load: load}
}

// NewStaticHandle returns a handle over a fixed list of skills.
func NewStaticHandle(names ...string) *CatalogHandle {
	return NewCatalogHandle(func() ([]string, error) { return names, nil })
}

// Get returns the catalog, building it on first use.
func (h *CatalogHandle) Get() *Catalog {
	h.once.Do(func() {
		if h.load == nil {
			h.catalog = emptyCatalog(&CatalogError{Source: "(none)"})
			slog.Warn("skill catalog not configured, skill matching disabled")
			return
		}
		names, err := h.load()
		if err != nil {
			h.catalog = emptyCatalog(err)
			slog.Warn("skill catalog unavailable, skill matching disabled", slog.Any("error", err))
			return
		}
		h.catalog = NewCatalog(names)
		if h.catalog.Empty() {
			slog.Warn("skill catalog has no patterns, skill matching disabled")
			return
		}
		slog.Debug("skill catalog loaded", slog.Int("patterns", h.catalog.Len()))
	})
	return h.catalog
}

// Match is shorthand for h.Get().Match(text).
func (h *CatalogHandle) Match(text string) Set {
	return h.Get().Match(text)
}

// FromFile loads skills from a CSV file. An empty path selects the embedded catalog.
func FromFile(path string) CatalogLoader {
	if path == "" {
		return Embedded()
	}
	return func() ([]string, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, &CatalogError{Source: path, Cause: err}
		}
		defer func() { _ = f.Close() }()

		names, err := ReadCatalogCSV(f)
		if err != nil {
			return nil, &CatalogError{Source: path, Cause: err}
		}
		return names, nil
	}
}

// Embedded loads the catalog compiled into the binary.
func Embedded() CatalogLoader {
	return func() ([]string, error) {
		names, err := ReadCatalogCSV(bytes.NewReader(embeddedCatalog))
		if err != nil {
			return nil, &CatalogError{Source: "(embedded)", Cause: err}
		}
		return names, nil
	}
}

// ReadCatalogCSV flattens every non-empty cell of every row into a skill list.
func ReadCatalogCSV(r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var names []string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read skills CSV: %w", err)
		}
		for _, cell := range row {
			if cell = strings.TrimSpace(cell); cell != "" {
				names = append(names, cell)
			}
		}
	}
	return names, nil
}
