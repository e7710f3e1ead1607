package corpus

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Source yields the full job corpus.
type Source interface {
	Load(ctx context.Context) ([]Job, error)
}

// Store is a Source that can also accept newly scraped postings.
type Store interface {
	Source
	// Append adds postings whose Link is not already present and reports how
	// many were added.
	Append(ctx context.Context, jobs []Job) (int, error)
	Close() error
}

// Open returns the store for location: a postgres:// or postgresql:// URL,
// a sqlite:// path, or a plain CSV file path.
func Open(ctx context.Context, location string) (Store, error) {
	location = strings.TrimSpace(location)
	switch {
	case location == "":
		return nil, fmt.Errorf("corpus location is empty")
	case strings.HasPrefix(location, "postgres://"), strings.HasPrefix(location, "postgresql://"):
		return OpenPostgres(ctx, location)
	case strings.HasPrefix(location, "sqlite://"):
		return OpenSQLite(ctx, strings.TrimPrefix(location, "sqlite://"))
	default:
		return NewCSVFile(strings.TrimPrefix(location, "file://")), nil
	}
}

// dedupeNew drops jobs whose link is in seen or repeats an earlier job in the
// batch. Jobs without a link are kept. seen is updated with the kept links.
func dedupeNew(jobs []Job, seen map[string]struct{}) []Job {
	var out []Job
	for _, job := range jobs {
		if job.Link != "" {
			if _, dup := seen[job.Link]; dup {
				continue
			}
			seen[job.Link] = struct{}{}
		}
		out = append(out, job)
	}
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
