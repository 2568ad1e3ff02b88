// FilePath: internal/models/api.models.filters.go
package models

import (
	"fmt"
	"time"
)

// ReadingFilters carries the optional time bounds of a readings query.
// Callers pass ISO-8601 timestamps; Bounds translates them to time.Time.
type ReadingFilters struct {
	StartTime string `schema:"StartTime"`
	EndTime   string `schema:"EndTime"`
}

// Bounds parses the ISO-8601 filter strings into inclusive time bounds.
// An empty string yields a nil bound.
func (f ReadingFilters) Bounds() (start, end *time.Time, err error) {
	if f.StartTime != "" {
		t, perr := time.Parse(time.RFC3339, f.StartTime)
		if perr != nil {
			return nil, nil, fmt.Errorf("invalid StartTime %q: %w", f.StartTime, perr)
		}
		start = &t
	}
	if f.EndTime != "" {
		t, perr := time.Parse(time.RFC3339, f.EndTime)
		if perr != nil {
			return nil, nil, fmt.Errorf("invalid EndTime %q: %w", f.EndTime, perr)
		}
		end = &t
	}
	return start, end, nil
}
