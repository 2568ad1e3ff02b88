// FilePath: internal/models/api.models.filters_test.go
package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoundsEmpty(t *testing.T) {
	start, end, err := ReadingFilters{}.Bounds()
	require.NoError(t, err)
	assert.Nil(t, start)
	assert.Nil(t, end)
}

func TestBoundsParsed(t *testing.T) {
	f := ReadingFilters{
		StartTime: "2026-03-01T00:00:00Z",
		EndTime:   "2026-03-15T23:59:59+02:00",
	}

	start, end, err := f.Bounds()
	require.NoError(t, err)
	require.NotNil(t, start)
	require.NotNil(t, end)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), start.UTC())
	assert.Equal(t, time.Date(2026, 3, 15, 21, 59, 59, 0, time.UTC), end.UTC())
}

func TestBoundsInvalid(t *testing.T) {
	_, _, err := ReadingFilters{StartTime: "yesterday"}.Bounds()
	assert.Error(t, err)

	_, _, err = ReadingFilters{EndTime: "2026-03-01"}.Bounds()
	assert.Error(t, err)
}
