// FilePath: internal/aggregate/aggregate_test.go
package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bokashilab/sensorhub/internal/models"
)

func fp(v float64) *float64 { return &v }

func pointAt(ts time.Time, temp *float64) models.DisplayPoint {
	return models.DisplayPoint{
		Timestamp:   ts.UnixMilli(),
		Time:        ts.Format("15:04"),
		Temperature: temp,
	}
}

func TestSummarizeDailyAlwaysSevenPoints(t *testing.T) {
	loc := time.UTC
	now := time.Date(2026, 3, 15, 10, 30, 0, 0, loc)

	result := SummarizeDaily(nil, now, loc)
	require.Len(t, result, SummaryDays)

	// Empty buckets still produce labeled points with null measurements.
	for _, p := range result {
		assert.False(t, p.HasMeasurement())
		assert.NotEmpty(t, p.Time)
	}

	// Ascending by day, ending today.
	assert.Equal(t, "Mon Mar 9", result[0].Time)
	assert.Equal(t, "Sun Mar 15", result[6].Time)
	for i := 1; i < len(result); i++ {
		assert.Greater(t, result[i].Timestamp, result[i-1].Timestamp)
	}
}

func TestSummarizeDailyMeanIgnoresNulls(t *testing.T) {
	loc := time.UTC
	now := time.Date(2026, 3, 15, 18, 0, 0, 0, loc)
	day := time.Date(2026, 3, 15, 0, 0, 0, 0, loc)

	points := []models.DisplayPoint{
		pointAt(day.Add(8*time.Hour), fp(20)),
		pointAt(day.Add(12*time.Hour), fp(24)),
		pointAt(day.Add(16*time.Hour), nil),
	}

	result := SummarizeDaily(points, now, loc)
	require.Len(t, result, SummaryDays)

	today := result[6]
	require.NotNil(t, today.Temperature)
	assert.Equal(t, 22.0, *today.Temperature)
	assert.Nil(t, today.Humidity)
}

func TestSummarizeDailyRoundsToTwoDecimals(t *testing.T) {
	loc := time.UTC
	now := time.Date(2026, 3, 15, 18, 0, 0, 0, loc)
	day := time.Date(2026, 3, 15, 0, 0, 0, 0, loc)

	points := []models.DisplayPoint{
		pointAt(day.Add(8*time.Hour), fp(20)),
		pointAt(day.Add(12*time.Hour), fp(21)),
		pointAt(day.Add(16*time.Hour), fp(21)),
	}

	result := SummarizeDaily(points, now, loc)
	require.NotNil(t, result[6].Temperature)
	assert.Equal(t, 20.67, *result[6].Temperature)
}

func TestSummarizeDailyNoonTimestamps(t *testing.T) {
	loc := time.UTC
	now := time.Date(2026, 3, 15, 9, 0, 0, 0, loc)

	result := SummarizeDaily(nil, now, loc)
	for i, p := range result {
		ts := time.UnixMilli(p.Timestamp).In(loc)
		assert.Equal(t, 12, ts.Hour(), "day %d", i)
		assert.Equal(t, 0, ts.Minute())
	}
}

func TestSummarizeDailySparseDays(t *testing.T) {
	loc := time.UTC
	now := time.Date(2026, 3, 15, 18, 0, 0, 0, loc)

	// Data on days 1, 3 and 5 of the window only.
	points := []models.DisplayPoint{
		pointAt(time.Date(2026, 3, 9, 10, 0, 0, 0, loc), fp(10)),
		pointAt(time.Date(2026, 3, 11, 10, 0, 0, 0, loc), fp(12)),
		pointAt(time.Date(2026, 3, 13, 10, 0, 0, 0, loc), fp(14)),
	}

	result := SummarizeDaily(points, now, loc)
	require.Len(t, result, SummaryDays)

	hasData := 0
	for _, p := range result {
		if p.HasMeasurement() {
			hasData++
		}
	}
	assert.Equal(t, 3, hasData)
	assert.Equal(t, 10.0, *result[0].Temperature)
	assert.Nil(t, result[1].Temperature)
	assert.Equal(t, 12.0, *result[2].Temperature)
}

func TestSummarizeDailyIgnoresOutOfWindowPoints(t *testing.T) {
	loc := time.UTC
	now := time.Date(2026, 3, 15, 18, 0, 0, 0, loc)

	points := []models.DisplayPoint{
		pointAt(time.Date(2026, 3, 1, 10, 0, 0, 0, loc), fp(99)),
		pointAt(time.Date(2026, 3, 20, 10, 0, 0, 0, loc), fp(99)),
	}

	result := SummarizeDaily(points, now, loc)
	for _, p := range result {
		assert.False(t, p.HasMeasurement())
	}
}

func TestSummarizeDailyCarriesLastImage(t *testing.T) {
	loc := time.UTC
	now := time.Date(2026, 3, 15, 18, 0, 0, 0, loc)
	day := time.Date(2026, 3, 15, 0, 0, 0, 0, loc)

	early := "a.jpg"
	late := "b.jpg"
	p1 := pointAt(day.Add(8*time.Hour), fp(20))
	p1.ImageURL = &early
	p2 := pointAt(day.Add(12*time.Hour), fp(21))
	p2.ImageURL = &late
	p3 := pointAt(day.Add(16*time.Hour), fp(22))

	result := SummarizeDaily([]models.DisplayPoint{p3, p1, p2}, now, loc)
	require.NotNil(t, result[6].ImageURL)
	assert.Equal(t, late, *result[6].ImageURL)
}

func TestDownsampleEmptyInput(t *testing.T) {
	assert.Empty(t, Downsample(nil, 48))
	assert.Empty(t, Downsample([]models.DisplayPoint{}, 48))
}

func TestDownsampleBelowTargetUnchanged(t *testing.T) {
	base := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	points := make([]models.DisplayPoint, 0, 31)
	for i := 0; i < 31; i++ {
		points = append(points, pointAt(base.Add(time.Duration(i)*time.Minute), fp(float64(i))))
	}

	result := Downsample(points, MaxPoints24h)
	require.Len(t, result, 31)
	for i := range points {
		assert.Equal(t, points[i].Timestamp, result[i].Timestamp)
	}
}

func TestDownsampleSortsInput(t *testing.T) {
	base := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	points := []models.DisplayPoint{
		pointAt(base.Add(2*time.Minute), fp(2)),
		pointAt(base, fp(0)),
		pointAt(base.Add(time.Minute), fp(1)),
	}

	result := Downsample(points, 48)
	require.Len(t, result, 3)
	assert.Equal(t, 0.0, *result[0].Temperature)
	assert.Equal(t, 1.0, *result[1].Temperature)
	assert.Equal(t, 2.0, *result[2].Temperature)
}

func TestDownsampleBoundedSize(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for _, n := range []int{100, 500, 17280} {
		points := make([]models.DisplayPoint, 0, n)
		for i := 0; i < n; i++ {
			points = append(points, pointAt(base.Add(time.Duration(i)*time.Second), fp(float64(i))))
		}

		result := Downsample(points, MaxPoints24h)
		assert.LessOrEqual(t, len(result), MaxPoints24h+2, "n=%d", n)
		assert.GreaterOrEqual(t, len(result), 2, "n=%d", n)
	}
}

func TestDownsamplePreservesFirstAndLast(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	points := make([]models.DisplayPoint, 0, 300)
	for i := 0; i < 300; i++ {
		points = append(points, pointAt(base.Add(time.Duration(i)*time.Minute), fp(float64(i))))
	}

	result := Downsample(points, MaxPoints24h)
	require.NotEmpty(t, result)
	assert.Equal(t, points[0].Timestamp, result[0].Timestamp)
	assert.Equal(t, points[299].Timestamp, result[len(result)-1].Timestamp)
}

func TestDownsampleResultIsSortedSubsequence(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	points := make([]models.DisplayPoint, 0, 1000)
	for i := 0; i < 1000; i++ {
		points = append(points, pointAt(base.Add(time.Duration(i)*time.Second), fp(float64(i))))
	}

	result := Downsample(points, MaxPointsAll)
	seen := make(map[int64]bool, len(points))
	for _, p := range points {
		seen[p.Timestamp] = true
	}
	for i, p := range result {
		assert.True(t, seen[p.Timestamp], "point %d not from input", i)
		if i > 0 {
			assert.Greater(t, p.Timestamp, result[i-1].Timestamp)
		}
	}
}

func TestDownsampleDropsAllNullPoints(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	points := make([]models.DisplayPoint, 0, 200)
	for i := 0; i < 200; i++ {
		var temp *float64
		if i%2 == 0 {
			temp = fp(float64(i))
		}
		points = append(points, pointAt(base.Add(time.Duration(i)*time.Minute), temp))
	}

	result := Downsample(points, 48)
	for i, p := range result {
		assert.True(t, p.HasMeasurement(), "point %d has no signal", i)
	}
}

func TestDownsampleAllNullAboveTarget(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	points := make([]models.DisplayPoint, 0, 100)
	for i := 0; i < 100; i++ {
		points = append(points, pointAt(base.Add(time.Duration(i)*time.Minute), nil))
	}

	assert.Empty(t, Downsample(points, 48))
}

func TestBuildSeriesSelectsMode(t *testing.T) {
	loc := time.UTC
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, loc)
	base := now.Add(-2 * time.Hour)
	points := make([]models.DisplayPoint, 0, 200)
	for i := 0; i < 200; i++ {
		points = append(points, pointAt(base.Add(time.Duration(i)*time.Second), fp(float64(i))))
	}

	assert.Len(t, BuildSeries(points, Window7d, now, loc), SummaryDays)
	assert.LessOrEqual(t, len(BuildSeries(points, Window24h, now, loc)), MaxPoints24h+2)
	assert.LessOrEqual(t, len(BuildSeries(points, WindowAll, now, loc)), MaxPointsAll+2)
	// Unknown windows fall back to 24h behavior.
	assert.LessOrEqual(t, len(BuildSeries(points, "bogus", now, loc)), MaxPoints24h+2)
}

func TestFromReadings(t *testing.T) {
	loc := time.UTC
	ts := time.Date(2026, 3, 15, 14, 30, 0, 0, loc)
	url := "images/1.jpg"
	readings := []models.Reading{
		{ID: 1, Timestamp: ts, Temperature: fp(21.5), ImageURL: &url},
	}

	points := FromReadings(readings, loc)
	require.Len(t, points, 1)
	assert.Equal(t, ts.UnixMilli(), points[0].Timestamp)
	assert.Equal(t, "14:30", points[0].Time)
	assert.Equal(t, 21.5, *points[0].Temperature)
	assert.Equal(t, url, *points[0].ImageURL)
}
