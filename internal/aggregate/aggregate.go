// FilePath: internal/aggregate/aggregate.go

// Package aggregate turns a raw ordered series of readings into a bounded,
// chart-ready point set. Two mutually exclusive modes exist: daily
// summarization for week-long windows (one averaged point per calendar day)
// and downsampling to a maximum point count for all other windows. The
// pipeline never fails; empty or sparse input degrades to empty or all-null
// output.
package aggregate

import (
	"math"
	"sort"
	"time"

	"github.com/bokashilab/sensorhub/internal/models"
)

// Time windows selectable by the dashboard.
const (
	Window24h = "24h"
	Window7d  = "7d"
	WindowAll = "all"
)

const (
	// MaxPoints24h bounds the 24-hour chart.
	MaxPoints24h = 48
	// MaxPointsAll bounds the all-time chart at roughly weekly resolution.
	MaxPointsAll = 52

	// SummaryDays is the span of the daily summarization window: today plus
	// the six preceding calendar days.
	SummaryDays = 7

	dayKeyFormat   = "2006-01-02"
	dayLabelFormat = "Mon Jan 2"
	clockFormat    = "15:04"
)

// FromReadings converts stored readings to display points with clock-time
// labels in the given location.
func FromReadings(readings []models.Reading, loc *time.Location) []models.DisplayPoint {
	if loc == nil {
		loc = time.Local
	}
	points := make([]models.DisplayPoint, 0, len(readings))
	for i := range readings {
		r := &readings[i]
		points = append(points, models.DisplayPoint{
			Timestamp:    r.Timestamp.UnixMilli(),
			Time:         r.Timestamp.In(loc).Format(clockFormat),
			Temperature:  r.Temperature,
			Humidity:     r.Humidity,
			CO2:          r.CO2,
			O2:           r.O2,
			PH:           r.PH,
			Pressure:     r.Pressure,
			Moisture:     r.Moisture,
			IR:           r.IR,
			Conductivity: r.Conductivity,
			ImageURL:     r.ImageURL,
		})
	}
	return points
}

// BuildSeries produces the display series for the selected window: daily
// summarization for the 7d window, downsampling for everything else.
func BuildSeries(points []models.DisplayPoint, window string, now time.Time, loc *time.Location) []models.DisplayPoint {
	switch window {
	case Window7d:
		return SummarizeDaily(points, now, loc)
	case WindowAll:
		return Downsample(points, MaxPointsAll)
	default:
		return Downsample(points, MaxPoints24h)
	}
}

// SummarizeDaily collapses the input into exactly one point per calendar day
// over the window covering now and the six preceding days, in the given
// location. Day buckets exist even when empty, so the result is always
// exactly seven points ordered ascending by day. Each measurement is the
// arithmetic mean of the bucket's non-null values rounded to two decimals,
// or null when the bucket has no values for that field. The image reference
// of the chronologically last reading in the bucket that has one is carried
// through.
func SummarizeDaily(points []models.DisplayPoint, now time.Time, loc *time.Location) []models.DisplayPoint {
	if loc == nil {
		loc = time.Local
	}
	local := now.In(loc)

	// Day boundaries: 00:00:00 of six days ago through 23:59:59.999 today.
	firstDay := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc).
		AddDate(0, 0, -(SummaryDays - 1))

	days := make([]time.Time, 0, SummaryDays)
	buckets := make(map[string][]models.DisplayPoint, SummaryDays)
	for i := 0; i < SummaryDays; i++ {
		day := firstDay.AddDate(0, 0, i)
		days = append(days, day)
		buckets[day.Format(dayKeyFormat)] = nil
	}

	sorted := sortedByTimestamp(points)
	for _, p := range sorted {
		key := time.UnixMilli(p.Timestamp).In(loc).Format(dayKeyFormat)
		if _, ok := buckets[key]; ok {
			buckets[key] = append(buckets[key], p)
		}
	}

	result := make([]models.DisplayPoint, 0, SummaryDays)
	for _, day := range days {
		dayPoints := buckets[day.Format(dayKeyFormat)]

		summary := models.DisplayPoint{
			Timestamp: time.Date(day.Year(), day.Month(), day.Day(), 12, 0, 0, 0, loc).UnixMilli(),
			Time:      day.Format(dayLabelFormat),
			ImageURL:  lastImageURL(dayPoints),
		}

		for _, field := range models.MeasurementFields {
			var sum float64
			var count int
			for i := range dayPoints {
				if v := dayPoints[i].Measurements()[field]; v != nil {
					sum += *v
					count++
				}
			}
			if count > 0 {
				avg := round2(sum / float64(count))
				summary.SetMeasurement(field, &avg)
			}
		}

		result = append(result, summary)
	}
	return result
}

// Downsample reduces a series to roughly maxPoints by striding, always
// preserving the first and last points. Input at or below the target is
// returned sorted but otherwise unchanged. Points carrying no measurement at
// all are dropped before striding; they have no signal to plot.
func Downsample(points []models.DisplayPoint, maxPoints int) []models.DisplayPoint {
	if len(points) == 0 {
		return []models.DisplayPoint{}
	}

	sorted := sortedByTimestamp(points)
	if maxPoints <= 0 || len(sorted) <= maxPoints {
		return sorted
	}

	filtered := sorted[:0:0]
	for _, p := range sorted {
		if p.HasMeasurement() {
			filtered = append(filtered, p)
		}
	}
	if len(filtered) == 0 {
		return []models.DisplayPoint{}
	}

	stride := (len(filtered) + maxPoints - 1) / maxPoints

	result := make([]models.DisplayPoint, 0, maxPoints+2)
	result = append(result, filtered[0])
	for i := stride; i < len(filtered)-stride; i += stride {
		result = append(result, filtered[i])
	}
	if len(filtered) > 1 {
		result = append(result, filtered[len(filtered)-1])
	}
	return result
}

func sortedByTimestamp(points []models.DisplayPoint) []models.DisplayPoint {
	sorted := make([]models.DisplayPoint, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp < sorted[j].Timestamp
	})
	return sorted
}

func lastImageURL(points []models.DisplayPoint) *string {
	for i := len(points) - 1; i >= 0; i-- {
		if points[i].ImageURL != nil {
			return points[i].ImageURL
		}
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
