// FilePath: internal/dashboard/dashboard.go

// Package dashboard models the polling dashboard as an explicit state
// machine: Reduce takes the current state and one event and returns the next
// state. No shared mutable singleton is involved; renderers derive their
// chart series from State.History via the aggregate package.
package dashboard

import (
	"time"

	"github.com/bokashilab/sensorhub/internal/aggregate"
	"github.com/bokashilab/sensorhub/internal/models"
)

// Phase is the lifecycle phase of the dashboard.
type Phase int

const (
	PhaseInitialLoading Phase = iota
	PhaseReady
	PhaseRefreshing
)

func (p Phase) String() string {
	switch p {
	case PhaseInitialLoading:
		return "initial_loading"
	case PhaseReady:
		return "ready"
	case PhaseRefreshing:
		return "refreshing"
	default:
		return "unknown"
	}
}

// MaxHistoricalPoints bounds the rolling window: a 5-second polling cadence
// over a 24-hour horizon.
const (
	pollCadenceSeconds  = 5
	secondsInDay        = 24 * 60 * 60
	MaxHistoricalPoints = (secondsInDay + pollCadenceSeconds - 1) / pollCadenceSeconds
)

// State is the complete dashboard state. Values are treated as immutable;
// Reduce returns fresh copies of anything it changes.
type State struct {
	Phase      Phase
	Window     string
	Current    *models.DisplayPoint
	History    []models.DisplayPoint
	Cached     map[string][]models.DisplayPoint
	Simulating bool
	Err        string
}

// NewState creates the initial state for the given time window.
func NewState(window string) State {
	if window == "" {
		window = aggregate.Window24h
	}
	return State{
		Phase:  PhaseInitialLoading,
		Window: window,
		Cached: map[string][]models.DisplayPoint{},
	}
}

// ShouldPoll reports whether the latest-reading poll timer should run.
// Polling is suspended during initial load, window refetches and simulation.
func (s State) ShouldPoll() bool {
	return s.Phase == PhaseReady && !s.Simulating
}

// Event is one dashboard occurrence fed to Reduce.
type Event interface{ isEvent() }

// InitialLoadSucceeded carries the full bounded window fetched on mount or
// after a window change.
type InitialLoadSucceeded struct {
	Points []models.DisplayPoint
}

// InitialLoadFailed leaves the dashboard in a degraded ready state with
// stale or empty data.
type InitialLoadFailed struct {
	Err string
}

// PollSucceeded carries one polled (or simulated) latest reading.
type PollSucceeded struct {
	Point models.DisplayPoint
}

// PollFailed surfaces a polling error without touching displayed data.
type PollFailed struct {
	Err string
}

// WindowChanged selects a new time window.
type WindowChanged struct {
	Window string
}

// SimulationToggled enables or disables simulation mode, which suspends
// server polling and feeds synthetic data through the PollSucceeded path.
type SimulationToggled struct {
	On bool
}

// ForceRefresh drops the cached history for the current window and forces a
// refetch.
type ForceRefresh struct{}

func (InitialLoadSucceeded) isEvent() {}
func (InitialLoadFailed) isEvent()    {}
func (PollSucceeded) isEvent()        {}
func (PollFailed) isEvent()           {}
func (WindowChanged) isEvent()        {}
func (SimulationToggled) isEvent()    {}
func (ForceRefresh) isEvent()         {}

// Reduce applies one event to the state and returns the next state.
func Reduce(s State, e Event) State {
	switch ev := e.(type) {
	case InitialLoadSucceeded:
		points := trimHistory(ev.Points)
		s.History = points
		s.Current = latestOf(points)
		s.Cached = withCacheEntry(s.Cached, s.Window, points)
		s.Phase = PhaseReady
		s.Err = ""
		return s

	case InitialLoadFailed:
		// Degraded ready state: keep whatever data is already displayed.
		s.Phase = PhaseReady
		s.Err = ev.Err
		return s

	case PollSucceeded:
		// Freshness guard: never regress on out-of-order or duplicate
		// responses.
		if s.Current != nil && ev.Point.Timestamp <= s.Current.Timestamp {
			return s
		}
		point := ev.Point
		history := appendTrimmed(s.History, point)
		s.Current = &point
		s.History = history
		s.Cached = withCacheEntry(s.Cached, s.Window, history)
		s.Err = ""
		return s

	case PollFailed:
		s.Err = ev.Err
		return s

	case WindowChanged:
		if ev.Window == "" || ev.Window == s.Window {
			return s
		}
		s.Window = ev.Window
		if cached, ok := s.Cached[ev.Window]; ok {
			s.History = cached
			s.Current = latestOf(cached)
			s.Phase = PhaseReady
			return s
		}
		s.Phase = PhaseRefreshing
		s.History = nil
		return s

	case SimulationToggled:
		s.Simulating = ev.On
		return s

	case ForceRefresh:
		cached := make(map[string][]models.DisplayPoint, len(s.Cached))
		for k, v := range s.Cached {
			if k != s.Window {
				cached[k] = v
			}
		}
		s.Cached = cached
		s.Phase = PhaseRefreshing
		return s

	default:
		return s
	}
}

// Series derives the chart series for the current window from the history.
func (s State) Series(now time.Time, loc *time.Location) []models.DisplayPoint {
	return aggregate.BuildSeries(s.History, s.Window, now, loc)
}

// PollInterval returns the latest-reading polling cadence for a window.
// Shorter windows poll more frequently.
func PollInterval(window string) time.Duration {
	switch window {
	case aggregate.Window24h:
		return 5 * time.Minute
	case aggregate.Window7d:
		return 30 * time.Minute
	case aggregate.WindowAll:
		return time.Hour
	default:
		return 10 * time.Minute
	}
}

// NextPollIn returns the remaining time until the next poll, for countdown
// display. Zero when the poll is due or overdue.
func NextPollIn(lastUpdated time.Time, window string, now time.Time) time.Duration {
	remaining := lastUpdated.Add(PollInterval(window)).Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

func latestOf(points []models.DisplayPoint) *models.DisplayPoint {
	var latest *models.DisplayPoint
	for i := range points {
		if latest == nil || points[i].Timestamp > latest.Timestamp {
			latest = &points[i]
		}
	}
	if latest == nil {
		return nil
	}
	p := *latest
	return &p
}

func trimHistory(points []models.DisplayPoint) []models.DisplayPoint {
	if len(points) <= MaxHistoricalPoints {
		out := make([]models.DisplayPoint, len(points))
		copy(out, points)
		return out
	}
	out := make([]models.DisplayPoint, MaxHistoricalPoints)
	copy(out, points[len(points)-MaxHistoricalPoints:])
	return out
}

func appendTrimmed(history []models.DisplayPoint, point models.DisplayPoint) []models.DisplayPoint {
	start := 0
	if len(history) >= MaxHistoricalPoints {
		start = len(history) - MaxHistoricalPoints + 1
	}
	out := make([]models.DisplayPoint, 0, len(history)-start+1)
	out = append(out, history[start:]...)
	out = append(out, point)
	return out
}

func withCacheEntry(cached map[string][]models.DisplayPoint, window string, points []models.DisplayPoint) map[string][]models.DisplayPoint {
	out := make(map[string][]models.DisplayPoint, len(cached)+1)
	for k, v := range cached {
		out[k] = v
	}
	out[window] = points
	return out
}
