// FilePath: internal/dashboard/simulate.go
package dashboard

import (
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/bokashilab/sensorhub/internal/models"
)

// DefaultSimulationInterval is the cadence of synthetic updates while
// simulation mode is active.
const DefaultSimulationInterval = 2 * time.Second

// Simulator produces synthetic readings in plausible ranges. Simulated points
// travel through the same PollSucceeded path as real ones, so the aggregation
// pipeline and rendering are agnostic to the data source.
type Simulator struct {
	interval time.Duration
	faker    *gofakeit.Faker
}

// NewSimulator creates a simulator with the default update interval.
func NewSimulator() *Simulator {
	return &Simulator{
		interval: DefaultSimulationInterval,
		faker:    gofakeit.New(0),
	}
}

// NewSimulatorWithSeed creates a deterministic simulator for tests.
func NewSimulatorWithSeed(seed uint64, interval time.Duration) *Simulator {
	if interval <= 0 {
		interval = DefaultSimulationInterval
	}
	return &Simulator{
		interval: interval,
		faker:    gofakeit.New(seed),
	}
}

// Interval returns the simulation update cadence.
func (s *Simulator) Interval() time.Duration {
	return s.interval
}

// Next generates one synthetic display point stamped with now.
func (s *Simulator) Next(now time.Time) models.DisplayPoint {
	point := models.DisplayPoint{
		Timestamp: now.UnixMilli(),
		Time:      now.Format("15:04"),
	}
	point.Temperature = s.value(15, 30)     // °C
	point.Humidity = s.value(40, 70)        // %RH
	point.CO2 = s.value(400, 1500)          // ppm
	point.O2 = s.value(19, 21)              // %
	point.PH = s.value(5.5, 7.5)            // pH
	point.Pressure = s.value(980, 1030)     // hPa
	point.Moisture = s.value(30, 80)        // %
	point.IR = s.value(100, 1000)           // lux
	point.Conductivity = s.value(500, 2500) // µS/cm
	return point
}

func (s *Simulator) value(min, max float64) *float64 {
	v := s.faker.Float64Range(min, max)
	return &v
}
