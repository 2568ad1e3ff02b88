// FilePath: internal/models/models.display.go
package models

// DisplayPoint is one chart-ready data point derived from readings. Timestamp
// is epoch milliseconds; Time is a precomputed label (clock time for raw
// points, a calendar-day label for daily summaries). Never persisted.
type DisplayPoint struct {
	Timestamp    int64    `json:"timestamp"`
	Time         string   `json:"time"`
	Temperature  *float64 `json:"temperature"`
	Humidity     *float64 `json:"humidity"`
	CO2          *float64 `json:"co2"`
	O2           *float64 `json:"o2"`
	PH           *float64 `json:"ph"`
	Pressure     *float64 `json:"pressure"`
	Moisture     *float64 `json:"moisture"`
	IR           *float64 `json:"ir"`
	Conductivity *float64 `json:"conductivity"`
	ImageURL     *string  `json:"imageUrl"`
}

// Measurements returns the nine measurement values keyed by field name.
func (p *DisplayPoint) Measurements() map[string]*float64 {
	return map[string]*float64{
		"temperature":  p.Temperature,
		"humidity":     p.Humidity,
		"co2":          p.CO2,
		"o2":           p.O2,
		"ph":           p.PH,
		"pressure":     p.Pressure,
		"moisture":     p.Moisture,
		"ir":           p.IR,
		"conductivity": p.Conductivity,
	}
}

// HasMeasurement reports whether at least one measurement is non-null. Points
// without any signal are dropped before downsampling.
func (p *DisplayPoint) HasMeasurement() bool {
	for _, v := range p.Measurements() {
		if v != nil {
			return true
		}
	}
	return false
}

// SetMeasurement assigns a measurement by field name. Unknown names are ignored.
func (p *DisplayPoint) SetMeasurement(field string, value *float64) {
	switch field {
	case "temperature":
		p.Temperature = value
	case "humidity":
		p.Humidity = value
	case "co2":
		p.CO2 = value
	case "o2":
		p.O2 = value
	case "ph":
		p.PH = value
	case "pressure":
		p.Pressure = value
	case "moisture":
		p.Moisture = value
	case "ir":
		p.IR = value
	case "conductivity":
		p.Conductivity = value
	}
}
