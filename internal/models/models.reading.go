// FilePath: internal/models/models.reading.go
package models

import "time"

// Reading represents a single stored sensor reading. Every measurement is
// independently nullable; a reading may report any non-empty subset.
type Reading struct {
	ID           int64     `json:"id" db:"id"`
	Timestamp    time.Time `json:"timestamp" db:"timestamp"`
	Temperature  *float64  `json:"temperature" db:"temperature"`
	Humidity     *float64  `json:"humidity" db:"humidity"`
	CO2          *float64  `json:"co2" db:"co2"`
	O2           *float64  `json:"o2" db:"o2"`
	PH           *float64  `json:"ph" db:"ph"`
	Pressure     *float64  `json:"pressure" db:"pressure"`
	Moisture     *float64  `json:"moisture" db:"moisture"`
	IR           *float64  `json:"ir" db:"ir"`
	Conductivity *float64  `json:"conductivity" db:"conductivity"`
	ImageURL     *string   `json:"imageUrl" db:"image_url"`
}

// MeasurementFields lists the nine measurement column names in canonical order.
var MeasurementFields = []string{
	"temperature", "humidity", "co2", "o2", "ph",
	"pressure", "moisture", "ir", "conductivity",
}

// Measurements returns the nine measurement values keyed by field name.
func (r *Reading) Measurements() map[string]*float64 {
	return map[string]*float64{
		"temperature":  r.Temperature,
		"humidity":     r.Humidity,
		"co2":          r.CO2,
		"o2":           r.O2,
		"ph":           r.PH,
		"pressure":     r.Pressure,
		"moisture":     r.Moisture,
		"ir":           r.IR,
		"conductivity": r.Conductivity,
	}
}

// HasMeasurement reports whether at least one of the nine measurements is set.
func (r *Reading) HasMeasurement() bool {
	for _, v := range r.Measurements() {
		if v != nil {
			return true
		}
	}
	return false
}

// ImageRecord represents a stored camera snapshot reference.
type ImageRecord struct {
	ID        int64     `json:"id" db:"id"`
	ImageURL  string    `json:"imageUrl" db:"image_url"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
}

// ImageWithContent is an ImageRecord with its blob content inlined, as served
// by the latest-image endpoint.
type ImageWithContent struct {
	ImageRecord
	ImageBase64 string `json:"imageBase64"`
	MimeType    string `json:"mimeType,omitempty"`
}
