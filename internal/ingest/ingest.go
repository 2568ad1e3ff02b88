// FilePath: internal/ingest/ingest.go

// Package ingest accepts new sensor readings. Two parsing adapters (JSON body
// and multipart sensorData field) produce the same validated submission value,
// keeping the insert logic adapter-agnostic. For multipart ingestion the image
// upload strictly precedes the row insert; an insert failure triggers a
// best-effort compensating delete whose own failure is only observable through
// the event channel, never through the request's response.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	nuts "github.com/vaudience/go-nuts"

	"github.com/bokashilab/sensorhub/internal/blobstore"
	"github.com/bokashilab/sensorhub/internal/errors"
	"github.com/bokashilab/sensorhub/internal/models"
	"github.com/bokashilab/sensorhub/internal/repository"
)

// Events emitted on the ingest event channel.
const (
	EventCompensated        = "image.compensated"
	EventCompensationFailed = "image.compensation_failed"
)

// Submission is the validated reading produced by both parsing adapters.
type Submission struct {
	Temperature  *float64 `json:"temperature"`
	Humidity     *float64 `json:"humidity"`
	CO2          *float64 `json:"co2"`
	O2           *float64 `json:"o2"`
	PH           *float64 `json:"ph"`
	Pressure     *float64 `json:"pressure"`
	Moisture     *float64 `json:"moisture"`
	IR           *float64 `json:"ir"`
	Conductivity *float64 `json:"conductivity"`
}

// HasMeasurement reports whether at least one of the nine measurement fields
// is non-null. Unknown JSON keys do not count.
func (s *Submission) HasMeasurement() bool {
	return s.Temperature != nil || s.Humidity != nil || s.CO2 != nil ||
		s.O2 != nil || s.PH != nil || s.Pressure != nil ||
		s.Moisture != nil || s.IR != nil || s.Conductivity != nil
}

// ToReading converts the submission to a storable reading. The store defaults
// the timestamp on insert.
func (s *Submission) ToReading() *models.Reading {
	return &models.Reading{
		Temperature:  s.Temperature,
		Humidity:     s.Humidity,
		CO2:          s.CO2,
		O2:           s.O2,
		PH:           s.PH,
		Pressure:     s.Pressure,
		Moisture:     s.Moisture,
		IR:           s.IR,
		Conductivity: s.Conductivity,
	}
}

// ParseJSON is the adapter for application/json request bodies.
func ParseJSON(r io.Reader) (*Submission, error) {
	var sub Submission
	if err := json.NewDecoder(r).Decode(&sub); err != nil {
		return nil, errors.NewValidationError("invalid JSON in request body", err)
	}
	if !sub.HasMeasurement() {
		return nil, errors.NewValidationError("no sensor data provided in JSON body", nil)
	}
	return &sub, nil
}

// ParseSensorDataField is the adapter for the multipart sensorData field.
func ParseSensorDataField(raw string) (*Submission, error) {
	var sub Submission
	if err := json.Unmarshal([]byte(raw), &sub); err != nil {
		return nil, errors.NewValidationError("invalid JSON in sensorData field", err)
	}
	if !sub.HasMeasurement() {
		return nil, errors.NewValidationError("invalid or empty sensor data provided in sensorData field", nil)
	}
	return &sub, nil
}

// ImageUpload carries one uploaded image through ingestion.
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        io.Reader
}

// CompensationStatus records the outcome of the compensating blob delete
// after a failed row insert.
type CompensationStatus int

const (
	CompensationNotAttempted CompensationStatus = iota
	CompensationSucceeded
	CompensationFailed
)

func (s CompensationStatus) String() string {
	switch s {
	case CompensationSucceeded:
		return "succeeded"
	case CompensationFailed:
		return "failed"
	default:
		return "not_attempted"
	}
}

// StoreFailure is returned when the row insert fails after a successful blob
// upload. It carries the compensation outcome; the caller's response is built
// from the original insert failure only.
type StoreFailure struct {
	Insert       error
	Compensation CompensationStatus
	Key          string
}

func (f *StoreFailure) Error() string {
	return fmt.Sprintf("row insert failed (compensation %s): %v", f.Compensation, f.Insert)
}

func (f *StoreFailure) Unwrap() error {
	return f.Insert
}

// Result is the outcome of a successful reading ingestion.
type Result struct {
	InsertedID int64
	ImageURL   *string
}

// ImageResult is the outcome of a successful image-only ingestion.
type ImageResult struct {
	InsertedID int64
	ImageURL   string
	Timestamp  time.Time
}

// Service coordinates validation, blob upload and row insert.
type Service struct {
	readings repository.ReadingRepository
	images   repository.ImageRepository
	blobs    blobstore.Store
	events   *nuts.EventEmitter
}

// New creates a new ingest service. A nil blob store is valid; multipart
// ingestion then fails with a storage error before any insert.
func New(readings repository.ReadingRepository, images repository.ImageRepository, blobs blobstore.Store) *Service {
	return &Service{
		readings: readings,
		images:   images,
		blobs:    blobs,
		events:   nuts.NewEventEmitter(),
	}
}

// OnEvent registers a callback for ingest events (compensation outcomes).
func (s *Service) OnEvent(event string, handler func(key string)) {
	s.events.On(event, "ingest_handler", func(args ...interface{}) {
		if len(args) > 0 {
			if key, ok := args[0].(string); ok {
				handler(key)
			}
		}
	})
}

// IngestJSON inserts a reading without an image.
func (s *Service) IngestJSON(ctx context.Context, sub *Submission) (*Result, error) {
	id, err := s.readings.Insert(ctx, sub.ToReading())
	if err != nil {
		return nil, err
	}
	return &Result{InsertedID: id}, nil
}

// IngestMultipart uploads the image and then inserts the reading row. The
// upload completes (or fails) strictly before the insert is attempted.
func (s *Service) IngestMultipart(ctx context.Context, sub *Submission, image ImageUpload) (*Result, error) {
	if s.blobs == nil {
		return nil, errors.NewStorageError("blob storage not configured", nil)
	}

	key := GenerateKey(image.Filename, time.Now())
	if err := s.blobs.Put(ctx, key, image.Data, image.ContentType); err != nil {
		return nil, errors.NewStorageError("image upload failed", err)
	}

	reading := sub.ToReading()
	reading.ImageURL = &key
	id, err := s.readings.Insert(ctx, reading)
	if err != nil {
		return nil, &StoreFailure{
			Insert:       err,
			Compensation: s.compensate(ctx, key),
			Key:          key,
		}
	}

	return &Result{InsertedID: id, ImageURL: &key}, nil
}

// IngestImage uploads a standalone image and inserts its record.
func (s *Service) IngestImage(ctx context.Context, image ImageUpload) (*ImageResult, error) {
	if s.blobs == nil {
		return nil, errors.NewStorageError("blob storage not configured", nil)
	}

	key := GenerateKey(image.Filename, time.Now())
	if err := s.blobs.Put(ctx, key, image.Data, image.ContentType); err != nil {
		return nil, errors.NewStorageError("image upload failed", err)
	}

	record := &models.ImageRecord{ImageURL: key}
	if _, err := s.images.Insert(ctx, record); err != nil {
		return nil, &StoreFailure{
			Insert:       err,
			Compensation: s.compensate(ctx, key),
			Key:          key,
		}
	}

	return &ImageResult{
		InsertedID: record.ID,
		ImageURL:   record.ImageURL,
		Timestamp:  record.Timestamp,
	}, nil
}

// compensate deletes an uploaded blob after a failed insert. Best effort: a
// delete failure is logged and emitted, never surfaced to the caller.
func (s *Service) compensate(ctx context.Context, key string) CompensationStatus {
	if err := s.blobs.Delete(ctx, key); err != nil {
		nuts.L.Errorf("[Ingest] Failed to clean up image %s after insert failure: %v", key, err)
		s.events.Emit(EventCompensationFailed, key)
		return CompensationFailed
	}
	nuts.L.Infof("[Ingest] Cleaned up uploaded image %s after insert failure", key)
	s.events.Emit(EventCompensated, key)
	return CompensationSucceeded
}

// GenerateKey builds the storage key for an uploaded image: unix milliseconds
// plus the sanitized original filename, collision-resistant for the polling
// cadences involved.
func GenerateKey(filename string, now time.Time) string {
	base := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	base = strings.TrimSpace(base)
	if base == "" || base == "." || base == ".." {
		base = "upload"
	}
	return fmt.Sprintf("%d-%s", now.UnixMilli(), base)
}
