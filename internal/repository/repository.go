// FilePath: internal/repository/repository.go
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bokashilab/sensorhub/internal/database"
	"github.com/bokashilab/sensorhub/internal/models"
)

var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidInput indicates that the input data is invalid
	ErrInvalidInput = errors.New("invalid input")
)

// ReadingRepository defines the interface for sensor reading persistence.
// Readings are append-only; the store assigns ids and defaults timestamps.
type ReadingRepository interface {
	database.Repository
	Insert(ctx context.Context, reading *models.Reading) (int64, error)
	// List returns readings ordered ascending by timestamp. Nil bounds are
	// open; non-nil bounds are inclusive.
	List(ctx context.Context, start, end *time.Time) ([]models.Reading, error)
	// Latest returns the single most recent reading, or ErrNotFound when the
	// table is empty.
	Latest(ctx context.Context) (*models.Reading, error)
}

// ImageRepository defines the interface for camera snapshot records.
type ImageRepository interface {
	database.Repository
	Insert(ctx context.Context, record *models.ImageRecord) (int64, error)
	// List returns image records ordered descending by timestamp.
	List(ctx context.Context) ([]models.ImageRecord, error)
	// Latest returns the most recent image record, or ErrNotFound.
	Latest(ctx context.Context) (*models.ImageRecord, error)
}
