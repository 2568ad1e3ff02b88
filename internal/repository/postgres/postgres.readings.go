// FilePath: internal/repository/postgres/postgres.readings.go
package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/bokashilab/sensorhub/internal/database"
	"github.com/bokashilab/sensorhub/internal/errors"
	"github.com/bokashilab/sensorhub/internal/models"
	"github.com/bokashilab/sensorhub/internal/repository"
)

type ReadingRepo struct {
	PostgresBaseRepo
}

func NewReadingRepository(db database.DB) (*ReadingRepo, error) {
	repo := &ReadingRepo{PostgresBaseRepo{db: db}}
	if err := repo.initializeSchema(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *ReadingRepo) initializeSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS sensor_readings (
			id BIGSERIAL PRIMARY KEY,
			timestamp TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			temperature DOUBLE PRECISION,
			humidity DOUBLE PRECISION,
			co2 DOUBLE PRECISION,
			o2 DOUBLE PRECISION,
			ph DOUBLE PRECISION,
			pressure DOUBLE PRECISION,
			moisture DOUBLE PRECISION,
			ir DOUBLE PRECISION,
			conductivity DOUBLE PRECISION,
			image_url TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sensor_readings_timestamp
			ON sensor_readings(timestamp DESC)`,
	}

	for _, query := range queries {
		if _, err := r.db.GetDB().Exec(query); err != nil {
			return errors.NewDatabaseError("failed to initialize readings schema", err)
		}
	}
	return nil
}

// Insert stores a new reading and returns the assigned id. A zero Timestamp
// is left to the store's NOW() default.
func (r *ReadingRepo) Insert(ctx context.Context, reading *models.Reading) (int64, error) {
	var query string
	var args []interface{}

	if reading.Timestamp.IsZero() {
		query = `
			INSERT INTO sensor_readings (
				temperature, humidity, co2, o2, ph,
				pressure, moisture, ir, conductivity, image_url
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING id`
		args = []interface{}{
			reading.Temperature, reading.Humidity, reading.CO2, reading.O2, reading.PH,
			reading.Pressure, reading.Moisture, reading.IR, reading.Conductivity, reading.ImageURL,
		}
	} else {
		query = `
			INSERT INTO sensor_readings (
				timestamp, temperature, humidity, co2, o2, ph,
				pressure, moisture, ir, conductivity, image_url
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			RETURNING id`
		args = []interface{}{
			reading.Timestamp,
			reading.Temperature, reading.Humidity, reading.CO2, reading.O2, reading.PH,
			reading.Pressure, reading.Moisture, reading.IR, reading.Conductivity, reading.ImageURL,
		}
	}

	var id int64
	err := r.db.GetDB().QueryRowxContext(ctx, query, args...).Scan(&id)
	if err != nil {
		return 0, errors.NewDatabaseError("failed to insert sensor reading", err)
	}
	reading.ID = id
	return id, nil
}

func (r *ReadingRepo) List(ctx context.Context, start, end *time.Time) ([]models.Reading, error) {
	readings := []models.Reading{}
	query := `
		SELECT id, timestamp, temperature, humidity, co2, o2, ph,
		       pressure, moisture, ir, conductivity, image_url
		FROM sensor_readings`

	var args []interface{}
	switch {
	case start != nil && end != nil:
		query += ` WHERE timestamp BETWEEN $1 AND $2`
		args = []interface{}{*start, *end}
	case start != nil:
		query += ` WHERE timestamp >= $1`
		args = []interface{}{*start}
	case end != nil:
		query += ` WHERE timestamp <= $1`
		args = []interface{}{*end}
	}
	query += ` ORDER BY timestamp ASC`

	err := r.db.GetDB().SelectContext(ctx, &readings, query, args...)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to list sensor readings", err)
	}
	return readings, nil
}

func (r *ReadingRepo) Latest(ctx context.Context) (*models.Reading, error) {
	reading := &models.Reading{}
	query := `
		SELECT id, timestamp, temperature, humidity, co2, o2, ph,
		       pressure, moisture, ir, conductivity, image_url
		FROM sensor_readings
		ORDER BY timestamp DESC
		LIMIT 1`

	err := r.db.GetDB().GetContext(ctx, reading, query)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, errors.NewDatabaseError("failed to get latest sensor reading", err)
	}
	return reading, nil
}
