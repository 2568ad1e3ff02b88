// FilePath: internal/repository/postgres/postgres.images.go
package postgres

import (
	"context"
	"database/sql"

	"github.com/bokashilab/sensorhub/internal/database"
	"github.com/bokashilab/sensorhub/internal/errors"
	"github.com/bokashilab/sensorhub/internal/models"
	"github.com/bokashilab/sensorhub/internal/repository"
)

type ImageRepo struct {
	PostgresBaseRepo
}

func NewImageRepository(db database.DB) (*ImageRepo, error) {
	repo := &ImageRepo{PostgresBaseRepo{db: db}}
	if err := repo.initializeSchema(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *ImageRepo) initializeSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS image_records (
			id BIGSERIAL PRIMARY KEY,
			image_url TEXT NOT NULL,
			timestamp TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_image_records_timestamp
			ON image_records(timestamp DESC)`,
	}

	for _, query := range queries {
		if _, err := r.db.GetDB().Exec(query); err != nil {
			return errors.NewDatabaseError("failed to initialize image schema", err)
		}
	}
	return nil
}

func (r *ImageRepo) Insert(ctx context.Context, record *models.ImageRecord) (int64, error) {
	query := `
		INSERT INTO image_records (image_url)
		VALUES ($1)
		RETURNING id, timestamp`

	err := r.db.GetDB().QueryRowxContext(ctx, query, record.ImageURL).
		Scan(&record.ID, &record.Timestamp)
	if err != nil {
		return 0, errors.NewDatabaseError("failed to insert image record", err)
	}
	return record.ID, nil
}

func (r *ImageRepo) List(ctx context.Context) ([]models.ImageRecord, error) {
	records := []models.ImageRecord{}
	query := `
		SELECT id, image_url, timestamp
		FROM image_records
		ORDER BY timestamp DESC`

	err := r.db.GetDB().SelectContext(ctx, &records, query)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to list image records", err)
	}
	return records, nil
}

func (r *ImageRepo) Latest(ctx context.Context) (*models.ImageRecord, error) {
	record := &models.ImageRecord{}
	query := `
		SELECT id, image_url, timestamp
		FROM image_records
		ORDER BY timestamp DESC
		LIMIT 1`

	err := r.db.GetDB().GetContext(ctx, record, query)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, errors.NewDatabaseError("failed to get latest image record", err)
	}
	return record, nil
}
