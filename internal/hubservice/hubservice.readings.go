// FilePath: internal/hubservice/hubservice.readings.go
package hubservice

import (
	"context"
	"encoding/base64"
	stderrors "errors"
	"strings"
	"time"

	"github.com/bokashilab/sensorhub/internal/cache"
	"github.com/bokashilab/sensorhub/internal/errors"
	"github.com/bokashilab/sensorhub/internal/models"
	"github.com/bokashilab/sensorhub/internal/repository"
)

// ListReadings returns readings ordered ascending by timestamp, optionally
// restricted to inclusive time bounds. The window cache, when configured, is
// consulted first; cache failures fall through to the store.
func (s *HubService) ListReadings(ctx context.Context, start, end *time.Time) ([]models.Reading, error) {
	var key string
	if s.readingsCache != nil {
		key = cache.Key(start, end)
		if cached, ok := s.readingsCache.Get(ctx, key); ok {
			return cached, nil
		}
	}

	readings, err := s.Readings.List(ctx, start, end)
	if err != nil {
		return nil, err
	}

	if s.readingsCache != nil {
		s.readingsCache.Set(ctx, key, readings)
	}
	return readings, nil
}

// LatestReading returns the most recent reading, or nil when none exist.
func (s *HubService) LatestReading(ctx context.Context) (*models.Reading, error) {
	reading, err := s.Readings.Latest(ctx)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return reading, nil
}

// ListImages returns image records ordered descending by timestamp, with
// image references resolved to public URLs when a base URL is configured.
func (s *HubService) ListImages(ctx context.Context) ([]models.ImageRecord, error) {
	records, err := s.Images.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range records {
		records[i].ImageURL = s.PublicURL(records[i].ImageURL)
	}
	return records, nil
}

// LatestImage returns the most recent image record with its blob content
// inlined base64-encoded, or nil when no images exist. The store read and the
// blob read are a synchronous fan-out with no retry; a blob failure fails the
// whole request.
func (s *HubService) LatestImage(ctx context.Context) (*models.ImageWithContent, error) {
	record, err := s.Images.Latest(ctx)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if s.Blobs == nil {
		return nil, errors.NewStorageError("blob storage not configured", nil)
	}

	data, contentType, err := s.Blobs.Get(ctx, record.ImageURL)
	if err != nil {
		return nil, errors.NewStorageError("failed to fetch image content", err)
	}

	result := &models.ImageWithContent{
		ImageRecord: *record,
		ImageBase64: base64.StdEncoding.EncodeToString(data),
		MimeType:    contentType,
	}
	result.ImageURL = s.PublicURL(record.ImageURL)
	return result, nil
}

// PublicURL resolves a storage key to a public link when a base URL is
// configured; otherwise the key itself is the reference.
func (s *HubService) PublicURL(key string) string {
	if s.publicBaseURL == "" || key == "" {
		return key
	}
	if strings.HasPrefix(key, "http://") || strings.HasPrefix(key, "https://") {
		return key
	}
	return strings.TrimRight(s.publicBaseURL, "/") + "/" + key
}
