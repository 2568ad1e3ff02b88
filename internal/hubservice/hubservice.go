// FilePath: internal/hubservice/hubservice.go
package hubservice

import (
	"github.com/bokashilab/sensorhub/internal/blobstore"
	"github.com/bokashilab/sensorhub/internal/cache"
	"github.com/bokashilab/sensorhub/internal/errors"
	"github.com/bokashilab/sensorhub/internal/ingest"
	"github.com/bokashilab/sensorhub/internal/repository"
)

// HubService contains all repositories and service-wide dependencies
type HubService struct {
	Readings repository.ReadingRepository
	Images   repository.ImageRepository
	Blobs    blobstore.Store
	Ingest   *ingest.Service

	readingsCache *cache.ReadingsCache
	publicBaseURL string
}

// New creates a new HubService instance. The blob store and readings cache
// are optional; a nil blob store makes multipart ingestion fail with a
// storage error, a nil cache disables window caching.
func New(
	readings repository.ReadingRepository,
	images repository.ImageRepository,
	blobs blobstore.Store,
	readingsCache *cache.ReadingsCache,
	publicBaseURL string,
) *HubService {
	return &HubService{
		Readings:      readings,
		Images:        images,
		Blobs:         blobs,
		Ingest:        ingest.New(readings, images, blobs),
		readingsCache: readingsCache,
		publicBaseURL: publicBaseURL,
	}
}

// Validate checks if all required repositories are initialized
func (s *HubService) Validate() error {
	if s.Readings == nil {
		return ErrMissingRepository("readings")
	}
	if s.Images == nil {
		return ErrMissingRepository("images")
	}
	if s.Ingest == nil {
		return ErrMissingRepository("ingest")
	}
	return nil
}

func ErrMissingRepository(name string) error {
	return errors.NewInternalError("missing repository: "+name, nil)
}
