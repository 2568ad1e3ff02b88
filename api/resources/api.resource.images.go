// FilePath: api/resources/api.resource.images.go
package resources

import (
	"net/http"
	"strings"
	"time"

	nuts "github.com/vaudience/go-nuts"

	"github.com/bokashilab/sensorhub/internal/errors"
	"github.com/bokashilab/sensorhub/internal/hubservice"
	"github.com/bokashilab/sensorhub/internal/ingest"
	"github.com/bokashilab/sensorhub/internal/models"
)

// ImageHandlers encapsulates the image-related HTTP handlers
type ImageHandlers struct {
	hubservice *hubservice.HubService
	upload     UploadConfig
}

type imageListResponse struct {
	Success bool                 `json:"success"`
	Data    []models.ImageRecord `json:"data"`
}

type imageLatestResponse struct {
	Success bool                     `json:"success"`
	Data    *models.ImageWithContent `json:"data"`
}

type imageCreatedResponse struct {
	Success    bool      `json:"success"`
	InsertedID int64     `json:"insertedId"`
	ImageURL   string    `json:"imageUrl"`
	Timestamp  time.Time `json:"timestamp"`
}

// @Summary Upload a camera snapshot
// @Description Store a standalone image and record its reference
// @Tags images
// @Accept multipart/form-data
// @Produce json
// @Success 201 {object} imageCreatedResponse
// @Failure 400 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /image [post]
func (h *ImageHandlers) UploadImage(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	if !strings.Contains(r.Header.Get("Content-Type"), "multipart/form-data") {
		respondWithError(w, errors.NewUnsupportedMediaError(
			"unsupported Content-Type, use multipart/form-data", nil).WithRequestID(requestID))
		return
	}

	if err := r.ParseMultipartForm(h.upload.MaxUploadSize); err != nil {
		respondWithError(w, errors.NewValidationError("invalid or oversized multipart form", err).WithRequestID(requestID))
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		respondWithError(w, errors.NewValidationError(
			"'image' field (file) is required in multipart/form-data", err).WithRequestID(requestID))
		return
	}
	defer file.Close()

	result, err := h.hubservice.Ingest.IngestImage(r.Context(), ingest.ImageUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        file,
	})
	if err != nil {
		respondWithError(w, asAPIError(err, "failed to store image").WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusCreated, imageCreatedResponse{
		Success:    true,
		InsertedID: result.InsertedID,
		ImageURL:   h.hubservice.PublicURL(result.ImageURL),
		Timestamp:  result.Timestamp,
	})
}

// @Summary List image records
// @Description Get all camera snapshot records, newest first
// @Tags images
// @Produce json
// @Success 200 {object} imageListResponse
// @Failure 500 {object} errorResponse
// @Router /images [get]
func (h *ImageHandlers) ListImages(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	records, err := h.hubservice.ListImages(r.Context())
	if err != nil {
		respondWithError(w, asAPIError(err, "failed to list images").WithRequestID(requestID))
		return
	}
	if records == nil {
		records = []models.ImageRecord{}
	}

	respondWithJSON(w, http.StatusOK, imageListResponse{Success: true, Data: records})
}

// @Summary Latest image with content
// @Description Get the most recent snapshot record with its content inlined base64-encoded
// @Tags images
// @Produce json
// @Success 200 {object} imageLatestResponse
// @Failure 500 {object} errorResponse
// @Router /images/latest [get]
func (h *ImageHandlers) LatestImage(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	image, err := h.hubservice.LatestImage(r.Context())
	if err != nil {
		respondWithError(w, asAPIError(err, "failed to fetch latest image").WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, imageLatestResponse{Success: true, Data: image})
}
