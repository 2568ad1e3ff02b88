// FilePath: api/resources/api.resource.readings.go
package resources

import (
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/gorilla/schema"
	nuts "github.com/vaudience/go-nuts"

	"github.com/bokashilab/sensorhub/internal/errors"
	"github.com/bokashilab/sensorhub/internal/hubservice"
	"github.com/bokashilab/sensorhub/internal/ingest"
	"github.com/bokashilab/sensorhub/internal/models"
)

var queryDecoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}()

// ReadingHandlers encapsulates the reading-related HTTP handlers
type ReadingHandlers struct {
	hubservice *hubservice.HubService
	upload     UploadConfig
}

type readingListResponse struct {
	Success bool             `json:"success"`
	Data    []models.Reading `json:"data"`
}

type readingCreatedResponse struct {
	Success    bool    `json:"success"`
	InsertedID int64   `json:"insertedId"`
	ImageURL   *string `json:"imageUrl"`
}

// @Summary List sensor readings
// @Description Get all sensor readings, optionally bounded to a time range
// @Tags readings
// @Produce json
// @Param StartTime query string false "Inclusive start bound (ISO-8601)"
// @Param EndTime query string false "Inclusive end bound (ISO-8601)"
// @Success 200 {object} readingListResponse
// @Failure 400 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /readings/all [get]
func (h *ReadingHandlers) ListReadings(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	var filters models.ReadingFilters
	if err := queryDecoder.Decode(&filters, r.URL.Query()); err != nil {
		respondWithError(w, errors.NewValidationError("invalid query parameters", err).WithRequestID(requestID))
		return
	}

	start, end, err := filters.Bounds()
	if err != nil {
		respondWithError(w, errors.NewValidationError("invalid time bounds", err).WithRequestID(requestID))
		return
	}

	readings, err := h.hubservice.ListReadings(r.Context(), start, end)
	if err != nil {
		respondWithError(w, asAPIError(err, "failed to fetch readings").WithRequestID(requestID))
		return
	}
	if readings == nil {
		readings = []models.Reading{}
	}

	respondWithJSON(w, http.StatusOK, readingListResponse{Success: true, Data: readings})
}

// @Summary Latest sensor reading
// @Description Get the most recent reading, wrapped in a one-element array
// @Tags readings
// @Produce json
// @Success 200 {object} readingListResponse
// @Failure 500 {object} errorResponse
// @Router /readings/latest [get]
func (h *ReadingHandlers) LatestReading(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	reading, err := h.hubservice.LatestReading(r.Context())
	if err != nil {
		respondWithError(w, asAPIError(err, "failed to fetch latest reading").WithRequestID(requestID))
		return
	}

	// Array shape for consistency with the list endpoint, even for one item.
	data := []models.Reading{}
	if reading != nil {
		data = append(data, *reading)
	}

	respondWithJSON(w, http.StatusOK, readingListResponse{Success: true, Data: data})
}

// @Summary Ingest a sensor reading
// @Description Accepts a JSON partial reading, or multipart/form-data with image and sensorData fields
// @Tags readings
// @Accept json
// @Accept multipart/form-data
// @Produce json
// @Success 201 {object} readingCreatedResponse
// @Failure 400 {object} errorResponse
// @Failure 415 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /readings [post]
func (h *ReadingHandlers) CreateReading(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)
	contentType := r.Header.Get("Content-Type")

	switch {
	case strings.Contains(contentType, "multipart/form-data"):
		h.createFromMultipart(w, r, requestID)
	case strings.Contains(contentType, "application/json"):
		h.createFromJSON(w, r, requestID)
	default:
		respondWithError(w, errors.NewUnsupportedMediaError(
			"unsupported Content-Type, use application/json or multipart/form-data", nil).
			WithRequestID(requestID))
	}
}

func (h *ReadingHandlers) createFromJSON(w http.ResponseWriter, r *http.Request, requestID string) {
	sub, err := ingest.ParseJSON(r.Body)
	if err != nil {
		respondWithError(w, asAPIError(err, "invalid request body").WithRequestID(requestID))
		return
	}

	result, err := h.hubservice.Ingest.IngestJSON(r.Context(), sub)
	if err != nil {
		respondWithError(w, asAPIError(err, "failed to insert data into database").WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusCreated, readingCreatedResponse{
		Success:    true,
		InsertedID: result.InsertedID,
		ImageURL:   nil,
	})
}

func (h *ReadingHandlers) createFromMultipart(w http.ResponseWriter, r *http.Request, requestID string) {
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

	sensorData := r.FormValue("sensorData")
	if sensorData == "" {
		respondWithError(w, errors.NewValidationError(
			"'sensorData' field (JSON string) is required in multipart/form-data", nil).WithRequestID(requestID))
		return
	}

	sub, err := ingest.ParseSensorDataField(sensorData)
	if err != nil {
		respondWithError(w, asAPIError(err, "invalid sensorData field").WithRequestID(requestID))
		return
	}

	result, err := h.hubservice.Ingest.IngestMultipart(r.Context(), sub, ingest.ImageUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        file,
	})
	if err != nil {
		respondWithError(w, asAPIError(err, "failed to insert data into database").WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusCreated, readingCreatedResponse{
		Success:    true,
		InsertedID: result.InsertedID,
		ImageURL:   result.ImageURL,
	})
}

// asAPIError maps service errors to API errors, preserving structured ones.
// A failed insert after a successful upload reaches this as a StoreFailure;
// the compensation outcome never changes the response.
func asAPIError(err error, fallback string) *errors.APIError {
	var apiErr *errors.APIError
	if stderrors.As(err, &apiErr) {
		return apiErr
	}
	var storeFailure *ingest.StoreFailure
	if stderrors.As(err, &storeFailure) {
		return errors.NewDatabaseError(fallback, storeFailure.Insert)
	}
	return errors.NewInternalError(fallback, err)
}
