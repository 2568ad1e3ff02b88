// FilePath: api/resources/resources.go
package resources

import (
	"encoding/json"
	"net/http"

	nuts "github.com/vaudience/go-nuts"

	"github.com/bokashilab/sensorhub/internal/errors"
	"github.com/bokashilab/sensorhub/internal/hubservice"
)

// UploadConfig bounds incoming multipart uploads.
type UploadConfig struct {
	MaxUploadSize int64
}

// Resources holds all HTTP resource handlers
type Resources struct {
	Readings    *ReadingHandlers
	Images      *ImageHandlers
	HealthCheck func(w http.ResponseWriter, r *http.Request)
}

// NewResources creates a new Resources instance
func NewResources(svc *hubservice.HubService, upload UploadConfig) *Resources {
	return &Resources{
		Readings: &ReadingHandlers{hubservice: svc, upload: upload},
		Images:   &ImageHandlers{hubservice: svc, upload: upload},
	}
}

// SetHealthCheck sets the health check handler
func (r *Resources) SetHealthCheck(h func(w http.ResponseWriter, r *http.Request)) {
	r.HealthCheck = h
}

// Root reports that the API is up.
func (r *Resources) Root(w http.ResponseWriter, req *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Bokashi API is running.",
	})
}

// errorResponse is the envelope for failed requests.
type errorResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func respondWithError(w http.ResponseWriter, err *errors.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Code)
	json.NewEncoder(w).Encode(errorResponse{
		Success:   false,
		Error:     err.Message,
		RequestID: err.RequestID,
	})
	nuts.L.Errorf("[API] %s", err.Error())
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}
