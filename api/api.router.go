// FilePath: api/api.router.go
package api

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/bokashilab/sensorhub/api/middleware"
	"github.com/bokashilab/sensorhub/api/resources"
	"github.com/bokashilab/sensorhub/internal/hubservice"
)

type Router struct {
	router    *mux.Router
	cors      func(http.Handler) http.Handler
	resources *resources.Resources
}

func NewRouter(svc *hubservice.HubService, upload resources.UploadConfig) *Router {
	r := &Router{
		router: mux.NewRouter(),
		// Dashboards are served from arbitrary origins; the API itself is
		// unauthenticated, so CORS is wide open.
		cors: handlers.CORS(
			handlers.AllowedOrigins([]string{"*"}),
			handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
			handlers.AllowedHeaders([]string{"Content-Type"}),
		),
		resources: resources.NewResources(svc, upload),
	}

	r.setupRoutes()
	return r
}

// SetHealthCheck installs the health handler before routing starts.
func (r *Router) SetHealthCheck(h http.HandlerFunc) {
	r.resources.SetHealthCheck(h)
}

func (r *Router) setupRoutes() {
	r.router.Use(middleware.RequestLogging)

	r.router.HandleFunc("/", r.resources.Root).Methods(http.MethodGet)
	r.router.HandleFunc("/health", func(w http.ResponseWriter, req *http.Request) {
		if r.resources.HealthCheck != nil {
			r.resources.HealthCheck(w, req)
			return
		}
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)

	// Readings
	r.router.HandleFunc("/readings/all", r.resources.Readings.ListReadings).Methods(http.MethodGet)
	r.router.HandleFunc("/readings/latest", r.resources.Readings.LatestReading).Methods(http.MethodGet)
	r.router.HandleFunc("/readings", r.resources.Readings.CreateReading).Methods(http.MethodPost)

	// Images
	r.router.HandleFunc("/image", r.resources.Images.UploadImage).Methods(http.MethodPost)
	r.router.HandleFunc("/images", r.resources.Images.ListImages).Methods(http.MethodGet)
	r.router.HandleFunc("/images/latest", r.resources.Images.LatestImage).Methods(http.MethodGet)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.cors(r.router).ServeHTTP(w, req)
}
