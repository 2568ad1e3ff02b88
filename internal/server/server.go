// FilePath: internal/server/server.go
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	nuts "github.com/vaudience/go-nuts"

	"github.com/bokashilab/sensorhub/api"
	"github.com/bokashilab/sensorhub/api/resources"
	"github.com/bokashilab/sensorhub/internal/blobstore"
	fsstore "github.com/bokashilab/sensorhub/internal/blobstore/fs"
	memstore "github.com/bokashilab/sensorhub/internal/blobstore/memory"
	"github.com/bokashilab/sensorhub/internal/cache"
	"github.com/bokashilab/sensorhub/internal/config"
	"github.com/bokashilab/sensorhub/internal/database"
	"github.com/bokashilab/sensorhub/internal/hubservice"
	"github.com/bokashilab/sensorhub/internal/ingest"
	"github.com/bokashilab/sensorhub/internal/monitoring"
	"github.com/bokashilab/sensorhub/internal/repository/postgres"
)

// Server represents our HTTP server
type Server struct {
	config     *config.Config
	srv        *http.Server
	hubservice *hubservice.HubService
	monitoring *monitoring.Service
}

// New creates a new server instance
func New(cfg *config.Config) *Server {
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return &Server{
		config: cfg,
		srv:    srv,
	}
}

// Start begins listening for requests
func (s *Server) Start() error {
	// Initialize services
	s.hubservice = initializeHubService(s.config)
	s.monitoring = monitoring.NewService()

	if err := s.hubservice.Validate(); err != nil {
		return fmt.Errorf("service validation failed: %w", err)
	}

	// Set up compensation event handlers
	s.setupIngestHandlers()

	// Setup routes
	router := api.NewRouter(s.hubservice, resources.UploadConfig{
		MaxUploadSize: s.config.BlobStore.MaxUploadSize,
	})
	router.SetHealthCheck(s.handleHealth())
	s.srv.Handler = router

	// Start server
	go func() {
		nuts.L.Infof("[Server] Starting server on %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			nuts.L.Errorf("[Server] Error starting server: %v", err)
			os.Exit(1)
		}
	}()

	return s.waitForShutdown()
}

// waitForShutdown waits for interrupt signal and gracefully shuts down the server
func (s *Server) waitForShutdown() error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	nuts.L.Infof("[Server] Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()

	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}

	nuts.L.Infof("[Server] Server shut down successfully")
	return nil
}

// handleHealth returns a simple health check handler
func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","version":"` + nuts.GetVersion() + `"}`))
	}
}

func (s *Server) setupIngestHandlers() {
	// Compensation outcomes only reach the observability channel; they never
	// change a request's response.
	s.hubservice.Ingest.OnEvent(ingest.EventCompensated, func(key string) {
		s.monitoring.RecordEvent("image_compensation", map[string]string{
			"key": key,
		})
	})

	s.hubservice.Ingest.OnEvent(ingest.EventCompensationFailed, func(key string) {
		nuts.L.Warnf("[Server] Orphaned image blob %s left behind after failed compensation", key)
		s.monitoring.RecordEvent("image_compensation_failure", map[string]string{
			"key": key,
		})
	})
}

// initializeHubService creates and configures the hub service
func initializeHubService(cfg *config.Config) *hubservice.HubService {
	db := initDB(cfg.Database.Postgres)

	readings, err := postgres.NewReadingRepository(db)
	if err != nil {
		nuts.L.Fatalf("[Server] Failed to initialize reading repository: %v", err)
	}
	images, err := postgres.NewImageRepository(db)
	if err != nil {
		nuts.L.Fatalf("[Server] Failed to initialize image repository: %v", err)
	}

	blobs := initBlobStore(cfg.BlobStore)
	readingsCache := initReadingsCache(cfg.Redis)

	return hubservice.New(readings, images, blobs, readingsCache, cfg.BlobStore.PublicBaseURL)
}

func initDB(cfg config.PostgresConfig) database.DB {
	wrappedDB, err := database.NewPostgresDB(cfg)
	if err != nil {
		nuts.L.Fatalf("[Server] Failed to connect to Postgres: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := wrappedDB.Ping(ctx); err != nil {
		nuts.L.Fatalf("[Server] Failed to ping Postgres: %v", err)
	}
	return wrappedDB
}

func initBlobStore(cfg config.BlobStoreConfig) blobstore.Store {
	switch cfg.Backend {
	case "fs":
		store, err := fsstore.New(fsstore.Config{BasePath: cfg.BasePath})
		if err != nil {
			nuts.L.Fatalf("[Server] Failed to initialize blob store: %v", err)
		}
		return store
	case "memory":
		return memstore.New()
	case "":
		nuts.L.Warnf("[Server] No blob store configured, image uploads will be rejected")
		return nil
	default:
		nuts.L.Fatalf("[Server] Unknown blob store backend %q", cfg.Backend)
		return nil
	}
}

func initReadingsCache(cfg config.RedisConfig) *cache.ReadingsCache {
	if !cfg.Enabled {
		return nil
	}
	readingsCache, err := cache.NewReadingsCache(cfg)
	if err != nil {
		nuts.L.Fatalf("[Server] Failed to connect to Redis: %v", err)
	}
	return readingsCache
}
