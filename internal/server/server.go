package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nguyentantai21042004/vidscribe/internal/config"
	"github.com/nguyentantai21042004/vidscribe/internal/jobs"
	"github.com/nguyentantai21042004/vidscribe/internal/logger"
)

// Server is the HTTP front of the service.
type Server struct {
	http   *http.Server
	logger logger.Logger
}

// New builds the gin engine, wires the API routes and returns a server
// bound to the configured address.
func New(store *config.Store, mgr *jobs.Manager, board *jobs.StatusBoard, log logger.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	cfg := store.Snapshot()

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(RequestLogger(log))
	engine.Use(CORS(cfg.Server.AllowedOrigins))

	api := newAPI(store, mgr, board, log)
	registerRoutes(engine, api)

	return &Server{
		http: &http.Server{
			Addr:         cfg.Server.Addr,
			Handler:      engine,
			ReadTimeout:  cfg.Server.ReadTimeout(),
			WriteTimeout: cfg.Server.WriteTimeout(),
		},
		logger: log,
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.http.ListenAndServe()
	}()

	s.logger.Info(ctx, "HTTP server listening on %s", s.http.Addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	}
}
