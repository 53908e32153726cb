package transit

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/anish3343/transit-dashboard/config"
	"github.com/anish3343/transit-dashboard/gtfsrt"
	"github.com/anish3343/transit-dashboard/gtfsstatic"
	"github.com/anish3343/transit-dashboard/internal/metrics"
	"github.com/anish3343/transit-dashboard/refstore"
)

type feedService interface {
	Arrivals(ctx context.Context, feedKey string) ([]Arrival, error)
	Alerts(ctx context.Context) ([]Alert, error)
}

type staticRefresher interface {
	Refresh(ctx context.Context) []gtfsstatic.Result
}

type stopLister interface {
	ListStops(ctx context.Context, system string) ([]refstore.StopRow, error)
}

// Server is the dashboard HTTP API.
type Server struct {
	cfg     *config.AppConfig
	feeds   feedService
	static  staticRefresher
	stops   stopLister
	protos  func(ctx context.Context, dir string) []gtfsrt.ProtoResult
	metrics *metrics.Metrics

	httpServer *http.Server
}

// NewServer assembles the API server from its collaborators.
func NewServer(cfg *config.AppConfig, feeds feedService, static staticRefresher, stops stopLister, m *metrics.Metrics) *Server {
	s := &Server{
		cfg:     cfg,
		feeds:   feeds,
		static:  static,
		stops:   stops,
		protos:  gtfsrt.UpdateProtos,
		metrics: m,
	}

	mux := http.NewServeMux()
	s.route(mux, "GET /api/health", s.handleHealth)
	s.route(mux, "GET /api/stops", s.handleStops)
	s.route(mux, "POST /api/gtfs/update", s.handleGTFSUpdate)
	s.route(mux, "POST /api/proto/update", s.handleProtoUpdate)
	s.route(mux, "GET /api/{feed}", s.handleFeed)
	mux.Handle("GET /metrics", m.Handler())

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// Static GTFS refresh downloads and ingests full bundles inline.
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) route(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	mux.Handle(pattern, s.metrics.Middleware(pattern, h))
}

// Handler exposes the routed handler for tests.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// Start begins serving in a background goroutine.
func (s *Server) Start() {
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()
	log.Info().Str("addr", s.httpServer.Addr).Msg("server listening")
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
