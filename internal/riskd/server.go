// Package riskd serves a stand-in risk scoring service over HTTP and gRPC so
// simulations can exercise the remote path of the risk oracle.
package riskd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/ppiankov/ztbench/internal/risk"
)

// ScorePath is the HTTP route for scoring requests.
const ScorePath = "/ai/risk_score"

const maxRequestBytes = 64 << 10

// Server scores feature vectors with a fixed Model.
type Server struct {
	model    Model
	logger   *slog.Logger
	registry *prometheus.Registry
	requests *prometheus.CounterVec

	grpcServer *grpc.Server
	httpServer *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithModel replaces DefaultModel.
func WithModel(m Model) Option {
	return func(s *Server) { s.model = m }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a scoring server. Listeners are attached with ServeHTTPOn and
// ServeGRPC.
func New(opts ...Option) *Server {
	reg := prometheus.NewRegistry()
	s := &Server{
		model:    DefaultModel(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		registry: reg,
		requests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "ztbench_riskd_requests_total",
			Help: "Scoring requests by transport and result",
		}, []string{"transport", "result"}),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.grpcServer = grpc.NewServer()
	s.grpcServer.RegisterService(&scorerServiceDesc, s)

	hs := health.NewServer()
	hs.SetServingStatus(risk.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s.grpcServer, hs)

	s.httpServer = &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Router returns the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	r.Post(ScorePath, s.handleScore)
	return r
}

// ServeHTTPOn serves the HTTP API on lis. Blocks until stopped.
func (s *Server) ServeHTTPOn(lis net.Listener) error {
	err := s.httpServer.Serve(lis)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// ServeGRPC serves the gRPC API on lis. Blocks until stopped.
func (s *Server) ServeGRPC(lis net.Listener) error {
	return s.grpcServer.Serve(lis)
}

// Shutdown stops both transports, waiting for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.grpcServer.GracefulStop()
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var req risk.ScoreRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes)).Decode(&req); err != nil {
		s.reject(w, "http", fmt.Errorf("decode request: %w", err))
		return
	}
	features, err := risk.FeaturesFromSlice(req.Features)
	if err != nil {
		s.reject(w, "http", err)
		return
	}

	score := s.model.Score(features)
	s.requests.WithLabelValues("http", "ok").Inc()
	s.logger.Debug("scored", "transport", "http", "risk", score, "request_id", middleware.GetReqID(r.Context()))
	writeJSON(w, http.StatusOK, risk.ScoreResponse{RiskScore: score})
}

func (s *Server) reject(w http.ResponseWriter, transport string, err error) {
	s.requests.WithLabelValues(transport, "rejected").Inc()
	s.logger.Warn("rejected scoring request", "transport", transport, "error", err)
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
}

// Score implements the gRPC Score method.
func (s *Server) Score(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	features, err := risk.FeaturesFromStruct(req)
	if err != nil {
		s.requests.WithLabelValues("grpc", "rejected").Inc()
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	score := s.model.Score(features)
	s.requests.WithLabelValues("grpc", "ok").Inc()
	s.logger.Debug("scored", "transport", "grpc", "risk", score)
	return structpb.NewStruct(map[string]any{"risk_score": score})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
