package metrics

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rxtech-lab/argo-autotrader/internal/ledger"
	"github.com/rxtech-lab/argo-autotrader/internal/logger"
	"github.com/rxtech-lab/argo-autotrader/internal/loop"
	"github.com/rxtech-lab/argo-autotrader/internal/types"
	"github.com/rxtech-lab/argo-autotrader/pkg/errors"
	"go.uber.org/zap"
)

// StatusSource is the trading loop as seen by the status endpoint.
type StatusSource interface {
	Status() loop.Status
	Ledger() *ledger.Ledger
}

// StatusResponse is the body of GET /status.
type StatusResponse struct {
	Loop   loop.Status          `json:"loop"`
	Ledger types.LedgerSnapshot `json:"ledger"`
}

// Server exposes /metrics, /status and /ws.
type Server struct {
	addr    string
	metrics *Metrics
	hub     *Hub
	status  StatusSource
	logger  *logger.Logger
	server  *http.Server
}

func NewServer(addr string, m *Metrics, hub *Hub, status StatusSource, log *logger.Logger) *Server {
	if log == nil {
		log = logger.NewNopLogger()
	}

	s := &Server{
		addr:    addr,
		metrics: m,
		hub:     hub,
		status:  status,
		logger:  log,
	}

	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Router returns the HTTP routes.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{})).Methods(http.MethodGet)
	router.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	if s.hub != nil {
		router.HandleFunc("/ws", s.hub.ServeWS)
	}

	return router
}

// Start listens on the configured address and serves until ctx is
// cancelled. The websocket hub runs for the same lifetime.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to listen on %s", s.addr)
	}

	if s.hub != nil {
		go s.hub.Run(ctx)
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("Status server shutdown failed", zap.Error(err))
		}
	}()

	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Status server stopped", zap.Error(err))
		}
	}()

	s.logger.Info("Status server listening", zap.String("addr", listener.Addr().String()))

	return nil
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	response := StatusResponse{
		Loop:   s.status.Status(),
		Ledger: s.status.Ledger().Snapshot(),
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(response); err != nil {
		s.logger.Warn("Failed to encode status", zap.Error(err))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	if s.status.Status().State != loop.StateRunning.String() {
		http.Error(w, "loop stopped", http.StatusServiceUnavailable)

		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
