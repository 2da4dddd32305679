package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"WealthSentinel/internal/model"
	"WealthSentinel/internal/recorder"
	"WealthSentinel/internal/scheduler"
)

// Engine is the part of the scheduler the monitor talks to.
type Engine interface {
	State() scheduler.State
	Report() model.Report
	ExportReport() (model.Report, error)
	SetStreamStatus(name string, status model.StreamStatus) error
}

// HistoryFunc loads the cycle history of a run. Nil disables /history.
type HistoryFunc func(runID string) ([]recorder.CycleSummary, error)

// Server serves the live status API.
type Server struct {
	engine  Engine
	history HistoryFunc
	log     *zap.Logger
	srv     *http.Server
}

// New builds the HTTP server. reg may be nil to skip /metrics.
func New(addr string, engine Engine, history HistoryFunc, reg *prometheus.Registry, log *zap.Logger) *Server {
	s := &Server{engine: engine, history: history, log: log}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/report", s.handleExport).Methods(http.MethodPost)
	r.HandleFunc("/history", s.handleHistory).Methods(http.MethodGet)
	r.HandleFunc("/streams/{name}/{action:pause|resume}", s.handleStreamAction).Methods(http.MethodPost)
	if reg != nil {
		r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	s.srv = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Start listens in the background until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return err
	}
	s.log.Info("monitor listening", zap.String("addr", ln.Addr().String()))

	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("monitor serve", zap.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			s.log.Warn("monitor shutdown", zap.Error(err))
		}
	}()
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"state":  s.engine.State().String(),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Report())
}

func (s *Server) handleExport(w http.ResponseWriter, _ *http.Request) {
	r, err := s.engine.ExportReport()
	if err != nil {
		s.log.Error("on-demand export failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, r)
}

func (s *Server) handleHistory(w http.ResponseWriter, _ *http.Request) {
	if s.history == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "history not recorded"})
		return
	}
	rows, err := s.history(s.engine.Report().RunID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if rows == nil {
		rows = []recorder.CycleSummary{}
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleStreamAction(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	status := model.StatusActive
	if vars["action"] == "pause" {
		status = model.StatusPaused
	}
	if err := s.engine.SetStreamStatus(vars["name"], status); err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"stream": vars["name"], "status": string(status)})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
