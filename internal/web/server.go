// Package web serves the interactive question form.
package web

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/runnerr0/docrag/internal/answer"
	"github.com/runnerr0/docrag/internal/metrics"
	"go.uber.org/zap"
)

// Asker answers a single form submission.
type Asker interface {
	Answer(ctx context.Context, req answer.Request) (*answer.Result, error)
}

// Server renders the form and answers submissions.
type Server struct {
	asker    Asker
	defaults Defaults
	title    string
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

type pageData struct {
	Title  string
	Form   formValues
	Result *answer.Result
	Error  string
}

// NewServer creates a Server. m may be nil, which disables /metrics.
func NewServer(a Asker, d Defaults, title string, logger *zap.Logger, m *metrics.Metrics) *Server {
	if title == "" {
		title = "Mit Dokumenten chatten"
	}
	return &Server{asker: a, defaults: d, title: title, logger: logger, metrics: m}
}

// Handler builds the router with its middleware.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/ask", s.handleAsk).Methods(http.MethodPost)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	if s.metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
		r.Use(metricsMiddleware(s.metrics))
	}
	r.Use(loggingMiddleware(s.logger))
	return r
}

// HTTPServer wraps Handler in an http.Server listening on addr. Write
// timeouts stay generous since answers wait on the model.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, pageData{Title: s.title, Form: defaultValues(s.defaults)})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	req, fv, err := parseRequest(r, s.defaults)
	if err != nil {
		s.render(w, http.StatusBadRequest, pageData{Title: s.title, Form: fv, Error: err.Error()})
		return
	}

	res, err := s.asker.Answer(r.Context(), req)
	if err != nil {
		s.logger.Error("answer failed", zap.Bool("rag", req.UseRAG), zap.Error(err))
		s.render(w, http.StatusBadGateway, pageData{
			Title: s.title,
			Form:  fv,
			Error: fmt.Sprintf("Die Anfrage konnte nicht beantwortet werden: %v", err),
		})
		return
	}
	s.render(w, http.StatusOK, pageData{Title: s.title, Form: fv, Result: res})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) render(w http.ResponseWriter, status int, data pageData) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		s.logger.Error("render page", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
