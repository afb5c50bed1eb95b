// Package handlers exposes the HTTP surface of the incident pipeline:
// a health probe, an asynchronous webhook intake and a synchronous run
// endpoint.
package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opsmindai/opsmind/internal/middleware"
	"github.com/opsmindai/opsmind/internal/pipeline"
)

// maxBodyBytes bounds webhook and run request bodies.
const maxBodyBytes = 1 << 20

// webhookTimeout bounds background runs started by the webhook.
const webhookTimeout = 5 * time.Minute

// Server routes HTTP requests into the pipeline runner.
type Server struct {
	runner *pipeline.Runner
	log    *logrus.Logger

	// wg tracks webhook-spawned runs so shutdown can drain them.
	wg sync.WaitGroup
}

func New(runner *pipeline.Runner, log *logrus.Logger) *Server {
	return &Server{runner: runner, log: log}
}

// Routes builds the handler tree with request-ID middleware applied.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /webhook/incident-alert", s.handleWebhook)
	mux.HandleFunc("POST /run", s.handleRun)
	return middleware.RequestID(mux)
}

// Wait blocks until all webhook-spawned runs finish.
func (s *Server) Wait() {
	s.wg.Wait()
}

type runRequest struct {
	LogContent string `json:"log_content"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "opsmind",
	})
}

// handleRun executes the pipeline synchronously and returns its result.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.LogContent == "" {
		http.Error(w, "log_content is required", http.StatusBadRequest)
		return
	}

	result, err := s.runner.Run(r.Context(), req.LogContent)
	if err != nil {
		s.log.Errorf("run failed: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleWebhook accepts either {"log_content": ...} or a raw
// monitoring alert payload (source from the ?source= query parameter)
// and processes it in the background.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(body, &probe); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	requestID := middleware.GetRequestID(r.Context())

	if raw, ok := probe["log_content"]; ok {
		var logContent string
		if err := json.Unmarshal(raw, &logContent); err != nil || logContent == "" {
			http.Error(w, "log_content must be a non-empty string", http.StatusBadRequest)
			return
		}
		s.spawn(requestID, func(ctx context.Context) (*pipeline.Result, error) {
			return s.runner.Run(ctx, logContent)
		})
	} else {
		source := r.URL.Query().Get("source")
		s.spawn(requestID, func(ctx context.Context) (*pipeline.Result, error) {
			return s.runner.RunAlert(ctx, body, source)
		})
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

// spawn runs one pipeline invocation in the background.
func (s *Server) spawn(requestID string, run func(context.Context) (*pipeline.Result, error)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), webhookTimeout)
		defer cancel()

		result, err := run(ctx)
		if err != nil {
			s.log.Errorf("webhook run failed (request %s): %v", requestID, err)
			return
		}
		if result.Skipped {
			s.log.Infof("webhook run skipped (request %s): alert below incident threshold", requestID)
			return
		}
		s.log.Infof("webhook run complete (request %s): incident %s", requestID, result.IncidentID)
	}()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
