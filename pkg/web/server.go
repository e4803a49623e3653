// Package web serves the latest built case over HTTP and streams rebuild
// progress to browsers.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/gridcase/csv2mgc/pkg/logging"
	"github.com/gridcase/csv2mgc/pkg/metrics"
	"github.com/gridcase/csv2mgc/pkg/mgc"
	"github.com/gridcase/csv2mgc/pkg/model"
	"github.com/gridcase/csv2mgc/pkg/network"
	"github.com/gridcase/csv2mgc/pkg/pubsub"
)

// ReportResponse is the body of /api/report.
type ReportResponse struct {
	RunID      string              `json:"runId"`
	Built      time.Time           `json:"built"`
	DurationMs int64               `json:"durationMs"`
	Stats      []network.KindStats `json:"stats"`
	Findings   []network.Finding   `json:"findings"`
	Failed     bool                `json:"failed"`
}

// StatusResponse is the body of /api/status.
type StatusResponse struct {
	Ready bool   `json:"ready"`
	RunID string `json:"runId,omitempty"`
	Name  string `json:"name,omitempty"`
}

// Server represents the web server
type Server struct {
	router    *mux.Router
	publisher *pubsub.SSEPublisher
	metrics   *metrics.Registry

	mu     sync.RWMutex
	result *network.Result
}

// NewServer creates a new web server
func NewServer() *Server {
	ssePublisher := pubsub.NewSSEPublisher()

	// build_status: keep a short history, new subscribers only get the current state
	ssePublisher.ConfigureTopic(pubsub.TopicBuildStatus, pubsub.TopicConfig{
		BufferSize: 10,
		ReplayAll:  false,
	})

	// case: only the latest summary matters
	ssePublisher.ConfigureTopic(pubsub.TopicCase, pubsub.TopicConfig{
		BufferSize: 1,
		ReplayAll:  false,
	})

	s := &Server{
		router:    mux.NewRouter(),
		publisher: ssePublisher,
		metrics:   metrics.NewRegistry(),
	}
	s.setupRoutes()
	return s
}

// Handler returns the root handler with request logging.
func (s *Server) Handler() http.Handler {
	return logging.RequestIDMiddleware(s.router)
}

// SetResult stores res as the case being served, records its metrics and
// announces it to subscribers of the case topic.
func (s *Server) SetResult(res *network.Result) {
	s.mu.Lock()
	s.result = res
	s.mu.Unlock()

	s.metrics.ObserveBuild(res)

	if err := s.publisher.Publish(pubsub.TopicCase, "updated", Summarize(res)); err != nil {
		logging.Warn("failed to publish case summary", "error", err)
	}
}

// Result returns the case being served, or nil before the first build.
func (s *Server) Result() *network.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.result
}

// PublishBuildStatus publishes a build status event
func (s *Server) PublishBuildStatus(state, message string, step, total int) error {
	status := pubsub.BuildStatus{
		State:   state,
		Message: message,
		Step:    step,
		Total:   total,
	}
	return s.publisher.Publish(pubsub.TopicBuildStatus, state, status)
}

// Summarize condenses a build result into the case topic payload.
func Summarize(res *network.Result) pubsub.CaseSummary {
	c := res.Case
	summary := pubsub.CaseSummary{
		RunID:     res.RunID.String(),
		Name:      c.Meta.Name,
		Counts:    make(map[string]int),
		Discarded: make(map[string]int),
		Findings:  len(res.Report.Findings),
		Failed:    res.Report.Failed(),
	}
	for _, kind := range model.CollectionKinds {
		summary.Counts[kind.Plural()] = c.Count(kind)
	}
	for kind, n := range c.Discarded {
		if n > 0 {
			summary.Discarded[string(kind)] = n
		}
	}
	return summary
}

func (s *Server) setupRoutes() {
	// SSE subscription endpoints
	s.router.HandleFunc("/api/subscribe/{topic}", s.handleSubscribe).Methods("GET")

	s.router.HandleFunc("/api/status", s.handleStatus).Methods("GET")
	s.router.HandleFunc("/api/case", s.handleCase).Methods("GET")
	s.router.HandleFunc("/api/report", s.handleReport).Methods("GET")
	s.router.HandleFunc("/case.m", s.handleDocument).Methods("GET")
	s.router.Handle("/metrics", s.metrics.Handler()).Methods("GET")
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	topic := mux.Vars(r)["topic"]
	if topic != pubsub.TopicBuildStatus && topic != pubsub.TopicCase {
		http.Error(w, fmt.Sprintf("unknown topic %q", topic), http.StatusNotFound)
		return
	}

	sub, err := s.publisher.Subscribe(r.Context(), topic)
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	defer sub.Close()

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	// Initial comment so proxies and Safari open the stream
	fmt.Fprintf(w, ": connected\n\n")
	flush(w)

	for event := range sub.Events() {
		if err := pubsub.WriteSSE(w, event); err != nil {
			logging.WarnContext(r.Context(), "error writing SSE event", "topic", topic, "error", err)
			return
		}
		flush(w)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := StatusResponse{}
	if res := s.Result(); res != nil {
		status = StatusResponse{Ready: true, RunID: res.RunID.String(), Name: res.Case.Meta.Name}
	}
	writeJSON(w, r, status)
}

func (s *Server) handleCase(w http.ResponseWriter, r *http.Request) {
	res, ok := s.requireResult(w)
	if !ok {
		return
	}
	writeJSON(w, r, res.Case)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	res, ok := s.requireResult(w)
	if !ok {
		return
	}
	writeJSON(w, r, ReportResponse{
		RunID:      res.RunID.String(),
		Built:      res.Built,
		DurationMs: res.Duration.Milliseconds(),
		Stats:      res.Stats,
		Findings:   res.Report.Findings,
		Failed:     res.Report.Failed(),
	})
}

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	res, ok := s.requireResult(w)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if r.URL.Query().Get("download") != "" {
		w.Header().Set("Content-Disposition", `attachment; filename="case.m"`)
	}
	if err := mgc.Encode(w, res.Case); err != nil {
		logging.WarnContext(r.Context(), "error writing case document", "error", err)
	}
}

func (s *Server) requireResult(w http.ResponseWriter) (*network.Result, bool) {
	res := s.Result()
	if res == nil {
		http.Error(w, "no case has been built yet", http.StatusServiceUnavailable)
		return nil, false
	}
	return res, true
}

func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.WarnContext(r.Context(), "error encoding response", "path", r.URL.Path, "error", err)
	}
}

func flush(w http.ResponseWriter) {
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
}

// Start serves on port until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info("starting web server", "url", fmt.Sprintf("http://localhost:%d", port))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	// Event streams end once their subscriptions close.
	s.publisher.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down web server: %w", err)
	}
	return nil
}
