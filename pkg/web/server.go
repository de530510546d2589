// Package web serves parse results over HTTP, with live updates streamed as
// Server-Sent Events.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/ritzau/pd-parser/pkg/analysis"
	"github.com/ritzau/pd-parser/pkg/logging"
	"github.com/ritzau/pd-parser/pkg/pubsub"
)

// maxPatchSize limits the body of POST /api/parse
const maxPatchSize = 8 << 20

// Server represents the web server
type Server struct {
	router    *mux.Router
	store     *analysis.Store
	publisher *pubsub.SSEPublisher

	// validate is the default for POST /api/parse without ?validate
	validate bool
}

// NewServer creates a server reading results from store
func NewServer(store *analysis.Store, validate bool) *Server {
	publisher := pubsub.NewSSEPublisher()

	// status: new subscribers only need the current state
	publisher.ConfigureTopic(pubsub.TopicStatus, pubsub.TopicConfig{BufferSize: 10})

	// results: replay recent files so a fresh client sees more than the last one
	publisher.ConfigureTopic(pubsub.TopicResult, pubsub.TopicConfig{BufferSize: 50, ReplayAll: true})

	s := &Server{
		router:    mux.NewRouter(),
		store:     store,
		publisher: publisher,
		validate:  validate,
	}
	s.setupRoutes()
	return s
}

// Publisher returns the publisher feeding the SSE endpoints
func (s *Server) Publisher() pubsub.Publisher {
	return s.publisher
}

// Handler returns the HTTP handler with request logging
func (s *Server) Handler() http.Handler {
	return logging.RequestIDMiddleware(s.router)
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/subscribe/{topic}", s.handleSubscribe).Methods(http.MethodGet)
	api.HandleFunc("/parse", s.handleParse).Methods(http.MethodPost)
	api.HandleFunc("/patches", s.handlePatches).Methods(http.MethodGet)

	// more specific routes must come first, names may contain slashes
	api.HandleFunc("/patches/{name:.+}/graph", s.handlePatchGraph).Methods(http.MethodGet)
	api.HandleFunc("/patches/{name:.+}", s.handlePatch).Methods(http.MethodGet)

	s.router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "patches": s.store.Len()})
	}).Methods(http.MethodGet)
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	topic := mux.Vars(r)["topic"]
	if topic != pubsub.TopicStatus && topic != pubsub.TopicResult {
		writeError(w, http.StatusNotFound, fmt.Errorf("unknown topic %q", topic))
		return
	}

	sub, err := s.publisher.Subscribe(r.Context(), topic)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	flusher, _ := w.(http.Flusher)
	flush := func() {
		if flusher != nil {
			flusher.Flush()
		}
	}

	// Initial comment establishes the stream before the first event
	fmt.Fprintf(w, ": connected\n\n")
	flush()

	for event := range sub.Events() {
		if err := pubsub.WriteSSE(w, event); err != nil {
			logging.DebugContext(r.Context(), "SSE client went away", "topic", topic, "error", err)
			return
		}
		flush()
	}
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPatchSize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, err)
			return
		}
		writeError(w, http.StatusBadRequest, fmt.Errorf("failed to read body: %w", err))
		return
	}

	withValidation := s.validate
	switch r.URL.Query().Get("validate") {
	case "1", "true":
		withValidation = true
	case "0", "false":
		withValidation = false
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		name = "request.pd"
	}

	fr := analysis.ParseText(name, string(body), withValidation)
	logging.InfoContext(r.Context(), "parsed posted patch",
		"name", name,
		"bytes", len(body),
		"status", fr.Result.Status)

	status := http.StatusOK
	if !fr.Result.OK() {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, fr)
}

func (s *Server) handlePatches(w http.ResponseWriter, r *http.Request) {
	list := s.store.List()
	summaries := make([]pubsub.PatchResult, 0, len(list))
	for _, fr := range list {
		summaries = append(summaries, fr.Summary())
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handlePatch(w http.ResponseWriter, r *http.Request) {
	fr, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, fr)
}

func (s *Server) handlePatchGraph(w http.ResponseWriter, r *http.Request) {
	fr, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if fr.Result == nil || !fr.Result.OK() {
		writeError(w, http.StatusConflict, fmt.Errorf("%s did not parse", fr.Path))
		return
	}
	writeJSON(w, http.StatusOK, buildGraphData(fr.Result.Pd))
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*analysis.FileResult, bool) {
	name := mux.Vars(r)["name"]
	fr, ok := s.store.Get(name)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("no patch named %q", name))
	}
	return fr, ok
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// Start serves until the context is done, then shuts down gracefully
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
		return fmt.Errorf("web server failed: %w", err)
	case <-ctx.Done():
	}

	// SSE streams only end once their subscriptions are closed
	s.publisher.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("web server shutdown: %w", err)
	}
	logging.Info("web server stopped")
	return nil
}
