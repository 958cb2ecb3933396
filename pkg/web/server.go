// Package web serves the browser preview: the embedded page, JSON and
// image endpoints over the current document, and SSE streams that tell
// the page when to refresh.
package web

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/ritzau/meetmap/pkg/export"
	"github.com/ritzau/meetmap/pkg/graph"
	"github.com/ritzau/meetmap/pkg/logging"
	"github.com/ritzau/meetmap/pkg/model"
	"github.com/ritzau/meetmap/pkg/pubsub"
	"github.com/ritzau/meetmap/pkg/render"
	"github.com/ritzau/meetmap/pkg/view"
)

//go:embed static/*
var staticFiles embed.FS

// Server owns one view of one document and exposes it over HTTP.
// Document swaps and collapse toggles rebuild the layout synchronously
// and push status events to subscribers.
type Server struct {
	router    *mux.Router
	publisher pubsub.Publisher
	view      *view.View
	theme     render.Theme

	// Serializes rebuilds so concurrent toggles cannot interleave
	// Rebuild/Execute/Apply sequences.
	mu sync.Mutex
}

// NewServer creates a server with an empty view. Call SetDocument to
// give it something to show.
func NewServer() *Server {
	publisher := pubsub.NewSSEPublisher()
	publisher.ConfigureTopic(pubsub.TopicDocumentStatus, pubsub.TopicConfig{
		BufferSize: 10,
		ReplayAll:  false, // Late subscribers only need the latest state
	})
	publisher.ConfigureTopic(pubsub.TopicRenderStatus, pubsub.TopicConfig{
		BufferSize: 10,
		ReplayAll:  false,
	})

	s := &Server{
		router:    mux.NewRouter(),
		publisher: publisher,
		view:      view.New(),
		theme:     render.DefaultTheme(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(logging.RequestIDMiddleware)

	// API routes
	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/document", s.handleDocument).Methods("GET")
	api.HandleFunc("/status", s.handleStatus).Methods("GET")
	api.HandleFunc("/mindmap.png", s.handlePNG).Methods("GET")
	api.HandleFunc("/mindmap.pdf", s.handlePDF).Methods("GET")
	api.HandleFunc("/toggle/{id}", s.handleToggle).Methods("POST")
	api.HandleFunc("/subscribe/document", s.handleSubscribeDocument).Methods("GET")
	api.HandleFunc("/subscribe/render", s.handleSubscribeRender).Methods("GET")

	// Static files (embedded)
	s.router.PathPrefix("/").Handler(http.HandlerFunc(s.handleStatic)).Methods("GET")
}

// SetDocument swaps the served document and rebuilds the layout.
// Passing nil clears the view, which the status endpoint reports as
// idle; the page keeps its last image until a new document arrives.
func (s *Server) SetDocument(doc *model.Document) {
	s.mu.Lock()
	s.view.SetDocument(doc)
	s.mu.Unlock()

	if doc == nil {
		s.publishDocumentStatus(pubsub.DocumentStatus{
			State:   "removed",
			Message: "document cleared",
		})
		return
	}

	stats := doc.Stats()
	s.publishDocumentStatus(pubsub.DocumentStatus{
		State: "loaded",
		Title: doc.Title(),
		Nodes: stats.Total,
	})
	s.RenderNow()
}

// NotifyLoadFailed tells subscribers a reload failed. The previous
// document stays on screen, so no rebuild happens.
func (s *Server) NotifyLoadFailed(message string) {
	s.publishDocumentStatus(pubsub.DocumentStatus{
		State:   "load_failed",
		Message: message,
	})
}

// NotifyRemoved tells subscribers the file disappeared from disk.
// The last loaded document stays served.
func (s *Server) NotifyRemoved(message string) {
	s.publishDocumentStatus(pubsub.DocumentStatus{
		State:   "removed",
		Message: message,
	})
}

// Toggle collapses or expands a node and rebuilds. Returns false when
// the id names a leaf or an unknown node, in which case nothing
// changes.
func (s *Server) Toggle(id string) bool {
	s.mu.Lock()
	toggled := s.view.Toggle(id)
	s.mu.Unlock()
	if toggled {
		s.RenderNow()
	}
	return toggled
}

// RenderNow rebuilds the layout for the current document and collapse
// set, then publishes the resulting render status. Cache hits publish
// too, so subscribers always hear about state changes.
func (s *Server) RenderNow() {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	req := s.view.Rebuild()
	cached := req == nil
	if req != nil {
		out := s.view.Execute(context.Background(), req)
		if s.view.Apply(out) == view.StatusStale {
			// A newer generation already published its own status
			return
		}
	}

	vg, res := s.view.Current()
	status := pubsub.RenderStatus{
		State:      s.view.State().String(),
		Cached:     cached,
		DurationMs: time.Since(start).Milliseconds(),
	}
	if vg != nil {
		status.Nodes = vg.Len()
	}
	if res != nil {
		status.Engine = res.Engine
	}
	if err := s.publisher.Publish(pubsub.TopicRenderStatus, status.State, status); err != nil {
		logging.Warn("could not publish render status", "error", err)
	}
}

func (s *Server) publishDocumentStatus(status pubsub.DocumentStatus) {
	if err := s.publisher.Publish(pubsub.TopicDocumentStatus, status.State, status); err != nil {
		logging.Warn("could not publish document status", "error", err)
	}
}

// currentScene builds a drawable scene from the installed layout.
// Returns nil when no layout has been computed yet.
func (s *Server) currentScene() *render.Scene {
	doc := s.view.Document()
	vg, res := s.view.Current()
	if doc == nil || vg == nil || res == nil {
		return nil
	}
	return render.BuildScene(doc, vg, res, s.theme)
}

func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	if path == "/" {
		path = "/index.html"
	}

	data, err := staticFiles.ReadFile("static" + path)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	contentType := "text/html; charset=utf-8"
	switch {
	case strings.HasSuffix(path, ".css"):
		contentType = "text/css; charset=utf-8"
	case strings.HasSuffix(path, ".js"):
		contentType = "application/javascript"
	case strings.HasSuffix(path, ".svg"):
		contentType = "image/svg+xml"
	}
	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}

// handleDocument returns the loaded document as JSON, round-tripped
// through the model so the output is always well-formed.
func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	doc := s.view.Document()
	if doc == nil {
		http.Error(w, "No document loaded", http.StatusServiceUnavailable)
		return
	}

	data, err := doc.Marshal()
	if err != nil {
		logging.Error("could not marshal document", "error", err)
		http.Error(w, "Failed to serialize document", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

// statusResponse is the /api/status payload
type statusResponse struct {
	State       string            `json:"state"`
	Generation  uint64            `json:"generation"`
	Engine      string            `json:"engine,omitempty"`
	Collapsed   []string          `json:"collapsed,omitempty"`
	Document    *documentSummary  `json:"document,omitempty"`
	Diagnostics graph.Diagnostics `json:"diagnostics"`
	Issues      []model.Issue     `json:"issues,omitempty"`
}

type documentSummary struct {
	Title string      `json:"title"`
	Stats model.Stats `json:"stats"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		State:       s.view.State().String(),
		Generation:  s.view.Generation(),
		Collapsed:   s.view.CollapsedIDs(),
		Diagnostics: s.view.Diagnostics(),
	}
	if doc := s.view.Document(); doc != nil {
		resp.Document = &documentSummary{
			Title: doc.Title(),
			Stats: doc.Stats(),
		}
		resp.Issues = doc.Validate()
	}
	if _, res := s.view.Current(); res != nil {
		resp.Engine = res.Engine
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Error("could not encode status response", "error", err)
	}
}

// handlePNG renders the current layout to a PNG. Encoded to a buffer
// first so a render failure can still return a clean error status.
func (s *Server) handlePNG(w http.ResponseWriter, r *http.Request) {
	scene := s.currentScene()
	if scene == nil {
		http.Error(w, "No rendered mindmap available", http.StatusServiceUnavailable)
		return
	}

	var buf bytes.Buffer
	if err := export.PNG(scene, &buf); err != nil {
		logging.Error("could not render png", "error", err)
		http.Error(w, "Failed to render image", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}

func (s *Server) handlePDF(w http.ResponseWriter, r *http.Request) {
	scene := s.currentScene()
	if scene == nil {
		http.Error(w, "No rendered mindmap available", http.StatusServiceUnavailable)
		return
	}

	var buf bytes.Buffer
	if err := export.PDF(scene, &buf); err != nil {
		logging.Error("could not render pdf", "error", err)
		http.Error(w, "Failed to render PDF", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("inline; filename=%q", export.Filename(scene.Title, "pdf")))
	w.Write(buf.Bytes())
}

// toggleResponse is the /api/toggle/{id} payload
type toggleResponse struct {
	ID        string `json:"id"`
	Toggled   bool   `json:"toggled"`
	Collapsed bool   `json:"collapsed"`
	State     string `json:"state"`
}

// handleToggle flips the collapse state of one node. Unknown ids and
// leaves report toggled=false rather than an error, since a stale page
// may post ids the current document no longer has.
func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if id == "" {
		http.Error(w, "Missing node id", http.StatusBadRequest)
		return
	}

	toggled := s.Toggle(id)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(toggleResponse{
		ID:        id,
		Toggled:   toggled,
		Collapsed: s.view.Collapsed(id),
		State:     s.view.State().String(),
	}); err != nil {
		logging.Error("could not encode toggle response", "error", err)
	}
}

func (s *Server) handleSubscribeDocument(w http.ResponseWriter, r *http.Request) {
	s.streamTopic(w, r, pubsub.TopicDocumentStatus)
}

func (s *Server) handleSubscribeRender(w http.ResponseWriter, r *http.Request) {
	s.streamTopic(w, r, pubsub.TopicRenderStatus)
}

// streamTopic relays one pubsub topic to the client as Server-Sent
// Events until the client disconnects.
func (s *Server) streamTopic(w http.ResponseWriter, r *http.Request, topic string) {
	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	sub, err := s.publisher.Subscribe(r.Context(), topic)
	if err != nil {
		logging.Error("could not subscribe to topic", "topic", topic, "error", err)
		http.Error(w, "Subscription failed", http.StatusInternalServerError)
		return
	}
	defer sub.Close()

	// Send initial connection event (needed for some browsers like Safari)
	fmt.Fprintf(w, ": connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-sub.Events():
			if !ok {
				return
			}
			if err := pubsub.WriteSSE(w, event); err != nil {
				logging.Debug("sse write failed, client gone", "topic", topic, "error", err)
				return
			}
			flusher.Flush()
		}
	}
}

// Handler returns the configured router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start blocks serving HTTP on the given port.
func (s *Server) Start(port int) error {
	addr := fmt.Sprintf(":%d", port)
	logging.Info("web server listening", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}
