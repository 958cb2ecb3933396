package web

import (
	"bufio"
	"context"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ritzau/meetmap/pkg/model"
	"github.com/ritzau/meetmap/pkg/pubsub"
)

const serverDoc = `{
  "center_node": {"id": "root", "label": "Weekly sync", "type": "root"},
  "nodes": [
    {"id": "theme_1", "label": "Release planning", "type": "theme", "parent_id": "root"},
    {"id": "chapter_1", "label": "Cutover checklist", "type": "chapter", "parent_id": "theme_1"},
    {"id": "claim_1", "label": "Staging is green", "type": "claim", "parent_id": "chapter_1"},
    {"id": "theme_2", "label": "Hiring", "type": "theme", "parent_id": "root"}
  ]
}`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s := NewServer()
	doc, err := model.Parse([]byte(serverDoc))
	if err != nil {
		t.Fatalf("Failed to parse document: %v", err)
	}
	s.SetDocument(doc)
	return s
}

func doRequest(s *Server, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestServer_DocumentEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(s, "GET", "/api/document")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected Content-Type application/json, got %q", ct)
	}

	var doc model.Document
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("Failed to decode document response: %v", err)
	}
	if doc.CenterNode.Label != "Weekly sync" {
		t.Errorf("Expected center node 'Weekly sync', got %q", doc.CenterNode.Label)
	}
	if len(doc.Nodes) != 4 {
		t.Errorf("Expected 4 nodes, got %d", len(doc.Nodes))
	}
}

func TestServer_DocumentEndpointWithoutDocument(t *testing.T) {
	s := NewServer()

	rec := doRequest(s, "GET", "/api/document")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", rec.Code)
	}
}

func TestServer_StatusReportsPipeline(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(s, "GET", "/api/status")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var status struct {
		State      string   `json:"state"`
		Generation uint64   `json:"generation"`
		Engine     string   `json:"engine"`
		Collapsed  []string `json:"collapsed"`
		Document   *struct {
			Title string `json:"title"`
			Stats struct {
				Total int `json:"total"`
			} `json:"stats"`
		} `json:"document"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("Failed to decode status response: %v", err)
	}

	if status.State != "rendered" {
		t.Errorf("Expected state 'rendered', got %q", status.State)
	}
	if status.Engine == "" {
		t.Error("Expected an engine name in status")
	}
	if status.Document == nil {
		t.Fatal("Expected document summary in status")
	}
	if status.Document.Title != "Weekly sync" {
		t.Errorf("Expected title 'Weekly sync', got %q", status.Document.Title)
	}
	if status.Document.Stats.Total != 5 {
		t.Errorf("Expected 5 total nodes, got %d", status.Document.Stats.Total)
	}
	if len(status.Collapsed) != 0 {
		t.Errorf("Expected no collapsed nodes, got %v", status.Collapsed)
	}
}

func TestServer_PNGEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(s, "GET", "/api/mindmap.png")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Expected Content-Type image/png, got %q", ct)
	}

	img, err := png.Decode(rec.Body)
	if err != nil {
		t.Fatalf("Response is not a valid PNG: %v", err)
	}
	if img.Bounds().Dx() <= 0 || img.Bounds().Dy() <= 0 {
		t.Errorf("Expected a non-empty image, got bounds %v", img.Bounds())
	}
}

func TestServer_PDFEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(s, "GET", "/api/mindmap.pdf")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Expected Content-Type application/pdf, got %q", ct)
	}
	if !strings.HasPrefix(rec.Body.String(), "%PDF-") {
		t.Error("Response body does not start with a PDF header")
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "weekly-sync") {
		t.Errorf("Expected filename slug in Content-Disposition, got %q", cd)
	}
}

func TestServer_RenderEndpointsWithoutDocument(t *testing.T) {
	s := NewServer()

	for _, path := range []string{"/api/mindmap.png", "/api/mindmap.pdf"} {
		rec := doRequest(s, "GET", path)
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("Expected status 503 for %s, got %d", path, rec.Code)
		}
	}
}

func TestServer_ToggleCollapseCycle(t *testing.T) {
	s := newTestServer(t)

	var resp struct {
		ID        string `json:"id"`
		Toggled   bool   `json:"toggled"`
		Collapsed bool   `json:"collapsed"`
	}

	rec := doRequest(s, "POST", "/api/toggle/theme_1")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode toggle response: %v", err)
	}
	if !resp.Toggled || !resp.Collapsed {
		t.Errorf("Expected toggled and collapsed, got toggled=%v collapsed=%v",
			resp.Toggled, resp.Collapsed)
	}

	// The collapsed node shows up in status, and rendering still works
	status := doRequest(s, "GET", "/api/status")
	if !strings.Contains(status.Body.String(), `"theme_1"`) {
		t.Error("Expected theme_1 in collapsed list after toggle")
	}
	if img := doRequest(s, "GET", "/api/mindmap.png"); img.Code != http.StatusOK {
		t.Errorf("Expected PNG to render after collapse, got status %d", img.Code)
	}

	// Second toggle expands again
	rec = doRequest(s, "POST", "/api/toggle/theme_1")
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode toggle response: %v", err)
	}
	if !resp.Toggled || resp.Collapsed {
		t.Errorf("Expected toggled and expanded, got toggled=%v collapsed=%v",
			resp.Toggled, resp.Collapsed)
	}
}

func TestServer_ToggleLeafAndUnknownAreNoOps(t *testing.T) {
	s := newTestServer(t)

	for _, id := range []string{"claim_1", "no_such_node"} {
		rec := doRequest(s, "POST", "/api/toggle/"+id)
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected status 200 for %s, got %d", id, rec.Code)
		}
		var resp struct {
			Toggled bool `json:"toggled"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("Failed to decode toggle response: %v", err)
		}
		if resp.Toggled {
			t.Errorf("Expected toggle of %s to be a no-op", id)
		}
	}
}

func TestServer_StaticIndexServed(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(s, "GET", "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Errorf("Expected HTML content type, got %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "meetmap") {
		t.Error("Expected index page to mention meetmap")
	}

	if missing := doRequest(s, "GET", "/no-such-file.css"); missing.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for missing static file, got %d", missing.Code)
	}
}

// The render subscription replays the last buffered event, so a page
// that connects after startup immediately learns the current state.
func TestServer_SubscribeRenderReplaysLastEvent(t *testing.T) {
	s := newTestServer(t)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", srv.URL+"/api/subscribe/render", nil)
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Expected Content-Type text/event-stream, got %q", ct)
	}

	reader := bufio.NewReader(resp.Body)
	var dataLine string
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("Stream ended before a data event arrived: %v", err)
		}
		if strings.HasPrefix(line, "data: ") {
			dataLine = strings.TrimPrefix(strings.TrimSpace(line), "data: ")
			break
		}
	}

	var event pubsub.Event
	if err := json.Unmarshal([]byte(dataLine), &event); err != nil {
		t.Fatalf("Failed to decode SSE event: %v", err)
	}
	if event.Topic != pubsub.TopicRenderStatus {
		t.Errorf("Expected topic %q, got %q", pubsub.TopicRenderStatus, event.Topic)
	}

	var status pubsub.RenderStatus
	if err := json.Unmarshal(event.Data, &status); err != nil {
		t.Fatalf("Failed to decode render status payload: %v", err)
	}
	if status.State != "rendered" && status.State != "degraded" {
		t.Errorf("Expected a rendered state, got %q", status.State)
	}
	if status.Nodes != 5 {
		t.Errorf("Expected 5 visible nodes, got %d", status.Nodes)
	}
}

func TestServer_SetDocumentNilKeepsServing(t *testing.T) {
	s := newTestServer(t)
	s.SetDocument(nil)

	rec := doRequest(s, "GET", "/api/status")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	var status struct {
		State string `json:"state"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("Failed to decode status response: %v", err)
	}
	if status.State != "idle" {
		t.Errorf("Expected state 'idle' after clearing document, got %q", status.State)
	}
}
