package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/launchmap/launchmap/pkg/cache"
	"github.com/launchmap/launchmap/pkg/export"
	"github.com/launchmap/launchmap/pkg/store/memory"
	"github.com/launchmap/launchmap/pkg/topo"
)

func testServer(t *testing.T) (*Server, *memory.Store) {
	t.Helper()

	s := memory.New()
	s.Seed("proj-1", topo.Snapshot{
		Services: []topo.ProjectServiceInstance{
			{ID: "inst-api", ServiceID: "api", Status: topo.StatusConnected,
				Service: topo.CatalogService{ID: "api", Name: "API Server", Category: "deploy"}},
			{ID: "inst-db", ServiceID: "db", Status: topo.StatusInProgress,
				Service: topo.CatalogService{ID: "db", Name: "Postgres", Category: "database"}},
		},
		Dependencies: []topo.DependencyRule{
			{ServiceID: "api", DependsOnServiceID: "db", Type: topo.DependencyRequired},
		},
	})

	srv := NewServer(s, Options{
		RootLabel: "My App",
		Logger:    log.NewWithOptions(io.Discard, log.Options{}),
	})
	return srv, s
}

func do(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := testServer(t)

	rec := do(t, srv, http.MethodGet, "/api/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
}

func TestTopologyEndpoint(t *testing.T) {
	srv, _ := testServer(t)

	rec := do(t, srv, http.MethodGet, "/api/projects/proj-1/topology", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body)
	}

	var doc export.Document
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.ProjectID != "proj-1" || doc.Grouping != "category" {
		t.Errorf("document: %+v", doc)
	}
	// Root + 2 services + 2 groups.
	if len(doc.Graph.Nodes) != 5 {
		t.Errorf("nodes: %d, want 5", len(doc.Graph.Nodes))
	}
	if doc.Graph.Node(topo.RootNodeID) == nil {
		t.Error("root node missing")
	}
}

func TestTopologyQueryParameters(t *testing.T) {
	srv, _ := testServer(t)

	rec := do(t, srv, http.MethodGet,
		"/api/projects/proj-1/topology?grouping=simplified&view=connections&focus=inst-api", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body)
	}

	var doc export.Document
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatal(err)
	}
	if doc.Grouping != "simplified" || doc.ViewMode != topo.ViewConnections || doc.FocusedID != "inst-api" {
		t.Errorf("view state: %+v", doc)
	}
	for _, e := range doc.Graph.Edges {
		if e.Kind == topo.EdgeDependency {
			t.Error("dependency edge visible in connections mode")
		}
	}
}

func TestTopologyRejectsBadParameters(t *testing.T) {
	srv, _ := testServer(t)

	for _, path := range []string{
		"/api/projects/proj-1/topology?grouping=bogus",
		"/api/projects/proj-1/topology?view=bogus",
	} {
		if rec := do(t, srv, http.MethodGet, path, nil); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status %d, want 400", path, rec.Code)
		}
	}
}

func TestSuggestionsEndpoint(t *testing.T) {
	srv, _ := testServer(t)

	rec := do(t, srv, http.MethodGet, "/api/projects/proj-1/suggestions", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}

	var resp struct {
		Suggestions []struct {
			SourceServiceID string `json:"source_service_id"`
			TargetServiceID string `json:"target_service_id"`
			ConnectionType  string `json:"connection_type"`
		} `json:"suggestions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Suggestions) != 1 {
		t.Fatalf("suggestions: %+v", resp.Suggestions)
	}
	got := resp.Suggestions[0]
	if got.SourceServiceID != "api" || got.TargetServiceID != "db" || got.ConnectionType != "uses" {
		t.Errorf("suggestion: %+v", got)
	}
}

func TestCreateConnectionLifecycle(t *testing.T) {
	srv, _ := testServer(t)

	body := map[string]string{
		"project_id":        "proj-1",
		"source_service_id": "api",
		"target_service_id": "db",
		"connection_type":   "uses",
	}

	rec := do(t, srv, http.MethodPost, "/api/connections", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status %d: %s", rec.Code, rec.Body)
	}

	var created topo.UserConnection
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	if created.ID == "" {
		t.Fatal("no ID assigned")
	}

	// Duplicate ordered tuple conflicts.
	if rec := do(t, srv, http.MethodPost, "/api/connections", body); rec.Code != http.StatusConflict {
		t.Errorf("duplicate status %d, want 409", rec.Code)
	}

	// The connection now shows up in the topology and suppresses the
	// suggestion.
	rec = do(t, srv, http.MethodGet, "/api/projects/proj-1/suggestions", nil)
	var resp struct {
		Suggestions []json.RawMessage `json:"suggestions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Suggestions) != 0 {
		t.Errorf("suggestion should disappear after creation: %s", rec.Body)
	}

	// Delete, then a second delete 404s.
	if rec := do(t, srv, http.MethodDelete, "/api/connections/"+created.ID, nil); rec.Code != http.StatusNoContent {
		t.Errorf("delete status %d, want 204", rec.Code)
	}
	if rec := do(t, srv, http.MethodDelete, "/api/connections/"+created.ID, nil); rec.Code != http.StatusNotFound {
		t.Errorf("second delete status %d, want 404", rec.Code)
	}
}

func TestCreateConnectionValidation(t *testing.T) {
	srv, _ := testServer(t)

	// Self-loop.
	rec := do(t, srv, http.MethodPost, "/api/connections", map[string]string{
		"project_id": "proj-1", "source_service_id": "api", "target_service_id": "api",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("self-loop status %d, want 400", rec.Code)
	}

	// Missing fields.
	rec = do(t, srv, http.MethodPost, "/api/connections", map[string]string{"project_id": "proj-1"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing fields status %d, want 400", rec.Code)
	}

	var resp struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Code != "INVALID_INPUT" {
		t.Errorf("error code %q", resp.Code)
	}
}

func TestTopologyCacheTracksInputs(t *testing.T) {
	srv, s := testServer(t)
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer fc.Close()
	srv.cache = fc

	// Prime the cache with the unfiltered topology.
	if rec := do(t, srv, http.MethodGet, "/api/projects/proj-1/topology", nil); rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}

	// A search query must not be served the unfiltered cached graph.
	rec := do(t, srv, http.MethodGet, "/api/projects/proj-1/topology?search=postgres", nil)
	var filtered export.Document
	if err := json.Unmarshal(rec.Body.Bytes(), &filtered); err != nil {
		t.Fatal(err)
	}
	if n := filtered.Graph.Node("inst-api"); n == nil || n.Highlighted {
		t.Error("non-matching service still highlighted: unfiltered cached graph served for a search")
	}
	if db := filtered.Graph.Node("inst-db"); db == nil || !db.Highlighted {
		t.Error("matching service not highlighted")
	}

	// A mutation changes the snapshot and must invalidate by key.
	if _, err := s.CreateConnection(context.Background(), topo.UserConnection{
		ProjectID: "proj-1", SourceServiceID: "api", TargetServiceID: "db", Type: "uses",
	}); err != nil {
		t.Fatalf("CreateConnection: %v", err)
	}

	rec = do(t, srv, http.MethodGet, "/api/projects/proj-1/topology", nil)
	var doc export.Document
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatal(err)
	}
	found := false
	for _, e := range doc.Graph.Edges {
		if e.Kind == topo.EdgeUserConnection {
			found = true
		}
	}
	if !found {
		t.Error("new connection missing: stale cached graph served after mutation")
	}
}
