// Package api exposes the topology engine over HTTP.
//
// Routes:
//
//	GET    /api/health                           liveness
//	GET    /api/projects/{projectID}/topology    positioned topology
//	GET    /api/projects/{projectID}/suggestions auto-connect suggestions
//	POST   /api/connections                      create a user connection
//	DELETE /api/connections/{id}                 delete a user connection
//
// Every response is JSON. Errors carry their machine-readable code in the
// body and map onto HTTP status by category.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/launchmap/launchmap/pkg/cache"
	"github.com/launchmap/launchmap/pkg/connect"
	"github.com/launchmap/launchmap/pkg/errors"
	"github.com/launchmap/launchmap/pkg/export"
	"github.com/launchmap/launchmap/pkg/layout"
	"github.com/launchmap/launchmap/pkg/store"
	"github.com/launchmap/launchmap/pkg/topo"
)

// Server handles HTTP requests against a store. Views are recomputed from
// a fresh snapshot on every request; the layout cache keeps that cheap for
// unchanged inputs.
type Server struct {
	store     store.Store
	client    *connect.Client
	cache     cache.Cache
	logger    *log.Logger
	rootLabel string
	layout    layout.Options
}

// Options configure a Server.
type Options struct {
	RootLabel string
	Layout    layout.Options
	Cache     cache.Cache
	Logger    *log.Logger
}

// NewServer creates the API server.
func NewServer(s store.Store, opts Options) *Server {
	c := opts.Cache
	if c == nil {
		c = cache.NewNullCache()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		store:     s,
		client:    connect.NewClient(s, logger),
		cache:     c,
		logger:    logger,
		rootLabel: opts.RootLabel,
		layout:    opts.Layout,
	}
}

// Router builds the chi router with all routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Route("/projects/{projectID}", func(r chi.Router) {
			r.Get("/topology", s.handleTopology)
			r.Get("/suggestions", s.handleSuggestions)
		})
		r.Route("/connections", func(r chi.Router) {
			r.Post("/", s.handleCreateConnection)
			r.Delete("/{id}", s.handleDeleteConnection)
		})
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleTopology(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	projectID := chi.URLParam(r, "projectID")
	q := r.URL.Query()

	grouping := topo.GroupByCategory
	if name := q.Get("grouping"); name != "" {
		var err error
		if grouping, err = topo.ParseGroupingMode(name); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	viewMode, err := topo.ParseViewMode(q.Get("view"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	snap, err := store.LoadSnapshot(ctx, s.store, projectID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	g := s.buildGraph(ctx, snap, grouping, viewMode, q.Get("search"), topo.Status(q.Get("status")))

	focusedID := q.Get("focus")
	g = topo.ApplyFocus(g, focusedID)

	positioned := s.layOut(ctx, g)

	writeJSON(w, http.StatusOK, export.Document{
		ProjectID: projectID,
		Grouping:  grouping.Name(),
		ViewMode:  viewMode,
		FocusedID: focusedID,
		Health:    snap.Summarize(snap.Services),
		Graph:     positioned,
	})
}

const cacheTTL = 24 * time.Hour

// buildGraph derives the pre-focus graph, consulting the graph cache. The
// key covers every build input, so a changed snapshot or query parameter
// always recomputes.
func (s *Server) buildGraph(ctx context.Context, snap topo.Snapshot, grouping topo.GroupingMode,
	viewMode topo.ViewMode, search string, status topo.Status) topo.Graph {
	raw, _ := json.Marshal(snap)
	key := cache.GraphKey(cache.Hash(raw), s.rootLabel, grouping.Name(),
		string(viewMode), search, string(status))

	if data, ok, err := s.cache.Get(ctx, key); err == nil && ok {
		var cached topo.Graph
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached
		}
	}

	g := topo.Build(snap, topo.BuildOptions{
		RootLabel:    s.rootLabel,
		Grouping:     grouping,
		SearchQuery:  search,
		StatusFilter: status,
	})
	g = topo.ApplyViewMode(g, viewMode)

	if data, err := json.Marshal(g); err == nil {
		_ = s.cache.Set(ctx, key, data, cacheTTL)
	}
	return g
}

func (s *Server) layOut(ctx context.Context, g topo.Graph) topo.Graph {
	raw, _ := json.Marshal(g)
	key := cache.LayoutKey(cache.Hash(raw), s.layout)

	if data, ok, err := s.cache.Get(ctx, key); err == nil && ok {
		var cached topo.Graph
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached
		}
	}

	positioned := layout.Apply(g, s.layout)
	if data, err := json.Marshal(positioned); err == nil {
		_ = s.cache.Set(ctx, key, data, cacheTTL)
	}
	return positioned
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")

	snap, err := store.LoadSnapshot(r.Context(), s.store, projectID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	suggestions := connect.Suggest(snap)
	if suggestions == nil {
		suggestions = []connect.Suggestion{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"suggestions": suggestions})
}

type createConnectionRequest struct {
	ProjectID       string `json:"project_id"`
	SourceServiceID string `json:"source_service_id"`
	TargetServiceID string `json:"target_service_id"`
	ConnectionType  string `json:"connection_type"`
}

func (s *Server) handleCreateConnection(w http.ResponseWriter, r *http.Request) {
	var req createConnectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body"))
		return
	}

	created, err := s.client.CreateConnection(r.Context(),
		req.ProjectID, req.SourceServiceID, req.TargetServiceID, req.ConnectionType)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleDeleteConnection(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	// The store is called directly so a missing connection surfaces as 404
	// instead of the client's benign no-op.
	if err := s.store.DeleteConnection(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type errorResponse struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	status := statusFor(code)

	if status >= 500 {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	} else {
		s.logger.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "code", code)
	}

	writeJSON(w, status, errorResponse{Code: code, Message: errors.UserMessage(err)})
}

func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidOperation,
		errors.ErrCodeInvalidGrouping, errors.ErrCodeInvalidViewMode,
		errors.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case errors.ErrCodeConflict:
		return http.StatusConflict
	case errors.ErrCodeNotFound, errors.ErrCodeProjectNotFound:
		return http.StatusNotFound
	case errors.ErrCodeNetwork, errors.ErrCodeTimeout:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
