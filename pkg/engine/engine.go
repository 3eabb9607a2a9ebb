// Package engine ties the topology pipeline together: it owns the latest
// snapshot and the UI state, and recomputes the positioned view from
// source on every change.
//
// The engine never patches derived data. Any mutation goes to the store
// first; on completion the snapshot is re-pulled and the whole
// snapshot → build → view filters → layout pipeline runs again.
package engine

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/launchmap/launchmap/pkg/cache"
	"github.com/launchmap/launchmap/pkg/connect"
	"github.com/launchmap/launchmap/pkg/layout"
	"github.com/launchmap/launchmap/pkg/observability"
	"github.com/launchmap/launchmap/pkg/store"
	"github.com/launchmap/launchmap/pkg/topo"
)

// layoutCacheTTL bounds how long a positioned layout stays cached. Keys
// are content hashes, so this only limits storage, not correctness.
const layoutCacheTTL = 24 * time.Hour

// Options configure an Engine.
type Options struct {
	// RootLabel is the project display name shown on the hub node.
	RootLabel string

	// Layout parameterizes the layout engine.
	Layout layout.Options

	// Cache stores positioned layouts. Nil disables caching.
	Cache cache.Cache

	// Logger receives engine events. Nil discards output.
	Logger *log.Logger
}

// View is one positioned rendering of the topology, plus the state it was
// derived under.
type View struct {
	Graph      topo.Graph
	Health     topo.HealthSummary
	Grouping   string
	ViewMode   topo.ViewMode
	FocusedID  string
	Generation uint64
}

// Engine owns a project's snapshot and UI state. All methods are safe for
// concurrent use; recompute is synchronous under the engine lock, store
// mutations are the only async boundary.
type Engine struct {
	store  store.Store
	client *connect.Client
	cache  cache.Cache
	logger *log.Logger
	opts   Options

	mu         sync.Mutex
	projectID  string
	snapshot   topo.Snapshot
	generation uint64

	focus        topo.FocusState
	collapsed    map[string]bool
	grouping     topo.GroupingMode
	viewMode     topo.ViewMode
	search       string
	statusFilter topo.Status
}

// New creates an engine over the given store. Call Refresh before the
// first View.
func New(s store.Store, opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	c := opts.Cache
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Engine{
		store:     s,
		client:    connect.NewClient(s, logger),
		cache:     c,
		logger:    logger,
		opts:      opts,
		collapsed: make(map[string]bool),
		grouping:  topo.GroupByCategory,
		viewMode:  topo.ViewAll,
	}
}

// Refresh pulls a fresh snapshot for the project and bumps the generation.
// UI state (focus, collapsed groups, filters) survives refreshes.
func (e *Engine) Refresh(ctx context.Context, projectID string) error {
	observability.Engine().OnRefreshStart(ctx, projectID)
	start := time.Now()

	snap, err := store.LoadSnapshot(ctx, e.store, projectID)
	if err != nil {
		observability.Engine().OnRefreshComplete(ctx, projectID, 0, 0, time.Since(start), err)
		return err
	}

	e.mu.Lock()
	e.projectID = projectID
	e.snapshot = snap
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	observability.Engine().OnRefreshComplete(ctx, projectID,
		len(snap.Services), len(snap.Connections), time.Since(start), nil)
	e.logger.Debug("snapshot refreshed",
		"project", projectID, "generation", gen,
		"services", len(snap.Services), "connections", len(snap.Connections))
	return nil
}

// Generation returns the current snapshot generation. It increments on
// every successful Refresh, letting callers detect superseded state.
func (e *Engine) Generation() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.generation
}

// View recomputes the positioned topology from the current snapshot and
// UI state. Positioned layouts are cached by content hash, so repeated
// views of unchanged state skip the layout pass.
func (e *Engine) View(ctx context.Context) (View, error) {
	e.mu.Lock()
	snap := e.snapshot
	opts := topo.BuildOptions{
		RootLabel:       e.opts.RootLabel,
		Grouping:        e.grouping,
		SearchQuery:     e.search,
		CollapsedGroups: cloneSet(e.collapsed),
		StatusFilter:    e.statusFilter,
	}
	viewMode := e.viewMode
	focusedID, _ := e.focus.Current()
	gen := e.generation
	projectID := e.projectID
	e.mu.Unlock()

	g := topo.Build(snap, opts)
	g = topo.ApplyViewMode(g, viewMode)
	g = topo.ApplyFocus(g, focusedID)

	positioned, err := e.layOut(ctx, projectID, g)
	if err != nil {
		return View{}, err
	}

	return View{
		Graph:      positioned,
		Health:     snap.Summarize(snap.Services),
		Grouping:   opts.Grouping.Name(),
		ViewMode:   viewMode,
		FocusedID:  focusedID,
		Generation: gen,
	}, nil
}

// layOut positions the graph, consulting the layout cache first.
func (e *Engine) layOut(ctx context.Context, projectID string, g topo.Graph) (topo.Graph, error) {
	key := e.layoutKey(g)

	if data, ok, err := e.cache.Get(ctx, key); err == nil && ok {
		var cached topo.Graph
		if err := json.Unmarshal(data, &cached); err == nil {
			observability.Cache().OnCacheHit(ctx, "layout")
			return cached, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, "layout")

	observability.Engine().OnLayoutStart(ctx, projectID, len(g.Nodes))
	start := time.Now()
	positioned := layout.Apply(g, e.opts.Layout)
	observability.Engine().OnLayoutComplete(ctx, projectID, time.Since(start), nil)

	if data, err := json.Marshal(positioned); err == nil {
		if err := e.cache.Set(ctx, key, data, layoutCacheTTL); err == nil {
			observability.Cache().OnCacheSet(ctx, "layout", len(data))
		}
	}
	return positioned, nil
}

func (e *Engine) layoutKey(g topo.Graph) string {
	raw, _ := json.Marshal(g)
	return cache.LayoutKey(cache.Hash(raw), e.opts.Layout)
}

// Focus toggles focus on a node: focusing the focused node clears it,
// focusing another moves directly.
func (e *Engine) Focus(nodeID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.focus.Click(nodeID)
}

// Unfocus clears any focus, like clicking empty canvas.
func (e *Engine) Unfocus() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.focus.ClickCanvas()
}

// Focused returns the focused node ID and whether focus is active.
func (e *Engine) Focused() (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.focus.Current()
}

// SetGroupCollapsed collapses or expands a group.
func (e *Engine) SetGroupCollapsed(key string, collapsed bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if collapsed {
		e.collapsed[key] = true
	} else {
		delete(e.collapsed, key)
	}
}

// ToggleGroup flips a group's collapsed state.
func (e *Engine) ToggleGroup(key string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.collapsed[key] {
		delete(e.collapsed, key)
	} else {
		e.collapsed[key] = true
	}
}

// SetViewMode selects which edge kinds the view shows.
func (e *Engine) SetViewMode(mode topo.ViewMode) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.viewMode = mode
}

// SetGroupingMode selects the group-key taxonomy.
func (e *Engine) SetGroupingMode(mode topo.GroupingMode) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if mode != nil {
		e.grouping = mode
	}
}

// SetSearchQuery sets the highlight query. Empty highlights everything.
func (e *Engine) SetSearchQuery(q string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.search = q
}

// SetStatusFilter restricts the view to instances with the given status.
func (e *Engine) SetStatusFilter(status topo.Status) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.statusFilter = status
}

// CreateConnection creates a user connection and refreshes the snapshot.
// A refresh that lands between dispatch and completion is superseded by
// the post-mutation refresh, never trusted over it.
func (e *Engine) CreateConnection(ctx context.Context, sourceServiceID, targetServiceID, connType string) (topo.UserConnection, error) {
	e.mu.Lock()
	projectID := e.projectID
	dispatchGen := e.generation
	e.mu.Unlock()

	created, err := e.client.CreateConnection(ctx, projectID, sourceServiceID, targetServiceID, connType)
	observability.Engine().OnMutation(ctx, projectID, "create_connection", err)
	if err != nil {
		return topo.UserConnection{}, err
	}

	if e.Generation() != dispatchGen {
		e.logger.Debug("mutation completed against a superseded snapshot, refreshing again",
			"project", projectID)
	}
	if err := e.Refresh(ctx, projectID); err != nil {
		return created, err
	}
	return created, nil
}

// DeleteConnection deletes a user connection and refreshes the snapshot.
// Deleting an already-gone connection is a no-op.
func (e *Engine) DeleteConnection(ctx context.Context, id string) error {
	e.mu.Lock()
	projectID := e.projectID
	e.mu.Unlock()

	err := e.client.DeleteConnection(ctx, id)
	observability.Engine().OnMutation(ctx, projectID, "delete_connection", err)
	if err != nil {
		return err
	}
	return e.Refresh(ctx, projectID)
}

// Suggestions derives auto-connect suggestions from the current snapshot.
func (e *Engine) Suggestions() []connect.Suggestion {
	e.mu.Lock()
	snap := e.snapshot
	e.mu.Unlock()
	return connect.Suggest(snap)
}

// ApplySuggestions creates every current suggestion, skipping conflicts,
// then refreshes.
func (e *Engine) ApplySuggestions(ctx context.Context) (connect.ApplyResult, error) {
	e.mu.Lock()
	projectID := e.projectID
	e.mu.Unlock()

	res, err := e.client.ApplySuggestions(ctx, projectID, e.Suggestions())
	if err != nil {
		return res, err
	}
	return res, e.Refresh(ctx, projectID)
}

func cloneSet(s map[string]bool) map[string]bool {
	out := make(map[string]bool, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
