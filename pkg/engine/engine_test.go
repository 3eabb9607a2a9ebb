package engine

import (
	"context"
	"testing"

	"github.com/launchmap/launchmap/pkg/cache"
	"github.com/launchmap/launchmap/pkg/errors"
	"github.com/launchmap/launchmap/pkg/layout"
	"github.com/launchmap/launchmap/pkg/store/memory"
	"github.com/launchmap/launchmap/pkg/topo"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()

	s := memory.New()
	s.Seed("proj-1", topo.Snapshot{
		Services: []topo.ProjectServiceInstance{
			{ID: "inst-api", ServiceID: "api", Status: topo.StatusConnected,
				Service: topo.CatalogService{ID: "api", Name: "API Server", Category: "deploy"}},
			{ID: "inst-db", ServiceID: "db", Status: topo.StatusInProgress,
				Service: topo.CatalogService{ID: "db", Name: "Postgres", Category: "database"}},
			{ID: "inst-auth", ServiceID: "auth", Status: topo.StatusConnected,
				Service: topo.CatalogService{ID: "auth", Name: "Auth0", Category: "auth"}},
		},
		Dependencies: []topo.DependencyRule{
			{ServiceID: "api", DependsOnServiceID: "db", Type: topo.DependencyRequired},
		},
		Health: map[string]topo.HealthRecord{
			"inst-api": {Status: topo.HealthHealthy},
		},
	})

	e := New(s, Options{RootLabel: "My App"})
	if err := e.Refresh(context.Background(), "proj-1"); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	return e
}

func TestViewBasics(t *testing.T) {
	e := testEngine(t)

	v, err := e.View(context.Background())
	if err != nil {
		t.Fatalf("View: %v", err)
	}

	root := v.Graph.Node(topo.RootNodeID)
	if root == nil || root.Label != "My App" {
		t.Fatalf("root node: %+v", root)
	}
	if v.Health.Healthy != 1 || v.Health.Unknown != 2 {
		t.Errorf("health summary: %+v", v.Health)
	}
	if v.Grouping != "category" || v.ViewMode != topo.ViewAll {
		t.Errorf("default view state: %+v", v)
	}

	// Positions assigned: the root and its children occupy distinct ranks.
	api := v.Graph.Node("inst-api")
	if api == nil || api.Y <= root.Y {
		t.Errorf("layout not applied: root=%+v api=%+v", root, api)
	}
}

func TestViewReflectsUIState(t *testing.T) {
	e := testEngine(t)
	ctx := context.Background()

	e.SetViewMode(topo.ViewConnections)
	v, err := e.View(ctx)
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	for _, edge := range v.Graph.Edges {
		if edge.Kind == topo.EdgeDependency {
			t.Error("dependency edge visible in connections mode")
		}
	}

	e.SetViewMode(topo.ViewAll)
	e.ToggleGroup("database")
	v, err = e.View(ctx)
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	if v.Graph.Node("inst-db") != nil {
		t.Error("member of collapsed group still visible")
	}

	e.ToggleGroup("database")
	v, _ = e.View(ctx)
	if v.Graph.Node("inst-db") == nil {
		t.Error("expanding the group must restore the member")
	}
}

func TestFocusToggleThroughEngine(t *testing.T) {
	e := testEngine(t)
	ctx := context.Background()

	e.Focus("inst-api")
	v, err := e.View(ctx)
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	if v.FocusedID != "inst-api" {
		t.Fatalf("focused: %q", v.FocusedID)
	}
	// inst-auth is outside inst-api's neighborhood.
	if n := v.Graph.Node("inst-auth"); n == nil || n.FocusOpacity != 0.2 {
		t.Errorf("outsider not dimmed: %+v", n)
	}

	// Second focus on the same node clears.
	e.Focus("inst-api")
	if _, ok := e.Focused(); ok {
		t.Error("second focus must clear")
	}

	e.Focus("inst-db")
	e.Unfocus()
	if _, ok := e.Focused(); ok {
		t.Error("Unfocus must clear")
	}
}

func TestSearchAndStatusFilter(t *testing.T) {
	e := testEngine(t)
	ctx := context.Background()

	e.SetSearchQuery("postgres")
	v, _ := e.View(ctx)
	if n := v.Graph.Node("inst-api"); n.Highlighted {
		t.Error("non-match highlighted")
	}
	if n := v.Graph.Node("inst-db"); !n.Highlighted {
		t.Error("match not highlighted")
	}

	e.SetSearchQuery("")
	e.SetStatusFilter(topo.StatusConnected)
	v, _ = e.View(ctx)
	if v.Graph.Node("inst-db") != nil {
		t.Error("filtered-out status still visible")
	}
	if v.Graph.Node("inst-api") == nil || v.Graph.Node("inst-auth") == nil {
		t.Error("matching statuses must stay")
	}
}

func TestCreateConnectionRecomputes(t *testing.T) {
	e := testEngine(t)
	ctx := context.Background()

	before := e.Generation()
	created, err := e.CreateConnection(ctx, "api", "auth", "uses")
	if err != nil {
		t.Fatalf("CreateConnection: %v", err)
	}
	if e.Generation() <= before {
		t.Error("mutation must bump the generation via refresh")
	}

	v, err := e.View(ctx)
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	found := false
	for _, edge := range v.Graph.Edges {
		if edge.ID == "conn-"+created.ID {
			found = true
			if edge.Kind != topo.EdgeUserConnection || edge.Type != "uses" {
				t.Errorf("edge shape: %+v", edge)
			}
		}
	}
	if !found {
		t.Error("created connection missing from the recomputed view")
	}
}

func TestCreateConnectionConflictLeavesStateAlone(t *testing.T) {
	e := testEngine(t)
	ctx := context.Background()

	if _, err := e.CreateConnection(ctx, "api", "auth", "uses"); err != nil {
		t.Fatalf("first create: %v", err)
	}
	gen := e.Generation()

	_, err := e.CreateConnection(ctx, "api", "auth", "uses")
	if !errors.Is(err, errors.ErrCodeConflict) {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
	if e.Generation() != gen {
		t.Error("failed mutation must not refresh")
	}
}

func TestDeleteConnectionRecomputes(t *testing.T) {
	e := testEngine(t)
	ctx := context.Background()

	created, err := e.CreateConnection(ctx, "api", "auth", "uses")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := e.DeleteConnection(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	v, _ := e.View(ctx)
	for _, edge := range v.Graph.Edges {
		if edge.ID == "conn-"+created.ID {
			t.Error("deleted connection still in view")
		}
	}

	// Second delete is benign.
	if err := e.DeleteConnection(ctx, created.ID); err != nil {
		t.Errorf("second delete: %v", err)
	}
}

func TestSuggestionsConverge(t *testing.T) {
	e := testEngine(t)
	ctx := context.Background()

	suggestions := e.Suggestions()
	if len(suggestions) != 1 {
		t.Fatalf("expected 1 suggestion, got %+v", suggestions)
	}
	if suggestions[0].SourceServiceID != "api" || suggestions[0].TargetServiceID != "db" {
		t.Fatalf("unexpected suggestion %+v", suggestions[0])
	}

	res, err := e.ApplySuggestions(ctx)
	if err != nil {
		t.Fatalf("ApplySuggestions: %v", err)
	}
	if res.Created != 1 || res.Skipped != 0 {
		t.Errorf("result: %+v", res)
	}

	if after := e.Suggestions(); len(after) != 0 {
		t.Errorf("suggestions must converge to empty, got %+v", after)
	}
}

func TestUIStateSurvivesRefresh(t *testing.T) {
	e := testEngine(t)
	ctx := context.Background()

	e.Focus("inst-api")
	e.ToggleGroup("auth")
	e.SetViewMode(topo.ViewDependencies)

	if err := e.Refresh(ctx, "proj-1"); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	v, _ := e.View(ctx)
	if v.FocusedID != "inst-api" || v.ViewMode != topo.ViewDependencies {
		t.Errorf("UI state lost across refresh: %+v", v)
	}
	if v.Graph.Node("inst-auth") != nil {
		t.Error("collapsed group reopened by refresh")
	}
}

func TestLayoutCacheKeyedByNodeDimensions(t *testing.T) {
	ctx := context.Background()

	s := memory.New()
	s.Seed("proj-1", topo.Snapshot{
		Services: []topo.ProjectServiceInstance{
			{ID: "i-a", ServiceID: "a", Service: topo.CatalogService{ID: "a", Name: "A", Category: "deploy"}},
			{ID: "i-b", ServiceID: "b", Service: topo.CatalogService{ID: "b", Name: "B", Category: "deploy"}},
			{ID: "i-c", ServiceID: "c", Service: topo.CatalogService{ID: "c", Name: "C", Category: "deploy"}},
		},
	})

	shared, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer shared.Close()

	viewWith := func(width float64, c cache.Cache) topo.Graph {
		t.Helper()
		e := New(s, Options{
			RootLabel: "My App",
			Layout:    layout.Options{NodeWidth: width},
			Cache:     c,
		})
		if err := e.Refresh(ctx, "proj-1"); err != nil {
			t.Fatalf("Refresh: %v", err)
		}
		v, err := e.View(ctx)
		if err != nil {
			t.Fatalf("View: %v", err)
		}
		return v.Graph
	}

	// Prime the shared cache with narrow-node positions, then lay the same
	// graph out with wide nodes through the same cache.
	narrow := viewWith(200, shared)
	wide := viewWith(400, shared)

	if narrow.Node("i-a").X == wide.Node("i-a").X {
		t.Fatal("wide layout served the narrow engine's cached positions")
	}

	// The cached path must agree with an uncached computation.
	fresh := viewWith(400, nil)
	for _, id := range []string{"i-a", "i-b", "i-c"} {
		cached, uncached := wide.Node(id), fresh.Node(id)
		if cached.X != uncached.X || cached.Y != uncached.Y {
			t.Errorf("node %s: cached-path (%v,%v), fresh (%v,%v)",
				id, cached.X, cached.Y, uncached.X, uncached.Y)
		}
	}
}
