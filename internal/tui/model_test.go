package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/launchmap/launchmap/pkg/engine"
	"github.com/launchmap/launchmap/pkg/store/memory"
	"github.com/launchmap/launchmap/pkg/topo"
)

func testModel(t *testing.T) Model {
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

	eng := engine.New(s, engine.Options{RootLabel: "My App"})
	if err := eng.Refresh(context.Background(), "proj-1"); err != nil {
		t.Fatal(err)
	}
	return New(eng, "proj-1")
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func press(m Model, keys ...string) Model {
	for _, k := range keys {
		next, _ := m.Update(key(k))
		m = next.(Model)
	}
	return m
}

func TestViewListsGroupsAndServices(t *testing.T) {
	m := testModel(t)
	out := m.View()

	for _, want := range []string{"Launchmap — proj-1", "deploy (1)", "database (1)", "API Server", "Postgres"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestNavigationAndFocus(t *testing.T) {
	m := testModel(t)

	// Rows: [group deploy, API Server, group database, Postgres].
	m = press(m, "j", "f")
	if id, ok := m.eng.Focused(); !ok || id != "inst-api" {
		t.Fatalf("focused %q, %v", id, ok)
	}
	if !strings.Contains(m.View(), "focus:inst-api") {
		t.Error("status line missing focus")
	}

	// Focusing again clears.
	m = press(m, "f")
	if _, ok := m.eng.Focused(); ok {
		t.Error("second focus must clear")
	}

	m = press(m, "f", "esc")
	if _, ok := m.eng.Focused(); ok {
		t.Error("esc must unfocus")
	}
}

func TestCollapseToggle(t *testing.T) {
	m := testModel(t)

	// Cursor starts on the deploy group header.
	m = press(m, "c")
	if !strings.Contains(m.View(), "[collapsed]") {
		t.Error("group not marked collapsed")
	}
	if strings.Contains(m.View(), "API Server") {
		t.Error("collapsed member still listed")
	}

	m = press(m, "c")
	if !strings.Contains(m.View(), "API Server") {
		t.Error("expand did not restore the member")
	}
}

func TestViewModeCycle(t *testing.T) {
	m := testModel(t)

	m = press(m, "v")
	if !strings.Contains(m.View(), "view:connections") {
		t.Error("first cycle should reach connections mode")
	}
	m = press(m, "v")
	if !strings.Contains(m.View(), "view:dependencies") {
		t.Error("second cycle should reach dependencies mode")
	}
	m = press(m, "v")
	if !strings.Contains(m.View(), "view:all") {
		t.Error("third cycle should wrap to all")
	}
}

func TestSearchInput(t *testing.T) {
	m := testModel(t)

	m = press(m, "/", "p", "o", "s", "t", "enter")
	if !strings.Contains(m.View(), "search:post") {
		t.Errorf("status line missing search query:\n%s", m.View())
	}

	m = press(m, "x")
	if strings.Contains(m.View(), "search:post") {
		t.Error("x must clear the search")
	}
}

func TestQuitKey(t *testing.T) {
	m := testModel(t)
	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if msg := cmd(); msg == nil {
		t.Fatal("expected quit message")
	}
}
