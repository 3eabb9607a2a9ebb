package topo

import "github.com/launchmap/launchmap/pkg/errors"

// ViewMode selects which edge kinds are visible. Root links are always
// kept; the other modes hide one of the two service-to-service edge kinds.
type ViewMode string

// View modes.
const (
	// ViewAll shows every edge kind.
	ViewAll ViewMode = "all"

	// ViewConnections hides dependency edges, showing only user-authored
	// connections (plus root links).
	ViewConnections ViewMode = "connections"

	// ViewDependencies hides user-connection edges, showing only catalog
	// dependency edges (plus root links).
	ViewDependencies ViewMode = "dependencies"
)

// ParseViewMode resolves a mode name to its ViewMode.
func ParseViewMode(name string) (ViewMode, error) {
	switch ViewMode(name) {
	case ViewAll, ViewConnections, ViewDependencies:
		return ViewMode(name), nil
	case "":
		return ViewAll, nil
	}
	return "", errors.New(errors.ErrCodeInvalidViewMode,
		"invalid view mode: %q (must be one of: all, connections, dependencies)", name)
}

// permits reports whether the mode keeps the given edge kind.
func (m ViewMode) permits(kind EdgeKind) bool {
	switch m {
	case ViewConnections:
		return kind != EdgeDependency
	case ViewDependencies:
		return kind != EdgeUserConnection
	default:
		return true
	}
}

// ApplyViewMode filters the edge list down to the kinds the mode permits.
// Nodes are untouched; the input graph is not modified.
func ApplyViewMode(g Graph, mode ViewMode) Graph {
	if mode == ViewAll || mode == "" {
		return g
	}

	out := Graph{Nodes: g.Nodes}
	for _, e := range g.Edges {
		if mode.permits(e.Kind) {
			out.Edges = append(out.Edges, e)
		}
	}
	return out
}
