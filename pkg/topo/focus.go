package topo

// Focus mode opacities. Dimmed elements stay in the graph so layout keeps
// treating them as occupied space.
const (
	dimmedNodeOpacity = 0.2
	dimmedEdgeOpacity = 0.1
)

// Neighborhood returns the 1-hop neighbor set of nodeID over the given
// edges, treating every edge as bidirectional. The focused node itself is
// always a member.
func Neighborhood(nodeID string, edges []Edge) map[string]bool {
	neighbors := map[string]bool{nodeID: true}
	for _, e := range edges {
		switch nodeID {
		case e.Source:
			neighbors[e.Target] = true
		case e.Target:
			neighbors[e.Source] = true
		}
	}
	return neighbors
}

// ApplyFocus annotates the graph for focus mode: nodes outside the focused
// node's neighborhood get FocusOpacity 0.2, edges not incident to the
// focused node get 0.1. Group nodes are never dimmed. The input graph is
// not modified; no nodes or edges are removed.
//
// An empty focusedID returns the graph unchanged.
func ApplyFocus(g Graph, focusedID string) Graph {
	if focusedID == "" {
		return g
	}

	neighbors := Neighborhood(focusedID, g.Edges)

	out := Graph{
		Nodes: make([]Node, len(g.Nodes)),
		Edges: make([]Edge, len(g.Edges)),
	}

	for i, n := range g.Nodes {
		if n.Kind != NodeGroup && !neighbors[n.ID] {
			n.FocusOpacity = dimmedNodeOpacity
		}
		out.Nodes[i] = n
	}

	for i, e := range g.Edges {
		if e.Source != focusedID && e.Target != focusedID {
			e.FocusOpacity = dimmedEdgeOpacity
		}
		out.Edges[i] = e
	}

	return out
}

// FocusState is the two-state focus machine: Unfocused, or FocusedOn(node).
// The zero value is Unfocused.
type FocusState struct {
	nodeID string
}

// Current returns the focused node ID and whether any node is focused.
func (f *FocusState) Current() (string, bool) {
	return f.nodeID, f.nodeID != ""
}

// Click records a click on a node. Clicking the focused node clears focus;
// clicking any other node moves focus there directly, with no intermediate
// unfocused state.
func (f *FocusState) Click(nodeID string) {
	if f.nodeID == nodeID {
		f.nodeID = ""
		return
	}
	f.nodeID = nodeID
}

// ClickCanvas records a click on empty canvas, clearing any focus.
func (f *FocusState) ClickCanvas() {
	f.nodeID = ""
}
