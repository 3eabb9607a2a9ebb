package topo

import (
	"sort"
	"strings"
)

// RootNodeID is the fixed ID of the project hub node.
const RootNodeID = "__project__"

// NodeKind distinguishes the three node flavors in the topology graph.
type NodeKind string

// Node kinds.
const (
	NodeRoot    NodeKind = "root"
	NodeService NodeKind = "service"
	NodeGroup   NodeKind = "group"
)

// EdgeKind distinguishes the three edge flavors in the topology graph.
type EdgeKind string

// Edge kinds.
const (
	EdgeRootLink       EdgeKind = "root-link"
	EdgeDependency     EdgeKind = "dependency"
	EdgeUserConnection EdgeKind = "user-connection"
)

// Node is a derived visual vertex. Nodes are recomputed from scratch on
// every build and must never be mutated in place; transforms return copies.
type Node struct {
	ID   string   `json:"id"`
	Kind NodeKind `json:"kind"`

	Label    string   `json:"label"`
	Slug     string   `json:"slug,omitempty"`
	Category Category `json:"category,omitempty"`
	Status   Status   `json:"status,omitempty"`
	GroupKey string   `json:"group_key,omitempty"`

	Health        HealthStatus `json:"health,omitempty"`
	CostEstimate  string       `json:"cost_estimate,omitempty"`
	EnvConfigured int          `json:"env_configured,omitempty"`
	EnvRequired   int          `json:"env_required,omitempty"`
	Connections   int          `json:"connections,omitempty"`
	Highlighted   bool         `json:"highlighted,omitempty"`

	// Group-only fields. ChildCount reflects every member of the group,
	// collapsed or not.
	Collapsed  bool `json:"collapsed,omitempty"`
	ChildCount int  `json:"child_count,omitempty"`

	// FocusOpacity is 1.0 unless focus mode dims this node.
	FocusOpacity float64 `json:"focus_opacity"`

	// X, Y are assigned by the layout engine.
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Edge is a derived, directed visual connector between two nodes.
type Edge struct {
	ID     string   `json:"id"`
	Source string   `json:"source"`
	Target string   `json:"target"`
	Kind   EdgeKind `json:"kind"`

	// Type carries the connection or dependency type label.
	Type string `json:"type,omitempty"`

	// Status styles root links by the endpoint's configuration state.
	Status Status `json:"status,omitempty"`

	// FocusOpacity is 1.0 unless focus mode dims this edge.
	FocusOpacity float64 `json:"focus_opacity"`
}

// Graph is the derived node/edge model handed to layout and rendering.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node returns the node with the given ID, or nil.
func (g Graph) Node(id string) *Node {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i]
		}
	}
	return nil
}

// Groups returns the group nodes in emission order.
func (g Graph) Groups() []Node {
	var groups []Node
	for _, n := range g.Nodes {
		if n.Kind == NodeGroup {
			groups = append(groups, n)
		}
	}
	return groups
}

// GroupNodeID returns the synthetic node ID for a group key.
func GroupNodeID(key string) string { return "group-" + key }

// BuildOptions parameterize the graph builder.
type BuildOptions struct {
	// RootLabel is the display label of the hub node (the project name).
	RootLabel string

	// Grouping selects the group-key taxonomy. Nil means GroupByCategory.
	Grouping GroupingMode

	// SearchQuery highlights matching service names. Empty highlights all.
	SearchQuery string

	// CollapsedGroups hides the service nodes of the listed group keys.
	CollapsedGroups map[string]bool

	// StatusFilter drops instances with a different status.
	// StatusFilterAll keeps everything.
	StatusFilter Status
}

// Build derives the topology graph from a snapshot. It is a pure function
// of its inputs: identical snapshot and options always produce the same
// node and edge slices, in the same order.
//
// Collapsed groups still count their members (ChildCount covers hidden
// services) but contribute no service nodes and no incident edges. Edges
// whose endpoints cannot be resolved to visible, uncollapsed instances are
// dropped silently.
func Build(snap Snapshot, opts BuildOptions) Graph {
	grouping := opts.Grouping
	if grouping == nil {
		grouping = GroupByCategory
	}

	tables := snap.Tables(opts.StatusFilter)
	connCounts := snap.connectionCounts()
	query := strings.ToLower(opts.SearchQuery)

	rootLabel := opts.RootLabel
	if rootLabel == "" {
		rootLabel = "Project"
	}

	g := Graph{
		Nodes: []Node{{
			ID:           RootNodeID,
			Kind:         NodeRoot,
			Label:        rootLabel,
			FocusOpacity: 1.0,
		}},
	}

	// Group accounting first: ChildCount must reflect all members, not just
	// the rendered ones.
	type groupInfo struct {
		key        string
		childCount int
	}
	var groupOrder []string
	groupCounts := make(map[string]*groupInfo)
	groupKeyByInstance := make(map[string]string, len(tables.Visible))

	for _, inst := range tables.Visible {
		key := grouping.Key(inst.Service)
		groupKeyByInstance[inst.ID] = key
		info, ok := groupCounts[key]
		if !ok {
			info = &groupInfo{key: key}
			groupCounts[key] = info
			groupOrder = append(groupOrder, key)
		}
		info.childCount++
	}

	collapsed := func(key string) bool { return opts.CollapsedGroups[key] }

	// Service nodes, skipping members of collapsed groups.
	emitted := make(map[string]bool, len(tables.Visible))
	for _, inst := range tables.Visible {
		key := groupKeyByInstance[inst.ID]
		if collapsed(key) {
			continue
		}
		emitted[inst.ID] = true

		configured, required := snap.envCoverage(inst)
		g.Nodes = append(g.Nodes, Node{
			ID:            inst.ID,
			Kind:          NodeService,
			Label:         inst.Service.Name,
			Slug:          inst.Service.Slug,
			Category:      inst.Service.Category,
			Status:        inst.Status,
			GroupKey:      key,
			Health:        healthOf(snap.Health, inst.ID),
			CostEstimate:  firstCostTier(inst.Service.CostEstimate),
			EnvConfigured: configured,
			EnvRequired:   required,
			Connections:   connCounts[inst.ServiceID],
			Highlighted:   query == "" || strings.Contains(strings.ToLower(inst.Service.Name), query),
			FocusOpacity:  1.0,
		})
	}

	// One group node per distinct key, in first-encounter order.
	for _, key := range groupOrder {
		g.Nodes = append(g.Nodes, Node{
			ID:           GroupNodeID(key),
			Kind:         NodeGroup,
			Label:        key,
			GroupKey:     key,
			Collapsed:    collapsed(key),
			ChildCount:   groupCounts[key].childCount,
			FocusOpacity: 1.0,
		})
	}

	// Root links for every emitted service node.
	for _, inst := range tables.Visible {
		if !emitted[inst.ID] {
			continue
		}
		g.Edges = append(g.Edges, Edge{
			ID:           "root-" + inst.ID,
			Source:       RootNodeID,
			Target:       inst.ID,
			Kind:         EdgeRootLink,
			Status:       inst.Status,
			FocusOpacity: 1.0,
		})
	}

	// Dependency edges, resolved through the service→instance table.
	for _, dep := range tables.RelevantDependencies {
		src, dst := tables.InstanceIDByServiceID[dep.ServiceID], tables.InstanceIDByServiceID[dep.DependsOnServiceID]
		if !emitted[src] || !emitted[dst] {
			continue
		}
		g.Edges = append(g.Edges, Edge{
			ID:           "dep-" + src + "-" + dst,
			Source:       src,
			Target:       dst,
			Kind:         EdgeDependency,
			Type:         string(dep.Type),
			FocusOpacity: 1.0,
		})
	}

	// User connection edges, resolved the same way.
	for _, conn := range snap.Connections {
		src, dst := tables.InstanceIDByServiceID[conn.SourceServiceID], tables.InstanceIDByServiceID[conn.TargetServiceID]
		if src == "" || dst == "" || !emitted[src] || !emitted[dst] {
			continue
		}
		g.Edges = append(g.Edges, Edge{
			ID:           "conn-" + conn.ID,
			Source:       src,
			Target:       dst,
			Kind:         EdgeUserConnection,
			Type:         conn.Type,
			FocusOpacity: 1.0,
		})
	}

	return g
}

func healthOf(health map[string]HealthRecord, instanceID string) HealthStatus {
	if rec, ok := health[instanceID]; ok {
		return rec.Status
	}
	return ""
}

// firstCostTier picks the first value of the multi-tier cost map in
// ascending tier-name order, so the choice is deterministic.
func firstCostTier(tiers map[string]string) string {
	if len(tiers) == 0 {
		return ""
	}
	keys := make([]string, 0, len(tiers))
	for k := range tiers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return tiers[keys[0]]
}
