package layout

import "github.com/launchmap/launchmap/pkg/topo"

// Direction selects the primary layout axis.
type Direction string

// Layout directions.
const (
	// DirectionTB stacks ranks top to bottom.
	DirectionTB Direction = "TB"

	// DirectionLR stacks ranks left to right.
	DirectionLR Direction = "LR"
)

// Default spacing parameters, in pixels.
const (
	DefaultRankSeparation = 100.0
	DefaultNodeSeparation = 60.0
	DefaultNodeWidth      = 200.0
	DefaultNodeHeight     = 80.0
	groupPadding          = 40.0
)

// Options parameterize the layout.
type Options struct {
	// Direction of the primary axis. Defaults to DirectionTB.
	Direction Direction

	// RankSeparation is the gap between consecutive ranks.
	RankSeparation float64

	// NodeSeparation is the gap between siblings within a rank.
	NodeSeparation float64

	// NodeWidth and NodeHeight are the default node extents.
	NodeWidth  float64
	NodeHeight float64

	// NodeHeights overrides the height of individual nodes (an expanded
	// card, for example). Overridden heights participate in spacing so
	// expanded nodes do not overlap neighbors.
	NodeHeights map[string]float64
}

func (o Options) withDefaults() Options {
	if o.Direction == "" {
		o.Direction = DirectionTB
	}
	if o.RankSeparation == 0 {
		o.RankSeparation = DefaultRankSeparation
	}
	if o.NodeSeparation == 0 {
		o.NodeSeparation = DefaultNodeSeparation
	}
	if o.NodeWidth == 0 {
		o.NodeWidth = DefaultNodeWidth
	}
	if o.NodeHeight == 0 {
		o.NodeHeight = DefaultNodeHeight
	}
	return o
}

func (o Options) heightOf(id string) float64 {
	if h, ok := o.NodeHeights[id]; ok && h > 0 {
		return h
	}
	return o.NodeHeight
}

// crossExtent is a node's footprint along the cross axis: width for TB,
// height (including overrides) for LR.
func (o Options) crossExtent(id string) float64 {
	if o.Direction == DirectionLR {
		return o.heightOf(id)
	}
	return o.NodeWidth
}

// primaryExtent is a node's footprint along the primary axis.
func (o Options) primaryExtent(id string) float64 {
	if o.Direction == DirectionLR {
		return o.NodeWidth
	}
	return o.heightOf(id)
}

// Apply positions every node of the graph and returns a new graph with
// coordinates filled in. Edges pass through unchanged.
//
// The computation is fully deterministic: for a fixed node/edge set,
// direction, and spacing, repeated calls produce identical coordinates.
// Cycles introduced by user connections are tolerated — their back edges
// are ignored for ranking but still present in the output edge set.
func Apply(g topo.Graph, opts Options) topo.Graph {
	opts = opts.withDefaults()

	r := newRanked(g)
	r.breakCycles()
	r.assignRanks()
	rows := r.rows()
	r.orderRows(rows)

	positions := r.coordinates(rows, opts)

	out := topo.Graph{
		Nodes: make([]topo.Node, len(g.Nodes)),
		Edges: g.Edges,
	}
	copy(out.Nodes, g.Nodes)

	for i := range out.Nodes {
		if p, ok := positions[out.Nodes[i].ID]; ok {
			out.Nodes[i].X, out.Nodes[i].Y = p.x, p.y
		}
	}

	placeGroups(out.Nodes, positions, opts)
	return out
}

type point struct{ x, y float64 }

// coordinates converts rank and within-rank order into positions. Each
// rank is centered on the cross axis; the primary axis accumulates the
// tallest member of every preceding rank plus the rank separation.
func (r *ranked) coordinates(rows [][]int, opts Options) map[string]point {
	positions := make(map[string]point, len(r.nodes))

	primary := 0.0
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}

		total := 0.0
		rankDepth := 0.0
		for _, idx := range row {
			id := r.nodes[idx].ID
			total += opts.crossExtent(id)
			if d := opts.primaryExtent(id); d > rankDepth {
				rankDepth = d
			}
		}
		total += opts.NodeSeparation * float64(len(row)-1)

		cross := -total / 2
		for _, idx := range row {
			id := r.nodes[idx].ID
			if opts.Direction == DirectionLR {
				positions[id] = point{x: primary, y: cross}
			} else {
				positions[id] = point{x: cross, y: primary}
			}
			cross += opts.crossExtent(id) + opts.NodeSeparation
		}

		primary += rankDepth + opts.RankSeparation
	}

	return positions
}

// placeGroups positions group nodes as bounding backgrounds: each group
// lands at the top-left corner of its members' bounding box, padded.
// Groups without positioned members (collapsed groups) line up after the
// last rank, in node order.
func placeGroups(nodes []topo.Node, positions map[string]point, opts Options) {
	type bounds struct {
		minX, minY float64
		seen       bool
	}
	boxes := make(map[string]*bounds)

	maxPrimary := 0.0
	for _, n := range nodes {
		if n.Kind == topo.NodeGroup {
			continue
		}
		p, ok := positions[n.ID]
		if !ok {
			continue
		}
		if primary := primaryCoord(p, opts.Direction); primary > maxPrimary {
			maxPrimary = primary
		}
		if n.GroupKey == "" {
			continue
		}
		b, ok := boxes[n.GroupKey]
		if !ok {
			b = &bounds{minX: p.x, minY: p.y, seen: true}
			boxes[n.GroupKey] = b
			continue
		}
		if p.x < b.minX {
			b.minX = p.x
		}
		if p.y < b.minY {
			b.minY = p.y
		}
	}

	orphanCross := 0.0
	for i := range nodes {
		if nodes[i].Kind != topo.NodeGroup {
			continue
		}
		if b, ok := boxes[nodes[i].GroupKey]; ok && b.seen {
			nodes[i].X = b.minX - groupPadding
			nodes[i].Y = b.minY - groupPadding
			continue
		}
		// Collapsed group: park it one rank beyond the graph.
		if opts.Direction == DirectionLR {
			nodes[i].X = maxPrimary + opts.NodeWidth + opts.RankSeparation
			nodes[i].Y = orphanCross
		} else {
			nodes[i].X = orphanCross
			nodes[i].Y = maxPrimary + opts.NodeHeight + opts.RankSeparation
		}
		orphanCross += opts.crossExtent(nodes[i].ID) + opts.NodeSeparation
	}
}

func primaryCoord(p point, dir Direction) float64 {
	if dir == DirectionLR {
		return p.x
	}
	return p.y
}
