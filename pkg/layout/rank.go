package layout

import "github.com/launchmap/launchmap/pkg/topo"

// ranked is the working graph for the ranking phases: non-group nodes
// indexed densely, with adjacency lists over ranking edges only.
type ranked struct {
	nodes []topo.Node // input order, groups excluded
	index map[string]int

	out  [][]int // child indices
	in   [][]int // parent indices
	rank []int
}

// newRanked builds the working graph from the topology graph, dropping
// group nodes and any edge that does not connect two ranked nodes.
func newRanked(g topo.Graph) *ranked {
	r := &ranked{index: make(map[string]int)}

	for _, n := range g.Nodes {
		if n.Kind == topo.NodeGroup {
			continue
		}
		r.index[n.ID] = len(r.nodes)
		r.nodes = append(r.nodes, n)
	}

	r.out = make([][]int, len(r.nodes))
	r.in = make([][]int, len(r.nodes))
	r.rank = make([]int, len(r.nodes))

	for _, e := range g.Edges {
		src, srcOK := r.index[e.Source]
		dst, dstOK := r.index[e.Target]
		if !srcOK || !dstOK || src == dst {
			continue
		}
		r.out[src] = append(r.out[src], dst)
		r.in[dst] = append(r.in[dst], src)
	}

	return r
}

// breakCycles removes back edges from the adjacency lists so ranking
// terminates. User-authored connections can close cycles; the edges stay
// in the rendered edge set, they just don't influence ranks. Returns the
// number of back edges dropped.
//
// The DFS starts at current sources so natural roots keep rank 0, then
// covers any remaining nodes in input order.
func (r *ranked) breakCycles() int {
	const (
		white = iota
		gray
		black
	)

	color := make([]int, len(r.nodes))
	var backEdges [][2]int

	var dfs func(node int)
	dfs = func(node int) {
		color[node] = gray
		for _, child := range r.out[node] {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				backEdges = append(backEdges, [2]int{node, child})
			}
		}
		color[node] = black
	}

	for i := range r.nodes {
		if len(r.in[i]) == 0 && color[i] == white {
			dfs(i)
		}
	}
	for i := range r.nodes {
		if color[i] == white {
			dfs(i)
		}
	}

	for _, e := range backEdges {
		r.removeEdge(e[0], e[1])
	}
	return len(backEdges)
}

func (r *ranked) removeEdge(from, to int) {
	r.out[from] = deleteFirst(r.out[from], to)
	r.in[to] = deleteFirst(r.in[to], from)
}

func deleteFirst(s []int, v int) []int {
	for i, x := range s {
		if x == v {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}

// assignRanks layers nodes by longest path from the sources using a
// topological traversal. Each node lands at one plus the maximum rank of
// its parents; sources sit at rank 0. Must run after breakCycles.
func (r *ranked) assignRanks() {
	inDegree := make([]int, len(r.nodes))
	var queue []int

	for i := range r.nodes {
		inDegree[i] = len(r.in[i])
		if inDegree[i] == 0 {
			queue = append(queue, i)
		}
	}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		for _, child := range r.out[curr] {
			if rank := r.rank[curr] + 1; rank > r.rank[child] {
				r.rank[child] = rank
			}
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}
}

// rows groups node indices by rank, ascending, preserving input order
// within each rank.
func (r *ranked) rows() [][]int {
	maxRank := 0
	for _, rk := range r.rank {
		if rk > maxRank {
			maxRank = rk
		}
	}

	rows := make([][]int, maxRank+1)
	for i := range r.nodes {
		rows[r.rank[i]] = append(rows[r.rank[i]], i)
	}
	return rows
}
