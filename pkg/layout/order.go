package layout

import "sort"

// maxOrderingSweeps bounds the median/refinement iterations. Project-scale
// graphs settle well before this.
const maxOrderingSweeps = 4

// orderRows reduces edge crossings between consecutive ranks. It runs
// alternating downward and upward median sweeps followed by an
// adjacent-swap refinement, all with input-order tie-breaking, and mutates
// rows in place.
func (r *ranked) orderRows(rows [][]int) {
	for sweep := 0; sweep < maxOrderingSweeps; sweep++ {
		improved := false

		// Downward: order each row by the median position of its parents.
		for i := 1; i < len(rows); i++ {
			if r.medianSort(rows[i], rows[i-1], r.in) {
				improved = true
			}
		}
		// Upward: order each row by the median position of its children.
		for i := len(rows) - 2; i >= 0; i-- {
			if r.medianSort(rows[i], rows[i+1], r.out) {
				improved = true
			}
		}

		if !improved {
			break
		}
	}

	for sweep := 0; sweep < maxOrderingSweeps; sweep++ {
		if !r.swapPass(rows) {
			break
		}
	}
}

// medianSort stably reorders row by each node's median neighbor position
// in the adjacent row. Nodes without neighbors keep their current slot.
// Reports whether the order changed.
func (r *ranked) medianSort(row, adjacent []int, neighbors [][]int) bool {
	adjPos := make(map[int]int, len(adjacent))
	for pos, idx := range adjacent {
		adjPos[idx] = pos
	}

	keys := make(map[int]float64, len(row))
	for pos, idx := range row {
		positions := make([]int, 0, len(neighbors[idx]))
		for _, nb := range neighbors[idx] {
			if p, ok := adjPos[nb]; ok {
				positions = append(positions, p)
			}
		}
		if len(positions) == 0 {
			keys[idx] = float64(pos)
			continue
		}
		sort.Ints(positions)
		mid := len(positions) / 2
		if len(positions)%2 == 1 {
			keys[idx] = float64(positions[mid])
		} else {
			keys[idx] = float64(positions[mid-1]+positions[mid]) / 2
		}
	}

	before := make([]int, len(row))
	copy(before, row)

	sort.SliceStable(row, func(a, b int) bool {
		return keys[row[a]] < keys[row[b]]
	})

	for i := range row {
		if row[i] != before[i] {
			return true
		}
	}
	return false
}

// swapPass tries swapping each adjacent pair in each row, keeping a swap
// when it strictly reduces crossings against both neighbor rows. Reports
// whether any swap was made.
func (r *ranked) swapPass(rows [][]int) bool {
	swapped := false
	for i, row := range rows {
		for j := 0; j+1 < len(row); j++ {
			before, after := 0, 0
			if i > 0 {
				before += r.pairCrossings(row[j], row[j+1], rows[i-1], r.in)
				after += r.pairCrossings(row[j+1], row[j], rows[i-1], r.in)
			}
			if i+1 < len(rows) {
				before += r.pairCrossings(row[j], row[j+1], rows[i+1], r.out)
				after += r.pairCrossings(row[j+1], row[j], rows[i+1], r.out)
			}
			if after < before {
				row[j], row[j+1] = row[j+1], row[j]
				swapped = true
			}
		}
	}
	return swapped
}

// pairCrossings counts the crossings contributed by the ordered pair
// (left, right) against the adjacent row: left's neighbor sitting to the
// right of right's neighbor means the two edges cross.
func (r *ranked) pairCrossings(left, right int, adjacent []int, neighbors [][]int) int {
	adjPos := make(map[int]int, len(adjacent))
	for pos, idx := range adjacent {
		adjPos[idx] = pos
	}

	crossings := 0
	for _, ln := range neighbors[left] {
		lp, ok := adjPos[ln]
		if !ok {
			continue
		}
		for _, rn := range neighbors[right] {
			if rp, ok := adjPos[rn]; ok && lp > rp {
				crossings++
			}
		}
	}
	return crossings
}

// countLayerCrossings counts edge crossings between two consecutive rows
// using a Fenwick tree for O(E log V) inversion counting. Two edges
// (u1,v1), (u2,v2) cross iff pos(u1) < pos(u2) and pos(v1) > pos(v2).
func (r *ranked) countLayerCrossings(upper, lower []int) int {
	if len(upper) == 0 || len(lower) == 0 {
		return 0
	}

	lowerPos := make(map[int]int, len(lower))
	for pos, idx := range lower {
		lowerPos[idx] = pos
	}

	type edge struct{ upper, lower int }
	var edges []edge
	for i, idx := range upper {
		for _, child := range r.out[idx] {
			if pos, ok := lowerPos[child]; ok {
				edges = append(edges, edge{i, pos})
			}
		}
	}
	if len(edges) < 2 {
		return 0
	}

	sort.Slice(edges, func(a, b int) bool {
		if edges[a].upper != edges[b].upper {
			return edges[a].upper < edges[b].upper
		}
		return edges[a].lower < edges[b].lower
	})

	// Count inversions in the target-position sequence.
	fenwick := make([]int, len(lower)+1)
	crossings, total := 0, 0
	for _, e := range edges {
		lessOrEqual := 0
		for q := e.lower + 1; q > 0; q -= q & (-q) {
			lessOrEqual += fenwick[q]
		}
		crossings += total - lessOrEqual

		total++
		for idx := e.lower + 1; idx < len(fenwick); idx += idx & (-idx) {
			fenwick[idx]++
		}
	}
	return crossings
}

// totalCrossings sums crossings across all consecutive row pairs.
func (r *ranked) totalCrossings(rows [][]int) int {
	crossings := 0
	for i := 0; i+1 < len(rows); i++ {
		crossings += r.countLayerCrossings(rows[i], rows[i+1])
	}
	return crossings
}
