// Package layout assigns 2-D coordinates to a topology graph using a
// deterministic hierarchical-ranking algorithm.
//
// The algorithm works in four phases:
//
//  1. Cycle breaking: depth-first search marks back edges, which are
//     excluded from ranking but still rendered between the final positions.
//  2. Ranking: longest-path layering via topological sort (Kahn's
//     algorithm); each node sits one rank below its deepest ranked parent.
//  3. Ordering: median sweeps plus adjacent-swap refinement reduce edge
//     crossings between consecutive ranks, counted with a Fenwick tree.
//  4. Coordinates: rank index maps to the primary axis, within-rank order
//     to the cross axis, parameterized by rank and node separation.
//     Per-node height overrides widen a node's cross-axis slot (LR) or its
//     rank's extent (TB) so expanded nodes never overlap neighbors.
//
// Group nodes never participate in ranking; they are positioned afterwards
// as bounding backgrounds around their members.
//
// Every phase breaks ties by input order, so repeated calls with identical
// inputs produce bit-identical coordinates.
package layout
