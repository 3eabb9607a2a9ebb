// Package topo derives the service topology graph from a project snapshot.
//
// The package implements a pull-based, recompute-from-source model: every
// relevant input change produces a fresh [Snapshot], and the node/edge/group
// model is rebuilt from scratch by [Build]. Nothing in this package mutates
// a previously returned graph; interactive annotations (focus dimming, view
// mode filtering) are expressed as pure transforms that return new slices.
//
// # Pipeline
//
//	Snapshot ──Tables──▶ Build ──ApplyViewMode──▶ ApplyFocus ──▶ layout
//
// [Snapshot.Tables] normalizes the four source collections into lookup
// tables, [Build] turns the tables into nodes, edges, and groups, and the
// focus/view transforms annotate the result just before layout. Identical
// inputs always yield structurally identical output: iteration follows
// input order everywhere, and no map iteration leaks into emitted slices.
package topo
