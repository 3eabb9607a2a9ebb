// Package pkg provides the core libraries for launchmap topology
// visualization.
//
// # Overview
//
// Launchmap derives an interactive service topology map from three source
// collections: a project's adopted services, catalog-level dependency
// rules, and user-drawn connections. Everything visual is recomputed from
// those sources; nothing derived is ever patched in place.
//
// The typical data flow:
//
//	Store (memory / MongoDB)
//	         ↓
//	    [topo] package (snapshot → lookup tables → graph)
//	         ↓
//	    [topo] view filters (view mode, focus, search, collapse)
//	         ↓
//	    [layout] package (hierarchical ranking → coordinates)
//	         ↓
//	    JSON/DOT/SVG output, HTTP API, TUI
//
// # Main Packages
//
// [topo] - Snapshot normalization and graph derivation: grouping
// taxonomies, view modes, focus dimming, and the pure Build function.
//
// [layout] - Deterministic hierarchical layout: cycle breaking, longest
// path ranking, crossing reduction, coordinate assignment.
//
// [connect] - The user-connection mutation protocol and the auto-connect
// suggestion engine.
//
// [store] - Persistence contract with in-memory and MongoDB backends.
//
// [engine] - Ties the pipeline together: owns the latest snapshot and UI
// state, recomputes the positioned view, dispatches mutations.
//
// [export] - JSON, Graphviz DOT, and SVG serialization.
//
// [cache] - Byte caches (null, file, Redis) keyed by content hash, used
// for positioned layouts.
//
// [errors] - Coded structured errors shared by CLI, TUI, and API.
//
// [observability] - Hook registry for metrics and tracing backends.
//
// [buildinfo] - Build-time version information.
package pkg
