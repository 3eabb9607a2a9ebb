// Package store defines the persistence contract for project topology data
// and a helper for loading whole snapshots.
//
// Two backends implement it: an in-memory store for tests and single-binary
// use (package memory) and a MongoDB-backed store (package mongostore).
package store

import (
	"context"

	"github.com/launchmap/launchmap/pkg/topo"
)

// Store is the persistence boundary for one deployment. Reads are scoped
// to a project; dependency rules are catalog-global.
//
// Writers enforce two invariants: a connection's source and target differ,
// and at most one connection exists per ordered (project, source, target)
// tuple. Violating the second returns ErrCodeConflict; deleting an unknown
// connection returns ErrCodeNotFound.
type Store interface {
	// ProjectServices returns the project's adopted service instances with
	// their catalog records joined, in insertion order.
	ProjectServices(ctx context.Context, projectID string) ([]topo.ProjectServiceInstance, error)

	// DependencyRules returns the catalog-wide dependency rules.
	DependencyRules(ctx context.Context) ([]topo.DependencyRule, error)

	// Connections returns the project's user connections in insertion order.
	Connections(ctx context.Context, projectID string) ([]topo.UserConnection, error)

	// Health returns the latest health record per instance ID.
	Health(ctx context.Context, projectID string) (map[string]topo.HealthRecord, error)

	// EnvVars returns the names of env vars configured on the project.
	EnvVars(ctx context.Context, projectID string) ([]topo.EnvVar, error)

	// CreateConnection persists a connection and returns it with its
	// assigned ID.
	CreateConnection(ctx context.Context, conn topo.UserConnection) (topo.UserConnection, error)

	// DeleteConnection removes a connection by ID.
	DeleteConnection(ctx context.Context, id string) error

	// Close releases backend resources.
	Close(ctx context.Context) error
}

// LoadSnapshot reads all collections for one project into an immutable
// snapshot. Each call returns fresh slices, so concurrent recomputes never
// share backing arrays with the store.
func LoadSnapshot(ctx context.Context, s Store, projectID string) (topo.Snapshot, error) {
	services, err := s.ProjectServices(ctx, projectID)
	if err != nil {
		return topo.Snapshot{}, err
	}
	deps, err := s.DependencyRules(ctx)
	if err != nil {
		return topo.Snapshot{}, err
	}
	conns, err := s.Connections(ctx, projectID)
	if err != nil {
		return topo.Snapshot{}, err
	}
	health, err := s.Health(ctx, projectID)
	if err != nil {
		return topo.Snapshot{}, err
	}
	envs, err := s.EnvVars(ctx, projectID)
	if err != nil {
		return topo.Snapshot{}, err
	}

	return topo.Snapshot{
		Services:     services,
		Dependencies: deps,
		Connections:  conns,
		Health:       health,
		EnvVars:      envs,
	}, nil
}
