// Package memory provides an in-memory Store implementation. It backs
// tests, the demo dataset, and single-binary deployments with no database.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/launchmap/launchmap/pkg/errors"
	"github.com/launchmap/launchmap/pkg/topo"
)

// Store holds all collections in process memory. Safe for concurrent use.
type Store struct {
	mu sync.RWMutex

	services    []topo.ProjectServiceInstance
	rules       []topo.DependencyRule
	connections []topo.UserConnection
	health      map[string]topo.HealthRecord
	envVars     []topo.EnvVar
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{health: make(map[string]topo.HealthRecord)}
}

// Seed replaces the store contents with the given snapshot for the given
// project. Existing data for other projects is preserved.
func (s *Store) Seed(projectID string, snap topo.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.services = dropProject(s.services, projectID, func(v topo.ProjectServiceInstance) string { return v.ProjectID })
	s.connections = dropProject(s.connections, projectID, func(v topo.UserConnection) string { return v.ProjectID })
	s.envVars = dropProject(s.envVars, projectID, func(v topo.EnvVar) string { return v.ProjectID })

	for _, inst := range snap.Services {
		inst.ProjectID = projectID
		if inst.ID == "" {
			inst.ID = uuid.NewString()
		}
		s.services = append(s.services, inst)
	}
	s.rules = append([]topo.DependencyRule(nil), snap.Dependencies...)
	for _, conn := range snap.Connections {
		conn.ProjectID = projectID
		if conn.ID == "" {
			conn.ID = uuid.NewString()
		}
		s.connections = append(s.connections, conn)
	}
	for id, rec := range snap.Health {
		s.health[id] = rec
	}
	for _, v := range snap.EnvVars {
		v.ProjectID = projectID
		s.envVars = append(s.envVars, v)
	}
}

func dropProject[T any](s []T, projectID string, key func(T) string) []T {
	out := s[:0]
	for _, v := range s {
		if key(v) != projectID {
			out = append(out, v)
		}
	}
	return out
}

// ProjectServices returns the project's instances in insertion order.
func (s *Store) ProjectServices(_ context.Context, projectID string) ([]topo.ProjectServiceInstance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []topo.ProjectServiceInstance
	for _, inst := range s.services {
		if inst.ProjectID == projectID {
			out = append(out, inst)
		}
	}
	return out, nil
}

// DependencyRules returns the catalog rules.
func (s *Store) DependencyRules(_ context.Context) ([]topo.DependencyRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]topo.DependencyRule(nil), s.rules...), nil
}

// Connections returns the project's connections in insertion order.
func (s *Store) Connections(_ context.Context, projectID string) ([]topo.UserConnection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []topo.UserConnection
	for _, c := range s.connections {
		if c.ProjectID == projectID {
			out = append(out, c)
		}
	}
	return out, nil
}

// Health returns the latest health record per instance.
func (s *Store) Health(_ context.Context, projectID string) (map[string]topo.HealthRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]topo.HealthRecord)
	for _, inst := range s.services {
		if inst.ProjectID != projectID {
			continue
		}
		if rec, ok := s.health[inst.ID]; ok {
			out[inst.ID] = rec
		}
	}
	return out, nil
}

// EnvVars returns the project's configured env var names.
func (s *Store) EnvVars(_ context.Context, projectID string) ([]topo.EnvVar, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []topo.EnvVar
	for _, v := range s.envVars {
		if v.ProjectID == projectID {
			out = append(out, v)
		}
	}
	return out, nil
}

// RecordHealth upserts the health record for an instance.
func (s *Store) RecordHealth(instanceID string, rec topo.HealthRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.health[instanceID] = rec
}

// CreateConnection inserts a connection, assigning a UUID. A duplicate
// ordered (project, source, target) tuple fails with CONFLICT; a self-loop
// fails with INVALID_OPERATION.
func (s *Store) CreateConnection(_ context.Context, conn topo.UserConnection) (topo.UserConnection, error) {
	if conn.SourceServiceID == conn.TargetServiceID {
		return topo.UserConnection{}, errors.New(errors.ErrCodeInvalidOperation,
			"connection source and target must differ")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.connections {
		if existing.ProjectID == conn.ProjectID &&
			existing.SourceServiceID == conn.SourceServiceID &&
			existing.TargetServiceID == conn.TargetServiceID {
			return topo.UserConnection{}, errors.New(errors.ErrCodeConflict,
				"connection %s→%s already exists in project %s",
				conn.SourceServiceID, conn.TargetServiceID, conn.ProjectID)
		}
	}

	conn.ID = uuid.NewString()
	s.connections = append(s.connections, conn)
	return conn, nil
}

// DeleteConnection removes a connection by ID.
func (s *Store) DeleteConnection(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, c := range s.connections {
		if c.ID == id {
			s.connections = append(s.connections[:i], s.connections[i+1:]...)
			return nil
		}
	}
	return errors.New(errors.ErrCodeNotFound, "connection %s not found", id)
}

// Close is a no-op for the in-memory store.
func (s *Store) Close(context.Context) error { return nil }
