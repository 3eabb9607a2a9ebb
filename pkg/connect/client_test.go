package connect

import (
	"context"
	"fmt"
	"testing"

	"github.com/launchmap/launchmap/pkg/errors"
	"github.com/launchmap/launchmap/pkg/topo"
)

// fakeStore implements Writer with the same invariants the real stores
// enforce: ordered-tuple uniqueness and NOT_FOUND on unknown deletes.
type fakeStore struct {
	conns   map[string]topo.UserConnection
	nextID  int
	failErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{conns: make(map[string]topo.UserConnection)}
}

func (f *fakeStore) CreateConnection(_ context.Context, conn topo.UserConnection) (topo.UserConnection, error) {
	if f.failErr != nil {
		return topo.UserConnection{}, f.failErr
	}
	for _, existing := range f.conns {
		if existing.ProjectID == conn.ProjectID &&
			existing.SourceServiceID == conn.SourceServiceID &&
			existing.TargetServiceID == conn.TargetServiceID {
			return topo.UserConnection{}, errors.New(errors.ErrCodeConflict,
				"connection %s→%s already exists", conn.SourceServiceID, conn.TargetServiceID)
		}
	}
	f.nextID++
	conn.ID = fmt.Sprintf("conn-%d", f.nextID)
	f.conns[conn.ID] = conn
	return conn, nil
}

func (f *fakeStore) DeleteConnection(_ context.Context, id string) error {
	if f.failErr != nil {
		return f.failErr
	}
	if _, ok := f.conns[id]; !ok {
		return errors.New(errors.ErrCodeNotFound, "connection %s not found", id)
	}
	delete(f.conns, id)
	return nil
}

func TestCreateConnectionRejectsSelfLoop(t *testing.T) {
	store := newFakeStore()
	client := NewClient(store, nil)

	_, err := client.CreateConnection(context.Background(), "proj-1", "api", "api", "uses")
	if !errors.Is(err, errors.ErrCodeInvalidOperation) {
		t.Fatalf("expected INVALID_OPERATION, got %v", err)
	}
	if len(store.conns) != 0 {
		t.Error("self-loop must be rejected before reaching the store")
	}
}

func TestCreateConnectionValidatesIDs(t *testing.T) {
	client := NewClient(newFakeStore(), nil)

	for _, tc := range []struct{ project, source, target string }{
		{"", "a", "b"},
		{"p", "", "b"},
		{"p", "a", ""},
	} {
		_, err := client.CreateConnection(context.Background(), tc.project, tc.source, tc.target, "uses")
		if !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("(%q,%q,%q): expected INVALID_INPUT, got %v", tc.project, tc.source, tc.target, err)
		}
	}
}

func TestCreateConnectionDefaultsType(t *testing.T) {
	store := newFakeStore()
	client := NewClient(store, nil)

	created, err := client.CreateConnection(context.Background(), "proj-1", "api", "db", "")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.Type != "uses" {
		t.Errorf("expected default type uses, got %q", created.Type)
	}
}

func TestCreateConnectionSurfacesConflict(t *testing.T) {
	store := newFakeStore()
	client := NewClient(store, nil)

	if _, err := client.CreateConnection(context.Background(), "proj-1", "api", "db", "uses"); err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	_, err := client.CreateConnection(context.Background(), "proj-1", "api", "db", "uses")
	if !errors.Is(err, errors.ErrCodeConflict) {
		t.Fatalf("expected CONFLICT on duplicate tuple, got %v", err)
	}
	if len(store.conns) != 1 {
		t.Errorf("duplicate create must not add a connection, have %d", len(store.conns))
	}
}

func TestCreateConnectionAllowsReverseDirection(t *testing.T) {
	client := NewClient(newFakeStore(), nil)

	if _, err := client.CreateConnection(context.Background(), "proj-1", "api", "db", "uses"); err != nil {
		t.Fatalf("forward create failed: %v", err)
	}
	if _, err := client.CreateConnection(context.Background(), "proj-1", "db", "api", "uses"); err != nil {
		t.Fatalf("reverse create should be a distinct tuple, got %v", err)
	}
}

func TestDeleteConnectionMissingIsNoOp(t *testing.T) {
	client := NewClient(newFakeStore(), nil)

	if err := client.DeleteConnection(context.Background(), "conn-404"); err != nil {
		t.Fatalf("deleting a missing connection should succeed, got %v", err)
	}
}

func TestDeleteConnectionRemoves(t *testing.T) {
	store := newFakeStore()
	client := NewClient(store, nil)

	created, err := client.CreateConnection(context.Background(), "proj-1", "api", "db", "uses")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := client.DeleteConnection(context.Background(), created.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if len(store.conns) != 0 {
		t.Error("connection not removed from store")
	}
}

func TestMutationsWrapUncodedErrors(t *testing.T) {
	store := newFakeStore()
	store.failErr = fmt.Errorf("connection refused")
	client := NewClient(store, nil)

	_, err := client.CreateConnection(context.Background(), "proj-1", "api", "db", "uses")
	if !errors.Is(err, errors.ErrCodeNetwork) {
		t.Errorf("expected NETWORK_ERROR wrap on create, got %v", err)
	}

	if err := client.DeleteConnection(context.Background(), "conn-1"); !errors.Is(err, errors.ErrCodeNetwork) {
		t.Errorf("expected NETWORK_ERROR wrap on delete, got %v", err)
	}
}
