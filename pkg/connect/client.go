// Package connect implements the user-connection mutation protocol and the
// auto-connect suggestion engine.
//
// Mutations are messages to an external store: the local view is only ever
// a projection of the last confirmed snapshot, so a successful create or
// delete is followed by a snapshot refresh, never by patching a derived
// edge array. Failures are explicit coded errors (see
// [github.com/launchmap/launchmap/pkg/errors]), visible at every call site.
package connect

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/launchmap/launchmap/pkg/errors"
	"github.com/launchmap/launchmap/pkg/topo"
)

// Writer is the remote write API for user connections. Implementations
// enforce the ordered-tuple uniqueness invariant and report violations as
// ErrCodeConflict; deleting an unknown ID reports ErrCodeNotFound.
type Writer interface {
	// CreateConnection persists a new connection and returns it with its
	// store-assigned ID.
	CreateConnection(ctx context.Context, conn topo.UserConnection) (topo.UserConnection, error)

	// DeleteConnection removes a connection by ID.
	DeleteConnection(ctx context.Context, id string) error
}

// Client validates and dispatches connection mutations.
type Client struct {
	store  Writer
	logger *log.Logger
}

// NewClient creates a mutation client. A nil logger discards output.
func NewClient(store Writer, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Client{store: store, logger: logger}
}

// CreateConnection validates and dispatches a connection create.
//
// Self-loops fail with ErrCodeInvalidOperation before any store call.
// A duplicate ordered (project, source, target) tuple surfaces the store's
// ErrCodeConflict unchanged — no retry, no silent merge. The caller is
// responsible for refreshing its snapshot on success.
func (c *Client) CreateConnection(ctx context.Context, projectID, sourceServiceID, targetServiceID, connectionType string) (topo.UserConnection, error) {
	if projectID == "" || sourceServiceID == "" || targetServiceID == "" {
		return topo.UserConnection{}, errors.New(errors.ErrCodeInvalidInput,
			"project, source, and target IDs are required")
	}
	if sourceServiceID == targetServiceID {
		return topo.UserConnection{}, errors.New(errors.ErrCodeInvalidOperation,
			"cannot connect service %s to itself", sourceServiceID)
	}
	if connectionType == "" {
		connectionType = "uses"
	}

	created, err := c.store.CreateConnection(ctx, topo.UserConnection{
		ProjectID:       projectID,
		SourceServiceID: sourceServiceID,
		TargetServiceID: targetServiceID,
		Type:            connectionType,
	})
	if err != nil {
		if errors.GetCode(err) == "" {
			err = errors.Wrap(errors.ErrCodeNetwork, err, "create connection %s→%s", sourceServiceID, targetServiceID)
		}
		return topo.UserConnection{}, err
	}

	c.logger.Debug("connection created", "id", created.ID, "source", sourceServiceID, "target", targetServiceID)
	return created, nil
}

// DeleteConnection dispatches a connection delete.
//
// A NOT_FOUND from the store is treated as a benign no-op: the connection
// is already gone from the caller's perspective, so the error is logged
// and swallowed. Any other failure leaves the source collection untouched
// and is surfaced for manual retry.
func (c *Client) DeleteConnection(ctx context.Context, id string) error {
	if id == "" {
		return errors.New(errors.ErrCodeInvalidInput, "connection ID is required")
	}

	err := c.store.DeleteConnection(ctx, id)
	switch {
	case err == nil:
		c.logger.Debug("connection deleted", "id", id)
		return nil
	case errors.Is(err, errors.ErrCodeNotFound):
		c.logger.Debug("connection already deleted", "id", id)
		return nil
	case errors.GetCode(err) == "":
		return errors.Wrap(errors.ErrCodeNetwork, err, "delete connection %s", id)
	default:
		return err
	}
}

// ApplyResult reports the outcome of applying a batch of suggestions.
type ApplyResult struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

// ApplySuggestions creates every suggested connection. Conflicts (a
// connection created concurrently) are skipped, not errors; the first
// failure of any other kind aborts and is returned alongside the partial
// result.
func (c *Client) ApplySuggestions(ctx context.Context, projectID string, suggestions []Suggestion) (ApplyResult, error) {
	var res ApplyResult
	for _, s := range suggestions {
		_, err := c.CreateConnection(ctx, projectID, s.SourceServiceID, s.TargetServiceID, s.ConnectionType)
		switch {
		case err == nil:
			res.Created++
		case errors.Is(err, errors.ErrCodeConflict):
			res.Skipped++
		default:
			return res, err
		}
	}
	return res, nil
}
