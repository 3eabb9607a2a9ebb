// Package mongostore provides a MongoDB-backed Store implementation.
//
// Collections: project_services, dependency_rules, user_connections,
// health_checks, env_vars. A unique index on (project_id,
// source_service_id, target_service_id) backs the connection uniqueness
// invariant; duplicate-key errors surface as CONFLICT.
package mongostore

import (
	"context"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/launchmap/launchmap/pkg/errors"
	"github.com/launchmap/launchmap/pkg/topo"
)

const (
	colServices    = "project_services"
	colRules       = "dependency_rules"
	colConnections = "user_connections"
	colHealth      = "health_checks"
	colEnvVars     = "env_vars"
)

// Store reads and writes topology data in a MongoDB database.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// New connects to MongoDB and ensures the indexes the store relies on.
func New(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to mongodb at %s", uri)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "ping mongodb at %s", uri)
	}

	s := &Store{client: client, db: client.Database(database)}
	if err := s.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.db.Collection(colConnections).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "project_id", Value: 1},
			{Key: "source_service_id", Value: 1},
			{Key: "target_service_id", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "ensure connection uniqueness index")
	}
	return nil
}

// ProjectServices returns the project's instances in insertion order.
func (s *Store) ProjectServices(ctx context.Context, projectID string) ([]topo.ProjectServiceInstance, error) {
	var out []topo.ProjectServiceInstance
	err := s.findAll(ctx, colServices, bson.M{"project_id": projectID}, &out)
	return out, err
}

// DependencyRules returns the catalog-wide rules.
func (s *Store) DependencyRules(ctx context.Context) ([]topo.DependencyRule, error) {
	var out []topo.DependencyRule
	err := s.findAll(ctx, colRules, bson.M{}, &out)
	return out, err
}

// Connections returns the project's connections in insertion order.
func (s *Store) Connections(ctx context.Context, projectID string) ([]topo.UserConnection, error) {
	var out []topo.UserConnection
	err := s.findAll(ctx, colConnections, bson.M{"project_id": projectID}, &out)
	return out, err
}

// Health returns the latest health record per instance.
func (s *Store) Health(ctx context.Context, projectID string) (map[string]topo.HealthRecord, error) {
	type healthDoc struct {
		InstanceID string `bson:"instance_id"`
		topo.HealthRecord `bson:",inline"`
	}

	var docs []healthDoc
	if err := s.findAll(ctx, colHealth, bson.M{"project_id": projectID}, &docs); err != nil {
		return nil, err
	}

	out := make(map[string]topo.HealthRecord, len(docs))
	for _, d := range docs {
		out[d.InstanceID] = d.HealthRecord
	}
	return out, nil
}

// EnvVars returns the project's configured env var names.
func (s *Store) EnvVars(ctx context.Context, projectID string) ([]topo.EnvVar, error) {
	var out []topo.EnvVar
	err := s.findAll(ctx, colEnvVars, bson.M{"project_id": projectID}, &out)
	return out, err
}

// findAll runs a find sorted by natural insertion order and decodes into
// dest, which must be a pointer to a slice.
func (s *Store) findAll(ctx context.Context, collection string, filter bson.M, dest any) error {
	cursor, err := s.db.Collection(collection).Find(ctx, filter)
	if err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "query %s", collection)
	}
	if err := cursor.All(ctx, dest); err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "decode %s", collection)
	}
	return nil
}

// CreateConnection inserts a connection. The unique index turns a
// duplicate ordered tuple into a CONFLICT error.
func (s *Store) CreateConnection(ctx context.Context, conn topo.UserConnection) (topo.UserConnection, error) {
	if conn.SourceServiceID == conn.TargetServiceID {
		return topo.UserConnection{}, errors.New(errors.ErrCodeInvalidOperation,
			"connection source and target must differ")
	}
	if conn.ID == "" {
		conn.ID = uuid.NewString()
	}

	_, err := s.db.Collection(colConnections).InsertOne(ctx, conn)
	if mongo.IsDuplicateKeyError(err) {
		return topo.UserConnection{}, errors.New(errors.ErrCodeConflict,
			"connection %s→%s already exists in project %s",
			conn.SourceServiceID, conn.TargetServiceID, conn.ProjectID)
	}
	if err != nil {
		return topo.UserConnection{}, errors.Wrap(errors.ErrCodeNetwork, err, "insert connection")
	}
	return conn, nil
}

// DeleteConnection removes a connection by ID.
func (s *Store) DeleteConnection(ctx context.Context, id string) error {
	res, err := s.db.Collection(colConnections).DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "delete connection %s", id)
	}
	if res.DeletedCount == 0 {
		return errors.New(errors.ErrCodeNotFound, "connection %s not found", id)
	}
	return nil
}

// Close disconnects the underlying client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
