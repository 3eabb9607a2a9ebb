package topo

// Status is the configuration state of a service within a project.
type Status string

// Project service statuses.
const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusConnected  Status = "connected"
	StatusError      Status = "error"
)

// HealthStatus is the latest health-check verdict for a service instance.
type HealthStatus string

// Health check statuses.
const (
	HealthHealthy   HealthStatus = "healthy"
	HealthDegraded  HealthStatus = "degraded"
	HealthUnhealthy HealthStatus = "unhealthy"
	HealthUnknown   HealthStatus = "unknown"
)

// DependencyType classifies how strongly one catalog service needs another.
type DependencyType string

// Dependency types. Alternative marks substitutes, not actual links, and is
// ignored by the suggestion engine.
const (
	DependencyRequired    DependencyType = "required"
	DependencyRecommended DependencyType = "recommended"
	DependencyOptional    DependencyType = "optional"
	DependencyAlternative DependencyType = "alternative"
)

// Category is a catalog service category (database, auth, deploy, ...).
type Category string

// Domain is a coarser catalog taxonomy (backend, infrastructure, ...).
type Domain string

// EnvVarSpec describes one environment variable a catalog service requires.
type EnvVarSpec struct {
	Name        string `json:"name" bson:"name"`
	Public      bool   `json:"public" bson:"public"`
	Description string `json:"description,omitempty" bson:"description,omitempty"`
}

// CatalogService is read-only reference data describing an external service
// (a database provider, an auth provider, a deploy target, ...).
type CatalogService struct {
	ID              string            `json:"id" bson:"id"`
	Slug            string            `json:"slug" bson:"slug"`
	Name            string            `json:"name" bson:"name"`
	Category        Category          `json:"category" bson:"category"`
	Domain          Domain            `json:"domain,omitempty" bson:"domain,omitempty"`
	RequiredEnvVars []EnvVarSpec      `json:"required_env_vars,omitempty" bson:"required_env_vars,omitempty"`
	CostEstimate    map[string]string `json:"cost_estimate,omitempty" bson:"cost_estimate,omitempty"`
}

// ProjectServiceInstance is one catalog service adopted by one project.
// There is at most one instance per (project, service) pair. The joined
// catalog record is always populated by the read API.
type ProjectServiceInstance struct {
	ID        string         `json:"id" bson:"id"`
	ProjectID string         `json:"project_id" bson:"project_id"`
	ServiceID string         `json:"service_id" bson:"service_id"`
	Status    Status         `json:"status" bson:"status"`
	Service   CatalogService `json:"service" bson:"service"`
}

// DependencyRule is a catalog-level declaration that one service type
// typically needs another. Rules are global, not per-project.
type DependencyRule struct {
	ServiceID          string         `json:"service_id" bson:"service_id"`
	DependsOnServiceID string         `json:"depends_on_service_id" bson:"depends_on_service_id"`
	Type               DependencyType `json:"dependency_type" bson:"dependency_type"`
	Description        string         `json:"description,omitempty" bson:"description,omitempty"`
}

// UserConnection is a user-authored directed edge between two services of
// one project. The store enforces source != target and at most one
// connection per ordered (project, source, target) tuple.
type UserConnection struct {
	ID              string `json:"id" bson:"id"`
	ProjectID       string `json:"project_id" bson:"project_id"`
	SourceServiceID string `json:"source_service_id" bson:"source_service_id"`
	TargetServiceID string `json:"target_service_id" bson:"target_service_id"`
	Type            string `json:"connection_type" bson:"connection_type"`
	Status          string `json:"status,omitempty" bson:"status,omitempty"`
}

// EnvVar is one environment variable configured on a project, attributed to
// the service it belongs to. Values never leave the store; the engine only
// needs names to compute coverage.
type EnvVar struct {
	ProjectID string `json:"project_id" bson:"project_id"`
	ServiceID string `json:"service_id" bson:"service_id"`
	Name      string `json:"name" bson:"name"`
}

// HealthRecord is the latest health snapshot for a service instance.
type HealthRecord struct {
	Status         HealthStatus `json:"status" bson:"status"`
	ResponseTimeMs int          `json:"response_time_ms,omitempty" bson:"response_time_ms,omitempty"`
}
