package topo

// StatusFilterAll matches every instance status.
const StatusFilterAll Status = ""

// Snapshot is an immutable copy of the four source collections (plus the
// project's configured env vars) for one recompute cycle. Callers hand a
// fresh Snapshot to the engine whenever any collection changes; the engine
// never patches a previously derived graph.
type Snapshot struct {
	Services     []ProjectServiceInstance
	Dependencies []DependencyRule
	Connections  []UserConnection
	Health       map[string]HealthRecord // keyed by instance ID
	EnvVars      []EnvVar
}

// Tables are the primitive lookup tables derived from a Snapshot.
//
// Dependency rules and user connections address services by catalog service
// ID, while graph nodes are keyed by instance ID. InstanceIDByServiceID
// bridges the two; anything that fails to resolve through it is silently
// excluded from the edge set, never an error.
type Tables struct {
	// ServiceNameByID maps catalog service ID to display name.
	ServiceNameByID map[string]string

	// Visible lists the instances that pass the status filter, in input order.
	Visible []ProjectServiceInstance

	// VisibleInstanceIDs indexes Visible by instance ID.
	VisibleInstanceIDs map[string]bool

	// RelevantDependencies is the subset of rules whose endpoints are both
	// among the visible services, in input order.
	RelevantDependencies []DependencyRule

	// InstanceIDByServiceID maps a visible catalog service ID to its
	// instance ID within the project.
	InstanceIDByServiceID map[string]string
}

// Tables normalizes the snapshot into lookup tables, applying the status
// filter. StatusFilterAll keeps every instance; any other value keeps only
// instances with exactly that status.
//
// Dependencies referencing a service that is absent from the visible set
// are dropped, not erred: catalog rules routinely mention services a
// project has not adopted.
func (s Snapshot) Tables(filter Status) Tables {
	t := Tables{
		ServiceNameByID:       make(map[string]string, len(s.Services)),
		VisibleInstanceIDs:    make(map[string]bool, len(s.Services)),
		InstanceIDByServiceID: make(map[string]string, len(s.Services)),
	}

	for _, inst := range s.Services {
		t.ServiceNameByID[inst.ServiceID] = inst.Service.Name
		if filter != StatusFilterAll && inst.Status != filter {
			continue
		}
		t.Visible = append(t.Visible, inst)
		t.VisibleInstanceIDs[inst.ID] = true
		t.InstanceIDByServiceID[inst.ServiceID] = inst.ID
	}

	for _, dep := range s.Dependencies {
		_, srcOK := t.InstanceIDByServiceID[dep.ServiceID]
		_, dstOK := t.InstanceIDByServiceID[dep.DependsOnServiceID]
		if srcOK && dstOK {
			t.RelevantDependencies = append(t.RelevantDependencies, dep)
		}
	}

	return t
}

// connectionCounts tallies how many user connections touch each catalog
// service, in either direction.
func (s Snapshot) connectionCounts() map[string]int {
	counts := make(map[string]int)
	for _, c := range s.Connections {
		counts[c.SourceServiceID]++
		counts[c.TargetServiceID]++
	}
	return counts
}

// envCoverage returns how many of the instance's required env vars are
// configured on the project.
func (s Snapshot) envCoverage(inst ProjectServiceInstance) (configured, required int) {
	required = len(inst.Service.RequiredEnvVars)
	if required == 0 {
		return 0, 0
	}

	present := make(map[string]bool)
	for _, v := range s.EnvVars {
		if v.ServiceID == inst.ServiceID {
			present[v.Name] = true
		}
	}
	for _, spec := range inst.Service.RequiredEnvVars {
		if present[spec.Name] {
			configured++
		}
	}
	return configured, required
}

// HealthSummary is a roll-up of the latest health records across the
// visible instances of a snapshot.
type HealthSummary struct {
	Healthy   int `json:"healthy"`
	Degraded  int `json:"degraded"`
	Unhealthy int `json:"unhealthy"`
	Unknown   int `json:"unknown"`
}

// Summarize tallies health statuses for the given instances. Instances
// without a health record count as unknown.
func (s Snapshot) Summarize(instances []ProjectServiceInstance) HealthSummary {
	var sum HealthSummary
	for _, inst := range instances {
		switch s.Health[inst.ID].Status {
		case HealthHealthy:
			sum.Healthy++
		case HealthDegraded:
			sum.Degraded++
		case HealthUnhealthy:
			sum.Unhealthy++
		default:
			sum.Unknown++
		}
	}
	return sum
}
