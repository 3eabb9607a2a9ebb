package connect

import "github.com/launchmap/launchmap/pkg/topo"

// connectionTypeFor maps a dependency strength to the connection type a
// suggestion carries. Alternative rules mark substitutes, not links, and
// produce nothing.
func connectionTypeFor(dep topo.DependencyType) (string, bool) {
	switch dep {
	case topo.DependencyRequired:
		return "uses", true
	case topo.DependencyRecommended, topo.DependencyOptional:
		return "integrates", true
	default:
		return "", false
	}
}

// Suggestion is one proposed connection derived from a catalog dependency
// rule both of whose endpoints the project has adopted.
type Suggestion struct {
	SourceServiceID string              `json:"source_service_id"`
	TargetServiceID string              `json:"target_service_id"`
	ConnectionType  string              `json:"connection_type"`
	DependencyType  topo.DependencyType `json:"dependency_type"`
	Reason          string              `json:"reason,omitempty"`
}

// Suggest derives connection suggestions from catalog dependency rules.
//
// A rule yields a suggestion when both its endpoints are services the
// project has adopted, it is not an alternative rule, and no user
// connection already links the pair in either direction. Duplicate rules
// for the same ordered pair collapse to the first. Output order follows
// rule input order, so identical inputs always produce identical output.
func Suggest(snapshot topo.Snapshot) []Suggestion {
	adopted := make(map[string]bool, len(snapshot.Services))
	for _, inst := range snapshot.Services {
		adopted[inst.ServiceID] = true
	}

	linked := make(map[[2]string]bool, len(snapshot.Connections))
	for _, c := range snapshot.Connections {
		linked[[2]string{c.SourceServiceID, c.TargetServiceID}] = true
		linked[[2]string{c.TargetServiceID, c.SourceServiceID}] = true
	}

	var out []Suggestion
	seen := make(map[[2]string]bool)
	for _, rule := range snapshot.Dependencies {
		connType, ok := connectionTypeFor(rule.Type)
		if !ok {
			continue
		}
		if !adopted[rule.ServiceID] || !adopted[rule.DependsOnServiceID] {
			continue
		}
		pair := [2]string{rule.ServiceID, rule.DependsOnServiceID}
		if linked[pair] || seen[pair] {
			continue
		}
		seen[pair] = true

		out = append(out, Suggestion{
			SourceServiceID: rule.ServiceID,
			TargetServiceID: rule.DependsOnServiceID,
			ConnectionType:  connType,
			DependencyType:  rule.Type,
			Reason:          rule.Description,
		})
	}
	return out
}
