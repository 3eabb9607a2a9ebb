package export

import (
	"encoding/json"

	"github.com/launchmap/launchmap/pkg/topo"
)

// Document is the JSON interchange shape for a derived topology: the graph
// plus the view parameters it was derived under, so a consumer can tell
// two exports of the same project apart.
type Document struct {
	ProjectID string             `json:"project_id"`
	Grouping  string             `json:"grouping"`
	ViewMode  topo.ViewMode      `json:"view_mode"`
	FocusedID string             `json:"focused_id,omitempty"`
	Health    topo.HealthSummary `json:"health"`
	Graph     topo.Graph         `json:"graph"`
}

// ToJSON serializes the document with indentation for human inspection.
func ToJSON(doc Document) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}

// FromJSON parses a previously exported document.
func FromJSON(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, err
	}
	return doc, nil
}
