// Package azdevops provides minimal Azure DevOps work item tracking models.
package azdevops

// WorkItem is the subset of work item fields the compliance checks need.
type WorkItem struct {
	// ID is the numeric work item id; zero means the item is absent.
	ID int `json:"id"`
	// Rev is the revision number after an update.
	Rev int `json:"rev"`
	// Fields holds the raw field map, e.g. "System.Title".
	Fields map[string]any `json:"fields,omitempty"`
	// Relations lists the item's relations when expansion was requested.
	Relations []Relation `json:"relations,omitempty"`
}

// Relation is one work item relation edge, artifact links included.
type Relation struct {
	// Rel is the relation kind, e.g. "ArtifactLink".
	Rel string `json:"rel"`
	// URL is the relation target, an opaque artifact URI for artifact links.
	URL string `json:"url"`
	// Attributes carries the display name and comment of the relation.
	Attributes map[string]any `json:"attributes,omitempty"`
}
