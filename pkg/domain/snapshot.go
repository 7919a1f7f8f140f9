package domain

import "time"

// InstanceSnapshot is the serializable form of one live execution: enough to
// recreate it exactly via a run-from-index restore. Node-internal progress is
// deliberately not captured; a restored node restarts from its beginning.
type InstanceSnapshot struct {
	GraphKind     GraphKind       `json:"graph_kind"`
	GraphID       string          `json:"graph_id"`
	Ordinal       int             `json:"ordinal"`
	NodeIndex     int             `json:"node_index"`
	RemainingWait float64         `json:"remaining_wait"`
	Bindings      []ParamSnapshot `json:"bindings,omitempty"`
}

// Snapshot captures every active instance at save time.
type Snapshot struct {
	SavedAt       time.Time          `json:"saved_at"`
	DialogOptions bool               `json:"dialog_options,omitempty"`
	Instances     []InstanceSnapshot `json:"instances"`
}
