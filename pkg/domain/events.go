package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventInstanceStart    EventType = "instance_start"
	EventNodeEnter        EventType = "node_enter"
	EventInstanceComplete EventType = "instance_complete"
	EventSkipRequested    EventType = "skip_requested"
)

// InstanceEvent identifies one live execution of a graph.
type InstanceEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	GraphID   string    `json:"graph_id"`
	Ordinal   int       `json:"ordinal"`
}

// NodeEvent marks entry into a node.
type NodeEvent struct {
	InstanceEvent
	NodeIndex int    `json:"node_index"`
	StepKind  string `json:"step_kind"`
}

// LifecycleHooks defines callbacks for engine observability. All hooks run
// synchronously on the scheduling pass; keep them cheap.
type LifecycleHooks struct {
	OnInstanceStart    func(context.Context, *InstanceEvent)
	OnNodeEnter        func(context.Context, *NodeEvent)
	OnInstanceComplete func(context.Context, *InstanceEvent)
	OnSkipRequested    func(context.Context, *InstanceEvent)
}
