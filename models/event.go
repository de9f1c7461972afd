package models

import "time"

type EventType string

const (
	EventNormal  EventType = "Normal"
	EventWarning EventType = "Warning"
)

// Event is an append-only audit record. Events are never mutated or
// deleted once recorded.
type Event struct {
	Timestamp  time.Time `json:"timestamp"`
	Tick       int       `json:"tick"`
	Type       EventType `json:"type"`
	Reason     string    `json:"reason"`
	ObjectKind string    `json:"objectKind"`
	ObjectName string    `json:"objectName"`
	Message    string    `json:"message"`
}
