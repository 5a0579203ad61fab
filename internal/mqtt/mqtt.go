// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/microwave/internal/logic"
)

// Topic is the MQTT topic for appliance events.
const Topic = "home/microwave/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "home/microwave/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends an appliance event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// Event represents a recognized appliance transition for publishing.
type Event struct {
	Timestamp  time.Time
	Type       logic.EventType
	Phase      logic.Phase
	DoorClosed bool
	// CookTime is the computed cook duration; set for COOK_START.
	CookTime time.Duration
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Microwave MicrowavePayload `json:"microwave"`
}

// MicrowavePayload contains the appliance event details.
type MicrowavePayload struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Door      string `json:"door"`
	Phase     string `json:"phase"`
	CookMs    int64  `json:"cook_ms,omitempty"`
}

// FormatPayload creates the JSON payload for an appliance event.
func FormatPayload(event Event) ([]byte, error) {
	payload := Payload{
		Microwave: MicrowavePayload{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     string(event.Type),
			Door:      doorString(event.DoorClosed),
			Phase:     string(event.Phase),
			CookMs:    event.CookTime.Milliseconds(),
		},
	}
	return json.Marshal(payload)
}

func doorString(closed bool) string {
	if closed {
		return "CLOSED"
	}
	return "OPEN"
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
