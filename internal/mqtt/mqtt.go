// Package mqtt publishes button and LED events, with an abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/led-button/internal/event"
)

// Topic is the MQTT topic for button and LED events.
const Topic = "home/led-button/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "home/led-button/system"

// ClientID identifies this daemon to the broker.
const ClientID = "led-button"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a button or LED event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(e event.Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(e SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
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
	Device DevicePayload `json:"device"`
}

// DevicePayload contains the event details.
type DevicePayload struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Button    string `json:"button"`
	LED       string `json:"led"`
}

// FormatPayload creates the JSON payload for a button or LED event.
func FormatPayload(e event.Event) ([]byte, error) {
	payload := Payload{
		Device: DevicePayload{
			Timestamp: e.Timestamp.UTC().Format(time.RFC3339),
			Event:     string(e.Type),
			Button:    string(e.Button),
			LED:       string(e.LED),
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (OFFLINE will, RECONNECTED) that don't carry a
// full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp,omitempty"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If e.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(e SystemEvent) ([]byte, error) {
	if e.RawPayload != nil {
		return e.RawPayload, nil
	}

	inner := SystemPayloadInner{
		Event:  e.Event,
		Reason: e.Reason,
	}
	if !e.Timestamp.IsZero() {
		inner.Timestamp = e.Timestamp.UTC().Format(time.RFC3339)
	}
	return json.Marshal(SystemPayload{System: inner})
}

// WillPayload is the last-will message the broker publishes if the
// connection drops without a clean disconnect.
func WillPayload() []byte {
	data, _ := FormatSystemPayload(SystemEvent{Event: "OFFLINE", Reason: "CONNECTION_LOST"})
	return data
}
