package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event          string     `json:"event,omitempty"`
	Reason         string     `json:"reason,omitempty"`
	Button         string     `json:"button"`
	LED            string     `json:"led"`
	Ready          bool       `json:"ready"`
	InterruptArmed bool       `json:"interrupt_armed"`
	UptimeSeconds  int64      `json:"uptime_seconds"`
	StartTime      string     `json:"start_time"`
	Timestamp      string     `json:"timestamp"`
	MQTT           MQTTStatus `json:"mqtt"`
	Counts         CountsJSON `json:"event_counts"`
	Config         ConfigJSON `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	Presses    int `json:"presses"`
	Releases   int `json:"releases"`
	LEDOn      int `json:"led_on"`
	LEDOff     int `json:"led_off"`
	Interrupts int `json:"interrupts"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Driver       string `json:"driver"`
	Chip         string `json:"chip,omitempty"`
	LEDPin       string `json:"led_pin"`
	ButtonPin    string `json:"button_pin"`
	LEDInverted  bool   `json:"led_inverted"`
	ActiveLow    bool   `json:"button_active_low"`
	PollMs       int64  `json:"poll_ms"`
	HeartbeatMs  int64  `json:"heartbeat_ms"`
	BlinkEveryMs int64  `json:"blink_every_ms"`
	Broker       string `json:"broker"`
	HTTPAddr     string `json:"http_addr"`
}

func orUnknown(s string) string {
	if s == "" {
		return "UNKNOWN"
	}
	return s
}

func buildInner(snap Snapshot) StatusInner {
	c := snap.Config
	return StatusInner{
		Button:         orUnknown(string(snap.Button)),
		LED:            orUnknown(string(snap.LED)),
		Ready:          snap.Baselined,
		InterruptArmed: snap.Armed,
		UptimeSeconds:  int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:      snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:      snap.Now.UTC().Format(time.RFC3339),
		MQTT:           MQTTStatus{Connected: snap.MQTTConnected, Broker: c.Broker},
		Counts: CountsJSON{
			Presses:    snap.Counts.Presses,
			Releases:   snap.Counts.Releases,
			LEDOn:      snap.Counts.LEDOn,
			LEDOff:     snap.Counts.LEDOff,
			Interrupts: snap.Counts.Interrupts,
		},
		Config: ConfigJSON{
			Driver:       c.Driver,
			Chip:         c.Chip,
			LEDPin:       c.LEDPin,
			ButtonPin:    c.ButtonPin,
			LEDInverted:  c.LEDInverted,
			ActiveLow:    c.ActiveLow,
			PollMs:       c.PollMs,
			HeartbeatMs:  c.HeartbeatMs,
			BlinkEveryMs: c.BlinkEveryMs,
			Broker:       c.Broker,
			HTTPAddr:     c.HTTPAddr,
		},
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
