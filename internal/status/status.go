// Package status provides a thread-safe status tracker for the led-button daemon.
// It is written by the main loop and read by HTTP handlers.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/led-button/internal/event"
)

// Config contains daemon configuration for display.
type Config struct {
	Driver       string
	Chip         string
	LEDPin       string
	ButtonPin    string
	LEDInverted  bool
	ActiveLow    bool
	PollMs       int64
	HeartbeatMs  int64
	BlinkEveryMs int64
	Broker       string
	HTTPAddr     string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Button        event.ButtonState
	LED           event.LEDState
	Baselined     bool
	Armed         bool
	Counts        event.Counts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
	now  func() time.Time
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
		now: time.Now,
	}
}

// Update sets button and LED states, baseline status, and event counts.
// Called from runLoop on every tick.
func (t *Tracker) Update(button event.ButtonState, led event.LEDState, baselined bool, counts event.Counts) {
	t.mu.Lock()
	t.snap.Button = button
	t.snap.LED = led
	t.snap.Baselined = baselined
	t.snap.Counts = counts
	t.mu.Unlock()
}

// SetArmed records whether the button interrupt is attached.
func (t *Tracker) SetArmed(armed bool) {
	t.mu.Lock()
	t.snap.Armed = armed
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = t.now()
	return s
}
