package event

import "time"

// Detector turns polled samples into transition events. The first sample
// is the baseline and emits nothing. There is no debouncing: every change
// between two samples is an event.
type Detector struct {
	button        ButtonState
	led           LEDState
	baselined     bool
	startTime     time.Time
	counts        Counts
	lastHeartbeat time.Time
}

// NewDetector creates a detector. The startTime is used for calculating
// uptime in heartbeat events.
func NewDetector(startTime time.Time) *Detector {
	return &Detector{
		startTime:     startTime,
		lastHeartbeat: startTime,
	}
}

// Process takes a new input sample and returns any events that should be
// emitted, button first if both changed.
func (d *Detector) Process(input Input) []Event {
	button := buttonState(input.Pressed)
	led := ledState(input.LEDOn)

	if !d.baselined {
		d.button = button
		d.led = led
		d.baselined = true
		return nil
	}

	var events []Event

	if button != d.button {
		d.button = button
		t := TypeButtonReleased
		if button == ButtonPressed {
			t = TypeButtonPressed
			d.counts.Presses++
		} else {
			d.counts.Releases++
		}
		events = append(events, Event{Timestamp: input.Time, Type: t})
	}

	if led != d.led {
		d.led = led
		t := TypeLEDOff
		if led == LEDOn {
			t = TypeLEDOn
			d.counts.LEDOn++
		} else {
			d.counts.LEDOff++
		}
		events = append(events, Event{Timestamp: input.Time, Type: t})
	}

	// Both states reflect the sample, not the moment of each change.
	for i := range events {
		events[i].Button = d.button
		events[i].LED = d.led
	}
	return events
}

// RecordInterrupt counts a press delivered by the sensor callback.
func (d *Detector) RecordInterrupt() {
	d.counts.Interrupts++
}

func buttonState(pressed bool) ButtonState {
	if pressed {
		return ButtonPressed
	}
	return ButtonReleased
}

func ledState(on bool) LEDState {
	if on {
		return LEDOn
	}
	return LEDOff
}

// IsBaselined returns whether the detector has seen its first sample.
func (d *Detector) IsBaselined() bool {
	return d.baselined
}

// CurrentState returns the last sampled states.
func (d *Detector) CurrentState() (ButtonState, LEDState) {
	return d.button, d.led
}

// Counts returns a copy of the event counts.
func (d *Detector) Counts() Counts {
	return d.counts
}

// CheckHeartbeat returns heartbeat data if the interval has elapsed since the
// last heartbeat (or startup). Returns nil if not yet baselined, if the
// interval has not elapsed, or if interval is <= 0 (disabled).
func (d *Detector) CheckHeartbeat(now time.Time, interval time.Duration) *HeartbeatData {
	if interval <= 0 {
		return nil
	}

	if !d.baselined {
		return nil
	}

	if now.Sub(d.lastHeartbeat) < interval {
		return nil
	}

	d.lastHeartbeat = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(d.startTime),
		Counts:    d.counts,
	}
}
