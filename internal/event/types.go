// Package event contains pure transition tracking for the button and LED.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package event

import "time"

// ButtonState is the logical state of the button.
type ButtonState string

const (
	ButtonPressed  ButtonState = "PRESSED"
	ButtonReleased ButtonState = "RELEASED"
)

// LEDState is the logical state of the LED.
type LEDState string

const (
	LEDOn  LEDState = "ON"
	LEDOff LEDState = "OFF"
)

// Type represents a state transition event.
type Type string

const (
	TypeButtonPressed  Type = "BUTTON_PRESSED"
	TypeButtonReleased Type = "BUTTON_RELEASED"
	TypeLEDOn          Type = "LED_ON"
	TypeLEDOff         Type = "LED_OFF"
)

// Event represents a state transition to be published.
type Event struct {
	Timestamp time.Time
	Type      Type
	Button    ButtonState
	LED       LEDState
}

// Input represents a single polled sample of logical states.
type Input struct {
	Pressed bool // sensor IsActive
	LEDOn   bool // actuator IsOn
	Time    time.Time
}

// Counts tracks the number of each event type since startup.
type Counts struct {
	Presses    int
	Releases   int
	LEDOn      int
	LEDOff     int
	Interrupts int // press callbacks delivered from the interrupt context
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Counts    Counts
}
