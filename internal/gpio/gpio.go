// Package gpio defines the pin driver contract used by the sensor and
// actuator packages, plus the drivers that implement it.
// The real drivers use the Linux GPIO character device, periph.io or
// go-rpio register access. The fake implementation allows testing without
// hardware.
package gpio

import (
	"strconv"
)

// Level is a raw electrical level.
type Level int

const (
	Low  Level = 0
	High Level = 1
)

func (l Level) String() string {
	if l == High {
		return "1"
	}
	return "0"
}

// Direction is the configured direction of a pin.
type Direction int

const (
	Input Direction = iota
	Output
)

func (d Direction) String() string {
	switch d {
	case Input:
		return "in"
	case Output:
		return "out"
	}
	return "Direction(" + strconv.Itoa(int(d)) + ")"
}

// Pull is the internal bias resistor applied to an input.
type Pull int

const (
	PullNone Pull = iota
	PullUp
	PullDown
)

func (p Pull) String() string {
	switch p {
	case PullNone:
		return "none"
	case PullUp:
		return "up"
	case PullDown:
		return "down"
	}
	return "Pull(" + strconv.Itoa(int(p)) + ")"
}

// Edge is a directional transition between raw levels.
type Edge int

const (
	EdgeRising  Edge = iota + 1 // 0 -> 1
	EdgeFalling                 // 1 -> 0
)

func (e Edge) String() string {
	switch e {
	case EdgeRising:
		return "rising"
	case EdgeFalling:
		return "falling"
	}
	return "Edge(" + strconv.Itoa(int(e)) + ")"
}

// ID identifies a pin: either a numeric offset ("17") or a line name ("LED").
type ID string

// Offset returns the numeric offset of the pin, if the ID is numeric.
func (id ID) Offset() (int, bool) {
	n, err := strconv.Atoi(string(id))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// Handle is an exclusively owned, configured pin.
type Handle interface {
	// Read returns the current raw level. It never caches.
	Read() (Level, error)

	// Write drives the raw level of an output pin.
	Write(Level) error

	// AttachInterrupt arms edge detection and calls handler from the
	// driver's interrupt context each time edge fires. Attaching again
	// replaces the edge and handler.
	AttachInterrupt(edge Edge, handler func()) error

	// DetachInterrupt disarms edge detection. Detaching a pin with no
	// interrupt attached is a no-op. On watcher-based drivers one handler
	// call already in flight may still run after it returns.
	DetachInterrupt() error

	// Close detaches any interrupt and releases the pin.
	Close() error
}

// Driver configures pins.
type Driver interface {
	// Configure claims the pin and sets its direction and pull.
	// Failures wrap ErrHardwareConfig.
	Configure(id ID, dir Direction, pull Pull) (Handle, error)

	// Close releases driver resources.
	Close() error
}
