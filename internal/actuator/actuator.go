// Package actuator implements a polarity-aware digital output such as an
// LED. The logical state is cached rather than read back, since many
// platforms cannot reliably read an output pin.
//
// An Actuator is owned by a single goroutine; it does no locking.
package actuator

import (
	"fmt"
	"time"

	"github.com/sweeney/led-button/internal/gpio"
)

// DefaultBlinkInterval is the on and off phase length used by callers that
// have no preference.
const DefaultBlinkInterval = 500 * time.Millisecond

// Actuator drives an output pin.
type Actuator struct {
	id       gpio.ID
	pin      gpio.Handle
	inverted bool
	sleep    func(time.Duration)

	// state mirrors the last successful write.
	state  bool
	closed bool
}

// Option configures an Actuator.
type Option func(*Actuator)

// WithInverted makes logical on drive the pin low.
func WithInverted(inverted bool) Option {
	return func(a *Actuator) { a.inverted = inverted }
}

// WithSleep replaces the blocking sleep used between blink phases.
func WithSleep(sleep func(time.Duration)) Option {
	return func(a *Actuator) {
		if sleep != nil {
			a.sleep = sleep
		}
	}
}

// New configures id as an output and drives it to logical off.
// Failures match gpio.ErrHardwareConfig and leave no pin claimed.
func New(drv gpio.Driver, id gpio.ID, opts ...Option) (*Actuator, error) {
	a := &Actuator{
		id:    id,
		sleep: time.Sleep,
	}
	for _, opt := range opts {
		opt(a)
	}

	pin, err := drv.Configure(id, gpio.Output, gpio.PullNone)
	if err != nil {
		return nil, fmt.Errorf("new actuator: %w", err)
	}
	a.pin = pin

	if err := a.write(false); err != nil {
		pin.Close()
		return nil, &gpio.ConfigError{ID: id, Err: fmt.Errorf("drive initial level: %w", err)}
	}
	return a, nil
}

// ID returns the pin identity.
func (a *Actuator) ID() gpio.ID {
	return a.id
}

// Inverted reports the actuator's polarity.
func (a *Actuator) Inverted() bool {
	return a.inverted
}

// TurnOn drives the logical on level.
func (a *Actuator) TurnOn() error {
	return a.write(true)
}

// TurnOff drives the logical off level.
func (a *Actuator) TurnOff() error {
	return a.write(false)
}

// Set drives the given logical state.
func (a *Actuator) Set(on bool) error {
	return a.write(on)
}

// Toggle flips the cached state through TurnOn or TurnOff.
func (a *Actuator) Toggle() error {
	if a.state {
		return a.TurnOff()
	}
	return a.TurnOn()
}

// IsOn returns the cached logical state.
func (a *Actuator) IsOn() bool {
	return a.state
}

// Blink runs count on/off cycles of interval each and then restores the
// state the actuator had before the call. Writes that would not change
// the level are skipped, so exactly 2*count writes are issued.
// It blocks for 2*count*interval.
func (a *Actuator) Blink(count uint, interval time.Duration) error {
	original := a.state
	for i := uint(0); i < count; i++ {
		if err := a.writeIfChanged(true); err != nil {
			return err
		}
		a.sleep(interval)
		if err := a.writeIfChanged(false); err != nil {
			return err
		}
		a.sleep(interval)
	}
	return a.writeIfChanged(original)
}

func (a *Actuator) writeIfChanged(on bool) error {
	if a.state == on {
		return nil
	}
	return a.write(on)
}

func (a *Actuator) write(on bool) error {
	if a.closed {
		return gpio.ErrClosed
	}
	if err := a.pin.Write(gpio.EffectiveLevel(on, a.inverted)); err != nil {
		return fmt.Errorf("drive actuator %s: %w", a.id, err)
	}
	a.state = on
	return nil
}

// Close releases the pin. The driver decides the level it is left at.
func (a *Actuator) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true
	if err := a.pin.Close(); err != nil {
		return fmt.Errorf("release actuator %s: %w", a.id, err)
	}
	return nil
}
