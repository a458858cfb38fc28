// Package sensor implements a polarity-aware digital input with blocking
// transition waits and a single edge-triggered callback.
//
// The sensor holds no cached level: every read queries the pin. Callbacks
// run in the driver's interrupt context, asynchronously to the goroutine
// that owns the sensor, and may observe a different level than a
// concurrent IsActive call. Handlers should be short. Whether a second
// edge arriving while a handler still runs is dropped, coalesced or queued
// is up to the driver.
package sensor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/sweeney/led-button/internal/gpio"
)

// ErrNilHandler is returned when subscribing without a handler.
var ErrNilHandler = errors.New("sensor: nil handler")

// Subscribable is an edge source with a single handler slot.
type Subscribable interface {
	// Subscribe stores handler, replacing any previous one, and arms
	// edge detection for edge.
	Subscribe(edge gpio.Edge, handler func()) error

	// Unsubscribe disarms edge detection. It is idempotent.
	Unsubscribe() error
}

// Sensor is a digital input such as a push button.
type Sensor struct {
	id        gpio.ID
	pin       gpio.Handle
	activeLow bool
	poll      Poller

	// handler is the single-slot mailbox read by the interrupt context.
	handler atomic.Pointer[func()]

	// closed is read without mu so IsActive stays lock-free in callbacks.
	closed atomic.Bool

	mu       sync.Mutex
	armed    bool
	armedFor gpio.Edge
}

var _ Subscribable = (*Sensor)(nil)

// Option configures a Sensor.
type Option func(*Sensor)

// WithActiveLow sets the polarity. Active-low (the default) means the
// input is active at raw level 0 and is pulled up; active-high pulls down.
func WithActiveLow(activeLow bool) Option {
	return func(s *Sensor) { s.activeLow = activeLow }
}

// WithPoller replaces the busy-poll primitive used by the waits.
func WithPoller(p Poller) Option {
	return func(s *Sensor) {
		if p != nil {
			s.poll = p
		}
	}
}

// New configures id as an input and returns a sensor that exclusively owns
// it. Failures match gpio.ErrHardwareConfig and leave no pin claimed.
func New(drv gpio.Driver, id gpio.ID, opts ...Option) (*Sensor, error) {
	s := &Sensor{
		id:        id,
		activeLow: true,
		poll:      BusyPoll,
	}
	for _, opt := range opts {
		opt(s)
	}

	pull := gpio.PullDown
	if s.activeLow {
		pull = gpio.PullUp
	}
	pin, err := drv.Configure(id, gpio.Input, pull)
	if err != nil {
		return nil, fmt.Errorf("new sensor: %w", err)
	}
	s.pin = pin
	return s, nil
}

// ID returns the pin identity.
func (s *Sensor) ID() gpio.ID {
	return s.id
}

// ActiveLow reports the sensor's polarity.
func (s *Sensor) ActiveLow() bool {
	return s.activeLow
}

// ActiveEdge is the edge that moves the input into its active level:
// falling when active-low, rising otherwise.
func (s *Sensor) ActiveEdge() gpio.Edge {
	if s.activeLow {
		return gpio.EdgeFalling
	}
	return gpio.EdgeRising
}

// InactiveEdge is the edge that moves the input out of its active level.
func (s *Sensor) InactiveEdge() gpio.Edge {
	if s.activeLow {
		return gpio.EdgeRising
	}
	return gpio.EdgeFalling
}

// IsActive reads the pin and reports whether it is at its active level.
// It is safe to call from within a registered callback. After Close it
// returns gpio.ErrClosed without touching the pin.
func (s *Sensor) IsActive() (bool, error) {
	if s.closed.Load() {
		return false, gpio.ErrClosed
	}
	raw, err := s.pin.Read()
	if err != nil {
		return false, fmt.Errorf("read sensor %s: %w", s.id, err)
	}
	return gpio.EffectiveLogical(raw, s.activeLow), nil
}

// WaitUntilActive busy-polls until the input is active. There is no
// timeout: it never returns if the level never changes.
func (s *Sensor) WaitUntilActive() error {
	return s.WaitUntilActiveContext(context.Background())
}

// WaitUntilInactive busy-polls until the input is inactive.
func (s *Sensor) WaitUntilInactive() error {
	return s.WaitUntilInactiveContext(context.Background())
}

// WaitUntilActiveContext is WaitUntilActive with cancellation.
func (s *Sensor) WaitUntilActiveContext(ctx context.Context) error {
	return s.waitFor(ctx, true)
}

// WaitUntilInactiveContext is WaitUntilInactive with cancellation.
func (s *Sensor) WaitUntilInactiveContext(ctx context.Context) error {
	return s.waitFor(ctx, false)
}

func (s *Sensor) waitFor(ctx context.Context, want bool) error {
	return s.poll(ctx, func() (bool, error) {
		active, err := s.IsActive()
		if err != nil {
			return false, err
		}
		return active == want, nil
	})
}

// OnActive registers cb to run each time the input becomes active.
// It replaces any previous callback.
func (s *Sensor) OnActive(cb func()) error {
	return s.Subscribe(s.ActiveEdge(), cb)
}

// OnInactive registers cb to run each time the input is released.
// It shares the single callback slot with OnActive.
func (s *Sensor) OnInactive(cb func()) error {
	return s.Subscribe(s.InactiveEdge(), cb)
}

// DisableInterrupt disarms edge detection. It is idempotent and safe when
// nothing was attached. The stored callback is kept, so on drivers that
// watch edges from a goroutine one call already in flight may still run.
func (s *Sensor) DisableInterrupt() error {
	return s.Unsubscribe()
}

// Subscribe stores handler and arms edge detection for edge. Attach
// failures match gpio.ErrInterrupt; the handler stays stored either way.
func (s *Sensor) Subscribe(edge gpio.Edge, handler func()) error {
	if handler == nil {
		return ErrNilHandler
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return gpio.ErrClosed
	}
	s.handler.Store(&handler)

	if s.armed && s.armedFor == edge {
		return nil
	}
	// a failed attach leaves the previous arming in place
	if err := s.pin.AttachInterrupt(edge, s.dispatch); err != nil {
		return &gpio.InterruptError{ID: s.id, Op: "attach", Err: err}
	}
	s.armed = true
	s.armedFor = edge
	return nil
}

// Unsubscribe disarms edge detection. Detach failures match
// gpio.ErrInterrupt and leave the sensor armed.
func (s *Sensor) Unsubscribe() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unsubscribeLocked()
}

func (s *Sensor) unsubscribeLocked() error {
	if !s.armed {
		return nil
	}
	if err := s.pin.DetachInterrupt(); err != nil {
		return &gpio.InterruptError{ID: s.id, Op: "detach", Err: err}
	}
	s.armed = false
	return nil
}

// Armed reports whether edge detection is attached.
func (s *Sensor) Armed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.armed
}

// dispatch runs in the driver's interrupt context.
func (s *Sensor) dispatch() {
	if h := s.handler.Load(); h != nil {
		(*h)()
	}
}

// Close detaches any interrupt and releases the pin. After Close no
// callback is started. Close must not be called from within a callback.
func (s *Sensor) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Swap(true) {
		return nil
	}
	s.handler.Store(nil)

	var errs []error
	if err := s.unsubscribeLocked(); err != nil {
		errs = append(errs, err)
	}
	if err := s.pin.Close(); err != nil {
		errs = append(errs, fmt.Errorf("release sensor %s: %w", s.id, err))
	}
	return errors.Join(errs...)
}
