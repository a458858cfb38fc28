package gpio

import (
	"errors"
	"sync"
)

// FakeDriver is a test double that hands out FakePins.
// Pins can be prepared with Pin before they are configured.
type FakeDriver struct {
	mu          sync.Mutex
	pins        map[ID]*FakePin
	unavailable map[ID]bool

	// ConfigureError, if set, will be returned by Configure.
	ConfigureError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeDriver creates a FakeDriver with no pins.
func NewFakeDriver() *FakeDriver {
	return &FakeDriver{
		pins:        make(map[ID]*FakePin),
		unavailable: make(map[ID]bool),
	}
}

// Pin returns the fake pin for id, creating it if needed.
func (d *FakeDriver) Pin(id ID) *FakePin {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pinLocked(id)
}

func (d *FakeDriver) pinLocked(id ID) *FakePin {
	p, ok := d.pins[id]
	if !ok {
		p = &FakePin{id: id, owner: d}
		d.pins[id] = p
	}
	return p
}

// SetUnavailable makes Configure fail for id.
func (d *FakeDriver) SetUnavailable(id ID) {
	d.mu.Lock()
	d.unavailable[id] = true
	d.mu.Unlock()
}

// Configure claims the fake pin for id.
func (d *FakeDriver) Configure(id ID, dir Direction, pull Pull) (Handle, error) {
	if d.ConfigureError != nil {
		return nil, &ConfigError{ID: id, Err: d.ConfigureError}
	}
	if id == "" {
		return nil, configErr(id, "empty pin identity")
	}
	if dir == Output && pull != PullNone {
		return nil, configErr(id, "pull %s not supported on output", pull)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.unavailable[id] {
		return nil, configErr(id, "pin unavailable")
	}
	p := d.pinLocked(id)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.owned {
		return nil, &ConfigError{ID: id, Err: ErrPinBusy}
	}
	p.owned = true
	p.closed = false
	p.direction = dir
	p.pull = pull
	p.configured++
	return p, nil
}

// Close marks the driver as closed.
func (d *FakeDriver) Close() error {
	d.Closed = true
	return nil
}

func (d *FakeDriver) release(id ID) {
	d.mu.Lock()
	if p, ok := d.pins[id]; ok {
		p.mu.Lock()
		p.owned = false
		p.mu.Unlock()
	}
	d.mu.Unlock()
}

// FakePin is a scriptable pin. It is safe for concurrent use so tests can
// fire edges from another goroutine.
type FakePin struct {
	mu    sync.Mutex
	id    ID
	owner *FakeDriver

	direction  Direction
	pull       Pull
	configured int
	owned      bool
	closed     bool

	// levels contains scripted levels to return. Each Read consumes the
	// next one; the last repeats once exhausted.
	levels []Level
	index  int
	level  Level

	writes []Level

	edge        Edge
	handler     func()
	attached    bool
	attachCalls int
	detachCalls int

	// Errors, if set before use, are returned by the matching operation.
	ReadError   error
	WriteError  error
	AttachError error
	DetachError error
}

// SetLevels scripts the levels returned by successive reads.
func (p *FakePin) SetLevels(levels ...Level) {
	p.mu.Lock()
	p.levels = append([]Level(nil), levels...)
	p.index = 0
	p.mu.Unlock()
}

// SetLevel sets a constant level, discarding any script. No edge fires.
func (p *FakePin) SetLevel(l Level) {
	p.mu.Lock()
	p.levels = nil
	p.level = l
	p.mu.Unlock()
}

// Drive sets a constant level and fires the matching edge if the level
// changed and an interrupt for that edge is attached.
func (p *FakePin) Drive(l Level) {
	p.mu.Lock()
	prev := p.currentLocked()
	p.levels = nil
	p.level = l
	p.mu.Unlock()

	switch {
	case prev == Low && l == High:
		p.Fire(EdgeRising)
	case prev == High && l == Low:
		p.Fire(EdgeFalling)
	}
}

func (p *FakePin) currentLocked() Level {
	if len(p.levels) > 0 {
		return p.levels[p.index]
	}
	return p.level
}

// Fire invokes the attached handler if edge matches the armed edge.
// The handler runs on the caller's goroutine, outside the pin lock.
// Returns whether the handler ran.
func (p *FakePin) Fire(edge Edge) bool {
	p.mu.Lock()
	h := p.handler
	fire := p.attached && p.edge == edge && h != nil
	p.mu.Unlock()

	if fire {
		h()
	}
	return fire
}

// Read returns the next scripted level.
func (p *FakePin) Read() (Level, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return Low, ErrClosed
	}
	if p.ReadError != nil {
		return Low, p.ReadError
	}
	if len(p.levels) == 0 {
		return p.level, nil
	}
	l := p.levels[p.index]
	if p.index < len(p.levels)-1 {
		p.index++
	}
	return l, nil
}

// Write records the level.
func (p *FakePin) Write(l Level) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}
	if p.WriteError != nil {
		return p.WriteError
	}
	if p.direction != Output {
		return errors.New("write to input pin")
	}
	p.writes = append(p.writes, l)
	p.levels = nil
	p.level = l
	return nil
}

// AttachInterrupt arms the fake edge.
func (p *FakePin) AttachInterrupt(edge Edge, handler func()) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.attachCalls++
	if p.closed {
		return ErrClosed
	}
	if p.AttachError != nil {
		return p.AttachError
	}
	p.edge = edge
	p.handler = handler
	p.attached = true
	return nil
}

// DetachInterrupt disarms the fake edge.
func (p *FakePin) DetachInterrupt() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.detachCalls++
	if p.DetachError != nil {
		return p.DetachError
	}
	p.attached = false
	p.handler = nil
	return nil
}

// Close releases the pin back to its driver.
func (p *FakePin) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.attached = false
	p.handler = nil
	owner := p.owner
	p.mu.Unlock()

	if owner != nil {
		owner.release(p.id)
	}
	return nil
}

// Writes returns a copy of every level written so far.
func (p *FakePin) Writes() []Level {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Level(nil), p.writes...)
}

// ResetWrites clears the recorded writes.
func (p *FakePin) ResetWrites() {
	p.mu.Lock()
	p.writes = nil
	p.mu.Unlock()
}

// Attached reports the armed edge, if any.
func (p *FakePin) Attached() (Edge, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.edge, p.attached
}

// Calls returns how many times attach and detach were invoked.
func (p *FakePin) Calls() (attach, detach int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.attachCalls, p.detachCalls
}

// Config returns the configured direction and pull.
func (p *FakePin) Config() (Direction, Pull) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.direction, p.pull
}

// Closed reports whether Close was called since the last Configure.
func (p *FakePin) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}
