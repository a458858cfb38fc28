package gpio

import (
	"errors"
	"fmt"
	"sync"
	"time"

	pgpio "periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// periphEdgeTimeout bounds each WaitForEdge call so a detached watcher exits.
const periphEdgeTimeout = 100 * time.Millisecond

// PeriphDriver configures pins through periph.io's pin registry. IDs are
// anything gpioreg.ByName accepts: "GPIO17", "17" or a board alias.
type PeriphDriver struct {
	mu    sync.Mutex
	owned map[string]bool
}

// NewPeriphDriver initializes the periph host drivers.
func NewPeriphDriver() (*PeriphDriver, error) {
	if _, err := host.Init(); err != nil {
		return nil, &ConfigError{ID: "periph", Err: fmt.Errorf("init host: %w", err)}
	}
	return &PeriphDriver{owned: make(map[string]bool)}, nil
}

// Configure claims the named pin and applies direction and pull.
func (d *PeriphDriver) Configure(id ID, dir Direction, pull Pull) (Handle, error) {
	if id == "" {
		return nil, configErr(id, "empty pin identity")
	}
	pin := gpioreg.ByName(string(id))
	if pin == nil {
		return nil, configErr(id, "unknown pin")
	}

	key := pin.Name()
	d.mu.Lock()
	if d.owned[key] {
		d.mu.Unlock()
		return nil, &ConfigError{ID: id, Err: ErrPinBusy}
	}
	d.owned[key] = true
	d.mu.Unlock()

	p := &periphPin{
		id:   id,
		pin:  pin,
		dir:  dir,
		pull: periphPull(pull),
		release: func() {
			d.mu.Lock()
			delete(d.owned, key)
			d.mu.Unlock()
		},
	}

	var err error
	switch dir {
	case Input:
		err = pin.In(p.pull, pgpio.NoEdge)
	case Output:
		if pull != PullNone {
			err = fmt.Errorf("pull %s not supported on output", pull)
		} else {
			err = pin.Out(pgpio.Low)
		}
	default:
		err = fmt.Errorf("unsupported direction %s", dir)
	}
	if err != nil {
		p.release()
		return nil, &ConfigError{ID: id, Err: err}
	}
	return p, nil
}

// Close is a no-op; periph keeps no per-driver state.
func (d *PeriphDriver) Close() error {
	return nil
}

func periphPull(pull Pull) pgpio.Pull {
	switch pull {
	case PullUp:
		return pgpio.PullUp
	case PullDown:
		return pgpio.PullDown
	}
	return pgpio.Float
}

type periphPin struct {
	id      ID
	pin     pgpio.PinIO
	dir     Direction
	pull    pgpio.Pull
	release func()

	mu      sync.Mutex
	watcher *edgeWatcher
	closed  bool
}

func (p *periphPin) Read() (Level, error) {
	if p.pin.Read() == pgpio.High {
		return High, nil
	}
	return Low, nil
}

func (p *periphPin) Write(level Level) error {
	if err := p.pin.Out(level == High); err != nil {
		return ioErr(p.id, "write", err)
	}
	return nil
}

func (p *periphPin) AttachInterrupt(edge Edge, handler func()) error {
	if p.dir != Input {
		return errors.New("edge detection requires an input pin")
	}
	var pe pgpio.Edge
	switch edge {
	case EdgeRising:
		pe = pgpio.RisingEdge
	case EdgeFalling:
		pe = pgpio.FallingEdge
	default:
		return fmt.Errorf("unsupported edge %s", edge)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	// a failed reconfigure keeps the current watcher running
	if err := p.pin.In(p.pull, pe); err != nil {
		return fmt.Errorf("enable edge detection: %w", err)
	}
	p.watcher.halt()
	p.watcher = startWatcher(func() bool { return p.pin.WaitForEdge(periphEdgeTimeout) }, handler)
	return nil
}

func (p *periphPin) DetachInterrupt() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.detachLocked()
}

func (p *periphPin) detachLocked() error {
	if p.watcher == nil {
		return nil
	}
	p.watcher.halt()
	p.watcher = nil
	if err := p.pin.In(p.pull, pgpio.NoEdge); err != nil {
		return fmt.Errorf("disable edge detection: %w", err)
	}
	return nil
}

func (p *periphPin) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true

	var errs []error
	if err := p.detachLocked(); err != nil {
		errs = append(errs, err)
	}
	if err := p.pin.Halt(); err != nil {
		errs = append(errs, fmt.Errorf("halt pin %s: %w", p.id, err))
	}
	p.release()
	return errors.Join(errs...)
}
