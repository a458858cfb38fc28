//go:build linux

package gpio

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/stianeikeland/go-rpio/v4"
)

// rpioEdgePoll is how often the event detect status register is sampled.
const rpioEdgePoll = time.Millisecond

// maxBCM is the highest user GPIO on the 40-pin header.
const maxBCM = 27

// RPIODriver configures BCM-numbered pins by mapping the Raspberry Pi GPIO
// registers directly. Only numeric IDs are accepted.
type RPIODriver struct {
	mu    sync.Mutex
	owned map[int]bool
}

// NewRPIODriver maps the GPIO register block.
func NewRPIODriver() (*RPIODriver, error) {
	if err := rpio.Open(); err != nil {
		return nil, &ConfigError{ID: "rpio", Err: fmt.Errorf("map gpio registers: %w", err)}
	}
	return &RPIODriver{owned: make(map[int]bool)}, nil
}

// Configure claims a BCM pin and applies direction and pull.
func (d *RPIODriver) Configure(id ID, dir Direction, pull Pull) (Handle, error) {
	n, ok := id.Offset()
	if !ok {
		return nil, configErr(id, "rpio needs a BCM pin number")
	}
	if n > maxBCM {
		return nil, configErr(id, "BCM pin %d out of range", n)
	}
	if dir == Output && pull != PullNone {
		return nil, configErr(id, "pull %s not supported on output", pull)
	}

	d.mu.Lock()
	if d.owned[n] {
		d.mu.Unlock()
		return nil, &ConfigError{ID: id, Err: ErrPinBusy}
	}
	d.owned[n] = true
	d.mu.Unlock()

	pin := rpio.Pin(n)
	switch dir {
	case Input:
		pin.Input()
		switch pull {
		case PullUp:
			pin.PullUp()
		case PullDown:
			pin.PullDown()
		default:
			pin.PullOff()
		}
	case Output:
		pin.Output()
		pin.Low()
	default:
		d.release(n)
		return nil, configErr(id, "unsupported direction %s", dir)
	}

	return &rpioPin{id: id, pin: pin, dir: dir, release: func() { d.release(n) }}, nil
}

func (d *RPIODriver) release(n int) {
	d.mu.Lock()
	delete(d.owned, n)
	d.mu.Unlock()
}

// Close unmaps the GPIO registers.
func (d *RPIODriver) Close() error {
	if err := rpio.Close(); err != nil {
		return fmt.Errorf("unmap gpio registers: %w", err)
	}
	return nil
}

type rpioPin struct {
	id      ID
	pin     rpio.Pin
	dir     Direction
	release func()

	mu      sync.Mutex
	watcher *edgeWatcher
	closed  bool
}

func (p *rpioPin) Read() (Level, error) {
	if p.pin.Read() == rpio.High {
		return High, nil
	}
	return Low, nil
}

func (p *rpioPin) Write(level Level) error {
	if level == High {
		p.pin.Write(rpio.High)
	} else {
		p.pin.Write(rpio.Low)
	}
	return nil
}

func (p *rpioPin) AttachInterrupt(edge Edge, handler func()) error {
	if p.dir != Input {
		return errors.New("edge detection requires an input pin")
	}
	var re rpio.Edge
	switch edge {
	case EdgeRising:
		re = rpio.RiseEdge
	case EdgeFalling:
		re = rpio.FallEdge
	default:
		return fmt.Errorf("unsupported edge %s", edge)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	p.watcher.halt()
	p.pin.Detect(re)
	// clear any event latched before arming
	p.pin.EdgeDetected()
	p.watcher = startWatcher(func() bool {
		time.Sleep(rpioEdgePoll)
		return p.pin.EdgeDetected()
	}, handler)
	return nil
}

func (p *rpioPin) DetachInterrupt() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.detachLocked()
	return nil
}

func (p *rpioPin) detachLocked() {
	if p.watcher == nil {
		return
	}
	p.watcher.halt()
	p.watcher = nil
	p.pin.Detect(rpio.NoEdge)
}

// Close returns the pin to input with pull-down before releasing it.
func (p *rpioPin) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	p.detachLocked()
	p.pin.Input()
	p.pin.PullDown()
	p.release()
	return nil
}
