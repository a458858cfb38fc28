//go:build linux

package gpio

import (
	"errors"
	"fmt"
	"sync"

	"github.com/warthog618/go-gpiocdev"
)

// Consumer is the label attached to requested lines.
const Consumer = "led-button"

// ChipDriver configures lines using the Linux GPIO character device.
// Numeric IDs are offsets on the driver's chip; other IDs are looked up by
// line name across all chips, first match wins.
type ChipDriver struct {
	chip *gpiocdev.Chip

	mu    sync.Mutex
	owned map[string]bool
}

// NewChipDriver opens the named chip (e.g. "gpiochip0").
func NewChipDriver(chipName string) (*ChipDriver, error) {
	chip, err := gpiocdev.NewChip(chipName, gpiocdev.WithConsumer(Consumer))
	if err != nil {
		return nil, &ConfigError{ID: ID(chipName), Err: fmt.Errorf("open gpio chip: %w", err)}
	}
	return &ChipDriver{
		chip:  chip,
		owned: make(map[string]bool),
	}, nil
}

// Configure requests the line as input (with bias and an event handler)
// or as output driven low.
func (d *ChipDriver) Configure(id ID, dir Direction, pull Pull) (Handle, error) {
	chipName, offset, err := d.resolve(id)
	if err != nil {
		return nil, &ConfigError{ID: id, Err: err}
	}

	key := fmt.Sprintf("%s:%d", chipName, offset)
	if !d.claim(key) {
		return nil, &ConfigError{ID: id, Err: ErrPinBusy}
	}

	l := &chipLine{id: id, dir: dir, release: func() { d.unclaim(key) }}

	var opts []gpiocdev.LineReqOption
	switch dir {
	case Input:
		bias, err := biasOption(pull)
		if err != nil {
			d.unclaim(key)
			return nil, &ConfigError{ID: id, Err: err}
		}
		opts = append(opts, gpiocdev.AsInput, bias, gpiocdev.WithEventHandler(l.onEvent))
	case Output:
		if pull != PullNone {
			d.unclaim(key)
			return nil, configErr(id, "pull %s not supported on output", pull)
		}
		opts = append(opts, gpiocdev.AsOutput(0))
	default:
		d.unclaim(key)
		return nil, configErr(id, "unsupported direction %s", dir)
	}

	var line *gpiocdev.Line
	if chipName == d.chip.Name {
		line, err = d.chip.RequestLine(offset, opts...)
	} else {
		opts = append(opts, gpiocdev.WithConsumer(Consumer))
		line, err = gpiocdev.RequestLine(chipName, offset, opts...)
	}
	if err != nil {
		d.unclaim(key)
		return nil, &ConfigError{ID: id, Err: fmt.Errorf("request line %s:%d: %w", chipName, offset, err)}
	}
	l.line = line
	return l, nil
}

func (d *ChipDriver) resolve(id ID) (string, int, error) {
	if id == "" {
		return "", 0, errors.New("empty pin identity")
	}
	if offset, ok := id.Offset(); ok {
		if offset >= d.chip.Lines() {
			return "", 0, fmt.Errorf("offset %d out of range for %s (%d lines)", offset, d.chip.Name, d.chip.Lines())
		}
		return d.chip.Name, offset, nil
	}
	chipName, offset, err := findNamedLine(gpiocdev.Chips(), openCdevChip, string(id))
	if err != nil {
		return "", 0, fmt.Errorf("find line %q: %w", id, err)
	}
	return chipName, offset, nil
}

// cdevChip adapts a gpiocdev chip for line name lookup.
type cdevChip struct {
	*gpiocdev.Chip
}

func (c cdevChip) LineName(offset int) (string, error) {
	info, err := c.LineInfo(offset)
	if err != nil {
		return "", err
	}
	return info.Name, nil
}

func openCdevChip(name string) (lineNamer, error) {
	c, err := gpiocdev.NewChip(name, gpiocdev.WithConsumer(Consumer))
	if err != nil {
		return nil, err
	}
	return cdevChip{c}, nil
}

func (d *ChipDriver) claim(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.owned[key] {
		return false
	}
	d.owned[key] = true
	return true
}

func (d *ChipDriver) unclaim(key string) {
	d.mu.Lock()
	delete(d.owned, key)
	d.mu.Unlock()
}

// Close releases the chip. Lines already requested stay valid until closed.
func (d *ChipDriver) Close() error {
	if err := d.chip.Close(); err != nil {
		return fmt.Errorf("close chip: %w", err)
	}
	return nil
}

func biasOption(pull Pull) (gpiocdev.LineReqOption, error) {
	switch pull {
	case PullUp:
		return gpiocdev.WithPullUp, nil
	case PullDown:
		return gpiocdev.WithPullDown, nil
	case PullNone:
		return gpiocdev.WithBiasDisabled, nil
	}
	return nil, fmt.Errorf("unsupported pull %s", pull)
}

// chipLine is a requested line. Edge events are delivered on gpiocdev's
// watcher goroutine, which is the interrupt context for this driver.
type chipLine struct {
	id      ID
	dir     Direction
	line    *gpiocdev.Line
	release func()

	mu       sync.Mutex
	edge     Edge
	handler  func()
	attached bool
	closed   bool
}

func (l *chipLine) onEvent(evt gpiocdev.LineEvent) {
	l.mu.Lock()
	h, edge, armed := l.handler, l.edge, l.attached
	l.mu.Unlock()

	if !armed || h == nil {
		return
	}
	switch {
	case evt.Type == gpiocdev.LineEventRisingEdge && edge == EdgeRising,
		evt.Type == gpiocdev.LineEventFallingEdge && edge == EdgeFalling:
		h()
	}
}

func (l *chipLine) Read() (Level, error) {
	v, err := l.line.Value()
	if err != nil {
		return Low, ioErr(l.id, "read", err)
	}
	if v != 0 {
		return High, nil
	}
	return Low, nil
}

func (l *chipLine) Write(level Level) error {
	if err := l.line.SetValue(int(level)); err != nil {
		return ioErr(l.id, "write", err)
	}
	return nil
}

func (l *chipLine) AttachInterrupt(edge Edge, handler func()) error {
	if l.dir != Input {
		return errors.New("edge detection requires an input line")
	}
	var opt gpiocdev.LineConfigOption
	switch edge {
	case EdgeRising:
		opt = gpiocdev.WithRisingEdge
	case EdgeFalling:
		opt = gpiocdev.WithFallingEdge
	default:
		return fmt.Errorf("unsupported edge %s", edge)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrClosed
	}
	if err := l.line.Reconfigure(opt); err != nil {
		return fmt.Errorf("reconfigure edge detection: %w", err)
	}
	l.edge = edge
	l.handler = handler
	l.attached = true
	return nil
}

func (l *chipLine) DetachInterrupt() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.detachLocked()
}

func (l *chipLine) detachLocked() error {
	if !l.attached {
		return nil
	}
	if err := l.line.Reconfigure(gpiocdev.WithoutEdges); err != nil {
		return fmt.Errorf("disable edge detection: %w", err)
	}
	l.attached = false
	l.handler = nil
	return nil
}

// Close detaches edge detection and reconfigures the line to input with
// pull-down (matching Pi boot defaults) before releasing it.
func (l *chipLine) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true

	var errs []error
	if err := l.detachLocked(); err != nil {
		errs = append(errs, err)
	}
	if err := l.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
		errs = append(errs, fmt.Errorf("reconfigure pin %s: %w", l.id, err))
	}
	if err := l.line.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close pin %s: %w", l.id, err))
	}
	l.release()
	return errors.Join(errs...)
}
