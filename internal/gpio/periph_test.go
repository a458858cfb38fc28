package gpio

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	pgpio "periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

// flakyPin fails In while failIn is set.
type flakyPin struct {
	*gpiotest.Pin
	failIn atomic.Bool
}

func (p *flakyPin) In(pull pgpio.Pull, edge pgpio.Edge) error {
	if p.failIn.Load() {
		return errors.New("edge setup failed")
	}
	return p.Pin.In(pull, edge)
}

func newTestPeriphPin() (*periphPin, *flakyPin) {
	fp := &flakyPin{Pin: &gpiotest.Pin{
		N:         "GPIO17",
		Num:       17,
		Clock:     clockwork.NewRealClock(),
		EdgesChan: make(chan pgpio.Level),
	}}
	p := &periphPin{
		id:      "17",
		pin:     fp,
		dir:     Input,
		pull:    pgpio.PullUp,
		release: func() {},
	}
	return p, fp
}

func sendEdge(t *testing.T, fp *flakyPin, l pgpio.Level) {
	t.Helper()
	select {
	case fp.EdgesChan <- l:
	case <-time.After(time.Second):
		t.Fatal("no watcher waiting for edges")
	}
}

func TestPeriphAttachDeliversEdges(t *testing.T) {
	p, fp := newTestPeriphPin()
	defer p.Close()

	fired := make(chan struct{}, 4)
	if err := p.AttachInterrupt(EdgeFalling, func() { fired <- struct{}{} }); err != nil {
		t.Fatalf("AttachInterrupt: %v", err)
	}

	sendEdge(t, fp, pgpio.Low)
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("handler not called")
	}

	if err := p.DetachInterrupt(); err != nil {
		t.Fatalf("DetachInterrupt: %v", err)
	}
	if p.watcher != nil {
		t.Error("expected watcher cleared after detach")
	}
}

func TestPeriphFailedAttachKeepsArming(t *testing.T) {
	p, fp := newTestPeriphPin()
	defer p.Close()

	fired := make(chan struct{}, 4)
	if err := p.AttachInterrupt(EdgeFalling, func() { fired <- struct{}{} }); err != nil {
		t.Fatalf("AttachInterrupt: %v", err)
	}

	fp.failIn.Store(true)
	err := p.AttachInterrupt(EdgeRising, func() { t.Error("replacement handler called") })
	if err == nil {
		t.Fatal("expected attach error")
	}
	fp.failIn.Store(false)

	// The original watcher still delivers to the original handler.
	sendEdge(t, fp, pgpio.Low)
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("original handler not called after failed attach")
	}
}

func TestPeriphAttachOutputPin(t *testing.T) {
	p, _ := newTestPeriphPin()
	p.dir = Output
	defer p.Close()

	if err := p.AttachInterrupt(EdgeRising, func() {}); err == nil {
		t.Error("expected error attaching to an output pin")
	}
}

func TestPeriphClosedPin(t *testing.T) {
	p, _ := newTestPeriphPin()
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if err := p.AttachInterrupt(EdgeFalling, func() {}); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}
