package actuator

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/sweeney/led-button/internal/gpio"
)

// sleepRecorder records requested sleeps instead of blocking.
type sleepRecorder struct {
	calls []time.Duration
}

func (r *sleepRecorder) sleep(d time.Duration) {
	r.calls = append(r.calls, d)
}

func newTestActuator(t *testing.T, opts ...Option) (*Actuator, *gpio.FakePin, *sleepRecorder) {
	t.Helper()
	d := gpio.NewFakeDriver()
	rec := &sleepRecorder{}
	opts = append([]Option{WithSleep(rec.sleep)}, opts...)
	a, err := New(d, "18", opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a, d.Pin("18"), rec
}

func TestNewDrivesOff(t *testing.T) {
	tests := []struct {
		name     string
		inverted bool
		want     gpio.Level
	}{
		{"normal", false, gpio.Low},
		{"inverted", true, gpio.High},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, p, _ := newTestActuator(t, WithInverted(tt.inverted))

			writes := p.Writes()
			if len(writes) != 1 || writes[0] != tt.want {
				t.Errorf("initial writes: got %v, want [%v]", writes, tt.want)
			}
			if a.IsOn() {
				t.Error("expected off after construction")
			}
			dir, pull := p.Config()
			if dir != gpio.Output || pull != gpio.PullNone {
				t.Errorf("config: got (%v, %v), want (out, none)", dir, pull)
			}
		})
	}
}

func TestNewInvalidPin(t *testing.T) {
	d := gpio.NewFakeDriver()
	d.SetUnavailable("LED")

	a, err := New(d, "LED")
	if !errors.Is(err, gpio.ErrHardwareConfig) {
		t.Fatalf("expected ErrHardwareConfig, got %v", err)
	}
	if a != nil {
		t.Error("expected no actuator on failure")
	}
}

func TestNewInitialWriteFailureReleasesPin(t *testing.T) {
	d := gpio.NewFakeDriver()
	p := d.Pin("18")
	p.WriteError = errors.New("simulated write error")

	_, err := New(d, "18")
	if !errors.Is(err, gpio.ErrHardwareConfig) {
		t.Fatalf("expected ErrHardwareConfig, got %v", err)
	}
	if !p.Closed() {
		t.Error("expected pin released after failed construction")
	}
}

func TestTurnOnOffLevels(t *testing.T) {
	for _, inverted := range []bool{false, true} {
		a, p, _ := newTestActuator(t, WithInverted(inverted))
		p.ResetWrites()

		if err := a.TurnOn(); err != nil {
			t.Fatalf("TurnOn: %v", err)
		}
		if err := a.TurnOff(); err != nil {
			t.Fatalf("TurnOff: %v", err)
		}

		onLevel, offLevel := gpio.High, gpio.Low
		if inverted {
			onLevel, offLevel = gpio.Low, gpio.High
		}
		want := []gpio.Level{onLevel, offLevel}
		if got := p.Writes(); !reflect.DeepEqual(got, want) {
			t.Errorf("inverted=%v: writes got %v, want %v", inverted, got, want)
		}
	}
}

func TestToggleLaw(t *testing.T) {
	for _, start := range []bool{false, true} {
		a, p, _ := newTestActuator(t)
		a.Set(start)
		p.ResetWrites()

		a.Toggle()
		a.Toggle()

		if a.IsOn() != start {
			t.Errorf("start=%v: state after two toggles is %v", start, a.IsOn())
		}
		if n := len(p.Writes()); n != 2 {
			t.Errorf("start=%v: expected 2 writes, got %d", start, n)
		}
	}
}

func TestOnToggleToggleOff(t *testing.T) {
	a, p, _ := newTestActuator(t)
	p.ResetWrites()

	a.TurnOn()
	a.Toggle()
	a.Toggle()
	a.TurnOff()

	want := []gpio.Level{gpio.High, gpio.Low, gpio.High, gpio.Low}
	if got := p.Writes(); !reflect.DeepEqual(got, want) {
		t.Errorf("writes: got %v, want %v", got, want)
	}
	if a.IsOn() {
		t.Error("expected off")
	}
}

func TestIsOnReflectsCache(t *testing.T) {
	a, p, _ := newTestActuator(t)
	a.TurnOn()

	// an external change to the pin is not observed
	p.SetLevel(gpio.Low)
	if !a.IsOn() {
		t.Error("IsOn should reflect the cached state")
	}
}

func TestBlinkWritesAndRestores(t *testing.T) {
	for _, start := range []bool{false, true} {
		for _, n := range []uint{0, 1, 3} {
			a, p, rec := newTestActuator(t)
			a.Set(start)
			p.ResetWrites()

			if err := a.Blink(n, 100*time.Millisecond); err != nil {
				t.Fatalf("Blink: %v", err)
			}

			if got := len(p.Writes()); got != int(2*n) {
				t.Errorf("start=%v n=%d: expected %d writes, got %d", start, n, 2*n, got)
			}
			if a.IsOn() != start {
				t.Errorf("start=%v n=%d: final state %v", start, n, a.IsOn())
			}
			if got := len(rec.calls); got != int(2*n) {
				t.Errorf("start=%v n=%d: expected %d sleeps, got %d", start, n, 2*n, got)
			}
			for _, d := range rec.calls {
				if d != 100*time.Millisecond {
					t.Errorf("unexpected sleep %v", d)
				}
			}
		}
	}
}

func TestBlinkWaveformFromOff(t *testing.T) {
	a, p, _ := newTestActuator(t)
	p.ResetWrites()

	a.Blink(2, DefaultBlinkInterval)

	want := []gpio.Level{gpio.High, gpio.Low, gpio.High, gpio.Low}
	if got := p.Writes(); !reflect.DeepEqual(got, want) {
		t.Errorf("writes: got %v, want %v", got, want)
	}
}

func TestBlinkWaveformFromOn(t *testing.T) {
	a, p, _ := newTestActuator(t, WithInverted(true))
	a.TurnOn()
	p.ResetWrites()

	a.Blink(2, DefaultBlinkInterval)

	// inverted: off is High, on is Low; already on for the first phase
	want := []gpio.Level{gpio.High, gpio.Low, gpio.High, gpio.Low}
	if got := p.Writes(); !reflect.DeepEqual(got, want) {
		t.Errorf("writes: got %v, want %v", got, want)
	}
	if !a.IsOn() {
		t.Error("expected on after blink")
	}
}

func TestWriteErrorKeepsCache(t *testing.T) {
	a, p, _ := newTestActuator(t)
	cause := errors.New("simulated write error")
	p.WriteError = cause

	if err := a.TurnOn(); !errors.Is(err, cause) {
		t.Fatalf("expected write error, got %v", err)
	}
	if a.IsOn() {
		t.Error("failed write should not change cached state")
	}
}

func TestClose(t *testing.T) {
	a, p, _ := newTestActuator(t)

	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !p.Closed() {
		t.Error("expected pin released")
	}
	if err := a.TurnOn(); !errors.Is(err, gpio.ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
	if err := a.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}
