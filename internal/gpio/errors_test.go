package gpio

import (
	"errors"
	"strings"
	"testing"
)

func TestConfigErrorMatchesSentinel(t *testing.T) {
	cause := errors.New("no such line")
	err := error(&ConfigError{ID: "LED", Err: cause})

	if !errors.Is(err, ErrHardwareConfig) {
		t.Error("expected ConfigError to match ErrHardwareConfig")
	}
	if !errors.Is(err, cause) {
		t.Error("expected ConfigError to unwrap to its cause")
	}
	if errors.Is(err, ErrInterrupt) {
		t.Error("ConfigError should not match ErrInterrupt")
	}
	if !strings.Contains(err.Error(), "LED") {
		t.Errorf("error should name the pin: %v", err)
	}
}

func TestInterruptErrorMatchesSentinel(t *testing.T) {
	cause := errors.New("busy")
	err := error(&InterruptError{ID: "15", Op: "attach", Err: cause})

	if !errors.Is(err, ErrInterrupt) {
		t.Error("expected InterruptError to match ErrInterrupt")
	}
	if !errors.Is(err, cause) {
		t.Error("expected InterruptError to unwrap to its cause")
	}
	if errors.Is(err, ErrHardwareConfig) {
		t.Error("InterruptError should not match ErrHardwareConfig")
	}
	if got := err.Error(); got != "attach interrupt on pin 15: busy" {
		t.Errorf("unexpected message: %q", got)
	}
}

func TestIOErrorWrapsBoth(t *testing.T) {
	cause := errors.New("ebadf")
	err := ioErr("15", "read", cause)
	if !errors.Is(err, ErrIO) {
		t.Error("expected ErrIO")
	}
	if !errors.Is(err, cause) {
		t.Error("expected cause")
	}
}

func TestIDOffset(t *testing.T) {
	tests := []struct {
		id   ID
		n    int
		isOK bool
	}{
		{"15", 15, true},
		{"0", 0, true},
		{"LED", 0, false},
		{"GPIO17", 0, false},
		{"-1", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		n, ok := tt.id.Offset()
		if n != tt.n || ok != tt.isOK {
			t.Errorf("ID(%q).Offset() = (%d, %v), want (%d, %v)", tt.id, n, ok, tt.n, tt.isOK)
		}
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open("bogus", "gpiochip0")
	if !errors.Is(err, ErrHardwareConfig) {
		t.Errorf("expected ErrHardwareConfig, got %v", err)
	}
}
