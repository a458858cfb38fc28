package gpio

import (
	"errors"
	"fmt"
)

var (
	// ErrHardwareConfig is matched by every configuration failure: invalid
	// or unavailable pin identity, or an unsupported direction/pull.
	ErrHardwareConfig = errors.New("gpio: hardware config")

	// ErrInterrupt is matched by interrupt attach and detach failures.
	ErrInterrupt = errors.New("gpio: interrupt")

	// ErrIO is matched by read and write failures of a configured pin.
	ErrIO = errors.New("gpio: i/o")

	// ErrClosed is returned by operations on a released pin.
	ErrClosed = errors.New("gpio: pin closed")

	// ErrPinBusy is returned when a driver already owns the requested pin.
	ErrPinBusy = errors.New("gpio: pin already claimed")

	// ErrUnsupported is returned by drivers that are not available on this
	// platform.
	ErrUnsupported = errors.New("gpio: not supported on this platform")
)

// ConfigError reports a failed pin configuration.
type ConfigError struct {
	ID  ID
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configure pin %s: %v", e.ID, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

func (e *ConfigError) Is(target error) bool { return target == ErrHardwareConfig }

// InterruptError reports a failed interrupt attach or detach.
type InterruptError struct {
	ID  ID
	Op  string // "attach" or "detach"
	Err error
}

func (e *InterruptError) Error() string {
	return fmt.Sprintf("%s interrupt on pin %s: %v", e.Op, e.ID, e.Err)
}

func (e *InterruptError) Unwrap() error { return e.Err }

func (e *InterruptError) Is(target error) bool { return target == ErrInterrupt }

func configErr(id ID, format string, args ...any) error {
	return &ConfigError{ID: id, Err: fmt.Errorf(format, args...)}
}

func ioErr(id ID, op string, err error) error {
	return fmt.Errorf("%s pin %s: %w: %w", op, id, ErrIO, err)
}
