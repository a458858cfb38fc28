//go:build !linux

package gpio

// ChipDriver is not available on non-Linux platforms.
type ChipDriver struct{}

// NewChipDriver returns an error on non-Linux platforms.
func NewChipDriver(chipName string) (*ChipDriver, error) {
	return nil, &ConfigError{ID: ID(chipName), Err: ErrUnsupported}
}

// Configure is not implemented on non-Linux platforms.
func (d *ChipDriver) Configure(id ID, dir Direction, pull Pull) (Handle, error) {
	return nil, &ConfigError{ID: id, Err: ErrUnsupported}
}

// Close is not implemented on non-Linux platforms.
func (d *ChipDriver) Close() error {
	return nil
}

// RPIODriver is not available on non-Linux platforms.
type RPIODriver struct{}

// NewRPIODriver returns an error on non-Linux platforms.
func NewRPIODriver() (*RPIODriver, error) {
	return nil, &ConfigError{ID: "rpio", Err: ErrUnsupported}
}

// Configure is not implemented on non-Linux platforms.
func (d *RPIODriver) Configure(id ID, dir Direction, pull Pull) (Handle, error) {
	return nil, &ConfigError{ID: id, Err: ErrUnsupported}
}

// Close is not implemented on non-Linux platforms.
func (d *RPIODriver) Close() error {
	return nil
}
