package gpio

import "fmt"

// Driver backend names accepted by Open.
const (
	DriverGPIOCDev = "gpiocdev"
	DriverPeriph   = "periph"
	DriverRPIO     = "rpio"
)

// Open returns the named driver. chip is only used by the gpiocdev backend.
func Open(name, chip string) (Driver, error) {
	switch name {
	case DriverGPIOCDev, "":
		d, err := NewChipDriver(chip)
		if err != nil {
			return nil, err
		}
		return d, nil
	case DriverPeriph:
		d, err := NewPeriphDriver()
		if err != nil {
			return nil, err
		}
		return d, nil
	case DriverRPIO:
		d, err := NewRPIODriver()
		if err != nil {
			return nil, err
		}
		return d, nil
	}
	return nil, &ConfigError{ID: ID(name), Err: fmt.Errorf("unknown driver %q", name)}
}
