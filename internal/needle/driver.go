// internal/needle/driver.go
package needle

import (
	"log"
	"math"
	"sync/atomic"
)

// Driver receives one value in [0,1] per transition step. Whether that feeds
// a PWM coil or a software gauge is up to the implementation.
type Driver interface {
	Set(value float64) error
	Close() error
}

// OpenFunc opens a hardware driver. It is probed at construction time.
type OpenFunc func() (Driver, error)

// Probe tries the hardware driver and falls back to the simulated one so
// classification and scoring continue unaffected when no actuator is wired.
func Probe(open OpenFunc) Driver {
	if open == nil {
		return NewSimDriver()
	}
	drv, err := open()
	if err != nil || drv == nil {
		log.Printf("needle: hardware driver unavailable, using simulated driver: %v", err)
		return NewSimDriver()
	}
	return drv
}

// SimDriver is the software gauge used when no hardware actuator is present.
type SimDriver struct {
	valueBits atomic.Uint64
}

// NewSimDriver returns a simulated driver resting at zero.
func NewSimDriver() *SimDriver {
	return &SimDriver{}
}

// Set stores the value.
func (d *SimDriver) Set(value float64) error {
	d.valueBits.Store(math.Float64bits(value))
	return nil
}

// Value returns the last value written.
func (d *SimDriver) Value() float64 {
	return math.Float64frombits(d.valueBits.Load())
}

// Close releases nothing for the simulated driver.
func (d *SimDriver) Close() error {
	return nil
}
