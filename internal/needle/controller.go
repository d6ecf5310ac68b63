// internal/needle/controller.go
// Package needle drives the analog indicator toward target deflections on a
// worker goroutine, independent of the input loop.
package needle

import (
	"errors"
	"log"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/woohung/morse-game/internal/recovery"
)

var (
	// ErrInvalidBaseline indicates the baseline force must be within [0,1]
	ErrInvalidBaseline = errors.New("baseline force must be between 0.0 and 1.0")
	// ErrInvalidAmplitude indicates amplitudes must be within [0,1]
	ErrInvalidAmplitude = errors.New("amplitudes must be between 0.0 and 1.0")
	// ErrInvalidSteps indicates the transition step count must be positive
	ErrInvalidSteps = errors.New("transition steps must be positive")
	// ErrInvalidTransition indicates transition durations must be positive
	ErrInvalidTransition = errors.New("transition durations must be positive")
	// ErrInvalidJoinTimeout indicates the join timeout must be positive
	ErrInvalidJoinTimeout = errors.New("join timeout must be positive")
)

// Config holds configuration for the needle controller.
// All adjustable values come from the application config file.
type Config struct {
	// BaselineForce is the resting deflection applied by the pull-back bias (from config: baseline_force)
	BaselineForce float64
	// DotAmplitude is the deflection confirming a dot (from config: dot_amplitude)
	DotAmplitude float64
	// DashAmplitude is the deflection confirming a dash (from config: dash_amplitude)
	DashAmplitude float64
	// Steps is the fixed number of interpolation steps per transition (from config: transition_steps)
	Steps int
	// DotTransition is how long the dot kick takes (from config: dot_transition)
	DotTransition time.Duration
	// DashTransition is how long the dash kick takes, longer than the dot (from config: dash_transition)
	DashTransition time.Duration
	// ReleaseTransition is how long the return to baseline takes (from config: release_transition)
	ReleaseTransition time.Duration
	// JoinTimeout bounds how long a superseding command waits for the previous
	// transition worker (from config: join_timeout)
	JoinTimeout time.Duration
}

// Validate checks that all settings are within acceptable ranges.
func (c Config) Validate() error {
	if c.BaselineForce < 0 || c.BaselineForce > 1 {
		return ErrInvalidBaseline
	}
	if c.DotAmplitude < 0 || c.DotAmplitude > 1 || c.DashAmplitude < 0 || c.DashAmplitude > 1 {
		return ErrInvalidAmplitude
	}
	if c.Steps <= 0 {
		return ErrInvalidSteps
	}
	if c.DotTransition <= 0 || c.DashTransition <= 0 || c.ReleaseTransition <= 0 {
		return ErrInvalidTransition
	}
	if c.JoinTimeout <= 0 {
		return ErrInvalidJoinTimeout
	}
	return nil
}

// Controller owns the actuator state. The input loop posts commands; the
// transition worker is the only other writer of the output value. Exactly one
// transition is active at a time.
type Controller struct {
	config Config
	driver Driver

	mu         sync.Mutex
	keyPressed bool
	pullback   bool

	// In-flight transition lifecycle, guarded by mu.
	stopCh chan struct{}
	doneCh chan struct{}

	// Output value as float64 bits. Written by the worker and by command
	// ingestion; read lock-free for diagnostics.
	valueBits atomic.Uint64
}

// New creates a controller resting at the baseline deflection. A nil driver
// degrades to the simulated driver.
func New(cfg Config, driver Driver) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if driver == nil {
		driver = NewSimDriver()
	}
	c := &Controller{
		config:   cfg,
		driver:   driver,
		pullback: true,
	}
	c.setValue(cfg.BaselineForce)
	return c, nil
}

// KeyPressed cancels any in-flight transition, disables the pull-back bias
// and immediately deflects to the dot amplitude. The symbol type is not yet
// known at key-down, so the dot amplitude is provisional.
func (c *Controller) KeyPressed() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancelTransitionLocked()
	c.keyPressed = true
	c.pullback = false
	c.setValue(c.config.DotAmplitude)
}

// KeyReleased snaps the value to zero and re-enables the pull-back bias,
// returning smoothly toward the baseline.
func (c *Controller) KeyReleased() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancelTransitionLocked()
	c.keyPressed = false
	c.pullback = true
	c.setValue(0)
	c.startTransitionLocked(c.config.BaselineForce, c.config.ReleaseTransition)
}

// ApplyDot kicks the needle toward the dot amplitude. A stray command after
// release is a no-op.
func (c *Controller) ApplyDot() {
	c.applyAmplitude(c.config.DotAmplitude, c.config.DotTransition)
}

// ApplyDash kicks the needle toward the dash amplitude over a longer
// transition than the dot.
func (c *Controller) ApplyDash() {
	c.applyAmplitude(c.config.DashAmplitude, c.config.DashTransition)
}

func (c *Controller) applyAmplitude(target float64, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.keyPressed {
		return
	}
	c.cancelTransitionLocked()
	c.startTransitionLocked(target, duration)
}

// ForceReset unconditionally cancels transitions and restores the
// baseline-biased resting state. Used on game start/end and detected drift.
func (c *Controller) ForceReset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancelTransitionLocked()
	c.keyPressed = false
	c.pullback = true
	c.setValue(c.config.BaselineForce)
}

// Value returns the current output value. Diagnostics only.
func (c *Controller) Value() float64 {
	return math.Float64frombits(c.valueBits.Load())
}

// IsKeyPressed reports whether the controller believes the key is down.
func (c *Controller) IsKeyPressed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.keyPressed
}

// PullbackActive reports whether the idle pull-back bias is engaged.
func (c *Controller) PullbackActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pullback
}

// Close cancels any transition and releases the driver.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelTransitionLocked()
	c.setValue(0)
	return c.driver.Close()
}

// cancelTransitionLocked stops the in-flight worker and joins it with a
// bounded timeout. A timeout is logged, not escalated; the next command
// proceeds on the possibly stale current value.
func (c *Controller) cancelTransitionLocked() {
	if c.stopCh == nil {
		return
	}
	close(c.stopCh)
	select {
	case <-c.doneCh:
	case <-time.After(c.config.JoinTimeout):
		log.Printf("needle: transition worker join timed out after %v", c.config.JoinTimeout)
	}
	c.stopCh = nil
	c.doneCh = nil
}

// startTransitionLocked launches the worker interpolating linearly from the
// current value to target over a fixed step count. The caller must have
// cancelled any previous transition.
func (c *Controller) startTransitionLocked(target float64, duration time.Duration) {
	stop := make(chan struct{})
	done := make(chan struct{})
	c.stopCh = stop
	c.doneCh = done

	start := c.Value()
	steps := c.config.Steps
	stepDelay := duration / time.Duration(steps)

	go func() {
		defer close(done)
		defer recovery.HandlePanicFunc(nil)

		for i := 1; i <= steps; i++ {
			select {
			case <-stop:
				return
			case <-time.After(stepDelay):
			}
			frac := float64(i) / float64(steps)
			c.setValue(start + (target-start)*frac)
		}
	}()
}

// setValue clamps, stores and forwards the value to the driver.
func (c *Controller) setValue(v float64) {
	v = clamp(v)
	c.valueBits.Store(math.Float64bits(v))
	if err := c.driver.Set(v); err != nil {
		log.Printf("needle: driver set: %v", err)
	}
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
