package scene

import (
	"context"
	"time"

	"github.com/chazu/welltube/pkg/logging"
)

// Driver calls a frame function at a fixed rate until its context ends.
type Driver struct {
	interval time.Duration
	now      func() time.Time
}

// NewDriver returns a Driver targeting fps frames per second. Values below
// 1 are raised to 1.
func NewDriver(fps int) *Driver {
	if fps < 1 {
		fps = 1
	}
	return &Driver{interval: time.Second / time.Duration(fps), now: time.Now}
}

// Interval returns the time between frames.
func (d *Driver) Interval() time.Duration { return d.interval }

// Run invokes fn with the seconds elapsed since the previous call, once per
// tick. Slow frames are not queued: a tick missed while fn runs is dropped.
// Run returns nil when ctx is done, or the first error from fn.
func (d *Driver) Run(ctx context.Context, fn func(dt float64) error) error {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	log := logging.L().With("component", "driver")
	log.Info("frame driver started", "interval", d.interval)

	last := d.now()
	for {
		select {
		case <-ctx.Done():
			log.Info("frame driver stopped")
			return nil
		case <-ticker.C:
			if ctx.Err() != nil {
				log.Info("frame driver stopped")
				return nil
			}
			now := d.now()
			dt := now.Sub(last).Seconds()
			last = now
			if err := fn(dt); err != nil {
				log.Warn("frame failed", "err", err)
				return err
			}
		}
	}
}
