package sim

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/mantaview/internal/logger"
)

// Stepper advances a simulation by one step.
type Stepper interface {
	Step()
}

// Run steps s every interval until ctx is cancelled. Cancellation is the
// normal way to stop and returns nil. A non-positive interval steps as
// fast as possible, still checking ctx between steps.
func Run(ctx context.Context, s Stepper, interval time.Duration) error {
	log := logger.Named("sim")
	log.Info("simulation started", zap.Duration("interval", interval))

	var tick <-chan time.Time
	if interval > 0 {
		t := time.NewTicker(interval)
		defer t.Stop()
		tick = t.C
	}

	var steps uint64
	for {
		if tick != nil {
			select {
			case <-ctx.Done():
				log.Info("simulation stopped", zap.Uint64("steps", steps))
				return nil
			case <-tick:
			}
		} else if ctx.Err() != nil {
			log.Info("simulation stopped", zap.Uint64("steps", steps))
			return nil
		}
		s.Step()
		steps++
	}
}
