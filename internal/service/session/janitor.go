package session

import (
	"context"
	"time"

	"github.com/sandevgo/edabot/pkg/log"
)

// Janitor sweeps idle sessions on a timer. Eviction also happens lazily
// on access; the sweep covers sessions nobody touches again.
type Janitor struct {
	store    *Store
	Interval time.Duration
}

func NewJanitor(store *Store, interval time.Duration) *Janitor {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Janitor{
		store:    store,
		Interval: interval,
	}
}

func (j *Janitor) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx)
	logger.Info().Dur("interval", j.Interval).Msg("starting session janitor")

	ticker := time.NewTicker(j.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if removed := j.store.Sweep(time.Now()); removed > 0 {
				logger.Debug().Int("removed", removed).Msg("swept idle sessions")
			}
		}
	}
}

func (j *Janitor) Shutdown(ctx context.Context) error {
	return nil
}
