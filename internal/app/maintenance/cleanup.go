// Package maintenance runs background jobs, currently the periodic sweep of expired
// pending registrations.
package maintenance

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/dolapkampus/backend/internal/registration"
	"github.com/dolapkampus/backend/pkg/logger"
)

const defaultSweepSpec = "@every 10m"

// Cleaner periodically purges expired pending registrations. Without the sweep,
// entries that are never verified again would linger until overwritten by a new
// submission for the same email.
type Cleaner struct {
	store    registration.Store
	cron     *cron.Cron
	now      func() time.Time
	log      *zap.Logger
	schedule string
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithNow overrides the clock used for expiry comparisons.
func WithNow(now func() time.Time) Option {
	return func(cleaner *Cleaner) {
		if now != nil {
			cleaner.now = now
		}
	}
}

// WithSchedule overrides the cron specification for the sweep.
func WithSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.schedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner over the pending-registration store.
func NewCleaner(store registration.Store, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		store:    store,
		now:      time.Now,
		schedule: defaultSweepSpec,
		log:      logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return cleaner
}

// Start registers the sweep job with the cron scheduler and launches it.
func (c *Cleaner) Start() error {
	if c.store == nil {
		return nil
	}

	if _, err := c.cron.AddFunc(c.schedule, func() {
		if err := c.RunOnce(context.Background()); err != nil {
			c.log.Warn("pending registration sweep failed", zap.Error(err))
		}
	}); err != nil {
		return err
	}

	c.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running job to complete.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce executes the sweep immediately. Used by the scheduler, by tests and during
// graceful shutdown.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if c.store == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	removed, err := c.store.DeleteExpired(ctx, c.now())
	if err != nil {
		return err
	}
	if removed > 0 {
		c.log.Info("purged expired pending registrations", zap.Int("removed", removed))
	}
	return nil
}
