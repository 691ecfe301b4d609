package devserver

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// cronParser uses standard 5-field cron expressions (minute, hour, dom, month, dow).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateSchedule reports whether expr is a usable retention schedule.
func ValidateSchedule(expr string) error {
	if _, err := cronParser.Parse(expr); err != nil {
		return fmt.Errorf("devserver: retention schedule %q: %w", expr, err)
	}
	return nil
}

// Retention periodically purges documents older than a TTL.
type Retention struct {
	store  *Store
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger
	cron   *cron.Cron
}

// NewRetention schedules purges of store on the given cron expression.
func NewRetention(store *Store, schedule string, ttl time.Duration, logger *slog.Logger) (*Retention, error) {
	if store == nil {
		return nil, fmt.Errorf("devserver: store is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("devserver: ttl must be > 0")
	}
	if logger == nil {
		logger = slog.Default()
	}
	r := &Retention{
		store:  store,
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
		cron:   cron.New(cron.WithParser(cronParser)),
	}
	if _, err := r.cron.AddFunc(schedule, func() { r.RunOnce() }); err != nil {
		return nil, fmt.Errorf("devserver: retention schedule %q: %w", schedule, err)
	}
	return r, nil
}

// Start begins the schedule in its own goroutine.
func (r *Retention) Start() { r.cron.Start() }

// Stop halts the schedule and waits for a running purge to finish.
func (r *Retention) Stop() { <-r.cron.Stop().Done() }

// RunOnce purges everything uploaded more than ttl ago.
func (r *Retention) RunOnce() (int, error) {
	n, err := r.store.Purge(r.now().Add(-r.ttl))
	if err != nil {
		r.logger.Error("devserver: retention purge", "error", err)
		return 0, err
	}
	if n > 0 {
		r.logger.Info("devserver: purged documents", "count", n, "ttl", r.ttl.String())
	}
	return n, nil
}
