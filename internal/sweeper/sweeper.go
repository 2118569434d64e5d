package sweeper

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
	"github.com/zapshare/booking-service/internal/metrics"
	"github.com/zapshare/booking-service/internal/models"
	"github.com/zapshare/booking-service/internal/repository"
)

const (
	DefaultSchedule = "0 0 * * *"

	opCompletePaid = "complete_paid"
	opPurgePending = "purge_pending"
)

// Store is the part of the booking store the sweep needs.
type Store interface {
	UpdateMany(ctx context.Context, filter repository.BookingFilter, patch map[string]any) (int64, error)
	DeleteMany(ctx context.Context, filter repository.BookingFilter) (int64, error)
}

type Result struct {
	Completed   int64
	Purged      int64
	CompleteErr error
	PurgeErr    error
}

// Sweeper marks started PAID bookings COMPLETED and deletes started PENDING
// bookings nobody answered. Both steps are idempotent.
type Sweeper struct {
	store Store
	now   func() time.Time
	cron  *cron.Cron
}

type Option func(*Sweeper)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Sweeper) { s.now = now }
}

// WithLocation evaluates the schedule in loc instead of time.Local.
func WithLocation(loc *time.Location) Option {
	return func(s *Sweeper) {
		s.cron = newCron(loc)
	}
}

func New(store Store, opts ...Option) *Sweeper {
	s := &Sweeper{
		store: store,
		now:   time.Now,
		cron:  newCron(time.Local),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newCron(loc *time.Location) *cron.Cron {
	logger := cron.PrintfLogger(log.StandardLogger())
	return cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(logger),
		// A tick that fires while the previous sweep is still running is dropped.
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
}

// Start schedules the sweep with a standard five-field cron expression.
func (s *Sweeper) Start(ctx context.Context, schedule string) error {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	if _, err := s.cron.AddFunc(schedule, func() { s.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("schedule sweep %q: %w", schedule, err)
	}
	s.cron.Start()
	log.Printf("[Sweeper] scheduled booking maintenance: %s", schedule)
	return nil
}

// Stop prevents further runs and returns a context that is done once a
// running sweep has finished.
func (s *Sweeper) Stop() context.Context {
	return s.cron.Stop()
}

// RunOnce performs one sweep. The two steps are independent: a failure in
// one is logged and does not prevent the other.
func (s *Sweeper) RunOnce(ctx context.Context) Result {
	now := s.now()
	log.Printf("[Sweeper] booking maintenance at %s", now.Format(time.RFC3339))

	var res Result

	res.Completed, res.CompleteErr = s.store.UpdateMany(ctx,
		repository.BookingFilter{State: models.StatePaid, StartedBefore: &now},
		map[string]any{"state": models.StateCompleted},
	)
	metrics.RecordSweep(opCompletePaid, res.Completed, res.CompleteErr)
	if res.CompleteErr != nil {
		log.WithError(res.CompleteErr).WithField("operation", opCompletePaid).Error("[Sweeper] failed to complete paid bookings")
	} else {
		log.WithFields(log.Fields{"operation": opCompletePaid, "affected": res.Completed}).Info("[Sweeper] completed paid bookings")
	}

	// Stale requests are reaped silently: no notification is emitted.
	res.Purged, res.PurgeErr = s.store.DeleteMany(ctx,
		repository.BookingFilter{State: models.StatePending, StartedBefore: &now},
	)
	metrics.RecordSweep(opPurgePending, res.Purged, res.PurgeErr)
	if res.PurgeErr != nil {
		log.WithError(res.PurgeErr).WithField("operation", opPurgePending).Error("[Sweeper] failed to purge pending bookings")
	} else {
		log.WithFields(log.Fields{"operation": opPurgePending, "affected": res.Purged}).Info("[Sweeper] purged pending bookings")
	}

	return res
}
