package loop

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rxtech-lab/argo-autotrader/pkg/errors"
)

// DefaultSchedule matches a one minute polling cadence.
const DefaultSchedule = "@every 60s"

// Scheduler delivers the ticks that drive the control loop.
type Scheduler interface {
	// Ticks starts the scheduler and returns its tick channel. Ticks stop
	// when ctx is cancelled or Stop is called.
	Ticks(ctx context.Context) <-chan time.Time
	// Stop releases the scheduler. It is safe to call more than once.
	Stop()
}

// CronScheduler ticks on a cron spec. Ticks that arrive while the previous
// one is still pending are coalesced.
type CronScheduler struct {
	spec     string
	schedule cron.Schedule
	cron     *cron.Cron
	ticks    chan time.Time
	stopOnce sync.Once

	// done is closed by Stop and releases the context watcher.
	done          chan struct{}
	watcherExited chan struct{}
}

// NewCronScheduler parses spec, which accepts the standard five field format
// and descriptors such as "@every 30s" or "@hourly".
func NewCronScheduler(spec string) (*CronScheduler, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "invalid schedule %q", spec)
	}

	return &CronScheduler{
		spec:     spec,
		schedule: schedule,
		cron:     cron.New(),
		ticks:    make(chan time.Time, 1),
		done:     make(chan struct{}),
	}, nil
}

// Spec returns the schedule expression.
func (s *CronScheduler) Spec() string {
	return s.spec
}

// Next returns the first activation after t.
func (s *CronScheduler) Next(t time.Time) time.Time {
	return s.schedule.Next(t)
}

func (s *CronScheduler) Ticks(ctx context.Context) <-chan time.Time {
	s.cron.Schedule(s.schedule, cron.FuncJob(func() {
		select {
		case s.ticks <- time.Now():
		default:
		}
	}))
	s.cron.Start()

	exited := make(chan struct{})
	s.watcherExited = exited

	go func() {
		defer close(exited)

		select {
		case <-ctx.Done():
			s.Stop()
		case <-s.done:
		}
	}()

	return s.ticks
}

func (s *CronScheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
		<-s.cron.Stop().Done()
	})
}

// ManualScheduler ticks only when Tick is called. Used by tests and the
// single-shot command.
type ManualScheduler struct {
	ticks     chan time.Time
	closeOnce sync.Once
}

func NewManualScheduler(buffer int) *ManualScheduler {
	return &ManualScheduler{ticks: make(chan time.Time, buffer)}
}

// Tick queues a tick. It blocks when the buffer is full.
func (s *ManualScheduler) Tick(t time.Time) {
	s.ticks <- t
}

// Finish closes the tick channel. A running loop returns once the queued
// ticks are consumed.
func (s *ManualScheduler) Finish() {
	s.closeOnce.Do(func() { close(s.ticks) })
}

func (s *ManualScheduler) Ticks(context.Context) <-chan time.Time {
	return s.ticks
}

func (s *ManualScheduler) Stop() {}

var (
	_ Scheduler = (*CronScheduler)(nil)
	_ Scheduler = (*ManualScheduler)(nil)
)
