package loop

import (
	"context"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-autotrader/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type SchedulerTestSuite struct {
	suite.Suite
}

func TestSchedulerSuite(t *testing.T) {
	suite.Run(t, new(SchedulerTestSuite))
}

func (suite *SchedulerTestSuite) TestParse() {
	tests := []struct {
		spec  string
		valid bool
	}{
		{spec: DefaultSchedule, valid: true},
		{spec: "@hourly", valid: true},
		{spec: "*/5 * * * *", valid: true},
		{spec: "", valid: false},
		{spec: "every minute", valid: false},
		{spec: "@every", valid: false},
	}

	for _, tc := range tests {
		suite.Run(tc.spec, func() {
			_, err := NewCronScheduler(tc.spec)
			if tc.valid {
				suite.NoError(err)

				return
			}

			suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
		})
	}
}

func (suite *SchedulerTestSuite) TestNext() {
	scheduler, err := NewCronScheduler("@every 30s")
	suite.Require().NoError(err)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	suite.Equal(start.Add(30*time.Second), scheduler.Next(start))
}

func (suite *SchedulerTestSuite) TestCronTicks() {
	scheduler, err := NewCronScheduler("@every 1s")
	suite.Require().NoError(err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ticks := scheduler.Ticks(ctx)

	select {
	case tick := <-ticks:
		suite.False(tick.IsZero())
	case <-time.After(3 * time.Second):
		suite.Fail("no tick within 3s")
	}

	scheduler.Stop()
	scheduler.Stop()
}

func (suite *SchedulerTestSuite) TestCronStopReleasesWatcher() {
	scheduler, err := NewCronScheduler("@hourly")
	suite.Require().NoError(err)

	// ctx stays live, so only Stop can end the watcher
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scheduler.Ticks(ctx)
	scheduler.Stop()

	select {
	case <-scheduler.watcherExited:
	case <-time.After(time.Second):
		suite.Fail("context watcher still running after Stop")
	}
}

func (suite *SchedulerTestSuite) TestManual() {
	scheduler := NewManualScheduler(2)
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	scheduler.Tick(at)
	scheduler.Finish()
	scheduler.Finish()

	ticks := scheduler.Ticks(context.Background())
	suite.Equal(at, <-ticks)

	_, ok := <-ticks
	suite.False(ok)
}
