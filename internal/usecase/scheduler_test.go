package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type immediateDriver struct {
	triggers int
	stopped  bool
}

func (d *immediateDriver) Start(_ context.Context, job func(time.Time)) error {
	for i := 0; i < d.triggers; i++ {
		job(fixedNow.Add(time.Duration(i) * time.Hour))
	}
	return nil
}

func (d *immediateDriver) Stop(context.Context) error {
	d.stopped = true
	return nil
}

func TestSchedulerRunsPipelinePerTrigger(t *testing.T) {
	t.Parallel()

	src := &fakeSource{reviews: rawReviews(2)}
	driver := &immediateDriver{triggers: 3}
	sched := NewScheduler(driver, newTestPipeline(src, nil, &fakeStore{}, nil), nil)

	require.NoError(t, sched.Start(context.Background()))
	assert.Len(t, src.runIDs, 3)

	require.NoError(t, sched.Stop(context.Background()))
	assert.True(t, driver.stopped)
}

func TestSchedulerKeepsGoingAfterFailedRun(t *testing.T) {
	t.Parallel()

	src := &fakeSource{err: errors.New("browser crashed")}
	driver := &immediateDriver{triggers: 2}
	sched := NewScheduler(driver, newTestPipeline(src, nil, &fakeStore{}, nil), nil)

	require.NoError(t, sched.Start(context.Background()))
	assert.Len(t, src.runIDs, 2)
}

func TestSchedulerWithoutDriver(t *testing.T) {
	t.Parallel()

	sched := NewScheduler(nil, nil, nil)
	assert.NoError(t, sched.Start(context.Background()))
	assert.NoError(t, sched.Stop(context.Background()))
}
