package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sitecrew/timesheet-backend/internal/domain/timesheet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTimesheetService struct {
	timesheet.TimesheetService
	calls []time.Time
	err   error
}

func (s *stubTimesheetService) AutoValidateStale(_ context.Context, now time.Time) (int, error) {
	s.calls = append(s.calls, now)
	return 2, s.err
}

func TestTimesheetJobs_RunOnce(t *testing.T) {
	svc := &stubTimesheetService{}
	jobs := NewTimesheetJobs(svc, time.Hour)
	fixed := time.Date(2025, 3, 20, 1, 0, 0, 0, time.UTC)
	jobs.now = func() time.Time { return fixed }

	scheduler := NewScheduler()
	jobs.RegisterJobs(scheduler)
	require.NoError(t, scheduler.RunOnce(context.Background()))

	require.Len(t, svc.calls, 1)
	assert.Equal(t, fixed, svc.calls[0])
}

func TestTimesheetJobs_PropagatesError(t *testing.T) {
	svc := &stubTimesheetService{err: errors.New("db down")}
	jobs := NewTimesheetJobs(svc, time.Hour)

	assert.EqualError(t, jobs.AutoValidateStale(context.Background()), "db down")
}

func TestScheduler_StartStop(t *testing.T) {
	scheduler := NewScheduler()
	ran := make(chan struct{}, 1)
	scheduler.AddJob("tick", time.Hour, func(ctx context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	})

	scheduler.Start()
	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("job did not run on start")
	}
	scheduler.Stop()
}

func TestScheduler_RunOnceJoinsFailuresAndRecoversPanics(t *testing.T) {
	scheduler := NewScheduler()
	var ran []string
	scheduler.AddJob("fails", time.Hour, func(ctx context.Context) error {
		ran = append(ran, "fails")
		return errors.New("boom")
	})
	scheduler.AddJob("panics", time.Hour, func(ctx context.Context) error {
		ran = append(ran, "panics")
		panic("nil map")
	})
	scheduler.AddJob("ok", time.Hour, func(ctx context.Context) error {
		ran = append(ran, "ok")
		return nil
	})

	err := scheduler.RunOnce(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "fails: boom")
	assert.Contains(t, err.Error(), "panicked: nil map")
	assert.Equal(t, []string{"fails", "panics", "ok"}, ran)
}

func TestScheduler_SkipsOverlappingRun(t *testing.T) {
	scheduler := NewScheduler()
	scheduler.AddJob("slow", time.Hour, func(ctx context.Context) error { return nil })
	job := scheduler.jobs[0]
	job.running.Store(true)

	ran, err := scheduler.tryRun(context.Background(), job)

	assert.False(t, ran)
	assert.NoError(t, err)
}

func TestScheduler_JobTimeoutApplied(t *testing.T) {
	scheduler := NewScheduler()
	var deadline time.Time
	scheduler.AddJobWithTimeout("bounded", time.Hour, time.Minute, func(ctx context.Context) error {
		deadline, _ = ctx.Deadline()
		return nil
	})

	require.NoError(t, scheduler.RunOnce(context.Background()))
	assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)
}
