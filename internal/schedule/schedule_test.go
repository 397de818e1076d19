package schedule_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contentonrails/newsmon/internal/models"
	"github.com/contentonrails/newsmon/internal/schedule"
)

var day = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

func at(hour, minute int) time.Time {
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

// runsAt reports a run whenever one of the given timestamps falls in
// the searched window.
func runsAt(times ...time.Time) schedule.RunChecker {
	return func(from, to time.Time) (bool, error) {
		for _, t := range times {
			if !t.Before(from) && !t.After(to) {
				return true, nil
			}
		}
		return false, nil
	}
}

func noRuns(time.Time, time.Time) (bool, error) { return false, nil }

func workerSpec(t *testing.T) *schedule.Spec {
	t.Helper()
	spec, err := schedule.ParseSpec("4x_daily", []string{"06:00", "12:00", "18:00", "00:00"}, 30)
	require.NoError(t, err)
	return spec
}

func TestEvaluateOverdue(t *testing.T) {
	spec := workerSpec(t)

	// 00:00 ran, 06:00 did not; at 06:45 the 06:30 deadline has passed.
	res := spec.Evaluate(at(6, 45), runsAt(at(0, 5)))

	assert.Equal(t, models.StatusOverdue, res.Status)
	assert.Equal(t, at(6, 0), res.ScheduledAt)
	assert.Equal(t, 45, res.MinutesOverdue)
	assert.Contains(t, res.Issues, "Missed scheduled run at 06:00 UTC")
}

func TestEvaluateOnSchedule(t *testing.T) {
	spec := workerSpec(t)

	res := spec.Evaluate(at(6, 10), runsAt(at(0, 5), at(6, 5)))

	assert.Equal(t, models.StatusOnSchedule, res.Status)
	assert.Equal(t, at(6, 0), res.ScheduledAt)
	assert.Empty(t, res.Issues)
}

func TestEvaluateWaiting(t *testing.T) {
	spec := workerSpec(t)

	res := spec.Evaluate(at(3, 0), runsAt(at(0, 10)))

	assert.Equal(t, models.StatusWaiting, res.Status)
	assert.Equal(t, at(6, 0), res.NextScheduled)
	assert.Empty(t, res.Issues)
}

func TestEvaluateMidnightBoundary(t *testing.T) {
	// A 00:00 entry at 00:10 must reference today's midnight, not
	// yesterday's.
	spec, err := schedule.ParseSpec("1x_daily", []string{"00:00"}, 5)
	require.NoError(t, err)

	res := spec.Evaluate(at(0, 10), noRuns)

	assert.Equal(t, models.StatusOverdue, res.Status)
	assert.Equal(t, day, res.ScheduledAt)
	assert.Equal(t, 10, res.MinutesOverdue)
}

func TestEvaluateEarlyStartWithinLookback(t *testing.T) {
	spec := workerSpec(t)

	// A run 10 minutes before the scheduled time still counts.
	res := spec.Evaluate(at(6, 45), runsAt(at(0, 5), at(5, 50)))

	assert.Equal(t, models.StatusWaiting, res.Status)
	assert.Equal(t, at(12, 0), res.NextScheduled)
}

func TestEvaluateOverdueBeatsCurrentWindow(t *testing.T) {
	spec := workerSpec(t)

	// 06:00 was missed; being inside the 12:00 window does not hide it.
	res := spec.Evaluate(at(12, 10), runsAt(at(0, 5)))

	assert.Equal(t, models.StatusOverdue, res.Status)
	assert.Equal(t, at(6, 0), res.ScheduledAt)
}

func TestEvaluateNextRollsOverMidnight(t *testing.T) {
	spec := workerSpec(t)

	// After 18:30 the next occurrence is tomorrow's 00:00 entry.
	res := spec.Evaluate(at(19, 0), runsAt(at(0, 5), at(6, 5), at(12, 5), at(18, 5)))

	assert.Equal(t, models.StatusWaiting, res.Status)
	assert.Equal(t, day.AddDate(0, 0, 1), res.NextScheduled)
}

func TestEvaluateRunCheckError(t *testing.T) {
	spec := workerSpec(t)
	failing := func(time.Time, time.Time) (bool, error) {
		return false, errors.New("connection refused")
	}

	res := spec.Evaluate(at(6, 45), failing)

	// A failed lookup is reported as an issue, never as a missed run.
	assert.Equal(t, models.StatusWaiting, res.Status)
	require.NotEmpty(t, res.Issues)
	assert.Contains(t, res.Issues[0], "Schedule check failed")
}

func TestParseSpecRejectsBadInput(t *testing.T) {
	cases := []struct {
		name      string
		times     []string
		tolerance int
	}{
		{"no entries", nil, 30},
		{"zero tolerance", []string{"06:00"}, 0},
		{"bad format", []string{"6am"}, 30},
		{"hour out of range", []string{"24:00"}, 30},
		{"minute out of range", []string{"06:61"}, 30},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := schedule.ParseSpec("test", tc.times, tc.tolerance)
			assert.Error(t, err)
		})
	}
}
