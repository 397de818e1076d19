package schedule

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/contentonrails/newsmon/internal/models"
)

// Lookback is how far before a scheduled time the run search extends,
// to tolerate processes that start a little early.
const Lookback = 15 * time.Minute

// rules need a fixed start well before any evaluation window.
var ruleEpoch = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

// Spec is an immutable expected-run schedule: a set of times of day (UTC)
// with a shared delay tolerance. Each entry is compiled to a daily
// recurrence rule so occurrence and next-run math goes through rrule.
type Spec struct {
	Frequency string
	Times     []string
	Tolerance time.Duration

	rules []*rrule.RRule
}

// ParseSpec compiles "HH:MM" UTC entries into a Spec.
func ParseSpec(frequency string, times []string, toleranceMinutes int) (*Spec, error) {
	if len(times) == 0 {
		return nil, fmt.Errorf("schedule needs at least one time entry")
	}
	if toleranceMinutes <= 0 {
		return nil, fmt.Errorf("schedule tolerance must be > 0 minutes, got %d", toleranceMinutes)
	}

	spec := &Spec{
		Frequency: frequency,
		Times:     times,
		Tolerance: time.Duration(toleranceMinutes) * time.Minute,
	}
	for _, entry := range times {
		hour, minute, err := parseTimeOfDay(entry)
		if err != nil {
			return nil, err
		}
		rule, err := rrule.NewRRule(rrule.ROption{
			Freq:     rrule.DAILY,
			Dtstart:  ruleEpoch,
			Byhour:   []int{hour},
			Byminute: []int{minute},
			Bysecond: []int{0},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to build recurrence for %q: %w", entry, err)
		}
		spec.rules = append(spec.rules, rule)
	}
	return spec, nil
}

func parseTimeOfDay(entry string) (hour, minute int, err error) {
	parts := strings.Split(entry, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid schedule time %q, expected HH:MM", entry)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in schedule time %q", entry)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in schedule time %q", entry)
	}
	return hour, minute, nil
}

// RunChecker reports whether the monitored process ran at least once
// inside [from, to].
type RunChecker func(from, to time.Time) (bool, error)

// Result is the schedule-adherence verdict for one evaluation instant.
type Result struct {
	Status         models.Status
	ScheduledAt    time.Time
	MinutesOverdue int
	NextScheduled  time.Time
	Issues         []string
}

// Evaluate checks now against the spec's occurrences since midnight UTC.
// Occurrences are always resolved against the current UTC day, so a
// midnight entry refers to today's 00:00, never yesterday's.
//
// An occurrence whose deadline has passed without an observed run in
// [occurrence-Lookback, deadline] makes the result overdue; the most
// recent miss is the one reported. Failing that, an occurrence whose
// tolerance window contains now makes the result on_schedule. Otherwise
// the result is waiting, carrying the next occurrence.
func (s *Spec) Evaluate(now time.Time, ranInWindow RunChecker) Result {
	now = now.UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var occurrences []time.Time
	for _, rule := range s.rules {
		occurrences = append(occurrences, rule.Between(dayStart, now, true)...)
	}
	sort.Slice(occurrences, func(i, j int) bool { return occurrences[i].Before(occurrences[j]) })

	res := Result{NextScheduled: s.Next(now)}

	var lastMissed, lastInWindow time.Time
	for _, occ := range occurrences {
		deadline := occ.Add(s.Tolerance)
		if now.After(deadline) {
			ran, err := ranInWindow(occ.Add(-Lookback), deadline)
			if err != nil {
				res.Issues = append(res.Issues, fmt.Sprintf("Schedule check failed for %s UTC: %v",
					occ.Format("15:04"), err))
				continue
			}
			if !ran {
				res.Issues = append(res.Issues, fmt.Sprintf("Missed scheduled run at %s UTC",
					occ.Format("15:04")))
				lastMissed = occ
			}
		} else if !now.Before(occ) {
			lastInWindow = occ
		}
	}

	switch {
	case !lastMissed.IsZero():
		res.Status = models.StatusOverdue
		res.ScheduledAt = lastMissed
		res.MinutesOverdue = int(now.Sub(lastMissed).Minutes())
	case !lastInWindow.IsZero():
		res.Status = models.StatusOnSchedule
		res.ScheduledAt = lastInWindow
	default:
		res.Status = models.StatusWaiting
	}
	return res
}

// Next returns the earliest occurrence strictly after now.
func (s *Spec) Next(now time.Time) time.Time {
	var next time.Time
	for _, rule := range s.rules {
		candidate := rule.After(now.UTC(), false)
		if candidate.IsZero() {
			continue
		}
		if next.IsZero() || candidate.Before(next) {
			next = candidate
		}
	}
	return next
}
