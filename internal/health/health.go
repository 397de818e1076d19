package health

import (
	"fmt"
	"time"

	"github.com/contentonrails/newsmon/internal/models"
	"github.com/contentonrails/newsmon/internal/schedule"
)

const (
	// WorkerWindow is the trailing window of worker runs considered per cycle.
	WorkerWindow = 2 * time.Hour
	// PublisherWindow is the trailing window of newsletters considered per cycle.
	PublisherWindow = 24 * time.Hour

	// minSuccessRate is the worker success-rate floor in percent.
	// Exactly 80% is still healthy.
	minSuccessRate = 80.0
	// maxGenerationAge is how stale the latest newsletter may be
	// before the publisher counts as degraded.
	maxGenerationAge = 25 * time.Hour
)

// AggregateWorker turns worker activity into a verdict. The schedule
// cross-check is applied separately via Combine.
func AggregateWorker(now time.Time, activity models.WorkerActivity) models.Verdict {
	v := models.Verdict{
		Service:     "worker",
		Status:      models.StatusHealthy,
		RecentRuns:  activity.RecentRuns,
		SuccessRate: activity.SuccessRate,
		LastRun:     activity.LastRun,
		Issues:      append([]string(nil), activity.Issues...),
		CheckedAt:   now.UTC(),
	}

	if activity.RecentRuns == 0 {
		v.Status = models.StatusInactive
		v.Issues = append(v.Issues, "No recent worker runs found")
		return v
	}
	if activity.SuccessRate < minSuccessRate {
		v.Status = models.StatusDegraded
		v.Issues = append(v.Issues, fmt.Sprintf("Low success rate: %.1f%%", activity.SuccessRate))
	}
	return v
}

// AggregatePublisher turns publisher activity into a verdict. Freshness
// is judged from the single most recent generation timestamp.
func AggregatePublisher(now time.Time, activity models.PublisherActivity) models.Verdict {
	v := models.Verdict{
		Service:    "publisher",
		Status:     models.StatusHealthy,
		RecentRuns: activity.RecentNewsletters,
		LastRun:    activity.LastGeneration,
		Issues:     append([]string(nil), activity.Issues...),
		CheckedAt:  now.UTC(),
	}

	if activity.RecentNewsletters == 0 {
		v.Status = models.StatusInactive
		v.Issues = append(v.Issues, "No recent newsletter generation")
		return v
	}
	if activity.LastGeneration == nil {
		v.Status = models.StatusDegraded
		v.Issues = append(v.Issues, "Recent newsletters have no generation timestamp")
		return v
	}
	if age := now.UTC().Sub(activity.LastGeneration.UTC()); age > maxGenerationAge {
		v.Status = models.StatusDegraded
		v.Issues = append(v.Issues, fmt.Sprintf("No generation in %.1f hours", age.Hours()))
	}
	return v
}

// ErrorVerdict is the verdict for a service whose check itself failed.
func ErrorVerdict(now time.Time, service string, err error) models.Verdict {
	return models.Verdict{
		Service:   service,
		Status:    models.StatusError,
		Issues:    []string{fmt.Sprintf("Health check failed: %v", err)},
		CheckedAt: now.UTC(),
	}
}

// Combine folds a schedule result into a health verdict. Schedule
// problems only ever degrade the verdict, never upgrade it.
func Combine(v models.Verdict, sched schedule.Result) models.Verdict {
	v.Issues = append(v.Issues, sched.Issues...)
	if !sched.NextScheduled.IsZero() {
		next := sched.NextScheduled
		v.NextScheduled = &next
	}
	if (sched.Status == models.StatusOverdue || len(sched.Issues) > 0) && v.Status == models.StatusHealthy {
		v.Status = models.StatusDegraded
	}
	return v
}
