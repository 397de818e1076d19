package monitor

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/contentonrails/newsmon/internal/alert"
	"github.com/contentonrails/newsmon/internal/health"
	"github.com/contentonrails/newsmon/internal/models"
	"github.com/contentonrails/newsmon/internal/schedule"
	"github.com/contentonrails/newsmon/internal/sink"
	"github.com/contentonrails/newsmon/internal/source"
)

// Options wires a Monitor together. Notifier may be nil when email
// alerting is disabled; status recording still happens.
type Options struct {
	Source            source.Source
	Sink              sink.Sink
	Notifier          alert.Notifier
	Gate              *alert.Gate
	WorkerSchedule    *schedule.Spec
	PublisherSchedule *schedule.Spec
	Interval          time.Duration
	FailureBackoff    time.Duration
	Now               func() time.Time
}

// Monitor runs the evaluation cycle over all monitored services. All
// mutable state is owned by the single loop goroutine; the verdicts map
// is guarded only because the status endpoint reads it.
type Monitor struct {
	source            source.Source
	sink              sink.Sink
	notifier          alert.Notifier
	gate              *alert.Gate
	workerSchedule    *schedule.Spec
	publisherSchedule *schedule.Spec
	interval          time.Duration
	backoff           time.Duration
	now               func() time.Time

	mu       sync.RWMutex
	verdicts map[string]models.Verdict
}

func New(opts Options) *Monitor {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Monitor{
		source:            opts.Source,
		sink:              opts.Sink,
		notifier:          opts.Notifier,
		gate:              opts.Gate,
		workerSchedule:    opts.WorkerSchedule,
		publisherSchedule: opts.PublisherSchedule,
		interval:          opts.Interval,
		backoff:           opts.FailureBackoff,
		now:               now,
		verdicts:          make(map[string]models.Verdict),
	}
}

// Run executes monitoring cycles until ctx is cancelled. A failed cycle
// is alerted and retried after the failure backoff instead of the
// normal interval; the loop itself never exits on an error.
func (m *Monitor) Run(ctx context.Context) {
	log.Info().Dur("interval", m.interval).Bool("email_alerts", m.notifier != nil).
		Msg("Monitoring service started")
	m.sendStartupNotice(ctx)

	for {
		delay := m.interval
		if err := m.runCycleSafe(ctx); err != nil {
			log.Error().Err(err).Msg("Monitoring cycle failed")
			m.alert(ctx, "monitoring", "Monitoring System Error",
				fmt.Sprintf("Monitoring cycle failed: %v", err))
			delay = m.backoff
		}

		log.Info().Dur("sleep", delay).Msg("Monitoring cycle complete, sleeping")
		select {
		case <-ctx.Done():
			log.Info().Msg("Monitoring service stopped")
			return
		case <-time.After(delay):
		}
	}
}

// runCycleSafe converts a panicking cycle into an error so the loop
// keeps running.
func (m *Monitor) runCycleSafe(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("monitoring cycle panicked: %v", r)
		}
	}()
	return m.RunCycle(ctx)
}

// RunCycle performs one evaluation pass: heartbeat, optional system
// check, then worker and publisher checks. Individual sink or notifier
// failures are logged and do not fail the cycle.
func (m *Monitor) RunCycle(ctx context.Context) error {
	log.Info().Msg("Starting monitoring cycle")

	if err := m.sink.Heartbeat(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to record monitoring heartbeat")
	}

	if checker, ok := m.source.(source.SystemChecker); ok {
		if err := m.checkSystem(ctx, checker); err != nil {
			return err
		}
	}

	workerVerdict := m.checkWorker(ctx)
	m.finishCheck(ctx, workerVerdict)

	publisherVerdict := m.checkPublisher(ctx)
	m.finishCheck(ctx, publisherVerdict)

	log.Info().
		Str("worker", string(workerVerdict.Status)).
		Str("publisher", string(publisherVerdict.Status)).
		Msg("Monitoring cycle finished")
	return nil
}

// Verdicts returns the most recent verdict per service, for the status
// endpoint.
func (m *Monitor) Verdicts() []models.Verdict {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Verdict, 0, len(m.verdicts))
	for _, v := range m.verdicts {
		out = append(out, v)
	}
	return out
}

func (m *Monitor) checkSystem(ctx context.Context, checker source.SystemChecker) error {
	status, err := checker.SystemStatus(ctx)
	if err != nil {
		m.alert(ctx, "monitoring", "API Connection Failed",
			fmt.Sprintf("Cannot reach the newsletter API: %v", err))
		return fmt.Errorf("system status check failed: %w", err)
	}
	log.Info().Str("status", string(status.Status)).Msg("System health checked")
	return nil
}

func (m *Monitor) checkWorker(ctx context.Context) models.Verdict {
	now := m.now()
	activity, err := m.source.WorkerActivity(ctx, now, health.WorkerWindow)
	if err != nil {
		log.Error().Err(err).Msg("Worker health check failed")
		return health.ErrorVerdict(now, source.ServiceWorker, err)
	}

	verdict := health.AggregateWorker(now, activity)
	sched := m.workerSchedule.Evaluate(now, m.runChecker(ctx, source.ServiceWorker))
	verdict = health.Combine(verdict, sched)

	log.Info().Str("status", string(verdict.Status)).
		Float64("success_rate", verdict.SuccessRate).
		Int("recent_runs", verdict.RecentRuns).
		Msg("Worker health checked")
	return verdict
}

func (m *Monitor) checkPublisher(ctx context.Context) models.Verdict {
	now := m.now()
	activity, err := m.source.PublisherActivity(ctx, now, health.PublisherWindow)
	if err != nil {
		log.Error().Err(err).Msg("Publisher health check failed")
		return health.ErrorVerdict(now, source.ServicePublisher, err)
	}

	verdict := health.AggregatePublisher(now, activity)
	sched := m.publisherSchedule.Evaluate(now, m.runChecker(ctx, source.ServicePublisher))
	verdict = health.Combine(verdict, sched)

	log.Info().Str("status", string(verdict.Status)).
		Int("recent_newsletters", verdict.RecentRuns).
		Msg("Publisher health checked")
	return verdict
}

func (m *Monitor) runChecker(ctx context.Context, service string) schedule.RunChecker {
	return func(from, to time.Time) (bool, error) {
		return m.source.RanInWindow(ctx, service, from, to)
	}
}

// finishCheck records the verdict and alerts when it is unhealthy.
func (m *Monitor) finishCheck(ctx context.Context, verdict models.Verdict) {
	m.mu.Lock()
	m.verdicts[verdict.Service] = verdict
	m.mu.Unlock()

	if err := m.sink.RecordStatus(ctx, verdict); err != nil {
		log.Warn().Err(err).Str("service", verdict.Service).Msg("Failed to record monitoring event")
	}

	if !verdict.Status.Unhealthy() {
		return
	}
	subject := fmt.Sprintf("%s Service %s", titleCase(verdict.Service), titleCase(string(verdict.Status)))
	message := fmt.Sprintf("%s service issues detected:\n\n%s",
		titleCase(verdict.Service), strings.Join(verdict.Issues, "\n"))
	m.alert(ctx, verdict.Service, subject, message)
}

func (m *Monitor) alert(ctx context.Context, service, subject, message string) {
	if m.notifier == nil {
		log.Info().Str("service", service).Str("subject", subject).
			Msg("Email alerts disabled, skipping alert")
		return
	}
	if !m.gate.ShouldSend(service, subject) {
		log.Info().Str("service", service).Str("subject", subject).
			Msg("Alert cooldown active, skipping alert")
		return
	}
	if err := m.notifier.Notify(ctx, service, subject, message); err != nil {
		log.Error().Err(err).Str("service", service).Str("subject", subject).
			Msg("Failed to send alert")
		return
	}
	m.gate.RecordSent(service, subject)
	log.Info().Str("service", service).Str("subject", subject).Msg("Alert sent")
}

func (m *Monitor) sendStartupNotice(ctx context.Context) {
	if m.notifier == nil {
		return
	}
	message := fmt.Sprintf(`Newsletter System monitoring service has started successfully.

Configuration:
- Worker schedule: %s at %s UTC
- Publisher schedule: %s at %s UTC
- Health check interval: %s

Started at: %s UTC`,
		m.workerSchedule.Frequency, strings.Join(m.workerSchedule.Times, ", "),
		m.publisherSchedule.Frequency, strings.Join(m.publisherSchedule.Times, ", "),
		m.interval, m.now().UTC().Format(time.RFC3339))
	if err := m.notifier.Notify(ctx, "monitoring", "Monitoring Service Started", message); err != nil {
		log.Warn().Err(err).Msg("Failed to send startup notification")
	}
}

func titleCase(word string) string {
	if word == "" {
		return word
	}
	return strings.ToUpper(word[:1]) + word[1:]
}
