package models

import "time"

// Status values produced by the health and schedule checks.
type Status string

const (
	StatusHealthy    Status = "healthy"
	StatusDegraded   Status = "degraded"
	StatusInactive   Status = "inactive"
	StatusError      Status = "error"
	StatusOnSchedule Status = "on_schedule"
	StatusOverdue    Status = "overdue"
	StatusWaiting    Status = "waiting"
)

// Unhealthy reports whether a status should trigger an alert.
func (s Status) Unhealthy() bool {
	switch s {
	case StatusHealthy, StatusOnSchedule, StatusWaiting:
		return false
	}
	return true
}

// ObservedRun is a single worker run as reported by the data source.
type ObservedRun struct {
	ID             string     `bson:"_id,omitempty" json:"id,omitempty"`
	WorkerID       string     `bson:"worker_id,omitempty" json:"worker_id,omitempty"`
	Status         string     `bson:"status" json:"status"`
	StartedAt      time.Time  `bson:"started_at" json:"started_at"`
	CompletedAt    *time.Time `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
	TasksProcessed int        `bson:"tasks_processed,omitempty" json:"tasks_processed,omitempty"`
	TasksFailed    int        `bson:"tasks_failed,omitempty" json:"tasks_failed,omitempty"`
}

// Newsletter is a published newsletter as reported by the data source.
// CONFIG_* and PROMPT_* titles are internal documents and are excluded
// by the adapters before they reach the aggregator.
type Newsletter struct {
	UUID        string    `bson:"uuid" json:"uuid"`
	Title       string    `bson:"title" json:"title"`
	GeneratedAt time.Time `bson:"generated_at" json:"generated_at"`
	VerticalID  string    `bson:"vertical_id,omitempty" json:"vertical_id,omitempty"`
}

// WorkerActivity summarizes worker runs in a trailing window.
type WorkerActivity struct {
	RecentRuns    int
	RecentWorkers int
	SuccessRate   float64
	LastRun       *time.Time
	Issues        []string
}

// PublisherActivity summarizes newsletter generation in a trailing window.
type PublisherActivity struct {
	RecentNewsletters int
	LastGeneration    *time.Time
	Issues            []string
}

// SystemStatus is the aggregate view exposed by the newsletter API.
type SystemStatus struct {
	Status     Status            `json:"status"`
	Components map[string]string `json:"components,omitempty"`
	Timestamp  string            `json:"timestamp,omitempty"`
}

// Verdict is the combined health result for a single monitored service
// in a single cycle. It is recomputed from scratch every cycle.
type Verdict struct {
	Service       string     `json:"service"`
	Status        Status     `json:"status"`
	Issues        []string   `json:"issues,omitempty"`
	RecentRuns    int        `json:"recent_runs,omitempty"`
	SuccessRate   float64    `json:"success_rate,omitempty"`
	LastRun       *time.Time `json:"last_run,omitempty"`
	NextScheduled *time.Time `json:"next_scheduled,omitempty"`
	CheckedAt     time.Time  `json:"checked_at"`
}

// MonitoringEvent is one row of the process_monitoring collection.
type MonitoringEvent struct {
	ServiceName string                 `bson:"service_name" json:"service_name"`
	Status      Status                 `bson:"status" json:"status"`
	LastCheck   time.Time              `bson:"last_check" json:"last_check"`
	Metadata    map[string]interface{} `bson:"metadata,omitempty" json:"metadata,omitempty"`
}
