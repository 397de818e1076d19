// Package source abstracts where observed newsletter-system activity
// comes from. The monitor core only sees the Source interface; the
// mongo adapter queries collections directly while the rest adapter
// talks to the newsletter API.
package source

import (
	"context"
	"time"

	"github.com/contentonrails/newsmon/internal/models"
)

const (
	ServiceWorker    = "worker"
	ServicePublisher = "publisher"
)

type Source interface {
	// WorkerActivity summarizes worker runs in the trailing window ending at now.
	WorkerActivity(ctx context.Context, now time.Time, window time.Duration) (models.WorkerActivity, error)
	// PublisherActivity summarizes newsletters in the trailing window ending at now.
	PublisherActivity(ctx context.Context, now time.Time, window time.Duration) (models.PublisherActivity, error)
	// RanInWindow reports whether the service showed any activity in [from, to].
	RanInWindow(ctx context.Context, service string, from, to time.Time) (bool, error)
}

// SystemChecker is an optional capability: only sources backed by the
// newsletter API can report the system-wide status endpoint.
type SystemChecker interface {
	SystemStatus(ctx context.Context) (models.SystemStatus, error)
}
