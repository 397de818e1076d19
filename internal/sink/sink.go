// Package sink records monitoring outcomes externally. One event is
// written per service per cycle regardless of alert suppression.
package sink

import (
	"context"

	"github.com/contentonrails/newsmon/internal/models"
)

type Sink interface {
	// RecordStatus records one service verdict for the current cycle.
	RecordStatus(ctx context.Context, verdict models.Verdict) error
	// Heartbeat records that the monitoring daemon itself is alive.
	Heartbeat(ctx context.Context) error
}
