package alert

import (
	"time"

	"github.com/rs/zerolog/log"
)

// Store persists last-sent times so a restarted daemon does not
// immediately re-send every standing alert. Best effort only.
type Store interface {
	Load() (map[string]time.Time, error)
	Save(key string, sentAt time.Time) error
}

// Gate suppresses repeat alerts for the same (service, subject) pair
// inside a cooldown window. It is owned by the cycle runner and touched
// only from the monitoring loop, so it needs no locking.
type Gate struct {
	cooldown time.Duration
	now      func() time.Time
	lastSent map[string]time.Time
	store    Store
}

// NewGate creates a Gate. now is injectable for tests; pass nil for the
// wall clock. store may be nil to keep state in memory only.
func NewGate(cooldown time.Duration, now func() time.Time, store Store) *Gate {
	if now == nil {
		now = time.Now
	}
	g := &Gate{
		cooldown: cooldown,
		now:      now,
		lastSent: make(map[string]time.Time),
		store:    store,
	}
	if store != nil {
		state, err := store.Load()
		if err != nil {
			log.Warn().Err(err).Msg("Failed to load alert state, starting cold")
		} else {
			g.lastSent = state
		}
	}
	return g
}

func alertKey(service, subject string) string {
	return service + ":" + subject
}

// ShouldSend reports whether an alert for (service, subject) is outside
// its cooldown window.
func (g *Gate) ShouldSend(service, subject string) bool {
	last, ok := g.lastSent[alertKey(service, subject)]
	if !ok {
		return true
	}
	return g.now().UTC().Sub(last) >= g.cooldown
}

// RecordSent marks (service, subject) as alerted now.
func (g *Gate) RecordSent(service, subject string) {
	key := alertKey(service, subject)
	sentAt := g.now().UTC()
	g.lastSent[key] = sentAt
	if g.store != nil {
		if err := g.store.Save(key, sentAt); err != nil {
			log.Warn().Err(err).Str("alert_key", key).Msg("Failed to persist alert state")
		}
	}
}
