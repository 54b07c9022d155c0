package services

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// StalenessGate keeps the "your recommendation is out of date" prompt from
// reappearing every time a session re-checks staleness for the same snapshot.
//
// The watermark lives in process memory only, keyed by session: it holds the
// last snapshot id a session was notified about. A new snapshot becoming
// active resets the gate implicitly because its id differs from the
// watermark. Entries expire after the session TTL so the map stays bounded.
type StalenessGate struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]gateEntry

	now func() time.Time
}

type gateEntry struct {
	snapshotID uuid.UUID
	seenAt     time.Time
}

func NewStalenessGate(sessionTTL time.Duration) *StalenessGate {
	if sessionTTL <= 0 {
		sessionTTL = 12 * time.Hour
	}
	return &StalenessGate{
		ttl:     sessionTTL,
		entries: make(map[string]gateEntry),
		now:     time.Now,
	}
}

// ShouldNotify reports true only the first time the given snapshot id is
// observed as stale within the session, and records the watermark when it
// does.
func (g *StalenessGate) ShouldNotify(sessionKey string, snapshotID uuid.UUID) bool {
	if sessionKey == "" || snapshotID == uuid.Nil {
		return false
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	g.sweepLocked(now)

	if e, ok := g.entries[sessionKey]; ok && e.snapshotID == snapshotID {
		return false
	}
	g.entries[sessionKey] = gateEntry{snapshotID: snapshotID, seenAt: now}
	return true
}

func (g *StalenessGate) sweepLocked(now time.Time) {
	for k, e := range g.entries {
		if now.Sub(e.seenAt) > g.ttl {
			delete(g.entries, k)
		}
	}
}
