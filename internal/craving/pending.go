package craving

import (
	"sync"
	"time"

	"Eat42/internal/metabolic"
)

// PendingTTL is how long an unanswered follow-up stays valid.
const PendingTTL = 600 * time.Second

// Pending is a partially extracted craving waiting for the user's answer.
type Pending struct {
	Record  Record
	Missing MissingField
	Context metabolic.Context
	Created time.Time
}

// PendingTable holds at most one Pending per user. Callers are expected to
// serialize turns of the same user; the mutex only protects the map itself,
// which Go does not allow to be written concurrently even on disjoint keys.
type PendingTable struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]Pending
}

// NewPendingTable returns an empty table. A non-positive ttl selects
// PendingTTL.
func NewPendingTable(ttl time.Duration) *PendingTable {
	if ttl <= 0 {
		ttl = PendingTTL
	}
	return &PendingTable{ttl: ttl, entries: make(map[string]Pending)}
}

func (t *PendingTable) expired(p Pending, now time.Time) bool {
	return now.Sub(p.Created) > t.ttl
}

// Put stores p for userID, replacing any previous entry.
func (t *PendingTable) Put(userID string, p Pending) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[userID] = p
}

// Take removes and returns the entry for userID. Expired entries are
// dropped and reported as absent.
func (t *PendingTable) Take(userID string, now time.Time) (Pending, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.entries[userID]
	if !ok {
		return Pending{}, false
	}
	delete(t.entries, userID)
	if t.expired(p, now) {
		return Pending{}, false
	}
	return p, true
}

// Peek returns the live entry for userID without consuming it.
func (t *PendingTable) Peek(userID string, now time.Time) (Pending, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.entries[userID]
	if !ok || t.expired(p, now) {
		return Pending{}, false
	}
	return p, true
}

// Delete drops the entry for userID and reports whether one existed.
func (t *PendingTable) Delete(userID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, ok := t.entries[userID]
	delete(t.entries, userID)
	return ok
}

// Sweep removes every expired entry and returns how many were dropped.
func (t *PendingTable) Sweep(now time.Time) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := 0
	for id, p := range t.entries {
		if t.expired(p, now) {
			delete(t.entries, id)
			n++
		}
	}
	return n
}

// Len returns the number of stored entries, expired or not.
func (t *PendingTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}
