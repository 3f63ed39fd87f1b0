package state

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"
)

// DefaultBurstWindow is how long a run of consecutive messages keeps
// counting before the counter starts over.
const DefaultBurstWindow = time.Hour

type burstRecord struct {
	Count       int       `json:"count"`
	WindowStart time.Time `json:"windowStart"`
}

// BurstTracker counts consecutive inbound messages per user within a
// sliding window. Read-modify-write is serialized per user so
// concurrent increments never lose updates. Backend failures degrade
// to a count of 1 rather than blocking the reply.
type BurstTracker struct {
	store  Store
	window time.Duration

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewBurstTracker(store Store, window time.Duration) *BurstTracker {
	if window <= 0 {
		window = DefaultBurstWindow
	}
	return &BurstTracker{
		store:  store,
		window: window,
		locks:  make(map[string]*sync.Mutex),
	}
}

func (t *BurstTracker) userLock(userID string) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()
	lock, ok := t.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		t.locks[userID] = lock
	}
	return lock
}

// Increment records one inbound message and returns the count within
// the current window. A fresh or expired window yields 1.
func (t *BurstTracker) Increment(ctx context.Context, userID string, now time.Time) int {
	lock := t.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	rec := burstRecord{Count: 1, WindowStart: now}

	data, err := t.store.Get(ctx, burstKey(userID))
	switch {
	case err == nil:
		var prev burstRecord
		if jsonErr := json.Unmarshal(data, &prev); jsonErr == nil {
			if now.Sub(prev.WindowStart) <= t.window {
				rec = burstRecord{Count: prev.Count + 1, WindowStart: prev.WindowStart}
			}
		}
	case errors.Is(err, ErrNotFound):
		// first message of a new burst
	default:
		log.Printf("[burst] read for %s failed, counting from 1: %v", userID, err)
	}

	out, _ := json.Marshal(rec)
	if err := t.store.Set(ctx, burstKey(userID), out, 2*t.window); err != nil {
		log.Printf("[burst] write for %s failed: %v", userID, err)
	}
	return rec.Count
}

// Reset deletes the user's record so the next Increment returns 1.
// Used when an apology wipes the slate clean.
func (t *BurstTracker) Reset(ctx context.Context, userID string) {
	if err := t.store.Delete(ctx, burstKey(userID)); err != nil {
		log.Printf("[burst] reset for %s failed: %v", userID, err)
	}
}

func burstKey(userID string) string {
	return "burst:" + userID
}
