package state

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"
)

// DefaultPhraseTTL bounds how long the last emitted phrase is
// remembered for de-duplication.
const DefaultPhraseTTL = 24 * time.Hour

// PhraseCache remembers the last phrase emitted under a scope key so
// the next generated reply is not a verbatim repeat. When the backend
// is unavailable it degrades to "always distinct".
type PhraseCache struct {
	store Store
	ttl   time.Duration
}

func NewPhraseCache(store Store, ttl time.Duration) *PhraseCache {
	if ttl <= 0 {
		ttl = DefaultPhraseTTL
	}
	return &PhraseCache{store: store, ttl: ttl}
}

// ShouldRegenerate reports whether candidate matches the previously
// recorded phrase for the scope.
func (c *PhraseCache) ShouldRegenerate(ctx context.Context, scope, candidate string) bool {
	data, err := c.store.Get(ctx, phraseKey(scope))
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Printf("[dedup] read for %s failed, treating as distinct: %v", scope, err)
		}
		return false
	}
	return strings.TrimSpace(string(data)) == strings.TrimSpace(candidate)
}

// Record overwrites the scope's remembered phrase with the text that
// was finally emitted.
func (c *PhraseCache) Record(ctx context.Context, scope, text string) {
	if err := c.store.Set(ctx, phraseKey(scope), []byte(text), c.ttl); err != nil {
		log.Printf("[dedup] write for %s failed: %v", scope, err)
	}
}

func phraseKey(scope string) string {
	return "phrase:" + scope
}
