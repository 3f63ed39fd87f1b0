package channel

import (
	"context"
	"math/rand"
	"time"
)

// Pacer spaces consecutive push segments so multi-part replies read
// like a person typing. Channels call Wait between segments on the
// push path only; nothing paces the single synchronous reply.
type Pacer interface {
	Wait(ctx context.Context) error
}

type randomPacer struct {
	min, max time.Duration
}

// NewRandomPacer waits a uniformly random duration in [min, max].
func NewRandomPacer(min, max time.Duration) Pacer {
	if min < 0 {
		min = 0
	}
	if max < min {
		max = min
	}
	return &randomPacer{min: min, max: max}
}

func (p *randomPacer) Wait(ctx context.Context) error {
	d := p.min
	if span := p.max - p.min; span > 0 {
		d += time.Duration(rand.Int63n(int64(span)))
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type nopPacer struct{}

// NopPacer never waits. Injected in tests to keep scenarios
// deterministic.
func NopPacer() Pacer {
	return nopPacer{}
}

func (nopPacer) Wait(ctx context.Context) error {
	return ctx.Err()
}
