// Package schedule runs the three fixed daily checkpoints: the
// morning reset-and-greet, the midday medication check and the
// evening medication check.
package schedule

import (
	"log"
	"sync"
	"time"

	rcron "github.com/robfig/cron/v3"
)

// Checkpoint names one scheduled daily invocation.
type Checkpoint string

const (
	CheckpointMorning Checkpoint = "morning"
	CheckpointMidday  Checkpoint = "midday"
	CheckpointEvening Checkpoint = "evening"
)

// Service wraps a seconds-precision cron runner. OnCheckpoint must be
// set before Start; it runs on the cron goroutine.
type Service struct {
	OnCheckpoint func(cp Checkpoint)

	mu      sync.Mutex
	cron    *rcron.Cron
	entries map[Checkpoint]rcron.EntryID
}

// NewService creates a Service evaluating cron expressions in the
// given location (the persona's fixed UTC offset).
func NewService(loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		cron:    rcron.New(rcron.WithSeconds(), rcron.WithLocation(loc)),
		entries: make(map[Checkpoint]rcron.EntryID),
	}
}

// Register binds a checkpoint to a six-field cron expression,
// replacing any previous registration for that checkpoint.
func (s *Service) Register(cp Checkpoint, expr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.entries[cp]; ok {
		s.cron.Remove(prev)
		delete(s.entries, cp)
	}

	id, err := s.cron.AddFunc(expr, func() {
		s.run(cp)
	})
	if err != nil {
		return err
	}
	s.entries[cp] = id
	return nil
}

func (s *Service) run(cp Checkpoint) {
	log.Printf("[schedule] checkpoint %s firing", cp)
	if s.OnCheckpoint == nil {
		log.Printf("[schedule] no checkpoint handler set")
		return
	}
	s.OnCheckpoint(cp)
}

// RunNow fires a checkpoint outside its schedule (manual trigger,
// tests).
func (s *Service) RunNow(cp Checkpoint) {
	s.run(cp)
}

func (s *Service) Start() {
	s.cron.Start()
	s.mu.Lock()
	n := len(s.entries)
	s.mu.Unlock()
	log.Printf("[schedule] started with %d checkpoints", n)
}

func (s *Service) Stop() {
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(5 * time.Second):
		log.Printf("[schedule] stop timeout waiting for running checkpoints")
	}
	log.Printf("[schedule] stopped")
}
