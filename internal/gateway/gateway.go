package gateway

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stellarlinkco/kazubot/internal/bus"
	"github.com/stellarlinkco/kazubot/internal/channel"
	"github.com/stellarlinkco/kazubot/internal/config"
	"github.com/stellarlinkco/kazubot/internal/persona"
	"github.com/stellarlinkco/kazubot/internal/phrase"
	"github.com/stellarlinkco/kazubot/internal/schedule"
	"github.com/stellarlinkco/kazubot/internal/state"
)

// Options for creating a Gateway with injected collaborators (tests).
type Options struct {
	Generator  persona.Generator
	Store      state.Store
	SignalChan chan os.Signal
}

type Gateway struct {
	cfg        *config.Config
	bus        *bus.MessageBus
	engine     *persona.Engine
	channels   *channel.ChannelManager
	sched      *schedule.Service
	meds       *state.MedicationLedger
	quiet      persona.Schedule
	signalChan chan os.Signal
}

// New creates a Gateway with default options
func New(cfg *config.Config) (*Gateway, error) {
	return NewWithOptions(cfg, Options{})
}

// NewWithOptions creates a Gateway with custom options for testing
func NewWithOptions(cfg *config.Config, opts Options) (*Gateway, error) {
	g := &Gateway{cfg: cfg}

	g.bus = bus.NewMessageBus(config.DefaultBufSize)

	// State backend: redis when configured, otherwise in-process.
	// Either way the dependent features degrade rather than fail.
	store := opts.Store
	if store == nil {
		if cfg.Store.RedisAddr != "" {
			client := redis.NewClient(&redis.Options{
				Addr:     cfg.Store.RedisAddr,
				Password: cfg.Store.RedisPassword,
				DB:       cfg.Store.RedisDB,
			})
			store = state.NewRedisStore(client, cfg.Store.Prefix)
			log.Printf("[gateway] using redis state at %s", cfg.Store.RedisAddr)
		} else {
			store = state.NewMemoryStore()
			log.Printf("[gateway] no redis configured, state is in-memory only")
		}
	}

	windows, err := parseWindows(cfg.Persona.QuietWindows)
	if err != nil {
		return nil, err
	}
	g.quiet = persona.NewSchedule(cfg.Persona.UTCOffsetHours, windows)

	bursts := state.NewBurstTracker(store, time.Duration(cfg.Persona.BurstWindowMin)*time.Minute)
	g.meds = state.NewMedicationLedger(store, state.DefaultMedicationTTL)
	phrases := state.NewPhraseCache(store, state.DefaultPhraseTTL)

	gen := opts.Generator
	if gen == nil {
		if cfg.Provider.APIKey != "" {
			client, err := phrase.NewClient(cfg.Provider)
			if err != nil {
				return nil, fmt.Errorf("create phrase client: %w", err)
			}
			gen = client
		} else {
			// Degraded mode: scripted segments only.
			log.Printf("[gateway] no provider api key, generated replies disabled")
		}
	}

	g.engine = persona.NewEngine(bursts, g.meds, phrases, gen, g.quiet, persona.EngineConfig{
		BurstThreshold:    cfg.Persona.BurstThreshold,
		JealousScriptOnly: cfg.Persona.JealousPolicy != config.JealousPolicyGenerate,
		MorningCutoffHour: cfg.Persona.MorningCutoffHour,
		EveningCutoffHour: cfg.Persona.EveningCutoffHour,
	})

	chMgr, err := channel.NewChannelManager(cfg.Channels, cfg.Gateway, g.bus)
	if err != nil {
		return nil, fmt.Errorf("create channel manager: %w", err)
	}
	if len(chMgr.EnabledChannels()) == 0 {
		return nil, fmt.Errorf("no channels enabled")
	}
	g.channels = chMgr

	g.sched = schedule.NewService(g.quiet.Location())
	g.sched.OnCheckpoint = g.runCheckpoint
	for cp, expr := range map[schedule.Checkpoint]string{
		schedule.CheckpointMorning: cfg.Schedule.MorningCron,
		schedule.CheckpointMidday:  cfg.Schedule.MiddayCron,
		schedule.CheckpointEvening: cfg.Schedule.EveningCron,
	} {
		if err := g.sched.Register(cp, expr); err != nil {
			return nil, fmt.Errorf("register %s checkpoint: %w", cp, err)
		}
	}

	g.signalChan = opts.SignalChan

	return g, nil
}

func parseWindows(specs []string) ([]persona.Window, error) {
	if len(specs) == 0 {
		return persona.DefaultWindows(), nil
	}
	windows := make([]persona.Window, 0, len(specs))
	for _, s := range specs {
		w, err := persona.ParseWindow(s)
		if err != nil {
			return nil, fmt.Errorf("quiet windows: %w", err)
		}
		windows = append(windows, w)
	}
	return windows, nil
}

func (g *Gateway) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go g.bus.DispatchOutbound(ctx)

	if err := g.channels.StartAll(ctx); err != nil {
		return fmt.Errorf("start channels: %w", err)
	}
	log.Printf("[gateway] channels started: %v", g.channels.EnabledChannels())

	g.sched.Start()

	go g.processLoop(ctx)

	log.Printf("[gateway] running on %s:%d", g.cfg.Gateway.Host, g.cfg.Gateway.Port)

	sigCh := g.signalChan
	if sigCh == nil {
		sigCh = make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	}
	<-sigCh

	log.Printf("[gateway] shutting down...")
	return g.Shutdown()
}

// processLoop handles inbound messages. Each message runs in its own
// goroutine: a stalled generation call for one user never delays
// another user's reply.
func (g *Gateway) processLoop(ctx context.Context) {
	for {
		select {
		case msg := <-g.bus.Inbound:
			go g.handleInbound(ctx, msg)
		case <-ctx.Done():
			return
		}
	}
}

func (g *Gateway) handleInbound(ctx context.Context, msg bus.InboundMessage) {
	log.Printf("[gateway] inbound from %s/%s: %s", msg.Channel, msg.SenderID, truncate(msg.Content, 80))

	now := msg.Timestamp
	if now.IsZero() {
		now = time.Now()
	}

	reply := g.engine.Respond(ctx, msg.SenderID, msg.Content, now)
	if len(reply.Segments) == 0 {
		log.Printf("[gateway] %s reply for %s suppressed (mode=%s)", msg.Channel, msg.SenderID, reply.Mode)
		return
	}

	log.Printf("[gateway] replying to %s/%s with %d segment(s) (mode=%s)", msg.Channel, msg.SenderID, len(reply.Segments), reply.Mode)
	g.bus.Outbound <- bus.OutboundMessage{
		Channel:    msg.Channel,
		ChatID:     msg.ChatID,
		Segments:   reply.Segments,
		ReplyToken: msg.ReplyToken,
	}
}

// runCheckpoint executes one scheduled daily checkpoint for every
// configured push target.
func (g *Gateway) runCheckpoint(cp schedule.Checkpoint) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	day := time.Now().In(g.quiet.Location()).Format("2006-01-02")

	for _, target := range g.cfg.Schedule.PushTo {
		chatID := target.ChatID
		if chatID == "" {
			chatID = target.UserID
		}

		var segments []string
		switch cp {
		case schedule.CheckpointMorning:
			if err := g.meds.ResetDay(ctx, target.UserID, day); err != nil {
				log.Printf("[gateway] morning reset for %s failed: %v", target.UserID, err)
			}
			segments = []string{persona.MorningGreeting}
		case schedule.CheckpointMidday:
			segments = []string{persona.MiddayLine}
			if rec, err := g.meds.Status(ctx, target.UserID, day); err != nil || !rec.Morning {
				if err != nil {
					log.Printf("[gateway] midday dose check for %s failed, reminding anyway: %v", target.UserID, err)
				}
				segments = append(segments, persona.MorningDoseReminder)
			}
		case schedule.CheckpointEvening:
			segments = []string{persona.EveningLine}
			if rec, err := g.meds.Status(ctx, target.UserID, day); err != nil || !rec.Evening {
				if err != nil {
					log.Printf("[gateway] evening dose check for %s failed, reminding anyway: %v", target.UserID, err)
				}
				segments = append(segments, persona.EveningDoseReminder)
			}
		}

		if len(segments) == 0 {
			continue
		}
		g.bus.Outbound <- bus.OutboundMessage{
			Channel:  target.Channel,
			ChatID:   chatID,
			Segments: segments,
		}
	}
}

func (g *Gateway) Shutdown() error {
	g.sched.Stop()
	_ = g.channels.StopAll()
	log.Printf("[gateway] shutdown complete")
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
