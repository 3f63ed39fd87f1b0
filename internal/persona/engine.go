package persona

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/stellarlinkco/kazubot/internal/state"
)

// MaxSegments caps how many segments one reply may carry.
const MaxSegments = 3

// Generator is the opaque phrase backend. It may fail or time out;
// the engine falls back to a fixed segment when it does.
type Generator interface {
	Generate(ctx context.Context, userText string, mode Mode, hints []string) (string, error)
}

// Reply is the engine's decision for one inbound message. A nil or
// empty Segments slice means the message is deliberately unanswered.
type Reply struct {
	Mode     Mode
	Segments []string
	Scripted bool
}

// Engine turns one inbound message plus per-user state into a reply
// decision. It owns no state of its own; all collaborators are
// injected and optional — a missing collaborator degrades to its
// documented conservative default.
type Engine struct {
	bursts  *state.BurstTracker
	meds    *state.MedicationLedger
	phrases *state.PhraseCache
	gen     Generator
	quiet   Schedule

	burstThreshold int
	jealousScript  bool
	morningCutoff  int
	eveningCutoff  int
}

// EngineConfig carries the tunables for NewEngine. Zero values fall
// back to the persona defaults.
type EngineConfig struct {
	BurstThreshold    int
	JealousScriptOnly bool
	MorningCutoffHour int
	EveningCutoffHour int
}

func NewEngine(bursts *state.BurstTracker, meds *state.MedicationLedger, phrases *state.PhraseCache, gen Generator, quiet Schedule, cfg EngineConfig) *Engine {
	if cfg.BurstThreshold <= 0 {
		cfg.BurstThreshold = 10
	}
	if cfg.MorningCutoffHour <= 0 {
		cfg.MorningCutoffHour = 12
	}
	if cfg.EveningCutoffHour <= 0 {
		cfg.EveningCutoffHour = 22
	}
	return &Engine{
		bursts:         bursts,
		meds:           meds,
		phrases:        phrases,
		gen:            gen,
		quiet:          quiet,
		burstThreshold: cfg.BurstThreshold,
		jealousScript:  cfg.JealousScriptOnly,
		morningCutoff:  cfg.MorningCutoffHour,
		eveningCutoff:  cfg.EveningCutoffHour,
	}
}

// Respond classifies the message, updates per-user state and decides
// the outbound segments. It never returns an error for backend
// failures; those degrade to the documented fallbacks.
func (e *Engine) Respond(ctx context.Context, userID, text string, now time.Time) *Reply {
	sig := Classify(text)

	// An apology wipes the burst slate before this message is counted.
	if sig.Has(CategoryApology) && e.bursts != nil {
		e.bursts.Reset(ctx, userID)
	}

	count := 1
	if e.bursts != nil {
		count = e.bursts.Increment(ctx, userID, now)
	}

	mode := SelectMode(sig, e.quiet.IsQuiet(now), count, e.burstThreshold)

	local := now.In(e.quiet.Location())
	day := local.Format("2006-01-02")

	if sig.Has(CategoryMedication) && e.meds != nil {
		slot := state.SlotForTime(local, e.morningCutoff, e.eveningCutoff)
		if err := e.meds.MarkTaken(ctx, userID, day, slot); err != nil {
			log.Printf("[engine] mark %s dose for %s failed: %v", slot, userID, err)
		}
	}

	// Burst escalation is cross-cutting: at or past the threshold the
	// safety script goes out even when the mode said normal or muted.
	if mode == ModeCrisis || count >= e.burstThreshold {
		return &Reply{Mode: ModeCrisis, Segments: SafetyScript(), Scripted: true}
	}

	if mode == ModeMuted {
		return &Reply{Mode: ModeMuted}
	}

	if mode == ModeJealous && e.jealousScript {
		return &Reply{Mode: ModeJealous, Segments: JealousScript(), Scripted: true}
	}

	// Goodnight with the sleep dose unacknowledged pre-empts the
	// generated reply. Ledger trouble counts as unacknowledged.
	if sig.Has(CategorySleepIntent) {
		var rec state.MedicationRecord
		if e.meds != nil {
			var err error
			if rec, err = e.meds.Status(ctx, userID, day); err != nil {
				log.Printf("[engine] sleep dose check for %s failed, reminding anyway: %v", userID, err)
				rec = state.MedicationRecord{}
			}
		}
		if !rec.Sleep {
			return &Reply{Mode: mode, Segments: []string{SleepReminderSegment}, Scripted: true}
		}
	}

	return e.generated(ctx, userID, day, text, mode, sig)
}

func (e *Engine) generated(ctx context.Context, userID, day, text string, mode Mode, sig Signals) *Reply {
	if e.gen == nil {
		return &Reply{Mode: mode, Segments: []string{FallbackSegment}, Scripted: true}
	}

	hints := []string{ToneHint(mode)}
	if sig.Has(CategoryNameTrigger) {
		hints = append(hints, NameTriggerHint)
	}

	out, err := e.gen.Generate(ctx, text, mode, hints)
	if err != nil {
		log.Printf("[engine] generate for %s failed: %v", userID, err)
		return &Reply{Mode: mode, Segments: []string{FallbackSegment}, Scripted: true}
	}
	if strings.TrimSpace(out) == "" {
		out = DefaultGeneratedReply
	}

	scope := userID + ":" + day
	if e.phrases != nil && e.phrases.ShouldRegenerate(ctx, scope, out) {
		regen, err := e.gen.Generate(ctx, text, mode, append(hints, DivergeHint))
		if err != nil {
			log.Printf("[engine] regenerate for %s failed, keeping first wording: %v", userID, err)
		} else if strings.TrimSpace(regen) != "" {
			out = regen
		}
	}
	if e.phrases != nil {
		e.phrases.Record(ctx, scope, out)
	}

	return &Reply{Mode: mode, Segments: SplitSegments(out, MaxSegments)}
}

// SplitSegments breaks generated text into at most max non-empty
// line segments.
func SplitSegments(text string, max int) []string {
	var segments []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		segments = append(segments, line)
		if len(segments) == max {
			break
		}
	}
	return segments
}
