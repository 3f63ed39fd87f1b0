package persona

// Mode is the behavioral stance chosen for one inbound message. It is
// recomputed per message and never stored.
type Mode string

const (
	ModeNormal       Mode = "normal"
	ModeAffectionate Mode = "affectionate"
	ModeJealous      Mode = "jealous"
	ModeCrisis       Mode = "crisis"
	ModeMuted        Mode = "muted"
)

// SelectMode resolves signals, quiet schedule and burst count into a
// single mode. Precedence is fixed, first match wins. Burst counts at
// or above the threshold escalate to the safety script, but that is a
// cross-cutting rule applied by the engine after selection, not a mode
// of its own: here a high burst merely defeats the mute.
func SelectMode(sig Signals, quiet bool, burstCount, burstThreshold int) Mode {
	switch {
	case sig.Has(CategoryCrisis):
		return ModeCrisis
	case sig.Has(CategoryJealousy):
		return ModeJealous
	case sig.Has(CategoryAffection):
		return ModeAffectionate
	case quiet && burstCount < burstThreshold:
		return ModeMuted
	default:
		return ModeNormal
	}
}
