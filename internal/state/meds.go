package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// DefaultMedicationTTL keeps a day's record past midnight so the
// evening checkpoint can still read it, then lets it expire.
const DefaultMedicationTTL = 36 * time.Hour

// Slot is one of the three daily medication checkpoints.
type Slot string

const (
	SlotMorning Slot = "morning"
	SlotEvening Slot = "evening"
	SlotSleep   Slot = "sleep"
)

// SlotForTime infers the dose slot from a local wall-clock time:
// before the morning cutoff hour it is the morning dose, before the
// evening cutoff the evening dose, otherwise the sleep dose.
func SlotForTime(local time.Time, morningCutoff, eveningCutoff int) Slot {
	switch h := local.Hour(); {
	case h < morningCutoff:
		return SlotMorning
	case h < eveningCutoff:
		return SlotEvening
	default:
		return SlotSleep
	}
}

// MedicationRecord tracks which doses were acknowledged on one local
// calendar day. The zero value means nothing taken yet.
type MedicationRecord struct {
	Morning   bool      `json:"morning"`
	Evening   bool      `json:"evening"`
	Sleep     bool      `json:"sleep"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (r MedicationRecord) Taken(slot Slot) bool {
	switch slot {
	case SlotMorning:
		return r.Morning
	case SlotEvening:
		return r.Evening
	case SlotSleep:
		return r.Sleep
	}
	return false
}

// MedicationLedger stores one MedicationRecord per user per local day.
// Records are never deleted explicitly; they expire.
type MedicationLedger struct {
	store Store
	ttl   time.Duration
}

func NewMedicationLedger(store Store, ttl time.Duration) *MedicationLedger {
	if ttl <= 0 {
		ttl = DefaultMedicationTTL
	}
	return &MedicationLedger{store: store, ttl: ttl}
}

// MarkTaken sets the slot flag for the given day. Marking an
// already-true slot is a no-op.
func (l *MedicationLedger) MarkTaken(ctx context.Context, userID, day string, slot Slot) error {
	rec, err := l.Status(ctx, userID, day)
	if err != nil {
		return err
	}
	if rec.Taken(slot) {
		return nil
	}

	switch slot {
	case SlotMorning:
		rec.Morning = true
	case SlotEvening:
		rec.Evening = true
	case SlotSleep:
		rec.Sleep = true
	default:
		return fmt.Errorf("unknown medication slot %q", slot)
	}
	rec.UpdatedAt = time.Now()

	return l.write(ctx, userID, day, rec)
}

// Status returns the day's record. An absent record is reported as a
// zero record with no error; callers treat backend errors the same
// way ("nothing taken, always remind") after logging.
func (l *MedicationLedger) Status(ctx context.Context, userID, day string) (MedicationRecord, error) {
	var rec MedicationRecord

	data, err := l.store.Get(ctx, medsKey(userID, day))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return rec, nil
		}
		return rec, fmt.Errorf("read medication record: %w", err)
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return MedicationRecord{}, fmt.Errorf("decode medication record: %w", err)
	}
	return rec, nil
}

// ResetDay writes a fresh all-false record, used by the morning
// checkpoint.
func (l *MedicationLedger) ResetDay(ctx context.Context, userID, day string) error {
	return l.write(ctx, userID, day, MedicationRecord{UpdatedAt: time.Now()})
}

func (l *MedicationLedger) write(ctx context.Context, userID, day string, rec MedicationRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode medication record: %w", err)
	}
	if err := l.store.Set(ctx, medsKey(userID, day), data, l.ttl); err != nil {
		return fmt.Errorf("write medication record: %w", err)
	}
	return nil
}

func medsKey(userID, day string) string {
	return "meds:" + userID + ":" + day
}
