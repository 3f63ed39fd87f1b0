package state

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotForTime(t *testing.T) {
	tests := []struct {
		hour, min int
		want      Slot
	}{
		{0, 0, SlotMorning},
		{9, 30, SlotMorning},
		{11, 59, SlotMorning},
		{12, 0, SlotEvening},
		{18, 0, SlotEvening},
		{21, 59, SlotEvening},
		{22, 0, SlotSleep},
		{23, 59, SlotSleep},
	}
	for _, tt := range tests {
		local := time.Date(2025, 6, 2, tt.hour, tt.min, 0, 0, time.UTC)
		got := SlotForTime(local, 12, 22)
		assert.Equal(t, tt.want, got, "%02d:%02d", tt.hour, tt.min)
	}
}

func TestMedicationLedger_AbsentDayIsAllFalse(t *testing.T) {
	ledger := NewMedicationLedger(NewMemoryStore(), 0)

	rec, err := ledger.Status(context.Background(), "u1", "2025-06-02")
	require.NoError(t, err)
	assert.Equal(t, MedicationRecord{}, rec)
}

func TestMedicationLedger_MarkTaken(t *testing.T) {
	ledger := NewMedicationLedger(NewMemoryStore(), 0)
	ctx := context.Background()

	require.NoError(t, ledger.MarkTaken(ctx, "u1", "2025-06-02", SlotMorning))
	require.NoError(t, ledger.MarkTaken(ctx, "u1", "2025-06-02", SlotSleep))

	rec, err := ledger.Status(ctx, "u1", "2025-06-02")
	require.NoError(t, err)
	assert.True(t, rec.Morning)
	assert.False(t, rec.Evening)
	assert.True(t, rec.Sleep)
	assert.False(t, rec.UpdatedAt.IsZero())
}

func TestMedicationLedger_MarkTakenIdempotent(t *testing.T) {
	ledger := NewMedicationLedger(NewMemoryStore(), 0)
	ctx := context.Background()

	require.NoError(t, ledger.MarkTaken(ctx, "u1", "2025-06-02", SlotEvening))
	first, err := ledger.Status(ctx, "u1", "2025-06-02")
	require.NoError(t, err)

	require.NoError(t, ledger.MarkTaken(ctx, "u1", "2025-06-02", SlotEvening))
	second, err := ledger.Status(ctx, "u1", "2025-06-02")
	require.NoError(t, err)

	assert.True(t, second.Evening)
	assert.Equal(t, first.UpdatedAt, second.UpdatedAt, "repeat mark must not rewrite the record")
}

func TestMedicationLedger_UnknownSlotRejected(t *testing.T) {
	ledger := NewMedicationLedger(NewMemoryStore(), 0)
	err := ledger.MarkTaken(context.Background(), "u1", "2025-06-02", Slot("brunch"))
	assert.Error(t, err)
}

func TestMedicationLedger_DaysAreIndependent(t *testing.T) {
	ledger := NewMedicationLedger(NewMemoryStore(), 0)
	ctx := context.Background()

	require.NoError(t, ledger.MarkTaken(ctx, "u1", "2025-06-02", SlotMorning))

	rec, err := ledger.Status(ctx, "u1", "2025-06-03")
	require.NoError(t, err)
	assert.False(t, rec.Morning)
}

func TestMedicationLedger_ResetDay(t *testing.T) {
	ledger := NewMedicationLedger(NewMemoryStore(), 0)
	ctx := context.Background()

	require.NoError(t, ledger.MarkTaken(ctx, "u1", "2025-06-02", SlotMorning))
	require.NoError(t, ledger.MarkTaken(ctx, "u1", "2025-06-02", SlotSleep))
	require.NoError(t, ledger.ResetDay(ctx, "u1", "2025-06-02"))

	rec, err := ledger.Status(ctx, "u1", "2025-06-02")
	require.NoError(t, err)
	assert.False(t, rec.Morning)
	assert.False(t, rec.Evening)
	assert.False(t, rec.Sleep)
}

func TestMedicationRecord_Taken(t *testing.T) {
	rec := MedicationRecord{Morning: true, Sleep: true}
	assert.True(t, rec.Taken(SlotMorning))
	assert.False(t, rec.Taken(SlotEvening))
	assert.True(t, rec.Taken(SlotSleep))
	assert.False(t, rec.Taken(Slot("brunch")))
}
