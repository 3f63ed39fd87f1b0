package channel

import (
	"context"
	"testing"
	"time"

	"github.com/stellarlinkco/kazubot/internal/bus"
)

func TestBaseChannel_Name(t *testing.T) {
	ch := NewBaseChannel("line", bus.NewMessageBus(1), nil)
	if got := ch.Name(); got != "line" {
		t.Errorf("Name() = %q, want line", got)
	}
}

func TestBaseChannel_IsAllowed(t *testing.T) {
	tests := []struct {
		name      string
		allowFrom []string
		sender    string
		want      bool
	}{
		{"empty list allows everyone", nil, "anyone", true},
		{"listed sender allowed", []string{"u1", "u2"}, "u1", true},
		{"unlisted sender rejected", []string{"u1"}, "u2", false},
		{"empty sender against list", []string{"u1"}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch := NewBaseChannel("test", bus.NewMessageBus(1), tt.allowFrom)
			if got := ch.IsAllowed(tt.sender); got != tt.want {
				t.Errorf("IsAllowed(%q) = %v, want %v", tt.sender, got, tt.want)
			}
		})
	}
}

func TestRandomPacer_WaitBounds(t *testing.T) {
	p := NewRandomPacer(time.Millisecond, 5*time.Millisecond)

	start := time.Now()
	if err := p.Wait(context.Background()); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if elapsed := time.Since(start); elapsed < time.Millisecond {
		t.Errorf("waited %v, want at least the minimum", elapsed)
	}
}

func TestRandomPacer_RespectsCancellation(t *testing.T) {
	p := NewRandomPacer(time.Minute, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := p.Wait(ctx); err == nil {
		t.Error("Wait ignored cancelled context")
	}
}

func TestNopPacer(t *testing.T) {
	if err := NopPacer().Wait(context.Background()); err != nil {
		t.Errorf("NopPacer().Wait: %v", err)
	}
}
