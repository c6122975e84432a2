package infra

import (
	"context"
	"testing"
	"time"
)

func TestPaceStore_GetSameModelReturnsSameLimiter(t *testing.T) {
	s := NewPaceStore(10, 1)

	l1 := s.Get("flux-dev")
	l2 := s.Get("flux-dev")
	if l1 != l2 {
		t.Fatalf("expected same limiter pointer for same model")
	}
}

func TestPaceStore_LowBurstRejectsSecondImmediateAllow(t *testing.T) {
	s := NewPaceStore(0.02, 1)

	lim := s.Get("flux-dev")
	if !lim.Allow() {
		t.Fatalf("expected first Allow to be true")
	}
	if lim.Allow() {
		t.Fatalf("expected second immediate Allow to be false (burst=1)")
	}
}

func TestPaceStore_WaitHonoursContext(t *testing.T) {
	s := NewPaceStore(0.01, 1)

	// consome o burst
	if err := s.Wait(context.Background(), "flux-dev"); err != nil {
		t.Fatalf("unexpected error on first wait: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := s.Wait(ctx, "flux-dev"); err == nil {
		t.Fatalf("expected wait to fail when context expires before a token")
	}
}

func TestPaceStore_CleanupRemovesIdleEntries(t *testing.T) {
	s := NewPaceStore(10, 1, WithIdleTTL(2*time.Millisecond), WithCleanupEvery(0))

	before := s.Get("flux-dev")
	time.Sleep(4 * time.Millisecond)

	s.Cleanup()

	after := s.Get("flux-dev")
	if before == after {
		t.Fatalf("expected limiter to be recreated after cleanup")
	}
}
