package jobs

import (
	"testing"
	"time"
)

func TestCalculateNextRetryFirstAttempt(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	got := CalculateNextRetry(now, 1, 5*time.Second, 5*time.Minute)

	want := now.Add(10 * time.Second)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestCalculateNextRetryDoublesPerAttempt(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	base := 5 * time.Second
	cap := 5 * time.Minute

	wantDelays := []time.Duration{
		10 * time.Second,  // attempt 1: base * 2^1
		20 * time.Second,  // attempt 2
		40 * time.Second,  // attempt 3
		80 * time.Second,  // attempt 4
		160 * time.Second, // attempt 5
	}

	for i, want := range wantDelays {
		got := CalculateNextRetry(now, i+1, base, cap)
		if !got.Equal(now.Add(want)) {
			t.Fatalf("attempt %d: expected delay %v, got %v", i+1, want, got.Sub(now))
		}
	}
}

func TestCalculateNextRetryCapped(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	got := CalculateNextRetry(now, 20, 5*time.Second, 5*time.Minute)
	if !got.Equal(now.Add(5 * time.Minute)) {
		t.Fatalf("expected cap of 5m, got delay %v", got.Sub(now))
	}
}

func TestCalculateNextRetryMonotonicUntilCap(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	prev := CalculateNextRetry(now, 1, 5*time.Second, 5*time.Minute)
	for count := 2; count <= 10; count++ {
		next := CalculateNextRetry(now, count, 5*time.Second, 5*time.Minute)
		if next.Before(prev) {
			t.Fatalf("delay decreased between attempt %d and %d", count-1, count)
		}
		prev = next
	}
}

func TestCalculateNextRetryZeroCountTreatedAsFirst(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	got := CalculateNextRetry(now, 0, 5*time.Second, 5*time.Minute)
	if !got.Equal(now.Add(10 * time.Second)) {
		t.Fatalf("expected first-retry delay for count 0, got %v", got.Sub(now))
	}
}
