package pos

import (
	"context"
	"testing"
	"time"
)

type fakeTicketStore struct {
	counts  map[string]int64
	lastTTL time.Duration
}

func (f *fakeTicketStore) IncrWithTTL(_ context.Context, key string, ttl time.Duration) (int64, error) {
	if f.counts == nil {
		f.counts = make(map[string]int64)
	}
	f.counts[key]++
	f.lastTTL = ttl
	return f.counts[key], nil
}

func (f *fakeTicketStore) CounterKey(name string) string {
	return "test:counter:" + name
}

func TestRedisTicketSequenceCountsPerDay(t *testing.T) {
	store := &fakeTicketStore{}
	seq := NewRedisTicketSequence(store)
	ctx := context.Background()

	monday := time.Date(2026, 3, 2, 14, 30, 0, 0, time.UTC)
	tuesday := monday.AddDate(0, 0, 1)

	for want := int64(1); want <= 3; want++ {
		got, err := seq.Next(ctx, monday)
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		if got != want {
			t.Fatalf("expected ticket %d, got %d", want, got)
		}
	}

	// a new day restarts at 1
	got, err := seq.Next(ctx, tuesday)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if got != 1 {
		t.Fatalf("expected fresh sequence for the next day, got %d", got)
	}

	if _, ok := store.counts["test:counter:tickets:2026-03-02"]; !ok {
		t.Fatalf("expected day-scoped counter key, got %v", store.counts)
	}
	if store.lastTTL != ticketCounterTTL {
		t.Fatalf("expected ttl %v, got %v", ticketCounterTTL, store.lastTTL)
	}
}
