package pos

import (
	"context"
	"fmt"
	"time"
)

// The counter outlives the day it numbers so late-night settlements keep
// their sequence, then expires on its own.
const ticketCounterTTL = 48 * time.Hour

// TicketSequence hands out the short per-day numbers printed on receipts.
// Numbers restart at 1 each day.
type TicketSequence interface {
	Next(ctx context.Context, day time.Time) (int64, error)
}

type ticketStore interface {
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	CounterKey(name string) string
}

type redisTicketSequence struct {
	store ticketStore
}

// NewRedisTicketSequence backs the daily ticket counter with a shared redis
// counter, so every terminal draws from the same sequence.
func NewRedisTicketSequence(store ticketStore) TicketSequence {
	return &redisTicketSequence{store: store}
}

func (s *redisTicketSequence) Next(ctx context.Context, day time.Time) (int64, error) {
	key := s.store.CounterKey(fmt.Sprintf("tickets:%s", day.UTC().Format("2006-01-02")))
	return s.store.IncrWithTTL(ctx, key, ticketCounterTTL)
}
