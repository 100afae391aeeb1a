package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// eventKeyPrefix namespaces ledger entries in the shared Redis instance.
const eventKeyPrefix = "webhook:event:"

// EventLedger records which provider event IDs have already been processed,
// making at-least-once webhook delivery safe to replay.
type EventLedger interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Record(ctx context.Context, eventID string) error
}

// RedisEventLedger implements EventLedger with TTL-bounded Redis keys. The
// retention window only needs to outlive the provider's redelivery horizon.
type RedisEventLedger struct {
	Client    *redis.Client
	Retention time.Duration
}

// NewRedisEventLedger returns a ledger with the given retention window.
func NewRedisEventLedger(client *redis.Client, retention time.Duration) *RedisEventLedger {
	return &RedisEventLedger{Client: client, Retention: retention}
}

// Seen reports whether the event ID has already been processed.
func (l *RedisEventLedger) Seen(ctx context.Context, eventID string) (bool, error) {
	err := l.Client.Get(ctx, eventKeyPrefix+eventID).Err()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("event ledger lookup failed: %w", err)
	}
	return true, nil
}

// Record marks the event ID as processed. Callers invoke this only after the
// resulting state transition has been durably applied.
func (l *RedisEventLedger) Record(ctx context.Context, eventID string) error {
	if err := l.Client.Set(ctx, eventKeyPrefix+eventID, "1", l.Retention).Err(); err != nil {
		return fmt.Errorf("event ledger write failed: %w", err)
	}
	return nil
}
