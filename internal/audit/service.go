package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/ariefcatur/go-lamp-marketplace.git/internal/market"
	"github.com/ariefcatur/go-lamp-marketplace.git/internal/redisx"
)

// Trail is the durable sink for order events; satisfied by Repo.
type Trail interface {
	Insert(ctx context.Context, rec Record) error
}

// Dedup short-circuits replays before they hit the database. Best effort: a
// miss just means the insert runs and the unique event_id column decides.
type Dedup interface {
	Seen(ctx context.Context, eventID string) bool
	Mark(ctx context.Context, eventID string)
}

// RedisDedup keys processed event ids per consuming service with a TTL.
type RedisDedup struct {
	Client      *redis.Client
	ServiceName string
}

func (d *RedisDedup) key(eventID string) string {
	return fmt.Sprintf(redisx.KeyDedup, d.ServiceName, eventID)
}

func (d *RedisDedup) Seen(ctx context.Context, eventID string) bool {
	exists, _ := redisx.Exists(ctx, d.Client, d.key(eventID))
	return exists
}

func (d *RedisDedup) Mark(ctx context.Context, eventID string) {
	_ = d.Client.Set(ctx, d.key(eventID), "1", redisx.TTLDedup).Err()
}

// Service consumes order lifecycle events and appends them to the trail.
type Service struct {
	Trail Trail
	Dedup Dedup
}

func (s *Service) HandleEvent(ctx context.Context, m kafkago.Message) error {
	var env market.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		// Malformed message: log and commit, a replay will not fix it.
		slog.Error("audit: drop malformed event", "err", err)
		return nil
	}

	switch env.EventType {
	case market.EventOrderPlaced, market.EventOrderCancelled, market.EventOrderStatusChanged:
	default:
		return nil // not an order event
	}

	if s.Dedup != nil && s.Dedup.Seen(ctx, env.EventID) {
		return nil
	}

	err := s.Trail.Insert(ctx, Record{
		EventID:    env.EventID,
		EventType:  env.EventType,
		OrderID:    env.CorrelationID,
		Detail:     env.Payload,
		OccurredAt: env.OccurredAt,
	})
	if err != nil {
		return err
	}

	if s.Dedup != nil {
		s.Dedup.Mark(ctx, env.EventID)
	}
	return nil
}
