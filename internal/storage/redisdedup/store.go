package redisdedup

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/omnicart/fulfillment/internal/domain/repository"
)

// defaultRetention bounds dedup set growth. Old members only matter for the
// broker's redelivery window, which is far shorter than this.
const defaultRetention = 7 * 24 * time.Hour

// Store records processed event ids in Redis sets, one set per consumer
// group.
type Store struct {
	client    *redis.Client
	retention time.Duration
}

var _ repository.ProcessedEventRepository = (*Store)(nil)

// New creates a dedup store over the given Redis address.
func New(addr string) *Store {
	return &Store{
		client:    redis.NewClient(&redis.Options{Addr: addr}),
		retention: defaultRetention,
	}
}

// IsProcessed reports whether the event id is already a member of the
// consumer group's dedup set.
func (s *Store) IsProcessed(ctx context.Context, consumerGroup, eventID string) (bool, error) {
	return s.client.SIsMember(ctx, consumerGroup, eventID).Result()
}

// MarkProcessed adds the event id to the consumer group's dedup set and
// refreshes the set retention window.
func (s *Store) MarkProcessed(ctx context.Context, consumerGroup, eventID string) error {
	if err := s.client.SAdd(ctx, consumerGroup, eventID).Err(); err != nil {
		return err
	}
	return s.client.Expire(ctx, consumerGroup, s.retention).Err()
}

// HealthCheck verifies Redis connectivity.
func (s *Store) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.client.Ping(ctx).Err()
}

// Close releases the client connection pool.
func (s *Store) Close() error {
	return s.client.Close()
}
