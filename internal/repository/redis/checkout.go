package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nicofzzn/ecommerce/internal/domain"
	"github.com/nicofzzn/ecommerce/pkg/database"
)

const keyPrefix = "checkout:"

// CheckoutRepository implements repository.CheckoutRepository using Redis.
// Each session is one JSON value; reads and writes both reset its TTL.
type CheckoutRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCheckoutRepository creates a new Redis-backed checkout session store.
func NewCheckoutRepository(client *redis.Client, ttl time.Duration) *CheckoutRepository {
	return &CheckoutRepository{client: client, ttl: ttl}
}

func key(id string) string { return keyPrefix + id }

// Get loads a session and extends its lifetime.
func (r *CheckoutRepository) Get(ctx context.Context, id string) (_ *domain.CheckoutSession, err error) {
	ctx, end := database.TraceCommand(ctx, "redis", "GetCheckout", "GETEX")
	defer func() { end(err) }()

	data, err := r.client.GetEx(ctx, key(id), r.ttl).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrCheckoutNotFound
		}
		return nil, database.Classify("redis get checkout", err)
	}

	var s domain.CheckoutSession
	if err = json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal checkout session: %w", err)
	}
	return &s, nil
}

// Save writes the session with a fresh TTL.
func (r *CheckoutRepository) Save(ctx context.Context, s *domain.CheckoutSession) (err error) {
	ctx, end := database.TraceCommand(ctx, "redis", "SaveCheckout", "SET")
	defer func() { end(err) }()

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal checkout session: %w", err)
	}
	if err = r.client.Set(ctx, key(s.ID), data, r.ttl).Err(); err != nil {
		return database.Classify("redis set checkout", err)
	}
	return nil
}

// Delete discards a session. Deleting a missing session is not an error.
func (r *CheckoutRepository) Delete(ctx context.Context, id string) (err error) {
	ctx, end := database.TraceCommand(ctx, "redis", "DeleteCheckout", "DEL")
	defer func() { end(err) }()

	if err = r.client.Del(ctx, key(id)).Err(); err != nil {
		return database.Classify("redis del checkout", err)
	}
	return nil
}

// Ping checks the connection for readiness probes.
func (r *CheckoutRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
