package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"stayhub/models"
	"stayhub/utils"

	"github.com/go-redis/redis/v8"
)

// SessionStore persists booking transaction snapshots between facade calls.
type SessionStore interface {
	Save(ctx context.Context, tx *models.BookingTransaction) error
	Get(ctx context.Context, txID string) (*models.BookingTransaction, error)
	Delete(ctx context.Context, txID string) error
}

// RedisSessionStore keeps transactions in Redis with the lock TTL, so an
// abandoned transaction disappears together with its price lock.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSessionStore builds a session store over the given client.
func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, ttl: ttl}
}

// Save stores the transaction snapshot, refreshing its TTL.
func (s *RedisSessionStore) Save(ctx context.Context, tx *models.BookingTransaction) error {
	data, err := json.Marshal(tx)
	if err != nil {
		return fmt.Errorf("failed to marshal booking transaction: %w", err)
	}
	if err := s.client.Set(ctx, utils.TxSessionPrefix+tx.TxID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store booking transaction: %w", err)
	}
	return nil
}

// Get loads a transaction snapshot. A missing or expired key reads as an
// expired transaction.
func (s *RedisSessionStore) Get(ctx context.Context, txID string) (*models.BookingTransaction, error) {
	data, err := s.client.Get(ctx, utils.TxSessionPrefix+txID).Result()
	if err == redis.Nil {
		return nil, &TxNotFoundError{TxID: txID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load booking transaction: %w", err)
	}
	var tx models.BookingTransaction
	if err := json.Unmarshal([]byte(data), &tx); err != nil {
		return nil, fmt.Errorf("failed to parse booking transaction: %w", err)
	}
	return &tx, nil
}

// Delete removes a transaction snapshot.
func (s *RedisSessionStore) Delete(ctx context.Context, txID string) error {
	return s.client.Del(ctx, utils.TxSessionPrefix+txID).Err()
}
