package authrequest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"scp-gateway/internal/auth/models"
	"scp-gateway/pkg/platform/sentinel"
)

// RedisStore keeps authorization requests and magic links in Redis with
// per-key expiry. Magic links are consumed with GETDEL so a token resolves at
// most once even under concurrent confirms.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedis constructs a Redis-backed store.
func NewRedis(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Save(ctx context.Context, req *models.AuthorizationRequest, ttl time.Duration) error {
	payload, err := encode(req)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, requestKey(req.ID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("persist authorization request: %w", err)
	}
	return nil
}

func (s *RedisStore) Find(ctx context.Context, id string) (*models.AuthorizationRequest, error) {
	payload, err := s.client.Get(ctx, requestKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("authorization request not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("load authorization request: %w", err)
	}
	return decode(payload)
}

// Update overwrites an existing request, keeping its TTL. XX prevents
// resurrecting a key that expired between read and write.
func (s *RedisStore) Update(ctx context.Context, req *models.AuthorizationRequest) error {
	payload, err := encode(req)
	if err != nil {
		return err
	}
	err = s.client.SetArgs(ctx, requestKey(req.ID), payload, redis.SetArgs{
		Mode:    "XX",
		KeepTTL: true,
	}).Err()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return fmt.Errorf("authorization request not found: %w", sentinel.ErrNotFound)
		}
		return fmt.Errorf("update authorization request: %w", err)
	}
	return nil
}

func (s *RedisStore) SaveMagicLink(ctx context.Context, token, requestID string, ttl time.Duration) error {
	if err := s.client.Set(ctx, magicLinkKey(token), requestID, ttl).Err(); err != nil {
		return fmt.Errorf("persist magic link: %w", err)
	}
	return nil
}

func (s *RedisStore) ConsumeMagicLink(ctx context.Context, token string) (string, error) {
	requestID, err := s.client.GetDel(ctx, magicLinkKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", fmt.Errorf("magic link not found: %w", sentinel.ErrNotFound)
		}
		return "", fmt.Errorf("consume magic link: %w", err)
	}
	return requestID, nil
}
