package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const revocationKeyPrefix = "revoked:subject:"

// RevocationStore tracks subjects whose outstanding tokens must be
// rejected before natural expiry. Deactivating an account revokes its
// subject for one token lifetime; after that any token it held has
// expired on its own.
type RevocationStore interface {
	Revoke(ctx context.Context, subject string, ttl time.Duration) error
	IsRevoked(ctx context.Context, subject string) (bool, error)
}

type redisRevocationStore struct {
	client *redis.Client
}

// NewRevocationStore returns a Redis-backed store, or a no-op store when
// no client is configured (stateless tokens then behave as in the source
// design).
func NewRevocationStore(client *redis.Client) RevocationStore {
	if client == nil {
		return NoopRevocationStore{}
	}
	return &redisRevocationStore{client: client}
}

func (s *redisRevocationStore) Revoke(ctx context.Context, subject string, ttl time.Duration) error {
	return s.client.Set(ctx, revocationKeyPrefix+subject, "1", ttl).Err()
}

// IsRevoked fails open: an unreachable Redis degrades to stateless tokens
// rather than locking every caller out.
func (s *redisRevocationStore) IsRevoked(ctx context.Context, subject string) (bool, error) {
	n, err := s.client.Exists(ctx, revocationKeyPrefix+subject).Result()
	if err != nil {
		return false, nil
	}
	return n > 0, nil
}

// NoopRevocationStore never revokes anything.
type NoopRevocationStore struct{}

func (NoopRevocationStore) Revoke(context.Context, string, time.Duration) error { return nil }

func (NoopRevocationStore) IsRevoked(context.Context, string) (bool, error) { return false, nil }
