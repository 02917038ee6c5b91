package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dropbox/godropbox/time2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/RankoXXX/exidvpn-server/internal/ledger"
)

const redisKeyPrefix = "exidvpn:session:"

// RedisStore backs sessions with Redis so several gateway replicas can share
// one session space. The value includes the burner secret, so records are
// sealed with the given cipher before they leave the process; a nil cipher
// stores them in plaintext and is only acceptable for local development.
type RedisStore struct {
	client *redis.Client
	cipher *SecretCipher

	derivation ledger.Derivation
	ttl        time.Duration
	clock      time2.Clock
}

// NewRedisStore creates a Redis-backed store using the given client.
func NewRedisStore(client *redis.Client, cipher *SecretCipher, derivation ledger.Derivation, ttl time.Duration, clock time2.Clock) *RedisStore {
	return &RedisStore{
		client:     client,
		cipher:     cipher,
		derivation: derivation,
		ttl:        ttl,
		clock:      clock,
	}
}

var _ Store = (*RedisStore)(nil)

// Create implements Store. Redis handles physical eviction through the key
// TTL; no sweep is required.
func (s *RedisStore) Create(ctx context.Context) (*Session, error) {
	burner, err := ledger.NewKeypair()
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate burner keypair")
	}

	depositAddress, err := ledger.AssociatedTokenAddress(burner.Address(), s.derivation)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive deposit address")
	}

	now := s.clock.Now()
	sess := &Session{
		ID:             "pay-" + uuid.New().String(),
		Burner:         burner,
		DepositAddress: depositAddress,
		CreatedAt:      now,
		ExpiresAt:      now.Add(s.ttl),
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal session")
	}

	if s.cipher != nil {
		if data, err = s.cipher.Seal(data); err != nil {
			return nil, errors.Wrap(err, "failed to seal session")
		}
	}

	if err := s.client.Set(ctx, redisKeyPrefix+sess.ID, data, s.ttl).Err(); err != nil {
		return nil, errors.Wrap(err, "failed to save session")
	}

	return sess, nil
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	data, err := s.client.Get(ctx, redisKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to get session")
	}

	if s.cipher != nil {
		if data, err = s.cipher.Open(data); err != nil {
			return nil, errors.Wrap(err, "failed to open session")
		}
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal session")
	}

	// the key TTL and ExpiresAt agree at write time, but enforce logical
	// expiry on read regardless
	if sess.Expired(s.clock.Now()) {
		return nil, ErrNotFound
	}

	return &sess, nil
}

// Delete implements Store. Deleting an absent key is a no-op in Redis, which
// gives us idempotency for free.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+id).Err(); err != nil {
		return errors.Wrap(err, "failed to delete session")
	}

	return nil
}
