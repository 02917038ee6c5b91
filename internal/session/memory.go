package session

import (
	"context"
	"sync"
	"time"

	"github.com/dropbox/godropbox/time2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/RankoXXX/exidvpn-server/internal/ledger"
)

// MemoryStore is the default process-local session store. Entries are lost
// on restart; an in-flight session cannot survive one.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*Session

	derivation ledger.Derivation
	ttl        time.Duration
	clock      time2.Clock
}

// NewMemoryStore creates an empty store. The clock is injected so expiry
// behavior is testable.
func NewMemoryStore(derivation ledger.Derivation, ttl time.Duration, clock time2.Clock) *MemoryStore {
	return &MemoryStore{
		sessions:   make(map[string]*Session),
		derivation: derivation,
		ttl:        ttl,
		clock:      clock,
	}
}

var _ Store = (*MemoryStore)(nil)

// Create implements Store. Expired entries are evicted opportunistically on
// every create, which amortizes cleanup without a background task.
func (s *MemoryStore) Create(_ context.Context) (*Session, error) {
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

	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictExpiredLocked(now)
	s.sessions[sess.ID] = sess

	return sess, nil
}

// Get implements Store. Logical expiry is enforced on read even if the
// eviction sweep has not caught the entry yet. The returned session is a
// deep copy: an eviction sweep racing a pipeline run zeroes only the
// store-resident keypair, never the one the run is signing with.
func (s *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok || sess.Expired(s.clock.Now()) {
		return nil, ErrNotFound
	}

	out := *sess
	out.Burner = sess.Burner.Clone()

	return &out, nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[id]; ok {
		sess.Burner.Zero()
		delete(s.sessions, id)
	}

	return nil
}

// Len reports the number of physically present entries, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.sessions)
}

func (s *MemoryStore) evictExpiredLocked(now time.Time) {
	for id, sess := range s.sessions {
		if sess.Expired(now) {
			sess.Burner.Zero()
			delete(s.sessions, id)
			log.Debug().Str("session_id", id).Msg("Evicted expired session")
		}
	}
}
