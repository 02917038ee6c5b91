package session

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/RankoXXX/exidvpn-server/internal/ledger"
)

// ErrNotFound is returned for absent sessions and for sessions whose TTL has
// elapsed; callers cannot distinguish the two.
var ErrNotFound = errors.New("session not found or expired")

// Session is one user's in-flight payment attempt. All fields are immutable
// after creation; lifecycle state is implicit in store membership and
// ExpiresAt.
type Session struct {
	ID             string          `json:"id"`
	Burner         *ledger.Keypair `json:"burner"`
	DepositAddress string          `json:"depositAddress"`
	CreatedAt      time.Time       `json:"createdAt"`
	ExpiresAt      time.Time       `json:"expiresAt"`
}

// Expired reports logical expiry relative to now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Store holds in-flight payment sessions. Implementations must be safe for
// concurrent use by simultaneous pipeline runs.
type Store interface {
	// Create generates a burner keypair, derives its deposit address, and
	// inserts a new session with the configured TTL. Must not perform
	// network I/O against the ledger.
	Create(ctx context.Context) (*Session, error)

	// Get returns ErrNotFound for absent ids and for entries past their
	// expiry, even if eviction has not run yet.
	Get(ctx context.Context, id string) (*Session, error)

	// Delete removes the entry and zeroes its burner credential. Deleting
	// an absent id is a no-op.
	Delete(ctx context.Context, id string) error
}
