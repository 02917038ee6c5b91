package pool

import (
	"context"

	"github.com/RankoXXX/exidvpn-server/internal/ledger"
)

// Client is a privacy-pool handle scoped to one signing identity. The pool
// protocol itself is an opaque capability; the core only needs deposits in
// and withdrawals out.
type Client interface {
	// Deposit moves amount (minor units) from the identity's token account
	// into the shielded pool and returns the settlement signature.
	Deposit(ctx context.Context, amount uint64) (string, error)

	// Withdraw moves amount (minor units) from the pool to the destination
	// address and returns the settlement signature.
	Withdraw(ctx context.Context, amount uint64, destination string) (string, error)
}

// Factory builds pool clients bound to a burner identity. One client per
// session; identities are never shared across sessions.
type Factory interface {
	ForIdentity(burner *ledger.Keypair) Client
}
