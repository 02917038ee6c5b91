package pool

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/RankoXXX/exidvpn-server/internal/ledger"
	"github.com/RankoXXX/exidvpn-server/internal/util"
)

// Result carries the two settlement references of a completed relay run.
type Result struct {
	DepositSignature  string
	WithdrawSignature string
}

// Relay drives the two-phase deposit-then-withdraw sequence that breaks the
// on-chain link between the funding wallet and the payout wallet. It never
// retries: a failed phase is terminal for the run and retry policy belongs
// to the caller.
type Relay struct {
	factory     Factory
	destination string
	amount      uint64
	settleDelay time.Duration
}

// NewRelay creates a relay moving exactly amount minor units per run to the
// fixed destination address.
func NewRelay(factory Factory, destination string, amount uint64, settleDelay time.Duration) *Relay {
	return &Relay{
		factory:     factory,
		destination: destination,
		amount:      amount,
		settleDelay: settleDelay,
	}
}

// Run is one in-flight relay sequence. It is created by Deposit and consumed
// by Withdraw, so callers can observe each phase separately.
type Run struct {
	relay  *Relay
	client Client
	burner string

	DepositSignature string
}

// Deposit runs the first pool phase under the burner identity.
func (r *Relay) Deposit(ctx context.Context, burner *ledger.Keypair) (*Run, error) {
	client := r.factory.ForIdentity(burner)

	depositSig, err := client.Deposit(ctx, r.amount)
	if err != nil {
		return nil, errors.Wrap(err, "failed to deposit into privacy pool")
	}

	util.LogFromContext(ctx).Info().
		Str("deposit_signature", depositSig).
		Uint64("amount", r.amount).
		Msg("Pool deposit settled, waiting before withdrawal")

	return &Run{
		relay:            r,
		client:           client,
		burner:           burner.Address(),
		DepositSignature: depositSig,
	}, nil
}

// Withdraw waits out the settling delay and runs the second pool phase. The
// fixed delay gives the pool time to record the deposit before the
// withdrawal references it; it is a heuristic, not a confirmation poll.
func (run *Run) Withdraw(ctx context.Context) (string, error) {
	log := util.LogFromContext(ctx)

	if err := sleepCtx(ctx, run.relay.settleDelay); err != nil {
		// funds are already inside the pool under the burner identity;
		// losing this run strands them there
		log.Error().
			Str("deposit_signature", run.DepositSignature).
			Str("burner", run.burner).
			Msg("Run aborted between deposit and withdrawal, funds remain pool-side")
		return "", errors.Wrap(err, "aborted before withdrawal")
	}

	withdrawSig, err := run.client.Withdraw(ctx, run.relay.amount, run.relay.destination)
	if err != nil {
		log.Error().
			Err(err).
			Str("deposit_signature", run.DepositSignature).
			Str("burner", run.burner).
			Msg("Withdrawal failed after a successful deposit, funds remain pool-side")
		return "", errors.Wrap(err, "failed to withdraw from privacy pool")
	}

	return withdrawSig, nil
}

// Execute runs both phases back to back.
func (r *Relay) Execute(ctx context.Context, burner *ledger.Keypair) (*Result, error) {
	run, err := r.Deposit(ctx, burner)
	if err != nil {
		return nil, err
	}

	withdrawSig, err := run.Withdraw(ctx)
	if err != nil {
		return nil, err
	}

	return &Result{
		DepositSignature:  run.DepositSignature,
		WithdrawSignature: withdrawSig,
	}, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
