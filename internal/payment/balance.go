package payment

import (
	"context"

	"github.com/RankoXXX/exidvpn-server/internal/ledger"
	"github.com/RankoXXX/exidvpn-server/internal/util"
)

// BalanceVerifier polls a token account until its balance meets a required
// minimum or the retry budget is exhausted.
type BalanceVerifier struct {
	ledger ledger.Client
	policy RetryPolicy
}

// NewBalanceVerifier creates a verifier with the given budget.
func NewBalanceVerifier(client ledger.Client, policy RetryPolicy) *BalanceVerifier {
	return &BalanceVerifier{ledger: client, policy: policy}
}

// Verify returns the observed balance as soon as it is >= required. Query
// errors are transient (an unfunded token account does not exist yet on the
// ledger, so "not found" is expected early on). Budget exhaustion yields an
// InsufficientFundsError carrying the last observation.
func (v *BalanceVerifier) Verify(ctx context.Context, address string, required uint64) (uint64, error) {
	log := util.LogFromContext(ctx)

	var observed uint64
	for attempt := 1; attempt <= v.policy.MaxAttempts; attempt++ {
		amount, err := v.ledger.TokenAccountBalance(ctx, address)
		if err != nil {
			log.Warn().
				Err(err).
				Int("attempt", attempt).
				Str("address", address).
				Msg("Balance query failed, retrying")
		} else {
			observed = amount
			if observed >= required {
				log.Info().
					Uint64("observed", observed).
					Uint64("required", required).
					Int("attempt", attempt).
					Msg("Deposit balance verified")
				return observed, nil
			}

			log.Debug().
				Uint64("observed", observed).
				Uint64("required", required).
				Int("attempt", attempt).
				Msg("Deposit balance below requirement")
		}

		if attempt < v.policy.MaxAttempts {
			if err := v.policy.Wait(ctx); err != nil {
				return observed, err
			}
		}
	}

	return observed, &InsufficientFundsError{Observed: observed, Required: required}
}
