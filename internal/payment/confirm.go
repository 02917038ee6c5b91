package payment

import (
	"context"
	"encoding/json"

	"github.com/RankoXXX/exidvpn-server/internal/ledger"
	"github.com/RankoXXX/exidvpn-server/internal/util"
)

// ConfirmationWaiter polls the ledger until a transaction signature reaches
// a terminal confirmation state or the retry budget runs out.
type ConfirmationWaiter struct {
	ledger ledger.Client
	policy RetryPolicy
}

// NewConfirmationWaiter creates a waiter with the given budget.
func NewConfirmationWaiter(client ledger.Client, policy RetryPolicy) *ConfirmationWaiter {
	return &ConfirmationWaiter{ledger: client, policy: policy}
}

// Wait returns nil the first time the signature is confirmed or finalized
// without an on-chain error. An attached on-chain error fails immediately; a
// not-yet-visible signature and per-attempt query errors are transient.
func (w *ConfirmationWaiter) Wait(ctx context.Context, signature string) error {
	log := util.LogFromContext(ctx)

	for attempt := 1; attempt <= w.policy.MaxAttempts; attempt++ {
		status, err := w.ledger.SignatureStatus(ctx, signature)
		switch {
		case err != nil:
			log.Warn().
				Err(err).
				Int("attempt", attempt).
				Str("signature", signature).
				Msg("Confirmation status query failed, retrying")

		case status == nil:
			// not visible yet, keep polling

		case status.Failed():
			return &TransactionFailedError{
				Signature: signature,
				Detail:    rawErrString(status.Err),
			}

		case status.Confirmed():
			log.Info().
				Str("signature", signature).
				Str("commitment", status.ConfirmationStatus).
				Int("attempt", attempt).
				Msg("Funding transaction confirmed")
			return nil
		}

		if attempt < w.policy.MaxAttempts {
			if err := w.policy.Wait(ctx); err != nil {
				return err
			}
		}
	}

	return ErrConfirmationTimeout
}

func rawErrString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "unknown error"
	}
	return string(raw)
}
