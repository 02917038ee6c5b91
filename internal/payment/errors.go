package payment

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrSessionNotFound maps unknown and expired session ids alike.
	ErrSessionNotFound = errors.New("invalid or expired session")

	// ErrRunInFlight rejects a duplicate execute call for a session whose
	// pipeline is already running, preventing a double spend of the burner
	// balance.
	ErrRunInFlight = errors.New("a pipeline run is already in flight for this session")

	// ErrConfirmationTimeout is returned when the confirmation budget is
	// exhausted without the funding transaction reaching a terminal state.
	ErrConfirmationTimeout = errors.New("timed out waiting for funding transaction confirmation")
)

// TransactionFailedError is the terminal condition of a funding transaction
// that landed on chain with an error attached.
type TransactionFailedError struct {
	Signature string
	Detail    string
}

func (e *TransactionFailedError) Error() string {
	return fmt.Sprintf("funding transaction %s failed on chain: %s", e.Signature, e.Detail)
}

// InsufficientFundsError reports an exhausted balance-verification budget
// together with what was seen and what was needed.
type InsufficientFundsError struct {
	Observed uint64
	Required uint64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: observed=%d required=%d", e.Observed, e.Required)
}
