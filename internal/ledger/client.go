package ledger

import (
	"bytes"
	"context"
	"encoding/json"
)

// Blockhash is the latest finalized block reference used by clients to build
// transactions.
type Blockhash struct {
	Blockhash            string `json:"blockhash"`
	LastValidBlockHeight uint64 `json:"lastValidBlockHeight"`
}

// SignatureStatus mirrors the ledger's per-signature confirmation record.
// Err carries the raw on-chain error payload; a JSON null means none.
type SignatureStatus struct {
	Slot               uint64          `json:"slot"`
	Confirmations      *uint64         `json:"confirmations"`
	ConfirmationStatus string          `json:"confirmationStatus"`
	Err                json.RawMessage `json:"err"`
}

// Failed reports whether the transaction landed on chain with an error
// attached. This is a terminal condition regardless of confirmation level.
func (s *SignatureStatus) Failed() bool {
	return len(s.Err) > 0 && !bytes.Equal(s.Err, []byte("null"))
}

// Confirmed reports whether the signature reached at least the confirmed
// commitment level.
func (s *SignatureStatus) Confirmed() bool {
	return s.ConfirmationStatus == "confirmed" || s.ConfirmationStatus == "finalized"
}

// SendOptions control transaction submission.
type SendOptions struct {
	SkipPreflight bool
	MaxRetries    int
}

// Client is the ledger RPC surface the payment core depends on. The concrete
// adapter lives in rpc.go; tests substitute a mock.
type Client interface {
	// LatestBlockhash fetches the latest finalized block reference.
	LatestBlockhash(ctx context.Context) (*Blockhash, error)

	// SignatureStatus fetches the confirmation status for a transaction
	// signature. A (nil, nil) return means the ledger has not seen the
	// signature yet.
	SignatureStatus(ctx context.Context, signature string) (*SignatureStatus, error)

	// TokenAccountBalance returns the token balance of the given
	// token-account address in minor units.
	TokenAccountBalance(ctx context.Context, address string) (uint64, error)

	// SendRawTransaction submits pre-signed transaction bytes and returns
	// the resulting signature. Submission retries are delegated to the RPC
	// node via opts.MaxRetries.
	SendRawTransaction(ctx context.Context, raw []byte, opts SendOptions) (string, error)
}
