package types

import (
	"github.com/go-openapi/swag"
	"github.com/pkg/errors"
)

// GetPaymentInfoResponse describes everything a client needs to fund a
// session: where the money ultimately goes, how much of which token, and the
// native top-up that covers account rent and fees.
type GetPaymentInfoResponse struct {
	Success           bool    `json:"success"`
	DestinationWallet *string `json:"destinationWallet"`
	AmountMinor       uint64  `json:"amountMinor"`
	Amount            float64 `json:"amount"`
	TokenSymbol       string  `json:"tokenSymbol"`
	MintAddress       *string `json:"mintAddress"`
	NativeFeeMinor    uint64  `json:"nativeFeeMinor"`
	NativeFee         float64 `json:"nativeFee"`
}

func (r *GetPaymentInfoResponse) Validate() error {
	if swag.StringValue(r.DestinationWallet) == "" {
		return errors.New("destinationWallet is required")
	}
	if swag.StringValue(r.MintAddress) == "" {
		return errors.New("mintAddress is required")
	}

	return nil
}

// GetBlockhashResponse carries the latest finalized block reference.
type GetBlockhashResponse struct {
	Success              bool    `json:"success"`
	Blockhash            *string `json:"blockhash"`
	LastValidBlockHeight uint64  `json:"lastValidBlockHeight"`
}

func (r *GetBlockhashResponse) Validate() error {
	if swag.StringValue(r.Blockhash) == "" {
		return errors.New("blockhash is required")
	}

	return nil
}

// PostExecutePrivacyTransactionPayload identifies the session to run and
// optionally the funding transaction to wait on before verifying the balance.
type PostExecutePrivacyTransactionPayload struct {
	SessionID          *string `json:"sessionId"`
	FundingTxSignature string  `json:"fundingTxSignature,omitempty"`
}

func (p *PostExecutePrivacyTransactionPayload) Validate() error {
	if swag.StringValue(p.SessionID) == "" {
		return errors.New("sessionId is required")
	}

	return nil
}

// PostExecutePrivacyTransactionResponse is the all-or-nothing success body:
// the activation material plus the settlement references of both pool phases.
type PostExecutePrivacyTransactionResponse struct {
	Success           bool    `json:"success"`
	DeviceID          *string `json:"deviceId"`
	DeviceToken       *string `json:"deviceToken"`
	ActivationRef     *string `json:"activationRef"`
	DepositSignature  string  `json:"depositSignature,omitempty"`
	WithdrawSignature *string `json:"withdrawSignature"`
}

func (r *PostExecutePrivacyTransactionResponse) Validate() error {
	if swag.StringValue(r.DeviceID) == "" {
		return errors.New("deviceId is required")
	}
	if swag.StringValue(r.DeviceToken) == "" {
		return errors.New("deviceToken is required")
	}
	if swag.StringValue(r.ActivationRef) == "" {
		return errors.New("activationRef is required")
	}
	if swag.StringValue(r.WithdrawSignature) == "" {
		return errors.New("withdrawSignature is required")
	}

	return nil
}

// PostSendTransactionPayload wraps client-signed transaction bytes in any of
// the accepted encodings.
type PostSendTransactionPayload struct {
	SignedTransaction TransactionBytes `json:"signedTransaction"`
}

func (p *PostSendTransactionPayload) Validate() error {
	if len(p.SignedTransaction) == 0 {
		return errors.New("signedTransaction is required")
	}

	return nil
}

// PostSendTransactionResponse returns the ledger signature of the relayed
// transaction verbatim.
type PostSendTransactionResponse struct {
	Success   bool    `json:"success"`
	Signature *string `json:"signature"`
}

func (r *PostSendTransactionResponse) Validate() error {
	if swag.StringValue(r.Signature) == "" {
		return errors.New("signature is required")
	}

	return nil
}
