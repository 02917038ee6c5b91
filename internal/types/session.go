package types

import (
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/swag"
	"github.com/pkg/errors"
)

// PostCreateSessionResponse returns the allocated session together with the
// funding details the client needs to move money to the burner.
type PostCreateSessionResponse struct {
	Success        bool            `json:"success"`
	SessionID      *string         `json:"sessionId"`
	BurnerAddress  *string         `json:"burnerAddress"`
	DepositAddress *string         `json:"depositAddress"`
	AmountMinor    uint64          `json:"amountMinor"`
	Amount         float64         `json:"amount"`
	TokenSymbol    string          `json:"tokenSymbol"`
	MintAddress    string          `json:"mintAddress"`
	CreatedAt      strfmt.DateTime `json:"createdAt"`
	ExpiresAt      strfmt.DateTime `json:"expiresAt"`
}

func (r *PostCreateSessionResponse) Validate() error {
	if swag.StringValue(r.SessionID) == "" {
		return errors.New("sessionId is required")
	}
	if swag.StringValue(r.BurnerAddress) == "" {
		return errors.New("burnerAddress is required")
	}
	if swag.StringValue(r.DepositAddress) == "" {
		return errors.New("depositAddress is required")
	}
	if time.Time(r.ExpiresAt).IsZero() {
		return errors.New("expiresAt is required")
	}

	return nil
}

// GetHealthResponse is the liveness marker.
type GetHealthResponse struct {
	Success bool   `json:"success"`
	Status  string `json:"status"`
}

func (r *GetHealthResponse) Validate() error {
	if r.Status == "" {
		return errors.New("status is required")
	}

	return nil
}
