package pool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/RankoXXX/exidvpn-server/internal/ledger"
)

// RelayerFactory builds HTTP clients against the pool's relayer API. Each
// request body is signed with the burner key so the relayer can verify the
// caller controls the pool-facing identity without ever seeing the key.
type RelayerFactory struct {
	baseURL string
	mint    string
	http    *http.Client
}

// NewRelayerFactory creates a factory for the given relayer endpoint.
func NewRelayerFactory(baseURL, mint string) *RelayerFactory {
	return &RelayerFactory{
		baseURL: baseURL,
		mint:    mint,
		http: &http.Client{
			Timeout: 90 * time.Second,
		},
	}
}

var _ Factory = (*RelayerFactory)(nil)

// ForIdentity implements Factory.
func (f *RelayerFactory) ForIdentity(burner *ledger.Keypair) Client {
	return &relayerClient{factory: f, burner: burner}
}

type relayerClient struct {
	factory *RelayerFactory
	burner  *ledger.Keypair
}

type relayerRequest struct {
	Owner       string `json:"owner"`
	Mint        string `json:"mint"`
	Amount      uint64 `json:"amount"`
	Destination string `json:"destination,omitempty"`
	Signature   string `json:"signature"`
}

type relayerResponse struct {
	Success   bool   `json:"success"`
	Signature string `json:"signature"`
	Error     string `json:"error"`
}

// Deposit implements Client.
func (c *relayerClient) Deposit(ctx context.Context, amount uint64) (string, error) {
	return c.post(ctx, "/v1/deposit", relayerRequest{
		Owner:  c.burner.Address(),
		Mint:   c.factory.mint,
		Amount: amount,
	})
}

// Withdraw implements Client.
func (c *relayerClient) Withdraw(ctx context.Context, amount uint64, destination string) (string, error) {
	return c.post(ctx, "/v1/withdraw", relayerRequest{
		Owner:       c.burner.Address(),
		Mint:        c.factory.mint,
		Amount:      amount,
		Destination: destination,
	})
}

func (c *relayerClient) post(ctx context.Context, path string, req relayerRequest) (string, error) {
	// sign the canonical request string, not the JSON bytes, so field order
	// can never break verification
	canonical := fmt.Sprintf("%s|%s|%d|%s", req.Owner, req.Mint, req.Amount, req.Destination)
	req.Signature = base58.Encode(c.burner.Sign([]byte(canonical)))

	body, err := json.Marshal(req)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal relayer request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.factory.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "failed to build relayer request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := c.factory.http.Do(httpReq)
	if err != nil {
		return "", errors.Wrapf(err, "relayer call %s failed", path)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return "", errors.Wrap(err, "failed to read relayer response")
	}

	var parsed relayerResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", errors.Wrapf(err, "failed to unmarshal relayer response (status %d)", res.StatusCode)
	}

	if res.StatusCode != http.StatusOK || !parsed.Success {
		if parsed.Error != "" {
			return "", errors.Errorf("relayer rejected %s: %s", path, parsed.Error)
		}
		return "", errors.Errorf("relayer call %s returned status %d", path, res.StatusCode)
	}

	if parsed.Signature == "" {
		return "", errors.Errorf("relayer %s response is missing the settlement signature", path)
	}

	return parsed.Signature, nil
}
