package ledger

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// RPCClient is a thin JSON-RPC 2.0 adapter over the ledger's HTTP endpoint.
type RPCClient struct {
	endpoint string
	http     *http.Client
}

// NewRPCClient creates a client for the given RPC endpoint.
func NewRPCClient(endpoint string) *RPCClient {
	return &RPCClient{
		endpoint: endpoint,
		http: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

var _ Client = (*RPCClient)(nil)

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

func (c *RPCClient) call(ctx context.Context, method string, params []interface{}, out interface{}) error {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return errors.Wrap(err, "failed to marshal rpc request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "failed to build rpc request")
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "rpc call %s failed", method)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read rpc response")
	}
	if res.StatusCode != http.StatusOK {
		return errors.Errorf("rpc call %s returned status %d", method, res.StatusCode)
	}

	var parsed rpcResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return errors.Wrap(err, "failed to unmarshal rpc response")
	}
	if parsed.Error != nil {
		return errors.Errorf("rpc call %s failed: %s (code %d)", method, parsed.Error.Message, parsed.Error.Code)
	}

	if out != nil {
		if err := json.Unmarshal(parsed.Result, out); err != nil {
			return errors.Wrapf(err, "failed to unmarshal %s result", method)
		}
	}

	return nil
}

// LatestBlockhash implements Client.
func (c *RPCClient) LatestBlockhash(ctx context.Context) (*Blockhash, error) {
	var result struct {
		Value Blockhash `json:"value"`
	}

	params := []interface{}{
		map[string]interface{}{"commitment": "finalized"},
	}
	if err := c.call(ctx, "getLatestBlockhash", params, &result); err != nil {
		return nil, err
	}

	return &result.Value, nil
}

// SignatureStatus implements Client. Unknown signatures yield (nil, nil).
func (c *RPCClient) SignatureStatus(ctx context.Context, signature string) (*SignatureStatus, error) {
	var result struct {
		Value []*SignatureStatus `json:"value"`
	}

	params := []interface{}{
		[]string{signature},
		map[string]interface{}{"searchTransactionHistory": true},
	}
	if err := c.call(ctx, "getSignatureStatuses", params, &result); err != nil {
		return nil, err
	}

	if len(result.Value) == 0 {
		return nil, nil
	}

	return result.Value[0], nil
}

// TokenAccountBalance implements Client. The ledger reports balances as
// decimal strings in minor units.
func (c *RPCClient) TokenAccountBalance(ctx context.Context, address string) (uint64, error) {
	var result struct {
		Value struct {
			Amount   string `json:"amount"`
			Decimals int    `json:"decimals"`
		} `json:"value"`
	}

	if err := c.call(ctx, "getTokenAccountBalance", []interface{}{address}, &result); err != nil {
		return 0, err
	}

	amount, err := strconv.ParseUint(result.Value.Amount, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "unparsable token balance %q", result.Value.Amount)
	}

	return amount, nil
}

// SendRawTransaction implements Client.
func (c *RPCClient) SendRawTransaction(ctx context.Context, raw []byte, opts SendOptions) (string, error) {
	if len(raw) == 0 {
		return "", errors.New("raw transaction is empty")
	}

	params := []interface{}{
		base64.StdEncoding.EncodeToString(raw),
		map[string]interface{}{
			"encoding":            "base64",
			"skipPreflight":       opts.SkipPreflight,
			"preflightCommitment": "confirmed",
			"maxRetries":          opts.MaxRetries,
		},
	}

	var signature string
	if err := c.call(ctx, "sendTransaction", params, &signature); err != nil {
		return "", err
	}

	return signature, nil
}
