package ledger_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RankoXXX/exidvpn-server/internal/ledger"
)

type capturedRequest struct {
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

func newRPCServer(t *testing.T, result string, capture *capturedRequest) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if capture != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(capture))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":` + result + `}`))
	}))
}

func TestLatestBlockhash(t *testing.T) {
	srv := newRPCServer(t, `{"context":{"slot":100},"value":{"blockhash":"9sHcv6xwn9YkB8nxTUGKDwPwNnmqVp5oLcxRK3gbGFME","lastValidBlockHeight":254047088}}`, nil)
	defer srv.Close()

	client := ledger.NewRPCClient(srv.URL)
	bh, err := client.LatestBlockhash(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "9sHcv6xwn9YkB8nxTUGKDwPwNnmqVp5oLcxRK3gbGFME", bh.Blockhash)
	assert.Equal(t, uint64(254047088), bh.LastValidBlockHeight)
}

func TestSignatureStatusUnknown(t *testing.T) {
	srv := newRPCServer(t, `{"context":{"slot":100},"value":[null]}`, nil)
	defer srv.Close()

	client := ledger.NewRPCClient(srv.URL)
	status, err := client.SignatureStatus(context.Background(), "sig")
	require.NoError(t, err)
	assert.Nil(t, status)
}

func TestSignatureStatusFailed(t *testing.T) {
	srv := newRPCServer(t, `{"context":{"slot":100},"value":[{"slot":99,"confirmations":null,"confirmationStatus":"finalized","err":{"InstructionError":[0,"Custom"]}}]}`, nil)
	defer srv.Close()

	client := ledger.NewRPCClient(srv.URL)
	status, err := client.SignatureStatus(context.Background(), "sig")
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.True(t, status.Confirmed())
	assert.True(t, status.Failed())
}

func TestTokenAccountBalance(t *testing.T) {
	srv := newRPCServer(t, `{"context":{"slot":100},"value":{"amount":"1000000","decimals":6,"uiAmount":1.0}}`, nil)
	defer srv.Close()

	client := ledger.NewRPCClient(srv.URL)
	amount, err := client.TokenAccountBalance(context.Background(), "addr")
	require.NoError(t, err)
	assert.Equal(t, uint64(1000000), amount)
}

func TestSendRawTransactionEncodesBase64(t *testing.T) {
	var captured capturedRequest
	srv := newRPCServer(t, `"5VERYLongSignature"`, &captured)
	defer srv.Close()

	raw := []byte{1, 2, 3, 250}
	client := ledger.NewRPCClient(srv.URL)
	sig, err := client.SendRawTransaction(context.Background(), raw, ledger.SendOptions{MaxRetries: 3})
	require.NoError(t, err)
	assert.Equal(t, "5VERYLongSignature", sig)
	assert.Equal(t, "sendTransaction", captured.Method)

	var params []json.RawMessage
	require.NoError(t, json.Unmarshal(captured.Params, &params))
	require.Len(t, params, 2)

	var encoded string
	require.NoError(t, json.Unmarshal(params[0], &encoded))
	assert.Equal(t, base64.StdEncoding.EncodeToString(raw), encoded)

	var opts map[string]interface{}
	require.NoError(t, json.Unmarshal(params[1], &opts))
	assert.Equal(t, false, opts["skipPreflight"])
	assert.Equal(t, float64(3), opts["maxRetries"])
}

func TestRPCErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"error":{"code":-32602,"message":"invalid params"}}`))
	}))
	defer srv.Close()

	client := ledger.NewRPCClient(srv.URL)
	_, err := client.LatestBlockhash(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid params")
}
