package payments_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dropbox/godropbox/time2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/RankoXXX/exidvpn-server/internal/api"
	"github.com/RankoXXX/exidvpn-server/internal/api/router"
	"github.com/RankoXXX/exidvpn-server/internal/config"
	"github.com/RankoXXX/exidvpn-server/internal/ledger"
	"github.com/RankoXXX/exidvpn-server/internal/metrics"
	"github.com/RankoXXX/exidvpn-server/internal/payment"
	"github.com/RankoXXX/exidvpn-server/internal/pool"
	"github.com/RankoXXX/exidvpn-server/internal/provision"
	"github.com/RankoXXX/exidvpn-server/internal/session"
)

type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) LatestBlockhash(ctx context.Context) (*ledger.Blockhash, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Blockhash), args.Error(1)
}

func (m *MockLedger) SignatureStatus(ctx context.Context, signature string) (*ledger.SignatureStatus, error) {
	args := m.Called(ctx, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.SignatureStatus), args.Error(1)
}

func (m *MockLedger) TokenAccountBalance(ctx context.Context, address string) (uint64, error) {
	args := m.Called(ctx, address)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockLedger) SendRawTransaction(ctx context.Context, raw []byte, opts ledger.SendOptions) (string, error) {
	args := m.Called(ctx, raw, opts)
	return args.String(0), args.Error(1)
}

type MockPool struct {
	mock.Mock
}

func (m *MockPool) Deposit(ctx context.Context, amount uint64) (string, error) {
	args := m.Called(ctx, amount)
	return args.String(0), args.Error(1)
}

func (m *MockPool) Withdraw(ctx context.Context, amount uint64, destination string) (string, error) {
	args := m.Called(ctx, amount, destination)
	return args.String(0), args.Error(1)
}

type staticFactory struct {
	client pool.Client
}

func (f *staticFactory) ForIdentity(_ *ledger.Keypair) pool.Client {
	return f.client
}

type MockProvision struct {
	mock.Mock
}

func (m *MockProvision) CreateDevice(ctx context.Context, platform string) (*provision.Device, error) {
	args := m.Called(ctx, platform)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provision.Device), args.Error(1)
}

type testServer struct {
	server    *api.Server
	rpc       *MockLedger
	poolMock  *MockPool
	provision *MockProvision
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := config.DefaultServiceConfigFromEnv()
	cfg.Payment.DestinationWallet = "J7rTdxPZCQ4p7dcCkP8iWSct93vnMDdcBDbLzDpDt1qW"
	cfg.Pool.RelayerURL = "http://relayer.invalid"
	cfg.Pool.SettleDelay = 0
	cfg.Provision.BaseURL = "http://provision.invalid"
	cfg.Provision.AppToken = "app-token"

	clock := time2.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	rpc := new(MockLedger)
	poolMock := new(MockPool)
	provisionMock := new(MockProvision)

	sessions := session.NewMemoryStore(ledger.Derivation{
		Mint:                     cfg.Ledger.TokenMint,
		TokenProgramID:           cfg.Ledger.TokenProgramID,
		AssociatedTokenProgramID: cfg.Ledger.AssociatedTokenProgramID,
	}, cfg.Payment.SessionTTL, clock)

	relay := pool.NewRelay(&staticFactory{poolMock}, cfg.Payment.DestinationWallet, cfg.Payment.AmountMinor, 0)
	issuer := provision.NewIssuer(provisionMock, cfg.Provision.Platform, cfg.Provision.ActivationScheme)

	metricsService := metrics.New()

	s := &api.Server{
		Config:   cfg,
		Clock:    clock,
		Metrics:  metricsService,
		Ledger:   rpc,
		Sessions: sessions,
		Relay:    relay,
		Issuer:   issuer,
		Payment: payment.NewService(
			sessions,
			rpc,
			relay,
			issuer,
			metricsService,
			payment.RetryPolicy{MaxAttempts: 2, Interval: time.Millisecond},
			payment.RetryPolicy{MaxAttempts: 2, Interval: time.Millisecond},
			cfg.Payment.AmountMinor,
		),
	}

	router.Init(s)

	return &testServer{
		server:    s,
		rpc:       rpc,
		poolMock:  poolMock,
		provision: provisionMock,
	}
}

func (ts *testServer) request(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echoHeaderContentType, "application/json")
	}

	rec := httptest.NewRecorder()
	ts.server.Echo.ServeHTTP(rec, req)

	return rec
}

const echoHeaderContentType = "Content-Type"

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	return body
}

func TestGetHealth(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(t, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "ok", body["status"])
}

func TestGetPaymentInfo(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(t, http.MethodGet, "/api/payment-info", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "J7rTdxPZCQ4p7dcCkP8iWSct93vnMDdcBDbLzDpDt1qW", body["destinationWallet"])
	assert.Equal(t, float64(1000000), body["amountMinor"])
	assert.Equal(t, float64(1), body["amount"])
	assert.Equal(t, "USDC", body["tokenSymbol"])
	assert.Equal(t, float64(0.01), body["nativeFee"])
}

func TestGetBlockhash(t *testing.T) {
	ts := newTestServer(t)

	ts.rpc.On("LatestBlockhash", mock.Anything).Return(&ledger.Blockhash{
		Blockhash:            "9sHcv6xwn9YkB8nxTUGKDwPwNnmqfp5LwvwJFGpfTkYE",
		LastValidBlockHeight: 312345678,
	}, nil).Once()

	rec := ts.request(t, http.MethodGet, "/api/blockhash", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "9sHcv6xwn9YkB8nxTUGKDwPwNnmqfp5LwvwJFGpfTkYE", body["blockhash"])
	assert.Equal(t, float64(312345678), body["lastValidBlockHeight"])
}

func TestGetBlockhashLedgerFailure(t *testing.T) {
	ts := newTestServer(t)

	ts.rpc.On("LatestBlockhash", mock.Anything).Return(nil, assert.AnError).Once()

	rec := ts.request(t, http.MethodGet, "/api/blockhash", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
}

func TestPostCreateSession(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(t, http.MethodPost, "/api/create-session", "")
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])

	sessionID, ok := body["sessionId"].(string)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(sessionID, "pay-"))
	assert.NotEmpty(t, body["burnerAddress"])
	assert.NotEmpty(t, body["depositAddress"])
	assert.NotEqual(t, body["burnerAddress"], body["depositAddress"])

	// the session must be immediately retrievable
	sess, err := ts.server.Sessions.Get(context.Background(), sessionID)
	require.NoError(t, err)
	assert.Equal(t, body["depositAddress"], sess.DepositAddress)
}

func TestPostExecutePrivacyTransactionHappyPath(t *testing.T) {
	ts := newTestServer(t)

	sess, err := ts.server.Sessions.Create(context.Background())
	require.NoError(t, err)

	ts.rpc.On("TokenAccountBalance", mock.Anything, sess.DepositAddress).Return(uint64(1000000), nil).Once()
	ts.poolMock.On("Deposit", mock.Anything, uint64(1000000)).Return("dep-sig", nil).Once()
	ts.poolMock.On("Withdraw", mock.Anything, uint64(1000000), "J7rTdxPZCQ4p7dcCkP8iWSct93vnMDdcBDbLzDpDt1qW").Return("wdr-sig", nil).Once()
	ts.provision.On("CreateDevice", mock.Anything, "desktop").Return(&provision.Device{ID: "dev-1", Token: "tok-1"}, nil).Once()

	rec := ts.request(t, http.MethodPost, "/api/execute-privacy-transaction", `{"sessionId": "`+sess.ID+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "dev-1", body["deviceId"])
	assert.Equal(t, "tok-1", body["deviceToken"])
	assert.Equal(t, "exidvpn://activate?deviceToken=tok-1", body["activationRef"])
	assert.Equal(t, "wdr-sig", body["withdrawSignature"])

	// consumed sessions are gone
	_, err = ts.server.Sessions.Get(context.Background(), sess.ID)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestPostExecutePrivacyTransactionMissingSessionID(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(t, http.MethodPost, "/api/execute-privacy-transaction", `{}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "validation", body["type"])
}

func TestPostExecutePrivacyTransactionUnknownSession(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(t, http.MethodPost, "/api/execute-privacy-transaction", `{"sessionId": "pay-unknown"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
}

func TestPostExecutePrivacyTransactionPipelineFailure(t *testing.T) {
	ts := newTestServer(t)

	sess, err := ts.server.Sessions.Create(context.Background())
	require.NoError(t, err)

	ts.rpc.On("TokenAccountBalance", mock.Anything, sess.DepositAddress).Return(uint64(0), nil)

	rec := ts.request(t, http.MethodPost, "/api/execute-privacy-transaction", `{"sessionId": "`+sess.ID+`"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])

	// failed runs keep the session for a retry
	_, err = ts.server.Sessions.Get(context.Background(), sess.ID)
	require.NoError(t, err)
}

func TestPostSendTransactionBase64(t *testing.T) {
	ts := newTestServer(t)

	raw := []byte{1, 2, 3, 4}
	ts.rpc.On("SendRawTransaction", mock.Anything, raw, ledger.SendOptions{SkipPreflight: false, MaxRetries: 3}).
		Return("relayed-sig", nil).Once()

	encoded := base64.StdEncoding.EncodeToString(raw)
	rec := ts.request(t, http.MethodPost, "/api/send-transaction", `{"signedTransaction": "`+encoded+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "relayed-sig", body["signature"])
	ts.rpc.AssertExpectations(t)
}

func TestPostSendTransactionByteArrayEquivalent(t *testing.T) {
	ts := newTestServer(t)

	raw := []byte{1, 2, 3, 4}
	ts.rpc.On("SendRawTransaction", mock.Anything, raw, ledger.SendOptions{SkipPreflight: false, MaxRetries: 3}).
		Return("relayed-sig", nil).Twice()

	recArray := ts.request(t, http.MethodPost, "/api/send-transaction", `{"signedTransaction": [1, 2, 3, 4]}`)
	require.Equal(t, http.StatusOK, recArray.Code)

	encoded := base64.StdEncoding.EncodeToString(raw)
	recBase64 := ts.request(t, http.MethodPost, "/api/send-transaction", `{"signedTransaction": "`+encoded+`"}`)
	require.Equal(t, http.StatusOK, recBase64.Code)

	// both encodings submit identical bytes
	ts.rpc.AssertExpectations(t)
}

func TestPostSendTransactionMissingBody(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(t, http.MethodPost, "/api/send-transaction", `{}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPostSendTransactionMalformedEncoding(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(t, http.MethodPost, "/api/send-transaction", `{"signedTransaction": "not base64!!!"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
