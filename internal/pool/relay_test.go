package pool_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/RankoXXX/exidvpn-server/internal/ledger"
	"github.com/RankoXXX/exidvpn-server/internal/pool"
)

// MockClient is a mock implementation of pool.Client
type MockClient struct {
	mock.Mock
}

func (m *MockClient) Deposit(ctx context.Context, amount uint64) (string, error) {
	args := m.Called(ctx, amount)
	return args.String(0), args.Error(1)
}

func (m *MockClient) Withdraw(ctx context.Context, amount uint64, destination string) (string, error) {
	args := m.Called(ctx, amount, destination)
	return args.String(0), args.Error(1)
}

type staticFactory struct {
	client pool.Client
}

func (f *staticFactory) ForIdentity(_ *ledger.Keypair) pool.Client {
	return f.client
}

const destination = "J7rTdxPZCQ4p7dcCkP8iWSct93vnMDdcBDbLzDpDt1qW"

func newBurner(t *testing.T) *ledger.Keypair {
	t.Helper()
	kp, err := ledger.NewKeypair()
	require.NoError(t, err)
	return kp
}

func TestRelayExecutesDepositThenWithdraw(t *testing.T) {
	ctx := context.Background()
	client := new(MockClient)
	relay := pool.NewRelay(&staticFactory{client}, destination, 1000000, 0)

	client.On("Deposit", ctx, uint64(1000000)).Return("dep-sig", nil).Once()
	client.On("Withdraw", ctx, uint64(1000000), destination).Return("wdr-sig", nil).Once()

	result, err := relay.Execute(ctx, newBurner(t))
	require.NoError(t, err)
	assert.Equal(t, "dep-sig", result.DepositSignature)
	assert.Equal(t, "wdr-sig", result.WithdrawSignature)
	client.AssertExpectations(t)
}

func TestRelayPhasesRunSeparately(t *testing.T) {
	ctx := context.Background()
	client := new(MockClient)
	relay := pool.NewRelay(&staticFactory{client}, destination, 1000000, 0)

	client.On("Deposit", ctx, uint64(1000000)).Return("dep-sig", nil).Once()

	run, err := relay.Deposit(ctx, newBurner(t))
	require.NoError(t, err)
	assert.Equal(t, "dep-sig", run.DepositSignature)

	// the deposit signature is available before the second phase starts
	client.AssertNotCalled(t, "Withdraw", mock.Anything, mock.Anything, mock.Anything)

	client.On("Withdraw", ctx, uint64(1000000), destination).Return("wdr-sig", nil).Once()

	withdrawSig, err := run.Withdraw(ctx)
	require.NoError(t, err)
	assert.Equal(t, "wdr-sig", withdrawSig)
	client.AssertExpectations(t)
}

func TestRelayDepositFailureIsTerminal(t *testing.T) {
	ctx := context.Background()
	client := new(MockClient)
	relay := pool.NewRelay(&staticFactory{client}, destination, 1000000, 0)

	client.On("Deposit", ctx, uint64(1000000)).Return("", assert.AnError).Once()

	_, err := relay.Execute(ctx, newBurner(t))
	require.Error(t, err)

	// no retry and no withdrawal attempt after a failed deposit
	client.AssertExpectations(t)
	client.AssertNotCalled(t, "Withdraw", mock.Anything, mock.Anything, mock.Anything)
}

func TestRelayWithdrawFailureSurfacesAfterDeposit(t *testing.T) {
	ctx := context.Background()
	client := new(MockClient)
	relay := pool.NewRelay(&staticFactory{client}, destination, 1000000, 0)

	client.On("Deposit", ctx, uint64(1000000)).Return("dep-sig", nil).Once()
	client.On("Withdraw", ctx, uint64(1000000), destination).Return("", assert.AnError).Once()

	_, err := relay.Execute(ctx, newBurner(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "withdraw")
	client.AssertExpectations(t)
}

func TestRelayAbortsBetweenPhasesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	client := new(MockClient)
	// a real settle delay so cancellation lands between the phases
	relay := pool.NewRelay(&staticFactory{client}, destination, 1000000, 50*time.Millisecond)

	client.On("Deposit", ctx, uint64(1000000)).Run(func(mock.Arguments) {
		cancel()
	}).Return("dep-sig", nil).Once()

	_, err := relay.Execute(ctx, newBurner(t))
	require.Error(t, err)
	client.AssertNotCalled(t, "Withdraw", mock.Anything, mock.Anything, mock.Anything)
}
