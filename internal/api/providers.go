package api

import (
	"context"
	"testing"
	"time"

	"github.com/dropbox/godropbox/time2"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/RankoXXX/exidvpn-server/internal/config"
	"github.com/RankoXXX/exidvpn-server/internal/ledger"
	"github.com/RankoXXX/exidvpn-server/internal/metrics"
	"github.com/RankoXXX/exidvpn-server/internal/payment"
	"github.com/RankoXXX/exidvpn-server/internal/pool"
	"github.com/RankoXXX/exidvpn-server/internal/provision"
	"github.com/RankoXXX/exidvpn-server/internal/session"
)

// PROVIDERS - define here only providers that for various reasons (e.g. cyclic dependency) can't live in their corresponding packages
// or for wrapping providers that only accept sub-configs to prevent the requirements for defining providers for sub-configs.
// https://github.com/google/wire/blob/main/docs/guide.md#defining-providers

func NewClock(t ...*testing.T) time2.Clock {
	var clock time2.Clock

	useMock := len(t) > 0 && t[0] != nil

	if useMock {
		clock = time2.NewMockClock(time.Now())
	} else {
		clock = time2.DefaultClock
	}

	return clock
}

func NoTest() []*testing.T {
	return nil
}

func NewLedgerClient(cfg config.Server) ledger.Client {
	return ledger.NewRPCClient(cfg.Ledger.RPCURL)
}

func NewDerivation(cfg config.Server) ledger.Derivation {
	return ledger.Derivation{
		Mint:                     cfg.Ledger.TokenMint,
		TokenProgramID:           cfg.Ledger.TokenProgramID,
		AssociatedTokenProgramID: cfg.Ledger.AssociatedTokenProgramID,
	}
}

// NewSessionStore selects the backing store from the configuration: a Redis
// store when an endpoint is configured, the in-memory store otherwise.
func NewSessionStore(cfg config.Server, derivation ledger.Derivation, clock time2.Clock) (session.Store, error) {
	if cfg.Sessions.RedisEndpoint == "" {
		return session.NewMemoryStore(derivation, cfg.Payment.SessionTTL, clock), nil
	}

	cipher, err := session.NewSecretCipher(cfg.Sessions.EncryptionKey)
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize session cipher")
	}

	client := redis.NewClient(&redis.Options{
		Addr: cfg.Sessions.RedisEndpoint,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrap(err, "failed to ping redis")
	}

	return session.NewRedisStore(client, cipher, derivation, cfg.Payment.SessionTTL, clock), nil
}

func NewRelayerFactory(cfg config.Server) pool.Factory {
	return pool.NewRelayerFactory(cfg.Pool.RelayerURL, cfg.Ledger.TokenMint)
}

func NewRelay(cfg config.Server, factory pool.Factory) *pool.Relay {
	return pool.NewRelay(factory, cfg.Payment.DestinationWallet, cfg.Payment.AmountMinor, cfg.Pool.SettleDelay)
}

func NewProvisionClient(cfg config.Server) provision.Client {
	return provision.NewHTTPClient(cfg.Provision.BaseURL, cfg.Provision.AppToken)
}

func NewIssuer(cfg config.Server, client provision.Client) *provision.Issuer {
	return provision.NewIssuer(client, cfg.Provision.Platform, cfg.Provision.ActivationScheme)
}

func NewPaymentService(
	cfg config.Server,
	sessions session.Store,
	ledgerClient ledger.Client,
	relay *pool.Relay,
	issuer *provision.Issuer,
	metricsService *metrics.Service,
) *payment.Service {
	return payment.NewService(
		sessions,
		ledgerClient,
		relay,
		issuer,
		metricsService,
		payment.DefaultConfirmationPolicy,
		payment.DefaultBalancePolicy,
		cfg.Payment.AmountMinor,
	)
}
