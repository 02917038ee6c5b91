//go:build wireinject

//go:generate wire

package api

import (
	"testing"

	"github.com/google/wire"

	"github.com/RankoXXX/exidvpn-server/internal/config"
	"github.com/RankoXXX/exidvpn-server/internal/metrics"
)

// INJECTORS - https://github.com/google/wire/blob/main/docs/guide.md#injectors

// serviceSet groups the default set of providers that are required for initing a server
var serviceSet = wire.NewSet(
	newServerWithComponents,
	metrics.New,
	NewClock,
	NewLedgerClient,
	NewDerivation,
	NewSessionStore,
	NewRelayerFactory,
	NewRelay,
	NewProvisionClient,
	NewIssuer,
	NewPaymentService,
)

// InitNewServer returns a new Server instance.
func InitNewServer(
	_ config.Server,
) (*Server, error) {
	wire.Build(serviceSet, NoTest)
	return new(Server), nil
}

// InitNewServerWithClock returns a new Server instance using the mock clock,
// for use from tests.
func InitNewServerWithClock(
	_ config.Server,
	t ...*testing.T,
) (*Server, error) {
	wire.Build(serviceSet)
	return new(Server), nil
}
