package config

import (
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/RankoXXX/exidvpn-server/internal/util"
)

// EchoServer configures the HTTP listener.
type EchoServer struct {
	ListenAddress                  string
	Debug                          bool
	HideInternalServerErrorDetails bool
}

// Logger configures the global zerolog logger.
type Logger struct {
	Level              zerolog.Level
	PrettyPrintConsole bool
}

// Ledger identifies the RPC endpoint and the token the service settles in.
type Ledger struct {
	RPCURL                   string
	TokenSymbol              string
	TokenMint                string
	TokenDecimals            int
	TokenProgramID           string
	AssociatedTokenProgramID string
}

// Payment holds the immutable payment parameters. No component may mutate
// these after startup.
type Payment struct {
	DestinationWallet string
	AmountMinor       uint64
	NativeFeeMinor    uint64
	NativeDecimals    int
	SessionTTL        time.Duration
}

// Pool configures the privacy-pool relayer collaborator.
type Pool struct {
	RelayerURL  string
	SettleDelay time.Duration
}

// Provision configures the VPN provisioning collaborator.
type Provision struct {
	BaseURL          string
	AppToken         string
	Platform         string
	ActivationScheme string
}

// Sessions selects the session store backend. An empty RedisEndpoint keeps
// the default in-memory store. EncryptionKey seals Redis-resident records;
// it is required whenever a Redis endpoint is configured.
type Sessions struct {
	RedisEndpoint string
	EncryptionKey string
}

// Frontend points at the static single-page application bundle.
type Frontend struct {
	DistDir string
}

// Server is the process-wide, read-only configuration tree.
type Server struct {
	Echo      EchoServer
	Logger    Logger
	Ledger    Ledger
	Payment   Payment
	Pool      Pool
	Provision Provision
	Sessions  Sessions
	Frontend  Frontend
}

// DefaultServiceConfigFromEnv assembles the full service configuration from
// the environment, falling back to development defaults.
func DefaultServiceConfigFromEnv() Server {
	return Server{
		Echo: EchoServer{
			ListenAddress:                  util.GetEnv("SERVER_ADDRESS", ":8080"),
			Debug:                          util.GetEnvAsBool("SERVER_DEBUG", false),
			HideInternalServerErrorDetails: util.GetEnvAsBool("SERVER_HIDE_INTERNAL_ERROR_DETAILS", true),
		},
		Logger: Logger{
			Level:              util.LogLevelFromString(util.GetEnv("SERVER_LOG_LEVEL", "info")),
			PrettyPrintConsole: util.GetEnvAsBool("SERVER_LOG_PRETTY", false),
		},
		Ledger: Ledger{
			RPCURL:                   util.GetEnv("LEDGER_RPC_URL", "https://api.mainnet-beta.solana.com"),
			TokenSymbol:              util.GetEnv("LEDGER_TOKEN_SYMBOL", "USDC"),
			TokenMint:                util.GetEnv("LEDGER_TOKEN_MINT", "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"),
			TokenDecimals:            util.GetEnvAsInt("LEDGER_TOKEN_DECIMALS", 6),
			TokenProgramID:           util.GetEnv("LEDGER_TOKEN_PROGRAM_ID", "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"),
			AssociatedTokenProgramID: util.GetEnv("LEDGER_ATA_PROGRAM_ID", "ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL"),
		},
		Payment: Payment{
			DestinationWallet: util.GetEnv("PAYMENT_DESTINATION_WALLET", ""),
			AmountMinor:       util.GetEnvAsUint64("PAYMENT_AMOUNT_MINOR", 1000000),
			NativeFeeMinor:    util.GetEnvAsUint64("PAYMENT_NATIVE_FEE_MINOR", 10000000),
			NativeDecimals:    util.GetEnvAsInt("PAYMENT_NATIVE_DECIMALS", 9),
			SessionTTL:        util.GetEnvAsDuration("PAYMENT_SESSION_TTL", 15*time.Minute),
		},
		Pool: Pool{
			RelayerURL:  util.GetEnv("POOL_RELAYER_URL", ""),
			SettleDelay: util.GetEnvAsDuration("POOL_SETTLE_DELAY", 8*time.Second),
		},
		Provision: Provision{
			BaseURL:          util.GetEnv("PROVISION_API_URL", ""),
			AppToken:         util.GetEnv("PROVISION_APP_TOKEN", ""),
			Platform:         util.GetEnv("PROVISION_PLATFORM", "desktop"),
			ActivationScheme: util.GetEnv("PROVISION_ACTIVATION_SCHEME", "exidvpn"),
		},
		Sessions: Sessions{
			RedisEndpoint: util.GetEnv("SESSIONS_REDIS_ENDPOINT", ""),
			EncryptionKey: util.GetEnv("SESSIONS_ENCRYPTION_KEY", ""),
		},
		Frontend: Frontend{
			DistDir: util.GetEnv("FRONTEND_DIST_DIR", "./web/dist"),
		},
	}
}

// Validate rejects configurations the server cannot safely start with.
func (s Server) Validate() error {
	if s.Payment.DestinationWallet == "" {
		return errors.New("PAYMENT_DESTINATION_WALLET is not configured")
	}
	if s.Payment.AmountMinor == 0 {
		return errors.New("PAYMENT_AMOUNT_MINOR must be greater than zero")
	}
	if s.Ledger.RPCURL == "" {
		return errors.New("LEDGER_RPC_URL is not configured")
	}
	if s.Pool.RelayerURL == "" {
		return errors.New("POOL_RELAYER_URL is not configured")
	}
	if s.Provision.BaseURL == "" {
		return errors.New("PROVISION_API_URL is not configured")
	}
	if s.Provision.AppToken == "" {
		return errors.New("PROVISION_APP_TOKEN is not configured")
	}
	if s.Sessions.RedisEndpoint != "" && s.Sessions.EncryptionKey == "" {
		return errors.New("SESSIONS_ENCRYPTION_KEY is required when a Redis endpoint is configured")
	}

	return nil
}
