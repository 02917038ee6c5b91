package env

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/RankoXXX/exidvpn-server/internal/config"
)

func New() *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "Prints the resolved service configuration",
		Run: func(_ *cobra.Command, _ []string) {
			cfg := config.DefaultServiceConfigFromEnv()

			// credentials never get printed
			cfg.Provision.AppToken = "[redacted]"
			if cfg.Sessions.EncryptionKey != "" {
				cfg.Sessions.EncryptionKey = "[redacted]"
			}

			out, err := json.MarshalIndent(cfg, "", "  ")
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to marshal service configuration")
			}

			fmt.Println(string(out))
		},
	}
}
