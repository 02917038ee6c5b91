package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/RankoXXX/exidvpn-server/cmd/env"
	"github.com/RankoXXX/exidvpn-server/cmd/probe"
	"github.com/RankoXXX/exidvpn-server/cmd/server"
)

// Execute runs the root command, which defaults to serving.
func Execute() {
	rootCmd := &cobra.Command{
		Use:   "exidvpn-server",
		Short: "Privacy payment gateway for exidvpn activations",
		Run: func(cmd *cobra.Command, _ []string) {
			server.Run()
		},
	}

	rootCmd.AddCommand(
		server.New(),
		env.New(),
		probe.New(),
	)

	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("Failed to execute root command")
	}
}
