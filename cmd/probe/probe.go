package probe

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/RankoXXX/exidvpn-server/internal/config"
	"github.com/RankoXXX/exidvpn-server/internal/util/command"
)

func New() *cobra.Command {
	return command.NewSubcommandGroup("probe",
		newLiveness(),
		newReadiness(),
	)
}

func newLiveness() *cobra.Command {
	return &cobra.Command{
		Use:   "liveness",
		Short: "Checks whether the server process answers HTTP at all",
		Run: func(_ *cobra.Command, _ []string) {
			runProbe("/api/health")
		},
	}
}

func newReadiness() *cobra.Command {
	return &cobra.Command{
		Use:   "readiness",
		Short: "Checks whether the server is fully initialized",
		Run: func(_ *cobra.Command, _ []string) {
			runProbe("/-/healthy")
		},
	}
}

// runProbe exits non-zero on any failure so it can back a container
// healthcheck directly.
func runProbe(path string) {
	cfg := config.DefaultServiceConfigFromEnv()

	addr := cfg.Echo.ListenAddress
	if strings.HasPrefix(addr, ":") {
		addr = "127.0.0.1" + addr
	}

	client := &http.Client{Timeout: 5 * time.Second}

	res, err := client.Get("http://" + addr + path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("Probe request failed")
		os.Exit(1)
	}
	defer res.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(res.Body, 1024))

	if res.StatusCode != http.StatusOK {
		log.Error().Int("status", res.StatusCode).Str("path", path).Msg("Probe returned non-OK status")
		os.Exit(1)
	}

	fmt.Println(strings.TrimSpace(string(body)))
}
