package provision

import (
	"context"
	"fmt"
	"net/url"

	"github.com/pkg/errors"

	"github.com/RankoXXX/exidvpn-server/internal/util"
)

// Activation is the credential bundle handed to the paying client after a
// successful pipeline run.
type Activation struct {
	DeviceID      string
	DeviceToken   string
	ActivationRef string
}

// Issuer mints exactly one device credential per successful payment and
// wraps its token in the activation URI the desktop app registers for.
type Issuer struct {
	client   Client
	platform string
	scheme   string
}

// NewIssuer creates an issuer for the configured platform and URI scheme.
func NewIssuer(client Client, platform, scheme string) *Issuer {
	return &Issuer{
		client:   client,
		platform: platform,
		scheme:   scheme,
	}
}

// Issue implements the activation stage of the pipeline.
func (i *Issuer) Issue(ctx context.Context) (*Activation, error) {
	device, err := i.client.CreateDevice(ctx, i.platform)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create device credential")
	}

	util.LogFromContext(ctx).Info().
		Str("device_id", device.ID).
		Msg("Issued device credential")

	return &Activation{
		DeviceID:      device.ID,
		DeviceToken:   device.Token,
		ActivationRef: fmt.Sprintf("%s://activate?deviceToken=%s", i.scheme, url.QueryEscape(device.Token)),
	}, nil
}
