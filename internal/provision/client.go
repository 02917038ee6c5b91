package provision

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// Device is a freshly provisioned VPN device credential.
type Device struct {
	ID    string
	Token string
}

// Client is the provisioning collaborator surface.
type Client interface {
	// CreateDevice mints a single-use device credential for the given
	// platform.
	CreateDevice(ctx context.Context, platform string) (*Device, error)
}

// HTTPClient talks to the VPN partner API. The application token
// authenticates this gateway; the returned device token authenticates the
// end user's client.
type HTTPClient struct {
	baseURL  string
	appToken string
	http     *http.Client
}

// NewHTTPClient creates a provisioning client for the given API base URL.
func NewHTTPClient(baseURL, appToken string) *HTTPClient {
	return &HTTPClient{
		baseURL:  baseURL,
		appToken: appToken,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

var _ Client = (*HTTPClient)(nil)

type createDeviceRequest struct {
	Platform string `json:"platform"`
}

type createDeviceResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Device  struct {
		ID    string `json:"id"`
		Token string `json:"token"`
	} `json:"device"`
}

// CreateDevice implements Client.
func (c *HTTPClient) CreateDevice(ctx context.Context, platform string) (*Device, error) {
	body, err := json.Marshal(createDeviceRequest{Platform: platform})
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal device request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/devices", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "failed to build device request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.appToken)

	res, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "provisioning call failed")
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read provisioning response")
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, errors.Errorf("provisioning API returned status %d", res.StatusCode)
	}

	var parsed createDeviceResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal provisioning response")
	}

	if parsed.Error != "" {
		return nil, errors.Errorf("provisioning API rejected device creation: %s", parsed.Error)
	}
	if parsed.Device.Token == "" {
		return nil, errors.New("provisioning response is missing the device token")
	}

	return &Device{
		ID:    parsed.Device.ID,
		Token: parsed.Device.Token,
	}, nil
}
