package mirror

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type ClientConfig struct {
	BaseURL    string `json:"baseUrl" mapstructure:"base_url"`
	ServiceKey string `json:"serviceKey" mapstructure:"service_key"`
	AnonKey    string `json:"anonKey" mapstructure:"anon_key"`
}

// Client mirrors single fields to the secondary ticket store over its REST
// API. The secondary store is the original listing platform; rows there
// are addressed by PNR number, not by our record ids.
type Client struct {
	// baseURL is the base url of the secondary store.
	baseURL string

	// apiKey is the credential sent with every request. The service key is
	// preferred, the anon key is the fallback.
	apiKey string

	// hc is the http client.
	hc *http.Client
}

// New builds a mirror client. Returns nil when no base URL or no key is
// configured; callers must treat a nil client as "mirroring disabled".
func New(c *ClientConfig) *Client {
	if c == nil || c.BaseURL == "" {
		return nil
	}

	apiKey := c.ServiceKey
	if apiKey == "" {
		apiKey = c.AnonKey
	}
	if apiKey == "" {
		return nil
	}

	return &Client{
		baseURL: strings.TrimRight(c.BaseURL, "/"),
		apiKey:  apiKey,

		// set http client with timeout.
		hc: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// UpdatePassengerName patches the passenger_name of the row matching the
// PNR. Filter-style update so the secondary store's own ids never leak
// into this service.
func (c *Client) UpdatePassengerName(ctx context.Context, pnr, name string) error {
	body, err := json.Marshal(map[string]string{"passenger_name": name})
	if err != nil {
		return fmt.Errorf("updatePassengerName: json.Marshal: %w", err)
	}

	endpoint := fmt.Sprintf("%s/rest/v1/tickets?pnr_number=eq.%s", c.baseURL, url.QueryEscape(pnr))
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("updatePassengerName: http.NewReq: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Prefer", "return=minimal")

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("updatePassengerName: http.Do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("updatePassengerName: status %d: %s", resp.StatusCode, detail)
	}

	return nil
}
