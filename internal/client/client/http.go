package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// HTTPClient talks to the dashboard REST API. Authentication is left to the
// http.Client's transport.
type HTTPClient struct {
	base *url.URL
	hc   *http.Client
}

func NewHTTPClient(baseURL string, hc *http.Client) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid api url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid api url %q", baseURL)
	}
	if hc == nil {
		hc = http.DefaultClient
	}
	return &HTTPClient{base: u, hc: hc}, nil
}

type pingResponse struct {
	Status string `json:"status"`
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	var resp pingResponse
	if err := c.GetJSON(ctx, "/api/ping", &resp); err != nil {
		return err
	}
	if resp.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

func (c *HTTPClient) Resource(ctx context.Context, name string) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.GetJSON(ctx, "/api/resources/"+url.PathEscape(name), &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// GetJSON issues a GET for path relative to the base URL and decodes the
// body into out.
func (c *HTTPClient) GetJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base.String()+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return mapTransportError(err)
	}
	defer resp.Body.Close()

	if err := mapStatus(resp.StatusCode); err != nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

func mapStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return ErrUnauthorized
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusServiceUnavailable, code == http.StatusBadGateway, code == http.StatusGatewayTimeout:
		return ErrUnavailable
	default:
		return fmt.Errorf("unexpected status %d", code)
	}
}

func mapTransportError(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
