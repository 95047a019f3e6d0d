// Package api is the HTTP client for the remote product verification service.
//
// It performs transport only: no retries, no outcome interpretation. The
// verify endpoint is non-idempotent server-side (each accepted call appends
// a scan log and bumps a counter), so callers must gate duplicate calls
// upstream.
package api

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

// DefaultTimeout bounds one round trip when the caller does not configure
// its own.
const DefaultTimeout = 10 * time.Second

// Client talks to the verification service.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client for the service at baseURL. A zero timeout
// falls back to DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Verify performs PUT /api/products/verify/{code} with the device id in the
// body. Exactly one network call; any transport or decode failure is
// returned as an error, while a well-formed body is returned as-is even on a
// non-2xx status (the service reports rejections as success=false with a
// message).
func (c *Client) Verify(ctx context.Context, code, deviceID string) (*VerifyResponse, error) {
	endpoint := c.baseURL + "/api/products/verify/" + url.PathEscape(code)

	body, err := json.Marshal(verifyRequest{DeviceID: deviceID})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("verify %s: %w", code, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("verify %s: read response: %w", code, err)
	}

	var vr VerifyResponse
	if err := json.Unmarshal(raw, &vr); err != nil {
		return nil, fmt.Errorf("verify %s: status %d with unparsable body: %w", code, resp.StatusCode, err)
	}
	return &vr, nil
}

// ScanHistory performs GET /api/products/scan-history/{deviceId} and returns
// the full log set for the device. An empty slice means the device has no
// scans; failures are returned as errors, never as an empty list.
func (c *Client) ScanHistory(ctx context.Context, deviceID string) ([]ScanLogEntry, error) {
	endpoint := c.baseURL + "/api/products/scan-history/" + url.PathEscape(deviceID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scan history for %s: %w", deviceID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scan history for %s: status %d", deviceID, resp.StatusCode)
	}

	var hr HistoryResponse
	if err := json.NewDecoder(resp.Body).Decode(&hr); err != nil {
		return nil, fmt.Errorf("scan history for %s: decode: %w", deviceID, err)
	}
	if hr.Logs == nil {
		hr.Logs = []ScanLogEntry{}
	}
	return hr.Logs, nil
}
