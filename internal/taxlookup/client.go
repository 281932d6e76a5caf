// Package taxlookup calls the external tax registry to verify GST numbers.
package taxlookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"github.com/craftline-erp/craftline/internal/shared"
)

var gstinPattern = regexp.MustCompile(`^[0-9]{2}[A-Z0-9]{10}[0-9A-Z]{3}$`)

// Client queries the registry over HTTP. Registry timeouts and transport
// failures surface as ErrCollaborator so callers can distinguish an
// unreachable registry from an invalid GST number.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient constructs a registry client. timeout bounds each lookup.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

type lookupResponse struct {
	Valid        bool   `json:"valid"`
	BusinessName string `json:"businessName"`
}

// Verify checks a GST number against the registry. A malformed number fails
// validation locally without a network round trip.
func (c *Client) Verify(ctx context.Context, gstin string) (bool, string, error) {
	if !gstinPattern.MatchString(gstin) {
		return false, "", fmt.Errorf("taxlookup: malformed GST number %q: %w", gstin, shared.ErrValidation)
	}
	endpoint := fmt.Sprintf("%s/v1/gstin/%s", c.baseURL, url.PathEscape(gstin))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, "", err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return false, "", fmt.Errorf("taxlookup: registry unreachable: %v: %w", err, shared.ErrCollaborator)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return false, "", nil
	case resp.StatusCode >= 500:
		return false, "", fmt.Errorf("taxlookup: registry returned %d: %w", resp.StatusCode, shared.ErrCollaborator)
	case resp.StatusCode != http.StatusOK:
		return false, "", fmt.Errorf("taxlookup: unexpected registry status %d", resp.StatusCode)
	}

	var body lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, "", fmt.Errorf("taxlookup: decode registry response: %v: %w", err, shared.ErrCollaborator)
	}
	return body.Valid, body.BusinessName, nil
}

// ErrNotConfigured is returned by the disabled client.
var ErrNotConfigured = errors.New("taxlookup: registry not configured")

// Disabled is a client stand-in used when no registry URL is configured.
type Disabled struct{}

// Verify always reports the registry as unavailable.
func (Disabled) Verify(ctx context.Context, gstin string) (bool, string, error) {
	return false, "", fmt.Errorf("%w: %w", ErrNotConfigured, shared.ErrCollaborator)
}
