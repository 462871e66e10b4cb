// Package hubspot is the CRM sink: it creates the company and deal objects
// from mapped property sets and associates them. Any API failure is fatal to
// the run: no retries, no rollback of the already-created company.
package hubspot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"linklead-engine/internal/mapping"
)

const defaultBaseURL = "https://api.hubapi.com"

// APIError carries the upstream status and response body of a failed call.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("hubspot api status %d: %s", e.Status, e.Body)
}

// Client talks to the HubSpot CRM v3 objects API.
type Client struct {
	baseURL    string
	token      string
	apiVersion string
	hc         *http.Client
	limiter    *rate.Limiter
}

// Option tweaks a Client. Used by tests to point at a local server.
type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithAPIVersion overrides the CRM API version path segment.
func WithAPIVersion(v string) Option {
	return func(c *Client) {
		if v != "" {
			c.apiVersion = v
		}
	}
}

func New(token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		token:      token,
		apiVersion: "v3",
		hc:         &http.Client{Timeout: 30 * time.Second},
		// HubSpot free-tier burst limits sit near 100/10s; stay well under.
		limiter: rate.NewLimiter(rate.Limit(4), 4),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// TestConnection checks the token with a cheap read.
func (c *Client) TestConnection(ctx context.Context) error {
	var out json.RawMessage
	return c.do(ctx, http.MethodGet, c.objectURL("deals")+"?limit=1", nil, &out)
}

// CreateCompany creates a company and returns its ID.
func (c *Client) CreateCompany(ctx context.Context, props mapping.PropertySet) (string, error) {
	log.Printf("[hubspot] creating company %q", props["name"])

	payload := map[string]any{"properties": props}
	var res struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, c.objectURL("companies"), payload, &res); err != nil {
		return "", fmt.Errorf("create company: %w", err)
	}
	log.Printf("[hubspot] company created id=%s", res.ID)
	return res.ID, nil
}

// CreateDeal creates a deal, associated with companyID when non-empty, and
// returns the deal ID. Association type 1 is the HubSpot-defined
// deal-to-company association.
func (c *Client) CreateDeal(ctx context.Context, props mapping.PropertySet, companyID string) (string, error) {
	log.Printf("[hubspot] creating deal %q", props["dealname"])

	payload := map[string]any{"properties": props}
	if companyID != "" {
		payload["associations"] = []map[string]any{{
			"to": map[string]string{"id": companyID},
			"types": []map[string]any{{
				"associationCategory": "HUBSPOT_DEFINED",
				"associationTypeId":   1,
			}},
		}}
	}

	var res struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, c.objectURL("deals"), payload, &res); err != nil {
		return "", fmt.Errorf("create deal: %w", err)
	}
	log.Printf("[hubspot] deal created id=%s", res.ID)
	return res.ID, nil
}

// Submit creates the company first, then the deal associated to it. If the
// deal call fails the company stays behind, orphaned. Accepted, not
// compensated.
func (c *Client) Submit(ctx context.Context, payload mapping.Payload) (companyID, dealID string, err error) {
	companyID, err = c.CreateCompany(ctx, payload.Company.Properties)
	if err != nil {
		return "", "", err
	}
	dealID, err = c.CreateDeal(ctx, payload.Deal.Properties, companyID)
	if err != nil {
		return companyID, "", err
	}
	return companyID, dealID, nil
}

func (c *Client) objectURL(kind string) string {
	return fmt.Sprintf("%s/crm/%s/objects/%s", c.baseURL, c.apiVersion, kind)
}

func (c *Client) do(ctx context.Context, method, url string, in, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("hubspot request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 2048))
		return &APIError{Status: res.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	if out != nil {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			return fmt.Errorf("hubspot decode: %w", err)
		}
	}
	return nil
}
