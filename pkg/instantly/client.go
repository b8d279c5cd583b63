package instantly

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://api.instantly.ai/api/v2"

// ErrMissingAPIKey is returned before any request when no key is configured.
var ErrMissingAPIKey = errors.New("Instantly API key not configured")

// APIError is a non-2xx response from Instantly.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Instantly API error (%d): %s", e.StatusCode, e.Body)
}

// HTTPStatusCode returns the response status.
func (e *APIError) HTTPStatusCode() int { return e.StatusCode }

// Client covers the Instantly v2 endpoints used for lead delivery,
// campaign management, analytics and account health.
type Client interface {
	HasKey() bool

	SearchLeads(ctx context.Context, email, campaignID string) (*LeadList, error)
	AddLeads(ctx context.Context, req AddLeadsRequest) (*AddLeadsResponse, error)
	ListLeads(ctx context.Context, req ListLeadsRequest) (*LeadList, error)

	ListCampaigns(ctx context.Context) ([]Campaign, error)
	GetCampaign(ctx context.Context, id string) (*Campaign, error)
	CreateCampaign(ctx context.Context, req CampaignRequest) (*Campaign, error)
	UpdateCampaign(ctx context.Context, id string, req CampaignRequest) (*Campaign, error)
	DeleteCampaign(ctx context.Context, id string) error
	PauseCampaign(ctx context.Context, id string) (*Campaign, error)
	ActivateCampaign(ctx context.Context, id string) (*Campaign, error)

	CampaignAnalytics(ctx context.Context, id string) (*CampaignAnalytics, error)
	CampaignDailyAnalytics(ctx context.Context, id, startDate, endDate string) ([]DailyCampaignAnalytics, error)
	CampaignAnalyticsOverview(ctx context.Context) ([]CampaignAnalytics, error)

	ListAccounts(ctx context.Context) ([]Account, error)
	WarmupAnalytics(ctx context.Context, emails []string) ([]WarmupAccount, error)
	AccountDailyAnalytics(ctx context.Context, emails []string, startDate, endDate string) ([]AccountDaily, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates an Instantly API client. An empty apiKey yields a
// client whose calls fail with ErrMissingAPIKey.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) HasKey() bool { return c.apiKey != "" }

// do sends a request and decodes a JSON response into out when out is
// non-nil. in is JSON-encoded when non-nil.
func (c *httpClient) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	if c.apiKey == "" {
		return ErrMissingAPIKey
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return eris.Wrap(err, "instantly: marshal request")
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return eris.Wrap(err, "instantly: create request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrapf(err, "instantly: %s %s", method, path)
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "instantly: read response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return eris.Wrap(err, "instantly: unmarshal response")
	}
	return nil
}
