package apollo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

const (
	defaultBaseURL = "https://api.apollo.io/api/v1"

	// MaxPerPage is the largest page Apollo's people search returns.
	MaxPerPage = 100
	// MaxBulkMatch is the largest details array bulk_match accepts.
	MaxBulkMatch = 10
)

// ErrMissingAPIKey is returned before any request when no key is configured.
var ErrMissingAPIKey = errors.New("Apollo API key not configured")

// APIError is a non-2xx response from Apollo.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Apollo API error (%d): %s", e.StatusCode, e.Body)
}

// HTTPStatusCode returns the response status.
func (e *APIError) HTTPStatusCode() int { return e.StatusCode }

// Client searches people and reveals emails against the Apollo API.
type Client interface {
	SearchPeople(ctx context.Context, req SearchRequest) (*SearchResponse, error)
	BulkMatch(ctx context.Context, ids []string) (*BulkMatchResponse, error)
	HasKey() bool
}

// SearchFilters are the Apollo people-search selectors. Empty selectors
// are omitted from the request body.
type SearchFilters struct {
	PersonTitles                   []string `json:"person_titles,omitempty"`
	PersonSeniorities              []string `json:"person_seniorities,omitempty"`
	OrganizationLocations          []string `json:"organization_locations,omitempty"`
	OrganizationNumEmployeesRanges []string `json:"organization_num_employees_ranges,omitempty"`
	OrganizationIndustryTagIDs     []string `json:"organization_industry_tag_ids,omitempty"`
	QKeywords                      string   `json:"q_keywords,omitempty"`
}

// SearchRequest is the body for POST /mixed_people/api_search.
type SearchRequest struct {
	SearchFilters
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

// Organization is the employer attached to a person.
type Organization struct {
	ID                    string `json:"id,omitempty"`
	Name                  string `json:"name,omitempty"`
	WebsiteURL            string `json:"website_url,omitempty"`
	Industry              string `json:"industry,omitempty"`
	EstimatedNumEmployees int    `json:"estimated_num_employees,omitempty"`
}

// Person is an Apollo person record.
type Person struct {
	ID           string        `json:"id"`
	FirstName    string        `json:"first_name"`
	LastName     string        `json:"last_name"`
	Name         string        `json:"name"`
	Email        *string       `json:"email"`
	EmailStatus  *string       `json:"email_status"`
	Title        string        `json:"title"`
	Organization *Organization `json:"organization,omitempty"`
	LinkedInURL  string        `json:"linkedin_url,omitempty"`
	City         string        `json:"city,omitempty"`
	State        string        `json:"state,omitempty"`
	Country      string        `json:"country,omitempty"`
}

// Pagination describes the page returned by a search.
type Pagination struct {
	Page         int `json:"page"`
	PerPage      int `json:"per_page"`
	TotalEntries int `json:"total_entries"`
	TotalPages   int `json:"total_pages"`
}

// SearchResponse is the search result. Apollo returns either people or
// contacts depending on the account.
type SearchResponse struct {
	People       []Person    `json:"people"`
	Contacts     []Person    `json:"contacts"`
	Pagination   *Pagination `json:"pagination"`
	TotalResults int         `json:"total_results"`
}

// Results returns whichever person list is populated.
func (r *SearchResponse) Results() []Person {
	if len(r.People) > 0 {
		return r.People
	}
	return r.Contacts
}

// BulkMatchResponse is the result of POST /people/bulk_match.
type BulkMatchResponse struct {
	Status  string    `json:"status"`
	Matches []*Person `json:"matches"`
}

type bulkMatchDetail struct {
	ID string `json:"id"`
}

type bulkMatchRequest struct {
	Details []bulkMatchDetail `json:"details"`
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

// NewClient creates an Apollo API client. An empty apiKey yields a client
// whose calls fail with ErrMissingAPIKey.
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

func (c *httpClient) SearchPeople(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	if req.PerPage <= 0 || req.PerPage > MaxPerPage {
		req.PerPage = MaxPerPage
	}
	if req.Page <= 0 {
		req.Page = 1
	}

	var out SearchResponse
	if err := c.post(ctx, "/mixed_people/api_search", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) BulkMatch(ctx context.Context, ids []string) (*BulkMatchResponse, error) {
	if len(ids) == 0 {
		return &BulkMatchResponse{}, nil
	}
	if len(ids) > MaxBulkMatch {
		return nil, eris.Errorf("apollo: bulk match accepts at most %d ids, got %d", MaxBulkMatch, len(ids))
	}

	body := bulkMatchRequest{Details: make([]bulkMatchDetail, len(ids))}
	for i, id := range ids {
		body.Details[i] = bulkMatchDetail{ID: id}
	}

	var out BulkMatchResponse
	if err := c.post(ctx, "/people/bulk_match?reveal_personal_emails=true", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) post(ctx context.Context, path string, in, out any) error {
	if c.apiKey == "" {
		return ErrMissingAPIKey
	}

	body, err := json.Marshal(in)
	if err != nil {
		return eris.Wrap(err, "apollo: marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return eris.Wrap(err, "apollo: create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Cache-Control", "no-cache")
	httpReq.Header.Set("x-api-key", c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return eris.Wrap(err, "apollo: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "apollo: read response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return eris.Wrap(err, "apollo: unmarshal response")
	}
	return nil
}
