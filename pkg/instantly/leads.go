package instantly

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Lead is a lead submitted to a campaign.
type Lead struct {
	Email           string            `json:"email"`
	FirstName       string            `json:"first_name,omitempty"`
	LastName        string            `json:"last_name,omitempty"`
	CompanyName     string            `json:"company_name,omitempty"`
	Personalization string            `json:"personalization,omitempty"`
	Phone           string            `json:"phone,omitempty"`
	Website         string            `json:"website,omitempty"`
	CustomVariables map[string]string `json:"custom_variables,omitempty"`
}

// LeadData is a lead as stored by Instantly.
type LeadData struct {
	ID              string            `json:"id,omitempty"`
	Email           string            `json:"email"`
	FirstName       string            `json:"first_name,omitempty"`
	LastName        string            `json:"last_name,omitempty"`
	CompanyName     string            `json:"company_name,omitempty"`
	CampaignID      string            `json:"campaign_id,omitempty"`
	Status          any               `json:"status,omitempty"`
	ListID          string            `json:"list_id,omitempty"`
	Phone           string            `json:"phone,omitempty"`
	Website         string            `json:"website,omitempty"`
	CustomVariables map[string]string `json:"custom_variables,omitempty"`
	CreatedAt       string            `json:"created_at,omitempty"`
	UpdatedAt       string            `json:"updated_at,omitempty"`
}

// LeadList is a page of leads.
type LeadList struct {
	Items             []LeadData `json:"items"`
	NextStartingAfter string     `json:"next_starting_after,omitempty"`
}

// HasMore reports whether another page is available.
func (l *LeadList) HasMore() bool { return l.NextStartingAfter != "" }

// AddLeadsRequest is the body for POST /leads/add.
type AddLeadsRequest struct {
	CampaignID       string `json:"campaign_id"`
	SkipIfInCampaign bool   `json:"skip_if_in_campaign"`
	Leads            []Lead `json:"leads"`
}

// LeadError is a per-lead rejection reported by Instantly.
type LeadError struct {
	Email string `json:"email"`
	Error string `json:"error"`
}

// AddLeadsResponse is the aggregate result of a bulk upload. Uploaded is
// nil when Instantly omits the count.
type AddLeadsResponse struct {
	Status   string      `json:"status"`
	Message  string      `json:"message,omitempty"`
	Uploaded *int        `json:"uploaded,omitempty"`
	Skipped  *int        `json:"skipped,omitempty"`
	Errors   []LeadError `json:"errors,omitempty"`
}

// ListLeadsRequest pages through the workspace's leads.
type ListLeadsRequest struct {
	CampaignID    string
	Limit         int
	StartingAfter string
}

type listLeadsBody struct {
	Limit         int    `json:"limit"`
	CampaignID    string `json:"campaign_id,omitempty"`
	StartingAfter string `json:"starting_after,omitempty"`
}

func (c *httpClient) SearchLeads(ctx context.Context, email, campaignID string) (*LeadList, error) {
	q := url.Values{}
	q.Set("email", strings.ToLower(strings.TrimSpace(email)))
	q.Set("limit", "1")
	if campaignID != "" {
		q.Set("campaign_id", campaignID)
	}

	var out LeadList
	if err := c.do(ctx, http.MethodGet, "/leads/search", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) AddLeads(ctx context.Context, req AddLeadsRequest) (*AddLeadsResponse, error) {
	var out AddLeadsResponse
	if err := c.do(ctx, http.MethodPost, "/leads/add", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListLeads sends campaign_id only when it is a UUID; Instantly rejects
// anything else.
func (c *httpClient) ListLeads(ctx context.Context, req ListLeadsRequest) (*LeadList, error) {
	body := listLeadsBody{Limit: req.Limit, StartingAfter: req.StartingAfter}
	if body.Limit <= 0 {
		body.Limit = 100
	}
	if _, err := uuid.Parse(req.CampaignID); err == nil && len(req.CampaignID) == 36 {
		body.CampaignID = req.CampaignID
	}

	var out LeadList
	if err := c.do(ctx, http.MethodPost, "/leads/list", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// itoa keeps query building terse.
func itoa(n int) string { return strconv.Itoa(n) }
