package instantly

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

// CampaignStatus is a campaign's lifecycle state. Instantly v2 reports it
// as a number; older payloads use the string form.
type CampaignStatus string

const (
	CampaignDraft     CampaignStatus = "draft"
	CampaignActive    CampaignStatus = "active"
	CampaignPaused    CampaignStatus = "paused"
	CampaignCompleted CampaignStatus = "completed"
)

var numericCampaignStatus = map[int]CampaignStatus{
	0: CampaignDraft,
	1: CampaignActive,
	2: CampaignPaused,
	3: CampaignCompleted,
}

// UnmarshalJSON accepts either the numeric or string form.
func (s *CampaignStatus) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		if st, ok := numericCampaignStatus[n]; ok {
			*s = st
		} else {
			*s = CampaignStatus("status_" + itoa(n))
		}
		return nil
	}
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return err
	}
	*s = CampaignStatus(str)
	return nil
}

// ScheduleTiming is a daily send window in HH:mm.
type ScheduleTiming struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// ScheduleSlot is one named sending window.
type ScheduleSlot struct {
	Name     string          `json:"name"`
	Timing   ScheduleTiming  `json:"timing"`
	Days     map[string]bool `json:"days"`
	Timezone string          `json:"timezone"`
}

// CampaignSchedule wraps the schedule slots.
type CampaignSchedule struct {
	Schedules []ScheduleSlot `json:"schedules"`
}

// SequenceVariant is an A/B variant of a sequence step.
type SequenceVariant struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// SequenceStep is one email in a campaign sequence. Delay is in days.
type SequenceStep struct {
	Subject  string            `json:"subject"`
	Body     string            `json:"body"`
	Delay    *int              `json:"delay,omitempty"`
	Variants []SequenceVariant `json:"variants,omitempty"`
}

// CampaignRequest is the body for create and update. Update sends only
// the non-nil fields.
type CampaignRequest struct {
	Name             string            `json:"name,omitempty"`
	CampaignSchedule *CampaignSchedule `json:"campaign_schedule,omitempty"`
	Sequences        []SequenceStep    `json:"sequences,omitempty"`
	EmailList        []string          `json:"email_list,omitempty"`
	DailyLimit       *int              `json:"daily_limit,omitempty"`
	StopOnReply      *bool             `json:"stop_on_reply,omitempty"`
	StopOnAutoReply  *bool             `json:"stop_on_auto_reply,omitempty"`
	LinkTracking     *bool             `json:"link_tracking,omitempty"`
	OpenTracking     *bool             `json:"open_tracking,omitempty"`
}

// Campaign is an Instantly campaign.
type Campaign struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	Status           CampaignStatus    `json:"status"`
	CreatedAt        string            `json:"timestamp_created,omitempty"`
	UpdatedAt        string            `json:"timestamp_updated,omitempty"`
	DailyLimit       *int              `json:"daily_limit,omitempty"`
	StopOnReply      *bool             `json:"stop_on_reply,omitempty"`
	StopOnAutoReply  *bool             `json:"stop_on_auto_reply,omitempty"`
	LinkTracking     *bool             `json:"link_tracking,omitempty"`
	OpenTracking     *bool             `json:"open_tracking,omitempty"`
	Sequences        []SequenceStep    `json:"sequences,omitempty"`
	EmailList        []string          `json:"email_list,omitempty"`
	CampaignSchedule *CampaignSchedule `json:"campaign_schedule,omitempty"`
}

type campaignList struct {
	Items             []Campaign `json:"items"`
	NextStartingAfter string     `json:"next_starting_after,omitempty"`
}

func (c *httpClient) ListCampaigns(ctx context.Context) ([]Campaign, error) {
	var out campaignList
	if err := c.do(ctx, http.MethodGet, "/campaigns", url.Values{"limit": {"100"}}, nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *httpClient) GetCampaign(ctx context.Context, id string) (*Campaign, error) {
	var out Campaign
	if err := c.do(ctx, http.MethodGet, "/campaigns/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) CreateCampaign(ctx context.Context, req CampaignRequest) (*Campaign, error) {
	var out Campaign
	if err := c.do(ctx, http.MethodPost, "/campaigns", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) UpdateCampaign(ctx context.Context, id string, req CampaignRequest) (*Campaign, error) {
	var out Campaign
	if err := c.do(ctx, http.MethodPatch, "/campaigns/"+url.PathEscape(id), nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) DeleteCampaign(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/campaigns/"+url.PathEscape(id), nil, nil, nil)
}

func (c *httpClient) PauseCampaign(ctx context.Context, id string) (*Campaign, error) {
	var out Campaign
	if err := c.do(ctx, http.MethodPost, "/campaigns/"+url.PathEscape(id)+"/pause", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) ActivateCampaign(ctx context.Context, id string) (*Campaign, error) {
	var out Campaign
	if err := c.do(ctx, http.MethodPost, "/campaigns/"+url.PathEscape(id)+"/activate", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
