package instantly

import (
	"context"
	"net/http"
	"net/url"
)

// CampaignAnalytics are the raw per-campaign counters.
type CampaignAnalytics struct {
	CampaignID      string `json:"campaign_id"`
	CampaignName    string `json:"campaign_name,omitempty"`
	TotalLeads      int    `json:"total_leads,omitempty"`
	Contacted       int    `json:"contacted"`
	LeadsWhoRead    int    `json:"leads_who_read"`
	LeadsWhoReplied int    `json:"leads_who_replied"`
	LeadsWhoClicked int    `json:"leads_who_clicked"`
	Bounced         int    `json:"bounced"`
	Unsubscribed    int    `json:"unsubscribed"`
}

// DailyCampaignAnalytics is one day of campaign activity.
type DailyCampaignAnalytics struct {
	Date              string `json:"date"`
	NewLeadsContacted int    `json:"new_leads_contacted"`
	LeadsWhoRead      int    `json:"leads_who_read"`
	LeadsWhoReplied   int    `json:"leads_who_replied"`
	LeadsWhoClicked   int    `json:"leads_who_clicked"`
	Bounced           int    `json:"bounced"`
}

type dailyCampaignList struct {
	Data []DailyCampaignAnalytics `json:"data"`
}

type analyticsList struct {
	Items []CampaignAnalytics `json:"items"`
}

func (c *httpClient) CampaignAnalytics(ctx context.Context, id string) (*CampaignAnalytics, error) {
	var out CampaignAnalytics
	if err := c.do(ctx, http.MethodGet, "/campaigns/analytics", url.Values{"id": {id}}, nil, &out); err != nil {
		return nil, err
	}
	if out.CampaignID == "" {
		out.CampaignID = id
	}
	return &out, nil
}

func (c *httpClient) CampaignDailyAnalytics(ctx context.Context, id, startDate, endDate string) ([]DailyCampaignAnalytics, error) {
	q := url.Values{"id": {id}}
	if startDate != "" {
		q.Set("start_date", startDate)
	}
	if endDate != "" {
		q.Set("end_date", endDate)
	}

	var out dailyCampaignList
	if err := c.do(ctx, http.MethodGet, "/campaigns/analytics/daily", q, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *httpClient) CampaignAnalyticsOverview(ctx context.Context) ([]CampaignAnalytics, error) {
	var out analyticsList
	if err := c.do(ctx, http.MethodGet, "/campaigns/analytics/overview", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}
