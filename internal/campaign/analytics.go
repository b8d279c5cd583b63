package campaign

import (
	"math"

	"github.com/sells-group/outreach-cli/pkg/instantly"
)

// Analytics is the dashboard view of a campaign's counters. Rates are
// whole percentages of Sent.
type Analytics struct {
	CampaignID   string `json:"campaignId"`
	CampaignName string `json:"campaignName,omitempty"`
	TotalLeads   int    `json:"totalLeads"`
	Sent         int    `json:"sent"`
	Opened       int    `json:"opened"`
	Clicked      int    `json:"clicked"`
	Replied      int    `json:"replied"`
	Bounced      int    `json:"bounced"`
	Unsubscribed int    `json:"unsubscribed"`
	OpenRate     int    `json:"openRate"`
	ClickRate    int    `json:"clickRate"`
	ReplyRate    int    `json:"replyRate"`
	BounceRate   int    `json:"bounceRate"`
}

// DailyAnalytics is one day of campaign activity.
type DailyAnalytics struct {
	Date    string `json:"date"`
	Sent    int    `json:"sent"`
	Opened  int    `json:"opened"`
	Clicked int    `json:"clicked"`
	Replied int    `json:"replied"`
	Bounced int    `json:"bounced"`
}

// FromRaw computes the view from Instantly's counters. fallbackID is used
// when the payload omits the campaign id.
func FromRaw(raw instantly.CampaignAnalytics, fallbackID string) Analytics {
	id := raw.CampaignID
	if id == "" {
		id = fallbackID
	}
	sent := raw.Contacted
	return Analytics{
		CampaignID:   id,
		CampaignName: raw.CampaignName,
		TotalLeads:   raw.TotalLeads,
		Sent:         sent,
		Opened:       raw.LeadsWhoRead,
		Clicked:      raw.LeadsWhoClicked,
		Replied:      raw.LeadsWhoReplied,
		Bounced:      raw.Bounced,
		Unsubscribed: raw.Unsubscribed,
		OpenRate:     Rate(raw.LeadsWhoRead, sent),
		ClickRate:    Rate(raw.LeadsWhoClicked, sent),
		ReplyRate:    Rate(raw.LeadsWhoReplied, sent),
		BounceRate:   Rate(raw.Bounced, sent),
	}
}

// Rate is n as a rounded percentage of sent, or 0 when nothing was sent.
func Rate(n, sent int) int {
	if sent <= 0 {
		return 0
	}
	return int(math.Round(float64(n) / float64(sent) * 100))
}

// Totals sums a set of campaign views and recomputes the rates.
func Totals(all []Analytics) Analytics {
	var t Analytics
	for _, a := range all {
		t.TotalLeads += a.TotalLeads
		t.Sent += a.Sent
		t.Opened += a.Opened
		t.Clicked += a.Clicked
		t.Replied += a.Replied
		t.Bounced += a.Bounced
		t.Unsubscribed += a.Unsubscribed
	}
	t.OpenRate = Rate(t.Opened, t.Sent)
	t.ClickRate = Rate(t.Clicked, t.Sent)
	t.ReplyRate = Rate(t.Replied, t.Sent)
	t.BounceRate = Rate(t.Bounced, t.Sent)
	return t
}
