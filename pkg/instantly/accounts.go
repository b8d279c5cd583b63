package instantly

import (
	"context"
	"net/http"
	"net/url"
)

// Account is a sending mailbox connected to the workspace.
type Account struct {
	ID           string `json:"id,omitempty"`
	Email        string `json:"email"`
	WarmupStatus any    `json:"warmup_status,omitempty"`
	DailyLimit   int    `json:"daily_limit,omitempty"`
}

// WarmupAccount is the warmup report for one mailbox.
type WarmupAccount struct {
	Email            string  `json:"email"`
	WarmupStatus     string  `json:"warmup_status"`
	WarmupProgress   float64 `json:"warmup_progress"`
	WarmupReputation *int    `json:"warmup_reputation,omitempty"`
	TotalSentCount   int     `json:"total_sent_count"`
	TotalInboxCount  int     `json:"total_inbox_count"`
	TotalSpamCount   int     `json:"total_spam_count"`
}

// AccountDaily is one day of mailbox activity.
type AccountDaily struct {
	Date        string `json:"date"`
	Email       string `json:"email"`
	SentCount   int    `json:"sent_count"`
	InboxCount  int    `json:"inbox_count"`
	WarmupSent  int    `json:"warmup_sent"`
	WarmupInbox int    `json:"warmup_inbox"`
}

type accountList struct {
	Items []Account `json:"items"`
}

type warmupList struct {
	Data []WarmupAccount `json:"data"`
}

type accountDailyList struct {
	Data []AccountDaily `json:"data"`
}

type emailsBody struct {
	Emails    []string `json:"emails"`
	StartDate string   `json:"start_date,omitempty"`
	EndDate   string   `json:"end_date,omitempty"`
}

func (c *httpClient) ListAccounts(ctx context.Context) ([]Account, error) {
	var out accountList
	if err := c.do(ctx, http.MethodGet, "/accounts", url.Values{"limit": {"100"}}, nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *httpClient) WarmupAnalytics(ctx context.Context, emails []string) ([]WarmupAccount, error) {
	var out warmupList
	if err := c.do(ctx, http.MethodPost, "/accounts/warmup-analytics", nil, emailsBody{Emails: emails}, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *httpClient) AccountDailyAnalytics(ctx context.Context, emails []string, startDate, endDate string) ([]AccountDaily, error) {
	body := emailsBody{Emails: emails, StartDate: startDate, EndDate: endDate}
	var out accountDailyList
	if err := c.do(ctx, http.MethodPost, "/accounts/analytics/daily", nil, body, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}
