// Package monitoring classifies sending-mailbox health and raises webhook
// alerts when it degrades.
package monitoring

import (
	"context"
	"math"

	"github.com/sells-group/outreach-cli/internal/apperr"
	"github.com/sells-group/outreach-cli/pkg/instantly"
)

// DailySendLimit is the per-mailbox daily volume reported to the dashboard.
const DailySendLimit = 50

// Status is a mailbox's health bucket.
type Status string

const (
	StatusHealthy  Status = "healthy"
	StatusWarning  Status = "warning"
	StatusCritical Status = "critical"
)

// AccountHealth is the classified warmup report for one mailbox.
type AccountHealth struct {
	Email               string  `json:"email"`
	WarmupStatus        string  `json:"warmupStatus"`
	WarmupProgress      float64 `json:"warmupProgress"`
	DailySendVolume     int     `json:"dailySendVolume"`
	DailySendLimit      int     `json:"dailySendLimit"`
	DeliverabilityScore *int    `json:"deliverabilityScore,omitempty"`
	SpamScore           int     `json:"spamScore"`
	HealthStatus        Status  `json:"healthStatus"`
}

// HealthSummary aggregates every mailbox in the workspace.
type HealthSummary struct {
	TotalAccounts         int             `json:"totalAccounts"`
	HealthyAccounts       int             `json:"healthyAccounts"`
	WarningAccounts       int             `json:"warningAccounts"`
	CriticalAccounts      int             `json:"criticalAccounts"`
	AverageWarmupProgress int             `json:"averageWarmupProgress"`
	Accounts              []AccountHealth `json:"accounts"`
}

// AccountDaily is one day of mailbox traffic.
type AccountDaily struct {
	Date           string `json:"date"`
	Email          string `json:"email"`
	Sent           int    `json:"sent"`
	Received       int    `json:"received"`
	WarmupSent     int    `json:"warmupSent"`
	WarmupReceived int    `json:"warmupReceived"`
}

// Classify buckets a mailbox by spam share and warmup progress.
func Classify(w instantly.WarmupAccount) AccountHealth {
	spam := 0
	if total := w.TotalInboxCount + w.TotalSpamCount; total > 0 {
		spam = int(math.Round(float64(w.TotalSpamCount) / float64(total) * 100))
	}

	status := StatusHealthy
	switch {
	case spam > 20 || w.WarmupProgress < 30:
		status = StatusCritical
	case spam > 10 || w.WarmupProgress < 60:
		status = StatusWarning
	}

	return AccountHealth{
		Email:               w.Email,
		WarmupStatus:        w.WarmupStatus,
		WarmupProgress:      w.WarmupProgress,
		DailySendVolume:     w.TotalSentCount,
		DailySendLimit:      DailySendLimit,
		DeliverabilityScore: w.WarmupReputation,
		SpamScore:           spam,
		HealthStatus:        status,
	}
}

// HealthService reads mailbox health from Instantly.
type HealthService struct {
	client instantly.Client
}

// NewHealthService creates a HealthService.
func NewHealthService(client instantly.Client) *HealthService {
	return &HealthService{client: client}
}

// Summary lists the workspace's mailboxes, fetches their warmup reports and
// classifies each one.
func (h *HealthService) Summary(ctx context.Context) (*HealthSummary, error) {
	if h.client == nil || !h.client.HasKey() {
		return nil, apperr.Configuration("Instantly API key not configured")
	}

	accounts, err := h.client.ListAccounts(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstream, "Failed to fetch accounts: "+err.Error(), err)
	}
	summary := &HealthSummary{Accounts: []AccountHealth{}}
	if len(accounts) == 0 {
		return summary, nil
	}

	emails := make([]string, 0, len(accounts))
	for _, a := range accounts {
		emails = append(emails, a.Email)
	}

	warmup, err := h.client.WarmupAnalytics(ctx, emails)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstream, "Failed to fetch warmup analytics: "+err.Error(), err)
	}

	summary.TotalAccounts = len(accounts)
	var progress float64
	for _, w := range warmup {
		ah := Classify(w)
		switch ah.HealthStatus {
		case StatusHealthy:
			summary.HealthyAccounts++
		case StatusWarning:
			summary.WarningAccounts++
		case StatusCritical:
			summary.CriticalAccounts++
		}
		progress += ah.WarmupProgress
		summary.Accounts = append(summary.Accounts, ah)
	}
	if n := len(summary.Accounts); n > 0 {
		summary.AverageWarmupProgress = int(math.Round(progress / float64(n)))
	}
	return summary, nil
}

// Daily returns per-day mailbox traffic for emails between the optional
// dates (YYYY-MM-DD).
func (h *HealthService) Daily(ctx context.Context, emails []string, startDate, endDate string) ([]AccountDaily, error) {
	if h.client == nil || !h.client.HasKey() {
		return nil, apperr.Configuration("Instantly API key not configured")
	}
	raw, err := h.client.AccountDailyAnalytics(ctx, emails, startDate, endDate)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstream, "Failed to fetch daily analytics: "+err.Error(), err)
	}
	out := make([]AccountDaily, 0, len(raw))
	for _, d := range raw {
		out = append(out, AccountDaily{
			Date:           d.Date,
			Email:          d.Email,
			Sent:           d.SentCount,
			Received:       d.InboxCount,
			WarmupSent:     d.WarmupSent,
			WarmupReceived: d.WarmupInbox,
		})
	}
	return out, nil
}
