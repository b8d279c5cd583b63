package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/config"
	"github.com/sells-group/outreach-cli/internal/resilience"
)

// AlertType identifies the kind of alert.
type AlertType string

const (
	AlertCriticalAccounts AlertType = "critical_accounts"
	AlertLowWarmup        AlertType = "low_warmup_progress"
)

// Alert represents a single alert to be sent.
type Alert struct {
	Type      AlertType      `json:"type"`
	Severity  string         `json:"severity"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Alerter evaluates a HealthSummary against configured thresholds
// and sends alerts via webhook when thresholds are breached.
type Alerter struct {
	cfg    config.MonitoringConfig
	client *http.Client
	retry  resilience.RetryConfig
	now    func() time.Time
}

// NewAlerter creates a new Alerter with the given monitoring config.
func NewAlerter(cfg config.MonitoringConfig) *Alerter {
	return &Alerter{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		retry:  resilience.DefaultRetryConfig(),
		now:    time.Now,
	}
}

// Evaluate checks the summary against thresholds and returns any alerts.
func (a *Alerter) Evaluate(s *HealthSummary) []Alert {
	if s == nil || s.TotalAccounts == 0 {
		return nil
	}

	var alerts []Alert
	now := a.now().UTC()

	if s.CriticalAccounts > 0 {
		var emails []string
		for _, acc := range s.Accounts {
			if acc.HealthStatus == StatusCritical {
				emails = append(emails, acc.Email)
			}
		}
		alerts = append(alerts, Alert{
			Type:     AlertCriticalAccounts,
			Severity: "high",
			Message: fmt.Sprintf("%d of %d sending account(s) in critical health",
				s.CriticalAccounts, s.TotalAccounts),
			Details: map[string]any{
				"critical": s.CriticalAccounts,
				"warning":  s.WarningAccounts,
				"accounts": emails,
			},
			Timestamp: now,
		})
	}

	if a.cfg.MinAvgWarmupProgress > 0 && float64(s.AverageWarmupProgress) < a.cfg.MinAvgWarmupProgress {
		alerts = append(alerts, Alert{
			Type:     AlertLowWarmup,
			Severity: "medium",
			Message: fmt.Sprintf("Average warmup progress %d%% is below threshold %.0f%%",
				s.AverageWarmupProgress, a.cfg.MinAvgWarmupProgress),
			Details: map[string]any{
				"average_progress": s.AverageWarmupProgress,
				"threshold":        a.cfg.MinAvgWarmupProgress,
			},
			Timestamp: now,
		})
	}

	return alerts
}

// SendAlerts delivers alerts to the configured webhook URL, retrying
// transient failures. Returns the number of alerts successfully sent.
func (a *Alerter) SendAlerts(ctx context.Context, alerts []Alert) int {
	if a.cfg.WebhookURL == "" || len(alerts) == 0 {
		return 0
	}

	sent := 0
	for _, alert := range alerts {
		retry := a.retry
		retry.OnRetry = resilience.RetryLogger("webhook", string(alert.Type))
		err := resilience.Do(ctx, retry, func(ctx context.Context) error {
			return a.sendWebhook(ctx, alert)
		})
		if err != nil {
			zap.L().Error("monitoring: failed to send alert",
				zap.String("type", string(alert.Type)),
				zap.Error(err),
			)
			continue
		}
		zap.L().Info("monitoring: alert sent",
			zap.String("type", string(alert.Type)),
			zap.String("severity", alert.Severity),
		)
		sent++
	}
	return sent
}

func (a *Alerter) sendWebhook(ctx context.Context, alert Alert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return eris.Wrap(err, "monitoring: marshal alert")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		return eris.Wrap(err, "monitoring: create webhook request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return eris.Wrap(err, "monitoring: webhook request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 400 {
		err := eris.Errorf("monitoring: webhook returned status %d", resp.StatusCode)
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return resilience.NewTransientError(err, resp.StatusCode)
		}
		return err
	}
	return nil
}
