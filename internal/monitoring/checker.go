package monitoring

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/config"
)

// SummaryProvider produces the current mailbox health.
type SummaryProvider interface {
	Summary(ctx context.Context) (*HealthSummary, error)
}

// Checker polls mailbox health in the background and alerts on breaches.
type Checker struct {
	health  SummaryProvider
	alerter *Alerter
	cfg     config.MonitoringConfig
}

// NewChecker creates a background health checker.
func NewChecker(health SummaryProvider, alerter *Alerter, cfg config.MonitoringConfig) *Checker {
	return &Checker{
		health:  health,
		alerter: alerter,
		cfg:     cfg,
	}
}

// Run starts the periodic check loop. It blocks until ctx is cancelled.
func (c *Checker) Run(ctx context.Context) {
	interval := time.Duration(c.cfg.CheckIntervalSecs) * time.Second
	if interval <= 0 {
		interval = 15 * time.Minute
	}

	log := zap.L().With(zap.String("component", "monitoring.checker"))
	log.Info("starting email health checker", zap.Duration("interval", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("email health checker stopped")
			return
		case <-ticker.C:
			c.Check(ctx)
		}
	}
}

// Check runs a single evaluation and returns the alerts it raised.
func (c *Checker) Check(ctx context.Context) []Alert {
	log := zap.L().With(zap.String("component", "monitoring.checker"))

	summary, err := c.health.Summary(ctx)
	if err != nil {
		log.Error("monitoring: failed to read email health", zap.Error(err))
		return nil
	}

	alerts := c.alerter.Evaluate(summary)
	if len(alerts) == 0 {
		log.Debug("monitoring: no alerts triggered")
		return nil
	}

	sent := c.alerter.SendAlerts(ctx, alerts)
	log.Info("monitoring: health check complete",
		zap.Int("alerts_triggered", len(alerts)),
		zap.Int("alerts_sent", sent),
	)
	return alerts
}
