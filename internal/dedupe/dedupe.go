// Package dedupe checks which contacts already exist as Instantly leads.
package dedupe

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/sells-group/outreach-cli/internal/apperr"
	"github.com/sells-group/outreach-cli/internal/resilience"
	"github.com/sells-group/outreach-cli/pkg/instantly"
)

// ErrMissingKey is the message returned when no Instantly key is configured.
const ErrMissingKey = "Instantly API key not configured. Cannot perform deduplication."

// CheckerConfig tunes batching and retries.
type CheckerConfig struct {
	BatchSize  int
	BatchDelay time.Duration
	Retry      resilience.RetryConfig
}

// DefaultCheckerConfig returns batches of 50 spaced 200ms apart.
func DefaultCheckerConfig() CheckerConfig {
	return CheckerConfig{
		BatchSize:  50,
		BatchDelay: 200 * time.Millisecond,
		Retry:      resilience.DefaultRetryConfig(),
	}
}

// Result lists emails found in Instantly. LookupFailures counts emails
// whose lookup still failed after retries; those are treated as new.
type Result struct {
	Existing       map[string]struct{}
	Checked        int
	LookupFailures int
}

// Checker looks up emails one at a time, since Instantly has no bulk lookup.
type Checker struct {
	client instantly.Client
	cfg    CheckerConfig
}

// NewChecker creates a Checker. Zero config fields take the defaults.
func NewChecker(client instantly.Client, cfg CheckerConfig) *Checker {
	def := DefaultCheckerConfig()
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.BatchDelay < 0 {
		cfg.BatchDelay = 0
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry.MaxAttempts = def.Retry.MaxAttempts
	}
	return &Checker{client: client, cfg: cfg}
}

// GetLeadsBatch returns the normalized emails that already exist in
// Instantly, optionally scoped to campaignID.
func (c *Checker) GetLeadsBatch(ctx context.Context, emails []string, campaignID string) (map[string]struct{}, error) {
	res, err := c.CheckLeads(ctx, emails, campaignID)
	if err != nil {
		return nil, err
	}
	return res.Existing, nil
}

// CheckLeads is GetLeadsBatch with lookup failure accounting.
func (c *Checker) CheckLeads(ctx context.Context, emails []string, campaignID string) (*Result, error) {
	if !c.client.HasKey() {
		return nil, apperr.Configuration(ErrMissingKey)
	}

	res := &Result{Existing: make(map[string]struct{})}
	if len(emails) == 0 {
		return res, nil
	}

	log := zap.L().With(zap.String("component", "dedupe"))
	totalBatches := (len(emails) + c.cfg.BatchSize - 1) / c.cfg.BatchSize
	log.Info("dedupe: checking emails", zap.Int("emails", len(emails)), zap.Int("batches", totalBatches))

	limiter := rate.NewLimiter(rate.Inf, 1)
	if c.cfg.BatchDelay > 0 {
		limiter = rate.NewLimiter(rate.Every(c.cfg.BatchDelay), 1)
	}

	var (
		mu       sync.Mutex
		failures atomic.Int64
	)
	retry := c.cfg.Retry
	retry.OnRetry = resilience.RetryLogger("instantly", "leads_search")

	for start := 0; start < len(emails); start += c.cfg.BatchSize {
		end := min(start+c.cfg.BatchSize, len(emails))
		if err := limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "dedupe: wait for batch")
		}
		log.Debug("dedupe: processing batch",
			zap.Int("batch", start/c.cfg.BatchSize+1),
			zap.Int("total", totalBatches),
		)

		g, gctx := errgroup.WithContext(ctx)
		for _, raw := range emails[start:end] {
			email := strings.ToLower(strings.TrimSpace(raw))
			g.Go(func() error {
				found, err := resilience.DoVal(gctx, retry, func(ctx context.Context) (bool, error) {
					list, err := c.client.SearchLeads(ctx, email, campaignID)
					if err != nil {
						return false, err
					}
					return list != nil && len(list.Items) > 0, nil
				})
				if err != nil {
					if gctx.Err() != nil {
						return gctx.Err()
					}
					failures.Add(1)
					log.Warn("dedupe: lookup failed, treating as new", zap.String("email", email), zap.Error(err))
					return nil
				}
				if found {
					mu.Lock()
					res.Existing[email] = struct{}{}
					mu.Unlock()
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, eris.Wrap(err, "dedupe: batch interrupted")
		}
	}

	res.Checked = len(emails)
	res.LookupFailures = int(failures.Load())
	log.Info("dedupe: check complete",
		zap.Int("existing", len(res.Existing)),
		zap.Int("checked", res.Checked),
		zap.Int("lookup_failures", res.LookupFailures),
	)
	return res, nil
}
