package monitoring

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/outreach-cli/internal/config"
)

type stubHealth struct {
	summary *HealthSummary
	err     error
	calls   atomic.Int32
}

func (s *stubHealth) Summary(context.Context) (*HealthSummary, error) {
	s.calls.Add(1)
	return s.summary, s.err
}

func TestChecker_RunStopsOnCancel(t *testing.T) {
	health := &stubHealth{summary: &HealthSummary{}}
	cfg := config.MonitoringConfig{CheckIntervalSecs: 1}
	checker := NewChecker(health, NewAlerter(cfg), cfg)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		checker.Run(ctx)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Checker.Run did not stop after context cancellation")
	}
}

func TestChecker_DefaultInterval(t *testing.T) {
	checker := NewChecker(&stubHealth{}, NewAlerter(config.MonitoringConfig{}), config.MonitoringConfig{})
	assert.NotNil(t, checker)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	checker.Run(ctx)
}

func TestChecker_CheckSendsAlerts(t *testing.T) {
	var received atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		received.Add(1)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	cfg := config.MonitoringConfig{WebhookURL: ts.URL, MinAvgWarmupProgress: 50}
	health := &stubHealth{summary: &HealthSummary{
		TotalAccounts:         1,
		CriticalAccounts:      1,
		AverageWarmupProgress: 10,
		Accounts:              []AccountHealth{{Email: "a@acme.io", HealthStatus: StatusCritical}},
	}}

	alerts := NewChecker(health, NewAlerter(cfg), cfg).Check(context.Background())
	require.Len(t, alerts, 2)
	assert.Equal(t, int32(2), received.Load())
	assert.Equal(t, int32(1), health.calls.Load())
}

func TestChecker_CheckSummaryError(t *testing.T) {
	health := &stubHealth{err: errors.New("instantly down")}
	cfg := config.MonitoringConfig{}

	assert.Empty(t, NewChecker(health, NewAlerter(cfg), cfg).Check(context.Background()))
}
