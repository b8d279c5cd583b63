package usage

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/outreach-cli/internal/apperr"
	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/store"
)

type captureRecorder struct {
	mu   sync.Mutex
	recs []model.UsageRecord
	err  error
}

func (c *captureRecorder) RecordUsage(_ context.Context, rec model.UsageRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recs = append(c.recs, rec)
	return c.err
}

func TestTransport_RecordsBulkMatchCredits(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	rec := &captureRecorder{}
	hc := Client(nil, model.ServiceApollo, rec)

	body := `{"details":[{"id":"a"},{"id":"b"},{"id":"c"}]}`
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/v1/people/bulk_match?reveal_personal_emails=true", bytes.NewReader([]byte(body)))
	require.NoError(t, err)
	resp, err := hc.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()

	req, err = http.NewRequest(http.MethodPost, srv.URL+"/api/v1/mixed_people/api_search", bytes.NewReader([]byte(`{}`)))
	require.NoError(t, err)
	resp, err = hc.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()

	require.Len(t, rec.recs, 2)
	assert.Equal(t, model.ServiceApollo, rec.recs[0].Service)
	assert.Equal(t, "/api/v1/people/bulk_match", rec.recs[0].Endpoint)
	assert.Equal(t, http.MethodPost, rec.recs[0].Method)
	assert.Equal(t, http.StatusOK, rec.recs[0].StatusCode)
	assert.Equal(t, 3, rec.recs[0].Credits)
	assert.Zero(t, rec.recs[1].Credits)
	assert.False(t, rec.recs[0].Timestamp.IsZero())
}

func TestTransport_InstantlyHasNoCredits(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	rec := &captureRecorder{}
	hc := Client(&http.Client{Timeout: time.Second}, model.ServiceInstantly, rec)

	resp, err := hc.Post(srv.URL+"/api/v2/people/bulk_match", "application/json", bytes.NewReader([]byte(`{"details":[{}]}`)))
	require.NoError(t, err)
	_ = resp.Body.Close()

	require.Len(t, rec.recs, 1)
	assert.Equal(t, http.StatusTooManyRequests, rec.recs[0].StatusCode)
	assert.Zero(t, rec.recs[0].Credits)
	assert.Equal(t, time.Second, hc.Timeout)
}

func TestTransport_RecorderFailureDoesNotFailRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	rec := &captureRecorder{err: errors.New("disk full")}
	resp, err := Client(nil, model.ServiceInstantly, rec).Get(srv.URL + "/api/v2/campaigns")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, rec.recs, 1)
}

func TestTransport_RecordsTransportErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	rec := &captureRecorder{}
	_, err := Client(nil, model.ServiceInstantly, rec).Get(url + "/api/v2/accounts")
	require.Error(t, err)
	require.Len(t, rec.recs, 1)
	assert.Zero(t, rec.recs[0].StatusCode)
}

func TestPeriodStart(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), PeriodStart(model.PeriodDay, now))
	assert.Equal(t, time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC), PeriodStart(model.PeriodWeek, now))
	assert.Equal(t, time.Date(2026, 2, 8, 0, 0, 0, 0, time.UTC), PeriodStart(model.PeriodMonth, now))
}

func TestParse(t *testing.T) {
	t.Parallel()

	p, err := ParsePeriod("")
	require.NoError(t, err)
	assert.Equal(t, model.PeriodDay, p)
	_, err = ParsePeriod("year")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	s, err := ParseService("apollo")
	require.NoError(t, err)
	assert.Equal(t, model.ServiceApollo, s)
	_, err = ParseService("hubspot")
	assert.Error(t, err)
}

func TestStats(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := store.NewMemory()
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	for _, r := range []model.UsageRecord{
		{Service: model.ServiceApollo, Endpoint: "/people/bulk_match", Credits: 10, Timestamp: now.Add(-time.Hour)},
		{Service: model.ServiceApollo, Endpoint: "/mixed_people/api_search", Timestamp: now.Add(-2 * time.Hour)},
		{Service: model.ServiceApollo, Endpoint: "/people/bulk_match", Credits: 4, Timestamp: now.Add(-26 * time.Hour)},
		{Service: model.ServiceApollo, Endpoint: "/people/bulk_match", Credits: 9, Timestamp: now.AddDate(0, 0, -12)},
		{Service: model.ServiceInstantly, Endpoint: "/leads/add", Timestamp: now.Add(-time.Hour)},
	} {
		require.NoError(t, st.RecordUsage(ctx, r))
	}

	day, err := Stats(ctx, st, model.ServiceApollo, model.PeriodDay, now)
	require.NoError(t, err)
	assert.Equal(t, 2, day.TotalRequests)
	require.NotNil(t, day.TotalCredits)
	assert.Equal(t, 10, *day.TotalCredits)
	assert.Equal(t, []model.DailyUsage{{Date: "2026-03-10", Requests: 2, Credits: 10}}, day.DailyBreakdown)

	week, err := Stats(ctx, st, model.ServiceApollo, model.PeriodWeek, now)
	require.NoError(t, err)
	assert.Equal(t, 3, week.TotalRequests)
	assert.Equal(t, []model.DailyUsage{
		{Date: "2026-03-09", Requests: 1, Credits: 4},
		{Date: "2026-03-10", Requests: 2, Credits: 10},
	}, week.DailyBreakdown)

	month, err := Stats(ctx, st, model.ServiceApollo, model.PeriodMonth, now)
	require.NoError(t, err)
	assert.Equal(t, 4, month.TotalRequests)
	assert.Equal(t, 23, *month.TotalCredits)
	assert.Equal(t, "2026-02-26", month.DailyBreakdown[0].Date)

	inst, err := Stats(ctx, st, model.ServiceInstantly, model.PeriodDay, now)
	require.NoError(t, err)
	assert.Equal(t, 1, inst.TotalRequests)
	assert.Nil(t, inst.TotalCredits)

	both, err := Combined(ctx, st, model.PeriodDay, now)
	require.NoError(t, err)
	assert.Equal(t, 2, both[model.ServiceApollo].TotalRequests)
	assert.Equal(t, 1, both[model.ServiceInstantly].TotalRequests)
}

type failingLister struct{}

func (failingLister) ListUsage(context.Context, store.UsageFilter) ([]model.UsageRecord, error) {
	return nil, errors.New("db gone")
}

func TestStats_StoreError(t *testing.T) {
	t.Parallel()

	_, err := Stats(context.Background(), failingLister{}, model.ServiceApollo, model.PeriodDay, time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db gone")
}
