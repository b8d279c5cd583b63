package instantly

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestServer routes requests by "METHOD /path" and records request bodies.
func newTestServer(t *testing.T, routes map[string]func(w http.ResponseWriter, r *http.Request)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		h, ok := routes[r.Method+" "+r.URL.Path]
		if !ok {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func decodeBody(t *testing.T, r *http.Request, v any) {
	t.Helper()
	raw, err := io.ReadAll(r.Body)
	assert.NoError(t, err)
	assert.NoError(t, json.Unmarshal(raw, v))
}

func TestSearchLeads(t *testing.T) {
	srv := newTestServer(t, map[string]func(http.ResponseWriter, *http.Request){
		"GET /leads/search": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "ada@acme.io", r.URL.Query().Get("email"))
			assert.Equal(t, "1", r.URL.Query().Get("limit"))
			assert.Equal(t, "camp-1", r.URL.Query().Get("campaign_id"))
			_, _ = w.Write([]byte(`{"items": [{"email": "ada@acme.io", "status": 1}]}`))
		},
	})

	c := NewClient("test-key", WithBaseURL(srv.URL))
	got, err := c.SearchLeads(context.Background(), "  Ada@Acme.io ", "camp-1")
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "ada@acme.io", got.Items[0].Email)
	assert.False(t, got.HasMore())
}

func TestAddLeads(t *testing.T) {
	srv := newTestServer(t, map[string]func(http.ResponseWriter, *http.Request){
		"POST /leads/add": func(w http.ResponseWriter, r *http.Request) {
			var body AddLeadsRequest
			decodeBody(t, r, &body)
			assert.Equal(t, "camp-1", body.CampaignID)
			assert.True(t, body.SkipIfInCampaign)
			assert.Len(t, body.Leads, 2)
			_, _ = w.Write([]byte(`{"status": "success", "uploaded": 1, "errors": [{"email": "b@x.io", "error": "invalid"}]}`))
		},
	})

	c := NewClient("test-key", WithBaseURL(srv.URL))
	resp, err := c.AddLeads(context.Background(), AddLeadsRequest{
		CampaignID:       "camp-1",
		SkipIfInCampaign: true,
		Leads:            []Lead{{Email: "a@x.io"}, {Email: "b@x.io"}},
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Uploaded)
	assert.Equal(t, 1, *resp.Uploaded)
	assert.Nil(t, resp.Skipped)
	assert.Equal(t, []LeadError{{Email: "b@x.io", Error: "invalid"}}, resp.Errors)
}

func TestListLeads_CampaignIDOnlyWhenUUID(t *testing.T) {
	var bodies []map[string]any
	srv := newTestServer(t, map[string]func(http.ResponseWriter, *http.Request){
		"POST /leads/list": func(w http.ResponseWriter, r *http.Request) {
			var body map[string]any
			decodeBody(t, r, &body)
			bodies = append(bodies, body)
			_, _ = w.Write([]byte(`{"items": [{"email": "a@x.io"}], "next_starting_after": "cursor-2"}`))
		},
	})
	c := NewClient("test-key", WithBaseURL(srv.URL))

	page, err := c.ListLeads(context.Background(), ListLeadsRequest{CampaignID: "not-a-uuid"})
	require.NoError(t, err)
	assert.True(t, page.HasMore())
	assert.Equal(t, "cursor-2", page.NextStartingAfter)

	_, err = c.ListLeads(context.Background(), ListLeadsRequest{
		CampaignID:    "0b6a2f8e-3c1d-4e5f-9a7b-1c2d3e4f5a6b",
		Limit:         25,
		StartingAfter: "cursor-2",
	})
	require.NoError(t, err)

	require.Len(t, bodies, 2)
	assert.Equal(t, float64(100), bodies[0]["limit"])
	_, has := bodies[0]["campaign_id"]
	assert.False(t, has)
	assert.Equal(t, "0b6a2f8e-3c1d-4e5f-9a7b-1c2d3e4f5a6b", bodies[1]["campaign_id"])
	assert.Equal(t, "cursor-2", bodies[1]["starting_after"])
	assert.Equal(t, float64(25), bodies[1]["limit"])
}

func TestCampaignLifecycle(t *testing.T) {
	srv := newTestServer(t, map[string]func(http.ResponseWriter, *http.Request){
		"GET /campaigns": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "100", r.URL.Query().Get("limit"))
			_, _ = w.Write([]byte(`{"items": [{"id": "c1", "name": "Q3", "status": 1}, {"id": "c2", "name": "Old", "status": "completed"}]}`))
		},
		"GET /campaigns/c1": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"id": "c1", "name": "Q3", "status": 2, "daily_limit": 50}`))
		},
		"POST /campaigns": func(w http.ResponseWriter, r *http.Request) {
			var body CampaignRequest
			decodeBody(t, r, &body)
			assert.Equal(t, "New", body.Name)
			_, _ = w.Write([]byte(`{"id": "c3", "name": "New", "status": 0}`))
		},
		"PATCH /campaigns/c1": func(w http.ResponseWriter, r *http.Request) {
			var body map[string]any
			decodeBody(t, r, &body)
			assert.Equal(t, map[string]any{"daily_limit": float64(25)}, body)
			_, _ = w.Write([]byte(`{"id": "c1", "name": "Q3", "status": 1, "daily_limit": 25}`))
		},
		"DELETE /campaigns/c1": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		},
		"POST /campaigns/c1/pause": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"id": "c1", "status": 2}`))
		},
		"POST /campaigns/c1/activate": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"id": "c1", "status": 1}`))
		},
	})
	c := NewClient("test-key", WithBaseURL(srv.URL))
	ctx := context.Background()

	list, err := c.ListCampaigns(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, CampaignActive, list[0].Status)
	assert.Equal(t, CampaignCompleted, list[1].Status)

	got, err := c.GetCampaign(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, CampaignPaused, got.Status)
	assert.Equal(t, 50, *got.DailyLimit)

	created, err := c.CreateCampaign(ctx, CampaignRequest{Name: "New"})
	require.NoError(t, err)
	assert.Equal(t, CampaignDraft, created.Status)

	limit := 25
	updated, err := c.UpdateCampaign(ctx, "c1", CampaignRequest{DailyLimit: &limit})
	require.NoError(t, err)
	assert.Equal(t, 25, *updated.DailyLimit)

	require.NoError(t, c.DeleteCampaign(ctx, "c1"))

	paused, err := c.PauseCampaign(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, CampaignPaused, paused.Status)

	active, err := c.ActivateCampaign(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, CampaignActive, active.Status)
}

func TestCampaignStatus_UnknownNumber(t *testing.T) {
	var s CampaignStatus
	require.NoError(t, json.Unmarshal([]byte(`-99`), &s))
	assert.Equal(t, CampaignStatus("status_-99"), s)
	assert.Error(t, json.Unmarshal([]byte(`{}`), &s))
}

func TestAnalytics(t *testing.T) {
	srv := newTestServer(t, map[string]func(http.ResponseWriter, *http.Request){
		"GET /campaigns/analytics": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "c1", r.URL.Query().Get("id"))
			_, _ = w.Write([]byte(`{"contacted": 200, "leads_who_read": 90, "bounced": 4}`))
		},
		"GET /campaigns/analytics/daily": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "2026-01-01", r.URL.Query().Get("start_date"))
			assert.Empty(t, r.URL.Query().Get("end_date"))
			_, _ = w.Write([]byte(`{"data": [{"date": "2026-01-01", "new_leads_contacted": 20, "leads_who_read": 5}]}`))
		},
		"GET /campaigns/analytics/overview": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"items": [{"campaign_id": "c1", "contacted": 10}]}`))
		},
	})
	c := NewClient("test-key", WithBaseURL(srv.URL))
	ctx := context.Background()

	a, err := c.CampaignAnalytics(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "c1", a.CampaignID)
	assert.Equal(t, 200, a.Contacted)
	assert.Equal(t, 90, a.LeadsWhoRead)

	daily, err := c.CampaignDailyAnalytics(ctx, "c1", "2026-01-01", "")
	require.NoError(t, err)
	require.Len(t, daily, 1)
	assert.Equal(t, 20, daily[0].NewLeadsContacted)

	overview, err := c.CampaignAnalyticsOverview(ctx)
	require.NoError(t, err)
	require.Len(t, overview, 1)
}

func TestAccounts(t *testing.T) {
	srv := newTestServer(t, map[string]func(http.ResponseWriter, *http.Request){
		"GET /accounts": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"items": [{"id": "a1", "email": "s1@send.io"}]}`))
		},
		"POST /accounts/warmup-analytics": func(w http.ResponseWriter, r *http.Request) {
			var body emailsBody
			decodeBody(t, r, &body)
			assert.Equal(t, []string{"s1@send.io"}, body.Emails)
			_, _ = w.Write([]byte(`{"data": [{"email": "s1@send.io", "warmup_status": "active", "warmup_progress": 75, "total_inbox_count": 90, "total_spam_count": 10}]}`))
		},
		"POST /accounts/analytics/daily": func(w http.ResponseWriter, r *http.Request) {
			var body emailsBody
			decodeBody(t, r, &body)
			assert.Equal(t, "2026-02-01", body.EndDate)
			_, _ = w.Write([]byte(`{"data": [{"date": "2026-02-01", "email": "s1@send.io", "sent_count": 12}]}`))
		},
	})
	c := NewClient("test-key", WithBaseURL(srv.URL))
	ctx := context.Background()

	accounts, err := c.ListAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 1)

	warm, err := c.WarmupAnalytics(ctx, []string{"s1@send.io"})
	require.NoError(t, err)
	require.Len(t, warm, 1)
	assert.InDelta(t, 75.0, warm[0].WarmupProgress, 0.001)
	assert.Equal(t, 10, warm[0].TotalSpamCount)

	daily, err := c.AccountDailyAnalytics(ctx, []string{"s1@send.io"}, "", "2026-02-01")
	require.NoError(t, err)
	require.Len(t, daily, 1)
	assert.Equal(t, 12, daily[0].SentCount)
}

func TestErrors(t *testing.T) {
	srv := newTestServer(t, map[string]func(http.ResponseWriter, *http.Request){
		"GET /campaigns": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`rate limited`))
		},
		"GET /accounts": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{broken`))
		},
	})
	c := NewClient("test-key", WithBaseURL(srv.URL))

	_, err := c.ListCampaigns(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Instantly API error (429): rate limited", err.Error())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusTooManyRequests, apiErr.HTTPStatusCode())

	_, err = c.ListAccounts(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal response")

	noKey := NewClient("")
	assert.False(t, noKey.HasKey())
	_, err = noKey.SearchLeads(context.Background(), "a@b.co", "")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}
