package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/sells-group/outreach-cli/internal/apperr"
	"github.com/sells-group/outreach-cli/internal/campaign"
	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/usage"
	"github.com/sells-group/outreach-cli/pkg/instantly"
)

// overviewResponse is every campaign's analytics plus their totals.
type overviewResponse struct {
	Campaigns []campaign.Analytics `json:"campaigns"`
	Totals    campaign.Analytics   `json:"totals"`
}

func (s *Server) analytics(w http.ResponseWriter, r *http.Request) {
	if id := r.URL.Query().Get("campaign_id"); id != "" {
		a, err := s.deps.Campaigns.Analytics(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, a)
		return
	}

	all, err := s.deps.Campaigns.Overview(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, overviewResponse{Campaigns: all, Totals: campaign.Totals(all)})
}

func (s *Server) dailyAnalytics(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	out, err := s.deps.Campaigns.DailyAnalytics(r.Context(), q.Get("campaign_id"), q.Get("start_date"), q.Get("end_date"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"daily": out})
}

func (s *Server) emailHealth(w http.ResponseWriter, r *http.Request) {
	summary, err := s.deps.Health.Summary(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) emailHealthDaily(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var emails []string
	for _, e := range strings.Split(q.Get("emails"), ",") {
		if e = strings.TrimSpace(e); e != "" {
			emails = append(emails, e)
		}
	}
	if len(emails) == 0 {
		writeError(w, apperr.Validation("At least one email is required"))
		return
	}
	out, err := s.deps.Health.Daily(r.Context(), emails, q.Get("start_date"), q.Get("end_date"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"daily": out})
}

func (s *Server) leads(w http.ResponseWriter, r *http.Request) {
	client := s.deps.Instantly
	if client == nil || !client.HasKey() {
		writeError(w, apperr.Configuration("Instantly API key not configured"))
		return
	}

	q := r.URL.Query()
	req := instantly.ListLeadsRequest{
		CampaignID:    q.Get("campaign_id"),
		StartingAfter: q.Get("starting_after"),
	}
	if l := q.Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 1 || n > 100 {
			writeError(w, apperr.Validation("limit must be between 1 and 100"))
			return
		}
		req.Limit = n
	}

	list, err := client.ListLeads(r.Context(), req)
	if err != nil {
		writeError(w, apperr.Wrap(apperr.KindUpstream, "Failed to fetch leads: "+err.Error(), err))
		return
	}
	items := list.Items
	if items == nil {
		items = []instantly.LeadData{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"leads":   items,
		"next":    list.NextStartingAfter,
		"hasMore": list.HasMore(),
	})
}

func (s *Server) usageStats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	period, err := usage.ParsePeriod(q.Get("period"))
	if err != nil {
		writeError(w, err)
		return
	}

	if svc := q.Get("service"); svc != "" {
		service, err := usage.ParseService(svc)
		if err != nil {
			writeError(w, err)
			return
		}
		stats, err := usage.Stats(r.Context(), s.deps.Usage, service, period, s.now())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, stats)
		return
	}

	both, err := usage.Combined(r.Context(), s.deps.Usage, period, s.now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]*model.UsageStats{
		"apollo":    both[model.ServiceApollo],
		"instantly": both[model.ServiceInstantly],
	})
}
