package usage

import (
	"context"
	"sort"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/outreach-cli/internal/apperr"
	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/store"
)

// Lister reads stored usage records.
type Lister interface {
	ListUsage(ctx context.Context, filter store.UsageFilter) ([]model.UsageRecord, error)
}

// ParseService validates a service name.
func ParseService(s string) (model.Service, error) {
	switch model.Service(s) {
	case model.ServiceApollo, model.ServiceInstantly:
		return model.Service(s), nil
	}
	return "", apperr.Validation("Invalid service: " + s)
}

// ParsePeriod validates a period name. Empty means day.
func ParsePeriod(s string) (model.UsagePeriod, error) {
	switch model.UsagePeriod(s) {
	case "":
		return model.PeriodDay, nil
	case model.PeriodDay, model.PeriodWeek, model.PeriodMonth:
		return model.UsagePeriod(s), nil
	}
	return "", apperr.Validation("Invalid period: " + s)
}

// PeriodStart is midnight UTC today, minus 7 or 30 days for week and month.
func PeriodStart(period model.UsagePeriod, now time.Time) time.Time {
	now = now.UTC()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	switch period {
	case model.PeriodWeek:
		return day.AddDate(0, 0, -7)
	case model.PeriodMonth:
		return day.AddDate(0, 0, -30)
	default:
		return day
	}
}

// Stats aggregates the service's records since the period start into a
// daily breakdown sorted by date.
func Stats(ctx context.Context, st Lister, service model.Service, period model.UsagePeriod, now time.Time) (*model.UsageStats, error) {
	recs, err := st.ListUsage(ctx, store.UsageFilter{Service: service, Since: PeriodStart(period, now)})
	if err != nil {
		return nil, eris.Wrapf(err, "usage: list %s records", service)
	}

	byDay := make(map[string]*model.DailyUsage)
	out := &model.UsageStats{Service: service, Period: period, DailyBreakdown: []model.DailyUsage{}}
	credits := 0
	for _, r := range recs {
		out.TotalRequests++
		credits += r.Credits

		key := r.Timestamp.UTC().Format(time.DateOnly)
		d, ok := byDay[key]
		if !ok {
			d = &model.DailyUsage{Date: key}
			byDay[key] = d
		}
		d.Requests++
		d.Credits += r.Credits
	}

	for _, d := range byDay {
		out.DailyBreakdown = append(out.DailyBreakdown, *d)
	}
	sort.Slice(out.DailyBreakdown, func(i, j int) bool {
		return out.DailyBreakdown[i].Date < out.DailyBreakdown[j].Date
	})

	if service == model.ServiceApollo {
		out.TotalCredits = &credits
	}
	return out, nil
}

// Combined returns stats for both services over the same period.
func Combined(ctx context.Context, st Lister, period model.UsagePeriod, now time.Time) (map[model.Service]*model.UsageStats, error) {
	out := make(map[model.Service]*model.UsageStats, 2)
	for _, svc := range []model.Service{model.ServiceApollo, model.ServiceInstantly} {
		s, err := Stats(ctx, st, svc, period, now)
		if err != nil {
			return nil, err
		}
		out[svc] = s
	}
	return out, nil
}
