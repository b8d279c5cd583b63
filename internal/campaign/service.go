// Package campaign manages Instantly campaigns and their analytics.
package campaign

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/outreach-cli/internal/apperr"
	"github.com/sells-group/outreach-cli/pkg/instantly"
)

// ErrMissingKey is returned by every call when no Instantly key is set.
const ErrMissingKey = "Instantly API key not configured"

// overviewConcurrency bounds the per-campaign fallback fan-out.
const overviewConcurrency = 5

// CreateRequest is the body for a new campaign.
type CreateRequest = instantly.CampaignRequest

// Service wraps the Instantly campaign endpoints.
type Service struct {
	client instantly.Client
}

// NewService creates a Service.
func NewService(client instantly.Client) *Service {
	return &Service{client: client}
}

// List returns every campaign in the workspace.
func (s *Service) List(ctx context.Context) ([]instantly.Campaign, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	out, err := s.client.ListCampaigns(ctx)
	if err != nil {
		return nil, upstream("Failed to fetch campaigns", err)
	}
	if out == nil {
		out = []instantly.Campaign{}
	}
	return out, nil
}

// Get returns one campaign.
func (s *Service) Get(ctx context.Context, id string) (*instantly.Campaign, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if err := requireID(id); err != nil {
		return nil, err
	}
	c, err := s.client.GetCampaign(ctx, id)
	if err != nil {
		return nil, upstream("Failed to fetch campaign", err)
	}
	return c, nil
}

// Create validates req and creates the campaign.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*instantly.Campaign, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	req.Name = strings.TrimSpace(req.Name)
	if errs := ValidateCreate(req); len(errs) > 0 {
		return nil, apperr.Wrap(apperr.KindValidation, errs[0].Message, errs)
	}

	c, err := s.client.CreateCampaign(ctx, req)
	if err != nil {
		return nil, upstream("Failed to create campaign", err)
	}
	zap.L().Info("campaign: created", zap.String("id", c.ID), zap.String("name", c.Name))
	return c, nil
}

// Update patches the fields set in req.
func (s *Service) Update(ctx context.Context, id string, req instantly.CampaignRequest) (*instantly.Campaign, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if err := requireID(id); err != nil {
		return nil, err
	}
	if errs := ValidateUpdate(req); len(errs) > 0 {
		return nil, apperr.Wrap(apperr.KindValidation, errs[0].Message, errs)
	}
	c, err := s.client.UpdateCampaign(ctx, id, req)
	if err != nil {
		return nil, upstream("Failed to update campaign", err)
	}
	return c, nil
}

// Delete removes a campaign.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.ready(); err != nil {
		return err
	}
	if err := requireID(id); err != nil {
		return err
	}
	if err := s.client.DeleteCampaign(ctx, id); err != nil {
		return upstream("Failed to delete campaign", err)
	}
	zap.L().Info("campaign: deleted", zap.String("id", id))
	return nil
}

// Pause stops sending for a campaign.
func (s *Service) Pause(ctx context.Context, id string) (*instantly.Campaign, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if err := requireID(id); err != nil {
		return nil, err
	}
	c, err := s.client.PauseCampaign(ctx, id)
	if err != nil {
		return nil, upstream("Failed to pause campaign", err)
	}
	return c, nil
}

// Activate starts or resumes a campaign.
func (s *Service) Activate(ctx context.Context, id string) (*instantly.Campaign, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if err := requireID(id); err != nil {
		return nil, err
	}
	c, err := s.client.ActivateCampaign(ctx, id)
	if err != nil {
		return nil, upstream("Failed to activate campaign", err)
	}
	return c, nil
}

// Analytics returns the computed view for one campaign.
func (s *Service) Analytics(ctx context.Context, id string) (*Analytics, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if err := requireID(id); err != nil {
		return nil, err
	}
	raw, err := s.client.CampaignAnalytics(ctx, id)
	if err != nil {
		return nil, upstream("Failed to fetch campaign analytics", err)
	}
	a := FromRaw(*raw, id)
	return &a, nil
}

// DailyAnalytics returns per-day activity between the optional dates
// (YYYY-MM-DD).
func (s *Service) DailyAnalytics(ctx context.Context, id, startDate, endDate string) ([]DailyAnalytics, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if err := requireID(id); err != nil {
		return nil, err
	}
	raw, err := s.client.CampaignDailyAnalytics(ctx, id, startDate, endDate)
	if err != nil {
		return nil, upstream("Failed to fetch daily analytics", err)
	}
	out := make([]DailyAnalytics, 0, len(raw))
	for _, d := range raw {
		out = append(out, DailyAnalytics{
			Date:    d.Date,
			Sent:    d.NewLeadsContacted,
			Opened:  d.LeadsWhoRead,
			Clicked: d.LeadsWhoClicked,
			Replied: d.LeadsWhoReplied,
			Bounced: d.Bounced,
		})
	}
	return out, nil
}

// Overview returns analytics for every campaign. When the overview
// endpoint fails it falls back to fetching each campaign individually;
// campaigns whose analytics cannot be fetched are left out.
func (s *Service) Overview(ctx context.Context) ([]Analytics, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	raw, err := s.client.CampaignAnalyticsOverview(ctx)
	if err == nil {
		out := make([]Analytics, 0, len(raw))
		for _, r := range raw {
			out = append(out, FromRaw(r, r.CampaignID))
		}
		return out, nil
	}
	zap.L().Warn("campaign: overview endpoint failed, falling back to per-campaign analytics", zap.Error(err))

	campaigns, err := s.client.ListCampaigns(ctx)
	if err != nil {
		return nil, upstream("Failed to fetch all campaigns analytics", err)
	}

	results := make([]*Analytics, len(campaigns))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(overviewConcurrency)
	for i, c := range campaigns {
		g.Go(func() error {
			r, aerr := s.client.CampaignAnalytics(gctx, c.ID)
			if aerr != nil {
				zap.L().Debug("campaign: analytics unavailable",
					zap.String("id", c.ID), zap.Error(aerr))
				return nil
			}
			a := FromRaw(*r, c.ID)
			if a.CampaignName == "" {
				a.CampaignName = c.Name
			}
			results[i] = &a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "campaign: overview fallback")
	}

	out := make([]Analytics, 0, len(results))
	for _, a := range results {
		if a != nil {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (s *Service) ready() error {
	if s.client == nil || !s.client.HasKey() {
		return apperr.Configuration(ErrMissingKey)
	}
	return nil
}

func requireID(id string) error {
	if strings.TrimSpace(id) == "" {
		return apperr.Validation("Campaign ID is required")
	}
	return nil
}

// upstream converts a client error into an apperr prefixed with action.
func upstream(action string, err error) error {
	return apperr.Wrap(apperr.KindUpstream, action+": "+err.Error(), err)
}
