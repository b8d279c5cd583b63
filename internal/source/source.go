// Package source fetches prospect contacts from Apollo.
package source

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/outreach-cli/internal/apperr"
	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/pkg/apollo"
)

// Config tunes paging and email reveal.
type Config struct {
	PageSize        int
	MaxPages        int
	RevealBatchSize int
	RevealDelay     time.Duration
}

// DefaultConfig returns Apollo's documented limits.
func DefaultConfig() Config {
	return Config{
		PageSize:        apollo.MaxPerPage,
		MaxPages:        500,
		RevealBatchSize: apollo.MaxBulkMatch,
		RevealDelay:     100 * time.Millisecond,
	}
}

// Result is a fetch outcome. Contacts may be non-empty when Err is set:
// pages fetched before a failure are kept.
type Result struct {
	Contacts     []model.Contact
	TotalFetched int
	Err          error
}

// Fetcher pages through Apollo people search and reveals missing emails.
type Fetcher struct {
	client apollo.Client
	cfg    Config
}

// NewFetcher creates a Fetcher. Zero config fields take the defaults.
func NewFetcher(client apollo.Client, cfg Config) *Fetcher {
	def := DefaultConfig()
	if cfg.PageSize <= 0 || cfg.PageSize > apollo.MaxPerPage {
		cfg.PageSize = def.PageSize
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = def.MaxPages
	}
	if cfg.RevealBatchSize <= 0 || cfg.RevealBatchSize > apollo.MaxBulkMatch {
		cfg.RevealBatchSize = def.RevealBatchSize
	}
	if cfg.RevealDelay < 0 {
		cfg.RevealDelay = 0
	}
	return &Fetcher{client: client, cfg: cfg}
}

// ToApolloFilters maps dashboard filters to Apollo selectors, dropping
// empty ones.
func ToApolloFilters(f model.SearchFilters) apollo.SearchFilters {
	return apollo.SearchFilters{
		PersonTitles:                   nonEmpty(f.PersonTitles),
		PersonSeniorities:              nonEmpty(f.PersonSeniorities),
		OrganizationLocations:          nonEmpty(f.Locations),
		OrganizationNumEmployeesRanges: nonEmpty(f.EmployeeRanges),
		OrganizationIndustryTagIDs:     nonEmpty(f.Industries),
		QKeywords:                      strings.TrimSpace(f.Keywords),
	}
}

func nonEmpty(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	return in
}

// FetchContacts returns up to dailyLimit contacts matching filters.
// TotalFetched counts everything Apollo returned before truncation.
func (f *Fetcher) FetchContacts(ctx context.Context, filters apollo.SearchFilters, dailyLimit int) Result {
	log := zap.L().With(zap.String("component", "source.apollo"))

	if !f.client.HasKey() {
		return Result{Contacts: []model.Contact{}, Err: apperr.Configuration(apollo.ErrMissingAPIKey.Error())}
	}

	var all []apollo.Person
	page := 1
	for len(all) < dailyLimit {
		perPage := min(f.cfg.PageSize, dailyLimit-len(all))

		log.Debug("source: fetching page", zap.Int("page", page), zap.Int("per_page", perPage))
		resp, err := f.client.SearchPeople(ctx, apollo.SearchRequest{
			SearchFilters: filters,
			Page:          page,
			PerPage:       perPage,
		})
		if err != nil {
			partial := toContacts(all)
			return Result{Contacts: partial, TotalFetched: len(partial), Err: searchError(err)}
		}

		people := resp.Results()
		if len(people) == 0 {
			break
		}
		all = append(all, people...)

		hasMore := len(people) >= perPage
		if resp.Pagination != nil && resp.Pagination.TotalPages > 0 {
			hasMore = page < resp.Pagination.TotalPages
		}
		if !hasMore || len(people) < perPage {
			break
		}

		page++
		if page > f.cfg.MaxPages {
			log.Info("source: reached page limit", zap.Int("max_pages", f.cfg.MaxPages))
			break
		}
	}

	total := len(all)
	if len(all) > dailyLimit {
		all = all[:dailyLimit]
	}

	contacts := toContacts(all)
	f.revealEmails(ctx, log, contacts)

	log.Info("source: fetch complete",
		zap.Int("total_fetched", total),
		zap.Int("returned", len(contacts)),
	)
	return Result{Contacts: contacts, TotalFetched: total}
}

// revealEmails fills in emails for contacts that lack one, in place.
// A failed batch is logged and skipped.
func (f *Fetcher) revealEmails(ctx context.Context, log *zap.Logger, contacts []model.Contact) {
	var ids []string
	for _, c := range contacts {
		if c.EmailValue() == "" {
			ids = append(ids, c.ID)
		}
	}
	if len(ids) == 0 {
		return
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if f.cfg.RevealDelay > 0 {
		limiter = rate.NewLimiter(rate.Every(f.cfg.RevealDelay), 1)
	}

	revealed := make(map[string]*apollo.Person, len(ids))
	for start := 0; start < len(ids); start += f.cfg.RevealBatchSize {
		end := min(start+f.cfg.RevealBatchSize, len(ids))
		batchNum := start/f.cfg.RevealBatchSize + 1

		if err := limiter.Wait(ctx); err != nil {
			log.Warn("source: reveal interrupted", zap.Error(err))
			break
		}

		resp, err := f.client.BulkMatch(ctx, ids[start:end])
		if err != nil {
			log.Warn("source: reveal batch failed", zap.Int("batch", batchNum), zap.Error(err))
			continue
		}
		for _, m := range resp.Matches {
			if m != nil && m.ID != "" && m.Email != nil && *m.Email != "" {
				revealed[m.ID] = m
			}
		}
	}

	for i := range contacts {
		m, ok := revealed[contacts[i].ID]
		if !ok {
			continue
		}
		contacts[i].Email = model.StringPtr(*m.Email)
		if m.EmailStatus != nil && *m.EmailStatus != "" {
			contacts[i].EmailStatus = model.StatusPtr(model.EmailStatus(*m.EmailStatus))
		}
	}
	log.Debug("source: reveal complete", zap.Int("requested", len(ids)), zap.Int("revealed", len(revealed)))
}

func searchError(err error) error {
	if errors.Is(err, apollo.ErrMissingAPIKey) {
		return apperr.Configuration(err.Error())
	}
	var apiErr *apollo.APIError
	if errors.As(err, &apiErr) {
		return apperr.Wrap(apperr.KindUpstream, apiErr.Error(), err)
	}
	return apperr.Wrap(apperr.KindUpstream, "Failed to fetch Apollo contacts: "+err.Error(), err)
}

func toContacts(people []apollo.Person) []model.Contact {
	out := make([]model.Contact, len(people))
	for i, p := range people {
		c := model.Contact{
			ID:          p.ID,
			FirstName:   p.FirstName,
			LastName:    p.LastName,
			Name:        p.Name,
			Email:       p.Email,
			Title:       p.Title,
			LinkedInURL: p.LinkedInURL,
			City:        p.City,
			State:       p.State,
			Country:     p.Country,
		}
		if p.EmailStatus != nil {
			c.EmailStatus = model.StatusPtr(model.EmailStatus(*p.EmailStatus))
		}
		if p.Organization != nil {
			c.Organization = &model.Organization{
				ID:                    p.Organization.ID,
				Name:                  p.Organization.Name,
				WebsiteURL:            p.Organization.WebsiteURL,
				Industry:              p.Organization.Industry,
				EstimatedNumEmployees: p.Organization.EstimatedNumEmployees,
			}
		}
		out[i] = c
	}
	return out
}
