package model

import (
	"strings"

	"github.com/sells-group/outreach-cli/internal/apperr"
	"github.com/sells-group/outreach-cli/internal/validator"
)

// MaxDailyLimit caps how many contacts a single fetch may return.
const MaxDailyLimit = 1000

// SearchFilters are the user-facing Apollo search criteria.
type SearchFilters struct {
	PersonTitles      []string `json:"personTitles,omitempty" yaml:"person_titles"`
	PersonSeniorities []string `json:"personSeniorities,omitempty" yaml:"person_seniorities"`
	Locations         []string `json:"locations,omitempty" yaml:"locations"`
	EmployeeRanges    []string `json:"employeeRanges,omitempty" yaml:"employee_ranges"`
	Industries        []string `json:"industries,omitempty" yaml:"industries"`
	Keywords          string   `json:"keywords,omitempty" yaml:"keywords"`
	DailyLimit        int      `json:"dailyLimit" yaml:"daily_limit" validate:"gt=0,lte=1000"`
}

// HasCriteria reports whether at least one search selector is set.
func (f SearchFilters) HasCriteria() bool {
	return len(f.PersonTitles) > 0 ||
		len(f.PersonSeniorities) > 0 ||
		len(f.Locations) > 0 ||
		len(f.EmployeeRanges) > 0 ||
		len(f.Industries) > 0 ||
		strings.TrimSpace(f.Keywords) != ""
}

// Validate checks the filters before any network call.
func (f SearchFilters) Validate() error {
	if !f.HasCriteria() {
		return apperr.Validation("Please select at least one search filter")
	}
	if err := validator.Default().Struct(f); err != nil {
		for _, fe := range validator.FieldErrors(err) {
			if fe.Field() == "DailyLimit" && fe.Tag() == "gt" {
				return apperr.Validation("Daily limit must be greater than 0")
			}
			if fe.Field() == "DailyLimit" && fe.Tag() == "lte" {
				return apperr.Validation("Daily limit cannot exceed 1000")
			}
		}
		return apperr.Wrap(apperr.KindValidation, "invalid search filters", err)
	}
	return nil
}

// CampaignSettings select the target campaign and test routing.
type CampaignSettings struct {
	CampaignID string `json:"campaignId" yaml:"campaign_id" validate:"notblank"`
	TestMode   bool   `json:"testMode" yaml:"test_mode"`
	TestEmail  string `json:"testEmail,omitempty" yaml:"test_email"`
}

// MsgTestEmailRequired rejects test mode without a test inbox.
const MsgTestEmailRequired = "Test email is required in test mode"

// Validate checks the settings before the send stage touches the network.
func (s CampaignSettings) Validate() error {
	v := validator.Default()
	if err := v.Struct(s); err != nil {
		return apperr.Validation("Instantly Campaign ID is required")
	}
	if s.TestMode {
		if strings.TrimSpace(s.TestEmail) == "" {
			return apperr.Validation(MsgTestEmailRequired)
		}
		if err := v.Var(s.TestEmail, "simple_email"); err != nil {
			return apperr.Validation("Invalid test email")
		}
	}
	return nil
}
