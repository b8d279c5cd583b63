package campaign

import (
	"fmt"
	"strings"

	"github.com/sells-group/outreach-cli/internal/validator"
	"github.com/sells-group/outreach-cli/pkg/instantly"
)

// FieldError is a single rejected field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is the full list of rejected fields.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

// Has reports whether field, or an element of it, was rejected.
func (v ValidationErrors) Has(field string) bool {
	for _, e := range v {
		if e.Field == field || strings.HasPrefix(e.Field, field+"[") || strings.HasPrefix(e.Field, field+".") {
			return true
		}
	}
	return false
}

// ValidateCreate checks a new campaign. An empty result means valid.
func ValidateCreate(req instantly.CampaignRequest) ValidationErrors {
	var errs ValidationErrors
	errs = append(errs, validateName(req.Name)...)
	errs = append(errs, validateSchedule(req.CampaignSchedule)...)
	errs = append(errs, validateSequences(req.Sequences)...)
	errs = append(errs, validateDailyLimit(req.DailyLimit)...)
	errs = append(errs, validateEmailList(req.EmailList)...)
	return errs
}

// ValidateUpdate checks only the fields present in a partial update.
func ValidateUpdate(req instantly.CampaignRequest) ValidationErrors {
	var errs ValidationErrors
	if req.Name != "" {
		errs = append(errs, validateName(req.Name)...)
	}
	if req.CampaignSchedule != nil {
		errs = append(errs, validateSchedule(req.CampaignSchedule)...)
	}
	if req.Sequences != nil {
		errs = append(errs, validateSequences(req.Sequences)...)
	}
	errs = append(errs, validateDailyLimit(req.DailyLimit)...)
	errs = append(errs, validateEmailList(req.EmailList)...)
	return errs
}

func validateName(name string) ValidationErrors {
	v := validator.Default()
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return ValidationErrors{{"name", "Campaign name is required"}}
	case v.Var(name, "min=3") != nil:
		return ValidationErrors{{"name", "Campaign name must be at least 3 characters"}}
	case v.Var(name, "max=100") != nil:
		return ValidationErrors{{"name", "Campaign name must be less than 100 characters"}}
	}
	return nil
}

func validateSchedule(s *instantly.CampaignSchedule) ValidationErrors {
	if s == nil || len(s.Schedules) == 0 {
		return ValidationErrors{{"campaign_schedule", "At least one schedule is required"}}
	}

	v := validator.Default()
	var errs ValidationErrors
	for i, slot := range s.Schedules {
		prefix := fmt.Sprintf("campaign_schedule.schedules[%d]", i)
		label := fmt.Sprintf("Schedule %d", i+1)

		from, to := slot.Timing.From, slot.Timing.To
		switch {
		case from == "" || to == "":
			errs = append(errs, FieldError{prefix + ".timing", label + ": Start and end times are required"})
		case v.Var(from, "hhmm") != nil || v.Var(to, "hhmm") != nil:
			errs = append(errs, FieldError{prefix + ".timing", label + ": Times must be in HH:mm format"})
		case minutes(from) >= minutes(to):
			errs = append(errs, FieldError{prefix + ".timing", label + ": End time must be after start time"})
		}

		anyDay := false
		for _, on := range slot.Days {
			anyDay = anyDay || on
		}
		if !anyDay {
			errs = append(errs, FieldError{prefix + ".days", label + ": At least one day must be selected"})
		}

		if v.Var(slot.Timezone, "notblank") != nil {
			errs = append(errs, FieldError{prefix + ".timezone", label + ": Timezone is required"})
		}
	}
	return errs
}

func validateSequences(steps []instantly.SequenceStep) ValidationErrors {
	if len(steps) == 0 {
		return ValidationErrors{{"sequences", "At least one email sequence is required"}}
	}

	v := validator.Default()
	var errs ValidationErrors
	for i, step := range steps {
		label := "Initial email"
		if i > 0 {
			label = fmt.Sprintf("Follow-up %d", i)
		}
		field := fmt.Sprintf("sequences[%d]", i)

		switch {
		case v.Var(step.Subject, "notblank") != nil:
			errs = append(errs, FieldError{field + ".subject", label + ": Subject line is required"})
		case v.Var(step.Subject, "max=200") != nil:
			errs = append(errs, FieldError{field + ".subject", label + ": Subject line must be less than 200 characters"})
		}

		if v.Var(step.Body, "notblank") != nil {
			errs = append(errs, FieldError{field + ".body", label + ": Email body is required"})
		}

		if i == 0 {
			continue
		}
		switch {
		case step.Delay == nil || *step.Delay < 1:
			errs = append(errs, FieldError{field + ".delay", label + ": Delay must be at least 1 day"})
		case *step.Delay > 30:
			errs = append(errs, FieldError{field + ".delay", label + ": Delay cannot exceed 30 days"})
		}
	}
	return errs
}

func validateDailyLimit(limit *int) ValidationErrors {
	if limit == nil {
		return nil
	}
	switch {
	case *limit < 1:
		return ValidationErrors{{"daily_limit", "Daily limit must be at least 1"}}
	case *limit > 500:
		return ValidationErrors{{"daily_limit", "Daily limit cannot exceed 500"}}
	}
	return nil
}

func validateEmailList(emails []string) ValidationErrors {
	v := validator.Default()
	var errs ValidationErrors
	for i, e := range emails {
		if v.Var(e, "simple_email") != nil {
			errs = append(errs, FieldError{fmt.Sprintf("email_list[%d]", i), "Invalid email address: " + e})
		}
	}
	return errs
}

// minutes converts a validated HH:mm string to minutes past midnight.
func minutes(hhmm string) int {
	var h, m int
	fmt.Sscanf(hhmm, "%d:%d", &h, &m) //nolint:errcheck
	return h*60 + m
}
