// Package sender uploads validated contacts to an Instantly campaign.
package sender

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/pkg/instantly"
)

// LeadSource tags every lead uploaded by this tool.
const LeadSource = "apollo"

// Request is a bulk upload of contacts into one campaign.
type Request struct {
	Contacts   []model.ValidatedContact
	CampaignID string
	TestMode   bool
	TestEmail  string
}

// Result is the outcome of a bulk upload. SuccessfulContacts is always
// empty in test mode.
type Result struct {
	TotalProcessed     int                      `json:"totalProcessed"`
	Successful         int                      `json:"successful"`
	Failed             int                      `json:"failed"`
	SuccessfulContacts []model.ValidatedContact `json:"successfulContacts"`
	Errors             []instantly.LeadError    `json:"errors"`
}

// ErrorMessages formats Errors as "email: error".
func (r *Result) ErrorMessages() []string {
	out := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		out = append(out, e.Email+": "+e.Error)
	}
	return out
}

// Counts splits Successful into live and test sends.
func (r *Result) Counts(testMode bool) (sent, testSent int) {
	if testMode {
		return 0, r.Successful
	}
	return r.Successful, 0
}

// Sender wraps the Instantly bulk lead endpoint.
type Sender struct {
	client instantly.Client
}

// New creates a Sender.
func New(client instantly.Client) *Sender {
	return &Sender{client: client}
}

// BuildLead maps a contact to an Instantly lead. In test mode the lead is
// addressed to testEmail and the real address moves to original_email; it
// is never the outbound address.
func BuildLead(c model.ValidatedContact, testMode bool, testEmail string) instantly.Lead {
	email := c.Email
	if testMode {
		email = testEmail
	}

	vars := map[string]string{"source": LeadSource}
	if c.FirstName != "" {
		vars["first_name"] = c.FirstName
	}
	if c.Company != "" {
		vars["company"] = c.Company
	}
	if c.Title != "" {
		vars["title"] = c.Title
	}
	if testMode && c.Email != "" {
		vars["original_email"] = c.Email
	}

	return instantly.Lead{
		Email:           email,
		FirstName:       c.FirstName,
		LastName:        c.LastName,
		CompanyName:     c.Company,
		CustomVariables: vars,
	}
}

// SendBulk uploads all contacts in one request. Failures are reported in
// the Result, never as an error.
func (s *Sender) SendBulk(ctx context.Context, req Request) *Result {
	n := len(req.Contacts)
	if !s.client.HasKey() {
		return failAll(n, instantly.ErrMissingAPIKey.Error())
	}
	if n == 0 {
		return &Result{SuccessfulContacts: []model.ValidatedContact{}, Errors: []instantly.LeadError{}}
	}
	if req.TestMode && strings.TrimSpace(req.TestEmail) == "" {
		return failAll(n, model.MsgTestEmailRequired)
	}

	leads := make([]instantly.Lead, n)
	for i, c := range req.Contacts {
		leads[i] = BuildLead(c, req.TestMode, req.TestEmail)
	}

	log := zap.L().With(zap.String("component", "sender"), zap.String("campaign_id", req.CampaignID))
	resp, err := s.client.AddLeads(ctx, instantly.AddLeadsRequest{
		CampaignID:       req.CampaignID,
		SkipIfInCampaign: true,
		Leads:            leads,
	})
	if err != nil {
		log.Error("sender: upload failed", zap.Error(err))
		var apiErr *instantly.APIError
		if errors.As(err, &apiErr) || errors.Is(err, instantly.ErrMissingAPIKey) {
			return failAll(n, err.Error())
		}
		return failAll(n, "Failed to send to Instantly: "+err.Error())
	}

	if resp.Status == "error" {
		msg := resp.Message
		if msg == "" {
			msg = "Unknown Instantly error"
		}
		return failAll(n, msg)
	}

	successful := n
	if resp.Uploaded != nil {
		successful = max(0, min(*resp.Uploaded, n))
	}

	res := &Result{
		TotalProcessed:     n,
		Successful:         successful,
		Failed:             n - successful,
		SuccessfulContacts: []model.ValidatedContact{},
		Errors:             resp.Errors,
	}
	if res.Errors == nil {
		res.Errors = []instantly.LeadError{}
	}
	// Instantly reports only a count; the first N are assumed uploaded.
	if !req.TestMode {
		res.SuccessfulContacts = req.Contacts[:successful]
	}

	log.Info("sender: upload complete",
		zap.Int("total", n),
		zap.Int("successful", res.Successful),
		zap.Int("failed", res.Failed),
		zap.Bool("test_mode", req.TestMode),
	)
	return res
}

func failAll(n int, msg string) *Result {
	return &Result{
		TotalProcessed:     n,
		Failed:             n,
		SuccessfulContacts: []model.ValidatedContact{},
		Errors:             []instantly.LeadError{{Email: "all", Error: msg}},
	}
}
