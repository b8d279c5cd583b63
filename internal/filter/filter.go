// Package filter turns raw Apollo contacts into deliverable leads.
package filter

import (
	"strings"

	"github.com/sells-group/outreach-cli/internal/model"
)

// genericPrefixes are role mailboxes that never reach a person.
var genericPrefixes = []string{
	"info@", "admin@", "support@", "sales@", "hello@", "contact@", "help@",
	"team@", "enquiries@", "inquiries@", "noreply@", "no-reply@",
	"webmaster@", "marketing@", "pr@", "press@", "media@", "careers@",
	"jobs@", "hr@", "recruitment@", "billing@", "accounts@", "finance@",
	"legal@", "privacy@", "abuse@", "postmaster@", "hostmaster@",
}

// Result is the outcome of FilterContacts.
type Result struct {
	ValidContacts  []model.ValidatedContact
	TotalProcessed int
	FilteredOut    model.FilterBreakdown
}

// NormalizeEmail lowercases and trims an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsGenericEmail reports whether email starts with a role-mailbox prefix.
func IsGenericEmail(email string) bool {
	e := NormalizeEmail(email)
	for _, p := range genericPrefixes {
		if strings.HasPrefix(e, p) {
			return true
		}
	}
	return false
}

// FilterContacts keeps contacts with a verified, non-generic email. Each
// rejected contact is counted under the first rule it fails, checked in
// the order no email, unverified, generic. A value without "@" counts as
// no email.
func FilterContacts(contacts []model.Contact) Result {
	res := Result{
		ValidContacts:  make([]model.ValidatedContact, 0, len(contacts)),
		TotalProcessed: len(contacts),
	}

	for _, c := range contacts {
		email := NormalizeEmail(c.EmailValue())
		switch {
		case !strings.Contains(email, "@"):
			res.FilteredOut.NoEmail++
		case c.StatusValue() != model.EmailStatusVerified:
			res.FilteredOut.Unverified++
		case IsGenericEmail(email):
			res.FilteredOut.Generic++
		default:
			res.ValidContacts = append(res.ValidContacts, model.ValidatedContact{
				ApolloID:    c.ID,
				Email:       email,
				FirstName:   c.FirstName,
				LastName:    c.LastName,
				Title:       c.Title,
				Company:     c.CompanyName(),
				LinkedInURL: c.LinkedInURL,
			})
		}
	}

	return res
}

// RemoveDuplicateEmails keeps the first contact per normalized email,
// preserving order.
func RemoveDuplicateEmails(contacts []model.ValidatedContact) []model.ValidatedContact {
	seen := make(map[string]struct{}, len(contacts))
	out := make([]model.ValidatedContact, 0, len(contacts))
	for _, c := range contacts {
		key := NormalizeEmail(c.Email)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}

// ToContact converts a validated contact back to a verified raw contact.
func ToContact(v model.ValidatedContact) model.Contact {
	c := model.Contact{
		ID:          v.ApolloID,
		FirstName:   v.FirstName,
		LastName:    v.LastName,
		Name:        v.FullName(),
		Email:       model.StringPtr(v.Email),
		EmailStatus: model.StatusPtr(model.EmailStatusVerified),
		Title:       v.Title,
		LinkedInURL: v.LinkedInURL,
	}
	if v.Company != "" {
		c.Organization = &model.Organization{Name: v.Company}
	}
	return c
}
