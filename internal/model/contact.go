package model

import "strings"

// EmailStatus is Apollo's verification state for a contact email.
type EmailStatus string

const (
	EmailStatusUnverified EmailStatus = "unverified"
	EmailStatusVerifying  EmailStatus = "verifying"
	EmailStatusVerified   EmailStatus = "verified"
	EmailStatusInvalid    EmailStatus = "invalid"
)

// Organization is the employer attached to an Apollo person record.
type Organization struct {
	ID                    string `json:"id,omitempty" yaml:"id,omitempty"`
	Name                  string `json:"name,omitempty" yaml:"name,omitempty"`
	WebsiteURL            string `json:"website_url,omitempty" yaml:"website_url,omitempty"`
	Industry              string `json:"industry,omitempty" yaml:"industry,omitempty"`
	EstimatedNumEmployees int    `json:"estimated_num_employees,omitempty" yaml:"estimated_num_employees,omitempty"`
}

// Contact is a raw person record as returned by Apollo. Email and
// EmailStatus are nil when Apollo has not revealed them.
type Contact struct {
	ID           string        `json:"id" yaml:"id"`
	FirstName    string        `json:"first_name" yaml:"first_name"`
	LastName     string        `json:"last_name" yaml:"last_name"`
	Name         string        `json:"name" yaml:"name"`
	Email        *string       `json:"email" yaml:"email"`
	EmailStatus  *EmailStatus  `json:"email_status" yaml:"email_status"`
	Title        string        `json:"title" yaml:"title"`
	Organization *Organization `json:"organization,omitempty" yaml:"organization,omitempty"`
	LinkedInURL  string        `json:"linkedin_url,omitempty" yaml:"linkedin_url,omitempty"`
	City         string        `json:"city,omitempty" yaml:"city,omitempty"`
	State        string        `json:"state,omitempty" yaml:"state,omitempty"`
	Country      string        `json:"country,omitempty" yaml:"country,omitempty"`
}

// EmailValue returns the email or "" when absent.
func (c Contact) EmailValue() string {
	if c.Email == nil {
		return ""
	}
	return *c.Email
}

// StatusValue returns the email status or "" when absent.
func (c Contact) StatusValue() EmailStatus {
	if c.EmailStatus == nil {
		return ""
	}
	return *c.EmailStatus
}

// CompanyName returns the organization name or "" when absent.
func (c Contact) CompanyName() string {
	if c.Organization == nil {
		return ""
	}
	return c.Organization.Name
}

// ValidatedContact is a contact that passed the filter stage. Email is
// lowercased and trimmed.
type ValidatedContact struct {
	ApolloID    string `json:"apollo_id" yaml:"apollo_id"`
	Email       string `json:"email" yaml:"email"`
	FirstName   string `json:"first_name" yaml:"first_name"`
	LastName    string `json:"last_name" yaml:"last_name"`
	Title       string `json:"title" yaml:"title"`
	Company     string `json:"company,omitempty" yaml:"company,omitempty"`
	LinkedInURL string `json:"linkedin_url,omitempty" yaml:"linkedin_url,omitempty"`
}

// FullName joins first and last name.
func (v ValidatedContact) FullName() string {
	return strings.TrimSpace(v.FirstName + " " + v.LastName)
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string { return &s }

// StatusPtr returns a pointer to s.
func StatusPtr(s EmailStatus) *EmailStatus { return &s }

// Flatten converts a raw contact to the export shape without filtering.
func (c Contact) Flatten() ValidatedContact {
	return ValidatedContact{
		ApolloID:    c.ID,
		Email:       c.EmailValue(),
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		Title:       c.Title,
		Company:     c.CompanyName(),
		LinkedInURL: c.LinkedInURL,
	}
}
