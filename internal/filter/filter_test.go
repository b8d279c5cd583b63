package filter

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/outreach-cli/internal/model"
)

func contact(id, email string, status model.EmailStatus) model.Contact {
	c := model.Contact{ID: id, FirstName: "F" + id, LastName: "L" + id, Title: "VP"}
	if email != "" {
		c.Email = model.StringPtr(email)
	}
	if status != "" {
		c.EmailStatus = model.StatusPtr(status)
	}
	return c
}

func TestIsGenericEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		email string
		want  bool
	}{
		{"info@acme.com", true},
		{"  SALES@acme.com ", true},
		{"no-reply@acme.com", true},
		{"hostmaster@acme.com", true},
		{"pr@acme.com", true},
		{"press@acme.com", true},
		{"jane@acme.com", false},
		{"information@acme.com", false},
		{"hr.jane@acme.com", false},
		{"ada.admin@acme.com", false},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsGenericEmail(tt.email))
		})
	}
	assert.Len(t, genericPrefixes, 29)
}

func TestFilterContacts_Precedence(t *testing.T) {
	t.Parallel()

	in := []model.Contact{
		contact("1", "", ""),
		contact("2", "   ", model.EmailStatusVerified),
		contact("3", "info@acme.com", ""),
		contact("4", "jane@acme.com", model.EmailStatus("guessed")),
		contact("5", "support@acme.com", model.EmailStatusVerified),
		contact("6", "  Ada@Acme.COM ", model.EmailStatusVerified),
		contact("7", " John ", model.EmailStatusVerified),
	}
	in[5].Organization = &model.Organization{Name: "Acme"}
	in[5].LinkedInURL = "https://linkedin.com/in/ada"

	res := FilterContacts(in)
	assert.Equal(t, 7, res.TotalProcessed)
	assert.Equal(t, model.FilterBreakdown{NoEmail: 3, Unverified: 2, Generic: 1}, res.FilteredOut)
	require.Len(t, res.ValidContacts, 1)
	assert.Equal(t, model.ValidatedContact{
		ApolloID:    "6",
		Email:       "ada@acme.com",
		FirstName:   "F6",
		LastName:    "L6",
		Title:       "VP",
		Company:     "Acme",
		LinkedInURL: "https://linkedin.com/in/ada",
	}, res.ValidContacts[0])
}

// Mirrors a typical Apollo page: 32 good, 10 without email, 5 unverified,
// 3 role mailboxes.
func TestFilterContacts_MixedBatch(t *testing.T) {
	t.Parallel()

	var in []model.Contact
	for i := 0; i < 32; i++ {
		in = append(in, contact(fmt.Sprint("ok", i), fmt.Sprintf("person%d@acme.com", i), model.EmailStatusVerified))
	}
	for i := 0; i < 10; i++ {
		in = append(in, contact(fmt.Sprint("ne", i), "", ""))
	}
	for i := 0; i < 5; i++ {
		in = append(in, contact(fmt.Sprint("uv", i), fmt.Sprintf("u%d@acme.com", i), model.EmailStatusUnverified))
	}
	for _, g := range []string{"info@a.com", "sales@b.com", "hr@c.com"} {
		in = append(in, contact(g, g, model.EmailStatusVerified))
	}

	res := FilterContacts(in)
	assert.Equal(t, 50, res.TotalProcessed)
	assert.Len(t, res.ValidContacts, 32)
	assert.Equal(t, model.FilterBreakdown{NoEmail: 10, Unverified: 5, Generic: 3}, res.FilteredOut)
	assert.Equal(t, res.TotalProcessed, len(res.ValidContacts)+res.FilteredOut.Total())
}

func TestFilterContacts_Idempotent(t *testing.T) {
	t.Parallel()

	in := []model.Contact{
		contact("1", "A@x.io", model.EmailStatusVerified),
		contact("2", "b@x.io", model.EmailStatusVerified),
		contact("3", "info@x.io", model.EmailStatusVerified),
	}
	first := FilterContacts(in).ValidContacts

	round := make([]model.Contact, len(first))
	for i, v := range first {
		round[i] = ToContact(v)
	}
	second := FilterContacts(round)

	assert.Equal(t, first, second.ValidContacts)
	assert.Zero(t, second.FilteredOut.Total())
}

func TestFilterContacts_Empty(t *testing.T) {
	t.Parallel()

	res := FilterContacts(nil)
	assert.Zero(t, res.TotalProcessed)
	assert.NotNil(t, res.ValidContacts)
	assert.Empty(t, res.ValidContacts)
}

func TestRemoveDuplicateEmails(t *testing.T) {
	t.Parallel()

	in := []model.ValidatedContact{
		{ApolloID: "1", Email: "a@x.io"},
		{ApolloID: "2", Email: "b@x.io"},
		{ApolloID: "3", Email: "A@X.io "},
		{ApolloID: "4", Email: "c@x.io"},
		{ApolloID: "5", Email: "b@x.io"},
	}
	out := RemoveDuplicateEmails(in)

	ids := make([]string, len(out))
	for i, c := range out {
		ids[i] = c.ApolloID
	}
	assert.Equal(t, []string{"1", "2", "4"}, ids)
	assert.Empty(t, RemoveDuplicateEmails(nil))
}

func TestToContact(t *testing.T) {
	t.Parallel()

	c := ToContact(model.ValidatedContact{ApolloID: "9", Email: "z@z.io", FirstName: "Zed"})
	assert.Equal(t, "z@z.io", c.EmailValue())
	assert.Equal(t, model.EmailStatusVerified, c.StatusValue())
	assert.Nil(t, c.Organization)
	assert.Equal(t, "Zed", c.Name)
}
