package source

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/outreach-cli/internal/apperr"
	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/pkg/apollo"
	"github.com/sells-group/outreach-cli/pkg/apollo/mocks"
)

func strp(s string) *string { return &s }

func people(prefix string, n int, withEmail bool) []apollo.Person {
	out := make([]apollo.Person, n)
	for i := range out {
		out[i] = apollo.Person{ID: fmt.Sprintf("%s%d", prefix, i), FirstName: "P"}
		if withEmail {
			out[i].Email = strp(fmt.Sprintf("%s%d@acme.io", prefix, i))
			out[i].EmailStatus = strp("verified")
		}
	}
	return out
}

func testConfig() Config {
	return Config{PageSize: 100, MaxPages: 500, RevealBatchSize: 10}
}

func pageMatcher(page, perPage int) any {
	return mock.MatchedBy(func(r apollo.SearchRequest) bool {
		return r.Page == page && r.PerPage == perPage
	})
}

func TestFetchContacts_MissingKey(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("HasKey").Return(false)

	res := NewFetcher(client, testConfig()).FetchContacts(context.Background(), apollo.SearchFilters{}, 10)
	require.Error(t, res.Err)
	assert.Equal(t, "Apollo API key not configured", res.Err.Error())
	assert.True(t, apperr.Is(res.Err, apperr.KindConfiguration))
	assert.Empty(t, res.Contacts)
	assert.Zero(t, res.TotalFetched)
}

func TestFetchContacts_PagesUntilLimit(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("HasKey").Return(true)
	client.On("SearchPeople", mock.Anything, pageMatcher(1, 100)).
		Return(&apollo.SearchResponse{People: people("a", 100, true), Pagination: &apollo.Pagination{TotalPages: 5}}, nil).Once()
	client.On("SearchPeople", mock.Anything, pageMatcher(2, 50)).
		Return(&apollo.SearchResponse{People: people("b", 50, true), Pagination: &apollo.Pagination{TotalPages: 5}}, nil).Once()

	res := NewFetcher(client, testConfig()).FetchContacts(context.Background(), apollo.SearchFilters{PersonTitles: []string{"CEO"}}, 150)
	require.NoError(t, res.Err)
	assert.Len(t, res.Contacts, 150)
	assert.Equal(t, 150, res.TotalFetched)
	assert.Equal(t, "b49", res.Contacts[149].ID)
}

func TestFetchContacts_StopsOnLastPage(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("HasKey").Return(true)
	client.On("SearchPeople", mock.Anything, pageMatcher(1, 20)).
		Return(&apollo.SearchResponse{People: people("a", 20, true), Pagination: &apollo.Pagination{TotalPages: 1}}, nil).Once()

	cfg := testConfig()
	cfg.PageSize = 20
	res := NewFetcher(client, cfg).FetchContacts(context.Background(), apollo.SearchFilters{}, 100)
	require.NoError(t, res.Err)
	assert.Len(t, res.Contacts, 20)
}

func TestFetchContacts_ShortPageWithoutPagination(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("HasKey").Return(true)
	client.On("SearchPeople", mock.Anything, pageMatcher(1, 100)).
		Return(&apollo.SearchResponse{Contacts: people("c", 7, true)}, nil).Once()

	res := NewFetcher(client, testConfig()).FetchContacts(context.Background(), apollo.SearchFilters{}, 500)
	require.NoError(t, res.Err)
	assert.Len(t, res.Contacts, 7)
	assert.Equal(t, 7, res.TotalFetched)
}

func TestFetchContacts_EmptyFirstPage(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("HasKey").Return(true)
	client.On("SearchPeople", mock.Anything, mock.Anything).Return(&apollo.SearchResponse{}, nil).Once()

	res := NewFetcher(client, testConfig()).FetchContacts(context.Background(), apollo.SearchFilters{}, 10)
	require.NoError(t, res.Err)
	assert.Empty(t, res.Contacts)
}

func TestFetchContacts_MaxPages(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("HasKey").Return(true)
	client.On("SearchPeople", mock.Anything, mock.Anything).
		Return(&apollo.SearchResponse{People: people("m", 1, true)}, nil).Times(3)

	cfg := testConfig()
	cfg.PageSize = 1
	cfg.MaxPages = 3
	res := NewFetcher(client, cfg).FetchContacts(context.Background(), apollo.SearchFilters{}, 100)
	require.NoError(t, res.Err)
	assert.Len(t, res.Contacts, 3)
}

func TestFetchContacts_PartialOnUpstreamError(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("HasKey").Return(true)
	client.On("SearchPeople", mock.Anything, pageMatcher(1, 100)).
		Return(&apollo.SearchResponse{People: people("a", 100, false)}, nil).Once()
	client.On("SearchPeople", mock.Anything, pageMatcher(2, 100)).
		Return(nil, &apollo.APIError{StatusCode: 500, Body: "boom"}).Once()

	res := NewFetcher(client, testConfig()).FetchContacts(context.Background(), apollo.SearchFilters{}, 300)
	require.Error(t, res.Err)
	assert.Equal(t, "Apollo API error (500): boom", res.Err.Error())
	assert.True(t, apperr.Is(res.Err, apperr.KindUpstream))
	assert.Len(t, res.Contacts, 100)
	assert.Equal(t, 100, res.TotalFetched)
	client.AssertNotCalled(t, "BulkMatch", mock.Anything, mock.Anything)
}

func TestFetchContacts_TransportError(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("HasKey").Return(true)
	client.On("SearchPeople", mock.Anything, mock.Anything).Return(nil, errors.New("dial tcp: refused")).Once()

	res := NewFetcher(client, testConfig()).FetchContacts(context.Background(), apollo.SearchFilters{}, 10)
	require.Error(t, res.Err)
	assert.Equal(t, "Failed to fetch Apollo contacts: dial tcp: refused", res.Err.Error())
}

func TestFetchContacts_RevealsMissingEmails(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("HasKey").Return(true)

	page := append(people("r", 12, false), people("k", 2, true)...)
	page[0].Organization = &apollo.Organization{Name: "Acme"}
	client.On("SearchPeople", mock.Anything, mock.Anything).Return(&apollo.SearchResponse{People: page}, nil).Once()

	client.On("BulkMatch", mock.Anything, mock.MatchedBy(func(ids []string) bool { return len(ids) == 10 })).
		Return(&apollo.BulkMatchResponse{Matches: []*apollo.Person{
			{ID: "r0", Email: strp("r0@acme.io"), EmailStatus: strp("verified")},
			{ID: "r1", Email: strp("r1@acme.io")},
			nil,
		}}, nil).Once()
	client.On("BulkMatch", mock.Anything, []string{"r10", "r11"}).
		Return(nil, &apollo.APIError{StatusCode: 429}).Once()

	res := NewFetcher(client, testConfig()).FetchContacts(context.Background(), apollo.SearchFilters{}, 100)
	require.NoError(t, res.Err)
	require.Len(t, res.Contacts, 14)

	assert.Equal(t, "r0@acme.io", res.Contacts[0].EmailValue())
	assert.Equal(t, model.EmailStatusVerified, res.Contacts[0].StatusValue())
	assert.Equal(t, "Acme", res.Contacts[0].CompanyName())
	assert.Equal(t, "r1@acme.io", res.Contacts[1].EmailValue())
	assert.Nil(t, res.Contacts[1].EmailStatus)
	assert.Nil(t, res.Contacts[2].Email)
	assert.Nil(t, res.Contacts[10].Email)
	assert.Equal(t, "k0@acme.io", res.Contacts[12].EmailValue())
}

func TestToApolloFilters(t *testing.T) {
	f := ToApolloFilters(model.SearchFilters{
		PersonTitles:   []string{"CTO"},
		EmployeeRanges: []string{"11,50"},
		Locations:      []string{},
		Keywords:       "  devtools ",
		DailyLimit:     50,
	})
	assert.Equal(t, []string{"CTO"}, f.PersonTitles)
	assert.Equal(t, []string{"11,50"}, f.OrganizationNumEmployeesRanges)
	assert.Nil(t, f.OrganizationLocations)
	assert.Nil(t, f.PersonSeniorities)
	assert.Equal(t, "devtools", f.QKeywords)
}

func TestNewFetcher_Defaults(t *testing.T) {
	f := NewFetcher(nil, Config{PageSize: 500, RevealBatchSize: 50, RevealDelay: -1})
	assert.Equal(t, DefaultConfig().PageSize, f.cfg.PageSize)
	assert.Equal(t, 500, f.cfg.MaxPages)
	assert.Equal(t, 10, f.cfg.RevealBatchSize)
	assert.Zero(t, f.cfg.RevealDelay)
}
