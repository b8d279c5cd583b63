// Package mocks provides test doubles for the instantly client.
package mocks

import (
	"context"

	instantly "github.com/sells-group/outreach-cli/pkg/instantly"
	mock "github.com/stretchr/testify/mock"
)

// MockClient is a mock type for the Client interface.
type MockClient struct {
	mock.Mock
}

// HasKey provides a mock function with no fields
func (_m *MockClient) HasKey() bool {
	ret := _m.Called()

	if len(ret) == 0 {
		panic("no return value specified for HasKey")
	}

	return ret.Bool(0)
}

// SearchLeads provides a mock function with given fields: ctx, email, campaignID
func (_m *MockClient) SearchLeads(ctx context.Context, email string, campaignID string) (*instantly.LeadList, error) {
	ret := _m.Called(ctx, email, campaignID)

	if len(ret) == 0 {
		panic("no return value specified for SearchLeads")
	}

	if rf, ok := ret.Get(0).(func(context.Context, string, string) (*instantly.LeadList, error)); ok {
		return rf(ctx, email, campaignID)
	}

	var r0 *instantly.LeadList
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*instantly.LeadList)
	}
	return r0, ret.Error(1)
}

// AddLeads provides a mock function with given fields: ctx, req
func (_m *MockClient) AddLeads(ctx context.Context, req instantly.AddLeadsRequest) (*instantly.AddLeadsResponse, error) {
	ret := _m.Called(ctx, req)

	if len(ret) == 0 {
		panic("no return value specified for AddLeads")
	}

	if rf, ok := ret.Get(0).(func(context.Context, instantly.AddLeadsRequest) (*instantly.AddLeadsResponse, error)); ok {
		return rf(ctx, req)
	}

	var r0 *instantly.AddLeadsResponse
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*instantly.AddLeadsResponse)
	}
	return r0, ret.Error(1)
}

// ListLeads provides a mock function with given fields: ctx, req
func (_m *MockClient) ListLeads(ctx context.Context, req instantly.ListLeadsRequest) (*instantly.LeadList, error) {
	ret := _m.Called(ctx, req)

	if len(ret) == 0 {
		panic("no return value specified for ListLeads")
	}

	if rf, ok := ret.Get(0).(func(context.Context, instantly.ListLeadsRequest) (*instantly.LeadList, error)); ok {
		return rf(ctx, req)
	}

	var r0 *instantly.LeadList
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*instantly.LeadList)
	}
	return r0, ret.Error(1)
}

// ListCampaigns provides a mock function with given fields: ctx
func (_m *MockClient) ListCampaigns(ctx context.Context) ([]instantly.Campaign, error) {
	ret := _m.Called(ctx)

	if len(ret) == 0 {
		panic("no return value specified for ListCampaigns")
	}

	if rf, ok := ret.Get(0).(func(context.Context) ([]instantly.Campaign, error)); ok {
		return rf(ctx)
	}

	var r0 []instantly.Campaign
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]instantly.Campaign)
	}
	return r0, ret.Error(1)
}

// GetCampaign provides a mock function with given fields: ctx, id
func (_m *MockClient) GetCampaign(ctx context.Context, id string) (*instantly.Campaign, error) {
	ret := _m.Called(ctx, id)

	if len(ret) == 0 {
		panic("no return value specified for GetCampaign")
	}

	if rf, ok := ret.Get(0).(func(context.Context, string) (*instantly.Campaign, error)); ok {
		return rf(ctx, id)
	}

	var r0 *instantly.Campaign
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*instantly.Campaign)
	}
	return r0, ret.Error(1)
}

// CreateCampaign provides a mock function with given fields: ctx, req
func (_m *MockClient) CreateCampaign(ctx context.Context, req instantly.CampaignRequest) (*instantly.Campaign, error) {
	ret := _m.Called(ctx, req)

	if len(ret) == 0 {
		panic("no return value specified for CreateCampaign")
	}

	if rf, ok := ret.Get(0).(func(context.Context, instantly.CampaignRequest) (*instantly.Campaign, error)); ok {
		return rf(ctx, req)
	}

	var r0 *instantly.Campaign
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*instantly.Campaign)
	}
	return r0, ret.Error(1)
}

// UpdateCampaign provides a mock function with given fields: ctx, id, req
func (_m *MockClient) UpdateCampaign(ctx context.Context, id string, req instantly.CampaignRequest) (*instantly.Campaign, error) {
	ret := _m.Called(ctx, id, req)

	if len(ret) == 0 {
		panic("no return value specified for UpdateCampaign")
	}

	if rf, ok := ret.Get(0).(func(context.Context, string, instantly.CampaignRequest) (*instantly.Campaign, error)); ok {
		return rf(ctx, id, req)
	}

	var r0 *instantly.Campaign
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*instantly.Campaign)
	}
	return r0, ret.Error(1)
}

// DeleteCampaign provides a mock function with given fields: ctx, id
func (_m *MockClient) DeleteCampaign(ctx context.Context, id string) error {
	ret := _m.Called(ctx, id)

	if len(ret) == 0 {
		panic("no return value specified for DeleteCampaign")
	}

	if rf, ok := ret.Get(0).(func(context.Context, string) error); ok {
		return rf(ctx, id)
	}
	return ret.Error(0)
}

// PauseCampaign provides a mock function with given fields: ctx, id
func (_m *MockClient) PauseCampaign(ctx context.Context, id string) (*instantly.Campaign, error) {
	ret := _m.Called(ctx, id)

	if len(ret) == 0 {
		panic("no return value specified for PauseCampaign")
	}

	if rf, ok := ret.Get(0).(func(context.Context, string) (*instantly.Campaign, error)); ok {
		return rf(ctx, id)
	}

	var r0 *instantly.Campaign
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*instantly.Campaign)
	}
	return r0, ret.Error(1)
}

// ActivateCampaign provides a mock function with given fields: ctx, id
func (_m *MockClient) ActivateCampaign(ctx context.Context, id string) (*instantly.Campaign, error) {
	ret := _m.Called(ctx, id)

	if len(ret) == 0 {
		panic("no return value specified for ActivateCampaign")
	}

	if rf, ok := ret.Get(0).(func(context.Context, string) (*instantly.Campaign, error)); ok {
		return rf(ctx, id)
	}

	var r0 *instantly.Campaign
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*instantly.Campaign)
	}
	return r0, ret.Error(1)
}

// CampaignAnalytics provides a mock function with given fields: ctx, id
func (_m *MockClient) CampaignAnalytics(ctx context.Context, id string) (*instantly.CampaignAnalytics, error) {
	ret := _m.Called(ctx, id)

	if len(ret) == 0 {
		panic("no return value specified for CampaignAnalytics")
	}

	if rf, ok := ret.Get(0).(func(context.Context, string) (*instantly.CampaignAnalytics, error)); ok {
		return rf(ctx, id)
	}

	var r0 *instantly.CampaignAnalytics
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*instantly.CampaignAnalytics)
	}
	return r0, ret.Error(1)
}

// CampaignDailyAnalytics provides a mock function with given fields: ctx, id, startDate, endDate
func (_m *MockClient) CampaignDailyAnalytics(ctx context.Context, id string, startDate string, endDate string) ([]instantly.DailyCampaignAnalytics, error) {
	ret := _m.Called(ctx, id, startDate, endDate)

	if len(ret) == 0 {
		panic("no return value specified for CampaignDailyAnalytics")
	}

	if rf, ok := ret.Get(0).(func(context.Context, string, string, string) ([]instantly.DailyCampaignAnalytics, error)); ok {
		return rf(ctx, id, startDate, endDate)
	}

	var r0 []instantly.DailyCampaignAnalytics
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]instantly.DailyCampaignAnalytics)
	}
	return r0, ret.Error(1)
}

// CampaignAnalyticsOverview provides a mock function with given fields: ctx
func (_m *MockClient) CampaignAnalyticsOverview(ctx context.Context) ([]instantly.CampaignAnalytics, error) {
	ret := _m.Called(ctx)

	if len(ret) == 0 {
		panic("no return value specified for CampaignAnalyticsOverview")
	}

	if rf, ok := ret.Get(0).(func(context.Context) ([]instantly.CampaignAnalytics, error)); ok {
		return rf(ctx)
	}

	var r0 []instantly.CampaignAnalytics
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]instantly.CampaignAnalytics)
	}
	return r0, ret.Error(1)
}

// ListAccounts provides a mock function with given fields: ctx
func (_m *MockClient) ListAccounts(ctx context.Context) ([]instantly.Account, error) {
	ret := _m.Called(ctx)

	if len(ret) == 0 {
		panic("no return value specified for ListAccounts")
	}

	if rf, ok := ret.Get(0).(func(context.Context) ([]instantly.Account, error)); ok {
		return rf(ctx)
	}

	var r0 []instantly.Account
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]instantly.Account)
	}
	return r0, ret.Error(1)
}

// WarmupAnalytics provides a mock function with given fields: ctx, emails
func (_m *MockClient) WarmupAnalytics(ctx context.Context, emails []string) ([]instantly.WarmupAccount, error) {
	ret := _m.Called(ctx, emails)

	if len(ret) == 0 {
		panic("no return value specified for WarmupAnalytics")
	}

	if rf, ok := ret.Get(0).(func(context.Context, []string) ([]instantly.WarmupAccount, error)); ok {
		return rf(ctx, emails)
	}

	var r0 []instantly.WarmupAccount
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]instantly.WarmupAccount)
	}
	return r0, ret.Error(1)
}

// AccountDailyAnalytics provides a mock function with given fields: ctx, emails, startDate, endDate
func (_m *MockClient) AccountDailyAnalytics(ctx context.Context, emails []string, startDate string, endDate string) ([]instantly.AccountDaily, error) {
	ret := _m.Called(ctx, emails, startDate, endDate)

	if len(ret) == 0 {
		panic("no return value specified for AccountDailyAnalytics")
	}

	if rf, ok := ret.Get(0).(func(context.Context, []string, string, string) ([]instantly.AccountDaily, error)); ok {
		return rf(ctx, emails, startDate, endDate)
	}

	var r0 []instantly.AccountDaily
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]instantly.AccountDaily)
	}
	return r0, ret.Error(1)
}

// NewMockClient creates a new instance of MockClient.
func NewMockClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockClient {
	mock := &MockClient{}
	mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
