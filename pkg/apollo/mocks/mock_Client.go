// Package mocks provides test doubles for the apollo client.
package mocks

import (
	"context"

	apollo "github.com/sells-group/outreach-cli/pkg/apollo"
	mock "github.com/stretchr/testify/mock"
)

// MockClient is a mock type for the Client interface.
type MockClient struct {
	mock.Mock
}

// SearchPeople provides a mock function with given fields: ctx, req
func (_m *MockClient) SearchPeople(ctx context.Context, req apollo.SearchRequest) (*apollo.SearchResponse, error) {
	ret := _m.Called(ctx, req)

	if len(ret) == 0 {
		panic("no return value specified for SearchPeople")
	}

	if rf, ok := ret.Get(0).(func(context.Context, apollo.SearchRequest) (*apollo.SearchResponse, error)); ok {
		return rf(ctx, req)
	}

	var r0 *apollo.SearchResponse
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*apollo.SearchResponse)
	}
	return r0, ret.Error(1)
}

// BulkMatch provides a mock function with given fields: ctx, ids
func (_m *MockClient) BulkMatch(ctx context.Context, ids []string) (*apollo.BulkMatchResponse, error) {
	ret := _m.Called(ctx, ids)

	if len(ret) == 0 {
		panic("no return value specified for BulkMatch")
	}

	if rf, ok := ret.Get(0).(func(context.Context, []string) (*apollo.BulkMatchResponse, error)); ok {
		return rf(ctx, ids)
	}

	var r0 *apollo.BulkMatchResponse
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*apollo.BulkMatchResponse)
	}
	return r0, ret.Error(1)
}

// HasKey provides a mock function with no fields
func (_m *MockClient) HasKey() bool {
	ret := _m.Called()

	if len(ret) == 0 {
		panic("no return value specified for HasKey")
	}

	return ret.Bool(0)
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
