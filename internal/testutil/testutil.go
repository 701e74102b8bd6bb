// Package testutil provides testing utilities and helpers for bridge tests.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/GriffinCanCode/gbbridge/internal/bridge"
)

// MockNavigator is a mock implementation of bridge.Navigator for testing.
type MockNavigator struct {
	mock.Mock
}

// Replace mocks the Replace method.
func (m *MockNavigator) Replace(url string) error {
	args := m.Called(url)
	return args.Error(0)
}

// Alert mocks the Alert method.
func (m *MockNavigator) Alert(message string) {
	m.Called(message)
}

// Submit mocks the Submit method.
func (m *MockNavigator) Submit(form *bridge.Form) error {
	args := m.Called(form)
	return args.Error(0)
}

// MockCallbacks is a mock implementation of bridge.Callbacks for testing.
type MockCallbacks struct {
	mock.Mock
}

// RequestDidSuccess mocks the RequestDidSuccess method.
func (m *MockCallbacks) RequestDidSuccess(tag, body, extra string) {
	m.Called(tag, body, extra)
}

// RequestDidFail mocks the RequestDidFail method.
func (m *MockCallbacks) RequestDidFail(tag string, status int, message string) {
	m.Called(tag, status, message)
}

// DidSuccessGetLocation mocks the DidSuccessGetLocation method.
func (m *MockCallbacks) DidSuccessGetLocation(latitude, longitude float64) {
	m.Called(latitude, longitude)
}

// DidFailGetLocation mocks the DidFailGetLocation method.
func (m *MockCallbacks) DidFailGetLocation(reason bridge.GeolocationReason) {
	m.Called(reason)
}

// DidSuccessGetPreference mocks the DidSuccessGetPreference method.
func (m *MockCallbacks) DidSuccessGetPreference(key, value string) {
	m.Called(key, value)
}

// NewMockNavigator creates a navigator mock that accepts every call.
func NewMockNavigator(t *testing.T) *MockNavigator {
	t.Helper()
	m := new(MockNavigator)

	m.On("Replace", mock.Anything).Return(nil).Maybe()
	m.On("Alert", mock.Anything).Return().Maybe()
	m.On("Submit", mock.Anything).Return(nil).Maybe()

	return m
}

// SyncExecutor runs asynchronous work inline, so completions have happened
// by the time the dispatching call returns.
type SyncExecutor struct{}

// Async runs work and its completion on the calling goroutine.
func (SyncExecutor) Async(work func() func()) {
	if done := work(); done != nil {
		done()
	}
}
