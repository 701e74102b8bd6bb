package bridge_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/gbbridge/internal/bridge"
	"github.com/GriffinCanCode/gbbridge/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/gbbridge/internal/testutil"
)

func newDispatcher(t *testing.T, cfg bridge.Config, nav bridge.Navigator) *bridge.Dispatcher {
	t.Helper()
	d, err := bridge.New(cfg, nav)
	require.NoError(t, err)
	return d
}

func TestNewRequiresNavigator(t *testing.T) {
	_, err := bridge.New(bridge.Config{}, nil)
	assert.ErrorIs(t, err, bridge.ErrNoNavigator)
}

func TestNavigateDebugModes(t *testing.T) {
	const want = "goodbarber://gotosection?id=42"

	t.Run("production navigates without alert", func(t *testing.T) {
		nav := new(testutil.MockNavigator)
		nav.On("Replace", want).Return(nil).Once()

		d := newDispatcher(t, bridge.Config{DebugMode: bridge.Production}, nav)
		require.NoError(t, d.GoToSection("42"))

		nav.AssertExpectations(t)
		nav.AssertNotCalled(t, "Alert", mock.Anything)
	})

	t.Run("alert before send", func(t *testing.T) {
		nav := new(testutil.MockNavigator)
		var order []string
		nav.On("Alert", want).Run(func(mock.Arguments) { order = append(order, "alert") }).Return().Once()
		nav.On("Replace", want).Run(func(mock.Arguments) { order = append(order, "replace") }).Return(nil).Once()

		d := newDispatcher(t, bridge.Config{DebugMode: bridge.AlertBeforeSend}, nav)
		require.NoError(t, d.GoToSection("42"))

		nav.AssertExpectations(t)
		assert.Equal(t, []string{"alert", "replace"}, order)
	})

	t.Run("alert and suppress", func(t *testing.T) {
		nav := new(testutil.MockNavigator)
		nav.On("Alert", want).Return().Once()

		d := newDispatcher(t, bridge.Config{DebugMode: bridge.AlertAndSuppress}, nav)
		require.NoError(t, d.GoToSection("42"))

		nav.AssertExpectations(t)
		nav.AssertNotCalled(t, "Replace", mock.Anything)
	})
}

func TestSubmitDebugModes(t *testing.T) {
	t.Run("suppress alerts action and body without submitting", func(t *testing.T) {
		nav := new(testutil.MockNavigator)
		nav.On("Alert", "goodbarber://navigate.push?page=pageA\nx=1").Return().Once()

		d := newDispatcher(t, bridge.Config{DebugMode: bridge.AlertAndSuppress}, nav)
		require.NoError(t, d.NavigatePush("pageA", bridge.NewParams("x", "1")))

		nav.AssertExpectations(t)
		nav.AssertNotCalled(t, "Submit", mock.Anything)
	})

	t.Run("production submits without alert", func(t *testing.T) {
		nav := new(testutil.MockNavigator)
		nav.On("Submit", mock.AnythingOfType("*bridge.Form")).Return(nil).Once()

		d := newDispatcher(t, bridge.Config{}, nav)
		require.NoError(t, d.NavigateModal("pageB", nil))

		nav.AssertExpectations(t)
		nav.AssertNotCalled(t, "Alert", mock.Anything)
	})

	t.Run("any non-GET method goes through the form", func(t *testing.T) {
		var got *bridge.Form
		nav := new(testutil.MockNavigator)
		nav.On("Alert", "goodbarber://request?tag=t\nid=7").Return().Once()
		nav.On("Submit", mock.Anything).Run(func(args mock.Arguments) {
			got = args.Get(0).(*bridge.Form)
		}).Return(nil).Once()

		d := newDispatcher(t, bridge.Config{DebugMode: bridge.AlertBeforeSend}, nav)
		require.NoError(t, d.Dispatch(bridge.Request{
			Path:   "goodbarber://request",
			Query:  bridge.NewParams("tag", "t"),
			Body:   bridge.NewParams("id", "7"),
			Method: "PATCH",
		}))

		nav.AssertExpectations(t)
		require.NotNil(t, got)
		assert.Equal(t, "post", got.Method)
	})
}

func TestDispatchErrors(t *testing.T) {
	nav := new(testutil.MockNavigator)
	nav.On("Replace", "tel:1").Return(errors.New("page unloaded")).Once()

	d := newDispatcher(t, bridge.Config{}, nav)

	err := d.Navigate("", nil)
	assert.ErrorIs(t, err, bridge.ErrEmptyPath)

	err = d.Tel("1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dispatch tel")
	assert.Contains(t, err.Error(), "page unloaded")
}

func TestDispatchRecordsMetrics(t *testing.T) {
	metrics := monitoring.NewMetrics()
	nav := testutil.NewMockNavigator(t)

	d := newDispatcher(t, bridge.Config{}, nav).WithMetrics(metrics)
	require.NoError(t, d.Tel("1"))
	require.NoError(t, d.NavigateBack())

	snap := metrics.Snapshot()
	assert.Equal(t, int64(2), snap.TotalDispatches)
	assert.Equal(t, int64(0), snap.Suppressed)

	suppressing := newDispatcher(t, bridge.Config{DebugMode: bridge.AlertAndSuppress}, nav).WithMetrics(metrics)
	require.NoError(t, suppressing.Tel("1"))
	assert.Equal(t, int64(1), metrics.Snapshot().Suppressed)
}
