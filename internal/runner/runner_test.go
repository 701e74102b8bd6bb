package runner

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/gbbridge/internal/bridge"
	"github.com/GriffinCanCode/gbbridge/internal/host"
	"github.com/GriffinCanCode/gbbridge/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/gbbridge/internal/sandbox"
	"github.com/GriffinCanCode/gbbridge/internal/shared/id"
)

func newRunner(t *testing.T, opts Options) *Runner {
	t.Helper()
	pool, err := sandbox.NewPool(sandbox.DefaultConfig(), 2)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })
	return New(pool, opts)
}

func TestRunValidatesInput(t *testing.T) {
	r := newRunner(t, Options{})

	_, err := r.Run(context.Background(), Input{})
	assert.ErrorIs(t, err, ErrNoInput)

	_, err = r.Run(context.Background(), Input{HTML: "<p></p>", Script: "1"})
	assert.ErrorIs(t, err, ErrAmbiguousInput)
}

func TestRunScript(t *testing.T) {
	r := newRunner(t, Options{})

	rec, err := r.Run(context.Background(), Input{Name: "call", Script: `gbTel("12345"); 7`})
	require.NoError(t, err)

	assert.True(t, id.IsValid(rec.ID.String()))
	assert.Equal(t, "call", rec.Name)
	require.Len(t, rec.Dispatches, 1)
	assert.True(t, id.IsValid(rec.Dispatches[0].ID.String()))
	assert.Equal(t, "tel:12345", rec.Dispatches[0].URL)
	assert.Equal(t, "tel:12345", rec.Location)
	assert.EqualValues(t, 7, rec.Value)
	assert.False(t, rec.Failed())
}

func TestRunHTMLWithModeOverride(t *testing.T) {
	r := newRunner(t, Options{})
	mode := bridge.AlertAndSuppress

	rec, err := r.Run(context.Background(), Input{
		HTML: `<html><head><title>T</title></head><body>
			<script>alert("<b>hi</b>"); gbGoToSection("1");</script>
		</body></html>`,
		DebugMode: &mode,
	})
	require.NoError(t, err)

	assert.Equal(t, "T", rec.Title)
	assert.Equal(t, bridge.AlertAndSuppress, rec.Mode.DebugMode)
	assert.Equal(t, []string{"<b>hi</b>", "goodbarber://gotosection?id=1"}, rec.Alerts)
	assert.Empty(t, rec.Location)
	for _, d := range rec.Dispatches {
		assert.Equal(t, sandbox.KindAlert, d.Kind)
	}
}

func TestRunAlertIsTheDispatchURL(t *testing.T) {
	r := newRunner(t, Options{})
	mode := bridge.AlertAndSuppress

	rec, err := r.Run(context.Background(), Input{
		Script:    `gbShare("a b", "http://x.io"); console.log("<i>a</i> & b");`,
		DebugMode: &mode,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"goodbarber://share?text=a%20b&link=http%3A%2F%2Fx.io"}, rec.Alerts)
	require.Len(t, rec.Console, 1)
	assert.Equal(t, "a & b", rec.Console[0].Message)
}

func TestRunWithSimulatedHost(t *testing.T) {
	r := newRunner(t, Options{
		Simulate: true,
		Fixtures: host.Fixtures{Preferences: map[string]string{"theme": "light"}},
	})

	script := `
		function gbDidSuccessGetPreference(key, value) { console.log(key + " is " + value); }
		gbGetPreference("theme");
	`

	rec, err := r.Run(context.Background(), Input{Script: script})
	require.NoError(t, err)
	require.Len(t, rec.Console, 1)
	assert.Equal(t, "theme is light", rec.Console[0].Message)
	assert.Len(t, rec.Handled, 1)

	rec, err = r.Run(context.Background(), Input{
		Script:   script,
		Fixtures: &host.Fixtures{Preferences: map[string]string{"theme": "dark"}},
	})
	require.NoError(t, err)
	require.Len(t, rec.Console, 1)
	assert.Equal(t, "theme is dark", rec.Console[0].Message)
}

func TestRunScriptErrorIsRecorded(t *testing.T) {
	r := newRunner(t, Options{})

	var published []*Record
	r.Subscribe(func(rec *Record) { published = append(published, rec) })

	rec, err := r.Run(context.Background(), Input{Script: `throw new Error("bad page")`})
	require.NoError(t, err)
	assert.True(t, rec.Failed())
	assert.Contains(t, rec.Error, "bad page")

	require.Len(t, published, 1)
	assert.Equal(t, rec.ID, published[0].ID)
}

func TestRunDesktopMode(t *testing.T) {
	r := newRunner(t, Options{Simulate: true})
	desktop := true

	rec, err := r.Run(context.Background(), Input{
		Script: `
			function gbDidSuccessGetLocation(lat, lon) { console.log(lat, lon); }
			gbGetLocation();
		`,
		DesktopMode: &desktop,
		Fixtures:    &host.Fixtures{Location: &bridge.Position{Latitude: 1, Longitude: 2}},
	})
	require.NoError(t, err)

	assert.Empty(t, rec.Dispatches)
	require.Len(t, rec.Console, 1)
	assert.Equal(t, "1 2", rec.Console[0].Message)
}

func TestRunPassthroughBreaker(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer server.Close()

	r := newRunner(t, Options{
		Simulate:  true,
		Fixtures:  host.Fixtures{Passthrough: true},
		Transport: bridge.NewDesktopTransport(bridge.DefaultTransportConfig()),
		Guard:     resilience.NewSet(resilience.Settings{Failures: 1, Cooldown: time.Hour}),
	})

	script := `
		function gbRequestDidFail(tag, status) { console.log(tag, status); }
		gbRequest("` + server.URL + `", "feed", false, "GET");
	`
	rec, err := r.Run(context.Background(), Input{Script: script})
	require.NoError(t, err)
	require.Len(t, rec.Console, 1)
	assert.Equal(t, "feed 502", rec.Console[0].Message)

	rec, err = r.Run(context.Background(), Input{Script: script})
	require.NoError(t, err)
	require.Len(t, rec.Console, 1)
	assert.Equal(t, "feed 503", rec.Console[0].Message)

	u, err := url.Parse(server.URL)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{u.Host: "open"}, r.Upstreams())
}

func TestNewDefaultsGuard(t *testing.T) {
	r := newRunner(t, Options{})
	assert.NotNil(t, r.opts.Guard)
	assert.Empty(t, r.Upstreams())
}
