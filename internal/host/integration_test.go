package host_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/gbbridge/internal/host"
	"github.com/GriffinCanCode/gbbridge/internal/sandbox"
)

var _ sandbox.Host = (*host.Simulator)(nil)

func TestPageAgainstSimulator(t *testing.T) {
	sim := host.NewSimulator(host.Fixtures{
		Preferences: map[string]string{"theme": "dark"},
		Responses: map[string]host.Response{
			"https://api.example.com/feed": {Status: 200, Body: "[1,2]"},
		},
	})

	config := sandbox.DefaultConfig()
	config.Host = sim
	rt, err := sandbox.New(config)
	require.NoError(t, err)
	defer rt.Close()

	result, err := rt.Execute(context.Background(), `
		function gbDidSuccessGetPreference(key, value) { console.log("pref", key, value); }
		function gbRequestDidSuccess(tag, body) { console.log("req", tag, body); }
		function gbDidFailGetLocation(reason) { console.log("loc", reason); }
		gbSetPreference("lang", "fr");
		gbGetPreference("theme");
		gbRequest("https://api.example.com/feed", "feed", true);
		gbGetLocation();
	`, nil)
	require.NoError(t, err)

	var messages []string
	for _, entry := range result.Console {
		messages = append(messages, entry.Message)
	}
	assert.ElementsMatch(t, []string{
		"pref theme dark",
		"req feed [1,2]",
		"loc Position unavailable",
	}, messages)

	v, ok := sim.Preference("lang")
	assert.True(t, ok)
	assert.Equal(t, "fr", v)
	assert.Len(t, sim.Handled(), 4)
}
