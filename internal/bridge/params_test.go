package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParamsEncode(t *testing.T) {
	tests := []struct {
		name   string
		params *Params
		want   string
	}{
		{name: "nil", params: nil, want: ""},
		{name: "empty", params: NewParams(), want: ""},
		{name: "single entry", params: NewParams("id", "42"), want: "id=42"},
		{name: "insertion order", params: NewParams("a", "1", "b", "2"), want: "a=1&b=2"},
		{name: "reverse order kept", params: NewParams("b", "2", "a", "1"), want: "b=2&a=1"},
		{name: "empty value", params: NewParams("q", ""), want: "q="},
		{name: "space as %20", params: NewParams("subject", "Hi there"), want: "subject=Hi%20there"},
		{name: "reserved characters", params: NewParams("url", "http://x.io/a?b=c&d=e"), want: "url=http%3A%2F%2Fx.io%2Fa%3Fb%3Dc%26d%3De"},
		{name: "literal plus", params: NewParams("text", "1+1"), want: "text=1%2B1"},
		{name: "keys encoded", params: NewParams("a b", "c"), want: "a%20b=c"},
		{name: "unicode", params: NewParams("text", "é"), want: "text=%C3%A9"},
		{name: "unreserved marks literal", params: NewParams("text", "it's (really) *fine*!"), want: "text=it's%20(really)%20*fine*!"},
		{name: "tilde literal", params: NewParams("path", "~user"), want: "path=~user"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.params.Encode())
		})
	}
}

func TestParamsSetKeepsFirstPosition(t *testing.T) {
	p := NewParams("a", "1", "b", "2")
	p.Set("a", "3")

	assert.Equal(t, []string{"a", "b"}, p.Keys())
	assert.Equal(t, "a=3&b=2", p.Encode())
}

func TestParamsSetOptional(t *testing.T) {
	value := "v"
	p := NewParams().SetOptional("present", &value).SetOptional("absent", nil)

	assert.Equal(t, 1, p.Len())
	_, ok := p.Get("absent")
	assert.False(t, ok)
	assert.Equal(t, "present=v", p.Encode())
}

func TestNewParamsIgnoresDanglingKey(t *testing.T) {
	p := NewParams("a", "1", "b")
	assert.Equal(t, "a=1", p.Encode())
}

func TestParamsClone(t *testing.T) {
	p := NewParams("a", "1")
	c := p.Clone()
	c.Set("b", "2")

	assert.Equal(t, 1, p.Len())
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, c.Map())
}

func TestParseParamsRoundTrip(t *testing.T) {
	p := NewParams("url", "http://api.io/a b?x=1&y=2", "tag", "t", "flag", "")

	parsed, err := ParseParams(p.Encode())
	require.NoError(t, err)
	assert.Equal(t, p.Keys(), parsed.Keys())
	assert.Equal(t, p.Map(), parsed.Map())
}

func TestParseParamsEdgeCases(t *testing.T) {
	parsed, err := ParseParams("")
	require.NoError(t, err)
	assert.Equal(t, 0, parsed.Len())

	parsed, err = ParseParams("a&&b=2")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, parsed.Keys())
	v, _ := parsed.Get("a")
	assert.Equal(t, "", v)

	_, err = ParseParams("a=%zz")
	assert.Error(t, err)
}

func TestParamsMarshalJSONKeepsOrder(t *testing.T) {
	data, err := NewParams("z", "1", "a", "\"q\"").MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"z":"1","a":"\"q\""}`, string(data))

	var empty *Params
	data, err = empty.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(data))
}
