package bridge

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/bytedance/sonic"
)

// Params is an ordered string mapping used for query strings and form bodies.
// Keys keep their first insertion position; setting an existing key replaces
// its value in place.
type Params struct {
	keys   []string
	values map[string]string
}

// NewParams builds Params from alternating key/value pairs. A trailing key
// without a value is ignored.
func NewParams(kv ...string) *Params {
	p := &Params{}
	for i := 0; i+1 < len(kv); i += 2 {
		p.Set(kv[i], kv[i+1])
	}
	return p
}

// Set stores value under key.
func (p *Params) Set(key, value string) *Params {
	if p.values == nil {
		p.values = make(map[string]string)
	}
	if _, exists := p.values[key]; !exists {
		p.keys = append(p.keys, key)
	}
	p.values[key] = value
	return p
}

// SetOptional stores *value under key, or omits the key when value is nil.
func (p *Params) SetOptional(key string, value *string) *Params {
	if value == nil {
		return p
	}
	return p.Set(key, *value)
}

// Get returns the value stored under key.
func (p *Params) Get(key string) (string, bool) {
	if p == nil || p.values == nil {
		return "", false
	}
	v, ok := p.values[key]
	return v, ok
}

// Len returns the number of keys.
func (p *Params) Len() int {
	if p == nil {
		return 0
	}
	return len(p.keys)
}

// Keys returns the keys in insertion order.
func (p *Params) Keys() []string {
	if p == nil {
		return nil
	}
	return append([]string(nil), p.keys...)
}

// Each calls fn for every pair in insertion order.
func (p *Params) Each(fn func(key, value string)) {
	if p == nil {
		return
	}
	for _, k := range p.keys {
		fn(k, p.values[k])
	}
}

// Map returns an unordered copy of the pairs.
func (p *Params) Map() map[string]string {
	out := make(map[string]string, p.Len())
	p.Each(func(k, v string) { out[k] = v })
	return out
}

// Clone returns an independent copy.
func (p *Params) Clone() *Params {
	c := &Params{}
	p.Each(func(k, v string) { c.Set(k, v) })
	return c
}

// Encode serializes the pairs as k1=v1&k2=v2 in insertion order. Every key and
// value is percent-encoded here and nowhere else, so callers pass raw values.
// An empty Params encodes to the empty string.
func (p *Params) Encode() string {
	if p.Len() == 0 {
		return ""
	}
	var b strings.Builder
	for i, k := range p.keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(EscapeComponent(k))
		b.WriteByte('=')
		b.WriteString(EscapeComponent(p.values[k]))
	}
	return b.String()
}

// componentUnescaper restores the characters a URI component leaves
// literal but url.QueryEscape encodes.
var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// EscapeComponent percent-encodes s for use as a single URI component.
// Spaces become %20, never '+', and the marks ! ' ( ) * stay literal, so
// the result is valid in mailto: and custom scheme URLs as well as http
// query strings.
func EscapeComponent(s string) string {
	return componentUnescaper.Replace(url.QueryEscape(s))
}

// ParseParams is the inverse of Encode: it decodes k1=v1&k2=v2 keeping the
// pair order. A key without '=' maps to the empty string.
func ParseParams(raw string) (*Params, error) {
	p := &Params{}
	if raw == "" {
		return p, nil
	}
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(k)
		if err != nil {
			return nil, err
		}
		value, err := url.QueryUnescape(v)
		if err != nil {
			return nil, err
		}
		p.Set(key, value)
	}
	return p, nil
}

// MarshalJSON encodes the pairs as a JSON object in insertion order.
func (p *Params) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	var err error
	p.Each(func(k, v string) {
		if err != nil {
			return
		}
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		var kb, vb []byte
		if kb, err = sonic.Marshal(k); err != nil {
			return
		}
		if vb, err = sonic.Marshal(v); err != nil {
			return
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	})
	if err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
