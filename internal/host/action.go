package host

import (
	"errors"
	"fmt"
	"strings"

	"github.com/GriffinCanCode/gbbridge/internal/bridge"
)

var (
	ErrUnknownScheme = errors.New("host: not a goodbarber:// url")
	ErrUnknownAction = errors.New("host: unknown action")
)

// Action is a decoded scheme dispatch
type Action struct {
	Name  string         `json:"name"`
	Query *bridge.Params `json:"query"`
	Body  *bridge.Params `json:"body"` // form fields for POST dispatches
}

// Param returns a query parameter, falling back to the body
func (a Action) Param(key string) string {
	if v, ok := a.Query.Get(key); ok {
		return v
	}
	v, _ := a.Body.Get(key)
	return v
}

// ParseAction decodes a goodbarber:// URL and its optional form.
func ParseAction(rawURL string, form *bridge.Form) (Action, error) {
	rest, ok := strings.CutPrefix(rawURL, bridge.Scheme+"://")
	if !ok {
		return Action{}, fmt.Errorf("%w: %q", ErrUnknownScheme, rawURL)
	}

	name, rawQuery, _ := strings.Cut(rest, "?")
	if name == "" {
		return Action{}, fmt.Errorf("%w: empty action in %q", ErrUnknownAction, rawURL)
	}
	query, err := bridge.ParseParams(rawQuery)
	if err != nil {
		return Action{}, fmt.Errorf("decode query of %q: %w", rawURL, err)
	}

	body := bridge.NewParams()
	if form != nil {
		body = form.Values()
	}
	return Action{Name: name, Query: query, Body: body}, nil
}
