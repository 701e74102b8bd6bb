package bridge

import (
	"fmt"
	"strings"
)

// Method is the HTTP method a Request is dispatched with.
type Method string

const (
	MethodGet  Method = "GET"
	MethodPost Method = "POST"
)

// ParseMethod keeps a caller-supplied method name as given. Only an empty
// name defaults to GET.
func ParseMethod(s string) Method {
	if s == "" {
		return MethodGet
	}
	return Method(s)
}

// IsGet reports whether m is dispatched as a plain navigation. The
// comparison is exact: "get" goes through a form like any other method.
func (m Method) IsGet() bool {
	return m == "" || m == MethodGet
}

// Request describes one outgoing bridge call. It is built per call and
// discarded after dispatch.
type Request struct {
	Path   string
	Query  *Params
	Body   *Params
	Method Method
}

// URL returns Path with the encoded query appended. No '?' is added when the
// query is empty.
func (r Request) URL() string {
	q := r.Query.Encode()
	if q == "" {
		return r.Path
	}
	sep := "?"
	if strings.Contains(r.Path, "?") {
		sep = "&"
	}
	return r.Path + sep + q
}

// Action returns the scheme-relative action name, e.g. "navigate.push" for
// goodbarber://navigate.push or "tel" for tel:12345.
func (r Request) Action() string {
	if rest, ok := strings.CutPrefix(r.Path, Scheme+"://"); ok {
		if i := strings.IndexAny(rest, "?/"); i >= 0 {
			rest = rest[:i]
		}
		return rest
	}
	if i := strings.Index(r.Path, ":"); i > 0 {
		return r.Path[:i]
	}
	return r.Path
}

func (r Request) String() string {
	method := r.Method
	if method == "" {
		method = MethodGet
	}
	if r.Body.Len() == 0 {
		return fmt.Sprintf("%s %s", method, r.URL())
	}
	return fmt.Sprintf("%s %s\n%s", method, r.URL(), r.Body.Encode())
}

// Scheme is the custom URL scheme the native host intercepts.
const Scheme = "goodbarber"

// SchemeURL builds goodbarber://<action>.
func SchemeURL(action string) string {
	return Scheme + "://" + action
}
