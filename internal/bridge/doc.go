/*
Package bridge translates page-level calls into the goodbarber:// URL-scheme
protocol understood by the native host application.

# Dispatch paths

Every call builds a Request (path, query, body, method) and sends it one of
three ways:

  - GET: the page location is replaced with path?query.
  - Form: any method other than GET submits a hidden post form with one
    input per body parameter to path?query.
  - Desktop: with no native host present, request, getlocation and
    getpreference are answered locally (real HTTP through resty, a
    Geolocator, an empty preference) and the page Callbacks are invoked.
    getpreference still sends its navigation afterwards.

# Debug modes

	Production        dispatch immediately
	AlertBeforeSend   alert the destination, then dispatch
	AlertAndSuppress  alert the destination, do not dispatch

Debug gating applies to both the GET and the form path.

# Encoding

Callers pass raw values. Params.Encode percent-encodes every key and value
exactly once, with encodeURIComponent rules.

# Usage

	d, err := bridge.New(bridge.Config{DebugMode: bridge.Production}, nav)
	if err != nil {
		return err
	}
	d.WithCallbacks(page).WithLogger(logger)

	_ = d.GoToSection("42")       // goodbarber://gotosection?id=42
	_ = d.NavigatePush("pageA", bridge.NewParams("x", "1"))
*/
package bridge
