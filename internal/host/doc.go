// Package host simulates the native GoodBarber application on the other side
// of the URL scheme.
//
// A Simulator receives the goodbarber:// navigations and form submissions a
// page produces, decodes them back into actions and answers the ones a real
// host answers: preferences, location and resource requests. Its state comes
// from a YAML fixture file:
//
//	preferences:
//	  theme: dark
//	location:
//	  latitude: 48.85
//	  longitude: 2.35
//	responses:
//	  https://api.example.com/feed:
//	    status: 200
//	    body: '{"items": []}'
package host
