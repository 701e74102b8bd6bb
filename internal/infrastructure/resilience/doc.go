/*
Package resilience guards upstream calls with circuit breakers.

A Breaker opens after a run of consecutive failures and rejects calls with
ErrOpen until its cooldown elapses. The next call is a probe: success
closes the breaker, failure reopens it.

	guard := resilience.NewSet(resilience.DefaultSettings())
	err := guard.Get("api.example.com").Do(func() error {
		return call()
	}, nil)

The host simulator keys breakers by upstream host so one dead backend
does not stall every passthrough request in a page.
*/
package resilience
