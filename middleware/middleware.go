// Package middleware adapts a statline client to net/http request handling. The adapter is
// deliberately thin: it starts a timer per inbound request and records the elapsed time once
// the response is written, with no logic of its own. The client is injected by the caller
// rather than constructed lazily, so the HTTP layer carries no metrics state.
package middleware

import (
	"net/http"

	"statline"
)

// Timing wraps next so that every request's service time is recorded as a histogram
// observation under the specified metric name. Returns statline.ErrNameRequired when the name
// resolves to nothing emittable, since an unnamed request timer could never record and
// indicates a configuration mistake.
func Timing(client *statline.Client, name string, next http.Handler) (http.Handler, error) {
	// The request timer emits into a histogram; constructing one up front validates the
	// name under the client's own formatting rules.
	if _, err := client.Histogram(name); err != nil {
		return nil, err
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		timer := client.Timer(name)
		defer timer.Stop()

		next.ServeHTTP(w, r)
	}), nil
}
