package tracing

import (
	"net/http"
)

// Transport records one span per round trip under the span in the request
// context. Trace context is never sent to the remote site.
func Transport(tracer *Tracer, next http.RoundTripper) http.RoundTripper {
	return roundTripper{tracer: tracer, next: next}
}

type roundTripper struct {
	tracer *Tracer
	next   http.RoundTripper
}

func (rt roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	span, _ := rt.tracer.StartSpan(req.Context(), "http "+req.Method)
	span.SetTag("url", req.URL.String())
	defer rt.tracer.Submit(span)

	resp, err := rt.next.RoundTrip(req)
	if err != nil {
		span.SetError(err)
		return resp, err
	}
	span.SetStatus(resp.StatusCode)
	return resp, nil
}
