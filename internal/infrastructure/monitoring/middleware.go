package monitoring

import (
	"net/http"
	"time"
)

// Transport wraps next so that every round trip is recorded in m
func Transport(m *Metrics, next http.RoundTripper) http.RoundTripper {
	return roundTripper{m: m, next: next}
}

type roundTripper struct {
	m    *Metrics
	next http.RoundTripper
}

func (rt roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	timer := NewTimer(rt.m, req.Method, req.URL.Host)
	resp, err := rt.next.RoundTrip(req)
	if err != nil {
		timer.Fail()
		return resp, err
	}
	timer.Stop(resp.StatusCode, resp.ContentLength)
	return resp, nil
}

// Timer measures one round trip
type Timer struct {
	start   time.Time
	metrics *Metrics
	method  string
	host    string
}

// NewTimer starts a timer
func NewTimer(metrics *Metrics, method, host string) *Timer {
	return &Timer{
		start:   time.Now(),
		metrics: metrics,
		method:  method,
		host:    host,
	}
}

// Stop records a completed round trip. size is -1 when unknown.
func (t *Timer) Stop(status int, size int64) {
	t.metrics.RecordFetch(t.method, t.host, status, time.Since(t.start), size)
}

// Fail records a round trip that produced no response
func (t *Timer) Fail() {
	t.metrics.RecordFetchError(t.method, t.host, time.Since(t.start))
}
