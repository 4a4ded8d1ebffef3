package browser

import (
	"context"
	"net/http"
	"time"

	"github.com/GriffinCanCode/gatorbrowse/internal/plugin"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Session owns the transport state of one browser: the resty client, the
// plugin handler chain and default headers. Cookies live in whichever
// handler a plugin contributes for them.
type Session struct {
	client *resty.Client
	base   http.RoundTripper
	log    *zap.Logger
}

func newSession(base http.RoundTripper, timeout time.Duration, maxRedirects int, log *zap.Logger) *Session {
	if base == nil {
		base = http.DefaultTransport
	}

	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(0).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(maxRedirects)).
		SetLogger(log.Sugar()).
		SetTransport(base)
	// resty installs its own jar by default
	client.SetCookieJar(nil)

	return &Session{
		client: client,
		base:   base,
		log:    log,
	}
}

// apply rebuilds the transport chain. The first installed handler is the
// outermost, so it sees every request first and every response last.
func (s *Session) apply(handlers []plugin.Handler, headers []plugin.Header) {
	rt := s.base
	for i := len(handlers) - 1; i >= 0; i-- {
		rt = handlers[i](rt)
	}
	s.client.SetTransport(rt)

	s.client.Header = http.Header{}
	for _, h := range headers {
		s.client.Header.Add(h.Key, h.Value)
	}
}

// Fetch performs req and builds a Page. Transport failures are returned
// exactly as the client reported them.
func (s *Session) Fetch(ctx context.Context, req *Request) (*Page, error) {
	r := s.client.R().SetContext(ctx)
	if req.Method != http.MethodGet && req.Method != http.MethodHead && len(req.Form) > 0 {
		r.SetFormDataFromValues(req.Form)
	}

	resp, err := r.Execute(req.Method, req.URL)
	if err != nil {
		return nil, err
	}

	final := req.URL
	if raw := resp.RawResponse; raw != nil && raw.Request != nil && raw.Request.URL != nil {
		final = raw.Request.URL.String()
	}

	return NewPage(*req, final, resp.StatusCode(), resp.Header(), resp.Body())
}
