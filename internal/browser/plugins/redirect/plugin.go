package redirect

import (
	"context"
	"net/http"

	"github.com/GriffinCanCode/gatorbrowse/internal/browser"
	"github.com/GriffinCanCode/gatorbrowse/internal/plugin"
	"go.uber.org/zap"
)

// DefaultMaxHops bounds document redirects per navigation
const DefaultMaxHops = 10

// Handler inspects a loaded page for a redirect signal. It returns nil, nil
// when the page is not a redirect; otherwise it usually returns the result
// of Follower.Follow.
type Handler interface {
	HandleRedirect(ctx context.Context, f *Follower, page *browser.Page) (*browser.Page, error)
}

// HandlerFunc adapts a function to a Handler
type HandlerFunc func(ctx context.Context, f *Follower, page *browser.Page) (*browser.Page, error)

// HandleRedirect calls fn
func (fn HandlerFunc) HandleRedirect(ctx context.Context, f *Follower, page *browser.Page) (*browser.Page, error) {
	return fn(ctx, f, page)
}

// Plugin overrides load_page so that pages matching its matchers are
// handed to a Handler before they reach the caller.
type Plugin struct {
	name      string
	handler   Handler
	urlMatch  Matcher
	pageMatch Matcher
	maxHops   int
}

// Option configures a Plugin
type Option func(*Plugin)

// WithURLMatch only considers pages whose request or final URL matches m
func WithURLMatch(m Matcher) Option {
	return func(p *Plugin) { p.urlMatch = m }
}

// WithPageMatch only considers pages whose decoded text matches m
func WithPageMatch(m Matcher) Option {
	return func(p *Plugin) { p.pageMatch = m }
}

// WithMaxHops sets how many document redirects one navigation may follow
func WithMaxHops(n int) Option {
	return func(p *Plugin) {
		if n >= 0 {
			p.maxHops = n
		}
	}
}

// New creates a redirect plugin named name around h
func New(name string, h Handler, opts ...Option) *Plugin {
	p := &Plugin{
		name:    name,
		handler: h,
		maxHops: DefaultMaxHops,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the plugin name
func (p *Plugin) Name() string { return p.name }

// Contribute overrides load_page and records HTTP hops into the chain
func (p *Plugin) Contribute(b *browser.Browser) (*plugin.Descriptor, error) {
	return p.Describe(b).Build(), nil
}

// Describe returns the redirect contributions unbuilt, so plugins built
// around a redirect handler can add their own members.
func (p *Plugin) Describe(b *browser.Browser) *plugin.Builder {
	log := b.Logger().Named("redirect").With(zap.String("plugin", p.name))

	d := plugin.Describe().Handler(recordHTTPHops)
	plugin.Override(d, browser.SlotLoadPage, func(next browser.LoadFunc) browser.LoadFunc {
		return func(ctx context.Context, req *browser.Request) (*browser.Page, error) {
			chain := ChainFrom(ctx)
			if chain == nil {
				chain = &Chain{}
				ctx = WithChain(ctx, chain)
			}

			page, err := next(ctx, req)
			if err != nil {
				return nil, err
			}
			if !matches(p.urlMatch, req.URL) && !matches(p.urlMatch, page.URL()) {
				return page, nil
			}
			if !matches(p.pageMatch, page.Text()) {
				return page, nil
			}

			f := &Follower{browser: b, chain: chain, source: page, maxHops: p.maxHops, log: log}
			resolved, err := p.handler.HandleRedirect(ctx, f, page)
			if err != nil {
				return nil, err
			}
			if resolved == nil {
				return page, nil
			}
			return resolved, nil
		}
	})
	return d
}

type recordedKey struct{}

// recordHTTPHops notes every 3xx response in the navigation's chain. Only
// the outermost copy records when several redirect plugins are installed.
func recordHTTPHops(next http.RoundTripper) http.RoundTripper {
	return plugin.RoundTripFunc(func(req *http.Request) (*http.Response, error) {
		ctx := req.Context()
		chain := ChainFrom(ctx)
		if chain == nil || ctx.Value(recordedKey{}) != nil {
			return next.RoundTrip(req)
		}

		resp, err := next.RoundTrip(req.WithContext(context.WithValue(ctx, recordedKey{}, true)))
		if err != nil {
			return resp, err
		}
		if loc := resp.Header.Get("Location"); loc != "" && resp.StatusCode >= 300 && resp.StatusCode < 400 {
			target := loc
			if u, err := req.URL.Parse(loc); err == nil {
				target = u.String()
			}
			chain.add(Hop{
				Kind:   HopHTTP,
				Method: req.Method,
				URL:    target,
				From:   req.URL.String(),
				Status: resp.StatusCode,
			})
		}
		return resp, nil
	})
}
