package browser

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/GriffinCanCode/gatorbrowse/internal/infrastructure/config"
	"github.com/GriffinCanCode/gatorbrowse/internal/logging"
	"github.com/GriffinCanCode/gatorbrowse/internal/plugin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Names of the host members plugins may override
const (
	SlotLoadPage = "load_page"
	SlotRefresh  = "refresh"
)

// LoadFunc fetches one request and returns the resolved page. It never
// touches history.
type LoadFunc func(ctx context.Context, req *Request) (*Page, error)

// RefreshFunc reloads the current page and decides how history changes
type RefreshFunc func(ctx context.Context) (*Page, error)

// Plugin is an independently authored unit of behavior. Contribute is
// called once, when the plugin is installed.
type Plugin interface {
	Name() string
	Contribute(b *Browser) (*plugin.Descriptor, error)
}

// State is the navigation state of a browser
type State int

const (
	StateEmpty State = iota
	StateLoaded
	StateError
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoaded:
		return "loaded"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Browser is a stateful virtual browser. It owns one Session and an ordered
// history of resolved pages with a cursor.
//
// A Browser is not safe for concurrent use. Every navigation blocks until
// the whole redirect chain resolves or fails, and history is mutated
// without locking; callers sharing a Browser across goroutines must
// synchronize externally. Deadlines come from the ctx passed to each call.
type Browser struct {
	id       string
	log      *zap.Logger
	registry *plugin.Registry
	session  *Session
	plugins  []Plugin

	history []*Page
	cursor  int
	state   State
	err     error
}

type options struct {
	log              *zap.Logger
	plugins          []Plugin
	transport        http.RoundTripper
	timeout          time.Duration
	maxHTTPRedirects int
}

// Option configures a Browser
type Option func(*options)

// WithLogger sets the parent logger
func WithLogger(log *zap.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithPlugins installs plugins in the given order
func WithPlugins(plugins ...Plugin) Option {
	return func(o *options) { o.plugins = append(o.plugins, plugins...) }
}

// WithTransport sets the innermost RoundTripper
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.transport = rt }
}

// WithTimeout sets the per-fetch timeout
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithMaxHTTPRedirects bounds redirects followed by the transport itself
func WithMaxHTTPRedirects(n int) Option {
	return func(o *options) { o.maxHTTPRedirects = n }
}

// WithConfig applies the navigation settings from cfg
func WithConfig(cfg config.BrowserConfig) Option {
	return func(o *options) {
		if cfg.Timeout > 0 {
			o.timeout = cfg.Timeout
		}
		if cfg.MaxHTTPRedirects >= 0 {
			o.maxHTTPRedirects = cfg.MaxHTTPRedirects
		}
	}
}

// New creates a browser and installs its plugins
func New(opts ...Option) (*Browser, error) {
	o := options{
		timeout:          30 * time.Second,
		maxHTTPRedirects: 10,
	}
	for _, opt := range opts {
		opt(&o)
	}

	b := &Browser{
		id:       uuid.NewString(),
		registry: plugin.NewRegistry(),
		cursor:   -1,
		state:    StateEmpty,
	}
	b.log = logging.OrNop(o.log).Named("browser").With(zap.String("browser_id", b.id))
	b.session = newSession(o.transport, o.timeout, o.maxHTTPRedirects, b.log)

	if err := b.registry.Define(SlotLoadPage, LoadFunc(b.fetch)); err != nil {
		return nil, err
	}
	if err := b.registry.Define(SlotRefresh, RefreshFunc(b.refreshCurrent)); err != nil {
		return nil, err
	}

	if err := b.LoadPlugins(o.plugins...); err != nil {
		return nil, err
	}
	return b, nil
}

// LoadPlugins installs plugins in order. Plugins cannot be removed.
func (b *Browser) LoadPlugins(plugins ...Plugin) error {
	// the transport is rebuilt after the loop, also when an install fails
	defer func() { b.session.apply(b.registry.Handlers(), b.registry.Headers()) }()

	for _, p := range plugins {
		d, err := p.Contribute(b)
		if err != nil {
			return fmt.Errorf("plugin %s: %w", p.Name(), err)
		}
		rec, err := b.registry.Install(p.Name(), d)
		if err != nil {
			return err
		}
		b.plugins = append(b.plugins, p)
		b.log.Debug("plugin installed",
			zap.String("plugin", rec.Plugin),
			zap.Int("order", rec.Order),
			zap.Strings("overrides", rec.Overrides),
			zap.Strings("extensions", rec.Extensions),
			zap.Strings("properties", rec.Properties),
			zap.Int("handlers", rec.Handlers))
	}
	return nil
}

// Load navigates to rawURL, which may be relative to the current page
func (b *Browser) Load(ctx context.Context, rawURL string) (*Page, error) {
	return b.navigate(ctx, &Request{Method: http.MethodGet, URL: rawURL})
}

// Submit sends values to target. GET values are encoded into the URL,
// anything else is sent as a urlencoded body.
func (b *Browser) Submit(ctx context.Context, method, target string, values url.Values) (*Page, error) {
	method = strings.ToUpper(method)
	if method == "" {
		method = http.MethodGet
	}
	req := &Request{Method: method, URL: target}
	if method == http.MethodGet {
		req.URL = appendQuery(target, values)
	} else {
		req.Form = values
	}
	return b.navigate(ctx, req)
}

// Dispatch runs the resolved load_page chain without recording history.
// Plugins use it for intermediate redirect hops.
func (b *Browser) Dispatch(ctx context.Context, req *Request) (*Page, error) {
	target, err := b.ExpandRelativeURL(req.URL)
	if err != nil {
		return nil, err
	}
	r := req.clone()
	r.URL = target
	if r.Method == "" {
		r.Method = http.MethodGet
	}

	load, err := plugin.Resolve[LoadFunc](b.registry, SlotLoadPage)
	if err != nil {
		return nil, err
	}
	return load(ctx, &r)
}

func (b *Browser) navigate(ctx context.Context, req *Request) (*Page, error) {
	b.log.Info("loading", zap.String("method", req.Method), zap.String("url", req.URL))

	page, err := b.Dispatch(ctx, req)
	if err != nil {
		b.fail(err)
		return nil, err
	}

	b.push(page)
	b.log.Info("page loaded",
		zap.String("url", page.URL()),
		zap.Int("status", page.Status()),
		zap.Int("history", len(b.history)))
	return page, nil
}

// fetch is the host implementation of load_page
func (b *Browser) fetch(ctx context.Context, req *Request) (*Page, error) {
	page, err := b.session.Fetch(ctx, req)
	if err != nil {
		return nil, err
	}
	if ce := b.log.Check(zap.DebugLevel, "page source"); ce != nil {
		ce.Write(zap.String("url", page.URL()), logging.Body(page.Body(), 2048))
	}
	return page, nil
}

// refreshCurrent is the host implementation of refresh: it re-fetches the
// current page and replaces only the current history entry, so entries
// after the cursor stay reachable with Forward.
func (b *Browser) refreshCurrent(ctx context.Context) (*Page, error) {
	cur := b.Current()
	if cur == nil {
		return nil, ErrNoPage
	}

	req := cur.reloadRequest()
	page, err := b.Dispatch(ctx, &req)
	if err != nil {
		b.fail(err)
		return nil, err
	}

	b.history[b.cursor] = page
	b.state = StateLoaded
	b.err = nil
	return page, nil
}

// Refresh reloads the current page through the resolved refresh member
func (b *Browser) Refresh(ctx context.Context) (*Page, error) {
	refresh, err := plugin.Resolve[RefreshFunc](b.registry, SlotRefresh)
	if err != nil {
		return nil, err
	}
	return refresh(ctx)
}

// Back moves the cursor one entry back and returns the cached page
func (b *Browser) Back() (*Page, error) {
	return b.move(-1, "back")
}

// Forward moves the cursor one entry forward and returns the cached page
func (b *Browser) Forward() (*Page, error) {
	return b.move(1, "forward")
}

func (b *Browser) move(delta int, direction string) (*Page, error) {
	target := b.cursor + delta
	if len(b.history) == 0 || target < 0 || target >= len(b.history) {
		return nil, &NavigationBoundsError{Direction: direction, Cursor: b.cursor, Length: len(b.history)}
	}
	b.cursor = target
	b.state = StateLoaded
	b.err = nil
	return b.history[target], nil
}

// push records page after the cursor, dropping any forward entries
func (b *Browser) push(page *Page) {
	b.history = append(b.history[:b.cursor+1], page)
	b.cursor = len(b.history) - 1
	b.state = StateLoaded
	b.err = nil
}

func (b *Browser) fail(err error) {
	b.state = StateError
	b.err = err
	b.log.Warn("navigation failed", zap.Error(err))
}

// ExpandRelativeURL resolves ref against the current page's URL
func (b *Browser) ExpandRelativeURL(ref string) (string, error) {
	return ResolveURL(b.CurrentURL(), ref)
}

// CurrentURL returns the URL of the current page, or "" before any load
func (b *Browser) CurrentURL() string {
	if cur := b.Current(); cur != nil {
		return cur.URL()
	}
	return ""
}

// Current returns the page under the cursor, or nil before any load
func (b *Browser) Current() *Page {
	if b.cursor < 0 || b.cursor >= len(b.history) {
		return nil
	}
	return b.history[b.cursor]
}

// History returns a copy of every recorded page, oldest first
func (b *Browser) History() []*Page {
	return append([]*Page(nil), b.history...)
}

// Cursor returns the index of the current page in History, or -1
func (b *Browser) Cursor() int { return b.cursor }

// State returns the navigation state
func (b *Browser) State() State { return b.state }

// Err returns the error that put the browser in StateError
func (b *Browser) Err() error { return b.err }

// ID returns the browser's instance id, used to correlate log lines
func (b *Browser) ID() string { return b.id }

// Logger returns the browser's logger for plugins to derive from
func (b *Browser) Logger() *zap.Logger { return b.log }

// Call invokes an extension method contributed by a plugin
func (b *Browser) Call(ctx context.Context, name string, args ...any) (any, error) {
	return b.registry.Call(ctx, name, args...)
}

// Get reads a property contributed by a plugin
func (b *Browser) Get(name string) (any, error) {
	return b.registry.Get(name)
}

// Set writes a property contributed by a plugin
func (b *Browser) Set(name string, value any) error {
	return b.registry.Set(name, value)
}

// Explain lists which plugins shaped the member called name, in order
func (b *Browser) Explain(name string) []plugin.Provenance {
	return b.registry.Explain(name)
}

// Records returns the registration record of every installed plugin
func (b *Browser) Records() []plugin.Record {
	return b.registry.Records()
}
