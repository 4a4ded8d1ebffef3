package browser

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/GriffinCanCode/gatorbrowse/internal/plugin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type funcPlugin struct {
	name string
	fn   func(b *Browser) (*plugin.Descriptor, error)
}

func (p funcPlugin) Name() string { return p.name }

func (p funcPlugin) Contribute(b *Browser) (*plugin.Descriptor, error) { return p.fn(b) }

// newSite serves a few pages that echo what they received
func newSite(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, "<html><head><title>%s</title></head><body>%s %s</body></html>",
			r.URL.Path, r.Method, r.URL.RawQuery)
	})
	mux.HandleFunc("/form", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		fmt.Fprintf(w, "<html><title>form</title><body>%s %s</body></html>", r.Method, r.PostForm.Get("q"))
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, "<html><title>not found</title></html>")
	})
	mux.HandleFunc("/moved", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/landing", http.StatusFound)
	})
	mux.HandleFunc("/header", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "<html><title>%v</title></html>", r.Header.Values("X-Test"))
	})
	mux.HandleFunc("/latin1", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=ISO-8859-1")
		w.Write([]byte("<html><title>caf\xe9</title></html>"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestLoadRecordsHistory(t *testing.T) {
	srv := newSite(t)
	b, err := New()
	require.NoError(t, err)
	assert.Equal(t, StateEmpty, b.State())
	assert.Equal(t, -1, b.Cursor())
	assert.Nil(t, b.Current())

	page, err := b.Load(context.Background(), srv.URL+"/a")
	require.NoError(t, err)
	assert.Equal(t, "/a", page.Title())
	assert.Equal(t, http.StatusOK, page.Status())
	assert.Equal(t, StateLoaded, b.State())
	assert.Equal(t, srv.URL+"/a", b.CurrentURL())

	_, err = b.Load(context.Background(), "/b")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/b", b.CurrentURL())
	assert.Len(t, b.History(), 2)
	assert.Equal(t, 1, b.Cursor())
}

func TestNavigateTruncatesForwardEntries(t *testing.T) {
	srv := newSite(t)
	b, err := New()
	require.NoError(t, err)
	ctx := context.Background()

	for _, path := range []string{"/a", "/b", "/c"} {
		_, err := b.Load(ctx, srv.URL+path)
		require.NoError(t, err)
	}

	_, err = b.Back()
	require.NoError(t, err)
	_, err = b.Back()
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/a", b.CurrentURL())

	_, err = b.Load(ctx, "/d")
	require.NoError(t, err)

	var urls []string
	for _, p := range b.History() {
		urls = append(urls, p.URL())
	}
	assert.Equal(t, []string{srv.URL + "/a", srv.URL + "/d"}, urls)

	_, err = b.Forward()
	var bounds *NavigationBoundsError
	assert.ErrorAs(t, err, &bounds)
}

func TestBackAndForwardBounds(t *testing.T) {
	srv := newSite(t)
	b, err := New()
	require.NoError(t, err)

	_, err = b.Back()
	var bounds *NavigationBoundsError
	require.ErrorAs(t, err, &bounds)
	assert.Equal(t, "back", bounds.Direction)
	assert.Equal(t, 0, bounds.Length)

	_, err = b.Load(context.Background(), srv.URL+"/a")
	require.NoError(t, err)
	_, err = b.Load(context.Background(), srv.URL+"/b")
	require.NoError(t, err)

	_, err = b.Forward()
	require.ErrorAs(t, err, &bounds)
	assert.Equal(t, "forward", bounds.Direction)
	assert.Equal(t, 1, b.Cursor())

	first, err := b.Back()
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/a", first.URL())

	_, err = b.Back()
	require.ErrorAs(t, err, &bounds)
	assert.Equal(t, 0, b.Cursor())

	second, err := b.Forward()
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/b", second.URL())
	assert.Len(t, b.History(), 2)
}

func TestBackDoesNotRefetch(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		fmt.Fprint(w, "<html></html>")
	}))
	defer srv.Close()

	b, err := New()
	require.NoError(t, err)
	_, err = b.Load(context.Background(), srv.URL+"/a")
	require.NoError(t, err)
	_, err = b.Load(context.Background(), srv.URL+"/b")
	require.NoError(t, err)

	_, err = b.Back()
	require.NoError(t, err)
	_, err = b.Forward()
	require.NoError(t, err)
	assert.Equal(t, 2, hits)
}

func TestRefreshReplacesCurrentEntry(t *testing.T) {
	srv := newSite(t)
	b, err := New()
	require.NoError(t, err)
	ctx := context.Background()

	_, err = b.Refresh(ctx)
	assert.ErrorIs(t, err, ErrNoPage)

	_, err = b.Load(ctx, srv.URL+"/a")
	require.NoError(t, err)
	_, err = b.Load(ctx, srv.URL+"/b")
	require.NoError(t, err)
	old, err := b.Back()
	require.NoError(t, err)

	fresh, err := b.Refresh(ctx)
	require.NoError(t, err)
	assert.NotSame(t, old, fresh)
	assert.Equal(t, old.URL(), fresh.URL())

	history := b.History()
	require.Len(t, history, 2)
	assert.Same(t, fresh, history[0])
	assert.Equal(t, 0, b.Cursor())

	_, err = b.Forward()
	assert.NoError(t, err)
}

func TestRefreshAfterHTTPRedirectUsesFinalURL(t *testing.T) {
	srv := newSite(t)
	b, err := New()
	require.NoError(t, err)

	page, err := b.Load(context.Background(), srv.URL+"/moved")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/landing", page.URL())
	assert.Equal(t, srv.URL+"/moved", page.Request().URL)

	fresh, err := b.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/landing", fresh.Request().URL)
	assert.Len(t, b.History(), 1)
}

func TestTransportErrorSetsErrorState(t *testing.T) {
	srv := newSite(t)
	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := dead.URL
	dead.Close()

	b, err := New()
	require.NoError(t, err)
	_, err = b.Load(context.Background(), srv.URL+"/a")
	require.NoError(t, err)

	_, err = b.Load(context.Background(), deadURL+"/gone")
	var transportErr *url.Error
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, deadURL+"/gone", transportErr.URL)
	assert.Equal(t, StateError, b.State())
	assert.Equal(t, err, b.Err())
	assert.Len(t, b.History(), 1)
	assert.Equal(t, srv.URL+"/a", b.CurrentURL())

	_, err = b.Load(context.Background(), srv.URL+"/b")
	require.NoError(t, err)
	assert.Equal(t, StateLoaded, b.State())
	assert.NoError(t, b.Err())
}

func TestNonSuccessStatusIsAPage(t *testing.T) {
	srv := newSite(t)
	b, err := New()
	require.NoError(t, err)

	page, err := b.Load(context.Background(), srv.URL+"/missing")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, page.Status())
	assert.Equal(t, "not found", page.Title())
	assert.Equal(t, StateLoaded, b.State())
}

func TestRelativeLoadWithoutPage(t *testing.T) {
	b, err := New()
	require.NoError(t, err)

	_, err = b.Load(context.Background(), "/a")
	assert.ErrorIs(t, err, ErrNoPage)
	assert.Equal(t, StateError, b.State())
}

func TestSubmit(t *testing.T) {
	srv := newSite(t)
	b, err := New()
	require.NoError(t, err)
	ctx := context.Background()

	page, err := b.Submit(ctx, "post", srv.URL+"/form", url.Values{"q": {"gators"}})
	require.NoError(t, err)
	assert.Contains(t, page.Text(), "POST gators")

	page, err = b.Submit(ctx, http.MethodGet, "/search?x=1", url.Values{"q": {"a b"}})
	require.NoError(t, err)
	assert.Contains(t, page.Text(), "GET x=1&q=a+b")
	assert.Len(t, b.History(), 2)
}

func TestPluginsShapeLoading(t *testing.T) {
	srv := newSite(t)
	var seen []string

	tracer := funcPlugin{name: "tracer", fn: func(b *Browser) (*plugin.Descriptor, error) {
		d := plugin.Describe().Header("X-Test", "one")
		plugin.Override(d, SlotLoadPage, func(next LoadFunc) LoadFunc {
			return func(ctx context.Context, req *Request) (*Page, error) {
				seen = append(seen, req.URL)
				return next(ctx, req)
			}
		})
		return d.Build(), nil
	}}
	second := funcPlugin{name: "second", fn: func(b *Browser) (*plugin.Descriptor, error) {
		return plugin.Describe().Header("X-Test", "two").Build(), nil
	}}

	b, err := New(WithPlugins(tracer, second))
	require.NoError(t, err)

	page, err := b.Load(context.Background(), srv.URL+"/header")
	require.NoError(t, err)
	assert.Equal(t, "[one two]", page.Title())
	assert.Equal(t, []string{srv.URL + "/header"}, seen)

	trace := b.Explain(SlotLoadPage)
	require.Len(t, trace, 2)
	assert.Equal(t, "tracer", trace[1].Plugin)
	assert.Len(t, b.Records(), 2)
}

func TestLoadPluginsAddsToTransport(t *testing.T) {
	srv := newSite(t)
	var trips int

	header := func(name, value string) funcPlugin {
		return funcPlugin{name: name, fn: func(b *Browser) (*plugin.Descriptor, error) {
			return plugin.Describe().Header("X-Test", value).Build(), nil
		}}
	}
	counter := funcPlugin{name: "counter", fn: func(b *Browser) (*plugin.Descriptor, error) {
		return plugin.Describe().Handler(func(next http.RoundTripper) http.RoundTripper {
			return plugin.RoundTripFunc(func(req *http.Request) (*http.Response, error) {
				trips++
				return next.RoundTrip(req)
			})
		}).Build(), nil
	}}

	b, err := New(WithPlugins(header("first", "one")))
	require.NoError(t, err)
	page, err := b.Load(context.Background(), srv.URL+"/header")
	require.NoError(t, err)
	assert.Equal(t, "[one]", page.Title())

	require.NoError(t, b.LoadPlugins(counter, header("second", "two")))
	page, err = b.Load(context.Background(), srv.URL+"/header")
	require.NoError(t, err)
	assert.Equal(t, "[one two]", page.Title())
	assert.Equal(t, 1, trips)
}

func TestExpandRelativeURLMatchesLoad(t *testing.T) {
	srv := newSite(t)
	host := strings.TrimPrefix(srv.URL, "http://")

	tests := []struct {
		name string
		ref  string
		path string
	}{
		{"path relative", "other", "/dir/other"},
		{"parent", "../up", "/up"},
		{"absolute path", "/root", "/root"},
		{"scheme relative", "//" + host + "/elsewhere", "/elsewhere"},
		{"query only", "?q=1", "/dir/page"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := New()
			require.NoError(t, err)
			_, err = b.Load(context.Background(), srv.URL+"/dir/page")
			require.NoError(t, err)

			want, err := b.ExpandRelativeURL(tt.ref)
			require.NoError(t, err)
			resolved, err := ResolveURL(srv.URL+"/dir/page", tt.ref)
			require.NoError(t, err)
			assert.Equal(t, resolved, want)

			page, err := b.Load(context.Background(), tt.ref)
			require.NoError(t, err)
			assert.Equal(t, want, b.CurrentURL())
			assert.Equal(t, tt.path, page.Title())
		})
	}
}

func TestPageDocumentIsACopy(t *testing.T) {
	srv := newSite(t)
	b, err := New()
	require.NoError(t, err)

	page, err := b.Load(context.Background(), srv.URL+"/a")
	require.NoError(t, err)

	page.Document().Find("title").SetText("changed")
	page.Document().Find("body").Remove()
	assert.Equal(t, "/a", page.Title())
	assert.Equal(t, 1, page.Document().Find("body").Length())
	assert.Equal(t, srv.URL+"/a", page.Document().Url.String())
}

func TestPluginConflictFailsConstruction(t *testing.T) {
	ext := func(name string) funcPlugin {
		return funcPlugin{name: name, fn: func(b *Browser) (*plugin.Descriptor, error) {
			return plugin.Describe().Extend("hello", func(ctx context.Context, args ...any) (any, error) {
				return name, nil
			}).Build(), nil
		}}
	}

	_, err := New(WithPlugins(ext("a"), ext("b")))
	var conflict *plugin.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "a", conflict.Owner)
}

func TestDispatchDoesNotRecordHistory(t *testing.T) {
	srv := newSite(t)
	b, err := New()
	require.NoError(t, err)

	page, err := b.Dispatch(context.Background(), &Request{URL: srv.URL + "/a"})
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, page.Request().Method)
	assert.Empty(t, b.History())
	assert.Equal(t, StateEmpty, b.State())
}

func TestCharsetDecoding(t *testing.T) {
	srv := newSite(t)
	b, err := New()
	require.NoError(t, err)

	page, err := b.Load(context.Background(), srv.URL+"/latin1")
	require.NoError(t, err)
	assert.Equal(t, "café", page.Title())
	assert.Equal(t, "windows-1252", page.Charset())
}

func TestResolveURL(t *testing.T) {
	base := "https://example.org/dir/page.html?x=1"
	tests := []struct {
		name string
		ref  string
		want string
	}{
		{"absolute", "https://other.org/a", "https://other.org/a"},
		{"path relative", "next.html", "https://example.org/dir/next.html"},
		{"root relative", "/top", "https://example.org/top"},
		{"scheme relative", "//cdn.example.org/x", "https://cdn.example.org/x"},
		{"query only", "?y=2", "https://example.org/dir/page.html?y=2"},
		{"parent", "../up", "https://example.org/up"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveURL(base, tt.ref)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ResolveURL(base, "  ")
	assert.ErrorIs(t, err, ErrEmptyURL)
	_, err = ResolveURL("", "rel")
	assert.ErrorIs(t, err, ErrNoPage)
}
