package redirect

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/GriffinCanCode/gatorbrowse/internal/browser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func metaPage(content string) string {
	return fmt.Sprintf(`<html><head><meta http-equiv="Refresh" content="%s"><title>hop</title></head></html>`, content)
}

// newChainServer serves /hop/N which meta-refreshes to /hop/N-1 until
// /hop/0, the final page
func newChainServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/hop/", func(w http.ResponseWriter, r *http.Request) {
		var n int
		fmt.Sscanf(strings.TrimPrefix(r.URL.Path, "/hop/"), "%d", &n)
		if n == 0 {
			fmt.Fprint(w, "<html><title>final</title></html>")
			return
		}
		fmt.Fprint(w, metaPage(fmt.Sprintf("0; url=/hop/%d", n-1)))
	})
	mux.HandleFunc("/moved", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/hop/1", http.StatusFound)
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, metaPage("30; url=/hop/0"))
	})
	mux.HandleFunc("/bad", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, metaPage("0; url=javascript:alert(1)"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestMetaRefreshChainResolves(t *testing.T) {
	srv := newChainServer(t)
	b, err := browser.New(browser.WithPlugins(NewMetaRefresh(0, WithMaxHops(3))))
	require.NoError(t, err)

	chain := &Chain{}
	page, err := b.Load(WithChain(context.Background(), chain), srv.URL+"/hop/3")
	require.NoError(t, err)
	assert.Equal(t, "final", page.Title())
	assert.Equal(t, srv.URL+"/hop/0", page.URL())

	require.Len(t, b.History(), 1)
	assert.Same(t, page, b.Current())

	hops := chain.Hops()
	require.Len(t, hops, 3)
	assert.Equal(t, srv.URL+"/hop/3", hops[0].From)
	assert.Equal(t, srv.URL+"/hop/2", hops[0].URL)
	assert.Equal(t, HopDocument, hops[2].Kind)
}

func TestMetaRefreshChainExceedsBound(t *testing.T) {
	srv := newChainServer(t)
	b, err := browser.New(browser.WithPlugins(NewMetaRefresh(0, WithMaxHops(2))))
	require.NoError(t, err)

	_, err = b.Load(context.Background(), srv.URL+"/hop/3")
	var redirectErr *RedirectError
	require.ErrorAs(t, err, &redirectErr)
	assert.ErrorIs(t, err, ErrTooManyRedirects)
	assert.Len(t, redirectErr.Hops, 3)
	assert.Equal(t, srv.URL+"/hop/0", redirectErr.Target)

	assert.Empty(t, b.History())
	assert.Equal(t, browser.StateError, b.State())
}

func TestInvalidTarget(t *testing.T) {
	srv := newChainServer(t)
	b, err := browser.New(browser.WithPlugins(NewMetaRefresh(0)))
	require.NoError(t, err)

	_, err = b.Load(context.Background(), srv.URL+"/bad")
	assert.ErrorIs(t, err, ErrInvalidTarget)
}

func TestMetaRefreshMaxDelay(t *testing.T) {
	srv := newChainServer(t)

	b, err := browser.New(browser.WithPlugins(NewMetaRefresh(10 * time.Second)))
	require.NoError(t, err)
	page, err := b.Load(context.Background(), srv.URL+"/slow")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/slow", page.URL())

	b, err = browser.New(browser.WithPlugins(NewMetaRefresh(0)))
	require.NoError(t, err)
	page, err = b.Load(context.Background(), srv.URL+"/slow")
	require.NoError(t, err)
	assert.Equal(t, "final", page.Title())
}

func TestMetaRefreshWithoutURLReloads(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if hits == 1 {
			fmt.Fprint(w, metaPage("0"))
			return
		}
		fmt.Fprint(w, "<html><title>reloaded</title></html>")
	}))
	defer srv.Close()

	b, err := browser.New(browser.WithPlugins(NewMetaRefresh(0)))
	require.NoError(t, err)

	page, err := b.Load(context.Background(), srv.URL+"/same")
	require.NoError(t, err)
	assert.Equal(t, "reloaded", page.Title())
	assert.Equal(t, 2, hits)
	assert.Len(t, b.History(), 1)
}

func TestDelayedSelfRefreshIsNotFollowed(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		fmt.Fprint(w, metaPage("60"))
	}))
	defer srv.Close()

	b, err := browser.New(browser.WithPlugins(NewMetaRefresh(0)))
	require.NoError(t, err)

	page, err := b.Load(context.Background(), srv.URL+"/status")
	require.NoError(t, err)
	assert.Equal(t, "hop", page.Title())
	assert.Equal(t, 1, hits)
}

func TestImmediateSelfRefreshReloadsOnce(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		fmt.Fprint(w, metaPage("0"))
	}))
	defer srv.Close()

	b, err := browser.New(browser.WithPlugins(NewMetaRefresh(0)))
	require.NoError(t, err)

	chain := &Chain{}
	page, err := b.Load(WithChain(context.Background(), chain), srv.URL+"/loop")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/loop", page.URL())
	assert.Equal(t, 2, hits)
	assert.Equal(t, 1, chain.Followed())
	assert.Equal(t, browser.StateLoaded, b.State())
}

func TestHTTPHopsAreRecorded(t *testing.T) {
	srv := newChainServer(t)
	b, err := browser.New(browser.WithPlugins(
		NewMetaRefresh(0),
		New("observer", HandlerFunc(func(ctx context.Context, f *Follower, page *browser.Page) (*browser.Page, error) {
			return nil, nil
		})),
	))
	require.NoError(t, err)

	chain := &Chain{}
	page, err := b.Load(WithChain(context.Background(), chain), srv.URL+"/moved")
	require.NoError(t, err)
	assert.Equal(t, "final", page.Title())

	hops := chain.Hops()
	require.Len(t, hops, 2)
	assert.Equal(t, HopHTTP, hops[0].Kind)
	assert.Equal(t, http.StatusFound, hops[0].Status)
	assert.Equal(t, srv.URL+"/hop/1", hops[0].URL)
	assert.Equal(t, HopDocument, hops[1].Kind)
	assert.Equal(t, 1, chain.Followed())
}

func TestMatchersGateTheHandler(t *testing.T) {
	srv := newChainServer(t)

	calls := 0
	counting := HandlerFunc(func(ctx context.Context, f *Follower, page *browser.Page) (*browser.Page, error) {
		calls++
		return nil, nil
	})

	b, err := browser.New(browser.WithPlugins(
		New("by_url", counting, WithURLMatch(Regexp(regexp.MustCompile(`https?://[^/]+/slow`)))),
		New("by_page", counting, WithPageMatch(Func(func(s string) bool {
			return strings.Contains(s, "javascript:")
		}))),
	))
	require.NoError(t, err)

	_, err = b.Load(context.Background(), srv.URL+"/hop/0")
	require.NoError(t, err)
	assert.Equal(t, 0, calls)

	_, err = b.Load(context.Background(), srv.URL+"/slow")
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	_, err = b.Load(context.Background(), srv.URL+"/bad")
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestHandlerErrorsPropagate(t *testing.T) {
	srv := newChainServer(t)
	boom := fmt.Errorf("site is down")
	b, err := browser.New(browser.WithPlugins(New("fails", HandlerFunc(
		func(ctx context.Context, f *Follower, page *browser.Page) (*browser.Page, error) {
			return nil, boom
		}))))
	require.NoError(t, err)

	_, err = b.Load(context.Background(), srv.URL+"/hop/0")
	assert.ErrorIs(t, err, boom)
}

func TestRegexpMatchesAtStart(t *testing.T) {
	m := Regexp(regexp.MustCompile(`b+`))
	assert.True(t, m.Match("bbc"))
	assert.False(t, m.Match("abc"))
	assert.True(t, Exact("x").Match("x"))
	assert.False(t, Exact("x").Match("xy"))
}

func TestParseRefresh(t *testing.T) {
	tests := []struct {
		content string
		delay   time.Duration
		target  string
	}{
		{"5; url=/next", 5 * time.Second, "/next"},
		{"0;URL='https://example.org/a'", 0, "https://example.org/a"},
		{"3", 3 * time.Second, ""},
		{"url=/only", 0, "/only"},
		{"1.5; url = \"/q?x=1\"", time.Second, "/q?x=1"},
		{"0, /bare", 0, "/bare"},
		{"", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.content, func(t *testing.T) {
			delay, target := ParseRefresh(tt.content)
			assert.Equal(t, tt.delay, delay)
			assert.Equal(t, tt.target, target)
		})
	}
}
