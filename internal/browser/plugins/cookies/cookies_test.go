package cookies

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/GriffinCanCode/gatorbrowse/internal/browser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCookieSite(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/set", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc", Path: "/"})
		http.SetCookie(w, &http.Cookie{Name: "scoped", Value: "xyz", Path: "/idp"})
		fmt.Fprint(w, "<html><title>set</title></html>")
	})
	mux.HandleFunc("/bounce", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "hop", Value: "1", Path: "/"})
		http.Redirect(w, r, "/echo", http.StatusFound)
	})
	mux.HandleFunc("/echo", func(w http.ResponseWriter, r *http.Request) {
		var names []string
		for _, c := range r.Cookies() {
			names = append(names, c.Name+"="+c.Value)
		}
		fmt.Fprintf(w, "<html><title>%v</title></html>", names)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newBrowser(t *testing.T) (*browser.Browser, *Plugin) {
	t.Helper()
	p, err := New()
	require.NoError(t, err)
	b, err := browser.New(browser.WithPlugins(p))
	require.NoError(t, err)
	return b, p
}

func TestCookiesPersistAcrossFetches(t *testing.T) {
	srv := newCookieSite(t)
	b, p := newBrowser(t)
	ctx := context.Background()

	_, err := b.Load(ctx, srv.URL+"/set")
	require.NoError(t, err)

	page, err := b.Load(ctx, "/echo")
	require.NoError(t, err)
	assert.Equal(t, "[session=abc]", page.Title())

	u, _ := url.Parse(srv.URL + "/idp/x")
	assert.Equal(t, "xyz", p.Jar().Lookup(u, "scoped").Value)
	root, _ := url.Parse(srv.URL + "/")
	assert.Nil(t, p.Jar().Lookup(root, "scoped"))
}

func TestCookiesSetDuringHTTPRedirect(t *testing.T) {
	srv := newCookieSite(t)
	b, _ := newBrowser(t)

	page, err := b.Load(context.Background(), srv.URL+"/bounce")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/echo", page.URL())
	assert.Equal(t, "[hop=1]", page.Title())
}

func TestExpireAndReset(t *testing.T) {
	srv := newCookieSite(t)
	b, p := newBrowser(t)

	_, err := b.Load(context.Background(), srv.URL+"/set")
	require.NoError(t, err)

	idp, _ := url.Parse(srv.URL + "/idp/")
	p.Jar().Expire(idp, "scoped", "/idp")
	assert.Nil(t, p.Jar().Lookup(idp, "scoped"))
	assert.NotNil(t, p.Jar().Lookup(idp, "session"))

	p.Jar().Reset()
	assert.Empty(t, p.Jar().Cookies(idp))
}

func TestExpireParentDomain(t *testing.T) {
	jar, err := NewJar()
	require.NoError(t, err)

	u, _ := url.Parse("https://login.example.edu/idp/")
	jar.SetCookies(u, []*http.Cookie{{Name: "gsm", Value: "1", Path: "/", Domain: "example.edu"}})
	require.NotNil(t, jar.Lookup(u, "gsm"))

	jar.Expire(u, "gsm", "/")
	assert.Nil(t, jar.Lookup(u, "gsm"))
}

func TestCookieJarProperty(t *testing.T) {
	b, p := newBrowser(t)
	assert.Same(t, p.Jar(), FromBrowser(b))

	err := b.Set(PropertyJar, nil)
	assert.Error(t, err)

	bare, err := browser.New()
	require.NoError(t, err)
	assert.Nil(t, FromBrowser(bare))
}
