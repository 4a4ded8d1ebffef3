package cookies

import (
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/GriffinCanCode/gatorbrowse/internal/plugin"
	"golang.org/x/net/publicsuffix"
)

// Jar is a browser cookie store. Cookies are scoped with the public suffix
// list so a site cannot set cookies for a whole TLD.
type Jar struct {
	jar *cookiejar.Jar
}

// NewJar creates an empty jar
func NewJar() (*Jar, error) {
	j, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}
	return &Jar{jar: j}, nil
}

// Cookies returns the cookies to send to u
func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	return j.jar.Cookies(u)
}

// SetCookies stores cookies received from u
func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.jar.SetCookies(u, cookies)
}

// Lookup returns the cookie called name that would be sent to u, or nil
func (j *Jar) Lookup(u *url.URL, name string) *http.Cookie {
	for _, c := range j.jar.Cookies(u) {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Expire removes the cookie called name with the given path from u's host
// and every parent domain it could have been scoped to.
func (j *Jar) Expire(u *url.URL, name, path string) {
	if path == "" {
		path = "/"
	}
	host := u.Hostname()
	j.jar.SetCookies(u, []*http.Cookie{{Name: name, Path: path, MaxAge: -1}})
	if net.ParseIP(host) != nil {
		return
	}

	top, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return
	}
	for domain := host; ; {
		j.jar.SetCookies(u, []*http.Cookie{{Name: name, Path: path, Domain: domain, MaxAge: -1}})
		if domain == top {
			return
		}
		i := strings.IndexByte(domain, '.')
		if i < 0 {
			return
		}
		domain = domain[i+1:]
	}
}

// Reset drops every cookie
func (j *Jar) Reset() {
	if fresh, err := NewJar(); err == nil {
		j.jar = fresh.jar
	}
}

// Handler sends stored cookies with every request and stores the cookies
// of every response, including each hop of an HTTP redirect.
func (j *Jar) Handler(next http.RoundTripper) http.RoundTripper {
	return plugin.RoundTripFunc(func(req *http.Request) (*http.Response, error) {
		r := req.Clone(req.Context())
		for _, c := range j.Cookies(r.URL) {
			r.AddCookie(c)
		}

		resp, err := next.RoundTrip(r)
		if err != nil {
			return resp, err
		}
		if received := resp.Cookies(); len(received) > 0 {
			j.SetCookies(r.URL, received)
		}
		return resp, nil
	})
}
