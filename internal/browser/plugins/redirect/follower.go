package redirect

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/GriffinCanCode/gatorbrowse/internal/browser"
	"go.uber.org/zap"
)

// Follower lets a Handler follow a redirect found on one page. Following
// re-enters the whole load_page chain, so every installed plugin sees the
// next hop, while the browser keeps only the final page in its history.
type Follower struct {
	browser *browser.Browser
	chain   *Chain
	source  *browser.Page
	maxHops int
	log     *zap.Logger
}

// Browser returns the browser the redirect happens in
func (f *Follower) Browser() *browser.Browser { return f.browser }

// Source returns the page carrying the redirect signal
func (f *Follower) Source() *browser.Page { return f.source }

// Hops returns the hops observed so far in this navigation
func (f *Follower) Hops() []Hop { return f.chain.Hops() }

// Follow validates hop, records it and loads its target. Relative targets
// are resolved against the source page.
func (f *Follower) Follow(ctx context.Context, hop Hop) (*browser.Page, error) {
	hop.Kind = HopDocument
	hop.From = f.source.URL()
	hop.Method = strings.ToUpper(hop.Method)
	if hop.Method == "" {
		hop.Method = http.MethodGet
	}

	target, err := validTarget(hop.From, hop.URL)
	if err != nil {
		f.chain.add(hop)
		return nil, &RedirectError{Reason: err.Error(), Target: hop.URL, Hops: f.chain.Hops(), Err: ErrInvalidTarget}
	}
	hop.URL = target
	f.chain.add(hop)

	if f.chain.Followed() > f.maxHops {
		return nil, &RedirectError{
			Reason: "hop limit reached",
			Target: target,
			Hops:   f.chain.Hops(),
			Err:    ErrTooManyRedirects,
		}
	}

	f.log.Info("following redirect",
		zap.String("from", hop.From),
		zap.String("to", target),
		zap.String("method", hop.Method),
		zap.Duration("delay", hop.Delay),
		zap.Int("hop", f.chain.Followed()))

	return f.browser.Dispatch(WithChain(ctx, f.chain), &browser.Request{
		Method: hop.Method,
		URL:    target,
		Form:   hop.Form,
	})
}

func validTarget(base, ref string) (string, error) {
	if strings.TrimSpace(ref) == "" {
		return "", browser.ErrEmptyURL
	}
	abs, err := browser.ResolveURL(base, ref)
	if err != nil {
		return "", err
	}
	u, err := url.Parse(abs)
	if err != nil {
		return "", err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", errors.New("missing host")
	}
	return abs, nil
}
