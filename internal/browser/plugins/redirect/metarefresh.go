package redirect

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/GriffinCanCode/gatorbrowse/internal/browser"
	"github.com/antchfx/htmlquery"
)

const metaRefreshXPath = `//meta[translate(@http-equiv, 'REFSH', 'refsh')='refresh']`

// MetaRefresh follows <meta http-equiv="refresh"> redirects. Refreshes
// scheduled further out than MaxDelay are left alone; zero means no limit.
//
// A refresh without a URL is only followed when it is immediate, and then
// at most once per navigation. A delayed one is a page that polls itself,
// such as a status page, and is returned as it is.
type MetaRefresh struct {
	MaxDelay time.Duration
}

// NewMetaRefresh creates a plugin that follows meta refresh redirects
func NewMetaRefresh(maxDelay time.Duration, opts ...Option) *Plugin {
	return New("meta_refresh", MetaRefresh{MaxDelay: maxDelay}, opts...)
}

// HandleRedirect implements Handler
func (m MetaRefresh) HandleRedirect(ctx context.Context, f *Follower, page *browser.Page) (*browser.Page, error) {
	root := page.Node()
	if root == nil {
		return nil, nil
	}
	meta, err := htmlquery.Query(root, metaRefreshXPath)
	if err != nil || meta == nil {
		return nil, nil
	}

	delay, target := ParseRefresh(htmlquery.SelectAttr(meta, "content"))
	if m.MaxDelay > 0 && delay > m.MaxDelay {
		return nil, nil
	}
	if target == "" {
		if delay > 0 || reloaded(f, page.URL()) {
			return nil, nil
		}
		target = page.URL()
	}
	return f.Follow(ctx, Hop{URL: target, Delay: delay})
}

// reloaded reports whether this navigation already refreshed pageURL in place
func reloaded(f *Follower, pageURL string) bool {
	for _, h := range f.Hops() {
		if h.Kind == HopDocument && h.From == pageURL && h.URL == pageURL {
			return true
		}
	}
	return false
}

// ParseRefresh splits a refresh directive such as `5; url=/next` into its
// delay and target. The target is empty when only a delay is given.
func ParseRefresh(content string) (time.Duration, string) {
	content = strings.TrimSpace(content)

	i := 0
	for i < len(content) && content[i] >= '0' && content[i] <= '9' {
		i++
	}
	var delay time.Duration
	if n, err := strconv.Atoi(content[:i]); err == nil {
		delay = time.Duration(n) * time.Second
	}

	rest := strings.TrimLeft(content[i:], "0123456789.")
	rest = strings.TrimSpace(rest)
	rest = strings.TrimLeft(rest, ";,")
	rest = strings.TrimSpace(rest)
	if len(rest) >= 3 && strings.EqualFold(rest[:3], "url") {
		if after := strings.TrimSpace(rest[3:]); strings.HasPrefix(after, "=") {
			rest = strings.TrimSpace(after[1:])
		}
	}
	rest = strings.Trim(rest, `"'`)
	return delay, strings.TrimSpace(rest)
}
