// Package redirect makes in-document redirect chains transparent to
// callers of the browser.
//
// HTTP 3xx responses are followed by the transport. What the transport
// cannot see (meta refresh tags, auto-submitting forms, site-specific
// interstitials) is found by a Handler, which follows it through a
// Follower:
//
//	type interstitial struct{}
//
//	func (interstitial) HandleRedirect(ctx context.Context, f *redirect.Follower, page *browser.Page) (*browser.Page, error) {
//		href, ok := page.Document().Find("a#continue").Attr("href")
//		if !ok {
//			return nil, nil
//		}
//		return f.Follow(ctx, redirect.Hop{URL: href})
//	}
//
//	b, err := browser.New(browser.WithPlugins(
//		redirect.NewMetaRefresh(0),
//		redirect.New("interstitial", interstitial{}, redirect.WithURLMatch(redirect.Exact(u))),
//	))
//
// Every hop of a navigation is recorded in one Chain carried by the
// context, whichever plugin followed it. Targets must be absolute http or
// https URLs once resolved. The number of document hops is bounded
// (DefaultMaxHops); exceeding the bound or following an invalid target
// returns a *RedirectError holding the whole chain.
//
// Callers that want to inspect the hops of a navigation seed the context:
//
//	chain := &redirect.Chain{}
//	page, err := b.Load(redirect.WithChain(ctx, chain), u)
//	for _, hop := range chain.Hops() { ... }
package redirect
