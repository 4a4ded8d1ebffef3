// Package browser implements a stateful virtual browser: an HTTP session,
// an ordered history with a cursor, and a plugin registry that shapes how
// pages are loaded.
//
// Navigation states:
//   - Empty: nothing loaded yet; relative URLs cannot be resolved
//   - Loaded: the cursor points at a cached Page
//   - Error: the last navigation failed; Load is still allowed
//
// History follows the usual browser rules. A new navigation from anywhere
// but the tail drops the forward entries. Back and Forward only move the
// cursor and never refetch. Refresh re-fetches the current entry and
// replaces it in place.
//
// Only the final page of a navigation is recorded. Plugins that follow
// intermediate hops (redirects, form continuations) call Dispatch, which
// runs the resolved load_page chain without touching history.
//
// Example Usage:
//
//	b, err := browser.New(
//		browser.WithLogger(log),
//		browser.WithPlugins(useragent.New("firefox-linux"), cookies.New()),
//	)
//	page, err := b.Load(ctx, "https://example.org/")
//	next, err := b.Load(ctx, "/about") // resolved against the current page
package browser
