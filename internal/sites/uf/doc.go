// Package uf holds the plugins for the University of Florida sites:
// GatorLink (Shibboleth) login, its SAML continuation page and the ISIS
// page loader.
//
// Endpoints come from configuration; nothing here is known to the browser
// itself. Credentials are passed explicitly and are never logged.
//
// Login states:
//   - LoggedOut: initial state, and the state after every Logout
//   - Authenticating: a login form has been submitted
//   - LoggedIn: the handshake landed where expected with a session cookie
//   - Failed: the last attempt failed; Err holds an *AuthError
//
// Example Usage:
//
//	b, err := uf.NewBrowser(config.LoadOrDefault(), log)
//	_, err = b.Call(ctx, uf.ExtensionLogin, user, pass)
//	cookie, _ := b.Get(uf.PropertySessionCookie)
//	page, err := b.Call(ctx, uf.ExtensionLoadIsisPage, "RSI-GRADES")
//	_, err = b.Call(ctx, uf.ExtensionLogout)
package uf
