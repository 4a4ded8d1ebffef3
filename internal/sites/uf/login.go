package uf

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strings"

	"github.com/GriffinCanCode/gatorbrowse/internal/browser"
	"github.com/GriffinCanCode/gatorbrowse/internal/browser/plugins/cookies"
	"github.com/GriffinCanCode/gatorbrowse/internal/browser/plugins/redirect"
	"github.com/GriffinCanCode/gatorbrowse/internal/plugin"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
)

// Members contributed by LoginPlugin
const (
	ExtensionLogin        = "uf_login"
	ExtensionLogout       = "uf_logout"
	ExtensionSetAutologin = "uf_set_autologin"
	PropertySessionCookie = "uf_session_cookie"
	PropertyUsername      = "uf_username"
	PropertyAuthState     = "uf_auth_state"
)

var failureMarkers = []struct {
	text string
	err  error
}{
	{"Your username or password is incorrect. Please try again.", ErrBadCredentials},
	{"An error occurred while processing your request.", ErrSiteError},
}

// LoginPlugin signs in to GatorLink. It posts the login form directly,
// and with autologin enabled it also answers any login page met during
// navigation, like a redirect.
type LoginPlugin struct {
	endpoints Endpoints
	creds     Credentials
	autologin bool
	inLogin   bool
	state     AuthState
	err       error

	browser *browser.Browser
	jar     *cookies.Jar
	log     *zap.Logger
	policy  *bluemonday.Policy
}

// NewLogin creates a logged out login plugin
func NewLogin(endpoints Endpoints) *LoginPlugin {
	return &LoginPlugin{
		endpoints: endpoints,
		state:     LoggedOut,
		log:       zap.NewNop(),
		policy:    bluemonday.StrictPolicy(),
	}
}

// Name returns the plugin name
func (p *LoginPlugin) Name() string { return "uf_login" }

// Contribute adds the login extensions and properties, and the autologin
// redirect handler. The cookies plugin must already be installed.
func (p *LoginPlugin) Contribute(b *browser.Browser) (*plugin.Descriptor, error) {
	jar := cookies.FromBrowser(b)
	if jar == nil {
		return nil, ErrNoCookieJar
	}
	p.browser = b
	p.jar = jar
	p.log = b.Logger().Named("uf.login")

	auto := redirect.New(p.Name(), redirect.HandlerFunc(p.handleLoginPage),
		redirect.WithURLMatch(redirect.Func(func(string) bool { return p.autologin && !p.inLogin })),
		redirect.WithPageMatch(redirect.Func(p.endpoints.LoginPage.MatchString)),
	)

	return auto.Describe(b).
		Extend(ExtensionLogin, p.loginMethod).
		Extend(ExtensionLogout, func(ctx context.Context, args ...any) (any, error) {
			return nil, p.Logout(ctx)
		}).
		Extend(ExtensionSetAutologin, p.setAutologinMethod).
		Property(PropertySessionCookie, func() any {
			if c := p.SessionCookie(); c != nil {
				return c
			}
			return nil
		}, nil).
		Property(PropertyUsername, func() any { return p.creds.Username() }, func(v any) error {
			name, ok := v.(string)
			if !ok {
				return fmt.Errorf("%s: want string, got %T", PropertyUsername, v)
			}
			p.creds.username = name
			return nil
		}).
		Property(PropertyAuthState, func() any { return p.state }, nil).
		Build(), nil
}

// State returns the authentication state
func (p *LoginPlugin) State() AuthState { return p.state }

// Err returns why the last login failed
func (p *LoginPlugin) Err() error { return p.err }

// SessionCookie returns the session cookie while logged in, or nil
func (p *LoginPlugin) SessionCookie() *http.Cookie {
	if p.state != LoggedIn {
		return nil
	}
	return p.sessionCookie()
}

func (p *LoginPlugin) sessionCookie() *http.Cookie {
	if p.jar == nil {
		return nil
	}
	c := p.jar.Lookup(p.endpoints.sessionURL(), p.endpoints.SessionCookie)
	if c == nil || c.Value == "" {
		return nil
	}
	return c
}

// Login posts creds to the login endpoint. The final page of the handshake
// is recorded in history and returned, also when the login failed.
func (p *LoginPlugin) Login(ctx context.Context, creds Credentials) (*browser.Page, error) {
	if p.browser == nil {
		return nil, ErrNoCookieJar
	}
	p.creds = creds
	if creds.Empty() {
		return nil, p.fail(&AuthError{Reason: "missing username or password", Err: ErrBadCredentials})
	}

	p.begin()
	defer func() { p.inLogin = false }()

	page, err := p.browser.Submit(ctx, http.MethodPost, p.endpoints.LoginURL, p.form())
	if err != nil {
		return nil, p.fail(err)
	}
	if err := p.assess(page, true); err != nil {
		return page, p.fail(err)
	}
	p.succeed(page)
	return page, nil
}

// Logout disables autologin, ends the server session when there was one and
// forgets the session cookies. It always leaves the plugin LoggedOut; a
// failing logout request is only logged.
func (p *LoginPlugin) Logout(ctx context.Context) error {
	p.autologin = false
	hadSession := p.state == LoggedIn || p.sessionCookie() != nil

	if hadSession && p.endpoints.LogoutURL != "" && p.browser != nil {
		if _, err := p.browser.Dispatch(ctx, &browser.Request{Method: http.MethodGet, URL: p.endpoints.LogoutURL}); err != nil {
			p.log.Warn("logout request failed", zap.Error(err))
		}
	}
	if p.jar != nil {
		p.jar.Expire(p.endpoints.sessionURL(), p.endpoints.SessionCookie, p.endpoints.SessionCookiePath)
		p.jar.Expire(p.endpoints.loginHost(), gsmCookie, "/")
	}

	if hadSession {
		p.log.Info("logged out", zap.String("username", p.creds.Username()))
	}
	p.state = LoggedOut
	p.err = nil
	return nil
}

// SetAutologin turns automatic answering of login pages on or off. Non-empty
// parts of creds replace the stored ones.
func (p *LoginPlugin) SetAutologin(creds Credentials, enabled bool) {
	if creds.username != "" {
		p.creds.username = creds.username
	}
	if creds.password != "" {
		p.creds.password = creds.password
	}
	p.autologin = enabled
}

func (p *LoginPlugin) handleLoginPage(ctx context.Context, f *redirect.Follower, page *browser.Page) (*browser.Page, error) {
	if p.creds.Empty() {
		return nil, nil
	}
	p.begin()
	defer func() { p.inLogin = false }()

	result, err := f.Follow(ctx, redirect.Hop{
		Method: http.MethodPost,
		URL:    p.endpoints.LoginURL,
		Form:   p.form(),
	})
	if err != nil {
		return nil, p.fail(err)
	}
	if err := p.assess(result, false); err != nil {
		return nil, p.fail(err)
	}
	p.succeed(result)
	return result, nil
}

func (p *LoginPlugin) begin() {
	p.state = Authenticating
	p.err = nil
	p.inLogin = true
	p.log.Info("logging in", zap.String("username", p.creds.Username()))
}

func (p *LoginPlugin) form() url.Values {
	return url.Values{
		"j_username": {p.creds.username},
		"j_password": {p.creds.password},
		"login":      {"Login"},
	}
}

// assess decides whether page ends a successful login. An explicit login
// must land on the landing page; autologin lands wherever the user was
// going, so there it is enough not to be shown the login form again.
func (p *LoginPlugin) assess(page *browser.Page, requireLanding bool) error {
	text := page.Text()
	for _, m := range failureMarkers {
		if strings.Contains(text, m.text) {
			return &AuthError{Reason: m.err.Error(), URL: page.URL(), Detail: p.detail(page), Err: m.err}
		}
	}

	unexpected := p.endpoints.LoginPage.MatchString(text)
	if requireLanding {
		unexpected = !p.endpoints.Landing.MatchString(page.URL())
	}
	if unexpected {
		return &AuthError{
			Reason: ErrUnexpectedLanding.Error(),
			URL:    page.URL(),
			Detail: p.detail(page),
			Err:    ErrUnexpectedLanding,
		}
	}

	if p.sessionCookie() == nil {
		return &AuthError{Reason: ErrNoSessionCookie.Error(), URL: page.URL(), Err: ErrNoSessionCookie}
	}
	return nil
}

// detail extracts a short, markup free description of a failure page
func (p *LoginPlugin) detail(page *browser.Page) string {
	raw, _ := page.Document().Find(".error, .errors, .alert, #error, #msg").First().Html()
	if strings.TrimSpace(raw) == "" {
		raw = page.Title()
	}
	clean := html.UnescapeString(p.policy.Sanitize(raw))
	return strings.Join(strings.Fields(clean), " ")
}

func (p *LoginPlugin) fail(err error) error {
	p.state = Failed
	p.err = err
	p.log.Warn("login failed", zap.String("username", p.creds.Username()), zap.Error(err))
	return err
}

func (p *LoginPlugin) succeed(page *browser.Page) {
	p.state = LoggedIn
	p.err = nil
	p.log.Info("logged in", zap.String("username", p.creds.Username()), zap.String("url", page.URL()))
}

func (p *LoginPlugin) loginMethod(ctx context.Context, args ...any) (any, error) {
	var creds Credentials
	switch {
	case len(args) == 1:
		c, ok := args[0].(Credentials)
		if !ok {
			return nil, fmt.Errorf("%s: want Credentials, got %T", ExtensionLogin, args[0])
		}
		creds = c
	case len(args) == 2:
		user, ok1 := args[0].(string)
		pass, ok2 := args[1].(string)
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("%s: want username and password strings", ExtensionLogin)
		}
		creds = NewCredentials(user, pass)
	default:
		return nil, fmt.Errorf("%s: want 1 or 2 arguments, got %d", ExtensionLogin, len(args))
	}

	page, err := p.Login(ctx, creds)
	if page == nil {
		return nil, err
	}
	return page, err
}

func (p *LoginPlugin) setAutologinMethod(ctx context.Context, args ...any) (any, error) {
	enabled := true
	var creds Credentials

	switch len(args) {
	case 0:
	case 1:
		v, ok := args[0].(bool)
		if !ok {
			return nil, fmt.Errorf("%s: want bool, got %T", ExtensionSetAutologin, args[0])
		}
		enabled = v
	case 2, 3:
		user, ok1 := args[0].(string)
		pass, ok2 := args[1].(string)
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("%s: want username and password strings", ExtensionSetAutologin)
		}
		creds = NewCredentials(user, pass)
		if len(args) == 3 {
			v, ok := args[2].(bool)
			if !ok {
				return nil, fmt.Errorf("%s: want bool, got %T", ExtensionSetAutologin, args[2])
			}
			enabled = v
		}
	default:
		return nil, fmt.Errorf("%s: want at most 3 arguments, got %d", ExtensionSetAutologin, len(args))
	}

	p.SetAutologin(creds, enabled)
	return nil, nil
}
