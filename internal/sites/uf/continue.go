package uf

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/GriffinCanCode/gatorbrowse/internal/browser"
	"github.com/GriffinCanCode/gatorbrowse/internal/browser/plugins/redirect"
	"github.com/GriffinCanCode/gatorbrowse/internal/plugin"
	"github.com/PuerkitoBio/goquery"
)

// ContinuePlugin submits the Shibboleth page that hands the SAML response
// back to the service. Browsers submit it with JavaScript on load.
type ContinuePlugin struct {
	endpoints Endpoints
}

// NewContinue creates the SAML continuation plugin
func NewContinue(endpoints Endpoints) *ContinuePlugin {
	return &ContinuePlugin{endpoints: endpoints}
}

// Name returns the plugin name
func (p *ContinuePlugin) Name() string { return "uf_login_continue" }

// Contribute installs the continuation as a redirect handler
func (p *ContinuePlugin) Contribute(b *browser.Browser) (*plugin.Descriptor, error) {
	return redirect.New(p.Name(), redirect.HandlerFunc(p.handle),
		redirect.WithURLMatch(redirect.Func(p.endpoints.Continue.MatchString)),
	).Contribute(b)
}

func (p *ContinuePlugin) handle(ctx context.Context, f *redirect.Follower, page *browser.Page) (*browser.Page, error) {
	action, values, ok := samlForm(page.Document())
	if !ok {
		return nil, nil
	}
	return f.Follow(ctx, redirect.Hop{Method: http.MethodPost, URL: action, Form: values})
}

// samlForm finds the self-submitting SAML POST form and its fields
func samlForm(doc *goquery.Document) (string, url.Values, bool) {
	onload, _ := doc.Find("body").First().Attr("onload")
	if !strings.Contains(onload, "submit()") {
		return "", nil, false
	}

	form := doc.Find("form").FilterFunction(func(_ int, s *goquery.Selection) bool {
		method, _ := s.Attr("method")
		action, _ := s.Attr("action")
		return strings.EqualFold(method, http.MethodPost) && strings.Contains(action, "SAML2")
	}).First()
	if form.Length() == 0 {
		return "", nil, false
	}
	action, _ := form.Attr("action")

	values := url.Values{}
	form.Find("input[name]").Each(func(_ int, in *goquery.Selection) {
		if kind, _ := in.Attr("type"); strings.EqualFold(kind, "submit") {
			return
		}
		name, _ := in.Attr("name")
		value, _ := in.Attr("value")
		values.Add(name, value)
	})
	return action, values, true
}
