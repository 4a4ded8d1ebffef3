package uf

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/GriffinCanCode/gatorbrowse/internal/browser"
	"github.com/GriffinCanCode/gatorbrowse/internal/plugin"
)

// ExtensionLoadIsisPage loads an ISIS page by its sidebar code
const ExtensionLoadIsisPage = "load_isis_page"

const isisPageKey = "MDASTRAN"

// IsisPlugin loads ISIS pages by code, such as RSI-GRADES or TRQ-SPEND.
// Automated course adds and section searches are forbidden by the site.
type IsisPlugin struct {
	baseURL string
	browser *browser.Browser
}

// NewIsis creates the ISIS tools plugin
func NewIsis(endpoints Endpoints) *IsisPlugin {
	return &IsisPlugin{baseURL: endpoints.IsisURL}
}

// Name returns the plugin name
func (p *IsisPlugin) Name() string { return "uf_isis" }

// Contribute adds load_isis_page
func (p *IsisPlugin) Contribute(b *browser.Browser) (*plugin.Descriptor, error) {
	p.browser = b
	return plugin.Describe().
		Extend(ExtensionLoadIsisPage, func(ctx context.Context, args ...any) (any, error) {
			if len(args) != 1 {
				return nil, fmt.Errorf("%s: want 1 argument, got %d", ExtensionLoadIsisPage, len(args))
			}
			code, ok := args[0].(string)
			if !ok {
				return nil, fmt.Errorf("%s: code must be a string, got %T", ExtensionLoadIsisPage, args[0])
			}
			page, err := p.LoadPage(ctx, code)
			if err != nil {
				return nil, err
			}
			return page, nil
		}).
		Build(), nil
}

// LoadPage navigates to the ISIS page called code with a GET request, so
// the code shows in the loaded URL.
func (p *IsisPlugin) LoadPage(ctx context.Context, code string) (*browser.Page, error) {
	if p.browser == nil {
		return nil, errors.New("isis plugin is not installed")
	}
	return p.browser.Submit(ctx, http.MethodGet, p.baseURL, url.Values{isisPageKey: {code}})
}
