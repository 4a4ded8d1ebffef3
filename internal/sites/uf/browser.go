package uf

import (
	"github.com/GriffinCanCode/gatorbrowse/internal/browser"
	"github.com/GriffinCanCode/gatorbrowse/internal/browser/plugins/cookies"
	"github.com/GriffinCanCode/gatorbrowse/internal/browser/plugins/metrics"
	"github.com/GriffinCanCode/gatorbrowse/internal/browser/plugins/redirect"
	"github.com/GriffinCanCode/gatorbrowse/internal/browser/plugins/retry"
	"github.com/GriffinCanCode/gatorbrowse/internal/browser/plugins/throttle"
	"github.com/GriffinCanCode/gatorbrowse/internal/browser/plugins/trace"
	"github.com/GriffinCanCode/gatorbrowse/internal/browser/plugins/useragent"
	"github.com/GriffinCanCode/gatorbrowse/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewBrowser creates a browser with the plugins needed to use the UF
// sites: cookies, a desktop user agent, throttling, retries, metrics, meta
// refresh, ISIS tools, GatorLink login and its SAML continuation, with
// navigation tracing outermost. Extra options are applied after the
// configured ones.
func NewBrowser(cfg *config.Config, log *zap.Logger, opts ...browser.Option) (*browser.Browser, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	endpoints, err := EndpointsFromConfig(cfg.Site)
	if err != nil {
		return nil, err
	}
	jar, err := cookies.New()
	if err != nil {
		return nil, err
	}

	plugins := []browser.Plugin{
		jar,
		useragent.New(cfg.Browser.UserAgent),
		throttle.New(cfg.Throttle),
	}
	if cfg.Retry.MaxRetries > 0 {
		plugins = append(plugins, retry.New(cfg.Retry))
	}
	plugins = append(plugins,
		metrics.New(nil),
		redirect.NewMetaRefresh(cfg.Browser.MetaRefreshMax, redirect.WithMaxHops(cfg.Browser.MaxRedirectHops)),
		NewIsis(endpoints),
		NewLogin(endpoints),
		NewContinue(endpoints),
		trace.New(trace.DefaultKeep),
	)

	base := []browser.Option{
		browser.WithLogger(log),
		browser.WithConfig(cfg.Browser),
		browser.WithPlugins(plugins...),
	}
	return browser.New(append(base, opts...)...)
}
