// Package metrics records fetch and page load metrics for a browser.
package metrics

import (
	"context"
	"net/http"

	"github.com/GriffinCanCode/gatorbrowse/internal/browser"
	"github.com/GriffinCanCode/gatorbrowse/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/gatorbrowse/internal/plugin"
	"github.com/prometheus/client_golang/prometheus"
)

// PropertyMetrics is the read-only property exposing *monitoring.Metrics
const PropertyMetrics = "metrics"

// Plugin instruments the transport and the load_page chain
type Plugin struct {
	metrics *monitoring.Metrics
}

// New creates a plugin recording into m. A nil m gets a private registry.
func New(m *monitoring.Metrics) *Plugin {
	if m == nil {
		m = monitoring.NewMetrics(prometheus.NewRegistry())
	}
	return &Plugin{metrics: m}
}

// Name returns the plugin name
func (p *Plugin) Name() string { return "metrics" }

// Metrics returns the collectors the plugin records into
func (p *Plugin) Metrics() *monitoring.Metrics { return p.metrics }

// Contribute adds the instrumenting handler, the load_page override and
// the metrics property
func (p *Plugin) Contribute(b *browser.Browser) (*plugin.Descriptor, error) {
	d := plugin.Describe().
		Handler(func(next http.RoundTripper) http.RoundTripper {
			return monitoring.Transport(p.metrics, next)
		}).
		Property(PropertyMetrics, func() any { return p.metrics }, nil)

	plugin.Override(d, browser.SlotLoadPage, func(next browser.LoadFunc) browser.LoadFunc {
		return func(ctx context.Context, req *browser.Request) (*browser.Page, error) {
			page, err := next(ctx, req)
			if err != nil {
				p.metrics.RecordDispatch("error")
				return nil, err
			}
			p.metrics.RecordDispatch("ok")
			return page, nil
		}
	})
	return d.Build(), nil
}
