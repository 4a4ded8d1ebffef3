// Package trace gives every navigation a trace ID and records each page
// load and round trip in it as a span.
//
// Install it last so its load_page layer is the outermost one; redirect
// hops followed by other plugins then appear as child spans of the
// navigation that caused them.
package trace

import (
	"context"
	"net/http"

	"github.com/GriffinCanCode/gatorbrowse/internal/browser"
	"github.com/GriffinCanCode/gatorbrowse/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/gatorbrowse/internal/plugin"
)

// PropertyLastTrace is the read-only property holding the trace ID of the
// most recent top-level load
const PropertyLastTrace = "last_trace_id"

// DefaultKeep is how many finished spans a plugin remembers
const DefaultKeep = 256

// Plugin records spans into a Tracer
type Plugin struct {
	tracer *tracing.Tracer
	keep   int
	last   tracing.TraceID
}

// New creates a trace plugin remembering up to keep spans
func New(keep int) *Plugin {
	return &Plugin{keep: keep}
}

// Name returns the plugin name
func (p *Plugin) Name() string { return "trace" }

// Tracer returns the tracer, or nil before the plugin is installed
func (p *Plugin) Tracer() *tracing.Tracer { return p.tracer }

// LastTrace returns the trace ID of the most recent top-level load
func (p *Plugin) LastTrace() tracing.TraceID { return p.last }

// Contribute adds the tracing handler, the load_page override and the
// last trace property
func (p *Plugin) Contribute(b *browser.Browser) (*plugin.Descriptor, error) {
	p.tracer = tracing.New(b.ID(), b.Logger().Named("trace"), p.keep)

	d := plugin.Describe().
		Handler(func(next http.RoundTripper) http.RoundTripper {
			return tracing.Transport(p.tracer, next)
		}).
		Property(PropertyLastTrace, func() any { return string(p.last) }, nil)

	plugin.Override(d, browser.SlotLoadPage, func(next browser.LoadFunc) browser.LoadFunc {
		return func(ctx context.Context, req *browser.Request) (*browser.Page, error) {
			span, ctx := p.tracer.StartSpan(ctx, "load_page")
			span.SetTag("method", req.Method)
			span.SetTag("url", req.URL)
			if span.ParentID == "" {
				p.last = span.TraceID
			}
			defer p.tracer.Submit(span)

			page, err := next(ctx, req)
			if err != nil {
				span.SetError(err)
				return nil, err
			}
			span.SetStatus(page.Status())
			span.SetTag("final_url", page.URL())
			return page, nil
		}
	})
	return d.Build(), nil
}
