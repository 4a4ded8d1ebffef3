/*
Package tracing groups the work done for one navigation under a trace.

A navigation often takes several requests: HTTP redirects, meta refreshes,
login form posts and SAML continuations. Each request is a span, and every
span of one navigation shares a trace ID, so a single grep over the logs
shows the whole chain.

Spans are reported through zap when submitted: at debug level normally and
at warn level when they carry an error. A Tracer can also remember the most
recent spans for inspection.

# Usage

	tracer := tracing.New("browser", logger, 100)

	span, ctx := tracer.StartSpan(ctx, "load_page")
	defer tracer.Submit(span)

	client := &http.Client{Transport: tracing.Transport(tracer, http.DefaultTransport)}

Trace IDs are local. They are never added to outgoing requests.
*/
package tracing
