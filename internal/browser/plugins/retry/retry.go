// Package retry retries transient fetch failures. The browser itself never
// retries; installing this plugin is how a caller opts in.
package retry

import (
	"context"
	"net/http"

	"github.com/GriffinCanCode/gatorbrowse/internal/browser"
	"github.com/GriffinCanCode/gatorbrowse/internal/infrastructure/config"
	"github.com/GriffinCanCode/gatorbrowse/internal/plugin"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

// Plugin wraps the transport in a retrying round tripper
type Plugin struct {
	cfg config.RetryConfig
}

// New creates a retry plugin
func New(cfg config.RetryConfig) *Plugin {
	return &Plugin{cfg: cfg}
}

// Name returns the plugin name
func (p *Plugin) Name() string { return "retry" }

// Contribute adds the retry handler
func (p *Plugin) Contribute(b *browser.Browser) (*plugin.Descriptor, error) {
	log := b.Logger().Named("retry")

	return plugin.Describe().Handler(func(next http.RoundTripper) http.RoundTripper {
		client := retryablehttp.NewClient()
		// redirects are left to the browser's own client
		client.HTTPClient = &http.Client{
			Transport: next,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		}
		client.RetryMax = p.cfg.MaxRetries
		if p.cfg.MinWait > 0 {
			client.RetryWaitMin = p.cfg.MinWait
		}
		if p.cfg.MaxWait > 0 {
			client.RetryWaitMax = p.cfg.MaxWait
		}
		client.CheckRetry = checkRetry
		client.ErrorHandler = retryablehttp.PassthroughErrorHandler
		client.Logger = leveled{log.Sugar()}
		client.RequestLogHook = func(_ retryablehttp.Logger, req *http.Request, attempt int) {
			if attempt > 0 {
				log.Info("retrying fetch", zap.String("url", req.URL.String()), zap.Int("attempt", attempt))
			}
		}
		rt := &retryablehttp.RoundTripper{Client: client}
		return plugin.RoundTripFunc(func(req *http.Request) (*http.Response, error) {
			return rt.RoundTrip(req.WithContext(context.WithValue(req.Context(), methodKey{}, req.Method)))
		})
	}).Build(), nil
}

type methodKey struct{}

// checkRetry retries connection errors and 5xx responses of idempotent
// requests. Anything else is sent once: the server may have acted on it
// even when the connection dropped.
func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if method, ok := ctx.Value(methodKey{}).(string); ok && !idempotent(method) {
		return false, nil
	}
	if resp != nil && resp.Request != nil && !idempotent(resp.Request.Method) {
		return false, nil
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

func idempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

// leveled adapts a zap logger to retryablehttp.LeveledLogger
type leveled struct {
	s *zap.SugaredLogger
}

func (l leveled) Error(msg string, kv ...interface{}) { l.s.Errorw(msg, kv...) }
func (l leveled) Warn(msg string, kv ...interface{})  { l.s.Warnw(msg, kv...) }
func (l leveled) Info(msg string, kv ...interface{})  { l.s.Infow(msg, kv...) }
func (l leveled) Debug(msg string, kv ...interface{}) { l.s.Debugw(msg, kv...) }
