// Package throttle paces fetches and stops fetching from hosts that keep
// failing.
package throttle

import (
	"context"
	"fmt"
	"net/http"

	"github.com/GriffinCanCode/gatorbrowse/internal/browser"
	"github.com/GriffinCanCode/gatorbrowse/internal/infrastructure/config"
	"github.com/GriffinCanCode/gatorbrowse/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/gatorbrowse/internal/plugin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ExtensionBreakerState is the extension reporting a host's breaker state
const ExtensionBreakerState = "breaker_state"

// Plugin rate limits every fetch and keeps one circuit breaker per host.
// Responses with a 5xx status count as failures.
type Plugin struct {
	cfg      config.ThrottleConfig
	limiter  *rate.Limiter
	breakers *resilience.Group
}

// New creates a throttle plugin. A zero RequestsPerSecond disables pacing.
func New(cfg config.ThrottleConfig) *Plugin {
	p := &Plugin{cfg: cfg}
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		p.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	return p
}

// Name returns the plugin name
func (p *Plugin) Name() string { return "throttle" }

// Breakers returns the per-host breakers
func (p *Plugin) Breakers() *resilience.Group { return p.breakers }

// Contribute adds the throttling handler and the breaker_state extension
func (p *Plugin) Contribute(b *browser.Browser) (*plugin.Descriptor, error) {
	log := b.Logger().Named("throttle")
	p.breakers = resilience.NewGroup(resilience.Settings{
		Failures: p.cfg.BreakerFailures,
		Cooldown: p.cfg.BreakerCooldown,
		OnStateChange: func(host string, from, to resilience.State) {
			log.Warn("breaker state changed",
				zap.String("host", host),
				zap.Stringer("from", from),
				zap.Stringer("to", to))
		},
	})

	return plugin.Describe().
		Handler(p.handler).
		Extend(ExtensionBreakerState, func(ctx context.Context, args ...any) (any, error) {
			if len(args) != 1 {
				return nil, fmt.Errorf("%s: want 1 argument, got %d", ExtensionBreakerState, len(args))
			}
			host, ok := args[0].(string)
			if !ok {
				return nil, fmt.Errorf("%s: host must be a string, got %T", ExtensionBreakerState, args[0])
			}
			return p.breakers.Get(host).State(), nil
		}).
		Build(), nil
}

func (p *Plugin) handler(next http.RoundTripper) http.RoundTripper {
	return plugin.RoundTripFunc(func(req *http.Request) (*http.Response, error) {
		if p.limiter != nil {
			if err := p.limiter.Wait(req.Context()); err != nil {
				return nil, err
			}
		}

		host := req.URL.Host
		ticket, err := p.breakers.Get(host).Allow()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", host, err)
		}

		resp, err := next.RoundTrip(req)
		ticket.Done(err == nil && resp.StatusCode < http.StatusInternalServerError)
		return resp, err
	})
}
