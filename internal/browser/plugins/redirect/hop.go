package redirect

import (
	"context"
	"net/url"
	"time"
)

// HopKind tells where a redirect signal came from
type HopKind int

const (
	// HopHTTP is a 3xx response followed by the transport
	HopHTTP HopKind = iota
	// HopDocument is a redirect found inside a page and followed by a handler
	HopDocument
)

// String returns the string representation of the hop kind
func (k HopKind) String() string {
	switch k {
	case HopHTTP:
		return "http"
	case HopDocument:
		return "document"
	default:
		return "unknown"
	}
}

// Hop describes one step of a redirect chain
type Hop struct {
	Kind   HopKind
	Method string
	URL    string
	Form   url.Values
	Delay  time.Duration
	From   string
	Status int
}

// Chain collects the hops observed during one top-level navigation
type Chain struct {
	hops []Hop
}

// Hops returns a copy of the observed hops, oldest first
func (c *Chain) Hops() []Hop {
	if c == nil {
		return nil
	}
	return append([]Hop(nil), c.hops...)
}

// Len returns the number of hops of every kind
func (c *Chain) Len() int {
	if c == nil {
		return 0
	}
	return len(c.hops)
}

// Followed returns the number of document hops, which is what the hop
// bound applies to. HTTP hops are bounded by the transport.
func (c *Chain) Followed() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, h := range c.hops {
		if h.Kind == HopDocument {
			n++
		}
	}
	return n
}

func (c *Chain) add(h Hop) {
	c.hops = append(c.hops, h)
}

type chainKey struct{}

// WithChain returns a context carrying c. Every redirect plugin consulted
// during a navigation records into and bounds against the same chain.
func WithChain(ctx context.Context, c *Chain) context.Context {
	return context.WithValue(ctx, chainKey{}, c)
}

// ChainFrom returns the chain carried by ctx, or nil
func ChainFrom(ctx context.Context) *Chain {
	c, _ := ctx.Value(chainKey{}).(*Chain)
	return c
}
