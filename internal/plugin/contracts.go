package plugin

import (
	"context"
	"net/http"
)

// Kind identifies the role a member plays in the resolution table
type Kind int

const (
	KindHost Kind = iota
	KindOverride
	KindExtension
	KindProperty
	KindHandler
	KindHeader
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindHost:
		return "host"
	case KindOverride:
		return "override"
	case KindExtension:
		return "extension"
	case KindProperty:
		return "property"
	case KindHandler:
		return "handler"
	case KindHeader:
		return "header"
	default:
		return "unknown"
	}
}

// Method is the shape of an extension method
type Method func(ctx context.Context, args ...any) (any, error)

// Property is a computed attribute. Set may be nil for read-only properties.
type Property struct {
	Get func() any
	Set func(value any) error
}

// ReadOnly reports whether the property has no write path
func (p Property) ReadOnly() bool {
	return p.Set == nil
}

// Handler wraps the transport used for every fetch the host performs
type Handler func(next http.RoundTripper) http.RoundTripper

// RoundTripFunc adapts a function to an http.RoundTripper
type RoundTripFunc func(req *http.Request) (*http.Response, error)

// RoundTrip calls f
func (f RoundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// Header is a default request header
type Header struct {
	Key   string
	Value string
}

// Provenance explains one layer of a resolved member
type Provenance struct {
	Plugin string
	Kind   Kind
	Order  int
}

// Record is what a single install contributed to the host
type Record struct {
	Plugin     string
	Order      int
	Overrides  []string
	Extensions []string
	Properties []string
	Handlers   int
	Headers    []Header
}

// HostOwner is the owner name used for members defined by the host itself
const HostOwner = "host"
