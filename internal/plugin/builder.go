package plugin

import (
	"reflect"
)

type overrideDecl struct {
	name  string
	want  string
	apply func(prev any) (any, bool)
}

type memberDecl struct {
	name  string
	kind  Kind
	value any
}

// Builder collects the contributions of one plugin
type Builder struct {
	overrides []overrideDecl
	members   []memberDecl
	handlers  []Handler
	headers   []Header
}

// Descriptor is the immutable result of Builder.Build
type Descriptor struct {
	overrides []overrideDecl
	members   []memberDecl
	handlers  []Handler
	headers   []Header
}

// Describe starts a new contribution set
func Describe() *Builder {
	return &Builder{}
}

// Extend adds a new method named name
func (b *Builder) Extend(name string, fn Method) *Builder {
	b.members = append(b.members, memberDecl{name: name, kind: KindExtension, value: fn})
	return b
}

// Property adds a new computed attribute. set may be nil.
func (b *Builder) Property(name string, get func() any, set func(any) error) *Builder {
	b.members = append(b.members, memberDecl{
		name:  name,
		kind:  KindProperty,
		value: Property{Get: get, Set: set},
	})
	return b
}

// Handler adds a transport interceptor
func (b *Builder) Handler(h Handler) *Builder {
	b.handlers = append(b.handlers, h)
	return b
}

// Header adds a default request header
func (b *Builder) Header(key, value string) *Builder {
	b.headers = append(b.headers, Header{Key: key, Value: value})
	return b
}

// Override replaces the member called name. wrap receives the implementation
// resolved before this plugin was installed and returns the replacement.
// T must be the exact type the member was defined with.
func Override[T any](b *Builder, name string, wrap func(next T) T) *Builder {
	decl := overrideDecl{
		name: name,
		want: reflect.TypeOf((*T)(nil)).Elem().String(),
	}
	if wrap != nil {
		decl.apply = func(prev any) (any, bool) {
			next, ok := prev.(T)
			if !ok {
				return nil, false
			}
			return wrap(next), true
		}
	}
	b.overrides = append(b.overrides, decl)
	return b
}

// Build freezes the collected contributions
func (b *Builder) Build() *Descriptor {
	return &Descriptor{
		overrides: append([]overrideDecl(nil), b.overrides...),
		members:   append([]memberDecl(nil), b.members...),
		handlers:  append([]Handler(nil), b.handlers...),
		headers:   append([]Header(nil), b.headers...),
	}
}

// Empty reports whether the descriptor contributes nothing
func (d *Descriptor) Empty() bool {
	return d == nil || (len(d.overrides) == 0 && len(d.members) == 0 &&
		len(d.handlers) == 0 && len(d.headers) == 0)
}
