package plugin

import (
	"context"
	"fmt"
	"sort"
)

type entry struct {
	kind  Kind
	owner string
	value any
	trace []Provenance
}

func (e *entry) clone() *entry {
	c := *e
	c.trace = append([]Provenance(nil), e.trace...)
	return &c
}

// Registry is the resolution table for one host
type Registry struct {
	members  map[string]*entry
	records  []Record
	handlers []Handler
	headers  []Header
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		members: make(map[string]*entry),
	}
}

// Define registers a member owned by the host. Hosts define their
// overridable members before any plugin is installed.
func (r *Registry) Define(name string, impl any) error {
	if name == "" || impl == nil {
		return &ShapeError{Plugin: HostOwner, Member: name, Kind: KindHost, Reason: "empty name or nil implementation"}
	}
	if e, ok := r.members[name]; ok {
		return &ConflictError{Plugin: HostOwner, Member: name, Owner: e.owner}
	}
	r.members[name] = &entry{
		kind:  KindHost,
		owner: HostOwner,
		value: impl,
		trace: []Provenance{{Plugin: HostOwner, Kind: KindHost}},
	}
	return nil
}

// Install validates every contribution in d and applies them together.
// Nothing is applied when an error is returned.
func (r *Registry) Install(name string, d *Descriptor) (Record, error) {
	if name == "" {
		return Record{}, &ShapeError{Plugin: name, Kind: KindExtension, Reason: "plugin has no name"}
	}
	if d == nil {
		d = &Descriptor{}
	}

	order := len(r.records) + 1
	rec := Record{Plugin: name, Order: order}
	staged := make(map[string]*entry)

	lookup := func(member string) *entry {
		if e, ok := staged[member]; ok {
			return e
		}
		return r.members[member]
	}

	for _, m := range d.members {
		if m.name == "" {
			return Record{}, &ShapeError{Plugin: name, Kind: m.kind, Reason: "empty member name"}
		}
		if err := checkMemberShape(m); err != "" {
			return Record{}, &ShapeError{Plugin: name, Member: m.name, Kind: m.kind, Reason: err}
		}
		if existing := lookup(m.name); existing != nil {
			return Record{}, &ConflictError{Plugin: name, Member: m.name, Owner: existing.owner}
		}
		staged[m.name] = &entry{
			kind:  m.kind,
			owner: name,
			value: m.value,
			trace: []Provenance{{Plugin: name, Kind: m.kind, Order: order}},
		}
		if m.kind == KindProperty {
			rec.Properties = append(rec.Properties, m.name)
		} else {
			rec.Extensions = append(rec.Extensions, m.name)
		}
	}

	for _, o := range d.overrides {
		if o.apply == nil {
			return Record{}, &ShapeError{Plugin: name, Member: o.name, Kind: KindOverride, Reason: "nil override"}
		}
		target := lookup(o.name)
		if target == nil {
			return Record{}, &ShapeError{Plugin: name, Member: o.name, Kind: KindOverride, Reason: "no member to override"}
		}
		next, ok := o.apply(target.value)
		if !ok {
			return Record{}, &ShapeError{
				Plugin: name,
				Member: o.name,
				Kind:   KindOverride,
				Reason: fmt.Sprintf("override expects %s, member is %T", o.want, target.value),
			}
		}
		e := target.clone()
		e.value = next
		e.trace = append(e.trace, Provenance{Plugin: name, Kind: KindOverride, Order: order})
		staged[o.name] = e
		rec.Overrides = append(rec.Overrides, o.name)
	}

	for _, h := range d.handlers {
		if h == nil {
			return Record{}, &ShapeError{Plugin: name, Kind: KindHandler, Reason: "nil handler"}
		}
	}
	for _, h := range d.headers {
		if h.Key == "" {
			return Record{}, &ShapeError{Plugin: name, Kind: KindHeader, Reason: "empty header key"}
		}
	}

	for member, e := range staged {
		r.members[member] = e
	}
	r.handlers = append(r.handlers, d.handlers...)
	r.headers = append(r.headers, d.headers...)
	rec.Handlers = len(d.handlers)
	rec.Headers = append([]Header(nil), d.headers...)
	r.records = append(r.records, rec)

	return rec, nil
}

func checkMemberShape(m memberDecl) string {
	switch m.kind {
	case KindExtension:
		if fn, _ := m.value.(Method); fn == nil {
			return "extension is not a method"
		}
	case KindProperty:
		p, ok := m.value.(Property)
		if !ok || p.Get == nil {
			return "property has no getter"
		}
	}
	return ""
}

// Resolve returns the resolved member called name as a T
func Resolve[T any](r *Registry, name string) (T, error) {
	var zero T
	e, ok := r.members[name]
	if !ok {
		return zero, fmt.Errorf("%w: %s", ErrUnknownMember, name)
	}
	v, ok := e.value.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s is %T", ErrKindMismatch, name, e.value)
	}
	return v, nil
}

// Call invokes the method called name
func (r *Registry) Call(ctx context.Context, name string, args ...any) (any, error) {
	fn, err := Resolve[Method](r, name)
	if err != nil {
		return nil, err
	}
	return fn(ctx, args...)
}

// Get reads the property called name
func (r *Registry) Get(name string) (any, error) {
	p, err := Resolve[Property](r, name)
	if err != nil {
		return nil, err
	}
	return p.Get(), nil
}

// Set writes the property called name
func (r *Registry) Set(name string, value any) error {
	p, err := Resolve[Property](r, name)
	if err != nil {
		return err
	}
	if p.ReadOnly() {
		return fmt.Errorf("%w: %s", ErrReadOnly, name)
	}
	return p.Set(value)
}

// Has reports whether name resolves to anything
func (r *Registry) Has(name string) bool {
	_, ok := r.members[name]
	return ok
}

// Owner returns who defined name first, or "" if undefined
func (r *Registry) Owner(name string) string {
	if e, ok := r.members[name]; ok {
		return e.owner
	}
	return ""
}

// Explain lists every layer of name, definition first, winning override last
func (r *Registry) Explain(name string) []Provenance {
	e, ok := r.members[name]
	if !ok {
		return nil
	}
	return append([]Provenance(nil), e.trace...)
}

// Names returns all member names, sorted
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.members))
	for name := range r.members {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Records returns one record per install, in installation order
func (r *Registry) Records() []Record {
	return append([]Record(nil), r.records...)
}

// Handlers returns all installed handlers in installation order
func (r *Registry) Handlers() []Handler {
	return append([]Handler(nil), r.handlers...)
}

// Headers returns all installed default headers in installation order
func (r *Registry) Headers() []Header {
	return append([]Header(nil), r.headers...)
}
