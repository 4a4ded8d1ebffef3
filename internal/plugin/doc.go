// Package plugin provides the capability registry used to compose
// independently authored behavior onto a host object.
//
// A plugin never touches the host directly. It declares what it contributes
// through a Builder and hands the resulting Descriptor to the host, which
// installs it into a Registry:
//
//   - Override: replaces an existing member; the new implementation receives
//     the previously resolved one as next and may chain to it
//   - Extension: adds a new method
//   - Property: adds a new computed attribute (getter required, setter optional)
//   - Handler: wraps the network transport used for every fetch
//   - Header: adds a default request header to every fetch
//
// Resolution is computed once per install, in installation order. The most
// recently installed override wins. Two plugins may not extend the same name;
// that is reported as a ConflictError rather than merged.
//
// Example Usage:
//
//	d := plugin.Describe().
//		Extend("greet", func(ctx context.Context, args ...any) (any, error) {
//			return "hello", nil
//		}).
//		Header("X-Trace", "1")
//	plugin.Override(d, "load_page", func(next LoadFunc) LoadFunc { ... })
//
//	record, err := registry.Install("greeter", d.Build())
//
// The Registry is not safe for concurrent use; hosts install plugins during
// construction and read the table afterwards from a single goroutine.
package plugin
