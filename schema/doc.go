// Package schema describes the declarations produced by the external
// declaration resolver: the classes, enums and free functions that are
// exposed to generated bindings, grouped by the declaration file they were
// parsed from.
//
// Declarations are read-only inputs for a build run with one exception: the
// enricher in this package may add a synthetic "__str__" alias to a
// declaration's method table, see [AddStringAliases].
//
// # Method tables
//
// The resolver reports methods as an ordered mapping from method name to
// overloads. Order matters to the enricher (first match wins), so
// [MethodTable] keeps insertion order and serializes as a JSON array:
//
//	"methods": [
//	    {"name": "toString", "overloads": [{"arguments": []}]},
//	    {"name": "size", "overloads": [{"arguments": []}]}
//	]
package schema
