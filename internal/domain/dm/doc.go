// Package dm implements the domain layer for documenting BYOND-style object trees.
//
// Objects in a DM tree are addressed by slash-delimited paths such as
// /turf/simulated/proc/Entered. This package owns the three pieces of logic
// that depend on that hierarchy and nothing else:
//   - Contains only pure Go code with standard library imports
//   - Parses free-form signature text into a fully-qualified path (ParseSignature)
//   - Keeps the build-scoped symbol table (Registry)
//   - Resolves partial references against the table (Resolve, ProcessLink)
//
// # Core Types
//
// Path is a value type holding ordered segments plus an absolute flag. The zero
// Path means "no container" and is how callers thread the enclosing container
// through parsing and resolution without shared state.
//
// Kind is a closed enumeration of the four documented symbol kinds. Presentation
// strings live in a lookup table (see KindInfo) instead of per-kind types.
//
// Registry maps canonical paths to SymbolEntry values. It is safe for concurrent
// use; writes are serialized so that the last registration of a path wins in a
// well-defined order. Cross-document collisions surface as
// *DuplicateDefinitionWarning, or are rejected when strict mode is enabled.
//
// # Resolution Order
//
// Resolve tries the bare target first and then the container-qualified form
// (SearchGeneral), or the reverse (SearchSpecific). Lookups are exact string
// comparisons against canonical keys; no normalization happens at lookup time.
//
// RegistryProvider is the read-only view used by the resolver so tests can
// substitute their own tables.
package dm
