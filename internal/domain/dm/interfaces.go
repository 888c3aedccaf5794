package dm

// RegistryProvider defines read-only access to the symbol table.
// The resolver depends on this interface so that tests and caches can
// substitute their own implementations.
type RegistryProvider interface {
	// LookupExact returns the entry stored under exactly path.
	LookupExact(path string) (SymbolEntry, bool)

	// Entries returns every entry in insertion order.
	Entries() []SymbolEntry
}

// Compile-time check that Registry implements RegistryProvider.
var _ RegistryProvider = (*Registry)(nil)
