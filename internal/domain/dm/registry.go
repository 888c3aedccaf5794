package dm

import (
	"errors"
	"fmt"
	"sync"
)

// Registry errors
var (
	ErrDuplicateDefinition = errors.New("duplicate object description")
	ErrEmptyDocument       = errors.New("document id cannot be empty")
)

// DocID identifies the document that declared a symbol.
type DocID string

// SymbolEntry is the metadata stored for one fully-qualified path.
type SymbolEntry struct {
	FullName      string
	Kind          Kind
	Document      DocID
	Line          int
	DisplayPrefix string
}

// Location renders the declaring document and line.
func (e SymbolEntry) Location() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d", e.Document, e.Line)
	}
	return string(e.Document)
}

// DuplicateDefinitionWarning reports a path declared by two different documents.
type DuplicateDefinitionWarning struct {
	Existing SymbolEntry
	New      SymbolEntry
}

func (w *DuplicateDefinitionWarning) Error() string {
	return fmt.Sprintf("duplicate object description of %s at %s, other instance in %s",
		w.New.FullName, w.New.Location(), w.Existing.Location())
}

// Unwrap lets errors.Is match ErrDuplicateDefinition.
func (w *DuplicateDefinitionWarning) Unwrap() error {
	return ErrDuplicateDefinition
}

// Declaration is the input to Registry.Register.
type Declaration struct {
	Path     string
	Kind     Kind
	Document DocID
	Line     int
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithStrictDuplicates rejects cross-document collisions instead of
// overwriting the earlier entry.
func WithStrictDuplicates() RegistryOption {
	return func(r *Registry) {
		r.strict = true
	}
}

// Registry maps canonical paths to symbol entries for the lifetime of one build.
// Iteration follows first-insertion order; an overwrite keeps the original slot.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]SymbolEntry
	order   []string
	strict  bool
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		entries: make(map[string]SymbolEntry),
		order:   make([]string, 0),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Strict reports whether duplicates are rejected.
func (r *Registry) Strict() bool {
	return r.strict
}

// Register stores decl under its canonical path.
//
// When the path is already held by a different document a
// *DuplicateDefinitionWarning is returned alongside the stored entry and the
// new declaration replaces the old one. In strict mode the old entry is kept
// and the warning is returned as the error instead.
func (r *Registry) Register(decl Declaration) (SymbolEntry, *DuplicateDefinitionWarning, error) {
	key, err := CanonicalKey(decl.Path)
	if err != nil {
		return SymbolEntry{}, nil, fmt.Errorf("register %q: %w", decl.Path, err)
	}
	if decl.Document == "" {
		return SymbolEntry{}, nil, ErrEmptyDocument
	}
	if !decl.Kind.Valid() {
		return SymbolEntry{}, nil, fmt.Errorf("register %s: %w", key, ErrUnknownKind)
	}

	entry := SymbolEntry{
		FullName:      key,
		Kind:          decl.Kind,
		Document:      decl.Document,
		Line:          decl.Line,
		DisplayPrefix: decl.Kind.DisplayPrefix(),
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var warning *DuplicateDefinitionWarning
	existing, found := r.entries[key]
	if found && existing.Document != entry.Document {
		warning = &DuplicateDefinitionWarning{Existing: existing, New: entry}
		if r.strict {
			return existing, nil, warning
		}
	}
	if !found {
		r.order = append(r.order, key)
	}
	r.entries[key] = entry
	return entry, warning, nil
}

// LookupExact returns the entry stored under exactly path.
// No normalization is applied to path.
func (r *Registry) LookupExact(path string) (SymbolEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[path]
	return entry, ok
}

// RemoveByDocument deletes every entry declared by doc and returns how many
// were removed.
func (r *Registry) RemoveByDocument(doc DocID) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.order[:0]
	removed := 0
	for _, key := range r.order {
		if r.entries[key].Document == doc {
			delete(r.entries, key)
			removed++
			continue
		}
		kept = append(kept, key)
	}
	r.order = kept
	return removed
}

// Entries returns a snapshot of all entries in insertion order.
func (r *Registry) Entries() []SymbolEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]SymbolEntry, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.entries[key])
	}
	return out
}

// Len returns the number of entries.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
