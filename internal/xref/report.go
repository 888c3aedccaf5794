package xref

import (
	"fmt"

	"github.com/zjrosen/dmdoc/internal/domain/dm"
)

// Resolution is the outcome of resolving one reference.
type Resolution struct {
	Document  dm.DocID
	Line      int
	Role      string
	Title     string
	Target    string
	Container string
	Order     dm.SearchOrder
	Entry     dm.SymbolEntry // zero unless Found
	Found     bool
}

// UnresolvedReference is the warning raised when a reference matches nothing.
// The reference is rendered as plain text by the caller.
type UnresolvedReference struct {
	Document  dm.DocID
	Line      int
	Role      string
	Target    string
	Container string
}

func (u *UnresolvedReference) Error() string {
	where := string(u.Document)
	if u.Line > 0 {
		where = fmt.Sprintf("%s:%d", u.Document, u.Line)
	}
	if u.Container != "" {
		return fmt.Sprintf("%s: unresolved dm:%s reference %q in %s", where, u.Role, u.Target, u.Container)
	}
	return fmt.Sprintf("%s: unresolved dm:%s reference %q", where, u.Role, u.Target)
}

// MalformedSignature records a signature that degraded to a whole-text leaf.
// FullName is empty when the leaf was empty and nothing was registered.
type MalformedSignature struct {
	Document dm.DocID
	Line     int
	Text     string
	FullName string
}

func (m *MalformedSignature) Error() string {
	return fmt.Sprintf("%s:%d: %v", m.Document, m.Line, dm.ErrMalformedSignature)
}

func (m *MalformedSignature) Unwrap() error {
	return dm.ErrMalformedSignature
}

// Report collects everything non-fatal that happened during a build.
type Report struct {
	BuildID    string
	Documents  int
	Signatures int
	Entries    int
	References int

	Duplicates  []*dm.DuplicateDefinitionWarning
	Rejected    []*dm.DuplicateDefinitionWarning // strict mode only
	Malformed   []*MalformedSignature
	Invalid     []error // signatures whose path could not be registered
	Resolutions []Resolution
	Unresolved  []*UnresolvedReference
}

// Warnings returns every non-fatal problem as an error value.
func (r *Report) Warnings() []error {
	var out []error
	for _, w := range r.Duplicates {
		out = append(out, w)
	}
	for _, w := range r.Rejected {
		out = append(out, w)
	}
	for _, m := range r.Malformed {
		out = append(out, m)
	}
	out = append(out, r.Invalid...)
	for _, u := range r.Unresolved {
		out = append(out, u)
	}
	return out
}

// merge folds the resolve-phase fields of other into r.
func (r *Report) merge(other *Report) {
	if other == nil {
		return
	}
	r.References = other.References
	r.Resolutions = other.Resolutions
	r.Unresolved = other.Unresolved
	r.Entries = other.Entries
}
