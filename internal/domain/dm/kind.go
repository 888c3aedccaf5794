package dm

import (
	"errors"
	"fmt"
)

// Kind errors
var (
	ErrUnknownKind = errors.New("unknown object kind")
	ErrUnknownRole = errors.New("unknown reference role")
)

// Kind is the closed set of documented object kinds.
type Kind int

const (
	KindProc Kind = iota + 1
	KindVerb
	KindAtom
	KindVar
)

// KindInfo holds the presentation strings for a kind.
type KindInfo struct {
	Name          string // directive and object-type name
	Label         string // human-readable label
	DisplayPrefix string // annotation shown before the signature
	Segment       string // path segment grouping members of this kind under a type
	Callable      bool   // takes an argument list
}

var kindTable = map[Kind]KindInfo{
	KindProc: {Name: "proc", Label: "proc", DisplayPrefix: "proc ", Segment: "proc", Callable: true},
	KindVerb: {Name: "verb", Label: "verb", DisplayPrefix: "verb ", Segment: "verb", Callable: true},
	KindAtom: {Name: "atom", Label: "atom", DisplayPrefix: "atom ", Callable: true},
	KindVar:  {Name: "var", Label: "attribute", DisplayPrefix: "", Segment: "var"},
}

// Kinds returns every kind in declaration order.
func Kinds() []Kind {
	return []Kind{KindProc, KindVerb, KindAtom, KindVar}
}

// ParseKind maps a directive name ("proc", "verb", "atom", "var") to its Kind.
func ParseKind(name string) (Kind, error) {
	for _, k := range Kinds() {
		if kindTable[k].Name == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

// Valid reports whether k is one of the four known kinds.
func (k Kind) Valid() bool {
	_, ok := kindTable[k]
	return ok
}

// Info returns the presentation strings for k.
func (k Kind) Info() KindInfo {
	return kindTable[k]
}

// DisplayPrefix returns the annotation shown before a signature of this kind.
func (k Kind) DisplayPrefix() string {
	return kindTable[k].DisplayPrefix
}

func (k Kind) String() string {
	if info, ok := kindTable[k]; ok {
		return info.Name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Role is a cross-reference role token.
type Role struct {
	Name      string
	Kind      Kind
	FixParens bool // strip/append "()" when deriving callable titles
}

var roleTable = map[string]Role{
	"p": {Name: "p", Kind: KindProc, FixParens: true},
	"v": {Name: "v", Kind: KindVerb},
	"a": {Name: "a", Kind: KindAtom, FixParens: true},
}

// LookupRole returns the role registered under token.
func LookupRole(token string) (Role, error) {
	role, ok := roleTable[token]
	if !ok {
		return Role{}, fmt.Errorf("%w: %q", ErrUnknownRole, token)
	}
	return role, nil
}
