package dm

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedSignature marks signature text that could not be split into a
// prefix and leaf. Parsing still yields a usable Signature.
var ErrMalformedSignature = errors.New("malformed signature")

// Signature is the structured decomposition of one signature line.
type Signature struct {
	Text         string // trimmed input text
	Prefix       Path   // name prefix after container nesting; zero when absent
	LeafName     string
	ArgumentText string
	HasArguments bool
	Absolute     bool
	FullName     string // fully-qualified path text
	Malformed    bool
}

// Err returns a recoverable error describing a malformed signature, or nil.
func (s Signature) Err() error {
	if !s.Malformed {
		return nil
	}
	return fmt.Errorf("%w: %q", ErrMalformedSignature, s.Text)
}

// Registrable reports whether the signature names a registry path.
func (s Signature) Registrable() bool {
	return s.FullName != ""
}

// NamePrefix returns the canonical text of the name prefix, or "" when absent.
func (s Signature) NamePrefix() string {
	if s.Prefix.IsZero() {
		return ""
	}
	return s.Prefix.String()
}

// ParseSignature decomposes signature text of the form
//
//	["/"] (segment "/")* segment ["(" arguments ")"]
//
// relative to container. A zero container means no enclosing object.
// Absolute signatures ignore the container. Malformed text (unbalanced
// parentheses, empty leaf) is kept whole as the leaf name and flagged.
// An empty leaf leaves FullName empty so the signature is never registered.
func ParseSignature(text string, container Path) Signature {
	text = strings.TrimSpace(text)
	sig := Signature{Text: text}

	prefix := text
	if open := strings.Index(text, "("); open >= 0 && strings.HasSuffix(text, ")") {
		prefix = text[:open]
		sig.ArgumentText = strings.TrimSpace(text[open+1 : len(text)-1])
		sig.HasArguments = true
	}

	if strings.HasPrefix(prefix, Separator) {
		prefix = prefix[1:]
		sig.Absolute = true
	}

	var (
		rawPrefix string
		hasPrefix bool
	)
	sig.LeafName = prefix
	if i := strings.LastIndex(prefix, Separator); i >= 0 {
		rawPrefix, sig.LeafName = prefix[:i], prefix[i+1:]
		hasPrefix = true
	}

	if sig.LeafName == "" {
		return Signature{Text: text, LeafName: text, Malformed: true}
	}
	if strings.Count(text, "(") != strings.Count(text, ")") {
		return malformed(text, container)
	}

	switch {
	case sig.Absolute:
		sig.Prefix = ParsePath(rawPrefix).AsAbsolute()
	case hasPrefix:
		sig.Prefix = ParsePath(rawPrefix)
		if !container.IsZero() {
			sig.Prefix = container.Concat(sig.Prefix)
		}
	}

	switch {
	case !sig.Prefix.IsZero():
		sig.FullName = sig.Prefix.Join(sig.LeafName).String()
	case !container.IsZero():
		sig.FullName = container.Join(sig.LeafName).String()
	default:
		sig.FullName = sig.LeafName
	}
	return sig
}

func malformed(text string, container Path) Signature {
	sig := Signature{Text: text, LeafName: text, Malformed: true, FullName: text}
	switch {
	case container.IsZero():
	case container.IsRoot():
		sig.FullName = Separator + text
	default:
		sig.FullName = container.String() + Separator + text
	}
	return sig
}
