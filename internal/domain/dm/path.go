package dm

import (
	"errors"
	"strings"
)

// Path errors
var (
	ErrInvalidPath = errors.New("invalid object path")
)

// Separator delimits path segments.
const Separator = "/"

// Path is an ordered sequence of non-empty segments with an absolute flag.
// The zero value is the empty relative path and represents "no container".
type Path struct {
	segments []string
	absolute bool
}

// ParsePath splits s on "/" and drops empty segments.
// A leading "/" makes the path absolute; "/" alone is the root path.
func ParsePath(s string) Path {
	s = strings.TrimSpace(s)
	p := Path{absolute: strings.HasPrefix(s, Separator)}
	for _, seg := range strings.Split(s, Separator) {
		if seg != "" {
			p.segments = append(p.segments, seg)
		}
	}
	return p
}

// RootPath returns the absolute path with no segments.
func RootPath() Path {
	return Path{absolute: true}
}

// IsZero reports whether p is the empty relative path.
func (p Path) IsZero() bool {
	return !p.absolute && len(p.segments) == 0
}

// IsRoot reports whether p is "/".
func (p Path) IsRoot() bool {
	return p.absolute && len(p.segments) == 0
}

// Absolute reports whether p carries a leading "/".
func (p Path) Absolute() bool {
	return p.absolute
}

// Segments returns a copy of the path segments.
func (p Path) Segments() []string {
	out := make([]string, len(p.segments))
	copy(out, p.segments)
	return out
}

// Join appends the non-empty segments of each element to p.
// Elements may themselves contain separators.
func (p Path) Join(elems ...string) Path {
	out := Path{segments: p.Segments(), absolute: p.absolute}
	for _, e := range elems {
		for _, seg := range strings.Split(e, Separator) {
			if seg != "" {
				out.segments = append(out.segments, seg)
			}
		}
	}
	return out
}

// Concat appends the segments of q to p, keeping p's absolute flag.
func (p Path) Concat(q Path) Path {
	return p.Join(q.segments...)
}

// AsAbsolute returns p with the absolute flag set.
func (p Path) AsAbsolute() Path {
	return Path{segments: p.Segments(), absolute: true}
}

// String returns the canonical text: segments joined by "/" with a single
// leading "/" when absolute.
func (p Path) String() string {
	joined := strings.Join(p.segments, Separator)
	if p.absolute {
		return Separator + joined
	}
	return joined
}

// CanonicalKey converts raw path text into a registry key: a leading "/",
// no empty segments and no trailing "/". Text with no segments is rejected.
func CanonicalKey(raw string) (string, error) {
	p := ParsePath(raw)
	if len(p.segments) == 0 {
		return "", ErrInvalidPath
	}
	return p.AsAbsolute().String(), nil
}
