package dm

import "strings"

// SearchOrder selects which lookup form is tried first.
type SearchOrder int

const (
	// SearchGeneral tries the bare target before the container-qualified form.
	SearchGeneral SearchOrder = 0
	// SearchSpecific tries the container-qualified form first.
	SearchSpecific SearchOrder = 1
)

func (o SearchOrder) String() string {
	if o == SearchSpecific {
		return "specific"
	}
	return "general"
}

// callSuffix is the callable-reference shorthand stripped from targets.
const callSuffix = "()"

// Candidates returns the registry keys Resolve will try, in order.
//
// A trailing "()" is stripped from target first. The container-qualified form
// is plain concatenation and is omitted when container is zero. A bare name
// (no "/") under a container is finally tried inside the container's member
// groups (container/proc/name, container/verb/name, container/var/name); a
// kind hint narrows that to the hinted kinds.
func Candidates(container Path, target string, order SearchOrder, hints ...Kind) []string {
	target = strings.TrimSuffix(target, callSuffix)
	if container.IsZero() {
		return []string{target}
	}

	base := container.String()
	if container.IsRoot() {
		base = ""
	}
	qualified := container.String() + Separator + target

	keys := []string{target, qualified}
	if order == SearchSpecific {
		keys = []string{qualified, target}
	}

	if target == "" || strings.Contains(target, Separator) {
		return keys
	}
	kinds := hints
	if len(kinds) == 0 {
		kinds = Kinds()
	}
	for _, k := range kinds {
		if seg := k.Info().Segment; seg != "" {
			keys = append(keys, base+Separator+seg+Separator+target)
		}
	}
	return keys
}

// Resolve looks target up in reg relative to container and returns the first
// matching entry. The boolean is false when nothing matches; that is never an
// error and the caller decides how to render the reference.
func Resolve(reg RegistryProvider, container Path, target string, order SearchOrder, hints ...Kind) (SymbolEntry, bool) {
	for _, key := range Candidates(container, target, order, hints...) {
		if entry, ok := reg.LookupExact(key); ok {
			return entry, true
		}
	}
	return SymbolEntry{}, false
}
