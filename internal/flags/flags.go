// Package flags provides read-only feature flags for opt-in behaviour changes.
// Known flags fall back to their declared default when absent from
// configuration; unknown flags are always disabled.
package flags

import (
	"maps"
	"slices"

	"github.com/zjrosen/dmdoc/internal/log"
)

// Flag name constants for type-safe flag access.
const (
	// FlagStrictDuplicates rejects a path declared by two documents instead of
	// letting the later declaration replace the earlier one.
	FlagStrictDuplicates = "strict-duplicates"

	// FlagResolveCache memoises resolution results for the duration of a build.
	FlagResolveCache = "resolve-cache"
)

var defaults = map[string]bool{
	FlagStrictDuplicates: false,
	FlagResolveCache:     true,
}

// Known returns the names of all declared flags, sorted.
func Known() []string {
	return slices.Sorted(maps.Keys(defaults))
}

// Registry holds feature flag state loaded from configuration.
type Registry struct {
	flags map[string]bool
}

// New creates a Registry from a config map layered over the declared defaults.
func New(configured map[string]bool) *Registry {
	merged := make(map[string]bool, len(defaults)+len(configured))
	maps.Copy(merged, defaults)
	for name, value := range configured {
		if _, known := defaults[name]; !known {
			log.Warn(log.CatConfig, "Ignoring unknown feature flag", "flag", name, "known", Known())
			continue
		}
		merged[name] = value
	}
	r := &Registry{flags: merged}
	log.Debug(log.CatConfig, "Feature flags initialized", "flags", r.All())
	return r
}

// Enabled returns true if the named flag is on.
// Unknown flags and a nil registry report false.
func (r *Registry) Enabled(name string) bool {
	if r == nil || r.flags == nil {
		return false
	}
	return r.flags[name]
}

// With returns a copy of r with name forced to value, used for command-line
// overrides such as --strict.
func (r *Registry) With(name string, value bool) *Registry {
	out := &Registry{flags: r.All()}
	if _, known := defaults[name]; known {
		out.flags[name] = value
	}
	return out
}

// All returns a copy of all flags.
func (r *Registry) All() map[string]bool {
	if r == nil || r.flags == nil {
		return make(map[string]bool)
	}
	result := make(map[string]bool, len(r.flags))
	maps.Copy(result, r.flags)
	return result
}
