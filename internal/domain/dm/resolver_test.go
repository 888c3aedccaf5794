package dm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func seeded(t *testing.T, paths ...string) *Registry {
	t.Helper()
	reg := NewRegistry()
	for _, p := range paths {
		_, _, err := reg.Register(Declaration{Path: p, Kind: KindProc, Document: "doc1"})
		require.NoError(t, err)
	}
	return reg
}

func TestResolve_ContainerQualifiedCallable(t *testing.T) {
	reg := NewRegistry()
	_, _, err := reg.Register(Declaration{Path: "/turf/simulated/proc/Entered", Kind: KindProc, Document: "doc1"})
	require.NoError(t, err)
	_, _, err = reg.Register(Declaration{Path: "/turf/simulated/var/density", Kind: KindVar, Document: "doc1"})
	require.NoError(t, err)

	entry, ok := Resolve(reg, ParsePath("/turf/simulated"), "Entered()", SearchGeneral)
	require.True(t, ok)
	require.Equal(t, "/turf/simulated/proc/Entered", entry.FullName)

	entry, ok = Resolve(reg, ParsePath("/turf/simulated"), "proc/Entered()", SearchGeneral)
	require.True(t, ok)
	require.Equal(t, "/turf/simulated/proc/Entered", entry.FullName)

	entry, ok = Resolve(reg, ParsePath("/turf/simulated"), "density", SearchGeneral)
	require.True(t, ok)
	require.Equal(t, KindVar, entry.Kind)
}

func TestResolve_KindHintNarrowsMemberGroups(t *testing.T) {
	reg := NewRegistry()
	_, _, err := reg.Register(Declaration{Path: "/mob/proc/say", Kind: KindProc, Document: "doc1"})
	require.NoError(t, err)
	_, _, err = reg.Register(Declaration{Path: "/mob/verb/say", Kind: KindVerb, Document: "doc1"})
	require.NoError(t, err)

	entry, ok := Resolve(reg, ParsePath("/mob"), "say", SearchGeneral)
	require.True(t, ok)
	require.Equal(t, "/mob/proc/say", entry.FullName, "proc group is tried first without a hint")

	entry, ok = Resolve(reg, ParsePath("/mob"), "say", SearchGeneral, KindVerb)
	require.True(t, ok)
	require.Equal(t, "/mob/verb/say", entry.FullName)

	_, ok = Resolve(reg, ParsePath("/mob"), "say", SearchGeneral, KindAtom)
	require.False(t, ok, "atoms have no member group")
}

func TestResolve_BareNameUnderContainer(t *testing.T) {
	reg := seeded(t, "/turf/simulated/proc/Entered")

	entry, ok := Resolve(reg, ParsePath("/turf/simulated/proc"), "Entered()", SearchGeneral)
	require.True(t, ok)
	require.Equal(t, "/turf/simulated/proc/Entered", entry.FullName)
}

func TestResolve_AbsoluteTargetMatchesDirectly(t *testing.T) {
	reg := seeded(t, "/x/y")

	entry, ok := Resolve(reg, ParsePath("/a/b"), "/x/y", SearchGeneral)
	require.True(t, ok)
	require.Equal(t, "/x/y", entry.FullName)

	entry, ok = Resolve(reg, ParsePath("/a/b"), "/x/y", SearchSpecific)
	require.True(t, ok)
	require.Equal(t, "/x/y", entry.FullName)
}

func TestResolve_NoMatch(t *testing.T) {
	reg := seeded(t, "/x/y")

	_, ok := Resolve(reg, ParsePath("/a/b"), "missing", SearchGeneral)
	require.False(t, ok)

	_, ok = Resolve(reg, Path{}, "y", SearchSpecific)
	require.False(t, ok)
}

func TestResolve_SearchOrderPreference(t *testing.T) {
	// Both the bare and the container-qualified forms exist
	reg := seeded(t, "/mob/Login", "/client/mob/Login")
	container := ParsePath("/client")

	entry, ok := Resolve(reg, container, "/mob/Login", SearchGeneral)
	require.True(t, ok)
	require.Equal(t, "/mob/Login", entry.FullName)

	// Specific-first never matches "/client//mob/Login", so it falls back
	entry, ok = Resolve(reg, container, "/mob/Login", SearchSpecific)
	require.True(t, ok)
	require.Equal(t, "/mob/Login", entry.FullName)

	entry, ok = Resolve(reg, container, "mob/Login", SearchSpecific)
	require.True(t, ok)
	require.Equal(t, "/client/mob/Login", entry.FullName)
}

func TestCandidates(t *testing.T) {
	require.Equal(t,
		[]string{"Entered", "/turf/Entered", "/turf/proc/Entered", "/turf/verb/Entered", "/turf/var/Entered"},
		Candidates(ParsePath("/turf"), "Entered()", SearchGeneral))
	require.Equal(t,
		[]string{"/turf/Entered", "Entered", "/turf/proc/Entered"},
		Candidates(ParsePath("/turf"), "Entered", SearchSpecific, KindProc))
	require.Equal(t,
		[]string{"/x"},
		Candidates(Path{}, "/x()", SearchSpecific))
	require.Equal(t,
		[]string{"proc/x", "/a/proc/x"},
		Candidates(ParsePath("/a"), "proc/x", SearchGeneral))
	require.Equal(t,
		[]string{"x", "//x", "/var/x"},
		Candidates(RootPath(), "x", SearchGeneral, KindVar))
}

func TestSearchOrder_String(t *testing.T) {
	require.Equal(t, "general", SearchGeneral.String())
	require.Equal(t, "specific", SearchSpecific.String())
}
