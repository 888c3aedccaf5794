package dm

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decl(path string, doc DocID, kind Kind) Declaration {
	return Declaration{Path: path, Kind: kind, Document: doc}
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()
	require.NotNil(t, reg)
	require.Empty(t, reg.Entries())
	require.Equal(t, 0, reg.Len())
	require.False(t, reg.Strict())
}

func TestRegistry_Register_ReadAfterWrite(t *testing.T) {
	reg := NewRegistry()

	entry, warning, err := reg.Register(Declaration{
		Path:     "/turf/simulated/proc/Entered",
		Kind:     KindProc,
		Document: "turf",
		Line:     12,
	})
	require.NoError(t, err)
	require.Nil(t, warning)

	got, ok := reg.LookupExact("/turf/simulated/proc/Entered")
	require.True(t, ok)
	require.Equal(t, entry, got)
	require.Equal(t, KindProc, got.Kind)
	require.Equal(t, DocID("turf"), got.Document)
	require.Equal(t, "proc ", got.DisplayPrefix)
	require.Equal(t, "turf:12", got.Location())
}

func TestRegistry_Register_CanonicalizesKey(t *testing.T) {
	reg := NewRegistry()

	entry, _, err := reg.Register(decl("turf//simulated/", "doc", KindVar))
	require.NoError(t, err)
	require.Equal(t, "/turf/simulated", entry.FullName)

	_, ok := reg.LookupExact("turf//simulated/")
	require.False(t, ok, "lookups are exact")
	_, ok = reg.LookupExact("/turf/simulated")
	require.True(t, ok)
}

func TestRegistry_Register_Invalid(t *testing.T) {
	reg := NewRegistry()

	_, _, err := reg.Register(decl("/", "doc", KindProc))
	require.ErrorIs(t, err, ErrInvalidPath)

	_, _, err = reg.Register(decl("/a", "", KindProc))
	require.ErrorIs(t, err, ErrEmptyDocument)

	_, _, err = reg.Register(decl("/a", "doc", Kind(99)))
	require.ErrorIs(t, err, ErrUnknownKind)

	require.Equal(t, 0, reg.Len())
}

func TestRegistry_Register_DuplicateLastWins(t *testing.T) {
	reg := NewRegistry()

	_, warning, err := reg.Register(decl("/mob/proc/Login", "d1", KindProc))
	require.NoError(t, err)
	require.Nil(t, warning)

	_, warning, err = reg.Register(decl("/mob/proc/Login", "d2", KindProc))
	require.NoError(t, err)
	require.NotNil(t, warning)
	require.ErrorIs(t, warning, ErrDuplicateDefinition)
	require.Equal(t, DocID("d1"), warning.Existing.Document)
	require.Equal(t, DocID("d2"), warning.New.Document)
	require.Contains(t, warning.Error(), "/mob/proc/Login")

	got, ok := reg.LookupExact("/mob/proc/Login")
	require.True(t, ok)
	require.Equal(t, DocID("d2"), got.Document)
	require.Equal(t, 1, reg.Len())
}

func TestRegistry_Register_SameDocumentNoWarning(t *testing.T) {
	reg := NewRegistry()

	_, _, err := reg.Register(Declaration{Path: "/obj/var/name", Kind: KindVar, Document: "d1", Line: 1})
	require.NoError(t, err)
	_, warning, err := reg.Register(Declaration{Path: "/obj/var/name", Kind: KindVar, Document: "d1", Line: 9})
	require.NoError(t, err)
	require.Nil(t, warning)

	got, _ := reg.LookupExact("/obj/var/name")
	require.Equal(t, 9, got.Line)
}

func TestRegistry_Register_StrictRejectsDuplicate(t *testing.T) {
	reg := NewRegistry(WithStrictDuplicates())
	require.True(t, reg.Strict())

	_, _, err := reg.Register(decl("/mob/proc/Login", "d1", KindProc))
	require.NoError(t, err)

	kept, warning, err := reg.Register(decl("/mob/proc/Login", "d2", KindVerb))
	require.Nil(t, warning)
	require.ErrorIs(t, err, ErrDuplicateDefinition)

	var dup *DuplicateDefinitionWarning
	require.ErrorAs(t, err, &dup)
	require.Equal(t, DocID("d2"), dup.New.Document)
	require.Equal(t, DocID("d1"), kept.Document)

	got, _ := reg.LookupExact("/mob/proc/Login")
	require.Equal(t, DocID("d1"), got.Document)
	require.Equal(t, KindProc, got.Kind)
}

func TestRegistry_Entries_InsertionOrder(t *testing.T) {
	reg := NewRegistry()
	for _, p := range []string{"/c", "/a", "/b"} {
		_, _, err := reg.Register(decl(p, "d1", KindVar))
		require.NoError(t, err)
	}
	// Overwrite keeps the original slot
	_, _, err := reg.Register(decl("/c", "d2", KindVar))
	require.NoError(t, err)

	var names []string
	for _, e := range reg.Entries() {
		names = append(names, e.FullName)
	}
	require.Equal(t, []string{"/c", "/a", "/b"}, names)
}

func TestRegistry_RemoveByDocument(t *testing.T) {
	reg := NewRegistry()
	_, _, _ = reg.Register(decl("/a", "d1", KindVar))
	_, _, _ = reg.Register(decl("/b", "d2", KindVar))
	_, _, _ = reg.Register(decl("/c", "d1", KindProc))
	_, _, _ = reg.Register(decl("/d", "d2", KindProc))

	removed := reg.RemoveByDocument("d1")
	require.Equal(t, 2, removed)

	_, ok := reg.LookupExact("/a")
	require.False(t, ok)
	_, ok = reg.LookupExact("/c")
	require.False(t, ok)

	var names []string
	for _, e := range reg.Entries() {
		require.Equal(t, DocID("d2"), e.Document)
		names = append(names, e.FullName)
	}
	require.Equal(t, []string{"/b", "/d"}, names)

	require.Equal(t, 0, reg.RemoveByDocument("missing"))
}

func TestRegistry_RemoveThenRegisterAppends(t *testing.T) {
	reg := NewRegistry()
	_, _, _ = reg.Register(decl("/a", "d1", KindVar))
	_, _, _ = reg.Register(decl("/b", "d2", KindVar))

	reg.RemoveByDocument("d1")
	_, warning, err := reg.Register(decl("/a", "d1", KindVar))
	require.NoError(t, err)
	require.Nil(t, warning, "evicted entries do not count as duplicates")

	entries := reg.Entries()
	require.Len(t, entries, 2)
	require.Equal(t, "/b", entries[0].FullName)
	require.Equal(t, "/a", entries[1].FullName)
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	reg := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			doc := DocID(fmt.Sprintf("doc%d", n))
			for j := 0; j < 50; j++ {
				path := fmt.Sprintf("/obj/n%d/var/v%d", n, j)
				_, _, err := reg.Register(decl(path, doc, KindVar))
				assert.NoError(t, err)
				_, ok := reg.LookupExact(path)
				assert.True(t, ok)
			}
		}(i)
	}
	wg.Wait()
	require.Equal(t, 400, reg.Len())
}
