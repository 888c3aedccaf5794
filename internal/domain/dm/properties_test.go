package dm

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func segmentGen() *rapid.Generator[string] {
	return rapid.StringMatching(`[a-zA-Z_][a-zA-Z0-9_]{0,7}`)
}

func pathGen(minLen, maxLen int) *rapid.Generator[Path] {
	return rapid.Custom(func(t *rapid.T) Path {
		segs := rapid.SliceOfN(segmentGen(), minLen, maxLen).Draw(t, "segments")
		return RootPath().Join(segs...)
	})
}

// Absolute references resolve the same with or without a container.
func TestProperty_AbsoluteIgnoresContainer(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		registered := rapid.SliceOfN(pathGen(1, 4), 0, 8).Draw(t, "registered")
		reg := NewRegistry()
		for _, p := range registered {
			_, _, err := reg.Register(Declaration{Path: p.String(), Kind: KindProc, Document: "d"})
			require.NoError(t, err)
		}

		target := pathGen(1, 4).Draw(t, "target").String()
		if rapid.Bool().Draw(t, "pickRegistered") && len(registered) > 0 {
			target = rapid.SampledFrom(registered).Draw(t, "existing").String()
		}
		container := pathGen(0, 3).Draw(t, "container")

		withContainer, ok1 := Resolve(reg, container, target, SearchGeneral)
		without, ok2 := Resolve(reg, Path{}, target, SearchGeneral)
		require.Equal(t, ok2, ok1)
		require.Equal(t, without, withContainer)
	})
}

// A relative leaf parsed under an absolute container lands directly under it.
func TestProperty_RelativeLeafNestsUnderContainer(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		container := pathGen(1, 4).Draw(t, "container")
		leaf := segmentGen().Draw(t, "leaf")
		args := rapid.StringMatching(`[a-z/ ,]{0,10}`).Draw(t, "args")

		text := leaf
		if rapid.Bool().Draw(t, "callable") {
			text = fmt.Sprintf("%s(%s)", leaf, args)
		}

		sig := ParseSignature(text, container)
		require.False(t, sig.Malformed)
		require.Equal(t, container.String()+"/"+leaf, sig.FullName)
	})
}

// The last cross-document registration wins and produces exactly one warning.
func TestProperty_LastRegistrationWins(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		path := pathGen(1, 4).Draw(t, "path").String()
		docs := rapid.SliceOfN(rapid.SampledFrom([]DocID{"d1", "d2", "d3"}), 1, 6).Draw(t, "docs")

		reg := NewRegistry()
		warnings := 0
		for _, doc := range docs {
			_, warning, err := reg.Register(Declaration{Path: path, Kind: KindVar, Document: doc})
			require.NoError(t, err)
			if warning != nil {
				warnings++
			}
		}

		expected := 0
		for i := 1; i < len(docs); i++ {
			if docs[i] != docs[i-1] {
				expected++
			}
		}
		require.Equal(t, expected, warnings)

		got, ok := reg.LookupExact(path)
		require.True(t, ok)
		require.Equal(t, docs[len(docs)-1], got.Document)
		require.Equal(t, 1, reg.Len())
	})
}

// Evicting a document leaves exactly the other documents' entries.
func TestProperty_RemoveByDocumentIsolation(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		reg := NewRegistry()
		owners := make(map[string]DocID)
		n := rapid.IntRange(0, 20).Draw(t, "n")
		for i := 0; i < n; i++ {
			p := pathGen(1, 3).Draw(t, fmt.Sprintf("path%d", i)).String()
			doc := rapid.SampledFrom([]DocID{"d1", "d2"}).Draw(t, fmt.Sprintf("doc%d", i))
			_, _, err := reg.Register(Declaration{Path: p, Kind: KindProc, Document: doc})
			require.NoError(t, err)
			owners[p] = doc
		}

		reg.RemoveByDocument("d1")

		for p, doc := range owners {
			_, ok := reg.LookupExact(p)
			require.Equal(t, doc == "d2", ok, p)
		}
		for _, e := range reg.Entries() {
			require.Equal(t, DocID("d2"), e.Document)
		}
	})
}

// Registry keys never carry empty segments or a trailing separator.
func TestProperty_CanonicalKeys(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		raw := rapid.StringMatching(`/{0,2}([a-z]{1,3}/{1,2}){0,3}[a-z]{1,3}/?`).Draw(t, "raw")
		reg := NewRegistry()
		entry, _, err := reg.Register(Declaration{Path: raw, Kind: KindVar, Document: "d"})
		require.NoError(t, err)

		require.True(t, strings.HasPrefix(entry.FullName, "/"))
		require.False(t, strings.Contains(entry.FullName, "//"))
		require.False(t, strings.HasSuffix(entry.FullName, "/"))
	})
}
