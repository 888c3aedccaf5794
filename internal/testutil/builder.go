// Package testutil builds documentation fixtures for tests.
package testutil

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/dmdoc/internal/docsource"
)

// Extension is the source extension used for fixture documents.
const Extension = ".rst"

// docData holds the lines of a fixture document.
type docData struct {
	id    string
	lines []string
}

// Builder accumulates fixture documents and loads them through docsource.
type Builder struct {
	t    *testing.T
	docs []docData
}

// NewBuilder creates an empty fixture builder.
func NewBuilder(t *testing.T) *Builder {
	t.Helper()
	return &Builder{t: t}
}

// WithDocument adds a document. The id is the file path without extension.
func (b *Builder) WithDocument(id string, opts ...DocOption) *Builder {
	doc := docData{id: id}
	for _, opt := range opts {
		opt(&doc)
	}
	b.docs = append(b.docs, doc)
	return b
}

// FS renders every document into an in-memory filesystem.
func (b *Builder) FS() fstest.MapFS {
	fsys := fstest.MapFS{}
	for _, doc := range b.docs {
		fsys[doc.id+Extension] = &fstest.MapFile{Data: []byte(strings.Join(doc.lines, "\n") + "\n")}
	}
	return fsys
}

// Build scans every document in the order they were added.
func (b *Builder) Build() []*docsource.Document {
	b.t.Helper()
	fsys := b.FS()
	loader := docsource.NewLoader([]string{Extension})
	out := make([]*docsource.Document, 0, len(b.docs))
	for _, doc := range b.docs {
		scanned, err := loader.LoadFile(fsys, "", doc.id+Extension)
		require.NoError(b.t, err)
		out = append(out, scanned)
	}
	return out
}
