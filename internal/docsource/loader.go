package docsource

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/zjrosen/dmdoc/internal/domain/dm"
	"github.com/zjrosen/dmdoc/internal/log"
)

// Loader reads source documents whose names end in one of its extensions.
type Loader struct {
	extensions []string
}

// NewLoader creates a loader. Longer extensions are matched first so that
// ".dm.txt" wins over ".txt".
func NewLoader(extensions []string) *Loader {
	exts := append([]string(nil), extensions...)
	sort.SliceStable(exts, func(i, j int) bool { return len(exts[i]) > len(exts[j]) })
	return &Loader{extensions: exts}
}

// Matches reports whether name has a source extension.
func (l *Loader) Matches(name string) bool {
	_, ok := l.trimExt(name)
	return ok
}

func (l *Loader) trimExt(name string) (string, bool) {
	for _, ext := range l.extensions {
		if strings.HasSuffix(name, ext) && len(name) > len(ext) {
			return strings.TrimSuffix(name, ext), true
		}
	}
	return name, false
}

// DocID maps a slash-separated file path under prefix to its document id:
// the path without its source extension.
func (l *Loader) DocID(prefix, rel string) dm.DocID {
	stem, _ := l.trimExt(rel)
	return dm.DocID(path.Join(prefix, stem))
}

// LoadFS walks fsys and scans every matching file in lexical order.
// Document ids are prefixed with prefix. Hidden directories are skipped.
func (l *Loader) LoadFS(fsys fs.FS, prefix string) ([]*Document, error) {
	var docs []*Document
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != "." && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if !l.Matches(d.Name()) {
			return nil
		}
		doc, err := l.LoadFile(fsys, prefix, p)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking sources: %w", err)
	}
	log.Debug(log.CatBuild, "Loaded sources", "prefix", prefix, "documents", len(docs))
	return docs, nil
}

// LoadFile scans the single file rel inside fsys.
func (l *Loader) LoadFile(fsys fs.FS, prefix, rel string) (*Document, error) {
	f, err := fsys.Open(rel)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", rel, err)
	}
	defer func() { _ = f.Close() }()

	doc, err := Scan(l.DocID(prefix, rel), f)
	if err != nil {
		return nil, err
	}
	doc.Path = path.Join(prefix, rel)
	return doc, nil
}

// RootPrefix returns the document id prefix used for files under root.
func RootPrefix(root string) string {
	return filepath.ToSlash(filepath.Clean(root))
}

// LoadDirs loads every root directory from disk. Document ids are prefixed
// with the root as given. Returns ErrNoSources when nothing matched.
func (l *Loader) LoadDirs(roots []string) ([]*Document, error) {
	var docs []*Document
	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", root, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("source %s: not a directory", root)
		}
		found, err := l.LoadFS(os.DirFS(root), RootPrefix(root))
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", root, err)
		}
		docs = append(docs, found...)
	}
	if len(docs) == 0 {
		return nil, ErrNoSources
	}
	return docs, nil
}
