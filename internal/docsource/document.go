package docsource

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/zjrosen/dmdoc/internal/domain/dm"
	"github.com/zjrosen/dmdoc/internal/log"
)

// Scanner errors
var (
	ErrNoSources = errors.New("no documentation sources found")
)

// objectDirective names the directive that sets the container.
const objectDirective = "object"

var (
	directiveRe = regexp.MustCompile(`^\s*\.\.\s+dm:([A-Za-z]+)::(.*)$`)
	roleRe      = regexp.MustCompile(":dm:([A-Za-z]+):`([^`]*)`")
)

// Declaration is one signature directive.
type Declaration struct {
	Kind      dm.Kind
	Signature string
	Line      int
	Container dm.Path
}

// Reference is one inline cross-reference role.
type Reference struct {
	Role      dm.Role
	Text      string
	Line      int
	Container dm.Path
}

// Document is the scanned content of one source file.
type Document struct {
	ID           dm.DocID
	Path         string
	Declarations []Declaration
	References   []Reference
}

// Scan reads r line by line and extracts declarations and references.
// Unknown dm directives and roles are logged and skipped.
func Scan(id dm.DocID, r io.Reader) (*Document, error) {
	doc := &Document{ID: id}
	var container dm.Path

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()

		if m := directiveRe.FindStringSubmatch(text); m != nil {
			name, arg := m[1], strings.TrimSpace(m[2])
			if name == objectDirective {
				container = objectContainer(container, arg)
				continue
			}
			kind, err := dm.ParseKind(name)
			if err != nil {
				log.Warn(log.CatBuild, "Skipping unknown directive", "doc", id, "line", line, "directive", name)
				continue
			}
			doc.Declarations = append(doc.Declarations, Declaration{
				Kind:      kind,
				Signature: arg,
				Line:      line,
				Container: container,
			})
			continue
		}

		for _, m := range roleRe.FindAllStringSubmatch(text, -1) {
			role, err := dm.LookupRole(m[1])
			if err != nil {
				log.Warn(log.CatBuild, "Skipping unknown role", "doc", id, "line", line, "role", m[1])
				continue
			}
			doc.References = append(doc.References, Reference{
				Role:      role,
				Text:      m[2],
				Line:      line,
				Container: container,
			})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning %s: %w", id, err)
	}
	return doc, nil
}

// objectContainer computes the container set by a dm:object directive.
// An empty argument clears it; a relative argument nests under the current
// one. A relative argument at top level is rooted at "/".
func objectContainer(current dm.Path, arg string) dm.Path {
	if arg == "" {
		return dm.Path{}
	}
	next := dm.ParsePath(arg)
	switch {
	case next.Absolute():
		return next
	case current.IsZero():
		return next.AsAbsolute()
	default:
		return current.Concat(next)
	}
}
