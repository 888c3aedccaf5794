package xref

import "github.com/zjrosen/dmdoc/internal/domain/dm"

// Notice is the payload published to collaborators for each build event.
// Which fields are set depends on the event type:
//
//   - registered: Document, Line, Path, Kind
//   - duplicate: Duplicate (and Rejected in strict mode)
//   - resolved / unresolved: Document, Line, Target, Container, Path (when found)
//   - evicted: Document, Evicted
type Notice struct {
	BuildID   string
	Document  dm.DocID
	Line      int
	Path      string
	Kind      dm.Kind
	Target    string
	Container string
	Duplicate *dm.DuplicateDefinitionWarning
	Rejected  bool
	Evicted   int
}
