package presentation

import (
	"github.com/zjrosen/dmdoc/internal/domain/dm"
	"github.com/zjrosen/dmdoc/internal/xref"
)

// ObjectDTO represents one registered object for listings.
type ObjectDTO struct {
	Name     string `json:"name"`
	DispName string `json:"dispname"`
	Type     string `json:"type"`
	DocName  string `json:"docname"`
	Line     int    `json:"line,omitempty"`
	Anchor   string `json:"anchor"`
	Priority int    `json:"priority"`
}

// SignatureDTO is the breakdown of one parsed signature.
type SignatureDTO struct {
	Text         string  `json:"text"`
	Container    string  `json:"container,omitempty"`
	FullName     string  `json:"full_name"`
	NamePrefix   *string `json:"name_prefix"`
	LeafName     string  `json:"leaf_name"`
	ArgumentText *string `json:"argument_text"`
	HasArguments bool    `json:"has_arguments"`
	Absolute     bool    `json:"absolute"`
	Malformed    bool    `json:"malformed,omitempty"`
}

// ResolutionDTO is the outcome of one reference lookup.
type ResolutionDTO struct {
	Document  string `json:"document,omitempty"`
	Line      int    `json:"line,omitempty"`
	Role      string `json:"role,omitempty"`
	Title     string `json:"title,omitempty"`
	Target    string `json:"target"`
	Container string `json:"container,omitempty"`
	Specific  bool   `json:"specific"`
	Resolved  string `json:"resolved,omitempty"`
	Kind      string `json:"kind,omitempty"`
}

// DuplicateDTO reports two declarations of the same path.
type DuplicateDTO struct {
	Path     string `json:"path"`
	Existing string `json:"existing"`
	New      string `json:"new"`
	Rejected bool   `json:"rejected,omitempty"`
}

// ReportDTO is the JSON form of a build report.
type ReportDTO struct {
	BuildID     string          `json:"build_id"`
	Documents   int             `json:"documents"`
	Signatures  int             `json:"signatures"`
	Entries     int             `json:"entries"`
	References  int             `json:"references"`
	Duplicates  []DuplicateDTO  `json:"duplicates"`
	Malformed   []string        `json:"malformed"`
	Invalid     []string        `json:"invalid,omitempty"`
	Resolutions []ResolutionDTO `json:"resolutions"`
	Unresolved  []ResolutionDTO `json:"unresolved"`
}

// FromEntry converts a registry entry to a DTO.
func FromEntry(e dm.SymbolEntry) ObjectDTO {
	return ObjectDTO{
		Name:     e.FullName,
		DispName: e.FullName,
		Type:     e.Kind.String(),
		DocName:  string(e.Document),
		Line:     e.Line,
		Anchor:   e.FullName,
		Priority: 1,
	}
}

// FromEntries converts registry entries, keeping their order.
func FromEntries(entries []dm.SymbolEntry) []ObjectDTO {
	dtos := make([]ObjectDTO, len(entries))
	for i, e := range entries {
		dtos[i] = FromEntry(e)
	}
	return dtos
}

// FromSignature converts a parsed signature. Absent prefix and argument text
// are rendered as null.
func FromSignature(sig dm.Signature, container dm.Path) SignatureDTO {
	dto := SignatureDTO{
		Text:         sig.Text,
		FullName:     sig.FullName,
		LeafName:     sig.LeafName,
		HasArguments: sig.HasArguments,
		Absolute:     sig.Absolute,
		Malformed:    sig.Malformed,
	}
	if !container.IsZero() {
		dto.Container = container.String()
	}
	if prefix := sig.NamePrefix(); prefix != "" {
		dto.NamePrefix = &prefix
	}
	if sig.HasArguments {
		args := sig.ArgumentText
		dto.ArgumentText = &args
	}
	return dto
}

// FromResolution converts a build resolution.
func FromResolution(r xref.Resolution) ResolutionDTO {
	dto := ResolutionDTO{
		Document:  string(r.Document),
		Line:      r.Line,
		Role:      r.Role,
		Title:     r.Title,
		Target:    r.Target,
		Container: r.Container,
		Specific:  r.Order == dm.SearchSpecific,
	}
	if r.Found {
		dto.Resolved = r.Entry.FullName
		dto.Kind = r.Entry.Kind.String()
	}
	return dto
}

// FromLookup converts the result of a single ad-hoc lookup.
func FromLookup(container dm.Path, target string, order dm.SearchOrder, entry dm.SymbolEntry, found bool) ResolutionDTO {
	dto := ResolutionDTO{Target: target, Specific: order == dm.SearchSpecific}
	if !container.IsZero() {
		dto.Container = container.String()
	}
	if found {
		dto.Resolved = entry.FullName
		dto.Kind = entry.Kind.String()
	}
	return dto
}

// FromReport converts a build report.
func FromReport(r *xref.Report) ReportDTO {
	dto := ReportDTO{
		BuildID:     r.BuildID,
		Documents:   r.Documents,
		Signatures:  r.Signatures,
		Entries:     r.Entries,
		References:  r.References,
		Duplicates:  make([]DuplicateDTO, 0, len(r.Duplicates)+len(r.Rejected)),
		Malformed:   make([]string, 0, len(r.Malformed)),
		Resolutions: make([]ResolutionDTO, 0, len(r.Resolutions)),
		Unresolved:  make([]ResolutionDTO, 0, len(r.Unresolved)),
	}
	for _, d := range r.Duplicates {
		dto.Duplicates = append(dto.Duplicates, fromDuplicate(d, false))
	}
	for _, d := range r.Rejected {
		dto.Duplicates = append(dto.Duplicates, fromDuplicate(d, true))
	}
	for _, m := range r.Malformed {
		dto.Malformed = append(dto.Malformed, m.Error()+": "+m.Text)
	}
	for _, err := range r.Invalid {
		dto.Invalid = append(dto.Invalid, err.Error())
	}
	for _, res := range r.Resolutions {
		dto.Resolutions = append(dto.Resolutions, FromResolution(res))
	}
	for _, u := range r.Unresolved {
		dto.Unresolved = append(dto.Unresolved, ResolutionDTO{
			Document:  string(u.Document),
			Line:      u.Line,
			Role:      u.Role,
			Target:    u.Target,
			Container: u.Container,
		})
	}
	return dto
}

func fromDuplicate(w *dm.DuplicateDefinitionWarning, rejected bool) DuplicateDTO {
	return DuplicateDTO{
		Path:     w.Existing.FullName,
		Existing: w.Existing.Location(),
		New:      w.New.Location(),
		Rejected: rejected,
	}
}
