package presentation

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/zjrosen/dmdoc/internal/xref"
)

// Formatter handles output formatting
type Formatter struct {
	writer io.Writer
}

// NewFormatter creates a new formatter
func NewFormatter(writer io.Writer) *Formatter {
	return &Formatter{
		writer: writer,
	}
}

// FormatJSON writes any DTO as indented JSON.
func (f *Formatter) FormatJSON(v any) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// FormatObjects formats an object listing as JSON
func (f *Formatter) FormatObjects(objects []ObjectDTO) error {
	return f.FormatJSON(objects)
}

// FormatSignature formats a signature breakdown as JSON
func (f *Formatter) FormatSignature(sig SignatureDTO) error {
	return f.FormatJSON(sig)
}

// FormatReport formats a build report as JSON
func (f *Formatter) FormatReport(report *xref.Report) error {
	return f.FormatJSON(FromReport(report))
}

// FormatSummary writes a short styled summary of a build report.
func (f *Formatter) FormatSummary(report *xref.Report) error {
	_, err := io.WriteString(f.writer, Summary(report))
	return err
}

// FormatLookup writes the outcome of a single resolve as one line.
func (f *Formatter) FormatLookup(res ResolutionDTO) error {
	var line string
	if res.Resolved != "" {
		line = pathStyle.Render(res.Resolved) + " " + mutedStyle.Render("("+res.Kind+")")
	} else {
		line = errorStyle.Render("unresolved: " + res.Target)
	}
	_, err := fmt.Fprintln(f.writer, line)
	return err
}

// Summary renders report as styled text.
func Summary(report *xref.Report) string {
	var sb strings.Builder

	resolved := report.References - len(report.Unresolved)
	buildID := report.BuildID
	if len(buildID) > 8 {
		buildID = buildID[:8]
	}

	sb.WriteString(headerStyle.Render("Build " + buildID))
	sb.WriteString(mutedStyle.Render(fmt.Sprintf("  %s  %s  %s",
		plural(report.Documents, "document"),
		plural(report.Entries, "object"),
		plural(report.References, "reference"))))
	sb.WriteByte('\n')

	sb.WriteString(successStyle.Render(fmt.Sprintf("✓ %d resolved", resolved)))
	sb.WriteByte('\n')

	if n := len(report.Duplicates) + len(report.Rejected); n > 0 {
		sb.WriteString(warningStyle.Render("! " + plural(n, "duplicate")))
		sb.WriteByte('\n')
		for _, d := range report.Duplicates {
			sb.WriteString(detailStyle.Render(fmt.Sprintf("%s  %s -> %s", d.Existing.FullName, d.Existing.Location(), d.New.Location())))
			sb.WriteByte('\n')
		}
		for _, d := range report.Rejected {
			sb.WriteString(detailStyle.Render(fmt.Sprintf("%s  %s kept, %s rejected", d.Existing.FullName, d.Existing.Location(), d.New.Location())))
			sb.WriteByte('\n')
		}
	}

	if n := len(report.Malformed); n > 0 {
		sb.WriteString(warningStyle.Render("! " + plural(n, "malformed signature")))
		sb.WriteByte('\n')
		for _, m := range report.Malformed {
			sb.WriteString(detailStyle.Render(fmt.Sprintf("%s:%d  %s", m.Document, m.Line, m.Text)))
			sb.WriteByte('\n')
		}
	}

	for _, err := range report.Invalid {
		sb.WriteString(errorStyle.Render("✗ " + err.Error()))
		sb.WriteByte('\n')
	}

	if n := len(report.Unresolved); n > 0 {
		sb.WriteString(errorStyle.Render(fmt.Sprintf("✗ %d unresolved", n)))
		sb.WriteByte('\n')
		for _, u := range report.Unresolved {
			sb.WriteString(detailStyle.Render(u.Error()))
			sb.WriteByte('\n')
		}
	}

	return sb.String()
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
