package diagfmt

import (
	"encoding/json"
	"io"

	"frkernel/internal/diag"
)

type NoteJSON struct {
	Decl    string `json:"decl,omitempty"`
	Message string `json:"message"`
}

type DiagnosticJSON struct {
	Severity string     `json:"severity"`
	Code     string     `json:"code"`
	Title    string     `json:"title"`
	Index    int        `json:"index"`
	Decl     string     `json:"decl,omitempty"`
	Message  string     `json:"message"`
	Expected string     `json:"expected,omitempty"`
	Inferred string     `json:"inferred,omitempty"`
	Notes    []NoteJSON `json:"notes,omitempty"`
}

type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
	Truncated   bool             `json:"truncated,omitempty"`
}

// BuildDiagnosticsOutput forms the JSON document without serialising it.
// Timing notes are always included.
func BuildDiagnosticsOutput(bag *diag.Bag, opts JSONOpts) DiagnosticsOutput {
	items := bag.Items()
	n := len(items)
	if opts.Max > 0 && opts.Max < n {
		n = opts.Max
	}
	out := DiagnosticsOutput{Diagnostics: make([]DiagnosticJSON, 0, n), Truncated: n < len(items)}
	for _, d := range items[:n] {
		dj := DiagnosticJSON{
			Severity: d.Severity.Label(),
			Code:     d.Code.ID(),
			Title:    d.Code.Title(),
			Index:    d.Index,
			Decl:     d.Decl,
			Message:  d.Message,
			Expected: d.Expected,
			Inferred: d.Inferred,
		}
		if opts.IncludeNotes || d.Code == diag.ObsTimings {
			for _, note := range d.Notes {
				dj.Notes = append(dj.Notes, NoteJSON{Decl: note.Decl, Message: note.Msg})
			}
		}
		out.Diagnostics = append(out.Diagnostics, dj)
	}
	out.Count = len(out.Diagnostics)
	return out
}

// JSON writes the bag as one indented JSON document.
func JSON(w io.Writer, bag *diag.Bag, opts JSONOpts) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildDiagnosticsOutput(bag, opts))
}
