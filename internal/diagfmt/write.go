package diagfmt

import (
	"io"

	"frkernel/internal/diag"
)

// Short writes diag.FormatShort lines.
func Short(w io.Writer, bag *diag.Bag, includeNotes bool) error {
	s := diag.FormatShort(bag.Items(), includeNotes)
	if s == "" {
		return nil
	}
	_, err := io.WriteString(w, s+"\n")
	return err
}

// Write renders bag in format. PrettyOpts.ShowNotes also selects notes for
// the other formats.
func Write(w io.Writer, bag *diag.Bag, format Format, opts PrettyOpts) error {
	switch format {
	case FormatJSON:
		return JSON(w, bag, JSONOpts{IncludeNotes: opts.ShowNotes})
	case FormatShort:
		return Short(w, bag, opts.ShowNotes)
	default:
		return Pretty(w, bag, opts)
	}
}
