package diag

import (
	"fmt"
	"strings"
)

// FormatShort renders one line per diagnostic, plus one per note when
// includeNotes is set:
//
//	error KER4006 #3 pushBad: v has the wrong type
//
// The order is the input order; sort the bag first for stable output.
func FormatShort(diags []Diagnostic, includeNotes bool) string {
	var b strings.Builder
	for i, d := range diags {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s %s %s %s", d.Severity.Label(), d.Code.ID(), position(d), sanitizeMessage(d.Message))
		if !includeNotes {
			continue
		}
		for _, n := range d.Notes {
			fmt.Fprintf(&b, "\nnote %s %s: %s", d.Code.ID(), n.Decl, sanitizeMessage(n.Msg))
		}
	}
	return b.String()
}

func position(d Diagnostic) string {
	if d.Index < 0 {
		return "-:"
	}
	return fmt.Sprintf("#%d %s:", d.Index, d.Decl)
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\r", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}
