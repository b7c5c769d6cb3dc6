package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"frkernel/internal/diag"
)

type palette struct {
	err, warn, info, code, decl, note, dim *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:  color.New(color.FgRed, color.Bold),
		warn: color.New(color.FgYellow, color.Bold),
		info: color.New(color.FgCyan),
		code: color.New(color.Bold),
		decl: color.New(color.FgMagenta),
		note: color.New(color.FgBlue),
		dim:  color.New(color.Faint),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.code, p.decl, p.note, p.dim} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty writes one block per diagnostic:
//
//	error[KER4006] #12 pushBad   v has the wrong type
//	    expected: Vec T (Nat::succ n)
//	    inferred: Vec T n
//	    = note: ...
//
// Declaration names are padded to a common display width. Expects
// bag.Sort() to have been called.
func Pretty(w io.Writer, bag *diag.Bag, opts PrettyOpts) error {
	p := newPalette(opts.Color)
	items := bag.Items()

	posWidth := 0
	for _, d := range items {
		posWidth = max(posWidth, runewidth.StringWidth(position(d)))
	}

	var b strings.Builder
	for _, d := range items {
		sev := p.severity(d.Severity)
		pos := position(d)
		pad := strings.Repeat(" ", posWidth-runewidth.StringWidth(pos))
		fmt.Fprintf(&b, "%s%s %s%s  %s\n",
			sev.Sprint(d.Severity.Label()),
			p.code.Sprintf("[%s]", d.Code.ID()),
			p.decl.Sprint(pos), pad,
			oneLine(d.Message))
		if opts.ShowTypes && (d.Expected != "" || d.Inferred != "") {
			fmt.Fprintf(&b, "    %s %s\n", p.dim.Sprint("expected:"), d.Expected)
			fmt.Fprintf(&b, "    %s %s\n", p.dim.Sprint("inferred:"), d.Inferred)
		}
		if opts.ShowNotes || d.Code == diag.DrvSkipped {
			for _, n := range d.Notes {
				if n.Decl != "" {
					fmt.Fprintf(&b, "    %s %s: %s\n", p.note.Sprint("= note:"), n.Decl, oneLine(n.Msg))
				} else {
					fmt.Fprintf(&b, "    %s %s\n", p.note.Sprint("= note:"), oneLine(n.Msg))
				}
			}
		}
	}
	if opts.Summary {
		b.WriteString(summary(items))
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func position(d diag.Diagnostic) string {
	if d.Index < 0 {
		return "-"
	}
	return fmt.Sprintf("#%d %s", d.Index, d.Decl)
}

func summary(items []diag.Diagnostic) string {
	var errs, warns, infos int
	for _, d := range items {
		switch d.Severity {
		case diag.SevError:
			errs++
		case diag.SevWarning:
			warns++
		default:
			infos++
		}
	}
	return fmt.Sprintf("%s, %s, %s", plural(errs, "error"), plural(warns, "warning"), plural(infos, "note"))
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
