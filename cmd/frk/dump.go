package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"frkernel/internal/kernel"
	"frkernel/internal/store"
	"frkernel/internal/term"
)

var dumpCmd = &cobra.Command{
	Use:   "dump bundle.frb",
	Short: "Print the declarations of a bundle",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := store.ReadBundle(args[0])
		if err != nil {
			return usageError(fmt.Errorf("%s: %w", args[0], err))
		}
		a, err := term.Restore(b.Arena)
		if err != nil {
			return usageError(fmt.Errorf("%s: %w", args[0], err))
		}
		digest, err := b.Digest()
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "# bundle %s: schema %d, %d declarations, %d terms\n", digest, b.Schema, len(b.Decls), a.Len())
		for i, d := range b.Decls {
			dumpDecl(w, a, i, d)
		}
		return nil
	},
}

func dumpDecl(w io.Writer, a *term.Arena, i int, d kernel.Decl) {
	show := func(t term.ID) string {
		if t == term.NoID {
			return "?"
		}
		return term.Format(a, nil, t)
	}
	switch d.Kind {
	case kernel.DeclUniverse:
		fmt.Fprintf(w, "%3d universe %s := %s\n", i, d.Name, d.Universe)
	case kernel.DeclAxiom:
		fmt.Fprintf(w, "%3d axiom %s : %s\n", i, d.Name, show(d.Type))
	case kernel.DeclDefinition:
		fmt.Fprintf(w, "%3d def %s : %s := %s\n", i, d.Name, show(d.Type), show(d.Value))
	case kernel.DeclInductive:
		ind := d.Inductive
		if ind == nil {
			fmt.Fprintf(w, "%3d inductive %s <missing body>\n", i, d.Name)
			return
		}
		var sig strings.Builder
		for _, p := range ind.Params {
			fmt.Fprintf(&sig, " (%s : %s)", p.Name, show(p.Type))
		}
		sig.WriteString(" :")
		for _, x := range ind.Indices {
			fmt.Fprintf(&sig, " (%s : %s) ->", x.Name, show(x.Type))
		}
		fmt.Fprintf(w, "%3d inductive %s%s %s\n", i, ind.Name, sig.String(), ind.Universe)
		for _, c := range ind.Constructors {
			fmt.Fprintf(w, "      | %s : %s\n", c.Name, show(c.Type))
		}
	default:
		fmt.Fprintf(w, "%3d %s %s\n", i, d.Kind, d.Name)
	}
}
