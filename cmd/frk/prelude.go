package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"frkernel/internal/prelude"
	"frkernel/internal/store"
	"frkernel/internal/term"
)

var preludeCmd = &cobra.Command{
	Use:   "prelude",
	Short: "Write the sample prelude as a bundle",
	Long: `prelude writes universes, id, Nat, Vec and True/trivial as a declaration
bundle that frk check accepts.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("output")
		a := term.NewArena()
		b := store.NewBundle(a, prelude.Decls(a), cfg.Check.Naturals)
		if err := store.WriteBundle(out, b); err != nil {
			return usageError(fmt.Errorf("write %s: %w", out, err))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %d declarations to %s\n", len(b.Decls), out)
		return nil
	},
}

func init() {
	preludeCmd.Flags().StringP("output", "o", "prelude.frb", "bundle path")
}
