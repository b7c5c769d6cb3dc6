package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"frkernel/internal/store"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the snapshot cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached snapshot",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("cache-dir")
		if dir == "" {
			dir = cfg.Cache.Dir
		}
		c, err := store.OpenDiskCache(dir)
		if err != nil {
			return usageError(err)
		}
		if err := c.DropAll(); err != nil {
			return usageError(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "cleared %s\n", c.Dir())
		return nil
	},
}

func init() {
	cacheClearCmd.Flags().String("cache-dir", "", "snapshot cache directory")
	cacheCmd.AddCommand(cacheClearCmd)
}
