package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the dashboard cache",
}

var cacheShowCmd = &cobra.Command{
	Use:   "show",
	Short: "List cached entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openCache()
		if err != nil {
			return err
		}
		entries, err := store.List()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(entries) == 0 {
			fmt.Fprintf(out, "Cache is empty (%s)\n", store.Dir())
			return nil
		}
		fmt.Fprintf(out, "Cache: %s\n", store.Dir())
		for _, e := range entries {
			expiry := "never"
			if !e.Expiry.IsZero() {
				expiry = e.Expiry.Local().Format(time.RFC3339)
			}
			fmt.Fprintf(out, "- %s (stored %s, expires %s)\n", e.Key, e.StoredAt.Local().Format(time.RFC3339), expiry)
		}
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openCache()
		if err != nil {
			return err
		}
		n, err := store.Clear()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed %d cached entries\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheShowCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}
