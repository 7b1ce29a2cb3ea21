package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cacheLimit int

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the persistent name-normalization cache",
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached name mappings, most used first",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openCacheStore()
		if err != nil {
			return err
		}
		defer store.Close()
		rows, err := store.List(cmd.Context(), cacheLimit)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			fmt.Println("cache is empty")
			return nil
		}
		for _, r := range rows {
			fmt.Printf("%-30q → %-30q  conf=%.2f source=%s uses=%d\n",
				r.OriginalName, r.NormalizedName, r.Confidence, r.Source, r.UseCount)
		}
		return nil
	},
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache entry counts per source",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openCacheStore()
		if err != nil {
			return err
		}
		defer store.Close()
		st, err := store.CollectStats(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("total entries: %d\n", st.Total)
		for src, n := range st.BySource {
			fmt.Printf("  %s: %d\n", src, n)
		}
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all cached name mappings",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openCacheStore()
		if err != nil {
			return err
		}
		defer store.Close()
		n, err := store.Clear(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("✓ Removed %d cached mappings\n", n)
		return nil
	},
}

func init() {
	cacheListCmd.Flags().IntVar(&cacheLimit, "limit", 100, "maximum entries to list")
	cacheCmd.AddCommand(cacheListCmd, cacheStatsCmd, cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}
