package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Pirikara/pipgate/internal/popularity"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and maintain the popularity cache",
	}
	cmd.AddCommand(newCachePathCmd())
	cmd.AddCommand(newCacheListCmd())
	cmd.AddCommand(newCachePurgeCmd())
	return cmd
}

func newCachePathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path [package]",
		Short: "Print the cache directory, or the record path for a package",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			if len(args) == 0 {
				fmt.Fprintln(os.Stdout, settings.CacheDir)
				return nil
			}
			cache := popularity.NewFileCache(settings.CacheDir, nil)
			fmt.Fprintln(os.Stdout, cache.Path(args[0]))
			return nil
		},
	}
}

func newCacheListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List cached popularity records",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			cache := popularity.NewFileCache(settings.CacheDir, nil)
			entries, err := cache.List()
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(os.Stdout, "cache is empty")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
			fmt.Fprintln(w, "PACKAGE\tLAST_DAY\tLAST_WEEK\tLAST_MONTH\tAGE")
			for _, e := range entries {
				age := time.Since(e.StoredAt).Round(time.Minute)
				fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%s\n",
					e.Stats.Package, e.Stats.LastDay, e.Stats.LastWeek, e.Stats.LastMonth, age)
			}
			return w.Flush()
		},
	}
}

func newCachePurgeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Remove every cached popularity record",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			cache := popularity.NewFileCache(settings.CacheDir, nil)
			if err := cache.Purge(); err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, "popularity cache purged")
			return nil
		},
	}
}
