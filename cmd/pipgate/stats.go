package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Pirikara/pipgate/internal/popularity"
)

func newStatsCmd() *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "stats <package>",
		Short: "Show download statistics for a package",
		Long: `Stats resolves recent download counts for a package through the
popularity cache, fetching from the stats service when the cached record
is missing or stale. With --refresh the cache is bypassed and the record
overwritten.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			if err := settings.Validate(); err != nil {
				return err
			}

			log, closeLog, err := openLogger(settings)
			if err != nil {
				return err
			}
			defer closeLog()

			cache := popularity.NewFileCache(settings.CacheDir, log)
			client := popularity.NewClient(settings.StatsAPIURL, log)
			svc := popularity.NewService(cache, client, settings.MaxCacheAge(), log)

			name := args[0]
			var stats popularity.Stats
			if refresh {
				stats, err = svc.Refresh(cmd.Context(), name)
				if err != nil {
					return err
				}
			} else {
				var info popularity.LookupInfo
				stats, info = svc.Lookup(cmd.Context(), name)
				if info.FetchErr != nil {
					return info.FetchErr
				}
			}

			out, err := json.MarshalIndent(stats, "", "  ")
			if err != nil {
				return fmt.Errorf("encode stats: %w", err)
			}
			fmt.Fprintln(os.Stdout, string(out))
			return nil
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "Bypass the cache and fetch fresh counts")
	return cmd
}
