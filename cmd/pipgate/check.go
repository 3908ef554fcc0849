package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Pirikara/pipgate/internal/journal"
	"github.com/Pirikara/pipgate/internal/logger"
	"github.com/Pirikara/pipgate/internal/popularity"
)

// Probe package for the stats service connectivity check. Any package
// works; this one is never going away.
const probePackage = "pip"

func newSelfCheckCmd() *cobra.Command {
	var offline bool

	cmd := &cobra.Command{
		Use:   "self-check",
		Short: "Check pipgate installation and configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("pipgate self-check")
			fmt.Println("==================")

			settings, err := loadSettings(cmd)
			if err != nil {
				fmt.Printf("❌ Failed to load configuration: %v\n", err)
				return err
			}
			if err := settings.Validate(); err != nil {
				fmt.Printf("❌ Invalid configuration: %v\n", err)
				return err
			}
			spec, err := settings.ThresholdSpec()
			if err != nil {
				fmt.Printf("❌ Invalid popularity threshold: %v\n", err)
				return err
			}
			fmt.Printf("✅ Configuration valid (threshold: %s, untrusted domains: %d)\n",
				spec, len(settings.UntrustedDomains))

			// Cache directory must accept records
			cache := popularity.NewFileCache(settings.CacheDir, logger.Discard())
			probe := popularity.Stats{Package: "pipgate-self-check"}
			if err := cache.Put("pipgate-self-check", probe); err != nil {
				fmt.Printf("❌ Cache directory not writable: %v\n", err)
				return err
			}
			if _, ok := cache.Get("pipgate-self-check"); !ok {
				err := fmt.Errorf("probe record not readable after write")
				fmt.Printf("❌ Cache round trip failed: %v\n", err)
				return err
			}
			os.Remove(cache.Path("pipgate-self-check"))
			fmt.Printf("✅ Popularity cache writable: %s\n", settings.CacheDir)

			// Journal database
			if settings.JournalPath == "" {
				fmt.Println("⚠️  Decision journal disabled (no journal path configured)")
			} else {
				j, err := journal.Open(settings.JournalPath)
				if err != nil {
					fmt.Printf("❌ Cannot open decision journal: %v\n", err)
					return err
				}
				j.Close()
				fmt.Printf("✅ Decision journal ready: %s\n", settings.JournalPath)
			}

			// Stats service connectivity; pipgate still arbitrates
			// offline, so a failure here is only a warning.
			if offline {
				fmt.Println("⚠️  Skipping stats service check (--offline)")
			} else {
				fmt.Println("\nTesting download-stats service...")
				client := popularity.NewClient(settings.StatsAPIURL, logger.Discard())
				ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
				defer cancel()
				stats, err := client.Fetch(ctx, probePackage)
				if err != nil {
					fmt.Printf("⚠️  Stats service unreachable: %v\n", err)
					fmt.Println("   Arbitration falls back to zero download counts without it.")
				} else {
					fmt.Printf("✅ Stats service reachable (%s: %d downloads last day)\n",
						probePackage, stats.LastDay)
				}
			}

			fmt.Println("\n✅ pipgate is ready to use!")
			return nil
		},
	}

	cmd.Flags().BoolVar(&offline, "offline", false, "Skip the stats service connectivity check")
	return cmd
}

func newPrintConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "print-config",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			settings.Dump(os.Stdout)
			return nil
		},
	}
}
