package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Pirikara/pipgate/internal/journal"
)

func newAuditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Inspect recorded arbitration decisions",
	}
	cmd.AddCommand(newAuditListCmd())
	cmd.AddCommand(newAuditShowCmd())
	return cmd
}

func openJournal(cmd *cobra.Command) (*journal.Journal, error) {
	settings, err := loadSettings(cmd)
	if err != nil {
		return nil, err
	}
	if settings.JournalPath == "" {
		return nil, fmt.Errorf("decision journal is disabled (no journal path configured)")
	}
	return journal.Open(settings.JournalPath)
}

func newAuditListCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded decisions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := openJournal(cmd)
			if err != nil {
				return err
			}
			defer j.Close()

			records, err := j.List(limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(os.Stdout, "journal is empty")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTIME\tPACKAGE\tOUTCOME\tVERSION\tORIGIN")
			for _, rec := range records {
				id := rec.ID
				if len(id) > 8 {
					id = id[:8]
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					id, rec.Time.Local().Format(time.RFC3339), rec.Package, rec.Outcome, rec.Version, rec.Origin)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of decisions to list (0 for all)")
	return cmd
}

func newAuditShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one recorded decision as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := openJournal(cmd)
			if err != nil {
				return err
			}
			defer j.Close()

			rec, ok, err := j.Find(args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no decision with id %q", args[0])
			}

			out, err := json.MarshalIndent(rec, "", "  ")
			if err != nil {
				return fmt.Errorf("encode record: %w", err)
			}
			fmt.Fprintln(os.Stdout, string(out))
			return nil
		},
	}
}
