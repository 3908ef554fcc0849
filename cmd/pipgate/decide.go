package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Pirikara/pipgate/internal/arbiter"
	"github.com/Pirikara/pipgate/internal/config"
	"github.com/Pirikara/pipgate/internal/journal"
	"github.com/Pirikara/pipgate/internal/logger"
	"github.com/Pirikara/pipgate/internal/origin"
	"github.com/Pirikara/pipgate/internal/popularity"
	"github.com/Pirikara/pipgate/internal/prompt"
	"github.com/Pirikara/pipgate/internal/resolve"
)

func newDecideCmd() *cobra.Command {
	var (
		pkgName   string
		inputPath string
		noJournal bool
	)

	cmd := &cobra.Command{
		Use:   "decide [version=source ...]",
		Short: "Arbitrate between trusted and untrusted installation candidates",
		Long: `Decide reads a set of installation candidates for one package and
reports which candidate should be installed. Candidates come either from
positional version=source pairs together with --package, or as a JSON
document via --input (use "-" or omit for stdin).

The decision is written to stdout as JSON. The exit code is 0 when a
candidate was selected and 2 when the mix of origins cannot be resolved
automatically.`,
		Example: `  pipgate decide --package sampleproject 1.3.0=repo.internal.example.com 1.3.1=https://pypi.org/simple/
  pipgate decide --input candidates.json
  pip-resolver --emit-candidates | pipgate decide`,
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

			candidates, err := readCandidates(pkgName, inputPath, args)
			if err != nil {
				return err
			}

			spec, err := settings.ThresholdSpec()
			if err != nil {
				return err
			}

			classifier := origin.NewClassifier(settings.UntrustedDomains)
			cache := popularity.NewFileCache(settings.CacheDir, log)
			client := popularity.NewClient(settings.StatsAPIURL, log)
			statsSvc := popularity.NewService(cache, client, settings.MaxCacheAge(), log)

			var prompter prompt.Prompter
			if !noInput {
				prompter = prompt.ForAnswer(settings.PromptAnswer, log)
			}
			mediator := prompt.Mediator{Prompter: prompter, Log: log}

			arb := arbiter.NewArbiter(classifier, spec, statsSvc, mediator, log)
			decision, decideErr := arb.Decide(cmd.Context(), candidates)
			if decideErr != nil && !decision.Aborted() {
				return decideErr
			}

			out, err := json.MarshalIndent(decision, "", "  ")
			if err != nil {
				return fmt.Errorf("encode decision: %w", err)
			}
			fmt.Fprintln(os.Stdout, string(out))

			logDecision(log, decision)
			if !noJournal {
				recordDecision(settings, decision, log)
			}

			return decideErr
		},
	}

	cmd.Flags().StringVar(&pkgName, "package", "", "Package name for positional version=source candidates")
	cmd.Flags().StringVar(&inputPath, "input", "", "Candidate document file, or - for stdin")
	cmd.Flags().BoolVar(&noJournal, "no-journal", false, "Skip recording the decision in the audit journal")
	return cmd
}

// readCandidates builds the candidate set from positional pairs or a
// JSON document.
func readCandidates(pkgName, inputPath string, args []string) ([]resolve.Candidate, error) {
	if len(args) > 0 {
		if pkgName == "" {
			return nil, fmt.Errorf("--package is required with positional candidates")
		}
		candidates := make([]resolve.Candidate, 0, len(args))
		for _, arg := range args {
			c, err := resolve.ParseCompact(pkgName, arg)
			if err != nil {
				return nil, err
			}
			candidates = append(candidates, c)
		}
		return candidates, nil
	}

	var data []byte
	var err error
	switch inputPath {
	case "", "-":
		data, err = io.ReadAll(os.Stdin)
	default:
		data, err = os.ReadFile(inputPath)
	}
	if err != nil {
		return nil, fmt.Errorf("read candidates: %w", err)
	}
	return resolve.DecodeDocument(data)
}

func logDecision(log *logger.Logger, d arbiter.Decision) {
	event := logger.DecisionEvent{
		Package:        d.Package,
		Outcome:        string(d.Outcome),
		Reason:         d.Rationale,
		TrustedCount:   d.TrustedCount,
		UntrustedCount: d.UntrustedCount,
		CacheHit:       d.CacheHit,
		Prompted:       d.Prompted,
	}
	if d.Selected != nil {
		event.Version = d.Selected.Version
		event.Origin = d.Selected.OriginDomain()
	}
	log.LogDecision(event)
}

// recordDecision appends the decision to the audit journal. Journal
// trouble is logged and otherwise ignored; an audit gap must not change
// an installation outcome.
func recordDecision(settings config.Settings, d arbiter.Decision, log *logger.Logger) {
	if settings.JournalPath == "" {
		return
	}
	j, err := journal.Open(settings.JournalPath)
	if err != nil {
		log.Warn("journal", "journal unavailable", map[string]interface{}{
			"path":  settings.JournalPath,
			"error": err.Error(),
		})
		return
	}
	defer j.Close()

	rec := journal.Record{
		Package:        d.Package,
		Outcome:        string(d.Outcome),
		Rationale:      d.Rationale,
		TrustedCount:   d.TrustedCount,
		UntrustedCount: d.UntrustedCount,
		Threshold:      d.Threshold,
		CacheHit:       d.CacheHit,
		Prompted:       d.Prompted,
	}
	if d.Selected != nil {
		rec.Version = d.Selected.Version
		rec.Origin = d.Selected.OriginDomain()
	}
	if _, err := j.Append(rec); err != nil {
		log.Warn("journal", "failed to record decision", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
