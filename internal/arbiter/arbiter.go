// Package arbiter decides between trusted and untrusted installation
// candidates using version precedence, a popularity threshold and an
// operator prompt.
package arbiter

import (
	"context"
	"fmt"

	"github.com/Pirikara/pipgate/internal/logger"
	"github.com/Pirikara/pipgate/internal/origin"
	"github.com/Pirikara/pipgate/internal/popularity"
	"github.com/Pirikara/pipgate/internal/prompt"
	"github.com/Pirikara/pipgate/internal/pyver"
	"github.com/Pirikara/pipgate/internal/resolve"
	"github.com/Pirikara/pipgate/internal/threshold"
)

// StatsSource resolves download stats for a package.
type StatsSource interface {
	Lookup(ctx context.Context, name string) (popularity.Stats, popularity.LookupInfo)
}

// Confirmer resolves whether a popular untrusted candidate may be
// installed.
type Confirmer interface {
	Resolve(candidate resolve.Candidate) prompt.Result
}

// Arbiter makes trust decisions over installation candidate sets
type Arbiter struct {
	classifier *origin.Classifier
	spec       threshold.Spec
	stats      StatsSource
	confirmer  Confirmer
	log        *logger.Logger
}

// NewArbiter creates a new Arbiter
func NewArbiter(classifier *origin.Classifier, spec threshold.Spec, stats StatsSource, confirmer Confirmer, log *logger.Logger) *Arbiter {
	if log == nil {
		log = logger.Discard()
	}
	return &Arbiter{
		classifier: classifier,
		spec:       spec,
		stats:      stats,
		confirmer:  confirmer,
		log:        log,
	}
}

// Decide arbitrates over a candidate set for a single package.
//
// Candidates from a single trust class pass through unchanged. When both
// classes are present the highest trusted version wins unless an
// untrusted candidate is strictly newer; that case goes through the
// popularity threshold and, if the threshold is satisfied, an operator
// prompt. Without a configured threshold the ambiguity is not resolvable
// and the decision is to abort, returned together with an
// AmbiguousCandidatesError.
func (a *Arbiter) Decide(ctx context.Context, candidates []resolve.Candidate) (Decision, error) {
	name, err := resolve.PackageName(candidates)
	if err != nil {
		return Decision{}, err
	}

	part := a.classifier.Partition(candidates)
	d := Decision{
		Package:        name,
		TrustedCount:   len(part.Trusted),
		UntrustedCount: len(part.Untrusted),
		Threshold:      a.spec.String(),
	}

	a.log.Debug("arbiter", "candidates classified", map[string]interface{}{
		"package":   name,
		"trusted":   len(part.Trusted),
		"untrusted": len(part.Untrusted),
	})

	if len(part.Untrusted) == 0 {
		best := bestOf(part.Trusted)
		d.Outcome = OutcomeAllowTrusted
		d.Rationale = "all candidates come from trusted origins"
		d.Selected = best
		d.BestTrusted = best.Version
		return d, nil
	}
	if len(part.Trusted) == 0 {
		best := bestOf(part.Untrusted)
		d.Outcome = OutcomeAllowUntrusted
		d.Rationale = "all candidates come from untrusted origins"
		d.Selected = best
		d.BestUntrusted = best.Version
		return d, nil
	}

	bestTrusted := bestOf(part.Trusted)
	bestUntrusted := bestOf(part.Untrusted)
	d.BestTrusted = bestTrusted.Version
	d.BestUntrusted = bestUntrusted.Version

	a.log.Debug("arbiter", "version precedence", map[string]interface{}{
		"package":        name,
		"best_trusted":   bestTrusted.Version,
		"best_untrusted": bestUntrusted.Version,
	})

	if pyver.Compare(bestTrusted.Version, bestUntrusted.Version) >= 0 {
		d.Outcome = OutcomeAllowTrusted
		d.Rationale = "trusted version is not older than any untrusted candidate"
		d.Selected = bestTrusted
		return d, nil
	}

	// An untrusted candidate is strictly newer from here on.
	if !a.spec.Enabled() {
		d.Outcome = OutcomeAbort
		d.Rationale = fmt.Sprintf(
			"untrusted candidate is newer and no popularity threshold is configured (%d trusted, %d untrusted)",
			len(part.Trusted), len(part.Untrusted))
		return d, &AmbiguousCandidatesError{
			Package:        name,
			Summary:        origin.Summary(candidates),
			TrustedCount:   len(part.Trusted),
			UntrustedCount: len(part.Untrusted),
		}
	}

	stats, info := a.stats.Lookup(ctx, name)
	d.CacheHit = info.CacheHit
	d.StatsFetched = info.Fetched

	satisfied := a.spec.Evaluate(stats)
	d.ThresholdSatisfied = satisfied
	a.log.Debug("arbiter", "threshold evaluated", map[string]interface{}{
		"package":    name,
		"threshold":  a.spec.String(),
		"satisfied":  satisfied,
		"last_day":   stats.LastDay,
		"last_week":  stats.LastWeek,
		"last_month": stats.LastMonth,
	})

	if !satisfied {
		d.Outcome = OutcomeAllowTrusted
		d.Rationale = "untrusted candidate does not satisfy the popularity threshold"
		d.Selected = bestTrusted
		return d, nil
	}

	res := a.resolvePrompt(*bestUntrusted)
	d.Prompted = res.Prompted
	switch {
	case res.Allowed:
		d.Outcome = OutcomeAllowUntrusted
		d.Rationale = "operator explicitly allowed the untrusted candidate"
		d.Selected = bestUntrusted
	case res.Unavailable:
		d.Outcome = OutcomeAllowTrusted
		d.Rationale = "no prompt available, keeping the trusted candidate"
		d.Selected = bestTrusted
	default:
		d.Outcome = OutcomeAllowTrusted
		d.Rationale = "operator declined the untrusted candidate"
		d.Selected = bestTrusted
	}
	return d, nil
}

func (a *Arbiter) resolvePrompt(candidate resolve.Candidate) prompt.Result {
	if a.confirmer == nil {
		return prompt.Result{Unavailable: true}
	}
	return a.confirmer.Resolve(candidate)
}

func bestOf(candidates []resolve.Candidate) *resolve.Candidate {
	best := 0
	for i := 1; i < len(candidates); i++ {
		if pyver.Compare(candidates[i].Version, candidates[best].Version) > 0 {
			best = i
		}
	}
	c := candidates[best]
	return &c
}
