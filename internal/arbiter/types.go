package arbiter

import (
	"fmt"

	"github.com/Pirikara/pipgate/internal/resolve"
)

// Outcome represents the arbitration result
type Outcome string

const (
	OutcomeAllowTrusted   Outcome = "allow-trusted"
	OutcomeAllowUntrusted Outcome = "allow-untrusted"
	OutcomeAbort          Outcome = "abort"
)

// Decision represents a completed arbitration
type Decision struct {
	Package            string             `json:"package"`
	Outcome            Outcome            `json:"outcome"`
	Rationale          string             `json:"rationale"`
	Selected           *resolve.Candidate `json:"selected,omitempty"`
	TrustedCount       int                `json:"trusted_count"`
	UntrustedCount     int                `json:"untrusted_count"`
	BestTrusted        string             `json:"best_trusted,omitempty"`
	BestUntrusted      string             `json:"best_untrusted,omitempty"`
	Threshold          string             `json:"threshold,omitempty"`
	ThresholdSatisfied bool               `json:"threshold_satisfied"`
	CacheHit           bool               `json:"cache_hit"`
	StatsFetched       bool               `json:"stats_fetched"`
	Prompted           bool               `json:"prompted"`
}

// Aborted returns true if the decision is to abort the installation
func (d Decision) Aborted() bool {
	return d.Outcome == OutcomeAbort
}

// AmbiguousCandidatesError reports that candidates span trusted and
// untrusted origins with no automatic resolution available.
type AmbiguousCandidatesError struct {
	Package        string
	Summary        string
	TrustedCount   int
	UntrustedCount int
}

func (e *AmbiguousCandidatesError) Error() string {
	return fmt.Sprintf("multiple possible repository sources for %s: %s", e.Package, e.Summary)
}
