// Package origin classifies installation candidates as trusted or
// untrusted by the repository domain they come from.
package origin

import (
	"fmt"
	"strings"

	"github.com/Pirikara/pipgate/internal/resolve"
)

// Class labels a candidate origin.
type Class string

const (
	Trusted   Class = "trusted"
	Untrusted Class = "untrusted"
)

// Classifier decides the trust class of an origin domain. Only domains
// matching the configured untrusted set are untrusted; anything else,
// including an unrecognized domain, is treated as trusted.
type Classifier struct {
	patterns []string
}

// NewClassifier builds a classifier over the untrusted domain set.
// Patterns are plain domains or wildcards of the form *.example.com.
func NewClassifier(domains []string) *Classifier {
	patterns := make([]string, 0, len(domains))
	for _, d := range domains {
		d = normalizeHost(d)
		if d != "" {
			patterns = append(patterns, d)
		}
	}
	return &Classifier{patterns: patterns}
}

// Classify returns the trust class of a single origin host.
func (c *Classifier) Classify(host string) Class {
	h := normalizeHost(host)
	for _, p := range c.patterns {
		if hostMatches(h, p) {
			return Untrusted
		}
	}
	return Trusted
}

// Partition holds candidates split by trust class.
type Partition struct {
	Trusted   []resolve.Candidate
	Untrusted []resolve.Candidate
}

// Partition splits candidates by the trust class of their origin domain.
func (c *Classifier) Partition(candidates []resolve.Candidate) Partition {
	var p Partition
	for _, cand := range candidates {
		switch c.Classify(cand.OriginDomain()) {
		case Untrusted:
			p.Untrusted = append(p.Untrusted, cand)
		default:
			p.Trusted = append(p.Trusted, cand)
		}
	}
	return p
}

// Summary describes a candidate set by origin, in first-appearance order,
// e.g. "2 candidate(s) from pypi.org, 1 candidate(s) from repo.internal".
func Summary(candidates []resolve.Candidate) string {
	var order []string
	counts := make(map[string]int)
	for _, cand := range candidates {
		domain := cand.OriginDomain()
		if domain == "" {
			domain = "unknown"
		}
		if _, seen := counts[domain]; !seen {
			order = append(order, domain)
		}
		counts[domain]++
	}
	parts := make([]string, 0, len(order))
	for _, domain := range order {
		parts = append(parts, fmt.Sprintf("%d candidate(s) from %s", counts[domain], domain))
	}
	return strings.Join(parts, ", ")
}

func normalizeHost(host string) string {
	h := strings.ToLower(strings.TrimSpace(host))
	if i := strings.Index(h, "://"); i != -1 {
		h = h[i+3:]
	}
	if i := strings.IndexAny(h, "/?#"); i != -1 {
		h = h[:i]
	}
	if i := strings.IndexByte(h, ':'); i != -1 {
		h = h[:i]
	}
	return h
}

func hostMatches(host, pattern string) bool {
	if pattern == "" || host == "" {
		return false
	}
	if strings.HasPrefix(pattern, "*.") {
		return host == pattern[2:] || strings.HasSuffix(host, pattern[1:])
	}
	return host == pattern
}
