// Package threshold parses and evaluates popularity threshold expressions.
//
// An expression is either a bare integer, shorthand for requiring that
// minimum on all three windows, or a list of window constraints joined by
// "&" with an optional combinator prefix:
//
//	10000
//	last_day=100
//	or:last_day=100&last_month=5000
//	and:last_week=2_000
//
// "or:" requires at least one constraint to hold, "and:" (the default)
// requires all of them. Underscores in numbers are accepted. A bare
// negative integer disables thresholding entirely.
package threshold

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Pirikara/pipgate/internal/popularity"
)

// Mode combines the constraints of a threshold expression.
type Mode string

const (
	All Mode = "all"
	Any Mode = "any"
)

// Window names a download-count aggregation window.
type Window string

const (
	LastDay   Window = "last_day"
	LastWeek  Window = "last_week"
	LastMonth Window = "last_month"
)

// Constraint requires a window count of at least Min.
type Constraint struct {
	Window Window
	Min    int64
}

// Spec is a parsed threshold expression. The zero value is disabled.
type Spec struct {
	Mode        Mode
	Constraints []Constraint
}

// Parse parses a threshold expression. An empty expression and a bare
// negative integer both yield a disabled Spec.
func Parse(expr string) (Spec, error) {
	expr = strings.ToLower(strings.TrimSpace(expr))
	if expr == "" {
		return Spec{}, nil
	}

	mode := All
	rest := expr
	switch {
	case strings.HasPrefix(expr, "or:"):
		mode = Any
		rest = expr[len("or:"):]
	case strings.HasPrefix(expr, "and:"):
		rest = expr[len("and:"):]
	default:
		if n, err := parseCount(expr); err == nil {
			if n < 0 {
				return Spec{}, nil
			}
			return Spec{Mode: All, Constraints: []Constraint{
				{Window: LastDay, Min: n},
				{Window: LastWeek, Min: n},
				{Window: LastMonth, Min: n},
			}}, nil
		}
	}

	parts := strings.Split(rest, "&")
	constraints := make([]Constraint, 0, len(parts))
	seen := make(map[Window]bool)
	for _, part := range parts {
		c, err := parseConstraint(part)
		if err != nil {
			return Spec{}, fmt.Errorf("invalid popularity threshold %q: %w", expr, err)
		}
		if seen[c.Window] {
			return Spec{}, fmt.Errorf("invalid popularity threshold %q: window %s listed twice", expr, c.Window)
		}
		seen[c.Window] = true
		constraints = append(constraints, c)
	}
	return Spec{Mode: mode, Constraints: constraints}, nil
}

func parseConstraint(part string) (Constraint, error) {
	part = strings.TrimSpace(part)
	window, value, ok := strings.Cut(part, "=")
	if !ok {
		return Constraint{}, fmt.Errorf("constraint %q is not of the form window=count", part)
	}
	window = strings.TrimSuffix(strings.TrimSpace(window), ">")
	w := Window(window)
	switch w {
	case LastDay, LastWeek, LastMonth:
	default:
		return Constraint{}, fmt.Errorf("unknown window %q", window)
	}
	n, err := parseCount(strings.TrimSpace(value))
	if err != nil {
		return Constraint{}, fmt.Errorf("count %q is not an integer", value)
	}
	if n < 0 {
		return Constraint{}, fmt.Errorf("count for %s must not be negative", window)
	}
	return Constraint{Window: w, Min: n}, nil
}

func parseCount(s string) (int64, error) {
	return strconv.ParseInt(strings.ReplaceAll(s, "_", ""), 10, 64)
}

// Enabled reports whether the spec carries any constraints.
func (s Spec) Enabled() bool {
	return len(s.Constraints) > 0
}

// Evaluate reports whether the stats satisfy the spec. Only the windows
// listed in the expression participate; with Any one satisfied constraint
// suffices, with All every constraint must hold.
func (s Spec) Evaluate(stats popularity.Stats) bool {
	if !s.Enabled() {
		return false
	}
	for _, c := range s.Constraints {
		ok := windowCount(stats, c.Window) >= c.Min
		if s.Mode == Any && ok {
			return true
		}
		if s.Mode != Any && !ok {
			return false
		}
	}
	return s.Mode != Any
}

func windowCount(stats popularity.Stats, w Window) int64 {
	switch w {
	case LastDay:
		return stats.LastDay
	case LastWeek:
		return stats.LastWeek
	case LastMonth:
		return stats.LastMonth
	default:
		return 0
	}
}

// String renders the spec in a human-readable form, e.g.
// "all(last_day>=100, last_week>=200)".
func (s Spec) String() string {
	if !s.Enabled() {
		return "disabled"
	}
	parts := make([]string, len(s.Constraints))
	for i, c := range s.Constraints {
		parts[i] = fmt.Sprintf("%s>=%d", c.Window, c.Min)
	}
	mode := string(s.Mode)
	if mode == "" {
		mode = string(All)
	}
	return fmt.Sprintf("%s(%s)", mode, strings.Join(parts, ", "))
}
