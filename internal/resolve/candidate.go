package resolve

import (
	"fmt"
	"net/url"
	"strings"
)

// Candidate is one installable (package, version, source) triple produced by
// the host tool's resolution step. Values are immutable once constructed.
type Candidate struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Origin      string `json:"origin,omitempty"`
	IndexURL    string `json:"index_url,omitempty"`
	ArtifactURL string `json:"artifact_url,omitempty"`
}

// String returns a short human-readable form for logs and prompts.
func (c Candidate) String() string {
	return c.Name + " " + c.Version + " (" + c.OriginDomain() + ")"
}

// OriginDomain returns the source domain used for trust classification: the
// explicit Origin when set, otherwise the host of the index URL the candidate
// was found at, otherwise the host of the artifact URL.
func (c Candidate) OriginDomain() string {
	for _, v := range []string{c.Origin, c.IndexURL, c.ArtifactURL} {
		if h := hostOf(v); h != "" {
			return h
		}
	}
	return ""
}

// hostOf extracts a lowercase hostname without port from a URL or a bare
// domain string.
func hostOf(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	if strings.Contains(v, "://") {
		if u, err := url.Parse(v); err == nil && u.Hostname() != "" {
			return strings.ToLower(u.Hostname())
		}
		return ""
	}
	// Bare domain, possibly with a port or path attached.
	if i := strings.IndexAny(v, "/"); i != -1 {
		v = v[:i]
	}
	if i := strings.LastIndex(v, ":"); i != -1 && !strings.Contains(v, "]") {
		v = v[:i]
	}
	return strings.ToLower(v)
}

// PackageName returns the single package name shared by all candidates. The
// arbiter is invoked once per package, so a mixed set is a caller bug.
func PackageName(candidates []Candidate) (string, error) {
	if len(candidates) == 0 {
		return "", fmt.Errorf("no candidates to arbitrate")
	}
	name := candidates[0].Name
	for _, c := range candidates[1:] {
		if CanonicalName(c.Name) != CanonicalName(name) {
			return "", fmt.Errorf("multiple package names in candidate set: %q and %q", name, c.Name)
		}
	}
	return name, nil
}

// CanonicalName normalizes a package name the way the public index does:
// lowercase, with runs of dot, dash and underscore collapsed to a single
// dash. Cache records and statistics queries key on the canonical form so
// Flask and flask resolve identically.
func CanonicalName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	sep := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch r {
		case '.', '-', '_':
			sep = true
		default:
			if sep && b.Len() > 0 {
				b.WriteByte('-')
			}
			sep = false
			b.WriteRune(r)
		}
	}
	return b.String()
}
