package resolve

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Document is the host-boundary payload: the candidate set the host tool
// resolved for one package, handed to the decision engine.
type Document struct {
	Name       string      `json:"name,omitempty"`
	Candidates []Candidate `json:"candidates"`
}

// DecodeDocument parses a candidate document. Both a bare JSON array of
// candidates and a {"name":..., "candidates":[...]} object are accepted; the
// object form's name fills in candidates that omit their own.
func DecodeDocument(data []byte) ([]Candidate, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, fmt.Errorf("empty candidate document")
	}
	if strings.HasPrefix(trimmed, "[") {
		var candidates []Candidate
		if err := json.Unmarshal(data, &candidates); err != nil {
			return nil, fmt.Errorf("decode candidate array: %w", err)
		}
		return validateCandidates(candidates)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode candidate document: %w", err)
	}
	for i := range doc.Candidates {
		if doc.Candidates[i].Name == "" {
			doc.Candidates[i].Name = doc.Name
		}
	}
	return validateCandidates(doc.Candidates)
}

// ParseCompact parses the flag form "VERSION=SOURCE" where SOURCE is either
// an origin domain or the index URL the candidate was found at.
func ParseCompact(name, spec string) (Candidate, error) {
	version, source, ok := strings.Cut(spec, "=")
	if !ok {
		return Candidate{}, fmt.Errorf("candidate %q: want VERSION=ORIGIN", spec)
	}
	version = strings.TrimSpace(version)
	source = strings.TrimSpace(source)
	if version == "" || source == "" {
		return Candidate{}, fmt.Errorf("candidate %q: empty version or origin", spec)
	}
	c := Candidate{Name: name, Version: version}
	if strings.Contains(source, "://") {
		c.IndexURL = source
	} else {
		c.Origin = source
	}
	if c.OriginDomain() == "" {
		return Candidate{}, fmt.Errorf("candidate %q: no origin domain", spec)
	}
	return c, nil
}

func validateCandidates(candidates []Candidate) ([]Candidate, error) {
	if len(candidates) == 0 {
		return nil, fmt.Errorf("candidate document contains no candidates")
	}
	for i, c := range candidates {
		if c.Name == "" {
			return nil, fmt.Errorf("candidate %d: missing package name", i)
		}
		if c.Version == "" {
			return nil, fmt.Errorf("candidate %d (%s): missing version", i, c.Name)
		}
		if c.OriginDomain() == "" {
			return nil, fmt.Errorf("candidate %d (%s): no origin domain", i, c.Name)
		}
	}
	return candidates, nil
}
