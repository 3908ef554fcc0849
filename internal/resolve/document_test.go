package resolve

import "testing"

func TestDecodeDocumentArrayForm(t *testing.T) {
	data := []byte(`[
		{"name":"sampleproject","version":"1.3.0","origin":"repo.internal.example.com"},
		{"name":"sampleproject","version":"1.3.1","index_url":"https://pypi.org/simple/sampleproject/"}
	]`)

	candidates, err := DecodeDocument(data)
	if err != nil {
		t.Fatalf("DecodeDocument failed: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("got %d candidates, want 2", len(candidates))
	}
	if candidates[0].OriginDomain() != "repo.internal.example.com" {
		t.Errorf("candidate 0 origin = %q", candidates[0].OriginDomain())
	}
	if candidates[1].OriginDomain() != "pypi.org" {
		t.Errorf("candidate 1 origin = %q", candidates[1].OriginDomain())
	}
}

func TestDecodeDocumentObjectForm(t *testing.T) {
	data := []byte(`{
		"name": "sampleproject",
		"candidates": [
			{"version":"1.3.0","origin":"repo.internal.example.com"},
			{"version":"1.3.1","origin":"files.pythonhosted.org"}
		]
	}`)

	candidates, err := DecodeDocument(data)
	if err != nil {
		t.Fatalf("DecodeDocument failed: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("got %d candidates, want 2", len(candidates))
	}
	for i, c := range candidates {
		if c.Name != "sampleproject" {
			t.Errorf("candidate %d name = %q, want document name", i, c.Name)
		}
	}
}

func TestDecodeDocumentRejectsIncomplete(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "empty input", data: ""},
		{name: "empty array", data: "[]"},
		{name: "missing name", data: `[{"version":"1.0","origin":"pypi.org"}]`},
		{name: "missing version", data: `[{"name":"p","origin":"pypi.org"}]`},
		{name: "missing origin", data: `[{"name":"p","version":"1.0"}]`},
		{name: "not json", data: "plain text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeDocument([]byte(tt.data)); err == nil {
				t.Errorf("DecodeDocument(%q) succeeded, want error", tt.data)
			}
		})
	}
}

func TestParseCompact(t *testing.T) {
	c, err := ParseCompact("sampleproject", "1.3.0=repo.internal.example.com")
	if err != nil {
		t.Fatalf("ParseCompact failed: %v", err)
	}
	if c.Name != "sampleproject" || c.Version != "1.3.0" {
		t.Errorf("candidate = %+v", c)
	}
	if c.Origin != "repo.internal.example.com" || c.IndexURL != "" {
		t.Errorf("bare domain went to wrong field: %+v", c)
	}

	c, err = ParseCompact("sampleproject", "1.3.1=https://pypi.org/simple/")
	if err != nil {
		t.Fatalf("ParseCompact failed: %v", err)
	}
	if c.IndexURL != "https://pypi.org/simple/" || c.Origin != "" {
		t.Errorf("url went to wrong field: %+v", c)
	}
	if c.OriginDomain() != "pypi.org" {
		t.Errorf("origin domain = %q", c.OriginDomain())
	}
}

func TestParseCompactRejectsMalformed(t *testing.T) {
	for _, spec := range []string{"1.3.0", "=pypi.org", "1.3.0=", ""} {
		if _, err := ParseCompact("sampleproject", spec); err == nil {
			t.Errorf("ParseCompact(%q) succeeded, want error", spec)
		}
	}
}
