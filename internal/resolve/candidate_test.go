package resolve

import "testing"

func TestOriginDomain(t *testing.T) {
	tests := []struct {
		name string
		c    Candidate
		want string
	}{
		{
			name: "explicit origin",
			c:    Candidate{Origin: "repo.internal.example.com"},
			want: "repo.internal.example.com",
		},
		{
			name: "origin with port",
			c:    Candidate{Origin: "repo.internal:8443"},
			want: "repo.internal",
		},
		{
			name: "origin as url",
			c:    Candidate{Origin: "https://pypi.org/simple/"},
			want: "pypi.org",
		},
		{
			name: "index url fallback",
			c:    Candidate{IndexURL: "https://pypi.org/simple/sampleproject/"},
			want: "pypi.org",
		},
		{
			name: "artifact url fallback",
			c:    Candidate{ArtifactURL: "https://files.pythonhosted.org/packages/a/b/sampleproject-1.3.1.tar.gz"},
			want: "files.pythonhosted.org",
		},
		{
			name: "origin wins over urls",
			c: Candidate{
				Origin:      "repo.internal",
				IndexURL:    "https://pypi.org/simple/",
				ArtifactURL: "https://files.pythonhosted.org/x.whl",
			},
			want: "repo.internal",
		},
		{
			name: "case folded",
			c:    Candidate{Origin: "PyPI.Org"},
			want: "pypi.org",
		},
		{
			name: "url with port",
			c:    Candidate{IndexURL: "http://localhost:8080/simple/"},
			want: "localhost",
		},
		{
			name: "empty",
			c:    Candidate{},
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.OriginDomain(); got != tt.want {
				t.Errorf("OriginDomain() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCandidateString(t *testing.T) {
	c := Candidate{Name: "sampleproject", Version: "1.3.1", Origin: "pypi.org"}
	want := "sampleproject 1.3.1 (pypi.org)"
	if got := c.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestPackageName(t *testing.T) {
	name, err := PackageName([]Candidate{
		{Name: "Sample.Project", Version: "1.0", Origin: "pypi.org"},
		{Name: "sample_project", Version: "1.1", Origin: "repo.internal"},
	})
	if err != nil {
		t.Fatalf("PackageName failed: %v", err)
	}
	if name != "Sample.Project" {
		t.Errorf("name = %q, want first candidate's name", name)
	}
}

func TestPackageNameEmpty(t *testing.T) {
	if _, err := PackageName(nil); err == nil {
		t.Fatal("PackageName succeeded on empty set")
	}
}

func TestPackageNameMixed(t *testing.T) {
	_, err := PackageName([]Candidate{
		{Name: "alpha", Version: "1.0", Origin: "pypi.org"},
		{Name: "beta", Version: "1.0", Origin: "pypi.org"},
	})
	if err == nil {
		t.Fatal("PackageName succeeded on mixed names")
	}
}

func TestCanonicalName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "sampleproject", want: "sampleproject"},
		{in: "Sample.Project", want: "sample-project"},
		{in: "sample_project", want: "sample-project"},
		{in: "sample--project", want: "sample-project"},
		{in: "Sample._-Project", want: "sample-project"},
		{in: "  Flask  ", want: "flask"},
		{in: "zope.interface", want: "zope-interface"},
	}
	for _, tt := range tests {
		if got := CanonicalName(tt.in); got != tt.want {
			t.Errorf("CanonicalName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
