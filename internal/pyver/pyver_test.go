package pyver

import "testing"

func TestCompareOrdering(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want int
	}{
		{name: "patch bump", a: "1.3.0", b: "1.3.1", want: -1},
		{name: "numeric not lexical", a: "1.2", b: "1.10", want: -1},
		{name: "short form equals padded", a: "1.2", b: "1.2.0", want: 0},
		{name: "alpha before final", a: "1.0.0a1", b: "1.0.0", want: -1},
		{name: "alpha before beta", a: "1.0.0a2", b: "1.0.0b1", want: -1},
		{name: "beta before rc", a: "1.0.0b3", b: "1.0.0rc1", want: -1},
		{name: "rc before final", a: "2.1rc2", b: "2.1", want: -1},
		{name: "final before post", a: "1.0.0", b: "1.0.0.post1", want: -1},
		{name: "post ordering", a: "1.0.0.post1", b: "1.0.0.post2", want: -1},
		{name: "dev before alpha", a: "2.0.0.dev1", b: "2.0.0a1", want: -1},
		{name: "dev before final", a: "2.0.0.dev5", b: "2.0.0", want: -1},
		{name: "pre dev before pre", a: "1.0a1.dev1", b: "1.0a1", want: -1},
		{name: "post dev before post", a: "1.0.post1.dev1", b: "1.0.post1", want: -1},
		{name: "epoch dominates", a: "1!1.0", b: "2.0", want: 1},
		{name: "epoch ordering", a: "1!1.0", b: "2!0.1", want: -1},
		{name: "rev alias of post", a: "1.0", b: "1.0.rev1", want: -1},
		{name: "c alias of rc", a: "1.0c1", b: "1.0rc1", want: 0},
		{name: "alpha spelled out", a: "1.0alpha1", b: "1.0a1", want: 0},
		{name: "underscore separator", a: "1.0.post_1", b: "1.0.post1", want: 0},
		{name: "v prefix ignored", a: "v1.4.0", b: "1.4.0", want: 0},
		{name: "semver prerelease", a: "1.0.0-alpha.1", b: "1.0.0", want: -1},
		{name: "equal", a: "0.9.2", b: "0.9.2", want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compare(tt.a, tt.b); got != tt.want {
				t.Errorf("Compare(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
			if got := Compare(tt.b, tt.a); got != -tt.want {
				t.Errorf("Compare(%q, %q) = %d, want %d", tt.b, tt.a, got, -tt.want)
			}
		})
	}
}

func TestLess(t *testing.T) {
	if !Less("1.3.0", "1.3.1") {
		t.Error("Less(1.3.0, 1.3.1) = false, want true")
	}
	if Less("1.3.1", "1.3.0") {
		t.Error("Less(1.3.1, 1.3.0) = true, want false")
	}
	if Less("1.3.1", "1.3.1") {
		t.Error("Less(1.3.1, 1.3.1) = true, want false")
	}
}
