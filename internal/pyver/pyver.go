// Package pyver orders version strings the way the host package tool does.
//
// Plain and semver-shaped versions are compared with semver precedence.
// Index-style suffix forms (1.0a1, 2.0.0.post1, 1.0.dev3, epochs like 1!2.0)
// use a tokenizing comparator that follows the index's ordering rules:
// dev < alpha < beta < rc < final < post, epoch dominating everything.
package pyver

import (
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Compare returns -1, 0 or 1 ordering a against b.
func Compare(a, b string) int {
	if va, err := semver.NewVersion(a); err == nil {
		if vb, err := semver.NewVersion(b); err == nil {
			return va.Compare(vb)
		}
	}
	return compareParsed(parse(a), parse(b))
}

// Less reports whether a orders strictly before b.
func Less(a, b string) bool {
	return Compare(a, b) < 0
}

const (
	rankUnknown = 0
	rankAlpha   = 1
	rankBeta    = 2
	rankRC      = 3
)

type parsed struct {
	epoch   int
	release []int
	preSet  bool
	preRank int
	preN    int
	post    int // -1 when absent
	dev     int // -1 when absent
}

func parse(v string) parsed {
	p := parsed{post: -1, dev: -1}
	v = strings.ToLower(strings.TrimSpace(v))
	v = strings.TrimPrefix(v, "v")
	if i := strings.IndexByte(v, '!'); i != -1 {
		p.epoch, _ = strconv.Atoi(v[:i])
		v = v[i+1:]
	}

	tokens := tokenize(v)
	i := 0
	for i < len(tokens) && tokens[i].num >= 0 {
		p.release = append(p.release, tokens[i].num)
		i++
	}
	for i < len(tokens) {
		word := tokens[i].word
		i++
		n := 0
		if i < len(tokens) && tokens[i].num >= 0 {
			n = tokens[i].num
			i++
		}
		switch word {
		case "a", "alpha":
			p.setPre(rankAlpha, n)
		case "b", "beta":
			p.setPre(rankBeta, n)
		case "c", "rc", "pre", "preview":
			p.setPre(rankRC, n)
		case "post", "rev", "r":
			if p.post < 0 {
				p.post = n
			}
		case "dev":
			if p.dev < 0 {
				p.dev = n
			}
		default:
			p.setPre(rankUnknown, n)
		}
	}
	return p
}

func (p *parsed) setPre(rank, n int) {
	if !p.preSet {
		p.preSet = true
		p.preRank = rank
		p.preN = n
	}
}

type token struct {
	num  int // -1 for word tokens
	word string
}

// tokenize splits a version into digit runs and letter runs; separators
// (dot, dash, underscore) only break runs.
func tokenize(v string) []token {
	var tokens []token
	i := 0
	for i < len(v) {
		c := v[i]
		switch {
		case c >= '0' && c <= '9':
			j := i
			for j < len(v) && v[j] >= '0' && v[j] <= '9' {
				j++
			}
			n, _ := strconv.Atoi(v[i:j])
			tokens = append(tokens, token{num: n})
			i = j
		case c >= 'a' && c <= 'z':
			j := i
			for j < len(v) && v[j] >= 'a' && v[j] <= 'z' {
				j++
			}
			tokens = append(tokens, token{num: -1, word: v[i:j]})
			i = j
		default:
			i++
		}
	}
	return tokens
}

func compareParsed(a, b parsed) int {
	if a.epoch != b.epoch {
		return sign(a.epoch - b.epoch)
	}
	if c := compareRelease(a.release, b.release); c != 0 {
		return c
	}
	// A dev-only suffix sorts below any pre-release; no suffix (or post only)
	// sorts above every pre-release.
	if c := sign(a.preClass() - b.preClass()); c != 0 {
		return c
	}
	if a.preSet && b.preSet {
		if c := sign(a.preRank - b.preRank); c != 0 {
			return c
		}
		if c := sign(a.preN - b.preN); c != 0 {
			return c
		}
	}
	if c := sign(a.post - b.post); c != 0 {
		return c
	}
	return sign(a.devKey() - b.devKey())
}

func (p parsed) preClass() int {
	switch {
	case !p.preSet && p.post < 0 && p.dev >= 0:
		return 0
	case p.preSet:
		return 1
	default:
		return 2
	}
}

func (p parsed) devKey() int {
	if p.dev < 0 {
		return int(^uint(0) >> 1)
	}
	return p.dev
}

func compareRelease(a, b []int) int {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		av, bv := 0, 0
		if i < len(a) {
			av = a[i]
		}
		if i < len(b) {
			bv = b[i]
		}
		if av != bv {
			return sign(av - bv)
		}
	}
	return 0
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}
