// Package version implements the Alpine package version grammar: ordered
// comparison of version strings is domain-specific, not lexicographic
// (spec.md §3, "Version comparison is domain-specific").
//
// A version is: dotted numeric components, an optional single trailing
// letter, zero or more underscore-prefixed suffix tokens (pre-release:
// alpha/beta/pre/rc; post-release: cvs/svn/git/hg/p), each optionally
// followed by digits, and an optional "-r<digits>" build revision.
package version

import (
	"strconv"
	"strings"
)

// suffixRank orders the known suffix tokens; the absence of a suffix ranks
// as 0 ("release"), pre-release tokens rank below it, post-release tokens
// rank above it.
var suffixRank = map[string]int{
	"alpha": -4,
	"beta":  -3,
	"pre":   -2,
	"rc":    -1,
	"cvs":   1,
	"svn":   2,
	"git":   3,
	"hg":    4,
	"p":     5,
}

// suffixTokens lists recognized suffix names; "pre" comes before "p" so
// that "p" is not matched as a prefix of "pre" during matching.
var suffixTokens = []string{"alpha", "beta", "cvs", "svn", "git", "hg", "rc", "pre", "p"}

type suffix struct {
	rank int
	num  uint64
}

// Version is a parsed Alpine version string.
type Version struct {
	Components []uint64
	Letter     byte // 0 if absent
	Suffixes   []suffix
	Revision   uint64
	HasRev     bool
}

// Parse decomposes a version string. Parse never fails: anything it cannot
// make sense of is folded into the trailing numeric/letter reading as best
// effort, so that Compare remains total even over malformed input;
// Validate is the gate that rejects malformed strings before they reach
// Parse in the write path (spec.md §4.3).
func Parse(s string) Version {
	var v Version

	// Split off "-r<digits>" build revision, if present, from the end.
	if i := strings.LastIndex(s, "-r"); i >= 0 {
		rest := s[i+2:]
		if n, err := strconv.ParseUint(rest, 10, 64); err == nil {
			v.Revision = n
			v.HasRev = true
			s = s[:i]
		}
	}

	// Split off "_suffixNNN..." tokens from the end, one at a time.
	var suffixes []suffix
	for {
		i := strings.LastIndexByte(s, '_')
		if i < 0 {
			break
		}
		tok := s[i+1:]
		rank, num, ok := parseSuffixToken(tok)
		if !ok {
			break
		}
		suffixes = append(suffixes, suffix{rank: rank, num: num})
		s = s[:i]
	}
	// suffixes were collected back-to-front; reverse into source order.
	for i, j := 0, len(suffixes)-1; i < j; i, j = i+1, j-1 {
		suffixes[i], suffixes[j] = suffixes[j], suffixes[i]
	}
	v.Suffixes = suffixes

	// A single trailing letter directly after the numeric components.
	if n := len(s); n > 0 {
		c := s[n-1]
		if c >= 'a' && c <= 'z' {
			v.Letter = c
			s = s[:n-1]
		}
	}

	for _, part := range strings.Split(s, ".") {
		if part == "" {
			continue
		}
		n, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			// Non-numeric component: treat remaining text as opaque and
			// stop; Compare still sees a total (if coarser) order.
			break
		}
		v.Components = append(v.Components, n)
	}
	return v
}

func parseSuffixToken(tok string) (rank int, num uint64, ok bool) {
	for _, name := range suffixTokens {
		if !strings.HasPrefix(tok, name) {
			continue
		}
		digits := tok[len(name):]
		if digits == "" {
			return suffixRank[name], 0, true
		}
		n, err := strconv.ParseUint(digits, 10, 64)
		if err != nil {
			continue
		}
		return suffixRank[name], n, true
	}
	return 0, 0, false
}

// Compare implements the total order from spec.md §3/§8: numeric
// components first (missing trailing components treated as 0), then the
// optional letter (no letter sorts below any letter, letters compare by
// byte value), then the suffix chain (missing suffix treated as rank 0,
// num 0 - i.e. "release"), then the build revision (missing treated as 0).
func Compare(a, b string) int {
	return CompareParsed(Parse(a), Parse(b))
}

// CompareParsed compares two already-parsed versions; exposed so callers
// that parse once and compare many times (e.g. sort) avoid re-parsing.
func CompareParsed(va, vb Version) int {
	if c := compareComponents(va.Components, vb.Components); c != 0 {
		return c
	}
	if va.Letter != vb.Letter {
		if va.Letter == 0 {
			return -1
		}
		if vb.Letter == 0 {
			return 1
		}
		if va.Letter < vb.Letter {
			return -1
		}
		return 1
	}
	if c := compareSuffixes(va.Suffixes, vb.Suffixes); c != 0 {
		return c
	}
	ra, rb := va.Revision, vb.Revision
	if ra < rb {
		return -1
	}
	if ra > rb {
		return 1
	}
	return 0
}

func compareComponents(a, b []uint64) int {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		var x, y uint64
		if i < len(a) {
			x = a[i]
		}
		if i < len(b) {
			y = b[i]
		}
		if x < y {
			return -1
		}
		if x > y {
			return 1
		}
	}
	return 0
}

func compareSuffixes(a, b []suffix) int {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		var x, y suffix
		if i < len(a) {
			x = a[i]
		}
		if i < len(b) {
			y = b[i]
		}
		if x.rank != y.rank {
			if x.rank < y.rank {
				return -1
			}
			return 1
		}
		if x.num != y.num {
			if x.num < y.num {
				return -1
			}
			return 1
		}
	}
	return 0
}

// Validate reports whether s is a syntactically valid Alpine version: at
// least one numeric component, and every dot-separated component,
// optional trailing letter, suffix token, and "-r" revision conforms to
// the grammar (spec.md §4.3, §4.4).
func Validate(s string) bool {
	if s == "" {
		return false
	}

	if i := strings.LastIndex(s, "-r"); i >= 0 {
		rest := s[i+2:]
		if rest == "" || !isDigits(rest) {
			return false
		}
		s = s[:i]
		if s == "" {
			return false
		}
	}

	for {
		i := strings.LastIndexByte(s, '_')
		if i < 0 {
			break
		}
		tok := s[i+1:]
		if _, _, ok := parseSuffixToken(tok); !ok {
			return false
		}
		s = s[:i]
		if s == "" {
			return false
		}
	}

	if n := len(s); n > 0 {
		c := s[n-1]
		if c >= 'a' && c <= 'z' {
			s = s[:n-1]
		}
	}
	if s == "" {
		return false
	}

	parts := strings.Split(s, ".")
	if len(parts) == 0 {
		return false
	}
	for _, part := range parts {
		if part == "" || !isDigits(part) {
			return false
		}
	}
	return true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
