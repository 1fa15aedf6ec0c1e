// Package depexpr parses and renders the dependency expression grammar
// "[!]name[OP[OP...]ver][@tag]" (spec.md §4.4), grounded on
// original_source's dependency_fromstring/dependency_tostring.
package depexpr

import (
	"bytes"
	"strconv"

	"github.com/alpinelinux/goadb/internal/version"
)

// Mask is the bitset of version-match operators a dependency carries.
type Mask uint32

const (
	Less     Mask = 1 << 0
	Equal    Mask = 1 << 1
	Greater  Mask = 1 << 2
	Fuzzy    Mask = 1 << 3
	Conflict Mask = 1 << 4
	Checksum Mask = 1 << 5

	// Any means "no version constraint at all" (bare "name").
	Any Mask = 0
)

// Expr is a single parsed dependency expression.
type Expr struct {
	Name    string
	Version string // empty when Mask == Any
	Match   Mask
	Tag     string // repository tag after '@', empty if none
}

// ErrDepFormat is returned by Parse when the text does not conform to the
// dependency grammar (spec.md §7, DEPFORMAT).
var ErrDepFormat = depFormatError{}

type depFormatError struct{}

func (depFormatError) Error() string { return "invalid dependency expression" }

const comparerChars = "<>~="

// Parse decomposes one dependency expression. A leading '!' sets Conflict.
// An operand with no comparator is a bare name, carrying no version
// constraint; a bare "!name" is likewise valid and simply means "conflicts
// with any version of name" (spec.md Open Question, resolved per
// original_source's dependency_fromstring: the conflict bit is independent
// of whether a version operator follows).
func Parse(text []byte) (Expr, error) {
	var conflict Mask
	if len(text) > 0 && text[0] == '!' {
		text = text[1:]
		conflict = Conflict
	}

	nameEnd := bytes.IndexAny(text, comparerChars)
	if nameEnd < 0 {
		name, tag := splitTag(text)
		return Expr{Name: string(name), Match: conflict, Tag: string(tag)}, nil
	}

	name, rest := text[:nameEnd], text[nameEnd:]

	opEnd := 0
	for opEnd < len(rest) && isComparerByte(rest[opEnd]) {
		opEnd++
	}
	op, verAndTag := rest[:opEnd], rest[opEnd:]
	ver, tag := splitTag(verAndTag)

	var mask Mask
	for _, c := range op {
		switch c {
		case '<':
			mask |= Less
		case '>':
			mask |= Greater
		case '~':
			mask |= Fuzzy | Equal
		case '=':
			mask |= Equal
		}
	}
	mask |= conflict

	if mask&Checksum != Checksum && !version.Validate(string(ver)) {
		return Expr{}, ErrDepFormat
	}

	return Expr{
		Name:    string(name),
		Version: string(ver),
		Match:   mask,
		Tag:     string(tag),
	}, nil
}

// splitTag separates a trailing "@tag" repository-tag suffix from name.
func splitTag(name []byte) (base, tag []byte) {
	if i := bytes.IndexByte(name, '@'); i >= 0 {
		return name[:i], name[i+1:]
	}
	return name, nil
}

func isComparerByte(c byte) bool {
	switch c {
	case '<', '>', '~', '=':
		return true
	default:
		return false
	}
}

// opString renders the comparator characters for a mask, in the same
// "<>~=" canonical combination order original_source's
// apk_version_op_string uses.
func opString(m Mask) string {
	var b []byte
	if m&Less != 0 {
		b = append(b, '<')
	}
	if m&Greater != 0 {
		b = append(b, '>')
	}
	switch {
	case m&Fuzzy != 0:
		// Fuzzy always carries Equal alongside it (see Parse); "~" alone
		// already conveys both, so EQUAL is not printed again.
		b = append(b, '~')
	case m&Equal != 0:
		b = append(b, '=')
	}
	return string(b)
}

// String renders the expression back to its canonical textual form
// (spec.md §4.4), e.g. "foo", "!foo", "foo=1.2.3", "foo>=1.2", "foo~1.2".
func (e Expr) String() string {
	var buf bytes.Buffer
	if e.Match&Conflict != 0 {
		buf.WriteByte('!')
	}
	buf.WriteString(e.Name)
	if e.Match&^Conflict != Any {
		buf.WriteString(opString(e.Match &^ Conflict))
		buf.WriteString(e.Version)
	}
	if e.Tag != "" {
		buf.WriteByte('@')
		buf.WriteString(e.Tag)
	}
	return buf.String()
}

// MatchVersion reports whether candidate satisfies this expression's
// version constraint, using the Alpine version ordering
// (spec.md §4.4, §8 property: "dependency matching respects mask bits").
func (e Expr) MatchVersion(candidate string) bool {
	if e.Version == "" {
		return true
	}
	cmp := version.Compare(candidate, e.Version)
	switch {
	case cmp < 0:
		return e.Match&Less != 0
	case cmp > 0:
		return e.Match&Greater != 0
	default:
		return e.Match&Equal != 0 || e.Match&Fuzzy != 0
	}
}

// FormatUint renders a uint32 match mask's numeric form, used when the
// mask must be stored verbatim in the MATCH field. The Dependency schema
// omits the MATCH field only when the mask is Any; an Equal mask is stored
// explicitly, and a missing MATCH field reads back as Any.
func FormatUint(m Mask) string {
	return strconv.FormatUint(uint64(m), 10)
}
