// Package skills provides the skill catalog used to recognize skills in free text,
// the canonical skill-name form, and the role/skill weight table used for gap analysis.
package skills

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Set is an unordered collection of canonical skill names.
type Set map[string]struct{}

// NewSet builds a Set from already-canonical names.
func NewSet(names ...string) Set {
	s := make(Set, len(names))
	for _, n := range names {
		s.Add(n)
	}
	return s
}

// NewCanonicalSet canonicalizes every name before adding it.
func NewCanonicalSet(names ...string) Set {
	s := make(Set, len(names))
	for _, n := range names {
		if c := Canonical(n); c != "" {
			s.Add(c)
		}
	}
	return s
}

// Add inserts a name. Empty names are ignored.
func (s Set) Add(name string) {
	if name == "" {
		return
	}
	s[name] = struct{}{}
}

// Has reports whether name is present.
func (s Set) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Len returns the number of skills.
func (s Set) Len() int {
	return len(s)
}

// Sorted returns the skills in lexicographic order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for name := range s {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Canonical returns the display form of a skill name: trimmed and title-cased
// ("python" -> "Python", "SQL" -> "Sql", "node.js" -> "Node.Js").
func Canonical(name string) string {
	return TitleCase(strings.TrimSpace(name))
}

// TitleCase upper-cases the first letter of every run of letters and
// lower-cases the rest. Any non-letter ends a run, so "c++ 3d node.js"
// becomes "C++ 3D Node.Js".
func TitleCase(s string) string {
	if s == "" {
		return ""
	}
	// Caser.String resets state, so one caser serves every run.
	caser := cases.Title(language.English)

	var b strings.Builder
	b.Grow(len(s))
	start := -1
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if unicode.IsLetter(r) {
			if start < 0 {
				start = i
			}
			i += size
			continue
		}
		if start >= 0 {
			b.WriteString(caser.String(s[start:i]))
			start = -1
		}
		b.WriteString(s[i : i+size])
		i += size
	}
	if start >= 0 {
		b.WriteString(caser.String(s[start:]))
	}
	return b.String()
}
