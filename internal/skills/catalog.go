package skills

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// patternSeparators are characters that commonly appear inside skill names
// ("C++", "Node.js", "CI/CD", "C#", "Objective-C"). They split tokens both in
// catalog entries and in matched text.
const patternSeparators = ".#+-/"

// excludedSkill is never reported even if the catalog contains it.
const excludedSkill = "computer"

// Pattern is one catalog skill reduced to its lowercase token sequence.
type Pattern struct {
	Skill  string
	Tokens []string
}

// Catalog recognizes known skills inside arbitrary text.
// A Catalog is immutable once built and safe for concurrent use.
type Catalog struct {
	patterns []Pattern
	byFirst  map[string][]int
	loadErr  error
}

// NewCatalog builds a catalog from raw skill names. Names that reduce to no
// tokens are dropped. Distinct names that reduce to the same tokens are all kept.
func NewCatalog(names []string) *Catalog {
	c := &Catalog{byFirst: make(map[string][]int)}
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}

		tokens := PatternTokens(name)
		if len(tokens) == 0 {
			continue
		}
		c.patterns = append(c.patterns, Pattern{Skill: name, Tokens: tokens})
		idx := len(c.patterns) - 1
		c.byFirst[tokens[0]] = append(c.byFirst[tokens[0]], idx)
	}
	return c
}

// emptyCatalog is the variant handed out when the reference data cannot be loaded.
func emptyCatalog(err error) *Catalog {
	return &Catalog{byFirst: map[string][]int{}, loadErr: err}
}

// PatternTokens normalizes a catalog entry into lowercase tokens.
func PatternTokens(name string) []string {
	norm := strings.Map(func(r rune) rune {
		if strings.ContainsRune(patternSeparators, r) {
			return ' '
		}
		return r
	}, name)
	fields := strings.Fields(strings.ToLower(norm))
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// Len returns the number of patterns.
func (c *Catalog) Len() int {
	return len(c.patterns)
}

// Empty reports whether the catalog has no patterns, either because the
// reference data was empty or because it failed to load.
func (c *Catalog) Empty() bool {
	return len(c.patterns) == 0
}

// LoadErr returns the initialization error for the empty-catalog variant.
func (c *Catalog) LoadErr() error {
	return c.loadErr
}

// Patterns returns a copy of the catalog patterns.
func (c *Catalog) Patterns() []Pattern {
	out := make([]Pattern, len(c.patterns))
	copy(out, c.patterns)
	return out
}

// Match returns every catalog skill found in text, title-cased.
// Every contiguous token span equal to a pattern (case-insensitive) counts,
// including overlapping spans.
func (c *Catalog) Match(text string) Set {
	found := make(Set)
	if c == nil || text == "" || len(c.patterns) == 0 {
		return found
	}

	toks := tokenize(text)
	for i := range toks {
		for _, pi := range c.byFirst[toks[i].lower] {
			p := c.patterns[pi]
			end := i + len(p.Tokens)
			if end > len(toks) {
				continue
			}
			if !spanEquals(toks[i:end], p.Tokens) {
				continue
			}
			span := surface(text, toks[i].start, toks[end-1].end, trailingMarks(p.Skill))
			if isExcluded(span) {
				continue
			}
			found.Add(Canonical(span))
		}
	}
	return found
}

func spanEquals(toks []token, pattern []string) bool {
	for k, want := range pattern {
		if toks[k].lower != want {
			return false
		}
	}
	return true
}

// surface returns text[start:end], extended by suffix when the text carries
// it right after the span. A "C++" pattern keeps its "++" while a bare "C"
// pattern matched inside "C++" stays "C".
func surface(text string, start, end int, suffix string) string {
	if suffix != "" && strings.HasPrefix(text[end:], suffix) {
		end += len(suffix)
	}
	return text[start:end]
}

// trailingMarks returns the run of '+' and '#' that ends a skill name.
func trailingMarks(skill string) string {
	return skill[len(strings.TrimRight(skill, "+#")):]
}

func isExcluded(span string) bool {
	return isNumeric(span) || strings.ToLower(span) == excludedSkill
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsNumber(r) {
			return false
		}
	}
	return true
}

// token is a word or a standalone punctuation mark with its byte offsets in the source text.
type token struct {
	lower      string
	start, end int
}

// tokenize splits text on whitespace, peels leading and trailing punctuation
// off each chunk, and splits the remaining core on pattern separators.
// Punctuation other than the separators becomes its own token so that a
// skill span never runs across a comma or a bracket.
func tokenize(text string) []token {
	var toks []token
	i := 0
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		if unicode.IsSpace(r) {
			i += size
			continue
		}
		j := i
		for j < len(text) {
			r2, s2 := utf8.DecodeRuneInString(text[j:])
			if unicode.IsSpace(r2) {
				break
			}
			j += s2
		}
		toks = appendChunk(toks, text, i, j)
		i = j
	}
	return toks
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isSeparator(r rune) bool {
	return strings.ContainsRune(patternSeparators, r)
}

func appendChunk(toks []token, text string, start, end int) []token {
	// leading punctuation
	for start < end {
		r, size := utf8.DecodeRuneInString(text[start:end])
		if isWordRune(r) {
			break
		}
		if !isSeparator(r) {
			toks = append(toks, token{lower: string(r), start: start, end: start + size})
		}
		start += size
	}

	// trailing punctuation, emitted after the core
	var trailing []token
	for end > start {
		r, size := utf8.DecodeLastRuneInString(text[start:end])
		if isWordRune(r) {
			break
		}
		if !isSeparator(r) {
			trailing = append(trailing, token{lower: string(r), start: end - size, end: end})
		}
		end -= size
	}

	// core: split on separators
	tokStart := -1
	for k := start; k < end; {
		r, size := utf8.DecodeRuneInString(text[k:end])
		if isSeparator(r) {
			if tokStart >= 0 {
				toks = append(toks, token{lower: strings.ToLower(text[tokStart:k]), start: tokStart, end: k})
				tokStart = -1
			}
		} else if tokStart < 0 {
			tokStart = k
		}
		k += size
	}
	if tokStart >= 0 {
		toks = append(toks, token{lower: strings.ToLower(text[tokStart:end]), start: tokStart, end: end})
	}

	for k := len(trailing) - 1; k >= 0; k-- {
		toks = append(toks, trailing[k])
	}
	return toks
}
