package lexer

import (
	"unicode"

	"hangeulscript/internal/dictionary"
)

// Morpheme is the analyzer's output for a single source word: either one
// morpheme (no split applies) or two (a trailing postposition was stripped).
type Morpheme struct {
	Surface     string // the original word as written
	Base        string // the content-word part (== Surface when Postposition == "")
	Postposition string
}

// MorphologicalAnalyzer segments a word into content word + postposition
// using the algorithm of spec.md §4.1. It is read-only over its dictionary.
type MorphologicalAnalyzer struct {
	dict *dictionary.Dictionary
}

func NewMorphologicalAnalyzer(dict *dictionary.Dictionary) *MorphologicalAnalyzer {
	return &MorphologicalAnalyzer{dict: dict}
}

// splitResult is the outcome of attempting to split a word.
type splitResult struct {
	split   bool
	base    string
	suffix  string
}

// Analyze runs steps 1-5 of the split algorithm and returns the morphemes:
// one entry if W is not split, two if it is (content word first).
func (m *MorphologicalAnalyzer) Analyze(w string) []Morpheme {
	// Step 1: W itself is a postposition.
	if m.dict.IsPostposition(w) {
		return []Morpheme{{Surface: w, Base: "", Postposition: w}}
	}

	// Step 2: protected classes are never split.
	if m.dict.IsProtected(w) {
		return []Morpheme{{Surface: w, Base: w}}
	}

	// Step 3: longest dictionary-postposition suffix, 2-char then 1-char.
	if r := m.trySuffixSplit(w, true); r.split {
		return []Morpheme{
			{Surface: r.base, Base: r.base},
			{Surface: r.suffix, Base: "", Postposition: r.suffix},
		}
	}

	// Step 4: ASCII-prefix + Hangul-postposition split, ignoring the
	// underscore/digit guard (covers mixed words like "i가").
	if r := m.trySuffixSplit(w, false); r.split {
		return []Morpheme{
			{Surface: r.base, Base: r.base},
			{Surface: r.suffix, Base: "", Postposition: r.suffix},
		}
	}

	// Step 5: no split.
	return []Morpheme{{Surface: w, Base: w}}
}

// trySuffixSplit searches w right-to-left for the longest postposition
// suffix. When guardUnderscoreDigit is true it enforces the step-3 rules
// (empty base, trailing _/digit, and built-in protection all block the
// split); when false (step 4) only an empty base blocks it.
func (m *MorphologicalAnalyzer) trySuffixSplit(w string, guardUnderscoreDigit bool) splitResult {
	runes := []rune(w)
	for _, suffixLen := range []int{2, 1} {
		if len(runes) <= suffixLen {
			continue
		}
		suffix := string(runes[len(runes)-suffixLen:])
		if !m.dict.IsPostposition(suffix) {
			continue
		}
		base := string(runes[:len(runes)-suffixLen])
		if base == "" {
			continue
		}
		if guardUnderscoreDigit {
			last := []rune(base)[len([]rune(base))-1]
			if last == '_' || unicode.IsDigit(last) {
				continue
			}
			if m.dict.IsProtected(base + suffix) {
				continue
			}
		}
		return splitResult{split: true, base: base, suffix: suffix}
	}
	return splitResult{}
}

// IsIdentStart reports whether r may begin an identifier: ASCII letter,
// underscore, or a Hangul syllable (U+AC00..U+D7A3).
func IsIdentStart(r rune) bool {
	if r == '_' {
		return true
	}
	if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' {
		return true
	}
	return r >= 0xAC00 && r <= 0xD7A3
}

// IsIdentCont reports whether r may continue an identifier: everything
// IsIdentStart allows, plus ASCII digits.
func IsIdentCont(r rune) bool {
	if r >= '0' && r <= '9' {
		return true
	}
	return IsIdentStart(r)
}
