// Package dictionary holds the read-only word list the lexer consults to tell
// Korean nouns apart from the postpositions attached to them.
package dictionary

import (
	"sort"
	"unicode/utf8"
)

// WordClass classifies a dictionary entry.
type WordClass int

const (
	Unknown WordClass = iota
	Noun
	Verb
	Postposition
	BuiltinVar
	BuiltinFunc
)

func (c WordClass) String() string {
	switch c {
	case Noun:
		return "Noun"
	case Verb:
		return "Verb"
	case Postposition:
		return "Postposition"
	case BuiltinVar:
		return "BuiltinVar"
	case BuiltinFunc:
		return "BuiltinFunc"
	default:
		return "Unknown"
	}
}

// classPriority ranks classes for lookup when a word could plausibly belong
// to more than one bucket (the seeded lists in seed.go overlap, e.g. 부터/까지
// are both Postposition and Noun and 경로 is both Noun and BuiltinVar, and a
// caller building a custom dictionary may register more overlapping entries).
// Higher wins: BuiltinFunc > BuiltinVar > Postposition > Noun > Verb.
var classPriority = map[WordClass]int{
	BuiltinFunc:  5,
	BuiltinVar:   4,
	Postposition: 3,
	Noun:         2,
	Verb:         1,
	Unknown:      0,
}

// Dictionary is an immutable word -> class map. Build one with New and the
// Add/AddAll seeding helpers, then never mutate it again; the lexer relies on
// lookups being safe for concurrent readers.
type Dictionary struct {
	classes map[string]WordClass
}

// New builds an empty dictionary.
func New() *Dictionary {
	return &Dictionary{classes: make(map[string]WordClass)}
}

// Add registers word under class, resolving collisions by classPriority so
// that, e.g., registering a word as both Noun and Postposition keeps it a
// Postposition.
func (d *Dictionary) Add(word string, class WordClass) {
	if existing, ok := d.classes[word]; ok {
		if classPriority[existing] >= classPriority[class] {
			return
		}
	}
	d.classes[word] = class
}

func (d *Dictionary) AddAll(words []string, class WordClass) {
	for _, w := range words {
		d.Add(w, class)
	}
}

// Classify returns the word's class, or Unknown if it was never registered.
func (d *Dictionary) Classify(word string) WordClass {
	if c, ok := d.classes[word]; ok {
		return c
	}
	return Unknown
}

// IsPostposition reports whether word is itself a registered postposition
// particle (as opposed to a noun ending in one).
func (d *Dictionary) IsPostposition(word string) bool {
	return d.Classify(word) == Postposition
}

// IsProtected reports whether word must never be split by the lexer's
// suffix-stripping pass: it is a Noun, BuiltinFunc, or BuiltinVar.
func (d *Dictionary) IsProtected(word string) bool {
	switch d.Classify(word) {
	case Noun, BuiltinFunc, BuiltinVar:
		return true
	default:
		return false
	}
}

// Postpositions returns every registered postposition, longest first, which
// is the order the lexer's suffix search must try them in (2-char before
// 1-char).
func (d *Dictionary) Postpositions() []string {
	var out []string
	for w, c := range d.classes {
		if c == Postposition {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		li, lj := utf8.RuneCountInString(out[i]), utf8.RuneCountInString(out[j])
		if li != lj {
			return li > lj
		}
		return out[i] < out[j]
	})
	return out
}

// Default returns the dictionary seeded from spec.md §6's normative lists
// (see seed.go). It is built fresh each call so callers can extend a private
// copy without affecting others.
func Default() *Dictionary {
	d := New()
	seed(d)
	return d
}
