// Package model holds the data that flows through the analysis pipeline:
// tokens produced by the tokenizer, words grouped into sentences by the
// splitter, and the analyses, tags and senses the later stages attach.
package model

import (
	"fmt"
	"strings"
)

// Token is an occurrence of a surface form in the input stream.
// Start and End are byte offsets (End exclusive) relative to the stream.
type Token struct {
	Form      string
	Start     int
	End       int
	MultiWord bool // produced by merging several tokens
}

// String returns a debug representation, e.g. "gato"[3:7].
func (t Token) String() string {
	return fmt.Sprintf("%q[%d:%d]", t.Form, t.Start, t.End)
}

// Analysis is one (lemma, tag, probability) hypothesis for a word.
// Contractions carry their components in Retok.
type Analysis struct {
	Lemma   string
	Tag     string
	Prob    float64
	Guessed bool // not backed by a dictionary entry
	Retok   []Component
}

// Component is one word of a contraction, e.g. "de" and "el" for "del".
type Component struct {
	Form  string
	Lemma string
	Tag   string
}

// ShortTag returns the tag class the tagger works with.
func (a Analysis) ShortTag() string {
	return ShortTag(a.Tag)
}

// Sense is a word-sense identifier with its confidence.
type Sense struct {
	ID    string
	Score float64
}

// Word is a token together with its candidate analyses and, after
// tagging, the selected one.
type Word struct {
	Token
	Analyses []Analysis
	Senses   []Sense
	Parts    []Token // original tokens of a multi-word merge

	InDict bool // at least one analysis came from the dictionary
	Locked bool // analyses are final (punctuation, numbers)

	selected int
}

// NewWord wraps a token in a word with no analyses and no selection.
func NewWord(t Token) *Word {
	return &Word{Token: t, selected: -1}
}

// AddAnalysis appends a, ignoring it when an analysis with the same lemma
// and tag is already present. Reports whether a was added.
func (w *Word) AddAnalysis(a Analysis) bool {
	if w.Locked {
		return false
	}
	for _, b := range w.Analyses {
		if b.Lemma == a.Lemma && b.Tag == a.Tag {
			return false
		}
	}
	w.Analyses = append(w.Analyses, a)
	return true
}

// SetAnalyses replaces the candidate set and clears the selection.
func (w *Word) SetAnalyses(as []Analysis) {
	w.Analyses = w.Analyses[:0]
	w.selected = -1
	for _, a := range as {
		w.AddAnalysis(a)
	}
}

// HasTagPrefix reports whether any candidate tag starts with prefix.
func (w *Word) HasTagPrefix(prefix string) bool {
	for _, a := range w.Analyses {
		if strings.HasPrefix(a.Tag, prefix) {
			return true
		}
	}
	return false
}

// Select marks the i-th analysis as the chosen one.
func (w *Word) Select(i int) {
	if i < 0 || i >= len(w.Analyses) {
		panic(fmt.Sprintf("model: select analysis %d of %d for %q", i, len(w.Analyses), w.Form))
	}
	w.selected = i
}

// Selected returns the chosen analysis, or false before tagging.
func (w *Word) Selected() (Analysis, bool) {
	if w.selected < 0 || w.selected >= len(w.Analyses) {
		return Analysis{}, false
	}
	return w.Analyses[w.selected], true
}

// Lemma of the selected analysis, empty before tagging.
func (w *Word) Lemma() string {
	a, _ := w.Selected()
	return a.Lemma
}

// Tag of the selected analysis, empty before tagging.
func (w *Word) Tag() string {
	a, _ := w.Selected()
	return a.Tag
}
