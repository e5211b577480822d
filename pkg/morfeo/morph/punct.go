package morph

import (
	"context"
	"unicode"

	"github.com/cognicore/morfeo/internal/resfile"
	"github.com/cognicore/morfeo/pkg/morfeo/model"
)

// punctuation tags punctuation tokens from a table of "form tag" lines.
// Tokens made only of punctuation or symbol characters but missing from
// the table get the tag of the <Other> section. Punctuation analyses are
// final.
type punctuation struct {
	tags  map[string]string
	other string
}

func loadPunctuation(path string) (*punctuation, error) {
	f, err := resfile.Open("punctuation", path, "Punctuation", "Other")
	if err != nil {
		return nil, err
	}
	p := &punctuation{tags: make(map[string]string)}
	for _, l := range f.Section("Punctuation") {
		fields := l.Fields()
		if len(fields) != 2 {
			return nil, f.Errorf(l, "want form and tag, got %q", l.Text)
		}
		p.tags[fields[0]] = fields[1]
	}
	if other := f.Section("Other"); len(other) > 0 {
		p.other = other[0].Text
	}
	return p, nil
}

func (p *punctuation) name() string { return "punctuation" }

func (p *punctuation) annotate(_ context.Context, s *model.Sentence) error {
	for _, w := range s.Words {
		if w.Locked {
			continue
		}
		tag, ok := p.tags[w.Form]
		if !ok {
			if p.other == "" || !allPunct(w.Form) {
				continue
			}
			tag = p.other
		}
		w.SetAnalyses([]model.Analysis{{Lemma: w.Form, Tag: tag, Prob: 1}})
		w.Locked = true
	}
	return nil
}

func allPunct(form string) bool {
	if form == "" {
		return false
	}
	for _, r := range form {
		if !unicode.IsPunct(r) && !unicode.IsSymbol(r) {
			return false
		}
	}
	return true
}
