package morph

import (
	"context"
	"strings"

	"github.com/cognicore/morfeo/pkg/morfeo/model"
	"github.com/cognicore/morfeo/pkg/morfeo/store"
)

// dictionary looks words up in the lexicon. Words already analyzed are
// skipped, except numerals ("uno" is a number and a pronoun). Contraction
// components are resolved against the lexicon so every component carries
// a full lemma and tag.
type dictionary struct {
	lex         store.Lexicon
	lookupForms bool
	affixes     *affixes
}

func (d *dictionary) name() string { return "dictionary" }

func (d *dictionary) annotate(ctx context.Context, s *model.Sentence) error {
	for _, w := range s.Words {
		if w.Locked || (len(w.Analyses) > 0 && !isNumber(w)) {
			continue
		}
		form := strings.ToLower(w.Form)

		if d.lookupForms {
			as, err := d.lex.Lookup(ctx, form)
			if err != nil {
				return err
			}
			for _, a := range as {
				if len(a.Retok) > 0 {
					if a.Retok, err = d.resolve(ctx, a.Retok); err != nil {
						return err
					}
				}
				a.Prob = 0
				w.AddAnalysis(a)
			}
			if len(as) > 0 {
				w.InDict = true
			}
		}

		if d.affixes != nil && !w.InDict {
			if err := d.affixes.annotate(ctx, w, form, d.lex); err != nil {
				return err
			}
		}
	}
	return nil
}

// resolve replaces the tag prefix of each contraction component with the
// first lexicon analysis of the component form it matches.
func (d *dictionary) resolve(ctx context.Context, comps []model.Component) ([]model.Component, error) {
	out := make([]model.Component, len(comps))
	for i, c := range comps {
		out[i] = c
		as, err := d.lex.Lookup(ctx, strings.ToLower(c.Form))
		if err != nil {
			return nil, err
		}
		for _, a := range as {
			if c.Tag == "*" || strings.HasPrefix(a.Tag, c.Tag) {
				out[i].Lemma, out[i].Tag = a.Lemma, a.Tag
				break
			}
		}
	}
	return out, nil
}
