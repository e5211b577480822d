// Package morph attaches every admissible (lemma, tag) analysis to the
// words of split sentences. It runs a fixed chain of sub-modules, each
// enabled by the options: numbers, punctuation, dates, dictionary (with
// affixes and contractions), multiwords, named entities, quantities,
// spelling correction, probabilities and stemming. Words left without any
// analysis get the configured unknown tag.
package morph

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cognicore/morfeo/pkg/morfeo/config"
	"github.com/cognicore/morfeo/pkg/morfeo/model"
	"github.com/cognicore/morfeo/pkg/morfeo/store"
)

// module is one step of the analysis chain.
type module interface {
	name() string
	annotate(ctx context.Context, s *model.Sentence) error
}

// Analyzer is safe for concurrent use once built: every module is
// read-only after construction.
type Analyzer struct {
	modules    []module
	unknownTag string
	log        *slog.Logger
}

// New builds the chain of enabled modules. The lexicon is required when
// the dictionary, affix or corrector modules are enabled. A nil logger
// means slog.Default().
func New(ctx context.Context, opts *config.Options, lex store.Lexicon, log *slog.Logger) (*Analyzer, error) {
	if log == nil {
		log = slog.Default()
	}
	a := &Analyzer{unknownTag: opts.UnknownTag, log: log}
	m := opts.Modules
	res := opts.Resources

	if (m.Dictionary || m.Affixes || m.Corrector) && lex == nil {
		return nil, fmt.Errorf("morph: dictionary modules enabled without a lexicon")
	}

	if m.Numbers {
		a.modules = append(a.modules, newNumbers(opts.Numbers.Decimal, opts.Numbers.Thousand))
	}
	if m.Punctuation {
		p, err := loadPunctuation(res.Punctuation)
		if err != nil {
			return nil, fmt.Errorf("load punctuation: %w", err)
		}
		a.modules = append(a.modules, p)
	}
	if m.Dates {
		a.modules = append(a.modules, newDates())
	}
	if m.Dictionary || m.Affixes {
		d := &dictionary{lex: lex, lookupForms: m.Dictionary}
		if m.Affixes {
			aff, err := loadAffixes(res.Affixes)
			if err != nil {
				return nil, fmt.Errorf("load affixes: %w", err)
			}
			d.affixes = aff
		}
		a.modules = append(a.modules, d)
	}
	if m.Multiwords {
		mw, err := loadMultiwords(res.Multiwords)
		if err != nil {
			return nil, fmt.Errorf("load multiwords: %w", err)
		}
		a.modules = append(a.modules, mw)
	}
	if m.NER {
		n, err := loadNER(res.NER)
		if err != nil {
			return nil, fmt.Errorf("load ner: %w", err)
		}
		a.modules = append(a.modules, n)
	}
	if m.Quantities {
		q, err := loadQuantities(res.Quantities)
		if err != nil {
			return nil, fmt.Errorf("load quantities: %w", err)
		}
		a.modules = append(a.modules, q)
	}
	if m.Corrector {
		c, err := loadCorrector(ctx, res.Corrector, lex)
		if err != nil {
			return nil, fmt.Errorf("load corrector: %w", err)
		}
		a.modules = append(a.modules, c)
	}
	if m.Probabilities {
		p, err := loadProbabilities(res.Probabilities, opts.ProbabilityThreshold)
		if err != nil {
			return nil, fmt.Errorf("load probabilities: %w", err)
		}
		a.modules = append(a.modules, p)
	}
	if m.Stemmer {
		st, err := newStemmer(opts.Language)
		if err != nil {
			return nil, err
		}
		a.modules = append(a.modules, st)
	}

	names := make([]string, len(a.modules))
	for i, mod := range a.modules {
		names[i] = mod.name()
	}
	log.Debug("morph: modules ready", "modules", strings.Join(names, ","))
	return a, nil
}

// Analyze enriches sentences in place. Sentences already analyzed are left
// untouched, so calling it twice yields the same analyses.
func (a *Analyzer) Analyze(ctx context.Context, sentences []*model.Sentence) error {
	for _, s := range sentences {
		if s.Done(model.StageMorph) {
			continue
		}
		for _, mod := range a.modules {
			if err := mod.annotate(ctx, s); err != nil {
				return fmt.Errorf("morph %s: %w", mod.name(), err)
			}
		}
		a.fallback(s)
		s.MarkDone(model.StageMorph)
	}
	return nil
}

// fallback gives words without analyses the unknown tag.
func (a *Analyzer) fallback(s *model.Sentence) {
	for _, w := range s.Words {
		if len(w.Analyses) > 0 {
			continue
		}
		w.AddAnalysis(model.Analysis{
			Lemma:   strings.ToLower(w.Form),
			Tag:     a.unknownTag,
			Prob:    1,
			Guessed: true,
		})
		a.log.Debug("morph: unknown word", "form", w.Form, "tag", a.unknownTag)
	}
}

// merge replaces words[i:j] of s with one multi-word built from their
// tokens. Forms are joined with "_".
func merge(s *model.Sentence, i, j int) *model.Word {
	parts := make([]model.Token, 0, j-i)
	forms := make([]string, 0, j-i)
	for _, w := range s.Words[i:j] {
		if len(w.Parts) > 0 {
			parts = append(parts, w.Parts...)
		} else {
			parts = append(parts, w.Token)
		}
		forms = append(forms, w.Form)
	}
	mw := model.NewWord(model.Token{
		Form:      strings.Join(forms, "_"),
		Start:     s.Words[i].Start,
		End:       s.Words[j-1].End,
		MultiWord: true,
	})
	mw.Parts = parts

	words := make([]*model.Word, 0, len(s.Words)-(j-i)+1)
	words = append(words, s.Words[:i]...)
	words = append(words, mw)
	words = append(words, s.Words[j:]...)
	s.Words = words
	return mw
}
