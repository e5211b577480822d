package morph

import (
	"context"

	"github.com/kljensen/snowball"

	"github.com/cognicore/morfeo/pkg/morfeo/internalerr"
	"github.com/cognicore/morfeo/pkg/morfeo/model"
)

// snowballLanguages maps language codes to Snowball stemmer names.
var snowballLanguages = map[string]string{
	"en": "english",
	"es": "spanish",
	"fr": "french",
	"ru": "russian",
	"sv": "swedish",
	"no": "norwegian",
	"nb": "norwegian",
	"hu": "hungarian",
}

// stemmer replaces the lemma of guessed analyses, which is the lower-cased
// surface form, with its Snowball stem.
type stemmer struct {
	language string
}

func newStemmer(lang string) (*stemmer, error) {
	name, ok := snowballLanguages[lang]
	if !ok {
		return nil, &internalerr.ConfigError{Field: "modules.stemmer", Reason: "no stemmer for language " + lang}
	}
	return &stemmer{language: name}, nil
}

func (s *stemmer) name() string { return "stemmer" }

func (s *stemmer) annotate(_ context.Context, sent *model.Sentence) error {
	for _, w := range sent.Words {
		for i := range w.Analyses {
			a := &w.Analyses[i]
			if !a.Guessed {
				continue
			}
			stem, err := snowball.Stem(a.Lemma, s.language, true)
			if err != nil {
				return err
			}
			if stem != "" {
				a.Lemma = stem
			}
		}
	}
	return nil
}
