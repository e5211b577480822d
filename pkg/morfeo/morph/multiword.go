package morph

import (
	"context"
	"strings"

	"github.com/cognicore/morfeo/internal/resfile"
	"github.com/cognicore/morfeo/pkg/morfeo/model"
)

// multiwords merges known multi-word expressions into one word:
//
//	a_pesar_de  a_pesar_de  SPS00
//
// Matching is greedy: at every position the longest listed expression wins.
type multiwords struct {
	dict   map[string][]model.Analysis // lower-cased forms joined by "_"
	maxLen int
}

func loadMultiwords(path string) (*multiwords, error) {
	f, err := resfile.Open("multiwords", path, "Multiwords")
	if err != nil {
		return nil, err
	}
	m := &multiwords{dict: make(map[string][]model.Analysis), maxLen: 1}
	for _, l := range f.Section("Multiwords") {
		fields := l.Fields()
		if len(fields) != 3 {
			return nil, f.Errorf(l, "want expression, lemma and tag, got %q", l.Text)
		}
		key := strings.ToLower(fields[0])
		if n := strings.Count(key, "_") + 1; n < 2 {
			return nil, f.Errorf(l, "expression %q has a single word", fields[0])
		} else if n > m.maxLen {
			m.maxLen = n
		}
		m.dict[key] = append(m.dict[key], model.Analysis{Lemma: fields[1], Tag: fields[2]})
	}
	return m, nil
}

func (m *multiwords) name() string { return "multiwords" }

func (m *multiwords) annotate(_ context.Context, s *model.Sentence) error {
	for i := 0; i < len(s.Words); i++ {
		longest := m.maxLen
		if remaining := len(s.Words) - i; longest > remaining {
			longest = remaining
		}
		for n := longest; n >= 2; n-- {
			key := m.key(s.Words[i : i+n])
			as, ok := m.dict[key]
			if !ok {
				continue
			}
			w := merge(s, i, i+n)
			for _, a := range as {
				w.AddAnalysis(a)
			}
			w.InDict = true
			break
		}
	}
	return nil
}

func (m *multiwords) key(words []*model.Word) string {
	forms := make([]string, len(words))
	for i, w := range words {
		forms[i] = strings.ToLower(w.Form)
	}
	return strings.Join(forms, "_")
}
