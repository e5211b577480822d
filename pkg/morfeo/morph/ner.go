package morph

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cognicore/morfeo/internal/resfile"
	"github.com/cognicore/morfeo/pkg/morfeo/model"
)

// ner joins runs of capitalized words into one proper-noun word. Function
// words may link capitalized words ("Banco de España") but never end a
// name. At the start of a sentence only unknown words, or nouns and
// adjectives followed by another capitalized word, open a name.
//
// Resource sections: <FunctionWords>, <Ignore> (capitalized words that
// never open a name on their own), <Tag> (the tag to assign).
type ner struct {
	function map[string]bool
	ignore   map[string]bool
	tag      string
}

const defaultNETag = "NP00000"

// automaton states and token classes
const (
	stIn = iota
	stName
	stFunction
	stStop
)

const (
	tkOther = iota
	tkStartUnknown
	tkStartNoun
	tkUpper
	tkFunction
)

func loadNER(path string) (*ner, error) {
	f, err := resfile.Open("ner", path, "FunctionWords", "Ignore", "Tag")
	if err != nil {
		return nil, err
	}
	n := &ner{function: make(map[string]bool), ignore: make(map[string]bool), tag: defaultNETag}
	for _, l := range f.Section("FunctionWords") {
		n.function[strings.ToLower(l.Text)] = true
	}
	for _, l := range f.Section("Ignore") {
		n.ignore[strings.ToLower(l.Text)] = true
	}
	if tag := f.Section("Tag"); len(tag) > 0 {
		n.tag = tag[0].Text
	}
	return n, nil
}

func (n *ner) name() string { return "ner" }

func (n *ner) annotate(_ context.Context, s *model.Sentence) error {
	i := 0
	for i < len(s.Words) {
		state, last, startNoun := stIn, -1, false
		for j := i; j < len(s.Words) && state != stStop; j++ {
			tk := n.classify(s, j, state)
			state = next(state, tk)
			if state == stName {
				last = j
				if j == i {
					startNoun = tk == tkStartNoun
				}
			}
		}
		if last < 0 {
			i++
			continue
		}

		var keep []model.Analysis
		if startNoun && last == i {
			keep = s.Words[i].Analyses
		}
		w := s.Words[i]
		if last > i {
			w = merge(s, i, last+1)
		} else {
			w.SetAnalyses(keep)
		}
		w.AddAnalysis(model.Analysis{Lemma: strings.ToLower(w.Form), Tag: n.tag})
		w.InDict = true
		i++
	}
	return nil
}

func next(state, tk int) int {
	switch state {
	case stIn, stFunction:
		switch tk {
		case tkStartUnknown, tkStartNoun, tkUpper:
			return stName
		case tkFunction:
			if state == stFunction {
				return stFunction
			}
		}
	case stName:
		switch tk {
		case tkUpper:
			return stName
		case tkFunction:
			return stFunction
		}
	}
	return stStop
}

func (n *ner) classify(s *model.Sentence, j, state int) int {
	w := s.Words[j]
	form := strings.ToLower(w.Form)
	begin := j == 0 || s.Words[j-1].HasTagPrefix("F")

	switch {
	case n.ignore[form]:
		if state == stName {
			return tkUpper
		}
		if j+1 < len(s.Words) && upper(s.Words[j+1].Form) {
			if begin {
				return tkStartNoun
			}
			return tkUpper
		}
	case begin:
		if w.Locked || w.MultiWord || !upper(w.Form) || n.function[form] || dateNumPunct(w) {
			return tkOther
		}
		if len(w.Analyses) == 0 {
			return tkStartUnknown
		}
		if !closedClass(w) && (w.HasTagPrefix("NC") || w.HasTagPrefix("AQ")) &&
			j+1 < len(s.Words) && upper(s.Words[j+1].Form) {
			return tkStartNoun
		}
	case !w.Locked:
		if upper(w.Form) && !dateNumPunct(w) {
			return tkUpper
		}
		if n.function[form] {
			return tkFunction
		}
	}
	return tkOther
}

func upper(form string) bool {
	r, _ := utf8.DecodeRuneInString(form)
	return unicode.IsUpper(r)
}

func dateNumPunct(w *model.Word) bool {
	return w.HasTagPrefix("Z") || w.HasTagPrefix("W") || w.HasTagPrefix("F")
}

func closedClass(w *model.Word) bool {
	for _, p := range []string{"D", "P", "S", "C", "I"} {
		if w.HasTagPrefix(p) {
			return true
		}
	}
	return false
}
