package morph

import (
	"context"
	"strings"

	"github.com/cognicore/morfeo/internal/resfile"
	"github.com/cognicore/morfeo/pkg/morfeo/model"
)

// quantities merges a numeral and the unit that follows it into one word:
// currencies get tag Zm and lemma "CODE:value", measures Zu and
// "unit:value", percentages Zp and "value/100". Units spanning several
// tokens are written joined by "_" ("por_ciento").
type quantities struct {
	units  map[string]unit
	maxLen int
}

type unit struct {
	code string
	tag  string
}

var quantitySections = []struct{ name, tag string }{
	{"Currency", "Zm"},
	{"Measure", "Zu"},
	{"Percentage", "Zp"},
}

func loadQuantities(path string) (*quantities, error) {
	f, err := resfile.Open("quantities", path, "Currency", "Measure", "Percentage")
	if err != nil {
		return nil, err
	}
	q := &quantities{units: make(map[string]unit), maxLen: 1}
	for _, sec := range quantitySections {
		for _, l := range f.Section(sec.name) {
			fields := l.Fields()
			if len(fields) < 1 || len(fields) > 2 {
				return nil, f.Errorf(l, "want unit [code], got %q", l.Text)
			}
			u := unit{code: fields[0], tag: sec.tag}
			if len(fields) == 2 {
				u.code = fields[1]
			}
			key := strings.ToLower(fields[0])
			q.units[key] = u
			if n := strings.Count(key, "_") + 1; n > q.maxLen {
				q.maxLen = n
			}
		}
	}
	return q, nil
}

func (q *quantities) name() string { return "quantities" }

func (q *quantities) annotate(_ context.Context, s *model.Sentence) error {
	for i := 0; i+1 < len(s.Words); i++ {
		if !isNumber(s.Words[i]) {
			continue
		}
		value := s.Words[i].Analyses[0].Lemma

		longest := q.maxLen
		if remaining := len(s.Words) - i - 1; longest > remaining {
			longest = remaining
		}
		for n := longest; n >= 1; n-- {
			forms := make([]string, n)
			for k, w := range s.Words[i+1 : i+1+n] {
				forms[k] = strings.ToLower(w.Form)
			}
			u, ok := q.units[strings.Join(forms, "_")]
			if !ok {
				continue
			}
			w := merge(s, i, i+1+n)
			lemma := u.code + ":" + value
			if u.tag == "Zp" {
				lemma = value + "/100"
			}
			w.AddAnalysis(model.Analysis{Lemma: lemma, Tag: u.tag, Prob: 1})
			w.Locked = true
			break
		}
	}
	return nil
}
