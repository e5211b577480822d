package morph

import (
	"context"
	"regexp"
	"strings"

	"github.com/cognicore/morfeo/pkg/morfeo/model"
)

const numberTag = "Z"

// numbers recognizes numerals written with the locale decimal and
// thousand marks. The lemma is the number with thousand marks removed and
// a "." decimal point.
type numbers struct {
	re       *regexp.Regexp
	decimal  string
	thousand string
}

func newNumbers(decimal, thousand string) *numbers {
	d, t := regexp.QuoteMeta(decimal), regexp.QuoteMeta(thousand)
	pattern := `^[+-]?(?:[0-9]{1,3}(?:` + t + `[0-9]{3})+|[0-9]+)(?:` + d + `[0-9]+)?$`
	return &numbers{re: regexp.MustCompile(pattern), decimal: decimal, thousand: thousand}
}

func (n *numbers) name() string { return "numbers" }

func (n *numbers) annotate(_ context.Context, s *model.Sentence) error {
	for _, w := range s.Words {
		if w.Locked || len(w.Analyses) > 0 {
			continue
		}
		if lemma, ok := n.parse(w.Form); ok {
			w.AddAnalysis(model.Analysis{Lemma: lemma, Tag: numberTag, Prob: 1})
		}
	}
	return nil
}

// parse reports whether form is a numeral and returns its normalized value.
func (n *numbers) parse(form string) (string, bool) {
	if !n.re.MatchString(form) {
		return "", false
	}
	v := strings.ReplaceAll(form, n.thousand, "")
	return strings.Replace(v, n.decimal, ".", 1), true
}

func isNumber(w *model.Word) bool {
	return len(w.Analyses) > 0 && w.Analyses[0].Tag == numberTag
}
