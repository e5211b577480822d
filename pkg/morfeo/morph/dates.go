package morph

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/cognicore/morfeo/pkg/morfeo/model"
)

const dateTag = "W"

var dateRe = regexp.MustCompile(`^([0-9]{1,2})([/.-])([0-9]{1,2})([/.-])([0-9]{2}|[0-9]{4})$`)

// dates recognizes numeric day/month/year dates. The lemma follows the
// [weekday:d/m/y:hh.mm] convention with unknown fields as "??".
type dates struct{}

func newDates() *dates { return &dates{} }

func (d *dates) name() string { return "dates" }

func (d *dates) annotate(_ context.Context, s *model.Sentence) error {
	for _, w := range s.Words {
		if w.Locked || len(w.Analyses) > 0 {
			continue
		}
		if lemma, ok := parseDate(w.Form); ok {
			w.AddAnalysis(model.Analysis{Lemma: lemma, Tag: dateTag, Prob: 1})
			w.Locked = true
		}
	}
	return nil
}

func parseDate(form string) (string, bool) {
	m := dateRe.FindStringSubmatch(form)
	if m == nil || m[2] != m[4] {
		return "", false
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[3])
	if day < 1 || day > 31 || month < 1 || month > 12 {
		return "", false
	}
	return fmt.Sprintf("[??:%d/%d/%s:??.??]", day, month, m[5]), true
}
