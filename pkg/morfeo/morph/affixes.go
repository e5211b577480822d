package morph

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/cognicore/morfeo/internal/resfile"
	"github.com/cognicore/morfeo/pkg/morfeo/model"
	"github.com/cognicore/morfeo/pkg/morfeo/store"
)

// affixRule derives analyses for a word ending in suffix from the lexicon
// entry of its root:
//
//	suffix  roots      condition  tag      lemma
//	ando    ar         ^VMN       VMG0000  L
//	amente  o          ^AQ        RG       F
//
// roots lists "|" separated endings appended to the stripped form ("*" is
// the empty ending). The rule applies to root analyses whose tag matches
// condition. tag "*" keeps the root tag. lemma is R (the root form), L
// (the root lemma, default) or F (the surface form).
type affixRule struct {
	suffix string
	roots  []string
	cond   *regexp.Regexp
	tag    string
	lemma  string
}

type affixes struct {
	rules   map[string][]affixRule
	lengths []int // distinct suffix lengths, longest first
}

func loadAffixes(path string) (*affixes, error) {
	f, err := resfile.Open("affixes", path, "Suffixes")
	if err != nil {
		return nil, err
	}
	a := &affixes{rules: make(map[string][]affixRule)}
	seen := make(map[int]bool)
	for _, l := range f.Section("Suffixes") {
		fields := l.Fields()
		if len(fields) != 4 && len(fields) != 5 {
			return nil, f.Errorf(l, "want suffix, roots, condition, tag [lemma], got %q", l.Text)
		}
		cond, err := regexp.Compile(fields[2])
		if err != nil {
			return nil, f.Errorf(l, "condition %q: %v", fields[2], err)
		}
		r := affixRule{suffix: fields[0], cond: cond, tag: fields[3], lemma: "L"}
		if len(fields) == 5 {
			switch fields[4] {
			case "R", "L", "F":
				r.lemma = fields[4]
			default:
				return nil, f.Errorf(l, "lemma must be R, L or F, got %q", fields[4])
			}
		}
		for _, root := range strings.Split(fields[1], "|") {
			if root == "*" {
				root = ""
			}
			r.roots = append(r.roots, root)
		}
		a.rules[r.suffix] = append(a.rules[r.suffix], r)
		if !seen[len(r.suffix)] {
			seen[len(r.suffix)] = true
			a.lengths = append(a.lengths, len(r.suffix))
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(a.lengths)))
	return a, nil
}

// annotate adds the analyses derivable from every suffix of form.
func (a *affixes) annotate(ctx context.Context, w *model.Word, form string, lex store.Lexicon) error {
	for _, n := range a.lengths {
		if n >= len(form) {
			continue
		}
		suffix := form[len(form)-n:]
		stem := form[:len(form)-n]
		for _, r := range a.rules[suffix] {
			for _, ending := range r.roots {
				root := stem + ending
				as, err := lex.Lookup(ctx, root)
				if err != nil {
					return err
				}
				for _, ra := range as {
					if !r.cond.MatchString(ra.Tag) {
						continue
					}
					na := model.Analysis{Lemma: ra.Lemma, Tag: r.tag}
					switch r.lemma {
					case "R":
						na.Lemma = root
					case "F":
						na.Lemma = form
					}
					if r.tag == "*" {
						na.Tag = ra.Tag
					}
					w.AddAnalysis(na)
					w.InDict = true
				}
			}
		}
	}
	return nil
}
