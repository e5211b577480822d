package morph

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/cognicore/morfeo/internal/resfile"
	"github.com/cognicore/morfeo/pkg/morfeo/model"
	"github.com/cognicore/morfeo/pkg/morfeo/store"
)

// corrector gives words without analyses the analyses of the closest
// lexicon forms. Candidates come from a symmetric-delete index over the
// lexicon forms and are ranked by Levenshtein distance, then form.
type corrector struct {
	lex         store.Lexicon
	maxDistance int
	deletes     map[string][]string // delete variant -> lexicon forms
}

const defaultMaxDistance = 1

func loadCorrector(ctx context.Context, path string, lex store.Lexicon) (*corrector, error) {
	f, err := resfile.Open("corrector", path, "General")
	if err != nil {
		return nil, err
	}
	c := &corrector{lex: lex, maxDistance: defaultMaxDistance, deletes: make(map[string][]string)}
	for _, l := range f.Section("General") {
		fields := l.Fields()
		if len(fields) != 2 || fields[0] != "MaxDistance" {
			return nil, f.Errorf(l, "unexpected option %q", l.Text)
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil || n < 1 || n > 3 {
			return nil, f.Errorf(l, "MaxDistance must be 1..3, got %q", fields[1])
		}
		c.maxDistance = n
	}

	forms, err := lex.Forms(ctx)
	if err != nil {
		return nil, err
	}
	for _, form := range forms {
		for _, d := range deleteVariants(form, c.maxDistance) {
			c.deletes[d] = append(c.deletes[d], form)
		}
	}
	return c, nil
}

func (c *corrector) name() string { return "corrector" }

func (c *corrector) annotate(ctx context.Context, s *model.Sentence) error {
	for _, w := range s.Words {
		if w.Locked || len(w.Analyses) > 0 {
			continue
		}
		for _, form := range c.candidates(strings.ToLower(w.Form)) {
			as, err := c.lex.Lookup(ctx, form)
			if err != nil {
				return err
			}
			for _, a := range as {
				a.Prob = 0
				w.AddAnalysis(a)
			}
		}
	}
	return nil
}

// candidates returns the lexicon forms at the smallest distance from form
// within maxDistance, sorted.
func (c *corrector) candidates(form string) []string {
	seen := make(map[string]bool)
	var pool []string
	for _, d := range deleteVariants(form, c.maxDistance) {
		for _, cand := range c.deletes[d] {
			if !seen[cand] {
				seen[cand] = true
				pool = append(pool, cand)
			}
		}
	}

	best := c.maxDistance + 1
	var out []string
	for _, cand := range pool {
		dist := levenshtein.ComputeDistance(form, cand)
		switch {
		case dist == 0 || dist > c.maxDistance:
		case dist < best:
			best, out = dist, []string{cand}
		case dist == best:
			out = append(out, cand)
		}
	}
	sort.Strings(out)
	return out
}

// deleteVariants returns s and every string obtainable by deleting up to
// dist runes from it.
func deleteVariants(s string, dist int) []string {
	seen := map[string]bool{s: true}
	out := []string{s}
	frontier := []string{s}
	for d := 0; d < dist; d++ {
		var next []string
		for _, w := range frontier {
			r := []rune(w)
			for i := range r {
				del := string(r[:i]) + string(r[i+1:])
				if !seen[del] {
					seen[del] = true
					out = append(out, del)
					next = append(next, del)
				}
			}
		}
		frontier = next
	}
	return out
}
