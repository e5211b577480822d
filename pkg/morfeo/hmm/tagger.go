// Package hmm selects one analysis per word with a trigram hidden Markov
// model over short tags. States are pairs of consecutive tags; the best
// sentence path is found with Viterbi decoding in log space.
//
// The model file has the sections <Tag>, <Bigram>, <Trigram> (plain
// probabilities), <Initial>, <Word> (natural logs), <Smoothing> (c1, c2,
// c3 interpolation weights) and <Forbidden> (t1.t2.t3 trigrams that never
// occur, t1 may be "*").
package hmm

import (
	"context"
	"io"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/cognicore/morfeo/pkg/morfeo/config"
	"github.com/cognicore/morfeo/pkg/morfeo/internalerr"
	"github.com/cognicore/morfeo/pkg/morfeo/model"
)

// Options configure decoding.
type Options struct {
	// Decoding is viterbi (default) or unigram, which picks the most
	// probable analysis of each word without the sequence model.
	Decoding config.Decoding
	// Retokenize splits words whose selected analysis is a contraction
	// into one word per component.
	Retokenize bool
	// UnknownTag is given to words that reach the tagger with no analysis.
	UnknownTag string
	Logger     *slog.Logger
}

// Tagger is safe for concurrent use once loaded.
type Tagger struct {
	p          *params
	decoding   config.Decoding
	retokenize bool
	unknownTag string
	log        *slog.Logger
}

// Load reads the model from path.
func Load(path string, opts Options) (*Tagger, error) {
	p, err := loadParams(path)
	if err != nil {
		return nil, err
	}
	return newTagger(p, opts)
}

// Parse reads the model from r.
func Parse(r io.Reader, opts Options) (*Tagger, error) {
	p, err := parseParams(r)
	if err != nil {
		return nil, err
	}
	return newTagger(p, opts)
}

func newTagger(p *params, opts Options) (*Tagger, error) {
	t := &Tagger{
		p:          p,
		decoding:   opts.Decoding,
		retokenize: opts.Retokenize,
		unknownTag: opts.UnknownTag,
		log:        opts.Logger,
	}
	switch t.decoding {
	case "":
		t.decoding = config.DecodingViterbi
	case config.DecodingViterbi, config.DecodingUnigram:
	default:
		return nil, &internalerr.ConfigError{Field: "tagger.decoding", Reason: "unknown decoding " + string(t.decoding)}
	}
	if t.unknownTag == "" {
		t.unknownTag = "X"
	}
	if t.log == nil {
		t.log = slog.Default()
	}
	return t, nil
}

// Analyze selects exactly one analysis for every word of every sentence.
// Sentences tagged before are skipped.
func (t *Tagger) Analyze(ctx context.Context, sentences []*model.Sentence) error {
	for _, s := range sentences {
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.Done(model.StageTagged) {
			continue
		}
		if len(s.Words) > 0 {
			t.ensureAnalyses(s)
			if t.decoding == config.DecodingUnigram {
				for _, w := range s.Words {
					w.Select(t.choose(w, "", false))
				}
			} else {
				t.viterbi(s)
			}
			if t.retokenize {
				retokenize(s)
			}
		}
		s.MarkDone(model.StageTagged)
		t.log.Debug("hmm: sentence tagged", "words", len(s.Words), "decoding", t.decoding)
	}
	return nil
}

func (t *Tagger) ensureAnalyses(s *model.Sentence) {
	for _, w := range s.Words {
		if len(w.Analyses) > 0 {
			continue
		}
		locked := w.Locked
		w.Locked = false
		w.AddAnalysis(model.Analysis{Lemma: strings.ToLower(w.Form), Tag: t.unknownTag, Prob: 1, Guessed: true})
		w.Locked = locked
	}
}

// candidate is one short tag a word may emit, with P(tag|word).
type candidate struct {
	tag  string
	prob float64
}

// candidates returns the distinct short tags of w sorted by tag. When no
// analysis carries a probability they are taken as equiprobable.
func candidates(w *model.Word) []candidate {
	probs := analysisProbs(w)
	best := make(map[string]float64)
	for i, a := range w.Analyses {
		st := a.ShortTag()
		if p, ok := best[st]; !ok || probs[i] > p {
			best[st] = probs[i]
		}
	}
	out := make([]candidate, 0, len(best))
	for tag, p := range best {
		out = append(out, candidate{tag, p})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].tag < out[j].tag })
	return out
}

func analysisProbs(w *model.Word) []float64 {
	out := make([]float64, len(w.Analyses))
	sum := 0.0
	for i, a := range w.Analyses {
		out[i] = a.Prob
		sum += a.Prob
	}
	if sum == 0 {
		for i := range out {
			out[i] = 1 / float64(len(out))
		}
	}
	return out
}

type state struct {
	prev, cur string
}

func (t *Tagger) viterbi(s *model.Sentence) {
	n := len(s.Words)
	cands := make([][]candidate, n)
	for i, w := range s.Words {
		cands[i] = candidates(w)
	}

	states := make([][]state, n)
	delta := make([][]float64, n)
	back := make([][]int, n)

	first := s.Words[0]
	for _, c := range cands[0] {
		states[0] = append(states[0], state{startTag, c.tag})
		delta[0] = append(delta[0], t.p.initialLog(c.tag)+t.p.emissionLog(c.tag, first.Form, c.prob))
		back[0] = append(back[0], -1)
	}

	for i := 1; i < n; i++ {
		w := s.Words[i]
		for _, prev := range cands[i-1] {
			for _, c := range cands[i] {
				best, from := math.Inf(-1), -1
				for j, ps := range states[i-1] {
					if ps.cur != prev.tag {
						continue
					}
					v := delta[i-1][j] + t.p.transitionLog(ps.prev, ps.cur, c.tag)
					if v > best {
						best, from = v, j
					}
				}
				states[i] = append(states[i], state{prev.tag, c.tag})
				delta[i] = append(delta[i], best+t.p.emissionLog(c.tag, w.Form, c.prob))
				back[i] = append(back[i], from)
			}
		}
	}

	last := n - 1
	probOf := make(map[string]float64, len(cands[last]))
	for _, c := range cands[last] {
		probOf[c.tag] = c.prob
	}
	end := 0
	for k := 1; k < len(states[last]); k++ {
		if t.preferState(delta[last][k], states[last][k].cur, delta[last][end], states[last][end].cur, probOf) {
			end = k
		}
	}

	for i, k := last, end; i >= 0; i-- {
		s.Words[i].Select(t.choose(s.Words[i], states[i][k].cur, true))
		k = back[i][k]
	}
}

// preferState orders final states by path score, then P(tag|word), then
// unigram tag probability, then tag.
func (t *Tagger) preferState(score float64, tag string, bestScore float64, bestTag string, probOf map[string]float64) bool {
	if score != bestScore {
		return score > bestScore
	}
	if probOf[tag] != probOf[bestTag] {
		return probOf[tag] > probOf[bestTag]
	}
	if pt, pb := t.p.tagProb(tag), t.p.tagProb(bestTag); pt != pb {
		return pt > pb
	}
	return tag < bestTag
}

// choose returns the index of the analysis to select: the most probable
// one, then the one whose short tag has the higher unigram probability,
// then the lowest tag in lexical order. With restrict only analyses of
// short tag st are considered.
func (t *Tagger) choose(w *model.Word, st string, restrict bool) int {
	probs := analysisProbs(w)
	best := -1
	for i, a := range w.Analyses {
		if restrict && a.ShortTag() != st {
			continue
		}
		if best < 0 {
			best = i
			continue
		}
		b := w.Analyses[best]
		switch {
		case probs[i] != probs[best]:
			if probs[i] > probs[best] {
				best = i
			}
		case t.p.tagProb(a.ShortTag()) != t.p.tagProb(b.ShortTag()):
			if t.p.tagProb(a.ShortTag()) > t.p.tagProb(b.ShortTag()) {
				best = i
			}
		case a.Tag < b.Tag:
			best = i
		}
	}
	if best < 0 {
		best = 0
	}
	return best
}

// retokenize replaces words whose selected analysis is a contraction by
// one word per component. Offsets are split along the component forms.
func retokenize(s *model.Sentence) {
	var words []*model.Word
	changed := false
	for _, w := range s.Words {
		sel, ok := w.Selected()
		if !ok || len(sel.Retok) < 2 {
			words = append(words, w)
			continue
		}
		changed = true
		pos := w.Start
		for i, c := range sel.Retok {
			end := pos + len(c.Form)
			if end > w.End || i == len(sel.Retok)-1 {
				end = w.End
			}
			if pos > end {
				pos = end
			}
			cw := model.NewWord(model.Token{Form: c.Form, Start: pos, End: end})
			cw.AddAnalysis(model.Analysis{Lemma: c.Lemma, Tag: c.Tag, Prob: sel.Prob})
			cw.Select(0)
			cw.InDict = w.InDict
			words = append(words, cw)
			pos = end
		}
	}
	if changed {
		s.Words = words
	}
}
