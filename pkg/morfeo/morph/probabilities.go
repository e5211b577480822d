package morph

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/cognicore/morfeo/internal/resfile"
	"github.com/cognicore/morfeo/pkg/morfeo/model"
)

// probabilities assigns a probability to every analysis and sorts the
// analyses by it. Ambiguous known words are smoothed with lexical,
// ambiguity-class or single-tag frequencies; unknown words get extra
// hypotheses from a suffix-based guesser over the open-class tags.
//
// Sections:
//
//	<SingleTagFreq>  short-tag freq
//	<ClassTagFreq>   class (short-tag freq)+     e.g. NC-VM NC 0.6 VM 0.4
//	<FormTagFreq>    form class (short-tag freq)+
//	<UnknownTags>    tag freq                    normalized on load
//	<Theeta>         smoothing weight for suffix back-off
//	<Suffixes>       suffix count (tag freq)+
type probabilities struct {
	single    map[string]float64
	class     map[string]map[string]float64
	lexical   map[string]map[string]float64
	unknown   []tagFreq // sorted by tag
	theeta    float64
	suffixes  map[string]map[string]float64
	longest   int
	threshold float64
}

type tagFreq struct {
	tag  string
	freq float64
}

var probabilitySections = []string{"SingleTagFreq", "ClassTagFreq", "FormTagFreq", "UnknownTags", "Theeta", "Suffixes"}

func loadProbabilities(path string, threshold float64) (*probabilities, error) {
	f, err := resfile.Open("probabilities", path, probabilitySections...)
	if err != nil {
		return nil, err
	}
	p := &probabilities{
		single:    make(map[string]float64),
		class:     make(map[string]map[string]float64),
		lexical:   make(map[string]map[string]float64),
		suffixes:  make(map[string]map[string]float64),
		threshold: threshold,
	}

	for _, l := range f.Section("SingleTagFreq") {
		pairs, err := parsePairs(l.Fields())
		if err != nil || len(pairs) != 1 {
			return nil, f.Errorf(l, "want tag and frequency, got %q", l.Text)
		}
		p.single[pairs[0].tag] = pairs[0].freq
	}
	for _, l := range f.Section("ClassTagFreq") {
		fields := l.Fields()
		pairs, err := parsePairs(fields[1:])
		if err != nil || len(pairs) == 0 {
			return nil, f.Errorf(l, "want class and tag/frequency pairs, got %q", l.Text)
		}
		p.class[fields[0]] = pairMap(pairs)
	}
	for _, l := range f.Section("FormTagFreq") {
		fields := l.Fields()
		if len(fields) < 4 {
			return nil, f.Errorf(l, "want form, class and tag/frequency pairs, got %q", l.Text)
		}
		pairs, err := parsePairs(fields[2:])
		if err != nil {
			return nil, f.Errorf(l, "%v", err)
		}
		p.lexical[strings.ToLower(fields[0])] = pairMap(pairs)
	}

	sum := 0.0
	for _, l := range f.Section("UnknownTags") {
		pairs, err := parsePairs(l.Fields())
		if err != nil || len(pairs) != 1 {
			return nil, f.Errorf(l, "want tag and frequency, got %q", l.Text)
		}
		p.unknown = append(p.unknown, pairs[0])
		sum += pairs[0].freq
	}
	for i := range p.unknown {
		p.unknown[i].freq /= sum
	}
	sort.Slice(p.unknown, func(i, j int) bool { return p.unknown[i].tag < p.unknown[j].tag })

	for _, l := range f.Section("Theeta") {
		v, err := strconv.ParseFloat(l.Text, 64)
		if err != nil || v < 0 {
			return nil, f.Errorf(l, "bad theeta %q", l.Text)
		}
		p.theeta = v
	}

	for _, l := range f.Section("Suffixes") {
		fields := l.Fields()
		if len(fields) < 4 {
			return nil, f.Errorf(l, "want suffix, count and tag/frequency pairs, got %q", l.Text)
		}
		count, err := strconv.ParseFloat(fields[1], 64)
		if err != nil || count <= 0 {
			return nil, f.Errorf(l, "bad suffix count %q", fields[1])
		}
		pairs, err := parsePairs(fields[2:])
		if err != nil {
			return nil, f.Errorf(l, "%v", err)
		}
		m := make(map[string]float64, len(pairs))
		for _, tf := range pairs {
			m[tf.tag] = tf.freq / count
		}
		p.suffixes[fields[0]] = m
		if n := len(fields[0]); n > p.longest {
			p.longest = n
		}
	}
	return p, nil
}

func parsePairs(fields []string) ([]tagFreq, error) {
	if len(fields)%2 != 0 {
		return nil, strconv.ErrSyntax
	}
	out := make([]tagFreq, 0, len(fields)/2)
	for i := 0; i < len(fields); i += 2 {
		v, err := strconv.ParseFloat(fields[i+1], 64)
		if err != nil {
			return nil, err
		}
		out = append(out, tagFreq{fields[i], v})
	}
	return out, nil
}

func pairMap(pairs []tagFreq) map[string]float64 {
	m := make(map[string]float64, len(pairs))
	for _, tf := range pairs {
		m[tf.tag] = tf.freq
	}
	return m
}

func (p *probabilities) name() string { return "probabilities" }

func (p *probabilities) annotate(_ context.Context, s *model.Sentence) error {
	for _, w := range s.Words {
		p.annotateWord(w)
	}
	return nil
}

func (p *probabilities) annotateWord(w *model.Word) {
	n := len(w.Analyses)
	known := w.InDict || w.Locked || w.HasTagPrefix("F") || w.HasTagPrefix("Z") || w.HasTagPrefix("W")
	for _, a := range w.Analyses {
		known = known || len(a.Retok) > 0
	}

	switch {
	case known && n == 1:
		w.Analyses[0].Prob = 1
	case known && n > 1:
		p.smooth(w)
	default:
		for i := range w.Analyses {
			w.Analyses[i].Prob = 1 / float64(n)
		}
		sum := p.guess(w)
		if sum > 0 {
			for i := range w.Analyses {
				w.Analyses[i].Prob /= sum
			}
		}
	}

	sort.SliceStable(w.Analyses, func(i, j int) bool {
		return w.Analyses[i].Prob > w.Analyses[j].Prob
	})
}

// smooth distributes probability among the analyses of a known ambiguous
// word: (P(short tag) + 1/n) / (sum + 1).
func (p *probabilities) smooth(w *model.Word) {
	counts := make(map[string]float64)
	for _, a := range w.Analyses {
		counts[a.ShortTag()]++
	}
	shorts := make([]string, 0, len(counts))
	for t := range counts {
		shorts = append(shorts, t)
	}
	sort.Strings(shorts)

	withNP := strings.Join(shorts, "-")
	var noNP []string
	for _, t := range shorts {
		if t != "NP" {
			noNP = append(noNP, t)
		}
	}
	withoutNP := strings.Join(noNP, "-")

	freq, ok := p.lexical[strings.ToLower(w.Form)]
	if !ok {
		freq, ok = p.class[withNP]
	}
	if !ok && withoutNP != withNP && withoutNP != "" {
		freq, ok = p.class[withoutNP]
	}
	if !ok {
		freq = p.single
	}

	sum := 0.0
	for _, t := range shorts {
		sum += freq[t] * counts[t]
	}
	n := float64(len(w.Analyses))
	for i := range w.Analyses {
		w.Analyses[i].Prob = (freq[w.Analyses[i].ShortTag()] + 1/n) / (sum + 1)
	}
}

// guess adds unknown-word hypotheses whose short tag the word does not
// have yet and returns the total probability mass. Hypotheses below the
// threshold are kept only when the word would otherwise have none.
func (p *probabilities) guess(w *model.Word) float64 {
	form := strings.ToLower(w.Form)
	suffix := p.longestSuffix(form)

	sum, low := 0.0, 0.0
	if len(w.Analyses) > 0 {
		sum = 1
	}
	var below []model.Analysis
	for _, u := range p.unknown {
		if hasShortPrefix(w, u.tag) {
			continue
		}
		prob := p.suffixProb(u.tag, u.freq, suffix)
		a := model.Analysis{Lemma: form, Tag: u.tag, Prob: prob, Guessed: true}
		if prob >= p.threshold {
			sum += prob
			w.AddAnalysis(a)
		} else {
			low += prob
			below = append(below, a)
		}
	}
	if len(w.Analyses) == 0 {
		w.SetAnalyses(below)
		sum = low
	}
	return sum
}

// hasShortPrefix reports whether tag starts with the short tag of one of
// the word's analyses.
func hasShortPrefix(w *model.Word, tag string) bool {
	for _, a := range w.Analyses {
		if strings.HasPrefix(tag, a.ShortTag()) {
			return true
		}
	}
	return false
}

func (p *probabilities) longestSuffix(form string) string {
	n := p.longest
	if n > len(form) {
		n = len(form)
	}
	for ; n > 0; n-- {
		if !utf8.RuneStart(form[len(form)-n]) {
			continue
		}
		s := form[len(form)-n:]
		if _, ok := p.suffixes[s]; ok {
			return s
		}
	}
	return ""
}

// suffixProb backs off recursively from the longest suffix to the prior:
// P(t|s) = (P(t|s) + theeta * P(t|s minus its first rune)) / (1 + theeta).
func (p *probabilities) suffixProb(tag string, prior float64, suffix string) float64 {
	if suffix == "" {
		return prior
	}
	_, size := utf8.DecodeRuneInString(suffix)
	x := p.suffixProb(tag, prior, suffix[size:])
	pt := p.suffixes[suffix][tag]
	return (pt + p.theeta*x) / (1 + p.theeta)
}
