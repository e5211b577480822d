package hmm

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/cognicore/morfeo/internal/resfile"
	"github.com/cognicore/morfeo/pkg/morfeo/internalerr"
	"github.com/cognicore/morfeo/pkg/morfeo/model"
)

const (
	resource = "tagger"

	// anyTag is the fallback entry of <Tag>, <Initial> ("0.x") and the
	// unknown form of <Word>.
	anyTag         = "x"
	unobservedWord = "<UNOBSERVED_WORD>"
	startTag       = "0"

	// floorLogProb stands for log(0) so that impossible paths still
	// compare deterministically.
	floorLogProb = -1e4
)

var sections = []string{"Tag", "Bigram", "Trigram", "Initial", "Word", "Smoothing", "Forbidden"}

// params holds the trigram model. Tag, bigram and trigram tables are
// probabilities; initial and word tables are natural logs.
type params struct {
	tag       map[string]float64
	bigram    map[string]float64
	trigram   map[string]float64
	initial   map[string]float64
	word      map[string]float64
	c         [3]float64
	forbidden map[string]bool // "t1.t2.t3", t1 may be "*"
}

func loadParams(path string) (*params, error) {
	f, err := resfile.Open(resource, path, sections...)
	if err != nil {
		return nil, err
	}
	return buildParams(f)
}

func parseParams(r io.Reader) (*params, error) {
	f, err := resfile.Parse(resource, "reader", r, sections...)
	if err != nil {
		return nil, err
	}
	return buildParams(f)
}

func buildParams(f *resfile.File) (*params, error) {
	p := &params{forbidden: make(map[string]bool)}
	var err error
	if p.tag, err = readTable(f, "Tag", false); err != nil {
		return nil, err
	}
	if p.bigram, err = readTable(f, "Bigram", false); err != nil {
		return nil, err
	}
	if p.trigram, err = readTable(f, "Trigram", false); err != nil {
		return nil, err
	}
	if p.initial, err = readTable(f, "Initial", true); err != nil {
		return nil, err
	}
	if p.word, err = readTable(f, "Word", true); err != nil {
		return nil, err
	}

	smoothing, err := readTable(f, "Smoothing", false)
	if err != nil {
		return nil, err
	}
	for i, name := range []string{"c1", "c2", "c3"} {
		v, ok := smoothing[name]
		if !ok {
			return nil, missing(f, "Smoothing", name)
		}
		p.c[i] = v
	}

	for _, l := range f.Section("Forbidden") {
		parts := strings.Split(l.Text, ".")
		if len(parts) != 3 || parts[1] == "*" || parts[2] == "*" {
			return nil, f.Errorf(l, "forbidden trigram must be t1.t2.t3, got %q", l.Text)
		}
		for i := range parts {
			if parts[i] != "*" {
				parts[i] = model.ShortTag(parts[i])
			}
		}
		p.forbidden[strings.Join(parts, ".")] = true
	}

	if p.tag[anyTag] <= 0 {
		return nil, missing(f, "Tag", anyTag)
	}
	if _, ok := p.initial[startTag+"."+anyTag]; !ok {
		return nil, missing(f, "Initial", startTag+"."+anyTag)
	}
	if _, ok := p.word[unobservedWord]; !ok {
		return nil, missing(f, "Word", unobservedWord)
	}
	return p, nil
}

// readTable reads "key value" lines. Probabilities must lie in [0,1];
// logs must not be positive.
func readTable(f *resfile.File, section string, logs bool) (map[string]float64, error) {
	m := make(map[string]float64)
	for _, l := range f.Section(section) {
		fields := l.Fields()
		if len(fields) != 2 {
			return nil, f.Errorf(l, "<%s> wants key and value, got %q", section, l.Text)
		}
		v, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, f.Errorf(l, "<%s> value %q: %v", section, fields[1], err)
		}
		if (logs && v > 0) || (!logs && (v < 0 || v > 1)) {
			return nil, f.Errorf(l, "<%s> value %v out of range", section, v)
		}
		m[fields[0]] = v
	}
	return m, nil
}

func missing(f *resfile.File, section, key string) error {
	return &internalerr.ResourceError{
		Resource: f.Resource,
		Path:     f.Path,
		Err:      fmt.Errorf("<%s> lacks the %q entry", section, key),
	}
}

func logOf(p float64) float64 {
	if p <= 0 {
		return floorLogProb
	}
	return math.Log(p)
}

// tagProb is P(t), falling back to the generic tag.
func (p *params) tagProb(t string) float64 {
	if v, ok := p.tag[t]; ok && v > 0 {
		return v
	}
	return p.tag[anyTag]
}

// initialLog is log P(0.t) for the first word of a sentence.
func (p *params) initialLog(t string) float64 {
	if v, ok := p.initial[startTag+"."+t]; ok {
		return v
	}
	return p.initial[startTag+"."+anyTag]
}

// transitionLog is log of c1 P(t3) + c2 P(t3|t2) + c3 P(t3|t1,t2).
func (p *params) transitionLog(t1, t2, t3 string) float64 {
	if p.forbidden["*."+t2+"."+t3] || p.forbidden[t1+"."+t2+"."+t3] {
		return floorLogProb
	}
	prob := p.c[0]*p.tagProb(t3) +
		p.c[1]*p.bigram[t2+"."+t3] +
		p.c[2]*p.trigram[t1+"."+t2+"."+t3]
	return logOf(prob)
}

// emissionLog is log P(t|w) + log P(w) - log P(t).
func (p *params) emissionLog(t, form string, probTagGivenWord float64) float64 {
	pw, ok := p.word[strings.ToLower(form)]
	if !ok {
		pw = p.word[unobservedWord]
	}
	return logOf(probTagGivenWord) + pw - math.Log(p.tagProb(t))
}
