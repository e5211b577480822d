// Package dicfile reads the plain-text lexical formats shared by the
// store backends.
//
// Dictionary lines hold a form followed by lemma/tag pairs:
//
//	gato gato NCMS000
//	del de+el SPS00+DA0MS0
//
// Sense lines hold a lemma, a part-of-speech letter and sense ids with an
// optional score:
//
//	gato N 02121620-n:0.8 10152760-n:0.2
//
// Blank lines and lines starting with "##" are ignored.
package dicfile

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cognicore/morfeo/pkg/morfeo/model"
)

// Entry is one dictionary line.
type Entry struct {
	Form     string
	Analyses []model.Analysis
}

// SenseEntry is one sense inventory line.
type SenseEntry struct {
	Lemma  string
	POS    string
	Senses []model.Sense
}

// LineError is a malformed line.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string { return fmt.Sprintf("line %d: %v", e.Line, e.Err) }
func (e *LineError) Unwrap() error { return e.Err }

// NewAnalysis builds a dictionary analysis. A lemma and tag with the same
// number of "+" separated parts describe a contraction; its components are
// stored in Retok.
func NewAnalysis(lemma, tag string) model.Analysis {
	a := model.Analysis{Lemma: lemma, Tag: tag}
	lemmas := strings.Split(lemma, "+")
	tags := strings.Split(tag, "+")
	if len(lemmas) > 1 && len(lemmas) == len(tags) {
		for i := range lemmas {
			a.Retok = append(a.Retok, model.Component{Form: lemmas[i], Lemma: lemmas[i], Tag: tags[i]})
		}
	}
	return a
}

// ReadDictionary calls fn for every entry of r in order. Forms are
// lower-cased.
func ReadDictionary(r io.Reader, fn func(Entry) error) error {
	return scan(r, func(no int, fields []string) error {
		if len(fields) < 3 || len(fields)%2 == 0 {
			return &LineError{Line: no, Err: fmt.Errorf("want form and lemma/tag pairs, got %d fields", len(fields))}
		}
		e := Entry{Form: strings.ToLower(fields[0])}
		for i := 1; i < len(fields); i += 2 {
			e.Analyses = append(e.Analyses, NewAnalysis(fields[i], fields[i+1]))
		}
		return fn(e)
	})
}

// ReadSenses calls fn for every entry of r in order. Senses keep the file
// order; a missing score is 0.
func ReadSenses(r io.Reader, fn func(SenseEntry) error) error {
	return scan(r, func(no int, fields []string) error {
		if len(fields) < 3 {
			return &LineError{Line: no, Err: fmt.Errorf("want lemma, pos and senses, got %d fields", len(fields))}
		}
		e := SenseEntry{Lemma: fields[0], POS: fields[1]}
		for _, f := range fields[2:] {
			s := model.Sense{ID: f}
			if i := strings.LastIndex(f, ":"); i > 0 {
				score, err := strconv.ParseFloat(f[i+1:], 64)
				if err != nil {
					return &LineError{Line: no, Err: fmt.Errorf("sense %q: bad score", f)}
				}
				s = model.Sense{ID: f[:i], Score: score}
			}
			e.Senses = append(e.Senses, s)
		}
		return fn(e)
	})
}

func scan(r io.Reader, fn func(no int, fields []string) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	no := 0
	for sc.Scan() {
		no++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "##") {
			continue
		}
		if err := fn(no, strings.Fields(line)); err != nil {
			return err
		}
	}
	return sc.Err()
}
