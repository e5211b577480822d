// Package render prints analyzed sentences as whitespace-separated
// columns, one word per line.
//
//	token     form
//	splitted  form, blank line after each sentence
//	morfo     form (lemma tag prob)+, blank line after each sentence
//	tagged    form lemma tag [senses], blank line after each sentence
//
// Senses are joined with ":"; a word without senses prints "-".
package render

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/cognicore/morfeo/pkg/morfeo/config"
	"github.com/cognicore/morfeo/pkg/morfeo/model"
)

// NoSenses marks a word for which no sense was found.
const NoSenses = "-"

// Renderer writes sentences at a fixed output level.
type Renderer struct {
	level  config.Level
	senses bool
}

// New returns a renderer for level. senses adds the sense column at the
// tagged level.
func New(level config.Level, senses bool) *Renderer {
	return &Renderer{level: level, senses: senses}
}

// Write renders sentences to w.
func (r *Renderer) Write(w io.Writer, sentences []*model.Sentence) error {
	bw := bufio.NewWriter(w)
	for _, s := range sentences {
		for _, word := range s.Words {
			bw.WriteString(r.Line(word))
			bw.WriteByte('\n')
		}
		if r.level != config.LevelToken {
			bw.WriteByte('\n')
		}
	}
	return bw.Flush()
}

// Line renders one word without the trailing newline.
func (r *Renderer) Line(w *model.Word) string {
	var b strings.Builder
	b.WriteString(w.Form)

	switch r.level {
	case config.LevelMorfo:
		for _, a := range w.Analyses {
			b.WriteByte(' ')
			b.WriteString(a.Lemma)
			b.WriteByte(' ')
			b.WriteString(a.Tag)
			b.WriteByte(' ')
			b.WriteString(strconv.FormatFloat(a.Prob, 'f', 6, 64))
		}
	case config.LevelTagged:
		b.WriteByte(' ')
		b.WriteString(w.Lemma())
		b.WriteByte(' ')
		b.WriteString(w.Tag())
		if r.senses {
			b.WriteByte(' ')
			b.WriteString(Senses(w.Senses))
		}
	}
	return b.String()
}

// Senses joins sense identifiers with ":", or returns NoSenses.
func Senses(senses []model.Sense) string {
	if len(senses) == 0 {
		return NoSenses
	}
	ids := make([]string, len(senses))
	for i, s := range senses {
		ids[i] = s.ID
	}
	return strings.Join(ids, ":")
}
