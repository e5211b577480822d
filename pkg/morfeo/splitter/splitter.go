// Package splitter groups a token stream into sentences.
//
// The splitter itself holds only the rules read from its resource file.
// Tokens not yet closed by a sentence boundary travel between calls in a
// Carry value owned by the caller, so one Splitter serves any number of
// concurrent streams.
package splitter

import (
	"io"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cognicore/morfeo/internal/resfile"
	"github.com/cognicore/morfeo/pkg/morfeo/model"
)

const resource = "splitter"

var sections = []string{"General", "Markers", "SentenceEnd", "SentenceStart", "Abbreviations"}

// markers with the same open and close form get codes above sameMarker.
const sameMarker = 100000

// Splitter holds sentence boundary rules. It is safe for concurrent use.
type Splitter struct {
	allowBetweenMarkers bool
	maxWords            int
	markers             map[string]int
	enders              map[string]bool // form -> sure
	starters            map[string]struct{}
	abbrev              map[string]struct{}
}

// Carry is the unfinished trailing sentence of a stream. The zero value is
// an empty carry.
type Carry struct {
	buf      []model.Token
	between  bool
	markType int
	count    int
}

// Len returns the number of buffered tokens.
func (c Carry) Len() int { return len(c.buf) }

// New loads a splitter from a resource file.
func New(path string) (*Splitter, error) {
	f, err := resfile.Open(resource, path, sections...)
	if err != nil {
		return nil, err
	}
	return build(f)
}

// Parse loads a splitter from r.
func Parse(r io.Reader) (*Splitter, error) {
	f, err := resfile.Parse(resource, "reader", r, sections...)
	if err != nil {
		return nil, err
	}
	return build(f)
}

func build(f *resfile.File) (*Splitter, error) {
	s := &Splitter{
		allowBetweenMarkers: true,
		markers:             make(map[string]int),
		enders:              make(map[string]bool),
		starters:            make(map[string]struct{}),
		abbrev:              make(map[string]struct{}),
	}

	for _, l := range f.Section("General") {
		fields := l.Fields()
		if len(fields) != 2 {
			return nil, f.Errorf(l, "option needs a name and a value, got %q", l.Text)
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil || n < 0 {
			return nil, f.Errorf(l, "option %s: bad value %q", fields[0], fields[1])
		}
		switch fields[0] {
		case "AllowBetweenMarkers":
			s.allowBetweenMarkers = n != 0
		case "MaxWords":
			s.maxWords = n
		default:
			return nil, f.Errorf(l, "unexpected option %s", fields[0])
		}
	}

	code := 1
	for _, l := range f.Section("Markers") {
		fields := l.Fields()
		if len(fields) != 2 {
			return nil, f.Errorf(l, "marker needs open and close forms, got %q", l.Text)
		}
		if fields[0] == fields[1] {
			s.markers[fields[0]] = sameMarker + code
		} else {
			s.markers[fields[0]] = code
			s.markers[fields[1]] = -code
		}
		code++
	}

	for _, l := range f.Section("SentenceEnd") {
		fields := l.Fields()
		if len(fields) != 2 || (fields[1] != "0" && fields[1] != "1") {
			return nil, f.Errorf(l, "sentence end needs a form and 0|1, got %q", l.Text)
		}
		s.enders[fields[0]] = fields[1] == "1"
	}
	for _, l := range f.Section("SentenceStart") {
		s.starters[l.Text] = struct{}{}
	}
	for _, l := range f.Section("Abbreviations") {
		s.abbrev[strings.ToLower(l.Text)] = struct{}{}
	}
	return s, nil
}

// Split appends tokens to the carried buffer and returns the sentences
// closed by a boundary, together with the new carry. With flush the
// remainder is emitted as an incomplete sentence and the returned carry is
// empty. The carry passed in is not modified.
func (s *Splitter) Split(carry Carry, tokens []model.Token, flush bool) ([]*model.Sentence, Carry) {
	c := carry
	c.buf = append([]model.Token(nil), carry.buf...)

	var out []*model.Sentence
	for i, tk := range tokens {
		code, isMarker := s.markers[tk.Form]

		switch {
		case !s.allowBetweenMarkers && !c.between && isMarker && code > 0:
			c.between = true
			c.markType = code
			c.buf = append(c.buf, tk)

		case !s.allowBetweenMarkers && c.between:
			c.count++
			closing := isMarker && code == closeCode(c.markType)
			if closing || (s.maxWords > 0 && c.count > s.maxWords) {
				c.between, c.markType, c.count = false, 0, 0
			}
			c.buf = append(c.buf, tk)

		default:
			c.buf = append(c.buf, tk)
			sure, isEnder := s.enders[tk.Form]
			if !isEnder {
				continue
			}
			if sure || s.endOfSentence(c.buf, tokens, i) {
				out = append(out, sentence(c.buf, true))
				c = Carry{}
			}
		}
	}

	if flush && len(c.buf) > 0 {
		out = append(out, sentence(c.buf, false))
		c = Carry{}
	}
	return out, c
}

// closeCode returns the marker code that closes an open marker.
func closeCode(open int) int {
	if open > sameMarker {
		return open
	}
	return -open
}

// endOfSentence decides whether a non-sure ender, the last token of buf,
// closes the sentence. tokens[i] is the ender within the current chunk.
func (s *Splitter) endOfSentence(buf []model.Token, tokens []model.Token, i int) bool {
	if len(buf) >= 2 {
		prev := strings.ToLower(buf[len(buf)-2].Form)
		if _, ok := s.abbrev[prev+buf[len(buf)-1].Form]; ok {
			return false
		}
		if _, ok := s.abbrev[prev]; ok {
			return false
		}
	}
	if i == len(tokens)-1 {
		return true
	}
	next := tokens[i+1].Form
	if _, ok := s.starters[next]; ok {
		return true
	}
	r, _ := utf8.DecodeRuneInString(next)
	return unicode.IsUpper(r)
}

func sentence(buf []model.Token, complete bool) *model.Sentence {
	words := make([]*model.Word, len(buf))
	for i, tk := range buf {
		words[i] = model.NewWord(tk)
	}
	return &model.Sentence{Words: words, Complete: complete}
}
