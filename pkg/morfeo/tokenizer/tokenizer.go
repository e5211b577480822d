// Package tokenizer splits raw text into tokens with a list of anchored
// regular-expression rules read from a resource file:
//
//	<Macros>
//	ALPHA   [\p{L}]
//	</Macros>
//	<RegExps>
//	*ABBREVIATIONS 0 {ALPHA}+\.
//	WORD           0 {ALPHA}+
//	</RegExps>
//	<Abbreviations>
//	sr.
//	</Abbreviations>
//
// Rules are tried in file order at the current position; the first one
// that matches wins. A rule whose name starts with '*' only matches when
// every captured piece, lower-cased, is a listed abbreviation.
package tokenizer

import (
	"errors"
	"io"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cognicore/morfeo/internal/resfile"
	"github.com/cognicore/morfeo/pkg/morfeo/internalerr"
	"github.com/cognicore/morfeo/pkg/morfeo/model"
)

const resource = "tokenizer"

var errNoRules = errors.New("no <RegExps> rules")

type rule struct {
	name    string
	groups  int // 0: whole match is one token
	special bool
	re      *regexp.Regexp
}

// Tokenizer is safe for concurrent use once built.
type Tokenizer struct {
	rules  []rule
	abbrev map[string]struct{}
}

// New loads a tokenizer from a resource file.
func New(path string) (*Tokenizer, error) {
	f, err := resfile.Open(resource, path, "Macros", "RegExps", "Abbreviations")
	if err != nil {
		return nil, err
	}
	return build(f)
}

// Parse loads a tokenizer from r.
func Parse(r io.Reader) (*Tokenizer, error) {
	f, err := resfile.Parse(resource, "reader", r, "Macros", "RegExps", "Abbreviations")
	if err != nil {
		return nil, err
	}
	return build(f)
}

func build(f *resfile.File) (*Tokenizer, error) {
	t := &Tokenizer{abbrev: make(map[string]struct{})}

	type macro struct{ name, value string }
	var macros []macro
	for _, l := range f.Section("Macros") {
		fields := l.Fields()
		if len(fields) != 2 {
			return nil, f.Errorf(l, "macro needs a name and a value, got %q", l.Text)
		}
		macros = append(macros, macro{fields[0], fields[1]})
	}

	for _, l := range f.Section("RegExps") {
		fields := l.Fields()
		if len(fields) != 3 {
			return nil, f.Errorf(l, "rule needs name, group count and pattern, got %q", l.Text)
		}
		groups, err := strconv.Atoi(fields[1])
		if err != nil || groups < 0 {
			return nil, f.Errorf(l, "bad group count %q", fields[1])
		}
		pattern := fields[2]
		for _, m := range macros {
			pattern = strings.ReplaceAll(pattern, "{"+m.name+"}", m.value)
		}
		re, err := regexp.Compile(`^(?:` + pattern + `)`)
		if err != nil {
			return nil, f.Errorf(l, "rule %s: %v", fields[0], err)
		}
		if re.NumSubexp() < groups {
			return nil, f.Errorf(l, "rule %s asks for %d groups, pattern has %d", fields[0], groups, re.NumSubexp())
		}
		t.rules = append(t.rules, rule{
			name:    fields[0],
			groups:  groups,
			special: strings.HasPrefix(fields[0], "*"),
			re:      re,
		})
	}
	if len(t.rules) == 0 {
		return nil, &internalerr.ResourceError{Resource: resource, Path: f.Path, Err: errNoRules}
	}

	for _, l := range f.Section("Abbreviations") {
		t.abbrev[strings.ToLower(l.Text)] = struct{}{}
	}
	return t, nil
}

// IsAbbreviation reports whether form is in the abbreviation list.
func (t *Tokenizer) IsAbbreviation(form string) bool {
	_, ok := t.abbrev[strings.ToLower(form)]
	return ok
}

// Tokenize splits text into tokens with offsets relative to text.
func (t *Tokenizer) Tokenize(text string) []model.Token {
	return t.TokenizeAt(text, 0)
}

// TokenizeAt splits text into tokens whose offsets start at base, so a
// stream of lines keeps growing offsets.
func (t *Tokenizer) TokenizeAt(text string, base int) []model.Token {
	var tokens []model.Token
	pos := 0
	for pos < len(text) {
		r, size := utf8.DecodeRuneInString(text[pos:])
		if unicode.IsSpace(r) {
			pos += size
			continue
		}

		rest := text[pos:]
		matched := false
		for _, ru := range t.rules {
			loc := ru.re.FindStringSubmatchIndex(rest)
			if loc == nil || loc[1] == 0 {
				continue
			}
			pieces := t.pieces(ru, rest, loc)
			if pieces == nil {
				continue
			}
			for _, p := range pieces {
				tokens = append(tokens, model.Token{
					Form:  rest[p[0]:p[1]],
					Start: base + pos + p[0],
					End:   base + pos + p[1],
				})
			}
			pos += loc[1]
			matched = true
			break
		}
		if !matched {
			tokens = append(tokens, model.Token{
				Form:  text[pos : pos+size],
				Start: base + pos,
				End:   base + pos + size,
			})
			pos += size
		}
	}
	return tokens
}

// pieces returns the [start,end) spans a rule match produces, or nil when
// a special rule is not satisfied.
func (t *Tokenizer) pieces(ru rule, s string, loc []int) [][2]int {
	var out [][2]int
	if ru.groups == 0 {
		out = append(out, [2]int{loc[0], loc[1]})
	} else {
		for g := 1; g <= ru.groups; g++ {
			start, end := loc[2*g], loc[2*g+1]
			if start < 0 || start == end {
				continue
			}
			out = append(out, [2]int{start, end})
		}
	}
	if ru.special {
		for _, p := range out {
			if !t.IsAbbreviation(s[p[0]:p[1]]) {
				return nil
			}
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
