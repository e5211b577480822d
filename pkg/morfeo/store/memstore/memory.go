// Package memstore keeps a lexicon and a sense inventory in memory, loaded
// from the plain-text formats of package dicfile.
package memstore

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/cognicore/morfeo/internal/resfile"
	"github.com/cognicore/morfeo/pkg/morfeo/internalerr"
	"github.com/cognicore/morfeo/pkg/morfeo/model"
	"github.com/cognicore/morfeo/pkg/morfeo/store/dicfile"
)

// Lexicon maps lower-cased forms to their analyses.
type Lexicon struct {
	mu    sync.RWMutex
	forms map[string][]model.Analysis
}

// NewLexicon creates a lexicon holding entries.
func NewLexicon(entries ...dicfile.Entry) *Lexicon {
	l := &Lexicon{forms: make(map[string][]model.Analysis)}
	for _, e := range entries {
		l.Add(e)
	}
	return l
}

// LoadLexicon reads a dictionary file.
func LoadLexicon(path string) (*Lexicon, error) {
	l := NewLexicon()
	err := resfile.Map(path, func(data []byte) error {
		return dicfile.ReadDictionary(bytes.NewReader(data), func(e dicfile.Entry) error {
			l.Add(e)
			return nil
		})
	})
	if err != nil {
		return nil, resourceError("dictionary", path, err)
	}
	return l, nil
}

// Add merges the analyses of e into the lexicon, skipping duplicates.
func (l *Lexicon) Add(e dicfile.Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	existing := l.forms[e.Form]
	for _, a := range e.Analyses {
		if !containsAnalysis(existing, a) {
			existing = append(existing, a)
		}
	}
	l.forms[e.Form] = existing
}

// Lookup returns the analyses of form, nil when absent.
func (l *Lexicon) Lookup(ctx context.Context, form string) ([]model.Analysis, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	as, ok := l.forms[form]
	if !ok {
		return nil, nil
	}
	out := make([]model.Analysis, len(as))
	copy(out, as)
	return out, nil
}

// Forms returns every form, sorted.
func (l *Lexicon) Forms(ctx context.Context) ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]string, 0, len(l.forms))
	for f := range l.forms {
		out = append(out, f)
	}
	sort.Strings(out)
	return out, nil
}

// Close implements store.Lexicon.
func (l *Lexicon) Close() error { return nil }

func containsAnalysis(as []model.Analysis, a model.Analysis) bool {
	for _, b := range as {
		if b.Lemma == a.Lemma && b.Tag == a.Tag {
			return true
		}
	}
	return false
}

type senseKey struct{ lemma, pos string }

// Senses maps (lemma, pos) to senses sorted by descending score.
type Senses struct {
	mu      sync.RWMutex
	entries map[senseKey][]model.Sense
}

// NewSenses creates an inventory holding entries.
func NewSenses(entries ...dicfile.SenseEntry) *Senses {
	s := &Senses{entries: make(map[senseKey][]model.Sense)}
	for _, e := range entries {
		s.Add(e)
	}
	return s
}

// LoadSenses reads a sense inventory file.
func LoadSenses(path string) (*Senses, error) {
	s := NewSenses()
	err := resfile.Map(path, func(data []byte) error {
		return dicfile.ReadSenses(bytes.NewReader(data), func(e dicfile.SenseEntry) error {
			s.Add(e)
			return nil
		})
	})
	if err != nil {
		return nil, resourceError("senses", path, err)
	}
	return s, nil
}

// Add appends the senses of e to its (lemma, pos) list.
func (s *Senses) Add(e dicfile.SenseEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := senseKey{e.Lemma, e.POS}
	list := append(s.entries[k], e.Senses...)
	sort.SliceStable(list, func(i, j int) bool { return list[i].Score > list[j].Score })
	s.entries[k] = list
}

// Senses returns the senses of (lemma, pos), nil when absent.
func (s *Senses) Senses(ctx context.Context, lemma, pos string) ([]model.Sense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list, ok := s.entries[senseKey{lemma, pos}]
	if !ok {
		return nil, nil
	}
	out := make([]model.Sense, len(list))
	copy(out, list)
	return out, nil
}

// Close implements store.SenseInventory.
func (s *Senses) Close() error { return nil }

func resourceError(resource, path string, err error) error {
	re := &internalerr.ResourceError{Resource: resource, Path: path, Err: err}
	var le *dicfile.LineError
	if errors.As(err, &le) {
		re.Line = le.Line
		re.Err = le.Err
	}
	return re
}
