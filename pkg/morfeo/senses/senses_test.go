package senses

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cognicore/morfeo/pkg/morfeo/config"
	"github.com/cognicore/morfeo/pkg/morfeo/internalerr"
	"github.com/cognicore/morfeo/pkg/morfeo/model"
	"github.com/cognicore/morfeo/pkg/morfeo/store/memstore"
)

func inventory(t *testing.T) *memstore.Senses {
	t.Helper()
	inv, err := memstore.LoadSenses(filepath.Join("..", "testdata", "es", "senses.src"))
	if err != nil {
		t.Fatalf("load senses: %v", err)
	}
	return inv
}

func tagged(form, lemma, tag string) *model.Word {
	w := model.NewWord(model.Token{Form: form})
	w.AddAnalysis(model.Analysis{Lemma: lemma, Tag: tag, Prob: 1})
	w.Select(0)
	return w
}

func ids(w *model.Word) string {
	out := make([]string, len(w.Senses))
	for i, s := range w.Senses {
		out[i] = s.ID
	}
	return strings.Join(out, ":")
}

func TestAnalyze(t *testing.T) {
	tests := []struct {
		mode  config.SenseMode
		word  *model.Word
		wants string
	}{
		{config.SensesAll, tagged("gato", "gato", "NCMS000"), "02121620-n:10152760-n:03408054-n"},
		{config.SensesFirst, tagged("gato", "gato", "NCMS000"), "02121620-n"},
		{config.SensesAll, tagged("come", "comer", "VMIP3S0"), "01168468-v:01166351-v"},
		{config.SensesFirst, tagged("come", "comer", "VMIP3S0"), "01168468-v"},
		{config.SensesAll, tagged("pescado", "pescar", "VMP00SM"), ""},
		{config.SensesAll, tagged("pescado", "pescado", "NCMS000"), "07775375-n"},
		{config.SensesAll, model.NewWord(model.Token{Form: "gato"}), ""},
	}
	for _, tt := range tests {
		a, err := New(inventory(t), tt.mode)
		if err != nil {
			t.Fatal(err)
		}
		s := &model.Sentence{Words: []*model.Word{tt.word}}
		if err := a.Analyze(context.Background(), []*model.Sentence{s}); err != nil {
			t.Fatal(err)
		}
		if got := ids(tt.word); got != tt.wants {
			t.Errorf("%s %s/%s (%s): senses %q, want %q", tt.word.Form, tt.word.Lemma(), tt.word.Tag(), tt.mode, got, tt.wants)
		}
		if !s.Done(model.StageSenses) {
			t.Error("sentence not marked")
		}
	}
}

func TestSensesKeepScores(t *testing.T) {
	a, err := New(inventory(t), "")
	if err != nil {
		t.Fatal(err)
	}
	w := tagged("gato", "gato", "NCMS000")
	if err := a.Analyze(context.Background(), []*model.Sentence{{Words: []*model.Word{w}}}); err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(w.Senses); i++ {
		if w.Senses[i].Score > w.Senses[i-1].Score {
			t.Errorf("senses not sorted by score: %+v", w.Senses)
		}
	}
}

type failingInventory struct{}

var errBackend = errors.New("backend down")

func (failingInventory) Senses(context.Context, string, string) ([]model.Sense, error) {
	return nil, errBackend
}

func (failingInventory) Close() error { return nil }

func TestAnalyzePropagatesErrors(t *testing.T) {
	a, err := New(failingInventory{}, config.SensesAll)
	if err != nil {
		t.Fatal(err)
	}
	s := &model.Sentence{Words: []*model.Word{tagged("gato", "gato", "NCMS000")}}
	if err := a.Analyze(context.Background(), []*model.Sentence{s}); !errors.Is(err, errBackend) {
		t.Errorf("expected backend error, got %v", err)
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	if _, err := New(inventory(t), "best"); !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("unknown mode: got %v", err)
	}
	if _, err := New(nil, config.SensesAll); !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("nil inventory: got %v", err)
	}
}
