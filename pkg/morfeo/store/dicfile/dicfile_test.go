package dicfile

import (
	"errors"
	"strings"
	"testing"
)

func TestReadDictionary(t *testing.T) {
	src := `## comment
Gato gato NCMS000
come comer VMIP3S0 comer VMM02S0

del de+el SPS00+DA0MS0
`
	var got []Entry
	err := ReadDictionary(strings.NewReader(src), func(e Entry) error {
		got = append(got, e)
		return nil
	})
	if err != nil {
		t.Fatalf("ReadDictionary failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
	if got[0].Form != "gato" {
		t.Errorf("form should be lower-cased, got %q", got[0].Form)
	}
	if len(got[1].Analyses) != 2 || got[1].Analyses[1].Tag != "VMM02S0" {
		t.Errorf("come analyses = %+v", got[1].Analyses)
	}
	del := got[2].Analyses[0]
	if len(del.Retok) != 2 || del.Retok[0].Lemma != "de" || del.Retok[1].Tag != "DA0MS0" {
		t.Errorf("contraction components = %+v", del.Retok)
	}
}

func TestReadDictionaryBadLine(t *testing.T) {
	err := ReadDictionary(strings.NewReader("ok ok NC\nbroken lemma\n"), func(Entry) error { return nil })
	var le *LineError
	if !errors.As(err, &le) || le.Line != 2 {
		t.Fatalf("expected LineError at line 2, got %v", err)
	}
}

func TestNewAnalysisMismatchedParts(t *testing.T) {
	a := NewAnalysis("a+b", "NC")
	if len(a.Retok) != 0 {
		t.Errorf("mismatched parts must not produce components, got %+v", a.Retok)
	}
}

func TestReadSenses(t *testing.T) {
	src := "gato N 02121620-n:0.8 10152760-n:0.2\ncomer V 01168468-v\n"
	var got []SenseEntry
	if err := ReadSenses(strings.NewReader(src), func(e SenseEntry) error {
		got = append(got, e)
		return nil
	}); err != nil {
		t.Fatalf("ReadSenses failed: %v", err)
	}
	if got[0].Senses[0].ID != "02121620-n" || got[0].Senses[0].Score != 0.8 {
		t.Errorf("first sense = %+v", got[0].Senses[0])
	}
	if got[1].Senses[0].ID != "01168468-v" || got[1].Senses[0].Score != 0 {
		t.Errorf("unscored sense = %+v", got[1].Senses[0])
	}

	err := ReadSenses(strings.NewReader("gato N x:abc\n"), func(SenseEntry) error { return nil })
	if err == nil {
		t.Error("expected error for bad score")
	}
}
