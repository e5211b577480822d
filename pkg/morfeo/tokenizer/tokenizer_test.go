package tokenizer

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cognicore/morfeo/pkg/morfeo/internalerr"
	"github.com/cognicore/morfeo/pkg/morfeo/model"
)

func loadSpanish(t *testing.T) *Tokenizer {
	t.Helper()
	tok, err := New(filepath.Join("..", "testdata", "es", "tokenizer.dat"))
	if err != nil {
		t.Fatalf("load tokenizer: %v", err)
	}
	return tok
}

func forms(tokens []model.Token) []string {
	out := make([]string, len(tokens))
	for i, tk := range tokens {
		out[i] = tk.Form
	}
	return out
}

func TestTokenizeSpanish(t *testing.T) {
	tok := loadSpanish(t)

	tests := []struct {
		input string
		want  []string
	}{
		{"El gato come pescado.", []string{"El", "gato", "come", "pescado", "."}},
		{"El Sr. Garcia llegó.", []string{"El", "Sr.", "Garcia", "llegó", "."}},
		{"Llegó el 12/10/2024 con 1.000,50 euros.", []string{"Llegó", "el", "12/10/2024", "con", "1.000,50", "euros", "."}},
		{"¿Vienes? ¡Sí!", []string{"¿", "Vienes", "?", "¡", "Sí", "!"}},
		{"Bueno... vale", []string{"Bueno", "...", "vale"}},
		{"un 20% más", []string{"un", "20", "%", "más"}},
		{"franco-alemán", []string{"franco-alemán"}},
		{"", nil},
		{"   \t ", nil},
	}

	for _, tt := range tests {
		got := forms(tok.Tokenize(tt.input))
		if strings.Join(got, "|") != strings.Join(tt.want, "|") {
			t.Errorf("Tokenize(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestTokenizeOffsets(t *testing.T) {
	tok := loadSpanish(t)

	got := tok.Tokenize("El Sr. Garcia llegó.")
	want := []model.Token{
		{Form: "El", Start: 0, End: 2},
		{Form: "Sr.", Start: 3, End: 6},
		{Form: "Garcia", Start: 7, End: 13},
		{Form: "llegó", Start: 14, End: 20},
		{Form: ".", Start: 20, End: 21},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d tokens, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %v, want %v", i, got[i], want[i])
		}
	}

	shifted := tok.TokenizeAt("El gato", 100)
	if shifted[0].Start != 100 || shifted[1].Start != 103 || shifted[1].End != 107 {
		t.Errorf("TokenizeAt offsets = %v", shifted)
	}
}

func TestTokenizeReconstructsText(t *testing.T) {
	tok := loadSpanish(t)
	inputs := []string{
		"El gato come pescado.",
		"«Hola», dijo la Sra. Pérez (en voz baja) el 3/4/21.",
		"Precio: 1.250,75€ -- ¡oferta!... ☃",
	}

	for _, in := range inputs {
		tokens := tok.Tokenize(in)
		var b strings.Builder
		for _, tk := range tokens {
			if in[tk.Start:tk.End] != tk.Form {
				t.Errorf("%q: span [%d:%d] is %q, token is %q", in, tk.Start, tk.End, in[tk.Start:tk.End], tk.Form)
			}
			b.WriteString(tk.Form)
		}
		if want := strings.Join(strings.Fields(in), ""); b.String() != want {
			t.Errorf("reconstructed %q, want %q", b.String(), want)
		}
	}
}

func TestTokenizeDeterministic(t *testing.T) {
	tok := loadSpanish(t)
	in := "El Sr. Garcia come 2,5 kg de pescado."
	a := tok.Tokenize(in)
	b := tok.Tokenize(in)
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("token %d differs: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestTokenizeGroupsAndFallback(t *testing.T) {
	src := `<RegExps>
PERCENT 2 ([0-9]+)(%)
WORD 0 [a-z]+
</RegExps>`
	tok, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	got := forms(tok.Tokenize("a+20%b"))
	want := []string{"a", "+", "20", "%", "b"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestSpecialRuleNeedsAbbreviation(t *testing.T) {
	src := `<RegExps>
*ABBREV 0 [A-Za-z]+\.
WORD 0 [A-Za-z]+
PUNCT 0 [.]
</RegExps>
<Abbreviations>
Dr.
</Abbreviations>`
	tok, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	got := forms(tok.Tokenize("dr. no."))
	want := []string{"dr.", "no", "."}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("got %v, want %v", got, want)
	}
	if !tok.IsAbbreviation("DR.") {
		t.Error("abbreviations should be case-insensitive")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"bad regex", "<RegExps>\nBAD 0 [a-\n</RegExps>"},
		{"missing field", "<RegExps>\nBAD 0\n</RegExps>"},
		{"bad count", "<RegExps>\nBAD x [a-z]+\n</RegExps>"},
		{"too many groups", "<RegExps>\nBAD 2 ([a-z]+)\n</RegExps>"},
		{"bad macro", "<Macros>\nONLYNAME\n</Macros>\n<RegExps>\nW 0 [a-z]+\n</RegExps>"},
		{"no rules", "<Abbreviations>\nsr.\n</Abbreviations>"},
		{"unknown section", "<Rules>\n</Rules>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.src))
			if !errors.Is(err, internalerr.ErrResource) {
				t.Errorf("expected ResourceError, got %v", err)
			}
		})
	}
}
