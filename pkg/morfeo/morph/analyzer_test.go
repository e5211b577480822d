package morph

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cognicore/morfeo/pkg/morfeo/config"
	"github.com/cognicore/morfeo/pkg/morfeo/internalerr"
	"github.com/cognicore/morfeo/pkg/morfeo/model"
	"github.com/cognicore/morfeo/pkg/morfeo/store/memstore"
)

func fixture(name string) string {
	return filepath.Join("..", "testdata", "es", name)
}

func spanishOptions() *config.Options {
	o := config.Default()
	o.Language = "es"
	o.Resources = config.Resources{
		Affixes:       fixture("afixos.dat"),
		Probabilities: fixture("probabilitats.dat"),
		Dictionary:    fixture("dicc.src"),
		Multiwords:    fixture("locucions.dat"),
		Quantities:    fixture("quantities.dat"),
		Punctuation:   fixture("punct.dat"),
		NER:           fixture("np.dat"),
		Corrector:     fixture("corrector.dat"),
	}
	return o
}

func newAnalyzer(t *testing.T, edit func(m *config.Modules)) *Analyzer {
	t.Helper()
	opts := spanishOptions()
	edit(&opts.Modules)

	lex, err := memstore.LoadLexicon(opts.Resources.Dictionary)
	if err != nil {
		t.Fatalf("load lexicon: %v", err)
	}
	a, err := New(context.Background(), opts, lex, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return a
}

// sentence builds a sentence from space-separated forms.
func sentence(text string) *model.Sentence {
	s := &model.Sentence{Complete: true}
	pos := 0
	for _, f := range strings.Fields(text) {
		s.Words = append(s.Words, model.NewWord(model.Token{Form: f, Start: pos, End: pos + len(f)}))
		pos += len(f) + 1
	}
	return s
}

func analyze(t *testing.T, a *Analyzer, text string) *model.Sentence {
	t.Helper()
	s := sentence(text)
	if err := a.Analyze(context.Background(), []*model.Sentence{s}); err != nil {
		t.Fatalf("Analyze(%q) failed: %v", text, err)
	}
	return s
}

func tags(w *model.Word) []string {
	out := make([]string, len(w.Analyses))
	for i, a := range w.Analyses {
		out[i] = a.Lemma + "/" + a.Tag
	}
	return out
}

func hasAnalysis(w *model.Word, lemma, tag string) bool {
	for _, a := range w.Analyses {
		if a.Lemma == lemma && a.Tag == tag {
			return true
		}
	}
	return false
}

func TestNumbers(t *testing.T) {
	a := newAnalyzer(t, func(m *config.Modules) { m.Numbers = true })

	tests := []struct {
		form  string
		lemma string
		ok    bool
	}{
		{"1.000,50", "1000.50", true},
		{"12", "12", true},
		{"2,5", "2.5", true},
		{"1.2.3", "", false},
		{"12a", "", false},
	}
	for _, tt := range tests {
		s := analyze(t, a, tt.form)
		w := s.Words[0]
		if got := hasAnalysis(w, tt.lemma, "Z"); got != tt.ok {
			t.Errorf("%q: analyses %v, want number %v", tt.form, tags(w), tt.ok)
		}
	}
}

func TestPunctuationIsLocked(t *testing.T) {
	a := newAnalyzer(t, func(m *config.Modules) { m.Punctuation = true; m.Dictionary = true })

	s := analyze(t, a, ". ☃ ¿ gato")
	if !hasAnalysis(s.Words[0], ".", "Fp") || !s.Words[0].Locked {
		t.Errorf(". analyses %v locked=%v", tags(s.Words[0]), s.Words[0].Locked)
	}
	if !hasAnalysis(s.Words[1], "☃", "Fz") {
		t.Errorf("☃ should get the <Other> tag, got %v", tags(s.Words[1]))
	}
	if !hasAnalysis(s.Words[2], "¿", "Fia") {
		t.Errorf("¿ analyses %v", tags(s.Words[2]))
	}
	if s.Words[3].Locked {
		t.Error("gato must not be locked")
	}
}

func TestDates(t *testing.T) {
	a := newAnalyzer(t, func(m *config.Modules) { m.Dates = true })

	s := analyze(t, a, "12/10/2024 31-13-2020 1/2-2020 3.4.21")
	if !hasAnalysis(s.Words[0], "[??:12/10/2024:??.??]", "W") {
		t.Errorf("12/10/2024 analyses %v", tags(s.Words[0]))
	}
	if s.Words[1].HasTagPrefix("W") || s.Words[2].HasTagPrefix("W") {
		t.Error("invalid dates must not be tagged W")
	}
	if !hasAnalysis(s.Words[3], "[??:3/4/21:??.??]", "W") {
		t.Errorf("3.4.21 analyses %v", tags(s.Words[3]))
	}
}

func TestDictionaryAndContractions(t *testing.T) {
	a := newAnalyzer(t, func(m *config.Modules) { m.Dictionary = true })

	s := analyze(t, a, "Pescado del ornitorrinco")
	pescado := s.Words[0]
	if !pescado.InDict || len(pescado.Analyses) != 2 {
		t.Errorf("Pescado: in dict %v, analyses %v", pescado.InDict, tags(pescado))
	}

	del := s.Words[1]
	if len(del.Analyses) != 1 {
		t.Fatalf("del analyses %v", tags(del))
	}
	want := []model.Component{
		{Form: "de", Lemma: "de", Tag: "SPS00"},
		{Form: "el", Lemma: "el", Tag: "DA0MS0"},
	}
	got := del.Analyses[0].Retok
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("del components = %+v, want %+v", got, want)
	}

	// fallback
	orn := s.Words[2]
	if !hasAnalysis(orn, "ornitorrinco", "X") || orn.InDict {
		t.Errorf("unknown word analyses %v", tags(orn))
	}
}

func TestAffixes(t *testing.T) {
	a := newAnalyzer(t, func(m *config.Modules) { m.Dictionary = true; m.Affixes = true })

	tests := []struct {
		form, lemma, tag string
	}{
		{"cantando", "cantar", "VMG0000"},
		{"Rápidamente", "rápidamente", "RG"},
		{"gatitos", "gato", "NCMP000"},
		{"gatito", "gato", "NCMS000"},
	}
	for _, tt := range tests {
		s := analyze(t, a, tt.form)
		w := s.Words[0]
		if !hasAnalysis(w, tt.lemma, tt.tag) {
			t.Errorf("%s: analyses %v, want %s/%s", tt.form, tags(w), tt.lemma, tt.tag)
		}
		if !w.InDict {
			t.Errorf("%s: affix analyses count as dictionary analyses", tt.form)
		}
	}

	s := analyze(t, a, "gato")
	if len(s.Words[0].Analyses) != 1 {
		t.Errorf("dictionary words skip affix rules, got %v", tags(s.Words[0]))
	}
}

func TestMultiwordsGreedyLongest(t *testing.T) {
	a := newAnalyzer(t, func(m *config.Modules) { m.Dictionary = true; m.Multiwords = true })

	s := analyze(t, a, "vino a pesar de todo")
	if got := strings.Join(s.Forms(), " "); got != "vino a_pesar_de todo" {
		t.Fatalf("forms = %q", got)
	}
	mw := s.Words[1]
	if !mw.MultiWord || len(mw.Parts) != 3 {
		t.Errorf("multiword flags: %v parts %d", mw.MultiWord, len(mw.Parts))
	}
	if mw.Start != 5 || mw.End != 15 {
		t.Errorf("offsets [%d:%d], want [5:15]", mw.Start, mw.End)
	}
	if !hasAnalysis(mw, "a_pesar_de", "SPS00") || len(mw.Analyses) != 1 {
		t.Errorf("analyses %v", tags(mw))
	}

	s = analyze(t, a, "A pesar todo")
	if got := strings.Join(s.Forms(), " "); got != "A_pesar todo" {
		t.Errorf("shorter expression: %q", got)
	}
}

func TestNER(t *testing.T) {
	a := newAnalyzer(t, func(m *config.Modules) { m.Dictionary = true; m.NER = true })

	tests := []struct {
		input string
		want  string
		ne    string
	}{
		{"El gato de Juan Pérez come", "El gato de Juan_Pérez come", "Juan_Pérez"},
		{"el Banco de España abrió", "el Banco_de_España abrió", "Banco_de_España"},
		{"vino Juan de la casa", "vino Juan de la casa", "Juan"},
		{"El Sr. Garcia llegó", "El Sr._Garcia llegó", "Sr._Garcia"},
	}
	for _, tt := range tests {
		s := analyze(t, a, tt.input)
		if got := strings.Join(s.Forms(), " "); got != tt.want {
			t.Errorf("%q: forms %q, want %q", tt.input, got, tt.want)
			continue
		}
		for _, w := range s.Words {
			if w.Form == tt.ne && !hasAnalysis(w, strings.ToLower(tt.ne), "NP00000") {
				t.Errorf("%q: %s analyses %v", tt.input, w.Form, tags(w))
			}
		}
	}

	s := analyze(t, a, "El gato come")
	if s.Words[0].HasTagPrefix("NP") {
		t.Error("sentence-initial determiner must not become a name")
	}
}

func TestQuantities(t *testing.T) {
	a := newAnalyzer(t, func(m *config.Modules) {
		m.Numbers = true
		m.Punctuation = true
		m.Dictionary = true
		m.Quantities = true
	})

	tests := []struct {
		input string
		form  string
		lemma string
		tag   string
	}{
		{"un 20 % más", "20_%", "20/100", "Zp"},
		{"3 kilos de pescado", "3_kilos", "kg:3", "Zu"},
		{"cuesta 1.000,50 euros", "1.000,50_euros", "EUR:1000.50", "Zm"},
		{"el 20 por ciento", "20_por_ciento", "20/100", "Zp"},
	}
	for _, tt := range tests {
		s := analyze(t, a, tt.input)
		found := false
		for _, w := range s.Words {
			if w.Form == tt.form {
				found = true
				if !hasAnalysis(w, tt.lemma, tt.tag) || !w.Locked {
					t.Errorf("%q: %s analyses %v", tt.input, w.Form, tags(w))
				}
			}
		}
		if !found {
			t.Errorf("%q: no word %q in %v", tt.input, tt.form, s.Forms())
		}
	}
}

func TestCorrector(t *testing.T) {
	a := newAnalyzer(t, func(m *config.Modules) { m.Dictionary = true; m.Corrector = true })

	s := analyze(t, a, "gatto pezcado xqzw")
	if !hasAnalysis(s.Words[0], "gato", "NCMS000") {
		t.Errorf("gatto analyses %v", tags(s.Words[0]))
	}
	if !hasAnalysis(s.Words[1], "pescado", "NCMS000") || !hasAnalysis(s.Words[1], "pescar", "VMP00SM") {
		t.Errorf("pezcado analyses %v", tags(s.Words[1]))
	}
	if !hasAnalysis(s.Words[2], "xqzw", "X") {
		t.Errorf("uncorrectable word analyses %v", tags(s.Words[2]))
	}
}

func TestProbabilitiesKnownAmbiguous(t *testing.T) {
	a := newAnalyzer(t, func(m *config.Modules) { m.Dictionary = true; m.Probabilities = true })

	s := analyze(t, a, "pescado")
	w := s.Words[0]
	if len(w.Analyses) != 2 {
		t.Fatalf("analyses %v", tags(w))
	}
	if w.Analyses[0].Tag != "NCMS000" {
		t.Errorf("most probable analysis should be the noun, got %v", tags(w))
	}
	if math.Abs(w.Analyses[0].Prob-0.525) > 1e-9 || math.Abs(w.Analyses[1].Prob-0.475) > 1e-9 {
		t.Errorf("probabilities %v, %v", w.Analyses[0].Prob, w.Analyses[1].Prob)
	}

	casa := analyze(t, a, "casa").Words[0]
	if casa.Analyses[0].Tag != "NCFS000" || casa.Analyses[0].Prob <= 0.5 {
		t.Errorf("lexical frequencies should favour the noun: %v", tags(casa))
	}
}

func TestProbabilitiesGuessUnknown(t *testing.T) {
	a := newAnalyzer(t, func(m *config.Modules) { m.Dictionary = true; m.Probabilities = true })

	w := analyze(t, a, "ornitorrinco").Words[0]
	// Unknown tags are tried in tag order and a guess is skipped when an
	// earlier one already covers its short tag: NCFS000 shadows NCMS000.
	if len(w.Analyses) != 5 {
		t.Fatalf("expected five guesses, got %v", tags(w))
	}
	if hasAnalysis(w, "ornitorrinco", "NCMS000") {
		t.Errorf("NCMS000 should be shadowed by NCFS000: %v", tags(w))
	}
	if !hasAnalysis(w, "ornitorrinco", "NCFS000") {
		t.Errorf("missing NCFS000 guess: %v", tags(w))
	}
	if w.Analyses[0].Tag != "AQ0MS0" || w.Analyses[0].Lemma != "ornitorrinco" || !w.Analyses[0].Guessed {
		t.Errorf("best guess = %+v", w.Analyses[0])
	}
	sum := 0.0
	for i, an := range w.Analyses {
		sum += an.Prob
		if i > 0 && an.Prob > w.Analyses[i-1].Prob {
			t.Errorf("analyses not sorted by probability: %v", tags(w))
		}
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("probabilities sum to %v", sum)
	}
}

func TestStemmerShortensGuessedLemmas(t *testing.T) {
	a := newAnalyzer(t, func(m *config.Modules) {
		m.Dictionary = true
		m.Probabilities = true
		m.Stemmer = true
	})

	s := analyze(t, a, "ornitorrincos pescado")
	for _, an := range s.Words[0].Analyses {
		if an.Lemma == "ornitorrincos" || !strings.HasPrefix("ornitorrincos", an.Lemma) {
			t.Errorf("guessed lemma %q should be a proper stem", an.Lemma)
		}
	}
	if !hasAnalysis(s.Words[1], "pescado", "NCMS000") {
		t.Errorf("dictionary lemmas must be kept, got %v", tags(s.Words[1]))
	}
}

func TestAnalyzeIdempotent(t *testing.T) {
	a := newAnalyzer(t, func(m *config.Modules) {
		m.Numbers = true
		m.Punctuation = true
		m.Dictionary = true
		m.Multiwords = true
		m.Probabilities = true
	})

	s := sentence("El gato come pescado a pesar de todo .")
	other := sentence("Hola .")
	in := []*model.Sentence{s, other}
	ctx := context.Background()
	if err := a.Analyze(ctx, in); err != nil {
		t.Fatal(err)
	}
	first := make([][]string, len(s.Words))
	for i, w := range s.Words {
		first[i] = tags(w)
	}

	if err := a.Analyze(ctx, in); err != nil {
		t.Fatal(err)
	}
	if len(in) != 2 {
		t.Fatalf("sentence count changed to %d", len(in))
	}
	for i, w := range s.Words {
		if strings.Join(tags(w), " ") != strings.Join(first[i], " ") {
			t.Errorf("word %s changed from %v to %v", w.Form, first[i], tags(w))
		}
	}
}

func TestDictionaryModuleDeduplicates(t *testing.T) {
	lex, err := memstore.LoadLexicon(fixture("dicc.src"))
	if err != nil {
		t.Fatal(err)
	}
	d := &dictionary{lex: lex, lookupForms: true}
	s := sentence("come")
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if err := d.annotate(ctx, s); err != nil {
			t.Fatal(err)
		}
	}
	if n := len(s.Words[0].Analyses); n != 2 {
		t.Errorf("expected 2 analyses after two passes, got %d", n)
	}
}

func TestNewErrors(t *testing.T) {
	ctx := context.Background()

	opts := spanishOptions()
	opts.Modules.Punctuation = true
	opts.Resources.Punctuation = fixture("missing.dat")
	if _, err := New(ctx, opts, nil, nil); !errors.Is(err, internalerr.ErrResource) {
		t.Errorf("missing resource: expected ResourceError, got %v", err)
	}

	opts = spanishOptions()
	opts.Language = "tlh"
	opts.Modules.Stemmer = true
	if _, err := New(ctx, opts, nil, nil); !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("unsupported stemmer language: expected ConfigError, got %v", err)
	}

	opts = spanishOptions()
	opts.Modules.Dictionary = true
	if _, err := New(ctx, opts, nil, nil); err == nil {
		t.Error("dictionary without lexicon must fail")
	}
}
