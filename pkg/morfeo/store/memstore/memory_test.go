package memstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/morfeo/pkg/morfeo/internalerr"
	"github.com/cognicore/morfeo/pkg/morfeo/model"
	"github.com/cognicore/morfeo/pkg/morfeo/store/dicfile"
)

func fixture(name string) string {
	return filepath.Join("..", "..", "testdata", "es", name)
}

func TestLoadLexicon(t *testing.T) {
	ctx := context.Background()
	lex, err := LoadLexicon(fixture("dicc.src"))
	require.NoError(t, err)

	as, err := lex.Lookup(ctx, "pescado")
	require.NoError(t, err)
	require.Len(t, as, 2)
	assert.Equal(t, model.Analysis{Lemma: "pescado", Tag: "NCMS000"}, as[0])
	assert.Equal(t, model.Analysis{Lemma: "pescar", Tag: "VMP00SM"}, as[1])

	del, err := lex.Lookup(ctx, "del")
	require.NoError(t, err)
	require.Len(t, del, 1)
	assert.Len(t, del[0].Retok, 2)

	missing, err := lex.Lookup(ctx, "ornitorrinco")
	require.NoError(t, err)
	assert.Nil(t, missing)

	forms, err := lex.Forms(ctx)
	require.NoError(t, err)
	assert.Contains(t, forms, "gato")
	assert.IsIncreasing(t, forms)
}

func TestLexiconAddMergesDuplicates(t *testing.T) {
	ctx := context.Background()
	lex := NewLexicon(
		dicfile.Entry{Form: "bajo", Analyses: []model.Analysis{{Lemma: "bajo", Tag: "SPS00"}}},
		dicfile.Entry{Form: "bajo", Analyses: []model.Analysis{{Lemma: "bajo", Tag: "SPS00"}, {Lemma: "bajar", Tag: "VMIP1S0"}}},
	)
	as, err := lex.Lookup(ctx, "bajo")
	require.NoError(t, err)
	assert.Len(t, as, 2)
}

func TestLookupReturnsCopy(t *testing.T) {
	ctx := context.Background()
	lex := NewLexicon(dicfile.Entry{Form: "sol", Analyses: []model.Analysis{{Lemma: "sol", Tag: "NCMS000"}}})

	as, _ := lex.Lookup(ctx, "sol")
	as[0].Tag = "changed"

	again, _ := lex.Lookup(ctx, "sol")
	assert.Equal(t, "NCMS000", again[0].Tag)
}

func TestLoadLexiconErrors(t *testing.T) {
	_, err := LoadLexicon(filepath.Join(t.TempDir(), "none.src"))
	assert.ErrorIs(t, err, internalerr.ErrResource)

	bad := filepath.Join(t.TempDir(), "bad.src")
	require.NoError(t, os.WriteFile(bad, []byte("gato gato NCMS000\nperro perro\n"), 0o644))
	_, err = LoadLexicon(bad)
	var re *internalerr.ResourceError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, 2, re.Line)
}

func TestLoadSensesSortedByScore(t *testing.T) {
	ctx := context.Background()
	inv, err := LoadSenses(fixture("senses.src"))
	require.NoError(t, err)

	comer, err := inv.Senses(ctx, "comer", "V")
	require.NoError(t, err)
	require.Len(t, comer, 2)
	assert.Equal(t, "01168468-v", comer[0].ID)
	assert.Equal(t, "01166351-v", comer[1].ID)

	gato, err := inv.Senses(ctx, "gato", "N")
	require.NoError(t, err)
	assert.Equal(t, []string{"02121620-n", "10152760-n", "03408054-n"}, ids(gato))

	none, err := inv.Senses(ctx, "gato", "V")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func ids(ss []model.Sense) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = s.ID
	}
	return out
}
