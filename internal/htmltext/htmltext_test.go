package htmltext

import (
	"strings"
	"testing"
)

func TestBlocks(t *testing.T) {
	doc := `<html><head><title>Noticias</title><style>p { color: red }</style></head>
<body>
  <h1>El gato</h1>
  <p>El gato   come <b>pescado</b>.</p>
  <script>var x = "no";</script>
  <ul><li>Uno</li><li>Dos</li></ul>
  <div>Fin<br>del texto</div>
</body></html>`

	got, err := Blocks(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Blocks failed: %v", err)
	}
	want := []string{"Noticias", "El gato", "El gato come pescado.", "Uno", "Dos", "Fin", "del texto"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("Blocks = %q, want %q", got, want)
	}
}

func TestBlocksPlainText(t *testing.T) {
	got, err := Blocks(strings.NewReader("solo texto"))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != "solo texto" {
		t.Errorf("Blocks = %q", got)
	}
}
