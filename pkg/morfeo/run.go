package morfeo

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/cognicore/morfeo/internal/corpus"
	"github.com/cognicore/morfeo/internal/htmltext"
	"github.com/cognicore/morfeo/pkg/morfeo/config"
	"github.com/cognicore/morfeo/pkg/morfeo/internalerr"
	"github.com/cognicore/morfeo/pkg/morfeo/model"
)

// Stats summarizes a Run.
type Stats struct {
	Lines     int // input lines, documents or HTML blocks
	Sentences int
	Words     int
	Skipped   int // undecodable chunks dropped
	Replaced  int // undecodable chunks repaired with U+FFFD
}

func (st *Stats) add(b model.Batch) {
	st.Sentences += len(b.Sentences)
	st.Words += b.Words()
}

var errInvalidUTF8 = errors.New("invalid UTF-8")

// decoder turns the raw input into UTF-8. A nil encoding means the input
// is already UTF-8 and is checked line by line.
type decoder struct {
	enc encoding.Encoding
}

func newDecoder(name string) (decoder, error) {
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		return decoder{}, fmt.Errorf("%w: %w",
			&internalerr.ConfigError{Field: "input.encoding", Reason: fmt.Sprintf("unsupported encoding %q", name)},
			internalerr.ErrUnknownEncoding)
	}
	if enc == unicode.UTF8 {
		return decoder{}, nil
	}
	return decoder{enc: enc}, nil
}

func (d decoder) reader(r io.Reader) io.Reader {
	if d.enc == nil {
		return r
	}
	return transform.NewReader(r, d.enc.NewDecoder())
}

// Run reads r in the configured input format, analyzes it through one
// Stream and writes the rendered sentences to w. Undecodable chunks are
// logged and skipped or repaired according to input.on_invalid; they never
// stop the run. The carry is flushed at the end of each JSONL document and
// at the end of the input.
func (a *Analyzer) Run(ctx context.Context, r io.Reader, w io.Writer) (Stats, error) {
	return a.run(ctx, r, func(b model.Batch) error {
		return a.renderer.Write(w, b.Sentences)
	})
}

func (a *Analyzer) run(ctx context.Context, r io.Reader, write func(model.Batch) error) (Stats, error) {
	var stats Stats
	st := a.NewStream()
	in := a.decoder.reader(r)

	emit := func(b model.Batch) error {
		stats.add(b)
		return write(b)
	}
	process := func(no int, raw string) error {
		stats.Lines++
		text, ok := a.check(no, raw, &stats)
		if !ok {
			st.Skip(len(raw))
			return nil
		}
		b, err := st.Process(ctx, text)
		if err != nil {
			return err
		}
		// a repaired chunk may change length; later chunks keep source offsets
		st.offset += len(raw) - len(text)
		return emit(b)
	}
	flush := func() error {
		b, err := st.Flush(ctx)
		if err != nil {
			return err
		}
		return emit(b)
	}

	var err error
	switch a.opts.Input.Format {
	case config.FormatHTML:
		err = a.runHTML(in, process)
	case config.FormatJSONL:
		err = corpus.Read(in, func(d corpus.Document) error {
			if err := process(d.Line, d.Text); err != nil {
				return err
			}
			return flush()
		}, func(no int, err error) {
			stats.Lines++
			stats.Skipped++
			a.log.Warn("morfeo: skipping document", "err", &internalerr.DecodingError{Line: no, Err: err})
		})
	default:
		err = a.runPlain(ctx, in, process)
	}
	if err != nil {
		return stats, err
	}
	if err := flush(); err != nil {
		return stats, err
	}
	a.log.Debug("morfeo: run finished",
		"lines", stats.Lines,
		"sentences", stats.Sentences,
		"words", stats.Words,
		"skipped", stats.Skipped,
		"replaced", stats.Replaced)
	return stats, nil
}

func (a *Analyzer) runPlain(ctx context.Context, r io.Reader, process func(int, string) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	no := 0
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		no++
		if err := process(no, strings.TrimSuffix(sc.Text(), "\r")); err != nil {
			return err
		}
	}
	return sc.Err()
}

func (a *Analyzer) runHTML(r io.Reader, process func(int, string) error) error {
	blocks, err := htmltext.Blocks(r)
	if err != nil {
		return fmt.Errorf("parse html: %w", err)
	}
	for i, b := range blocks {
		if err := process(i+1, b); err != nil {
			return err
		}
	}
	return nil
}

// check applies the invalid-input policy to one chunk.
func (a *Analyzer) check(no int, text string, stats *Stats) (string, bool) {
	if utf8.ValidString(text) {
		return text, true
	}
	derr := &internalerr.DecodingError{Line: no, Err: errInvalidUTF8}
	if a.opts.Input.OnInvalid == config.OnInvalidReplace {
		stats.Replaced++
		a.log.Warn("morfeo: repairing input", "err", derr)
		return strings.ToValidUTF8(text, "\uFFFD"), true
	}
	stats.Skipped++
	a.log.Warn("morfeo: skipping input", "err", derr)
	return "", false
}
