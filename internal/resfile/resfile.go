// Package resfile reads the sectioned plain-text resource files every
// pipeline stage is configured with:
//
//	## comment
//	<Section>
//	line
//	</Section>
//
// Files are mapped read-only into memory and parsed straight from the
// mapping; only the resulting lines are kept.
package resfile

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/edsrzf/mmap-go"

	"github.com/cognicore/morfeo/pkg/morfeo/internalerr"
)

// Line is one non-empty, non-comment line of a section.
type Line struct {
	Text string
	No   int
}

// Fields splits the line on white space.
func (l Line) Fields() []string { return strings.Fields(l.Text) }

// File is a parsed resource file.
type File struct {
	Resource string
	Path     string
	sections map[string][]Line
}

// Open maps path and parses it. When known is non-empty, sections with
// other names are rejected.
func Open(resource, path string, known ...string) (*File, error) {
	var f *File
	err := Map(path, func(data []byte) error {
		var perr error
		f, perr = parse(resource, path, bytes.NewReader(data), known)
		return perr
	})
	if err != nil {
		var re *internalerr.ResourceError
		if errors.As(err, &re) {
			return nil, err
		}
		return nil, &internalerr.ResourceError{Resource: resource, Path: path, Err: err}
	}
	return f, nil
}

// Parse reads a resource from r. The name is used in error messages only.
func Parse(resource, name string, r io.Reader, known ...string) (*File, error) {
	return parse(resource, name, r, known)
}

// Map maps path read-only and calls fn with its contents. The slice is
// only valid during fn; it is unmapped when fn returns. An empty file is
// passed as nil.
func Map(path string, fn func(data []byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return err
	}
	if st.Size() == 0 {
		return fn(nil)
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return fmt.Errorf("mmap %s: %w", path, err)
	}
	ferr := fn(m)
	if err := m.Unmap(); err != nil && ferr == nil {
		return fmt.Errorf("unmap %s: %w", path, err)
	}
	return ferr
}

func parse(resource, path string, r io.Reader, known []string) (*File, error) {
	f := &File{Resource: resource, Path: path, sections: make(map[string][]Line)}
	allowed := make(map[string]bool, len(known))
	for _, k := range known {
		allowed[k] = true
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	current, no := "", 0
	for sc.Scan() {
		no++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "##") {
			continue
		}

		if name, ok := tag(text, "</"); ok {
			if name != current {
				return nil, f.errorAt(no, "closing </%s> inside <%s>", name, current)
			}
			current = ""
			continue
		}
		if name, ok := tag(text, "<"); ok {
			if current != "" {
				return nil, f.errorAt(no, "section <%s> opened inside <%s>", name, current)
			}
			if len(allowed) > 0 && !allowed[name] {
				return nil, f.errorAt(no, "unknown section <%s>", name)
			}
			current = name
			if _, seen := f.sections[name]; !seen {
				f.sections[name] = []Line{}
			}
			continue
		}
		if current == "" {
			return nil, f.errorAt(no, "line outside any section")
		}
		f.sections[current] = append(f.sections[current], Line{Text: text, No: no})
	}
	if err := sc.Err(); err != nil {
		return nil, &internalerr.ResourceError{Resource: resource, Path: path, Err: err}
	}
	if current != "" {
		return nil, f.errorAt(no, "section <%s> not closed", current)
	}
	return f, nil
}

// tag recognizes "<Name>" (prefix "<") and "</Name>" (prefix "</").
func tag(text, prefix string) (string, bool) {
	if !strings.HasPrefix(text, prefix) || !strings.HasSuffix(text, ">") {
		return "", false
	}
	name := text[len(prefix) : len(text)-1]
	if name == "" || strings.ContainsAny(name, " \t<>/") {
		return "", false
	}
	return name, true
}

// Has reports whether the section appeared in the file, even empty.
func (f *File) Has(section string) bool {
	_, ok := f.sections[section]
	return ok
}

// Section returns the lines of a section in file order.
func (f *File) Section(section string) []Line {
	return f.sections[section]
}

// Errorf builds a ResourceError pointing at line l.
func (f *File) Errorf(l Line, format string, args ...any) error {
	return f.errorAt(l.No, format, args...)
}

func (f *File) errorAt(no int, format string, args ...any) error {
	return &internalerr.ResourceError{
		Resource: f.Resource,
		Path:     f.Path,
		Line:     no,
		Err:      fmt.Errorf(format, args...),
	}
}
