// Package corpus reads JSONL document collections: one {"id","text"}
// object per line.
package corpus

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Document is one input document.
type Document struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	Line int    `json:"-"`
}

var errNoText = errors.New("document has no text field")

// Read decodes documents from r and calls fn for each one in order.
// Malformed lines are reported to bad with their line number and skipped.
// An error from fn stops the read.
func Read(r io.Reader, fn func(Document) error, bad func(line int, err error)) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)

	no := 0
	for sc.Scan() {
		no++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		var raw struct {
			ID   json.RawMessage `json:"id"`
			Text *string         `json:"text"`
		}
		if err := json.Unmarshal([]byte(line), &raw); err != nil {
			bad(no, fmt.Errorf("malformed JSON: %w", err))
			continue
		}
		if raw.Text == nil {
			bad(no, errNoText)
			continue
		}
		doc := Document{ID: id(raw.ID), Text: *raw.Text, Line: no}
		if err := fn(doc); err != nil {
			return err
		}
	}
	return sc.Err()
}

// id accepts string and numeric identifiers.
func id(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}
