// Package store defines the lexical data sources the pipeline reads and
// opens the backend matching a resource path.
package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/cognicore/morfeo/pkg/morfeo/internalerr"
	"github.com/cognicore/morfeo/pkg/morfeo/model"
	"github.com/cognicore/morfeo/pkg/morfeo/store/memstore"
	"github.com/cognicore/morfeo/pkg/morfeo/store/sqlite"
)

// Lexicon maps lower-cased word forms to dictionary analyses.
type Lexicon interface {
	Lookup(ctx context.Context, form string) ([]model.Analysis, error)
	Forms(ctx context.Context) ([]string, error)
	Close() error
}

// SenseInventory maps (lemma, part-of-speech letter) to senses ordered by
// descending score.
type SenseInventory interface {
	Senses(ctx context.Context, lemma, pos string) ([]model.Sense, error)
	Close() error
}

var (
	_ Lexicon        = (*memstore.Lexicon)(nil)
	_ Lexicon        = (*sqlite.Store)(nil)
	_ SenseInventory = (*memstore.Senses)(nil)
	_ SenseInventory = (*sqlite.Store)(nil)
)

// IsDatabase reports whether path names a SQLite database.
func IsDatabase(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return true
	}
	return false
}

// OpenLexicon opens a dictionary: a SQLite database for .db/.sqlite paths,
// otherwise a text file loaded into memory.
func OpenLexicon(ctx context.Context, path string) (Lexicon, error) {
	if IsDatabase(path) {
		st, err := openDatabase(ctx, path)
		if err != nil {
			return nil, &internalerr.ResourceError{Resource: "dictionary", Path: path, Err: err}
		}
		return st, nil
	}
	lex, err := memstore.LoadLexicon(path)
	if err != nil {
		return nil, err
	}
	return lex, nil
}

// OpenSenses opens a sense inventory the same way OpenLexicon does.
func OpenSenses(ctx context.Context, path string) (SenseInventory, error) {
	if IsDatabase(path) {
		st, err := openDatabase(ctx, path)
		if err != nil {
			return nil, &internalerr.ResourceError{Resource: "senses", Path: path, Err: err}
		}
		return st, nil
	}
	inv, err := memstore.LoadSenses(path)
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// openDatabase opens an existing SQLite resource. A missing file is an
// error, not a new empty database.
func openDatabase(ctx context.Context, path string) (*sqlite.Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	return sqlite.Open(ctx, path)
}
