// Package sqlite stores a lexicon and a sense inventory in one SQLite
// database. The schema is created by embedded goose migrations.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io"
	"io/fs"

	sq "github.com/Masterminds/squirrel"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/cognicore/morfeo/pkg/morfeo/internalerr"
	"github.com/cognicore/morfeo/pkg/morfeo/model"
	"github.com/cognicore/morfeo/pkg/morfeo/store/dicfile"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store is a SQLite-backed lexicon and sense inventory. It is safe for
// concurrent use.
type Store struct {
	db *sql.DB
	qb sq.StatementBuilderType
}

// Open opens (creating if needed) the database at path with WAL mode
// enabled and migrates it to the latest schema.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", internalerr.ErrStoreUnavailable, err)
	}

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%w: %s: %w", internalerr.ErrStoreUnavailable, pragma, err)
		}
	}

	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, qb: sq.StatementBuilder.PlaceholderFormat(sq.Question)}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	dir, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return err
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, dir)
	if err != nil {
		return fmt.Errorf("goose new provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Lookup returns the analyses of form in insertion order, nil when absent.
func (s *Store) Lookup(ctx context.Context, form string) ([]model.Analysis, error) {
	query, args, err := s.qb.
		Select("lemma", "tag").
		From("analyses").
		Where(sq.Eq{"form": form}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("lookup %q: %w", form, err)
	}
	defer rows.Close()

	var out []model.Analysis
	for rows.Next() {
		var lemma, tag string
		if err := rows.Scan(&lemma, &tag); err != nil {
			return nil, err
		}
		out = append(out, dicfile.NewAnalysis(lemma, tag))
	}
	return out, rows.Err()
}

// Forms returns every distinct form, sorted.
func (s *Store) Forms(ctx context.Context) ([]string, error) {
	query, args, err := s.qb.
		Select("DISTINCT form").
		From("analyses").
		OrderBy("form").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list forms: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var f string
		if err := rows.Scan(&f); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// Senses returns the senses of (lemma, pos) by descending score, nil when
// absent.
func (s *Store) Senses(ctx context.Context, lemma, pos string) ([]model.Sense, error) {
	query, args, err := s.qb.
		Select("sense", "score").
		From("senses").
		Where(sq.Eq{"lemma": lemma, "pos": pos}).
		OrderBy("score DESC", "id").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("senses %s/%s: %w", lemma, pos, err)
	}
	defer rows.Close()

	var out []model.Sense
	for rows.Next() {
		var sense model.Sense
		if err := rows.Scan(&sense.ID, &sense.Score); err != nil {
			return nil, err
		}
		out = append(out, sense)
	}
	return out, rows.Err()
}

// ImportDictionary loads a dictionary file in one transaction and returns
// the number of entries read. Analyses already present are kept.
func (s *Store) ImportDictionary(ctx context.Context, r io.Reader) (int, error) {
	return s.inTx(ctx, func(tx *sql.Tx) (int, error) {
		n := 0
		err := dicfile.ReadDictionary(r, func(e dicfile.Entry) error {
			n++
			for _, a := range e.Analyses {
				query, args, err := s.qb.
					Insert("analyses").
					Options("OR IGNORE").
					Columns("form", "lemma", "tag").
					Values(e.Form, a.Lemma, a.Tag).
					ToSql()
				if err != nil {
					return err
				}
				if _, err := tx.ExecContext(ctx, query, args...); err != nil {
					return fmt.Errorf("insert %q: %w", e.Form, err)
				}
			}
			return nil
		})
		return n, err
	})
}

// ImportSenses loads a sense inventory file in one transaction and returns
// the number of entries read.
func (s *Store) ImportSenses(ctx context.Context, r io.Reader) (int, error) {
	return s.inTx(ctx, func(tx *sql.Tx) (int, error) {
		n := 0
		err := dicfile.ReadSenses(r, func(e dicfile.SenseEntry) error {
			n++
			for _, sense := range e.Senses {
				query, args, err := s.qb.
					Insert("senses").
					Options("OR IGNORE").
					Columns("lemma", "pos", "sense", "score").
					Values(e.Lemma, e.POS, sense.ID, sense.Score).
					ToSql()
				if err != nil {
					return err
				}
				if _, err := tx.ExecContext(ctx, query, args...); err != nil {
					return fmt.Errorf("insert sense %s/%s: %w", e.Lemma, e.POS, err)
				}
			}
			return nil
		})
		return n, err
	})
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) (int, error)) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	n, err := fn(tx)
	if err != nil {
		tx.Rollback()
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return n, nil
}
