package store

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/cognicore/morfeo/pkg/morfeo/model"
)

// CachedLexicon keeps the most recent lookups of a Lexicon in memory.
// Absent forms are cached too. It is safe for concurrent use.
type CachedLexicon struct {
	Lexicon
	cache *lru.Cache[string, []model.Analysis]
}

// NewCachedLexicon wraps lex with an LRU cache of size forms.
func NewCachedLexicon(lex Lexicon, size int) (*CachedLexicon, error) {
	cache, err := lru.New[string, []model.Analysis](size)
	if err != nil {
		return nil, fmt.Errorf("lexicon cache: %w", err)
	}
	return &CachedLexicon{Lexicon: lex, cache: cache}, nil
}

// Lookup returns the cached analyses of form, asking the wrapped lexicon on
// a miss. Callers get their own copy of the slice.
func (c *CachedLexicon) Lookup(ctx context.Context, form string) ([]model.Analysis, error) {
	as, ok := c.cache.Get(form)
	if !ok {
		var err error
		if as, err = c.Lexicon.Lookup(ctx, form); err != nil {
			return nil, err
		}
		c.cache.Add(form, as)
	}
	if as == nil {
		return nil, nil
	}
	out := make([]model.Analysis, len(as))
	copy(out, as)
	return out, nil
}

// Len returns the number of cached forms.
func (c *CachedLexicon) Len() int { return c.cache.Len() }
