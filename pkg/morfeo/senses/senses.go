// Package senses attaches word-sense identifiers to tagged words. Senses
// are looked up by the selected lemma and the first letter of the selected
// tag, and kept in the inventory order (highest score first).
package senses

import (
	"context"
	"fmt"

	"github.com/cognicore/morfeo/pkg/morfeo/config"
	"github.com/cognicore/morfeo/pkg/morfeo/internalerr"
	"github.com/cognicore/morfeo/pkg/morfeo/model"
	"github.com/cognicore/morfeo/pkg/morfeo/store"
)

// Annotator is safe for concurrent use when its inventory is.
type Annotator struct {
	inv  store.SenseInventory
	mode config.SenseMode
}

// New returns an annotator over inv. mode "first" keeps only the best
// sense of each word, "all" (or empty) keeps every sense.
func New(inv store.SenseInventory, mode config.SenseMode) (*Annotator, error) {
	switch mode {
	case "":
		mode = config.SensesAll
	case config.SensesAll, config.SensesFirst:
	default:
		return nil, &internalerr.ConfigError{Field: "senses.mode", Reason: "unknown mode " + string(mode)}
	}
	if inv == nil {
		return nil, &internalerr.ConfigError{Field: "resources.senses", Reason: "no sense inventory"}
	}
	return &Annotator{inv: inv, mode: mode}, nil
}

// Analyze sets the senses of every tagged word. Words without a selected
// analysis, or whose lemma is absent from the inventory, get none.
func (a *Annotator) Analyze(ctx context.Context, sentences []*model.Sentence) error {
	for _, s := range sentences {
		if s.Done(model.StageSenses) {
			continue
		}
		for _, w := range s.Words {
			sel, ok := w.Selected()
			if !ok {
				w.Senses = nil
				continue
			}
			found, err := a.inv.Senses(ctx, sel.Lemma, model.SensePOS(sel.Tag))
			if err != nil {
				return fmt.Errorf("senses for %q: %w", sel.Lemma, err)
			}
			if a.mode == config.SensesFirst && len(found) > 1 {
				found = found[:1]
			}
			w.Senses = found
		}
		s.MarkDone(model.StageSenses)
	}
	return nil
}
