// Package morfeo chains the analysis stages into one pipeline: tokenizer,
// sentence splitter, morphological analyzer, HMM tagger and sense
// annotator. An Analyzer loads every resource once and is safe to share;
// each caller drives it through its own Stream, which owns the splitter
// carry and the running input offset.
package morfeo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cognicore/morfeo/pkg/morfeo/config"
	"github.com/cognicore/morfeo/pkg/morfeo/hmm"
	"github.com/cognicore/morfeo/pkg/morfeo/model"
	"github.com/cognicore/morfeo/pkg/morfeo/morph"
	"github.com/cognicore/morfeo/pkg/morfeo/render"
	"github.com/cognicore/morfeo/pkg/morfeo/senses"
	"github.com/cognicore/morfeo/pkg/morfeo/splitter"
	"github.com/cognicore/morfeo/pkg/morfeo/store"
	"github.com/cognicore/morfeo/pkg/morfeo/tokenizer"
)

// Analyzer holds the loaded stages. It is read-only after New.
type Analyzer struct {
	opts     config.Options
	log      *slog.Logger
	tok      *tokenizer.Tokenizer
	split    *splitter.Splitter
	morph    *morph.Analyzer
	tagger   *hmm.Tagger
	senses   *senses.Annotator
	renderer *render.Renderer
	decoder  decoder

	lex    store.Lexicon
	inv    store.SenseInventory
	closer []func() error
}

// Option customizes New.
type Option func(*settings)

type settings struct {
	log *slog.Logger
	lex store.Lexicon
	inv store.SenseInventory
}

// WithLogger sets the logger used by every stage. The default is
// slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) { s.log = l }
}

// WithLexicon uses lex instead of opening resources.dictionary. The caller
// keeps ownership: Close does not close it.
func WithLexicon(lex store.Lexicon) Option {
	return func(s *settings) { s.lex = lex }
}

// WithSenseInventory uses inv instead of opening resources.senses. The
// caller keeps ownership.
func WithSenseInventory(inv store.SenseInventory) Option {
	return func(s *settings) { s.inv = inv }
}

// New validates opts and loads the resources of every stage up to
// opts.Output.Level. Errors are *internalerr.ConfigError or
// *internalerr.ResourceError, possibly wrapped.
func New(ctx context.Context, opts *config.Options, options ...Option) (*Analyzer, error) {
	if opts == nil {
		opts = config.Default()
	}
	var set settings
	for _, o := range options {
		o(&set)
	}
	if set.log == nil {
		set.log = slog.Default()
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	a := &Analyzer{opts: *opts, log: set.log}
	if err := a.load(ctx, set); err != nil {
		a.Close()
		return nil, err
	}
	a.log.Info("morfeo: analyzer ready",
		"language", opts.Language,
		"level", opts.Output.Level,
		"decoding", opts.Tagger.Decoding,
		"senses", opts.Senses.Enabled)
	return a, nil
}

func (a *Analyzer) load(ctx context.Context, set settings) error {
	opts := &a.opts
	var err error
	if a.decoder, err = newDecoder(opts.Input.Encoding); err != nil {
		return err
	}
	if a.tok, err = tokenizer.New(opts.Resources.Tokenizer); err != nil {
		return fmt.Errorf("load tokenizer: %w", err)
	}

	level := opts.Output.Level
	if level.Includes(config.LevelSplitted) {
		if a.split, err = splitter.New(opts.Resources.Splitter); err != nil {
			return fmt.Errorf("load splitter: %w", err)
		}
	}

	if level.Includes(config.LevelMorfo) {
		m := opts.Modules
		if m.Dictionary || m.Affixes || m.Corrector {
			if a.lex = set.lex; a.lex == nil {
				if a.lex, err = store.OpenLexicon(ctx, opts.Resources.Dictionary); err != nil {
					return err
				}
				a.closer = append(a.closer, a.lex.Close)
				if store.IsDatabase(opts.Resources.Dictionary) && opts.LexiconCache > 0 {
					if a.lex, err = store.NewCachedLexicon(a.lex, opts.LexiconCache); err != nil {
						return err
					}
				}
			}
		}
		if a.morph, err = morph.New(ctx, opts, a.lex, a.log); err != nil {
			return err
		}
	}

	if level.Includes(config.LevelTagged) {
		a.tagger, err = hmm.Load(opts.Resources.Tagger, hmm.Options{
			Decoding:   opts.Tagger.Decoding,
			Retokenize: opts.Tagger.Retokenize,
			UnknownTag: opts.UnknownTag,
			Logger:     a.log,
		})
		if err != nil {
			return fmt.Errorf("load tagger: %w", err)
		}

		if opts.Senses.Enabled {
			if a.inv = set.inv; a.inv == nil {
				if a.inv, err = store.OpenSenses(ctx, opts.Resources.Senses); err != nil {
					return err
				}
				a.closer = append(a.closer, a.inv.Close)
			}
			if a.senses, err = senses.New(a.inv, opts.Senses.Mode); err != nil {
				return err
			}
		}
	}

	a.renderer = render.New(level, opts.Senses.Enabled)
	return nil
}

// Close releases the stores opened by New.
func (a *Analyzer) Close() error {
	var errs []error
	for _, c := range a.closer {
		errs = append(errs, c())
	}
	a.closer = nil
	return errors.Join(errs...)
}

// Options returns a copy of the options the analyzer was built with.
func (a *Analyzer) Options() config.Options { return a.opts }

// Analyze runs the stages after splitting on sentences, in place.
func (a *Analyzer) Analyze(ctx context.Context, sentences []*model.Sentence) error {
	if len(sentences) == 0 {
		return nil
	}
	if a.morph != nil {
		if err := a.morph.Analyze(ctx, sentences); err != nil {
			return err
		}
	}
	if a.tagger != nil {
		if err := a.tagger.Analyze(ctx, sentences); err != nil {
			return err
		}
	}
	if a.senses != nil {
		if err := a.senses.Analyze(ctx, sentences); err != nil {
			return err
		}
	}
	return nil
}
