package config

import (
	"fmt"

	"github.com/cognicore/morfeo/pkg/morfeo/internalerr"
)

// Validate checks that every enabled stage has its resource and that every
// enumerated option holds a known value. It returns a *internalerr.ConfigError.
func (o *Options) Validate() error {
	if o.Language == "" {
		return &internalerr.ConfigError{Field: "language", Reason: "is required"}
	}

	required := []struct {
		field   string
		enabled bool
		path    string
	}{
		{"resources.tokenizer", true, o.Resources.Tokenizer},
		{"resources.splitter", o.Output.Level.Includes(LevelSplitted), o.Resources.Splitter},
		{"resources.affixes", o.Modules.Affixes, o.Resources.Affixes},
		{"resources.multiwords", o.Modules.Multiwords, o.Resources.Multiwords},
		{"resources.punctuation", o.Modules.Punctuation, o.Resources.Punctuation},
		{"resources.quantities", o.Modules.Quantities, o.Resources.Quantities},
		{"resources.corrector", o.Modules.Corrector, o.Resources.Corrector},
		{"resources.dictionary", o.Modules.Dictionary || o.Modules.Affixes || o.Modules.Corrector, o.Resources.Dictionary},
		{"resources.probabilities", o.Modules.Probabilities, o.Resources.Probabilities},
		{"resources.ner", o.Modules.NER, o.Resources.NER},
		{"resources.tagger", o.Output.Level.Includes(LevelTagged), o.Resources.Tagger},
		{"resources.senses", o.Senses.Enabled, o.Resources.Senses},
	}
	for _, r := range required {
		if r.enabled && r.path == "" {
			return &internalerr.ConfigError{Field: r.field, Reason: "is required by an enabled stage"}
		}
	}

	if o.Senses.Enabled && !o.Output.Level.Includes(LevelTagged) {
		return &internalerr.ConfigError{Field: "senses.enabled", Reason: "needs output level tagged"}
	}

	switch o.Tagger.Decoding {
	case DecodingViterbi, DecodingUnigram:
	default:
		return enumError("tagger.decoding", string(o.Tagger.Decoding))
	}
	switch o.Senses.Mode {
	case SensesAll, SensesFirst:
	default:
		return enumError("senses.mode", string(o.Senses.Mode))
	}
	if _, ok := levelRank[o.Output.Level]; !ok {
		return enumError("output.level", string(o.Output.Level))
	}
	switch o.Input.Format {
	case FormatPlain, FormatHTML, FormatJSONL:
	default:
		return enumError("input.format", o.Input.Format)
	}
	switch o.Input.OnInvalid {
	case OnInvalidSkip, OnInvalidReplace:
	default:
		return enumError("input.on_invalid", o.Input.OnInvalid)
	}
	if o.ProbabilityThreshold < 0 || o.ProbabilityThreshold >= 1 {
		return &internalerr.ConfigError{
			Field:  "probability_threshold",
			Reason: fmt.Sprintf("must be in [0,1) (got %v)", o.ProbabilityThreshold),
		}
	}
	if o.Numbers.Decimal == o.Numbers.Thousand {
		return &internalerr.ConfigError{Field: "numbers", Reason: "decimal and thousand marks must differ"}
	}
	return nil
}

func enumError(field, value string) error {
	return &internalerr.ConfigError{Field: field, Reason: fmt.Sprintf("unknown value %q", value)}
}
