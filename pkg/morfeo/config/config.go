// Package config holds the options an Analyzer is built from: the
// language, the resource file of every stage, which morphological
// sub-modules run, and the tagger, sense, input and output settings.
package config

// Decoding selects how the tagger resolves ambiguity.
type Decoding string

const (
	DecodingViterbi Decoding = "viterbi"
	DecodingUnigram Decoding = "unigram"
)

// SenseMode selects how many senses are attached to a word.
type SenseMode string

const (
	SensesAll   SenseMode = "all"
	SensesFirst SenseMode = "first"
)

// Level is the last stage whose output is rendered.
type Level string

const (
	LevelToken    Level = "token"
	LevelSplitted Level = "splitted"
	LevelMorfo    Level = "morfo"
	LevelTagged   Level = "tagged"
)

// Includes reports whether rendering at l requires stage other to run.
func (l Level) Includes(other Level) bool {
	return levelRank[l] >= levelRank[other]
}

var levelRank = map[Level]int{
	LevelToken:    1,
	LevelSplitted: 2,
	LevelMorfo:    3,
	LevelTagged:   4,
}

// Options configures an Analyzer. It is read-only once the Analyzer is built.
type Options struct {
	Language             string    `yaml:"language"              env:"MORFEO_LANGUAGE"`
	Resources            Resources `yaml:"resources"`
	Modules              Modules   `yaml:"modules"`
	Numbers              Numbers   `yaml:"numbers"`
	ProbabilityThreshold float64   `yaml:"probability_threshold" env:"MORFEO_PROBABILITY_THRESHOLD" env-default:"0.001"`
	UnknownTag           string    `yaml:"unknown_tag"           env:"MORFEO_UNKNOWN_TAG"           env-default:"X"`
	Tagger               Tagger    `yaml:"tagger"`
	Senses               Senses    `yaml:"senses"`
	Input                Input     `yaml:"input"`
	Output               Output    `yaml:"output"`

	// LexiconCache bounds the lookups kept in memory for a database
	// dictionary. Negative disables the cache.
	LexiconCache int `yaml:"lexicon_cache" env:"MORFEO_LEXICON_CACHE" env-default:"4096"`
}

// Resources names the data file of every stage. Dictionary and Senses may
// point at a SQLite database (.db, .sqlite) instead of a text file.
type Resources struct {
	Tokenizer     string `yaml:"tokenizer"     env:"MORFEO_TOKENIZER_FILE"`
	Splitter      string `yaml:"splitter"      env:"MORFEO_SPLITTER_FILE"`
	Affixes       string `yaml:"affixes"       env:"MORFEO_AFFIXES_FILE"`
	Probabilities string `yaml:"probabilities" env:"MORFEO_PROBABILITIES_FILE"`
	Dictionary    string `yaml:"dictionary"    env:"MORFEO_DICTIONARY_FILE"`
	Multiwords    string `yaml:"multiwords"    env:"MORFEO_MULTIWORDS_FILE"`
	Quantities    string `yaml:"quantities"    env:"MORFEO_QUANTITIES_FILE"`
	Punctuation   string `yaml:"punctuation"   env:"MORFEO_PUNCTUATION_FILE"`
	NER           string `yaml:"ner"           env:"MORFEO_NER_FILE"`
	Corrector     string `yaml:"corrector"     env:"MORFEO_CORRECTOR_FILE"`
	Tagger        string `yaml:"tagger"        env:"MORFEO_TAGGER_FILE"`
	Senses        string `yaml:"senses"        env:"MORFEO_SENSES_FILE"`
}

// Modules selects the morphological sub-modules that run.
type Modules struct {
	Affixes       bool `yaml:"affixes"       env:"MORFEO_AFFIXES"`
	Multiwords    bool `yaml:"multiwords"    env:"MORFEO_MULTIWORDS"`
	Numbers       bool `yaml:"numbers"       env:"MORFEO_NUMBERS"`
	Punctuation   bool `yaml:"punctuation"   env:"MORFEO_PUNCTUATION"`
	Dates         bool `yaml:"dates"         env:"MORFEO_DATES"`
	Quantities    bool `yaml:"quantities"    env:"MORFEO_QUANTITIES"`
	Dictionary    bool `yaml:"dictionary"    env:"MORFEO_DICTIONARY"`
	Probabilities bool `yaml:"probabilities" env:"MORFEO_PROBABILITIES"`
	NER           bool `yaml:"ner"           env:"MORFEO_NER"`
	Corrector     bool `yaml:"corrector"     env:"MORFEO_CORRECTOR"`
	Stemmer       bool `yaml:"stemmer"       env:"MORFEO_STEMMER"`
}

// Numbers holds the locale marks used to recognize numerals.
type Numbers struct {
	Decimal  string `yaml:"decimal"  env:"MORFEO_DECIMAL"  env-default:","`
	Thousand string `yaml:"thousand" env:"MORFEO_THOUSAND" env-default:"."`
}

// Tagger holds the disambiguation settings.
type Tagger struct {
	Decoding   Decoding `yaml:"decoding"   env:"MORFEO_DECODING"   env-default:"viterbi"`
	Retokenize bool     `yaml:"retokenize" env:"MORFEO_RETOKENIZE"`
}

// Senses holds the sense annotation settings.
type Senses struct {
	Enabled bool      `yaml:"enabled" env:"MORFEO_SENSES"`
	Mode    SenseMode `yaml:"mode"    env:"MORFEO_SENSE_MODE" env-default:"all"`
}

// Input describes how the byte stream fed to Run is decoded.
type Input struct {
	Encoding  string `yaml:"encoding"   env:"MORFEO_INPUT_ENCODING"   env-default:"utf-8"`
	Format    string `yaml:"format"     env:"MORFEO_INPUT_FORMAT"     env-default:"plain"`
	OnInvalid string `yaml:"on_invalid" env:"MORFEO_INPUT_ON_INVALID" env-default:"skip"`
}

// Output describes what Run prints.
type Output struct {
	Level       Level `yaml:"level"        env:"MORFEO_OUTPUT_LEVEL" env-default:"tagged"`
	AlwaysFlush bool  `yaml:"always_flush" env:"MORFEO_ALWAYS_FLUSH"`
}

// Input formats and invalid-input policies.
const (
	FormatPlain = "plain"
	FormatHTML  = "html"
	FormatJSONL = "jsonl"

	OnInvalidSkip    = "skip"
	OnInvalidReplace = "replace"
)

// Default returns options with every default applied and no module enabled.
func Default() *Options {
	o := &Options{}
	o.applyDefaults()
	return o
}

func (o *Options) applyDefaults() {
	if o.ProbabilityThreshold == 0 {
		o.ProbabilityThreshold = 0.001
	}
	if o.UnknownTag == "" {
		o.UnknownTag = "X"
	}
	if o.LexiconCache == 0 {
		o.LexiconCache = 4096
	}
	if o.Numbers.Decimal == "" {
		o.Numbers.Decimal = ","
	}
	if o.Numbers.Thousand == "" {
		o.Numbers.Thousand = "."
	}
	if o.Tagger.Decoding == "" {
		o.Tagger.Decoding = DecodingViterbi
	}
	if o.Senses.Mode == "" {
		o.Senses.Mode = SensesAll
	}
	if o.Input.Encoding == "" {
		o.Input.Encoding = "utf-8"
	}
	if o.Input.Format == "" {
		o.Input.Format = FormatPlain
	}
	if o.Input.OnInvalid == "" {
		o.Input.OnInvalid = OnInvalidSkip
	}
	if o.Output.Level == "" {
		o.Output.Level = LevelTagged
	}
}
