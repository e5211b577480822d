package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"
)

// Load reads options from a YAML file and MORFEO_* environment variables.
// Priority: ENV > YAML > defaults. Relative resource paths are resolved
// against the directory of the file.
func Load(path string) (*Options, error) {
	var opts Options
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	}
	if err := cleanenv.ReadConfig(path, &opts); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	opts.applyDefaults()
	opts.Resources.resolve(filepath.Dir(path))

	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &opts, nil
}

// Decode reads options from YAML, rejecting unknown keys. Environment
// variables are not consulted and relative paths are kept as given.
func Decode(r io.Reader) (*Options, error) {
	var opts Options
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&opts); err != nil && err != io.EOF {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	opts.applyDefaults()
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &opts, nil
}

// Encode writes the effective options as YAML.
func Encode(w io.Writer, opts *Options) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(opts); err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	return enc.Close()
}

func (r *Resources) resolve(dir string) {
	for _, p := range []*string{
		&r.Tokenizer, &r.Splitter, &r.Affixes, &r.Probabilities,
		&r.Dictionary, &r.Multiwords, &r.Quantities, &r.Punctuation,
		&r.NER, &r.Corrector, &r.Tagger, &r.Senses,
	} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
}
