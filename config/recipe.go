// Package config loads filter recipes: YAML documents naming a chain of
// registered filters with their options and the pipeline-wide settings.
//
//	fast: false
//	threads: 4
//	border: constant
//	fill: "#000000"
//	steps:
//	  - filter: gaussian-blur
//	    options: {radius: 2, sigma: 1.4}
//	  - filter: canny
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/wbrown/pixelpipe"
)

// Step is one filter invocation. Options are decoded by the filter itself.
type Step struct {
	Filter  string    `yaml:"filter"`
	Options yaml.Node `yaml:"options"`
}

// Recipe is a parsed recipe file.
type Recipe struct {
	Fast    bool   `yaml:"fast"`
	Threads int    `yaml:"threads"`
	Border  string `yaml:"border"`
	Fill    string `yaml:"fill"`
	Steps   []Step `yaml:"steps"`
}

// Load reads and parses the recipe at path.
func Load(path string) (*Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading recipe: %w", err)
	}
	r, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log.Debug().Str("path", path).Int("steps", len(r.Steps)).Msg("recipe loaded")
	return r, nil
}

// Parse decodes a recipe, rejecting unknown keys.
func Parse(data []byte) (*Recipe, error) {
	var r Recipe
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&r); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", pixelpipe.ErrInvalidOptions, err)
	}
	if r.Threads < 0 {
		return nil, fmt.Errorf("%w: threads %d", pixelpipe.ErrInvalidOptions, r.Threads)
	}
	return &r, nil
}

// Settings converts the recipe's global options.
func (r *Recipe) Settings() (pixelpipe.Settings, error) {
	s := pixelpipe.DefaultSettings()
	s.Fast = r.Fast
	border, err := pixelpipe.ParseBorderStrategy(r.Border)
	if err != nil {
		return s, err
	}
	s.Border = border
	if r.Fill != "" {
		if s.Fill, err = pixelpipe.ParseColor(r.Fill); err != nil {
			return s, err
		}
	}
	return s, nil
}

// Build validates every step and returns the chain. Nothing runs until the
// chain does, so a bad step never leaves a half-processed image.
func (r *Recipe) Build() (pixelpipe.Chain, error) {
	if len(r.Steps) == 0 {
		return nil, fmt.Errorf("%w: recipe has no steps", pixelpipe.ErrInvalidOptions)
	}
	s, err := r.Settings()
	if err != nil {
		return nil, err
	}
	chain := make(pixelpipe.Chain, 0, len(r.Steps))
	for i, step := range r.Steps {
		params, err := step.params()
		if err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i+1, step.Filter, err)
		}
		pl, err := pixelpipe.Build(step.Filter, params, s)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		chain = append(chain, pl)
	}
	return chain, nil
}

func (s Step) params() ([]byte, error) {
	if s.Options.Kind == 0 || s.Options.Tag == "!!null" {
		return nil, nil
	}
	if s.Options.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: options must be a mapping", pixelpipe.ErrInvalidOptions)
	}
	return yaml.Marshal(&s.Options)
}
