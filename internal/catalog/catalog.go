package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/supplematch/internal/rules"
)

//go:embed default.yaml
var defaultCatalog []byte

// ErrEmptyCatalog is returned when a catalog has no candidates
var ErrEmptyCatalog = errors.New("catalog is empty")

// Candidate is one catalog entry. Immutable for the lifetime of a scoring run.
type Candidate struct {
	ID                string
	Name              string
	Categories        []string
	Substance         string
	Positive          []rules.Condition
	Negative          []rules.Condition
	Contraindications []string
	Notes             string
	Essential         bool // bypasses the score threshold unless vetoed
}

// CandidateSpec is the YAML form of a candidate
type CandidateSpec struct {
	ID                string                `yaml:"id" json:"id"`
	Name              string                `yaml:"name" json:"name"`
	Categories        []string              `yaml:"categories" json:"categories"`
	Substance         string                `yaml:"substance,omitempty" json:"substance,omitempty"`
	Positive          []rules.ConditionSpec `yaml:"positive,omitempty" json:"positive,omitempty"`
	Negative          []rules.ConditionSpec `yaml:"negative,omitempty" json:"negative,omitempty"`
	Contraindications []string              `yaml:"contraindications,omitempty" json:"contraindications,omitempty"`
	Notes             string                `yaml:"notes,omitempty" json:"notes,omitempty"`
	Essential         bool                  `yaml:"essential,omitempty" json:"essential,omitempty"`
}

// File is the top-level YAML document
type File struct {
	Version    int             `yaml:"version"`
	Candidates []CandidateSpec `yaml:"candidates"`
}

// Load reads a catalog file. An empty path loads the embedded sample catalog.
func Load(path string) ([]Candidate, error) {
	file, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Build(file.Candidates)
}

// ReadFile decodes a catalog document without building it
func ReadFile(path string) (File, error) {
	data := defaultCatalog
	if strings.TrimSpace(path) != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return File{}, fmt.Errorf("read catalog: %w", err)
		}
	}
	return Decode(data)
}

// Decode parses a YAML catalog document
func Decode(data []byte) (File, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return File{}, fmt.Errorf("decode catalog: %w", err)
	}
	return file, nil
}

// Default returns the embedded sample catalog
func Default() ([]Candidate, error) {
	return Parse(defaultCatalog)
}

// DefaultYAML returns the raw embedded catalog document
func DefaultYAML() []byte {
	return append([]byte(nil), defaultCatalog...)
}

// Parse decodes and builds a catalog from YAML
func Parse(data []byte) ([]Candidate, error) {
	file, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return Build(file.Candidates)
}

// Build converts declarative specs into typed candidates
func Build(specs []CandidateSpec) ([]Candidate, error) {
	if len(specs) == 0 {
		return nil, ErrEmptyCatalog
	}

	out := make([]Candidate, 0, len(specs))
	for i, spec := range specs {
		c, err := buildCandidate(spec)
		if err != nil {
			return nil, fmt.Errorf("candidate %d (%s): %w", i, spec.ID, err)
		}
		out = append(out, c)
	}
	return out, nil
}

func buildCandidate(spec CandidateSpec) (Candidate, error) {
	c := Candidate{
		ID:                strings.TrimSpace(spec.ID),
		Name:              strings.TrimSpace(spec.Name),
		Categories:        spec.Categories,
		Substance:         spec.Substance,
		Contraindications: spec.Contraindications,
		Notes:             strings.TrimSpace(spec.Notes),
		Essential:         spec.Essential,
	}
	if c.ID == "" {
		return c, errors.New("id is required")
	}
	if c.Name == "" {
		c.Name = c.ID
	}

	for _, cs := range spec.Positive {
		cond, err := rules.ParseCondition(cs)
		if err != nil {
			return c, fmt.Errorf("positive condition: %w", err)
		}
		c.Positive = append(c.Positive, cond)
	}
	for _, cs := range spec.Negative {
		cond, err := rules.ParseCondition(cs)
		if err != nil {
			return c, fmt.Errorf("negative condition: %w", err)
		}
		c.Negative = append(c.Negative, cond)
	}
	return c, nil
}

// Spec converts a candidate back to its declarative form
func (c Candidate) Spec() CandidateSpec {
	spec := CandidateSpec{
		ID:                c.ID,
		Name:              c.Name,
		Categories:        c.Categories,
		Substance:         c.Substance,
		Contraindications: c.Contraindications,
		Notes:             c.Notes,
		Essential:         c.Essential,
	}
	for _, cond := range c.Positive {
		spec.Positive = append(spec.Positive, cond.Spec())
	}
	for _, cond := range c.Negative {
		spec.Negative = append(spec.Negative, cond.Spec())
	}
	return spec
}

// Marshal renders candidates as a catalog YAML document
func Marshal(candidates []Candidate) ([]byte, error) {
	file := File{Version: 1}
	for _, c := range candidates {
		file.Candidates = append(file.Candidates, c.Spec())
	}
	return yaml.Marshal(file)
}
