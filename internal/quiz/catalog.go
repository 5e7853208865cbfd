// Package quiz grades multiple-choice and single-choice quizzes.
package quiz

import (
	"errors"
	"fmt"
	"io"

	"github.com/ashureev/gomaps-tutor/internal/domain"
	"gopkg.in/yaml.v3"
)

// Catalog is the static page content: quizzes and the fragments the page
// includes on load.
type Catalog struct {
	Components []domain.FragmentRef `yaml:"components"`
	Quizzes    []domain.Quiz        `yaml:"quizzes"`
	MapQuizzes []domain.MapQuiz     `yaml:"map_quizzes"`
}

// ErrUnknownQuiz is returned for quiz ids missing from the catalog.
var ErrUnknownQuiz = errors.New("quiz not found")

// LoadCatalog decodes and validates a YAML catalog.
func LoadCatalog(r io.Reader) (*Catalog, error) {
	var c Catalog
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	return &c, nil
}

// Validate checks ids are unique and every quiz can be answered.
func (c *Catalog) Validate() error {
	seen := make(map[string]bool)
	for _, q := range c.Quizzes {
		if q.ID == "" {
			return errors.New("quiz without id")
		}
		if seen[q.ID] {
			return fmt.Errorf("duplicate quiz id %q", q.ID)
		}
		seen[q.ID] = true

		hasCorrect := false
		optionIDs := make(map[string]bool)
		for _, o := range q.Options {
			if optionIDs[o.ID] {
				return fmt.Errorf("quiz %q: duplicate option id %q", q.ID, o.ID)
			}
			optionIDs[o.ID] = true
			if o.IsCorrect() {
				hasCorrect = true
			}
		}
		if !hasCorrect {
			return fmt.Errorf("quiz %q has no correct option", q.ID)
		}
	}

	for _, q := range c.MapQuizzes {
		if q.ID == "" {
			return errors.New("map quiz without id")
		}
		if seen[q.ID] {
			return fmt.Errorf("duplicate quiz id %q", q.ID)
		}
		seen[q.ID] = true

		found := false
		for _, o := range q.Options {
			if o.Value == q.Expected {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("map quiz %q: expected value %q is not an option", q.ID, q.Expected)
		}
	}

	for _, ref := range c.Components {
		if ref.Source == "" {
			return errors.New("component without source")
		}
	}
	return nil
}

// Quiz returns a multiple-choice quiz.
func (c *Catalog) Quiz(id string) (*domain.Quiz, bool) {
	for i := range c.Quizzes {
		if c.Quizzes[i].ID == id {
			return &c.Quizzes[i], true
		}
	}
	return nil, false
}

// MapQuiz returns a single-choice quiz.
func (c *Catalog) MapQuiz(id string) (*domain.MapQuiz, bool) {
	for i := range c.MapQuizzes {
		if c.MapQuizzes[i].ID == id {
			return &c.MapQuizzes[i], true
		}
	}
	return nil, false
}
