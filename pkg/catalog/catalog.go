package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pathway-finder/webclient/pkg/careerapi"
	"gopkg.in/yaml.v3"
)

// Parameter is a categorical dataset attribute that can be charted.
type Parameter struct {
	ID    string `yaml:"id" json:"id"`
	Label string `yaml:"label" json:"label"`
}

// Catalog holds the option lists shown by the prediction and visualization
// pages.
type Catalog struct {
	Education    []string          `yaml:"education" json:"education"`
	Placeholders map[string]string `yaml:"placeholders" json:"placeholders"`
	Parameters   []Parameter       `yaml:"parameters" json:"parameters"`
}

func Load(path string) (Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return DefaultCatalog(), err
	}
	return Parse(content)
}

func Parse(content []byte) (Catalog, error) {
	var cat Catalog
	if err := yaml.Unmarshal(content, &cat); err != nil {
		return Catalog{}, err
	}
	if len(cat.Education) == 0 {
		return Catalog{}, errors.New("catalog has no education options")
	}
	if len(cat.Parameters) == 0 {
		return Catalog{}, errors.New("catalog has no visualization parameters")
	}
	seen := make(map[string]struct{}, len(cat.Parameters))
	for _, p := range cat.Parameters {
		if p.ID == "" {
			return Catalog{}, errors.New("catalog parameter missing id")
		}
		if _, dup := seen[p.ID]; dup {
			return Catalog{}, fmt.Errorf("catalog parameter %q listed twice", p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return cat, nil
}

func (c Catalog) Parameter(id string) (Parameter, bool) {
	for _, p := range c.Parameters {
		if p.ID == id {
			return p, true
		}
	}
	return Parameter{}, false
}

func (c Catalog) Placeholder(field string) string {
	return c.Placeholders[field]
}

func DefaultCatalog() Catalog {
	return Catalog{
		Education: []string{"O-level", "A-level"},
		Placeholders: map[string]string{
			careerapi.FieldInterest:         "E.g. Technology, Science, Arts",
			careerapi.FieldFavoriteSubject:  "E.g. Mathematics, Physics, English",
			careerapi.FieldExtracurriculars: "E.g. Sports, Art Club, Debate Team",
			careerapi.FieldPersonalityTrait: "E.g. Leader, Creative, Analytical",
		},
		Parameters: []Parameter{
			{ID: "education", Label: "Education Level"},
			{ID: "interest", Label: "Interest"},
			{ID: "extracurriculars", Label: "Extracurricular Activities"},
			{ID: "personality", Label: "Personality Trait"},
		},
	}
}
