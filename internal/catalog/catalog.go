// Package catalog holds the interest and context tags users pick from during
// onboarding.
package catalog

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/bilgisen/newsinflight/internal/storage"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Tag is one selectable interest or context.
type Tag struct {
	ID    string `yaml:"id" json:"id"`
	Label string `yaml:"label" json:"label"`
}

// Catalog is the full set of selectable tags.
type Catalog struct {
	Interests []Tag `yaml:"interests" json:"interests"`
	Contexts  []Tag `yaml:"contexts" json:"contexts"`

	interestIDs map[string]struct{}
	contextIDs  map[string]struct{}
}

// Load parses the embedded default catalog.
func Load() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Parse decodes a YAML catalog and rejects empty or duplicate ids.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	var err error
	if c.interestIDs, err = index("interest", c.Interests); err != nil {
		return nil, err
	}
	if c.contextIDs, err = index("context", c.Contexts); err != nil {
		return nil, err
	}
	return &c, nil
}

func index(kind string, tags []Tag) (map[string]struct{}, error) {
	ids := make(map[string]struct{}, len(tags))
	for i, t := range tags {
		if t.ID == "" {
			return nil, fmt.Errorf("%s tag %d has no id", kind, i)
		}
		if _, dup := ids[t.ID]; dup {
			return nil, fmt.Errorf("duplicate %s tag %q", kind, t.ID)
		}
		ids[t.ID] = struct{}{}
	}
	return ids, nil
}

func (c *Catalog) HasInterest(id string) bool {
	_, ok := c.interestIDs[id]
	return ok
}

func (c *Catalog) HasContext(id string) bool {
	_, ok := c.contextIDs[id]
	return ok
}

// Unknown returns the interests and contexts not present in the catalog.
func (c *Catalog) Unknown(interests, contexts []string) (badInterests, badContexts []string) {
	for _, id := range interests {
		if !c.HasInterest(id) {
			badInterests = append(badInterests, id)
		}
	}
	for _, id := range contexts {
		if !c.HasContext(id) {
			badContexts = append(badContexts, id)
		}
	}
	return badInterests, badContexts
}

func (c *Catalog) rows() (interests, contexts []storage.CatalogTag) {
	interests = make([]storage.CatalogTag, len(c.Interests))
	for i, t := range c.Interests {
		interests[i] = storage.CatalogTag{ID: t.ID, Label: t.Label}
	}
	contexts = make([]storage.CatalogTag, len(c.Contexts))
	for i, t := range c.Contexts {
		contexts[i] = storage.CatalogTag{ID: t.ID, Label: t.Label}
	}
	return interests, contexts
}
