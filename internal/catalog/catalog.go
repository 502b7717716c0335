/*
Package catalog holds the static food table shared by the craving extractor
and the recommender. The table is loaded once at startup from a JSON
artifact and is read-only afterwards.
*/
package catalog

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

//go:embed foods.json
var defaultFoods []byte

// ErrInvalidEntry is returned when a catalog entry breaks a table invariant.
var ErrInvalidEntry = errors.New("invalid catalog entry")

// Entry is one immutable food definition.
type Entry struct {
	Name          string   `json:"name"`
	GlycemicIndex float64  `json:"glycemic_index"`
	Carbs         float64  `json:"carbs"`
	Sugar         float64  `json:"sugar"`
	Categories    []string `json:"categories"`
	MealType      MealType `json:"meal_type"`
}

// HasCategory reports whether the entry carries the tag, honouring aliases.
func (e Entry) HasCategory(category string) bool {
	want := CanonicalCategory(category)
	for _, c := range e.Categories {
		if CanonicalCategory(c) == want {
			return true
		}
	}
	return false
}

// SharesAny reports whether the entry carries at least one of the tags.
func (e Entry) SharesAny(categories []string) bool {
	for _, c := range categories {
		if e.HasCategory(c) {
			return true
		}
	}
	return false
}

// TypeTags returns the non-generic tags (pasta, dairy, seafood...).
func (e Entry) TypeTags() []string {
	var tags []string
	for _, c := range e.Categories {
		if !IsTasteTag(c) {
			tags = append(tags, c)
		}
	}
	return tags
}

// TasteTags returns the generic taste/texture tags (sweet, cold, creamy...).
func (e Entry) TasteTags() []string {
	var tags []string
	for _, c := range e.Categories {
		if IsTasteTag(c) {
			tags = append(tags, c)
		}
	}
	return tags
}

// Catalog is an ordered, name-indexed food table.
type Catalog struct {
	entries []Entry
	index   map[string]int
}

// New validates the entries and builds a catalog. Entries are deep-copied so
// later mutation of the input cannot leak into the table.
func New(entries []Entry) (*Catalog, error) {
	c := &Catalog{
		entries: make([]Entry, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}

	for i, e := range entries {
		if err := validate(e); err != nil {
			return nil, fmt.Errorf("entry %d (%q): %w", i, e.Name, err)
		}
		if _, dup := c.index[e.Name]; dup {
			return nil, fmt.Errorf("entry %d (%q): duplicate name: %w", i, e.Name, ErrInvalidEntry)
		}

		e.Categories = append([]string(nil), e.Categories...)
		c.index[e.Name] = len(c.entries)
		c.entries = append(c.entries, e)
	}

	return c, nil
}

func validate(e Entry) error {
	switch {
	case e.Name == "":
		return fmt.Errorf("empty name: %w", ErrInvalidEntry)
	case e.Name != strings.ToLower(strings.TrimSpace(e.Name)):
		return fmt.Errorf("name must be trimmed lowercase: %w", ErrInvalidEntry)
	case len(e.Categories) == 0:
		return fmt.Errorf("no categories: %w", ErrInvalidEntry)
	case !e.MealType.Valid():
		return fmt.Errorf("unknown meal type %q: %w", e.MealType, ErrInvalidEntry)
	case e.GlycemicIndex < 0 || e.Carbs < 0 || e.Sugar < 0:
		return fmt.Errorf("negative nutrition value: %w", ErrInvalidEntry)
	}
	return nil
}

// Parse decodes a JSON array of entries into a catalog.
func Parse(data []byte) (*Catalog, error) {
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return New(entries)
}

// Load reads the catalog artifact at path. An empty path selects the
// embedded default table.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Default returns the embedded food table.
func Default() (*Catalog, error) {
	return Parse(defaultFoods)
}

// Lookup returns the entry with the given canonical name.
func (c *Catalog) Lookup(name string) (Entry, bool) {
	i, ok := c.index[name]
	if !ok {
		return Entry{}, false
	}
	return c.entries[i], true
}

// Contains reports whether name is a catalog key.
func (c *Catalog) Contains(name string) bool {
	_, ok := c.index[name]
	return ok
}

// Entries returns the table in definition order. The returned slice is a
// fresh copy; the category slices inside it must be treated as read-only.
func (c *Catalog) Entries() []Entry {
	return append([]Entry(nil), c.entries...)
}

// Names returns every canonical name in definition order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.entries))
	for i, e := range c.entries {
		names[i] = e.Name
	}
	return names
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}
