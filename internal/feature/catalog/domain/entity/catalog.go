package entity

import (
	"fmt"
	"strings"
)

// Catalog is an immutable, ordered snapshot of card records.
// A refresh builds a new Catalog and swaps it in; existing snapshots are never mutated.
type Catalog struct {
	cards  []Card
	byName map[string]int
}

// NewCatalog validates and copies cards into a new snapshot, preserving order.
func NewCatalog(cards []Card) (*Catalog, error) {
	c := &Catalog{
		cards:  make([]Card, len(cards)),
		byName: make(map[string]int, len(cards)),
	}
	for i, card := range cards {
		if err := card.Validate(); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		key := NameKey(card.Name)
		if _, ok := c.byName[key]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateCard, card.Name)
		}
		c.byName[key] = i
		c.cards[i] = card
	}
	return c, nil
}

// Len returns the number of records. A nil catalog is empty.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.cards)
}

// At returns the i-th record in catalog order.
func (c *Catalog) At(i int) Card {
	return c.cards[i]
}

// Entries returns a copy of all records in catalog order.
func (c *Catalog) Entries() []Card {
	if c == nil {
		return nil
	}
	out := make([]Card, len(c.cards))
	copy(out, c.cards)
	return out
}

// FindByName looks up a record by its exact name, ignoring case.
func (c *Catalog) FindByName(name string) (Card, bool) {
	if c == nil {
		return Card{}, false
	}
	i, ok := c.byName[NameKey(name)]
	if !ok {
		return Card{}, false
	}
	return c.cards[i], true
}

// FindByStem resolves a reference-image identifier (typically a file stem such as
// "charizard_gx") to the first record whose name contains it, ignoring case.
// Underscores and hyphens in the stem are treated as spaces.
func (c *Catalog) FindByStem(stem string) (Card, bool) {
	if c == nil {
		return Card{}, false
	}
	needle := strings.ToLower(strings.TrimSpace(NormalizeStem(stem)))
	if needle == "" {
		return Card{}, false
	}
	for _, card := range c.cards {
		if strings.Contains(strings.ToLower(card.Name), needle) {
			return card, true
		}
	}
	return Card{}, false
}

// NameKey is the case-insensitive identity of a card name.
// Two records with the same key are the same card.
func NameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// NormalizeStem turns a file-stem identifier into a name fragment.
func NormalizeStem(stem string) string {
	return strings.NewReplacer("_", " ", "-", " ").Replace(stem)
}
