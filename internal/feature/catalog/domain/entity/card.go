// Package entity defines the domain models for the catalog feature.
package entity

import (
	"fmt"
	"math"
	"strings"
)

// Card is a single catalog record. It is immutable once loaded into a Catalog.
type Card struct {
	Name        string  // unique within the catalog (case-insensitive)
	Series      string
	BasePrice   float64 // positive
	RarityScore int     // 0-100
}

// Validate checks the invariants every catalog record must satisfy.
func (c Card) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidCard)
	}
	if math.IsNaN(c.BasePrice) || math.IsInf(c.BasePrice, 0) || c.BasePrice <= 0 {
		return fmt.Errorf("%w: %q has non-positive base price %v", ErrInvalidCard, c.Name, c.BasePrice)
	}
	if c.RarityScore < 0 || c.RarityScore > 100 {
		return fmt.Errorf("%w: %q has rarity score %d outside 0-100", ErrInvalidCard, c.Name, c.RarityScore)
	}
	return nil
}
