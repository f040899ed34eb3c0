package entity

import "errors"

var (
	// ErrInvalidCard indicates that a record violates the catalog invariants.
	ErrInvalidCard = errors.New("invalid card record")

	// ErrDuplicateCard indicates that two records share the same name.
	ErrDuplicateCard = errors.New("duplicate card name")

	// ErrCardNotFound indicates that no catalog record matched the lookup.
	ErrCardNotFound = errors.New("card not found")
)
