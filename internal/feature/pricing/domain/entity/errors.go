package entity

import "errors"

var (
	// ErrInvalidCondition は未定義のカード状態が指定された場合に返されます。
	ErrInvalidCondition = errors.New("invalid card condition")

	// ErrInvalidRarity はレアリティスコアが0〜100の範囲外の場合に返されます。
	ErrInvalidRarity = errors.New("rarity score must be between 0 and 100")
)
