// Package entity はpricingフィーチャーのドメインモデルを定義します。
package entity

import (
	"fmt"
	"strings"
)

// Condition はカードの状態を表す閉じた列挙型です。
type Condition string

const (
	ConditionDamaged Condition = "Damaged"
	ConditionPlayed  Condition = "Played"
	ConditionMint    Condition = "Mint"
)

// DefaultCondition は状態が指定されなかった場合の既定値です（アップロード画面の初期選択と同じ）。
const DefaultCondition = ConditionMint

// Conditions は定義済みの状態を重症度の低い順（Damaged → Mint）で返します。
func Conditions() []Condition {
	return []Condition{ConditionDamaged, ConditionPlayed, ConditionMint}
}

// ParseCondition は大文字小文字を区別せずに文字列をConditionへ変換します。
// 空文字列はDefaultConditionとして扱います。
func ParseCondition(s string) (Condition, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultCondition, nil
	}
	for _, c := range Conditions() {
		if strings.EqualFold(s, string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCondition, s)
}

// ValidateRarity はレアリティスコアが0〜100に収まっているかを検査します。
func ValidateRarity(score int) error {
	if score < 0 || score > 100 {
		return fmt.Errorf("%w: got %d", ErrInvalidRarity, score)
	}
	return nil
}

// Severity はファジィ推論で使う状態の数値（0〜100）を返します。
// 未知の値は50（Played相当）になります。
func (c Condition) Severity() float64 {
	switch c {
	case ConditionDamaged:
		return 20
	case ConditionPlayed:
		return 50
	case ConditionMint:
		return 90
	default:
		return 50
	}
}

// FallbackFactor はフォールバック計算式で使う状態係数を返します。
func (c Condition) FallbackFactor() float64 {
	switch c {
	case ConditionDamaged:
		return 0.5
	case ConditionPlayed:
		return 0.75
	case ConditionMint:
		return 1.0
	default:
		return 0.75
	}
}
