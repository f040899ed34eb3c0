// Package fuzzy はカード価格倍率を求めるMamdani型ファジィ推論エンジンを提供します。
//
// メンバーシップ関数とルール表はプロセス起動時に一度だけ構築され、以後は読み取り専用です。
package fuzzy

// Triangle は三角形メンバーシップ関数 (A ≤ B ≤ C) です。
// A == B または B == C の場合は肩の形（左端・右端で1）になります。
type Triangle struct {
	A, B, C float64
}

// Degree はxがこの集合に属する度合い（0〜1）を返します。
func (t Triangle) Degree(x float64) float64 {
	y := 0.0
	if t.A != t.B && t.A < x && x < t.B {
		y = (x - t.A) / (t.B - t.A)
	}
	if t.B != t.C && t.B < x && x < t.C {
		y = (t.C - x) / (t.C - t.B)
	}
	if x == t.B {
		y = 1
	}
	return y
}

// Term は言語ラベル付きのメンバーシップ関数です。
type Term struct {
	Label string
	MF    Triangle
}

// Variable はファジィ変数です。Termsの順序がルール表の行・列の順序になります。
type Variable struct {
	Name  string
	Min   float64
	Max   float64
	Terms []Term
}

// clip は入力値を変数の定義域に収めます。
func (v Variable) clip(x float64) float64 {
	if x < v.Min {
		return v.Min
	}
	if x > v.Max {
		return v.Max
	}
	return x
}

// degrees は各Termに対するxの所属度をTerms順に返します。
func (v Variable) degrees(x float64) []float64 {
	out := make([]float64, len(v.Terms))
	for i, t := range v.Terms {
		out[i] = t.MF.Degree(x)
	}
	return out
}

// indexOf はラベルに対応するTermの添字を返します。見つからなければ-1です。
func (v Variable) indexOf(label string) int {
	for i, t := range v.Terms {
		if t.Label == label {
			return i
		}
	}
	return -1
}
