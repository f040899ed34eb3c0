package fuzzy

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrDegenerateOutput は集約後の出力集合の面積が0で、重心を計算できない場合に返されます。
var ErrDegenerateOutput = errors.New("fuzzy output set has zero area")

const (
	// outputStep は出力変数の定義域をサンプリングする刻み幅です。
	outputStep = 0.1
	// outputStop は出力定義域サンプリングの終端（この値を含まない）です。
	outputStop = 2.1
)

// Engine は事前コンパイル済みのルール表を持つ2入力1出力のファジィ推論器です。
// 構築後は不変で、複数のgoroutineから同時に利用できます。
type Engine struct {
	rarity    Variable
	condition Variable
	output    Variable

	// rules[i][j] は rarity.Terms[i] × condition.Terms[j] に対する出力Termの添字です。
	rules [][]int

	// universe は出力変数のサンプル点、samples[k] はそこでの出力Term kの所属度です。
	universe []float64
	samples  [][]float64
}

// RarityVariable はレアリティスコア（0〜100）の入力変数です。
func RarityVariable() Variable {
	return Variable{
		Name: "rarity", Min: 0, Max: 100,
		Terms: []Term{
			{Label: "low", MF: Triangle{0, 0, 50}},
			{Label: "medium", MF: Triangle{30, 60, 90}},
			{Label: "high", MF: Triangle{70, 100, 100}},
		},
	}
}

// ConditionVariable はカード状態の数値（0〜100）の入力変数です。
func ConditionVariable() Variable {
	return Variable{
		Name: "condition", Min: 0, Max: 100,
		Terms: []Term{
			{Label: "poor", MF: Triangle{0, 0, 50}},
			{Label: "fair", MF: Triangle{30, 50, 70}},
			{Label: "excellent", MF: Triangle{60, 100, 100}},
		},
	}
}

// MultiplierVariable は価格倍率（0〜2）の出力変数です。
func MultiplierVariable() Variable {
	return Variable{
		Name: "multiplier", Min: 0, Max: 2,
		Terms: []Term{
			{Label: "low", MF: Triangle{0, 0, 0.6}},
			{Label: "medium", MF: Triangle{0.4, 0.8, 1.2}},
			{Label: "high", MF: Triangle{1.0, 1.5, 2.0}},
		},
	}
}

// PriceRules はレアリティ（行: low, medium, high）× 状態（列: poor, fair, excellent）から
// 倍率ラベルへのルール表です。
var PriceRules = [][]string{
	{"low", "low", "medium"},
	{"low", "medium", "high"},
	{"medium", "high", "high"},
}

// Default はプロセス全体で共有する価格倍率エンジンです。
var Default = MustNewEngine(RarityVariable(), ConditionVariable(), MultiplierVariable(), PriceRules)

// NewEngine は変数とルール表からEngineを構築します。
// ルール表の形が入力変数のTerm数と一致しない場合、または未知のラベルを含む場合はエラーを返します。
func NewEngine(rarity, condition, output Variable, table [][]string) (*Engine, error) {
	if len(table) != len(rarity.Terms) {
		return nil, fmt.Errorf("rule table has %d rows, want %d", len(table), len(rarity.Terms))
	}
	rules := make([][]int, len(table))
	for i, row := range table {
		if len(row) != len(condition.Terms) {
			return nil, fmt.Errorf("rule table row %d has %d columns, want %d", i, len(row), len(condition.Terms))
		}
		rules[i] = make([]int, len(row))
		for j, label := range row {
			k := output.indexOf(label)
			if k < 0 {
				return nil, fmt.Errorf("rule table references unknown output term %q", label)
			}
			rules[i][j] = k
		}
	}

	// numpy.arange と同じく start + i*step で点を生成する
	n := int(math.Ceil((outputStop - output.Min) / outputStep))
	universe := make([]float64, n)
	for i := range universe {
		universe[i] = output.Min + float64(i)*outputStep
	}
	samples := make([][]float64, len(output.Terms))
	for k, t := range output.Terms {
		samples[k] = make([]float64, n)
		for i, x := range universe {
			samples[k][i] = t.MF.Degree(x)
		}
	}

	return &Engine{
		rarity:    rarity,
		condition: condition,
		output:    output,
		rules:     rules,
		universe:  universe,
		samples:   samples,
	}, nil
}

// MustNewEngine はNewEngineのpanic版です。パッケージ初期化時の固定定義にのみ使用します。
func MustNewEngine(rarity, condition, output Variable, table [][]string) *Engine {
	e, err := NewEngine(rarity, condition, output, table)
	if err != nil {
		panic(err)
	}
	return e
}

// Evaluate はレアリティと状態の数値から価格倍率を推論します。
// 入力は各変数の定義域にクリップされます。非有限の入力や面積0の出力集合ではエラーを返します。
func (e *Engine) Evaluate(rarity, condition float64) (float64, error) {
	if math.IsNaN(rarity) || math.IsInf(rarity, 0) || math.IsNaN(condition) || math.IsInf(condition, 0) {
		return 0, fmt.Errorf("%w: non-finite input (rarity=%v, condition=%v)", ErrDegenerateOutput, rarity, condition)
	}

	rd := e.rarity.degrees(e.rarity.clip(rarity))
	cd := e.condition.degrees(e.condition.clip(condition))

	// 発火強度: AND = min、同じ出力ラベルのルール集約 = max
	cuts := make([]float64, len(e.output.Terms))
	for i, row := range e.rules {
		for j, k := range row {
			cuts[k] = math.Max(cuts[k], math.Min(rd[i], cd[j]))
		}
	}

	xs := e.refineUniverse(cuts)
	ys := make([]float64, len(xs))
	for k, cut := range cuts {
		for n, x := range xs {
			ys[n] = math.Max(ys[n], math.Min(cut, interp(e.universe, e.samples[k], x)))
		}
	}

	return centroid(xs, ys)
}

// refineUniverse は各出力Termが切断レベルと交わる点をサンプル点に加え、昇順・重複なしで返します。
func (e *Engine) refineUniverse(cuts []float64) []float64 {
	seen := make(map[float64]struct{}, len(e.universe)+2*len(cuts))
	xs := make([]float64, 0, len(e.universe)+2*len(cuts))
	add := func(x float64) {
		if _, ok := seen[x]; ok {
			return
		}
		seen[x] = struct{}{}
		xs = append(xs, x)
	}
	for _, x := range e.universe {
		add(x)
	}
	for k, y := range cuts {
		if y == 0 {
			continue
		}
		mf := e.samples[k]
		for i := 0; i+1 < len(mf); i++ {
			if (mf[i] >= y) != (mf[i+1] >= y) {
				x0, x1 := e.universe[i], e.universe[i+1]
				add(x0 + (y-mf[i])*(x1-x0)/(mf[i+1]-mf[i]))
			}
		}
	}
	sort.Float64s(xs)
	return xs
}

// interp は(xp, fp)の折れ線上でxの値を線形補間します。範囲外は端の値になります。
func interp(xp, fp []float64, x float64) float64 {
	if x <= xp[0] {
		return fp[0]
	}
	last := len(xp) - 1
	if x >= xp[last] {
		return fp[last]
	}
	i := sort.SearchFloat64s(xp, x)
	if xp[i] == x {
		return fp[i]
	}
	x0, x1 := xp[i-1], xp[i]
	return fp[i-1] + (x-x0)*(fp[i]-fp[i-1])/(x1-x0)
}

// centroid は折れ線で表された集合の重心（面積中心）を区間ごとの台形モーメントから求めます。
func centroid(xs, ys []float64) (float64, error) {
	var moment, area float64
	for i := 1; i < len(xs); i++ {
		x1, x2 := xs[i-1], xs[i]
		y1, y2 := ys[i-1], ys[i]
		if (y1 == 0 && y2 == 0) || x1 == x2 {
			continue
		}
		var m, a float64
		switch {
		case y1 == y2:
			m = 0.5 * (x1 + x2)
			a = (x2 - x1) * y1
		case y1 == 0:
			m = 2.0/3.0*(x2-x1) + x1
			a = 0.5 * (x2 - x1) * y2
		case y2 == 0:
			m = 1.0/3.0*(x2-x1) + x1
			a = 0.5 * (x2 - x1) * y1
		default:
			m = (2.0/3.0*(x2-x1)*(y2+0.5*y1))/(y1+y2) + x1
			a = 0.5 * (x2 - x1) * (y1 + y2)
		}
		moment += m * a
		area += a
	}
	if area == 0 {
		return 0, ErrDegenerateOutput
	}
	return moment / area, nil
}
