package fluid

import (
	"math"
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"zone_heat_balance/internal/recurring"
)

// 範囲判定の結果
type RangeStatus int

const (
	InRange    RangeStatus = iota // 有効範囲内
	BelowRange                    // 下限未満
	AboveRange                    // 上限超過
)

func (s RangeStatus) String() string {
	switch s {
	case BelowRange:
		return "below range"
	case AboveRange:
		return "above range"
	default:
		return "in range"
	}
}

/*
Bounds は表の有効範囲（値が存在する区間）を保持する。

	Notes:
		境界での二分探索を毎回行わないよう、添字と温度を読み込み時に求めておく。
*/
type Bounds struct {
	LowIndex  int     // 有効範囲の下端の添字
	HighIndex int     // 有効範囲の上端の添字
	LowValue  float64 // 有効範囲の下端の値
	HighValue float64 // 有効範囲の上端の値
}

// Status は x が有効範囲に対してどこにあるかを返す。
func (b Bounds) Status(x float64) RangeStatus {
	switch {
	case x < b.LowValue:
		return BelowRange
	case x > b.HighValue:
		return AboveRange
	default:
		return InRange
	}
}

/*
有効範囲を求める。

	Args:
		xs: 昇順の格子, [n]
		present: 添字ごとに値が存在するか否か, [n]

	Returns:
		有効範囲

	Notes:
		値の欠損は両端のみ許容し、途中の欠損はエラーとする。
		補間には少なくとも2点が必要。
*/
func computeBounds(xs []float64, present func(i int) bool) (Bounds, error) {
	lo, hi := -1, -1
	for i := range xs {
		if !present(i) {
			continue
		}
		if lo < 0 {
			lo = i
		} else if hi != i-1 {
			return Bounds{}, errors.Errorf("missing value inside table at %g", xs[i-1])
		}
		hi = i
	}
	if lo < 0 || hi-lo < 1 {
		return Bounds{}, errors.New("table needs at least two values")
	}
	return Bounds{LowIndex: lo, HighIndex: hi, LowValue: xs[lo], HighValue: xs[hi]}, nil
}

// 格子が狭義単調増加であることを確かめる。
func validateAxis(xs []float64) error {
	if len(xs) < 2 {
		return errors.New("axis needs at least two points")
	}
	if floats.HasNaN(xs) {
		return errors.New("axis contains an empty value")
	}
	if !sort.Float64sAreSorted(xs) {
		return errors.New("axis is not ascending")
	}
	for i := 1; i < len(xs); i++ {
		if xs[i]-xs[i-1] <= minInterpSpan {
			return errors.Errorf("axis points %g and %g are too close", xs[i-1], xs[i])
		}
	}
	return nil
}

func isPresent(v float64) bool {
	return !math.IsNaN(v)
}

/*
Table1D は温度に対する1次元の物性値表

	Notes:
		Values の欠損（NaN）は「値が与えられていない」ことを表す。
*/
type Table1D struct {
	Temps  []float64 // 温度, degree C, [n]
	Values []float64 // 物性値, [n]
	Bounds Bounds    // 有効範囲
}

func NewTable1D(temps, values []float64) (*Table1D, error) {
	if len(temps) != len(values) {
		return nil, errors.Errorf("table has %d temperatures and %d values", len(temps), len(values))
	}
	if err := validateAxis(temps); err != nil {
		return nil, err
	}
	b, err := computeBounds(temps, func(i int) bool { return isPresent(values[i]) })
	if err != nil {
		return nil, err
	}
	return &Table1D{Temps: temps, Values: values, Bounds: b}, nil
}

/*
温度 t における値を求める。

	Returns:
		補間値（範囲外は端の区間から外挿した値）
		範囲判定の結果
*/
func (tb *Table1D) Lookup(t float64, tr *recurring.Tracker) (float64, RangeStatus) {
	i := FindArrayIndexBounded(t, tb.Temps, tb.Bounds.LowIndex, tb.Bounds.HighIndex)
	v := GetInterpValue(t, tb.Temps[i], tb.Temps[i+1], tb.Values[i], tb.Values[i+1], tr)
	return v, tb.Bounds.Status(t)
}

/*
値 v を与える温度を求める（逆引き）。

	Notes:
		有効範囲内の値が単調増加である表に限る。
*/
func (tb *Table1D) Inverse(v float64, tr *recurring.Tracker) (float64, RangeStatus) {
	b := tb.Bounds
	i := FindArrayIndexBounded(v, tb.Values, b.LowIndex, b.HighIndex)
	t := GetInterpValue(v, tb.Values[i], tb.Values[i+1], tb.Temps[i], tb.Temps[i+1], tr)

	status := InRange
	if v < tb.Values[b.LowIndex] {
		status = BelowRange
	} else if v > tb.Values[b.HighIndex] {
		status = AboveRange
	}
	return t, status
}

func (tb *Table1D) ascendingValues() bool {
	return sort.Float64sAreSorted(tb.Values[tb.Bounds.LowIndex : tb.Bounds.HighIndex+1])
}

// SatTable は飽和液・飽和蒸気の物性値の組
type SatTable struct {
	Temps  []float64 // 温度, degree C, [n]
	Liquid []float64 // 飽和液の物性値, [n]
	Vapor  []float64 // 飽和蒸気の物性値, [n]
	Bounds Bounds    // 液・蒸気の両方が存在する範囲
}

func NewSatTable(temps, liquid, vapor []float64) (*SatTable, error) {
	if len(temps) != len(liquid) || len(temps) != len(vapor) {
		return nil, errors.New("saturated table columns differ in length")
	}
	if err := validateAxis(temps); err != nil {
		return nil, err
	}
	b, err := computeBounds(temps, func(i int) bool {
		return isPresent(liquid[i]) && isPresent(vapor[i])
	})
	if err != nil {
		return nil, err
	}
	return &SatTable{Temps: temps, Liquid: liquid, Vapor: vapor, Bounds: b}, nil
}

// Lookup は乾き度 quality における飽和域の物性値を求める。
func (st *SatTable) Lookup(t, quality float64, tr *recurring.Tracker) (float64, RangeStatus) {
	return GetInterpolatedSatProp(t, st.Temps, st.Liquid, st.Vapor, quality, st.Bounds, tr)
}

// VaporAt は飽和蒸気の物性値を求める。
func (st *SatTable) VaporAt(t float64) float64 {
	v, _ := st.Lookup(t, 1.0, nil)
	return v
}
