package fluid

import (
	"math"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"

	"zone_heat_balance/internal/recurring"
)

// 補間の分母として許容する最小の温度差, degree C
const minInterpSpan = 0.001

/*
昇順配列 arr の中で value を挟む区間の下側の添字を求める。

	Args:
		value: 探索する値
		arr: 昇順の配列

	Returns:
		arr[i] <= value < arr[i+1] を満たす i, [0, len(arr)-2]

	Notes:
		value が配列の範囲外の場合は端の区間の添字を返す（範囲外は端の区間から線形外挿する）。
*/
func FindArrayIndex(value float64, arr []float64) int {
	return FindArrayIndexBounded(value, arr, 0, len(arr)-1)
}

/*
添字 low から up までの部分配列に限定して FindArrayIndex を行う。

	Args:
		value: 探索する値
		arr: 昇順の配列
		low: 探索範囲の下限の添字
		up: 探索範囲の上限の添字

	Returns:
		[low, up-1] の範囲の添字
*/
func FindArrayIndexBounded(value float64, arr []float64, low, up int) int {
	if up <= low {
		return low
	}
	if value < arr[low] {
		return low
	}
	if value >= arr[up] {
		return up - 1
	}

	l, u := low, up
	for u-l > 1 {
		m := (l + u) / 2
		if value >= arr[m] {
			l = m
		} else {
			u = m
		}
	}
	return l
}

/*
2点間の線形補間を行う。

	Args:
		tact: 補間する位置
		tlo: 下側の格子点
		thi: 上側の格子点
		xlo: tlo における値
		xhi: thi における値
		tr: 格子点が近接しすぎている場合の警告の集計先（nil の場合は毎回出力する）

	Returns:
		補間値

	Notes:
		|thi - tlo| <= 0.001 の場合は0除算を避けるため警告を1回記録して 0.0 を返す。
*/
func GetInterpValue(tact, tlo, thi, xlo, xhi float64, tr *recurring.Tracker) float64 {
	if math.Abs(thi-tlo) <= minInterpSpan {
		if tr == nil || tr.RecordOccurrence() {
			log.Warn().
				Float64("t_lo", tlo).
				Float64("t_hi", thi).
				Msg("Interpolation grid points too close together; returning 0")
		}
		return 0.0
	}
	return GetInterpValueFast(tact, tlo, thi, xlo, xhi)
}

// GetInterpValueFast は格子点間隔の確認を省略した GetInterpValue
func GetInterpValueFast(tact, tlo, thi, xlo, xhi float64) float64 {
	return xhi - ((thi-tact)/(thi-tlo))*(xhi-xlo)
}

/*
飽和域の物性値を乾き度で重み付けして求める。

	Args:
		t: 温度, degree C
		temps: 温度の配列, degree C, [n]
		liq: 飽和液の物性値, [n]
		vap: 飽和蒸気の物性値, [n]
		quality: 乾き度, -
		b: 有効範囲
		tr: 格子点が近接しすぎている場合の警告の集計先

	Returns:
		物性値
		温度が有効範囲に対してどこにあるか
*/
func GetInterpolatedSatProp(t float64, temps, liq, vap []float64, quality float64, b Bounds, tr *recurring.Tracker) (float64, RangeStatus) {
	i := FindArrayIndexBounded(t, temps, b.LowIndex, b.HighIndex)

	l := GetInterpValue(t, temps[i], temps[i+1], liq[i], liq[i+1], tr)
	v := GetInterpValue(t, temps[i], temps[i+1], vap[i], vap[i+1], tr)

	return l + quality*(v-l), b.Status(t)
}

/*
2次元の表を双線形補間する。

	Args:
		x: 列方向の値
		y: 行方向の値
		xs: 列方向の格子, [nx]
		ys: 行方向の格子, [ny]
		grid: 表, [ny, nx]

	Returns:
		補間値
		補間に用いる4点がすべて存在したか否か

	Notes:
		先に列方向に補間し、その2つの結果を行方向に補間する。
*/
func bilinear(x, y float64, xs, ys []float64, grid *mat.Dense) (float64, bool) {
	ix := FindArrayIndex(x, xs)
	iy := FindArrayIndex(y, ys)

	z00 := grid.At(iy, ix)
	z01 := grid.At(iy, ix+1)
	z10 := grid.At(iy+1, ix)
	z11 := grid.At(iy+1, ix+1)
	if math.IsNaN(z00) || math.IsNaN(z01) || math.IsNaN(z10) || math.IsNaN(z11) {
		return 0.0, false
	}

	lo := GetInterpValueFast(x, xs[ix], xs[ix+1], z00, z01)
	hi := GetInterpValueFast(x, xs[ix], xs[ix+1], z10, z11)

	return GetInterpValueFast(y, ys[iy], ys[iy+1], lo, hi), true
}
