package zone

import (
	"math"
)

// CorrectAirTemp は空調系統の供給熱量が確定した後の室温を求める。
func CorrectAirTemp(integ Integrator, h History, airCap, dep, ind float64) float64 {
	return integ.Solve(h, airCap, dep, ind)
}

/*
空調系統の給気が確定した後の絶対湿度を求める。

	Args:
		integ: 時間積分の方法
		h: 絶対湿度の履歴, kg/kg(DA)
		moistCap: 空気の質量を時間間隔で除した値, kg/s
		a: 絶対湿度に比例する項の係数, kg/s
		b: 絶対湿度に依存しない項, kg/s
		temp: 室温, degree C
		pb: 大気圧, Pa

	Returns:
		絶対湿度, kg/kg(DA)

	Notes:
		0 と室温における飽和絶対湿度の間に制限する。
*/
func CorrectHumRat(integ Integrator, h History, moistCap, a, b, temp, pb float64) float64 {
	w := integ.Solve(h, moistCap, a, b)
	return math.Min(math.Max(w, 0.0), PsyWFnTdbRhPb(temp, 1.0, pb))
}

/*
空気の熱収支の残差を求める。

	Args:
		zt: 室温, degree C
		zt1: 1ステップ前の室温, degree C
		airCap: 空気の熱容量を時間間隔で除した値, W/K
		dep: 室温に比例する項の係数, W/K
		ind: 室温に依存しない項, W

	Returns:
		残差, W（流入熱量 - 蓄熱量）
*/
func HeatBalanceError(zt, zt1, airCap, dep, ind float64) float64 {
	return ind - dep*zt - airCap*(zt-zt1)
}
