package zone

import (
	"math"
)

// 絶対湿度の下限, kg/kg(DA)
const minHumRat = 1.0e-5

/*
飽和水蒸気圧を計算する。

	Args:
		theta: 空気温度, degree C

	Returns:
		飽和水蒸気圧, Pa

	Notes:
		Wexler-Hyland の式
*/
func PsyPsatFnTemp(theta float64) float64 {
	// 絶対温度の計算
	t := theta + 273.15

	const a1 = -6096.9385
	const a2 = 21.2409642
	const a3 = -0.02711193
	const a4 = 0.00001673952
	const a5 = 2.433502
	const b1 = -6024.5282
	const b2 = 29.32707
	const b3 = 0.010613863
	const b4 = -0.000013198825
	const b5 = -0.49382577

	if theta >= 0.0 {
		return math.Exp(a1/t + a2 + a3*t + a4*t*t + a5*math.Log(t))
	}
	return math.Exp(b1/t + b2 + b3*t + b4*t*t + b5*math.Log(t))
}

/*
相対湿度から絶対湿度を計算する。

	Args:
		tdb: 乾球温度, degree C
		rh: 相対湿度, -（0～1）
		pb: 大気圧, Pa

	Returns:
		絶対湿度, kg/kg(DA)
*/
func PsyWFnTdbRhPb(tdb, rh, pb float64) float64 {
	pv := rh * PsyPsatFnTemp(tdb)
	w := 0.62198 * pv / math.Max(pb-pv, 1.0e-3)
	return math.Max(w, minHumRat)
}

/*
絶対湿度から相対湿度を計算する。

	Args:
		tdb: 乾球温度, degree C
		w: 絶対湿度, kg/kg(DA)
		pb: 大気圧, Pa

	Returns:
		相対湿度, -（0～1）
*/
func PsyRhFnTdbWPb(tdb, w, pb float64) float64 {
	pv := pb * w / (w + 0.62198)
	return math.Min(math.Max(pv/PsyPsatFnTemp(tdb), 0.0), 1.0)
}

/*
湿り空気の密度を計算する。

	Args:
		pb: 大気圧, Pa
		tdb: 乾球温度, degree C
		w: 絶対湿度, kg/kg(DA)

	Returns:
		密度, kg/m3
*/
func PsyRhoAirFnPbTdbW(pb, tdb, w float64) float64 {
	return pb / (gasConstantDryAir() * (tdb + 273.15) * (1.0 + 1.6077687*math.Max(w, minHumRat)))
}

/*
湿り空気の比熱を計算する。

	Args:
		w: 絶対湿度, kg/kg(DA)

	Returns:
		比熱, J/(kg K)
*/
func PsyCpAirFnW(w float64) float64 {
	return cpDryAir() + math.Max(w, minHumRat)*cpVapor()
}

/*
水蒸気の比エンタルピー（蒸発潜熱）を計算する。

	Args:
		w: 絶対湿度, kg/kg(DA)（使用しない）
		tdb: 乾球温度, degree C

	Returns:
		比エンタルピー, J/kg
*/
func PsyHgAirFnWTdb(_ float64, tdb float64) float64 {
	return latentHeat0() + cpVapor()*tdb
}
