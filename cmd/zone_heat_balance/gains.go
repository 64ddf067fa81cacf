package main

import (
	"math"

	"zone_heat_balance/internal/config"
)

// 1人あたりの人体発熱（顕熱と潜熱の合計）, W
const occupantTotalHeat = 119.0

/*
1人あたりの人体発熱の顕熱分と潜熱分を求める。

	Args:
		zoneTemp: 室温, degree C

	Returns:
		sensible: 1人あたりの人体顕熱, W
		latent: 1人あたりの人体潜熱, W
*/
func occupantHeat(zoneTemp float64) (sensible, latent float64) {
	sensible = math.Min(63.0-4.0*(zoneTemp-24.0), occupantTotalHeat)
	sensible = math.Max(sensible, 0.0)
	return sensible, occupantTotalHeat - sensible
}

// 換気回数の係数 a, 1/(h (cm2/m2) K^0.5)
func airtightnessA(story int) float64 {
	if story <= 1 {
		return 0.022
	}
	return 0.020
}

// 換気回数の係数 b, 1/h
func airtightnessB(story int, pressure string) float64 {
	one := story <= 1
	switch pressure {
	case config.InsidePressurePositive:
		if one {
			return 0.26
		}
		return 0.14
	case config.InsidePressureNegative:
		if one {
			return 0.28
		}
		return 0.13
	default:
		return 0.0
	}
}

/*
相当隙間面積から隙間風の換気回数を求める。

	Args:
		at: 気密性能
		zoneTemp: 室温, degree C
		outdoorTemp: 外気温度, degree C

	Returns:
		換気回数, 1/h

	Notes:
		住宅を1つの空間とみなして圧力バランスを解いた近似式による。
*/
func infiltrationACH(at *config.AirtightnessConfig, zoneTemp, outdoorTemp float64) float64 {
	dt := math.Abs(zoneTemp - outdoorTemp)
	ach := airtightnessA(at.Story)*at.CValue*math.Sqrt(dt) - airtightnessB(at.Story, at.InsidePressure)
	return math.Max(ach, 0.0)
}
