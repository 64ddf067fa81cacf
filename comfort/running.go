package comfort

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// CEN 15251 の指数移動平均の係数
const cenAlpha = 0.8

// 前日から7日前までの重み（CEN 15251 の初期値に用いる）
var cenInitialWeights = []float64{1.0, 0.8, 0.6, 0.5, 0.4, 0.3, 0.2}

// 日 d の i 日前の日平均外気温度（年の初めは年末に折り返す）
func daysBefore(dailyMeans []float64, d, i int) float64 {
	n := len(dailyMeans)
	return dailyMeans[((d-i)%n+n)%n]
}

/*
ASHRAE 55 用の外気温度の移動平均を求める。

	Args:
		dailyMeans: 日平均外気温度, degree C, [365 or 366]

	Returns:
		日ごとの移動平均, degree C, [365 or 366]

	Notes:
		前日から7日前までの単純平均とする。年の初めは年末の値を用いる。
*/
func ASH55RunningMean(dailyMeans []float64) []float64 {
	out := make([]float64, len(dailyMeans))
	window := make([]float64, 7)
	for d := range dailyMeans {
		for i := range window {
			window[i] = daysBefore(dailyMeans, d, i+1)
		}
		out[d] = stat.Mean(window, nil)
	}
	return out
}

/*
CEN 15251 用の外気温度の移動平均を求める。

	Args:
		dailyMeans: 日平均外気温度, degree C, [365 or 366]

	Returns:
		日ごとの移動平均, degree C, [365 or 366]

	Notes:
		Trm(d) = (1 - α) Tod(d-1) + α Trm(d-1), α = 0.8
		初日は前日から7日前までの重み付き平均とする。
*/
func CEN15251RunningMean(dailyMeans []float64) []float64 {
	out := make([]float64, len(dailyMeans))
	if len(dailyMeans) == 0 {
		return out
	}

	window := make([]float64, len(cenInitialWeights))
	for i := range window {
		window[i] = daysBefore(dailyMeans, 0, i+1)
	}
	out[0] = floats.Dot(window, cenInitialWeights) / floats.Sum(cenInitialWeights)

	for d := 1; d < len(dailyMeans); d++ {
		out[d] = (1.0-cenAlpha)*dailyMeans[d-1] + cenAlpha*out[d-1]
	}
	return out
}
