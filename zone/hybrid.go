package zone

import (
	"math"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/stat"

	"zone_heat_balance/internal/recurring"
)

// HybridStats は実測温度から推定した熱容量倍率の集計
type HybridStats struct {
	Sum    float64   // 倍率の合計
	Count  int       // 集計した回数
	Avg    float64   // 倍率の平均
	values []float64 // 集計した倍率
}

// Reset は集計を初期化する。
func (s *HybridStats) Reset() {
	*s = HybridStats{}
}

// StdDev は集計した倍率の標準偏差を返す。2回未満の場合は 0。
func (s *HybridStats) StdDev() float64 {
	if len(s.values) < 2 {
		return 0.0
	}
	return stat.StdDev(s.values, nil)
}

/*
熱容量倍率を範囲内に制限し、集計する。

	Args:
		mult: 推定した熱容量倍率, -
		stats: 集計
		tr: 上限超過の警告

	Returns:
		制限後の熱容量倍率, -

	Notes:
		下限（1.0）以下は警告を出さずに 1.0 とし、集計に含めない。
		上限（30.0）を超える値はそのまま集計に含め、警告を出す（初回のみ詳細）。
*/
func ProcessInverseModelMultpHM(mult float64, stats *HybridStats, tr *recurring.Tracker) float64 {
	if mult <= hybridMultiplierMin {
		return hybridMultiplierMin
	}

	stats.values = append(stats.values, mult)
	stats.Sum += mult
	stats.Count++
	stats.Avg = stats.Sum / float64(stats.Count)

	if mult > hybridMultiplierMax {
		if tr == nil || tr.RecordOccurrence() {
			log.Warn().
				Float64("multiplier", mult).
				Float64("max", hybridMultiplierMax).
				Msg("Hybrid model thermal mass multiplier above expected range")
		}
	}
	return mult
}

/*
実測室温から熱容量倍率を逆算する。

	Args:
		measured: 実測室温, degree C
		h: 室温の履歴, degree C
		dep: 室温に比例する項の係数, W/K
		ind: 室温に依存しない項, W
		airCapNominal: 倍率 1 の空気の熱容量, J/K
		dtSec: 時間間隔, s

	Returns:
		熱容量倍率, -（求められない場合は 1.0）

	Notes:
		3次後退差分の熱収支式を熱容量について解く。
		実測室温の変化が 0.05 K 以下の場合は求めない。
*/
func InverseModelMultiplier(measured float64, h History, dep, ind, airCapNominal, dtSec float64) float64 {
	if math.Abs(measured-h[0]) <= hybridMinTempChange {
		return hybridMultiplierMin
	}
	denom := 11.0/6.0*measured - thirdOrderHistory(h)
	if denom == 0.0 || airCapNominal <= 0.0 {
		return hybridMultiplierMin
	}

	// 空気の熱容量を時間間隔で除した値, W/K
	c := (ind - dep*measured) / denom

	return c / airCapNominal * dtSec
}
