package zone

import (
	"github.com/rs/zerolog/log"

	"zone_heat_balance/internal/recurring"
)

// SensibleLoads は設定温度にするために必要な顕熱負荷（1ゾーン分）
type SensibleLoads struct {
	TotalOutputRequired       float64 // 必要な供給熱量, W（正: 暖房, 負: 冷房）
	OutputRequiredToHeatingSP float64 // 暖房設定温度にするための供給熱量, W
	OutputRequiredToCoolingSP float64 // 冷房設定温度にするための供給熱量, W
	DeadBandOrSetback         bool    // 不感帯（またはセットバック）にあるか否か
}

// MoistureLoads は設定湿度にするために必要な水分負荷（1ゾーン分）
type MoistureLoads struct {
	TotalOutputRequired             float64 // 必要な供給水分量, kg/s（正: 加湿, 負: 除湿）
	OutputRequiredToHumidifyingSP   float64 // 加湿設定湿度にするための供給水分量, kg/s
	OutputRequiredToDehumidifyingSP float64 // 除湿設定湿度にするための供給水分量, kg/s
}

// HumidistatSetpoints は湿度設定のスケジュールの現在値
type HumidistatSetpoints struct {
	Enabled         bool    // 湿度制御の有無
	HumidifyingRH   float64 // 加湿設定相対湿度, %
	DehumidifyingRH float64 // 除湿設定相対湿度, %
}

// 1ゾーン分の負荷と乗数を掛けた負荷
type LoadReport struct {
	SingleTotal   float64
	SingleHeating float64 // 暖房（加湿）設定への負荷
	SingleCooling float64 // 冷房（除湿）設定への負荷
	Total         float64
	Heating       float64
	Cooling       float64
}

// 暖房・冷房の2つの負荷から有効な負荷を選ぶときの判定結果
type loadChoice int

const (
	chooseHeating loadChoice = iota
	chooseCooling
	chooseDeadBand
	chooseUnanticipated
)

func chooseLoad(heat, cool float64) loadChoice {
	switch {
	case heat > 0.0 && cool > 0.0:
		return chooseHeating
	case heat < 0.0 && cool < 0.0:
		return chooseCooling
	case heat <= 0.0 && cool >= 0.0:
		return chooseDeadBand
	default:
		return chooseUnanticipated
	}
}

/*
顕熱負荷を予測する。

	Args:
		integ: 時間積分の方法
		sp: 有効な設定温度
		h: 室温の履歴, degree C
		airCap: 空気の熱容量を時間間隔で除した値, W/K
		dep: 室温に比例する項の係数, W/K
		ind: 室温に依存しない項, W
		tr: 想定外の負荷の組み合わせの警告（nil の場合は常に出力する）

	Returns:
		1ゾーン分の顕熱負荷

	Notes:
		冷暖房の制御では暖房・冷房の設定温度それぞれに対する負荷を求め、
		両方が正なら暖房、両方が負なら冷房、その間なら不感帯とする。
		暖房の負荷が正かつ冷房の負荷が負（暖房設定温度が冷房設定温度より高い）場合は
		警告を出して不感帯として扱う。
		暖房のみ・冷房のみの制御で運転しない向きの負荷となる場合は TotalOutputRequired を 0、
		DeadBandOrSetback を true とし、負荷の値は OutputRequiredTo*SP にのみ残す。
*/
func PredictSensibleLoads(integ Integrator, sp ResolvedSetpoints, h History, airCap, dep, ind float64, tr *recurring.Tracker) SensibleLoads {
	var l SensibleLoads

	switch sp.ControlType {
	case SingleHeating:
		load := integ.LoadToSetpoint(sp.Heating, h, airCap, dep, ind)
		l.OutputRequiredToHeatingSP, l.OutputRequiredToCoolingSP = load, load
		if load <= 0.0 {
			l.DeadBandOrSetback = true
		} else {
			l.TotalOutputRequired = load
		}

	case SingleCooling:
		load := integ.LoadToSetpoint(sp.Cooling, h, airCap, dep, ind)
		l.OutputRequiredToHeatingSP, l.OutputRequiredToCoolingSP = load, load
		if load >= 0.0 {
			l.DeadBandOrSetback = true
		} else {
			l.TotalOutputRequired = load
		}

	case SingleHeatCool, DualSetpointDeadband:
		heat := integ.LoadToSetpoint(sp.Heating, h, airCap, dep, ind)
		cool := integ.LoadToSetpoint(sp.Cooling, h, airCap, dep, ind)
		l.OutputRequiredToHeatingSP, l.OutputRequiredToCoolingSP = heat, cool

		switch chooseLoad(heat, cool) {
		case chooseHeating:
			l.TotalOutputRequired = heat
		case chooseCooling:
			l.TotalOutputRequired = cool
		case chooseDeadBand:
			l.DeadBandOrSetback = true
		default:
			if tr == nil || tr.RecordOccurrence() {
				log.Warn().
					Str("control_type", sp.ControlType.String()).
					Float64("heating_setpoint", sp.Heating).
					Float64("cooling_setpoint", sp.Cooling).
					Float64("load_to_heating", heat).
					Float64("load_to_cooling", cool).
					Msg("Unanticipated combination of heating and cooling loads, treated as deadband")
			}
			l.DeadBandOrSetback = true
		}
	}
	return l
}

/*
水分負荷を予測する。

	Args:
		integ: 時間積分の方法
		wHum: 加湿設定湿度（絶対湿度）, kg/kg(DA)
		wDehum: 除湿設定湿度（絶対湿度）, kg/kg(DA)
		h: 絶対湿度の履歴, kg/kg(DA)
		moistCap: 空気の質量を時間間隔で除した値, kg/s
		a: 絶対湿度に比例する項の係数, kg/s
		b: 絶対湿度に依存しない項, kg/s
		tr: 想定外の負荷の組み合わせの警告

	Returns:
		1ゾーン分の水分負荷
*/
func PredictMoistureLoads(integ Integrator, wHum, wDehum float64, h History, moistCap, a, b float64, tr *recurring.Tracker) MoistureLoads {
	hum := integ.LoadToSetpoint(wHum, h, moistCap, a, b)
	dehum := integ.LoadToSetpoint(wDehum, h, moistCap, a, b)
	l := MoistureLoads{OutputRequiredToHumidifyingSP: hum, OutputRequiredToDehumidifyingSP: dehum}

	switch chooseLoad(hum, dehum) {
	case chooseHeating:
		l.TotalOutputRequired = hum
	case chooseCooling:
		l.TotalOutputRequired = dehum
	case chooseDeadBand:
	default:
		if tr == nil || tr.RecordOccurrence() {
			log.Warn().
				Float64("load_to_humidifying", hum).
				Float64("load_to_dehumidifying", dehum).
				Msg("Unanticipated combination of humidifying and dehumidifying loads")
		}
	}
	return l
}

/*
湿度設定（相対湿度）を絶対湿度に換算する。

	Args:
		hs: 湿度設定
		temp: 室温, degree C
		pb: 大気圧, Pa
		tr: 加湿設定が除湿設定を上回る場合の警告

	Returns:
		wHum: 加湿設定湿度, kg/kg(DA)
		wDehum: 除湿設定湿度, kg/kg(DA)

	Notes:
		加湿設定が除湿設定を上回る場合は加湿設定を除湿設定に合わせる。
*/
func humidistatHumRats(hs HumidistatSetpoints, temp, pb float64, tr *recurring.Tracker) (wHum, wDehum float64) {
	rhHum, rhDehum := hs.HumidifyingRH, hs.DehumidifyingRH
	if rhHum > rhDehum {
		if tr == nil || tr.RecordOccurrence() {
			log.Warn().
				Float64("humidifying_rh", rhHum).
				Float64("dehumidifying_rh", rhDehum).
				Msg("Humidifying setpoint above dehumidifying setpoint, humidifying setpoint reset to dehumidifying setpoint")
		}
		rhHum = rhDehum
	}
	return PsyWFnTdbRhPb(temp, rhHum/100.0, pb), PsyWFnTdbRhPb(temp, rhDehum/100.0, pb)
}

/*
顕熱負荷に乗数を掛けて報告用の値にする。

	Args:
		l: 1ゾーン分の顕熱負荷
		corrFactor: 負荷の補正係数, -
		mult: ゾーンの乗数
		listMult: ゾーンリストの乗数

	Returns:
		1ゾーン分の値と乗数を掛けた値

	Notes:
		次の計算に用いる1ゾーン分の負荷は変更しない。
*/
func ReportSensibleLoadsZoneMultiplier(l SensibleLoads, corrFactor float64, mult, listMult int) LoadReport {
	r := LoadReport{
		SingleTotal:   l.TotalOutputRequired * corrFactor,
		SingleHeating: l.OutputRequiredToHeatingSP * corrFactor,
		SingleCooling: l.OutputRequiredToCoolingSP * corrFactor,
	}
	return r.multiply(mult, listMult)
}

// ReportMoistLoadsZoneMultiplier は水分負荷に乗数を掛けて報告用の値にする。
func ReportMoistLoadsZoneMultiplier(l MoistureLoads, mult, listMult int) LoadReport {
	r := LoadReport{
		SingleTotal:   l.TotalOutputRequired,
		SingleHeating: l.OutputRequiredToHumidifyingSP,
		SingleCooling: l.OutputRequiredToDehumidifyingSP,
	}
	return r.multiply(mult, listMult)
}

func (r LoadReport) multiply(mult, listMult int) LoadReport {
	m := float64(mult * listMult)
	r.Total = r.SingleTotal * m
	r.Heating = r.SingleHeating * m
	r.Cooling = r.SingleCooling * m
	return r
}
