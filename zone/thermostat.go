package zone

import (
	"math"

	"github.com/rs/zerolog/log"

	"zone_heat_balance/comfort"
)

// 温度制御の種類
type ControlType int

const (
	Uncontrolled         ControlType = iota // 制御なし
	SingleHeating                           // 暖房のみ（単一設定温度）
	SingleCooling                           // 冷房のみ（単一設定温度）
	SingleHeatCool                          // 冷暖房（単一設定温度）
	DualSetpointDeadband                    // 冷暖房（暖房・冷房の2つの設定温度、不感帯あり）
)

func (c ControlType) String() string {
	switch c {
	case SingleHeating:
		return "single_heating"
	case SingleCooling:
		return "single_cooling"
	case SingleHeatCool:
		return "single_heat_cool"
	case DualSetpointDeadband:
		return "dual_setpoint_deadband"
	default:
		return "uncontrolled"
	}
}

/*
制御種類のスケジュール値を解釈する。

	Args:
		v: スケジュール値（0～4）

	Returns:
		制御の種類

	Notes:
		0～4 の整数以外は警告を出さずに Uncontrolled とする。
*/
func DecodeControlType(v float64) ControlType {
	if v != math.Trunc(v) || v < 0 || v > float64(DualSetpointDeadband) {
		log.Debug().Float64("value", v).Msg("Unmapped control type schedule value treated as uncontrolled")
		return Uncontrolled
	}
	return ControlType(v)
}

// 設定温度を決めた層
type SetpointSource int

const (
	FromSchedule SetpointSource = iota // スケジュール
	FromCutout                         // オンオフ制御の動作すきまで補正したスケジュール
	FromAdaptive                       // 適応型快適温度
	FromEMS                            // EMS による上書き
)

// SetpointSchedules は制御種類と各設定温度のスケジュールの現在値
type SetpointSchedules struct {
	ControlType    float64 // 制御種類のスケジュール値
	SingleHeating  float64 // 暖房のみの設定温度, degree C
	SingleCooling  float64 // 冷房のみの設定温度, degree C
	SingleHeatCool float64 // 冷暖房の単一設定温度, degree C
	DualHeating    float64 // 2設定温度の暖房設定温度, degree C
	DualCooling    float64 // 2設定温度の冷房設定温度, degree C
}

// ResolvedSetpoints は各層を適用した後の有効な設定温度
type ResolvedSetpoints struct {
	ControlType   ControlType
	Heating       float64 // 暖房設定温度, degree C
	Cooling       float64 // 冷房設定温度, degree C
	HeatingSource SetpointSource
	CoolingSource SetpointSource
}

// ResolveContext は全ゾーンで共通の設定温度の決定に用いる情報
type ResolveContext struct {
	Adaptive      *comfort.AdaptiveComfortDailySchedule
	DayOfYear     int  // 通日（1始まり）
	DesignDay     bool // 設計日の計算か否か
	UseSavedModes bool // オンオフ制御の判定に前回確定時の運転状態を用いるか否か
}

/*
Thermostat はゾーンの設定温度の状態

	Notes:
		設定温度は スケジュール → 適応型快適温度 → EMS → オンオフ制御の順に決め、
		優先順位は EMS > 適応型快適温度 > オンオフ制御 > スケジュール とする。
		オンオフ制御の動作すきまはスケジュールから決まった設定温度のみを補正する。
		運転状態は Resolve で求めて保留し、Commit で確定する。
*/
type Thermostat struct {
	CutoutDeltaT  float64       // オンオフ制御の動作すきま, K
	AdaptiveModel comfort.Model // 適応型快適温度のモデル

	EMSHeatingOverride bool    // EMS による暖房設定温度の上書きの有無
	EMSHeatingValue    float64 // EMS による暖房設定温度, degree C
	EMSCoolingOverride bool    // EMS による冷房設定温度の上書きの有無
	EMSCoolingValue    float64 // EMS による冷房設定温度, degree C

	heatModeLast     bool // 直近に確定した暖房運転状態
	coolModeLast     bool // 直近に確定した冷房運転状態
	heatModeLastSave bool // その1つ前に確定した暖房運転状態
	coolModeLastSave bool // その1つ前に確定した冷房運転状態

	pendingHeat bool
	pendingCool bool
}

/*
有効な設定温度を決める。

	Args:
		sch: スケジュールの現在値
		prevTemp: 1ステップ前の室温, degree C
		rc: 全ゾーンで共通の情報

	Returns:
		有効な設定温度

	Notes:
		同じ入力に対しては何度呼んでも同じ結果を返す（運転状態の確定は Commit で行う）。
*/
func (t *Thermostat) Resolve(sch SetpointSchedules, prevTemp float64, rc ResolveContext) ResolvedSetpoints {
	ct := DecodeControlType(sch.ControlType)
	r := ResolvedSetpoints{ControlType: ct}

	switch ct {
	case SingleHeating:
		r.Heating, r.Cooling = sch.SingleHeating, sch.SingleHeating
	case SingleCooling:
		r.Heating, r.Cooling = sch.SingleCooling, sch.SingleCooling
	case SingleHeatCool:
		r.Heating, r.Cooling = sch.SingleHeatCool, sch.SingleHeatCool
	case DualSetpointDeadband:
		r.Heating, r.Cooling = sch.DualHeating, sch.DualCooling
	default:
		t.pendingHeat, t.pendingCool = false, false
		return r
	}

	// 適応型快適温度
	if t.AdaptiveModel != comfort.None && rc.Adaptive != nil && ct != SingleHeating {
		if v := rc.Adaptive.Value(t.AdaptiveModel, rc.DayOfYear, rc.DesignDay); v != comfort.NotApplicable {
			r.Cooling, r.CoolingSource = v, FromAdaptive
			if ct != DualSetpointDeadband {
				r.Heating, r.HeatingSource = v, FromAdaptive
			}
		}
	}

	// EMS
	if t.EMSHeatingOverride && ct != SingleCooling {
		r.Heating, r.HeatingSource = t.EMSHeatingValue, FromEMS
		if ct == SingleHeating || ct == SingleHeatCool {
			r.Cooling, r.CoolingSource = t.EMSHeatingValue, FromEMS
		}
	}
	if t.EMSCoolingOverride && ct != SingleHeating {
		r.Cooling, r.CoolingSource = t.EMSCoolingValue, FromEMS
		if ct == SingleCooling || ct == SingleHeatCool {
			r.Heating, r.HeatingSource = t.EMSCoolingValue, FromEMS
		}
	}

	// オンオフ制御
	t.pendingHeat, t.pendingCool = false, false
	if t.CutoutDeltaT <= 0.0 {
		return r
	}

	lastHeat, lastCool := t.heatModeLast, t.coolModeLast
	if rc.UseSavedModes {
		lastHeat, lastCool = t.heatModeLastSave, t.coolModeLastSave
	}

	if ct != SingleCooling {
		t.pendingHeat = heatingOn(prevTemp, r.Heating, t.CutoutDeltaT, lastHeat)
	}
	if ct != SingleHeating {
		t.pendingCool = coolingOn(prevTemp, r.Cooling, t.CutoutDeltaT, lastCool)
	}
	if t.pendingHeat && t.pendingCool {
		// 単一設定温度で室温が設定温度に一致する場合は直前の状態を維持する
		t.pendingHeat, t.pendingCool = lastHeat && !lastCool, lastCool && !lastHeat
	}

	if t.pendingHeat && r.HeatingSource == FromSchedule {
		r.Heating += t.CutoutDeltaT
		r.HeatingSource = FromCutout
	}
	if t.pendingCool && r.CoolingSource == FromSchedule {
		r.Cooling -= t.CutoutDeltaT
		r.CoolingSource = FromCutout
	}
	switch {
	case ct == SingleHeating, ct == SingleHeatCool && t.pendingHeat:
		r.Cooling, r.CoolingSource = r.Heating, r.HeatingSource
	case ct == SingleCooling, ct == SingleHeatCool && t.pendingCool:
		r.Heating, r.HeatingSource = r.Cooling, r.CoolingSource
	}
	return r
}

/*
暖房の運転状態を判定する。

	Notes:
		室温が設定温度以下で運転し、設定温度＋動作すきま以上で停止する。
		その間は直前の状態を維持する。
*/
func heatingOn(temp, setpoint, delta float64, last bool) bool {
	switch {
	case temp <= setpoint:
		return true
	case temp >= setpoint+delta:
		return false
	default:
		return last
	}
}

// 冷房の運転状態を判定する。室温が設定温度以上で運転し、設定温度－動作すきま以下で停止する。
func coolingOn(temp, setpoint, delta float64, last bool) bool {
	switch {
	case temp >= setpoint:
		return true
	case temp <= setpoint-delta:
		return false
	default:
		return last
	}
}

// Commit は Resolve で求めた運転状態を確定する（1ステップに1回）。
func (t *Thermostat) Commit() {
	t.heatModeLastSave, t.coolModeLastSave = t.heatModeLast, t.coolModeLast
	t.heatModeLast, t.coolModeLast = t.pendingHeat, t.pendingCool
}

// Modes は直近に確定した運転状態と、その1つ前に確定した運転状態を返す。
func (t *Thermostat) Modes() (heat, cool, heatSave, coolSave bool) {
	return t.heatModeLast, t.coolModeLast, t.heatModeLastSave, t.coolModeLastSave
}

// ResetModes は運転状態を初期化する。
func (t *Thermostat) ResetModes() {
	t.heatModeLast, t.coolModeLast = false, false
	t.heatModeLastSave, t.coolModeLastSave = false, false
	t.pendingHeat, t.pendingCool = false, false
}
