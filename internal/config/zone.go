package config

import (
	"fmt"

	"zone_heat_balance/comfort"
	"zone_heat_balance/schedule"
	"zone_heat_balance/zone"
)

const (
	defaultHeatingSP = 20.0
	defaultCoolingSP = 26.0
)

// 室内側の圧力
const (
	InsidePressurePositive = "positive" // 正圧
	InsidePressureNegative = "negative" // 負圧
	InsidePressureBalanced = "balanced" // ゼロバランス
)

// AirtightnessConfig は隙間風を求めるための気密性能
type AirtightnessConfig struct {
	CValue         float64 `yaml:"c_value"`         // 相当隙間面積, cm2/m2
	Story          int     `yaml:"story"`           // 階数（2以上は2階建てとして扱う）
	InsidePressure string  `yaml:"inside_pressure"` // positive, negative, balanced
}

// ThermostatConfig はゾーンの温度制御の設定
type ThermostatConfig struct {
	ControlType   int      `yaml:"control_type"`   // 0～4
	Heating       float64  `yaml:"heating"`        // 暖房設定温度, degree C
	Cooling       float64  `yaml:"cooling"`        // 冷房設定温度, degree C
	CutoutDeltaT  float64  `yaml:"cutout_delta_t"` // オンオフ制御の動作すきま, K
	AdaptiveModel string   `yaml:"adaptive_model,omitempty"`
	EMSHeating    *float64 `yaml:"ems_heating,omitempty"` // EMS による暖房設定温度, degree C
	EMSCooling    *float64 `yaml:"ems_cooling,omitempty"` // EMS による冷房設定温度, degree C
}

// HumidistatConfig はゾーンの湿度制御の設定
type HumidistatConfig struct {
	HumidifyingRH   float64 `yaml:"humidifying_rh"`   // %
	DehumidifyingRH float64 `yaml:"dehumidifying_rh"` // %
}

// IdealLoadsConfig は理想空調機の能力
type IdealLoadsConfig struct {
	HeatingCapacity float64 `yaml:"heating_capacity"` // W（0 は無制限）
	CoolingCapacity float64 `yaml:"cooling_capacity"` // W（0 は無制限）
}

// HydronicConfig は温水コイル
type HydronicConfig struct {
	Fluid      string  `yaml:"fluid"`       // 混合液の名前
	FlowRate   float64 `yaml:"flow_rate"`   // 体積流量, m3/s
	SupplyTemp float64 `yaml:"supply_temp"` // 往き温度, degree C
}

// SteamCoilConfig は蒸気コイル
type SteamCoilConfig struct {
	MassFlow float64 `yaml:"mass_flow"` // 蒸気の質量流量, kg/s
	Temp     float64 `yaml:"temp"`      // 飽和温度, degree C
}

// ZoneConfig はゾーンの設定
type ZoneConfig struct {
	Name               string   `yaml:"name"`
	Volume             float64  `yaml:"volume"` // m3
	Multiplier         int      `yaml:"multiplier"`
	ListMultiplier     int      `yaml:"list_multiplier"`
	CapMultiplier      float64  `yaml:"cap_multiplier"`
	MoistCapMultiplier float64  `yaml:"moist_cap_multiplier"`
	LoadCorrection     *float64 `yaml:"load_correction,omitempty"`
	EnvelopeUA         float64  `yaml:"envelope_ua"`      // 外皮の熱損失係数, W/K
	InfiltrationACH    float64  `yaml:"infiltration_ach"` // 換気回数, 1/h
	InternalGain       float64  `yaml:"internal_gain"`    // 対流成分の内部発熱, W
	LatentGain         float64  `yaml:"latent_gain"`      // 潜熱の内部発熱, W
	Occupants          float64  `yaml:"occupants"`        // 在室人数, 人
	InitialTemp        float64  `yaml:"initial_temp"`     // degree C
	HybridModel        bool     `yaml:"hybrid_model"`

	Airtightness *AirtightnessConfig `yaml:"airtightness,omitempty"`
	Thermostat   *ThermostatConfig   `yaml:"thermostat"`
	Humidistat   *HumidistatConfig   `yaml:"humidistat,omitempty"`
	IdealLoads   *IdealLoadsConfig   `yaml:"ideal_loads,omitempty"`
	Hydronic     *HydronicConfig     `yaml:"hydronic,omitempty"`
	SteamCoil    *SteamCoilConfig    `yaml:"steam_coil,omitempty"`
}

func (z *ZoneConfig) FillDefaults() {
	if z.Multiplier == 0 {
		z.Multiplier = 1
	}
	if z.ListMultiplier == 0 {
		z.ListMultiplier = 1
	}
	if z.CapMultiplier == 0 {
		z.CapMultiplier = 1
	}
	if z.MoistCapMultiplier == 0 {
		z.MoistCapMultiplier = 1
	}
	if z.LoadCorrection == nil {
		z.LoadCorrection = GetPTR(1.0)
	}
	if z.Thermostat == nil {
		z.Thermostat = &ThermostatConfig{
			ControlType: int(zone.DualSetpointDeadband),
			Heating:     defaultHeatingSP,
			Cooling:     defaultCoolingSP,
		}
	}
	if z.IdealLoads == nil {
		z.IdealLoads = &IdealLoadsConfig{}
	}
	if a := z.Airtightness; a != nil {
		if a.Story == 0 {
			a.Story = 1
		}
		if a.InsidePressure == "" {
			a.InsidePressure = InsidePressureBalanced
		}
	}
}

func (z *ZoneConfig) validate() []string {
	var p []string
	if z.Name == "" {
		p = append(p, "name is required")
	}
	if z.Volume <= 0 {
		p = append(p, fmt.Sprintf("volume must be positive, got %g", z.Volume))
	}
	if z.Multiplier < 1 || z.ListMultiplier < 1 {
		p = append(p, "multipliers must be at least 1")
	}
	if z.CapMultiplier <= 0 || z.MoistCapMultiplier <= 0 {
		p = append(p, "capacitance multipliers must be positive")
	}
	if z.EnvelopeUA < 0 || z.InfiltrationACH < 0 || z.Occupants < 0 {
		p = append(p, "envelope_ua, infiltration_ach and occupants must not be negative")
	}
	if a := z.Airtightness; a != nil {
		if a.CValue < 0 || a.Story < 1 {
			p = append(p, "airtightness needs a non-negative c_value and a story of at least 1")
		}
		switch a.InsidePressure {
		case InsidePressurePositive, InsidePressureNegative, InsidePressureBalanced:
		default:
			p = append(p, fmt.Sprintf("unknown inside_pressure %q", a.InsidePressure))
		}
	}
	if t := z.Thermostat; t != nil {
		if t.ControlType < 0 || t.ControlType > int(zone.DualSetpointDeadband) {
			p = append(p, fmt.Sprintf("control_type must be in 0..4, got %d", t.ControlType))
		}
		if zone.ControlType(t.ControlType) == zone.DualSetpointDeadband && t.Heating > t.Cooling {
			p = append(p, "heating setpoint is above the cooling setpoint")
		}
		if t.CutoutDeltaT < 0 {
			p = append(p, "cutout_delta_t must not be negative")
		}
		if _, err := comfort.ParseModel(t.AdaptiveModel); err != nil {
			p = append(p, err.Error())
		}
	}
	if h := z.Humidistat; h != nil {
		if h.HumidifyingRH < 0 || h.DehumidifyingRH > 100 || h.HumidifyingRH > h.DehumidifyingRH {
			p = append(p, "humidistat setpoints must satisfy 0 <= humidifying <= dehumidifying <= 100")
		}
	}
	if l := z.IdealLoads; l != nil && (l.HeatingCapacity < 0 || l.CoolingCapacity < 0) {
		p = append(p, "ideal load capacities must not be negative")
	}
	if h := z.Hydronic; h != nil && (h.Fluid == "" || h.FlowRate <= 0) {
		p = append(p, "hydronic coil needs a fluid and a positive flow_rate")
	}
	if s := z.SteamCoil; s != nil && s.MassFlow <= 0 {
		p = append(p, "steam coil needs a positive mass_flow")
	}
	return p
}

// HeatBalanceConfig はゾーンの熱収支モデルの設定に変換する。
func (z *ZoneConfig) HeatBalanceConfig() zone.Config {
	return zone.Config{
		Name:               z.Name,
		Volume:             z.Volume,
		Multiplier:         z.Multiplier,
		ListMultiplier:     z.ListMultiplier,
		CapMultiplier:      z.CapMultiplier,
		MoistCapMultiplier: z.MoistCapMultiplier,
		LoadCorrection:     *z.LoadCorrection,
		HybridModel:        z.HybridModel,
		InitialTemp:        z.InitialTemp,
	}
}

// ThermostatState はゾーンのサーモスタットの初期状態を返す。
func (z *ZoneConfig) ThermostatState() zone.Thermostat {
	t := z.Thermostat
	m, _ := comfort.ParseModel(t.AdaptiveModel)
	th := zone.Thermostat{
		CutoutDeltaT:  t.CutoutDeltaT,
		AdaptiveModel: m,
	}
	if t.EMSHeating != nil {
		th.EMSHeatingOverride, th.EMSHeatingValue = true, *t.EMSHeating
	}
	if t.EMSCooling != nil {
		th.EMSCoolingOverride, th.EMSCoolingValue = true, *t.EMSCooling
	}
	return th
}

/*
ScheduleRow はスケジュールファイルが無い場合に用いる一定のスケジュールを返す。

	Notes:
		単一設定温度の制御では暖房設定温度を用いる（冷房のみは冷房設定温度）。
*/
func (z *ZoneConfig) ScheduleRow() schedule.Row {
	t := z.Thermostat
	row := schedule.Row{
		Zone:           z.Name,
		ControlType:    float64(t.ControlType),
		SingleHeat:     t.Heating,
		SingleCool:     t.Cooling,
		SingleHeatCool: t.Heating,
		DualHeat:       t.Heating,
		DualCool:       t.Cooling,
	}
	if h := z.Humidistat; h != nil {
		row.HumidifyRH = schedule.OptionalFloat{Value: h.HumidifyingRH, Valid: true}
		row.DehumidifyRH = schedule.OptionalFloat{Value: h.DehumidifyingRH, Valid: true}
	}
	return row
}
