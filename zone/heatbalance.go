package zone

import (
	"math"

	"github.com/rs/zerolog/log"

	"zone_heat_balance/comfort"
	"zone_heat_balance/internal/recurring"
)

// 警告の種類
const (
	kindUnanticipatedLoads      = "unanticipated heating/cooling loads"
	kindUnanticipatedMoisture   = "unanticipated humidifying/dehumidifying loads"
	kindHumidistatSetpoints     = "humidifying setpoint above dehumidifying setpoint"
	kindHybridMultiplierTooHigh = "hybrid model multiplier above maximum"
)

// Config はゾーンの固定値
type Config struct {
	Name               string
	Volume             float64 // 気積, m3
	Multiplier         int     // ゾーンの乗数
	ListMultiplier     int     // ゾーンリストの乗数
	CapMultiplier      float64 // 空気の熱容量の倍率, -
	MoistCapMultiplier float64 // 空気の水分容量の倍率, -
	LoadCorrection     float64 // 負荷の補正係数, -
	HybridModel        bool    // 実測室温から熱容量倍率を推定するか否か
	InitialTemp        float64 // 室温の初期値, degree C
	InitialHumRat      float64 // 絶対湿度の初期値, kg/kg(DA)
}

/*
FillDefaults は未設定の値を既定値にする。

	Notes:
		室温の初期値は 15 ℃、絶対湿度の初期値は 20 ℃ 相対湿度 40 % の値とする。
*/
func (c *Config) FillDefaults() {
	if c.Multiplier <= 0 {
		c.Multiplier = 1
	}
	if c.ListMultiplier <= 0 {
		c.ListMultiplier = 1
	}
	if c.CapMultiplier <= 0.0 {
		c.CapMultiplier = 1.0
	}
	if c.MoistCapMultiplier <= 0.0 {
		c.MoistCapMultiplier = 1.0
	}
	if c.LoadCorrection <= 0.0 {
		c.LoadCorrection = 1.0
	}
	if c.InitialTemp == 0.0 {
		c.InitialTemp = 15.0
	}
	if c.InitialHumRat <= 0.0 {
		c.InitialHumRat = PsyWFnTdbRhPb(20.0, 0.4, StandardBarometricPressure)
	}
}

// StepContext は全ゾーンで共通の1ステップの情報
type StepContext struct {
	Integrator         Integrator
	Adaptive           *comfort.AdaptiveComfortDailySchedule
	DayOfYear          int
	DesignDay          bool
	TimeStepHours      float64 // 時間間隔, h
	BarometricPressure float64 // 大気圧, Pa
}

func (sc StepContext) dtSec() float64 {
	return sc.TimeStepHours * SecondsPerHour
}

func (sc StepContext) resolveContext() ResolveContext {
	return ResolveContext{
		Adaptive:      sc.Adaptive,
		DayOfYear:     sc.DayOfYear,
		DesignDay:     sc.DesignDay,
		UseSavedModes: sc.Integrator.UsesSavedModes(),
	}
}

// StepInputs はゾーンの1反復の入力
type StepInputs struct {
	Balance      BalanceInputs
	Setpoints    SetpointSchedules
	Humidistat   HumidistatSetpoints
	MeasuredTemp float64 // 実測室温, degree C（ハイブリッドモデルのみ、無い場合は NaN）
}

/*
ZoneHeatBalance はゾーンの空気の熱・水分収支の状態

	Notes:
		Predict と Correct は同じ入力に対して何度呼んでも同じ結果となる。
		履歴は AdvanceHistory でのみ進める（1ステップに1回）。
*/
type ZoneHeatBalance struct {
	Config
	Thermostat Thermostat

	MAT float64 // 室温（平均空気温度）, degree C
	W   float64 // 絶対湿度, kg/kg(DA)

	ZTM History // 室温の履歴, degree C
	WM  History // 絶対湿度の履歴, kg/kg(DA)

	AirPowerCap float64 // 空気の熱容量を時間間隔で除した値, W/K
	MoistCap    float64 // 空気の質量を時間間隔で除した値, kg/s

	Sums     Sums
	Setpoint ResolvedSetpoints
	Sensible SensibleLoads
	Moisture MoistureLoads

	HeatBalanceError float64 // 空気の熱収支の残差, W
	HybridMultiplier float64 // 推定した熱容量倍率, -
	Hybrid           HybridStats

	registry *recurring.Registry
}

// NewZoneHeatBalance はゾーンを作成し、初期状態にする。
func NewZoneHeatBalance(cfg Config, reg *recurring.Registry) *ZoneHeatBalance {
	cfg.FillDefaults()
	if reg == nil {
		reg = recurring.NewRegistry(recurring.DefaultSummaryEvery)
	}
	z := &ZoneHeatBalance{Config: cfg, registry: reg}
	z.Reset()
	return z
}

// Reset は状態を初期値に戻す（次の実行の前に呼ぶ）。
func (z *ZoneHeatBalance) Reset() {
	z.MAT, z.W = z.InitialTemp, z.InitialHumRat
	z.ZTM.Fill(z.InitialTemp)
	z.WM.Fill(z.InitialHumRat)
	z.Thermostat.ResetModes()
	z.AirPowerCap, z.MoistCap = 0.0, 0.0
	z.Sums = Sums{}
	z.Setpoint = ResolvedSetpoints{}
	z.Sensible = SensibleLoads{}
	z.Moisture = MoistureLoads{}
	z.HeatBalanceError = 0.0
	z.HybridMultiplier = hybridMultiplierMin
	z.Hybrid.Reset()
}

func (z *ZoneHeatBalance) tracker(kind string) *recurring.Tracker {
	return z.registry.Tracker(z.Name, kind)
}

/*
空気の熱容量と水分容量を時間間隔で除した値を求める。

	Args:
		dtSec: 時間間隔, s
		pb: 大気圧, Pa

	Returns:
		airCap: 空気の熱容量を時間間隔で除した値, W/K
		moistCap: 空気の質量を時間間隔で除した値, kg/s
*/
func (z *ZoneHeatBalance) capacities(dtSec, pb float64) (airCap, moistCap float64) {
	rho := PsyRhoAirFnPbTdbW(pb, z.MAT, z.W)
	airCap = z.Volume * z.CapMultiplier * rho * PsyCpAirFnW(z.W) / dtSec
	moistCap = z.Volume * z.MoistCapMultiplier * rho / dtSec
	return airCap, moistCap
}

/*
設定温度・設定湿度にするために必要な負荷を予測する。

	Args:
		in: 1反復の入力
		sc: 全ゾーンで共通の情報

	Notes:
		空調系統の給気と空気を介さない機器の供給熱量は含めずに集計する（それらで処理すべき負荷を求めるため）。
		前の反復の系統依存負荷（SysDepLoadsLagged）のみ加える。
*/
func (z *ZoneHeatBalance) Predict(in *StepInputs, sc StepContext) {
	z.AirPowerCap, z.MoistCap = z.capacities(sc.dtSec(), sc.BarometricPressure)

	s := CalcZoneOrSpaceSums(&in.Balance, false)
	dep := s.TempDepCoef()
	ind := s.TempIndCoef() + in.Balance.SysDepLoadsLagged

	z.Setpoint = z.Thermostat.Resolve(in.Setpoints, z.ZTM[0], sc.resolveContext())
	z.Sensible = PredictSensibleLoads(sc.Integrator, z.Setpoint, z.ZTM, z.AirPowerCap, dep, ind, z.tracker(kindUnanticipatedLoads))

	z.Moisture = MoistureLoads{}
	if in.Humidistat.Enabled {
		// 設定湿度の換算には最新の室温を用いる
		wHum, wDehum := humidistatHumRats(in.Humidistat, z.MAT, sc.BarometricPressure, z.tracker(kindHumidistatSetpoints))
		a, b := moistureCoefficients(&in.Balance, z.MAT, false)
		z.Moisture = PredictMoistureLoads(sc.Integrator, wHum, wDehum, z.WM, z.MoistCap, a, b, z.tracker(kindUnanticipatedMoisture))
	}
}

/*
空調系統の供給熱量・給気が確定した後の室温と絶対湿度を求める。

	Args:
		in: 1反復の入力（給気を含む）
		sc: 全ゾーンで共通の情報

	Notes:
		ハイブリッドモデルで実測室温がある場合は熱容量倍率を推定し、室温を実測値とする。
*/
func (z *ZoneHeatBalance) Correct(in *StepInputs, sc StepContext) {
	airCap, moistCap := z.capacities(sc.dtSec(), sc.BarometricPressure)

	z.Sums = CalcZoneOrSpaceSums(&in.Balance, true)
	dep := z.Sums.TempDepCoef()
	ind := z.Sums.TempIndCoef() + in.Balance.NonAirSystemResponse + in.Balance.SysDepLoadsLagged

	zt := CorrectAirTemp(sc.Integrator, z.ZTM, airCap, dep, ind)

	z.HybridMultiplier = hybridMultiplierMin
	if z.HybridModel && !math.IsNaN(in.MeasuredTemp) {
		airCapNominal := airCap * sc.dtSec() / z.CapMultiplier
		mult := InverseModelMultiplier(in.MeasuredTemp, z.ZTM, dep, ind, airCapNominal, sc.dtSec())
		z.HybridMultiplier = ProcessInverseModelMultpHM(mult, &z.Hybrid, z.tracker(kindHybridMultiplierTooHigh))
		zt = in.MeasuredTemp
	}

	z.MAT = zt
	z.HeatBalanceError = HeatBalanceError(zt, z.ZTM[0], airCap, dep, ind)

	a, b := moistureCoefficients(&in.Balance, zt, true)
	z.W = CorrectHumRat(sc.Integrator, z.WM, moistCap, a, b, zt, sc.BarometricPressure)
}

// AdvanceHistory は確定した室温・絶対湿度を履歴に加え、運転状態を確定する。
func (z *ZoneHeatBalance) AdvanceHistory() {
	z.ZTM.Push(z.MAT)
	z.WM.Push(z.W)
	z.Thermostat.Commit()
}

/*
時間間隔が短くなった場合に履歴を新しい時間間隔に合わせて補間する。

	Args:
		oldStep: 変更前の時間間隔, h
		newStep: 変更後の時間間隔, h
*/
func (z *ZoneHeatBalance) ShortenTimestep(oldStep, newStep float64) {
	cur, h := DownInterpolate4HistoryValues(oldStep, newStep, [3]float64{z.ZTM[0], z.ZTM[1], z.ZTM[2]})
	z.MAT = cur
	z.ZTM = History{cur, h[0], h[1], h[2]}

	cur, h = DownInterpolate4HistoryValues(oldStep, newStep, [3]float64{z.WM[0], z.WM[1], z.WM[2]})
	z.W = cur
	z.WM = History{cur, h[0], h[1], h[2]}

	log.Debug().
		Str("zone", z.Name).
		Float64("old_step", oldStep).
		Float64("new_step", newStep).
		Msg("History down-interpolated to shorter timestep")
}

/*
時間間隔が短くなった場合の履歴を線形補間で求める。

	Args:
		oldStep: 変更前の時間間隔, h
		newStep: 変更後の時間間隔, h
		old: 変更前の履歴（[0] が最新、時刻 0, -oldStep, -2 oldStep の値）

	Returns:
		current: 現在値（old[0]）
		out: 時刻 -newStep, -2 newStep, -3 newStep, -4 newStep の値

	Notes:
		最も古い区間より前は、その区間の傾きで外挿する。
		履歴がすべてほぼ等しい場合はすべて old[0] とする。
*/
func DownInterpolate4HistoryValues(oldStep, newStep float64, old [3]float64) (current float64, out [4]float64) {
	current = old[0]
	if (math.Abs(old[0]-old[1]) < 1.0e-5 && math.Abs(old[1]-old[2]) < 1.0e-5) || oldStep <= 0.0 {
		for i := range out {
			out[i] = old[0]
		}
		return current, out
	}

	for k := range out {
		// 変更前の時間間隔で数えた経過時間
		tau := float64(k+1) * newStep / oldStep
		i := int(math.Floor(tau))
		if i > 1 {
			i = 1
		}
		out[k] = old[i] + (tau-float64(i))*(old[i+1]-old[i])
	}
	return current, out
}
