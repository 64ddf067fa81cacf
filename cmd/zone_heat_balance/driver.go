package main

import (
	"context"

	"github.com/pkg/errors"

	"zone_heat_balance/fluid"
	"zone_heat_balance/internal/config"
	"zone_heat_balance/recorder"
	"zone_heat_balance/schedule"
	"zone_heat_balance/weather"
	"zone_heat_balance/zone"
)

// ゾーンごとの定常的な入力
type zoneLoads struct {
	name            string
	volume          float64 // m3
	envelopeUA      float64 // W/K
	infiltrationACH float64 // 1/h
	internalGain    float64 // W
	latentGain      float64 // W
	occupants       float64 // 人
	airtightness    *config.AirtightnessConfig
}

func newZoneLoads(zc *config.ZoneConfig) zoneLoads {
	return zoneLoads{
		name:            zc.Name,
		volume:          zc.Volume,
		envelopeUA:      zc.EnvelopeUA,
		infiltrationACH: zc.InfiltrationACH,
		internalGain:    zc.InternalGain,
		latentGain:      zc.LatentGain,
		occupants:       zc.Occupants,
		airtightness:    zc.Airtightness,
	}
}

/*
外気条件とスケジュールからゾーンの1ステップの入力を作る。

	Args:
		sv: スケジュールの値
		zoneTemp: 1ステップ前の室温, degree C
		to: 外気温度, degree C
		xo: 外気絶対湿度, kg/kg(DA)
		pb: 大気圧, Pa

	Notes:
		外皮は外気温度の表面として扱い、熱損失係数を HA とする。
		隙間風の質量流量は外気の密度で求める。
		気密性能がある場合は室内外温度差による隙間風を加える。
		人体発熱の顕熱・潜熱の割合は1ステップ前の室温で決める。
*/
func (l zoneLoads) inputs(sv schedule.Values, zoneTemp, to, xo, pb float64) *zone.StepInputs {
	in := &zone.StepInputs{
		Balance: zone.BalanceInputs{
			ConvectiveGain: l.internalGain,
			LatentGain:     l.latentGain,
			OutdoorTemp:    to,
			OutdoorHumRat:  xo,
		},
		Setpoints:    sv.Setpoints,
		Humidistat:   sv.Humidistat,
		MeasuredTemp: sv.MeasuredTemp,
	}
	if l.envelopeUA > 0.0 {
		in.Balance.Surfaces = []zone.SurfaceConvection{
			{HConv: l.envelopeUA, Area: 1.0, Temp: to, RefType: zone.ZoneMeanAirTemp},
		}
	}
	if l.occupants > 0.0 {
		sensible, latent := occupantHeat(zoneTemp)
		in.Balance.ConvectiveGain += l.occupants * sensible
		in.Balance.LatentGain += l.occupants * latent
	}

	ach := l.infiltrationACH
	if l.airtightness != nil {
		ach += infiltrationACH(l.airtightness, zoneTemp, to)
	}
	if ach > 0.0 {
		rho := zone.PsyRhoAirFnPbTdbW(pb, to, xo)
		in.Balance.Infiltration = zone.AirFlow{
			MassFlow: ach * l.volume / zone.SecondsPerHour * rho,
			Temp:     to,
			HumRat:   xo,
		}
	}
	return in
}

/*
driver は計算の1回の実行

	Notes:
		助走計算は粗い時間間隔で開始日を繰り返し、本計算の前に時間間隔を短くする。
		スケジュールのステップは本計算の時間間隔で数える。
*/
type driver struct {
	sim    *zone.Simulation
	store  *fluid.Store
	sched  *schedule.Schedule
	loads  []zoneLoads
	plants []*plant

	startDay int // 開始日の通日（1始まり）
}

/*
1ステップ分の予測と補正を行う。

	Args:
		ctx: コンテキスト
		wn: 気象データのステップ
		sn: スケジュールのステップ
		w: 外気条件

	Returns:
		外気温度, degree C
		ゾーンごとの供給熱量, W
*/
func (d *driver) step(ctx context.Context, wn, sn int, w *weather.Weather) (float64, []float64, error) {
	to, xo := w.At(wn)
	pb := d.sim.BarometricPressure

	inputs := make([]*zone.StepInputs, len(d.sim.Zones))
	for i, l := range d.loads {
		sv, err := d.sched.At(l.name, sn)
		if err != nil {
			return 0.0, nil, err
		}
		inputs[i] = l.inputs(sv, d.sim.Zones[i].MAT, to, xo, pb)
	}

	if err := d.sim.PredictAll(ctx, inputs); err != nil {
		return 0.0, nil, errors.WithMessage(err, "predict")
	}

	delivered := make([]float64, len(d.sim.Zones))
	for i, z := range d.sim.Zones {
		q, err := d.plants[i].deliver(d.store, z.Sensible.TotalOutputRequired, z.MAT)
		if err != nil {
			return 0.0, nil, errors.WithMessagef(err, "zone %s", z.Name)
		}
		delivered[i] = q
		inputs[i].Balance.NonAirSystemResponse = q
		// 理想加湿・除湿器
		inputs[i].Balance.LatentGain += z.Moisture.TotalOutputRequired * zone.PsyHgAirFnWTdb(z.W, z.MAT)
	}

	if err := d.sim.CorrectAll(ctx, inputs); err != nil {
		return 0.0, nil, errors.WithMessage(err, "correct")
	}
	d.sim.AdvanceAll()
	return to, delivered, nil
}

func (d *driver) dayOfYear(day int) int {
	days := d.sim.Adaptive.Days()
	if days == 0 {
		days = 365
	}
	return (d.startDay-1+day)%days + 1
}

/*
助走計算を行う。

	Args:
		w: 助走計算の時間間隔の外気条件
		days: 日数
		runStepsPerHour: 本計算の1時間あたりのステップ数
*/
func (d *driver) warmup(ctx context.Context, w *weather.Weather, days, runStepsPerHour int) error {
	itv := w.Interval()
	ratio := runStepsPerHour / itv.StepsPerHour()
	offset := (d.startDay - 1) * itv.Steps(1)

	d.sim.DayOfYear = d.dayOfYear(0)
	for day := 0; day < days; day++ {
		for n := 0; n < itv.Steps(1); n++ {
			if _, _, err := d.step(ctx, offset+n, n*ratio, w); err != nil {
				return errors.WithMessagef(err, "warmup day %d step %d", day+1, n)
			}
		}
	}
	return nil
}

/*
本計算を行い、結果を記録する。

	Args:
		w: 本計算の時間間隔の外気条件
		days: 日数
		rec: 結果の記録先
*/
func (d *driver) run(ctx context.Context, w *weather.Weather, days int, rec *recorder.Recorder) error {
	itv := w.Interval()
	perDay := itv.Steps(1)
	offset := (d.startDay - 1) * perDay

	for day := 0; day < days; day++ {
		d.sim.DayOfYear = d.dayOfYear(day)
		for i := 0; i < perDay; i++ {
			n := day*perDay + i
			to, delivered, err := d.step(ctx, offset+n, n, w)
			if err != nil {
				return errors.WithMessagef(err, "step %d", n)
			}
			rec.Record(n, to, d.sim.Reports(), delivered)
		}
	}
	return nil
}
