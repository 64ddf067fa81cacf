package zone

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"zone_heat_balance/comfort"
	"zone_heat_balance/fluid"
	"zone_heat_balance/internal/recurring"
)

// Report はゾーンの1ステップの報告値
type Report struct {
	Zone             string
	MAT              float64 // 室温, degree C
	HumRat           float64 // 絶対湿度, kg/kg(DA)
	HeatingSetpoint  float64 // 有効な暖房設定温度, degree C
	CoolingSetpoint  float64 // 有効な冷房設定温度, degree C
	Sensible         LoadReport
	Moisture         LoadReport
	DeadBand         bool
	HeatBalanceError float64 // W
	HybridMultiplier float64
}

/*
Simulation は1回の実行の状態

	Notes:
		ゾーンごとの状態は互いに独立であり、Predict/Correct はゾーンごとに並行に実行する。
		共有するのは適応型快適温度の表と警告の Registry のみ（いずれも排他制御されている）。
*/
type Simulation struct {
	RunID       uuid.UUID
	Integrator  Integrator
	Adaptive    *comfort.AdaptiveComfortDailySchedule
	Fluids      *fluid.Store
	Registry    *recurring.Registry
	Zones       []*ZoneHeatBalance
	Environment comfort.EnvironmentKind

	DayOfYear          int     // 通日（1始まり）
	TimeStepHours      float64 // 時間間隔, h
	BarometricPressure float64 // 大気圧, Pa
}

// NewSimulation は実行の状態を作成する。
func NewSimulation(scheme Scheme, timeStepHours float64, fluids *fluid.Store, reg *recurring.Registry) *Simulation {
	if reg == nil {
		reg = recurring.NewRegistry(recurring.DefaultSummaryEvery)
	}
	return &Simulation{
		RunID:              uuid.New(),
		Integrator:         NewIntegrator(scheme),
		Adaptive:           comfort.NewAdaptiveComfortDailySchedule(),
		Fluids:             fluids,
		Registry:           reg,
		Environment:        comfort.RunPeriodWeather,
		DayOfYear:          1,
		TimeStepHours:      timeStepHours,
		BarometricPressure: StandardBarometricPressure,
	}
}

// AddZone はゾーンを追加する。警告は Simulation の Registry に記録する。
func (s *Simulation) AddZone(cfg Config) *ZoneHeatBalance {
	z := NewZoneHeatBalance(cfg, s.Registry)
	s.Zones = append(s.Zones, z)
	return z
}

/*
Reset は次の実行のために状態を初期化する。

	Notes:
		ゾーンの設定は残し、状態・警告・適応型快適温度の表・物性値の表を初期化する。
		RunID は新しく割り当てる。
*/
func (s *Simulation) Reset() error {
	s.RunID = uuid.New()
	s.Registry.Reset()
	s.Adaptive.Reset()
	for _, z := range s.Zones {
		z.Reset()
	}
	if s.Fluids != nil {
		if err := s.Fluids.Reset(); err != nil {
			return errors.WithMessage(err, "reset fluid properties")
		}
	}
	log.Debug().Str("run_id", s.RunID.String()).Msg("Simulation reset")
	return nil
}

func (s *Simulation) stepContext() StepContext {
	return StepContext{
		Integrator:         s.Integrator,
		Adaptive:           s.Adaptive,
		DayOfYear:          s.DayOfYear,
		DesignDay:          s.Environment == comfort.DesignDay,
		TimeStepHours:      s.TimeStepHours,
		BarometricPressure: s.BarometricPressure,
	}
}

func (s *Simulation) forEachZone(ctx context.Context, inputs []*StepInputs, f func(z *ZoneHeatBalance, in *StepInputs)) error {
	if len(inputs) != len(s.Zones) {
		return errors.Errorf("got inputs for %d zones, want %d", len(inputs), len(s.Zones))
	}

	g, ctx := errgroup.WithContext(ctx)
	for i := range s.Zones {
		z, in := s.Zones[i], inputs[i]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			f(z, in)
			return nil
		})
	}
	return g.Wait()
}

// PredictAll は全ゾーンの負荷を予測する。inputs はゾーンの順に与える。
func (s *Simulation) PredictAll(ctx context.Context, inputs []*StepInputs) error {
	sc := s.stepContext()
	return s.forEachZone(ctx, inputs, func(z *ZoneHeatBalance, in *StepInputs) {
		z.Predict(in, sc)
	})
}

// CorrectAll は全ゾーンの室温と絶対湿度を求める。
func (s *Simulation) CorrectAll(ctx context.Context, inputs []*StepInputs) error {
	sc := s.stepContext()
	return s.forEachZone(ctx, inputs, func(z *ZoneHeatBalance, in *StepInputs) {
		z.Correct(in, sc)
	})
}

// AdvanceAll は全ゾーンの履歴を進める（1ステップに1回）。
func (s *Simulation) AdvanceAll() {
	for _, z := range s.Zones {
		z.AdvanceHistory()
	}
}

/*
SetTimeStep は時間間隔を変更する。

	Notes:
		短くなる場合は各ゾーンの履歴を新しい時間間隔に合わせて補間する。
*/
func (s *Simulation) SetTimeStep(hours float64) error {
	if hours <= 0.0 {
		return errors.Errorf("invalid timestep %g h", hours)
	}
	if hours < s.TimeStepHours {
		for _, z := range s.Zones {
			z.ShortenTimestep(s.TimeStepHours, hours)
		}
	}
	s.TimeStepHours = hours
	return nil
}

// Reports は全ゾーンの報告値を返す（乗数はここでのみ掛ける）。
func (s *Simulation) Reports() []Report {
	reports := make([]Report, len(s.Zones))
	for i, z := range s.Zones {
		reports[i] = Report{
			Zone:             z.Name,
			MAT:              z.MAT,
			HumRat:           z.W,
			HeatingSetpoint:  z.Setpoint.Heating,
			CoolingSetpoint:  z.Setpoint.Cooling,
			Sensible:         ReportSensibleLoadsZoneMultiplier(z.Sensible, z.LoadCorrection, z.Multiplier, z.ListMultiplier),
			Moisture:         ReportMoistLoadsZoneMultiplier(z.Moisture, z.Multiplier, z.ListMultiplier),
			DeadBand:         z.Sensible.DeadBandOrSetback,
			HeatBalanceError: z.HeatBalanceError,
			HybridMultiplier: z.HybridMultiplier,
		}
	}
	return reports
}
