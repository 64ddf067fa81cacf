package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"zone_heat_balance/comfort"
	"zone_heat_balance/internal/config"
	"zone_heat_balance/internal/logging"
	"zone_heat_balance/internal/recurring"
	"zone_heat_balance/recorder"
	"zone_heat_balance/schedule"
	"zone_heat_balance/weather"
	"zone_heat_balance/zone"
)

/*
スケジュールを用意する。

	Notes:
		スケジュールファイルが無い場合は各ゾーンの設定から一定のスケジュールを作る。
*/
func loadSchedule(cfg *config.Config) (*schedule.Schedule, error) {
	if cfg.Schedule == "" {
		rows := make(map[string]schedule.Row, len(cfg.Zones))
		for _, zc := range cfg.Zones {
			rows[zc.Name] = zc.ScheduleRow()
		}
		return schedule.Constant(rows), nil
	}

	s, err := schedule.LoadFile(cfg.Schedule)
	if err != nil {
		return nil, err
	}
	for _, zc := range cfg.Zones {
		if !s.Has(zc.Name) {
			return nil, errors.Errorf("schedule `%s` has no rows for zone %q", cfg.Schedule, zc.Name)
		}
	}
	return s, nil
}

/*
負荷計算処理の実行

	Args:
		ctx: コンテキスト（中断で計算を打ち切る）
		cfg: 実行条件
*/
func run(ctx context.Context, cfg *config.Config) error {
	// ---- 事前準備 ----

	scheme, err := zone.ParseScheme(cfg.IntegrationScheme)
	if err != nil {
		return err
	}
	env, err := config.ParseEnvironment(cfg.Environment)
	if err != nil {
		return err
	}
	itv, err := weather.IntervalFromStepsPerHour(cfg.TimestepsPerHour)
	if err != nil {
		return err
	}
	warmItv, err := weather.IntervalFromStepsPerHour(cfg.WarmupTimestepsPerHour)
	if err != nil {
		return err
	}

	reg := recurring.NewRegistry(recurring.DefaultSummaryEvery)
	store, err := newFluidStore(cfg.Fluid, reg)
	if err != nil {
		return err
	}

	log.Info().Msg("気象データの読み込み開始")
	warmWeather, err := weather.LoadFile(cfg.Weather, warmItv)
	if err != nil {
		return err
	}
	runWeather := warmWeather.WithInterval(itv)

	log.Info().Msg("スケジュールの読み込み開始")
	sched, err := loadSchedule(cfg)
	if err != nil {
		return err
	}

	sim := zone.NewSimulation(scheme, warmItv.Hours(), store, reg)
	sim.Environment = env
	sim.BarometricPressure = *cfg.BarometricPressure

	d := &driver{
		sim:      sim,
		store:    store,
		sched:    sched,
		startDay: cfg.StartDayOfYear,
	}
	for _, zc := range cfg.Zones {
		z := sim.AddZone(zc.HeatBalanceConfig())
		z.Thermostat = zc.ThermostatState()
		d.loads = append(d.loads, newZoneLoads(zc))
		d.plants = append(d.plants, newPlant(zc))
	}

	dd := warmWeather.SummerDesignDay()
	if cfg.SummerDesignDay != nil {
		dd = comfort.SummerDesignDay{MaxDryBulb: cfg.SummerDesignDay.MaxDryBulb, DailyRange: cfg.SummerDesignDay.DailyRange}
	}
	ash, cen := warmWeather.RunningMeans()
	if err := sim.Adaptive.Calculate(ash, cen, env, &dd); err != nil {
		return errors.WithMessage(err, "adaptive comfort temperatures")
	}

	log.Info().
		Str("run_id", sim.RunID.String()).
		Str("scheme", scheme.String()).
		Int("zones", len(sim.Zones)).
		Int("days", cfg.Days).
		Msg("計算開始")

	// ---- 計算 ----

	if *cfg.WarmupDays > 0 {
		if err := d.warmup(ctx, warmWeather, *cfg.WarmupDays, cfg.TimestepsPerHour); err != nil {
			return err
		}
		log.Info().Int("days", *cfg.WarmupDays).Msg("助走計算終了")
	}
	if err := sim.SetTimeStep(itv.Hours()); err != nil {
		return err
	}

	rec := recorder.NewRecorder(sim.RunID, itv.Hours(), sim.BarometricPressure)
	if err := d.run(ctx, runWeather, cfg.Days, rec); err != nil {
		return err
	}

	// ---- 計算結果ファイルの保存 ----

	if err := rec.Save(cfg.Output); err != nil {
		return err
	}

	for _, z := range sim.Zones {
		if z.HybridModel && z.Hybrid.Count > 0 {
			log.Info().
				Str("zone", z.Name).
				Float64("mean", z.Hybrid.Avg).
				Float64("std_dev", z.Hybrid.StdDev()).
				Int("count", z.Hybrid.Count).
				Msg("Inverse model multiplier")
		}
	}
	reg.LogSummary()
	return nil
}

func main() {
	cfg, err := config.Get(os.Args)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	logging.Init(logging.ParseLevel(cfg.LogLevel), nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("Calculation failed")
	}
	log.Info().Msg("計算終了")
}
