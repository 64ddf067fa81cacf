package config

import (
	"io"
	"os"
	"strings"

	"github.com/pborman/getopt/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"zone_heat_balance/comfort"
	"zone_heat_balance/fluid"
	"zone_heat_balance/zone"
)

const (
	defaultConfigFile       = "config.yaml"
	defaultOutputFile       = "result.csv"
	defaultLogLevel         = "info"
	defaultScheme           = "third_order"
	defaultTimestepsPerHour = 4
	defaultWarmupSteps      = 1
	defaultWarmupDays       = 1
	defaultDays             = 365
	defaultStartDayOfYear   = 1
	defaultEnvironment      = "run_period_weather"
)

// DesignDayConfig は夏期設計日の外気条件
type DesignDayConfig struct {
	MaxDryBulb float64 `yaml:"max_dry_bulb"`
	DailyRange float64 `yaml:"daily_range"`
}

// MixtureConfig は名前付きの不凍液（グリコール水溶液）
type MixtureConfig struct {
	Name          string  `yaml:"name"`
	Glycol        string  `yaml:"glycol"`
	Concentration float64 `yaml:"concentration"`
}

// FluidConfig は物性値の表の設定
type FluidConfig struct {
	RefrigerantSaturated   string           `yaml:"refrigerant_saturated,omitempty"`
	RefrigerantSuperheated string           `yaml:"refrigerant_superheated,omitempty"`
	Glycol                 string           `yaml:"glycol,omitempty"`
	Mixtures               []*MixtureConfig `yaml:"mixtures,omitempty"`
	Cache                  *bool            `yaml:"cache,omitempty"`
	CacheSize              int              `yaml:"cache_size,omitempty"`
}

func (f *FluidConfig) FillDefaults() {
	if f.Cache == nil {
		f.Cache = GetPTR(true)
	}
	if f.CacheSize <= 0 {
		f.CacheSize = fluid.DefaultCacheSize
	}
}

// Config は実行条件
type Config struct {
	LogLevel               string           `yaml:"log_level"`
	IntegrationScheme      string           `yaml:"integration_scheme"`
	TimestepsPerHour       int              `yaml:"timesteps_per_hour"`
	WarmupTimestepsPerHour int              `yaml:"warmup_timesteps_per_hour"`
	WarmupDays             *int             `yaml:"warmup_days"`
	Days                   int              `yaml:"days"`
	StartDayOfYear         int              `yaml:"start_day_of_year"`
	Environment            string           `yaml:"environment"`
	BarometricPressure     *float64         `yaml:"barometric_pressure"`
	SummerDesignDay        *DesignDayConfig `yaml:"summer_design_day,omitempty"`
	Weather                string           `yaml:"weather"`
	Schedule               string           `yaml:"schedule,omitempty"`
	Output                 string           `yaml:"output"`
	Fluid                  *FluidConfig     `yaml:"fluid"`
	Zones                  []*ZoneConfig    `yaml:"zones"`
}

func defConfig() *Config {
	return &Config{
		Fluid: &FluidConfig{},
	}
}

func GetPTR[T any](v T) *T {
	return &v
}

// FillDefaults は未設定の値を既定値にする。
func (cfg *Config) FillDefaults() {
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}
	if cfg.IntegrationScheme == "" {
		cfg.IntegrationScheme = defaultScheme
	}
	if cfg.TimestepsPerHour == 0 {
		cfg.TimestepsPerHour = defaultTimestepsPerHour
	}
	if cfg.WarmupTimestepsPerHour == 0 {
		cfg.WarmupTimestepsPerHour = defaultWarmupSteps
	}
	if cfg.WarmupDays == nil {
		cfg.WarmupDays = GetPTR(defaultWarmupDays)
	}
	if cfg.Days == 0 {
		cfg.Days = defaultDays
	}
	if cfg.StartDayOfYear == 0 {
		cfg.StartDayOfYear = defaultStartDayOfYear
	}
	if cfg.Environment == "" {
		cfg.Environment = defaultEnvironment
	}
	if cfg.BarometricPressure == nil {
		cfg.BarometricPressure = GetPTR(zone.StandardBarometricPressure)
	}
	if cfg.Output == "" {
		cfg.Output = defaultOutputFile
	}
	if cfg.Fluid == nil {
		cfg.Fluid = &FluidConfig{}
	}
	cfg.Fluid.FillDefaults()
	for _, z := range cfg.Zones {
		z.FillDefaults()
	}
}

// ParseEnvironment は計算期間の種類の名前を解釈する。
func ParseEnvironment(s string) (comfort.EnvironmentKind, error) {
	switch strings.ToLower(s) {
	case "run_period_weather":
		return comfort.RunPeriodWeather, nil
	case "design_day":
		return comfort.DesignDay, nil
	case "run_period_design":
		return comfort.RunPeriodDesign, nil
	default:
		return 0, errors.Errorf("unknown environment %q", s)
	}
}

/*
Validate は設定値を検査する。

	Returns:
		問題があればすべての問題を列挙したエラー
*/
func (cfg *Config) Validate() error {
	var problems []string
	add := func(format string, args ...interface{}) {
		problems = append(problems, errors.Errorf(format, args...).Error())
	}

	if _, err := zone.ParseScheme(cfg.IntegrationScheme); err != nil {
		add("%v", err)
	}
	for _, n := range []int{cfg.TimestepsPerHour, cfg.WarmupTimestepsPerHour} {
		switch n {
		case 1, 2, 4, 6:
		default:
			add("timesteps per hour must be one of 1, 2, 4, 6, got %d", n)
		}
	}
	if cfg.WarmupTimestepsPerHour > cfg.TimestepsPerHour || cfg.TimestepsPerHour%cfg.WarmupTimestepsPerHour != 0 {
		add("run timestep must evenly divide the warmup timestep")
	}
	if cfg.WarmupDays != nil && *cfg.WarmupDays < 0 {
		add("warmup_days must not be negative")
	}
	if cfg.Days <= 0 {
		add("days must be positive, got %d", cfg.Days)
	}
	if cfg.StartDayOfYear < 1 || cfg.StartDayOfYear > 366 {
		add("start_day_of_year must be in 1..366, got %d", cfg.StartDayOfYear)
	}
	if _, err := ParseEnvironment(cfg.Environment); err != nil {
		add("%v", err)
	}
	if cfg.BarometricPressure != nil && *cfg.BarometricPressure <= 0 {
		add("barometric_pressure must be positive")
	}
	if cfg.Weather == "" {
		add("weather file is required")
	}
	if (cfg.Fluid.RefrigerantSaturated == "") != (cfg.Fluid.RefrigerantSuperheated == "") {
		add("fluid: refrigerant_saturated and refrigerant_superheated must be given together")
	}
	for i, m := range cfg.Fluid.Mixtures {
		if m.Name == "" || m.Glycol == "" {
			add("fluid mixture %d: name and glycol are required", i+1)
		}
		if m.Concentration < 0 || m.Concentration > 1 {
			add("fluid mixture %s: concentration must be in 0..1", m.Name)
		}
	}

	if len(cfg.Zones) == 0 {
		add("at least one zone is required")
	}
	names := make(map[string]bool)
	for i, z := range cfg.Zones {
		if names[z.Name] {
			add("zone %d: duplicate name %q", i+1, z.Name)
		}
		names[z.Name] = true
		for _, p := range z.validate() {
			add("zone %q: %s", z.Name, p)
		}
	}

	if len(problems) > 0 {
		return errors.Errorf("invalid config:\n  %s", strings.Join(problems, "\n  "))
	}
	return nil
}

// Parse は YAML を読み込み、既定値を補う。
func Parse(data []byte) (*Config, error) {
	cfg := defConfig()
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal config")
		}
	}
	cfg.FillDefaults()
	return cfg, nil
}

func readFile(configFileName string) (*Config, error) {
	f, err := os.Open(configFileName)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open config file")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}
	return Parse(data)
}

/*
Get はコマンドライン引数と設定ファイルから実行条件を読み込む。

	Args:
		args: コマンドライン引数（先頭はプログラム名）

	Notes:
		コマンドライン引数は設定ファイルの値より優先する。
*/
func Get(args []string) (*Config, error) {
	set := getopt.New()
	configFile := set.StringLong("config", 'c', defaultConfigFile, "config file pathname")
	logLevel := set.StringLong("log-level", 'l', "", "log levels: debug, info, warn, error")
	weatherFile := set.StringLong("weather", 'w', "", "weather CSV pathname")
	scheduleFile := set.StringLong("schedule", 's', "", "schedule CSV pathname")
	outputFile := set.StringLong("output", 'o', "", "result CSV pathname")

	if err := set.Getopt(args, nil); err != nil {
		return nil, errors.Wrap(err, "parse arguments")
	}

	cfg, err := readFile(*configFile)
	if err != nil {
		return nil, errors.WithMessagef(err, "config `%s`", *configFile)
	}
	log.Info().Str("path", *configFile).Msg("Using config file")

	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *weatherFile != "" {
		cfg.Weather = *weatherFile
	}
	if *scheduleFile != "" {
		cfg.Schedule = *scheduleFile
	}
	if *outputFile != "" {
		cfg.Output = *outputFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	prettyPrint(cfg)
	return cfg, nil
}

func prettyPrint(cfg *Config) {
	d, err := yaml.Marshal(cfg)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal config for pretty print")
		return
	}
	log.Debug().Msgf("--- Config ---\n%s\n", string(d))
}
