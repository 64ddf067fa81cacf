package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zone_heat_balance/comfort"
	"zone_heat_balance/fluid"
	"zone_heat_balance/zone"
)

const sampleYAML = `
integration_scheme: euler
timesteps_per_hour: 6
weather: weather.csv
fluid:
  mixtures:
    - name: loop
      glycol: ethyleneglycol
      concentration: 0.3
zones:
  - name: office
    volume: 300
    multiplier: 3
    envelope_ua: 120
    infiltration_ach: 0.5
    occupants: 4
    airtightness:
      c_value: 2
    thermostat:
      control_type: 4
      heating: 21
      cooling: 25
      cutout_delta_t: 1
      adaptive_model: ash55_central
      ems_cooling: 24
    humidistat:
      humidifying_rh: 30
      dehumidifying_rh: 60
    hydronic:
      fluid: loop
      flow_rate: 0.0002
      supply_temp: 60
  - name: store
    volume: 150
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "euler", cfg.IntegrationScheme)
	assert.Equal(t, 6, cfg.TimestepsPerHour)
	assert.Equal(t, 1, cfg.WarmupTimestepsPerHour)
	assert.Equal(t, 1, *cfg.WarmupDays)
	assert.Equal(t, 365, cfg.Days)
	assert.Equal(t, zone.StandardBarometricPressure, *cfg.BarometricPressure)
	assert.Equal(t, "result.csv", cfg.Output)
	assert.True(t, *cfg.Fluid.Cache)
	assert.Equal(t, fluid.DefaultCacheSize, cfg.Fluid.CacheSize)

	require.Len(t, cfg.Zones, 2)
	office := cfg.Zones[0]
	zc := office.HeatBalanceConfig()
	assert.Equal(t, 3, zc.Multiplier)
	assert.Equal(t, 1, zc.ListMultiplier)
	assert.Equal(t, 1.0, zc.LoadCorrection)

	assert.Equal(t, 4.0, office.Occupants)
	require.NotNil(t, office.Airtightness)
	assert.Equal(t, 1, office.Airtightness.Story)
	assert.Equal(t, InsidePressureBalanced, office.Airtightness.InsidePressure)
	assert.Nil(t, cfg.Zones[1].Airtightness)

	th := office.ThermostatState()
	assert.Equal(t, 1.0, th.CutoutDeltaT)
	assert.Equal(t, comfort.ASH55Central, th.AdaptiveModel)
	assert.False(t, th.EMSHeatingOverride)
	assert.True(t, th.EMSCoolingOverride)
	assert.Equal(t, 24.0, th.EMSCoolingValue)

	row := office.ScheduleRow()
	assert.Equal(t, 4.0, row.ControlType)
	assert.Equal(t, 21.0, row.DualHeat)
	assert.True(t, row.HumidifyRH.Valid)
	assert.Equal(t, 60.0, row.DehumidifyRH.Value)

	// 省略したゾーンは既定のサーモスタット
	store := cfg.Zones[1]
	assert.Equal(t, int(zone.DualSetpointDeadband), store.Thermostat.ControlType)
	assert.Equal(t, 20.0, store.Thermostat.Heating)
	assert.Equal(t, 26.0, store.Thermostat.Cooling)
	assert.False(t, store.ScheduleRow().HumidifyRH.Valid)
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("zones: [unterminated"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
	}{
		{"scheme", func(c *Config) { c.IntegrationScheme = "runge_kutta" }},
		{"timestep", func(c *Config) { c.TimestepsPerHour = 3 }},
		{"warmup shorter", func(c *Config) { c.WarmupTimestepsPerHour = 6; c.TimestepsPerHour = 2 }},
		{"days", func(c *Config) { c.Days = -1 }},
		{"start day", func(c *Config) { c.StartDayOfYear = 400 }},
		{"environment", func(c *Config) { c.Environment = "winter" }},
		{"pressure", func(c *Config) { c.BarometricPressure = GetPTR(0.0) }},
		{"weather", func(c *Config) { c.Weather = "" }},
		{"refrigerant pair", func(c *Config) { c.Fluid.RefrigerantSaturated = "sat.csv" }},
		{"mixture", func(c *Config) { c.Fluid.Mixtures[0].Concentration = 1.5 }},
		{"no zones", func(c *Config) { c.Zones = nil }},
		{"duplicate", func(c *Config) { c.Zones[1].Name = "office" }},
		{"volume", func(c *Config) { c.Zones[0].Volume = 0 }},
		{"control type", func(c *Config) { c.Zones[0].Thermostat.ControlType = 7 }},
		{"inverted setpoints", func(c *Config) { c.Zones[0].Thermostat.Heating = 30 }},
		{"adaptive model", func(c *Config) { c.Zones[0].Thermostat.AdaptiveModel = "pmv" }},
		{"humidistat", func(c *Config) { c.Zones[0].Humidistat.HumidifyingRH = 80 }},
		{"inside pressure", func(c *Config) { c.Zones[0].Airtightness.InsidePressure = "vacuum" }},
		{"occupants", func(c *Config) { c.Zones[0].Occupants = -1 }},
		{"hydronic", func(c *Config) { c.Zones[0].Hydronic.FlowRate = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(sampleYAML))
			require.NoError(t, err)
			tt.modify(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestParseEnvironment(t *testing.T) {
	env, err := ParseEnvironment("Design_Day")
	require.NoError(t, err)
	assert.Equal(t, comfort.DesignDay, env)

	env, err = ParseEnvironment("run_period_design")
	require.NoError(t, err)
	assert.Equal(t, comfort.RunPeriodDesign, env)
}

func TestGet(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))

	cfg, err := Get([]string{"zone_heat_balance", "-c", path, "-l", "debug", "--output", "out.csv", "-s", "sched.csv"})
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "out.csv", cfg.Output)
	assert.Equal(t, "sched.csv", cfg.Schedule)
	assert.Equal(t, "weather.csv", cfg.Weather)

	_, err = Get([]string{"zone_heat_balance", "-c", filepath.Join(dir, "missing.yaml")})
	assert.Error(t, err)
}
