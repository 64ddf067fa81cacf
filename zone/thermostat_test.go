package zone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zone_heat_balance/comfort"
)

func dualSchedules(heat, cool float64) SetpointSchedules {
	return SetpointSchedules{ControlType: 4, DualHeating: heat, DualCooling: cool}
}

func adaptiveTable(t *testing.T, rm float64) *comfort.AdaptiveComfortDailySchedule {
	t.Helper()
	series := make([]float64, 365)
	for i := range series {
		series[i] = rm
	}
	s := comfort.NewAdaptiveComfortDailySchedule()
	require.NoError(t, s.Calculate(series, series, comfort.RunPeriodWeather, nil))
	return s
}

func TestDecodeControlType(t *testing.T) {
	tests := []struct {
		v    float64
		want ControlType
	}{
		{0, Uncontrolled},
		{1, SingleHeating},
		{2, SingleCooling},
		{3, SingleHeatCool},
		{4, DualSetpointDeadband},
		{2.5, Uncontrolled},
		{-1, Uncontrolled},
		{5, Uncontrolled},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DecodeControlType(tt.v), "value %g", tt.v)
	}
}

func TestResolve_Schedule(t *testing.T) {
	var th Thermostat

	r := th.Resolve(dualSchedules(20, 24), 22, ResolveContext{})
	assert.Equal(t, ResolvedSetpoints{ControlType: DualSetpointDeadband, Heating: 20, Cooling: 24}, r)

	r = th.Resolve(SetpointSchedules{ControlType: 1, SingleHeating: 21}, 22, ResolveContext{})
	assert.Equal(t, 21.0, r.Heating)
	assert.Equal(t, 21.0, r.Cooling)

	r = th.Resolve(SetpointSchedules{ControlType: 0, SingleHeating: 21}, 22, ResolveContext{})
	assert.Equal(t, ResolvedSetpoints{}, r)
}

func TestResolve_Adaptive(t *testing.T) {
	th := Thermostat{AdaptiveModel: comfort.ASH55Central}
	rc := ResolveContext{Adaptive: adaptiveTable(t, 20), DayOfYear: 100}

	r := th.Resolve(dualSchedules(20, 26), 22, rc)
	assert.Equal(t, 20.0, r.Heating)
	assert.Equal(t, FromSchedule, r.HeatingSource)
	assert.InDelta(t, 24.0, r.Cooling, 1e-9)
	assert.Equal(t, FromAdaptive, r.CoolingSource)

	// 暖房のみの制御には適用しない
	r = th.Resolve(SetpointSchedules{ControlType: 1, SingleHeating: 21}, 22, rc)
	assert.Equal(t, 21.0, r.Heating)

	// 適用範囲外の日は変更しない
	rc.Adaptive = adaptiveTable(t, 40)
	r = th.Resolve(dualSchedules(20, 26), 22, rc)
	assert.Equal(t, 26.0, r.Cooling)
	assert.Equal(t, FromSchedule, r.CoolingSource)
}

func TestResolve_EMSOverrideWins(t *testing.T) {
	th := Thermostat{
		CutoutDeltaT:       1.0,
		AdaptiveModel:      comfort.ASH55Central,
		EMSHeatingOverride: true,
		EMSHeatingValue:    18.0,
		EMSCoolingOverride: true,
		EMSCoolingValue:    27.0,
	}
	rc := ResolveContext{Adaptive: adaptiveTable(t, 20), DayOfYear: 10}

	for _, prev := range []float64{10.0, 22.0, 35.0} {
		r := th.Resolve(dualSchedules(20, 24), prev, rc)
		assert.Equal(t, 18.0, r.Heating, "prev %g", prev)
		assert.Equal(t, 27.0, r.Cooling, "prev %g", prev)
		assert.Equal(t, FromEMS, r.HeatingSource)
		assert.Equal(t, FromEMS, r.CoolingSource)
	}

	th.EMSCoolingOverride = false
	r := th.Resolve(SetpointSchedules{ControlType: 3, SingleHeatCool: 22}, 15, rc)
	assert.Equal(t, 18.0, r.Heating)
	assert.Equal(t, 18.0, r.Cooling)
}

func TestResolve_CutoutHysteresis(t *testing.T) {
	th := Thermostat{CutoutDeltaT: 1.0}
	sch := SetpointSchedules{ControlType: 1, SingleHeating: 20}

	steps := []struct {
		prev    float64
		want    float64
		wantSrc SetpointSource
	}{
		{19.5, 21.0, FromCutout},   // 設定温度以下で運転開始
		{20.5, 21.0, FromCutout},   // 動作すきまの中は運転継続
		{21.2, 20.0, FromSchedule}, // 設定温度＋動作すきま以上で停止
		{20.5, 20.0, FromSchedule}, // 動作すきまの中は停止継続
	}
	for i, s := range steps {
		r := th.Resolve(sch, s.prev, ResolveContext{})
		assert.Equal(t, s.want, r.Heating, "step %d", i)
		assert.Equal(t, s.wantSrc, r.HeatingSource, "step %d", i)
		assert.Equal(t, r.Heating, r.Cooling, "step %d", i)
		th.Commit()
	}
}

func TestResolve_CutoutCycle(t *testing.T) {
	type step struct {
		prev, heat, cool float64
	}
	tests := []struct {
		name  string
		sch   SetpointSchedules
		steps []step
	}{
		{
			name: "single heating",
			sch:  SetpointSchedules{ControlType: 1, SingleHeating: 20},
			steps: []step{
				{19, 21, 21},
				{20.5, 21, 21},
				{25, 20, 20},
				{20.5, 20, 20},
			},
		},
		{
			name: "single cooling",
			sch:  SetpointSchedules{ControlType: 2, SingleCooling: 24},
			steps: []step{
				{19, 24, 24},
				{23.5, 24, 24},
				{25, 23, 23},
				{23.5, 23, 23},
			},
		},
		{
			name: "single heat cool",
			sch:  SetpointSchedules{ControlType: 3, SingleHeatCool: 21},
			steps: []step{
				{19, 22, 22},
				{21.5, 22, 22},
				{25, 20, 20},
				{20.5, 20, 20},
			},
		},
		{
			name: "dual",
			sch:  dualSchedules(20, 24),
			steps: []step{
				{19, 21, 24},
				{20.5, 21, 24},
				{25, 20, 23},
				{23.5, 20, 23},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th := Thermostat{CutoutDeltaT: 1.0}
			for i, s := range tt.steps {
				r := th.Resolve(tt.sch, s.prev, ResolveContext{})
				assert.Equal(t, s.heat, r.Heating, "step %d", i)
				assert.Equal(t, s.cool, r.Cooling, "step %d", i)
				assert.LessOrEqual(t, r.Heating, r.Cooling, "step %d", i)
				th.Commit()
			}
		})
	}
}

func TestPredict_SingleHeatCoolKeepsHeatingInBand(t *testing.T) {
	th := Thermostat{CutoutDeltaT: 1.0}
	sch := SetpointSchedules{ControlType: 3, SingleHeatCool: 21}

	th.Resolve(sch, 19, ResolveContext{})
	th.Commit()

	// 動作すきまの中では暖房を続ける
	sp := th.Resolve(sch, 21.5, ResolveContext{})
	h := History{21.5, 21.5, 21.5, 21.5}
	l := PredictSensibleLoads(NewIntegrator(EulerMethod), sp, h, 100, 50, 50*5, nil)
	assert.Greater(t, l.TotalOutputRequired, 0.0)
	assert.False(t, l.DeadBandOrSetback)
}

func TestResolve_CutoutDual(t *testing.T) {
	th := Thermostat{CutoutDeltaT: 1.0}

	r := th.Resolve(dualSchedules(20, 24), 19, ResolveContext{})
	assert.Equal(t, 21.0, r.Heating)
	assert.Equal(t, 24.0, r.Cooling)

	r = th.Resolve(dualSchedules(20, 24), 25, ResolveContext{})
	assert.Equal(t, 20.0, r.Heating)
	assert.Equal(t, 23.0, r.Cooling)
}

func TestResolve_SavedModes(t *testing.T) {
	sch := SetpointSchedules{ControlType: 1, SingleHeating: 20}

	current := Thermostat{CutoutDeltaT: 1.0}
	current.Resolve(sch, 19.5, ResolveContext{})
	current.Commit()

	saved := current
	r := current.Resolve(sch, 20.5, ResolveContext{UseSavedModes: false})
	assert.Equal(t, 21.0, r.Heating)

	// 1つ前に確定した状態（停止）を用いる
	r = saved.Resolve(sch, 20.5, ResolveContext{UseSavedModes: true})
	assert.Equal(t, 20.0, r.Heating)
}

func TestResolve_IsIdempotentUntilCommit(t *testing.T) {
	th := Thermostat{CutoutDeltaT: 0.5}
	sch := dualSchedules(20, 24)

	first := th.Resolve(sch, 19, ResolveContext{})
	second := th.Resolve(sch, 19, ResolveContext{})
	assert.Equal(t, first, second)

	heat, cool, _, _ := th.Modes()
	assert.False(t, heat)
	assert.False(t, cool)

	th.Commit()
	heat, cool, heatSave, _ := th.Modes()
	assert.True(t, heat)
	assert.False(t, cool)
	assert.False(t, heatSave)

	th.ResetModes()
	heat, _, _, _ = th.Modes()
	assert.False(t, heat)
}

func TestResolve_CutoutKeepsEMSValue(t *testing.T) {
	th := Thermostat{CutoutDeltaT: 1.0, EMSHeatingOverride: true, EMSHeatingValue: 18}

	r := th.Resolve(dualSchedules(20, 24), 17, ResolveContext{})
	assert.Equal(t, 18.0, r.Heating)
	assert.Equal(t, FromEMS, r.HeatingSource)
}
