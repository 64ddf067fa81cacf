package fluid

import (
	"math"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	s, err := NewStore(opts...)
	require.NoError(t, err)
	return s
}

func TestNewStore_Defaults(t *testing.T) {
	s := newTestStore(t)

	_, err := s.RefrigerantIndex("steam")
	assert.NoError(t, err)
	_, err = s.GlycolIndex("Water")
	assert.NoError(t, err)

	_, err = s.RefrigerantIndex("R-9999")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSubstanceNotFound))
	assert.Equal(t, ErrSubstanceNotFound, errors.Cause(err))
}

func TestSaturationPressureAndTemperature(t *testing.T) {
	s := newTestStore(t)
	idx, err := s.RefrigerantIndex(SteamName)
	require.NoError(t, err)

	assert.InDelta(t, 101418.0, s.SaturationPressure(idx, 100), 1e-9)
	assert.InDelta(t, 100.0, s.SaturationTemperature(idx, 101418), 1e-9)

	p := s.SaturationPressure(idx, 55)
	assert.Greater(t, p, 12352.0)
	assert.Less(t, p, 19946.0)
	assert.InDelta(t, 55.0, s.SaturationTemperature(idx, p), 1e-9)

	assert.Empty(t, s.Summary())
}

func TestSaturationPressure_OutOfRangeExtrapolates(t *testing.T) {
	s := newTestStore(t)
	idx, err := s.RefrigerantIndex(SteamName)
	require.NoError(t, err)

	want := 476160.0 + (476160.0 - 361535.0)
	assert.InDelta(t, want, s.SaturationPressure(idx, 160), 1e-6)
	assert.InDelta(t, want, s.SaturationPressure(idx, 160), 1e-6)

	assert.Equal(t, int64(2), s.Registry().Count(SteamName, "saturation pressure above range"))

	summary := s.Summary()
	require.Len(t, summary, 1)
	assert.Equal(t, SteamName, summary[0].Substance)
	assert.Equal(t, int64(2), summary[0].Count)
}

func TestSaturatedProperties(t *testing.T) {
	s := newTestStore(t)
	idx, err := s.RefrigerantIndex(SteamName)
	require.NoError(t, err)

	assert.InDelta(t, 419200.0, s.SaturatedEnthalpy(idx, 100, 0), 1e-6)
	assert.InDelta(t, 2675600.0, s.SaturatedEnthalpy(idx, 100, 1), 1e-6)
	assert.InDelta(t, (419200.0+2675600.0)/2, s.SaturatedEnthalpy(idx, 100, 0.5), 1e-6)
	assert.InDelta(t, 958.4, s.SaturatedDensity(idx, 100, 0), 1e-9)
	assert.InDelta(t, 2127.0, s.SaturatedSpecificHeat(idx, 100, 1), 1e-9)

	t.Run("quality is clamped", func(t *testing.T) {
		assert.InDelta(t, s.SaturatedEnthalpy(idx, 100, 1), s.SaturatedEnthalpy(idx, 100, 1.5), 1e-9)
		assert.InDelta(t, s.SaturatedEnthalpy(idx, 100, 0), s.SaturatedEnthalpy(idx, 100, -0.2), 1e-9)
		assert.Equal(t, int64(2), s.Registry().Count(SteamName, "saturated enthalpy quality out of range"))
	})
}

func TestSuperheated(t *testing.T) {
	s := newTestStore(t)
	idx, err := s.RefrigerantIndex(SteamName)
	require.NoError(t, err)

	assert.InDelta(t, 2776400.0, s.SuperheatedEnthalpy(idx, 150, 101325), 1e-6)
	assert.InDelta(t, (2776400.0+2875300.0)/2, s.SuperheatedEnthalpy(idx, 175, 101325), 1e-6)
	assert.InDelta(t, 0.5233, s.SuperheatedDensity(idx, 150, 101325), 1e-9)

	t.Run("saturated region falls back to vapor", func(t *testing.T) {
		got := s.SuperheatedEnthalpy(idx, 110, 200000)
		assert.InDelta(t, 2691100.0, got, 1e-6)
		assert.Equal(t, int64(1), s.Registry().Count(SteamName, "superheated enthalpy saturated region"))
	})

	t.Run("pressure from enthalpy", func(t *testing.T) {
		assert.InDelta(t, 101325.0, s.SuperheatedPressure(idx, 200, 2875300), 1e-6)

		p := s.SuperheatedPressure(idx, 200, 2873000)
		assert.Greater(t, p, 101325.0)
		assert.Less(t, p, 200000.0)
		assert.InDelta(t, 2873000.0, s.SuperheatedEnthalpy(idx, 200, p), 1e-6)
	})
}

func TestGlycols(t *testing.T) {
	s := newTestStore(t)

	water, err := s.GlycolIndex(WaterName)
	require.NoError(t, err)
	assert.InDelta(t, 4182.0, s.SpecificHeat(water, 20), 1e-9)
	assert.InDelta(t, 998.2, s.Density(water, 20), 1e-9)
	assert.InDelta(t, 0.598, s.Conductivity(water, 20), 1e-12)
	assert.InDelta(t, 1.002e-3, s.Viscosity(water, 20), 1e-12)

	eg30, err := s.AddGlycolMixture("EG30", "EthyleneGlycol", 0.3)
	require.NoError(t, err)
	assert.InDelta(t, 3690.0, s.SpecificHeat(eg30, 20), 1e-9)

	eg25, err := s.AddGlycolMixture("EG25", EthyleneGlycolName, 0.25)
	require.NoError(t, err)
	assert.InDelta(t, 3775.0, s.SpecificHeat(eg25, 20), 1e-6)

	g := s.glycol(eg25)
	assert.Equal(t, EthyleneGlycol, g.Source)
	assert.InDelta(t, 0.25, g.Concentration, 1e-12)
	assert.True(t, g.Has(Viscosity))
	assert.InDelta(t, 0.0, g.Table(SpecificHeat).Bounds.LowValue, 1e-12)

	t.Run("concentration is clamped", func(t *testing.T) {
		eg70, err := s.AddGlycolMixture("EG70", EthyleneGlycolName, 0.7)
		require.NoError(t, err)
		assert.InDelta(t, 3310.0, s.SpecificHeat(eg70, 20), 1e-9)
		assert.Equal(t, int64(1), s.Registry().Count("EG70", "specific heat concentration above range"))
	})

	t.Run("unknown base glycol", func(t *testing.T) {
		_, err := s.AddGlycolMixture("X", "GLYCERIN", 0.3)
		assert.True(t, errors.Is(err, ErrSubstanceNotFound))
	})
}

func TestGlycol_AbsentProperty(t *testing.T) {
	s := newTestStore(t)

	csv := strings.Join([]string{
		"name,concentration,temperature,specific_heat,density,conductivity,viscosity",
		"BRINE,0.1,0,3900,1080,,0.002",
		"BRINE,0.1,20,3920,1070,,0.0015",
		"BRINE,0.1,40,3940,1060,,0.001",
	}, "\n")
	require.NoError(t, s.LoadGlycolCSV(strings.NewReader(csv)))

	idx, err := s.AddGlycolMixture("BRINE10", "brine", 0.1)
	require.NoError(t, err)

	g := s.glycol(idx)
	assert.Equal(t, UserDefined, g.Source)
	assert.False(t, g.Has(Conductivity))
	assert.True(t, g.Has(Density))

	assert.Equal(t, 0.0, s.Conductivity(idx, 20))
	assert.Equal(t, 0.0, s.Conductivity(idx, 30))
	assert.Equal(t, int64(2), s.Registry().Count("BRINE10", "conductivity not available"))
	assert.InDelta(t, 3930.0, s.SpecificHeat(idx, 30), 1e-9)
}

func TestLoadRefrigerantCSV_Override(t *testing.T) {
	s := newTestStore(t)
	before, err := s.RefrigerantIndex(SteamName)
	require.NoError(t, err)

	sat := strings.Join([]string{
		"name,temperature,pressure,enthalpy_liquid,enthalpy_vapor,cp_liquid,cp_vapor,density_liquid,density_vapor",
		"steam,0,1000,0,2500000,4200,1900,1000,0.005",
		"steam,100,100000,420000,2680000,4200,2100,960,0.6",
		"R-TEST,-10,200000,180000,390000,1200,800,1300,10",
		"R-TEST,10,400000,210000,400000,1250,850,1250,20",
	}, "\n")
	require.NoError(t, s.LoadRefrigerantCSV(strings.NewReader(sat), nil))

	after, err := s.RefrigerantIndex(SteamName)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.InDelta(t, 50500.0, s.SaturationPressure(after, 50), 1e-9)

	rt, err := s.RefrigerantIndex("r-test")
	require.NoError(t, err)
	assert.InDelta(t, 300000.0, s.SaturationPressure(rt, 0), 1e-9)

	// 過熱域の表が無い場合は飽和蒸気の値
	assert.InDelta(t, 395000.0, s.SuperheatedEnthalpy(rt, 0, 500000), 1e-9)
	assert.Equal(t, int64(1), s.Registry().Count("R-TEST", "superheated enthalpy no superheated data"))
}

func TestLoadRefrigerantCSV_Invalid(t *testing.T) {
	s := newTestStore(t)

	sat := strings.Join([]string{
		"name,temperature,pressure,enthalpy_liquid,enthalpy_vapor,cp_liquid,cp_vapor,density_liquid,density_vapor",
		"BAD,0,1000,0,1,1,1,1,1",
		"BAD,10,,0,1,1,1,1,1",
		"BAD,20,3000,0,1,1,1,1,1",
	}, "\n")
	err := s.LoadRefrigerantCSV(strings.NewReader(sat), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BAD")
}

func TestHandle_ResolveAndReset(t *testing.T) {
	s := newTestStore(t)

	_, err := s.AddGlycolMixture("PG40", PropyleneGlycolName, 0.4)
	require.NoError(t, err)

	h := NewHandle("pg40")
	idx, err := s.ResolveGlycol(h)
	require.NoError(t, err)
	again, err := s.ResolveGlycol(h)
	require.NoError(t, err)
	assert.Equal(t, idx, again)

	s.SaturationPressure(0, 500)
	require.NotEmpty(t, s.Summary())

	require.NoError(t, s.Reset())
	assert.Empty(t, s.Summary())

	_, err = s.ResolveGlycol(h)
	assert.True(t, errors.Is(err, ErrSubstanceNotFound))

	steam := NewHandle(SteamName)
	_, err = s.ResolveRefrigerant(steam)
	assert.NoError(t, err)
}

func TestSpecificHeatCache_MatchesUncached(t *testing.T) {
	cached := newTestStore(t, WithCacheSize(16))
	plain := newTestStore(t, WithCacheSize(0))
	require.Nil(t, plain.Cache())

	for _, s := range []*Store{cached, plain} {
		_, err := s.AddGlycolMixture("PG35", PropyleneGlycolName, 0.35)
		require.NoError(t, err)
	}
	c1, err := cached.GlycolIndex("PG35")
	require.NoError(t, err)
	w1, err := cached.GlycolIndex(WaterName)
	require.NoError(t, err)
	c2, err := plain.GlycolIndex("PG35")
	require.NoError(t, err)
	w2, err := plain.GlycolIndex(WaterName)
	require.NoError(t, err)

	for round := 0; round < 3; round++ {
		for temp := -5.0; temp <= 85.0; temp += 0.37 {
			assert.Equal(t, plain.SpecificHeat(c2, temp), cached.SpecificHeat(c1, temp))
			assert.Equal(t, plain.SpecificHeat(w2, temp), cached.SpecificHeat(w1, temp))
		}
	}

	hits, misses := cached.Cache().Stats()
	assert.Greater(t, misses, int64(0))
	assert.GreaterOrEqual(t, hits+misses, int64(1))
}

func TestSpecificHeatCache_Hits(t *testing.T) {
	c := NewSpecificHeatCache(1000)
	assert.Len(t, c.slots, 1024)

	calls := 0
	compute := func() float64 {
		calls++
		return 42
	}
	assert.Equal(t, 42.0, c.Get(3, 21.5, compute))
	assert.Equal(t, 42.0, c.Get(3, 21.5, compute))
	assert.Equal(t, 1, calls)

	c.Get(4, 21.5, compute)
	assert.Equal(t, 2, calls)

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(2), misses)
}

func TestInterpValuesForGlycolConc(t *testing.T) {
	concs := []float64{0.2, 0.4}
	raw := mat.NewDense(2, 3, []float64{
		10, 20, 30,
		math.NaN(), 40, 50,
	})

	got, status := InterpValuesForGlycolConc(concs, raw, 0.3)
	assert.Equal(t, InRange, status)
	assert.True(t, math.IsNaN(got[0]))
	assert.InDelta(t, 30.0, got[1], 1e-9)
	assert.InDelta(t, 40.0, got[2], 1e-9)

	got, status = InterpValuesForGlycolConc(concs, raw, 0.1)
	assert.Equal(t, BelowRange, status)
	assert.Equal(t, []float64{10, 20, 30}, got)

	_, status = InterpValuesForGlycolConc(concs, raw, 0.9)
	assert.Equal(t, AboveRange, status)
}

func TestNewTable1D_Validation(t *testing.T) {
	_, err := NewTable1D([]float64{0, 10, 5}, []float64{1, 2, 3})
	assert.Error(t, err)

	_, err = NewTable1D([]float64{0, 10, 20}, []float64{1, math.NaN(), 3})
	assert.Error(t, err)

	_, err = NewTable1D([]float64{0, 10, 20}, []float64{math.NaN(), math.NaN(), 3})
	assert.Error(t, err)

	tb, err := NewTable1D([]float64{0, 10, 20, 30}, []float64{math.NaN(), 1, 2, math.NaN()})
	require.NoError(t, err)
	assert.Equal(t, Bounds{LowIndex: 1, HighIndex: 2, LowValue: 10, HighValue: 20}, tb.Bounds)

	v, status := tb.Lookup(25, nil)
	assert.InDelta(t, 2.5, v, 1e-12)
	assert.Equal(t, AboveRange, status)
}
