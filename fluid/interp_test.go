package fluid

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/interp"
	"gonum.org/v1/gonum/mat"

	"zone_heat_balance/internal/recurring"
)

func TestFindArrayIndex(t *testing.T) {
	arr := []float64{0, 10, 20, 30}

	tests := []struct {
		name  string
		value float64
		want  int
	}{
		{"below first", -5, 0},
		{"at first", 0, 0},
		{"inside first segment", 5, 0},
		{"at interior point", 10, 1},
		{"just below last", 29.9, 2},
		{"at last", 30, 2},
		{"above last", 100, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FindArrayIndex(tt.value, arr))
		})
	}
}

func TestFindArrayIndexBounded(t *testing.T) {
	arr := []float64{0, 10, 20, 30, 40}

	assert.Equal(t, 1, FindArrayIndexBounded(5, arr, 1, 3))
	assert.Equal(t, 2, FindArrayIndexBounded(25, arr, 1, 3))
	assert.Equal(t, 2, FindArrayIndexBounded(35, arr, 1, 3))
	assert.Equal(t, 3, FindArrayIndexBounded(1, arr, 3, 3))
}

func TestFindArrayIndex_TotalAndIdempotent(t *testing.T) {
	arr := []float64{-20, -5, 0, 12.5, 40, 41, 90}
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 1000; i++ {
		v := rng.Float64()*200 - 100
		idx := FindArrayIndex(v, arr)
		require.GreaterOrEqual(t, idx, 0)
		require.LessOrEqual(t, idx, len(arr)-2)
		require.Equal(t, idx, FindArrayIndex(v, arr))
		if v >= arr[0] && v < arr[len(arr)-1] {
			require.True(t, arr[idx] <= v && v < arr[idx+1], "value %g index %d", v, idx)
		}
	}
}

func TestGetInterpValue_MatchesPiecewiseLinear(t *testing.T) {
	xs := []float64{0, 10, 20, 35, 50}
	ys := []float64{4217, 4192, 4182, 4178.5, 4181}

	var pl interp.PiecewiseLinear
	require.NoError(t, pl.Fit(xs, ys))

	for x := 0.0; x <= 50; x += 0.7 {
		i := FindArrayIndex(x, xs)
		got := GetInterpValue(x, xs[i], xs[i+1], ys[i], ys[i+1], nil)
		assert.InDelta(t, pl.Predict(x), got, 1e-9, "x=%g", x)
	}
}

func TestGetInterpValue_ExactAtGridPoints(t *testing.T) {
	xs := []float64{-10, 0, 10, 20}
	ys := []float64{3.2, 1.5, 8.75, -2}

	for k := 0; k < len(xs); k++ {
		i := FindArrayIndex(xs[k], xs)
		got := GetInterpValue(xs[k], xs[i], xs[i+1], ys[i], ys[i+1], nil)
		assert.InDelta(t, ys[k], got, 1e-12)
	}
}

func TestGetInterpValue_Degenerate(t *testing.T) {
	r := recurring.NewRegistry(recurring.DefaultSummaryEvery)
	tr := r.Tracker("TEST", "degenerate")

	for n := 1; n <= 3; n++ {
		assert.Equal(t, 0.0, GetInterpValue(5, 5, 5, 1, 2, tr))
		assert.Equal(t, int64(n), tr.Count())
	}

	assert.Equal(t, 0.0, GetInterpValue(5, 5, 5.0005, 1, 2, tr))
	assert.Equal(t, int64(4), tr.Count())
}

func TestGetInterpolatedSatProp(t *testing.T) {
	temps := []float64{0, 10, 20}
	liq := []float64{0, 100, 200}
	vap := []float64{1000, 1100, 1200}
	b := Bounds{LowIndex: 0, HighIndex: 2, LowValue: 0, HighValue: 20}

	tests := []struct {
		quality float64
		want    float64
	}{
		{0.0, 150},
		{1.0, 1150},
		{0.5, 650},
		{0.25, 400},
	}
	for _, tt := range tests {
		got, status := GetInterpolatedSatProp(15, temps, liq, vap, tt.quality, b, nil)
		assert.InDelta(t, tt.want, got, 1e-9)
		assert.Equal(t, InRange, status)
	}

	got, status := GetInterpolatedSatProp(30, temps, liq, vap, 0, b, nil)
	assert.InDelta(t, 300.0, got, 1e-9)
	assert.Equal(t, AboveRange, status)
}

func TestBilinear(t *testing.T) {
	xs := []float64{0, 1, 2}
	ys := []float64{10, 20}
	grid := mat.NewDense(2, 3, nil)
	for i, y := range ys {
		for j, x := range xs {
			grid.Set(i, j, 2*x+3*y)
		}
	}

	v, ok := bilinear(1.5, 12.5, xs, ys, grid)
	require.True(t, ok)
	assert.InDelta(t, 2*1.5+3*12.5, v, 1e-9)

	grid.Set(1, 2, math.NaN())
	_, ok = bilinear(1.5, 12.5, xs, ys, grid)
	assert.False(t, ok)

	v, ok = bilinear(0.5, 12.5, xs, ys, grid)
	require.True(t, ok)
	assert.InDelta(t, 2*0.5+3*12.5, v, 1e-9)
}
