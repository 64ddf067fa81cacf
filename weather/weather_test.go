package weather

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 1日分のデータ（0時 10℃ から 1時間ごとに 1℃ 上昇）
func oneDay() (temp, humRat []float64) {
	temp = make([]float64, 24)
	humRat = make([]float64, 24)
	for h := range temp {
		temp[h] = 10.0 + float64(h)
		humRat[h] = 0.005
	}
	return temp, humRat
}

func TestIntervalFromStepsPerHour(t *testing.T) {
	tests := []struct {
		n       int
		want    Interval
		seconds float64
	}{
		{1, IntervalH1, 3600},
		{2, IntervalM30, 1800},
		{4, IntervalM15, 900},
		{6, IntervalM10, 600},
	}
	for _, tt := range tests {
		itv, err := IntervalFromStepsPerHour(tt.n)
		require.NoError(t, err)
		assert.Equal(t, tt.want, itv)
		assert.Equal(t, tt.n, itv.StepsPerHour())
		assert.Equal(t, tt.seconds, itv.Seconds())
		assert.Equal(t, 24*tt.n, itv.Steps(1))
	}

	_, err := IntervalFromStepsPerHour(3)
	assert.Error(t, err)
}

func TestNew_Interpolation(t *testing.T) {
	temp, humRat := oneDay()
	w, err := New(temp, humRat, IntervalM15)
	require.NoError(t, err)

	assert.Equal(t, 96, w.Steps())
	assert.Equal(t, 1, w.Days())

	tests := []struct {
		step int
		want float64
	}{
		{0, 10.0},
		{1, 10.25},
		{2, 10.5},
		{4, 11.0},
		{92, 33.0},
		// 23時から翌日0時（先頭）へ
		{94, 33.0 - 0.5*23.0},
		{96, 10.0},
		{-1, 33.0 - 0.75*23.0},
	}
	for _, tt := range tests {
		got, x := w.At(tt.step)
		assert.InDelta(t, tt.want, got, 1e-12, "step %d", tt.step)
		assert.Equal(t, 0.005, x)
	}
}

func TestWithInterval(t *testing.T) {
	temp, humRat := oneDay()
	w, err := New(temp, humRat, IntervalH1)
	require.NoError(t, err)
	assert.Same(t, w, w.WithInterval(IntervalH1))

	fine := w.WithInterval(IntervalM30)
	assert.Equal(t, IntervalM30, fine.Interval())
	assert.Equal(t, 48, fine.Steps())
	got, _ := fine.At(1)
	assert.InDelta(t, 10.5, got, 1e-12)
	assert.Equal(t, 24, w.Steps())
}

func TestNew_Errors(t *testing.T) {
	_, err := New(make([]float64, 23), make([]float64, 23), IntervalH1)
	assert.Error(t, err)

	_, err = New(make([]float64, 24), make([]float64, 48), IntervalH1)
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	var b strings.Builder
	b.WriteString("month,day,hour,dry_bulb,humidity_ratio\n")
	for d := 1; d <= 2; d++ {
		for h := 0; h < 24; h++ {
			temp := 20.0
			if d == 2 {
				temp = 30.0 + float64(h%2)
			}
			fmt.Fprintf(&b, "7,%d,%d,%g,12.0\n", d, h, temp)
		}
	}

	w, err := Load(strings.NewReader(b.String()), IntervalH1)
	require.NoError(t, err)
	assert.Equal(t, 2, w.Days())

	_, x := w.At(0)
	assert.InDelta(t, 0.012, x, 1e-12)

	assert.InDeltaSlice(t, []float64{20.0, 30.5}, w.DailyMeans(), 1e-12)

	dd := w.SummerDesignDay()
	assert.Equal(t, 31.0, dd.MaxDryBulb)
	assert.Equal(t, 1.0, dd.DailyRange)

	ash, cen := w.RunningMeans()
	assert.Len(t, ash, 365)
	assert.Len(t, cen, 365)
}

func TestLoad_Invalid(t *testing.T) {
	_, err := Load(strings.NewReader("month,day,hour,dry_bulb,humidity_ratio\n1,1,0,abc,5\n"), IntervalH1)
	assert.Error(t, err)
}
