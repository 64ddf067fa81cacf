package schedule

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `zone,step,control_type,single_heat,single_cool,single_heat_cool,dual_heat,dual_cool,humidify_rh,dehumidify_rh,measured_temp
office,0,4,0,0,0,18,28,,,
office,36,4,0,0,0,21,25,30,60,
office,72,4,0,0,0,18,28,,,
lab,0,1,20,0,0,0,0,,,19.5
`

func TestLoad(t *testing.T) {
	s, err := Load(strings.NewReader(sample))
	require.NoError(t, err)
	assert.True(t, s.Has("office"))
	assert.False(t, s.Has("attic"))

	tests := []struct {
		step     int
		heat     float64
		cool     float64
		humidify bool
	}{
		{0, 18, 28, false},
		{35, 18, 28, false},
		{36, 21, 25, true},
		{71, 21, 25, true},
		{72, 18, 28, false},
		{10000, 18, 28, false},
	}
	for _, tt := range tests {
		v, err := s.At("office", tt.step)
		require.NoError(t, err)
		assert.Equal(t, 4.0, v.Setpoints.ControlType)
		assert.Equal(t, tt.heat, v.Setpoints.DualHeating, "step %d", tt.step)
		assert.Equal(t, tt.cool, v.Setpoints.DualCooling, "step %d", tt.step)
		assert.Equal(t, tt.humidify, v.Humidistat.Enabled, "step %d", tt.step)
		assert.True(t, math.IsNaN(v.MeasuredTemp))
	}

	v, err := s.At("office", 40)
	require.NoError(t, err)
	assert.Equal(t, 30.0, v.Humidistat.HumidifyingRH)
	assert.Equal(t, 60.0, v.Humidistat.DehumidifyingRH)

	v, err = s.At("lab", 5)
	require.NoError(t, err)
	assert.Equal(t, 20.0, v.Setpoints.SingleHeating)
	assert.Equal(t, 19.5, v.MeasuredTemp)

	_, err = s.At("attic", 0)
	assert.Error(t, err)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(strings.NewReader("zone,step,control_type\noffice,4,1\n"))
	assert.Error(t, err, "must start at step 0")

	_, err = Load(strings.NewReader("zone,step,control_type\n,0,1\n"))
	assert.Error(t, err)

	_, err = Load(strings.NewReader("zone,step,control_type,humidify_rh\noffice,0,1,wet\n"))
	assert.Error(t, err)
}

func TestConstantAndSave(t *testing.T) {
	s := Constant(map[string]Row{
		"office": {ControlType: 4, DualHeat: 20, DualCool: 26},
	})
	v, err := s.At("office", 500)
	require.NoError(t, err)
	assert.Equal(t, 20.0, v.Setpoints.DualHeating)
	assert.False(t, v.Humidistat.Enabled)

	var buf bytes.Buffer
	require.NoError(t, s.Save(&buf))

	loaded, err := Load(&buf)
	require.NoError(t, err)
	v2, err := loaded.At("office", 0)
	require.NoError(t, err)
	assert.Equal(t, v.Setpoints, v2.Setpoints)
}
