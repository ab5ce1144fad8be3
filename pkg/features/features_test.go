package features

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func zeroNoise() float64 { return 0 }

func TestTransformCelsiusConversion(t *testing.T) {
	e := NewEngineer(Calibration{TempMean: 26.85, RPMMean: 1500}, WithNoise(zeroNoise))

	tests := []struct {
		name  string
		tempK float64
	}{
		{"room temperature", 300.0},
		{"freezing point", 273.15},
		{"absolute zero", 0},
		{"hot machine", 308.15},
		{"negative kelvin accepted", -10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := e.Transform(SensorReading{TemperatureK: tt.tempK, RotationalSpeedRPM: 1500})
			require.NoError(t, err)
			// Exact affine conversion, no rounding or clipping.
			assert.Equal(t, tt.tempK-273.15, v.TemperatureCelsius)
		})
	}
}

func TestTransformSoundVolumeProxy(t *testing.T) {
	e := NewEngineer(Calibration{TempMean: 26.85, RPMMean: 1500}, WithNoise(zeroNoise))

	v, err := e.Transform(SensorReading{TemperatureK: 300, RotationalSpeedRPM: 1234.5})
	require.NoError(t, err)
	assert.Equal(t, 1234.5, v.SoundVolumeProxy, "rpm is a unit-preserving rename")
}

func TestTransformHumidityClamped(t *testing.T) {
	e := NewEngineer(Calibration{TempMean: 26.85, RPMMean: 1500}, WithNoise(zeroNoise))

	tests := []struct {
		name    string
		reading SensorReading
		want    float64
	}{
		{"extreme heat pushes humidity to floor", SensorReading{TemperatureK: 1000, RotationalSpeedRPM: 1500}, 0},
		{"extreme cold pushes humidity to ceiling", SensorReading{TemperatureK: 100, RotationalSpeedRPM: 1500}, 100},
		{"extreme rpm pushes humidity to ceiling", SensorReading{TemperatureK: 300, RotationalSpeedRPM: 1e6}, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := e.Transform(tt.reading)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.Humidity)
		})
	}
}

func TestTransformHumidityAlwaysInRange(t *testing.T) {
	e := NewEngineer(Calibration{TempMean: 26.85, RPMMean: 1500}, WithNoise(SeededNoise(2.5, 7)))

	for tempK := -500.0; tempK <= 2000; tempK += 37 {
		for rpm := -1e5; rpm <= 1e5; rpm += 9973 {
			v, err := e.Transform(SensorReading{TemperatureK: tempK, RotationalSpeedRPM: rpm})
			require.NoError(t, err)
			assert.GreaterOrEqual(t, v.Humidity, 0.0)
			assert.LessOrEqual(t, v.Humidity, 100.0)
		}
	}
}

func TestTransformRejectsNonFinite(t *testing.T) {
	e := NewEngineer(Calibration{}, WithNoise(zeroNoise))

	tests := []struct {
		name    string
		reading SensorReading
	}{
		{"NaN temperature", SensorReading{TemperatureK: math.NaN(), RotationalSpeedRPM: 1500}},
		{"Inf temperature", SensorReading{TemperatureK: math.Inf(1), RotationalSpeedRPM: 1500}},
		{"NaN rpm", SensorReading{TemperatureK: 300, RotationalSpeedRPM: math.NaN()}},
		{"negative Inf rpm", SensorReading{TemperatureK: 300, RotationalSpeedRPM: math.Inf(-1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Transform(tt.reading)
			assert.Error(t, err)
		})
	}
}

func TestTransformDeterministicWithSeed(t *testing.T) {
	calib := Calibration{TempMean: 26.85, RPMMean: 1500}
	a := NewEngineer(calib, WithNoise(SeededNoise(0.5, 99)))
	b := NewEngineer(calib, WithNoise(SeededNoise(0.5, 99)))

	for i := 0; i < 50; i++ {
		reading := SensorReading{TemperatureK: 295 + float64(i), RotationalSpeedRPM: 1400 + float64(i)*3}
		va, err := a.Transform(reading)
		require.NoError(t, err)
		vb, err := b.Transform(reading)
		require.NoError(t, err)
		assert.Equal(t, va, vb)
	}
}

func TestValuesOrder(t *testing.T) {
	v := FeatureVector{SoundVolumeProxy: 1, TemperatureCelsius: 2, Humidity: 3}
	assert.Equal(t, []float64{1, 2, 3}, v.Values())
	assert.Equal(t, []string{"sound_volume_proxy", "temperature_celsius", "humidity"}, Names())
}

func TestTransformAllMatchesSingle(t *testing.T) {
	calib := Calibration{TempMean: 26.85, RPMMean: 1500}
	readings := []SensorReading{
		{TemperatureK: 300, RotationalSpeedRPM: 1500},
		{TemperatureK: 305, RotationalSpeedRPM: 1600},
		{TemperatureK: 290, RotationalSpeedRPM: 1400},
	}

	batch := NewEngineer(calib, WithNoise(zeroNoise))
	single := NewEngineer(calib, WithNoise(zeroNoise))

	matrix, err := batch.TransformAll(readings)
	require.NoError(t, err)
	require.Len(t, matrix, len(readings))

	for i, r := range readings {
		v, err := single.Transform(r)
		require.NoError(t, err)
		assert.Equal(t, v.Values(), matrix[i], "batch and single-row paths must agree")
	}
}

func TestTransformAllRejectsBadRow(t *testing.T) {
	e := NewEngineer(Calibration{}, WithNoise(zeroNoise))
	_, err := e.TransformAll([]SensorReading{
		{TemperatureK: 300, RotationalSpeedRPM: 1500},
		{TemperatureK: math.NaN(), RotationalSpeedRPM: 1500},
	})
	assert.ErrorContains(t, err, "row 1")
}

func TestCalibrate(t *testing.T) {
	readings := []SensorReading{
		{TemperatureK: 300.15, RotationalSpeedRPM: 1400},
		{TemperatureK: 302.15, RotationalSpeedRPM: 1600},
	}

	calib := Calibrate(readings)
	assert.InDelta(t, 28.0, calib.TempMean, 1e-9)
	assert.InDelta(t, 1500.0, calib.RPMMean, 1e-9)
}

func TestCalibrateEmpty(t *testing.T) {
	assert.Equal(t, Calibration{}, Calibrate(nil))
}

func TestScenarioCenteredReading(t *testing.T) {
	// A reading sitting exactly at the calibration means gets the base
	// humidity, up to the noise bound.
	calib := Calibration{TempMean: 26.85, RPMMean: 1500}
	e := NewEngineer(calib, WithNoise(SeededNoise(0.5, 3)))

	v, err := e.Transform(SensorReading{TemperatureK: 300.0, RotationalSpeedRPM: 1500.0})
	require.NoError(t, err)

	assert.InDelta(t, 26.85, v.TemperatureCelsius, 1e-9)
	assert.InDelta(t, 45.0, v.Humidity, 0.5+1e-9)
}

func TestUniformNoiseBounded(t *testing.T) {
	noise := UniformNoise(2.5)
	for i := 0; i < 1000; i++ {
		n := noise()
		assert.GreaterOrEqual(t, n, -2.5)
		assert.LessOrEqual(t, n, 2.5)
	}
}
