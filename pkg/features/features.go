// Package features maps raw machine sensor readings to the fixed feature
// space the anomaly model is trained and scored on.
package features

import (
	"fmt"
	"math"
	"math/rand"
)

// The model is positional: it was fitted on columns in this exact order and
// never sees feature names at inference time. Batch training and single-row
// scoring must both emit [sound_volume_proxy, temperature_celsius, humidity].
var featureNames = []string{"sound_volume_proxy", "temperature_celsius", "humidity"}

const (
	kelvinOffset = 273.15

	baseHumidity = 45.0
	tempWeight   = -0.5
	rpmWeight    = 0.005
)

// DefaultNoiseBound is the half-width of the uniform humidity jitter.
const DefaultNoiseBound = 0.5

// SensorReading is one instantaneous raw measurement.
type SensorReading struct {
	TemperatureK       float64 `json:"temperature_k"`
	RotationalSpeedRPM float64 `json:"rotational_speed_rpm"`
}

// FeatureVector is the engineered representation of a single reading.
// There is no real humidity or microphone sensor on the machine: rpm stands
// in as a sound/vibration proxy, and humidity is synthesized from how far
// temperature and rpm sit from the training-corpus norms so that anomalous
// combinations also perturb the third dimension.
type FeatureVector struct {
	SoundVolumeProxy   float64
	TemperatureCelsius float64
	Humidity           float64
}

// Values returns the vector in model order.
func (v FeatureVector) Values() []float64 {
	return []float64{v.SoundVolumeProxy, v.TemperatureCelsius, v.Humidity}
}

// Names returns the feature schema in model order.
func Names() []string {
	names := make([]string, len(featureNames))
	copy(names, featureNames)
	return names
}

// Calibration holds the training-corpus means used to center the synthetic
// humidity feature. It is computed once at training time, persisted with the
// model artifact, and reused unchanged at serving time.
type Calibration struct {
	TempMean float64
	RPMMean  float64
}

// Calibrate computes calibration statistics over a training corpus.
func Calibrate(readings []SensorReading) Calibration {
	if len(readings) == 0 {
		return Calibration{}
	}
	var tempSum, rpmSum float64
	for _, r := range readings {
		tempSum += r.TemperatureK - kelvinOffset
		rpmSum += r.RotationalSpeedRPM
	}
	n := float64(len(readings))
	return Calibration{TempMean: tempSum / n, RPMMean: rpmSum / n}
}

// NoiseFunc draws one bounded humidity jitter sample.
type NoiseFunc func() float64

// UniformNoise draws uniformly from [-bound, bound] using the process-wide
// source, which is safe for concurrent use.
func UniformNoise(bound float64) NoiseFunc {
	return func() float64 {
		return bound * (2*rand.Float64() - 1)
	}
}

// SeededNoise is UniformNoise backed by its own deterministic source, for
// reproducible training runs and tests. Not safe for concurrent callers.
func SeededNoise(bound float64, seed int64) NoiseFunc {
	rng := rand.New(rand.NewSource(seed))
	return func() float64 {
		return bound * (2*rng.Float64() - 1)
	}
}

// Engineer transforms readings using one fixed calibration. The same
// Engineer math runs at training and serving time.
type Engineer struct {
	calib Calibration
	noise NoiseFunc
}

// Option configures an Engineer.
type Option func(*Engineer)

// WithNoise overrides the humidity jitter source.
func WithNoise(fn NoiseFunc) Option {
	return func(e *Engineer) {
		e.noise = fn
	}
}

// NewEngineer creates an Engineer for the given calibration.
func NewEngineer(calib Calibration, opts ...Option) *Engineer {
	e := &Engineer{
		calib: calib,
		noise: UniformNoise(DefaultNoiseBound),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Transform engineers the feature vector for one reading. Inputs are only
// validated for finiteness; out-of-physical-range values are transformed as
// given and left for the detector to flag.
func (e *Engineer) Transform(r SensorReading) (FeatureVector, error) {
	if !finite(r.TemperatureK) {
		return FeatureVector{}, fmt.Errorf("temperature_k is not a finite number: %v", r.TemperatureK)
	}
	if !finite(r.RotationalSpeedRPM) {
		return FeatureVector{}, fmt.Errorf("rotational_speed_rpm is not a finite number: %v", r.RotationalSpeedRPM)
	}

	soundVolume := r.RotationalSpeedRPM
	tempCelsius := r.TemperatureK - kelvinOffset

	humidity := baseHumidity +
		(tempCelsius-e.calib.TempMean)*tempWeight +
		(soundVolume-e.calib.RPMMean)*rpmWeight +
		e.noise()

	return FeatureVector{
		SoundVolumeProxy:   soundVolume,
		TemperatureCelsius: tempCelsius,
		Humidity:           clip(humidity, 0, 100),
	}, nil
}

// TransformAll engineers the feature matrix for a training corpus. Row order
// and column order match the single-reading path exactly.
func (e *Engineer) TransformAll(readings []SensorReading) ([][]float64, error) {
	matrix := make([][]float64, 0, len(readings))
	for i, r := range readings {
		v, err := e.Transform(r)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		matrix = append(matrix, v.Values())
	}
	return matrix, nil
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func clip(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
