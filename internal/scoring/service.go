// Package scoring holds the loaded anomaly model and answers per-reading
// scoring requests.
package scoring

import (
	"errors"
	"fmt"
	"math"

	"github.com/hed1ad/factoryguard/internal/artifact"
	"github.com/hed1ad/factoryguard/pkg/detectors/iforest"
	"github.com/hed1ad/factoryguard/pkg/features"
)

// Status values reported to clients.
const (
	StatusOK    = "OK"
	StatusAlert = "ALERT"
)

// ErrModelNotLoaded is returned for every request while no artifact has been
// loaded. The service does not retry the load; it stays degraded until
// restarted with a valid artifact.
var ErrModelNotLoaded = errors.New("model not loaded")

// FeatureError marks a request whose raw values could not be transformed.
// These are client-caused; the service stays healthy.
type FeatureError struct {
	Err error
}

func (e *FeatureError) Error() string {
	return fmt.Sprintf("feature engineering failed: %v", e.Err)
}

func (e *FeatureError) Unwrap() error { return e.Err }

// PredictionError marks an internal mismatch between the engineered vector
// and the model. FeatureNames lists the schema the model expects, in order,
// as a debugging aid.
type PredictionError struct {
	Err          error
	FeatureNames []string
}

func (e *PredictionError) Error() string {
	return fmt.Sprintf("prediction failed: %v (model expects %v)", e.Err, e.FeatureNames)
}

func (e *PredictionError) Unwrap() error { return e.Err }

// Prediction is the outcome for a single reading.
type Prediction struct {
	IsAnomaly    bool
	AnomalyScore float64
	Status       string
}

// Service owns one loaded model. It starts Unloaded; LoadArtifact moves it
// to Loaded exactly once at startup. After that the model, calibration and
// noise bound are immutable, so Handle is safe for arbitrarily many
// concurrent callers without coordination.
type Service struct {
	engineer *features.Engineer
	forest   *iforest.IsolationForest
	loaded   bool
}

// New returns a Service in the Unloaded state.
func New() *Service {
	return &Service{}
}

// NewLoaded wires a Service directly from its parts, for callers that
// already hold a fitted forest and calibrated engineer.
func NewLoaded(engineer *features.Engineer, forest *iforest.IsolationForest) *Service {
	return &Service{engineer: engineer, forest: forest, loaded: true}
}

// LoadArtifact transitions Unloaded to Loaded from the persisted bundle.
// The engineer is rebuilt with the calibration and noise bound the model
// was trained with.
func (s *Service) LoadArtifact(path string, opts ...features.Option) error {
	bundle, forest, err := artifact.Load(path)
	if err != nil {
		return err
	}

	opts = append([]features.Option{
		features.WithNoise(features.UniformNoise(bundle.NoiseBound)),
	}, opts...)

	s.engineer = features.NewEngineer(bundle.Calibration, opts...)
	s.forest = forest
	s.loaded = true
	return nil
}

// Loaded reports whether a model is available.
func (s *Service) Loaded() bool {
	return s.loaded
}

// Handle scores one reading: transform with the persisted calibration, score
// against the loaded forest, and map the verdict to the external contract.
func (s *Service) Handle(reading features.SensorReading) (Prediction, error) {
	if !s.loaded {
		return Prediction{}, ErrModelNotLoaded
	}

	vec, err := s.engineer.Transform(reading)
	if err != nil {
		return Prediction{}, &FeatureError{Err: err}
	}

	decision, isAnomaly, err := s.forest.Decision(vec.Values())
	if err != nil {
		return Prediction{}, &PredictionError{Err: err, FeatureNames: features.Names()}
	}

	status := StatusOK
	if isAnomaly {
		status = StatusAlert
	}

	return Prediction{
		IsAnomaly:    isAnomaly,
		AnomalyScore: round4(decision),
		Status:       status,
	}, nil
}

// round4 applies the 4-decimal presentation rule for external reporting.
// The decision itself is taken on the unrounded value.
func round4(x float64) float64 {
	return math.Round(x*1e4) / 1e4
}
