// Package trainer runs the offline fit-and-persist pipeline.
package trainer

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/hed1ad/factoryguard/internal/artifact"
	"github.com/hed1ad/factoryguard/pkg/detectors"
	"github.com/hed1ad/factoryguard/pkg/detectors/iforest"
	"github.com/hed1ad/factoryguard/pkg/features"
	"github.com/hed1ad/factoryguard/pkg/io/csv"
)

// Params controls one training run.
type Params struct {
	DataPath  string
	ModelPath string

	TempColumn string
	RPMColumn  string

	Trees         int
	SampleSize    int
	Contamination float64
	Seed          int64
	NoiseBound    float64
}

// Run executes the full pipeline: load, calibrate, transform, fit, persist,
// evaluate. Any failure aborts the run before the artifact is replaced.
func Run(ctx context.Context, p Params, log *zap.Logger) error {
	readings, err := loadReadings(p)
	if err != nil {
		return err
	}
	log.Info("dataset loaded", zap.String("path", p.DataPath), zap.Int("rows", len(readings)))

	calib := features.Calibrate(readings)
	log.Info("calibration computed",
		zap.Float64("temp_mean", calib.TempMean),
		zap.Float64("rpm_mean", calib.RPMMean),
	)

	// Seeded noise so a training run is reproducible end to end.
	engineer := features.NewEngineer(calib, features.WithNoise(features.SeededNoise(p.NoiseBound, p.Seed)))
	matrix, err := engineer.TransformAll(readings)
	if err != nil {
		return fmt.Errorf("feature engineering: %w", err)
	}

	forest := iforest.New(
		iforest.WithTrees(p.Trees),
		iforest.WithSampleSize(p.SampleSize),
		iforest.WithContamination(p.Contamination),
		iforest.WithSeed(p.Seed),
	)
	if err := forest.Fit(matrix); err != nil {
		return fmt.Errorf("fit: %w", err)
	}
	log.Info("model fitted",
		zap.Int("trees", p.Trees),
		zap.Float64("contamination", p.Contamination),
		zap.Float64("threshold", forest.Threshold()),
	)

	blob, err := forest.Save()
	if err != nil {
		return fmt.Errorf("serialize model: %w", err)
	}
	bundle := &artifact.Bundle{
		Calibration: calib,
		NoiseBound:  p.NoiseBound,
		Forest:      blob,
	}
	if err := artifact.Save(p.ModelPath, bundle); err != nil {
		return fmt.Errorf("persist artifact: %w", err)
	}
	log.Info("artifact written", zap.String("path", p.ModelPath))

	return evaluate(ctx, forest, matrix, log)
}

// loadReadings pulls the raw temperature and rpm columns from the training
// CSV. A missing file is fatal to the run; there is no fallback source.
func loadReadings(p Params) ([]features.SensorReading, error) {
	if _, err := os.Stat(p.DataPath); err != nil {
		return nil, fmt.Errorf("training data unavailable at %s: %w", p.DataPath, err)
	}

	r, err := csv.NewReader(p.DataPath, csv.WithColumns(p.TempColumn, p.RPMColumn))
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer r.Close()

	rows, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("dataset %s has no usable rows", p.DataPath)
	}

	readings := make([]features.SensorReading, len(rows))
	for i, row := range rows {
		readings[i] = features.SensorReading{
			TemperatureK:       row[0],
			RotationalSpeedRPM: row[1],
		}
	}
	return readings, nil
}

// evaluate replays the training matrix through the fitted model and logs the
// flagged fraction, which should sit near the contamination setting.
func evaluate(ctx context.Context, forest *iforest.IsolationForest, matrix [][]float64, log *zap.Logger) error {
	input := make(chan []float64)
	output := make(chan detectors.Score, 64)

	go func() {
		defer close(input)
		for _, row := range matrix {
			select {
			case input <- row:
			case <-ctx.Done():
				return
			}
		}
	}()

	done := make(chan error, 1)
	go func() {
		done <- forest.PredictStream(ctx, input, output)
		close(output)
	}()

	var total, flagged int
	for score := range output {
		total++
		if score.IsAnomaly {
			flagged++
		}
	}
	if err := <-done; err != nil {
		return fmt.Errorf("evaluation: %w", err)
	}

	if total > 0 {
		log.Info("post-train evaluation",
			zap.Int("rows", total),
			zap.Int("flagged", flagged),
			zap.Float64("fraction", float64(flagged)/float64(total)),
		)
	}
	return nil
}
