// Package simulator generates a synthetic sensor stream against the scoring
// API. It is a pure external client: it only speaks the HTTP contract.
package simulator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/hed1ad/factoryguard/pkg/features"
)

// Params configures a simulation run.
type Params struct {
	// TargetURL is the base URL of the scoring API.
	TargetURL string
	// Interval is the delay between readings.
	Interval time.Duration
	// Count is the number of readings to send; 0 or less runs until the
	// context is canceled.
	Count int
	Seed  int64
}

// verdict mirrors the scoring response body.
type verdict struct {
	IsAnomaly    bool    `json:"is_anomaly"`
	AnomalyScore float64 `json:"anomaly_score"`
	Status       string  `json:"status"`
}

// Run sends readings at the configured rate. Temperature follows a slow sine
// around 300 K, rpm hovers near 1500, and every tenth reading spikes rpm to
// simulate a fault.
func Run(ctx context.Context, p Params, log *zap.Logger) error {
	client := &http.Client{Timeout: 5 * time.Second}
	rng := rand.New(rand.NewSource(p.Seed))

	if err := waitForServer(ctx, client, p.TargetURL); err != nil {
		return err
	}
	log.Info("connected", zap.String("target", p.TargetURL))

	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	for t := 0; p.Count <= 0 || t < p.Count; t++ {
		reading := nextReading(rng, t)
		if err := send(ctx, client, p.TargetURL, reading, log); err != nil {
			log.Warn("request failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

func nextReading(rng *rand.Rand, t int) features.SensorReading {
	temp := 300 + 2*math.Sin(float64(t)*0.1) + (rng.Float64() - 0.5)
	rpm := 1500 + (rng.Float64()*100 - 50)

	if t > 0 && t%10 == 0 {
		rpm = 2800 // injected fault: rpm spike
	}

	return features.SensorReading{TemperatureK: temp, RotationalSpeedRPM: rpm}
}

func waitForServer(ctx context.Context, client *http.Client, base string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/", nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("scoring API unreachable at %s: %w", base, err)
	}
	resp.Body.Close()
	return nil
}

func send(ctx context.Context, client *http.Client, base string, reading features.SensorReading, log *zap.Logger) error {
	body, err := json.Marshal(reading)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/predict", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("predict returned %s", resp.Status)
	}

	var v verdict
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		return err
	}

	log.Info("verdict",
		zap.Float64("temperature_k", reading.TemperatureK),
		zap.Float64("rpm", reading.RotationalSpeedRPM),
		zap.String("status", v.Status),
		zap.Float64("score", v.AnomalyScore),
	)
	return nil
}
