// Package config loads runtime configuration from defaults, an optional
// config file and FACTORYGUARD_* environment variables.
package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds the settings shared by the training and serving paths.
// NoiseBound is deliberately a single knob: the humidity jitter applied at
// training time is persisted in the artifact and replayed at serving time.
type Config struct {
	DataPath   string `mapstructure:"data_path"`
	ModelPath  string `mapstructure:"model_path"`
	ListenAddr string `mapstructure:"listen_addr"`

	TempColumn string `mapstructure:"temp_column"`
	RPMColumn  string `mapstructure:"rpm_column"`

	Trees         int     `mapstructure:"trees"`
	SampleSize    int     `mapstructure:"sample_size"`
	Contamination float64 `mapstructure:"contamination"`
	Seed          int64   `mapstructure:"seed"`
	NoiseBound    float64 `mapstructure:"noise_bound"`
}

// Load reads configuration. file may be empty, in which case defaults plus
// environment variables apply.
func Load(file string) (Config, error) {
	v := viper.New()

	v.SetDefault("data_path", "data/predictive_maintenance.csv")
	v.SetDefault("model_path", "results/isolation_forest_model.gob")
	v.SetDefault("listen_addr", ":8000")
	v.SetDefault("temp_column", "Air temperature [K]")
	v.SetDefault("rpm_column", "Rotational speed [rpm]")
	v.SetDefault("trees", 100)
	v.SetDefault("sample_size", 256)
	v.SetDefault("contamination", 0.05)
	v.SetDefault("seed", 42)
	v.SetDefault("noise_bound", 0.5)

	v.SetEnvPrefix("FACTORYGUARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
