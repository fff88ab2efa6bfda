package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures the settings required to boot the triage service.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Model      ModelConfig      `yaml:"model"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ServerConfig controls the HTTP listener behaviour.
type ServerConfig struct {
	Address         string        `yaml:"address"`
	MetricsAddress  string        `yaml:"metricsAddress"`
	GracefulTimeout time.Duration `yaml:"gracefulTimeout"`
}

// ModelConfig configures access to the external classification service.
type ModelConfig struct {
	BaseURL     string        `yaml:"baseURL"`
	PredictPath string        `yaml:"predictPath"`
	HealthPath  string        `yaml:"healthPath"`
	Timeout     time.Duration `yaml:"timeout"`
}

// ClassifierConfig controls default strategy selection.
type ClassifierConfig struct {
	// Mode is auto, service, or heuristic. Requests may override it per batch.
	Mode string `yaml:"mode"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Load initialises Config from a YAML file and optional environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("EXOSIFT_CONFIG")
	}

	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %s not found: %w", path, err)
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	return &cfg, nil
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Address:         ":8080",
			MetricsAddress:  ":2112",
			GracefulTimeout: 10 * time.Second,
		},
		Model: ModelConfig{
			PredictPath: "/predict",
			HealthPath:  "/health",
			Timeout:     30 * time.Second,
		},
		Classifier: ClassifierConfig{Mode: "auto"},
		Logging:    LoggingConfig{Level: "info", JSON: false},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("EXOSIFT_SERVER_ADDRESS"); v != "" {
		cfg.Server.Address = v
	}
	if v := os.Getenv("EXOSIFT_METRICS_ADDRESS"); v != "" {
		cfg.Server.MetricsAddress = v
	}
	if v := os.Getenv("EXOSIFT_MODEL_BASE_URL"); v != "" {
		cfg.Model.BaseURL = v
	}
	if v := os.Getenv("EXOSIFT_MODEL_PREDICT_PATH"); v != "" {
		cfg.Model.PredictPath = v
	}
	if v := os.Getenv("EXOSIFT_MODEL_HEALTH_PATH"); v != "" {
		cfg.Model.HealthPath = v
	}
	if v := os.Getenv("EXOSIFT_MODEL_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Model.Timeout = d
		}
	}
	if v := os.Getenv("EXOSIFT_CLASSIFIER_MODE"); v != "" {
		cfg.Classifier.Mode = v
	}
	if v := os.Getenv("EXOSIFT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("EXOSIFT_LOG_FORMAT"); strings.EqualFold(v, "json") {
		cfg.Logging.JSON = true
	}
}
