package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/vynnydev/hospital-management-web-platform-sub011/internal/models"
)

type Config struct {
	Server   ServerConfig
	Analysis AnalysisConfig
	DB       DatabaseConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	RateLimitRPS int
}

type AnalysisConfig struct {
	MaxTransferDistanceKm float64
	Interval              time.Duration
	Workers               int
	MinLevelsFile         string
}

type DatabaseConfig struct {
	Path string
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_HOST", "localhost")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("RATE_LIMIT_RPS", 20)
	v.SetDefault("ANALYSIS_MAX_TRANSFER_DISTANCE_KM", 50.0)
	v.SetDefault("ANALYSIS_INTERVAL", time.Minute)
	v.SetDefault("ANALYSIS_WORKERS", 4)
	v.SetDefault("MIN_LEVELS_FILE", "")
	v.SetDefault("DB_PATH", "./data/hospital-network.db")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	cfg := &Config{
		Server: ServerConfig{
			Host:         v.GetString("SERVER_HOST"),
			Port:         v.GetInt("SERVER_PORT"),
			RateLimitRPS: v.GetInt("RATE_LIMIT_RPS"),
		},
		Analysis: AnalysisConfig{
			MaxTransferDistanceKm: v.GetFloat64("ANALYSIS_MAX_TRANSFER_DISTANCE_KM"),
			Interval:              v.GetDuration("ANALYSIS_INTERVAL"),
			Workers:               v.GetInt("ANALYSIS_WORKERS"),
			MinLevelsFile:         v.GetString("MIN_LEVELS_FILE"),
		},
		DB: DatabaseConfig{
			Path: v.GetString("DB_PATH"),
		},
		Logging: LoggingConfig{
			Level:  strings.ToLower(v.GetString("LOG_LEVEL")),
			Format: strings.ToLower(v.GetString("LOG_FORMAT")),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.RateLimitRPS < 1 {
		return fmt.Errorf("rate limit must be at least 1 req/s, got %d", c.Server.RateLimitRPS)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	if c.Analysis.MaxTransferDistanceKm <= 0 {
		return fmt.Errorf("max transfer distance must be positive, got %v", c.Analysis.MaxTransferDistanceKm)
	}
	if c.Analysis.Interval < 5*time.Second {
		return fmt.Errorf("analysis interval must be at least 5s")
	}
	if c.Analysis.Workers < 1 {
		return fmt.Errorf("analysis workers must be at least 1, got %d", c.Analysis.Workers)
	}

	return nil
}

// MinimumLevels returns the threshold table from MinLevelsFile, or the
// built-in defaults when no file is configured.
func (c *Config) MinimumLevels() (models.MinimumLevels, error) {
	if c.Analysis.MinLevelsFile == "" {
		return models.DefaultMinimumLevels(), nil
	}
	return LoadMinimumLevels(c.Analysis.MinLevelsFile)
}

// LoadMinimumLevels reads a YAML threshold table:
//
//	equipment:
//	  respirators: 0.30
//	supplies:
//	  medications: 10
func LoadMinimumLevels(path string) (models.MinimumLevels, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.MinimumLevels{}, fmt.Errorf("error reading minimum levels file: %w", err)
	}

	var levels models.MinimumLevels
	if err := yaml.Unmarshal(data, &levels); err != nil {
		return models.MinimumLevels{}, fmt.Errorf("error parsing minimum levels file %s: %w", path, err)
	}

	if len(levels.Equipment) == 0 && len(levels.Supplies) == 0 {
		return models.MinimumLevels{}, fmt.Errorf("minimum levels file %s defines no thresholds", path)
	}
	for resourceType, rate := range levels.Equipment {
		if rate < 0 || rate > 1 {
			return models.MinimumLevels{}, fmt.Errorf("equipment %s: minimum rate %v out of range [0, 1]", resourceType, rate)
		}
	}
	for resourceType, level := range levels.Supplies {
		if level < 0 {
			return models.MinimumLevels{}, fmt.Errorf("supplies %s: minimum level %d is negative", resourceType, level)
		}
	}

	return levels, nil
}
