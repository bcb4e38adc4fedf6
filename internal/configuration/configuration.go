package configuration

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"livescore/internal/score"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. LIVESCORE_SERVER_ADDRESS.
const EnvPrefix = "LIVESCORE"

// AppConfig represents the complete application configuration.
type AppConfig struct {
	// Logger: logger component configuration
	Logger LoggerConfig `mapstructure:"logger"`
	// Server: HTTP server configuration
	Server ServerConfig `mapstructure:"server"`
	// Analysis: scoring and tagging configuration
	Analysis AnalysisConfig `mapstructure:"analysis"`
	// Archive: scored products archive configuration
	Archive ArchiveConfig `mapstructure:"archive"`
}

// LoggerConfig defines logging settings.
type LoggerConfig struct {
	// Level is one of debug, info, warn, warning, error.
	// Value is case-insensitive but checked in lowercase.
	Level string `mapstructure:"level"`
}

// ServerConfig contains HTTP server parameters.
type ServerConfig struct {
	// Address: address and port where the server will listen (e.g., ":8080").
	Address string `mapstructure:"address"`
	// AllowedOrigins: CORS origins; a trailing "*" matches any suffix.
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	// Static: path to directory with static files served by the server.
	// Can be empty if static serving is not required.
	Static string `mapstructure:"static"`
}

// AnalysisConfig defines scoring parameters.
type AnalysisConfig struct {
	// Rules: path to a YAML tag rule table. The built-in table is used when empty.
	Rules string `mapstructure:"rules"`
	// HistoryLength: number of snapshots kept per room.
	HistoryLength int `mapstructure:"history_length"`
	// HistoryTtl: idle time after which a room's history is dropped; 0 disables expiry.
	// Example: "5m", "1h", "24h".
	HistoryTtl time.Duration `mapstructure:"history_ttl"`
	// Thresholds: cutoffs shared by scoring, tagging and classification.
	Thresholds score.Thresholds `mapstructure:"thresholds"`
	// Weights: multipliers of the score terms.
	Weights score.Weights `mapstructure:"weights"`
}

// ArchiveConfig defines the scored products archive
type ArchiveConfig struct {
	// Archive file path (optional)
	File string `mapstructure:"file"`
	// Maximal archive file size in megabytes (default 100)
	Size int `mapstructure:"size"`
	// Number of rotated archive files (default 20)
	Amount int `mapstructure:"amount"`
}

// Validate checks the correctness of the entire application configuration.
// Calls validation for each nested structure and returns the first detected error.
func (c *AppConfig) Validate() error {
	if err := c.Logger.Validate(); err != nil {
		return err
	}

	if err := c.Server.Validate(); err != nil {
		return err
	}

	if err := c.Analysis.Validate(); err != nil {
		return err
	}

	return c.Archive.Validate()
}

// Validate checks that the log level is one of debug, info, warn, warning, error (case-insensitive).
func (l *LoggerConfig) Validate() error {
	if l.Level == "" {
		return errors.New("logger.level: must be specified")
	}

	valid := map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true}
	if !valid[strings.ToLower(l.Level)] {
		return fmt.Errorf("logger.level: unsupported level '%s'", l.Level)
	}

	return nil
}

// Validate checks the correctness of the server configuration.
func (n *ServerConfig) Validate() error {
	if n.Address == "" {
		return errors.New("server.address: must be specified")
	}

	return nil
}

// Validate checks history limits, thresholds and weights.
func (a *AnalysisConfig) Validate() error {
	if a.HistoryLength <= 0 {
		return errors.New("analysis.history_length: must be positive")
	}

	if a.HistoryTtl < 0 {
		return errors.New("analysis.history_ttl: must not be negative")
	}

	if err := a.Thresholds.Validate(); err != nil {
		return fmt.Errorf("analysis.%w", err)
	}

	if err := a.Weights.Validate(); err != nil {
		return fmt.Errorf("analysis.%w", err)
	}

	return nil
}

// Validate archive parameters
func (d *ArchiveConfig) Validate() error {
	if d.Size < 0 {
		return errors.New("archive.size: must not be negative")
	}

	if d.Amount < 0 {
		return errors.New("archive.amount: must not be negative")
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.allowed_origins", []string{"chrome-extension://*"})

	v.SetDefault("analysis.history_length", 10)
	v.SetDefault("analysis.history_ttl", "1h")

	t := score.DefaultThresholds()
	v.SetDefault("analysis.thresholds.min_exposure", t.MinExposure)
	v.SetDefault("analysis.thresholds.min_clicks", t.MinClicks)
	v.SetDefault("analysis.thresholds.exposure_high", t.ExposureHigh)
	v.SetDefault("analysis.thresholds.clicks_high", t.ClicksHigh)
	v.SetDefault("analysis.thresholds.click_rate_good", t.ClickRateGood)
	v.SetDefault("analysis.thresholds.conv_rate_good", t.ConvRateGood)
	v.SetDefault("analysis.thresholds.gpm_high", t.GPMHigh)
	v.SetDefault("analysis.thresholds.sales_high", t.SalesHigh)
	v.SetDefault("analysis.thresholds.transaction_amount_high", t.TransactionAmountHigh)
	v.SetDefault("analysis.thresholds.hot_score_min", t.HotScoreMin)
	v.SetDefault("analysis.thresholds.potential_score_min", t.PotentialScoreMin)

	w := score.DefaultWeights()
	v.SetDefault("analysis.weights.click_rate", w.ClickRate)
	v.SetDefault("analysis.weights.conv_rate", w.ConvRate)
	v.SetDefault("analysis.weights.gpm", w.GPM)
	v.SetDefault("analysis.weights.orders", w.Orders)
	v.SetDefault("analysis.weights.sales", w.Sales)
	v.SetDefault("analysis.weights.revenue", w.Revenue)

	v.SetDefault("archive.size", 100)
	v.SetDefault("archive.amount", 20)
}

// LoadConfig loads configuration from the specified YAML file using Viper.
// Every key may be overridden by an environment variable with the LIVESCORE_
// prefix, dots replaced by underscores (LIVESCORE_ANALYSIS_HISTORY_LENGTH).
// Keys absent from both take their defaults.
//
// Returns an error if the file is not readable, cannot be decoded, or one of
// the sections fails validation.
func LoadConfig(configPath string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config AppConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}
