// Package common provides shared utilities for Sectorlens
package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Sectorlens
type Config struct {
	Environment string         `toml:"environment"`
	Server      ServerConfig   `toml:"server"`
	Clients     ClientsConfig  `toml:"clients"`
	Analysis    AnalysisConfig `toml:"analysis"`
	Logging     LoggingConfig  `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	EODHD EODHDConfig `toml:"eodhd"`
}

// EODHDConfig holds EODHD API configuration
type EODHDConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
	Retries   int    `toml:"retries"`
}

// GetTimeout parses and returns the timeout duration
func (c *EODHDConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// AnalysisConfig holds the analysis policy parameters.
type AnalysisConfig struct {
	// ThresholdFraction flags a holding when its CAGR falls below this
	// fraction of the portfolio CAGR.
	ThresholdFraction float64 `toml:"threshold_fraction"`
	RiskFreeRate      float64 `toml:"risk_free_rate"`
	TradingPeriods    int     `toml:"trading_periods"`
	LookbackYears     int     `toml:"lookback_years"`
	// TopSectors limits replacement candidates to the N best benchmark sectors.
	TopSectors int `toml:"top_sectors"`
	// OverweightLimit marks a sector ineligible for replacement suggestions
	// once the portfolio allocates at least this weight to it.
	OverweightLimit float64 `toml:"overweight_limit"`
	// MarketIndex is the ticker used for portfolio beta. Empty disables beta.
	MarketIndex string `toml:"market_index"`
	// SectorETFs is the fixed reference list of sector name -> benchmark ETF.
	SectorETFs map[string]string `toml:"sector_etfs"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// DefaultSectorETFs is the reference benchmark set: NSE sector ETFs used as
// sector performance proxies.
func DefaultSectorETFs() map[string]string {
	return map[string]string{
		"Banking":        "NSEBANK.NS",
		"IT":             "NSEIT.NS",
		"Pharma":         "NSEPHARMA.NS",
		"Energy":         "NSEOIL.NS",
		"FMCG":           "NSEFMCG.NS",
		"Infrastructure": "NSEINFRA.NS",
		"Auto":           "NSEAUTO.NS",
		"Metal":          "NSEMETAL.NS",
		"Finance":        "NSEFIN.NS",
	}
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Clients: ClientsConfig{
			EODHD: EODHDConfig{
				BaseURL:   "https://eodhd.com/api",
				RateLimit: 10,
				Timeout:   "30s",
				Retries:   3,
			},
		},
		Analysis: AnalysisConfig{
			ThresholdFraction: 0.30,
			RiskFreeRate:      0,
			TradingPeriods:    252,
			LookbackYears:     5,
			TopSectors:        3,
			OverweightLimit:   0.30,
			MarketIndex:       "NSEI.INDX",
			SectorETFs:        DefaultSectorETFs(),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	// Apply environment overrides
	applyEnvOverrides(config)

	// Validate analysis parameters
	if err := validateAnalysis(&config.Analysis); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("SECTORLENS_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("SECTORLENS_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("SECTORLENS_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("SECTORLENS_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if key := os.Getenv("SECTORLENS_EODHD_API_KEY"); key != "" {
		config.Clients.EODHD.APIKey = key
	}
}

// validateAnalysis rejects parameter values the pipeline cannot work with.
func validateAnalysis(a *AnalysisConfig) error {
	if a.ThresholdFraction < 0 || a.ThresholdFraction > 1 {
		return fmt.Errorf("analysis.threshold_fraction must be in [0,1], got %v", a.ThresholdFraction)
	}
	if a.TradingPeriods <= 0 {
		return fmt.Errorf("analysis.trading_periods must be positive, got %d", a.TradingPeriods)
	}
	if a.LookbackYears <= 0 {
		return fmt.Errorf("analysis.lookback_years must be positive, got %d", a.LookbackYears)
	}
	if a.TopSectors <= 0 {
		return fmt.Errorf("analysis.top_sectors must be positive, got %d", a.TopSectors)
	}
	if a.OverweightLimit <= 0 {
		return fmt.Errorf("analysis.overweight_limit must be positive, got %v", a.OverweightLimit)
	}
	if len(a.SectorETFs) == 0 {
		a.SectorETFs = DefaultSectorETFs()
	}
	return nil
}
