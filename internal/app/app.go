// Package app wires configuration, clients, and services into a runnable
// application core.
package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/sectorlens/internal/clients/eodhd"
	"github.com/bobmcallan/sectorlens/internal/clients/fixture"
	"github.com/bobmcallan/sectorlens/internal/common"
	"github.com/bobmcallan/sectorlens/internal/interfaces"
	"github.com/bobmcallan/sectorlens/internal/services/analyzer"
	"github.com/bobmcallan/sectorlens/internal/services/sector"
)

// App holds all initialized services and clients.
type App struct {
	Config        *common.Config
	Logger        *common.Logger
	MarketClient  interfaces.MarketDataClient
	SectorService *sector.Service
	Analyzer      interfaces.AnalyzerService
	StartupTime   time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes configuration, logging, the market data client, and
// the analysis services. configPath may be empty, in which case the default
// resolution logic is used.
func NewApp(configPath string) (*App, error) {
	common.LoadVersionFromFile()

	binDir := getBinaryDir()

	// Load configuration - check provided path, SECTORLENS_CONFIG, then
	// binary dir, then fallback
	if configPath == "" {
		configPath = os.Getenv("SECTORLENS_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "sectorlens.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/sectorlens.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	// Initialize the market data client. Without an API key the service
	// runs against the deterministic fixture so offline demo runs work.
	var marketClient interfaces.MarketDataClient
	if config.Clients.EODHD.APIKey != "" {
		marketClient = eodhd.NewClient(
			config.Clients.EODHD.APIKey,
			eodhd.WithBaseURL(config.Clients.EODHD.BaseURL),
			eodhd.WithRateLimit(config.Clients.EODHD.RateLimit),
			eodhd.WithTimeout(config.Clients.EODHD.GetTimeout()),
			eodhd.WithRetries(config.Clients.EODHD.Retries),
			eodhd.WithLogger(logger),
		)
	} else {
		logger.Warn().Msg("EODHD API key not configured - serving deterministic fixture data")
		marketClient = fixture.NewDemoClient()
	}

	sectorService := sector.NewService(marketClient, config.Analysis.SectorETFs, logger)
	analyzerService := analyzer.NewService(marketClient, sectorService, config.Analysis, logger)

	return &App{
		Config:        config,
		Logger:        logger,
		MarketClient:  marketClient,
		SectorService: sectorService,
		Analyzer:      analyzerService,
		StartupTime:   time.Now(),
	}, nil
}
