package interfaces

import (
	"context"
	"time"

	"github.com/bobmcallan/sectorlens/internal/models"
)

// AnalyzeOptions controls one analysis run.
type AnalyzeOptions struct {
	// From/To bound the historical window. Zero values default to the
	// configured lookback period ending today.
	From time.Time
	To   time.Time
}

// AnalyzerService runs the full analysis pipeline for one portfolio.
type AnalyzerService interface {
	// Analyze fetches prices and sector metadata, computes statistics,
	// flags underperformers, and assembles the report. Per-ticker data
	// failures are recorded in the report, not returned as errors.
	Analyze(ctx context.Context, portfolio *models.Portfolio, opts AnalyzeOptions) (*models.AnalysisReport, error)

	// SectorPerformance computes benchmark CAGR for the reference sector
	// ETF list, sorted descending.
	SectorPerformance(ctx context.Context, opts AnalyzeOptions) ([]models.SectorBenchmark, error)
}
