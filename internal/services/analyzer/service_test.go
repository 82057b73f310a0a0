package analyzer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/sectorlens/internal/clients/fixture"
	"github.com/bobmcallan/sectorlens/internal/common"
	"github.com/bobmcallan/sectorlens/internal/interfaces"
	"github.com/bobmcallan/sectorlens/internal/models"
	"github.com/bobmcallan/sectorlens/internal/services/sector"
)

var (
	seriesStart = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	testWindow  = interfaces.AnalyzeOptions{
		From: seriesStart,
		To:   seriesStart.AddDate(5, 0, 0),
	}
)

func testConfig(etfs map[string]string) common.AnalysisConfig {
	return common.AnalysisConfig{
		ThresholdFraction: 0.30,
		RiskFreeRate:      0,
		TradingPeriods:    252,
		LookbackYears:     5,
		TopSectors:        3,
		OverweightLimit:   0.30,
		SectorETFs:        etfs,
	}
}

func newTestService(client *fixture.Client, cfg common.AnalysisConfig) *Service {
	logger := common.NewSilentLogger()
	return NewService(client, sector.NewService(client, cfg.SectorETFs, logger), cfg, logger)
}

func TestAnalyze_EqualHoldingsNoFlags(t *testing.T) {
	client := fixture.NewClient()
	client.AddGrowthSeries("TCS.NS", seriesStart, 6, 100, 0.15)
	client.AddGrowthSeries("INFY.NS", seriesStart, 6, 200, 0.15)
	client.SetProfile("TCS.NS", "Tata Consultancy Services", "IT")
	client.SetProfile("INFY.NS", "Infosys", "IT")
	client.AddGrowthSeries("NSEIT.NS", seriesStart, 6, 100, 0.18)

	svc := newTestService(client, testConfig(map[string]string{"IT": "NSEIT.NS"}))

	p := &models.Portfolio{Holdings: []models.Holding{
		{Ticker: "TCS.NS", Weight: 0.5},
		{Ticker: "INFY.NS", Weight: 0.5},
	}}

	report, err := svc.Analyze(context.Background(), p, testWindow)
	require.NoError(t, err)

	// Two holdings with identical 15% CAGR yield portfolio CAGR 15% and no
	// flags at threshold 0.30.
	assert.InDelta(t, 0.15, report.Portfolio.CAGR, 1e-3)
	assert.Empty(t, report.Flags)
	assert.Empty(t, report.Suggestions)
	require.Len(t, report.Holdings, 2)
	for _, h := range report.Holdings {
		assert.InDelta(t, 0.15, h.Metrics.CAGR, 1e-3)
		assert.Equal(t, "IT", h.Sector)
	}
	assert.InDelta(t, 1.0, report.Allocation["IT"], 1e-12)
	assert.NotEmpty(t, report.Growth)
	assert.Empty(t, report.Issues)
}

func TestAnalyze_FlagsAndSuggestsReplacement(t *testing.T) {
	client := fixture.NewClient()
	client.AddGrowthSeries("A.NS", seriesStart, 6, 100, 0.20)
	client.AddGrowthSeries("B.NS", seriesStart, 6, 100, 0.18)
	client.AddGrowthSeries("LAG.NS", seriesStart, 6, 100, 0.005)
	client.SetProfile("A.NS", "Alpha", "IT")
	client.SetProfile("B.NS", "Bravo", "Banking")
	client.SetProfile("LAG.NS", "Laggard", "Pharma")

	etfs := map[string]string{
		"IT":      "NSEIT.NS",
		"Banking": "NSEBANK.NS",
		"Energy":  "NSEOIL.NS",
		"Pharma":  "NSEPHARMA.NS",
	}
	client.AddGrowthSeries("NSEIT.NS", seriesStart, 6, 100, 0.20)
	client.AddGrowthSeries("NSEBANK.NS", seriesStart, 6, 100, 0.15)
	client.AddGrowthSeries("NSEOIL.NS", seriesStart, 6, 100, 0.12)
	client.AddGrowthSeries("NSEPHARMA.NS", seriesStart, 6, 100, 0.01)

	svc := newTestService(client, testConfig(etfs))

	p := &models.Portfolio{Holdings: []models.Holding{
		{Ticker: "A.NS", Weight: 0.5},
		{Ticker: "B.NS", Weight: 0.3},
		{Ticker: "LAG.NS", Weight: 0.2},
	}}

	report, err := svc.Analyze(context.Background(), p, testWindow)
	require.NoError(t, err)

	require.Len(t, report.Flags, 1)
	assert.Equal(t, "LAG.NS", report.Flags[0].Ticker)
	assert.InDelta(t, 0.005, report.Flags[0].HoldingCAGR, 1e-3)

	// IT is overweight (0.5) and Banking sits at the limit (0.3); Energy is
	// the best remaining top sector, and never the holding's own sector.
	require.Len(t, report.Suggestions, 1)
	assert.Equal(t, "LAG.NS", report.Suggestions[0].OriginalTicker)
	assert.Equal(t, "Energy", report.Suggestions[0].SuggestedSector)
	assert.Equal(t, "NSEOIL.NS", report.Suggestions[0].SuggestedTicker)

	// Benchmarks sorted descending.
	require.Len(t, report.Benchmarks, 4)
	assert.Equal(t, "IT", report.Benchmarks[0].Sector)
	assert.Equal(t, "Pharma", report.Benchmarks[3].Sector)
}

func TestAnalyze_FailingTickerBecomesIssue(t *testing.T) {
	client := fixture.NewClient()
	client.AddGrowthSeries("TCS.NS", seriesStart, 6, 100, 0.15)
	client.SetProfile("TCS.NS", "Tata Consultancy Services", "IT")
	client.AddGrowthSeries("NSEIT.NS", seriesStart, 6, 100, 0.18)
	// GHOST.NS has no price series.

	svc := newTestService(client, testConfig(map[string]string{"IT": "NSEIT.NS"}))

	p := &models.Portfolio{Holdings: []models.Holding{
		{Ticker: "TCS.NS", Weight: 0.5},
		{Ticker: "GHOST.NS", Weight: 0.5},
	}}

	report, err := svc.Analyze(context.Background(), p, testWindow)
	require.NoError(t, err, "one failing ticker must not abort the run")

	require.Len(t, report.Holdings, 1)
	assert.Equal(t, "TCS.NS", report.Holdings[0].Ticker)

	var priceIssue bool
	for _, issue := range report.Issues {
		if issue.Ticker == "GHOST.NS" && issue.Stage == "prices" {
			priceIssue = true
		}
	}
	assert.True(t, priceIssue, "missing series must surface as a prices issue: %+v", report.Issues)

	// The unresolvable ticker still participates in the allocation.
	assert.InDelta(t, 0.5, report.Allocation[models.UnknownSector], 1e-12)
}

func TestAnalyze_WeightNormalizationWarning(t *testing.T) {
	client := fixture.NewClient()
	client.AddGrowthSeries("TCS.NS", seriesStart, 6, 100, 0.15)
	client.AddGrowthSeries("INFY.NS", seriesStart, 6, 100, 0.15)
	client.SetProfile("TCS.NS", "Tata Consultancy Services", "IT")
	client.SetProfile("INFY.NS", "Infosys", "IT")
	client.AddGrowthSeries("NSEIT.NS", seriesStart, 6, 100, 0.18)

	svc := newTestService(client, testConfig(map[string]string{"IT": "NSEIT.NS"}))

	p := &models.Portfolio{Holdings: []models.Holding{
		{Ticker: "TCS.NS", Weight: 2},
		{Ticker: "INFY.NS", Weight: 2},
	}}

	report, err := svc.Analyze(context.Background(), p, testWindow)
	require.NoError(t, err)

	// Return math normalizes; the sector allocation keeps raw weights.
	assert.InDelta(t, 0.15, report.Portfolio.CAGR, 1e-3)
	assert.InDelta(t, 4.0, report.Allocation["IT"], 1e-12)
	require.NotEmpty(t, report.Warnings)
	assert.Contains(t, report.Warnings[0], "normalized")
}

// oscillatingSeries builds a daily series whose returns alternate between
// +2% and -1%, giving the non-zero variance beta needs.
func oscillatingSeries(ticker string, start time.Time, days int, base float64) *models.EODResponse {
	bars := make([]models.EODBar, days)
	price := base
	for i := 0; i < days; i++ {
		bars[i] = models.EODBar{Date: start.AddDate(0, 0, i), AdjClose: price, Close: price}
		if i%2 == 0 {
			price *= 1.02
		} else {
			price *= 0.99
		}
	}
	return &models.EODResponse{Ticker: ticker, Data: bars}
}

func TestAnalyze_BetaAgainstMarketIndex(t *testing.T) {
	client := fixture.NewClient()
	// Holding and market index share the identical return path, so beta is 1.
	client.SetSeries("TCS.NS", oscillatingSeries("TCS.NS", seriesStart, 400, 100))
	client.SetProfile("TCS.NS", "Tata Consultancy Services", "IT")
	client.AddGrowthSeries("NSEIT.NS", seriesStart, 6, 100, 0.18)
	client.SetSeries("NSEI.INDX", oscillatingSeries("NSEI.INDX", seriesStart, 400, 10000))

	cfg := testConfig(map[string]string{"IT": "NSEIT.NS"})
	cfg.MarketIndex = "NSEI.INDX"
	svc := newTestService(client, cfg)

	p := &models.Portfolio{Holdings: []models.Holding{{Ticker: "TCS.NS", Weight: 1}}}

	report, err := svc.Analyze(context.Background(), p, testWindow)
	require.NoError(t, err)

	require.NotNil(t, report.Risk.Beta)
	assert.InDelta(t, 1.0, *report.Risk.Beta, 1e-6)
	assert.Len(t, report.Stress, 2)
}

func TestAnalyze_EmptyPortfolio(t *testing.T) {
	svc := newTestService(fixture.NewClient(), testConfig(map[string]string{"IT": "NSEIT.NS"}))

	_, err := svc.Analyze(context.Background(), &models.Portfolio{}, testWindow)
	require.Error(t, err)
}

func TestSectorPerformance(t *testing.T) {
	client := fixture.NewClient()
	client.AddGrowthSeries("NSEIT.NS", seriesStart, 6, 100, 0.18)
	client.AddGrowthSeries("NSEBANK.NS", seriesStart, 6, 100, 0.14)

	etfs := map[string]string{"IT": "NSEIT.NS", "Banking": "NSEBANK.NS"}
	svc := newTestService(client, testConfig(etfs))

	benchmarks, err := svc.SectorPerformance(context.Background(), testWindow)
	require.NoError(t, err)
	require.Len(t, benchmarks, 2)
	assert.Equal(t, "IT", benchmarks[0].Sector)
}
