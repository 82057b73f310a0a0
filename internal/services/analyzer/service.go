// Package analyzer orchestrates the analysis pipeline: prices, statistics,
// sector aggregation, underperformer detection, advice, and report assembly.
package analyzer

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/bobmcallan/sectorlens/internal/common"
	"github.com/bobmcallan/sectorlens/internal/interfaces"
	"github.com/bobmcallan/sectorlens/internal/models"
	"github.com/bobmcallan/sectorlens/internal/services/advisor"
	"github.com/bobmcallan/sectorlens/internal/services/sector"
	"github.com/bobmcallan/sectorlens/internal/services/stats"
)

// Service implements AnalyzerService
type Service struct {
	client interfaces.MarketDataClient
	sector *sector.Service
	config common.AnalysisConfig
	logger *common.Logger
}

// NewService creates a new analyzer service
func NewService(
	client interfaces.MarketDataClient,
	sectorSvc *sector.Service,
	config common.AnalysisConfig,
	logger *common.Logger,
) *Service {
	return &Service{
		client: client,
		sector: sectorSvc,
		config: config,
		logger: logger,
	}
}

// window resolves the analysis date range from options and the configured
// lookback period.
func (s *Service) window(opts interfaces.AnalyzeOptions) (time.Time, time.Time) {
	to := opts.To
	if to.IsZero() {
		to = time.Now().Truncate(24 * time.Hour)
	}
	from := opts.From
	if from.IsZero() {
		from = to.AddDate(-s.config.LookbackYears, 0, 0)
	}
	return from, to
}

// SectorPerformance computes benchmark CAGR for the reference sector ETF
// list, sorted descending.
func (s *Service) SectorPerformance(ctx context.Context, opts interfaces.AnalyzeOptions) ([]models.SectorBenchmark, error) {
	from, to := s.window(opts)
	benchmarks, issues := s.sector.Benchmarks(ctx, from, to)
	for _, issue := range issues {
		s.logger.Warn().Str("ticker", issue.Ticker).Str("error", issue.Error).Msg("Benchmark unavailable")
	}
	if len(benchmarks) == 0 {
		return nil, fmt.Errorf("no sector benchmark data available")
	}
	return benchmarks, nil
}

// Analyze runs the full pipeline for one portfolio and assembles the report.
// Per-ticker failures are recorded in the report and do not abort the run;
// the run fails only when no holding can be analyzed at all.
func (s *Service) Analyze(ctx context.Context, p *models.Portfolio, opts interfaces.AnalyzeOptions) (*models.AnalysisReport, error) {
	if p == nil || len(p.Holdings) == 0 {
		return nil, &models.InputFormatError{Msg: "empty portfolio"}
	}

	from, to := s.window(opts)
	s.logger.Info().
		Int("holdings", len(p.Holdings)).
		Str("from", from.Format("2006-01-02")).
		Str("to", to.Format("2006-01-02")).
		Msg("Analyzing portfolio")

	report := &models.AnalysisReport{
		GeneratedAt: time.Now(),
		From:        from,
		To:          to,
	}

	// Step 1: resolve sectors and aggregate the allocation over every
	// holding, including those whose prices later fail to load.
	sectors, sectorIssues := s.sector.ResolveSectors(ctx, p)
	report.Issues = append(report.Issues, sectorIssues...)
	report.Allocation = sector.Allocate(p, sectors)

	// Step 2: fetch price series once per distinct ticker.
	series := make(map[string]*models.EODResponse)
	for _, h := range p.Holdings {
		if _, done := series[h.Ticker]; done {
			continue
		}
		resp, err := s.client.GetEOD(ctx, h.Ticker, interfaces.WithDateRange(from, to))
		if err != nil {
			s.logger.Warn().Str("ticker", h.Ticker).Err(err).Msg("Price fetch failed, skipping holding")
			report.Issues = append(report.Issues, models.TickerIssue{
				Ticker: h.Ticker,
				Stage:  "prices",
				Error:  err.Error(),
			})
			continue
		}
		series[h.Ticker] = resp
	}

	// Step 3: align the analyzable series on their common trading dates.
	aligned, dates := alignSeries(series)
	if len(dates) < 2 {
		return nil, &models.InsufficientDataError{Points: len(dates), Years: 0}
	}

	// Step 4: per-holding metrics from each holding's own aligned series.
	var analyzable []models.Holding
	for _, h := range p.Holdings {
		if _, ok := aligned[h.Ticker]; ok {
			analyzable = append(analyzable, h)
		}
	}
	if len(analyzable) == 0 {
		return nil, fmt.Errorf("no holdings could be analyzed")
	}

	years := dates[len(dates)-1].Sub(dates[0]).Hours() / 24 / 365.25

	tickerReturns := make(map[string][]float64)
	holdingCAGR := make(map[string]float64)
	for ticker, prices := range aligned {
		cagr, err := stats.CAGR(prices, years)
		if err != nil {
			report.Issues = append(report.Issues, models.TickerIssue{
				Ticker: ticker,
				Stage:  "statistics",
				Error:  err.Error(),
			})
			delete(aligned, ticker)
			continue
		}
		holdingCAGR[ticker] = cagr
		tickerReturns[ticker] = stats.DailyReturns(prices)
	}

	for _, h := range analyzable {
		cagr, ok := holdingCAGR[h.Ticker]
		if !ok {
			continue
		}
		returns := tickerReturns[h.Ticker]
		report.Holdings = append(report.Holdings, models.HoldingMetrics{
			Ticker: h.Ticker,
			Weight: h.Weight,
			Sector: sectors[h.Ticker],
			Metrics: models.ReturnMetrics{
				CAGR:       cagr,
				Volatility: stats.AnnualizedVolatility(returns, s.config.TradingPeriods),
				Sharpe:     stats.SharpeRatio(returns, s.config.RiskFreeRate, s.config.TradingPeriods),
			},
		})
	}
	if len(report.Holdings) == 0 {
		return nil, fmt.Errorf("no holdings could be analyzed")
	}

	// Step 5: portfolio daily returns as the weight-normalized sum of
	// per-ticker returns. Weights are normalized here only; the sector
	// allocation keeps raw weights.
	var totalWeight float64
	for _, hm := range report.Holdings {
		totalWeight += hm.Weight
	}
	if totalWeight <= 0 {
		return nil, &models.InputFormatError{Msg: "total portfolio weight is zero"}
	}
	if math.Abs(totalWeight-1) > 0.01 {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("holding weights sum to %.4f; normalized for return calculations", totalWeight))
	}

	portReturns := make([]float64, len(dates)-1)
	for _, hm := range report.Holdings {
		w := hm.Weight / totalWeight
		for i, r := range tickerReturns[hm.Ticker] {
			portReturns[i] += w * r
		}
	}

	index := stats.CumulativeIndex(portReturns)
	portfolioCAGR := math.Pow(index[len(index)-1], 1/years) - 1
	report.Portfolio = models.ReturnMetrics{
		CAGR:       portfolioCAGR,
		Volatility: stats.AnnualizedVolatility(portReturns, s.config.TradingPeriods),
		Sharpe:     stats.SharpeRatio(portReturns, s.config.RiskFreeRate, s.config.TradingPeriods),
	}

	report.Growth = make([]models.GrowthPoint, len(index))
	for i, v := range index {
		report.Growth[i] = models.GrowthPoint{Date: dates[i+1], Value: v}
	}

	// Step 6: sector benchmarks, ranked by CAGR.
	benchmarks, benchIssues := s.sector.Benchmarks(ctx, from, to)
	report.Issues = append(report.Issues, benchIssues...)
	report.Benchmarks = benchmarks

	// Step 7: flag underperformers and propose replacements.
	report.Flags = advisor.DetectUnderperformers(report.Holdings, portfolioCAGR, s.config.ThresholdFraction)
	report.Suggestions = advisor.SuggestReplacements(
		report.Flags, sectors, report.Allocation, benchmarks,
		s.config.TopSectors, s.config.OverweightLimit)

	// Step 8: risk metrics, stress scenarios, and holding correlations.
	report.Risk = s.riskMetrics(ctx, portReturns, dates, report)
	report.Stress = stats.RunStressTests(portReturns, stats.DefaultScenarios)
	report.Correlation = correlationFor(tickerReturns)

	s.logger.Info().
		Float64("cagr", report.Portfolio.CAGR).
		Int("flags", len(report.Flags)).
		Int("suggestions", len(report.Suggestions)).
		Int("issues", len(report.Issues)).
		Msg("Analysis complete")

	return report, nil
}

// riskMetrics computes VaR and, when a market index is configured, beta
// against it over the portfolio's trading dates.
func (s *Service) riskMetrics(ctx context.Context, portReturns []float64, dates []time.Time, report *models.AnalysisReport) models.RiskMetrics {
	risk := models.RiskMetrics{VaR95: stats.VaR95(portReturns)}

	if s.config.MarketIndex == "" {
		return risk
	}

	resp, err := s.client.GetEOD(ctx, s.config.MarketIndex,
		interfaces.WithDateRange(dates[0], dates[len(dates)-1]))
	if err != nil {
		s.logger.Warn().Str("ticker", s.config.MarketIndex).Err(err).Msg("Market index unavailable, beta skipped")
		report.Issues = append(report.Issues, models.TickerIssue{
			Ticker: s.config.MarketIndex,
			Stage:  "beta",
			Error:  err.Error(),
		})
		return risk
	}

	// Align index prices to the portfolio's dates.
	byDate := make(map[time.Time]float64, len(resp.Data))
	for _, bar := range resp.Data {
		byDate[bar.Date] = bar.AdjClose
	}
	indexPrices := make([]float64, 0, len(dates))
	for _, d := range dates {
		price, ok := byDate[d]
		if !ok {
			s.logger.Debug().Str("ticker", s.config.MarketIndex).Msg("Market index dates do not cover portfolio dates, beta skipped")
			return risk
		}
		indexPrices = append(indexPrices, price)
	}

	if beta, ok := stats.Beta(portReturns, stats.DailyReturns(indexPrices)); ok {
		risk.Beta = &beta
	}
	return risk
}

// alignSeries intersects the series' trading dates and returns per-ticker
// adjusted closes over the shared dates, plus the sorted dates themselves.
func alignSeries(series map[string]*models.EODResponse) (map[string][]float64, []time.Time) {
	if len(series) == 0 {
		return nil, nil
	}

	counts := make(map[time.Time]int)
	for _, resp := range series {
		for _, bar := range resp.Data {
			counts[bar.Date]++
		}
	}

	var dates []time.Time
	for d, n := range counts {
		if n == len(series) {
			dates = append(dates, d)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	aligned := make(map[string][]float64, len(series))
	for ticker, resp := range series {
		byDate := make(map[time.Time]float64, len(resp.Data))
		for _, bar := range resp.Data {
			byDate[bar.Date] = bar.AdjClose
		}
		prices := make([]float64, len(dates))
		for i, d := range dates {
			prices[i] = byDate[d]
		}
		aligned[ticker] = prices
	}

	return aligned, dates
}

// correlationFor builds the correlation matrix over the distinct analyzable
// tickers, sorted for a stable row order.
func correlationFor(tickerReturns map[string][]float64) models.CorrelationMatrix {
	tickers := make([]string, 0, len(tickerReturns))
	for t := range tickerReturns {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	return stats.CorrelationMatrix(tickers, tickerReturns)
}

// Ensure Service implements AnalyzerService
var _ interfaces.AnalyzerService = (*Service)(nil)
