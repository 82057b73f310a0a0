// Package sector resolves holdings to sectors and benchmarks sector
// performance against the reference ETF list.
package sector

import (
	"context"
	"sort"
	"time"

	"github.com/bobmcallan/sectorlens/internal/common"
	"github.com/bobmcallan/sectorlens/internal/interfaces"
	"github.com/bobmcallan/sectorlens/internal/models"
	"github.com/bobmcallan/sectorlens/internal/services/stats"
)

// Service implements sector resolution and benchmark aggregation.
type Service struct {
	client interfaces.MarketDataClient
	etfs   map[string]string // sector name -> benchmark ETF ticker
	logger *common.Logger
}

// NewService creates a new sector service.
func NewService(client interfaces.MarketDataClient, etfs map[string]string, logger *common.Logger) *Service {
	return &Service{
		client: client,
		etfs:   etfs,
		logger: logger,
	}
}

// ETFTicker returns the benchmark ETF for a sector, "" when unmapped.
func (s *Service) ETFTicker(sector string) string {
	return s.etfs[sector]
}

// ResolveSectors looks up the sector for each distinct ticker in the
// portfolio. Lookups are cached within the run so duplicate rows cost one
// gateway call. Tickers the gateway cannot classify (or fails on) land in
// the Unknown bucket; gateway failures are additionally reported as issues.
func (s *Service) ResolveSectors(ctx context.Context, p *models.Portfolio) (map[string]string, []models.TickerIssue) {
	sectors := make(map[string]string)
	var issues []models.TickerIssue

	for _, h := range p.Holdings {
		if _, done := sectors[h.Ticker]; done {
			continue
		}

		profile, err := s.client.GetProfile(ctx, h.Ticker)
		if err != nil {
			s.logger.Warn().Str("ticker", h.Ticker).Err(err).Msg("Sector lookup failed")
			sectors[h.Ticker] = models.UnknownSector
			issues = append(issues, models.TickerIssue{
				Ticker: h.Ticker,
				Stage:  "sector",
				Error:  err.Error(),
			})
			continue
		}

		if profile.Sector == "" {
			sectors[h.Ticker] = models.UnknownSector
			continue
		}
		sectors[h.Ticker] = profile.Sector
	}

	return sectors, issues
}

// Allocate aggregates raw holding weights per sector. Weights are summed
// as-is, without renormalization, so the allocation total always equals the
// portfolio's total weight.
func Allocate(p *models.Portfolio, sectors map[string]string) models.SectorAllocation {
	allocation := make(models.SectorAllocation)
	for _, h := range p.Holdings {
		sec, ok := sectors[h.Ticker]
		if !ok {
			sec = models.UnknownSector
		}
		allocation[sec] += h.Weight
	}
	return allocation
}

// Benchmarks computes CAGR for every reference sector ETF over the window,
// sorted descending. Sectors whose ETF data is unavailable or degenerate are
// omitted from the ranking and reported as issues.
func (s *Service) Benchmarks(ctx context.Context, from, to time.Time) ([]models.SectorBenchmark, []models.TickerIssue) {
	var benchmarks []models.SectorBenchmark
	var issues []models.TickerIssue

	// Deterministic gateway call order.
	names := make([]string, 0, len(s.etfs))
	for sector := range s.etfs {
		names = append(names, sector)
	}
	sort.Strings(names)

	for _, sector := range names {
		ticker := s.etfs[sector]

		series, err := s.client.GetEOD(ctx, ticker, interfaces.WithDateRange(from, to))
		if err != nil {
			s.logger.Warn().Str("sector", sector).Str("ticker", ticker).Err(err).Msg("Benchmark fetch failed")
			issues = append(issues, models.TickerIssue{Ticker: ticker, Stage: "benchmark", Error: err.Error()})
			continue
		}

		cagr, err := stats.CAGR(series.AdjCloses(), series.SpanYears())
		if err != nil {
			issues = append(issues, models.TickerIssue{Ticker: ticker, Stage: "benchmark", Error: err.Error()})
			continue
		}

		benchmarks = append(benchmarks, models.SectorBenchmark{
			Sector: sector,
			Ticker: ticker,
			CAGR:   cagr,
		})
	}

	sort.SliceStable(benchmarks, func(i, j int) bool {
		return benchmarks[i].CAGR > benchmarks[j].CAGR
	})

	return benchmarks, issues
}
