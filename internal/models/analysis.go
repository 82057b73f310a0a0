package models

import "time"

// UnknownSector is the bucket for holdings the gateway cannot classify.
// Unresolved tickers land here instead of being dropped.
const UnknownSector = "Unknown"

// ReturnMetrics holds the risk/return statistics derived from one price series.
type ReturnMetrics struct {
	CAGR       float64 `json:"cagr"`
	Volatility float64 `json:"volatility"`
	Sharpe     float64 `json:"sharpe"`
}

// HoldingMetrics pairs a holding with its computed return metrics.
type HoldingMetrics struct {
	Ticker  string        `json:"ticker"`
	Weight  float64       `json:"weight"`
	Sector  string        `json:"sector"`
	Metrics ReturnMetrics `json:"metrics"`
}

// SectorAllocation maps sector name to the aggregated portfolio weight.
// Weights are raw sums of holding weights, not renormalized.
type SectorAllocation map[string]float64

// SectorBenchmark is the computed performance of one sector's reference ETF.
type SectorBenchmark struct {
	Sector string  `json:"sector"`
	Ticker string  `json:"ticker"`
	CAGR   float64 `json:"cagr"`
}

// UnderperformerFlag marks a holding whose CAGR fell below the configured
// fraction of the portfolio CAGR.
type UnderperformerFlag struct {
	Ticker        string  `json:"ticker"`
	HoldingCAGR   float64 `json:"holding_cagr"`
	PortfolioCAGR float64 `json:"portfolio_cagr"`
}

// ReplacementSuggestion proposes a benchmark ETF as a substitute for a
// flagged holding.
type ReplacementSuggestion struct {
	OriginalTicker  string  `json:"original_ticker"`
	SuggestedTicker string  `json:"suggested_ticker"`
	SuggestedSector string  `json:"suggested_sector"`
	SectorCAGR      float64 `json:"sector_cagr"`
}

// RiskMetrics holds portfolio-level risk statistics beyond volatility.
type RiskMetrics struct {
	VaR95 float64 `json:"var_95"`
	// Beta versus the configured market index; nil when the index series
	// is unavailable or beta is disabled.
	Beta *float64 `json:"beta,omitempty"`
}

// StressResult is the outcome of one shock scenario applied to the
// portfolio's daily returns.
type StressResult struct {
	Scenario          string  `json:"scenario"`
	BaseMeanReturn    float64 `json:"base_mean_return"`
	ShockedMeanReturn float64 `json:"shocked_mean_return"`
	Impact            float64 `json:"impact"`
}

// GrowthPoint is one point of the normalized cumulative portfolio value
// series, for the presentation layer to chart.
type GrowthPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// TickerIssue records a per-ticker failure that did not abort the run.
type TickerIssue struct {
	Ticker string `json:"ticker"`
	Stage  string `json:"stage"`
	Error  string `json:"error"`
}

// AnalysisReport is the immutable result of one analysis run.
type AnalysisReport struct {
	GeneratedAt time.Time        `json:"generated_at"`
	From        time.Time        `json:"from"`
	To          time.Time        `json:"to"`
	Portfolio   ReturnMetrics    `json:"portfolio"`
	Holdings    []HoldingMetrics `json:"holdings"`
	Allocation  SectorAllocation `json:"allocation"`
	// Benchmarks are sorted by CAGR descending.
	Benchmarks  []SectorBenchmark       `json:"benchmarks"`
	Flags       []UnderperformerFlag    `json:"flags"`
	Suggestions []ReplacementSuggestion `json:"suggestions"`
	Risk        RiskMetrics             `json:"risk"`
	Stress      []StressResult          `json:"stress"`
	Correlation CorrelationMatrix       `json:"correlation"`
	Growth      []GrowthPoint           `json:"growth"`
	Issues      []TickerIssue           `json:"issues"`
	Warnings    []string                `json:"warnings,omitempty"`
}

// CorrelationMatrix holds pairwise correlations of holding daily returns.
// Tickers gives the row/column order of Values.
type CorrelationMatrix struct {
	Tickers []string    `json:"tickers"`
	Values  [][]float64 `json:"values"`
}
