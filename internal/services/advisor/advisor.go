// Package advisor flags underperforming holdings and proposes replacements
// from top-performing benchmark sectors.
package advisor

import "github.com/bobmcallan/sectorlens/internal/models"

// DetectUnderperformers flags holdings whose CAGR falls below
// thresholdFraction of the portfolio CAGR, preserving portfolio order.
//
// When the portfolio CAGR is zero or negative there is no meaningful
// benchmark to underperform, so nothing is flagged.
func DetectUnderperformers(holdings []models.HoldingMetrics, portfolioCAGR, thresholdFraction float64) []models.UnderperformerFlag {
	if portfolioCAGR <= 0 {
		return nil
	}

	var flags []models.UnderperformerFlag
	for _, h := range holdings {
		if h.Metrics.CAGR < thresholdFraction*portfolioCAGR {
			flags = append(flags, models.UnderperformerFlag{
				Ticker:        h.Ticker,
				HoldingCAGR:   h.Metrics.CAGR,
				PortfolioCAGR: portfolioCAGR,
			})
		}
	}
	return flags
}

// SuggestReplacements proposes, for each flagged holding, the benchmark ETF
// of the highest-CAGR sector among the top N that (a) is not the holding's
// own sector and (b) the portfolio is not already overweight in. A flag with
// no eligible sector simply gets no suggestion.
//
// benchmarks must be sorted by CAGR descending; sectors maps ticker to the
// holding's resolved sector.
func SuggestReplacements(
	flags []models.UnderperformerFlag,
	sectors map[string]string,
	allocation models.SectorAllocation,
	benchmarks []models.SectorBenchmark,
	topSectors int,
	overweightLimit float64,
) []models.ReplacementSuggestion {
	if topSectors > len(benchmarks) {
		topSectors = len(benchmarks)
	}
	top := benchmarks[:topSectors]

	var suggestions []models.ReplacementSuggestion
	for _, flag := range flags {
		ownSector := sectors[flag.Ticker]

		for _, b := range top {
			if b.Sector == ownSector {
				continue
			}
			if allocation[b.Sector] >= overweightLimit {
				continue
			}
			suggestions = append(suggestions, models.ReplacementSuggestion{
				OriginalTicker:  flag.Ticker,
				SuggestedTicker: b.Ticker,
				SuggestedSector: b.Sector,
				SectorCAGR:      b.CAGR,
			})
			break
		}
	}
	return suggestions
}
