package stats

import (
	"math"
	"sort"

	"github.com/bobmcallan/sectorlens/internal/models"
)

// Percentile computes the q-th percentile (0-100) with linear interpolation
// between closest ranks.
func Percentile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if q <= 0 {
		return sorted[0]
	}
	if q >= 100 {
		return sorted[len(sorted)-1]
	}

	rank := q / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// VaR95 is the 5th percentile of periodic returns: the loss threshold the
// portfolio stays above on 95% of days.
func VaR95(returns []float64) float64 {
	return Percentile(returns, 5)
}

// Beta computes cov(portfolio, market) / var(market) over paired return
// series. The second result is false when the series are too short,
// mismatched in length, or the market variance is zero.
func Beta(portfolioReturns, marketReturns []float64) (float64, bool) {
	n := len(portfolioReturns)
	if n < 2 || n != len(marketReturns) {
		return 0, false
	}

	meanP := Mean(portfolioReturns)
	meanM := Mean(marketReturns)

	var cov, varM float64
	for i := 0; i < n; i++ {
		dp := portfolioReturns[i] - meanP
		dm := marketReturns[i] - meanM
		cov += dp * dm
		varM += dm * dm
	}
	if varM == 0 {
		return 0, false
	}
	return cov / varM, true
}

// Correlation computes the Pearson correlation of two equal-length return
// series, 0 when either side has no variance.
func Correlation(a, b []float64) float64 {
	n := len(a)
	if n < 2 || n != len(b) {
		return 0
	}

	meanA := Mean(a)
	meanB := Mean(b)

	var cov, varA, varB float64
	for i := 0; i < n; i++ {
		da := a[i] - meanA
		db := b[i] - meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}
	if varA == 0 || varB == 0 {
		return 0
	}
	return cov / math.Sqrt(varA*varB)
}

// CorrelationMatrix builds the pairwise correlation matrix for the given
// tickers. Each returns slice must be aligned to the same dates.
func CorrelationMatrix(tickers []string, returns map[string][]float64) models.CorrelationMatrix {
	m := models.CorrelationMatrix{
		Tickers: tickers,
		Values:  make([][]float64, len(tickers)),
	}
	for i, ti := range tickers {
		m.Values[i] = make([]float64, len(tickers))
		for j, tj := range tickers {
			if i == j {
				m.Values[i][j] = 1
				continue
			}
			m.Values[i][j] = Correlation(returns[ti], returns[tj])
		}
	}
	return m
}
