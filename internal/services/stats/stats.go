// Package stats computes risk/return statistics from price series.
package stats

import (
	"math"

	"github.com/bobmcallan/sectorlens/internal/models"
)

// CAGR computes the compound annual growth rate from a price series:
// (last/first)^(1/years) - 1.
func CAGR(prices []float64, years float64) (float64, error) {
	if len(prices) < 2 || years <= 0 {
		return 0, &models.InsufficientDataError{Points: len(prices), Years: years}
	}
	first := prices[0]
	last := prices[len(prices)-1]
	if first <= 0 {
		return 0, &models.InvalidPriceError{Price: first}
	}
	return math.Pow(last/first, 1/years) - 1, nil
}

// DailyReturns computes periodic percentage returns between consecutive
// prices. A non-positive price yields a 0 return for that step rather than
// a division blowup.
func DailyReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] <= 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, prices[i]/prices[i-1]-1)
	}
	return returns
}

// Mean returns the arithmetic mean, 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev returns the sample standard deviation, 0 with fewer than 2 values.
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := Mean(values)
	var sumSq float64
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)-1))
}

// AnnualizedVolatility scales the periodic return standard deviation by
// the square root of trading periods per year.
func AnnualizedVolatility(returns []float64, periodsPerYear int) float64 {
	return StdDev(returns) * math.Sqrt(float64(periodsPerYear))
}

// SharpeRatio computes (annualized mean return - risk-free rate) / annualized
// volatility. Zero volatility yields Sharpe 0 as a defined sentinel.
func SharpeRatio(returns []float64, riskFreeRate float64, periodsPerYear int) float64 {
	vol := AnnualizedVolatility(returns, periodsPerYear)
	if vol == 0 {
		return 0
	}
	annMean := Mean(returns) * float64(periodsPerYear)
	return (annMean - riskFreeRate) / vol
}

// CumulativeIndex compounds periodic returns into a growth index starting
// at 1.0.
func CumulativeIndex(returns []float64) []float64 {
	index := make([]float64, len(returns))
	value := 1.0
	for i, r := range returns {
		value *= 1 + r
		index[i] = value
	}
	return index
}

// SeriesMetrics derives the full ReturnMetrics set from one price series.
func SeriesMetrics(series *models.EODResponse, riskFreeRate float64, periodsPerYear int) (models.ReturnMetrics, error) {
	prices := series.AdjCloses()

	cagr, err := CAGR(prices, series.SpanYears())
	if err != nil {
		return models.ReturnMetrics{}, err
	}

	returns := DailyReturns(prices)
	return models.ReturnMetrics{
		CAGR:       cagr,
		Volatility: AnnualizedVolatility(returns, periodsPerYear),
		Sharpe:     SharpeRatio(returns, riskFreeRate, periodsPerYear),
	}, nil
}
