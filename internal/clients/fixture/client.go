// Package fixture provides a deterministic in-memory market data client.
// It backs tests and offline demo runs where the EODHD API is unavailable.
package fixture

import (
	"context"
	"math"
	"time"

	"github.com/bobmcallan/sectorlens/internal/common"
	"github.com/bobmcallan/sectorlens/internal/interfaces"
	"github.com/bobmcallan/sectorlens/internal/models"
)

// Client serves canned price series and sector profiles.
type Client struct {
	series   map[string]*models.EODResponse
	profiles map[string]*models.TickerProfile
}

// NewClient creates an empty fixture client.
func NewClient() *Client {
	return &Client{
		series:   make(map[string]*models.EODResponse),
		profiles: make(map[string]*models.TickerProfile),
	}
}

// SetSeries registers a prebuilt price series for a ticker.
func (c *Client) SetSeries(ticker string, series *models.EODResponse) {
	c.series[ticker] = series
}

// SetProfile registers sector metadata for a ticker.
func (c *Client) SetProfile(ticker, name, sector string) {
	c.profiles[ticker] = &models.TickerProfile{
		Ticker: ticker,
		Name:   name,
		Sector: sector,
	}
}

// AddGrowthSeries seeds a daily series growing at a constant annual rate.
// The series spans [start, start+years) with one bar per calendar day,
// which keeps the generated CAGR exactly equal to annualGrowth.
func (c *Client) AddGrowthSeries(ticker string, start time.Time, years int, startPrice, annualGrowth float64) {
	days := int(365.25 * float64(years))
	dailyFactor := math.Pow(1+annualGrowth, 1.0/365.25)

	bars := make([]models.EODBar, days)
	price := startPrice
	for i := 0; i < days; i++ {
		bars[i] = models.EODBar{
			Date:     start.AddDate(0, 0, i),
			Open:     price,
			High:     price,
			Low:      price,
			Close:    price,
			AdjClose: price,
			Volume:   1000,
		}
		price *= dailyFactor
	}

	c.series[ticker] = &models.EODResponse{Ticker: ticker, Data: bars}
}

// GetEOD returns the registered series clipped to the requested range.
func (c *Client) GetEOD(ctx context.Context, ticker string, opts ...interfaces.EODOption) (*models.EODResponse, error) {
	params := &interfaces.EODParams{}
	for _, opt := range opts {
		opt(params)
	}

	full, ok := c.series[ticker]
	if !ok || len(full.Data) == 0 {
		return nil, &models.DataUnavailableError{Ticker: ticker, Reason: "not in fixture"}
	}

	var bars []models.EODBar
	for _, bar := range full.Data {
		if !params.From.IsZero() && bar.Date.Before(params.From) {
			continue
		}
		if !params.To.IsZero() && bar.Date.After(params.To) {
			continue
		}
		bars = append(bars, bar)
	}

	if len(bars) == 0 {
		return nil, &models.DataUnavailableError{Ticker: ticker, Reason: "no bars in range"}
	}

	return &models.EODResponse{Ticker: ticker, Data: bars}, nil
}

// GetProfile returns the registered profile, or an unresolved profile with
// an empty sector when the ticker is unknown.
func (c *Client) GetProfile(ctx context.Context, ticker string) (*models.TickerProfile, error) {
	if p, ok := c.profiles[ticker]; ok {
		return p, nil
	}
	return &models.TickerProfile{Ticker: ticker}, nil
}

// NewDemoClient seeds a fixture with the reference sector ETFs and a small
// set of NSE stocks, for running the service without an API key.
func NewDemoClient() *Client {
	c := NewClient()
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	etfGrowth := map[string]float64{
		"Banking":        0.14,
		"IT":             0.18,
		"Pharma":         0.11,
		"Energy":         0.09,
		"FMCG":           0.10,
		"Infrastructure": 0.12,
		"Auto":           0.13,
		"Metal":          0.08,
		"Finance":        0.15,
	}
	for sector, ticker := range common.DefaultSectorETFs() {
		c.AddGrowthSeries(ticker, start, 6, 100, etfGrowth[sector])
	}

	stocks := []struct {
		ticker string
		name   string
		sector string
		growth float64
	}{
		{"TCS.NS", "Tata Consultancy Services", "IT", 0.16},
		{"INFY.NS", "Infosys", "IT", 0.14},
		{"HDFCBANK.NS", "HDFC Bank", "Banking", 0.12},
		{"RELIANCE.NS", "Reliance Industries", "Energy", 0.11},
		{"SUNPHARMA.NS", "Sun Pharmaceutical", "Pharma", 0.02},
	}
	for _, s := range stocks {
		c.AddGrowthSeries(s.ticker, start, 6, 100, s.growth)
		c.SetProfile(s.ticker, s.name, s.sector)
	}

	c.AddGrowthSeries("NSEI.INDX", start, 6, 10000, 0.12)

	return c
}

// Ensure Client implements MarketDataClient
var _ interfaces.MarketDataClient = (*Client)(nil)
