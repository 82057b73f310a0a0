// Package interfaces defines service contracts for Sectorlens
package interfaces

import (
	"context"
	"time"

	"github.com/bobmcallan/sectorlens/internal/models"
)

// MarketDataClient provides access to the market data gateway.
// The live implementation talks to EODHD; a deterministic fixture
// implementation backs tests and offline runs.
type MarketDataClient interface {
	// GetEOD retrieves end-of-day price data, ascending by date
	GetEOD(ctx context.Context, ticker string, opts ...EODOption) (*models.EODResponse, error)

	// GetProfile retrieves sector/industry metadata for a ticker.
	// An unclassifiable ticker yields a profile with an empty Sector,
	// not an error.
	GetProfile(ctx context.Context, ticker string) (*models.TickerProfile, error)
}

// EODOption configures EOD data requests
type EODOption func(*EODParams)

// EODParams holds EOD query parameters
type EODParams struct {
	From   time.Time
	To     time.Time
	Period string // d=daily, w=weekly, m=monthly
}

// WithDateRange sets the date range for EOD query
func WithDateRange(from, to time.Time) EODOption {
	return func(p *EODParams) {
		p.From = from
		p.To = to
	}
}

// WithPeriod sets the period for EOD query
func WithPeriod(period string) EODOption {
	return func(p *EODParams) {
		p.Period = period
	}
}
