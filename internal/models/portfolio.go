// Package models defines data structures for Sectorlens
package models

// Holding is a single portfolio row: a ticker and its relative weight.
// Duplicate tickers are kept as independent rows.
type Holding struct {
	Ticker string  `json:"ticker"`
	Weight float64 `json:"weight"`
}

// Portfolio is an ordered sequence of holdings parsed from the uploaded CSV.
// Weights are relative and need not sum to 1.
type Portfolio struct {
	Holdings []Holding `json:"holdings"`
}

// TotalWeight returns the sum of all holding weights.
func (p *Portfolio) TotalWeight() float64 {
	var total float64
	for _, h := range p.Holdings {
		total += h.Weight
	}
	return total
}

// Tickers returns the tickers in portfolio order, duplicates included.
func (p *Portfolio) Tickers() []string {
	tickers := make([]string, len(p.Holdings))
	for i, h := range p.Holdings {
		tickers[i] = h.Ticker
	}
	return tickers
}
