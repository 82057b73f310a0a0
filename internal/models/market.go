package models

import "time"

// EODBar is a single end-of-day price bar
type EODBar struct {
	Date     time.Time `json:"date"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	AdjClose float64   `json:"adj_close"`
	Volume   int64     `json:"volume"`
}

// EODResponse holds a price series for one ticker, ascending by date.
type EODResponse struct {
	Ticker string   `json:"ticker"`
	Data   []EODBar `json:"data"`
}

// AdjCloses returns the adjusted close prices in date order.
func (r *EODResponse) AdjCloses() []float64 {
	prices := make([]float64, len(r.Data))
	for i, bar := range r.Data {
		prices[i] = bar.AdjClose
	}
	return prices
}

// SpanYears returns the series span from first to last bar in years.
func (r *EODResponse) SpanYears() float64 {
	if len(r.Data) < 2 {
		return 0
	}
	first := r.Data[0].Date
	last := r.Data[len(r.Data)-1].Date
	return last.Sub(first).Hours() / 24 / 365.25
}

// TickerProfile holds sector/industry metadata for a ticker.
// Sector is empty when the gateway cannot classify the ticker.
type TickerProfile struct {
	Ticker   string `json:"ticker"`
	Name     string `json:"name"`
	Sector   string `json:"sector"`
	Industry string `json:"industry"`
}
