package models

import "fmt"

// InputFormatError reports a malformed portfolio CSV: missing columns,
// unparsable weights, or empty input. Raised before any network call.
type InputFormatError struct {
	Line int // 0 when the error is not tied to a row
	Msg  string
}

func (e *InputFormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("input format error at line %d: %s", e.Line, e.Msg)
	}
	return fmt.Sprintf("input format error: %s", e.Msg)
}

// DataUnavailableError reports that the market data gateway could not supply
// data for a ticker (unknown symbol or empty series).
type DataUnavailableError struct {
	Ticker string
	Reason string
}

func (e *DataUnavailableError) Error() string {
	return fmt.Sprintf("no data for %s: %s", e.Ticker, e.Reason)
}

// InsufficientDataError reports a series too short (or with a non-positive
// span) for a stable CAGR or volatility calculation.
type InsufficientDataError struct {
	Points int
	Years  float64
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: %d points over %.2f years", e.Points, e.Years)
}

// InvalidPriceError reports a non-positive base price, which leaves CAGR
// undefined.
type InvalidPriceError struct {
	Price float64
}

func (e *InvalidPriceError) Error() string {
	return fmt.Sprintf("invalid base price %.4f", e.Price)
}
