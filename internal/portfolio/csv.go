// Package portfolio parses uploaded portfolio CSV files.
package portfolio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/bobmcallan/sectorlens/internal/models"
)

// LoadCSV parses a portfolio from CSV input. The header row must contain
// Ticker and Weight columns (case-insensitive, extra columns ignored).
// Structural problems (missing columns, empty input) return an
// InputFormatError; malformed rows are skipped and reported as issues so
// the run can continue for the remaining holdings.
func LoadCSV(r io.Reader) (*models.Portfolio, []models.TickerIssue, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, &models.InputFormatError{Msg: "empty input"}
	}
	if err != nil {
		return nil, nil, &models.InputFormatError{Msg: fmt.Sprintf("unreadable header: %v", err)}
	}

	tickerCol, weightCol := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "ticker":
			tickerCol = i
		case "weight":
			weightCol = i
		}
	}
	if tickerCol < 0 {
		return nil, nil, &models.InputFormatError{Msg: "missing Ticker column"}
	}
	if weightCol < 0 {
		return nil, nil, &models.InputFormatError{Msg: "missing Weight column"}
	}

	p := &models.Portfolio{}
	var issues []models.TickerIssue

	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			issues = append(issues, models.TickerIssue{
				Stage: "parse",
				Error: (&models.InputFormatError{Line: line, Msg: err.Error()}).Error(),
			})
			continue
		}
		if len(record) <= tickerCol || len(record) <= weightCol {
			issues = append(issues, models.TickerIssue{
				Stage: "parse",
				Error: (&models.InputFormatError{Line: line, Msg: "too few columns"}).Error(),
			})
			continue
		}

		ticker := strings.ToUpper(strings.TrimSpace(record[tickerCol]))
		if ticker == "" {
			issues = append(issues, models.TickerIssue{
				Stage: "parse",
				Error: (&models.InputFormatError{Line: line, Msg: "empty ticker"}).Error(),
			})
			continue
		}

		weight, err := strconv.ParseFloat(strings.TrimSpace(record[weightCol]), 64)
		if err != nil {
			issues = append(issues, models.TickerIssue{
				Ticker: ticker,
				Stage:  "parse",
				Error:  (&models.InputFormatError{Line: line, Msg: "invalid weight: " + record[weightCol]}).Error(),
			})
			continue
		}
		if weight < 0 {
			issues = append(issues, models.TickerIssue{
				Ticker: ticker,
				Stage:  "parse",
				Error:  (&models.InputFormatError{Line: line, Msg: fmt.Sprintf("negative weight %v", weight)}).Error(),
			})
			continue
		}

		p.Holdings = append(p.Holdings, models.Holding{Ticker: ticker, Weight: weight})
	}

	if len(p.Holdings) == 0 {
		return nil, issues, &models.InputFormatError{Msg: "no valid holdings"}
	}

	return p, issues, nil
}
