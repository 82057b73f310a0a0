package portfolio

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/sectorlens/internal/models"
)

func TestLoadCSV_Valid(t *testing.T) {
	input := "Ticker,Weight\nTCS.NS,0.5\nINFY.NS,0.5\n"

	p, issues, err := LoadCSV(strings.NewReader(input))
	require.NoError(t, err)
	assert.Empty(t, issues)
	require.Len(t, p.Holdings, 2)
	assert.Equal(t, "TCS.NS", p.Holdings[0].Ticker)
	assert.Equal(t, 0.5, p.Holdings[0].Weight)
	assert.Equal(t, "INFY.NS", p.Holdings[1].Ticker)
	assert.InDelta(t, 1.0, p.TotalWeight(), 1e-12)
}

func TestLoadCSV_HeaderCaseAndExtraColumns(t *testing.T) {
	input := "name,TICKER,weight\nTata,tcs.ns,0.7\n"

	p, issues, err := LoadCSV(strings.NewReader(input))
	require.NoError(t, err)
	assert.Empty(t, issues)
	require.Len(t, p.Holdings, 1)
	// Tickers are uppercased on ingest.
	assert.Equal(t, "TCS.NS", p.Holdings[0].Ticker)
}

func TestLoadCSV_MissingWeightColumn(t *testing.T) {
	input := "Ticker,Name\nTCS.NS,Tata\n"

	_, _, err := LoadCSV(strings.NewReader(input))
	var formatErr *models.InputFormatError
	require.True(t, errors.As(err, &formatErr), "want InputFormatError, got %v", err)
	assert.Contains(t, formatErr.Error(), "Weight")
}

func TestLoadCSV_MissingTickerColumn(t *testing.T) {
	input := "Symbol,Weight\nTCS.NS,0.5\n"

	_, _, err := LoadCSV(strings.NewReader(input))
	var formatErr *models.InputFormatError
	require.True(t, errors.As(err, &formatErr), "want InputFormatError, got %v", err)
	assert.Contains(t, formatErr.Error(), "Ticker")
}

func TestLoadCSV_Empty(t *testing.T) {
	_, _, err := LoadCSV(strings.NewReader(""))
	var formatErr *models.InputFormatError
	require.True(t, errors.As(err, &formatErr))
}

func TestLoadCSV_BadRowsAreIssuesNotErrors(t *testing.T) {
	input := "Ticker,Weight\nTCS.NS,0.5\nINFY.NS,abc\n,0.2\nHDFC.NS,-0.1\nWIPRO.NS,0.3\n"

	p, issues, err := LoadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, p.Holdings, 2)
	assert.Equal(t, "TCS.NS", p.Holdings[0].Ticker)
	assert.Equal(t, "WIPRO.NS", p.Holdings[1].Ticker)

	// Bad weight, empty ticker, and negative weight each raise an issue.
	require.Len(t, issues, 3)
	for _, issue := range issues {
		assert.Equal(t, "parse", issue.Stage)
	}
}

func TestLoadCSV_AllRowsBad(t *testing.T) {
	input := "Ticker,Weight\nTCS.NS,xyz\n"

	_, issues, err := LoadCSV(strings.NewReader(input))
	var formatErr *models.InputFormatError
	require.True(t, errors.As(err, &formatErr))
	assert.Len(t, issues, 1)
}

func TestLoadCSV_DuplicateTickersKept(t *testing.T) {
	input := "Ticker,Weight\nTCS.NS,0.3\nTCS.NS,0.2\n"

	p, _, err := LoadCSV(strings.NewReader(input))
	require.NoError(t, err)
	// Duplicate rows stay independent.
	require.Len(t, p.Holdings, 2)
	assert.InDelta(t, 0.5, p.TotalWeight(), 1e-12)
}
