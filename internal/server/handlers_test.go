package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/sectorlens/internal/app"
	"github.com/bobmcallan/sectorlens/internal/clients/fixture"
	"github.com/bobmcallan/sectorlens/internal/common"
	"github.com/bobmcallan/sectorlens/internal/models"
	"github.com/bobmcallan/sectorlens/internal/services/analyzer"
	"github.com/bobmcallan/sectorlens/internal/services/sector"
)

// newTestServer wires a server around the deterministic demo fixture so
// handler tests run without network access.
func newTestServer(t *testing.T) *Server {
	t.Helper()

	config := common.NewDefaultConfig()
	logger := common.NewSilentLogger()

	client := fixture.NewDemoClient()
	sectorService := sector.NewService(client, config.Analysis.SectorETFs, logger)
	analyzerService := analyzer.NewService(client, sectorService, config.Analysis, logger)

	return NewServer(&app.App{
		Config:        config,
		Logger:        logger,
		MarketClient:  client,
		SectorService: sectorService,
		Analyzer:      analyzerService,
		StartupTime:   time.Now(),
	})
}

// analyzeURL pins the window inside the demo fixture's seeded data.
const analyzeURL = "/api/analyze?from=2020-01-02&to=2025-01-01"

func TestHandleHealth(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, body["version"])
}

func TestHandleAnalyze(t *testing.T) {
	server := newTestServer(t)

	csv := "Ticker,Weight\nTCS.NS,0.4\nHDFCBANK.NS,0.35\nRELIANCE.NS,0.25\n"
	req := httptest.NewRequest(http.MethodPost, analyzeURL, strings.NewReader(csv))
	req.Header.Set("Content-Type", "text/csv")
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var report models.AnalysisReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))

	assert.Len(t, report.Holdings, 3)
	assert.InDelta(t, 0.4, report.Allocation["IT"], 1e-9)
	assert.InDelta(t, 0.35, report.Allocation["Banking"], 1e-9)
	assert.NotEmpty(t, report.Benchmarks)
	assert.NotEmpty(t, report.Growth)
	assert.Len(t, report.Stress, 2)
}

func TestHandleAnalyze_MultipartUpload(t *testing.T) {
	server := newTestServer(t)

	var buf strings.Builder
	boundary := "portfolio-test-boundary"
	buf.WriteString("--" + boundary + "\r\n")
	buf.WriteString("Content-Disposition: form-data; name=\"portfolio\"; filename=\"portfolio.csv\"\r\n")
	buf.WriteString("Content-Type: text/csv\r\n\r\n")
	buf.WriteString("Ticker,Weight\nTCS.NS,0.6\nRELIANCE.NS,0.4\n")
	buf.WriteString("\r\n--" + boundary + "--\r\n")

	req := httptest.NewRequest(http.MethodPost, analyzeURL, strings.NewReader(buf.String()))
	req.Header.Set("Content-Type", "multipart/form-data; boundary="+boundary)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var report models.AnalysisReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Len(t, report.Holdings, 2)
}

func TestHandleAnalyze_MissingWeightColumn(t *testing.T) {
	server := newTestServer(t)

	// Structural CSV errors must be rejected before any market data access.
	csv := "Ticker,Shares\nTCS.NS,100\n"
	req := httptest.NewRequest(http.MethodPost, analyzeURL, strings.NewReader(csv))
	req.Header.Set("Content-Type", "text/csv")
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "input_format", body["code"])
	assert.Contains(t, body["error"], "Weight")
}

func TestHandleAnalyze_InvalidDateRange(t *testing.T) {
	server := newTestServer(t)

	csv := "Ticker,Weight\nTCS.NS,1.0\n"
	req := httptest.NewRequest(http.MethodPost, "/api/analyze?from=2025-01-01&to=2020-01-01", strings.NewReader(csv))
	req.Header.Set("Content-Type", "text/csv")
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "input_format", body["code"])
}

func TestHandleAnalyze_MethodNotAllowed(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/analyze", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleAnalyze_BadRowsReportedAsIssues(t *testing.T) {
	server := newTestServer(t)

	csv := "Ticker,Weight\nTCS.NS,0.5\n,0.2\nRELIANCE.NS,not-a-number\nHDFCBANK.NS,0.5\n"
	req := httptest.NewRequest(http.MethodPost, analyzeURL, strings.NewReader(csv))
	req.Header.Set("Content-Type", "text/csv")
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var report models.AnalysisReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))

	assert.Len(t, report.Holdings, 2)

	parseIssues := 0
	for _, issue := range report.Issues {
		if issue.Stage == "parse" {
			parseIssues++
		}
	}
	assert.Equal(t, 2, parseIssues)
}

func TestHandleSectors(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/sectors?from=2020-01-02&to=2025-01-01", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Benchmarks []models.SectorBenchmark `json:"benchmarks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.Benchmarks)

	for i := 1; i < len(body.Benchmarks); i++ {
		assert.GreaterOrEqual(t, body.Benchmarks[i-1].CAGR, body.Benchmarks[i].CAGR,
			"benchmarks must be sorted best-first")
	}
}

func TestHandler_CorrelationIDHeader(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	assert.Len(t, rec.Header().Get("X-Correlation-ID"), 8)
}
