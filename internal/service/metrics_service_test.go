package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *MetricsService) (int, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	return rec.Code, rec.Body.String()
}

func TestMetricsServiceCounters(t *testing.T) {
	m := NewMetricsService()

	m.ObserveHTTPRequest(http.MethodGet, "/alunos", http.StatusOK, 20*time.Millisecond)
	m.RecordAuthAttempt(true)
	m.RecordAuthAttempt(false)
	m.RecordAuthAttempt(false)
	m.RecordExport("roster", "csv")
	m.ObserveUnitOfWork(true, time.Millisecond)

	code, body := scrape(t, m)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `http_requests_total{method="GET",path="/alunos",status="200"} 1`)
	assert.Contains(t, body, `auth_attempts_total{outcome="failure"} 2`)
	assert.Contains(t, body, `report_exports_total{format="csv",report="roster"} 1`)
	assert.Contains(t, body, `unit_of_work_duration_seconds_count{outcome="commit"} 1`)
	assert.NotNil(t, m.Registry())
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var m *MetricsService
	m.ObserveHTTPRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)
	m.ObserveUnitOfWork(false, time.Millisecond)
	m.RecordAuthAttempt(true)
	m.RecordExport("roster", "pdf")
	assert.Nil(t, m.Registry())

	code, _ := scrape(t, m)
	assert.Equal(t, http.StatusServiceUnavailable, code)
}
