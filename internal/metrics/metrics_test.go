package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/insightdelivered/xp-ledger/internal/models"
)

func TestObserveImport(t *testing.T) {
	m := New()
	result := &models.ParseResult{
		Flights:          make([]models.FlightLeg, 3),
		Earnings:         make([]models.MonthlyEarning, 2),
		Requalifications: make([]models.RequalificationEvent, 1),
	}

	m.ObserveImport("pdf", OutcomeOK, 20*time.Millisecond, result)
	m.ObserveImport("text", OutcomeEmpty, time.Millisecond, &models.ParseResult{})
	m.ObserveImport("pdf", OutcomeError, time.Millisecond, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.imports.WithLabelValues("pdf", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.imports.WithLabelValues("pdf", OutcomeError)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.records.WithLabelValues("flight")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.records.WithLabelValues("earning")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.records.WithLabelValues("requalification")))
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveCycles(4)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	assert.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(body, "xpledger_cycle_builds_total 1"))
	assert.True(t, strings.Contains(body, "xpledger_cycles_per_build_count 1"))
}
