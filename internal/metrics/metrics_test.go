package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordSweep(t *testing.T) {
	before := testutil.ToFloat64(sweepAffected.WithLabelValues("complete_paid"))

	RecordSweep("complete_paid", 3, nil)
	RecordSweep("complete_paid", 5, errors.New("db down"))

	assert.Equal(t, before+3, testutil.ToFloat64(sweepAffected.WithLabelValues("complete_paid")))
	assert.GreaterOrEqual(t, testutil.ToFloat64(sweepRuns.WithLabelValues("complete_paid", "error")), float64(1))
}

func TestRecordTransition(t *testing.T) {
	before := testutil.ToFloat64(transitions.WithLabelValues("accept", "ok"))
	RecordTransition("accept", nil)
	assert.Equal(t, before+1, testutil.ToFloat64(transitions.WithLabelValues("accept", "ok")))
}

func TestHandler_ExposesRegistry(t *testing.T) {
	RecordNotification("NEWREQ")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "booking_notifications_created_total")
}
