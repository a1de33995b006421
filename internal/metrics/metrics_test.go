package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m, err := New()
	require.NoError(t, err)

	m.AddLogin(ResultOK)
	m.AddLogin(ResultRejected)
	m.AddLogin(ResultRejected)
	m.AddMutation("create-project", ResultOK)
	m.AddDenied("delete-project")
	m.AddAssistantRequest(ResultFallback)
	m.ObserveAssistantResponse(20 * time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.loginsTotal.WithLabelValues(ResultRejected)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.mutationsTotal.WithLabelValues("create-project", ResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.deniedTotal.WithLabelValues("delete-project")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	assert.True(t, strings.Contains(string(body), "studyboard_session_logins_total"))
	assert.True(t, strings.Contains(string(body), "studyboard_assistant_response_seconds"))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.AddLogin(ResultOK)
	m.AddMutation("x", ResultOK)
	m.AddDenied("x")
	m.AddAssistantRequest(ResultOK)
	m.ObserveAssistantResponse(time.Second)
}
