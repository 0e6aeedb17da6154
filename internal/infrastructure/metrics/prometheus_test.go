package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"research-agent/internal/domain/entity"
)

func TestPrometheus_ObserveRun(t *testing.T) {
	m := NewPrometheus()

	m.ObserveRun("success", 2*time.Second)
	m.ObserveRun("success", time.Second)
	m.ObserveRun("error", time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.runs.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("error")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.runLatency))
}

func TestPrometheus_ObserveAgent(t *testing.T) {
	m := NewPrometheus()

	m.ObserveAgent(entity.RoleResearch, 3, true)
	m.ObserveAgent(entity.RoleWeb, 1, false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.agentRuns.WithLabelValues("research", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.agentRuns.WithLabelValues("web", "false")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.agentRuns.WithLabelValues("web", "true")))
}

func TestPrometheus_ObserveToolCall(t *testing.T) {
	m := NewPrometheus()

	m.ObserveToolCall(entity.ToolWikipedia, nil)
	m.ObserveToolCall(entity.ToolWebSearch, errors.New("quota"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.toolCalls.WithLabelValues("wikipedia", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.toolCalls.WithLabelValues("web_search", "error")))
}

func TestPrometheus_Handler(t *testing.T) {
	m := NewPrometheus()
	m.ObserveRun("success", time.Second)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `research_pipeline_runs_total{status="success"} 1`), body)
}
