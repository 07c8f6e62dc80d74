package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/LJTian/JobAlert/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRuns struct {
	runs      []storage.Run
	err       error
	lastLimit int
}

func (f *fakeRuns) ListRuns(_ context.Context, limit int) ([]storage.Run, error) {
	f.lastLimit = limit
	return f.runs, f.err
}

type fakeTrigger struct {
	fired chan struct{}
	busy  bool
	next  time.Time
}

func (f *fakeTrigger) TryRunOnce(context.Context) (<-chan string, bool) {
	if f.busy {
		return nil, false
	}
	done := make(chan string, 1)
	go func() {
		f.fired <- struct{}{}
		done <- storage.RunStatusSent
	}()
	return done, true
}

func (f *fakeTrigger) DailyAt() string    { return "11:00" }
func (f *fakeTrigger) NextRun() time.Time { return f.next }

func newTestEngine(runs RunLister, trigger Trigger, mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	reg := prometheus.NewRegistry()
	NewServer(runs, trigger, reg, nil).RegisterRoutes(r)
	return r
}

func do(r http.Handler, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	w := do(newTestEngine(nil, &fakeTrigger{}), http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestListRuns(t *testing.T) {
	runs := &fakeRuns{runs: []storage.Run{{ID: 2, Status: storage.RunStatusSent, LinkCount: 5}}}
	w := do(newTestEngine(runs, &fakeTrigger{}), http.MethodGet, "/api/v1/runs?limit=5")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, runs.lastLimit)

	var body struct {
		Code string        `json:"code"`
		Data []storage.Run `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Code)
	require.Len(t, body.Data, 1)
	assert.Equal(t, 5, body.Data[0].LinkCount)
}

func TestListRunsBadLimit(t *testing.T) {
	runs := &fakeRuns{}
	w := do(newTestEngine(runs, &fakeTrigger{}), http.MethodGet, "/api/v1/runs?limit=abc")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 20, runs.lastLimit)
}

func TestListRunsJournalDisabled(t *testing.T) {
	w := do(newTestEngine(nil, &fakeTrigger{}), http.MethodGet, "/api/v1/runs")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestListRunsError(t *testing.T) {
	w := do(newTestEngine(&fakeRuns{err: errors.New("db down")}, &fakeTrigger{}), http.MethodGet, "/api/v1/runs")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "db down")
}

func TestSchedule(t *testing.T) {
	next := time.Date(2024, 1, 2, 11, 0, 0, 0, time.UTC)
	w := do(newTestEngine(nil, &fakeTrigger{next: next}), http.MethodGet, "/api/v1/schedule")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"code":"ok","message":"success","data":{"dailyAt":"11:00","next":"2024-01-02T11:00:00Z"}}`, w.Body.String())
}

func TestRunNowTriggersInBackground(t *testing.T) {
	trigger := &fakeTrigger{fired: make(chan struct{}, 1)}
	w := do(newTestEngine(nil, trigger), http.MethodPost, "/api/v1/run")
	assert.Equal(t, http.StatusAccepted, w.Code)

	select {
	case <-trigger.fired:
	case <-time.After(2 * time.Second):
		t.Fatal("run was not triggered")
	}
}

func TestRunNowConflictWhileRunning(t *testing.T) {
	trigger := &fakeTrigger{fired: make(chan struct{}, 1), busy: true}
	w := do(newTestEngine(nil, trigger), http.MethodPost, "/api/v1/run")

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"code":"conflict","message":"a job run is already in progress"}`, w.Body.String())
	assert.Empty(t, trigger.fired)
}

func TestMetricsEndpoint(t *testing.T) {
	w := do(newTestEngine(nil, &fakeTrigger{}), http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBasicAuth(t *testing.T) {
	r := newTestEngine(nil, &fakeTrigger{}, BasicAuthMiddleware("user", "pass"))

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/health").Code, "health is exempt")
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/api/v1/schedule").Code)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/schedule", nil)
	req.SetBasicAuth("user", "pass")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/schedule", nil)
	req.SetBasicAuth("user", "wrong")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
