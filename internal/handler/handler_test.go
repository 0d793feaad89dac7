package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mcintosh-service/internal/config"
	"mcintosh-service/internal/driver/mcintosh"
	"mcintosh-service/internal/middleware"
	"mcintosh-service/internal/repository"
	"mcintosh-service/internal/service"
	"mcintosh-service/internal/simulator"
	"mcintosh-service/internal/utils"
)

type testEnv struct {
	sim    *simulator.Server
	device *service.DeviceService
	ops    *service.OperationService
	poller *service.StatusPoller
	router *gin.Engine
}

type apiResponse struct {
	Success   bool            `json:"success"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
	Error     *utils.APIError `json:"error"`
	RequestID string          `json:"request_id"`
}

func newTestEnv(t *testing.T, connect bool) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	sim := simulator.New(zap.NewNop())
	require.NoError(t, sim.Start("127.0.0.1:0"))
	t.Cleanup(func() { _ = sim.Close() })

	d, err := mcintosh.New("mx160", sim.URL(), zap.NewNop(),
		mcintosh.WithMinInterval(0),
		mcintosh.WithTimeout(300*time.Millisecond),
	)
	require.NoError(t, err)
	profile, err := mcintosh.LookupProfile("mx160")
	require.NoError(t, err)

	device := service.NewDeviceServiceWithProcessor(d, profile, config.DeviceConfig{
		Model:        "mx160",
		URL:          sim.URL(),
		PollInterval: time.Second,
		Sources:      map[int]string{0: "Apple TV"},
	}, nil, zap.NewNop())
	t.Cleanup(func() { _ = device.Close() })
	if connect {
		require.NoError(t, device.Connect(context.Background()))
	}

	ops := service.NewOperationService(repository.NewMemoryOperationRepository(0, zap.NewNop()), "mx160", nil, zap.NewNop())
	poller := service.NewStatusPoller(device, time.Second, nil, zap.NewNop())

	router := gin.New()
	router.Use(middleware.RequestIDMiddleware())
	cfg := &config.Config{App: config.AppConfig{Name: "mcintosh-service", Version: "test"}}
	NewHealthHandler(nil, device, cfg, zap.NewNop()).RegisterRoutes(router.Group(""))
	api := router.Group("/api/v1")
	NewDeviceHandler(device, ops, poller, zap.NewNop()).RegisterRoutes(api)
	NewControlHandler(device, ops, zap.NewNop()).RegisterRoutes(api)
	NewOperationHandler(ops, zap.NewNop()).RegisterRoutes(api)

	return &testEnv{sim: sim, device: device, ops: ops, poller: poller, router: router}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var resp apiResponse
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &resp)
	}
	return w, resp
}

func decodeData(t *testing.T, resp apiResponse, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(resp.Data, v))
}

func TestControlHandler_Volume(t *testing.T) {
	env := newTestEnv(t, true)

	w, resp := env.do(t, http.MethodPut, "/api/v1/device/volume", gin.H{"level": 45})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, resp.Success)
	var op service.OperationResponse
	decodeData(t, resp, &op)
	assert.Equal(t, "SUCCESS", string(op.Status))
	assert.Equal(t, "!VOL(45)", op.Result)
	assert.Equal(t, 45, env.sim.State().Volume)

	w, _ = env.do(t, http.MethodPut, "/api/v1/device/volume", gin.H{"level": 150})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 99, env.sim.State().Volume)

	w, _ = env.do(t, http.MethodPost, "/api/v1/device/volume/down", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 98, env.sim.State().Volume)

	w, _ = env.do(t, http.MethodPost, "/api/v1/device/volume/down", gin.H{"amount": 8})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 90, env.sim.State().Volume)

	w, resp = env.do(t, http.MethodPut, "/api/v1/device/volume", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, resp.Success)
}

func TestControlHandler_SwitchesAndSources(t *testing.T) {
	env := newTestEnv(t, true)

	w, _ := env.do(t, http.MethodPost, "/api/v1/device/power", gin.H{"action": "off"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, env.sim.State().Power)

	w, _ = env.do(t, http.MethodPost, "/api/v1/device/power", gin.H{"action": "dim"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = env.do(t, http.MethodPost, "/api/v1/device/mute", gin.H{"action": "toggle"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.sim.State().Muted)

	w, _ = env.do(t, http.MethodPut, "/api/v1/device/loudness", gin.H{"enabled": true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.sim.State().Loudness)

	w, _ = env.do(t, http.MethodPut, "/api/v1/device/source", gin.H{"index": 3})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, env.sim.State().Source)

	w, _ = env.do(t, http.MethodPost, "/api/v1/device/source/next", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 4, env.sim.State().Source)

	w, resp := env.do(t, http.MethodGet, "/api/v1/device/sources/0", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var src struct {
		Index int    `json:"index"`
		Name  string `json:"name"`
	}
	decodeData(t, resp, &src)
	assert.Equal(t, "Apple TV", src.Name)

	w, _ = env.do(t, http.MethodGet, "/api/v1/device/sources/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, resp = env.do(t, http.MethodGet, "/api/v1/device/sources", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var sources []service.SourceInfo
	decodeData(t, resp, &sources)
	assert.Len(t, sources, mcintosh.SourceCount)
}

func TestControlHandler_Zone2(t *testing.T) {
	env := newTestEnv(t, true)

	w, _ := env.do(t, http.MethodPost, "/api/v1/device/zone2/power", gin.H{"action": "on"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.sim.State().Zone2Power)

	w, _ = env.do(t, http.MethodPut, "/api/v1/device/zone2/volume", gin.H{"level": 12})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 12, env.sim.State().Zone2Volume)

	w, _ = env.do(t, http.MethodPut, "/api/v1/device/zone2/source", gin.H{"index": 9})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 9, env.sim.State().Zone2Source)
}

func TestControlHandler_TrimsAndLipsync(t *testing.T) {
	env := newTestEnv(t, true)

	w, _ := env.do(t, http.MethodPut, "/api/v1/device/trims/bass", gin.H{"db": "-3.5"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, -35, env.sim.State().Bass)

	w, _ = env.do(t, http.MethodPut, "/api/v1/device/trims/center", gin.H{"level": 200})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, mcintosh.TrimMax, env.sim.State().Center)

	w, _ = env.do(t, http.MethodPut, "/api/v1/device/trims/height", gin.H{"db": "-1e30"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, mcintosh.TrimMin, env.sim.State().Height)

	w, _ = env.do(t, http.MethodPost, "/api/v1/device/trims/treble/up", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, env.sim.State().Treble)

	w, _ = env.do(t, http.MethodPut, "/api/v1/device/trims/rear", gin.H{"level": 10})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = env.do(t, http.MethodPut, "/api/v1/device/trims/lfe", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = env.do(t, http.MethodPut, "/api/v1/device/lipsync", gin.H{"value": 40})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 40, env.sim.State().Lipsync)

	w, resp := env.do(t, http.MethodGet, "/api/v1/device/lipsync/range", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var rng struct{ Min, Max int }
	decodeData(t, resp, &rng)
	assert.Equal(t, 200, rng.Max)
}

func TestControlHandler_UnsupportedFeature(t *testing.T) {
	env := newTestEnv(t, true)

	// the MX160 cannot report its volume limit
	w, resp := env.do(t, http.MethodGet, "/api/v1/device/volume/max", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "BAD_REQUEST", resp.Error.Code)
}

func TestControlHandler_CommandErrors(t *testing.T) {
	env := newTestEnv(t, false)

	w, resp := env.do(t, http.MethodPut, "/api/v1/device/volume", gin.H{"level": 10})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.False(t, resp.Success)

	env = newTestEnv(t, true)
	env.sim.SetSilent(true)
	w, resp = env.do(t, http.MethodPut, "/api/v1/device/volume", gin.H{"level": 10})
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	require.NotNil(t, resp.Error)
	assert.NotContains(t, resp.Error.Details, "127.0.0.1")

	ops, _, err := env.ops.ListOperations(context.Background(), &repository.OperationFilter{Page: 1, PerPage: 10})
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, "TIMEOUT", string(ops[0].Status))
}

func TestOperationHandler_ListAndGet(t *testing.T) {
	env := newTestEnv(t, true)

	env.do(t, http.MethodPut, "/api/v1/device/volume", gin.H{"level": 20})
	env.do(t, http.MethodPost, "/api/v1/device/mute", gin.H{"action": "on"})
	env.do(t, http.MethodPost, "/api/v1/device/ping", nil)

	w, resp := env.do(t, http.MethodGet, "/api/v1/operations?per_page=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Operations []struct {
			ID            string `json:"id"`
			OperationType string `json:"operation_type"`
			Status        string `json:"status"`
		} `json:"operations"`
		Pagination service.PaginationResult `json:"pagination"`
	}
	decodeData(t, resp, &page)
	assert.Equal(t, 3, page.Pagination.Total)
	assert.Equal(t, 2, page.Pagination.TotalPages)
	require.Len(t, page.Operations, 2)
	assert.Equal(t, "PING", page.Operations[0].OperationType)

	w, _ = env.do(t, http.MethodGet, "/api/v1/operations?operation_type=VOLUME", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, resp = env.do(t, http.MethodGet, "/api/v1/operations/"+page.Operations[1].ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)

	w, _ = env.do(t, http.MethodGet, "/api/v1/operations/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = env.do(t, http.MethodGet, "/api/v1/operations/6f1c1c52-8f4e-4c43-9d2a-0c5f1f0b7a11", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, resp = env.do(t, http.MethodGet, "/api/v1/operations/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats repository.OperationStats
	decodeData(t, resp, &stats)
	assert.Equal(t, 3, stats.TotalOperations)
}

func TestDeviceHandler_InfoAndState(t *testing.T) {
	env := newTestEnv(t, true)

	w, resp := env.do(t, http.MethodGet, "/api/v1/device", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var info struct {
		ModelID string `json:"model_id"`
		Status  string `json:"status"`
	}
	decodeData(t, resp, &info)
	assert.Equal(t, "mx160", info.ModelID)
	assert.Equal(t, "ONLINE", info.Status)

	w, _ = env.do(t, http.MethodGet, "/api/v1/device/state", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, resp = env.do(t, http.MethodPost, "/api/v1/device/state/refresh", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var snap struct {
		Power      bool    `json:"power"`
		Volume     *int    `json:"volume"`
		SourceName *string `json:"source_name"`
	}
	decodeData(t, resp, &snap)
	assert.True(t, snap.Power)
	require.NotNil(t, snap.Volume)
	assert.Equal(t, 30, *snap.Volume)
	require.NotNil(t, snap.SourceName)
	assert.Equal(t, "Apple TV", *snap.SourceName)

	w, _ = env.do(t, http.MethodGet, "/api/v1/device/state", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, resp = env.do(t, http.MethodGet, "/api/v1/device/diagnostics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, string(resp.Data), "127.0.0.1")
}

func TestHealthHandler(t *testing.T) {
	env := newTestEnv(t, true)

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var health HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "healthy", health.Checks["device"].Status)
	assert.Contains(t, health.Checks["database"].Message, "memory")

	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/db", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	offline := newTestEnv(t, false)
	w = httptest.NewRecorder()
	offline.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = httptest.NewRecorder()
	offline.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "degraded", health.Status)

	w = httptest.NewRecorder()
	offline.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/live", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestIDIsEchoed(t *testing.T) {
	env := newTestEnv(t, true)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/device", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-42")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, "req-42", w.Header().Get(middleware.RequestIDHeader))
	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "req-42", resp.RequestID)
}
