package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yufin/yufin/internal/progress"
	"github.com/yufin/yufin/internal/store"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	ledger := progress.NewLedger(st.KV(), progress.WithEventRepo(st.EventRepo()))
	return New(ledger, WithEvents(st.EventRepo()), WithDefaultGrade("6º Ano"))
}

// call sends a request and decodes the JSON response body.
func call(t *testing.T, s *Server, method, path string, body any) (int, map[string]any) {
	t.Helper()

	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.App().Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var result map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	return resp.StatusCode, result
}

func data(t *testing.T, result map[string]any) map[string]any {
	t.Helper()
	d, ok := result["data"].(map[string]any)
	require.True(t, ok, "response has no data object: %v", result)
	return d
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	status, result := call(t, s, "GET", "/healthz", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, result["success"])
	assert.Equal(t, "ok", data(t, result)["status"])
}

func TestGetProgressNotFound(t *testing.T) {
	s := newTestServer(t)
	status, result := call(t, s, "GET", "/api/progress/nobody", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, false, result["success"])
	assert.Equal(t, "progress not found", result["message"])
}

func TestInitAndGet(t *testing.T) {
	s := newTestServer(t)

	status, result := call(t, s, "POST", "/api/progress/u1", map[string]any{"gradeId": "6º Ano"})
	require.Equal(t, fiber.StatusCreated, status)
	rec := data(t, result)
	assert.Equal(t, "u1", rec["userId"])
	assert.Equal(t, float64(100), rec["maxXp"])

	status, _ = call(t, s, "POST", "/api/progress/u1", map[string]any{"gradeId": "7º Ano"})
	assert.Equal(t, fiber.StatusConflict, status)

	status, result = call(t, s, "GET", "/api/progress/u1", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "6º Ano", data(t, result)["gradeId"])
}

func TestInitKeepsExistingProgress(t *testing.T) {
	s := newTestServer(t)

	status, _ := call(t, s, "POST", "/api/progress/u1", map[string]any{"gradeId": "6º Ano"})
	require.Equal(t, fiber.StatusCreated, status)
	status, _ = call(t, s, "POST", "/api/progress/u1/lessons", map[string]any{"lessonId": "lessonA_module1", "score": 90, "timeSpent": 60})
	require.Equal(t, fiber.StatusOK, status)

	status, _ = call(t, s, "POST", "/api/progress/u1", map[string]any{"gradeId": "6º Ano"})
	assert.Equal(t, fiber.StatusConflict, status)

	_, result := call(t, s, "GET", "/api/progress/u1", nil)
	assert.Equal(t, float64(100), data(t, result)["xp"])
}

func TestInitValidation(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		body any
	}{
		{"empty body", nil},
		{"missing grade", map[string]any{}},
		{"empty grade", map[string]any{"gradeId": ""}},
		{"wrong type", map[string]any{"gradeId": 6}},
		{"not json", "{nope"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, result := call(t, s, "POST", "/api/progress/u1", tt.body)
			assert.Equal(t, fiber.StatusUnprocessableEntity, status)
			assert.Contains(t, result["message"], "invalid init payload")
		})
	}
}

func TestCompleteLessonFlow(t *testing.T) {
	s := newTestServer(t)
	call(t, s, "POST", "/api/progress/u1", map[string]any{"gradeId": "6º Ano"})

	for _, id := range []string{"lessonA_module1", "lessonB_module1", "lessonC_module1"} {
		status, _ := call(t, s, "POST", "/api/progress/u1/lessons", map[string]any{
			"lessonId": id, "score": 90, "timeSpent": 60,
		})
		require.Equal(t, fiber.StatusOK, status)
	}

	status, result := call(t, s, "GET", "/api/progress/u1", nil)
	require.Equal(t, fiber.StatusOK, status)
	rec := data(t, result)
	assert.Equal(t, float64(550), rec["xp"])
	assert.Equal(t, float64(155), rec["yuCoins"])
	assert.Equal(t, float64(3), rec["level"])
	assert.Equal(t, float64(900), rec["maxXp"])
	achievements := rec["achievements"].([]any)
	require.Len(t, achievements, 1)
	assert.Equal(t, "module_1_complete", achievements[0].(map[string]any)["id"])

	status, result = call(t, s, "GET", "/api/progress/u1/stats", nil)
	require.Equal(t, fiber.StatusOK, status)
	stats := data(t, result)
	assert.Equal(t, float64(9), stats["totalLessons"])
	assert.Equal(t, float64(33), stats["completionPercentage"])
}

func TestCompleteLessonValidation(t *testing.T) {
	s := newTestServer(t)
	call(t, s, "POST", "/api/progress/u1", map[string]any{"gradeId": "6º Ano"})

	for _, body := range []map[string]any{
		{},
		{"lessonId": ""},
		{"lessonId": "a", "score": -1},
		{"lessonId": "a", "module": "two"},
	} {
		status, _ := call(t, s, "POST", "/api/progress/u1/lessons", body)
		assert.Equal(t, fiber.StatusUnprocessableEntity, status, "body %v", body)
	}
}

func TestCompleteLessonUnknownLearner(t *testing.T) {
	s := newTestServer(t)
	status, _ := call(t, s, "POST", "/api/progress/ghost/lessons", map[string]any{"lessonId": "a"})
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestSetModule(t *testing.T) {
	s := newTestServer(t)
	call(t, s, "POST", "/api/progress/u1", map[string]any{"gradeId": "6º Ano"})

	status, result := call(t, s, "PUT", "/api/progress/u1/module", map[string]any{"module": 2})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(2), data(t, result)["currentModule"])

	// Out of range is ignored, not an error.
	status, result = call(t, s, "PUT", "/api/progress/u1/module", map[string]any{"module": 5})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(2), data(t, result)["currentModule"])

	status, _ = call(t, s, "PUT", "/api/progress/ghost/module", map[string]any{"module": 2})
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestResetRequiresConfirm(t *testing.T) {
	s := newTestServer(t)
	call(t, s, "POST", "/api/progress/u1", map[string]any{"gradeId": "6º Ano"})
	call(t, s, "POST", "/api/progress/u1/lessons", map[string]any{"lessonId": "lesson-1"})

	status, _ := call(t, s, "POST", "/api/progress/u1/reset", map[string]any{"gradeId": "7º Ano"})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = call(t, s, "POST", "/api/progress/u1/reset", map[string]any{"gradeId": "7º Ano", "confirm": false})
	assert.Equal(t, fiber.StatusBadRequest, status)

	_, result := call(t, s, "GET", "/api/progress/u1", nil)
	assert.Equal(t, float64(100), data(t, result)["xp"], "unconfirmed reset must not change progress")

	status, result = call(t, s, "POST", "/api/progress/u1/reset", map[string]any{"gradeId": "7º Ano", "confirm": true})
	require.Equal(t, fiber.StatusOK, status)
	rec := data(t, result)
	assert.Equal(t, "7º Ano", rec["gradeId"])
	assert.Equal(t, float64(0), rec["xp"])
}

func TestDashboard(t *testing.T) {
	s := newTestServer(t)

	status, result := call(t, s, "GET", "/api/progress/u1/dashboard", nil)
	require.Equal(t, fiber.StatusOK, status)
	d := data(t, result)
	assert.Equal(t, "6º Ano", d["grade"])
	assert.Equal(t, true, d["isGratuito"])
	assert.Equal(t, false, d["devMode"])
	assert.Equal(t, float64(3), d["maxModules"])

	status, result = call(t, s, "GET", "/api/progress/u2/dashboard?grade=8%C2%BA%20Ano", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "8º Ano", data(t, result)["grade"])
}

func TestStatsNotFound(t *testing.T) {
	s := newTestServer(t)
	status, _ := call(t, s, "GET", "/api/progress/u1/stats", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestEvents(t *testing.T) {
	s := newTestServer(t)
	call(t, s, "POST", "/api/progress/u1", map[string]any{"gradeId": "6º Ano"})
	call(t, s, "POST", "/api/progress/u1/lessons", map[string]any{"lessonId": "lesson-1"})
	call(t, s, "PUT", "/api/progress/u1/module", map[string]any{"module": 2})

	status, result := call(t, s, "GET", "/api/progress/u1/events", nil)
	require.Equal(t, fiber.StatusOK, status)
	events := result["data"].([]any)
	require.Len(t, events, 3)
	newest := events[0].(map[string]any)
	assert.Equal(t, store.EventModuleChanged, newest["kind"])
	assert.Equal(t, "u1", newest["userId"])

	status, result = call(t, s, "GET", "/api/progress/u1/events?limit=1", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, result["data"].([]any), 1)

	status, _ = call(t, s, "GET", "/api/progress/u1/events?limit=0", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestEventsUnavailable(t *testing.T) {
	s := New(progress.NewLedger(store.NewMemoryKV()))
	status, result := call(t, s, "GET", "/api/progress/u1/events", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Contains(t, result["message"], "event log")
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t)
	status, result := call(t, s, "GET", "/api/nothing", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, false, result["success"])
}

func TestPayloadErrorIs(t *testing.T) {
	err := decodeBody(initSchema, []byte(`{}`), &struct{}{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidPayload))

	var pe *PayloadError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "init", pe.Schema)
}
