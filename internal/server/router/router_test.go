package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/stockwise/internal/domain/models"
	"github.com/mamadbah2/stockwise/internal/repository/memory"
	"github.com/mamadbah2/stockwise/internal/server/handlers"
	"github.com/mamadbah2/stockwise/internal/server/metrics"
	"github.com/mamadbah2/stockwise/internal/service/advisor"
	"github.com/mamadbah2/stockwise/internal/service/farm"
	"github.com/mamadbah2/stockwise/internal/service/reporting"
)

func newEngine(t *testing.T, imageRoot string) (*gin.Engine, *memory.Store) {
	t.Helper()

	store := memory.New()
	svc, err := farm.NewService(context.Background(), store, nil)
	require.NoError(t, err)

	engine := New(Handlers{
		Livestock: handlers.NewLivestockHandler(svc, nil, nil),
		Pens:      handlers.NewPenHandler(svc, nil),
		Insights:  handlers.NewInsightsHandler(reporting.NewService(svc, nil), advisor.NewService(nil, nil), nil, nil),
		Metrics:   metrics.New(svc),
		ImageRoot: imageRoot,
	}, nil)
	return engine, store
}

func serve(engine *gin.Engine, method, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	engine, _ := newEngine(t, "")
	w := serve(engine, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestSeededDataIsServed(t *testing.T) {
	engine, _ := newEngine(t, "")

	w := serve(engine, http.MethodGet, "/api/livestock", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var herd []models.Livestock
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &herd))
	assert.Len(t, herd, 2)

	w = serve(engine, http.MethodGet, "/api/pens/pen1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Pen A")

	w = serve(engine, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "stockwise_livestock_records 2")
}

func TestMutationsAreWrittenThrough(t *testing.T) {
	engine, store := newEngine(t, "")

	body := []byte(`{"name":"Quarantine","allowedLivestockType":"any"}`)
	w := serve(engine, http.MethodPost, "/api/pens", body)
	require.Equal(t, http.StatusCreated, w.Code)

	payload, found, err := store.Load(context.Background(), farm.PenSlot)
	require.NoError(t, err)
	require.True(t, found)

	var pens []models.Pen
	require.NoError(t, json.Unmarshal(payload, &pens))
	assert.Len(t, pens, 3)
	assert.Equal(t, "Quarantine", pens[2].Name)
	assert.Nil(t, pens[2].AllowedCategory)
}

func TestImagesAreServed(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "cow.png"), []byte("png"), 0o644))

	engine, _ := newEngine(t, root)
	w := serve(engine, http.MethodGet, "/images/cow.png", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "png", w.Body.String())
}

func TestUnknownRoute(t *testing.T) {
	engine, _ := newEngine(t, "")
	w := serve(engine, http.MethodGet, "/api/unknown", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
