package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warehouse-rag/internal/chunker"
	"warehouse-rag/internal/domain"
	"warehouse-rag/internal/embedding"
	"warehouse-rag/internal/index"
	"warehouse-rag/internal/interpreter"
	"warehouse-rag/internal/service"
	"warehouse-rag/internal/store"
)

type staticGenerator struct {
	answer string
	err    error
}

func (g staticGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return g.answer, g.err
}

func newTestServer(t *testing.T, gen domain.Generator) *Server {
	t.Helper()
	s := store.New(filepath.Join(t.TempDir(), "inventory.csv"))
	require.NoError(t, s.ReplaceAll([]domain.InventoryRecord{
		{
			ProductID: 11023, ProductName: "Widget A", Location: "SectionA",
			CurrentStock: 150, LastSoldDate: "2025-09-20", ExpiryDate: "2026-03-15",
			SalesLastMonth: 45, TotalSales: 890, FactoryDistanceKM: 12,
		},
	}))
	ref := func() time.Time { return time.Date(2025, 9, 22, 0, 0, 0, 0, time.UTC) }
	coord := service.New(s, chunker.NewTokenChunker(400),
		index.New(embedding.NewTFIDF(), index.NewMemoryStore()), gen, 5, ref)
	require.NoError(t, coord.Reindex())
	return New(":0", coord, interpreter.New(s), time.Second)
}

func postJSON(t *testing.T, srv *Server, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleQuestion_OK(t *testing.T) {
	srv := newTestServer(t, staticGenerator{answer: "Widget A has 150 units."})
	rec := postJSON(t, srv, "/", map[string]string{"messages": "how much Widget A is in stock?"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp questionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Widget A has 150 units.", resp.Result)
	assert.NotEmpty(t, resp.QueryID)
}

func TestHandleQuestion_BadRequest(t *testing.T) {
	srv := newTestServer(t, staticGenerator{answer: "x"})
	rec := postJSON(t, srv, "/", map[string]string{"wrong": "field"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleQuestion_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, staticGenerator{answer: "x"})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleQuestion_GenerationFailure(t *testing.T) {
	srv := newTestServer(t, staticGenerator{err: domain.ErrGenerationFailed})
	rec := postJSON(t, srv, "/", map[string]string{"messages": "anything"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestHandleUpdate_OK(t *testing.T) {
	srv := newTestServer(t, staticGenerator{answer: "x"})
	rec := postJSON(t, srv, "/update", map[string]string{"command": "Update product 11023 stock to 50"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp updateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 11023, resp.ProductID)
	assert.Equal(t, map[string]string{domain.ColCurrentStock: "50"}, resp.AppliedFields)
	assert.Contains(t, resp.Message, "Successfully updated")
}

func TestHandleUpdate_AmbiguousTarget(t *testing.T) {
	srv := newTestServer(t, staticGenerator{answer: "x"})
	rec := postJSON(t, srv, "/update", map[string]string{"command": "update location to SectionB"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandleUpdate_TargetNotFound(t *testing.T) {
	srv := newTestServer(t, staticGenerator{answer: "x"})
	rec := postJSON(t, srv, "/update", map[string]string{"command": "update product 99999 stock to 5"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleUpdate_NoApplicableFields(t *testing.T) {
	srv := newTestServer(t, staticGenerator{answer: "x"})
	rec := postJSON(t, srv, "/update", map[string]string{"command": "update product 11023 please"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
