package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salebook/m/domain"
	"salebook/m/internal/stats"
	"salebook/m/internal/store"
)

func newTestHandler(t *testing.T) (*Handler, *store.Store) {
	t.Helper()
	st := store.New(store.NewMemoryBackend())
	h := New(st)
	h.now = func() time.Time { return time.Date(2026, 9, 1, 10, 30, 0, 0, time.UTC) }
	return h, st
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeSales(t *testing.T, rec *httptest.ResponseRecorder) []domain.Sale {
	t.Helper()
	var sales []domain.Sale
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sales))
	return sales
}

func TestCreateAndSettleFlow(t *testing.T) {
	h, _ := newTestHandler(t)
	router := h.Router()

	rec := doJSON(t, router, http.MethodPost, "/sales", map[string]any{
		"marketName": "Bazaar A",
		"items":      []map[string]any{{"name": "rice", "quantity": 2, "price": 1000}},
		"paidAmount": 1000,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	snapshot := decodeSales(t, rec)
	require.Len(t, snapshot, 1)
	sale := snapshot[0]
	assert.Equal(t, int64(2000), sale.TotalAmount)
	assert.Equal(t, int64(1000), sale.DebtAmount)
	assert.Equal(t, "2026-09-01", sale.DebtDueDate)

	rec = doJSON(t, router, http.MethodPost, "/sales/"+sale.ID+"/settle", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	settled := decodeSales(t, rec)
	require.Len(t, settled, 1)
	assert.Zero(t, settled[0].DebtAmount)
	assert.Equal(t, int64(2000), settled[0].PaidAmount)
	assert.Empty(t, settled[0].DebtDueDate)
}

func TestCreateSaleValidationError(t *testing.T) {
	h, st := newTestHandler(t)
	router := h.Router()

	rec := doJSON(t, router, http.MethodPost, "/sales", map[string]any{
		"marketName": "   ",
		"items":      []map[string]any{{"name": "rice", "quantity": 1, "price": 100}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, st.Load(), "no partial record is created")
}

func TestListSalesWithSearch(t *testing.T) {
	h, st := newTestHandler(t)
	require.NoError(t, st.SaveAll([]domain.Sale{
		{ID: "1", MarketName: "Blue Market"},
		{ID: "2", MarketName: "Green Market"},
	}))
	router := h.Router()

	rec := doJSON(t, router, http.MethodGet, "/sales?query=green", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	sales := decodeSales(t, rec)
	require.Len(t, sales, 1)
	assert.Equal(t, "2", sales[0].ID)
}

func TestClearSales(t *testing.T) {
	h, st := newTestHandler(t)
	require.NoError(t, st.SaveAll([]domain.Sale{{ID: "1", MarketName: "A"}}))
	router := h.Router()

	rec := doJSON(t, router, http.MethodDelete, "/sales", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, st.Load())
}

func TestDashboard(t *testing.T) {
	h, st := newTestHandler(t)
	require.NoError(t, st.SaveAll([]domain.Sale{
		{ID: "1", Date: "2026-09-01T08:00:00Z", TotalAmount: 2000, DebtAmount: 1000, DebtDueDate: "2026-09-01"},
	}))
	router := h.Router()

	rec := doJSON(t, router, http.MethodGet, "/stats/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var sum stats.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sum))
	assert.Equal(t, int64(2000), sum.TodayTotal)
	assert.Equal(t, int64(1000), sum.TotalOutstandingDebt)
	require.Len(t, sum.SevenDaySeries, 7)
	assert.Len(t, sum.DueOrOverdueDebts, 1)
}

func TestExportBackupHeaders(t *testing.T) {
	h, st := newTestHandler(t)
	require.NoError(t, st.SaveAll([]domain.Sale{{ID: "1", MarketName: "A"}}))
	router := h.Router()

	rec := doJSON(t, router, http.MethodGet, "/backup/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `sales_backup_2026-09-01.json`)

	var sales []domain.Sale
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sales))
	require.Len(t, sales, 1)
}

func multipartBody(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func TestImportBackupReplacesStore(t *testing.T) {
	h, st := newTestHandler(t)
	require.NoError(t, st.SaveAll([]domain.Sale{{ID: "old", MarketName: "Old"}}))
	router := h.Router()

	blob, err := json.Marshal([]domain.Sale{{ID: "new", MarketName: "New", IsCompleted: true}})
	require.NoError(t, err)
	body, contentType := multipartBody(t, "file", "sales_backup_2026-09-01.json", blob)

	req := httptest.NewRequest(http.MethodPost, "/backup/import", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	loaded := st.Load()
	require.Len(t, loaded, 1)
	assert.Equal(t, "new", loaded[0].ID)
}

func TestImportBackupMalformedLeavesStoreUnchanged(t *testing.T) {
	h, st := newTestHandler(t)
	prior := []domain.Sale{{ID: "old", MarketName: "Old"}}
	require.NoError(t, st.SaveAll(prior))
	router := h.Router()

	body, contentType := multipartBody(t, "file", "backup.json", []byte("{{{ nope"))
	req := httptest.NewRequest(http.MethodPost, "/backup/import", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "invalid snapshot"))
	assert.Equal(t, prior, st.Load())
}

func TestImportBackupMissingFile(t *testing.T) {
	h, _ := newTestHandler(t)
	router := h.Router()

	rec := doJSON(t, router, http.MethodPost, "/backup/import", map[string]string{"not": "a file"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
