package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"salebook/m/internal/ledger"
	"salebook/m/internal/stats"
	"salebook/m/internal/store"
)

// maxImportSize caps backup uploads at 10 MiB.
const maxImportSize = 10 << 20

// Handler bundles dependencies for HTTP handlers.
type Handler struct {
	store *store.Store
	now   func() time.Time
}

// New constructs a Handler.
func New(st *store.Store) *Handler {
	return &Handler{store: st, now: time.Now}
}

// Router wires up the HTTP API.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.health)

	r.Route("/sales", func(r chi.Router) {
		r.Get("/", h.listSales)
		r.Post("/", h.createSale)
		r.Delete("/", h.clearSales)
		r.Post("/{id}/settle", h.settleDebt)
	})

	r.Get("/stats/dashboard", h.dashboard)

	r.Route("/backup", func(r chi.Router) {
		r.Get("/export", h.exportBackup)
		r.Post("/import", h.importBackup)
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Sales handlers

func (h *Handler) listSales(w http.ResponseWriter, r *http.Request) {
	snapshot := h.store.Load()
	query := r.URL.Query().Get("query")
	respondJSON(w, http.StatusOK, ledger.Search(snapshot, query))
}

func (h *Handler) createSale(w http.ResponseWriter, r *http.Request) {
	var draft ledger.Draft
	if err := decodeJSON(r, &draft); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	sale, err := ledger.NewSale(draft, h.now())
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	snapshot, err := h.store.Add(sale)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateID) {
			respondError(w, http.StatusConflict, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to save sale")
		return
	}
	respondJSON(w, http.StatusCreated, snapshot)
}

func (h *Handler) settleDebt(w http.ResponseWriter, r *http.Request) {
	saleID := chi.URLParam(r, "id")
	snapshot := ledger.SettleDebt(h.store.Load(), saleID)
	if err := h.store.SaveAll(snapshot); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to save sales")
		return
	}
	respondJSON(w, http.StatusOK, snapshot)
}

func (h *Handler) clearSales(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Clear(); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to clear sales")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// Dashboard

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, stats.Summarize(h.store.Load(), h.now()))
}

// Backup handlers

func (h *Handler) exportBackup(w http.ResponseWriter, r *http.Request) {
	blob, err := h.store.Export()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to export backup")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", store.ExportFilename(h.now())))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(blob)
}

func (h *Handler) importBackup(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportSize)
	file, _, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "a backup file is required")
		return
	}
	defer file.Close()

	blob, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "unable to read backup file")
		return
	}

	snapshot, err := h.store.Import(blob)
	if err != nil {
		var parseErr *store.ParseError
		if errors.As(err, &parseErr) {
			respondError(w, http.StatusBadRequest, parseErr.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to replace sales data")
		return
	}
	respondJSON(w, http.StatusOK, snapshot)
}

// Helpers

func decodeJSON(r *http.Request, dest interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	_ = encoder.Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
