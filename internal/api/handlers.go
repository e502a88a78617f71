// internal/api/handlers.go
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/sarcascoder/Netflix-clone/internal/contract"
	"github.com/sarcascoder/Netflix-clone/internal/domain"
	"github.com/sarcascoder/Netflix-clone/internal/metrics"
	"github.com/sarcascoder/Netflix-clone/internal/store"
	"github.com/sarcascoder/Netflix-clone/pkg/auth"
)

const maxBodyBytes = 1 << 20

// TitleLookup answers whether a title exists. Satisfied by store.CatalogStore and by the
// gRPC catalog client when the catalog lives in another process.
type TitleLookup interface {
	TitleExists(ctx context.Context, id int64) (bool, error)
}

// CatalogHandler serves the catalog and watchlist operations.
type CatalogHandler struct {
	catalog   store.CatalogStore
	watchlist store.WatchlistStore
	lookup    TitleLookup
	authn     auth.Authenticator
	logger    *slog.Logger
}

// NewCatalogHandler wires the handler. A nil lookup falls back to the catalog store.
func NewCatalogHandler(catalog store.CatalogStore, watchlist store.WatchlistStore, lookup TitleLookup, authn auth.Authenticator, logger *slog.Logger) *CatalogHandler {
	if lookup == nil {
		lookup = catalog
	}
	return &CatalogHandler{
		catalog:   catalog,
		watchlist: watchlist,
		lookup:    lookup,
		authn:     authn,
		logger:    logger,
	}
}

func (h *CatalogHandler) respondJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	if data == nil {
		w.WriteHeader(status)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to encode JSON response", slog.String("error", err.Error()), slog.String("path", r.URL.Path))
	}
}

// succeed writes a declared success response and records the Completed outcome.
func (h *CatalogHandler) succeed(w http.ResponseWriter, r *http.Request, op contract.Operation, status int, data interface{}) {
	if !op.Declares(status) {
		h.logger.ErrorContext(r.Context(), "Undeclared response status", slog.String("operation", op.Name), slog.Int("status", status))
	}
	metrics.RecordOutcome(op.Name, "completed")
	h.respondJSON(w, r, status, data)
}

// fail classifies err and writes the matching error body.
func (h *CatalogHandler) fail(w http.ResponseWriter, r *http.Request, op contract.Operation, err error) {
	ctx := r.Context()
	e := classify(err)
	if e.kind == contract.KindStoreFailure {
		h.logger.ErrorContext(ctx, "Operation failed", slog.String("operation", op.Name), slog.String("error", err.Error()))
	} else {
		h.logger.InfoContext(ctx, "Operation rejected", slog.String("operation", op.Name), slog.String("kind", string(e.kind)), slog.String("error", err.Error()))
	}
	metrics.RecordOutcome(op.Name, outcome(e.kind))
	h.respondJSON(w, r, e.kind.Status(), e.body())
}

// viewer authenticates the request. Anonymous callers get 401 before any store access.
func (h *CatalogHandler) viewer(w http.ResponseWriter, r *http.Request, op contract.Operation) (domain.AuthResult, bool) {
	result := h.authn.Authenticate(r)
	if _, ok := result.Viewer(); !ok {
		h.fail(w, r, op, errUnauthorized)
		return result, false
	}
	return result, true
}

// ListTitles serves GET /api/movies.
func (h *CatalogHandler) ListTitles(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	op := contract.ListTitles
	params := r.URL.Query()
	h.logger.DebugContext(ctx, "ListTitles endpoint hit", slog.String("query", params.Encode()))

	query, err := contract.Validate(domain.ListTitlesQuery{
		Search:   params.Get("search"),
		Genre:    params.Get("genre"),
		Featured: params.Get("featured"),
		Type:     params.Get("type"),
	})
	if err != nil {
		h.fail(w, r, op, err)
		return
	}

	titles, err := h.catalog.ListTitles(ctx, query.Filter())
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	h.succeed(w, r, op, http.StatusOK, titles)
}

// GetTitle serves GET /api/movies/{id}.
func (h *CatalogHandler) GetTitle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	op := contract.GetTitle

	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	title, err := h.catalog.GetTitle(ctx, id)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	h.succeed(w, r, op, http.StatusOK, title)
}

// ListWatchlist serves GET /api/mylist.
func (h *CatalogHandler) ListWatchlist(w http.ResponseWriter, r *http.Request) {
	op := contract.ListWatchlist
	caller, ok := h.viewer(w, r, op)
	if !ok {
		return
	}

	titles, err := h.watchlist.ListForViewer(r.Context(), caller.ViewerID)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	h.succeed(w, r, op, http.StatusOK, titles)
}

// AddToWatchlist serves POST /api/mylist. Adding an existing pair still answers 201.
func (h *CatalogHandler) AddToWatchlist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	op := contract.AddToWatchlist
	caller, ok := h.viewer(w, r, op)
	if !ok {
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	defer r.Body.Close()
	if err != nil {
		h.fail(w, r, op, &contract.SchemaViolation{Rule: "body", Message: "unreadable request body"})
		return
	}
	req, err := contract.Decode[domain.AddToWatchlistRequest](body)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	titleID := *req.TitleID

	exists, err := h.lookup.TitleExists(ctx, titleID)
	if err != nil {
		h.fail(w, r, op, fmt.Errorf("title lookup: %w", err))
		return
	}
	if !exists {
		h.fail(w, r, op, fmt.Errorf("title %d: %w", titleID, store.ErrUnknownTitle))
		return
	}

	entry, err := h.watchlist.Add(ctx, caller.ViewerID, titleID)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	h.logger.InfoContext(ctx, "Title added to watchlist", slog.Int64("viewerID", caller.ViewerID), slog.Int64("titleID", titleID))
	h.succeed(w, r, op, http.StatusCreated, entry)
}

// RemoveFromWatchlist serves DELETE /api/mylist/{titleId}. Removing an absent pair answers 204.
func (h *CatalogHandler) RemoveFromWatchlist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	op := contract.RemoveFromWatchlist
	caller, ok := h.viewer(w, r, op)
	if !ok {
		return
	}

	titleID, err := pathID(r, "titleId")
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	if err := h.watchlist.Remove(ctx, caller.ViewerID, titleID); err != nil {
		h.fail(w, r, op, err)
		return
	}
	h.logger.InfoContext(ctx, "Title removed from watchlist", slog.Int64("viewerID", caller.ViewerID), slog.Int64("titleID", titleID))
	h.succeed(w, r, op, http.StatusNoContent, nil)
}

// pathID parses a numeric path variable. The route pattern already rejects non-digits,
// so the only failure left is overflow, which is reported as not found.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		return 0, store.ErrTitleNotFound
	}
	return id, nil
}

// Health serves GET /health.
func Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
