// Package http exposes the service's admin and query surface: a search
// passthrough to the index, a full reindex trigger, health probes, and
// Prometheus metrics.
package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/utafrali/searchsync/internal/index"
)

// Searcher is the read slice of the index used by the search endpoint.
type Searcher interface {
	Search(ctx context.Context, name, query string, opts index.SearchOptions) (*index.SearchResult, error)
}

// Syncer rebuilds the whole index from the backend.
type Syncer interface {
	SyncAll(ctx context.Context) error
}

// Response is the uniform JSON envelope of the API.
type Response struct {
	Data  any            `json:"data,omitempty"`
	Error *ErrorResponse `json:"error,omitempty"`
}

// ErrorResponse carries a machine-readable code and a human message.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SearchHandler handles HTTP requests for the search endpoints.
type SearchHandler struct {
	searcher  Searcher
	syncer    Syncer
	indexName string
	logger    *slog.Logger
}

// NewSearchHandler creates a new search HTTP handler.
func NewSearchHandler(searcher Searcher, syncer Syncer, indexName string, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{
		searcher:  searcher,
		syncer:    syncer,
		indexName: indexName,
		logger:    logger,
	}
}

// Search handles GET /api/v1/search. Query, filter and sort are passed
// through to the engine verbatim.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	opts := index.SearchOptions{
		Filter: r.URL.Query().Get("filter"),
		Limit:  20,
	}
	if v := r.URL.Query().Get("sort"); v != "" {
		opts.Sort = strings.Split(v, ",")
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.ParseInt(v, 10, 64)
		if err != nil || limit < 1 || limit > 100 {
			writeJSON(w, http.StatusBadRequest, Response{
				Error: &ErrorResponse{Code: "INVALID_PARAMETER", Message: "limit must be a number between 1 and 100"},
			})
			return
		}
		opts.Limit = limit
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		offset, err := strconv.ParseInt(v, 10, 64)
		if err != nil || offset < 0 {
			writeJSON(w, http.StatusBadRequest, Response{
				Error: &ErrorResponse{Code: "INVALID_PARAMETER", Message: "offset must not be negative"},
			})
			return
		}
		opts.Offset = offset
	}

	result, err := h.searcher.Search(r.Context(), h.indexName, query, opts)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "search failed",
			slog.String("index", h.indexName),
			slog.String("query", query),
			slog.String("error", err.Error()),
		)
		writeJSON(w, http.StatusInternalServerError, Response{
			Error: &ErrorResponse{Code: "SEARCH_FAILED", Message: "search request failed"},
		})
		return
	}

	writeJSON(w, http.StatusOK, Response{Data: result})
}

// Reindex handles POST /api/v1/reindex. The rebuild runs in the background;
// the request returns immediately.
func (h *SearchHandler) Reindex(w http.ResponseWriter, r *http.Request) {
	go func() {
		ctx := context.Background()
		if err := h.syncer.SyncAll(ctx); err != nil {
			h.logger.ErrorContext(ctx, "background reindex failed", slog.String("error", err.Error()))
		}
	}()

	writeJSON(w, http.StatusAccepted, Response{Data: map[string]string{"status": "reindex started"}})
}

func writeJSON(w http.ResponseWriter, code int, body Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
