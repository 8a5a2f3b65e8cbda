package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/cypherlabdev/sportsbook-explorer/internal/export"
	"github.com/cypherlabdev/sportsbook-explorer/internal/models"
	"github.com/cypherlabdev/sportsbook-explorer/internal/reference"
	"github.com/cypherlabdev/sportsbook-explorer/internal/service"
	"github.com/cypherlabdev/sportsbook-explorer/internal/sportsbook"
	"github.com/cypherlabdev/sportsbook-explorer/pkg/pivot"
)

// ExplorerHandler handles HTTP requests for category listings
type ExplorerHandler struct {
	service   *service.ExplorerService
	reference *reference.Reference
	logger    zerolog.Logger
}

// NewExplorerHandler creates a new explorer HTTP handler
func NewExplorerHandler(service *service.ExplorerService, ref *reference.Reference, logger zerolog.Logger) *ExplorerHandler {
	return &ExplorerHandler{
		service:   service,
		reference: ref,
		logger:    logger.With().Str("component", "explorer_handler").Logger(),
	}
}

// RegisterRoutes registers HTTP routes with the provided router
func (h *ExplorerHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/markets", h.handleExplore)
		r.Get("/results/last", h.handleLastResult)
		r.Get("/results/last/export", h.handleExportLast)
		r.Get("/reference", h.handleReference)
		r.Get("/reference/{id}", h.handleResolveReference)
	})
}

// handleExplore handles GET /api/v1/markets?league_id=&category_id=&subcategory_id=
func (h *ExplorerHandler) handleExplore(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, "invalid_query", err.Error())
		return
	}

	rs, err := h.service.Explore(r.Context(), q)
	if err != nil {
		status, kind := classifyError(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error().Err(err).Str("kind", kind).Msg("explore failed")
		}
		h.errorResponse(w, status, kind, err.Error())
		return
	}

	h.jsonResponse(w, http.StatusOK, ToResultResponse(rs))
}

// handleLastResult handles GET /api/v1/results/last
func (h *ExplorerHandler) handleLastResult(w http.ResponseWriter, r *http.Request) {
	rs, err := h.service.LastResult(r.Context())
	if err != nil {
		h.lastResultError(w, err)
		return
	}

	h.jsonResponse(w, http.StatusOK, ToResultResponse(rs))
}

// handleExportLast handles GET /api/v1/results/last/export?format=csv|tsv
func (h *ExplorerHandler) handleExportLast(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, "invalid_format", err.Error())
		return
	}

	var buf bytes.Buffer
	rs, err := h.service.ExportLast(r.Context(), &buf, format)
	if err != nil {
		h.lastResultError(w, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFilename(rs, format)))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Error().Err(err).Msg("failed to write export")
	}
}

// handleReference handles GET /api/v1/reference
func (h *ExplorerHandler) handleReference(w http.ResponseWriter, r *http.Request) {
	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"league_id":  h.reference.LeagueID,
		"categories": h.reference.Categories,
	})
}

// handleResolveReference handles GET /api/v1/reference/{id}
func (h *ExplorerHandler) handleResolveReference(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, "invalid_query", "id must be an integer")
		return
	}

	sel, err := h.reference.Resolve(id)
	if err != nil {
		h.errorResponse(w, http.StatusNotFound, "not_found", err.Error())
		return
	}

	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"league_id":      h.reference.LeagueID,
		"category_id":    sel.CategoryID,
		"subcategory_id": sel.SubcategoryID,
	})
}

func (h *ExplorerHandler) lastResultError(w http.ResponseWriter, err error) {
	if errors.Is(err, models.ErrNoResult) {
		h.errorResponse(w, http.StatusNotFound, "not_found", err.Error())
		return
	}
	h.logger.Error().Err(err).Msg("failed to load last result")
	h.errorResponse(w, http.StatusInternalServerError, "internal", "failed to load last result")
}

// jsonResponse writes a JSON response
func (h *ExplorerHandler) jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error().Err(err).Msg("failed to encode JSON response")
	}
}

// errorResponse writes a JSON error response
func (h *ExplorerHandler) errorResponse(w http.ResponseWriter, status int, kind, message string) {
	h.jsonResponse(w, status, map[string]string{
		"kind":  kind,
		"error": message,
	})
}

func parseQuery(r *http.Request) (models.Query, error) {
	values := r.URL.Query()

	var q models.Query
	var err error
	if q.LeagueID, err = parseID(values.Get("league_id"), true); err != nil {
		return q, fmt.Errorf("league_id: %w", err)
	}
	if q.CategoryID, err = parseID(values.Get("category_id"), true); err != nil {
		return q, fmt.Errorf("category_id: %w", err)
	}
	if q.SubcategoryID, err = parseID(values.Get("subcategory_id"), false); err != nil {
		return q, fmt.Errorf("subcategory_id: %w", err)
	}
	return q, nil
}

func parseID(s string, required bool) (int64, error) {
	if s == "" {
		if required {
			return 0, errors.New("is required")
		}
		return 0, nil
	}
	return strconv.ParseInt(s, 10, 64)
}

func classifyError(err error) (int, string) {
	var netErr *sportsbook.NetworkError
	var fmtErr *sportsbook.FormatError
	switch {
	case errors.Is(err, models.ErrInvalidQuery):
		return http.StatusBadRequest, "invalid_query"
	case errors.As(err, &netErr):
		return http.StatusBadGateway, "network"
	case errors.As(err, &fmtErr):
		return http.StatusBadGateway, "format"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func exportFilename(rs *models.ResultSet, format export.Format) string {
	return fmt.Sprintf("markets_%d_%d_%d.%s", rs.Query.LeagueID, rs.Query.CategoryID, rs.Query.SubcategoryID, format)
}

// RowResponse represents one parsed row in API responses
type RowResponse struct {
	Kind        string `json:"kind"`
	Participant string `json:"participant,omitempty"`
	Line        string `json:"line,omitempty"`
	OverOdds    string `json:"over_odds,omitempty"`
	UnderOdds   string `json:"under_odds,omitempty"`
	Label       string `json:"label,omitempty"`
	Odds        string `json:"odds,omitempty"`
}

// ResultResponse represents the API response for a result set
type ResultResponse struct {
	ID             string        `json:"id"`
	LeagueID       int64         `json:"league_id"`
	CategoryID     int64         `json:"category_id"`
	SubcategoryID  int64         `json:"subcategory_id"`
	Shape          string        `json:"shape"`
	SelectionCount int           `json:"selection_count"`
	SkippedCount   int           `json:"skipped_count"`
	Rows           []RowResponse `json:"rows"`
	FetchedAt      string        `json:"fetched_at"`
}

// ToResultResponse converts a ResultSet to API response format
func ToResultResponse(rs *models.ResultSet) *ResultResponse {
	rows := make([]RowResponse, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		switch v := row.(type) {
		case models.PivotRow:
			rows = append(rows, RowResponse{
				Kind:        string(models.RowKindPivot),
				Participant: v.Participant,
				Line:        pivot.FormatLine(v.Line),
				OverOdds:    pivot.FormatOdds(v.OverOdds),
				UnderOdds:   pivot.FormatOdds(v.UnderOdds),
			})
		case models.FlatRow:
			rows = append(rows, RowResponse{
				Kind:  string(models.RowKindFlat),
				Label: v.Label,
				Odds:  pivot.FormatAmerican(v.Odds),
			})
		}
	}

	return &ResultResponse{
		ID:             rs.ID.String(),
		LeagueID:       rs.Query.LeagueID,
		CategoryID:     rs.Query.CategoryID,
		SubcategoryID:  rs.Query.SubcategoryID,
		Shape:          string(rs.Shape()),
		SelectionCount: rs.SelectionCount,
		SkippedCount:   rs.SkippedCount,
		Rows:           rows,
		FetchedAt:      rs.FetchedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
