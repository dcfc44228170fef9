package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/meetscribe/meetscribe/internal/api/response"
	"github.com/meetscribe/meetscribe/internal/items"
	"github.com/meetscribe/meetscribe/internal/store"
	"github.com/meetscribe/meetscribe/pkg/models"
)

const (
	historyLimit         = 20
	transcriptPreviewLen = 150
)

// AnalysisStore is the subset of the store the analysis handlers read from.
type AnalysisStore interface {
	ListAnalyses(ctx context.Context, limit int) ([]*models.Analysis, error)
	GetAnalysis(ctx context.Context, id uuid.UUID) (*models.Analysis, error)
	ListActionItems(ctx context.Context, analysisID uuid.UUID) ([]*models.ActionItem, error)
}

type analysisSummary struct {
	ID                uuid.UUID `json:"id"`
	Title             string    `json:"title"`
	TranscriptPreview string    `json:"transcript_preview"`
	CreatedAt         time.Time `json:"created_at"`
}

// NewListAnalysesHandler returns a handler for GET /api/v1/analyses. The
// history is capped at the 20 most recent analyses, newest first.
func NewListAnalysesHandler(s AnalysisStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		analyses, err := s.ListAnalyses(r.Context(), historyLimit)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to list analyses", nil)
			return
		}

		summaries := make([]analysisSummary, 0, len(analyses))
		for _, a := range analyses {
			summaries = append(summaries, analysisSummary{
				ID:                a.ID,
				Title:             a.Title,
				TranscriptPreview: preview(a.Transcript, transcriptPreviewLen),
				CreatedAt:         a.CreatedAt,
			})
		}
		response.JSON(w, map[string]any{
			"analyses": summaries,
			"total":    len(summaries),
		})
	}
}

// NewGetAnalysisHandler returns a handler for GET /api/v1/analyses/{analysisID}.
// Query params q, priority, show_completed and sort shape the returned item
// view; the stored order is the default.
func NewGetAnalysisHandler(s AnalysisStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "analysisID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"Invalid analysis id", nil)
			return
		}

		opts, ok := viewOptionsFromQuery(w, r)
		if !ok {
			return
		}

		analysis, err := s.GetAnalysis(r.Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				response.Error(w, http.StatusNotFound, "ANALYSIS_NOT_FOUND",
					"Analysis not found", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to load analysis", nil)
			return
		}

		all, err := s.ListActionItems(r.Context(), id)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to load action items", nil)
			return
		}

		visible := items.View(all, opts)
		response.JSON(w, map[string]any{
			"analysis": analysis,
			"items":    visible,
			"total":    len(all),
			"visible":  len(visible),
		})
	}
}

// viewOptionsFromQuery parses the shared display params. It writes the error
// response itself and returns ok=false when a param is invalid.
func viewOptionsFromQuery(w http.ResponseWriter, r *http.Request) (items.ViewOptions, bool) {
	q := r.URL.Query()

	opts := items.ViewOptions{
		Query:         q.Get("q"),
		Priority:      q.Get("priority"),
		ShowCompleted: q.Get("show_completed") != "false",
		Sort:          items.SortKey(q.Get("sort")),
	}

	switch opts.Priority {
	case "", "all", string(models.PriorityHigh), string(models.PriorityMedium), string(models.PriorityLow):
	default:
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
			"priority must be one of: all, high, medium, low", nil)
		return items.ViewOptions{}, false
	}

	if !items.ValidSortKey(opts.Sort) {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
			"sort must be one of: priority, owner, deadline", nil)
		return items.ViewOptions{}, false
	}

	return opts, true
}

// preview truncates s to max runes for history listings.
func preview(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
