package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/meetscribe/meetscribe/internal/api/response"
	"github.com/meetscribe/meetscribe/internal/export"
	"github.com/meetscribe/meetscribe/internal/items"
)

// ShareService regenerates a CSV for a shared analysis link.
type ShareService interface {
	ShareCSV(ctx context.Context, analysisID uuid.UUID) (csv, filename string, err error)
}

// NewExportHandler returns a handler for
// GET /api/v1/analyses/{analysisID}/export. The same display params as the
// analysis view apply, so the download matches what the caller is looking at.
func NewExportHandler(s AnalysisStore) http.HandlerFunc {
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

		all, err := s.ListActionItems(r.Context(), id)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to load action items", nil)
			return
		}

		visible := items.View(all, opts)
		response.CSV(w, export.Filename(time.Now().UTC()), export.CSV(visible))
	}
}

// NewShareHandler returns a handler for GET /share/{analysisID}. The route is
// public; anyone holding the link can download the CSV.
func NewShareHandler(svc ShareService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "analysisID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"Invalid analysis id", nil)
			return
		}

		csv, filename, err := svc.ShareCSV(r.Context(), id)
		if err != nil {
			if errors.Is(err, export.ErrNoItems) {
				response.Error(w, http.StatusNotFound, "NO_ITEMS_FOUND",
					"No action items found for this analysis", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to generate the shared CSV", nil)
			return
		}

		response.CSV(w, filename, csv)
	}
}
