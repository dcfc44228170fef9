package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/meetscribe/meetscribe/internal/api/response"
	"github.com/meetscribe/meetscribe/internal/review"
	"github.com/meetscribe/meetscribe/pkg/models"
)

// DraftManager defines the review session operations the draft handlers use.
type DraftManager interface {
	Get(ctx context.Context, id string) (*review.Session, error)
	UpdateItem(ctx context.Context, sessionID string, item models.DraftItem) (*review.Session, error)
	DeleteItem(ctx context.Context, sessionID, itemID string) (*review.Session, error)
	Confirm(ctx context.Context, sessionID, title string) (*models.Analysis, []*models.ActionItem, error)
}

// NewGetDraftHandler returns a handler for GET /api/v1/drafts/{draftID}.
func NewGetDraftHandler(mgr DraftManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := mgr.Get(r.Context(), chi.URLParam(r, "draftID"))
		if err != nil {
			writeDraftError(w, err)
			return
		}
		response.JSON(w, draftResponse(sess))
	}
}

// NewUpdateDraftItemHandler returns a handler for
// PUT /api/v1/drafts/{draftID}/items/{itemID}.
func NewUpdateDraftItemHandler(mgr DraftManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Action   string          `json:"action"`
			Owner    string          `json:"owner"`
			Deadline string          `json:"deadline"`
			Priority models.Priority `json:"priority"`
			Remarks  string          `json:"remarks"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}
		if strings.TrimSpace(req.Action) == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "action is required", nil)
			return
		}
		if !req.Priority.Valid() {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"priority must be one of: high, medium, low", nil)
			return
		}

		item := models.DraftItem{
			ID:       chi.URLParam(r, "itemID"),
			Action:   req.Action,
			Owner:    req.Owner,
			Deadline: req.Deadline,
			Priority: req.Priority,
			Remarks:  req.Remarks,
		}
		sess, err := mgr.UpdateItem(r.Context(), chi.URLParam(r, "draftID"), item)
		if err != nil {
			writeDraftError(w, err)
			return
		}
		response.JSON(w, draftResponse(sess))
	}
}

// NewDeleteDraftItemHandler returns a handler for
// DELETE /api/v1/drafts/{draftID}/items/{itemID}. Deletes are idempotent.
func NewDeleteDraftItemHandler(mgr DraftManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := mgr.DeleteItem(r.Context(),
			chi.URLParam(r, "draftID"), chi.URLParam(r, "itemID"))
		if err != nil {
			writeDraftError(w, err)
			return
		}
		response.JSON(w, draftResponse(sess))
	}
}

// NewConfirmDraftHandler returns a handler for
// POST /api/v1/drafts/{draftID}/confirm.
func NewConfirmDraftHandler(mgr DraftManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Title string `json:"title"`
		}
		// An empty body means "use the default title".
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&req)
		}

		analysis, items, err := mgr.Confirm(r.Context(), chi.URLParam(r, "draftID"), req.Title)
		if err != nil {
			if errors.Is(err, review.ErrEmptyReview) {
				response.Error(w, http.StatusUnprocessableEntity, "EMPTY_REVIEW",
					"Cannot confirm a review with no items", nil)
				return
			}
			writeDraftError(w, err)
			return
		}

		response.Created(w, map[string]any{
			"analysis": analysis,
			"items":    items,
		})
	}
}

func writeDraftError(w http.ResponseWriter, err error) {
	if errors.Is(err, review.ErrSessionNotFound) {
		response.Error(w, http.StatusNotFound, "DRAFT_NOT_FOUND",
			"Draft not found or expired", nil)
		return
	}
	response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
		"An unexpected error occurred", nil)
}

func draftResponse(sess *review.Session) map[string]any {
	return map[string]any{
		"draft_id":   sess.ID,
		"items":      sess.Items,
		"highlights": sess.Highlights,
		"created_at": sess.CreatedAt,
	}
}
