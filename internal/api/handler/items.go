package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/meetscribe/meetscribe/internal/api/response"
	"github.com/meetscribe/meetscribe/internal/store"
	"github.com/meetscribe/meetscribe/pkg/models"
)

// ItemStore is the subset of the store the item handlers mutate.
type ItemStore interface {
	UpdateActionItem(ctx context.Context, id uuid.UUID, opts ...store.ItemUpdateOption) (*models.ActionItem, error)
	DeleteActionItem(ctx context.Context, id uuid.UUID) error
}

// NewUpdateItemHandler returns a handler for
// PATCH /api/v1/analyses/{analysisID}/items/{itemID}. Only remarks and
// completed are mutable after confirmation.
func NewUpdateItemHandler(s ItemStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "itemID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"Invalid item id", nil)
			return
		}

		var req struct {
			Remarks   *string `json:"remarks"`
			Completed *bool   `json:"completed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}
		if req.Remarks == nil && req.Completed == nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"at least one of remarks or completed is required", nil)
			return
		}

		var opts []store.ItemUpdateOption
		if req.Remarks != nil {
			opts = append(opts, store.WithRemarks(*req.Remarks))
		}
		if req.Completed != nil {
			opts = append(opts, store.WithCompleted(*req.Completed))
		}

		item, err := s.UpdateActionItem(r.Context(), id, opts...)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				response.Error(w, http.StatusNotFound, "ITEM_NOT_FOUND",
					"Action item not found", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to update action item", nil)
			return
		}
		response.JSON(w, item)
	}
}

// NewDeleteItemHandler returns a handler for
// DELETE /api/v1/analyses/{analysisID}/items/{itemID}.
func NewDeleteItemHandler(s ItemStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "itemID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"Invalid item id", nil)
			return
		}

		if err := s.DeleteActionItem(r.Context(), id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				response.Error(w, http.StatusNotFound, "ITEM_NOT_FOUND",
					"Action item not found", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to delete action item", nil)
			return
		}
		response.NoContent(w)
	}
}
