// Package handler contains the HTTP handlers for the MeetScribe API.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/meetscribe/meetscribe/internal/api/response"
	"github.com/meetscribe/meetscribe/internal/extract"
	"github.com/meetscribe/meetscribe/internal/review"
)

// ExtractionService defines the interface the extract handler depends on.
type ExtractionService interface {
	Extract(ctx context.Context, transcript string) (*review.Session, error)
}

// NewExtractHandler returns an http.HandlerFunc for POST /api/v1/extract.
func NewExtractHandler(svc ExtractionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Transcript string `json:"transcript"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}

		if strings.TrimSpace(req.Transcript) == "" {
			response.Error(w, http.StatusBadRequest, "EMPTY_TRANSCRIPT", "transcript is required", nil)
			return
		}

		sess, err := svc.Extract(r.Context(), req.Transcript)
		if err != nil {
			switch {
			case errors.Is(err, extract.ErrEmptyTranscript):
				response.Error(w, http.StatusBadRequest, "EMPTY_TRANSCRIPT",
					"transcript is required", nil)
			case errors.Is(err, extract.ErrNoActionItems):
				response.Error(w, http.StatusUnprocessableEntity, "NO_ACTION_ITEMS",
					"No action items were found in the transcript", nil)
			case errors.Is(err, extract.ErrProviderUnavailable):
				response.Error(w, http.StatusBadGateway, "AI_PROVIDER_UNAVAILABLE",
					"The extraction provider is not available", nil)
			case errors.Is(err, extract.ErrExtractionTimeout):
				response.Error(w, http.StatusGatewayTimeout, "AI_EXTRACTION_TIMEOUT",
					"Extraction took too long and was cancelled", nil)
			case errors.Is(err, extract.ErrMalformedResponse):
				response.Error(w, http.StatusBadGateway, "EXTRACTION_FAILED",
					"The extraction provider returned an unusable response", nil)
			default:
				response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
					"An unexpected error occurred", nil)
			}
			return
		}

		response.JSON(w, draftResponse(sess))
	}
}
