// Package extract turns free-text meeting transcripts into structured draft
// action items via a pluggable AI provider, validating the provider output
// at the boundary before it is trusted.
package extract

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/meetscribe/meetscribe/internal/review"
	"github.com/meetscribe/meetscribe/pkg/models"
)

// Service orchestrates extraction: provider call, boundary validation,
// draft id assignment, and review session creation.
type Service struct {
	provider models.Extractor
	sessions *review.Manager
	timeout  time.Duration
}

// NewService creates a new extraction Service.
func NewService(provider models.Extractor, sessions *review.Manager, timeout time.Duration) *Service {
	return &Service{
		provider: provider,
		sessions: sessions,
		timeout:  timeout,
	}
}

// Extract sends the transcript to the provider and seeds a review session
// from the validated result. No retry is attempted; the caller decides
// whether to resubmit on failure.
func (s *Service) Extract(ctx context.Context, transcript string) (*review.Session, error) {
	if strings.TrimSpace(transcript) == "" {
		return nil, ErrEmptyTranscript
	}

	extractCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err := s.provider.Extract(extractCtx, transcript)
	if err != nil {
		return nil, err
	}

	if len(result.Items) == 0 {
		return nil, ErrNoActionItems
	}

	items, err := validateItems(result.Items)
	if err != nil {
		return nil, err
	}

	sess, err := s.sessions.Create(ctx, transcript, items, result.Highlights)
	if err != nil {
		return nil, fmt.Errorf("seed review session: %w", err)
	}
	return sess, nil
}

// validateItems checks the declared schema at the boundary rather than
// trusting the provider: every item needs a non-blank action and one of the
// three priority values. Valid items get fresh ids in the draft id space.
func validateItems(raw []models.DraftItem) ([]models.DraftItem, error) {
	items := make([]models.DraftItem, 0, len(raw))
	for i, r := range raw {
		if strings.TrimSpace(r.Action) == "" {
			return nil, fmt.Errorf("%w: item %d has empty action", ErrMalformedResponse, i)
		}
		if !r.Priority.Valid() {
			return nil, fmt.Errorf("%w: item %d has priority %q", ErrMalformedResponse, i, r.Priority)
		}
		r.ID = "draft-" + uuid.NewString()
		items = append(items, r)
	}
	return items, nil
}
