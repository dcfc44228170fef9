package export

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/meetscribe/meetscribe/internal/store"
)

// ErrNoItems distinguishes a share link that resolves to zero rows from a
// transport failure against the store.
var ErrNoItems = errors.New("no action items found for analysis")

// Service regenerates CSV documents from persisted items for share links.
type Service struct {
	store store.Store
}

// NewService creates a new export Service.
func NewService(s store.Store) *Service {
	return &Service{store: s}
}

// ShareCSV fetches all items for the analysis in canonical order and
// renders them. Zero rows yields ErrNoItems.
func (s *Service) ShareCSV(ctx context.Context, analysisID uuid.UUID) (csv, filename string, err error) {
	items, err := s.store.ListActionItems(ctx, analysisID)
	if err != nil {
		return "", "", fmt.Errorf("fetch items for share: %w", err)
	}
	if len(items) == 0 {
		return "", "", ErrNoItems
	}

	return CSV(items), ShareFilename(analysisID), nil
}
