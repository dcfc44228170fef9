package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/meetscribe/meetscribe/pkg/models"
)

var ErrNotFound = errors.New("resource not found")
var ErrDuplicateKey = errors.New("duplicate key violation")

// Store is the data access interface. All database operations go through here.
type Store interface {
	Ping(ctx context.Context) error

	CreateAnalysis(ctx context.Context, analysis *models.Analysis) error
	GetAnalysis(ctx context.Context, id uuid.UUID) (*models.Analysis, error)
	ListAnalyses(ctx context.Context, limit int) ([]*models.Analysis, error)

	// CreateActionItems bulk-inserts the drafts for an existing analysis in a
	// single transaction, assigning fresh row ids and sequential positions.
	// The returned items are in insertion order.
	CreateActionItems(ctx context.Context, analysisID uuid.UUID, drafts []models.DraftItem) ([]*models.ActionItem, error)
	ListActionItems(ctx context.Context, analysisID uuid.UUID) ([]*models.ActionItem, error)
	UpdateActionItem(ctx context.Context, id uuid.UUID, opts ...ItemUpdateOption) (*models.ActionItem, error)
	DeleteActionItem(ctx context.Context, id uuid.UUID) error

	GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error)
	UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error
	CreateAPIKey(ctx context.Context, key *models.APIKey) error
	ListAPIKeys(ctx context.Context) ([]*models.APIKey, error)
	RevokeAPIKey(ctx context.Context, id uuid.UUID) error
	CountAPIKeys(ctx context.Context) (int, error)
}

type itemUpdateParams struct {
	Remarks   *string
	Completed *bool
}

// ItemUpdateOption selects which action-item fields a partial update touches.
type ItemUpdateOption func(*itemUpdateParams)

func WithRemarks(remarks string) ItemUpdateOption {
	return func(p *itemUpdateParams) {
		p.Remarks = &remarks
	}
}

func WithCompleted(completed bool) ItemUpdateOption {
	return func(p *itemUpdateParams) {
		p.Completed = &completed
	}
}
