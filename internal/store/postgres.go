package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meetscribe/meetscribe/pkg/models"
)

const defaultHistoryLimit = 20

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// --- Analyses ---

func (s *PostgresStore) CreateAnalysis(ctx context.Context, analysis *models.Analysis) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO analyses (title, transcript)
		 VALUES ($1, $2)
		 RETURNING id, created_at`,
		analysis.Title, analysis.Transcript,
	).Scan(&analysis.ID, &analysis.CreatedAt)
	if err != nil {
		return fmt.Errorf("create analysis: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetAnalysis(ctx context.Context, id uuid.UUID) (*models.Analysis, error) {
	var a models.Analysis
	err := s.pool.QueryRow(ctx,
		`SELECT id, title, transcript, created_at FROM analyses WHERE id = $1`, id,
	).Scan(&a.ID, &a.Title, &a.Transcript, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get analysis: %w", err)
	}
	return &a, nil
}

func (s *PostgresStore) ListAnalyses(ctx context.Context, limit int) ([]*models.Analysis, error) {
	if limit <= 0 || limit > defaultHistoryLimit {
		limit = defaultHistoryLimit
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, title, transcript, created_at FROM analyses
		 ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	defer rows.Close()

	var analyses []*models.Analysis
	for rows.Next() {
		var a models.Analysis
		if err := rows.Scan(&a.ID, &a.Title, &a.Transcript, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan analysis: %w", err)
		}
		analyses = append(analyses, &a)
	}
	return analyses, rows.Err()
}

// --- Action Items ---

func (s *PostgresStore) CreateActionItems(ctx context.Context, analysisID uuid.UUID, drafts []models.DraftItem) ([]*models.ActionItem, error) {
	if len(drafts) == 0 {
		return nil, fmt.Errorf("create action items: empty item set")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	items := make([]*models.ActionItem, 0, len(drafts))
	for pos, d := range drafts {
		var item models.ActionItem
		err := tx.QueryRow(ctx,
			`INSERT INTO action_items (analysis_id, action, owner, deadline, priority, remarks, position)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 RETURNING id, analysis_id, action, owner, deadline, priority, remarks, completed, position, created_at, updated_at`,
			analysisID, d.Action, d.Owner, d.Deadline, d.Priority, d.Remarks, pos,
		).Scan(&item.ID, &item.AnalysisID, &item.Action, &item.Owner, &item.Deadline,
			&item.Priority, &item.Remarks, &item.Completed, &item.Position,
			&item.CreatedAt, &item.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("insert action item %d: %w", pos, err)
		}
		items = append(items, &item)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit action items: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) ListActionItems(ctx context.Context, analysisID uuid.UUID) ([]*models.ActionItem, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, analysis_id, action, owner, deadline, priority, remarks, completed, position, created_at, updated_at
		 FROM action_items WHERE analysis_id = $1 ORDER BY position`, analysisID)
	if err != nil {
		return nil, fmt.Errorf("list action items: %w", err)
	}
	defer rows.Close()

	var items []*models.ActionItem
	for rows.Next() {
		var item models.ActionItem
		if err := rows.Scan(&item.ID, &item.AnalysisID, &item.Action, &item.Owner, &item.Deadline,
			&item.Priority, &item.Remarks, &item.Completed, &item.Position,
			&item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan action item: %w", err)
		}
		items = append(items, &item)
	}
	return items, rows.Err()
}

func (s *PostgresStore) UpdateActionItem(ctx context.Context, id uuid.UUID, opts ...ItemUpdateOption) (*models.ActionItem, error) {
	params := &itemUpdateParams{}
	for _, opt := range opts {
		opt(params)
	}
	if params.Remarks == nil && params.Completed == nil {
		return nil, fmt.Errorf("update action item: no fields to update")
	}

	sets := []string{"updated_at = NOW()"}
	args := []any{id}
	argIdx := 2

	if params.Remarks != nil {
		sets = append(sets, fmt.Sprintf("remarks = $%d", argIdx))
		args = append(args, *params.Remarks)
		argIdx++
	}
	if params.Completed != nil {
		sets = append(sets, fmt.Sprintf("completed = $%d", argIdx))
		args = append(args, *params.Completed)
		argIdx++
	}

	query := fmt.Sprintf(
		`UPDATE action_items SET %s WHERE id = $1
		 RETURNING id, analysis_id, action, owner, deadline, priority, remarks, completed, position, created_at, updated_at`,
		strings.Join(sets, ", "))

	var item models.ActionItem
	err := s.pool.QueryRow(ctx, query, args...).Scan(
		&item.ID, &item.AnalysisID, &item.Action, &item.Owner, &item.Deadline,
		&item.Priority, &item.Remarks, &item.Completed, &item.Position,
		&item.CreatedAt, &item.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update action item: %w", err)
	}
	return &item, nil
}

func (s *PostgresStore) DeleteActionItem(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM action_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete action item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- API Keys ---

func (s *PostgresStore) GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, key_hash, key_prefix, scopes, last_used_at, deleted_at, created_at, updated_at
		 FROM api_keys WHERE key_prefix = $1 AND deleted_at IS NULL`, prefix)
	if err != nil {
		return nil, fmt.Errorf("get api key by prefix: %w", err)
	}
	defer rows.Close()

	return scanAPIKeys(rows)
}

func (s *PostgresStore) UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE api_keys SET last_used_at = NOW(), updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("update api key last used: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateAPIKey(ctx context.Context, key *models.APIKey) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO api_keys (id, name, key_hash, key_prefix, scopes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		key.ID, key.Name, key.KeyHash, key.KeyPrefix, key.Scopes, key.CreatedAt, key.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create api key: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListAPIKeys(ctx context.Context) ([]*models.APIKey, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, key_hash, key_prefix, scopes, last_used_at, deleted_at, created_at, updated_at
		 FROM api_keys WHERE deleted_at IS NULL ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	defer rows.Close()

	return scanAPIKeys(rows)
}

func (s *PostgresStore) RevokeAPIKey(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE api_keys SET deleted_at = NOW(), updated_at = NOW()
		 WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("revoke api key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) CountAPIKeys(ctx context.Context) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM api_keys WHERE deleted_at IS NULL`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count api keys: %w", err)
	}
	return count, nil
}

func scanAPIKeys(rows pgx.Rows) ([]*models.APIKey, error) {
	var keys []*models.APIKey
	for rows.Next() {
		var k models.APIKey
		if err := rows.Scan(&k.ID, &k.Name, &k.KeyHash, &k.KeyPrefix, &k.Scopes,
			&k.LastUsedAt, &k.DeletedAt, &k.CreatedAt, &k.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan api key: %w", err)
		}
		keys = append(keys, &k)
	}
	return keys, rows.Err()
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}
