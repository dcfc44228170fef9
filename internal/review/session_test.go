package review_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/meetscribe/meetscribe/internal/review"
	"github.com/meetscribe/meetscribe/internal/store"
	"github.com/meetscribe/meetscribe/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- In-memory cache ---

type memCache struct {
	data map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string][]byte)}
}

func (m *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.data[key] = value
	return nil
}

func (m *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memCache) Delete(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func (m *memCache) Ping(_ context.Context) error { return nil }

func (m *memCache) IncrWithExpiry(_ context.Context, _ string, _ time.Duration) (int64, error) {
	return 1, nil
}

// --- Mock store ---

type mockStore struct {
	analyses       []*models.Analysis
	createItemsErr error
	createdItems   [][]models.DraftItem
}

func (m *mockStore) Ping(_ context.Context) error { return nil }

func (m *mockStore) CreateAnalysis(_ context.Context, a *models.Analysis) error {
	a.ID = uuid.New()
	a.CreatedAt = time.Now().UTC()
	m.analyses = append(m.analyses, a)
	return nil
}

func (m *mockStore) GetAnalysis(_ context.Context, _ uuid.UUID) (*models.Analysis, error) {
	return nil, store.ErrNotFound
}

func (m *mockStore) ListAnalyses(_ context.Context, _ int) ([]*models.Analysis, error) {
	return m.analyses, nil
}

func (m *mockStore) CreateActionItems(_ context.Context, analysisID uuid.UUID, drafts []models.DraftItem) ([]*models.ActionItem, error) {
	if m.createItemsErr != nil {
		return nil, m.createItemsErr
	}
	m.createdItems = append(m.createdItems, drafts)
	items := make([]*models.ActionItem, 0, len(drafts))
	for i, d := range drafts {
		items = append(items, &models.ActionItem{
			ID:         uuid.New(),
			AnalysisID: analysisID,
			Action:     d.Action,
			Owner:      d.Owner,
			Deadline:   d.Deadline,
			Priority:   d.Priority,
			Remarks:    d.Remarks,
			Position:   i,
		})
	}
	return items, nil
}

func (m *mockStore) ListActionItems(_ context.Context, _ uuid.UUID) ([]*models.ActionItem, error) {
	return nil, nil
}

func (m *mockStore) UpdateActionItem(_ context.Context, _ uuid.UUID, _ ...store.ItemUpdateOption) (*models.ActionItem, error) {
	return nil, store.ErrNotFound
}

func (m *mockStore) DeleteActionItem(_ context.Context, _ uuid.UUID) error { return nil }

func (m *mockStore) GetAPIKeyByPrefix(_ context.Context, _ string) ([]*models.APIKey, error) {
	return nil, nil
}
func (m *mockStore) UpdateAPIKeyLastUsed(_ context.Context, _ uuid.UUID) error { return nil }
func (m *mockStore) CreateAPIKey(_ context.Context, _ *models.APIKey) error    { return nil }
func (m *mockStore) ListAPIKeys(_ context.Context) ([]*models.APIKey, error)   { return nil, nil }
func (m *mockStore) RevokeAPIKey(_ context.Context, _ uuid.UUID) error         { return nil }
func (m *mockStore) CountAPIKeys(_ context.Context) (int, error)               { return 0, nil }

// --- helpers ---

func newManager(c *memCache, s *mockStore) *review.Manager {
	return review.NewManager(c, s, time.Hour)
}

func draftItems() []models.DraftItem {
	return []models.DraftItem{
		{ID: "draft-1", Action: "Send the report", Owner: "Alice", Deadline: "Friday", Priority: models.PriorityHigh},
		{ID: "draft-2", Action: "Book the room", Owner: "Bob", Deadline: "Monday", Priority: models.PriorityLow},
	}
}

// --- Create / Get ---

func TestCreate_SeedsSession(t *testing.T) {
	mgr := newManager(newMemCache(), &mockStore{})
	ctx := context.Background()

	sess, err := mgr.Create(ctx, "transcript text", draftItems(), []string{"budget approved"})
	require.NoError(t, err)
	assert.True(t, len(sess.ID) > len("draft-"))
	assert.Contains(t, sess.ID, "draft-")

	got, err := mgr.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "transcript text", got.Transcript)
	assert.Len(t, got.Items, 2)
	assert.Equal(t, []string{"budget approved"}, got.Highlights)
}

func TestGet_NotFound(t *testing.T) {
	mgr := newManager(newMemCache(), &mockStore{})

	_, err := mgr.Get(context.Background(), "draft-"+uuid.NewString())
	assert.ErrorIs(t, err, review.ErrSessionNotFound)
}

// --- UpdateItem ---

func TestUpdateItem_ReplacesOnlyTarget(t *testing.T) {
	mgr := newManager(newMemCache(), &mockStore{})
	ctx := context.Background()

	sess, err := mgr.Create(ctx, "t", draftItems(), nil)
	require.NoError(t, err)

	edited := models.DraftItem{
		ID:       "draft-1",
		Action:   "Send the final report",
		Owner:    "Alice",
		Deadline: "Thursday",
		Priority: models.PriorityMedium,
		Remarks:  "moved up",
	}
	updated, err := mgr.UpdateItem(ctx, sess.ID, edited)
	require.NoError(t, err)
	require.Len(t, updated.Items, 2)
	assert.Equal(t, edited, updated.Items[0])
	// Other item untouched
	assert.Equal(t, "Book the room", updated.Items[1].Action)

	// Change persists across reads
	got, err := mgr.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "Send the final report", got.Items[0].Action)
}

func TestUpdateItem_UnknownIDIsNoOp(t *testing.T) {
	mgr := newManager(newMemCache(), &mockStore{})
	ctx := context.Background()

	sess, err := mgr.Create(ctx, "t", draftItems(), nil)
	require.NoError(t, err)

	updated, err := mgr.UpdateItem(ctx, sess.ID, models.DraftItem{ID: "draft-missing", Action: "x", Priority: models.PriorityLow})
	require.NoError(t, err)
	assert.Len(t, updated.Items, 2)
	assert.Equal(t, "Send the report", updated.Items[0].Action)
}

func TestUpdateItem_SessionExpired(t *testing.T) {
	mgr := newManager(newMemCache(), &mockStore{})

	_, err := mgr.UpdateItem(context.Background(), "draft-gone", models.DraftItem{ID: "draft-1"})
	assert.ErrorIs(t, err, review.ErrSessionNotFound)
}

// --- DeleteItem ---

func TestDeleteItem_RemovesTarget(t *testing.T) {
	mgr := newManager(newMemCache(), &mockStore{})
	ctx := context.Background()

	sess, err := mgr.Create(ctx, "t", draftItems(), nil)
	require.NoError(t, err)

	updated, err := mgr.DeleteItem(ctx, sess.ID, "draft-1")
	require.NoError(t, err)
	require.Len(t, updated.Items, 1)
	assert.Equal(t, "draft-2", updated.Items[0].ID)
}

func TestDeleteItem_Idempotent(t *testing.T) {
	mgr := newManager(newMemCache(), &mockStore{})
	ctx := context.Background()

	sess, err := mgr.Create(ctx, "t", draftItems(), nil)
	require.NoError(t, err)

	_, err = mgr.DeleteItem(ctx, sess.ID, "draft-1")
	require.NoError(t, err)

	// Deleting the same id again succeeds and changes nothing
	updated, err := mgr.DeleteItem(ctx, sess.ID, "draft-1")
	require.NoError(t, err)
	assert.Len(t, updated.Items, 1)
}

func TestDeleteItem_CanEmptyTheSession(t *testing.T) {
	mgr := newManager(newMemCache(), &mockStore{})
	ctx := context.Background()

	sess, err := mgr.Create(ctx, "t", draftItems(), nil)
	require.NoError(t, err)

	_, err = mgr.DeleteItem(ctx, sess.ID, "draft-1")
	require.NoError(t, err)
	updated, err := mgr.DeleteItem(ctx, sess.ID, "draft-2")
	require.NoError(t, err)
	assert.Empty(t, updated.Items)
}

// --- Confirm ---

func TestConfirm_PersistsItemsInOrder(t *testing.T) {
	ms := &mockStore{}
	mgr := newManager(newMemCache(), ms)
	ctx := context.Background()

	sess, err := mgr.Create(ctx, "the transcript", draftItems(), nil)
	require.NoError(t, err)

	analysis, items, err := mgr.Confirm(ctx, sess.ID, "Weekly sync")
	require.NoError(t, err)
	assert.Equal(t, "Weekly sync", analysis.Title)
	assert.Equal(t, "the transcript", analysis.Transcript)
	assert.NotEqual(t, uuid.Nil, analysis.ID)

	require.Len(t, items, 2)
	assert.Equal(t, "Send the report", items[0].Action)
	assert.Equal(t, 0, items[0].Position)
	assert.Equal(t, 1, items[1].Position)
}

func TestConfirm_DefaultTitle(t *testing.T) {
	mgr := newManager(newMemCache(), &mockStore{})
	ctx := context.Background()

	sess, err := mgr.Create(ctx, "t", draftItems(), nil)
	require.NoError(t, err)

	analysis, _, err := mgr.Confirm(ctx, sess.ID, "")
	require.NoError(t, err)
	assert.Contains(t, analysis.Title, "Analysis ")
}

func TestConfirm_EmptyReviewNeverTouchesStore(t *testing.T) {
	ms := &mockStore{}
	mgr := newManager(newMemCache(), ms)
	ctx := context.Background()

	sess, err := mgr.Create(ctx, "t", draftItems(), nil)
	require.NoError(t, err)
	_, err = mgr.DeleteItem(ctx, sess.ID, "draft-1")
	require.NoError(t, err)
	_, err = mgr.DeleteItem(ctx, sess.ID, "draft-2")
	require.NoError(t, err)

	_, _, err = mgr.Confirm(ctx, sess.ID, "Empty")
	assert.ErrorIs(t, err, review.ErrEmptyReview)
	assert.Empty(t, ms.analyses)
	assert.Empty(t, ms.createdItems)
}

func TestConfirm_SessionNotFound(t *testing.T) {
	mgr := newManager(newMemCache(), &mockStore{})

	_, _, err := mgr.Confirm(context.Background(), "draft-gone", "Title")
	assert.ErrorIs(t, err, review.ErrSessionNotFound)
}

func TestConfirm_ItemInsertFailureSurfacesError(t *testing.T) {
	insertErr := errors.New("insert failed")
	ms := &mockStore{createItemsErr: insertErr}
	mgr := newManager(newMemCache(), ms)
	ctx := context.Background()

	sess, err := mgr.Create(ctx, "t", draftItems(), nil)
	require.NoError(t, err)

	_, _, err = mgr.Confirm(ctx, sess.ID, "Broken")
	assert.ErrorIs(t, err, insertErr)
	// The analysis row was already created before the failure
	assert.Len(t, ms.analyses, 1)
}

func TestConfirm_RemovesSessionFromCache(t *testing.T) {
	mc := newMemCache()
	mgr := newManager(mc, &mockStore{})
	ctx := context.Background()

	sess, err := mgr.Create(ctx, "t", draftItems(), nil)
	require.NoError(t, err)

	_, _, err = mgr.Confirm(ctx, sess.ID, "Done")
	require.NoError(t, err)

	_, err = mgr.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, review.ErrSessionNotFound)
}
