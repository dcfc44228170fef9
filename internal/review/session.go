// Package review holds the editable working copy of extracted action items
// between extraction and confirmation. Sessions live in the cache with a TTL;
// nothing touches the database until the user confirms.
package review

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/meetscribe/meetscribe/internal/cache"
	"github.com/meetscribe/meetscribe/internal/store"
	"github.com/meetscribe/meetscribe/pkg/models"
)

var (
	ErrSessionNotFound = errors.New("review session not found or expired")
	ErrEmptyReview     = errors.New("cannot confirm a review with zero items")
)

// Session is the working set for one extraction awaiting review.
// Highlights are informational only and are never persisted.
type Session struct {
	ID         string             `json:"id"`
	Transcript string             `json:"transcript"`
	Items      []models.DraftItem `json:"items"`
	Highlights []string           `json:"highlights,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
}

// Manager stores review sessions in the cache and commits confirmed
// sessions to the store.
type Manager struct {
	cache cache.Cache
	store store.Store
	ttl   time.Duration
}

// NewManager creates a Manager. ttl bounds how long an unconfirmed draft
// survives before it expires from the cache.
func NewManager(c cache.Cache, s store.Store, ttl time.Duration) *Manager {
	return &Manager{cache: c, store: s, ttl: ttl}
}

// Create seeds a new session from an extraction result and writes it to the
// cache. The session id shares the "draft-" id space with item ids.
func (m *Manager) Create(ctx context.Context, transcript string, items []models.DraftItem, highlights []string) (*Session, error) {
	sess := &Session{
		ID:         "draft-" + uuid.NewString(),
		Transcript: transcript,
		Items:      items,
		Highlights: highlights,
		CreatedAt:  time.Now().UTC(),
	}
	if err := m.save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Get loads a session by id. Expired or unknown ids yield ErrSessionNotFound.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	data, ok, err := m.cache.Get(ctx, cache.DraftKey(id))
	if err != nil {
		return nil, fmt.Errorf("load review session: %w", err)
	}
	if !ok {
		return nil, ErrSessionNotFound
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("decode review session: %w", err)
	}
	return &sess, nil
}

// UpdateItem replaces the entry whose id matches item.ID. A non-matching id
// is a no-op; other items are never touched.
func (m *Manager) UpdateItem(ctx context.Context, sessionID string, item models.DraftItem) (*Session, error) {
	sess, err := m.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	matched := false
	for i := range sess.Items {
		if sess.Items[i].ID == item.ID {
			sess.Items[i] = item
			matched = true
			break
		}
	}
	if !matched {
		return sess, nil
	}

	if err := m.save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// DeleteItem removes the entry with the given id. Deleting an absent id is
// a no-op, so deletes are idempotent.
func (m *Manager) DeleteItem(ctx context.Context, sessionID, itemID string) (*Session, error) {
	sess, err := m.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	kept := sess.Items[:0]
	for _, it := range sess.Items {
		if it.ID != itemID {
			kept = append(kept, it)
		}
	}
	if len(kept) == len(sess.Items) {
		return sess, nil
	}
	sess.Items = kept

	if err := m.save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Confirm commits the session: the analysis row is created first, then the
// items are bulk-inserted with store-assigned ids replacing the draft ids.
// A session with zero items is rejected before anything reaches the store.
// If the item insert fails after the analysis insert succeeded, the orphaned
// analysis row is left in place and the error is returned.
func (m *Manager) Confirm(ctx context.Context, sessionID, title string) (*models.Analysis, []*models.ActionItem, error) {
	sess, err := m.Get(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if len(sess.Items) == 0 {
		return nil, nil, ErrEmptyReview
	}

	if title == "" {
		title = "Analysis " + time.Now().UTC().Format("Jan 2, 2006 15:04")
	}

	analysis := &models.Analysis{
		Title:      title,
		Transcript: sess.Transcript,
	}
	if err := m.store.CreateAnalysis(ctx, analysis); err != nil {
		return nil, nil, fmt.Errorf("create analysis: %w", err)
	}

	items, err := m.store.CreateActionItems(ctx, analysis.ID, sess.Items)
	if err != nil {
		return nil, nil, fmt.Errorf("create action items for analysis %s: %w", analysis.ID, err)
	}

	// Best effort; an expired draft key is already gone.
	_ = m.cache.Delete(ctx, cache.DraftKey(sessionID))

	return analysis, items, nil
}

func (m *Manager) save(ctx context.Context, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode review session: %w", err)
	}
	if err := m.cache.Set(ctx, cache.DraftKey(sess.ID), data, m.ttl); err != nil {
		return fmt.Errorf("save review session: %w", err)
	}
	return nil
}
