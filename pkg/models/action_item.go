// Package models contains shared data models used across the MeetScribe codebase.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Priority is the urgency level assigned to an action item by extraction.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Valid reports whether p is one of the three allowed values.
func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Rank returns the sort rank of p; high sorts before medium before low.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	}
	return 3
}

// DraftItem is an extracted action item that has not been saved yet.
// Its ID lives in the "draft-<uuid>" id space; saved rows get a fresh
// database-assigned UUID on confirm, so draft ids never collide with
// persisted ids.
type DraftItem struct {
	ID       string   `json:"id"`
	Action   string   `json:"action"`
	Owner    string   `json:"owner"`
	Deadline string   `json:"deadline"`
	Priority Priority `json:"priority"`
	Remarks  string   `json:"remarks,omitempty"`
}

// ActionItem is a persisted action item row belonging to one analysis.
// Position records insertion order at confirm time; it is the canonical
// order and display sorts never change it.
type ActionItem struct {
	ID         uuid.UUID `db:"id"          json:"id"`
	AnalysisID uuid.UUID `db:"analysis_id" json:"analysis_id"`
	Action     string    `db:"action"      json:"action"`
	Owner      string    `db:"owner"       json:"owner"`
	Deadline   string    `db:"deadline"    json:"deadline"`
	Priority   Priority  `db:"priority"    json:"priority"`
	Remarks    string    `db:"remarks"     json:"remarks"`
	Completed  bool      `db:"completed"   json:"completed"`
	Position   int       `db:"position"    json:"position"`
	CreatedAt  time.Time `db:"created_at"  json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"  json:"updated_at"`
}
