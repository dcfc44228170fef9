package models

import (
	"time"

	"github.com/google/uuid"
)

// Analysis represents one saved transcript submission. The transcript is
// immutable once the row exists.
type Analysis struct {
	ID         uuid.UUID `db:"id"         json:"id"`
	Title      string    `db:"title"      json:"title"`
	Transcript string    `db:"transcript" json:"transcript"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
