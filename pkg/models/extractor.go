package models

import (
	"context"
	"errors"
)

// Extractor is the core interface that all AI integrations must implement.
// Never call specific AI providers directly — always inject this interface.
type Extractor interface {
	// Extract derives structured action items from a meeting transcript.
	Extract(ctx context.Context, transcript string) (ExtractionResult, error)
	// Name returns the provider identifier (e.g., "openai", "ollama").
	Name() string
}

// ExtractionResult is the raw provider output before boundary validation.
// Item ids are assigned by the caller, not the provider.
type ExtractionResult struct {
	Items      []DraftItem `json:"items"`
	Highlights []string    `json:"highlights,omitempty"`
}

// Sentinel errors shared between providers and the extraction service.
var (
	ErrProviderUnavailable = errors.New("extraction provider unavailable")
	ErrExtractionTimeout   = errors.New("extraction timeout")
	ErrMalformedResponse   = errors.New("extraction provider returned malformed response")
)
